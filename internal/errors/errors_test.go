package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "reactive error",
			code:    ErrInvalidTarget,
			wantMsg: "Invalid reactive target",
			wantCat: CategoryReactive,
		},
		{
			name:    "render error",
			code:    ErrDuplicateKey,
			wantMsg: "Duplicate key in sibling list",
			wantCat: CategoryRender,
		},
		{
			name:    "config error",
			code:    ErrConfigInvalid,
			wantMsg: "Invalid configuration value",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "ripple.json")
	if err.Message != `file "ripple.json" not found` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestErrorString(t *testing.T) {
	err := New(ErrDuplicateKey).WithDetail(`key "a"`)
	want := `E101: Duplicate key in sibling list (key "a")`
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestWrapAndIs(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := New(ErrSnapshotWrite).Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New(ErrSnapshotWrite)) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New(ErrSnapshotRead)) {
		t.Error("errors.Is should not match a different code")
	}

	outer := fmt.Errorf("upload: %w", err)
	if !HasCode(outer, ErrSnapshotWrite) {
		t.Error("HasCode should see through fmt wrapping")
	}
	if HasCode(outer, ErrConfigParse) {
		t.Error("HasCode matched the wrong code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, ErrConfigParse) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(ErrUnknownField)
	if got := FromError(orig, ErrConfigParse); got != orig {
		t.Error("FromError should return existing RippleError unchanged")
	}

	plain := fmt.Errorf("eof")
	got := FromError(plain, ErrConfigParse)
	if got.Code != ErrConfigParse || got.Wrapped != plain {
		t.Errorf("FromError = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(ErrDuplicateKey).
		WithDetail(`key "a" appears twice`).
		WithSuggestion("give every sibling a unique key")

	out := err.Format()
	for _, want := range []string{"ERROR E101: Duplicate key in sibling list", `key "a" appears twice`, "Hint: give every sibling a unique key"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != `E101: Duplicate key in sibling list - key "a" appears twice` {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, fmt.Errorf("wrapped: %w", New(ErrConfigNotFound)))
	if !strings.Contains(buf.String(), "E403") {
		t.Errorf("PrintError output = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, fmt.Errorf("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("PrintError output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	if len(lines) != 3 {
		t.Fatalf("wrapText lines = %q", lines)
	}
	if lines[0] != "one two" {
		t.Errorf("lines[0] = %q", lines[0])
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText of empty should be nil")
	}
}

func TestAllCodesRegistered(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template %+v", code, tmpl)
		}
	}
}
