package memhost

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/vango-dev/ripple/pkg/vdom"
)

// HTML serializes n. Elements render with attributes sorted by name, void
// elements have no closing tag, and function-valued properties are left
// out.
func HTML(n *Node) string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// InnerHTML serializes the children of n.
func InnerHTML(n *Node) string {
	var sb strings.Builder
	for _, c := range n.Children {
		writeNode(&sb, c)
	}
	return sb.String()
}

// WriteHTML streams the children of n to w.
func WriteHTML(w io.Writer, n *Node) error {
	_, err := io.WriteString(w, InnerHTML(n))
	return err
}

func writeNode(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		sb.WriteString(escapeHTML(n.Text))
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(escapeComment(n.Text))
		sb.WriteString("-->")
	case ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.Tag)
		writeAttrs(sb, n.Attrs)
		sb.WriteByte('>')
		if vdom.IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.Children {
			writeNode(sb, c)
		}
		sb.WriteString("</")
		sb.WriteString(n.Tag)
		sb.WriteByte('>')
	}
}

func writeAttrs(sb *strings.Builder, attrs map[string]any) {
	for _, key := range slices.Sorted(maps.Keys(attrs)) {
		switch v := attrs[key].(type) {
		case nil:
		case bool:
			if v {
				sb.WriteByte(' ')
				sb.WriteString(key)
			}
		default:
			if isFunc(v) {
				continue
			}
			fmt.Fprintf(sb, ` %s="%s"`, key, escapeAttr(attrToString(v)))
		}
	}
}

// attrToString converts a property value to its attribute text.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func isFunc(value any) bool {
	return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
}
