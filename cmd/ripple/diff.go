package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/host/wirehost"
	"github.com/vango-dev/ripple/pkg/protocol"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/vdom"
)

func diffCmd() *cobra.Command {
	var showHTML bool

	cmd := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Print the ops that turn one keyed list into another",
		Long: `Render a keyed <ul> from the comma-separated keys in <from>, switch
it to <to>, and print the host operations the patch produced.

Examples:
  ripple diff a,b,c,d c,a,b,d
  ripple diff a,b,c a,x,c --html`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to := splitKeys(args[0]), splitKeys(args[1])
			f, html, err := diffLists(from, to)
			if err != nil {
				return err
			}
			printFrame(cmd.OutOrStdout(), f)
			if showHTML {
				fmt.Fprintln(cmd.OutOrStdout(), html)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showHTML, "html", false, "Also print the resulting HTML")

	return cmd
}

func splitKeys(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// diffLists mounts from, patches to and returns the frame of the patch.
func diffLists(from, to []string) (*protocol.OpsFrame, string, error) {
	for _, keys := range [][]string{from, to} {
		if err := checkKeys(keys); err != nil {
			return nil, "", err
		}
	}

	rt := reactive.NewRuntime()
	h := wirehost.New()
	r := vdom.NewRenderer(h, vdom.WithRuntime(rt), vdom.WithStrictKeys(true))

	list := reactive.NewRef(rt, from)
	comp := vdom.Define("List", func(*vdom.SetupContext) vdom.RenderFunc {
		return func(vdom.Props) *vdom.VNode {
			return vdom.Ul(vdom.Range(list.Get(), func(k string, _ int) *vdom.VNode {
				return vdom.Li(vdom.Key(k), vdom.Text(k))
			}))
		}
	})

	r.Render(vdom.C(comp), h.Root())
	h.Flush()

	list.Set(to)
	rt.Tick()

	f := h.Flush()
	if f == nil {
		f = &protocol.OpsFrame{Seq: h.NextSeq()}
	}
	return f, h.Mirror().HTML(), nil
}

func checkKeys(keys []string) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return errors.New(errors.ErrDuplicateKey).WithDetail(strconv.Quote(k))
		}
		seen[k] = true
	}
	return nil
}

func printFrame(w io.Writer, f *protocol.OpsFrame) {
	inserts := 0
	for i := range f.Ops {
		op := &f.Ops[i]
		fmt.Fprintln(w, formatOp(op))
		if op.Code == protocol.OpInsert {
			inserts++
		}
	}
	fmt.Fprintf(w, "%d ops, %d inserts (seq %d)\n", len(f.Ops), inserts, f.Seq)
}

func formatOp(op *protocol.Op) string {
	switch op.Code {
	case protocol.OpCreateElement:
		return fmt.Sprintf("%s #%d <%s>", op.Code, op.Node, op.Tag)
	case protocol.OpCreateText, protocol.OpCreateComment, protocol.OpSetText, protocol.OpSetElementText:
		return fmt.Sprintf("%s #%d %q", op.Code, op.Node, op.Text)
	case protocol.OpSetProp:
		return fmt.Sprintf("%s #%d %s=%v", op.Code, op.Node, op.Key, op.Value.Any())
	case protocol.OpRemoveProp:
		return fmt.Sprintf("%s #%d %s", op.Code, op.Node, op.Key)
	case protocol.OpInsert:
		if op.Anchor == 0 {
			return fmt.Sprintf("%s #%d into #%d", op.Code, op.Node, op.Parent)
		}
		return fmt.Sprintf("%s #%d into #%d before #%d", op.Code, op.Node, op.Parent, op.Anchor)
	default:
		return fmt.Sprintf("%s #%d", op.Code, op.Node)
	}
}
