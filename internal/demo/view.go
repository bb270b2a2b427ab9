package demo

import (
	"github.com/vango-dev/ripple/pkg/vdom"
)

// Row renders one item. Rows re-render only when their item changes.
var Row = vdom.Define("Row", func(ctx *vdom.SetupContext) vdom.RenderFunc {
	return func(props vdom.Props) *vdom.VNode {
		it, _ := props["item"].(Item)
		class := "item"
		if it.Done {
			class = "item done"
		}
		return vdom.Li(
			vdom.Class(class),
			vdom.Data("id", it.ID),
			vdom.Span(vdom.Class("title"), vdom.Text(it.Title)),
			vdom.If(it.Done, vdom.Strong(vdom.Text("done"))),
		)
	}
})

func (b *Board) setup(ctx *vdom.SetupContext) vdom.RenderFunc {
	return func(vdom.Props) *vdom.VNode {
		items := b.Items()
		return vdom.Div(
			vdom.Class("board"),
			vdom.H1(vdom.Text(b.obj.Get("Title").(string))),
			vdom.P(vdom.Class("summary"), vdom.Textf("%d of %d done", b.Done(), len(items))),
			vdom.Ul(
				vdom.Class("items"),
				vdom.Range(items, func(it Item, _ int) *vdom.VNode {
					return vdom.C(Row, vdom.Key(it.ID), vdom.Prop("item", it))
				}),
			),
		)
	}
}
