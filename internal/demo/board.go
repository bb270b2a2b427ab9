// Package demo is the sample application served by `ripple serve`: a
// keyed task list that a ticker keeps reshuffling.
package demo

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/vdom"
)

// Item is one row of the board.
type Item struct {
	ID    string
	Title string
	Done  bool
}

// State is the board's reactive target.
type State struct {
	Title string
	Items []Item
}

// Board owns the demo state. Every method must run on the runtime's loop
// goroutine.
type Board struct {
	state *State
	obj   *reactive.Object
	done  *reactive.Computed[int]
	rng   *rand.Rand
	next  int
	view  *vdom.Component
}

var titles = []string{
	"write tests", "fix flaky build", "review diff", "update docs",
	"bump deps", "profile allocs", "tag release", "triage issues",
}

// New creates a board with n items. The same seed yields the same items
// and the same sequence of Step mutations.
func New(rt *reactive.Runtime, seed uint64, n int) *Board {
	b := &Board{
		state: &State{Title: "ripple board"},
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for range n {
		b.state.Items = append(b.state.Items, b.newItem())
	}
	b.obj = reactive.Reactive(rt, b.state)
	b.done = reactive.NewComputed(rt, func() int {
		count := 0
		for _, it := range b.Items() {
			if it.Done {
				count++
			}
		}
		return count
	})
	b.view = vdom.Define("Board", b.setup)
	return b
}

func (b *Board) newItem() Item {
	b.next++
	return Item{
		ID:    fmt.Sprintf("t%d", b.next),
		Title: titles[b.rng.IntN(len(titles))],
	}
}

// View returns the board's root node.
func (b *Board) View() *vdom.VNode {
	return vdom.C(b.view)
}

// Items returns the current items, tracking the read.
func (b *Board) Items() []Item {
	return reactive.Get[[]Item](b.obj, "Items")
}

// Done returns how many items are done.
func (b *Board) Done() int {
	return b.done.Get()
}

// SetTitle replaces the heading.
func (b *Board) SetTitle(title string) {
	b.obj.Set("Title", title)
}

// Add appends a new item and returns its ID.
func (b *Board) Add() string {
	it := b.newItem()
	b.setItems(append(slices.Clone(b.peek()), it))
	return it.ID
}

// Remove deletes the item with id. Unknown IDs are ignored.
func (b *Board) Remove(id string) {
	items := b.peek()
	i := slices.IndexFunc(items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return
	}
	b.setItems(slices.Delete(slices.Clone(items), i, i+1))
}

// Toggle flips the done flag of the item with id.
func (b *Board) Toggle(id string) {
	items := slices.Clone(b.peek())
	for i := range items {
		if items[i].ID == id {
			items[i].Done = !items[i].Done
			b.setItems(items)
			return
		}
	}
}

// Shuffle reorders the items.
func (b *Board) Shuffle() {
	items := slices.Clone(b.peek())
	b.rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	b.setItems(items)
}

// Step applies one random mutation: shuffle, toggle, add or remove. The
// board never shrinks below two items or grows past twelve.
func (b *Board) Step() {
	items := b.peek()
	switch n := b.rng.IntN(4); {
	case n == 0 || len(items) == 0:
		b.Shuffle()
	case n == 1:
		b.Toggle(items[b.rng.IntN(len(items))].ID)
	case n == 2 && len(items) < 12:
		b.Add()
	case len(items) > 2:
		b.Remove(items[b.rng.IntN(len(items))].ID)
	default:
		b.Shuffle()
	}
}

func (b *Board) peek() []Item {
	var items []Item
	b.obj.Runtime().Untracked(func() { items = b.Items() })
	return items
}

func (b *Board) setItems(items []Item) {
	b.obj.Set("Items", items)
}
