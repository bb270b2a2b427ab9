package vdom

import (
	"fmt"

	"github.com/vango-dev/ripple/internal/errors"
)

// patchChildren diffs the children of n1 into n2 by shape. container is
// the host parent of the children and anchor the node they sit before
// (nil for an element's own children, the end anchor for a fragment).
func (r *Renderer) patchChildren(n1, n2 *VNode, container, anchor any) {
	if n2.Shape == ChildrenText {
		if n1.Shape == ChildrenArray {
			r.unmountChildren(n1.Children)
		}
		if n1.Shape != ChildrenText || n1.Text != n2.Text {
			r.setElementText(container, n2.Text)
		}
		return
	}

	switch n1.Shape {
	case ChildrenArray:
		if n2.Shape == ChildrenArray {
			r.patchKeyedChildren(n1.Children, n2.Children, container, anchor)
		} else {
			r.unmountChildren(n1.Children)
		}
	case ChildrenText:
		r.setElementText(container, "")
		if n2.Shape == ChildrenArray {
			r.mountChildren(n2.Children, container, anchor)
		}
	default:
		if n2.Shape == ChildrenArray {
			r.mountChildren(n2.Children, container, anchor)
		}
	}
}

// patchKeyedChildren reconciles c1 into c2: sync the common prefix and
// suffix, then mount or unmount whatever is left on one side, or resolve
// the unordered middle with a key map and move only nodes outside the
// longest increasing run of old positions.
func (r *Renderer) patchKeyedChildren(c1, c2 []*VNode, container, parentAnchor any) {
	r.prepareNewChildren(c1, c2)

	i := 0
	l2 := len(c2)
	e1 := len(c1) - 1
	e2 := l2 - 1

	// Common prefix.
	for i <= e1 && i <= e2 && SameType(c1[i], c2[i]) {
		r.patch(c1[i], c2[i], container, nil)
		i++
	}

	// Common suffix.
	for i <= e1 && i <= e2 && SameType(c1[e1], c2[e2]) {
		r.patch(c1[e1], c2[e2], container, nil)
		e1--
		e2--
	}

	switch {
	case i > e1:
		if i <= e2 {
			anchor := parentAnchor
			if e2+1 < l2 {
				anchor = c2[e2+1].El
			}
			for ; i <= e2; i++ {
				r.patch(nil, c2[i], container, anchor)
			}
		}

	case i > e2:
		for ; i <= e1; i++ {
			r.unmount(c1[i], true)
		}

	default:
		r.patchMiddle(c1, c2, i, e1, e2, container, parentAnchor)
	}
}

func (r *Renderer) patchMiddle(c1, c2 []*VNode, s, e1, e2 int, container, parentAnchor any) {
	l2 := len(c2)

	keyToNewIndex := make(map[string]int, e2-s+1)
	for i := s; i <= e2; i++ {
		k := c2[i].Key
		if k == "" {
			continue
		}
		if _, dup := keyToNewIndex[k]; dup {
			r.duplicateKey(k)
		}
		keyToNewIndex[k] = i
	}

	toBePatched := e2 - s + 1
	patched := 0
	moved := false
	maxNewIndexSoFar := 0
	// newIndexToOldIndex holds old index + 1 per middle slot, 0 for none.
	newIndexToOldIndex := make([]int, toBePatched)

	for i := s; i <= e1; i++ {
		prev := c1[i]
		if patched >= toBePatched {
			r.unmount(prev, true)
			continue
		}

		newIndex := -1
		if prev.Key != "" {
			if j, ok := keyToNewIndex[prev.Key]; ok && newIndexToOldIndex[j-s] == 0 && SameType(prev, c2[j]) {
				newIndex = j
			}
		} else {
			for j := s; j <= e2; j++ {
				if newIndexToOldIndex[j-s] == 0 && SameType(prev, c2[j]) {
					newIndex = j
					break
				}
			}
		}

		if newIndex < 0 {
			r.unmount(prev, true)
			continue
		}
		newIndexToOldIndex[newIndex-s] = i + 1
		if newIndex >= maxNewIndexSoFar {
			maxNewIndexSoFar = newIndex
		} else {
			moved = true
		}
		r.patch(prev, c2[newIndex], container, nil)
		patched++
	}

	var stable []int
	if moved {
		stable = longestIncreasingSubsequence(newIndexToOldIndex)
	}
	j := len(stable) - 1
	for i := toBePatched - 1; i >= 0; i-- {
		nextIndex := s + i
		next := c2[nextIndex]
		anchor := parentAnchor
		if nextIndex+1 < l2 {
			anchor = c2[nextIndex+1].El
		}

		switch {
		case newIndexToOldIndex[i] == 0:
			r.patch(nil, next, container, anchor)
		case !moved:
		case j >= 0 && stable[j] == i:
			j--
		default:
			r.move(next, container, anchor)
		}
	}
}

// prepareNewChildren replaces new children that are committed elsewhere
// with uncommitted copies. Children shared with the old list keep their
// identity so the patch fast path applies.
func (r *Renderer) prepareNewChildren(c1, c2 []*VNode) {
	var old map[*VNode]struct{}
	for i, n := range c2 {
		if n.El == nil && n.Instance == nil {
			continue
		}
		if old == nil {
			old = make(map[*VNode]struct{}, len(c1))
			for _, o := range c1 {
				old[o] = struct{}{}
			}
		}
		if _, shared := old[n]; !shared {
			c2[i] = n.clone()
		}
	}
}

func (r *Renderer) duplicateKey(key string) {
	err := errors.New(errors.ErrDuplicateKey).WithDetail(fmt.Sprintf("key %q", key))
	if r.strictKeys {
		panic(err)
	}
	r.logger.Warn("duplicate key in sibling list, last occurrence wins", "key", key, "error", err)
}
