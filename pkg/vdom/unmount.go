package vdom

// unmount tears down n. Components stop their render effect and dispose
// their scope before their subtree is unmounted. Element subtrees are
// walked only to tear down nested components; the element itself is
// detached with a single Remove. When doRemove is false the host nodes are
// left in place because an ancestor is being removed.
func (r *Renderer) unmount(n *VNode, doRemove bool) {
	switch n.Kind {
	case KindComponent:
		if inst := n.Instance; inst != nil {
			inst.teardown()
			if inst.subTree != nil {
				r.unmount(inst.subTree, doRemove)
			}
		}

	case KindFragment:
		for _, child := range n.Children {
			r.unmount(child, doRemove)
		}
		if doRemove {
			r.remove(n.El)
			r.remove(n.Anchor)
		}

	case KindElement:
		if n.Shape == ChildrenArray {
			for _, child := range n.Children {
				if hasComponents(child) {
					r.unmount(child, false)
				}
			}
		}
		if doRemove {
			r.remove(n.El)
		}

	default:
		if doRemove {
			r.remove(n.El)
		}
	}
}

func (r *Renderer) unmountChildren(children []*VNode) {
	for _, child := range children {
		r.unmount(child, true)
	}
}

// hasComponents reports whether n's subtree contains a component.
func hasComponents(n *VNode) bool {
	switch n.Kind {
	case KindComponent:
		return true
	case KindElement, KindFragment:
		for _, child := range n.Children {
			if hasComponents(child) {
				return true
			}
		}
	}
	return false
}

// move re-inserts the host nodes of n before anchor.
func (r *Renderer) move(n *VNode, container, anchor any) {
	r.metrics.Moved()
	r.moveNodes(n, container, anchor)
}

func (r *Renderer) moveNodes(n *VNode, container, anchor any) {
	switch n.Kind {
	case KindComponent:
		if n.Instance != nil && n.Instance.subTree != nil {
			r.moveNodes(n.Instance.subTree, container, anchor)
		}
	case KindFragment:
		r.insert(n.El, container, anchor)
		for _, child := range n.Children {
			r.moveNodes(child, container, anchor)
		}
		r.insert(n.Anchor, container, anchor)
	default:
		r.insert(n.El, container, anchor)
	}
}
