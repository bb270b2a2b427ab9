package vdom

// Host calls go through these wrappers so every operation is counted.

func (r *Renderer) createElement(tag string) any {
	r.metrics.HostOp("create_element")
	return r.host.CreateElement(tag)
}

func (r *Renderer) createText(content string) any {
	r.metrics.HostOp("create_text")
	return r.host.CreateText(content)
}

func (r *Renderer) createComment(content string) any {
	r.metrics.HostOp("create_comment")
	return r.host.CreateComment(content)
}

func (r *Renderer) setElementText(node any, text string) {
	r.metrics.HostOp("set_element_text")
	r.host.SetElementText(node, text)
}

func (r *Renderer) setText(node any, text string) {
	r.metrics.HostOp("set_text")
	r.host.SetText(node, text)
}

func (r *Renderer) patchProp(node any, key string, prev, next any) {
	r.metrics.HostOp("patch_prop")
	r.host.PatchProp(node, key, prev, next)
}

func (r *Renderer) insert(node, parent, anchor any) {
	r.metrics.HostOp("insert")
	r.host.Insert(node, parent, anchor)
}

func (r *Renderer) remove(node any) {
	r.metrics.HostOp("remove")
	r.host.Remove(node)
}
