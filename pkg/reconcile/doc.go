// Package reconcile patches a host tree so that it matches a new virtual
// tree, reusing host nodes wherever the old and new trees describe the
// same logical node.
//
// A Patcher is built once from an ordered list of modules and a host
// adapter:
//
//	p := reconcile.New([]reconcile.Module{attrs, class}, reconcile.WithAdapter(adapter))
//	tree, err := p.PatchHost(container, view(state))
//	...
//	tree, err = p.Patch(tree, view(nextState))
//
// Every call runs one synchronous cycle: module pre hooks, then mounting,
// patching and removal, then the insert hooks of freshly mounted nodes in
// mount order, then module post hooks. The returned tree is the baseline
// for the next call and the previous one must not be reused.
//
// # Modules
//
// A module is any value implementing one or more of PreHook, CreateHook,
// UpdateHook, DestroyHook, RemoveHook and PostHook. The hooks are resolved
// once by New and run in registration order.
//
// # Removal
//
// Removing an element runs the destroy cascade over its subtree and then
// waits until every module remove hook, and the node's own remove hook if
// it has one, has called its done callback. Only then is the host node
// detached. Each done callback counts once, no matter how often it is
// called.
package reconcile
