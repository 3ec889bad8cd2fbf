// Package vtest provides testing helpers for code built on vpatch.
//
// # Hook Recorder
//
// Recorder is a module that logs every module hook call, and its Hooks
// method returns per-node hooks that log into the same journal, so tests
// can assert the exact order of lifecycle transitions:
//
//	rec := vtest.NewRecorder()
//	p := reconcile.New([]reconcile.Module{rec}, reconcile.WithAdapter(memhost.New()))
//	...
//	if diff := cmp.Diff([]string{"pre", "create:div", "post"}, rec.Calls()); diff != "" {
//	    t.Errorf("calls mismatch (-want +got):\n%s", diff)
//	}
//
// # Harness
//
// Harness bundles an in-memory host, a container element and a Patcher,
// and keeps the baseline between cycles:
//
//	h := vtest.NewHarness(t)
//	h.Render(vdom.H("ul", items...))
//	vtest.ExpectMarkup(t, h.Root(), `<div><ul>...</ul></div>`)
//
// # Deferred Removal
//
// Deferrer is a module whose remove hook holds the done callback until the
// test releases it, for exercising animated removal.
package vtest
