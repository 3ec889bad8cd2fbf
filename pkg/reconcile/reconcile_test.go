package reconcile_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/vpatch/pkg/host"
	"github.com/vango-dev/vpatch/pkg/host/htmlhost"
	"github.com/vango-dev/vpatch/pkg/host/memhost"
	"github.com/vango-dev/vpatch/pkg/reconcile"
	"github.com/vango-dev/vpatch/pkg/vdom"
	"github.com/vango-dev/vpatch/pkg/vtest"
)

func list(keys ...int) *vdom.VNode {
	return vdom.H("ul", vtest.Items(keys...))
}

func TestMountWithDefaultAdapter(t *testing.T) {
	p := reconcile.New(nil)
	container, err := htmlhost.Parse(`<div id="app"></div>`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tree, err := p.PatchHost(container, vdom.H("div#app", vdom.H("p.lead.big", "hi")))
	if err != nil {
		t.Fatalf("PatchHost: %v", err)
	}
	if tree.Elm != container {
		t.Error("root with matching selector should reuse the host node")
	}

	got := htmlhost.RenderString(container)
	want := `<div id="app"><p class="lead big">hi</p></div>`
	if got != want {
		t.Errorf("markup = %s, want %s", got, want)
	}
}

func TestIdempotentPatch(t *testing.T) {
	build := func() *vdom.VNode {
		return vdom.H("div#root.a",
			vdom.H("h1", "Title"),
			vdom.H("ul", vtest.Items(1, 2, 3)),
			vdom.Comment("note"),
			"tail",
		)
	}

	h := vtest.NewHarness(t)
	h.Render(build())
	h.Render(build())

	vtest.ExpectStats(t, h.Host, memhost.Stats{})
	if h.Host.Stats.TextSets != 0 {
		t.Errorf("TextSets = %d, want 0", h.Host.Stats.TextSets)
	}
}

func TestIdempotentPatchOfClone(t *testing.T) {
	h := vtest.NewHarness(t)
	tree := h.Render(list(1, 2, 3))
	h.Render(vdom.Clone(tree))

	if h.Host.Stats.Structural() != 0 {
		t.Errorf("structural mutations = %+v, want none", h.Host.Stats)
	}
}

func TestKeyedReorder(t *testing.T) {
	h := vtest.NewHarness(t)
	old := h.Render(list(1, 2, 3))
	before := map[string]host.Node{}
	for _, ch := range old.Children {
		before[ch.Key.String()] = ch.Elm
	}

	next := h.Render(list(3, 1, 2))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>3</li><li>1</li><li>2</li></ul></div>")
	vtest.ExpectStats(t, h.Host, memhost.Stats{Moved: 1})
	for _, ch := range next.Children {
		if ch.Elm != before[ch.Key.String()] {
			t.Errorf("li#%s was not reused", ch.Key)
		}
	}

	stats := h.Patcher.Stats()
	if stats.Created != 0 || stats.Removed != 0 || stats.Moved != 1 {
		t.Errorf("Stats() = %+v, want 0 created, 0 removed, 1 moved", stats)
	}
	if stats.Patched != 4 {
		t.Errorf("Patched = %d, want 4", stats.Patched)
	}
}

func TestKeyedReverse(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(list(1, 2, 3, 4, 5))
	h.Render(list(5, 4, 3, 2, 1))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>5</li><li>4</li><li>3</li><li>2</li><li>1</li></ul></div>")
	if h.Host.Stats.Created != 0 || h.Host.Stats.Removed != 0 {
		t.Errorf("stats = %+v, want no creations or removals", h.Host.Stats)
	}
}

func TestKeyedShuffleThroughKeyMap(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(list(1, 2, 3, 4, 5))
	h.Render(list(4, 1, 5, 2, 3))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>4</li><li>1</li><li>5</li><li>2</li><li>3</li></ul></div>")
	if h.Host.Stats.Created != 0 || h.Host.Stats.Removed != 0 {
		t.Errorf("stats = %+v, want no creations or removals", h.Host.Stats)
	}
}

func TestPureAppend(t *testing.T) {
	rec := vtest.NewRecorder()
	h := vtest.NewHarness(t, rec)
	h.Render(list(1, 2))
	rec.Reset()

	h.Render(list(1, 2, 3))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>1</li><li>2</li><li>3</li></ul></div>")
	// li and its text node are created; the text is appended to li and li
	// is inserted into ul.
	vtest.ExpectStats(t, h.Host, memhost.Stats{Created: 2, Inserted: 2})
	if diff := cmp.Diff([]string{"create:li#3"}, rec.Filter("create")); diff != "" {
		t.Errorf("create calls mismatch (-want +got):\n%s", diff)
	}
}

func TestPurePrepend(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(list(1, 2))
	h.Render(list(8, 9, 1, 2))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>8</li><li>9</li><li>1</li><li>2</li></ul></div>")
	vtest.ExpectStats(t, h.Host, memhost.Stats{Created: 4, Inserted: 4})
}

func TestPureRemoval(t *testing.T) {
	rec := vtest.NewRecorder()
	h := vtest.NewHarness(t, rec)
	old := h.Render(list(1, 2, 3))
	keep := old.Children[0].Elm
	rec.Reset()

	next := h.Render(list(1))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>1</li></ul></div>")
	vtest.ExpectStats(t, h.Host, memhost.Stats{Removed: 2})
	if next.Children[0].Elm != keep {
		t.Error("li#1 should keep its host node")
	}

	want := []string{
		"pre",
		"update:ul",
		"update:li#1",
		"destroy:li#2",
		"remove:li#2",
		"destroy:li#3",
		"remove:li#3",
		"post",
	}
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRemoveAllChildren(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(list(1, 2))
	h.Render(vdom.H("ul"))
	vtest.ExpectMarkup(t, h.Root(), "<div><ul></ul></div>")
}

func TestDestroyCascade(t *testing.T) {
	rec := vtest.NewRecorder()
	h := vtest.NewHarness(t, rec)
	h.Render(vdom.H("div", vdom.H("section", vdom.H("p", vdom.H("b", "x")), "text", vdom.H("i"))))
	rec.Reset()

	h.Render(vdom.H("div"))

	want := []string{"destroy:section", "destroy:p", "destroy:b", "destroy:i"}
	if diff := cmp.Diff(want, rec.Filter("destroy")); diff != "" {
		t.Errorf("destroy order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"remove:section"}, rec.Filter("remove")); diff != "" {
		t.Errorf("only the removed root gets remove hooks (-want +got):\n%s", diff)
	}
}

func TestChildrenToText(t *testing.T) {
	a := newTraceAdapter()
	p := reconcile.New(nil, reconcile.WithAdapter(a))
	root := a.NewRoot("div")

	tree, _ := p.Mount(root, vdom.H("p", vdom.H("b", "1"), vdom.H("i", "2")))
	a.reset()
	tree, _ = p.Patch(tree, vdom.H("p", "text"))

	want := []string{"remove b", "remove i", `text p "text"`}
	if diff := cmp.Diff(want, a.ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}

	a.reset()
	p.Patch(tree, vdom.H("p", vdom.H("b", "1")))

	want = []string{`text p ""`, "create b", `append "1" to b`, "insert b into p"}
	if diff := cmp.Diff(want, a.ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	vtest.ExpectMarkup(t, root, "<div><p><b>1</b></p></div>")
}

func TestTextToNothing(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(vdom.H("p", "hello"))
	h.Render(vdom.H("p"))
	vtest.ExpectMarkup(t, h.Root(), "<div><p></p></div>")

	h.Render(vdom.H("p", "again"))
	vtest.ExpectMarkup(t, h.Root(), "<div><p>again</p></div>")
	h.Render(vdom.H("p", "again"))
	if h.Host.Stats.TextSets != 0 {
		t.Errorf("equal text should not be rewritten, TextSets = %d", h.Host.Stats.TextSets)
	}
}

func TestUnkeyedTextChildren(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(vdom.H("p", "a", vdom.H("b", "x"), "c"))
	h.Render(vdom.H("p", "a", "c"))
	vtest.ExpectMarkup(t, h.Root(), "<div><p>ac</p></div>")

	h.Render(vdom.H("p", "z", "c"))
	vtest.ExpectMarkup(t, h.Root(), "<div><p>zc</p></div>")
	if h.Host.Stats.Structural() != 0 {
		t.Errorf("text change should be patched in place, stats = %+v", h.Host.Stats)
	}
}

func TestCommentNodes(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(vdom.H("div", vdom.Comment("x")))
	h.Render(vdom.H("div", vdom.Comment("y")))
	vtest.ExpectMarkup(t, h.Root(), "<div><div><!--y--></div></div>")
}

func TestKeyCollisionWithDifferentSelector(t *testing.T) {
	h := vtest.NewHarness(t)
	h.Render(vdom.H("ul", vtest.Items(1, 2)))
	h.Render(vdom.H("ul",
		vdom.H("p", &vdom.Data{Key: vdom.IntKey(2)}, "p"),
		vtest.Items(1),
	))

	vtest.ExpectMarkup(t, h.Root(), "<div><ul><p>p</p><li>1</li></ul></div>")
	if h.Host.Stats.Removed != 1 {
		t.Errorf("Removed = %d, want 1 (the unconsumed li#2)", h.Host.Stats.Removed)
	}
}

func TestDuplicateNewKeysDoNotReuseHoles(t *testing.T) {
	// Validation would reject duplicate keys, so drive the patcher directly.
	a := memhost.New()
	p := reconcile.New(nil, reconcile.WithAdapter(a))
	root := a.NewRoot("div")

	tree, _ := p.Mount(root, vdom.H("ul", vtest.Items(1, 2, 3)))
	p.Patch(tree, vdom.H("ul", vtest.Items(9, 2, 2)))

	vtest.ExpectMarkup(t, root, "<div><ul><li>9</li><li>2</li><li>2</li></ul></div>")
}

func TestHookOrderOnPatch(t *testing.T) {
	rec := vtest.NewRecorder()
	h := vtest.NewHarness(t, rec)
	h.Render(vdom.H("div", &vdom.Data{Hook: rec.Hooks()}, "a"))
	rec.Reset()

	h.Render(vdom.H("div", &vdom.Data{Hook: rec.Hooks()}, "b"))

	want := []string{
		"pre",
		"node.prepatch:div",
		"update:div",
		"node.update:div",
		"node.postpatch:div",
		"post",
	}
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHookOrderOnMount(t *testing.T) {
	rec := vtest.NewRecorder()
	h := vtest.NewHarness(t, rec)
	h.Render(vdom.H("div", &vdom.Data{Hook: rec.Hooks()}, vdom.H("p")))

	want := []string{
		"pre",
		"node.init:div",
		"create:div",
		"create:p",
		"node.create:div",
		"node.insert:div",
		"post",
	}
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestIdenticalInstanceFastPath(t *testing.T) {
	rec := vtest.NewRecorder()
	h := vtest.NewHarness(t, rec)
	shared := vdom.H("span", &vdom.Data{Hook: rec.Hooks()}, "x")
	h.Render(vdom.H("div", shared))
	rec.Reset()

	h.Render(vdom.H("div", shared))

	want := []string{"pre", "update:div", "node.prepatch:span", "post"}
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDeferredInsertHooks(t *testing.T) {
	a := memhost.New()
	root := a.NewRoot("body")
	p := reconcile.New(nil, reconcile.WithAdapter(a))

	var order []string
	hooked := func(sel string, children ...any) *vdom.VNode {
		data := &vdom.Data{Hook: &vdom.Hooks{
			Insert: func(v *vdom.VNode) {
				if !attached(v.Elm.(*memhost.Node), root) {
					t.Errorf("%s insert hook ran before the tree was attached", v.Sel)
				}
				order = append(order, v.Sel)
			},
		}}
		return vdom.H(sel, append([]any{data}, children...)...)
	}

	tree, _ := p.Mount(root, hooked("div", hooked("p", hooked("b")), hooked("span")))
	want := []string{"b", "p", "span", "div"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("insert order mismatch (-want +got):\n%s", diff)
	}

	// Subtrees mounted while patching are attached before their hooks run.
	order = nil
	p.Patch(tree, vdom.H("div", hooked("section", hooked("em"))))
	if diff := cmp.Diff([]string{"em", "section"}, order); diff != "" {
		t.Errorf("insert order mismatch (-want +got):\n%s", diff)
	}
}

func TestInsertHookSurvivesCreateReplacingData(t *testing.T) {
	a := memhost.New()
	root := a.NewRoot("body")
	p := reconcile.New(nil, reconcile.WithAdapter(a))

	var inserted []string
	v := vdom.H("p", &vdom.Data{Hook: &vdom.Hooks{
		Create: func(_, v *vdom.VNode) { v.Data = nil },
		Insert: func(v *vdom.VNode) { inserted = append(inserted, v.Sel) },
	}}, "hi")

	if _, err := p.Mount(root, v); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"p"}, inserted); diff != "" {
		t.Errorf("inserted mismatch (-want +got):\n%s", diff)
	}

	// Dropping the insert hook in create means it is never queued.
	inserted = nil
	w := vdom.H("p", &vdom.Data{Hook: &vdom.Hooks{
		Insert: func(v *vdom.VNode) { inserted = append(inserted, v.Sel) },
	}})
	w.Data.Hook.Create = func(_, v *vdom.VNode) { v.Data.Hook.Insert = nil }
	if _, err := p.Mount(root, w); err != nil {
		t.Fatal(err)
	}
	if len(inserted) != 0 {
		t.Errorf("insert hook ran after create removed it: %v", inserted)
	}
}

func TestRemovalLatch(t *testing.T) {
	d1, d2 := vtest.NewDeferrer(), vtest.NewDeferrer()
	h := vtest.NewHarness(t, d1, d2)

	var own func()
	item := func() *vdom.VNode {
		return vdom.H("li", &vdom.Data{Hook: &vdom.Hooks{
			Remove: func(_ *vdom.VNode, done func()) { own = done },
		}}, "bye")
	}

	h.Render(vdom.H("ul", item()))
	h.Render(vdom.H("ul"))
	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>bye</li></ul></div>")

	d2.Release("li")
	own()
	own() // a second signal from the same participant must not count
	vtest.ExpectMarkup(t, h.Root(), "<div><ul><li>bye</li></ul></div>")
	if h.Host.Stats.Removed != 0 {
		t.Fatal("detached before every participant signaled")
	}

	d1.Release("li")
	vtest.ExpectMarkup(t, h.Root(), "<div><ul></ul></div>")
	if h.Host.Stats.Removed != 1 {
		t.Errorf("Removed = %d, want exactly 1", h.Host.Stats.Removed)
	}

	own()
	if h.Host.Stats.Removed != 1 {
		t.Errorf("late signal detached again, Removed = %d", h.Host.Stats.Removed)
	}
}

func TestRootReplacementFromRawHandle(t *testing.T) {
	a := newTraceAdapter()
	body := a.NewRoot("body")
	old := a.CreateElement("div")
	a.SetAttribute(old, "id", "old")
	a.AppendChild(body, old)
	a.AppendChild(body, a.CreateElement("span"))
	a.reset()

	rec := vtest.NewRecorder()
	p := reconcile.New([]reconcile.Module{rec}, reconcile.WithAdapter(a))
	tree, err := p.PatchHost(old, vdom.H("section#new", "x"))
	if err != nil {
		t.Fatalf("PatchHost: %v", err)
	}

	want := []string{
		"create section",
		`append "x" to section#new`,
		"insert section#new before span",
		"remove div#old",
	}
	if diff := cmp.Diff(want, a.ops); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
	vtest.ExpectMarkup(t, body, `<body><section id="new">x</section><span></span></body>`)
	if !p.Stats().Replaced {
		t.Error("Stats().Replaced should be set")
	}
	if tree.Elm.(*memhost.Node).Parent != body {
		t.Error("new root should take the old node's place")
	}
	if diff := cmp.Diff([]string{"destroy:div#old"}, rec.Filter("destroy")); diff != "" {
		t.Errorf("old root should be destroyed (-want +got):\n%s", diff)
	}
}

func TestRawHandleWithMatchingSelector(t *testing.T) {
	a := memhost.New()
	body := a.NewRoot("body")
	elm := a.CreateElement("div")
	a.SetAttribute(elm, "id", "app")
	a.SetAttribute(elm, "class", "a b")
	a.AppendChild(body, elm)
	a.Reset()

	p := reconcile.New(nil, reconcile.WithAdapter(a))
	tree, _ := p.PatchHost(elm, vdom.H("div#app.a.b", "hi"))

	if tree.Elm != elm {
		t.Error("host node should be reused")
	}
	if a.Stats.Created != 0 {
		t.Errorf("Created = %d, want 0", a.Stats.Created)
	}
	vtest.ExpectMarkup(t, body, `<body><div class="a b" id="app">hi</div></body>`)
}

func TestRootReplacementWithoutParent(t *testing.T) {
	a := memhost.New()
	detached := a.CreateElement("div")
	p := reconcile.New(nil, reconcile.WithAdapter(a))

	tree, _ := p.PatchHost(detached, vdom.H("p", "x"))
	if tree.Elm.(*memhost.Node).Parent != nil {
		t.Error("a root without parent is left for the caller to attach")
	}
	if a.Stats.Removed != 0 {
		t.Errorf("Removed = %d, want 0", a.Stats.Removed)
	}
}

func TestInitHookMayReplaceData(t *testing.T) {
	a := memhost.New()
	root := a.NewRoot("div")
	p := reconcile.New(nil, reconcile.WithAdapter(a))

	inserted := false
	v := vdom.H("circle", &vdom.Data{Hook: &vdom.Hooks{
		Init: func(v *vdom.VNode) {
			v.Data = &vdom.Data{
				NS:   host.NamespaceSVG,
				Hook: &vdom.Hooks{Insert: func(*vdom.VNode) { inserted = true }},
			}
		},
	}})
	p.Mount(root, v)

	if !inserted {
		t.Error("insert hook from the replaced data should run")
	}
	if ns := v.Elm.(*memhost.Node).NS; ns != host.NamespaceSVG {
		t.Errorf("NS = %q, want the namespace from the replaced data", ns)
	}
}

func TestSVGNamespace(t *testing.T) {
	h := vtest.NewHarness(t)
	tree := h.Render(vdom.H("svg", vdom.H("circle"), vdom.H("foreignObject", vdom.H("div"))))

	if ns := tree.Elm.(*memhost.Node).NS; ns != host.NamespaceSVG {
		t.Errorf("svg NS = %q", ns)
	}
	if ns := tree.Children[0].Elm.(*memhost.Node).NS; ns != host.NamespaceSVG {
		t.Errorf("circle NS = %q", ns)
	}
	fo := tree.Children[1]
	if ns := fo.Elm.(*memhost.Node).NS; ns != host.NamespaceSVG {
		t.Errorf("foreignObject NS = %q", ns)
	}
	if ns := fo.Children[0].Elm.(*memhost.Node).NS; ns != "" {
		t.Errorf("div inside foreignObject NS = %q, want none", ns)
	}
}

func TestValidationRejectsBeforeAnyHook(t *testing.T) {
	rec := vtest.NewRecorder()
	a := memhost.New()
	p := reconcile.New([]reconcile.Module{rec}, reconcile.WithAdapter(a), reconcile.WithValidation(true))
	root := a.NewRoot("div")
	tree, _ := p.Mount(root, vdom.H("p", "ok"))
	rec.Reset()
	a.Reset()

	bad := &vdom.VNode{Sel: "p", Data: &vdom.Data{}, Text: "x", HasText: true, Children: []*vdom.VNode{vdom.Text("y")}}
	got, err := p.Patch(tree, bad)
	if !errors.Is(err, vdom.ErrInvalidTree) {
		t.Fatalf("err = %v, want ErrInvalidTree", err)
	}
	if got != nil {
		t.Error("rejected cycle should not return a tree")
	}
	if len(rec.Calls()) != 0 {
		t.Errorf("hooks ran for a rejected tree: %v", rec.Calls())
	}
	if a.Stats != (memhost.Stats{}) {
		t.Errorf("host mutated for a rejected tree: %+v", a.Stats)
	}
}

func TestPatchWithoutBaseline(t *testing.T) {
	p := reconcile.New(nil, reconcile.WithAdapter(htmlhost.New()))

	got, err := p.Patch(nil, vdom.H("div"))
	if !errors.Is(err, reconcile.ErrNoBaseline) {
		t.Fatalf("Patch(nil) err = %v, want ErrNoBaseline", err)
	}
	if got != nil {
		t.Error("Patch(nil) should not return a tree")
	}

	if _, err := p.PatchHost(nil, vdom.H("div")); !errors.Is(err, reconcile.ErrNoBaseline) {
		t.Errorf("PatchHost(nil) err = %v, want ErrNoBaseline", err)
	}
}

func TestModulesWithPartialHooks(t *testing.T) {
	var calls []string
	pre := preOnly(func() { calls = append(calls, "pre1") })
	both := &prePost{calls: &calls}

	h := vtest.NewHarness(t, pre, struct{}{}, nil, both)
	h.Render(vdom.H("div"))

	want := []string{"pre1", "pre2", "post2"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

type preOnly func()

func (f preOnly) Pre() { f() }

type prePost struct{ calls *[]string }

func (m *prePost) Pre()  { *m.calls = append(*m.calls, "pre2") }
func (m *prePost) Post() { *m.calls = append(*m.calls, "post2") }

func TestDebugLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := memhost.New()
	p := reconcile.New(nil, reconcile.WithAdapter(a), reconcile.WithLogger(logger))
	p.Mount(a.NewRoot("div"), list(1, 2))

	out := buf.String()
	if !strings.Contains(out, "reconcile cycle") || !strings.Contains(out, "created=3") {
		t.Errorf("debug record missing or wrong: %s", out)
	}
}
