package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
)

func TestLayoutRunsConfigEveryPass(t *testing.T) {
	h := newHarness(t)
	calls := 0
	var sizes []view.Size
	build := func() *vdom.Node {
		return vdom.Table(
			func(v view.View, size view.Size) {
				view.BaseOf(v).Layout.PaddingTop = 64
			},
			vdom.Card(vdom.Key("c"), func(v view.View, size view.Size) {
				calls++
				sizes = append(sizes, size)
				v.(*view.Card).Title = "card"
			}),
		)
	}
	bounds := view.Size{Width: 320, Height: 480}

	h.render(build())
	h.applier.Layout(h.tree, bounds)
	ops := h.render(build())
	h.applier.Layout(h.tree, bounds)

	if len(ops) != 0 {
		t.Fatalf("ops = %v, want none", ops)
	}
	if calls != 2 {
		t.Fatalf("config calls = %d, want 2", calls)
	}
	want := view.Size{Width: 320, Height: view.CardHeight}
	for i, s := range sizes {
		if s != want {
			t.Errorf("call %d: size = %v, want %v", i, s, want)
		}
	}

	card := h.tree.View("/i:0/k:c").(*view.Card)
	if card.Title != "card" || card.Frame != want {
		t.Errorf("card = %q %v", card.Title, card.Frame)
	}
	if got := view.BaseOf(h.rootView()).Frame; got != bounds {
		t.Errorf("table frame = %v, want %v", got, bounds)
	}
}

func TestLayoutFollowsBoundsChange(t *testing.T) {
	h := newHarness(t)
	var got []view.Size
	build := func() *vdom.Node {
		return vdom.Table(
			func(v view.View, size view.Size) {
				got = append(got, size)
				b := view.BaseOf(v)
				b.Layout.Width = size.Width
				b.Layout.Height = size.Height
			},
			vdom.Box(vdom.Key("row"), func(v view.View, size view.Size) {
				view.BaseOf(v).Layout.Width = size.Width
			}, vdom.Label()),
		)
	}
	h.render(build())

	sizes := []view.Size{
		{Width: 375, Height: 812},
		{Width: 600, Height: 400},
		{Width: 600, Height: 400},
		{Width: 320, Height: 480},
	}
	for _, bounds := range sizes {
		h.applier.Layout(h.tree, bounds)
		if f := view.BaseOf(h.rootView()).Frame; f != bounds {
			t.Errorf("table frame = %v, want %v", f, bounds)
		}
		row := h.tree.View("/i:0/k:row")
		if w := view.BaseOf(row).Frame.Width; w != bounds.Width {
			t.Errorf("row width = %v, want %v", w, bounds.Width)
		}
	}
	if diff := cmp.Diff(sizes, got); diff != "" {
		t.Errorf("config sizes (-want +got):\n%s", diff)
	}
}

func TestLayoutSkipsLeavingInStacking(t *testing.T) {
	var done []func()
	h := newHarness(t, WithExitAnimation(func(_ view.View, d func()) { done = append(done, d) }))
	rows := func(keys ...string) *vdom.Node {
		box := vdom.Box(vdom.Key("list"))
		for _, k := range keys {
			box.Children = append(box.Children, vdom.Box(vdom.Key(k), vdom.Label()))
		}
		return box
	}
	bounds := view.Size{Width: 100, Height: 500}

	h.render(rows("a", "b", "c"))
	h.applier.Layout(h.tree, bounds)
	if got := view.BaseOf(h.rootView()).Frame.Height; got != 60 {
		t.Fatalf("height = %v, want 60", got)
	}

	h.render(rows("a", "c"))
	h.applier.Layout(h.tree, bounds)
	if len(done) != 1 || len(h.rootView().Subviews()) != 3 {
		t.Fatalf("exits = %d, subviews = %d", len(done), len(h.rootView().Subviews()))
	}
	if got := view.BaseOf(h.rootView()).Frame.Height; got != 40 {
		t.Errorf("height while b leaves = %v, want 40", got)
	}

	done[0]()
	h.applier.Layout(h.tree, bounds)
	if got := view.BaseOf(h.rootView()).Frame.Height; got != 40 {
		t.Errorf("height after exit = %v, want 40", got)
	}
}

func TestLayoutSkipsHiddenInStacking(t *testing.T) {
	h := newHarness(t)
	h.render(vdom.Box(
		vdom.Label(),
		vdom.Label(func(v view.View, _ view.Size) { view.BaseOf(v).Hidden = true }),
	))
	h.applier.Layout(h.tree, view.Size{Width: 100, Height: 100})

	if got := view.BaseOf(h.rootView()).Frame.Height; got != 20 {
		t.Errorf("box height = %v, want 20", got)
	}
}

func TestLayoutEmptyTree(t *testing.T) {
	h := newHarness(t)
	h.applier.Layout(h.tree, view.Size{Width: 1, Height: 1})
}

func TestSnapshot(t *testing.T) {
	h := newHarness(t)
	if h.tree.Snapshot() != nil {
		t.Fatal("empty tree should have no snapshot")
	}

	next := keyedList("a", "b")
	h.render(next)
	h.applier.Layout(h.tree, view.Size{Width: 200, Height: 300})

	s := h.tree.Snapshot()
	if s.Count() != next.Count() {
		t.Fatalf("Count = %d, want %d", s.Count(), next.Count())
	}
	if s.Type != view.TypeTable || s.Key != "list" || s.Path != "/k:list" {
		t.Errorf("root = %+v", s)
	}
	if s.Children[1].Key != "b" || s.Children[1].Frame.Width != 200 {
		t.Errorf("second child = %+v", s.Children[1])
	}
}
