package demo

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/tablenode/internal/config"
	"github.com/vango-dev/tablenode/pkg/component"
	"github.com/vango-dev/tablenode/pkg/vdom"
	"github.com/vango-dev/tablenode/pkg/view"
)

var bounds = view.Size{Width: 375, Height: 812}

type fixture struct {
	t      *testing.T
	clock  *component.ManualClock
	loop   *component.Loop
	screen *Screen
	infos  []component.RenderInfo
}

func newFixture(t *testing.T, items int, exit time.Duration) *fixture {
	t.Helper()
	cfg := config.New()
	cfg.Demo.Items = items
	cfg.Demo.ExitDuration = config.Duration(exit)

	f := &fixture{t: t, clock: component.NewManualClock(time.Unix(0, 0))}
	f.loop = component.NewLoop(component.WithClock(f.clock))
	f.screen = NewScreen(f.loop, cfg,
		WithRegistry(component.NewRegistry()),
		WithObserver(func(info component.RenderInfo) { f.infos = append(f.infos, info) }),
	)
	if err := f.screen.Load(bounds); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

func (f *fixture) lastOps() []vdom.PatchOp {
	f.t.Helper()
	if len(f.infos) == 0 {
		f.t.Fatal("no renders")
	}
	return f.infos[len(f.infos)-1].Ops
}

// advance moves time forward in small steps, draining the loop after each
// so timers scheduled by timer callbacks fire on time.
func (f *fixture) advance(d time.Duration) {
	const step = 10 * time.Millisecond
	for d > 0 {
		s := min(step, d)
		f.clock.Advance(s)
		f.loop.Drain()
		d -= s
	}
}

func (f *fixture) table() view.View {
	return f.screen.Component().Tree().Root().View
}

func (f *fixture) rowKeys() []string {
	var keys []string
	for _, c := range f.screen.Component().Tree().Root().Children {
		m, _ := f.screen.Component().Tree().Lookup(c)
		keys = append(keys, m.Node.Key)
	}
	return keys
}

func TestLoadRendersRows(t *testing.T) {
	f := newFixture(t, 4, 0)

	if got, want := f.rowKeys(), []string{"cell_0", "cell_1", "cell_2", "cell_3"}; !cmp.Equal(got, want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	if got := vdom.CountOps(f.lastOps())[vdom.OpInsert]; got != 1+4*3 {
		t.Errorf("inserts = %d, want 13", got)
	}

	table := f.table().(*view.Table)
	if table.Frame != bounds || table.Layout.PaddingTop != 64 {
		t.Errorf("table frame = %v, padding = %v", table.Frame, table.Layout.PaddingTop)
	}

	tree := f.screen.Component().Tree()
	card := tree.View(CellPath(1) + "/k:" + CardKey(1)).(*view.Card)
	if card.Title != "Card 1" || card.Expanded || card.Frame.Height != view.CardHeight {
		t.Errorf("card = %+v", card)
	}
	btn := tree.View(ButtonPath(1)).(*view.Button)
	if btn.Title != "DEL" || btn.Hidden || btn.Frame != (view.Size{Width: 32, Height: 32}) {
		t.Errorf("button = %q hidden=%v frame=%v", btn.Title, btn.Hidden, btn.Frame)
	}
	if f.table().Parent() != f.screen.Window() {
		t.Error("table should hang off the window")
	}
}

func TestDeleteScenario(t *testing.T) {
	f := newFixture(t, 4, 0)
	tree := f.screen.Component().Tree()
	kept := map[int]view.View{}
	for _, idx := range []int{0, 1, 3} {
		kept[idx] = tree.View(CellPath(idx))
	}
	leaving := tree.View(CellPath(2))

	if !f.screen.Tap(2) {
		t.Fatal("tap on row 2 was ignored")
	}
	f.loop.Drain()

	// Marking the row only updates it.
	counts := vdom.CountOps(f.lastOps())
	if counts[vdom.OpUpdate] != 2 || len(f.lastOps()) != 2 {
		t.Fatalf("mark ops = %v", f.lastOps())
	}
	if !tree.View(ButtonPath(2)).(*view.Button).Hidden {
		t.Error("button of a pending row should be hidden")
	}
	if !tree.View(CellPath(2) + "/k:" + CardKey(2)).(*view.Card).BeingDeleted {
		t.Error("card of a pending row should be marked")
	}
	if f.screen.Tap(2) {
		t.Error("hidden button should ignore taps")
	}
	if got := f.screen.State(); !cmp.Equal(got, State{Items: []int{0, 1, 2, 3}, IndexBeingDeleted: []int{2}}) {
		t.Errorf("state = %+v", got)
	}

	f.advance(time.Second)
	if len(f.rowKeys()) != 4 {
		t.Fatal("row removed before the delay elapsed")
	}

	f.advance(time.Second)
	ops := f.lastOps()
	counts = vdom.CountOps(ops)
	if len(ops) != 1 || counts[vdom.OpRemove] != 1 || ops[0].Path != CellPath(2) {
		t.Fatalf("delete ops = %v", ops)
	}
	if got, want := f.rowKeys(), []string{"cell_0", "cell_1", "cell_3"}; !cmp.Equal(got, want) {
		t.Errorf("rows = %v", got)
	}
	for idx, v := range kept {
		if tree.View(CellPath(idx)) != v {
			t.Errorf("row %d lost its view", idx)
		}
	}
	if leaving.Parent() != nil {
		t.Error("removed row still attached")
	}

	stats := f.screen.Component().Applier().Pool().Stats()
	retired := stats[view.TypeBox].Retired + stats[view.TypeCard].Retired + stats[view.TypeButton].Retired
	if retired != 3 {
		t.Errorf("released views = %d, want 3", retired)
	}
	if got := f.screen.State(); len(got.IndexBeingDeleted) != 0 {
		t.Errorf("pending = %v", got.IndexBeingDeleted)
	}
}

func TestDeleteFadesOut(t *testing.T) {
	f := newFixture(t, 3, 500*time.Millisecond)
	applier := f.screen.Component().Applier()
	leaving := f.screen.Component().Tree().View(CellPath(1))
	card := f.screen.Component().Tree().View(CellPath(1) + "/k:" + CardKey(1))

	f.screen.Tap(1)
	f.loop.Drain()
	f.advance(2 * time.Second)

	if _, ok := f.screen.Component().Tree().Lookup(CellPath(1)); ok {
		t.Fatal("row should leave the logical tree at once")
	}
	if leaving.Parent() != f.table() || applier.PendingExits() != 1 {
		t.Fatal("row should stay on screen while fading")
	}

	f.advance(200 * time.Millisecond)
	alpha := view.BaseOf(card).Alpha
	if alpha <= 0 || alpha >= 1 {
		t.Errorf("card alpha mid-fade = %v", alpha)
	}
	if a := view.BaseOf(leaving).Alpha; a != 1 {
		t.Errorf("row alpha = %v, only the card fades", a)
	}

	f.advance(300 * time.Millisecond)
	if leaving.Parent() != nil || applier.PendingExits() != 0 {
		t.Error("row should be released once the fade ends")
	}
	if view.BaseOf(card).Alpha != 1 {
		t.Error("released card should be reset")
	}
}

func TestRemoveSeveralRows(t *testing.T) {
	f := newFixture(t, 6, 0)

	f.screen.Tap(1)
	f.loop.Drain()
	f.advance(500 * time.Millisecond)
	f.screen.Tap(4)
	f.loop.Drain()

	f.advance(1500 * time.Millisecond)
	if got := fmt.Sprint(f.screen.State().Items); got != "[0 2 3 4 5]" {
		t.Fatalf("items = %s", got)
	}
	f.advance(500 * time.Millisecond)
	if got := fmt.Sprint(f.screen.State().Items); got != "[0 2 3 5]" {
		t.Fatalf("items = %s", got)
	}
	for _, info := range f.infos {
		if n := vdom.CountOps(info.Ops)[vdom.OpMove]; n != 0 {
			t.Errorf("removal emitted %d moves", n)
		}
	}
}

func TestLayoutSubviews(t *testing.T) {
	f := newFixture(t, 2, 0)
	wide := view.Size{Width: 600, Height: 400}

	if err := f.screen.LayoutSubviews(wide); err != nil {
		t.Fatal(err)
	}
	if len(f.lastOps()) != 0 {
		t.Errorf("resize emitted ops: %v", f.lastOps())
	}
	cell := f.screen.Component().Tree().View(CellPath(0))
	if w := view.BaseOf(cell).Frame.Width; w != 600 {
		t.Errorf("cell width = %v, want 600", w)
	}
}

func TestUnload(t *testing.T) {
	f := newFixture(t, 3, 0)
	btn := f.screen.Component().Tree().View(ButtonPath(0)).(*view.Button)
	f.screen.Unload()
	f.loop.Drain()

	if len(f.screen.Window().Subviews()) != 0 {
		t.Error("window should be empty")
	}
	if btn.Tap() {
		t.Error("released button kept its callback")
	}
	if f.screen.Tap(0) {
		t.Error("tap after unload should do nothing")
	}
	if err := f.screen.Remove(0).Err(); err == nil {
		t.Error("Remove after unload should be rejected")
	}
}

func TestStateHelpers(t *testing.T) {
	s := NewState(3)
	marked := s.markPending(1).markPending(1)
	if !cmp.Equal(marked.IndexBeingDeleted, []int{1}) || s.Pending(1) {
		t.Errorf("markPending = %+v, original = %+v", marked, s)
	}
	dropped := marked.drop(1)
	if !cmp.Equal(dropped.Items, []int{0, 2}) || len(dropped.IndexBeingDeleted) != 0 {
		t.Errorf("drop = %+v", dropped)
	}
	if !cmp.Equal(marked.Items, []int{0, 1, 2}) {
		t.Error("drop modified its input")
	}
}
