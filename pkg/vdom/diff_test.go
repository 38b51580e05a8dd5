package vdom

import (
	stderrors "errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// model is a path-level stand-in for a concrete view tree.
type model map[string][]string

func (m model) apply(t *testing.T, ops []PatchOp) {
	t.Helper()
	for _, op := range ops {
		switch op.Op {
		case OpInsert:
			list := m[op.ParentPath]
			if op.Index < 0 || op.Index > len(list) {
				t.Fatalf("%v: index out of range (len %d)", op, len(list))
			}
			m[op.ParentPath] = slices.Insert(list, op.Index, op.Path)
			if _, ok := m[op.Path]; !ok {
				m[op.Path] = nil
			}
		case OpRemove:
			parent := m.parentOf(t, op.Path)
			m[parent] = slices.DeleteFunc(m[parent], func(p string) bool { return p == op.Path })
			m.drop(op.Path)
		case OpMove:
			parent := m.parentOf(t, op.Path)
			list := slices.DeleteFunc(m[parent], func(p string) bool { return p == op.Path })
			if op.Index < 0 || op.Index > len(list) {
				t.Fatalf("%v: index out of range (len %d)", op, len(list))
			}
			m[parent] = slices.Insert(list, op.Index, op.Path)
		case OpUpdate:
			m.parentOf(t, op.Path)
		}
	}
}

func (m model) parentOf(t *testing.T, path string) string {
	t.Helper()
	for parent, children := range m {
		if slices.Contains(children, path) {
			return parent
		}
	}
	t.Fatalf("path %s not in tree", path)
	return ""
}

func (m model) drop(path string) {
	for _, c := range m[path] {
		m.drop(c)
	}
	delete(m, path)
}

func modelOf(root *Node) model {
	m := model{"": nil}
	Walk(root, func(path, parent string, _ int, _ *Node) bool {
		m[parent] = append(m[parent], path)
		if _, ok := m[path]; !ok {
			m[path] = nil
		}
		return true
	})
	return m
}

// checkDiff diffs prev -> next, applies the ops to a model of prev, and
// requires the result to match a model of next.
func checkDiff(t *testing.T, prev, next *Node) []PatchOp {
	t.Helper()
	ops, err := Diff(prev, next)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	got := modelOf(prev)
	got.apply(t, ops)
	want := modelOf(next)
	if d := cmp.Diff(want, got, cmpopts.EquateEmpty()); d != "" {
		t.Fatalf("applied tree mismatch (-want +got):\n%s\nops:\n%s", d, dump(ops))
	}
	return ops
}

func dump(ops []PatchOp) string {
	var b strings.Builder
	for _, op := range ops {
		b.WriteString("  " + op.String() + "\n")
	}
	return b.String()
}

func keyedList(keys ...int) *Node {
	n := Table(Key("list"))
	for _, k := range keys {
		n.Children = append(n.Children, Box(Key(fmt.Sprintf("item_%d", k))))
	}
	return n
}

func TestDiffBothNil(t *testing.T) {
	ops, err := Diff(nil, nil)
	if err != nil || len(ops) != 0 {
		t.Errorf("Diff(nil, nil) = %v, %v", ops, err)
	}
}

func TestDiffInitialInsert(t *testing.T) {
	next := Table(Key("cards"), Box(Key("a"), Card(), Button()), Box(Key("b")))

	ops := checkDiff(t, nil, next)

	if len(ops) != 5 {
		t.Fatalf("Expected 5 inserts, got %d:\n%s", len(ops), dump(ops))
	}
	for _, op := range ops {
		if op.Op != OpInsert {
			t.Errorf("Op = %v, want Insert", op.Op)
		}
	}
	if ops[0].Path != "/k:cards" || ops[0].ParentPath != "" {
		t.Errorf("root insert = %v", ops[0])
	}
	if ops[2].Path != "/k:cards/k:a/i:0" || ops[2].ParentPath != "/k:cards/k:a" {
		t.Errorf("pre-order insert = %v", ops[2])
	}
}

func TestDiffRootRemoved(t *testing.T) {
	prev := Table(Key("cards"), Box(), Box())

	ops, err := Diff(prev, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 1 || ops[0].Op != OpRemove || ops[0].Path != "/k:cards" {
		t.Errorf("ops = %v", ops)
	}
}

func TestDiffRootTypeChange(t *testing.T) {
	ops := checkDiff(t, Box(Label()), Table(Label()))

	if len(ops) != 3 || ops[0].Op != OpRemove || ops[1].Op != OpInsert {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffIdenticalTreesEmitNothing(t *testing.T) {
	build := func() *Node {
		return Table(Key("cards"),
			Box(Key("cell_0"), Card(Key("card_0"), Props(false)), Button(Props(false))),
			Box(Key("cell_1"), Card(Key("card_1"), Props(false)), Button(Props(false))),
			Label(), Label(),
		)
	}

	ops, err := Diff(build(), build())
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 0 {
		t.Errorf("Expected 0 ops for rebuilt tree, got:\n%s", dump(ops))
	}
}

func TestDiffPropsChangeEmitsUpdate(t *testing.T) {
	type buttonProps struct{ Hidden bool }
	prev := Box(Key("cell"), Button(Props(buttonProps{Hidden: false})))
	next := Box(Key("cell"), Button(Props(buttonProps{Hidden: true})))

	ops := checkDiff(t, prev, next)

	if len(ops) != 1 {
		t.Fatalf("Expected 1 op, got:\n%s", dump(ops))
	}
	if ops[0].Op != OpUpdate || ops[0].Path != "/k:cell/i:0" || ops[0].Node != next.Children[0] {
		t.Errorf("op = %v", ops[0])
	}
}

func TestDiffChildTypeChangeReplaces(t *testing.T) {
	ops := checkDiff(t, Box(Label()), Box(Button()))

	counts := CountOps(ops)
	if counts[OpRemove] != 1 || counts[OpInsert] != 1 || len(ops) != 2 {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffKeyedRotationEmitsTwoMoves(t *testing.T) {
	ops := checkDiff(t, keyedList(0, 1, 2), keyedList(2, 0, 1))

	counts := CountOps(ops)
	if counts[OpMove] != 2 || counts[OpInsert] != 0 || counts[OpRemove] != 0 {
		t.Errorf("counts = %v, ops:\n%s", counts, dump(ops))
	}
}

func TestDiffKeyedMoveToEnd(t *testing.T) {
	ops := checkDiff(t, keyedList(0, 1, 2, 3), keyedList(1, 2, 3, 0))

	if len(ops) != 1 || ops[0].Op != OpMove || ops[0].Key != "item_0" || ops[0].Index != 3 {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffKeyedRemovalEmitsNoMoves(t *testing.T) {
	ops := checkDiff(t, keyedList(0, 1, 2, 3), keyedList(0, 1, 3))

	if len(ops) != 1 || ops[0].Op != OpRemove || ops[0].Path != "/k:list/k:item_2" {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffKeyedInsertEmitsNoMoves(t *testing.T) {
	ops := checkDiff(t, keyedList(0, 1, 3), keyedList(0, 1, 2, 3))

	if len(ops) != 1 || ops[0].Op != OpInsert || ops[0].Index != 2 {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffKeylessMatchedPositionally(t *testing.T) {
	prev := Box(Label(Props("a")), Label(Props("b")), Label(Props("c")))
	next := Box(Label(Props("a")), Label(Props("b")))

	ops := checkDiff(t, prev, next)

	// The trailing positional child goes away; nothing else changes.
	if len(ops) != 1 || ops[0].Op != OpRemove || ops[0].Path != "/i:0/i:2" {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffKeylessReorderBecomesUpdates(t *testing.T) {
	prev := Box(Label(Props("a")), Label(Props("b")))
	next := Box(Label(Props("b")), Label(Props("a")))

	ops := checkDiff(t, prev, next)

	counts := CountOps(ops)
	if counts[OpUpdate] != 2 || counts[OpMove] != 0 {
		t.Errorf("keyless siblings should be rebound in place, ops:\n%s", dump(ops))
	}
}

func TestDiffMixedKeyedPriority(t *testing.T) {
	// A keyed card is inserted ahead of the keyless button; the button keeps
	// its identity and is not re-created.
	prev := Box(Key("cell"), Button(Props("del")))
	next := Box(Key("cell"), Card(Key("card")), Button(Props("del")))

	ops := checkDiff(t, prev, next)

	if len(ops) != 1 || ops[0].Op != OpInsert || ops[0].Key != "card" || ops[0].Index != 0 {
		t.Errorf("ops:\n%s", dump(ops))
	}
}

func TestDiffDuplicateKeyFails(t *testing.T) {
	_, err := Diff(keyedList(0, 1), keyedList(0, 0))
	if !stderrors.Is(err, ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}

	_, err = Diff(keyedList(1, 1), keyedList(0, 1))
	if !stderrors.Is(err, ErrDuplicateKey) {
		t.Errorf("duplicate in previous tree: err = %v", err)
	}
}

func TestDiffRandomKeyedPermutations(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 300; iter++ {
		prevKeys := rng.Perm(rng.Intn(10))
		nextKeys := make([]int, 0, len(prevKeys)+3)
		for _, k := range rng.Perm(len(prevKeys) + 3) {
			if rng.Intn(4) != 0 {
				nextKeys = append(nextKeys, k)
			}
		}

		prev, next := keyedList(prevKeys...), keyedList(nextKeys...)
		ops := checkDiff(t, prev, next)

		common := make(map[string]bool)
		for _, k := range prevKeys {
			if slices.Contains(nextKeys, k) {
				common[fmt.Sprintf("item_%d", k)] = true
			}
		}
		for _, op := range ops {
			if (op.Op == OpRemove || op.Op == OpInsert) && common[op.Key] {
				t.Fatalf("%v -> %v: keyed item %s was recreated:\n%s", prevKeys, nextKeys, op.Key, dump(ops))
			}
		}

		again, _ := Diff(next, keyedList(nextKeys...))
		if len(again) != 0 {
			t.Fatalf("re-diff of %v not empty:\n%s", nextKeys, dump(again))
		}
	}
}

func TestDiffRandomNestedTrees(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	var build func(depth int) *Node
	build = func(depth int) *Node {
		n := Box()
		if depth == 0 {
			return n
		}
		for _, k := range rng.Perm(rng.Intn(5)) {
			var child *Node
			switch rng.Intn(3) {
			case 0:
				child = build(depth - 1)
			case 1:
				child = Label(Props(rng.Intn(2)))
			default:
				child = build(depth - 1)
				child.Key = fmt.Sprintf("k%d", k)
			}
			n.Children = append(n.Children, child)
		}
		return n
	}

	for iter := 0; iter < 200; iter++ {
		checkDiff(t, build(3), build(3))
	}
}
