// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package events_test

import (
	"slices"
	"testing"

	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/tree"
)

// MakeThinTree creates a tree for thinning tests:
// the clade of X is a transmission lineage
// with four terminals,
// and the terminals of E are the exterior pool.
//
//	+ root (deme 0, t 0)
//	+-- X (deme 1, t 1)
//	|   +-- x_1 ... x_4 (deme 1)
//	+-- E (deme 0, t 1)
//	    +-- e_1 ... e_4 (deme 0)
//
// Terminal branch lengths grow with the terminal number,
// so the removal order is known.
func makeThinTree(t testing.TB) (*tree.Tree, []events.Event) {
	t.Helper()

	tr := tree.New("thin", "root")
	tr.Annotate(tr.Root(), 0, 0)

	add := func(parent int, name string, brLen float64, deme int, time float64) int {
		id, err := tr.Add(parent, name, brLen)
		if err != nil {
			t.Fatalf("unable to add node %q: %v", name, err)
		}
		tr.Annotate(id, deme, time)
		return id
	}

	x := add(tr.Root(), "X", 1, 1, 1)
	add(x, "x_1", 1, 1, 2)
	add(x, "x_2", 2, 1, 3)
	add(x, "x_3", 3, 1, 4)
	add(x, "x_4", 4, 1, 5)
	e := add(tr.Root(), "E", 0.5, 0, 1)
	add(e, "e_1", 1, 0, 2)
	add(e, "e_2", 2, 0, 3)
	add(e, "e_3", 3, 0, 4)
	add(e, "e_4", 4, 0, 5)

	ev, err := events.FromTree(tr, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ev) != 1 {
		t.Fatalf("events: got %d, want %d", len(ev), 1)
	}
	return tr, ev
}

func TestThin(t *testing.T) {
	tr, ev := makeThinTree(t)

	// budget is two terminals for the lineage
	// and two for the exterior pool,
	// but every lineage terminal
	// hangs from the event destination,
	// so only the exterior terminals can be removed.
	if err := events.Thin(tr, ev, 4, 4, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, l := range tr.Leaves() {
		got = append(got, tr.Taxon(l))
	}
	slices.Sort(got)
	want := []string{"e_3", "e_4", "x_1", "x_2", "x_3", "x_4"}
	if !slices.Equal(got, want) {
		t.Errorf("terminals: got %v, want %v", got, want)
	}
}

func TestThinBelowTarget(t *testing.T) {
	tr, ev := makeThinTree(t)

	if err := events.Thin(tr, ev, 8, 4, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l := len(tr.Leaves()); l != 8 {
		t.Errorf("terminals: got %d, want %d", l, 8)
	}
}

func TestThinCollapse(t *testing.T) {
	tr := tree.New("collapse", "root")
	tr.Annotate(tr.Root(), 0, 0)

	add := func(parent int, name string, brLen float64, deme int, time float64) int {
		id, err := tr.Add(parent, name, brLen)
		if err != nil {
			t.Fatalf("unable to add node %q: %v", name, err)
		}
		tr.Annotate(id, deme, time)
		return id
	}

	x := add(tr.Root(), "X", 1, 1, 1)
	add(x, "x_1", 1, 1, 2)
	add(x, "x_2", 2, 1, 3)
	e := add(tr.Root(), "E", 0.5, 0, 1)
	add(e, "e_1", 1, 0, 2)
	add(e, "e_2", 5, 0, 6)

	ev, err := events.FromTree(tr, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// removing e_1 collapses E into e_2;
	// after that the parent of e_2 is the root,
	// an anchor node,
	// so the second removal is blocked
	// and thinning stops early.
	if err := events.Thin(tr, ev, 2, 10, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []string
	for _, l := range tr.Leaves() {
		got = append(got, tr.Taxon(l))
	}
	slices.Sort(got)
	want := []string{"e_2", "x_1", "x_2"}
	if !slices.Equal(got, want) {
		t.Errorf("terminals: got %v, want %v", got, want)
	}

	// the branch length of the collapsed parent
	// must be preserved on e_2
	if b := tr.BrLen(tr.TaxNode("e_2")); b != 5.5 {
		t.Errorf("branch length of %q: got %.1f, want %.1f", "e_2", b, 5.5)
	}
	if p := tr.Parent(tr.TaxNode("e_2")); p != tr.Root() {
		t.Errorf("parent of %q: got %d, want the root (%d)", "e_2", p, tr.Root())
	}
}

func TestThinAnchors(t *testing.T) {
	tr, ev := makeThinTree(t)

	// even with an impossible target
	// the anchor terminals must survive
	if err := events.Thin(tr, ev, 1, 4, 1.1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, l := range tr.Leaves() {
		nm := tr.Taxon(l)
		if nm[0] == 'x' {
			return
		}
	}
	t.Errorf("all lineage terminals removed")
}
