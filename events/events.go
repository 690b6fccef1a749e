// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package events implements the detection
// of migratory events
// and transmission lineages
// on a tree annotated with inferred demes.
package events

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/js-arias/sophi/tree"
)

// An Event is a migratory event,
// a branch of the tree
// in which the deme of a node
// is different from the deme of its parent.
type Event struct {
	// ID is the ordinal identifier of the event,
	// assigned in tree traversal order.
	ID int

	// From is the name of the origin node
	// (the parent node of the branch).
	From string

	// Source is the deme of the origin node.
	Source int

	// Start is the time of the origin node,
	// in days since the start of the outbreak.
	Start float64

	// To is the name of the destination node.
	To string

	// Deme is the deme of the destination node.
	Deme int

	// End is the time of the destination node,
	// in days since the start of the outbreak.
	End float64

	// Members contains the names of the nodes
	// of the transmission lineage
	// started by the event,
	// the destination node included.
	// It is empty if lineages were not extracted.
	Members []string

	// Size is the number of terminal nodes
	// of the transmission lineage.
	Size int

	// Latest is the most recent sampling time
	// among the members of the lineage.
	Latest float64
}

// Ambiguous returns true if the deme
// of any of the two nodes of the event
// is unresolved.
func (e Event) Ambiguous() bool {
	return e.Source == tree.Ambiguous || e.Deme == tree.Ambiguous
}

// FromTree returns the migratory events
// found in an annotated tree,
// one event for each node
// with a deme different from the deme of its parent.
// If lineages is true,
// the transmission lineage started by each event
// will be stored with the event.
//
// It returns an error if a node of the tree
// has no deme and time annotations.
func FromTree(t *tree.Tree, lineages bool) ([]Event, error) {
	var ev []Event

	// level order guarantees that events
	// closer to the root
	// get the smaller IDs
	queue := []int{t.Root()}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		queue = append(queue, t.Children(n)...)

		if !t.Annotated(n) {
			return nil, fmt.Errorf("node %q: missing deme and time attributes", t.Taxon(n))
		}
		p := t.Parent(n)
		if p < 0 {
			continue
		}
		if t.Deme(p) == t.Deme(n) {
			continue
		}

		e := Event{
			ID:     len(ev),
			From:   t.Taxon(p),
			Source: t.Deme(p),
			Start:  t.Time(p),
			To:     t.Taxon(n),
			Deme:   t.Deme(n),
			End:    t.Time(n),
		}
		if lineages {
			e.Members, e.Size, e.Latest = lineage(t, n)
		}
		ev = append(ev, e)
	}
	return ev, nil
}

// Lineage collects the nodes reachable
// from the destination of an event
// without a change of deme.
func lineage(t *tree.Tree, n int) (members []string, size int, latest float64) {
	deme := t.Deme(n)
	latest = -1
	stack := []int{n}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if t.Deme(c) != deme {
			continue
		}
		members = append(members, t.Taxon(c))
		stack = append(stack, t.Children(c)...)
		if t.IsTerm(c) {
			size++
		}
		if t.Time(c) > latest {
			latest = t.Time(c)
		}
	}
	return members, size, latest
}

// SortByTime sorts a list of events
// by the midpoint
// between the origin and destination times.
// The sort is stable,
// so events with equal midpoints
// keep their traversal order.
// Event IDs are not changed.
func SortByTime(ev []Event) {
	slices.SortStableFunc(ev, func(a, b Event) int {
		return cmp.Compare((a.Start+a.End)/2, (b.Start+b.End)/2)
	})
}
