// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dta

import (
	"maps"

	"github.com/js-arias/sophi/tree"
)

// Parsimony is a reconstruction engine
// that infers ancestral demes
// with Fitch parsimony.
// Nodes in which several demes
// are equally parsimonious
// are reported as ambiguous.
type Parsimony struct{}

// Infer implements the Engine interface.
func (p Parsimony) Infer(t *tree.Tree) (map[int]int, error) {
	// demes observed on the terminals
	all := make(map[int]bool)
	for _, id := range t.Leaves() {
		if t.Annotated(id) && t.Deme(id) != tree.Ambiguous {
			all[t.Deme(id)] = true
		}
	}
	demes := make(map[int]int, t.Len())
	if len(all) == 0 {
		for _, id := range t.Nodes() {
			demes[id] = tree.Ambiguous
		}
		return demes, nil
	}

	// down pass:
	// the state set of a terminal is its deme,
	// or every observed deme if it is unresolved;
	// the set of an internal node is the intersection
	// of the sets of its children,
	// or their union if the intersection is empty.
	nodes := t.Nodes()
	states := make(map[int]map[int]bool, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		id := nodes[i]
		if t.IsTerm(id) {
			s := make(map[int]bool)
			if t.Annotated(id) && t.Deme(id) != tree.Ambiguous {
				s[t.Deme(id)] = true
			} else {
				for d := range all {
					s[d] = true
				}
			}
			states[id] = s
			continue
		}
		var inter, union map[int]bool
		for _, c := range t.Children(id) {
			cs := states[c]
			if inter == nil {
				inter = maps.Clone(cs)
				union = maps.Clone(cs)
				continue
			}
			for d := range inter {
				if !cs[d] {
					delete(inter, d)
				}
			}
			for d := range cs {
				union[d] = true
			}
		}
		if len(inter) > 0 {
			states[id] = inter
		} else {
			states[id] = union
		}
	}

	// up pass:
	// a node takes the deme of its parent
	// if it is part of its own state set;
	// otherwise its set must have a single deme,
	// or the node is ambiguous.
	for _, id := range nodes {
		if t.IsTerm(id) && t.Annotated(id) && t.Deme(id) != tree.Ambiguous {
			demes[id] = t.Deme(id)
			continue
		}
		s := states[id]
		if pid := t.Parent(id); pid >= 0 {
			if pd := demes[pid]; pd != tree.Ambiguous && s[pd] {
				demes[id] = pd
				continue
			}
		}
		if len(s) == 1 {
			for d := range s {
				demes[id] = d
			}
			continue
		}
		demes[id] = tree.Ambiguous
	}
	return demes, nil
}
