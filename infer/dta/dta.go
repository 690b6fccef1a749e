// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package dta provides discrete trait analysis engines
// that infer the demes of the internal nodes
// of a transmission tree
// from the demes annotated on its terminals.
package dta

import "github.com/js-arias/sophi/tree"

// An Engine is a discrete trait reconstruction engine.
type Engine interface {
	// Infer returns the deme inferred
	// for the nodes of a tree,
	// keyed by node ID.
	// Nodes that can not be resolved
	// are reported as tree.Ambiguous,
	// or left out of the returned map.
	Infer(t *tree.Tree) (map[int]int, error)
}
