// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package layout computes drawing coordinates
// for the nodes of an annotated tree.
package layout

import (
	"encoding/json"
	"io"
	"math"

	"github.com/js-arias/sophi/tree"
)

// Default parameters used to thin a tree
// that is too large to be drawn.
const (
	// MaxLeaves is the maximum number of terminals
	// that will be drawn without thinning.
	MaxLeaves = 8500

	// MinLineage is the minimum size of a transmission lineage
	// used when thinning a tree for drawing.
	MinLineage = 100

	// Alpha is the weight exponent
	// used when thinning a tree for drawing.
	Alpha = 1.1
)

// A Node is the drawing data of a tree node.
//
// The X coordinate is the time axis,
// scaled to the range [0,1],
// with the root at 0.
// The Y coordinate is the position of the node
// across the terminals of the tree,
// scaled to the range [-1,0],
// so the tree grows from left to right
// and the first terminal is at the top.
type Node struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Deme  int     `json:"deme"`
	Time  float64 `json:"time"`
	BrLen float64 `json:"brlen"`
	Up    string  `json:"up"`
	Curr  bool    `json:"curr"`
}

// Place computes the drawing coordinates
// of all the nodes of a tree,
// returning a map of node names to node drawing data.
// Terminals are placed at regular intervals
// and each internal node is centered
// on the span of its descendants.
// All nodes of the tree must be named.
//
// Curr is the set of samples
// drawn for the focal inference;
// it can be nil.
func Place(t *tree.Tree, curr map[string]bool) map[string]Node {
	p := placer{
		t:     t,
		pos:   make(map[int]float64, t.Len()),
		depth: make(map[int]float64, t.Len()),
	}
	p.place(t.Root(), 0)

	var maxDepth float64
	for _, d := range p.depth {
		if d > maxDepth {
			maxDepth = d
		}
	}
	maxPos := p.next - 1

	nodes := make(map[string]Node, t.Len())
	for _, id := range t.Nodes() {
		var x float64
		if maxDepth > 0 {
			x = p.depth[id] / maxDepth
		}
		var y float64
		if maxPos > 0 {
			y = p.pos[id] / maxPos
		}

		var up string
		if pa := t.Parent(id); pa >= 0 {
			up = t.Taxon(pa)
		}
		name := t.Taxon(id)
		nodes[name] = Node{
			X:     x,
			Y:     -y,
			Deme:  t.Deme(id),
			Time:  t.Time(id),
			BrLen: t.BrLen(id),
			Up:    up,
			Curr:  curr[name],
		}
	}
	return nodes
}

type placer struct {
	t     *tree.Tree
	pos   map[int]float64 // position across terminals
	depth map[int]float64 // position on the time axis
	next  float64
}

func (p *placer) place(id int, depth float64) {
	p.depth[id] = depth

	children := p.t.Children(id)
	if len(children) == 0 {
		p.pos[id] = p.next
		p.next++
		return
	}

	top := math.MaxFloat64
	bot := -math.MaxFloat64
	for _, c := range children {
		p.place(c, depth+p.t.BrLen(c))
		if p.pos[c] < top {
			top = p.pos[c]
		}
		if p.pos[c] > bot {
			bot = p.pos[c]
		}
	}
	p.pos[id] = top + (bot-top)/2
}

// WriteJSON writes the drawing coordinates of a tree
// into w,
// encoded as a JSON object
// keyed by node name.
func WriteJSON(w io.Writer, nodes map[string]Node) error {
	e := json.NewEncoder(w)
	if err := e.Encode(nodes); err != nil {
		return err
	}
	return nil
}
