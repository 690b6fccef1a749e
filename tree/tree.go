// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree provides a rooted phylogenetic tree
// with branch lengths
// and per node annotations
// for the deme
// and the sampling time
// of each node.
package tree

import (
	"fmt"
	"slices"
)

// Ambiguous is the deme value used for nodes
// in which the deme assignment
// can not be resolved.
const Ambiguous = -1

// A Tree is a rooted phylogenetic tree
// with named nodes
// and branch lengths measured in days.
//
// Nodes can be annotated
// with a deme
// and a sampling time
// (in days since the start of the outbreak).
type Tree struct {
	name string

	nodes  map[int]*node
	taxa   map[string]int
	root   int
	nextID int
}

type node struct {
	id       int
	parent   int
	children []int

	name  string
	brLen float64

	deme int
	time float64
	attr bool
}

// New creates a new tree
// with the indicated name,
// and a root node named root.
func New(name, root string) *Tree {
	t := &Tree{
		name:  name,
		nodes: make(map[int]*node),
		taxa:  make(map[string]int),
		root:  0,
	}
	n := &node{
		id:     0,
		parent: -1,
		name:   root,
	}
	t.nodes[0] = n
	if root != "" {
		t.taxa[root] = 0
	}
	t.nextID = 1
	return t
}

// Add adds a new node as a child
// of the indicated parent node,
// with the given name
// (use an empty string for an unnamed node)
// and branch length.
// It returns the ID of the added node.
func (t *Tree) Add(parent int, name string, brLen float64) (int, error) {
	p, ok := t.nodes[parent]
	if !ok {
		return -1, fmt.Errorf("tree %q: parent node %d not in tree", t.name, parent)
	}
	if name != "" {
		if _, dup := t.taxa[name]; dup {
			return -1, fmt.Errorf("tree %q: node %q already in tree", t.name, name)
		}
	}

	id := t.nextID
	t.nextID++
	n := &node{
		id:     id,
		parent: parent,
		name:   name,
		brLen:  brLen,
	}
	t.nodes[id] = n
	p.children = append(p.children, id)
	if name != "" {
		t.taxa[name] = id
	}
	return id, nil
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// Root returns the ID of the root node.
func (t *Tree) Root() int {
	return t.root
}

// Len returns the number of nodes of the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Nodes returns the IDs of all nodes of the tree,
// in pre-order,
// so a parent node always appears
// before its descendants.
func (t *Tree) Nodes() []int {
	ids := make([]int, 0, len(t.nodes))
	t.preorder(t.root, &ids)
	return ids
}

func (t *Tree) preorder(id int, ids *[]int) {
	*ids = append(*ids, id)
	for _, c := range t.nodes[id].children {
		t.preorder(c, ids)
	}
}

// Leaves returns the IDs of all terminal nodes,
// in pre-order.
func (t *Tree) Leaves() []int {
	var ids []int
	for _, id := range t.Nodes() {
		if len(t.nodes[id].children) == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Terms returns the names of all terminal nodes,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	var names []string
	for _, id := range t.Leaves() {
		if nm := t.nodes[id].name; nm != "" {
			names = append(names, nm)
		}
	}
	slices.Sort(names)
	return names
}

// IsTerm returns true
// if the indicated node is a terminal.
func (t *Tree) IsTerm(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return len(n.children) == 0
}

// Parent returns the ID of the parent
// of the indicated node.
// It returns -1 for the root
// or an invalid node.
func (t *Tree) Parent(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return -1
	}
	return n.parent
}

// Children returns the IDs of the children
// of the indicated node.
func (t *Tree) Children(id int) []int {
	n, ok := t.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Taxon returns the name of the indicated node.
func (t *Tree) Taxon(id int) string {
	n, ok := t.nodes[id]
	if !ok {
		return ""
	}
	return n.name
}

// TaxNode returns the ID of the node
// with the indicated name.
// It returns -1 if the name is not in the tree.
func (t *Tree) TaxNode(name string) int {
	id, ok := t.taxa[name]
	if !ok {
		return -1
	}
	return id
}

// BrLen returns the length,
// in days,
// of the branch that connects the indicated node
// with its parent.
func (t *Tree) BrLen(id int) float64 {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}
	return n.brLen
}

// Deme returns the deme annotated
// for the indicated node.
// The value is only valid
// if the node is annotated.
func (t *Tree) Deme(id int) int {
	n, ok := t.nodes[id]
	if !ok {
		return Ambiguous
	}
	return n.deme
}

// Time returns the time,
// in days since the start of the outbreak,
// annotated for the indicated node.
// The value is only valid
// if the node is annotated.
func (t *Tree) Time(id int) float64 {
	n, ok := t.nodes[id]
	if !ok {
		return 0
	}
	return n.time
}

// Annotated returns true if the indicated node
// has a deme and time annotation.
func (t *Tree) Annotated(id int) bool {
	n, ok := t.nodes[id]
	if !ok {
		return false
	}
	return n.attr
}

// Annotate sets the deme and time annotation
// of the indicated node.
func (t *Tree) Annotate(id, deme int, time float64) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree %q: node %d not in tree", t.name, id)
	}
	n.deme = deme
	n.time = time
	n.attr = true
	return nil
}

// Deannotate removes the deme and time annotations
// of all the nodes of the tree.
func (t *Tree) Deannotate() {
	for _, n := range t.nodes {
		n.deme = 0
		n.time = 0
		n.attr = false
	}
}

// MRCA returns the ID of the most recent common ancestor
// of the indicated named nodes.
func (t *Tree) MRCA(names []string) (int, error) {
	if len(names) == 0 {
		return -1, fmt.Errorf("tree %q: mrca: no names given", t.name)
	}

	mrca := -1
	for _, nm := range names {
		id, ok := t.taxa[nm]
		if !ok {
			return -1, fmt.Errorf("tree %q: taxon %q not in tree", t.name, nm)
		}
		if mrca < 0 {
			mrca = id
			continue
		}
		mrca = t.commonAnc(mrca, id)
	}
	return mrca, nil
}

func (t *Tree) commonAnc(a, b int) int {
	anc := make(map[int]bool)
	for id := a; id >= 0; id = t.nodes[id].parent {
		anc[id] = true
	}
	for id := b; id >= 0; id = t.nodes[id].parent {
		if anc[id] {
			return id
		}
	}
	return t.root
}

// Subtree returns a new tree
// that contains the indicated named terminals,
// rooted at their most recent common ancestor.
// Internal nodes with a single child are removed,
// summing their branch lengths,
// so the path length between any two kept nodes
// is preserved.
// The branch length of the new root is set to 0.
// Node annotations are preserved.
func (t *Tree) Subtree(name string, taxa []string) (*Tree, error) {
	mrca, err := t.MRCA(taxa)
	if err != nil {
		return nil, err
	}

	// nodes in the path from each terminal
	// to the common ancestor
	keep := make(map[int]bool)
	for _, nm := range taxa {
		for id := t.taxa[nm]; ; id = t.nodes[id].parent {
			if keep[id] {
				break
			}
			keep[id] = true
			if id == mrca {
				break
			}
		}
	}

	nt := &Tree{
		name:  name,
		nodes: make(map[int]*node),
		taxa:  make(map[string]int),
		root:  0,
	}
	nt.copyKept(t, mrca, -1, 0, keep)
	return nt, nil
}

// copyKept copies the kept nodes of a source tree,
// skipping single child nodes,
// whose branch lengths are added to their only kept descendant.
func (nt *Tree) copyKept(t *Tree, id, parent int, brLen float64, keep map[int]bool) {
	src := t.nodes[id]

	var kept []int
	for _, c := range src.children {
		if keep[c] {
			kept = append(kept, c)
		}
	}

	// a single child node is skipped
	if len(kept) == 1 && parent >= 0 {
		nt.copyKept(t, kept[0], parent, brLen+t.nodes[kept[0]].brLen, keep)
		return
	}

	nid := nt.nextID
	nt.nextID++
	n := &node{
		id:     nid,
		parent: parent,
		name:   src.name,
		brLen:  brLen,
		deme:   src.deme,
		time:   src.time,
		attr:   src.attr,
	}
	nt.nodes[nid] = n
	if src.name != "" {
		nt.taxa[src.name] = nid
	}
	if parent >= 0 {
		p := nt.nodes[parent]
		p.children = append(p.children, nid)
	}

	for _, c := range kept {
		nt.copyKept(t, c, nid, t.nodes[c].brLen, keep)
	}
}

// DeleteLeaf removes a terminal node from the tree.
// If the parent of the removed node
// is left with a single child,
// the parent is removed as well
// and its branch length is added
// to the remaining child,
// so the path lengths of the surviving nodes
// are preserved.
// A root left with a single child is kept.
func (t *Tree) DeleteLeaf(id int) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("tree %q: node %d not in tree", t.name, id)
	}
	if len(n.children) > 0 {
		return fmt.Errorf("tree %q: node %d: not a terminal", t.name, id)
	}
	if id == t.root {
		return fmt.Errorf("tree %q: can not remove the root", t.name)
	}

	p := t.nodes[n.parent]
	p.children = slices.DeleteFunc(p.children, func(c int) bool { return c == id })
	delete(t.nodes, id)
	if n.name != "" {
		delete(t.taxa, n.name)
	}

	if len(p.children) != 1 || p.id == t.root {
		return nil
	}

	// collapse the single child parent
	c := t.nodes[p.children[0]]
	c.brLen += p.brLen
	c.parent = p.parent
	gp := t.nodes[p.parent]
	for i, cid := range gp.children {
		if cid == p.id {
			gp.children[i] = c.id
			break
		}
	}
	delete(t.nodes, p.id)
	if p.name != "" {
		delete(t.taxa, p.name)
	}
	return nil
}

// CollapseSingletons removes all internal nodes
// with a single child,
// adding the branch length of the removed node
// to its child.
// A single child root is kept.
func (t *Tree) CollapseSingletons() {
	for _, id := range t.Nodes() {
		n, ok := t.nodes[id]
		if !ok {
			// already removed
			continue
		}
		if len(n.children) != 1 {
			continue
		}
		c := t.nodes[n.children[0]]
		c.brLen += n.brLen
		if id == t.root {
			continue
		}

		c.parent = n.parent
		p := t.nodes[n.parent]
		for i, cid := range p.children {
			if cid == id {
				p.children[i] = c.id
				break
			}
		}
		delete(t.nodes, id)
		if n.name != "" {
			delete(t.taxa, n.name)
		}
	}
}

// Copy returns a deep copy of the tree
// with the indicated name.
func (t *Tree) Copy(name string) *Tree {
	nt := &Tree{
		name:   name,
		nodes:  make(map[int]*node, len(t.nodes)),
		taxa:   make(map[string]int, len(t.taxa)),
		root:   t.root,
		nextID: t.nextID,
	}
	for id, n := range t.nodes {
		nt.nodes[id] = &node{
			id:       n.id,
			parent:   n.parent,
			children: slices.Clone(n.children),
			name:     n.name,
			brLen:    n.brLen,
			deme:     n.deme,
			time:     n.time,
			attr:     n.attr,
		}
		if n.name != "" {
			nt.taxa[n.name] = id
		}
	}
	return nt
}
