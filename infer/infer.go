// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package infer implements the provenance chain
// of the phylogeographic inferences
// made over an outbreak.
//
// Each inference of the chain draws a new batch of samples,
// never reusing a sample drawn by any of its ancestors,
// and reconstructs the demes of the tree
// that connects all the samples drawn along its chain,
// so every inference refines the reconstruction
// made by its parent.
package infer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/js-arias/sophi/infer/dta"
	"github.com/js-arias/sophi/sampling"
)

// Status of an inference.
type Status string

// Valid statuses.
const (
	// Pending is an inference created
	// but not yet run.
	Pending Status = "pending"

	// Running is an inference in execution.
	Running Status = "running"

	// Success is a finished inference
	// with all its artifacts saved.
	Success Status = "success"

	// Failed is an inference
	// aborted by an error.
	Failed Status = "failed"
)

func (s Status) isValid() bool {
	switch s {
	case Pending, Running, Success, Failed:
		return true
	}
	return false
}

// Terminal returns true if the status
// is a final state.
func (s Status) Terminal() bool {
	return s == Success || s == Failed
}

// Parsimony is the reconstruction method
// run by the built-in parsimony engine.
// Any other method is interpreted
// as the path of an external program.
const Parsimony = "parsimony"

// Errors of the chain invariants.
var (
	// ErrRoot is returned when adding a root inference
	// to a chain that already has one.
	ErrRoot = errors.New("only one root inference is allowed")

	// ErrNotTerminal is returned when deleting an inference
	// that is pending or running.
	ErrNotTerminal = errors.New("inference is not finished")

	// ErrInFlight is returned when deleting an inference
	// with pending or running descendants.
	ErrInFlight = errors.New("inference has unfinished descendants")
)

// A Node is a single inference of a chain.
type Node struct {
	c *Chain

	id      string
	head    string
	chain   []string
	design  *sampling.Design
	method  string
	seed    uint64
	status  Status
	note    string
	samples []string
}

// A Chain is the collection of the inferences
// made over an outbreak,
// keyed by inference ID.
type Chain struct {
	name  string
	nodes map[string]*Node
	ids   []string
}

// New creates a new empty inference chain
// that will be stored in the given file.
// The artifact files of the inferences
// are written in the directory of the chain file.
func New(name string) *Chain {
	return &Chain{
		name:  name,
		nodes: make(map[string]*Node),
	}
}

// Name returns the file name of the chain.
func (c *Chain) Name() string {
	return c.name
}

// SetName sets the file name of the chain.
func (c *Chain) SetName(name string) {
	c.name = name
}

// Nodes returns the IDs of the inferences of the chain,
// in the order in which they were created.
func (c *Chain) Nodes() []string {
	return slices.Clone(c.ids)
}

// Node returns the inference with the given ID,
// or nil if the ID is not in the chain.
func (c *Chain) Node(id string) *Node {
	return c.nodes[id]
}

// Root returns the ID of the root inference,
// or an empty string if the chain is empty.
func (c *Chain) Root() string {
	for _, id := range c.ids {
		if c.nodes[id].head == "" {
			return id
		}
	}
	return ""
}

// Add creates a new pending inference
// with the given head inference,
// sampling design,
// reconstruction method,
// and random seed.
// Use an empty head for the root of the chain;
// it returns ErrRoot if the chain already has a root.
// An empty method defaults to the parsimony engine.
func (c *Chain) Add(head string, d *sampling.Design, method string, seed uint64) (*Node, error) {
	var chain []string
	if head == "" {
		if c.Root() != "" {
			return nil, ErrRoot
		}
	} else {
		p, ok := c.nodes[head]
		if !ok {
			return nil, fmt.Errorf("head inference %s: not in chain", head)
		}
		chain = slices.Clone(p.chain)
	}

	id := newID()
	for {
		if _, ok := c.nodes[id]; !ok {
			break
		}
		id = newID()
	}
	if method == "" {
		method = Parsimony
	}

	n := &Node{
		c:      c,
		id:     id,
		head:   head,
		chain:  append(chain, id),
		design: d,
		method: method,
		seed:   seed,
		status: Pending,
	}
	c.nodes[id] = n
	c.ids = append(c.ids, id)
	return n, nil
}

// Delete removes an inference
// and all its descendants from the chain.
// It returns ErrNotTerminal if the inference
// is pending or running,
// and ErrInFlight if a pending or running inference
// descends from it.
func (c *Chain) Delete(id string) error {
	n, ok := c.nodes[id]
	if !ok {
		return fmt.Errorf("inference %s: not in chain", id)
	}
	if !n.status.Terminal() {
		return fmt.Errorf("inference %s: %w", id, ErrNotTerminal)
	}
	for _, v := range c.ids {
		d := c.nodes[v]
		if d.status.Terminal() {
			continue
		}
		if slices.Contains(d.chain, id) {
			return fmt.Errorf("inference %s: %w", id, ErrInFlight)
		}
	}

	c.ids = slices.DeleteFunc(c.ids, func(v string) bool {
		return slices.Contains(c.nodes[v].chain, id)
	})
	for v, d := range c.nodes {
		if slices.Contains(d.chain, id) {
			delete(c.nodes, v)
		}
	}
	return nil
}

// ID returns the unique identifier of the inference.
func (n *Node) ID() string {
	return n.id
}

// Head returns the ID of the parent inference,
// or an empty string for the root of the chain.
func (n *Node) Head() string {
	return n.head
}

// Chain returns the IDs of the inferences
// in the path from the root of the chain
// to the node,
// the node included.
func (n *Node) Chain() []string {
	return slices.Clone(n.chain)
}

// Depth returns the number of ancestors of the inference.
func (n *Node) Depth() int {
	return len(n.chain) - 1
}

// Design returns the sampling design of the inference,
// or nil if no design was defined.
func (n *Node) Design() *sampling.Design {
	return n.design
}

// Method returns the reconstruction method of the inference.
func (n *Node) Method() string {
	return n.method
}

// Engine returns the reconstruction engine
// used by the inference:
// the built-in parsimony engine,
// or an external program
// if the method is a program path.
func (n *Node) Engine() dta.Engine {
	if n.method == Parsimony {
		return dta.Parsimony{}
	}
	return &dta.Exec{Program: n.method}
}

// Seed returns the random seed of the inference.
func (n *Node) Seed() uint64 {
	return n.seed
}

// Status returns the current status of the inference.
func (n *Node) Status() Status {
	return n.status
}

// Note returns the note attached to the inference.
func (n *Node) Note() string {
	return n.note
}

// SetNote sets a note for the inference.
func (n *Node) SetNote(note string) {
	n.note = note
}

// Samples returns the IDs of the samples
// drawn by the inference.
// It returns nil if the samples
// have not been drawn yet.
func (n *Node) Samples() []string {
	if n.samples == nil {
		return nil
	}
	return slices.Clone(n.samples)
}

// Previous returns the set of sample IDs
// drawn by the ancestors of the inference.
func (n *Node) previous() map[string]bool {
	prev := make(map[string]bool)
	for id := n.head; id != ""; {
		p := n.c.nodes[id]
		for _, s := range p.samples {
			prev[s] = true
		}
		id = p.head
	}
	return prev
}

// NewSeed returns a random seed
// for a new inference.
func NewSeed() uint64 {
	return uint64(rand.Int64N(1 << 31))
}

// NewID returns a new inference identifier,
// the first 8 characters
// of the URL-safe base64 encoding
// of a random UUID.
func newID() string {
	u := uuid.New()
	s := base64.URLEncoding.EncodeToString(u[:])
	s = strings.TrimRight(s, "=")
	return s[:8]
}
