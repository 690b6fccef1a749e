// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package infer

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/js-arias/sophi/eval"
	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/infer/dta"
	"github.com/js-arias/sophi/layout"
	"github.com/js-arias/sophi/outbreak"
	"github.com/js-arias/sophi/tree"
	"golang.org/x/exp/rand"
)

// Artifact file suffixes of an inference.
const (
	treeSuffix   = "-inferred.nwk"
	eventsSuffix = "-events.tab"
	layoutSuffix = "-tree.json"
	evalSuffix   = "-eval.tab"
)

// TreeFile returns the path of the inferred tree artifact
// of the inference.
func (n *Node) TreeFile() string {
	return n.artifact(treeSuffix)
}

// EventsFile returns the path of the migratory events artifact
// of the inference.
func (n *Node) EventsFile() string {
	return n.artifact(eventsSuffix)
}

// LayoutFile returns the path of the tree drawing artifact
// of the inference.
func (n *Node) LayoutFile() string {
	return n.artifact(layoutSuffix)
}

// EvalFile returns the path of the evaluation artifact
// of the inference.
func (n *Node) EvalFile() string {
	return n.artifact(evalSuffix)
}

func (n *Node) artifact(suffix string) string {
	return filepath.Join(filepath.Dir(n.c.name), n.id+suffix)
}

// Draw draws the samples defined
// by the sampling design of the inference,
// discarding every sample
// already drawn by an ancestor inference,
// and stores the drawn sample IDs in the node.
func (n *Node) Draw(data *outbreak.Data) error {
	if n.design == nil {
		return fmt.Errorf("inference %s: no sampling design defined", n.id)
	}

	src := rand.NewSource(n.seed)
	ids, err := n.design.Draw(data, src)
	if err != nil {
		return fmt.Errorf("inference %s: %v", n.id, err)
	}

	prev := n.previous()
	samples := make([]string, 0, len(ids))
	for _, id := range ids {
		if prev[id] {
			continue
		}
		samples = append(samples, id)
	}
	n.samples = samples
	return nil
}

// RunDTA builds the tree that connects
// all the samples drawn along the inference chain
// and runs the given engine
// to infer the demes of its nodes.
// The returned tree is annotated
// with the inferred demes
// and the original sampling times.
func (n *Node) RunDTA(data *outbreak.Data, engine dta.Engine) (*tree.Tree, error) {
	if n.samples == nil {
		return nil, fmt.Errorf("inference %s: no samples drawn", n.id)
	}

	prev := n.previous()
	taxa := make([]string, 0, len(prev)+len(n.samples))
	for s := range prev {
		taxa = append(taxa, s)
	}
	taxa = append(taxa, n.samples...)
	slices.Sort(taxa)

	src := data.Tree()
	if src == nil {
		return nil, fmt.Errorf("inference %s: outbreak %q: no tree defined", n.id, data.Name())
	}
	st, err := src.Subtree(n.id, taxa)
	if err != nil {
		return nil, fmt.Errorf("inference %s: %v", n.id, err)
	}

	type attr struct {
		deme int
		time float64
	}
	attrs := make(map[int]attr, st.Len())
	for _, id := range st.Nodes() {
		if !st.Annotated(id) {
			return nil, fmt.Errorf("inference %s: tree %q: node %q: missing deme and time attributes", n.id, src.Name(), st.Taxon(id))
		}
		attrs[id] = attr{deme: st.Deme(id), time: st.Time(id)}
	}

	// the engine must only know the demes
	// observed on the terminals
	st.Deannotate()
	for _, id := range st.Leaves() {
		st.Annotate(id, attrs[id].deme, attrs[id].time)
	}

	demes, err := engine.Infer(st)
	if err != nil {
		return nil, fmt.Errorf("inference %s: %v", n.id, err)
	}
	for _, id := range st.Nodes() {
		dm, ok := demes[id]
		if !ok {
			dm = tree.Ambiguous
		}
		st.Annotate(id, dm, attrs[id].time)
	}
	return st, nil
}

// Events returns the migratory events
// inferred on an annotated tree.
// If lineages is true,
// the transmission lineage of each event
// is extracted;
// if sortByTime is true,
// events are sorted by the midpoint
// of the origin and destination times.
func (n *Node) Events(t *tree.Tree, lineages, sortByTime bool) ([]events.Event, error) {
	ev, err := events.FromTree(t, lineages)
	if err != nil {
		return nil, fmt.Errorf("inference %s: %v", n.id, err)
	}
	if sortByTime {
		events.SortByTime(ev)
	}
	return ev, nil
}

// Run executes the inference pipeline:
// it draws the samples,
// runs the reconstruction engine,
// enumerates the migratory events,
// computes the drawing coordinates of the inferred tree,
// and evaluates the inference
// against the ground truth of the outbreak,
// writing the artifact file of each step
// in the directory of the chain file.
//
// If any step fails,
// the status of the inference is set to failed,
// the error is returned,
// and the artifacts of the finished steps are kept.
// A failed inference can not be run again;
// create a new inference instead.
func (n *Node) Run(data *outbreak.Data, engine dta.Engine) error {
	if n.status != Pending {
		return fmt.Errorf("inference %s: status is %q, not %q", n.id, n.status, Pending)
	}
	n.status = Running
	if err := n.pipeline(data, engine); err != nil {
		n.status = Failed
		return err
	}
	n.status = Success
	return nil
}

func (n *Node) pipeline(data *outbreak.Data, engine dta.Engine) error {
	if n.design == nil {
		// a checkpoint inference draws no new samples
		// and reconstructs over the samples of its ancestors
		n.samples = []string{}
	} else if err := n.Draw(data); err != nil {
		return err
	}
	t, err := n.RunDTA(data, engine)
	if err != nil {
		return err
	}
	if err := n.writeTree(t); err != nil {
		return err
	}
	ev, err := n.Events(t, true, true)
	if err != nil {
		return err
	}
	if err := n.writeEvents(t, ev); err != nil {
		return err
	}
	if err := n.writeLayout(t, ev); err != nil {
		return err
	}

	root := t.Root()
	res := eval.Evaluate(data, ev, t.Deme(root), t.Time(root), n.chainSamples())
	if err := n.writeEval(res); err != nil {
		return err
	}
	return nil
}

// ChainSamples returns the set of samples drawn
// by the inference and all its ancestors.
func (n *Node) chainSamples() map[string]bool {
	drawn := n.previous()
	for _, s := range n.samples {
		drawn[s] = true
	}
	return drawn
}

func (n *Node) writeTree(t *tree.Tree) (err error) {
	name := n.TreeFile()
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := t.Newick(f, true); err != nil {
		return fmt.Errorf("inference %s: on file %q: %v", n.id, name, err)
	}
	return nil
}

func (n *Node) writeEvents(t *tree.Tree, ev []events.Event) (err error) {
	name := n.EventsFile()
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := events.TSV(f, t.Name(), ev); err != nil {
		return fmt.Errorf("inference %s: on file %q: %v", n.id, name, err)
	}
	return nil
}

func (n *Node) writeLayout(t *tree.Tree, ev []events.Event) (err error) {
	if len(t.Leaves()) > layout.MaxLeaves {
		t = t.Copy(t.Name())
		if err := events.Thin(t, ev, layout.MaxLeaves, layout.MinLineage, layout.Alpha); err != nil {
			return fmt.Errorf("inference %s: %v", n.id, err)
		}
	}
	curr := make(map[string]bool, len(n.samples))
	for _, s := range n.samples {
		curr[s] = true
	}
	nodes := layout.Place(t, curr)

	name := n.LayoutFile()
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := layout.WriteJSON(f, nodes); err != nil {
		return fmt.Errorf("inference %s: on file %q: %v", n.id, name, err)
	}
	return nil
}

func (n *Node) writeEval(res *eval.Result) (err error) {
	name := n.EvalFile()
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := eval.TSV(f, n.id, res); err != nil {
		return fmt.Errorf("inference %s: on file %q: %v", n.id, name, err)
	}
	return nil
}

// ReadTree reads the inferred tree artifact of the inference,
// validating that every node of the tree
// has deme and time annotations.
func (n *Node) ReadTree() (*tree.Tree, error) {
	name := n.TreeFile()
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer f.Close()

	t, err := tree.Newick(f, n.id)
	if err != nil {
		return nil, fmt.Errorf("inference %s: on file %q: %v", n.id, name, err)
	}
	for _, id := range t.Nodes() {
		if !t.Annotated(id) {
			return nil, fmt.Errorf("inference %s: on file %q: node %q: missing deme and time attributes", n.id, name, t.Taxon(id))
		}
	}
	return t, nil
}

// ReadEvents reads the migratory events artifact of the inference.
func (n *Node) ReadEvents() ([]events.Event, error) {
	name := n.EventsFile()
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer f.Close()

	ev, err := events.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("inference %s: while reading file %q: %v", n.id, name, err)
	}
	return ev, nil
}

// ReadEval reads the evaluation artifact of the inference.
func (n *Node) ReadEval() (*eval.Result, error) {
	name := n.EvalFile()
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("inference %s: %v", n.id, err)
	}
	defer f.Close()

	res, err := eval.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("inference %s: while reading file %q: %v", n.id, name, err)
	}
	return res, nil
}
