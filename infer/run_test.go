// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package infer_test

import (
	"encoding/json"
	"math"
	"os"
	"reflect"
	"slices"
	"testing"

	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/infer/dta"
	"github.com/js-arias/sophi/layout"
	"github.com/js-arias/sophi/sampling"
)

func TestDraw(t *testing.T) {
	data := makeData(t)
	c := infer.New("chain.tab")

	root, err := c.Add("", earliestDesign(t, 4), "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}
	if err := root.Draw(data); err != nil {
		t.Fatalf("unable to draw samples: %v", err)
	}
	want := []string{"s1", "s2", "s3", "s4"}
	if got := root.Samples(); !reflect.DeepEqual(got, want) {
		t.Errorf("root samples: got %v, want %v", got, want)
	}

	// samples drawn by an ancestor
	// are discarded from the draw
	child, err := c.Add(root.ID(), earliestDesign(t, 6), "", 6302)
	if err != nil {
		t.Fatalf("unable to add child inference: %v", err)
	}
	if err := child.Draw(data); err != nil {
		t.Fatalf("unable to draw samples: %v", err)
	}
	want = []string{"s5", "s6"}
	if got := child.Samples(); !reflect.DeepEqual(got, want) {
		t.Errorf("child samples: got %v, want %v", got, want)
	}

	noDesign, err := c.Add(child.ID(), nil, "", 17)
	if err != nil {
		t.Fatalf("unable to add inference: %v", err)
	}
	if err := noDesign.Draw(data); err == nil {
		t.Errorf("inference without design: expecting error")
	}

	d := sampling.New()
	if err := d.SetStrategy(sampling.Temporal, sampling.EarliestN, ""); err != nil {
		t.Fatalf("unable to set strategy: %v", err)
	}
	noTarget, err := c.Add(child.ID(), d, "", 18)
	if err != nil {
		t.Fatalf("unable to add inference: %v", err)
	}
	if err := noTarget.Draw(data); err == nil {
		t.Errorf("design without target: expecting error")
	}
}

func TestRunDTA(t *testing.T) {
	data := makeData(t)
	c := infer.New("chain.tab")

	root, err := c.Add("", earliestDesign(t, 4), "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}
	if _, err := root.RunDTA(data, dta.Parsimony{}); err == nil {
		t.Errorf("inference without samples: expecting error")
	}

	if err := root.Draw(data); err != nil {
		t.Fatalf("unable to draw samples: %v", err)
	}
	tr, err := root.RunDTA(data, dta.Parsimony{})
	if err != nil {
		t.Fatalf("unable to run the reconstruction: %v", err)
	}

	if tr.Name() != root.ID() {
		t.Errorf("tree name: got %q, want %q", tr.Name(), root.ID())
	}
	if tr.Len() != 7 {
		t.Errorf("tree nodes: got %d, want %d", tr.Len(), 7)
	}
	if got := tr.Taxon(tr.Root()); got != "nA" {
		t.Errorf("tree root: got %q, want %q", got, "nA")
	}

	var leaves []string
	for _, id := range tr.Leaves() {
		leaves = append(leaves, tr.Taxon(id))
	}
	slices.Sort(leaves)
	want := []string{"s1", "s2", "s3", "s4"}
	if !reflect.DeepEqual(leaves, want) {
		t.Errorf("tree terminals: got %v, want %v", leaves, want)
	}

	demes := map[string]int{
		"nA": 0,
		"nB": 0,
		"nC": 0,
		"s1": 0,
		"s2": 0,
		"s3": 0,
		"s4": 1,
	}
	times := map[string]float64{
		"nA": 0.5,
		"nB": 0.8,
		"nC": 1.2,
		"s1": 1,
		"s2": 2,
		"s3": 3,
		"s4": 4,
	}
	for name, wd := range demes {
		id := tr.TaxNode(name)
		if id < 0 {
			t.Errorf("node %q: not in tree", name)
			continue
		}
		if got := tr.Deme(id); got != wd {
			t.Errorf("node %q: got deme %d, want %d", name, got, wd)
		}
		if got := tr.Time(id); got != times[name] {
			t.Errorf("node %q: got time %.3f, want %.3f", name, got, times[name])
		}
	}
}

func TestRun(t *testing.T) {
	data := makeData(t)
	c := infer.New("chain.tab")

	root, err := c.Add("", earliestDesign(t, 4), "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}
	defer removeArtifacts(root)

	if err := root.Run(data, root.Engine()); err != nil {
		t.Fatalf("unable to run inference: %v", err)
	}
	if root.Status() != infer.Success {
		t.Errorf("root status: got %q, want %q", root.Status(), infer.Success)
	}
	if err := root.Run(data, root.Engine()); err == nil {
		t.Errorf("finished inference: expecting error")
	}

	files := []string{
		root.TreeFile(),
		root.EventsFile(),
		root.LayoutFile(),
		root.EvalFile(),
	}
	for _, af := range files {
		if _, err := os.Stat(af); err != nil {
			t.Errorf("artifact file %q: %v", af, err)
		}
	}

	tr, err := root.ReadTree()
	if err != nil {
		t.Fatalf("unable to read inferred tree: %v", err)
	}
	if tr.Len() != 7 {
		t.Errorf("tree nodes: got %d, want %d", tr.Len(), 7)
	}
	if got := tr.Taxon(tr.Root()); got != "nA" {
		t.Errorf("tree root: got %q, want %q", got, "nA")
	}
	if got := tr.Deme(tr.Root()); got != 0 {
		t.Errorf("tree root: got deme %d, want %d", got, 0)
	}

	ev, err := root.ReadEvents()
	if err != nil {
		t.Fatalf("unable to read events: %v", err)
	}
	wantEv := []events.Event{
		{ID: 0, From: "nC", Source: 0, Start: 1.2, To: "s4", Deme: 1, End: 4, Members: []string{"s4"}, Size: 1, Latest: 4},
	}
	if !reflect.DeepEqual(ev, wantEv) {
		t.Errorf("events: got %v, want %v", ev, wantEv)
	}

	lf, err := os.Open(root.LayoutFile())
	if err != nil {
		t.Fatalf("unable to open layout file: %v", err)
	}
	var nodes map[string]layout.Node
	err = json.NewDecoder(lf).Decode(&nodes)
	lf.Close()
	if err != nil {
		t.Fatalf("unable to read layout file: %v", err)
	}
	if len(nodes) != 7 {
		t.Errorf("layout nodes: got %d, want %d", len(nodes), 7)
	}
	s4, ok := nodes["s4"]
	if !ok {
		t.Fatalf("layout node %q: not in layout", "s4")
	}
	if s4.Deme != 1 {
		t.Errorf("layout node %q: got deme %d, want %d", "s4", s4.Deme, 1)
	}
	if s4.Time != 4 {
		t.Errorf("layout node %q: got time %.3f, want %.3f", "s4", s4.Time, 4.0)
	}
	if s4.Up != "nC" {
		t.Errorf("layout node %q: got parent %q, want %q", "s4", s4.Up, "nC")
	}
	if !s4.Curr {
		t.Errorf("layout node %q: expecting a sample of the current draw", "s4")
	}

	res, err := root.ReadEval()
	if err != nil {
		t.Fatalf("unable to read evaluation: %v", err)
	}
	if res.Events != 1 {
		t.Errorf("evaluation events: got %d, want %d", res.Events, 1)
	}
	scores := []struct {
		name string
		got  float64
		want float64
	}{
		{"events proportion", res.EventProp, 0.5},
		{"time count", res.TimeCount, 1},
		{"time score", res.TimeScore, (1/1.5 + 1/3.8) / 2},
		{"source count", res.SourceCount, 0.5},
		{"total samples", res.TotalProp, 0.5},
		{"samples at deme 0", res.SampleProps[0], 0.6},
		{"samples at deme 1", res.SampleProps[1], 1.0 / 3},
	}
	for _, s := range scores {
		if math.Abs(s.got-s.want) > 0.0001 {
			t.Errorf("root evaluation: %s: got %.6f, want %.6f", s.name, s.got, s.want)
		}
	}

	// a child inference refines the reconstruction
	// with a new draw
	child, err := c.Add(root.ID(), earliestDesign(t, 6), "", 6302)
	if err != nil {
		t.Fatalf("unable to add child inference: %v", err)
	}
	defer removeArtifacts(child)

	if err := child.Run(data, child.Engine()); err != nil {
		t.Fatalf("unable to run inference: %v", err)
	}
	if child.Status() != infer.Success {
		t.Errorf("child status: got %q, want %q", child.Status(), infer.Success)
	}

	cev, err := child.ReadEvents()
	if err != nil {
		t.Fatalf("unable to read events: %v", err)
	}
	wantCev := []events.Event{
		{ID: 1, From: "nC", Source: 0, Start: 1.2, To: "s4", Deme: 1, End: 4, Members: []string{"s4"}, Size: 1, Latest: 4},
		{ID: 0, From: "nD", Source: 0, Start: 4.5, To: "s6", Deme: 1, End: 6, Members: []string{"s6"}, Size: 1, Latest: 6},
	}
	if !reflect.DeepEqual(cev, wantCev) {
		t.Errorf("child events: got %v, want %v", cev, wantCev)
	}

	cres, err := child.ReadEval()
	if err != nil {
		t.Fatalf("unable to read evaluation: %v", err)
	}
	if cres.Events != 2 {
		t.Errorf("evaluation events: got %d, want %d", cres.Events, 2)
	}
	scores = []struct {
		name string
		got  float64
		want float64
	}{
		{"events proportion", cres.EventProp, 1},
		{"time count", cres.TimeCount, 1},
		{"time score", cres.TimeScore, (1 + 1/3.8) / 2},
		{"source count", cres.SourceCount, 0.5},
		{"total samples", cres.TotalProp, 0.75},
		{"samples at deme 0", cres.SampleProps[0], 0.8},
		{"samples at deme 1", cres.SampleProps[1], 2.0 / 3},
	}
	for _, s := range scores {
		if math.Abs(s.got-s.want) > 0.0001 {
			t.Errorf("child evaluation: %s: got %.6f, want %.6f", s.name, s.got, s.want)
		}
	}
}

func TestRunFailed(t *testing.T) {
	data := makeData(t)
	c := infer.New("chain.tab")

	d := sampling.New()
	if err := d.SetStrategy(sampling.Temporal, sampling.EarliestN, ""); err != nil {
		t.Fatalf("unable to set strategy: %v", err)
	}
	n, err := c.Add("", d, "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}

	if err := n.Run(data, n.Engine()); err == nil {
		t.Fatalf("design without target: expecting error")
	}
	if n.Status() != infer.Failed {
		t.Errorf("status: got %q, want %q", n.Status(), infer.Failed)
	}
	if err := n.Run(data, n.Engine()); err == nil {
		t.Errorf("failed inference: expecting error")
	}
}

func TestSampleCounts(t *testing.T) {
	data := makeData(t)
	c := infer.New("chain.tab")

	root, err := c.Add("", earliestDesign(t, 4), "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}
	if _, err := root.SampleCounts(data); err == nil {
		t.Errorf("inference without samples: expecting error")
	}
	if err := root.Draw(data); err != nil {
		t.Fatalf("unable to draw samples: %v", err)
	}

	child, err := c.Add(root.ID(), earliestDesign(t, 6), "", 6302)
	if err != nil {
		t.Fatalf("unable to add child inference: %v", err)
	}
	if err := child.Draw(data); err != nil {
		t.Fatalf("unable to draw samples: %v", err)
	}

	r, err := child.SampleCounts(data)
	if err != nil {
		t.Fatalf("unable to count samples: %v", err)
	}
	want := &infer.Report{
		Current: map[int][]int{
			0: {0, 0, 0, 0, 0, 1, 0, 0, 0, 0},
			1: {0, 0, 0, 0, 0, 0, 1, 0, 0, 0},
		},
		Previous: map[int][]int{
			0: {0, 1, 1, 1, 0, 0, 0, 0, 0, 0},
			1: {0, 0, 0, 0, 1, 0, 0, 0, 0, 0},
		},
		Remaining: map[int][]int{
			0: {0, 0, 0, 0, 0, 0, 0, 1, 0, 0},
			1: {0, 0, 0, 0, 0, 0, 0, 0, 1, 0},
		},
	}
	if !reflect.DeepEqual(r, want) {
		t.Errorf("sample counts: got %v, want %v", r, want)
	}
}

// RemoveArtifacts removes the artifact files
// of an inference.
func removeArtifacts(n *infer.Node) {
	os.Remove(n.TreeFile())
	os.Remove(n.EventsFile())
	os.Remove(n.LayoutFile())
	os.Remove(n.EvalFile())
}
