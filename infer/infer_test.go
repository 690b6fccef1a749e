// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package infer_test

import (
	"bytes"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/sophi/infer"
	"github.com/js-arias/sophi/infer/dta"
	"github.com/js-arias/sophi/outbreak"
	"github.com/js-arias/sophi/sampling"
	"github.com/js-arias/sophi/tree"
)

// MakeData creates an outbreak for testing,
// with two demes over 10 days,
// eight candidate samples,
// and its transmission tree:
//
//	+ root (deme 0, t 0)
//	+-- nA (deme 0, t 0.5)
//	|   +-- nB (deme 0, t 0.8)
//	|   |   +-- s1 (deme 0, t 1)
//	|   |   +-- s3 (deme 0, t 3)
//	|   +-- nC (deme 0, t 1.2)
//	|       +-- s2 (deme 0, t 2)
//	|       +-- s4 (deme 1, t 4)
//	+-- nD (deme 0, t 4.5)
//	    +-- nE (deme 0, t 4.8)
//	    |   +-- s5 (deme 0, t 5)
//	    |   +-- s7 (deme 0, t 7)
//	    +-- nF (deme 1, t 5.2)
//	        +-- s6 (deme 1, t 6)
//	        +-- s8 (deme 1, t 8)
//
// The true migrations are from deme 0 to deme 1
// at day 2.5,
// on the branch from nC to s4,
// and at day 5,
// on the branch from nD to nF.
func makeData(t testing.TB) *outbreak.Data {
	t.Helper()

	d, err := outbreak.New("sim-1", 2, 10)
	if err != nil {
		t.Fatalf("unable to create outbreak: %v", err)
	}
	if err := d.SetOrigin(0); err != nil {
		t.Fatalf("unable to set origin: %v", err)
	}
	if err := d.AddMigration(2.5, 0, 1); err != nil {
		t.Fatalf("unable to add migration: %v", err)
	}
	if err := d.AddMigration(5, 0, 1); err != nil {
		t.Fatalf("unable to add migration: %v", err)
	}

	samples := []outbreak.Sample{
		{ID: "s1", Time: 1, Deme: 0},
		{ID: "s2", Time: 2, Deme: 0},
		{ID: "s3", Time: 3, Deme: 0},
		{ID: "s4", Time: 4, Deme: 1},
		{ID: "s5", Time: 5, Deme: 0},
		{ID: "s6", Time: 6, Deme: 1},
		{ID: "s7", Time: 7, Deme: 0},
		{ID: "s8", Time: 8, Deme: 1},
	}
	for _, s := range samples {
		if err := d.AddSample(s.ID, s.Time, s.Deme); err != nil {
			t.Fatalf("unable to add sample %q: %v", s.ID, err)
		}
	}

	tr := tree.New("sim-1", "root")
	tr.Annotate(tr.Root(), 0, 0)
	add := func(parent int, name string, brLen float64, deme int, time float64) int {
		id, err := tr.Add(parent, name, brLen)
		if err != nil {
			t.Fatalf("unable to add node %q: %v", name, err)
		}
		tr.Annotate(id, deme, time)
		return id
	}

	nA := add(tr.Root(), "nA", 0.5, 0, 0.5)
	nB := add(nA, "nB", 0.3, 0, 0.8)
	add(nB, "s1", 0.2, 0, 1)
	add(nB, "s3", 2.2, 0, 3)
	nC := add(nA, "nC", 0.7, 0, 1.2)
	add(nC, "s2", 0.8, 0, 2)
	add(nC, "s4", 2.8, 1, 4)
	nD := add(tr.Root(), "nD", 4.5, 0, 4.5)
	nE := add(nD, "nE", 0.3, 0, 4.8)
	add(nE, "s5", 0.2, 0, 5)
	add(nE, "s7", 2.2, 0, 7)
	nF := add(nD, "nF", 0.7, 1, 5.2)
	add(nF, "s6", 0.8, 1, 6)
	add(nF, "s8", 2.8, 1, 8)
	d.SetTree(tr)

	return d
}

// EarliestDesign creates a sampling design
// that takes the n earliest samples of the outbreak.
// As all the sample times of the test outbreak
// are distinct,
// the draw is deterministic.
func earliestDesign(t testing.TB, n int) *sampling.Design {
	t.Helper()

	d := sampling.New()
	if err := d.SetStrategy(sampling.Temporal, sampling.EarliestN, ""); err != nil {
		t.Fatalf("unable to set strategy: %v", err)
	}
	if err := d.SetNumber(n); err != nil {
		t.Fatalf("unable to set target: %v", err)
	}
	return d
}

func TestChain(t *testing.T) {
	c := infer.New("chain.tab")

	root, err := c.Add("", earliestDesign(t, 4), "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}
	if len(root.ID()) != 8 {
		t.Errorf("root ID: got %q, want an 8 character ID", root.ID())
	}
	if root.Head() != "" {
		t.Errorf("root head: got %q, want an empty head", root.Head())
	}
	if root.Method() != infer.Parsimony {
		t.Errorf("root method: got %q, want %q", root.Method(), infer.Parsimony)
	}
	if _, ok := root.Engine().(dta.Parsimony); !ok {
		t.Errorf("root engine: got %T, want %T", root.Engine(), dta.Parsimony{})
	}
	if root.Status() != infer.Pending {
		t.Errorf("root status: got %q, want %q", root.Status(), infer.Pending)
	}
	if root.Depth() != 0 {
		t.Errorf("root depth: got %d, want 0", root.Depth())
	}
	if got, want := root.Seed(), uint64(391); got != want {
		t.Errorf("root seed: got %d, want %d", got, want)
	}
	if root.Samples() != nil {
		t.Errorf("root samples: got %v, want nil", root.Samples())
	}
	root.SetNote("first pass")
	if root.Note() != "first pass" {
		t.Errorf("root note: got %q, want %q", root.Note(), "first pass")
	}

	if _, err := c.Add("", nil, "", 100); !errors.Is(err, infer.ErrRoot) {
		t.Errorf("second root: got error %q, want %q", err, infer.ErrRoot)
	}
	if _, err := c.Add("not-an-ID", nil, "", 100); err == nil {
		t.Errorf("unknown head: expecting error")
	}

	child, err := c.Add(root.ID(), earliestDesign(t, 6), "my-dta-program", 6302)
	if err != nil {
		t.Fatalf("unable to add child inference: %v", err)
	}
	if child.Head() != root.ID() {
		t.Errorf("child head: got %q, want %q", child.Head(), root.ID())
	}
	if child.Depth() != 1 {
		t.Errorf("child depth: got %d, want 1", child.Depth())
	}
	if child.Method() != "my-dta-program" {
		t.Errorf("child method: got %q, want %q", child.Method(), "my-dta-program")
	}
	if _, ok := child.Engine().(*dta.Exec); !ok {
		t.Errorf("child engine: got %T, want %T", child.Engine(), &dta.Exec{})
	}

	grand, err := c.Add(child.ID(), nil, "", 17)
	if err != nil {
		t.Fatalf("unable to add grand child inference: %v", err)
	}
	if grand.Design() != nil {
		t.Errorf("grand child design: got %v, want nil", grand.Design())
	}

	want := []string{root.ID(), child.ID(), grand.ID()}
	if got := grand.Chain(); !reflect.DeepEqual(got, want) {
		t.Errorf("grand child chain: got %v, want %v", got, want)
	}
	if grand.Depth() != 2 {
		t.Errorf("grand child depth: got %d, want 2", grand.Depth())
	}
	if got := c.Nodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("chain inferences: got %v, want %v", got, want)
	}
	if c.Root() != root.ID() {
		t.Errorf("chain root: got %q, want %q", c.Root(), root.ID())
	}
	if got := c.Node(child.ID()); got != child {
		t.Errorf("inference %s: got %v, want %v", child.ID(), got, child)
	}
	if got := c.Node("not-an-ID"); got != nil {
		t.Errorf("unknown inference: got %v, want nil", got)
	}
}

func TestDelete(t *testing.T) {
	rows := [][]string{
		{"inference", "head", "status", "method", "seed", "priority", "temporal", "spatial", "earliest", "latest", "number", "proportion", "min", "demes", "note", "samples"},
		{"aaaa1111", "", "success", "parsimony", "1", "T", "EN", "", "0", "-1", "4", "", "0", "", "", "s1,s2,s3,s4"},
		{"bbbb2222", "aaaa1111", "success", "parsimony", "2", "T", "EN", "", "0", "-1", "6", "", "0", "", "", "s5,s6"},
		{"cccc3333", "bbbb2222", "failed", "parsimony", "3", "", "", "", "", "", "", "", "", "", "", ""},
		{"dddd4444", "aaaa1111", "pending", "parsimony", "4", "T", "EN", "", "0", "-1", "8", "", "0", "", "", ""},
	}
	var buf bytes.Buffer
	for _, r := range rows {
		buf.WriteString(strings.Join(r, "\t"))
		buf.WriteString("\n")
	}

	name := "tmp-chain-del-for-test.tab"
	defer os.Remove(name)
	if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
		t.Fatalf("unable to write file %q: %v", name, err)
	}
	c, err := infer.Read(name)
	if err != nil {
		t.Fatalf("unable to read file %q: %v", name, err)
	}

	want := []string{"aaaa1111", "bbbb2222", "cccc3333", "dddd4444"}
	if got := c.Nodes(); !reflect.DeepEqual(got, want) {
		t.Fatalf("chain inferences: got %v, want %v", got, want)
	}

	if err := c.Delete("not-an-ID"); err == nil {
		t.Errorf("unknown inference: expecting error")
	}
	if err := c.Delete("dddd4444"); !errors.Is(err, infer.ErrNotTerminal) {
		t.Errorf("pending inference: got error %q, want %q", err, infer.ErrNotTerminal)
	}
	if err := c.Delete("aaaa1111"); !errors.Is(err, infer.ErrInFlight) {
		t.Errorf("inference with pending descendants: got error %q, want %q", err, infer.ErrInFlight)
	}

	// deleting an inference
	// removes all its descendants
	if err := c.Delete("bbbb2222"); err != nil {
		t.Fatalf("unable to delete inference: %v", err)
	}
	want = []string{"aaaa1111", "dddd4444"}
	if got := c.Nodes(); !reflect.DeepEqual(got, want) {
		t.Errorf("chain inferences: got %v, want %v", got, want)
	}
	if got := c.Node("cccc3333"); got != nil {
		t.Errorf("deleted inference: got %v, want nil", got)
	}
}

func TestReadWrite(t *testing.T) {
	data := makeData(t)

	name := "tmp-chain-rw-for-test.tab"
	defer os.Remove(name)

	c := infer.New(name)
	root, err := c.Add("", earliestDesign(t, 4), "", 391)
	if err != nil {
		t.Fatalf("unable to add root inference: %v", err)
	}
	root.SetNote("first pass")
	if err := root.Draw(data); err != nil {
		t.Fatalf("unable to draw samples: %v", err)
	}

	spatial := sampling.New()
	if err := spatial.SetStrategy(sampling.Spatial, sampling.UniformSamples, sampling.UniformCases); err != nil {
		t.Fatalf("unable to set strategy: %v", err)
	}
	if err := spatial.SetProportion(0.5); err != nil {
		t.Fatalf("unable to set target: %v", err)
	}
	if err := spatial.SetMin(1); err != nil {
		t.Fatalf("unable to set minimum: %v", err)
	}
	if err := spatial.SetDemes([]int{0, 1}); err != nil {
		t.Fatalf("unable to set demes: %v", err)
	}
	if _, err := c.Add(root.ID(), spatial, "my-dta-program", 6302); err != nil {
		t.Fatalf("unable to add child inference: %v", err)
	}

	if err := c.Write(); err != nil {
		t.Fatalf("unable to write file %q: %v", name, err)
	}
	nc, err := infer.Read(name)
	if err != nil {
		t.Fatalf("unable to read file %q: %v", name, err)
	}

	if !reflect.DeepEqual(nc.Nodes(), c.Nodes()) {
		t.Fatalf("chain inferences: got %v, want %v", nc.Nodes(), c.Nodes())
	}
	for _, id := range c.Nodes() {
		n := c.Node(id)
		nn := nc.Node(id)
		if nn.Head() != n.Head() {
			t.Errorf("inference %s: head: got %q, want %q", id, nn.Head(), n.Head())
		}
		if nn.Status() != n.Status() {
			t.Errorf("inference %s: status: got %q, want %q", id, nn.Status(), n.Status())
		}
		if nn.Method() != n.Method() {
			t.Errorf("inference %s: method: got %q, want %q", id, nn.Method(), n.Method())
		}
		if nn.Seed() != n.Seed() {
			t.Errorf("inference %s: seed: got %d, want %d", id, nn.Seed(), n.Seed())
		}
		if nn.Note() != n.Note() {
			t.Errorf("inference %s: note: got %q, want %q", id, nn.Note(), n.Note())
		}
		if !reflect.DeepEqual(nn.Chain(), n.Chain()) {
			t.Errorf("inference %s: chain: got %v, want %v", id, nn.Chain(), n.Chain())
		}
		if !reflect.DeepEqual(nn.Design(), n.Design()) {
			t.Errorf("inference %s: design: got %v, want %v", id, nn.Design(), n.Design())
		}
		if !reflect.DeepEqual(nn.Samples(), n.Samples()) {
			t.Errorf("inference %s: samples: got %v, want %v", id, nn.Samples(), n.Samples())
		}
	}
}
