// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dta_test

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/js-arias/sophi/infer/dta"
	"github.com/js-arias/sophi/tree"
)

// BalancedTree creates the tree "((A,B)n1,(C,D)n2)root",
// annotating each terminal
// with the deme given in the demes map.
func balancedTree(t testing.TB, demes map[string]int) *tree.Tree {
	t.Helper()

	tr := tree.New("dta-tree", "root")
	nodes := map[string]int{"root": tr.Root()}
	for _, p := range []struct{ parent, name string }{
		{"root", "n1"}, {"root", "n2"},
		{"n1", "A"}, {"n1", "B"},
		{"n2", "C"}, {"n2", "D"},
	} {
		id, err := tr.Add(nodes[p.parent], p.name, 1)
		if err != nil {
			t.Fatalf("unable to add node %q: %v", p.name, err)
		}
		nodes[p.name] = id
	}
	for i, nm := range []string{"A", "B", "C", "D"} {
		dm, ok := demes[nm]
		if !ok {
			continue
		}
		if err := tr.Annotate(nodes[nm], dm, float64(i+1)); err != nil {
			t.Fatalf("unable to annotate node %q: %v", nm, err)
		}
	}
	return tr
}

func TestParsimony(t *testing.T) {
	tests := []struct {
		name  string
		leafD map[string]int
		want  map[string]int
	}{
		{
			name:  "resolved root",
			leafD: map[string]int{"A": 0, "B": 0, "C": 0, "D": 1},
			want:  map[string]int{"root": 0, "n1": 0, "n2": 0, "A": 0, "B": 0, "C": 0, "D": 1},
		},
		{
			name:  "ambiguous root",
			leafD: map[string]int{"A": 0, "B": 0, "C": 1, "D": 1},
			want:  map[string]int{"root": tree.Ambiguous, "n1": 0, "n2": 1, "A": 0, "B": 0, "C": 1, "D": 1},
		},
		{
			name:  "unresolved terminal",
			leafD: map[string]int{"A": 0, "B": tree.Ambiguous, "C": 1, "D": 1},
			want:  map[string]int{"root": tree.Ambiguous, "n1": 0, "n2": 1, "A": 0, "B": 0, "C": 1, "D": 1},
		},
	}
	for _, test := range tests {
		tr := balancedTree(t, test.leafD)
		var p dta.Parsimony
		demes, err := p.Infer(tr)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		got := make(map[string]int, len(test.want))
		for nm := range test.want {
			got[nm] = demes[tr.TaxNode(nm)]
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestParsimonyNoData(t *testing.T) {
	tr := balancedTree(t, nil)
	var p dta.Parsimony
	demes, err := p.Infer(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range tr.Nodes() {
		if demes[id] != tree.Ambiguous {
			t.Errorf("node %d: got deme %d, want ambiguous", id, demes[id])
		}
	}
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix shell")
	}

	tr := balancedTree(t, map[string]int{"A": 0, "B": 2, "C": 1, "D": tree.Ambiguous})

	// a program that reports back
	// the demes of the terminals
	dir := t.TempDir()
	script := filepath.Join(dir, "echo-demes.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\ncat \"$2\"\n"), 0o755); err != nil {
		t.Fatalf("unable to write script: %v", err)
	}

	e := &dta.Exec{Program: script, Timeout: time.Minute}
	demes, err := e.Infer(tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]int{"A": 0, "B": 2, "C": 1, "D": tree.Ambiguous}
	for nm, dm := range want {
		if got := demes[tr.TaxNode(nm)]; got != dm {
			t.Errorf("node %q: got deme %d, want %d", nm, got, dm)
		}
	}
	// internal nodes are not in the program output
	if _, ok := demes[tr.TaxNode("n1")]; ok {
		t.Errorf("node n1: unexpected inference")
	}
}

func TestExecFail(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a unix shell")
	}

	dir := t.TempDir()
	script := filepath.Join(dir, "fail.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho 'engine exploded' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("unable to write script: %v", err)
	}

	tr := balancedTree(t, map[string]int{"A": 0, "B": 0, "C": 1, "D": 1})
	e := &dta.Exec{Program: script}
	_, err := e.Infer(tr)
	if err == nil {
		t.Fatalf("expecting error")
	}
	if !strings.Contains(err.Error(), "engine exploded") {
		t.Errorf("got error %q", err)
	}
}
