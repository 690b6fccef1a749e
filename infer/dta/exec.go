// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package dta

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/sophi/tree"
)

// Exec is a reconstruction engine
// that runs an external program.
//
// The engine writes the tree in newick format,
// and the terminal demes as a TSV file
// with the fields "name" and "deme",
// in which demes are numbered from 1,
// and unresolved terminals have an empty deme.
// Then it runs the program as:
//
//	program [args...] <tree-file> <demes-file>
//
// The program must print to its standard output
// a TSV with the fields "name" and "deme"
// for the named nodes of the tree,
// using the same numbering,
// with deme 0,
// or an empty deme,
// for the nodes left unresolved.
type Exec struct {
	// Program is the path of the program to be run.
	Program string

	// Args are additional arguments for the program,
	// given before the file names.
	Args []string

	// Timeout is the maximum run time of the program.
	// If zero,
	// a default of 30 minutes is used.
	Timeout time.Duration
}

// Infer implements the Engine interface.
func (e *Exec) Infer(t *tree.Tree) (map[int]int, error) {
	if e.Program == "" {
		return nil, errors.New("dta: undefined program")
	}

	dir, err := os.MkdirTemp("", "dta")
	if err != nil {
		return nil, fmt.Errorf("dta: %v", err)
	}
	defer os.RemoveAll(dir)

	tf := filepath.Join(dir, "tree.nwk")
	if err := writeTree(tf, t); err != nil {
		return nil, err
	}
	df := filepath.Join(dir, "demes.tab")
	if err := writeDemes(df, t); err != nil {
		return nil, err
	}

	timeout := e.Timeout
	if timeout == 0 {
		timeout = 30 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	args := append(slices.Clone(e.Args), tf, df)
	cmd := exec.CommandContext(ctx, e.Program, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("dta: program %q: %v: %s", e.Program, err, msg)
		}
		return nil, fmt.Errorf("dta: program %q: %v", e.Program, err)
	}
	return readDemes(&out, t)
}

func writeTree(name string, t *tree.Tree) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("dta: %v", err)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := t.Newick(f, false); err != nil {
		return fmt.Errorf("dta: on file %q: %v", name, err)
	}
	return nil
}

func writeDemes(name string, t *tree.Tree) (err error) {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("dta: %v", err)
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	w := csv.NewWriter(f)
	w.Comma = '\t'
	if err := w.Write([]string{"name", "deme"}); err != nil {
		return fmt.Errorf("dta: on file %q: %v", name, err)
	}
	for _, id := range t.Leaves() {
		nm := t.Taxon(id)
		if nm == "" {
			continue
		}
		deme := ""
		if t.Annotated(id) && t.Deme(id) != tree.Ambiguous {
			deme = strconv.Itoa(t.Deme(id) + 1)
		}
		if err := w.Write([]string{nm, deme}); err != nil {
			return fmt.Errorf("dta: on file %q: %v", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("dta: on file %q: %v", name, err)
	}
	return nil
}

// ReadDemes reads the name-deme TSV
// printed by an external program,
// and maps the demes back
// to the node IDs of the tree.
func readDemes(r io.Reader, t *tree.Tree) (map[int]int, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'

	header, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("dta: while reading program output: %v", err)
	}
	fields := make(map[string]int, len(header))
	for i, h := range header {
		fields[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range []string{"name", "deme"} {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("dta: program output: expecting field %q", h)
		}
	}

	demes := make(map[int]int)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dta: while reading program output: %v", err)
		}
		nm := row[fields["name"]]
		id := t.TaxNode(nm)
		if id < 0 {
			// a node not in the tree
			continue
		}
		v := strings.TrimSpace(row[fields["deme"]])
		if v == "" || v == "0" {
			demes[id] = tree.Ambiguous
			continue
		}
		dm, err := strconv.Atoi(v)
		if err != nil || dm < 0 {
			return nil, fmt.Errorf("dta: program output: node %q: invalid deme value %q", nm, v)
		}
		demes[id] = dm - 1
	}
	return demes, nil
}
