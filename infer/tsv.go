// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package infer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/sophi/sampling"
)

var header = []string{
	"inference",
	"head",
	"status",
	"method",
	"seed",
	"priority",
	"temporal",
	"spatial",
	"earliest",
	"latest",
	"number",
	"proportion",
	"min",
	"demes",
	"note",
	"samples",
}

// Read reads an inference chain from a TSV file.
// Each row is an inference,
// and the head of an inference
// must be defined in a previous row.
//
// The TSV file must contain the following fields:
//
//   - inference, the ID of the inference
//   - head, the ID of the parent inference,
//     empty for the root of the chain
//   - status, one of "pending", "running",
//     "success", or "failed"
//   - method, the reconstruction method
//   - seed, the random seed of the inference
//   - priority, temporal, spatial,
//     the strategy of the sampling design
//   - earliest, latest, the time window, in days
//   - number, proportion, the target size of the draw
//   - min, the minimum number of samples per unit
//   - demes, comma separated demes of the candidate pool
//   - note, a free text note
//   - samples, comma separated IDs of the drawn samples
func Read(name string) (*Chain, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	c := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "inference"
		id := strings.TrimSpace(row[fields[f]])
		if id == "" {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: expecting inference ID", name, ln, f)
		}
		if _, ok := c.nodes[id]; ok {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: repeated inference %q", name, ln, f, id)
		}

		f = "head"
		hd := strings.TrimSpace(row[fields[f]])
		var chain []string
		if hd == "" {
			if c.Root() != "" {
				return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, ErrRoot)
			}
		} else {
			p, ok := c.nodes[hd]
			if !ok {
				return nil, fmt.Errorf("on file %q: on row %d: field %q: inference %q not in chain", name, ln, f, hd)
			}
			chain = append(chain, p.chain...)
		}

		f = "status"
		st := Status(strings.ToLower(strings.TrimSpace(row[fields[f]])))
		if !st.isValid() {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: unknown status %q", name, ln, f, st)
		}

		f = "method"
		method := strings.TrimSpace(row[fields[f]])
		if method == "" {
			method = Parsimony
		}

		f = "seed"
		seed, err := strconv.ParseUint(strings.TrimSpace(row[fields[f]]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: field %q: %v", name, ln, f, err)
		}

		d, err := readDesign(row, fields)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f = "note"
		note := strings.TrimSpace(row[fields[f]])

		f = "samples"
		var samples []string
		if v := strings.TrimSpace(row[fields[f]]); v != "" {
			samples = strings.Split(v, ",")
		}

		n := &Node{
			c:       c,
			id:      id,
			head:    hd,
			chain:   append(chain, id),
			design:  d,
			method:  method,
			seed:    seed,
			status:  st,
			note:    note,
			samples: samples,
		}
		c.nodes[id] = n
		c.ids = append(c.ids, id)
	}
	return c, nil
}

// ReadDesign reads the sampling design fields of a row.
// An empty priority field means that the inference
// has no sampling design.
func readDesign(row []string, fields map[string]int) (*sampling.Design, error) {
	f := "priority"
	pr := strings.TrimSpace(row[fields[f]])
	if pr == "" {
		return nil, nil
	}

	d := sampling.New()
	tc := strings.TrimSpace(row[fields["temporal"]])
	sc := strings.TrimSpace(row[fields["spatial"]])
	if err := d.SetStrategy(sampling.Priority(pr), sampling.Code(tc), sampling.Code(sc)); err != nil {
		return nil, err
	}

	f = "earliest"
	early := 0
	if v := strings.TrimSpace(row[fields[f]]); v != "" {
		var err error
		early, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %v", f, err)
		}
	}
	f = "latest"
	late := -1
	if v := strings.TrimSpace(row[fields[f]]); v != "" {
		var err error
		late, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %v", f, err)
		}
	}
	if err := d.SetWindow(early, late); err != nil {
		return nil, err
	}

	f = "number"
	if v := strings.TrimSpace(row[fields[f]]); v != "" {
		num, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %v", f, err)
		}
		if err := d.SetNumber(num); err != nil {
			return nil, err
		}
	}
	f = "proportion"
	if v := strings.TrimSpace(row[fields[f]]); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("field %q: %v", f, err)
		}
		if err := d.SetProportion(p); err != nil {
			return nil, err
		}
	}

	f = "min"
	if v := strings.TrimSpace(row[fields[f]]); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %v", f, err)
		}
		if err := d.SetMin(m); err != nil {
			return nil, err
		}
	}

	f = "demes"
	if v := strings.TrimSpace(row[fields[f]]); v != "" {
		var demes []int
		for _, s := range strings.Split(v, ",") {
			dm, err := strconv.Atoi(strings.TrimSpace(s))
			if err != nil {
				return nil, fmt.Errorf("field %q: %v", f, err)
			}
			demes = append(demes, dm)
		}
		if err := d.SetDemes(demes); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Write writes the chain into its file.
func (c *Chain) Write() (err error) {
	f, err := os.Create(c.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# sophi inference chain\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", c.name, err)
	}
	for _, id := range c.ids {
		n := c.nodes[id]
		row := []string{
			n.id,
			n.head,
			string(n.status),
			n.method,
			strconv.FormatUint(n.seed, 10),
		}
		row = append(row, designRow(n.design)...)
		row = append(row, n.note, strings.Join(n.samples, ","))
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", c.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", c.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", c.name, err)
	}
	return nil
}

// DesignRow returns the sampling design fields of a row.
func designRow(d *sampling.Design) []string {
	if d == nil {
		return []string{"", "", "", "", "", "", "", "", ""}
	}

	p, tc, sc := d.Strategy()
	early, late := d.Window()
	num := ""
	if v, ok := d.Number(); ok {
		num = strconv.Itoa(v)
	}
	prop := ""
	if v, ok := d.Proportion(); ok {
		prop = strconv.FormatFloat(v, 'g', -1, 64)
	}
	var demes []string
	for _, dm := range d.Demes() {
		demes = append(demes, strconv.Itoa(dm))
	}
	return []string{
		string(p),
		string(tc),
		string(sc),
		strconv.Itoa(early),
		strconv.Itoa(late),
		num,
		prop,
		strconv.Itoa(d.Min()),
		strings.Join(demes, ","),
	}
}
