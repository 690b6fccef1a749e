// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package eval

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

var header = []string{
	"metric",
	"value",
}

// ReadTSV reads an evaluation result from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - metric, the name of an evaluation metric
//   - value, the value of the metric
//
// The valid metrics are "events",
// "prop-events",
// "time-count",
// "time-score",
// "source-count",
// "samples-all",
// and "samples-<deme>" for each deme.
func ReadTSV(r io.Reader) (*Result, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}

	res := &Result{SampleProps: make(map[int]float64)}
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "metric"
		m := strings.ToLower(strings.TrimSpace(row[fields[f]]))

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		if m == "events" {
			res.Events, err = strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
			}
			continue
		}
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		switch {
		case m == "prop-events":
			res.EventProp = val
		case m == "time-count":
			res.TimeCount = val
		case m == "time-score":
			res.TimeScore = val
		case m == "source-count":
			res.SourceCount = val
		case m == "samples-all":
			res.TotalProp = val
		case strings.HasPrefix(m, "samples-"):
			d, err := strconv.Atoi(strings.TrimPrefix(m, "samples-"))
			if err != nil || d < 0 {
				return nil, fmt.Errorf("on row %d: field %q: unknown metric %q", ln, "metric", m)
			}
			res.SampleProps[d] = val
		default:
			return nil, fmt.Errorf("on row %d: field %q: unknown metric %q", ln, "metric", m)
		}
	}
	return res, nil
}

// TSV writes an evaluation result as a TSV file,
// using the name of the evaluated inference
// on the file comment.
func TSV(w io.Writer, name string, r *Result) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# evaluation of inference %q\n", name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}

	rows := [][]string{
		{"events", strconv.Itoa(r.Events)},
		{"prop-events", strconv.FormatFloat(r.EventProp, 'g', -1, 64)},
		{"time-count", strconv.FormatFloat(r.TimeCount, 'g', -1, 64)},
		{"time-score", strconv.FormatFloat(r.TimeScore, 'g', -1, 64)},
		{"source-count", strconv.FormatFloat(r.SourceCount, 'g', -1, 64)},
		{"samples-all", strconv.FormatFloat(r.TotalProp, 'g', -1, 64)},
	}
	demes := make([]int, 0, len(r.SampleProps))
	for d := range r.SampleProps {
		demes = append(demes, d)
	}
	slices.Sort(demes)
	for _, d := range demes {
		rows = append(rows, []string{
			"samples-" + strconv.Itoa(d),
			strconv.FormatFloat(r.SampleProps[d], 'g', -1, 64),
		})
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("while writing data: %v", err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
