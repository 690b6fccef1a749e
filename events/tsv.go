// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package events

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

var header = []string{
	"event",
	"from",
	"source",
	"start",
	"to",
	"deme",
	"end",
	"size",
	"latest",
	"members",
}

// ReadTSV reads a list of migratory events
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - event, the ordinal ID of the event
//   - from, the name of the origin node
//   - source, the deme of the origin node
//   - start, the time of the origin node
//   - to, the name of the destination node
//   - deme, the deme of the destination node
//   - end, the time of the destination node
//   - size, the number of terminals
//     of the transmission lineage
//   - latest, the most recent sampling time
//     of the lineage
//   - members, the names of the nodes of the lineage,
//     separated by commas
func ReadTSV(r io.Reader) ([]Event, error) {
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

	var ev []Event
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "event"
		id, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "source"
		source, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "start"
		start, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "deme"
		deme, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "end"
		end, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "size"
		size, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "latest"
		latest, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}

		var members []string
		if mf := row[fields["members"]]; mf != "" {
			members = strings.Split(mf, ",")
		}

		e := Event{
			ID:      id,
			From:    strings.TrimSpace(row[fields["from"]]),
			Source:  source,
			Start:   start,
			To:      strings.TrimSpace(row[fields["to"]]),
			Deme:    deme,
			End:     end,
			Size:    size,
			Latest:  latest,
			Members: members,
		}
		ev = append(ev, e)
	}
	return ev, nil
}

// TSV writes a list of migratory events
// of the named tree
// as a TSV file.
func TSV(w io.Writer, name string, ev []Event) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# migratory events of tree %q\n", name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, e := range ev {
		row := []string{
			strconv.Itoa(e.ID),
			e.From,
			strconv.Itoa(e.Source),
			strconv.FormatFloat(e.Start, 'g', -1, 64),
			e.To,
			strconv.Itoa(e.Deme),
			strconv.FormatFloat(e.End, 'g', -1, 64),
			strconv.Itoa(e.Size),
			strconv.FormatFloat(e.Latest, 'g', -1, 64),
			strings.Join(e.Members, ","),
		}
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
