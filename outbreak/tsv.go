// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package outbreak

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

var infoHeader = []string{
	"parameter",
	"value",
}

// ReadInfo reads the general parameters of an outbreak
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// The parameters "demes"
// (the number of demes)
// and "duration"
// (the duration of the outbreak in days)
// are required.
// The parameter "origin" indicates the deme
// in which the outbreak started.
// Here is an example file:
//
//	# outbreak parameters
//	parameter	value
//	demes	5
//	duration	100
//	origin	0
func ReadInfo(r io.Reader, name string) (*Data, error) {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	fields, err := headerFields(tsv, infoHeader)
	if err != nil {
		return nil, err
	}

	demes := -1
	duration := -1
	origin := 0
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on row %d: %v", ln, err)
		}

		p := strings.ToLower(row[fields["parameter"]])
		f := "value"
		v, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return nil, fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		switch p {
		case "demes":
			demes = v
		case "duration":
			duration = v
		case "origin":
			origin = v
		}
	}
	if demes < 0 {
		return nil, fmt.Errorf("parameter %q not defined", "demes")
	}
	if duration < 0 {
		return nil, fmt.Errorf("parameter %q not defined", "duration")
	}

	d, err := New(name, demes, duration)
	if err != nil {
		return nil, err
	}
	if err := d.SetOrigin(origin); err != nil {
		return nil, err
	}
	return d, nil
}

// InfoTSV writes the general parameters of the outbreak
// as a TSV file.
func (d *Data) InfoTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# parameters of outbreak %q\n", d.name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(infoHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	rows := [][]string{
		{"demes", strconv.Itoa(d.demes)},
		{"duration", strconv.Itoa(d.duration)},
		{"origin", strconv.Itoa(d.origin)},
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

var incidenceHeader = []string{
	"deme",
	"day",
	"cases",
}

// ReadIncidence reads the daily case incidence of each deme
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - deme, the deme of the record
//   - day, a day of the outbreak
//   - cases, the number of new cases
//     on the deme at the day
//
// Days without records are set to zero cases.
func (d *Data) ReadIncidence(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	fields, err := headerFields(tsv, incidenceHeader)
	if err != nil {
		return err
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		vals := make(map[string]int, len(incidenceHeader))
		for _, f := range incidenceHeader {
			v, err := strconv.Atoi(row[fields[f]])
			if err != nil {
				return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
			}
			vals[f] = v
		}
		if err := d.SetCases(vals["deme"], vals["day"], vals["cases"]); err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return nil
}

// IncidenceTSV writes the daily case incidence
// of each deme
// as a TSV file.
// Days without cases are not written.
func (d *Data) IncidenceTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# case incidence of outbreak %q\n", d.name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(incidenceHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for deme := 0; deme < d.demes; deme++ {
		for day, c := range d.incidence[deme] {
			if c == 0 {
				continue
			}
			row := []string{
				strconv.Itoa(deme),
				strconv.Itoa(day),
				strconv.Itoa(c),
			}
			if err := tsv.Write(row); err != nil {
				return fmt.Errorf("while writing data: %v", err)
			}
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

var populationHeader = []string{
	"deme",
	"size",
}

// ReadPopulations reads the population size of each deme
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - deme, the deme of the record
//   - size, the population size of the deme
func (d *Data) ReadPopulations(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	fields, err := headerFields(tsv, populationHeader)
	if err != nil {
		return err
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "deme"
		deme, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "size"
		size, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		if err := d.SetPopulation(deme, size); err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return nil
}

// PopulationsTSV writes the population size of each deme
// as a TSV file.
func (d *Data) PopulationsTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# deme populations of outbreak %q\n", d.name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(populationHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for deme := 0; deme < d.demes; deme++ {
		row := []string{
			strconv.Itoa(deme),
			strconv.Itoa(d.pop[deme]),
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

var sampleHeader = []string{
	"sample",
	"time",
	"deme",
}

// ReadSamples reads the candidate samples of the outbreak
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - sample, the ID of the sample
//   - time, the collection time,
//     in days since the start of the outbreak
//   - deme, the deme in which the sample was collected
func (d *Data) ReadSamples(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	fields, err := headerFields(tsv, sampleHeader)
	if err != nil {
		return err
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		id := strings.TrimSpace(row[fields["sample"]])
		f := "time"
		tv, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "deme"
		deme, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		if err := d.AddSample(id, tv, deme); err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return nil
}

// SamplesTSV writes the candidate samples of the outbreak
// as a TSV file.
func (d *Data) SamplesTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# candidate samples of outbreak %q\n", d.name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(sampleHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, s := range d.Samples() {
		row := []string{
			s.ID,
			strconv.FormatFloat(s.Time, 'g', -1, 64),
			strconv.Itoa(s.Deme),
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

var migrationHeader = []string{
	"time",
	"origin",
	"destination",
}

// ReadMigrations reads the ground truth migrations
// of the outbreak
// from a TSV file.
//
// The TSV file must contain the following fields:
//
//   - time, the time of the migration,
//     in days since the start of the outbreak
//   - origin, the deme in which the migration started
//   - destination, the deme receiving the migration
func (d *Data) ReadMigrations(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	fields, err := headerFields(tsv, migrationHeader)
	if err != nil {
		return err
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		f := "time"
		tv, err := strconv.ParseFloat(row[fields[f]], 64)
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "origin"
		origin, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		f = "destination"
		dest, err := strconv.Atoi(row[fields[f]])
		if err != nil {
			return fmt.Errorf("on row %d: field %q: %v", ln, f, err)
		}
		if err := d.AddMigration(tv, origin, dest); err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}
	}
	return nil
}

// MigrationsTSV writes the ground truth migrations
// of the outbreak
// as a TSV file.
func (d *Data) MigrationsTSV(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# ground truth migrations of outbreak %q\n", d.name)
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(migrationHeader); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, m := range d.Migrations() {
		row := []string{
			strconv.FormatFloat(m.Time, 'g', -1, 64),
			strconv.Itoa(m.Origin),
			strconv.Itoa(m.Dest),
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

// HeaderFields reads the header of a TSV file
// and checks that all the required fields
// are defined.
func headerFields(tsv *csv.Reader, want []string) (map[string]int, error) {
	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("while reading header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range want {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("expecting field %q", h)
		}
	}
	return fields, nil
}
