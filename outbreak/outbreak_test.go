// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package outbreak_test

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/js-arias/sophi/outbreak"
)

func TestData(t *testing.T) {
	d := newData(t)

	testData(t, "data", d)
}

func TestTSV(t *testing.T) {
	d := newData(t)

	var info bytes.Buffer
	if err := d.InfoTSV(&info); err != nil {
		t.Fatalf("unable to write info TSV: %v", err)
	}
	nd, err := outbreak.ReadInfo(strings.NewReader(info.String()), "sim-0")
	if err != nil {
		t.Fatalf("unable to read info TSV: %v", err)
	}

	var w bytes.Buffer
	if err := d.IncidenceTSV(&w); err != nil {
		t.Fatalf("unable to write incidence TSV: %v", err)
	}
	if err := nd.ReadIncidence(strings.NewReader(w.String())); err != nil {
		t.Fatalf("unable to read incidence TSV: %v", err)
	}

	w.Reset()
	if err := d.PopulationsTSV(&w); err != nil {
		t.Fatalf("unable to write populations TSV: %v", err)
	}
	if err := nd.ReadPopulations(strings.NewReader(w.String())); err != nil {
		t.Fatalf("unable to read populations TSV: %v", err)
	}

	w.Reset()
	if err := d.SamplesTSV(&w); err != nil {
		t.Fatalf("unable to write samples TSV: %v", err)
	}
	if err := nd.ReadSamples(strings.NewReader(w.String())); err != nil {
		t.Fatalf("unable to read samples TSV: %v", err)
	}

	w.Reset()
	if err := d.MigrationsTSV(&w); err != nil {
		t.Fatalf("unable to write migrations TSV: %v", err)
	}
	if err := nd.ReadMigrations(strings.NewReader(w.String())); err != nil {
		t.Fatalf("unable to read migrations TSV: %v", err)
	}

	testData(t, "tsv", nd)
}

func TestDataErrors(t *testing.T) {
	if _, err := outbreak.New("bad", 0, 10); err == nil {
		t.Errorf("outbreak without demes: expecting error")
	}
	if _, err := outbreak.New("bad", 3, 0); err == nil {
		t.Errorf("outbreak without duration: expecting error")
	}

	d := newData(t)
	if err := d.SetOrigin(10); err == nil {
		t.Errorf("invalid origin deme: expecting error")
	}
	if err := d.SetCases(3, 1, 10); err == nil {
		t.Errorf("invalid incidence deme: expecting error")
	}
	if err := d.SetCases(0, 20, 10); err == nil {
		t.Errorf("invalid incidence day: expecting error")
	}
	if err := d.SetPopulation(0, -1); err == nil {
		t.Errorf("invalid population size: expecting error")
	}
	if err := d.AddSample("", 1, 0); err == nil {
		t.Errorf("sample without ID: expecting error")
	}
	if err := d.AddSample("leaf_0", 1, 0); err == nil {
		t.Errorf("duplicated sample: expecting error")
	}
	if err := d.AddSample("leaf_x", 1, 3); err == nil {
		t.Errorf("sample with invalid deme: expecting error")
	}
	if err := d.AddSample("leaf_x", -1, 0); err == nil {
		t.Errorf("sample with invalid time: expecting error")
	}
	if err := d.AddMigration(2, -1, 1); err == nil {
		t.Errorf("migration with invalid origin: expecting error")
	}
	if err := d.AddMigration(2, 0, 3); err == nil {
		t.Errorf("migration with invalid destination: expecting error")
	}
}

func newData(t testing.TB) *outbreak.Data {
	t.Helper()

	d, err := outbreak.New("sim-0", 3, 10)
	if err != nil {
		t.Fatalf("unable to create outbreak: %v", err)
	}
	if err := d.SetOrigin(1); err != nil {
		t.Fatalf("unable to set origin: %v", err)
	}

	cases := []struct {
		deme, day, cases int
	}{
		{0, 3, 5},
		{0, 4, 12},
		{1, 0, 1},
		{1, 1, 3},
		{1, 2, 8},
		{2, 5, 2},
	}
	for _, c := range cases {
		if err := d.SetCases(c.deme, c.day, c.cases); err != nil {
			t.Fatalf("unable to set cases: %v", err)
		}
	}

	pop := []int{20_000, 100_000, 5_000}
	for deme, size := range pop {
		if err := d.SetPopulation(deme, size); err != nil {
			t.Fatalf("unable to set population: %v", err)
		}
	}

	samples := []outbreak.Sample{
		{ID: "leaf_0", Time: 3.25, Deme: 0},
		{ID: "leaf_1", Time: 4.5, Deme: 0},
		{ID: "leaf_2", Time: 1.75, Deme: 1},
		{ID: "leaf_3", Time: 2.25, Deme: 1},
		{ID: "leaf_4", Time: 5.5, Deme: 2},
	}
	for _, s := range samples {
		if err := d.AddSample(s.ID, s.Time, s.Deme); err != nil {
			t.Fatalf("unable to add sample: %v", err)
		}
	}

	migs := []outbreak.Migration{
		{Time: 2.5, Origin: 1, Dest: 0},
		{Time: 4.75, Origin: 0, Dest: 2},
	}
	for _, m := range migs {
		if err := d.AddMigration(m.Time, m.Origin, m.Dest); err != nil {
			t.Fatalf("unable to add migration: %v", err)
		}
	}
	return d
}

func testData(t testing.TB, name string, d *outbreak.Data) {
	t.Helper()

	if g := d.Name(); g != "sim-0" {
		t.Errorf("%s: name: got %q, want %q", name, g, "sim-0")
	}
	if g := d.Demes(); g != 3 {
		t.Errorf("%s: demes: got %d, want %d", name, g, 3)
	}
	if g := d.Duration(); g != 10 {
		t.Errorf("%s: duration: got %d, want %d", name, g, 10)
	}
	if g := d.Origin(); g != 1 {
		t.Errorf("%s: origin: got %d, want %d", name, g, 1)
	}

	incidence := [][]int{
		{0, 0, 0, 5, 12, 0, 0, 0, 0, 0},
		{1, 3, 8, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 2, 0, 0, 0, 0},
	}
	for deme, w := range incidence {
		if g := d.Incidence(deme); !reflect.DeepEqual(g, w) {
			t.Errorf("%s: incidence of deme %d: got %v, want %v", name, deme, g, w)
		}
	}
	if g := d.Cases(1, 2); g != 8 {
		t.Errorf("%s: cases: got %d, want %d", name, g, 8)
	}
	total := []int{17, 12, 2}
	for deme, w := range total {
		if g := d.TotalCases(deme); g != w {
			t.Errorf("%s: total cases of deme %d: got %d, want %d", name, deme, g, w)
		}
	}

	pop := []int{20_000, 100_000, 5_000}
	for deme, w := range pop {
		if g := d.Population(deme); g != w {
			t.Errorf("%s: population of deme %d: got %d, want %d", name, deme, g, w)
		}
	}

	samples := []outbreak.Sample{
		{ID: "leaf_0", Time: 3.25, Deme: 0},
		{ID: "leaf_1", Time: 4.5, Deme: 0},
		{ID: "leaf_2", Time: 1.75, Deme: 1},
		{ID: "leaf_3", Time: 2.25, Deme: 1},
		{ID: "leaf_4", Time: 5.5, Deme: 2},
	}
	if g := d.Samples(); !reflect.DeepEqual(g, samples) {
		t.Errorf("%s: samples: got %v, want %v", name, g, samples)
	}
	if g := d.NumSamples(); g != len(samples) {
		t.Errorf("%s: samples: got %d records, want %d", name, g, len(samples))
	}
	s, ok := d.Sample("leaf_2")
	if !ok {
		t.Errorf("%s: sample %q not found", name, "leaf_2")
	}
	if !reflect.DeepEqual(s, samples[2]) {
		t.Errorf("%s: sample %q: got %v, want %v", name, "leaf_2", s, samples[2])
	}
	if _, ok := d.Sample("leaf_x"); ok {
		t.Errorf("%s: sample %q: expecting no record", name, "leaf_x")
	}

	days := [][]int{
		{0, 0, 0, 1, 1, 0, 0, 0, 0, 0},
		{0, 1, 1, 0, 0, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0, 1, 0, 0, 0, 0},
	}
	for deme, w := range days {
		if g := d.SampleDays(deme); !reflect.DeepEqual(g, w) {
			t.Errorf("%s: sample days of deme %d: got %v, want %v", name, deme, g, w)
		}
	}

	migs := []outbreak.Migration{
		{Time: 2.5, Origin: 1, Dest: 0},
		{Time: 4.75, Origin: 0, Dest: 2},
	}
	if g := d.Migrations(); !reflect.DeepEqual(g, migs) {
		t.Errorf("%s: migrations: got %v, want %v", name, g, migs)
	}
}
