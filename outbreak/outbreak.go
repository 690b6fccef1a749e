// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package outbreak provides the data
// of a simulated disease outbreak:
// the daily case incidence
// and population size of each deme,
// the candidate samples,
// the transmission tree,
// and the ground truth migrations
// between demes.
package outbreak

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/js-arias/sophi/tree"
)

// A Sample is an atomic observation of the outbreak:
// an identified case
// collected at a given time
// (in days since the start of the outbreak)
// in a given deme.
type Sample struct {
	ID   string
	Time float64
	Deme int
}

// Day returns the day of the outbreak
// in which the sample was collected.
func (s Sample) Day() int {
	return int(math.Floor(s.Time))
}

// A Migration is a ground truth migration
// of the pathogen between two demes.
type Migration struct {
	Time   float64
	Origin int
	Dest   int
}

// Data is the data set of a simulated outbreak.
type Data struct {
	name     string
	demes    int
	duration int
	origin   int

	incidence [][]int // indexed by deme and day
	pop       []int
	samples   map[string]Sample
	migs      []Migration
	t         *tree.Tree
}

// New creates a new outbreak data set
// with the indicated number of demes
// and duration in days.
func New(name string, demes, duration int) (*Data, error) {
	if demes <= 0 {
		return nil, fmt.Errorf("outbreak %q: invalid number of demes: %d", name, demes)
	}
	if duration <= 0 {
		return nil, fmt.Errorf("outbreak %q: invalid duration: %d", name, duration)
	}

	d := &Data{
		name:      name,
		demes:     demes,
		duration:  duration,
		incidence: make([][]int, demes),
		pop:       make([]int, demes),
		samples:   make(map[string]Sample),
	}
	for i := range d.incidence {
		d.incidence[i] = make([]int, duration)
	}
	return d, nil
}

// Name returns the name of the outbreak.
func (d *Data) Name() string {
	return d.name
}

// Demes returns the number of demes.
func (d *Data) Demes() int {
	return d.demes
}

// Duration returns the duration of the outbreak,
// in days.
func (d *Data) Duration() int {
	return d.duration
}

// Origin returns the deme
// in which the outbreak started.
func (d *Data) Origin() int {
	return d.origin
}

// SetOrigin sets the deme
// in which the outbreak started.
func (d *Data) SetOrigin(deme int) error {
	if deme < 0 || deme >= d.demes {
		return fmt.Errorf("outbreak %q: invalid deme: %d", d.name, deme)
	}
	d.origin = deme
	return nil
}

// Cases returns the number of new cases
// on a deme
// at a given day.
func (d *Data) Cases(deme, day int) int {
	if deme < 0 || deme >= d.demes {
		return 0
	}
	if day < 0 || day >= d.duration {
		return 0
	}
	return d.incidence[deme][day]
}

// Incidence returns the daily incidence vector
// of a deme.
func (d *Data) Incidence(deme int) []int {
	if deme < 0 || deme >= d.demes {
		return nil
	}
	return slices.Clone(d.incidence[deme])
}

// TotalCases returns the sum of all cases
// of a deme.
func (d *Data) TotalCases(deme int) int {
	if deme < 0 || deme >= d.demes {
		return 0
	}
	var sum int
	for _, c := range d.incidence[deme] {
		sum += c
	}
	return sum
}

// SetCases sets the number of new cases
// on a deme
// at a given day.
func (d *Data) SetCases(deme, day, cases int) error {
	if deme < 0 || deme >= d.demes {
		return fmt.Errorf("outbreak %q: invalid deme: %d", d.name, deme)
	}
	if day < 0 || day >= d.duration {
		return fmt.Errorf("outbreak %q: invalid day: %d", d.name, day)
	}
	if cases < 0 {
		return fmt.Errorf("outbreak %q: invalid cases value: %d", d.name, cases)
	}
	d.incidence[deme][day] = cases
	return nil
}

// Population returns the population size of a deme.
func (d *Data) Population(deme int) int {
	if deme < 0 || deme >= d.demes {
		return 0
	}
	return d.pop[deme]
}

// SetPopulation sets the population size of a deme.
func (d *Data) SetPopulation(deme, size int) error {
	if deme < 0 || deme >= d.demes {
		return fmt.Errorf("outbreak %q: invalid deme: %d", d.name, deme)
	}
	if size < 0 {
		return fmt.Errorf("outbreak %q: invalid population size: %d", d.name, size)
	}
	d.pop[deme] = size
	return nil
}

// AddSample adds a candidate sample
// to the outbreak.
func (d *Data) AddSample(id string, time float64, deme int) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("outbreak %q: empty sample ID", d.name)
	}
	if _, dup := d.samples[id]; dup {
		return fmt.Errorf("outbreak %q: sample %q already in data set", d.name, id)
	}
	if deme < 0 || deme >= d.demes {
		return fmt.Errorf("outbreak %q: sample %q: invalid deme: %d", d.name, id, deme)
	}
	if time < 0 {
		return fmt.Errorf("outbreak %q: sample %q: invalid time: %.3f", d.name, id, time)
	}
	d.samples[id] = Sample{ID: id, Time: time, Deme: deme}
	return nil
}

// Sample returns a sample
// with the indicated ID.
func (d *Data) Sample(id string) (Sample, bool) {
	s, ok := d.samples[id]
	return s, ok
}

// Samples returns all candidate samples,
// sorted by ID.
func (d *Data) Samples() []Sample {
	ls := make([]Sample, 0, len(d.samples))
	for _, s := range d.samples {
		ls = append(ls, s)
	}
	slices.SortFunc(ls, func(a, b Sample) int {
		return strings.Compare(a.ID, b.ID)
	})
	return ls
}

// NumSamples returns the number of candidate samples.
func (d *Data) NumSamples() int {
	return len(d.samples)
}

// SampleDays returns the number of candidate samples
// collected on a deme
// at each day of the outbreak.
func (d *Data) SampleDays(deme int) []int {
	if deme < 0 || deme >= d.demes {
		return nil
	}
	v := make([]int, d.duration)
	for _, s := range d.samples {
		if s.Deme != deme {
			continue
		}
		day := s.Day()
		if day < 0 || day >= d.duration {
			continue
		}
		v[day]++
	}
	return v
}

// AddMigration adds a ground truth migration
// between two demes.
func (d *Data) AddMigration(time float64, origin, dest int) error {
	if origin < 0 || origin >= d.demes {
		return fmt.Errorf("outbreak %q: migration: invalid origin deme: %d", d.name, origin)
	}
	if dest < 0 || dest >= d.demes {
		return fmt.Errorf("outbreak %q: migration: invalid destination deme: %d", d.name, dest)
	}
	d.migs = append(d.migs, Migration{Time: time, Origin: origin, Dest: dest})
	return nil
}

// Migrations returns the ground truth migrations,
// sorted by time.
func (d *Data) Migrations() []Migration {
	ls := slices.Clone(d.migs)
	slices.SortFunc(ls, func(a, b Migration) int {
		if a.Time < b.Time {
			return -1
		}
		if a.Time > b.Time {
			return 1
		}
		if c := a.Origin - b.Origin; c != 0 {
			return c
		}
		return a.Dest - b.Dest
	})
	return ls
}

// SetTree sets the transmission tree of the outbreak.
func (d *Data) SetTree(t *tree.Tree) {
	d.t = t
}

// Tree returns the transmission tree of the outbreak.
func (d *Data) Tree() *tree.Tree {
	return d.t
}
