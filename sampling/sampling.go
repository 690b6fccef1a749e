// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sampling implements the sampling designs
// used to pick outbreak samples for a phylogeographic inference.
//
// A sampling design is defined by a prioritization
// (which axis is allocated first)
// and a pair of strategy codes,
// one for the temporal axis
// and one for the spatial axis.
// The valid combinations form a fixed set of composite strategies,
// each one an allocation step
// followed by a draw step.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/js-arias/sophi/outbreak"
	"golang.org/x/exp/rand"
)

// Priority indicates the axis
// that a sampling design allocates first.
type Priority string

// Valid prioritizations.
const (
	// Temporal designs allocate quotas per day
	// and then draw inside each day.
	Temporal Priority = "T"

	// Spatial designs allocate quotas per deme
	// and then draw inside each deme.
	Spatial Priority = "S"

	// Joint designs draw from all samples at once,
	// weighting each sample
	// by its day and deme of collection.
	Joint Priority = "J"
)

func (p Priority) isValid() bool {
	switch p {
	case Temporal, Spatial, Joint:
		return true
	}
	return false
}

// Code is a strategy code
// for an axis of a sampling design.
type Code string

// Valid strategy codes.
const (
	// UniformSamples allocates in proportion
	// to the number of candidate samples.
	UniformSamples Code = "US"

	// UniformCases allocates in proportion
	// to the case incidence.
	UniformCases Code = "UC"

	// UniformPop allocates in proportion
	// to the population size of each deme.
	UniformPop Code = "UP"

	// Even allocates the same quota to each unit.
	Even Code = "EV"

	// EarliestN takes the earliest collected samples.
	EarliestN Code = "EN"

	// LatestN takes the latest collected samples.
	LatestN Code = "LN"
)

func (c Code) isValid() bool {
	switch c {
	case UniformSamples, UniformCases, UniformPop, Even, EarliestN, LatestN:
		return true
	}
	return false
}

// Scheme is the weighting scheme
// used by an allocation or a draw.
type Scheme int

// Valid weighting schemes.
const (
	// BySamples weights each unit
	// by its number of candidate samples.
	BySamples Scheme = iota

	// ByCases weights each unit
	// by its case incidence.
	ByCases

	// ByPopulation weights each unit
	// by its population size.
	ByPopulation

	// Evenly gives the same weight to each unit.
	Evenly
)

func (s Scheme) String() string {
	switch s {
	case BySamples:
		return "by-samples"
	case ByCases:
		return "by-cases"
	case ByPopulation:
		return "by-population"
	case Evenly:
		return "evenly"
	}
	return "unknown"
}

// ErrNoTarget is the error produced by a draw
// without a defined target size.
var ErrNoTarget = errors.New("no target size defined")

// A Target is the size of a draw,
// either an absolute number of samples,
// or a proportion of the candidate pool.
// The zero value of a Target is invalid
// and resolves to ErrNoTarget.
type Target struct {
	n      int
	p      float64
	number bool
	prop   bool
}

// Number returns a target
// with an absolute number of samples.
func Number(n int) Target {
	return Target{n: n, number: true}
}

// Proportion returns a target
// defined as a proportion of the candidate pool.
func Proportion(p float64) Target {
	return Target{p: p, prop: true}
}

// Resolve returns the number of samples to be drawn
// from a pool of the indicated size.
func (t Target) resolve(pool int) (int, error) {
	if t.number {
		return t.n, nil
	}
	if t.prop {
		return int(math.Round(t.p * float64(pool))), nil
	}
	return 0, ErrNoTarget
}

// A StrategyError is the error produced
// by an unregistered strategy combination.
type StrategyError struct {
	Priority Priority
	Temporal Code
	Spatial  Code
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("invalid strategy combination: priority %q, temporal %q, spatial %q", e.Priority, e.Temporal, e.Spatial)
}

// An ArgumentError is the error produced by a draw
// invoked without a required argument.
type ArgumentError struct {
	Strategy string
	Arg      string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("strategy %s: missing required argument: %s", e.Strategy, e.Arg)
}

// A Design is the configuration of a sampling design.
type Design struct {
	earliest int
	latest   int
	number   int
	prop     float64
	min      int
	demes    []int
	priority Priority
	temporal Code
	spatial  Code
}

// New creates a new sampling design
// with default values:
// a joint design
// weighted by case incidence,
// over the whole duration of the outbreak
// and all demes.
func New() *Design {
	return &Design{
		latest:   -1,
		number:   -1,
		prop:     -1,
		priority: Joint,
		temporal: UniformCases,
	}
}

// SetStrategy sets the prioritization
// and the strategy codes of a design.
// The spatial code can be empty
// for designs that do not allocate per deme.
func (d *Design) SetStrategy(p Priority, temporal, spatial Code) error {
	p = Priority(strings.ToUpper(strings.TrimSpace(string(p))))
	temporal = Code(strings.ToUpper(strings.TrimSpace(string(temporal))))
	spatial = Code(strings.ToUpper(strings.TrimSpace(string(spatial))))

	if !p.isValid() {
		return fmt.Errorf("invalid priority: %q", p)
	}
	if !temporal.isValid() {
		return fmt.Errorf("invalid temporal strategy: %q", temporal)
	}
	if spatial != "" && !spatial.isValid() {
		return fmt.Errorf("invalid spatial strategy: %q", spatial)
	}
	d.priority = p
	d.temporal = temporal
	d.spatial = spatial
	return nil
}

// Strategy returns the prioritization
// and the strategy codes of a design.
func (d *Design) Strategy() (p Priority, temporal, spatial Code) {
	return d.priority, d.temporal, d.spatial
}

// SetNumber sets the target
// as an absolute number of samples.
// It removes any target proportion.
func (d *Design) SetNumber(n int) error {
	if n < 0 {
		return fmt.Errorf("invalid target number: %d", n)
	}
	d.number = n
	d.prop = -1
	return nil
}

// Number returns the target number of samples,
// and false if the target is not an absolute number.
func (d *Design) Number() (int, bool) {
	if d.number < 0 {
		return 0, false
	}
	return d.number, true
}

// SetProportion sets the target
// as a proportion of the candidate pool.
// It removes any target number.
func (d *Design) SetProportion(p float64) error {
	if p <= 0 || p > 1 {
		return fmt.Errorf("invalid target proportion: %.6f", p)
	}
	d.prop = p
	d.number = -1
	return nil
}

// Proportion returns the target proportion,
// and false if the target is not a proportion.
func (d *Design) Proportion() (float64, bool) {
	if d.prop < 0 {
		return 0, false
	}
	return d.prop, true
}

// Target returns the target size of a design.
func (d *Design) target() Target {
	if d.number >= 0 {
		return Number(d.number)
	}
	if d.prop >= 0 {
		return Proportion(d.prop)
	}
	return Target{}
}

// SetWindow sets the time window of a design,
// in days since the start of the outbreak,
// with both bounds inclusive.
// A negative latest day means the end of the outbreak.
func (d *Design) SetWindow(earliest, latest int) error {
	if earliest < 0 {
		return fmt.Errorf("invalid earliest day: %d", earliest)
	}
	if latest >= 0 && latest < earliest {
		return fmt.Errorf("invalid latest day: %d", latest)
	}
	if latest < 0 {
		latest = -1
	}
	d.earliest = earliest
	d.latest = latest
	return nil
}

// Window returns the time window of a design.
// A latest day of -1 means the end of the outbreak.
func (d *Design) Window() (earliest, latest int) {
	return d.earliest, d.latest
}

// SetMin sets the minimum number of samples
// allocated to each unit.
func (d *Design) SetMin(min int) error {
	if min < 0 {
		return fmt.Errorf("invalid minimum: %d", min)
	}
	d.min = min
	return nil
}

// Min returns the minimum number of samples
// allocated to each unit.
func (d *Design) Min() int {
	return d.min
}

// SetDemes sets the demes
// used as the candidate pool of a design.
// An empty set of demes means all the demes.
func (d *Design) SetDemes(demes []int) error {
	for _, dm := range demes {
		if dm < 0 {
			return fmt.Errorf("invalid deme: %d", dm)
		}
	}
	if len(demes) == 0 {
		d.demes = nil
		return nil
	}
	demes = slices.Clone(demes)
	slices.Sort(demes)
	d.demes = slices.Compact(demes)
	return nil
}

// Demes returns the demes
// used as the candidate pool of a design.
// A nil slice means all the demes.
func (d *Design) Demes() []int {
	if d.demes == nil {
		return nil
	}
	return slices.Clone(d.demes)
}

// String returns the name of the design strategy,
// for example "J(UC)" for a joint design
// weighted by case incidence,
// or "T(UC->EV)" for a temporal design
// that allocates per day by case incidence
// and draws evenly among demes.
func (d *Design) String() string {
	switch d.priority {
	case Spatial:
		return fmt.Sprintf("%s(%s->%s)", d.priority, d.spatial, d.temporal)
	case Temporal:
		if d.spatial == "" {
			return fmt.Sprintf("%s(%s)", d.priority, d.temporal)
		}
		return fmt.Sprintf("%s(%s->%s)", d.priority, d.temporal, d.spatial)
	}
	return fmt.Sprintf("%s(%s)", d.priority, d.temporal)
}

// Draw picks the samples of an outbreak
// defined by the design,
// using the given random source,
// and returns their IDs sorted alphabetically.
//
// If the strategy combination of the design is not registered
// it returns a StrategyError.
// If the candidate pool is not empty
// and the design has no target size
// it returns ErrNoTarget.
func (d *Design) Draw(data *outbreak.Data, src rand.Source) ([]string, error) {
	if data == nil {
		return nil, &ArgumentError{Strategy: d.String(), Arg: "outbreak data"}
	}
	if src == nil {
		return nil, &ArgumentError{Strategy: d.String(), Arg: "random source"}
	}

	fn, ok := strategies[key{d.priority, d.temporal, d.spatial}]
	if !ok {
		return nil, &StrategyError{Priority: d.priority, Temporal: d.temporal, Spatial: d.spatial}
	}

	ids, err := fn(args{
		data:     data,
		demes:    d.demes,
		earliest: d.earliest,
		latest:   d.latest,
		target:   d.target(),
		min:      d.min,
		src:      src,
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}
