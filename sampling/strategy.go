// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampling

import (
	"github.com/js-arias/sophi/outbreak"
	"golang.org/x/exp/rand"
)

// A key is a strategy combination.
type key struct {
	priority Priority
	temporal Code
	spatial  Code
}

// Args are the arguments of a composite strategy,
// taken from a sampling design.
type args struct {
	data     *outbreak.Data
	demes    []int
	earliest int
	latest   int
	target   Target
	min      int
	src      rand.Source
}

// A drawFunc is a composite strategy,
// usually an allocation
// followed by a draw.
type drawFunc func(a args) ([]string, error)

// TemporalFirst returns a composite strategy
// that allocates per day
// and then draws inside each day.
func temporalFirst(alloc, draw Scheme) drawFunc {
	return func(a args) ([]string, error) {
		q, err := AllocateDays(a.data, a.demes, a.earliest, a.latest, a.target, a.min, alloc)
		if err != nil {
			return nil, err
		}
		return DrawDays(a.data, q, a.demes, draw, a.src), nil
	}
}

// SpatialFirst returns a composite strategy
// that allocates per deme
// and then draws inside each deme.
// Spatial designs ignore the time window.
func spatialFirst(alloc, draw Scheme) drawFunc {
	return func(a args) ([]string, error) {
		q, err := AllocateDemes(a.data, a.demes, a.target, a.min, alloc)
		if err != nil {
			return nil, err
		}
		return DrawDemes(a.data, q, draw, a.src), nil
	}
}

// SpatialEarliest returns a composite strategy
// that allocates per deme
// and takes the earliest samples of each deme.
func spatialEarliest(alloc Scheme) drawFunc {
	return func(a args) ([]string, error) {
		q, err := AllocateDemes(a.data, a.demes, a.target, a.min, alloc)
		if err != nil {
			return nil, err
		}
		return DrawEarliestByDeme(a.data, q, a.src), nil
	}
}

// JointDraw returns a composite strategy
// that draws from all the samples at once.
func jointDraw(s Scheme) drawFunc {
	return func(a args) ([]string, error) {
		return DrawJoint(a.data, a.demes, a.earliest, a.latest, a.target, s, a.src)
	}
}

// EarliestAll is the composite strategy
// that takes the earliest samples
// of the whole candidate pool.
func earliestAll(a args) ([]string, error) {
	return DrawEarliest(a.data, a.demes, a.earliest, a.latest, a.target, a.src)
}

// Strategies is the table of the registered strategy combinations.
// Combinations outside this table are invalid.
var strategies = map[key]drawFunc{
	// temporal prioritization
	{Temporal, UniformSamples, UniformSamples}: temporalFirst(BySamples, BySamples),
	{Temporal, UniformSamples, UniformCases}:   temporalFirst(BySamples, ByCases),
	{Temporal, UniformSamples, UniformPop}:     temporalFirst(BySamples, ByPopulation),
	{Temporal, UniformSamples, Even}:           temporalFirst(BySamples, Evenly),
	{Temporal, UniformCases, UniformSamples}:   temporalFirst(ByCases, BySamples),
	{Temporal, UniformCases, UniformCases}:     temporalFirst(ByCases, ByCases),
	{Temporal, UniformCases, UniformPop}:       temporalFirst(ByCases, ByPopulation),
	{Temporal, UniformCases, Even}:             temporalFirst(ByCases, Evenly),
	{Temporal, Even, UniformSamples}:           temporalFirst(Evenly, BySamples),
	{Temporal, Even, UniformCases}:             temporalFirst(Evenly, ByCases),
	{Temporal, Even, UniformPop}:               temporalFirst(Evenly, ByPopulation),
	{Temporal, Even, Even}:                     temporalFirst(Evenly, Evenly),
	{Temporal, EarliestN, ""}:                  earliestAll,

	// spatial prioritization
	{Spatial, UniformSamples, UniformSamples}: spatialFirst(BySamples, BySamples),
	{Spatial, UniformSamples, UniformCases}:   spatialFirst(ByCases, BySamples),
	{Spatial, UniformSamples, UniformPop}:     spatialFirst(ByPopulation, BySamples),
	{Spatial, UniformSamples, Even}:           spatialFirst(Evenly, BySamples),
	{Spatial, UniformCases, UniformSamples}:   spatialFirst(BySamples, ByCases),
	{Spatial, UniformCases, UniformCases}:     spatialFirst(ByCases, ByCases),
	{Spatial, UniformCases, UniformPop}:       spatialFirst(ByPopulation, ByCases),
	{Spatial, UniformCases, Even}:             spatialFirst(Evenly, ByCases),
	{Spatial, Even, UniformSamples}:           spatialFirst(BySamples, Evenly),
	{Spatial, Even, UniformCases}:             spatialFirst(ByCases, Evenly),
	{Spatial, Even, UniformPop}:               spatialFirst(ByPopulation, Evenly),
	{Spatial, Even, Even}:                     spatialFirst(Evenly, Evenly),
	{Spatial, EarliestN, UniformSamples}:      spatialEarliest(BySamples),
	{Spatial, EarliestN, UniformCases}:        spatialEarliest(ByCases),
	{Spatial, EarliestN, UniformPop}:          spatialEarliest(ByPopulation),
	{Spatial, EarliestN, Even}:                spatialEarliest(Evenly),

	// joint prioritization
	{Joint, UniformSamples, ""}: jointDraw(BySamples),
	{Joint, UniformCases, ""}:   jointDraw(ByCases),
	{Joint, Even, ""}:           jointDraw(Evenly),
	{Joint, EarliestN, ""}:      earliestAll,
}
