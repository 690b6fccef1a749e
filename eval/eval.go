// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package eval implements the comparison
// of an inferred phylogeographic reconstruction
// against the ground truth
// of a simulated outbreak.
package eval

import (
	"math"

	"github.com/js-arias/sophi/events"
	"github.com/js-arias/sophi/outbreak"
)

// A Result stores the scores of an inference
// compared with the ground truth of its outbreak.
type Result struct {
	// SampleProps is the proportion of the candidate samples
	// drawn on each deme,
	// counting the samples of the whole inference chain.
	SampleProps map[int]float64

	// TotalProp is the proportion of candidate samples drawn
	// over the whole outbreak.
	TotalProp float64

	// Events is the number of inferred migratory events.
	Events int

	// EventProp is the ratio of inferred migratory events
	// to ground truth migrations.
	EventProp float64

	// TimeCount is the fraction of demes
	// in which the true introduction time
	// is inside the inferred introduction interval.
	TimeCount float64

	// TimeScore is like TimeCount,
	// but each correct deme scores
	// by the width of the inferred interval,
	// so narrow intervals are preferred.
	TimeScore float64

	// SourceCount is the fraction of demes
	// in which the inferred introduction source
	// is the true source.
	SourceCount float64
}

// An intro is an introduction of the pathogen
// into a deme.
// An introduction at the start of the outbreak,
// or at the root of the inferred tree,
// has no source.
type intro struct {
	start    float64 // time of the origin node
	end      float64 // time of the destination node
	source   int
	noSource bool
}

// Evaluate compares the earliest inferred introduction
// of each deme
// against the ground truth migrations of the outbreak.
//
// The inference is given by its migratory events
// and the deme and time of the root
// of its inferred tree;
// an unresolved root deme is ignored.
// Drawn is the set of sample IDs
// drawn by the whole inference chain,
// used for the sampling proportions.
//
// Only demes with a true introduction are scored;
// the origin deme of the outbreak
// counts as introduced at time zero
// without a source.
func Evaluate(d *outbreak.Data, ev []events.Event, rootDeme int, rootTime float64, drawn map[string]bool) *Result {
	inferred := make(map[int]intro)
	for _, e := range ev {
		in, ok := inferred[e.Deme]
		if ok && e.Start >= in.start {
			continue
		}
		inferred[e.Deme] = intro{
			start:  e.Start,
			end:    e.End,
			source: e.Source,
		}
	}
	// the root is the earliest introduction
	// of its own deme
	if rootDeme >= 0 {
		inferred[rootDeme] = intro{
			start:    0,
			end:      rootTime,
			noSource: true,
		}
	}

	migs := d.Migrations()
	truth := make(map[int]intro)
	for _, m := range migs {
		tr, ok := truth[m.Dest]
		if ok && m.Time >= tr.start {
			continue
		}
		truth[m.Dest] = intro{
			start:  m.Time,
			source: m.Origin,
		}
	}
	truth[d.Origin()] = intro{
		start:    0,
		noSource: true,
	}

	var timeCount, timeScore, srcCount float64
	for deme, tr := range truth {
		in, ok := inferred[deme]
		if !ok {
			continue
		}

		if tr.start >= in.start && tr.start <= in.end {
			timeCount++
			timeScore += 1 / (1 + math.Abs(in.end-in.start))
		}

		var srcOK bool
		if in.noSource {
			srcOK = !tr.noSource && tr.source == d.Origin()
		} else {
			srcOK = !tr.noSource && in.source == tr.source
		}
		if srcOK {
			srcCount++
		}
	}

	// normalize by the number of demes
	// with a true introduction
	n := float64(len(truth))
	res := &Result{
		Events:      len(ev),
		TimeCount:   timeCount / n,
		TimeScore:   timeScore / n,
		SourceCount: srcCount / n,
	}
	if len(migs) > 0 {
		res.EventProp = float64(len(ev)) / float64(len(migs))
	}
	res.sampleProps(d, drawn)
	return res
}

// SampleProps fills the proportion of candidate samples
// drawn on each deme.
func (res *Result) sampleProps(d *outbreak.Data, drawn map[string]bool) {
	res.SampleProps = make(map[int]float64, d.Demes())
	for deme := 0; deme < d.Demes(); deme++ {
		res.SampleProps[deme] = 0
	}

	count := make(map[int]int, d.Demes())
	total := make(map[int]int, d.Demes())
	num := 0
	for _, s := range d.Samples() {
		total[s.Deme]++
		if !drawn[s.ID] {
			continue
		}
		count[s.Deme]++
		num++
	}
	for deme, c := range count {
		if total[deme] == 0 {
			continue
		}
		res.SampleProps[deme] = float64(c) / float64(total[deme])
	}
	if all := d.NumSamples(); all > 0 {
		res.TotalProp = float64(num) / float64(all)
	}
}
