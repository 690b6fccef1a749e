// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampling

import (
	"cmp"
	"slices"

	"github.com/js-arias/sophi/outbreak"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Take makes a weighted draw without replacement
// of the indicated number of samples.
// If it runs out of samples with a non zero weight,
// it returns fewer samples than requested.
func take(ls []outbreak.Sample, w []float64, n int, src rand.Source) []string {
	sw := sampleuv.NewWeighted(w, src)
	ids := make([]string, 0, n)
	for len(ids) < n {
		i, ok := sw.Take()
		if !ok {
			break
		}
		ids = append(ids, ls[i].ID)
	}
	return ids
}

// DrawDays draws samples using per-day quotas.
// The alloc slice gives the quota
// of each day of the outbreak.
// Inside each day,
// samples are weighted by the given scheme
// on their deme of collection.
// A nil slice of demes means all the demes of the outbreak.
//
// If all the weights of a day are zero,
// the day is skipped.
// Otherwise,
// a day with a quota equal or larger
// than its available samples
// is taken in full.
func DrawDays(d *outbreak.Data, alloc []int, demes []int, s Scheme, src rand.Source) []string {
	demes = demeSet(d, demes)
	in := demeMap(demes)

	bins := make(map[int][]outbreak.Sample)
	for _, sp := range d.Samples() {
		if !in[sp.Deme] {
			continue
		}
		day := sp.Day()
		if day < 0 || day >= len(alloc) {
			continue
		}
		bins[day] = append(bins[day], sp)
	}

	var ids []string
	for day, quota := range alloc {
		if quota <= 0 {
			continue
		}
		bin := bins[day]
		if len(bin) == 0 {
			continue
		}

		count := make(map[int]int, len(demes))
		for _, sp := range bin {
			count[sp.Deme]++
		}
		w := make([]float64, len(bin))
		var total float64
		for i, sp := range bin {
			var v float64
			switch s {
			case BySamples:
				v = 1
			case ByCases:
				v = float64(d.Cases(sp.Deme, day)) / float64(count[sp.Deme])
			case ByPopulation:
				v = float64(d.Population(sp.Deme)) / float64(count[sp.Deme])
			case Evenly:
				v = 1 / float64(count[sp.Deme])
			default:
				panic("invalid draw scheme")
			}
			w[i] = v
			total += v
		}
		if total == 0 {
			continue
		}

		if quota >= len(bin) {
			for _, sp := range bin {
				ids = append(ids, sp.ID)
			}
			continue
		}
		ids = append(ids, take(bin, w, quota, src)...)
	}
	return ids
}

// DrawDemes draws samples using per-deme quotas.
// The alloc map gives the quota of each deme.
// Inside each deme,
// samples are weighted by the given scheme
// on their day of collection.
//
// If all the weights of a deme are zero,
// the deme is skipped.
// Otherwise,
// a deme with a quota equal or larger
// than its available samples
// is taken in full.
func DrawDemes(d *outbreak.Data, alloc map[int]int, s Scheme, src rand.Source) []string {
	demes := make([]int, 0, len(alloc))
	for dm := range alloc {
		demes = append(demes, dm)
	}
	slices.Sort(demes)

	bins := make(map[int][]outbreak.Sample, len(alloc))
	for _, sp := range d.Samples() {
		if _, ok := alloc[sp.Deme]; !ok {
			continue
		}
		bins[sp.Deme] = append(bins[sp.Deme], sp)
	}

	var ids []string
	for _, dm := range demes {
		quota := alloc[dm]
		if quota <= 0 {
			continue
		}
		bin := bins[dm]
		if len(bin) == 0 {
			continue
		}

		count := make(map[int]int)
		for _, sp := range bin {
			count[sp.Day()]++
		}
		w := make([]float64, len(bin))
		var total float64
		for i, sp := range bin {
			day := sp.Day()
			var v float64
			switch s {
			case BySamples:
				v = 1
			case ByCases:
				v = float64(d.Cases(dm, day)) / float64(count[day])
			case ByPopulation:
				v = float64(d.Population(dm)) / float64(count[day])
			case Evenly:
				v = 1 / float64(count[day])
			default:
				panic("invalid draw scheme")
			}
			w[i] = v
			total += v
		}
		if total == 0 {
			continue
		}

		if quota >= len(bin) {
			for _, sp := range bin {
				ids = append(ids, sp.ID)
			}
			continue
		}
		ids = append(ids, take(bin, w, quota, src)...)
	}
	return ids
}

// DrawEarliestByDeme draws the earliest collected samples
// of each deme,
// up to the quota of the deme
// given by the alloc map.
// Samples collected on the same day
// are ordered at random.
func DrawEarliestByDeme(d *outbreak.Data, alloc map[int]int, src rand.Source) []string {
	demes := make([]int, 0, len(alloc))
	for dm := range alloc {
		demes = append(demes, dm)
	}
	slices.Sort(demes)

	rnd := rand.New(src)
	type pick struct {
		sample outbreak.Sample
		order  float64
	}
	bins := make(map[int][]pick, len(alloc))
	for _, sp := range d.Samples() {
		if _, ok := alloc[sp.Deme]; !ok {
			continue
		}
		bins[sp.Deme] = append(bins[sp.Deme], pick{sample: sp, order: rnd.Float64()})
	}

	var ids []string
	for _, dm := range demes {
		quota := alloc[dm]
		if quota <= 0 {
			continue
		}
		bin := bins[dm]
		slices.SortFunc(bin, func(a, b pick) int {
			if c := cmp.Compare(a.sample.Day(), b.sample.Day()); c != 0 {
				return c
			}
			return cmp.Compare(a.order, b.order)
		})
		if quota > len(bin) {
			quota = len(bin)
		}
		for _, p := range bin[:quota] {
			ids = append(ids, p.sample.ID)
		}
	}
	return ids
}

// DrawEarliest draws the earliest collected samples
// of a time window,
// given as inclusive day bounds;
// a negative latest day means the end of the outbreak.
// A nil slice of demes means all the demes of the outbreak.
// If the last day to be included
// has more samples than the remaining quota,
// the samples of that day are picked at random.
func DrawEarliest(d *outbreak.Data, demes []int, earliest, latest int, t Target, src rand.Source) ([]string, error) {
	demes = demeSet(d, demes)
	lo, hi := window(d, earliest, latest)
	var ls []outbreak.Sample
	if lo <= hi {
		ls = poolWindow(d, demes, lo, hi)
	}
	if len(ls) == 0 {
		return nil, nil
	}

	target, err := t.resolve(len(ls))
	if err != nil {
		return nil, err
	}
	if target >= len(ls) {
		ids := make([]string, 0, len(ls))
		for _, sp := range ls {
			ids = append(ids, sp.ID)
		}
		return ids, nil
	}
	if target <= 0 {
		return nil, nil
	}

	bins := make(map[int][]outbreak.Sample)
	for _, sp := range ls {
		bins[sp.Day()] = append(bins[sp.Day()], sp)
	}
	days := make([]int, 0, len(bins))
	for day := range bins {
		days = append(days, day)
	}
	slices.Sort(days)

	rnd := rand.New(src)
	ids := make([]string, 0, target)
	for _, day := range days {
		bin := bins[day]
		quota := target - len(ids)
		if quota <= 0 {
			break
		}
		if len(bin) <= quota {
			for _, sp := range bin {
				ids = append(ids, sp.ID)
			}
			continue
		}
		for _, i := range rnd.Perm(len(bin))[:quota] {
			ids = append(ids, bin[i].ID)
		}
		break
	}
	return ids, nil
}

// DrawJoint draws samples from a time window
// in a single weighted draw,
// weighting each sample
// by its deme and day of collection
// under the given scheme.
// A nil slice of demes means all the demes of the outbreak.
//
// If the target is equal or larger
// than the candidate pool,
// the pool is taken in full.
// If all the weights are zero,
// no sample is drawn.
func DrawJoint(d *outbreak.Data, demes []int, earliest, latest int, t Target, s Scheme, src rand.Source) ([]string, error) {
	demes = demeSet(d, demes)
	lo, hi := window(d, earliest, latest)
	var ls []outbreak.Sample
	if lo <= hi {
		ls = poolWindow(d, demes, lo, hi)
	}
	if len(ls) == 0 {
		return nil, nil
	}

	target, err := t.resolve(len(ls))
	if err != nil {
		return nil, err
	}
	if target >= len(ls) {
		ids := make([]string, 0, len(ls))
		for _, sp := range ls {
			ids = append(ids, sp.ID)
		}
		return ids, nil
	}
	if target <= 0 {
		return nil, nil
	}

	type cell struct {
		deme int
		day  int
	}
	count := make(map[cell]int)
	for _, sp := range ls {
		count[cell{sp.Deme, sp.Day()}]++
	}

	w := make([]float64, len(ls))
	var total float64
	for i, sp := range ls {
		c := cell{sp.Deme, sp.Day()}
		var v float64
		switch s {
		case BySamples:
			v = 1
		case ByCases:
			v = float64(d.Cases(sp.Deme, sp.Day())) / float64(count[c])
		case ByPopulation:
			v = float64(d.Population(sp.Deme)) / float64(count[c])
		case Evenly:
			v = 1 / float64(count[c])
		default:
			panic("invalid draw scheme")
		}
		w[i] = v
		total += v
	}
	if total == 0 {
		return nil, nil
	}
	return take(ls, w, target, src), nil
}
