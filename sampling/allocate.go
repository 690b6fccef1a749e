// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampling

import (
	"math"
	"slices"

	"github.com/js-arias/sophi/outbreak"
)

// DemeSet returns the demes of a draw.
// A nil or empty slice means all the demes of the outbreak.
func demeSet(d *outbreak.Data, demes []int) []int {
	if len(demes) == 0 {
		demes = make([]int, d.Demes())
		for i := range demes {
			demes[i] = i
		}
		return demes
	}
	demes = slices.Clone(demes)
	slices.Sort(demes)
	return slices.Compact(demes)
}

func demeMap(demes []int) map[int]bool {
	in := make(map[int]bool, len(demes))
	for _, dm := range demes {
		in[dm] = true
	}
	return in
}

// Pool returns the candidate samples
// collected in the given demes,
// sorted by sample ID.
func pool(d *outbreak.Data, demes []int) []outbreak.Sample {
	in := demeMap(demes)
	var ls []outbreak.Sample
	for _, sp := range d.Samples() {
		if !in[sp.Deme] {
			continue
		}
		ls = append(ls, sp)
	}
	return ls
}

// PoolWindow returns the candidate samples
// collected in the given demes
// and between the days lo and hi,
// both inclusive,
// sorted by sample ID.
func poolWindow(d *outbreak.Data, demes []int, lo, hi int) []outbreak.Sample {
	in := demeMap(demes)
	var ls []outbreak.Sample
	for _, sp := range d.Samples() {
		if !in[sp.Deme] {
			continue
		}
		if day := sp.Day(); day < lo || day > hi {
			continue
		}
		ls = append(ls, sp)
	}
	return ls
}

// Window clamps a time window
// to the duration of the outbreak.
// A negative latest day means the end of the outbreak.
func window(d *outbreak.Data, earliest, latest int) (lo, hi int) {
	lo = earliest
	if lo < 0 {
		lo = 0
	}
	hi = latest
	if hi < 0 || hi >= d.Duration() {
		hi = d.Duration() - 1
	}
	return lo, hi
}

// AllocateDemes divides a target number of samples
// among the given demes,
// weighting each deme by the given scheme.
// A nil slice of demes means all the demes of the outbreak.
// The returned map has an entry for each requested deme.
// If a minimum is given,
// each deme will receive at least that minimum.
//
// If there are no candidate samples,
// or all the weights are zero,
// all the quotas will be zero.
func AllocateDemes(d *outbreak.Data, demes []int, t Target, min int, s Scheme) (map[int]int, error) {
	demes = demeSet(d, demes)
	alloc := make(map[int]int, len(demes))
	for _, dm := range demes {
		alloc[dm] = 0
	}

	ls := pool(d, demes)
	if len(ls) == 0 {
		return alloc, nil
	}

	switch s {
	case Evenly:
		target, err := t.resolve(len(ls))
		if err != nil {
			return nil, err
		}
		q := target / len(demes)
		for _, dm := range demes {
			alloc[dm] = q
		}
	case BySamples, ByCases, ByPopulation:
		w := make(map[int]float64, len(demes))
		var total float64
		if s == BySamples {
			for _, sp := range ls {
				w[sp.Deme]++
			}
			total = float64(len(ls))
		} else {
			for _, dm := range demes {
				v := float64(d.Population(dm))
				if s == ByCases {
					v = float64(d.TotalCases(dm))
				}
				w[dm] = v
				total += v
			}
		}
		if total == 0 {
			return alloc, nil
		}
		target, err := t.resolve(len(ls))
		if err != nil {
			return nil, err
		}
		for _, dm := range demes {
			alloc[dm] = int(math.Round(w[dm] / total * float64(target)))
		}
	default:
		panic("invalid allocation scheme")
	}

	if min > 0 {
		for dm, q := range alloc {
			if q < min {
				alloc[dm] = min
			}
		}
	}
	return alloc, nil
}

// AllocateDays divides a target number of samples
// among the days of a time window,
// given as inclusive day bounds,
// weighting each day by the given scheme.
// A negative latest day means the end of the outbreak.
// The returned slice has an element
// per day of the outbreak;
// days outside the window are always zero.
// If a minimum is given,
// each day of the window will receive at least that minimum,
// except in the BySamples scheme,
// in which the minimum is ignored.
//
// The ByPopulation scheme is only defined
// for deme allocations.
func AllocateDays(d *outbreak.Data, demes []int, earliest, latest int, t Target, min int, s Scheme) ([]int, error) {
	demes = demeSet(d, demes)
	alloc := make([]int, d.Duration())

	lo, hi := window(d, earliest, latest)
	if lo > hi {
		return alloc, nil
	}
	ls := poolWindow(d, demes, lo, hi)
	if len(ls) == 0 {
		return alloc, nil
	}

	switch s {
	case BySamples:
		perDay := make([]float64, d.Duration())
		for _, sp := range ls {
			perDay[sp.Day()]++
		}
		target, err := t.resolve(len(ls))
		if err != nil {
			return nil, err
		}
		for day := lo; day <= hi; day++ {
			alloc[day] = int(math.Round(perDay[day] / float64(len(ls)) * float64(target)))
		}
		return alloc, nil
	case ByCases:
		perDay := make([]float64, d.Duration())
		var total float64
		for _, dm := range demes {
			for day := lo; day <= hi; day++ {
				c := float64(d.Cases(dm, day))
				perDay[day] += c
				total += c
			}
		}
		if total == 0 {
			return alloc, nil
		}
		target, err := t.resolve(len(ls))
		if err != nil {
			return nil, err
		}
		for day := lo; day <= hi; day++ {
			alloc[day] = int(math.Round(perDay[day] / total * float64(target)))
			if alloc[day] < min {
				alloc[day] = min
			}
		}
		return alloc, nil
	case Evenly:
		target, err := t.resolve(len(ls))
		if err != nil {
			return nil, err
		}
		q := int(math.Round(float64(target) / float64(hi-lo+1)))
		if q < min {
			q = min
		}
		for day := lo; day <= hi; day++ {
			alloc[day] = q
		}
		return alloc, nil
	}
	panic("invalid allocation scheme")
}
