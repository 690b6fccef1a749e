// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package sampling_test

import (
	"fmt"
	"reflect"
	"slices"
	"testing"

	"github.com/js-arias/sophi/sampling"
	"golang.org/x/exp/rand"
)

func TestDrawDays(t *testing.T) {
	d := newData(t)

	alloc := []int{1, 3, 3, 3, 0, 0}
	ids := sampling.DrawDays(d, alloc, nil, sampling.Evenly, rand.NewSource(17))
	byDay := countByDay(t, d, ids)
	if want := map[int]int{0: 1, 1: 3, 2: 3, 3: 3}; !reflect.DeepEqual(byDay, want) {
		t.Errorf("draw: samples per day: got %v, want %v", byDay, want)
	}
	slices.Sort(ids)
	if uniq := slices.Compact(slices.Clone(ids)); len(uniq) != len(ids) {
		t.Errorf("draw: repeated samples in %v", ids)
	}
}

func TestDrawDaysTakeAll(t *testing.T) {
	d := newData(t)

	// a quota equal or larger
	// than the available samples of a day
	// takes every sample of the day
	alloc := []int{100, 0, 0, 100, 0, 0}
	ids := sampling.DrawDays(d, alloc, nil, sampling.ByCases, rand.NewSource(1))
	slices.Sort(ids)
	want := []string{
		"smp-0.0.0", "smp-0.0.1", "smp-0.0.2",
		"smp-0.3.0",
		"smp-1.3.0", "smp-1.3.1", "smp-1.3.2", "smp-1.3.3",
	}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("draw: got %v, want %v", ids, want)
	}
}

func TestDrawDaysZeroWeight(t *testing.T) {
	f := flatData(t)

	// days in which all the weights are zero
	// are skipped,
	// even if the quota covers all their samples
	ids := sampling.DrawDays(f, []int{5, 5, 5}, nil, sampling.ByCases, rand.NewSource(3))
	if len(ids) != 0 {
		t.Errorf("draw: got %v, want no samples", ids)
	}
}

func TestDrawDemes(t *testing.T) {
	d := newData(t)

	ids := sampling.DrawDemes(d, map[int]int{0: 4, 1: 6}, sampling.ByCases, rand.NewSource(99))
	byDeme := countByDeme(t, d, ids)
	if want := map[int]int{0: 4, 1: 6}; !reflect.DeepEqual(byDeme, want) {
		t.Errorf("draw: samples per deme: got %v, want %v", byDeme, want)
	}

	// a deme without samples is skipped
	ids = sampling.DrawDemes(d, map[int]int{0: 2, 5: 3}, sampling.BySamples, rand.NewSource(99))
	byDeme = countByDeme(t, d, ids)
	if want := map[int]int{0: 2}; !reflect.DeepEqual(byDeme, want) {
		t.Errorf("draw: samples per deme: got %v, want %v", byDeme, want)
	}
}

func TestDrawEarliestByDeme(t *testing.T) {
	d := newData(t)

	ids := sampling.DrawEarliestByDeme(d, map[int]int{0: 4, 1: 5}, rand.NewSource(11))
	byDeme := countByDeme(t, d, ids)
	if want := map[int]int{0: 4, 1: 5}; !reflect.DeepEqual(byDeme, want) {
		t.Errorf("draw: samples per deme: got %v, want %v", byDeme, want)
	}
	// deme 0: the three samples of day 0
	// must be part of the draw
	for _, id := range []string{"smp-0.0.0", "smp-0.0.1", "smp-0.0.2"} {
		if !slices.Contains(ids, id) {
			t.Errorf("draw: missing sample %q", id)
		}
	}
	// deme 1: the four samples of day 1
	// must be part of the draw
	for i := 0; i < 4; i++ {
		id := fmt.Sprintf("smp-1.1.%d", i)
		if !slices.Contains(ids, id) {
			t.Errorf("draw: missing sample %q", id)
		}
	}

	// a quota beyond the available samples
	// takes the whole deme
	ids = sampling.DrawEarliestByDeme(d, map[int]int{0: 100}, rand.NewSource(11))
	byDeme = countByDeme(t, d, ids)
	if want := map[int]int{0: 8}; !reflect.DeepEqual(byDeme, want) {
		t.Errorf("draw: samples per deme: got %v, want %v", byDeme, want)
	}
}

func TestDrawEarliest(t *testing.T) {
	d := newData(t)

	ids, err := sampling.DrawEarliest(d, nil, 0, -1, sampling.Number(10), rand.NewSource(23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byDay := countByDay(t, d, ids)
	if want := map[int]int{0: 3, 1: 6, 2: 1}; !reflect.DeepEqual(byDay, want) {
		t.Errorf("draw: samples per day: got %v, want %v", byDay, want)
	}

	// a target larger than the pool
	// takes every sample
	ids, err = sampling.DrawEarliest(d, nil, 0, -1, sampling.Number(50), rand.NewSource(23))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != d.NumSamples() {
		t.Errorf("draw: got %d samples, want %d", len(ids), d.NumSamples())
	}

	// an empty window is not an error,
	// even without a target size
	ids, err = sampling.DrawEarliest(d, nil, 4, -1, sampling.Target{}, rand.NewSource(23))
	if err != nil {
		t.Fatalf("empty window: unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("empty window: got %v, want no samples", ids)
	}
}

func TestDrawJoint(t *testing.T) {
	d := newData(t)

	// a full proportion takes the whole pool
	ids, err := sampling.DrawJoint(d, nil, 0, -1, sampling.Proportion(1), sampling.ByCases, rand.NewSource(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var all []string
	for _, sp := range d.Samples() {
		all = append(all, sp.ID)
	}
	slices.Sort(ids)
	if !reflect.DeepEqual(ids, all) {
		t.Errorf("draw: got %d samples, want %d", len(ids), len(all))
	}

	// a weighted draw of a fixed number
	ids, err = sampling.DrawJoint(d, nil, 0, -1, sampling.Number(5), sampling.Evenly, rand.NewSource(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 5 {
		t.Errorf("draw: got %d samples, want %d", len(ids), 5)
	}
	slices.Sort(ids)
	if uniq := slices.Compact(slices.Clone(ids)); len(uniq) != len(ids) {
		t.Errorf("draw: repeated samples in %v", ids)
	}

	// the draw is restricted to the time window
	ids, err = sampling.DrawJoint(d, nil, 2, 3, sampling.Number(4), sampling.BySamples, rand.NewSource(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 4 {
		t.Errorf("draw: got %d samples, want %d", len(ids), 4)
	}
	for day := range countByDay(t, d, ids) {
		if day < 2 || day > 3 {
			t.Errorf("draw: sample from day %d, outside window", day)
		}
	}

	// if all the weights are zero,
	// nothing is drawn
	f := flatData(t)
	ids, err = sampling.DrawJoint(f, nil, 0, -1, sampling.Number(1), sampling.ByCases, rand.NewSource(5))
	if err != nil {
		t.Fatalf("zero weights: unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("zero weights: got %v, want no samples", ids)
	}
}
