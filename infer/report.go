// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package infer

import (
	"fmt"

	"github.com/js-arias/sophi/outbreak"
)

// A Report is the count of the candidate samples
// of an outbreak,
// per deme and per day,
// as seen from an inference:
// the samples drawn by the inference itself,
// the samples drawn by its ancestors,
// and the samples that remain available.
// Each count is a vector
// with a value per day of the outbreak.
type Report struct {
	Current   map[int][]int
	Previous  map[int][]int
	Remaining map[int][]int
}

// SampleCounts returns the sample count report
// of the inference.
// It returns an error if the samples of the inference
// have not been drawn.
func (n *Node) SampleCounts(data *outbreak.Data) (*Report, error) {
	if n.samples == nil {
		return nil, fmt.Errorf("inference %s: no samples drawn", n.id)
	}

	curr := make(map[string]bool, len(n.samples))
	for _, s := range n.samples {
		curr[s] = true
	}
	prev := n.previous()

	r := &Report{
		Current:   make(map[int][]int, data.Demes()),
		Previous:  make(map[int][]int, data.Demes()),
		Remaining: make(map[int][]int, data.Demes()),
	}
	for d := 0; d < data.Demes(); d++ {
		r.Current[d] = make([]int, data.Duration())
		r.Previous[d] = make([]int, data.Duration())
		r.Remaining[d] = make([]int, data.Duration())
	}

	for _, s := range data.Samples() {
		day := s.Day()
		if day < 0 || day >= data.Duration() {
			continue
		}
		switch {
		case curr[s.ID]:
			r.Current[s.Deme][day]++
		case prev[s.ID]:
			r.Previous[s.Deme][day]++
		default:
			r.Remaining[s.Deme][day]++
		}
	}
	return r, nil
}
