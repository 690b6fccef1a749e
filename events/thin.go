// Copyright © 2025 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package events

import (
	"cmp"
	"math"
	"slices"

	"github.com/js-arias/sophi/tree"
)

// Thin removes terminals from a tree
// until the number of terminals
// is equal or below the indicated target.
// The tree is modified in place.
//
// The removals are distributed
// between the transmission lineages
// with a size equal or larger than minLineage,
// and the pool of terminals
// outside of any lineage,
// in proportion to the size of each group
// raised to alpha,
// so with an alpha greater than one
// large lineages lose proportionally more terminals.
//
// Terminals with the shortest branches
// are removed first.
// The nodes of the events,
// as well as the root,
// are anchor nodes:
// a terminal whose parent is an anchor node
// is never removed,
// so the resulting tree
// can be larger than the target.
func Thin(t *tree.Tree, ev []Event, target, minLineage int, alpha float64) error {
	leaves := t.Leaves()
	if len(leaves) <= target {
		return nil
	}

	anchor := make(map[string]bool, 2*len(ev)+1)
	for _, e := range ev {
		anchor[e.From] = true
		anchor[e.To] = true
	}
	anchor[t.Taxon(t.Root())] = true

	inLineage := make(map[string]bool)
	for _, e := range ev {
		for _, m := range e.Members {
			inLineage[m] = true
		}
	}
	var exterior []int
	for _, l := range leaves {
		if !inLineage[t.Taxon(l)] {
			exterior = append(exterior, l)
		}
	}

	// lineages large enough to be thinned,
	// from largest to smallest
	big := make([]Event, 0, len(ev))
	for _, e := range ev {
		if e.Size >= minLineage {
			big = append(big, e)
		}
	}
	slices.SortStableFunc(big, func(a, b Event) int {
		return cmp.Compare(b.Size, a.Size)
	})

	var sumW float64
	for _, e := range big {
		sumW += math.Pow(float64(e.Size), alpha)
	}
	extW := math.Pow(float64(len(exterior)), alpha)
	if sumW+extW == 0 {
		return nil
	}
	factor := float64(len(leaves)-target) / (sumW + extW)

	if err := removeLeaves(t, exterior, int(factor*extW), anchor); err != nil {
		return err
	}
	for _, e := range big {
		members := make(map[string]bool, len(e.Members))
		for _, m := range e.Members {
			members[m] = true
		}
		var pool []int
		for _, l := range t.Leaves() {
			if members[t.Taxon(l)] {
				pool = append(pool, l)
			}
		}
		w := math.Pow(float64(e.Size), alpha)
		if err := removeLeaves(t, pool, int(factor*w), anchor); err != nil {
			return err
		}
	}
	return nil
}

// RemoveLeaves removes terminals from a pool,
// shortest branches first,
// until num terminals are removed.
// A terminal whose parent is an anchor node
// is permanently skipped;
// if only skipped terminals remain
// the removal stops early.
func removeLeaves(t *tree.Tree, pool []int, num int, anchor map[string]bool) error {
	skip := make(map[int]bool)
	removed := make(map[int]bool)
	for num > 0 {
		avail := make([]int, 0, len(pool))
		for _, l := range pool {
			if skip[l] || removed[l] {
				continue
			}
			avail = append(avail, l)
		}
		if len(avail) == 0 {
			break
		}
		slices.SortStableFunc(avail, func(a, b int) int {
			return cmp.Compare(t.BrLen(a), t.BrLen(b))
		})

		any := false
		for _, l := range avail {
			// the parent might change
			// as neighbor terminals are removed
			if anchor[t.Taxon(t.Parent(l))] {
				skip[l] = true
				continue
			}
			if err := t.DeleteLeaf(l); err != nil {
				return err
			}
			removed[l] = true
			num--
			any = true
			if num <= 0 {
				break
			}
		}
		if !any {
			break
		}
	}
	return nil
}
