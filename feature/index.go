/* SPDX-License-Identifier: MPL-2.0
 *
 * Zymatik Phylo - A viral phylogenomics library for Go.
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the Mozilla Public License v2.0.
 *
 * You should have received a copy of the Mozilla Public License v2.0
 * along with this program. If not, see <https://mozilla.org/MPL/2.0/>.
 */

package feature

import (
	"sort"

	"github.com/Workiva/go-datastructures/augmentedtree"
	"github.com/zymatik-com/phylo/coord"
)

// Index answers overlap queries against the CDS segments of a genome
// annotation, e.g. which coding sequences cover a mutated position.
type Index struct {
	tree augmentedtree.Tree
}

// indexedSegment adapts a CDS segment to an interval tree entry.
type indexedSegment struct {
	id      uint64
	cdsName string
	segment *CdsSegment
}

func (s *indexedSegment) LowAtDimension(dim uint64) int64 {
	return int64(s.segment.Start)
}

// HighAtDimension returns the last position of the segment. The interval
// tree works on closed intervals while segments are half-open, hence the -1.
func (s *indexedSegment) HighAtDimension(dim uint64) int64 {
	return int64(s.segment.End) - 1
}

func (s *indexedSegment) OverlapsAtDimension(with augmentedtree.Interval, dim uint64) bool {
	return s.LowAtDimension(dim) <= with.HighAtDimension(dim) && s.HighAtDimension(dim) >= with.LowAtDimension(dim)
}

func (s *indexedSegment) ID() uint64 {
	return s.id
}

// query is a closed probe interval [low, high]; a single position has
// low == high.
type query struct {
	low, high int64
}

func (q *query) LowAtDimension(dim uint64) int64  { return q.low }
func (q *query) HighAtDimension(dim uint64) int64 { return q.high }
func (q *query) OverlapsAtDimension(with augmentedtree.Interval, dim uint64) bool {
	return q.low <= with.HighAtDimension(dim) && q.high >= with.LowAtDimension(dim)
}
func (q *query) ID() uint64 { return 0 }

// NewIndex builds an overlap index over the CDS segments of the given
// genes.
func NewIndex(genes []Gene) *Index {
	idx := &Index{
		tree: augmentedtree.New(1),
	}

	var id uint64
	for i := range genes {
		for j := range genes[i].Cdses {
			cds := &genes[i].Cdses[j]
			for k := range cds.Segments {
				id++
				idx.tree.Add(&indexedSegment{
					id:      id,
					cdsName: cds.Name,
					segment: &cds.Segments[k],
				})
			}
		}
	}

	return idx
}

// SegmentsAt returns the CDS segments covering the given reference
// position.
func (idx *Index) SegmentsAt(pos coord.RefPosition) []*CdsSegment {
	return idx.segments(&query{low: int64(pos), high: int64(pos)})
}

// SegmentsOverlapping returns the CDS segments overlapping the given
// reference range.
func (idx *Index) SegmentsOverlapping(r coord.RefRange) []*CdsSegment {
	if r.IsEmpty() {
		return nil
	}

	return idx.segments(&query{low: int64(r.Begin), high: int64(r.End) - 1})
}

// CdsNamesAt returns the names of the coding sequences covering the given
// reference position, sorted and deduplicated.
func (idx *Index) CdsNamesAt(pos coord.RefPosition) []string {
	var names []string
	seen := make(map[string]bool)
	for _, iv := range idx.tree.Query(&query{low: int64(pos), high: int64(pos)}) {
		name := iv.(*indexedSegment).cdsName
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

func (idx *Index) segments(q *query) []*CdsSegment {
	intervals := idx.tree.Query(q)

	segments := make([]*CdsSegment, 0, len(intervals))
	for _, iv := range intervals {
		segments = append(segments, iv.(*indexedSegment).segment)
	}

	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Start != segments[j].Start {
			return segments[i].Start < segments[j].Start
		}
		return segments[i].End < segments[j].End
	})

	return segments
}
