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

package coord

import "github.com/zymatik-com/phylo/nuc"

// CoordMap converts positions and ranges between alignment space and
// reference space, and from reference space into the stripped query
// sequence. It is built once per aligned reference/query pair and is
// immutable (and therefore safe to share between goroutines) afterwards.
type CoordMap struct {
	alnToRef []RefPosition
	refToAln []AlnPosition
	alnToQry []RefPosition
}

// NewCoordMap builds the conversion tables from an aligned reference
// sequence and an aligned query sequence, both before insertions are
// stripped. The two sequences must have equal length; qryAln may be nil if
// query-space conversions are not needed.
func NewCoordMap(refAln, qryAln []nuc.Nuc) *CoordMap {
	m := &CoordMap{
		alnToRef: makeAlnToRefTable(refAln),
		refToAln: makeRefToAlnTable(refAln),
	}

	if qryAln != nil {
		m.alnToQry = makeAlnToRefTable(qryAln)
	}

	return m
}

// makeAlnToRefTable maps every alignment column to the position of the
// corresponding letter in the ungapped sequence. Gap columns map to the
// last preceding non-gap position, or 0 when the alignment begins with
// gaps.
func makeAlnToRefTable(seq []nuc.Nuc) []RefPosition {
	table := make([]RefPosition, 0, len(seq))

	var refPos RefPosition
	for _, n := range seq {
		if n.IsGap() {
			if len(table) == 0 {
				table = append(table, 0)
			} else {
				table = append(table, table[len(table)-1])
			}
		} else {
			table = append(table, refPos)
			refPos++
		}
	}

	return table
}

// makeRefToAlnTable maps every position of the ungapped sequence to the
// alignment column holding it.
func makeRefToAlnTable(seq []nuc.Nuc) []AlnPosition {
	table := make([]AlnPosition, 0, len(seq))

	for i, n := range seq {
		if !n.IsGap() {
			table = append(table, AlnPosition(i))
		}
	}

	return table
}

// AlnLen returns the length of the alignment (the number of columns).
func (m *CoordMap) AlnLen() int {
	return len(m.alnToRef)
}

// RefLen returns the length of the ungapped reference.
func (m *CoordMap) RefLen() int {
	return len(m.refToAln)
}

// AlnToRefPosition returns the reference position of the letter aligned at
// the given column.
func (m *CoordMap) AlnToRefPosition(aln AlnPosition) RefPosition {
	return m.alnToRef[aln]
}

// RefToAlnPosition returns the alignment column holding the given
// reference position.
func (m *CoordMap) RefToAlnPosition(ref RefPosition) AlnPosition {
	return m.refToAln[ref]
}

// RefToQryPosition returns the position in the stripped query sequence
// corresponding to the given reference position.
func (m *CoordMap) RefToQryPosition(ref RefPosition) RefPosition {
	return m.alnToQry[m.RefToAlnPosition(ref)]
}

// AlnToRefRange converts an alignment-space range to reference space.
//
// The end of a half-open range is mapped through its last included
// position: mapping the end directly would collapse a range ending just
// before a run of gaps onto the wrong side of that run.
func (m *CoordMap) AlnToRefRange(alnRange AlnRange) RefRange {
	if alnRange.IsEmpty() {
		begin := m.AlnToRefPosition(alnRange.Begin)
		return NewRange(begin, begin)
	}

	return NewRange(m.AlnToRefPosition(alnRange.Begin), m.AlnToRefPosition(alnRange.End-1)+1)
}

// RefToAlnRange converts a reference-space range to alignment space.
func (m *CoordMap) RefToAlnRange(refRange RefRange) AlnRange {
	if refRange.IsEmpty() {
		begin := m.RefToAlnPosition(refRange.Begin)
		return NewRange(begin, begin)
	}

	return NewRange(m.RefToAlnPosition(refRange.Begin), m.RefToAlnPosition(refRange.End-1)+1)
}

// RefToQryRange converts a reference-space range into the stripped query
// sequence.
func (m *CoordMap) RefToQryRange(refRange RefRange) RefRange {
	if refRange.IsEmpty() {
		begin := m.RefToQryPosition(refRange.Begin)
		return NewRange(begin, begin)
	}

	return NewRange(m.RefToQryPosition(refRange.Begin), m.RefToQryPosition(refRange.End-1)+1)
}
