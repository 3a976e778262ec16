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
	"github.com/zymatik-com/phylo/coord"
)

// Feature-relative positions are plain ints: offset 0 is the first
// transcribed base of the feature. On the reverse strand the feature is
// read from its far end, so offset 0 corresponds to reference position
// End-1.

// RelRange is a half-open range of feature-relative positions.
type RelRange = coord.Range[int]

// RefToAlnPosition converts a position relative to the feature into an
// absolute alignment position.
func RefToAlnPosition(m *coord.CoordMap, f Placed, refPosRel int) coord.AlnPosition {
	loc := f.Location()

	var refPos coord.RefPosition
	if f.FeatureStrand() == StrandReverse {
		refPos = loc.End - 1 - coord.RefPosition(refPosRel)
	} else {
		refPos = loc.Begin + coord.RefPosition(refPosRel)
	}

	return m.RefToAlnPosition(refPos)
}

// AlnToRefPosition converts a position relative to the aligned feature into
// an absolute reference position.
func AlnToRefPosition(m *coord.CoordMap, f Placed, alnPosRel int) coord.RefPosition {
	loc := f.Location()

	var alnPos coord.AlnPosition
	if f.FeatureStrand() == StrandReverse {
		alnPos = m.RefToAlnPosition(loc.End-1) - coord.AlnPosition(alnPosRel)
	} else {
		alnPos = m.RefToAlnPosition(loc.Begin) + coord.AlnPosition(alnPosRel)
	}

	return m.AlnToRefPosition(alnPos)
}

// AlnToFeatureRefPosition converts a position relative to the aligned
// feature into a reference position relative to the feature start (or, on
// the reverse strand, to the feature's far end).
func AlnToFeatureRefPosition(m *coord.CoordMap, f Placed, alnPosRel int) int {
	loc := f.Location()

	if f.FeatureStrand() == StrandReverse {
		return int(loc.End - 1 - AlnToRefPosition(m, f, alnPosRel))
	}

	return int(AlnToRefPosition(m, f, alnPosRel) - loc.Begin)
}

// RefToAlnRange converts a feature-relative reference range into absolute
// alignment coordinates.
func RefToAlnRange(m *coord.CoordMap, f Placed, refRange RelRange) coord.AlnRange {
	if refRange.IsEmpty() {
		begin := RefToAlnPosition(m, f, refRange.Begin)
		return coord.NewRange(begin, begin)
	}

	return coord.NewRange(
		RefToAlnPosition(m, f, refRange.Begin),
		RefToAlnPosition(m, f, refRange.End-1)+1,
	)
}

// AlnToRefRange converts a feature-relative alignment range into absolute
// reference coordinates. On the reverse strand the orientation flips: the
// begin of the result comes from the last included position of the input
// and vice versa.
func AlnToRefRange(m *coord.CoordMap, f Placed, alnRange RelRange) coord.RefRange {
	if alnRange.IsEmpty() {
		begin := AlnToRefPosition(m, f, alnRange.Begin)
		return coord.NewRange(begin, begin)
	}

	if f.FeatureStrand() == StrandReverse {
		return coord.NewRange(
			AlnToRefPosition(m, f, alnRange.End-1),
			AlnToRefPosition(m, f, alnRange.Begin)+1,
		)
	}

	return coord.NewRange(
		AlnToRefPosition(m, f, alnRange.Begin),
		AlnToRefPosition(m, f, alnRange.End-1)+1,
	)
}

// AlnToFeatureRefRange converts a feature-relative alignment range into a
// feature-relative reference range.
func AlnToFeatureRefRange(m *coord.CoordMap, f Placed, alnRange RelRange) RelRange {
	if alnRange.IsEmpty() {
		begin := AlnToFeatureRefPosition(m, f, alnRange.Begin)
		return coord.NewRange(begin, begin)
	}

	return coord.NewRange(
		AlnToFeatureRefPosition(m, f, alnRange.Begin),
		AlnToFeatureRefPosition(m, f, alnRange.End-1)+1,
	)
}
