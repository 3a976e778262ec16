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
	"github.com/zymatik-com/phylo/nuc"
)

// ExtractGene extracts the nucleotide sequence of a gene from an aligned
// sequence, concatenating its coding sequences.
func ExtractGene(m *coord.CoordMap, alnSeq []nuc.Nuc, gene *Gene) []nuc.Nuc {
	var seq []nuc.Nuc
	for i := range gene.Cdses {
		seq = append(seq, ExtractCds(m, alnSeq, &gene.Cdses[i])...)
	}

	return seq
}

// ExtractCds extracts the nucleotide sequence of a coding sequence from an
// aligned sequence, concatenating its segments in list order.
func ExtractCds(m *coord.CoordMap, alnSeq []nuc.Nuc, cds *Cds) []nuc.Nuc {
	var seq []nuc.Nuc
	for i := range cds.Segments {
		seq = append(seq, ExtractCdsSegment(m, alnSeq, &cds.Segments[i])...)
	}

	return seq
}

// ExtractCdsSegment extracts the nucleotide sequence of a single CDS
// segment from an aligned sequence. Segments on the reverse strand are
// reverse-complemented.
func ExtractCdsSegment(m *coord.CoordMap, alnSeq []nuc.Nuc, segment *CdsSegment) []nuc.Nuc {
	// The annotation carries ranges in reference coordinates, but we are
	// slicing an aligned sequence.
	rangeAln := m.RefToAlnRange(segment.Location())

	seq := append([]nuc.Nuc(nil), alnSeq[rangeAln.Begin:rangeAln.End]...)

	if segment.Strand == StrandReverse {
		nuc.ReverseComplement(seq)
	}

	return seq
}

// CdsToAln maps positions of the concatenated, extracted CDS alignment back
// to global alignment columns, for one CDS segment.
type CdsToAln struct {
	// Global holds the global alignment column of every position of this
	// segment within the extracted CDS alignment.
	Global []coord.AlnPosition `json:"global"`
	// Start is the position of the segment within the concatenated CDS.
	Start int `json:"start"`
	// Len is the segment length in alignment columns.
	Len int `json:"len"`
}

// ExtractCdsAlignment extracts the aligned sequence of a coding sequence
// together with the per-segment mapping of extracted positions to global
// alignment columns.
func ExtractCdsAlignment(m *coord.CoordMap, alnSeq []nuc.Nuc, cds *Cds) ([]nuc.Nuc, []CdsToAln) {
	var cdsAln []nuc.Nuc
	cdsToAln := make([]CdsToAln, 0, len(cds.Segments))

	for i := range cds.Segments {
		segment := &cds.Segments[i]

		start := m.RefToAlnPosition(segment.Start)

		// A segment may end at the very end of the reference, one past the
		// last mappable position.
		var end coord.AlnPosition
		if int(segment.End) == m.RefLen() {
			end = coord.AlnPosition(m.AlnLen())
		} else {
			end = m.RefToAlnPosition(segment.End)
		}

		global := make([]coord.AlnPosition, 0, int(end-start))
		for pos := start; pos < end; pos++ {
			global = append(global, pos)
		}

		cdsToAln = append(cdsToAln, CdsToAln{
			Global: global,
			Start:  len(cdsAln),
			Len:    int(end - start),
		})

		cdsAln = append(cdsAln, alnSeq[start:end]...)
	}

	return cdsAln, cdsToAln
}

// SegmentPositionKind locates a concatenated-CDS position relative to one
// segment.
type SegmentPositionKind int

const (
	// BeforeSegment means the position falls before the segment.
	BeforeSegment SegmentPositionKind = iota
	// InsideSegment means the position falls within the segment.
	InsideSegment
	// AfterSegment means the position falls after the segment.
	AfterSegment
)

// SegmentPosition is the result of mapping a concatenated-CDS position onto
// one segment. Aln is only meaningful when Kind is InsideSegment.
type SegmentPosition struct {
	Kind SegmentPositionKind
	Aln  coord.AlnPosition
}

// CdsToGlobalAlnPosition maps a position in the extracted CDS alignment to
// the global alignment. It returns a result per CDS segment; a single
// position can only be inside one segment.
func CdsToGlobalAlnPosition(pos int, cdsToAln []CdsToAln) []SegmentPosition {
	positions := make([]SegmentPosition, 0, len(cdsToAln))

	for _, segment := range cdsToAln {
		posInSegment := pos - segment.Start

		switch {
		case posInSegment < 0:
			positions = append(positions, SegmentPosition{Kind: BeforeSegment})
		case posInSegment >= segment.Len:
			positions = append(positions, SegmentPosition{Kind: AfterSegment})
		default:
			positions = append(positions, SegmentPosition{Kind: InsideSegment, Aln: segment.Global[posInSegment]})
		}
	}

	return positions
}
