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

// Package feature models the genomic features of a reference genome: genes,
// coding sequences (CDS) and their segments. A CDS may be split into
// multiple segments (e.g. across a ribosomal slippage site or the origin of
// a circular genome) which are concatenated in list order, not by
// coordinate. Each segment sits on its own strand.
package feature

import (
	"github.com/zymatik-com/phylo/coord"
)

// Strand is the strand of a genomic feature.
type Strand string

const (
	// StrandForward is the 5' to 3' strand.
	StrandForward Strand = "+"
	// StrandReverse is the 3' to 5' strand.
	StrandReverse Strand = "-"
)

// Placed is implemented by features that occupy a stranded half-open range
// of the reference genome.
type Placed interface {
	// Location returns the feature range in reference coordinates.
	Location() coord.RefRange
	// FeatureStrand returns the strand the feature is read from.
	FeatureStrand() Strand
}

// CdsSegment is a contiguous stretch of coding sequence.
type CdsSegment struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	// Start and End are half-open reference coordinates.
	Start  coord.RefPosition `json:"start"`
	End    coord.RefPosition `json:"end"`
	Strand Strand            `json:"strand"`
	// Frame is the reading frame offset of the first base of the segment.
	Frame int `json:"frame"`
}

// Location returns the segment range in reference coordinates.
func (s *CdsSegment) Location() coord.RefRange {
	return coord.NewRange(s.Start, s.End)
}

// FeatureStrand returns the strand the segment is read from.
func (s *CdsSegment) FeatureStrand() Strand {
	return s.Strand
}

// Cds is a coding sequence, made up of one or more segments concatenated in
// list order.
type Cds struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Product  string       `json:"product,omitempty"`
	Segments []CdsSegment `json:"segments"`
}

// Len returns the total length of the coding sequence in reference bases.
func (c *Cds) Len() int {
	var n int
	for i := range c.Segments {
		n += c.Segments[i].Location().Len()
	}

	return n
}

// Gene is a gene feature containing zero or more coding sequences.
type Gene struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	// Start and End are half-open reference coordinates.
	Start      coord.RefPosition `json:"start"`
	End        coord.RefPosition `json:"end"`
	Strand     Strand            `json:"strand"`
	Cdses      []Cds             `json:"cdses"`
	IsCircular bool              `json:"isCircular,omitempty"`
}

// Location returns the gene range in reference coordinates.
func (g *Gene) Location() coord.RefRange {
	return coord.NewRange(g.Start, g.End)
}

// FeatureStrand returns the strand the gene is read from.
func (g *Gene) FeatureStrand() Strand {
	return g.Strand
}
