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

// Package nuc provides the nucleotide alphabet used throughout the library.
// Sequences are stored as aligned letters, with '-' denoting an alignment gap.
package nuc

import (
	"strings"

	"github.com/biogo/biogo/alphabet"
)

// Nuc is a single nucleotide letter. The alphabet is the IUPAC nucleotide
// code (A, C, G, T, plus ambiguity codes such as N, R, Y) and the gap
// letter '-'.
type Nuc byte

// Gap is the alignment gap letter.
const Gap = Nuc('-')

// IsGap returns true if the letter is an alignment gap.
func (n Nuc) IsGap() bool {
	return n == Gap
}

// IsValid returns true if the letter is part of the IUPAC nucleotide
// alphabet (or a gap).
func (n Nuc) IsValid() bool {
	return n == Gap || alphabet.DNAredundant.IsValid(alphabet.Letter(n))
}

// Complement returns the complementary nucleotide. Ambiguity codes map to
// their complementary ambiguity codes and gaps map to gaps.
func (n Nuc) Complement() Nuc {
	c, ok := alphabet.DNAredundant.Complement(alphabet.Letter(n))
	if !ok {
		return n
	}

	return Nuc(c)
}

// ReverseComplement reverse-complements the sequence in place.
func ReverseComplement(seq []Nuc) {
	for i, j := 0, len(seq)-1; i < j; i, j = i+1, j-1 {
		seq[i], seq[j] = seq[j].Complement(), seq[i].Complement()
	}

	if len(seq)%2 == 1 {
		mid := len(seq) / 2
		seq[mid] = seq[mid].Complement()
	}
}

// ToSeq converts a string to a nucleotide sequence. Letters are
// upper-cased, no validation is performed.
func ToSeq(s string) []Nuc {
	s = strings.ToUpper(s)

	seq := make([]Nuc, len(s))
	for i := 0; i < len(s); i++ {
		seq[i] = Nuc(s[i])
	}

	return seq
}

// FromSeq converts a nucleotide sequence back to a string.
func FromSeq(seq []Nuc) string {
	var sb strings.Builder
	sb.Grow(len(seq))
	for _, n := range seq {
		sb.WriteByte(byte(n))
	}

	return sb.String()
}
