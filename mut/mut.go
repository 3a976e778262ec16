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

// Package mut models nucleotide and amino acid mutations and the set
// algebra over per-branch mutation bundles that drives phylogenetic
// placement.
package mut

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/zymatik-com/phylo/coord"
	"github.com/zymatik-com/phylo/nuc"
)

// Aa is a single amino acid letter, 'X' for unknown, '*' for a stop codon
// and '-' for a gap.
type Aa byte

// NucSub is a nucleotide substitution. Ref is the letter at the origin of
// the branch the substitution sits on and Qry the letter at its far end.
type NucSub struct {
	Pos coord.RefPosition `json:"pos"`
	Ref nuc.Nuc           `json:"refNuc"`
	Qry nuc.Nuc           `json:"qryNuc"`
}

// String renders the substitution in the conventional one-based form, e.g.
// "C241T".
func (s NucSub) String() string {
	return fmt.Sprintf("%c%d%c", byte(s.Ref), int(s.Pos)+1, byte(s.Qry))
}

// Invert returns the substitution read in the opposite direction.
func (s NucSub) Invert() NucSub {
	return NucSub{Pos: s.Pos, Ref: s.Qry, Qry: s.Ref}
}

// IsDel returns true if the substitution describes a deletion.
func (s NucSub) IsDel() bool {
	return s.Qry.IsGap()
}

var nucSubRegexp = regexp.MustCompile(`^([A-Z-])(\d+)([A-Z-])$`)

// ParseNucSub parses the one-based string form of a nucleotide
// substitution, e.g. "C241T".
func ParseNucSub(s string) (NucSub, error) {
	matches := nucSubRegexp.FindStringSubmatch(s)
	if matches == nil {
		return NucSub{}, fmt.Errorf("invalid nucleotide substitution: %q", s)
	}

	pos, err := strconv.Atoi(matches[2])
	if err != nil || pos < 1 {
		return NucSub{}, fmt.Errorf("invalid nucleotide substitution position: %q", s)
	}

	return NucSub{
		Pos: coord.RefPosition(pos - 1),
		Ref: nuc.Nuc(matches[1][0]),
		Qry: nuc.Nuc(matches[3][0]),
	}, nil
}

// NucDel is a nucleotide deletion at a single position.
type NucDel struct {
	Pos coord.RefPosition `json:"pos"`
	Ref nuc.Nuc           `json:"refNuc"`
}

// ToSub promotes the deletion to a substitution to a gap.
func (d NucDel) ToSub() NucSub {
	return NucSub{Pos: d.Pos, Ref: d.Ref, Qry: nuc.Gap}
}

// AaSub is an amino acid substitution within a named coding sequence.
type AaSub struct {
	Cds string            `json:"cdsName"`
	Pos coord.RefPosition `json:"pos"`
	Ref Aa                `json:"refAa"`
	Qry Aa                `json:"qryAa"`
}

// String renders the substitution with its CDS prefix, e.g. "S:N501Y".
func (s AaSub) String() string {
	return fmt.Sprintf("%s:%s", s.Cds, s.StringWithoutCds())
}

// StringWithoutCds renders the substitution without the CDS prefix, e.g.
// "N501Y".
func (s AaSub) StringWithoutCds() string {
	return fmt.Sprintf("%c%d%c", byte(s.Ref), int(s.Pos)+1, byte(s.Qry))
}

// Invert returns the substitution read in the opposite direction.
func (s AaSub) Invert() AaSub {
	return AaSub{Cds: s.Cds, Pos: s.Pos, Ref: s.Qry, Qry: s.Ref}
}

var aaSubRegexp = regexp.MustCompile(`^(?:([A-Za-z0-9_-]+):)?([A-Z*-])(\d+)([A-Z*-])$`)

// ParseAaSub parses the one-based string form of an amino acid
// substitution, with or without a CDS prefix, e.g. "S:N501Y" or "N501Y".
func ParseAaSub(s string) (AaSub, error) {
	matches := aaSubRegexp.FindStringSubmatch(s)
	if matches == nil {
		return AaSub{}, fmt.Errorf("invalid amino acid substitution: %q", s)
	}

	pos, err := strconv.Atoi(matches[3])
	if err != nil || pos < 1 {
		return AaSub{}, fmt.Errorf("invalid amino acid substitution position: %q", s)
	}

	return AaSub{
		Cds: matches[1],
		Pos: coord.RefPosition(pos - 1),
		Ref: Aa(matches[2][0]),
		Qry: Aa(matches[4][0]),
	}, nil
}

// AaDel is an amino acid deletion within a named coding sequence.
type AaDel struct {
	Cds string            `json:"cdsName"`
	Pos coord.RefPosition `json:"pos"`
	Ref Aa                `json:"refAa"`
}

// ToSub promotes the deletion to a substitution to a gap.
func (d AaDel) ToSub() AaSub {
	return AaSub{Cds: d.Cds, Pos: d.Pos, Ref: d.Ref, Qry: Aa('-')}
}
