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

package mut

import "fmt"

// DivergenceUnits is the unit divergence is measured in on a reference
// tree.
type DivergenceUnits int

const (
	// NumSubstitutionsPerYearPerSite measures divergence in substitutions
	// per site.
	NumSubstitutionsPerYearPerSite DivergenceUnits = iota
	// NumSubstitutionsPerYear measures divergence in whole substitution
	// counts.
	NumSubstitutionsPerYear
)

func (u DivergenceUnits) String() string {
	switch u {
	case NumSubstitutionsPerYearPerSite:
		return "NumSubstitutionsPerYearPerSite"
	case NumSubstitutionsPerYear:
		return "NumSubstitutionsPerYear"
	default:
		return fmt.Sprintf("DivergenceUnits(%d)", int(u))
	}
}

// DivergenceUnitsFromMaxDivergence guesses the divergence unit of a tree
// from its largest root-to-tip divergence. Trees measured in substitutions
// per site have divergences well below one; trees measured in whole
// substitution counts reach into the hundreds.
func DivergenceUnitsFromMaxDivergence(maxDivergence float64) DivergenceUnits {
	if maxDivergence < 5 {
		return NumSubstitutionsPerYearPerSite
	}

	return NumSubstitutionsPerYear
}

// BranchLength returns the branch length contributed by the given
// nucleotide mutations. This is the only place divergence units are
// interpreted; amino acid mutations never contribute.
func BranchLength(nucMuts []NucSub, units DivergenceUnits, refSeqLen int) float64 {
	length := float64(len(nucMuts))

	if units == NumSubstitutionsPerYearPerSite {
		length /= float64(refSeqLen)
	}

	return length
}
