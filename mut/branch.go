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

import (
	"fmt"
	"sort"

	"github.com/zymatik-com/phylo/coord"
)

// BranchMutations bundles the mutations on a single tree branch, read in
// the parent to child direction. Nucleotide mutations are sorted by
// position with unique positions; amino acid mutations likewise, per
// coding sequence.
type BranchMutations struct {
	NucMuts []NucSub           `json:"nucMuts"`
	AaMuts  map[string][]AaSub `json:"aaMuts"`
}

// NewBranchMutations assembles a sorted branch mutation bundle from
// substitutions and deletions.
func NewBranchMutations(nucSubs []NucSub, nucDels []NucDel, aaSubs map[string][]AaSub, aaDels map[string][]AaDel) BranchMutations {
	nucMuts := append([]NucSub(nil), nucSubs...)
	for _, d := range nucDels {
		nucMuts = append(nucMuts, d.ToSub())
	}
	sortNucSubs(nucMuts)

	aaMuts := make(map[string][]AaSub)
	for cds, subs := range aaSubs {
		aaMuts[cds] = append(aaMuts[cds], subs...)
	}
	for cds, dels := range aaDels {
		for _, d := range dels {
			aaMuts[cds] = append(aaMuts[cds], d.ToSub())
		}
	}
	for cds := range aaMuts {
		sortAaSubs(aaMuts[cds])
	}

	return BranchMutations{NucMuts: nucMuts, AaMuts: aaMuts}
}

// Clone returns a deep copy of the bundle.
func (b *BranchMutations) Clone() BranchMutations {
	clone := BranchMutations{
		NucMuts: append([]NucSub(nil), b.NucMuts...),
	}

	if b.AaMuts != nil {
		clone.AaMuts = make(map[string][]AaSub, len(b.AaMuts))
		for cds, subs := range b.AaMuts {
			clone.AaMuts[cds] = append([]AaSub(nil), subs...)
		}
	}

	return clone
}

// IsEmpty returns true if the bundle contains no mutations at all.
func (b *BranchMutations) IsEmpty() bool {
	if len(b.NucMuts) > 0 {
		return false
	}
	for _, subs := range b.AaMuts {
		if len(subs) > 0 {
			return false
		}
	}

	return true
}

// Invert returns the bundle read in the opposite direction. Ordering is
// preserved.
func (b *BranchMutations) Invert() BranchMutations {
	inverted := BranchMutations{
		NucMuts: make([]NucSub, 0, len(b.NucMuts)),
	}
	for _, s := range b.NucMuts {
		inverted.NucMuts = append(inverted.NucMuts, s.Invert())
	}

	if b.AaMuts != nil {
		inverted.AaMuts = make(map[string][]AaSub, len(b.AaMuts))
		for cds, subs := range b.AaMuts {
			invertedSubs := make([]AaSub, 0, len(subs))
			for _, s := range subs {
				invertedSubs = append(invertedSubs, s.Invert())
			}
			inverted.AaMuts[cds] = invertedSubs
		}
	}

	return inverted
}

// CountNucMuts returns the number of nucleotide mutations in the bundle.
// This is the shared-ness score used when fine-tuning tree placement.
func CountNucMuts(b *BranchMutations) int {
	return len(b.NucMuts)
}

// ConflictError reports two mutation bundles that disagree about the origin
// letter at a position.
type ConflictError struct {
	Pos   coord.RefPosition
	Cds   string // empty for nucleotide mutations
	Left  string
	Right string
}

func (e *ConflictError) Error() string {
	if e.Cds != "" {
		return fmt.Sprintf("incompatible amino acid mutations in CDS %q at position %d: %q vs %q", e.Cds, int(e.Pos)+1, e.Left, e.Right)
	}

	return fmt.Sprintf("incompatible nucleotide mutations at position %d: %q vs %q", int(e.Pos)+1, e.Left, e.Right)
}

// SplitResult is the three-way decomposition produced by Split.
type SplitResult struct {
	// Left holds mutations only present in the left bundle.
	Left BranchMutations
	// Shared holds mutations present identically in both bundles.
	Shared BranchMutations
	// Right holds mutations only present in the right bundle.
	Right BranchMutations
}

// Split performs a position-keyed outer join of two branch mutation
// bundles. A position present in both sides with the same origin and
// target letter is shared; a position present in both sides with different
// target letters contributes to both singleton buckets. Two entries that
// disagree about the origin letter are inconsistent and produce a
// ConflictError.
func Split(left, right *BranchMutations) (SplitResult, error) {
	nucLeft, nucShared, nucRight, err := splitNucSubs(left.NucMuts, right.NucMuts)
	if err != nil {
		return SplitResult{}, err
	}

	result := SplitResult{
		Left:   BranchMutations{NucMuts: nucLeft, AaMuts: make(map[string][]AaSub)},
		Shared: BranchMutations{NucMuts: nucShared, AaMuts: make(map[string][]AaSub)},
		Right:  BranchMutations{NucMuts: nucRight, AaMuts: make(map[string][]AaSub)},
	}

	for _, cds := range unionOfCdsNames(left.AaMuts, right.AaMuts) {
		aaLeft, aaShared, aaRight, err := splitAaSubs(cds, left.AaMuts[cds], right.AaMuts[cds])
		if err != nil {
			return SplitResult{}, err
		}

		if len(aaLeft) > 0 {
			result.Left.AaMuts[cds] = aaLeft
		}
		if len(aaShared) > 0 {
			result.Shared.AaMuts[cds] = aaShared
		}
		if len(aaRight) > 0 {
			result.Right.AaMuts[cds] = aaRight
		}
	}

	return result, nil
}

func splitNucSubs(a, b []NucSub) (left, shared, right []NucSub, err error) {
	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Pos < b[j].Pos:
			left = append(left, a[i])
			i++
		case a[i].Pos > b[j].Pos:
			right = append(right, b[j])
			j++
		default:
			if a[i].Ref != b[j].Ref {
				return nil, nil, nil, &ConflictError{Pos: a[i].Pos, Left: a[i].String(), Right: b[j].String()}
			}

			if a[i].Qry == b[j].Qry {
				shared = append(shared, a[i])
			} else {
				left = append(left, a[i])
				right = append(right, b[j])
			}
			i++
			j++
		}
	}

	left = append(left, a[i:]...)
	right = append(right, b[j:]...)

	return left, shared, right, nil
}

func splitAaSubs(cds string, a, b []AaSub) (left, shared, right []AaSub, err error) {
	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Pos < b[j].Pos:
			left = append(left, a[i])
			i++
		case a[i].Pos > b[j].Pos:
			right = append(right, b[j])
			j++
		default:
			if a[i].Ref != b[j].Ref {
				return nil, nil, nil, &ConflictError{Pos: a[i].Pos, Cds: cds, Left: a[i].String(), Right: b[j].String()}
			}

			if a[i].Qry == b[j].Qry {
				shared = append(shared, a[i])
			} else {
				left = append(left, a[i])
				right = append(right, b[j])
			}
			i++
			j++
		}
	}

	left = append(left, a[i:]...)
	right = append(right, b[j:]...)

	return left, shared, right, nil
}

// Union merges two bundles. When the same position appears in both, the
// entry from b wins; callers ensure the bundles are compatible.
func Union(a, b *BranchMutations) BranchMutations {
	result := BranchMutations{
		NucMuts: unionNucSubs(a.NucMuts, b.NucMuts),
		AaMuts:  make(map[string][]AaSub),
	}

	for _, cds := range unionOfCdsNames(a.AaMuts, b.AaMuts) {
		result.AaMuts[cds] = unionAaSubs(a.AaMuts[cds], b.AaMuts[cds])
	}

	return result
}

func unionNucSubs(a, b []NucSub) []NucSub {
	merged := make([]NucSub, 0, len(a)+len(b))

	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Pos < b[j].Pos:
			merged = append(merged, a[i])
			i++
		case a[i].Pos > b[j].Pos:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, b[j])
			i++
			j++
		}
	}

	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)

	return merged
}

func unionAaSubs(a, b []AaSub) []AaSub {
	merged := make([]AaSub, 0, len(a)+len(b))

	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Pos < b[j].Pos:
			merged = append(merged, a[i])
			i++
		case a[i].Pos > b[j].Pos:
			merged = append(merged, b[j])
			j++
		default:
			merged = append(merged, b[j])
			i++
			j++
		}
	}

	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)

	return merged
}

// Difference removes from a every mutation present identically in b.
// Entries at the same position with different letters are kept.
func Difference(a, b *BranchMutations) BranchMutations {
	result := BranchMutations{
		AaMuts: make(map[string][]AaSub),
	}

	bNucByPos := make(map[coord.RefPosition]NucSub, len(b.NucMuts))
	for _, s := range b.NucMuts {
		bNucByPos[s.Pos] = s
	}
	for _, s := range a.NucMuts {
		if other, ok := bNucByPos[s.Pos]; ok && other == s {
			continue
		}
		result.NucMuts = append(result.NucMuts, s)
	}

	for cds, subs := range a.AaMuts {
		bAaByPos := make(map[coord.RefPosition]AaSub, len(b.AaMuts[cds]))
		for _, s := range b.AaMuts[cds] {
			bAaByPos[s.Pos] = s
		}

		var kept []AaSub
		for _, s := range subs {
			if other, ok := bAaByPos[s.Pos]; ok && other == s {
				continue
			}
			kept = append(kept, s)
		}

		if len(kept) > 0 {
			result.AaMuts[cds] = kept
		}
	}

	return result
}

func unionOfCdsNames(a, b map[string][]AaSub) []string {
	var names []string
	seen := make(map[string]bool)
	for cds := range a {
		if !seen[cds] {
			seen[cds] = true
			names = append(names, cds)
		}
	}
	for cds := range b {
		if !seen[cds] {
			seen[cds] = true
			names = append(names, cds)
		}
	}

	sort.Strings(names)

	return names
}

func sortNucSubs(subs []NucSub) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Pos != subs[j].Pos {
			return subs[i].Pos < subs[j].Pos
		}
		if subs[i].Ref != subs[j].Ref {
			return subs[i].Ref < subs[j].Ref
		}
		return subs[i].Qry < subs[j].Qry
	})
}

func sortAaSubs(subs []AaSub) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].Pos != subs[j].Pos {
			return subs[i].Pos < subs[j].Pos
		}
		if subs[i].Ref != subs[j].Ref {
			return subs[i].Ref < subs[j].Ref
		}
		return subs[i].Qry < subs[j].Qry
	})
}
