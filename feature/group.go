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
	"fmt"
	"strings"

	"github.com/zymatik-com/phylo/coord"
)

// Feature is a single located annotation record, as parsed from a genome
// annotation by a collaborator.
type Feature struct {
	Index      int               `json:"index"`
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Product    string            `json:"product,omitempty"`
	Type       string            `json:"type"`
	Start      coord.RefPosition `json:"start"`
	End        coord.RefPosition `json:"end"`
	Strand     Strand            `json:"strand"`
	IsCircular bool              `json:"isCircular,omitempty"`
}

// Location returns the feature range in reference coordinates.
func (f *Feature) Location() coord.RefRange {
	return coord.NewRange(f.Start, f.End)
}

// FeatureStrand returns the strand the feature is read from.
func (f *Feature) FeatureStrand() Strand {
	return f.Strand
}

// FeatureGroup aggregates features that describe the same annotation (for
// example the multiple records of a segmented CDS).
type FeatureGroup struct {
	Index      int       `json:"index"`
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Product    string    `json:"product,omitempty"`
	Type       string    `json:"type"`
	Features   []Feature `json:"features"`
	IsCircular bool      `json:"isCircular,omitempty"`
}

// NewFeatureGroup aggregates the given features. The group index is the
// smallest member index, textual attributes are "+"-joined uniques and the
// group is circular if any member is.
func NewFeatureGroup(features []Feature) FeatureGroup {
	group := FeatureGroup{
		Features: append([]Feature(nil), features...),
	}

	if len(features) > 0 {
		group.Index = features[0].Index
		for _, f := range features[1:] {
			if f.Index < group.Index {
				group.Index = f.Index
			}
		}
	}

	group.ID = joinUnique(features, func(f Feature) string { return f.ID })
	group.Name = joinUnique(features, func(f Feature) string { return f.Name })
	group.Product = joinUnique(features, func(f Feature) string { return f.Product })
	group.Type = joinUnique(features, func(f Feature) string { return f.Type })

	for _, f := range features {
		if f.IsCircular {
			group.IsCircular = true
			break
		}
	}

	return group
}

// Start returns the smallest member start.
func (g *FeatureGroup) Start() coord.RefPosition {
	var start coord.RefPosition
	for i, f := range g.Features {
		if i == 0 || f.Start < start {
			start = f.Start
		}
	}

	return start
}

// End returns the largest member end.
func (g *FeatureGroup) End() coord.RefPosition {
	var end coord.RefPosition
	for _, f := range g.Features {
		if f.End > end {
			end = f.End
		}
	}

	return end
}

// Location returns the range spanned by all members.
func (g *FeatureGroup) Location() coord.RefRange {
	return coord.NewRange(g.Start(), g.End())
}

// NameAndType returns a short human readable description of the group.
func (g *FeatureGroup) NameAndType() string {
	return fmt.Sprintf("%s '%s'", g.Type, g.Name)
}

// Less orders groups by (start, descending end, name and type), the order
// annotations are conventionally displayed in.
func (g *FeatureGroup) Less(other *FeatureGroup) bool {
	if g.Start() != other.Start() {
		return g.Start() < other.Start()
	}
	if g.End() != other.End() {
		return g.End() > other.End()
	}

	return g.NameAndType() < other.NameAndType()
}

func joinUnique(features []Feature, get func(Feature) string) string {
	var values []string
	seen := make(map[string]bool)
	for _, f := range features {
		v := get(f)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}

	return strings.Join(values, "+")
}
