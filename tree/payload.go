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

package tree

import "github.com/zymatik-com/phylo/mut"

// NodePayload is the Auspice payload of a tree node.
type NodePayload struct {
	Name        string      `json:"name"`
	NodeAttrs   NodeAttrs   `json:"node_attrs"`
	BranchAttrs BranchAttrs `json:"branch_attrs"`

	// Tmp holds transient per-node state that is never serialized.
	Tmp TmpData `json:"-"`
}

// Clone returns a deep copy of the payload.
func (p *NodePayload) Clone() *NodePayload {
	clone := &NodePayload{
		Name:      p.Name,
		NodeAttrs: p.NodeAttrs,
	}

	if p.NodeAttrs.Div != nil {
		div := *p.NodeAttrs.Div
		clone.NodeAttrs.Div = &div
	}
	if p.NodeAttrs.CladeMembership != nil {
		clade := *p.NodeAttrs.CladeMembership
		clone.NodeAttrs.CladeMembership = &clade
	}

	if p.BranchAttrs.Mutations != nil {
		clone.BranchAttrs.Mutations = make(map[string][]string, len(p.BranchAttrs.Mutations))
		for name, muts := range p.BranchAttrs.Mutations {
			clone.BranchAttrs.Mutations[name] = append([]string(nil), muts...)
		}
	}
	if p.BranchAttrs.Labels != nil {
		labels := *p.BranchAttrs.Labels
		clone.BranchAttrs.Labels = &labels
	}

	clone.Tmp.PrivateMutations = p.Tmp.PrivateMutations.Clone()

	return clone
}

// NodeAttrs are the Auspice node attributes.
type NodeAttrs struct {
	// Div is the divergence of the node from the root, in the tree's
	// divergence units.
	Div             *float64   `json:"div,omitempty"`
	CladeMembership *AttrValue `json:"clade_membership,omitempty"`
}

// AttrValue is a single valued Auspice node attribute.
type AttrValue struct {
	Value string `json:"value"`
}

// BranchAttrs are the Auspice branch attributes of the edge leading into a
// node.
type BranchAttrs struct {
	// Mutations maps "nuc" to nucleotide mutation strings and each CDS
	// name to its amino acid mutation strings.
	Mutations map[string][]string `json:"mutations,omitempty"`
	Labels    *BranchLabels       `json:"labels,omitempty"`
}

// BranchLabels are the display labels of a branch.
type BranchLabels struct {
	Aa    string `json:"aa,omitempty"`
	Clade string `json:"clade,omitempty"`
}

// TmpData is transient per-node state used during placement.
type TmpData struct {
	// PrivateMutations describes the mutations on the edge from the
	// parent to this node, read parent to child.
	PrivateMutations mut.BranchMutations
}
