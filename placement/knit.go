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

package placement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zymatik-com/phylo/mut"
	"github.com/zymatik-com/phylo/tree"
)

// KnitIntoGraph attaches the sample as a new leaf at the target node.
// When the target is a leaf, or the sample reverts part of the branch
// leading into the target, that branch is split: a new internal node takes
// over the portion shared with the sample and both the target and the new
// leaf hang off it. Otherwise, and always at the root or with the greedy
// tree builder disabled, the new leaf attaches directly below the target.
func KnitIntoGraph(g *tree.Graph, targetKey tree.NodeKey, sample *Sample, privateMutations *mut.BranchMutations, refSeqLen int, params Params) error {
	targetNode, err := g.GetNode(targetKey)
	if err != nil {
		return err
	}
	targetPayload := targetNode.Payload()

	var targetDiv float64
	if targetPayload.NodeAttrs.Div != nil {
		targetDiv = *targetPayload.NodeAttrs.Div
	}

	if params.WithoutGreedyTreeBuilder || targetNode.IsRoot() {
		// Never split the branch above the root: the sample attaches
		// directly with its full private mutations.
		divergenceNewNode := targetDiv + mut.BranchLength(privateMutations.NucMuts, g.DivergenceUnits, refSeqLen)

		return attachToInternalNode(g, targetKey, privateMutations, sample, divergenceNewNode)
	}

	// The target node will become the sister of the new leaf. Split the
	// inverted target edge against the private mutations: the left-only
	// portion, read forward again, stays on the common branch; the shared
	// portion, read forward again, leads to the target but not the new
	// leaf.
	invertedEdge := targetPayload.Tmp.PrivateMutations.Invert()
	split, err := mut.Split(&invertedEdge, privateMutations)
	if err != nil {
		return fmt.Errorf("could not split mutations between query sequence and the candidate parent node %q: %w",
			targetPayload.Name, err)
	}

	mutsCommonBranch := split.Left.Invert()
	mutsTargetNode := split.Shared.Invert()
	mutsNewNode := split.Right

	// A leaf cannot take on a sister directly; and when residual target
	// mutations exist the branch has to be split around a new internal
	// node.
	if targetNode.IsLeaf() || len(mutsTargetNode.NucMuts) > 0 {
		divergenceMiddleNode := targetDiv - mut.BranchLength(mutsTargetNode.NucMuts, g.DivergenceUnits, refSeqLen)

		newInternalNode := targetPayload.Clone()
		newInternalNode.Name = fmt.Sprintf("%d_internal", int(targetKey))
		newInternalNode.Tmp.PrivateMutations = mutsCommonBranch
		newInternalNode.NodeAttrs.Div = &divergenceMiddleNode
		newInternalNode.BranchAttrs.Mutations = branchAttrsMutations(&mutsCommonBranch)
		if newInternalNode.BranchAttrs.Labels != nil {
			// Any clade label belongs to the target, not the new split.
			newInternalNode.BranchAttrs.Labels.Clade = ""
		}
		setBranchAttrsAaLabels(newInternalNode)

		newInternalNodeKey := g.AddNode(newInternalNode)
		if err := g.InsertNodeBefore(newInternalNodeKey, targetKey, tree.EdgePayload{}, tree.EdgePayload{}); err != nil {
			return err
		}

		targetPayload.Tmp.PrivateMutations = mutsTargetNode
		targetPayload.BranchAttrs.Mutations = branchAttrsMutations(&mutsTargetNode)
		setBranchAttrsAaLabels(targetPayload)

		divergenceNewNode := divergenceMiddleNode + mut.BranchLength(mutsNewNode.NucMuts, g.DivergenceUnits, refSeqLen)

		return attachToInternalNode(g, newInternalNodeKey, &mutsNewNode, sample, divergenceNewNode)
	}

	divergenceNewNode := targetDiv + mut.BranchLength(mutsNewNode.NucMuts, g.DivergenceUnits, refSeqLen)

	return attachToInternalNode(g, targetKey, privateMutations, sample, divergenceNewNode)
}

// attachToInternalNode adds the sample as a new leaf below the given node.
func attachToInternalNode(g *tree.Graph, parentKey tree.NodeKey, newPrivateMutations *mut.BranchMutations, sample *Sample, divergence float64) error {
	payload := &tree.NodePayload{
		Name: sample.SeqName,
		NodeAttrs: tree.NodeAttrs{
			Div: &divergence,
		},
		BranchAttrs: tree.BranchAttrs{
			Mutations: branchAttrsMutations(newPrivateMutations),
		},
	}
	payload.Tmp.PrivateMutations = newPrivateMutations.Clone()
	setBranchAttrsAaLabels(payload)

	newNodeKey := g.AddNode(payload)

	return g.AddEdge(parentKey, newNodeKey, tree.EdgePayload{})
}

// branchAttrsMutations serializes a branch mutation bundle: "nuc" maps to
// the nucleotide mutation strings, every non-empty CDS to its amino acid
// mutation strings without the CDS prefix. Entries are sorted by position,
// then letters.
func branchAttrsMutations(mutations *mut.BranchMutations) map[string][]string {
	attrs := make(map[string][]string)

	nucMuts := make([]string, 0, len(mutations.NucMuts))
	for _, s := range mutations.NucMuts {
		nucMuts = append(nucMuts, s.String())
	}
	attrs["nuc"] = nucMuts

	for cds, subs := range mutations.AaMuts {
		if len(subs) == 0 {
			continue
		}

		aaMuts := make([]string, 0, len(subs))
		for _, s := range subs {
			aaMuts = append(aaMuts, s.StringWithoutCds())
		}
		attrs[cds] = aaMuts
	}

	return attrs
}

// setBranchAttrsAaLabels renders the amino acid mutation label of a
// branch: "<cds>: <sub>, <sub>; <cds2>: ..." across non-empty CDSes.
func setBranchAttrsAaLabels(payload *tree.NodePayload) {
	cdsNames := make([]string, 0, len(payload.Tmp.PrivateMutations.AaMuts))
	for cds, subs := range payload.Tmp.PrivateMutations.AaMuts {
		if len(subs) > 0 {
			cdsNames = append(cdsNames, cds)
		}
	}
	sort.Strings(cdsNames)

	labels := make([]string, 0, len(cdsNames))
	for _, cds := range cdsNames {
		subs := payload.Tmp.PrivateMutations.AaMuts[cds]

		rendered := make([]string, 0, len(subs))
		for _, s := range subs {
			rendered = append(rendered, s.StringWithoutCds())
		}

		labels = append(labels, fmt.Sprintf("%s: %s", cds, strings.Join(rendered, ", ")))
	}

	aa := strings.Join(labels, "; ")
	if payload.BranchAttrs.Labels != nil {
		payload.BranchAttrs.Labels.Aa = aa
	} else {
		payload.BranchAttrs.Labels = &tree.BranchLabels{Aa: aa}
	}
}
