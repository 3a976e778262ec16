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

package placement_test

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zymatik-com/phylo/feature"
	"github.com/zymatik-com/phylo/mut"
	"github.com/zymatik-com/phylo/placement"
	"github.com/zymatik-com/phylo/tree"
)

func payload(t *testing.T, name string, div float64, muts ...string) *tree.NodePayload {
	t.Helper()

	p := &tree.NodePayload{
		Name:      name,
		NodeAttrs: tree.NodeAttrs{Div: &div},
	}

	for _, s := range muts {
		sub, err := mut.ParseNucSub(s)
		require.NoError(t, err)
		p.Tmp.PrivateMutations.NucMuts = append(p.Tmp.PrivateMutations.NucMuts, sub)
	}

	return p
}

func mutations(t *testing.T, muts ...string) mut.BranchMutations {
	t.Helper()

	var bundle mut.BranchMutations
	for _, s := range muts {
		sub, err := mut.ParseNucSub(s)
		require.NoError(t, err)
		bundle.NucMuts = append(bundle.NucMuts, sub)
	}

	return bundle
}

func mutationStrings(bundle *mut.BranchMutations) []string {
	strs := make([]string, 0, len(bundle.NucMuts))
	for _, s := range bundle.NucMuts {
		strs = append(strs, s.String())
	}

	return strs
}

func TestFinetuneStepsOverZeroLengthLeaf(t *testing.T) {
	// B is an auxiliary leaf identical to A in nucleotides; the sample
	// belongs next to A.
	g := tree.NewGraph()
	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 2, "C5T", "G8A"))
	b := g.AddNode(payload(t, "B", 2))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(a, b, tree.EdgePayload{}))

	private := mutations(t, "T12C")

	bestKey, residual, err := placement.FinetuneNearestNode(g, b, &private)
	require.NoError(t, err)

	assert.Equal(t, a, bestKey)
	assert.Equal(t, []string{"T12C"}, mutationStrings(&residual))
}

func TestFinetuneAbsorbsParentEdge(t *testing.T) {
	// The sample reverts every mutation on the edge into A, so the edge is
	// fully consumed by stepping up to the root.
	g := tree.NewGraph()
	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 2, "C5T", "G8A"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))

	private := mutations(t, "T5C", "A8G", "T12C")

	bestKey, residual, err := placement.FinetuneNearestNode(g, a, &private)
	require.NoError(t, err)

	assert.Equal(t, root, bestKey)
	assert.Equal(t, []string{"T12C"}, mutationStrings(&residual))
}

func TestFinetuneDescendsToChild(t *testing.T) {
	g := tree.NewGraph()
	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 2, "C5T", "G8A"))
	b := g.AddNode(payload(t, "B", 3, "T12C"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(a, b, tree.EdgePayload{}))

	private := mutations(t, "T12C", "G20A")

	bestKey, residual, err := placement.FinetuneNearestNode(g, a, &private)
	require.NoError(t, err)

	assert.Equal(t, b, bestKey)
	assert.Equal(t, []string{"G20A"}, mutationStrings(&residual))
}

func TestFinetuneAlreadyOptimal(t *testing.T) {
	g := tree.NewGraph()
	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 2, "C5T", "G8A"))
	b := g.AddNode(payload(t, "B", 3, "T12C"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(a, b, tree.EdgePayload{}))

	private := mutations(t, "G20A")

	// A sample that is already optimally placed is a no-op.
	bestKey, residual, err := placement.FinetuneNearestNode(g, b, &private)
	require.NoError(t, err)

	assert.Equal(t, b, bestKey)
	assert.Equal(t, private, residual)
}

func TestKnitSplitsLeafBranch(t *testing.T) {
	g := tree.NewGraph()
	g.DivergenceUnits = mut.NumSubstitutionsPerYear

	p := g.AddNode(payload(t, "P", 1))
	l := g.AddNode(payload(t, "L", 2, "A10G", "C20T"))
	lNode, err := g.GetNode(l)
	require.NoError(t, err)
	lNode.Payload().BranchAttrs.Labels = &tree.BranchLabels{Clade: "20A"}
	require.NoError(t, g.AddEdge(p, l, tree.EdgePayload{}))

	sample := &placement.Sample{Index: 0, SeqName: "sample-1", NearestNodeID: l}

	// Relative to L the sample reverts C20T and adds T30C: it shares A10G
	// with the branch into L.
	private := mutations(t, "T20C", "T30C")

	require.NoError(t, placement.KnitIntoGraph(g, l, sample, &private, 100, placement.Params{}))

	require.Equal(t, 4, g.NumNodes())
	assert.Equal(t, 2, g.NumLeaves())

	// The shared mutation moved onto a new internal node between P and L.
	internal, ok := g.ParentOf(l)
	require.True(t, ok)
	assert.Equal(t, "1_internal", internal.Payload().Name)
	assert.Equal(t, []string{"A10G"}, mutationStrings(&internal.Payload().Tmp.PrivateMutations))
	assert.Equal(t, []string{"A10G"}, internal.Payload().BranchAttrs.Mutations["nuc"])
	assert.Empty(t, internal.Payload().BranchAttrs.Labels.Clade)
	require.NotNil(t, internal.Payload().NodeAttrs.Div)
	assert.Equal(t, 1.0, *internal.Payload().NodeAttrs.Div)

	parent, ok := g.ParentOf(internal.Key())
	require.True(t, ok)
	assert.Equal(t, p, parent.Key())

	// The residual of the old branch stays on L.
	lNode, err = g.GetNode(l)
	require.NoError(t, err)
	assert.Equal(t, []string{"C20T"}, mutationStrings(&lNode.Payload().Tmp.PrivateMutations))
	assert.Equal(t, "20A", lNode.Payload().BranchAttrs.Labels.Clade)

	// The new leaf hangs off the internal node with the sample residual.
	children := g.ChildrenOf(internal.Key())
	require.Len(t, children, 2)
	newLeaf := children[1]
	assert.Equal(t, "sample-1", newLeaf.Payload().Name)
	assert.Equal(t, []string{"T30C"}, mutationStrings(&newLeaf.Payload().Tmp.PrivateMutations))
	require.NotNil(t, newLeaf.Payload().NodeAttrs.Div)
	assert.Equal(t, 2.0, *newLeaf.Payload().NodeAttrs.Div)

	// Every non-root node still has exactly one parent.
	for key := 0; key < g.NumNodes(); key++ {
		node, err := g.GetNode(tree.NodeKey(key))
		require.NoError(t, err)
		_, ok := g.ParentOf(node.Key())
		assert.Equal(t, !node.IsRoot(), ok)
	}
}

func TestKnitAttachesDirectlyAtRoot(t *testing.T) {
	g := tree.NewGraph()
	g.DivergenceUnits = mut.NumSubstitutionsPerYear

	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 1, "C5T"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))

	sample := &placement.Sample{SeqName: "sample-1", NearestNodeID: root}
	private := mutations(t, "C5T", "G8A")

	// The root never has its branch split: the sample attaches below it
	// with its full private mutations.
	require.NoError(t, placement.KnitIntoGraph(g, root, sample, &private, 100, placement.Params{}))

	children := g.ChildrenOf(root)
	require.Len(t, children, 2)
	assert.Equal(t, "sample-1", children[1].Payload().Name)
	assert.Equal(t, []string{"C5T", "G8A"}, mutationStrings(&children[1].Payload().Tmp.PrivateMutations))
	assert.Equal(t, 2.0, *children[1].Payload().NodeAttrs.Div)
}

func TestKnitAttachesDirectlyWithoutResidual(t *testing.T) {
	// The target is internal and the sample reverts none of the mutations
	// on the branch into it: no split is needed.
	g := tree.NewGraph()
	g.DivergenceUnits = mut.NumSubstitutionsPerYear

	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 1, "C5T"))
	b := g.AddNode(payload(t, "B", 2, "T12C"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(a, b, tree.EdgePayload{}))

	sample := &placement.Sample{SeqName: "sample-1", NearestNodeID: a}
	private := mutations(t, "G20A")

	require.NoError(t, placement.KnitIntoGraph(g, a, sample, &private, 100, placement.Params{}))

	children := g.ChildrenOf(a)
	require.Len(t, children, 2)
	assert.Equal(t, "sample-1", children[1].Payload().Name)
	assert.Equal(t, 2.0, *children[1].Payload().NodeAttrs.Div)
}

func TestAttachNewNodesOrdering(t *testing.T) {
	g := tree.NewGraph()
	g.DivergenceUnits = mut.NumSubstitutionsPerYear

	root := g.AddNode(payload(t, "root", 0))

	// Samples attach fewest substitutions first, ties in input order.
	samples := []placement.Sample{
		{Index: 0, SeqName: "s0", NearestNodeID: root, PrivateNucSubs: mutations(t, "C5T", "G8A", "T12C").NucMuts},
		{Index: 1, SeqName: "s1", NearestNodeID: root, PrivateNucSubs: mutations(t, "C5T").NucMuts},
		{Index: 2, SeqName: "s2", NearestNodeID: root, PrivateNucSubs: mutations(t, "C5T", "G8A").NucMuts},
		{Index: 3, SeqName: "s3", NearestNodeID: root, PrivateNucSubs: mutations(t, "G8A").NucMuts},
	}

	params := placement.Params{WithoutGreedyTreeBuilder: true}
	require.NoError(t, placement.AttachNewNodes(slogt.New(t), g, samples, 100, nil, params, false))

	// Node keys are assigned in attachment order.
	keyOf := make(map[string]tree.NodeKey)
	for key := 0; key < g.NumNodes(); key++ {
		node, err := g.GetNode(tree.NodeKey(key))
		require.NoError(t, err)
		keyOf[node.Payload().Name] = node.Key()
	}

	assert.Less(t, keyOf["s1"], keyOf["s3"])
	assert.Less(t, keyOf["s3"], keyOf["s2"])
	assert.Less(t, keyOf["s2"], keyOf["s0"])
}

func TestAttachNewNodesSkipsConflictingSample(t *testing.T) {
	g := tree.NewGraph()
	g.DivergenceUnits = mut.NumSubstitutionsPerYear

	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 1, "C5T"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))

	samples := []placement.Sample{
		// Disagrees with the tree about the letter at position 5.
		{Index: 0, SeqName: "bad", NearestNodeID: a, PrivateNucSubs: mutations(t, "A5G").NucMuts},
		{Index: 1, SeqName: "good", NearestNodeID: a, PrivateNucSubs: mutations(t, "G20A").NucMuts},
	}

	// The annotation lets the warning name the CDS covering the
	// inconsistent position.
	annotation := feature.NewIndex([]feature.Gene{
		{
			Name: "g1", Start: 0, End: 100, Strand: feature.StrandForward,
			Cdses: []feature.Cds{
				{
					Name: "ORF1",
					Segments: []feature.CdsSegment{
						{Start: 0, End: 30, Strand: feature.StrandForward},
					},
				},
			},
		},
	})

	require.NoError(t, placement.AttachNewNodes(slogt.New(t), g, samples, 100, annotation, placement.Params{}, false))

	// The inconsistent sample is skipped, the good one still attaches.
	var names []string
	for key := 0; key < g.NumNodes(); key++ {
		node, err := g.GetNode(tree.NodeKey(key))
		require.NoError(t, err)
		if node.IsLeaf() {
			names = append(names, node.Payload().Name)
		}
	}

	assert.Contains(t, names, "good")
	assert.NotContains(t, names, "bad")
}

func TestAttachNewNodeFinetunesBeforeKnitting(t *testing.T) {
	g := tree.NewGraph()
	g.DivergenceUnits = mut.NumSubstitutionsPerYear

	root := g.AddNode(payload(t, "root", 0))
	a := g.AddNode(payload(t, "A", 2, "C5T", "G8A"))
	b := g.AddNode(payload(t, "B", 3, "T12C"))
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(a, b, tree.EdgePayload{}))

	sample := placement.Sample{
		Index:          0,
		SeqName:        "sample-1",
		NearestNodeID:  a,
		PrivateNucSubs: mutations(t, "T12C", "G20A").NucMuts,
	}

	require.NoError(t, placement.AttachNewNode(g, &sample, 100, placement.Params{}))

	// The sample shares T12C with the branch into B, so fine-tuning moves
	// it from A down to B before knitting. B is a leaf, so the branch into
	// it is split around a new internal node carrying the shared mutation.
	internal, ok := g.ParentOf(b)
	require.True(t, ok)
	assert.Equal(t, "2_internal", internal.Payload().Name)
	assert.Equal(t, []string{"T12C"}, mutationStrings(&internal.Payload().Tmp.PrivateMutations))

	children := g.ChildrenOf(internal.Key())
	require.Len(t, children, 2)
	assert.Equal(t, "B", children[0].Payload().Name)
	assert.Empty(t, children[0].Payload().Tmp.PrivateMutations.NucMuts)
	assert.Equal(t, "sample-1", children[1].Payload().Name)
	assert.Equal(t, []string{"G20A"}, mutationStrings(&children[1].Payload().Tmp.PrivateMutations))
	assert.Equal(t, 4.0, *children[1].Payload().NodeAttrs.Div)
}
