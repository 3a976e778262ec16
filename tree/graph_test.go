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

package tree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zymatik-com/phylo/tree"
)

func TestGraphNavigation(t *testing.T) {
	g := tree.NewGraph()

	root := g.AddNode(&tree.NodePayload{Name: "root"})
	a := g.AddNode(&tree.NodePayload{Name: "a"})
	b := g.AddNode(&tree.NodePayload{Name: "b"})

	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(a, b, tree.EdgePayload{}))

	rootNode, err := g.Root()
	require.NoError(t, err)
	assert.Equal(t, root, rootNode.Key())
	assert.True(t, rootNode.IsRoot())
	assert.False(t, rootNode.IsLeaf())

	parent, ok := g.ParentOf(b)
	require.True(t, ok)
	assert.Equal(t, a, parent.Key())

	_, ok = g.ParentOf(root)
	assert.False(t, ok)

	children := g.ChildrenOf(a)
	require.Len(t, children, 1)
	assert.Equal(t, b, children[0].Key())
	assert.True(t, children[0].IsLeaf())

	assert.Equal(t, 3, g.NumNodes())
	assert.Equal(t, 1, g.NumLeaves())
}

func TestGraphInvariants(t *testing.T) {
	g := tree.NewGraph()

	root := g.AddNode(&tree.NodePayload{Name: "root"})
	a := g.AddNode(&tree.NodePayload{Name: "a"})
	require.NoError(t, g.AddEdge(root, a, tree.EdgePayload{}))

	var invariantErr *tree.InvariantError

	// A node may only have a single parent.
	err := g.AddEdge(root, a, tree.EdgePayload{})
	require.ErrorAs(t, err, &invariantErr)

	// Edges may not create cycles.
	err = g.AddEdge(a, root, tree.EdgePayload{})
	require.ErrorAs(t, err, &invariantErr)

	// Unknown node keys are rejected.
	_, err = g.GetNode(tree.NodeKey(42))
	require.ErrorAs(t, err, &invariantErr)
}

func TestInsertNodeBefore(t *testing.T) {
	g := tree.NewGraph()

	root := g.AddNode(&tree.NodePayload{Name: "root"})
	target := g.AddNode(&tree.NodePayload{Name: "target"})
	require.NoError(t, g.AddEdge(root, target, tree.EdgePayload{}))

	middle := g.AddNode(&tree.NodePayload{Name: "middle"})
	require.NoError(t, g.InsertNodeBefore(middle, target, tree.EdgePayload{}, tree.EdgePayload{}))

	parent, ok := g.ParentOf(target)
	require.True(t, ok)
	assert.Equal(t, middle, parent.Key())

	parent, ok = g.ParentOf(middle)
	require.True(t, ok)
	assert.Equal(t, root, parent.Key())

	children := g.ChildrenOf(root)
	require.Len(t, children, 1)
	assert.Equal(t, middle, children[0].Key())

	// The root cannot gain a node above it.
	above := g.AddNode(&tree.NodePayload{Name: "above"})
	var invariantErr *tree.InvariantError
	require.ErrorAs(t, g.InsertNodeBefore(above, root, tree.EdgePayload{}, tree.EdgePayload{}), &invariantErr)
}

func TestLadderize(t *testing.T) {
	g := tree.NewGraph()

	root := g.AddNode(&tree.NodePayload{Name: "root"})
	small := g.AddNode(&tree.NodePayload{Name: "small"})
	big := g.AddNode(&tree.NodePayload{Name: "big"})
	bigChildA := g.AddNode(&tree.NodePayload{Name: "x"})
	bigChildB := g.AddNode(&tree.NodePayload{Name: "y"})

	require.NoError(t, g.AddEdge(root, small, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(root, big, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(big, bigChildA, tree.EdgePayload{}))
	require.NoError(t, g.AddEdge(big, bigChildB, tree.EdgePayload{}))

	g.Ladderize()

	// Larger subtrees first, ties broken by name.
	children := g.ChildrenOf(root)
	require.Len(t, children, 2)
	assert.Equal(t, "big", children[0].Payload().Name)
	assert.Equal(t, "small", children[1].Payload().Name)

	tied := g.AddNode(&tree.NodePayload{Name: "a-small"})
	require.NoError(t, g.AddEdge(root, tied, tree.EdgePayload{}))
	g.Ladderize()

	children = g.ChildrenOf(root)
	require.Len(t, children, 3)
	assert.Equal(t, "a-small", children[1].Payload().Name)
	assert.Equal(t, "small", children[2].Payload().Name)
}
