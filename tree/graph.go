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

// Package tree provides a rooted reference phylogeny as a mutable graph.
// Nodes do not own their children; a central graph container owns all
// nodes and edges and navigation uses opaque keys, so back-references are
// plain key lookups.
package tree

import (
	"fmt"
	"sort"

	"github.com/zymatik-com/phylo/mut"
)

// NodeKey is an opaque key identifying a node within its graph.
type NodeKey int

// EdgeKey is an opaque key identifying an edge within its graph.
type EdgeKey int

// InvariantError reports a structural violation of the tree invariants,
// such as a missing parent or an unknown node key. It is internal and not
// recoverable.
type InvariantError struct {
	Msg string
	Key NodeKey
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s (node key %d)", e.Msg, int(e.Key))
}

// EdgePayload is the payload attached to a tree edge. It is currently
// opaque.
type EdgePayload struct{}

// Node is a single node of the graph.
type Node struct {
	key      NodeKey
	payload  *NodePayload
	inEdge   *EdgeKey
	outEdges []EdgeKey
}

// Key returns the node key.
func (n *Node) Key() NodeKey {
	return n.key
}

// Payload returns the node payload.
func (n *Node) Payload() *NodePayload {
	return n.payload
}

// IsRoot returns true if the node has no parent.
func (n *Node) IsRoot() bool {
	return n.inEdge == nil
}

// IsLeaf returns true if the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.outEdges) == 0
}

type edge struct {
	key     EdgeKey
	parent  NodeKey
	child   NodeKey
	payload EdgePayload
}

// Graph is a rooted directed tree over payload-carrying nodes.
type Graph struct {
	nodes []*Node
	edges []*edge

	// DivergenceUnits is the unit the divergences of this tree are
	// measured in. It is determined when the tree is loaded.
	DivergenceUnits mut.DivergenceUnits
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumLeaves returns the number of leaf nodes in the graph.
func (g *Graph) NumLeaves() int {
	var n int
	for _, node := range g.nodes {
		if node.IsLeaf() {
			n++
		}
	}

	return n
}

// GetNode returns the node with the given key.
func (g *Graph) GetNode(key NodeKey) (*Node, error) {
	if int(key) < 0 || int(key) >= len(g.nodes) {
		return nil, &InvariantError{Msg: "unknown node key", Key: key}
	}

	return g.nodes[key], nil
}

// AddNode adds a new disconnected node to the graph and returns its key.
func (g *Graph) AddNode(payload *NodePayload) NodeKey {
	key := NodeKey(len(g.nodes))
	g.nodes = append(g.nodes, &Node{key: key, payload: payload})

	return key
}

// AddEdge connects parent to child. The tree invariant is enforced here:
// the child must not already have a parent and must not be an ancestor of
// the parent.
func (g *Graph) AddEdge(parent, child NodeKey, payload EdgePayload) error {
	parentNode, err := g.GetNode(parent)
	if err != nil {
		return err
	}

	childNode, err := g.GetNode(child)
	if err != nil {
		return err
	}

	if childNode.inEdge != nil {
		return &InvariantError{Msg: "node already has a parent", Key: child}
	}

	for ancestor := parentNode; ; {
		if ancestor.key == child {
			return &InvariantError{Msg: "edge would create a cycle", Key: child}
		}

		up, ok := g.ParentOf(ancestor.key)
		if !ok {
			break
		}
		ancestor = up
	}

	key := EdgeKey(len(g.edges))
	g.edges = append(g.edges, &edge{key: key, parent: parent, child: child, payload: payload})

	parentNode.outEdges = append(parentNode.outEdges, key)
	childNode.inEdge = &key

	return nil
}

// Root returns the single root of the graph.
func (g *Graph) Root() (*Node, error) {
	var root *Node
	for _, node := range g.nodes {
		if node.IsRoot() {
			if root != nil {
				return nil, &InvariantError{Msg: "multiple roots", Key: node.key}
			}
			root = node
		}
	}

	if root == nil {
		return nil, &InvariantError{Msg: "graph has no root", Key: -1}
	}

	return root, nil
}

// ParentOf returns the parent of the node with the given key, or false if
// the node is the root (or unknown).
func (g *Graph) ParentOf(key NodeKey) (*Node, bool) {
	node, err := g.GetNode(key)
	if err != nil || node.inEdge == nil {
		return nil, false
	}

	return g.nodes[g.edges[*node.inEdge].parent], true
}

// ChildrenOf returns the children of the node with the given key, in
// stored edge order.
func (g *Graph) ChildrenOf(key NodeKey) []*Node {
	node, err := g.GetNode(key)
	if err != nil {
		return nil
	}

	children := make([]*Node, 0, len(node.outEdges))
	for _, edgeKey := range node.outEdges {
		children = append(children, g.nodes[g.edges[edgeKey].child])
	}

	return children
}

// InsertNodeBefore splices the node newKey between targetKey and its
// current parent: the parent's edge is redirected to newKey (carrying
// edgeUp) and a new edge from newKey down to targetKey carries edgeDown.
func (g *Graph) InsertNodeBefore(newKey, targetKey NodeKey, edgeUp, edgeDown EdgePayload) error {
	newNode, err := g.GetNode(newKey)
	if err != nil {
		return err
	}

	targetNode, err := g.GetNode(targetKey)
	if err != nil {
		return err
	}

	if targetNode.inEdge == nil {
		return &InvariantError{Msg: "cannot insert a node above the root", Key: targetKey}
	}
	if newNode.inEdge != nil {
		return &InvariantError{Msg: "node already has a parent", Key: newKey}
	}

	parentEdge := g.edges[*targetNode.inEdge]
	parentEdge.child = newKey
	parentEdge.payload = edgeUp
	newNode.inEdge = targetNode.inEdge
	targetNode.inEdge = nil

	return g.AddEdge(newKey, targetKey, edgeDown)
}

// Ladderize reorders the children of every node by descending subtree
// size, ties broken by node name.
func (g *Graph) Ladderize() {
	sizes := make([]int, len(g.nodes))

	root, err := g.Root()
	if err != nil {
		return
	}
	g.subtreeSize(root, sizes)

	for _, node := range g.nodes {
		sort.SliceStable(node.outEdges, func(i, j int) bool {
			a := g.nodes[g.edges[node.outEdges[i]].child]
			b := g.nodes[g.edges[node.outEdges[j]].child]
			if sizes[a.key] != sizes[b.key] {
				return sizes[a.key] > sizes[b.key]
			}

			return a.payload.Name < b.payload.Name
		})
	}
}

func (g *Graph) subtreeSize(node *Node, sizes []int) int {
	size := 1
	for _, child := range g.ChildrenOf(node.key) {
		size += g.subtreeSize(child, sizes)
	}
	sizes[node.key] = size

	return size
}
