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

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/zymatik-com/phylo/mut"
)

// AuspiceTree is an Auspice v2 dataset, the serialized form of a reference
// phylogeny.
type AuspiceTree struct {
	Version string       `json:"version,omitempty"`
	Meta    Meta         `json:"meta"`
	Tree    *AuspiceNode `json:"tree"`
}

// Meta is the Auspice dataset metadata.
type Meta struct {
	Title       string `json:"title,omitempty"`
	Updated     string `json:"updated,omitempty"`
	Description string `json:"description,omitempty"`
}

// AuspiceNode is a node of the nested Auspice tree representation.
type AuspiceNode struct {
	Name        string         `json:"name"`
	NodeAttrs   NodeAttrs      `json:"node_attrs"`
	BranchAttrs BranchAttrs    `json:"branch_attrs,omitempty"`
	Children    []*AuspiceNode `json:"children,omitempty"`
}

// Read reads an Auspice JSON dataset and builds the placement graph from
// it. The transient private mutations of every branch are recovered from
// the serialized branch attributes and the divergence units of the tree
// are determined from its largest divergence.
func Read(r io.Reader) (*Graph, error) {
	var dataset AuspiceTree
	if err := json.NewDecoder(r).Decode(&dataset); err != nil {
		return nil, fmt.Errorf("could not decode auspice dataset: %w", err)
	}

	return FromAuspice(&dataset)
}

// FromAuspice builds the placement graph from a decoded Auspice dataset.
func FromAuspice(dataset *AuspiceTree) (*Graph, error) {
	if dataset.Tree == nil {
		return nil, fmt.Errorf("auspice dataset has no tree")
	}

	g := NewGraph()
	if err := addAuspiceNode(g, dataset.Tree, -1); err != nil {
		return nil, err
	}

	var maxDivergence float64
	for _, node := range g.nodes {
		if div := node.payload.NodeAttrs.Div; div != nil && *div > maxDivergence {
			maxDivergence = *div
		}
	}
	g.DivergenceUnits = mut.DivergenceUnitsFromMaxDivergence(maxDivergence)

	return g, nil
}

func addAuspiceNode(g *Graph, node *AuspiceNode, parent NodeKey) error {
	payload := &NodePayload{
		Name:        node.Name,
		NodeAttrs:   node.NodeAttrs,
		BranchAttrs: node.BranchAttrs,
	}

	privateMutations, err := branchMutationsFromAttrs(node.BranchAttrs.Mutations)
	if err != nil {
		return fmt.Errorf("could not parse mutations of node %q: %w", node.Name, err)
	}
	payload.Tmp.PrivateMutations = privateMutations

	key := g.AddNode(payload)
	if parent >= 0 {
		if err := g.AddEdge(parent, key, EdgePayload{}); err != nil {
			return err
		}
	}

	for _, child := range node.Children {
		if err := addAuspiceNode(g, child, key); err != nil {
			return err
		}
	}

	return nil
}

// branchMutationsFromAttrs parses the serialized branch attribute
// mutations back into a branch mutation bundle. The "nuc" key holds
// nucleotide mutations, every other key is a CDS name holding amino acid
// mutations.
func branchMutationsFromAttrs(mutations map[string][]string) (mut.BranchMutations, error) {
	bundle := mut.BranchMutations{
		AaMuts: make(map[string][]mut.AaSub),
	}

	for name, entries := range mutations {
		if name == "nuc" {
			for _, entry := range entries {
				sub, err := mut.ParseNucSub(entry)
				if err != nil {
					return mut.BranchMutations{}, err
				}
				bundle.NucMuts = append(bundle.NucMuts, sub)
			}

			continue
		}

		for _, entry := range entries {
			sub, err := mut.ParseAaSub(entry)
			if err != nil {
				return mut.BranchMutations{}, err
			}
			sub.Cds = name
			bundle.AaMuts[name] = append(bundle.AaMuts[name], sub)
		}
	}

	sorted := mut.NewBranchMutations(bundle.NucMuts, nil, bundle.AaMuts, nil)

	return sorted, nil
}

// ToAuspice converts the graph back to the nested Auspice representation,
// children in stored edge order.
func (g *Graph) ToAuspice(meta Meta) (*AuspiceTree, error) {
	root, err := g.Root()
	if err != nil {
		return nil, err
	}

	return &AuspiceTree{
		Version: "v2",
		Meta:    meta,
		Tree:    g.toAuspiceNode(root),
	}, nil
}

func (g *Graph) toAuspiceNode(node *Node) *AuspiceNode {
	auspiceNode := &AuspiceNode{
		Name:        node.payload.Name,
		NodeAttrs:   node.payload.NodeAttrs,
		BranchAttrs: node.payload.BranchAttrs,
	}

	for _, child := range g.ChildrenOf(node.key) {
		auspiceNode.Children = append(auspiceNode.Children, g.toAuspiceNode(child))
	}

	return auspiceNode
}

// Write serializes the graph as an Auspice JSON dataset.
func (g *Graph) Write(w io.Writer, meta Meta) error {
	dataset, err := g.ToAuspice(meta)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(dataset); err != nil {
		return fmt.Errorf("could not encode auspice dataset: %w", err)
	}

	return nil
}
