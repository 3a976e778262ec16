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

// Package placement splices newly analyzed samples into a reference
// phylogeny. For each sample an upstream nearest-neighbor search supplies
// a preliminary attachment node and the sample's private mutations; the
// placement engine fine-tunes the attachment to the node that shares the
// most mutations with the sample and knits a new leaf into the tree,
// inserting an intermediate node when shared mutations belong on a common
// branch.
//
// The engine mutates the tree in place and is intentionally sequential:
// correctness depends on each sample observing the tree state left behind
// by the previous one.
package placement

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"github.com/zymatik-com/phylo/feature"
	"github.com/zymatik-com/phylo/mut"
	"github.com/zymatik-com/phylo/tree"
)

// Params tunes the placement engine.
type Params struct {
	// WithoutGreedyTreeBuilder disables attachment fine-tuning and branch
	// splitting: samples attach directly to their nearest node with their
	// full private mutations.
	WithoutGreedyTreeBuilder bool
}

// Sample is the per-sample analysis output consumed by the placement
// engine.
type Sample struct {
	// Index is the position of the sample in the original input.
	Index int
	// SeqName is the sample sequence name.
	SeqName string
	// NearestNodeID is the preliminary nearest node found upstream.
	NearestNodeID tree.NodeKey
	// Private mutations between the nearest node and the sample.
	PrivateNucSubs []mut.NucSub
	PrivateNucDels []mut.NucDel
	PrivateAaSubs  map[string][]mut.AaSub
	PrivateAaDels  map[string][]mut.AaDel
}

// AttachNewNodes attaches a batch of samples to the tree. Samples with
// fewer private substitutions attach first so that the outcome does not
// depend on upstream scheduling; ties are broken by input order. Samples
// whose mutations are inconsistent with the tree are skipped with a
// warning naming the coding sequences covering the offending position,
// structural errors abort the batch. Finally the tree is ladderized.
//
// annotation is the CDS overlap index of the reference annotation; it may
// be nil when no annotation is available.
func AttachNewNodes(logger *slog.Logger, g *tree.Graph, samples []Sample, refSeqLen int, annotation *feature.Index, params Params, showProgress bool) error {
	sorted := append([]Sample(nil), samples...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].PrivateNucSubs) != len(sorted[j].PrivateNucSubs) {
			return len(sorted[i].PrivateNucSubs) < len(sorted[j].PrivateNucSubs)
		}

		return sorted[i].Index < sorted[j].Index
	})

	var bar *pb.ProgressBar
	if showProgress {
		bar = pb.StartNew(len(sorted))
		defer bar.Finish()
	}

	for i := range sorted {
		if bar != nil {
			bar.Increment()
		}

		if err := AttachNewNode(g, &sorted[i], refSeqLen, params); err != nil {
			err = fmt.Errorf("could not attach new node for query sequence %q: %w", sorted[i].SeqName, err)

			var conflictErr *mut.ConflictError
			if errors.As(err, &conflictErr) {
				attrs := []any{"name", sorted[i].SeqName, "error", err}

				cds := conflictErr.Cds
				if cds == "" && annotation != nil {
					cds = strings.Join(annotation.CdsNamesAt(conflictErr.Pos), "+")
				}
				if cds != "" {
					attrs = append(attrs, "cds", cds)
				}

				logger.Warn("Skipping sample with inconsistent mutations", attrs...)

				continue
			}

			return err
		}
	}

	g.Ladderize()

	return nil
}

// AttachNewNode attaches a single sample to the tree.
func AttachNewNode(g *tree.Graph, sample *Sample, refSeqLen int, params Params) error {
	seqPrivateMutations := mut.NewBranchMutations(
		sample.PrivateNucSubs, sample.PrivateNucDels,
		sample.PrivateAaSubs, sample.PrivateAaDels,
	)

	nearestKey := sample.NearestNodeID
	privateMutations := seqPrivateMutations

	if !params.WithoutGreedyTreeBuilder {
		var err error
		nearestKey, privateMutations, err = FinetuneNearestNode(g, sample.NearestNodeID, &seqPrivateMutations)
		if err != nil {
			return err
		}
	}

	return KnitIntoGraph(g, nearestKey, sample, &privateMutations, refSeqLen, params)
}

// FinetuneNearestNode walks the tree from the preliminary nearest node to
// the attachment point sharing the most nucleotide mutations with the
// sample. It returns the chosen node and the residual private mutations of
// the sample relative to it.
func FinetuneNearestNode(g *tree.Graph, nearestKey tree.NodeKey, seqPrivateMutations *mut.BranchMutations) (tree.NodeKey, mut.BranchMutations, error) {
	current, err := g.GetNode(nearestKey)
	if err != nil {
		return 0, mut.BranchMutations{}, err
	}

	privateMutations := seqPrivateMutations.Clone()

	for {
		bestNode := current
		var bestSplit mut.SplitResult
		var nSharedMuts int

		if current.IsRoot() {
			// Never attach above the root: the root itself is not a
			// candidate.
			bestSplit = mut.SplitResult{Left: privateMutations.Clone()}
		} else {
			invertedEdge := current.Payload().Tmp.PrivateMutations.Invert()
			bestSplit, err = mut.Split(&invertedEdge, &privateMutations)
			if err != nil {
				return 0, mut.BranchMutations{}, fmt.Errorf("could not split mutations between query sequence and the nearest node %q: %w",
					current.Payload().Name, err)
			}
			nSharedMuts = mut.CountNucMuts(&bestSplit.Shared)
		}

		for _, child := range g.ChildrenOf(current.Key()) {
			split, err := mut.Split(&child.Payload().Tmp.PrivateMutations, &privateMutations)
			if err != nil {
				return 0, mut.BranchMutations{}, fmt.Errorf("could not split mutations between query sequence and the child node %q: %w",
					child.Payload().Name, err)
			}

			if n := mut.CountNucMuts(&split.Shared); n > nSharedMuts {
				nSharedMuts = n
				bestSplit = split
				bestNode = child
			}
		}

		if nSharedMuts > 0 {
			switch {
			case bestNode.Key() == current.Key() && len(bestSplit.Left.NucMuts) == 0:
				// Every mutation on the edge to the parent is shared with
				// the sample: the whole edge is consumed by moving up.
				parent, ok := g.ParentOf(current.Key())
				if !ok {
					return 0, mut.BranchMutations{}, &tree.InvariantError{Msg: "parent node is expected, but not found", Key: current.Key()}
				}
				current = parent
			case bestNode.Key() == current.Key():
				// No neighbor improves on the current node.
				return current.Key(), privateMutations, nil
			default:
				current = bestNode
			}

			// The shared mutations now sit on the branch behind us; the
			// leftover mutations of that branch are crossed against their
			// direction and become private. Even without leftover
			// nucleotide mutations there can be amino acid changes that
			// still need handling.
			privateMutations = mut.Difference(&privateMutations, &bestSplit.Shared)
			invertedLeft := bestSplit.Left.Invert()
			privateMutations = mut.Union(&privateMutations, &invertedLeft)
		} else if current.IsLeaf() && !current.IsRoot() && len(current.Payload().Tmp.PrivateMutations.NucMuts) == 0 {
			// A leaf identical to its parent in nucleotides, as introduced
			// for auxiliary nodes. Step over it, keeping any amino acid
			// only subtraction.
			privateMutations = mut.Difference(&privateMutations, &bestSplit.Shared)

			parent, ok := g.ParentOf(bestNode.Key())
			if !ok {
				return 0, mut.BranchMutations{}, &tree.InvariantError{Msg: "parent node is expected, but not found", Key: bestNode.Key()}
			}
			current = parent
		} else {
			return current.Key(), privateMutations, nil
		}
	}
}
