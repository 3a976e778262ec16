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

// Package coord provides conversion of positions and ranges between the
// coordinate spaces of a pairwise alignment.
//
// Positions of nucleotides change after alignment because of insertions and
// deletions. Some operations are done in alignment space (column indices of
// the gapped, aligned sequences), others in reference space (indices into
// the ungapped reference). The two spaces are kept apart at the type level
// so they cannot be mixed by accident.
package coord

// RefPosition is a position in reference space: an index into the ungapped
// reference sequence.
type RefPosition int

// AlnPosition is a position in alignment space: a column index into a
// gapped, aligned sequence.
type AlnPosition int
