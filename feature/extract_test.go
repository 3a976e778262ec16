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

package feature_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zymatik-com/phylo/coord"
	"github.com/zymatik-com/phylo/feature"
	"github.com/zymatik-com/phylo/nuc"
)

func fakeCds(strand feature.Strand, segmentRanges ...[2]coord.RefPosition) feature.Cds {
	cds := feature.Cds{Name: "c1"}
	for _, r := range segmentRanges {
		cds.Segments = append(cds.Segments, feature.CdsSegment{
			Start:  r[0],
			End:    r[1],
			Strand: strand,
		})
	}

	return cds
}

func TestExtractGene(t *testing.T) {
	// reference: ACT|CCGTGACCG|CGT
	m := coord.NewCoordMap(nuc.ToSeq("A--CTCCGT---GACCG--CGT"), nil)
	qryAln := nuc.ToSeq("ACGCTCCGTGCGG--CGTGCGT")

	t.Run("Forward", func(t *testing.T) {
		gene := testGene(feature.StrandForward)
		gene.Cdses = []feature.Cds{fakeCds(feature.StrandForward, [2]coord.RefPosition{3, 12})}

		assert.Equal(t, "CCGTGCGG--CG", nuc.FromSeq(feature.ExtractGene(m, qryAln, gene)))
	})

	t.Run("Reverse", func(t *testing.T) {
		gene := testGene(feature.StrandReverse)
		gene.Cdses = []feature.Cds{fakeCds(feature.StrandReverse, [2]coord.RefPosition{3, 12})}

		assert.Equal(t, "CG--CCGCACGG", nuc.FromSeq(feature.ExtractGene(m, qryAln, gene)))
	})
}

func TestExtractCdsAlignment(t *testing.T) {
	// CDS range        11111111111111111
	// CDS range                        2222222222222222222      333333
	// index        012345678901234567890123456789012345678901234567890123456
	refAln := nuc.ToSeq("TGATGCACA---ATCGTTTTTAAACGGGTTTGCGGTGTAAGTGCAGCCCGTCTTACA")
	qryAln := nuc.ToSeq("-GATGCACACGCATC---TTTAAACGGGTTTGCGGTGTCAGT---GCCCGTCTTACA")

	cds := fakeCds(feature.StrandForward,
		[2]coord.RefPosition{4, 21},
		[2]coord.RefPosition{20, 39},
		[2]coord.RefPosition{45, 51},
	)
	m := coord.NewCoordMap(refAln, nil)

	refCdsAln, refCdsToAln := feature.ExtractCdsAlignment(m, refAln, &cds)
	assert.Equal(t, "GCACA---ATCGTTTTTAAAACGGGTTTGCGGTGTAAGTCGTCTT", nuc.FromSeq(refCdsAln))

	require.Len(t, refCdsToAln, 3)
	assert.Equal(t, feature.CdsToAln{
		Global: coord.NewRange[coord.AlnPosition](4, 24).Positions(),
		Start:  0,
		Len:    20,
	}, refCdsToAln[0])
	assert.Equal(t, feature.CdsToAln{
		Global: coord.NewRange[coord.AlnPosition](23, 42).Positions(),
		Start:  20,
		Len:    19,
	}, refCdsToAln[1])
	assert.Equal(t, feature.CdsToAln{
		Global: coord.NewRange[coord.AlnPosition](48, 54).Positions(),
		Start:  39,
		Len:    6,
	}, refCdsToAln[2])

	qryCdsAln, qryCdsToAln := feature.ExtractCdsAlignment(m, qryAln, &cds)
	assert.Equal(t, "GCACACGCATC---TTTAAAACGGGTTTGCGGTGTCAGTCGTCTT", nuc.FromSeq(qryCdsAln))
	assert.Equal(t, refCdsToAln, qryCdsToAln)

	// The per segment mappings concatenate into the full range of
	// extracted positions.
	var total int
	for _, segment := range qryCdsToAln {
		assert.Equal(t, total, segment.Start)
		total += segment.Len
	}
	assert.Equal(t, len(qryCdsAln), total)
}

func TestCdsToGlobalAlnPosition(t *testing.T) {
	refAln := nuc.ToSeq("TGATGCACA---ATCGTTTTTAAACGGGTTTGCGGTGTAAGTGCAGCCCGTCTTACA")
	cds := fakeCds(feature.StrandForward,
		[2]coord.RefPosition{4, 21},
		[2]coord.RefPosition{20, 39},
		[2]coord.RefPosition{45, 51},
	)
	m := coord.NewCoordMap(refAln, nil)

	_, cdsToAln := feature.ExtractCdsAlignment(m, refAln, &cds)

	positions := feature.CdsToGlobalAlnPosition(0, cdsToAln)
	require.Len(t, positions, 3)
	assert.Equal(t, feature.SegmentPosition{Kind: feature.InsideSegment, Aln: 4}, positions[0])
	assert.Equal(t, feature.BeforeSegment, positions[1].Kind)
	assert.Equal(t, feature.BeforeSegment, positions[2].Kind)

	positions = feature.CdsToGlobalAlnPosition(20, cdsToAln)
	assert.Equal(t, feature.AfterSegment, positions[0].Kind)
	assert.Equal(t, feature.SegmentPosition{Kind: feature.InsideSegment, Aln: 23}, positions[1])

	positions = feature.CdsToGlobalAlnPosition(44, cdsToAln)
	assert.Equal(t, feature.SegmentPosition{Kind: feature.InsideSegment, Aln: 53}, positions[2])

	// Only one segment ever reports a position as inside.
	for pos := 0; pos < 45; pos++ {
		var inside int
		for _, p := range feature.CdsToGlobalAlnPosition(pos, cdsToAln) {
			if p.Kind == feature.InsideSegment {
				inside++
			}
		}
		assert.Equal(t, 1, inside, "cds position %d", pos)
	}
}
