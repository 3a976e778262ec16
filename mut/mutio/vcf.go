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

package mutio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brentp/vcfgo"
	"github.com/zymatik-com/phylo/coord"
	"github.com/zymatik-com/phylo/mut"
	"github.com/zymatik-com/phylo/nuc"
)

// vcfCodec reads single nucleotide variants from a VCF file. Multi-base
// records are skipped; the placement engine only consumes single position
// substitutions and deletions.
type vcfCodec struct{}

func (c *vcfCodec) Detect(r io.Reader) (bool, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false, scanner.Err()
	}

	return strings.HasPrefix(scanner.Text(), "##fileformat=VCF"), nil
}

func (c *vcfCodec) Open(r io.Reader) (Reader, error) {
	rdr, err := vcfgo.NewReader(r, false)
	if err != nil {
		return nil, fmt.Errorf("could not open vcf: %w", err)
	}

	return &vcfReader{reader: rdr}, nil
}

type vcfReader struct {
	reader *vcfgo.Reader
}

func (r *vcfReader) Read() (*mut.NucSub, error) {
	for {
		variant := r.reader.Read()
		if variant == nil {
			return nil, io.EOF
		}

		ref := variant.Ref()
		if len(ref) != 1 {
			continue
		}

		alts := variant.Alt()
		if len(alts) == 0 {
			continue
		}

		alt := alts[0]
		if alt == "." || alt == "*" {
			alt = "-"
		}
		if len(alt) != 1 {
			continue
		}

		return &mut.NucSub{
			Pos: coord.RefPosition(variant.Pos - 1),
			Ref: nuc.Nuc(strings.ToUpper(ref)[0]),
			Qry: nuc.Nuc(strings.ToUpper(alt)[0]),
		}, nil
	}
}
