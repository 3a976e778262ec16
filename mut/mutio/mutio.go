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

// Package mutio provides readers for per-sample private mutation lists,
// as exported by variant callers (VCF) or simple mutation list files.
package mutio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/zymatik-com/phylo/mut"
)

// Codec is a mutation list file format decoder.
type Codec interface {
	// Detect returns true if the file format is detected.
	Detect(r io.Reader) (bool, error)
	// Open opens the mutation list file and returns a lazy reader.
	Open(r io.Reader) (Reader, error)
}

// Reader is a lazy mutation reader. Deletions are reported as
// substitutions to a gap.
type Reader interface {
	// Read reads the next mutation from the file. It returns io.EOF if
	// there are no more mutations.
	Read() (*mut.NucSub, error)
}

var codecs = []Codec{
	&vcfCodec{},
	&listCodec{},
}

// Open opens a mutation list file and returns a lazy mutation reader.
func Open(r io.Reader) (Reader, error) {
	// Peek at the head of the file to determine the format.
	buf := make([]byte, 1024)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}

	for _, codec := range codecs {
		ok, err := codec.Detect(bytes.NewReader(buf[:n]))
		if err != nil {
			return nil, err
		}

		if ok {
			return codec.Open(io.MultiReader(bytes.NewReader(buf[:n]), r))
		}
	}

	return nil, fmt.Errorf("unknown mutation list format")
}

// ReadAll drains a reader into a slice of substitutions.
func ReadAll(r Reader) ([]mut.NucSub, error) {
	var subs []mut.NucSub
	for {
		sub, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		subs = append(subs, *sub)
	}

	return subs, nil
}
