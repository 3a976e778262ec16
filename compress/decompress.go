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

package compress

import (
	"bytes"
	"io"
)

// sniffLen is how much of the stream head is probed for format magic.
const sniffLen = 512

// Decompress probes the head of the stream against the known formats and
// returns a decompressing reader for the first match. Streams matching no
// format are passed through unchanged.
func Decompress(r io.Reader) (io.ReadCloser, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	header = header[:n]

	// Stitch the probed bytes back onto the stream.
	r = io.MultiReader(bytes.NewReader(header), r)

	for _, f := range formats {
		if f.detect(header) {
			return f.reader(r)
		}
	}

	return newReadCloser(r, nil), nil
}
