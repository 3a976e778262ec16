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
	"compress/bzip2"
	"io"

	"github.com/biogo/hts/bgzf"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	gzip "github.com/klauspost/pgzip"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// format is a compression format codec: how to recognize the format at the
// head of a stream, and how to open readers and writers for it. Formats
// without a writer are read-only.
type format struct {
	name      string
	extension string
	detect    func(header []byte) bool
	reader    func(io.Reader) (io.ReadCloser, error)
	writer    func(io.Writer) (io.WriteCloser, error)
}

// Formats are probed in order; BGZF has to come before plain gzip, whose
// framing it reuses.
var formats = []*format{
	{
		name:      "bgzf",
		extension: ".bgz",
		detect: func(header []byte) bool {
			// A gzip member with the FEXTRA flag and the "BC" subfield, as
			// written by bgzip.
			if !bytes.HasPrefix(header, []byte{0x1F, 0x8B, 0x08, 0x04}) {
				return false
			}

			return len(header) >= 14 && header[12] == 'B' && header[13] == 'C'
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			br, err := bgzf.NewReader(r, 0)
			if err != nil {
				return nil, err
			}

			return newReadCloser(br, br.Close), nil
		},
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return bgzf.NewWriter(w, 1), nil
		},
	},
	{
		name: "bzip2",
		detect: func(header []byte) bool {
			return bytes.HasPrefix(header, []byte{0x42, 0x5A, 0x68})
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return newReadCloser(bzip2.NewReader(r), nil), nil
		},
	},
	{
		name:      "gzip",
		extension: ".gz",
		detect: func(header []byte) bool {
			return bytes.HasPrefix(header, []byte{0x1F, 0x8B})
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			gr, err := gzip.NewReader(r)
			if err != nil {
				return nil, err
			}

			return newReadCloser(gr, gr.Close), nil
		},
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriter(w), nil
		},
	},
	{
		name:      "lz4",
		extension: ".lz4",
		detect: func(header []byte) bool {
			return bytes.HasPrefix(header, []byte{0x04, 0x22, 0x4D, 0x18})
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return newReadCloser(lz4.NewReader(r), nil), nil
		},
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return lz4.NewWriter(w), nil
		},
	},
	{
		name:      "xz",
		extension: ".xz",
		detect: func(header []byte) bool {
			return bytes.HasPrefix(header, []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00})
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			xr, err := xz.NewReader(r)
			if err != nil {
				return nil, err
			}

			return newReadCloser(xr, nil), nil
		},
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		},
	},
	{
		name: "zlib",
		detect: func(header []byte) bool {
			for _, magic := range [][]byte{{0x78, 0x01}, {0x78, 0x9C}, {0x78, 0xDA}} {
				if bytes.HasPrefix(header, magic) {
					return true
				}
			}

			return false
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			return zlib.NewReader(r)
		},
	},
	{
		name:      "zstd",
		extension: ".zst",
		detect: func(header []byte) bool {
			return bytes.HasPrefix(header, []byte{0x28, 0xB5, 0x2F, 0xFD})
		},
		reader: func(r io.Reader) (io.ReadCloser, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}

			return zr.IOReadCloser(), nil
		},
		writer: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w)
		},
	},
}

type readCloser struct {
	io.Reader
	close func() error
}

func newReadCloser(r io.Reader, close func() error) io.ReadCloser {
	return &readCloser{Reader: r, close: close}
}

func (r *readCloser) Close() error {
	if r.close != nil {
		return r.close()
	}

	return nil
}
