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

// Package compress provides transparent reading and writing of the
// compressed file formats common in genomics, including block-gzipped
// (BGZF) files. Formats are described by a single codec table shared
// between the reading and writing paths.
package compress

import (
	"io"
	"strings"
)

// Compress returns a compressing writer for the format matching the file
// extension. Unrecognized extensions, and formats without write support,
// fall back to gzip.
func Compress(name string, w io.Writer) (io.WriteCloser, error) {
	for _, f := range formats {
		if f.writer != nil && f.extension != "" && strings.HasSuffix(name, f.extension) {
			return f.writer(w)
		}
	}

	return formatByName("gzip").writer(w)
}

func formatByName(name string) *format {
	for _, f := range formats {
		if f.name == name {
			return f
		}
	}

	return nil
}
