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
	"io"
	"strings"

	"github.com/zymatik-com/phylo/mut"
)

// listCodec reads plain mutation list files: one mutation per line in the
// conventional one-based form ("C241T", "G2891-"), with optional comment
// lines starting with '#'.
type listCodec struct{}

func (c *listCodec) Detect(r io.Reader) (bool, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		_, err := mut.ParseNucSub(line)

		return err == nil, nil
	}

	return false, scanner.Err()
}

func (c *listCodec) Open(r io.Reader) (Reader, error) {
	return &listReader{scanner: bufio.NewScanner(r)}, nil
}

type listReader struct {
	scanner *bufio.Scanner
}

func (r *listReader) Read() (*mut.NucSub, error) {
	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		sub, err := mut.ParseNucSub(line)
		if err != nil {
			return nil, err
		}

		return &sub, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	return nil, io.EOF
}
