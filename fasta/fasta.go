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

// Package fasta provides reading and writing of nucleotide FASTA files.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/zymatik-com/phylo/coord"
	"github.com/zymatik-com/phylo/nuc"
)

// Sequence is a single sequence in a FASTA file.
type Sequence struct {
	// Name is the sequence identifier, the first word of the description.
	Name string
	// Description is the full description line, without the leading '>'.
	Description string
	// Seq holds the sequence letters, upper-cased.
	Seq []nuc.Nuc

	index int
}

// Len returns the sequence length.
func (s *Sequence) Len() int {
	return len(s.Seq)
}

// Slice returns the letters of the given half-open reference range.
func (s *Sequence) Slice(r coord.RefRange) ([]nuc.Nuc, error) {
	if r.Begin < 0 || int(r.End) > len(s.Seq) || r.Begin > r.End {
		return nil, fmt.Errorf("range %s out of bounds for sequence of length %d", r, len(s.Seq))
	}

	return s.Seq[r.Begin:r.End], nil
}

// Reader is a lazy FASTA reader.
type Reader struct {
	reader *bufio.Reader

	description string
	started     bool
	done        bool
	index       int
}

// NewReader returns a reader for the given FASTA stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next reads the next sequence from the stream. It returns io.EOF when
// there are no more sequences.
func (r *Reader) Next() (*Sequence, error) {
	if r.done {
		return nil, io.EOF
	}

	var values []nuc.Nuc
	for {
		line, err := r.readLine()
		if err == io.EOF {
			r.done = true

			if !r.started {
				return nil, io.EOF
			}

			return r.finish(values), nil
		}
		if err != nil {
			return nil, fmt.Errorf("could not read fasta file: %w", err)
		}

		if len(line) == 0 {
			continue
		}

		if line[0] == '>' {
			if r.started {
				seq := r.finish(values)
				r.description = line[1:]

				return seq, nil
			}

			r.started = true
			r.description = line[1:]

			continue
		}

		if !r.started {
			return nil, fmt.Errorf("fasta file does not start with a description line")
		}

		values = append(values, nuc.ToSeq(line)...)
	}
}

// ReadAll reads all sequences matching the given filters.
func ReadAll(r io.Reader, filters ...Filter) ([]*Sequence, error) {
	reader := NewReader(r)

	var sequences []*Sequence
	for {
		seq, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(filters) > 0 {
			for _, filter := range filters {
				if filter(seq) {
					sequences = append(sequences, seq)
					break
				}
			}
		} else {
			sequences = append(sequences, seq)
		}
	}

	return sequences, nil
}

func (r *Reader) readLine() (string, error) {
	line, err := r.reader.ReadString('\n')
	if err == io.EOF && len(line) > 0 {
		err = nil
	}
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (r *Reader) finish(values []nuc.Nuc) *Sequence {
	seq := &Sequence{
		Name:        firstWord(r.description),
		Description: r.description,
		Seq:         values,
		index:       r.index,
	}
	r.index++

	return seq
}

func firstWord(s string) string {
	if fields := strings.Fields(s); len(fields) > 0 {
		return fields[0]
	}

	return ""
}

// Write writes the given sequences to a FASTA file, wrapped at 80
// columns.
func Write(w io.Writer, sequences []*Sequence) error {
	for _, s := range sequences {
		if _, err := fmt.Fprintf(w, ">%s\n", s.Description); err != nil {
			return fmt.Errorf("could not write fasta file: %w", err)
		}

		for i := 0; i < len(s.Seq); i += 80 {
			end := min(i+80, len(s.Seq))

			if _, err := io.WriteString(w, nuc.FromSeq(s.Seq[i:end])); err != nil {
				return fmt.Errorf("could not write fasta file: %w", err)
			}

			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("could not write fasta file: %w", err)
			}
		}
	}

	return nil
}

// Filter is a function that returns true if the given sequence should be
// included in the results.
type Filter func(*Sequence) bool

// FilterByName matches sequences with the given name.
func FilterByName(name string) Filter {
	return func(s *Sequence) bool {
		return s.Name == name
	}
}

// FilterByIndex matches sequences with the given index.
func FilterByIndex(i int) Filter {
	return func(s *Sequence) bool {
		return s.index == i
	}
}
