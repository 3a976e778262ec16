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

// Package pipeline runs per-sample analysis over a stream of sequences: a
// producer reads records, a pool of workers processes them and a single
// writer drains the results. The queues between the stages are bounded to
// provide backpressure.
//
// Workers share only immutable state (coordinate maps, features, the
// reference sequence). Anything that mutates shared state, such as tree
// placement, must run as a separate serialized phase over the collected
// results.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/zymatik-com/phylo/fasta"
)

// DefaultQueueSize is the default capacity of the record and result
// queues.
const DefaultQueueSize = 128

// Options configures a pipeline run.
type Options struct {
	// Workers is the number of worker goroutines. Defaults to the number
	// of CPUs.
	Workers int
	// QueueSize is the capacity of the bounded queues between the stages.
	// Defaults to DefaultQueueSize.
	QueueSize int
	// InOrder makes the writer release results in input order, buffering
	// records that complete early.
	InOrder bool
}

// Record is a single input sequence record.
type Record struct {
	// Index is the position of the record in the input.
	Index int
	// Name is the sequence name.
	Name string
	// Seq is the raw input sequence.
	Seq *fasta.Sequence
}

type result[T any] struct {
	index int
	name  string
	value T
	err   error
}

// Run streams records from the reader through the worker pool into the
// consumer. Per-record processing errors are collected and reported
// together after the run; a consumer error or context cancellation aborts
// the run.
func Run[T any](ctx context.Context, logger *slog.Logger, reader *fasta.Reader, process func(context.Context, Record) (T, error), consume func(T) error, opts Options) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan Record, queueSize)
	results := make(chan result[T], queueSize)

	// Producer.
	producerErr := make(chan error, 1)
	go func() {
		defer close(records)

		for index := 0; ; index++ {
			seq, err := reader.Next()
			if err == io.EOF {
				producerErr <- nil
				return
			}
			if err != nil {
				producerErr <- fmt.Errorf("could not read sequence: %w", err)
				return
			}

			select {
			case records <- Record{Index: index, Name: seq.Name, Seq: seq}:
			case <-ctx.Done():
				producerErr <- ctx.Err()
				return
			}
		}
	}()

	// Workers.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for record := range records {
				value, err := process(ctx, record)
				if err != nil {
					err = fmt.Errorf("could not process sequence %q: %w", record.Name, err)
				}

				select {
				case results <- result[T]{index: record.Index, name: record.Name, value: value, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer.
	var errs []error

	release := func(res result[T]) error {
		if res.err != nil {
			logger.Warn("Failed to process sequence", "name", res.name, "error", res.err)
			errs = append(errs, res.err)

			return nil
		}

		return consume(res.value)
	}

	pending := make(map[int]result[T])
	var next int

	for res := range results {
		if !opts.InOrder {
			if err := release(res); err != nil {
				cancel()
				return err
			}

			continue
		}

		pending[res.index] = res
		for {
			buffered, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if err := release(buffered); err != nil {
				cancel()
				return err
			}
		}
	}

	if err := <-producerErr; err != nil {
		errs = append(errs, err)
	}

	if ctx.Err() != nil {
		errs = append(errs, ctx.Err())
	}

	return errors.Join(errs...)
}
