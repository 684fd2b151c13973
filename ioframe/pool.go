// SPDX-License-Identifier: MIT

// Package ioframe implements the file-level pipeline around the lz4 codec
// (§4.9): single- and multi-threaded frame compression, multi-format
// decompression dispatch, legacy-format support, and sparse-file output.
// Concurrency follows §5: a fixed worker pool with in-order result
// collection, grounded on golang.org/x/sync/errgroup the way moby-moby uses
// it for bounded, cancellable fan-out.
package ioframe

import "golang.org/x/sync/errgroup"

// DefaultMaxWorkers is the upper bound mapOrdered applies to the caller's
// worker count (§4.9.1).
const DefaultMaxWorkers = 200

// mapOrdered runs fn over each item with up to nbWorkers concurrent
// goroutines and returns results in input order, or the first error (§5:
// "Order preservation is achieved by keyed collection"). The whole call is
// a barrier: every item must finish before mapOrdered returns, since the
// frame/legacy writers need every chunk's bytes before they can emit the
// next one in order.
func mapOrdered[T, R any](nbWorkers int, items []T, fn func(idx int, item T) (R, error)) ([]R, error) {
	if nbWorkers < 1 {
		nbWorkers = 1
	}
	if nbWorkers > DefaultMaxWorkers {
		nbWorkers = DefaultMaxWorkers
	}

	var g errgroup.Group
	g.SetLimit(nbWorkers)

	results := make([]R, len(items))
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			out, err := fn(i, item)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
