package linalg

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/tuneinsight/hevec/he"
)

// MatVecEvaluator computes encrypted matrix-vector products, with the
// matrix given as one ciphertext per row.
type MatVecEvaluator struct {
	*DotProductEvaluator

	// Workers is the number of rows evaluated concurrently.
	// Values smaller than 2 evaluate the rows sequentially.
	Workers int
}

// NewMatVecEvaluator instantiates a new MatVecEvaluator.
func NewMatVecEvaluator(alg he.Algebra, workers int) *MatVecEvaluator {
	return &MatVecEvaluator{
		DotProductEvaluator: NewDotProductEvaluator(alg),
		Workers:             workers,
	}
}

// MulNew returns one ciphertext per row of matrix, the i-th one holding
// matrix[i] . vector in slot 0 as returned by DotProductNew.
// All rows are checked before any homomorphic operation and the first
// error aborts the evaluation of the remaining rows.
func (eval MatVecEvaluator) MulNew(matrix []*rlwe.Ciphertext, vector *rlwe.Ciphertext, dimension int) (opOut []*rlwe.Ciphertext, err error) {

	for i := range matrix {
		if err = eval.check(matrix[i], vector, dimension); err != nil {
			return nil, errors.WithMessagef(err, "cannot MulNew: row %d", i)
		}
	}

	opOut = make([]*rlwe.Ciphertext, len(matrix))

	err = eval.mapRows(len(matrix), func(eval *DotProductEvaluator, i int) (err error) {
		if opOut[i], err = eval.DotProductNew(matrix[i], vector, dimension); err != nil {
			return errors.WithMessagef(err, "row %d", i)
		}
		return
	})

	if err != nil {
		return nil, errors.WithMessage(err, "cannot MulNew")
	}

	return
}

// mapRows calls f on each row index in [0, rows). With more than one worker,
// each worker owns a shallow copy of the evaluator.
func (eval MatVecEvaluator) mapRows(rows int, f func(eval *DotProductEvaluator, i int) error) error {

	workers := min(eval.Workers, rows)

	if workers < 2 {
		for i := 0; i < rows; i++ {
			if err := f(eval.DotProductEvaluator, i); err != nil {
				return err
			}
		}
		return nil
	}

	pool := make(chan *DotProductEvaluator, workers)
	for w := 0; w < workers; w++ {
		pool <- eval.DotProductEvaluator.ShallowCopy()
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i := 0; i < rows; i++ {
		g.Go(func() error {

			if ctx.Err() != nil {
				return nil
			}

			worker := <-pool
			defer func() { pool <- worker }()

			return f(worker, i)
		})
	}

	return g.Wait()
}
