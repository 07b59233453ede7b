package linalg

import (
	"github.com/pkg/errors"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/tuneinsight/hevec/he"
)

// DotProductEvaluator computes encrypted dot products.
type DotProductEvaluator struct {
	he.Algebra
}

// NewDotProductEvaluator instantiates a new DotProductEvaluator.
// The algebra must hold the relinearization key and the Galois keys
// for Rotations(dimension) of every dimension it will be used with.
func NewDotProductEvaluator(alg he.Algebra) *DotProductEvaluator {
	return &DotProductEvaluator{Algebra: alg}
}

// ShallowCopy creates a shallow copy of the evaluator that can be used
// concurrently with the receiver.
func (eval DotProductEvaluator) ShallowCopy() *DotProductEvaluator {
	return &DotProductEvaluator{Algebra: eval.Algebra.ShallowCopy()}
}

// DotProductNew returns a new ciphertext whose slot 0 holds sum a[i]*b[i]
// for i in [0, dimension).
//
// The product is relinearized then rescaled, and summed in log2(dimension)
// rotations. With the batch integer encoding the second row is reduced
// independently and its sum lands on the first slot of that row. The
// remaining slots hold partial sums.
//
// When dimension is not a power of two, the sum runs over the next power of
// two and the slots of a and b in [dimension, 2^ceil(log2(dimension))) must
// multiply to zero.
//
// The method returns ErrLayout if dimension is not in [1, RowSize()] or an
// operand is not a relinearized ciphertext, and ErrDepthExhausted if an
// operand has fewer than LevelsPerProduct() levels left.
func (eval DotProductEvaluator) DotProductNew(a, b *rlwe.Ciphertext, dimension int) (opOut *rlwe.Ciphertext, err error) {

	if err = eval.check(a, b, dimension); err != nil {
		return nil, errors.WithMessage(err, "cannot DotProductNew")
	}

	if opOut, err = eval.productNew(a, b); err != nil {
		return nil, errors.WithMessage(err, "cannot DotProductNew")
	}

	if err = eval.InnerSum(opOut, dimension, opOut); err != nil {
		return nil, errors.WithMessage(err, "cannot DotProductNew")
	}

	return
}

// InnerSum runs the rotate-and-sum reduction on ct and writes on opOut (which
// may be ct) a ciphertext whose slot 0 holds the sum of the first dimension
// slots of ct. ct must be a relinearized ciphertext.
func (eval DotProductEvaluator) InnerSum(ct *rlwe.Ciphertext, dimension int, opOut *rlwe.Ciphertext) (err error) {

	if err = checkDimension(dimension, eval.RowSize()); err != nil {
		return errors.WithMessage(err, "cannot InnerSum")
	}

	if ct == nil || opOut == nil || ct.Degree() != 1 {
		return errors.Wrap(ErrLayout, "cannot InnerSum: ct must be a non nil ciphertext of degree 1")
	}

	if ct != opOut {
		*opOut = *ct.CopyNew()
	}

	rotations := Rotations(dimension)

	if len(rotations) == 0 {
		return
	}

	// The rotated copy is a private buffer of this reduction.
	tmp := opOut.CopyNew()

	for _, d := range rotations {

		if err = eval.Rotate(opOut, d, tmp); err != nil {
			return errors.Wrapf(err, "cannot InnerSum: rotate by %d", d)
		}

		if err = eval.Add(opOut, tmp, opOut); err != nil {
			return errors.Wrapf(err, "cannot InnerSum: add rotation by %d", d)
		}
	}

	return
}

func (eval DotProductEvaluator) check(a, b *rlwe.Ciphertext, dimension int) (err error) {

	if err = checkDimension(dimension, eval.RowSize()); err != nil {
		return
	}

	if err = checkOperand(a, eval.Algebra); err != nil {
		return errors.WithMessage(err, "a")
	}

	if err = checkOperand(b, eval.Algebra); err != nil {
		return errors.WithMessage(err, "b")
	}

	return
}

// productNew returns a*b relinearized and rescaled.
func (eval DotProductEvaluator) productNew(a, b *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {

	if opOut, err = eval.MulNew(a, b); err != nil {
		return nil, errors.Wrap(err, "multiply")
	}

	if opOut, err = eval.RelinearizeNew(opOut); err != nil {
		return nil, errors.Wrap(err, "relinearize")
	}

	if err = eval.Rescale(opOut, opOut); err != nil {
		return nil, errors.Wrap(err, "rescale")
	}

	return
}
