// Package linalg implements encrypted vector algebra on top of the
// ciphertext algebra of package he: dot products by rotate-and-sum,
// matrix-vector products with one ciphertext per row, packed products
// evaluating several dot products per ciphertext, and the extraction of
// the results from the decrypted slots.
//
// All the evaluators of this package return new ciphertexts and never
// modify their inputs. They are not safe for concurrent use, but the
// matrix evaluators spread their rows over shallow copies of the algebra.
package linalg

import (
	"math/bits"

	"github.com/pkg/errors"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/tuneinsight/hevec/he"
)

var (
	// ErrDepthExhausted is returned when an operand does not have enough
	// levels left for a product. It is not recoverable: the inputs must be
	// encrypted again with a longer modulus chain.
	ErrDepthExhausted = errors.New("modulus chain depth exhausted")

	// ErrLayout is returned when the shape of the inputs does not match the
	// reduction (dimension out of range, malformed packing, missing rows,
	// offsets out of range). It is always detected before any homomorphic
	// operation.
	ErrLayout = errors.New("layout mismatch")
)

// Rotations returns the rotation distances used by the rotate-and-sum
// reduction over dimension slots, in the order they are applied.
// A Galois key must be available for each of them.
func Rotations(dimension int) (rotations []int) {
	for d := span(dimension) >> 1; d > 0; d >>= 1 {
		rotations = append(rotations, d)
	}
	return
}

// span returns the smallest power of two greater or equal to dimension.
func span(dimension int) int {
	if dimension <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(dimension-1))
}

func isPow2(x int) bool {
	return x > 0 && x&(x-1) == 0
}

func checkDimension(dimension, rowSize int) error {
	if dimension < 1 || dimension > rowSize {
		return errors.Wrapf(ErrLayout, "dimension %d is not in [1, %d]", dimension, rowSize)
	}
	return nil
}

func checkOperand(ct *rlwe.Ciphertext, alg he.Algebra) error {
	switch {
	case ct == nil:
		return errors.Wrap(ErrLayout, "operand is nil")
	case ct.Degree() != 1:
		return errors.Wrapf(ErrLayout, "operand has degree %d", ct.Degree())
	case ct.Level() < alg.LevelsPerProduct():
		return errors.Wrapf(ErrDepthExhausted, "operand level %d < %d", ct.Level(), alg.LevelsPerProduct())
	}
	return nil
}
