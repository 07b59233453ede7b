package he

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

// RotationStrategy describes how a slot rotation permutes the slot vector.
// The slot vector is viewed as Rows() independent rows of RowSize() slots,
// each of which is rotated cyclically.
type RotationStrategy interface {
	// Rows returns the number of independent rows of the slot vector.
	Rows() int
	// RowSize returns the number of slots of a row.
	RowSize() int
	// Rotate rotates each row of op0 by k positions to the left and writes the result on opOut.
	// opOut must be a degree one ciphertext distinct from op0.
	Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error)
}

// ColumnRotator is implemented by the BGV evaluator.
type ColumnRotator interface {
	RotateColumns(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error)
}

// SlotRotator is implemented by the CKKS evaluator.
type SlotRotator interface {
	Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error)
}

// ColumnRotation is the rotation strategy of the batch integer encoding:
// the Slots slots form a 2 x Slots/2 matrix and a rotation acts on the
// columns, i.e. independently on the two rows.
type ColumnRotation struct {
	Slots   int
	Rotator ColumnRotator
}

// Rows returns 2.
func (r ColumnRotation) Rows() int {
	return 2
}

// RowSize returns Slots/2.
func (r ColumnRotation) RowSize() int {
	return r.Slots >> 1
}

// Rotate rotates both rows of op0 by k positions to the left.
func (r ColumnRotation) Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error) {
	return r.Rotator.RotateColumns(op0, k, opOut)
}

// CyclicRotation is the rotation strategy of the complex-packed encoding:
// a rotation is a single cyclic shift over all the Slots slots.
type CyclicRotation struct {
	Slots   int
	Rotator SlotRotator
}

// Rows returns 1.
func (r CyclicRotation) Rows() int {
	return 1
}

// RowSize returns Slots.
func (r CyclicRotation) RowSize() int {
	return r.Slots
}

// Rotate rotates op0 by k positions to the left.
func (r CyclicRotation) Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error) {
	return r.Rotator.Rotate(op0, k, opOut)
}

// Slots returns the total number of slots described by a rotation strategy.
func Slots(r RotationStrategy) int {
	return r.Rows() * r.RowSize()
}
