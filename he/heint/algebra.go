package heint

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"

	"github.com/tuneinsight/hevec/he"
)

// Algebra is the BGV ciphertext algebra. Products are relinearized then
// rescaled, consuming one level each, and rotations act on the columns of
// the 2 x N/2 slot matrix.
type Algebra struct {
	*bgv.Evaluator
	rotation he.ColumnRotation
}

// NewAlgebra creates a new Algebra from the parameters and the evaluation keys.
func NewAlgebra(params bgv.Parameters, evk rlwe.EvaluationKeySet) *Algebra {
	return newAlgebra(bgv.NewEvaluator(params, evk))
}

func newAlgebra(eval *bgv.Evaluator) *Algebra {
	return &Algebra{
		Evaluator: eval,
		rotation: he.ColumnRotation{
			Slots:   eval.GetParameters().MaxSlots(),
			Rotator: eval,
		},
	}
}

// Rows returns 2.
func (a Algebra) Rows() int {
	return a.rotation.Rows()
}

// RowSize returns N/2.
func (a Algebra) RowSize() int {
	return a.rotation.RowSize()
}

// Rotate rotates the columns of op0 by k positions to the left.
func (a Algebra) Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error) {
	return a.rotation.Rotate(op0, k, opOut)
}

// Rescale divides op0 by the last modulus of its level and writes the
// result on opOut. The plaintext scale is updated accordingly and removed
// at decoding.
func (a Algebra) Rescale(op0, opOut *rlwe.Ciphertext) (err error) {
	return a.Evaluator.Rescale(op0, opOut)
}

// LevelsPerProduct returns 1.
func (a Algebra) LevelsPerProduct() int {
	return 1
}

// ShallowCopy returns an Algebra sharing the evaluation keys of the receiver.
func (a Algebra) ShallowCopy() he.Algebra {
	return newAlgebra(a.Evaluator.ShallowCopy())
}
