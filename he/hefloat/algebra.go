package hefloat

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"github.com/tuneinsight/hevec/he"
)

// Algebra is the CKKS ciphertext algebra. Products are relinearized and
// rescaled, and a rotation is a cyclic shift of the N/2 slots.
type Algebra struct {
	*ckks.Evaluator
	rotation he.CyclicRotation
}

// NewAlgebra creates a new Algebra from the parameters and the evaluation keys.
func NewAlgebra(params ckks.Parameters, evk rlwe.EvaluationKeySet) *Algebra {
	return newAlgebra(ckks.NewEvaluator(params, evk))
}

func newAlgebra(eval *ckks.Evaluator) *Algebra {
	return &Algebra{
		Evaluator: eval,
		rotation: he.CyclicRotation{
			Slots:   eval.GetParameters().MaxSlots(),
			Rotator: eval,
		},
	}
}

// Rows returns 1.
func (a Algebra) Rows() int {
	return a.rotation.Rows()
}

// RowSize returns N/2.
func (a Algebra) RowSize() int {
	return a.rotation.RowSize()
}

// Rotate rotates op0 by k positions to the left.
func (a Algebra) Rotate(op0 *rlwe.Ciphertext, k int, opOut *rlwe.Ciphertext) (err error) {
	return a.rotation.Rotate(op0, k, opOut)
}

// Rescale divides op0 by the last prime(s) of its modulus chain and writes the result on opOut.
func (a Algebra) Rescale(op0, opOut *rlwe.Ciphertext) (err error) {
	return a.Evaluator.Rescale(op0, opOut)
}

// LevelsPerProduct returns the number of levels consumed by a rescaling.
func (a Algebra) LevelsPerProduct() int {
	return a.Evaluator.GetParameters().LevelsConsumedPerRescaling()
}

// ShallowCopy returns an Algebra sharing the evaluation keys of the receiver.
func (a Algebra) ShallowCopy() he.Algebra {
	return newAlgebra(a.Evaluator.ShallowCopy())
}
