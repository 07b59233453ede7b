// Package he defines the scheme agnostic contracts on which the encrypted vector algebra is written:
// a slot codec, encryption/decryption of slot vectors and the ciphertext algebra
// {multiply, relinearize, rescale, rotate, add}.
package he

import (
	"github.com/tuneinsight/lattigo/v6/core/rlwe"
)

// Scalar is the set of plaintext slot types: modular integers for the
// batch encoding and real numbers for the fixed-point encoding.
type Scalar interface {
	uint64 | float64
}

// Codec maps a vector of scalars on the slots of a plaintext and back.
type Codec[T Scalar] interface {
	// Slots returns the number of slots of a plaintext.
	Slots() int
	// EncodeNew encodes values on a new plaintext at the maximum level.
	// Vectors shorter than Slots() are zero-padded.
	EncodeNew(values []T) (pt *rlwe.Plaintext, err error)
	// Decode decodes pt on values, which must have at least Slots() elements.
	Decode(pt *rlwe.Plaintext, values []T) (err error)
}

// Encrypter encodes and encrypts a vector of scalars.
type Encrypter[T Scalar] interface {
	EncryptNew(values []T) (ct *rlwe.Ciphertext, err error)
}

// Decrypter decrypts and decodes a ciphertext on its full slot vector.
type Decrypter[T Scalar] interface {
	Slots() int
	DecryptNew(ct *rlwe.Ciphertext) (values []T, err error)
}

// Evaluator is the subset of the scheme evaluators used by the reductions.
// The methods have the semantic of their counterparts in the lattigo
// schemes: the New variants allocate their output, Add accepts opOut == op0.
type Evaluator interface {
	MulNew(op0 *rlwe.Ciphertext, op1 rlwe.Operand) (opOut *rlwe.Ciphertext, err error)
	RelinearizeNew(op0 *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error)
	Add(op0 *rlwe.Ciphertext, op1 rlwe.Operand, opOut *rlwe.Ciphertext) (err error)
}

// Algebra is the ciphertext algebra a reduction runs on.
type Algebra interface {
	Evaluator
	RotationStrategy

	// Rescale divides the result of a relinearized product by the last
	// modulus of its level, writing on opOut (which may be op0).
	Rescale(op0, opOut *rlwe.Ciphertext) (err error)

	// LevelsPerProduct returns the number of levels consumed by a
	// multiplication followed by Rescale.
	LevelsPerProduct() int

	// ShallowCopy returns an Algebra sharing the evaluation keys of the
	// receiver but owning its buffers, so that both can be used concurrently.
	ShallowCopy() Algebra
}
