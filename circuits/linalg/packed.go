package linalg

import (
	"github.com/pkg/errors"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/tuneinsight/hevec/he"
)

// PackedLayout describes a slot vector made of consecutive blocks of
// Dimension slots, each holding an independent vector.
type PackedLayout struct {
	// Dimension is the length of a block.
	Dimension int
	// Slots is the total number of slots.
	Slots     int
	// RowSize is the number of slots of a rotation row.
	RowSize   int
}

// NewPackedLayout returns the layout of blocks of dimension slots over the
// slots of rot. The rotate-and-sum reduction stays within a block only if
// dimension is a power of two dividing the row size, which is checked here.
func NewPackedLayout(rot he.RotationStrategy, dimension int) (layout PackedLayout, err error) {

	rowSize := rot.RowSize()

	if err = checkDimension(dimension, rowSize); err != nil {
		return layout, errors.WithMessage(err, "cannot NewPackedLayout")
	}

	if !isPow2(dimension) {
		return layout, errors.Wrapf(ErrLayout, "cannot NewPackedLayout: dimension %d is not a power of two", dimension)
	}

	if rowSize%dimension != 0 {
		return layout, errors.Wrapf(ErrLayout, "cannot NewPackedLayout: dimension %d does not divide the row size %d", dimension, rowSize)
	}

	return PackedLayout{
		Dimension: dimension,
		Slots:     he.Slots(rot),
		RowSize:   rowSize,
	}, nil
}

// VecsPerRow returns the number of blocks of a slot vector.
func (l PackedLayout) VecsPerRow() int {
	return l.Slots / l.Dimension
}

// Offsets returns the slot holding the result of each block after a
// packed reduction, i.e. k*Dimension for k in [0, VecsPerRow()).
func (l PackedLayout) Offsets() (offsets []int) {
	offsets = make([]int, l.VecsPerRow())
	for k := range offsets {
		offsets[k] = k * l.Dimension
	}
	return
}

// Replicate returns a slot vector holding VecsPerRow() copies of vector.
func Replicate[T he.Scalar](vector []T, layout PackedLayout) (values []T, err error) {

	if len(vector) != layout.Dimension {
		return nil, errors.Wrapf(ErrLayout, "cannot Replicate: len(vector)=%d != dimension %d", len(vector), layout.Dimension)
	}

	values = make([]T, layout.Slots)
	for i := 0; i < layout.Slots; i += layout.Dimension {
		copy(values[i:], vector)
	}

	return
}

// CheckReplicated returns ErrLayout if values is not a slot vector made of
// VecsPerRow() copies of its first block.
func CheckReplicated[T he.Scalar](values []T, layout PackedLayout) error {

	if len(values) != layout.Slots {
		return errors.Wrapf(ErrLayout, "replicated vector has %d values instead of %d", len(values), layout.Slots)
	}

	for i := layout.Dimension; i < len(values); i++ {
		if values[i] != values[i%layout.Dimension] {
			return errors.Wrapf(ErrLayout, "replicated vector differs from its first block at slot %d", i)
		}
	}

	return nil
}

// EncryptReplicated checks that values is a replicated slot vector, see
// CheckReplicated, and encrypts it. A ciphertext produced this way is a valid
// duplicated operand of PackedEvaluator.
func EncryptReplicated[T he.Scalar](enc he.Encrypter[T], values []T, layout PackedLayout) (ct *rlwe.Ciphertext, err error) {

	if err = CheckReplicated(values, layout); err != nil {
		return nil, errors.WithMessage(err, "cannot EncryptReplicated")
	}

	if ct, err = enc.EncryptNew(values); err != nil {
		return nil, errors.Wrap(err, "cannot EncryptReplicated")
	}

	return
}

// Pack concatenates at most VecsPerRow() vectors of Dimension values on a
// slot vector. Missing blocks are zero.
func Pack[T he.Scalar](vectors [][]T, layout PackedLayout) (values []T, err error) {

	if len(vectors) > layout.VecsPerRow() {
		return nil, errors.Wrapf(ErrLayout, "cannot Pack: %d vectors exceed the %d blocks", len(vectors), layout.VecsPerRow())
	}

	values = make([]T, layout.Slots)
	for k, v := range vectors {
		if len(v) != layout.Dimension {
			return nil, errors.Wrapf(ErrLayout, "cannot Pack: len(vectors[%d])=%d != dimension %d", k, len(v), layout.Dimension)
		}
		copy(values[k*layout.Dimension:], v)
	}

	return
}

// PackedEvaluator evaluates VecsPerRow() dot products per ciphertext: a
// packed row of blocks against a replicated vector.
type PackedEvaluator struct {
	*MatVecEvaluator
	Layout PackedLayout
}

// NewPackedEvaluator instantiates a new PackedEvaluator for blocks of dimension slots.
// The algebra must hold the Galois keys for Rotations(dimension).
func NewPackedEvaluator(alg he.Algebra, dimension, workers int) (*PackedEvaluator, error) {

	layout, err := NewPackedLayout(alg, dimension)
	if err != nil {
		return nil, err
	}

	return &PackedEvaluator{
		MatVecEvaluator: NewMatVecEvaluator(alg, workers),
		Layout:          layout,
	}, nil
}

// DotProductsNew returns a new ciphertext whose slot k*Dimension holds the dot
// product of the k-th block of packedRow with the k-th block of duplicated.
// duplicated must replicate a single vector. The slots of a ciphertext
// cannot be checked, so it should be built with EncryptReplicated.
//
// Rotations by less than Dimension move the slots of a block over the next
// one, but slot k*Dimension only ever accumulates slots of its own block.
func (eval PackedEvaluator) DotProductsNew(packedRow, duplicated *rlwe.Ciphertext) (opOut *rlwe.Ciphertext, err error) {
	if opOut, err = eval.DotProductNew(packedRow, duplicated, eval.Layout.Dimension); err != nil {
		return nil, errors.WithMessage(err, "cannot DotProductsNew")
	}
	return
}

// MulNew returns DotProductsNew(packedMatrix[i], duplicated) for each packed row.
func (eval PackedEvaluator) MulNew(packedMatrix []*rlwe.Ciphertext, duplicated *rlwe.Ciphertext) (opOut []*rlwe.Ciphertext, err error) {
	return eval.MatVecEvaluator.MulNew(packedMatrix, duplicated, eval.Layout.Dimension)
}
