package linalg

import (
	"github.com/pkg/errors"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"

	"github.com/tuneinsight/hevec/he"
)

// Extract decrypts and decodes ct once and returns the values at the given slots.
// Offsets are checked before decryption.
func Extract[T he.Scalar](dec he.Decrypter[T], ct *rlwe.Ciphertext, offsets []int) (values []T, err error) {

	slots := dec.Slots()
	for _, j := range offsets {
		if j < 0 || j >= slots {
			return nil, errors.Wrapf(ErrLayout, "cannot Extract: offset %d is not in [0, %d)", j, slots)
		}
	}

	var decoded []T
	if decoded, err = dec.DecryptNew(ct); err != nil {
		return nil, errors.WithMessage(err, "cannot Extract")
	}

	values = make([]T, len(offsets))
	for i, j := range offsets {
		values[i] = decoded[j]
	}

	return
}

// ExtractPacked returns the VecsPerRow() results of a packed reduction.
func ExtractPacked[T he.Scalar](dec he.Decrypter[T], ct *rlwe.Ciphertext, layout PackedLayout) ([]T, error) {
	return Extract(dec, ct, layout.Offsets())
}

// ExtractPackedMatrix returns the results of a packed matrix-vector product,
// the j-th block of the i-th row at index i*VecsPerRow() + j.
func ExtractPackedMatrix[T he.Scalar](dec he.Decrypter[T], cts []*rlwe.Ciphertext, layout PackedLayout) (values []T, err error) {

	values = make([]T, 0, len(cts)*layout.VecsPerRow())

	for i, ct := range cts {

		var row []T
		if row, err = ExtractPacked(dec, ct, layout); err != nil {
			return nil, errors.WithMessagef(err, "row %d", i)
		}

		values = append(values, row...)
	}

	return
}

// ExtractEach returns the value at slot offset of each ciphertext,
// e.g. slot 0 of the rows of a matrix-vector product.
func ExtractEach[T he.Scalar](dec he.Decrypter[T], cts []*rlwe.Ciphertext, offset int) (values []T, err error) {

	values = make([]T, len(cts))

	for i, ct := range cts {

		var v []T
		if v, err = Extract(dec, ct, []int{offset}); err != nil {
			return nil, errors.WithMessagef(err, "row %d", i)
		}

		values[i] = v[0]
	}

	return
}
