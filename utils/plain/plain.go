// Package plain implements the cleartext counterparts of the encrypted
// vector algebra, used as references by the tests and the examples.
package plain

import (
	"math"
	"math/bits"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Number is the set of types supported by the generic references.
type Number interface {
	constraints.Integer | constraints.Float
}

// DotProduct returns sum a[i]*b[i] for i in [0, dimension).
// dimension must not exceed len(a) or len(b).
func DotProduct[T Number](a, b []T, dimension int) (sum T) {
	for i := 0; i < dimension; i++ {
		sum += a[i] * b[i]
	}
	return
}

// DotProductMod returns sum a[i]*b[i] mod T for i in [0, dimension),
// without overflow for any modulus.
func DotProductMod(a, b []uint64, dimension int, T uint64) (sum uint64) {
	for i := 0; i < dimension; i++ {
		hi, lo := bits.Mul64(a[i]%T, b[i]%T)
		sum += bits.Rem64(hi, lo, T)
		if sum >= T {
			sum -= T
		}
	}
	return
}

// DotProductFloat returns sum a[i]*b[i] for i in [0, dimension).
func DotProductFloat(a, b []float64, dimension int) float64 {
	return floats.Dot(a[:dimension], b[:dimension])
}

// MatVec returns matrix . vector, restricted to the first dimension columns.
func MatVec(matrix [][]float64, vector []float64, dimension int) (result []float64, err error) {

	if len(matrix) == 0 {
		return []float64{}, nil
	}

	if len(vector) < dimension {
		return nil, errors.Errorf("cannot MatVec: len(vector)=%d < dimension %d", len(vector), dimension)
	}

	data := make([]float64, 0, len(matrix)*dimension)
	for i, row := range matrix {
		if len(row) < dimension {
			return nil, errors.Errorf("cannot MatVec: len(matrix[%d])=%d < dimension %d", i, len(row), dimension)
		}
		data = append(data, row[:dimension]...)
	}

	var y mat.VecDense
	y.MulVec(mat.NewDense(len(matrix), dimension, data), mat.NewVecDense(dimension, vector[:dimension]))

	return y.RawVector().Data, nil
}

// MatVecMod returns matrix . vector mod T, restricted to the first dimension columns.
func MatVecMod(matrix [][]uint64, vector []uint64, dimension int, T uint64) (result []uint64) {
	result = make([]uint64, len(matrix))
	for i, row := range matrix {
		result[i] = DotProductMod(row, vector, dimension, T)
	}
	return
}

// PackedDotProducts returns the dot product of each block of dimension values
// of packed with the first dimension values of vector.
func PackedDotProducts(packed, vector []float64, dimension int) (results []float64) {
	results = make([]float64, len(packed)/dimension)
	for k := range results {
		results[k] = DotProductFloat(packed[k*dimension:], vector, dimension)
	}
	return
}

// PackedDotProductsMod is PackedDotProducts mod T.
func PackedDotProductsMod(packed, vector []uint64, dimension int, T uint64) (results []uint64) {
	results = make([]uint64, len(packed)/dimension)
	for k := range results {
		results[k] = DotProductMod(packed[k*dimension:], vector, dimension, T)
	}
	return
}

// PackedMatVec returns the packed dot products of each row of matrix,
// the j-th block of the i-th row at index i*len(matrix[i])/dimension + j.
func PackedMatVec(matrix [][]float64, vector []float64, dimension int) (results []float64) {
	for _, row := range matrix {
		results = append(results, PackedDotProducts(row, vector, dimension)...)
	}
	return
}

// MaxDeviation returns max |want[i] - have[i]|.
func MaxDeviation(want, have []float64) float64 {
	if len(want) == 0 {
		return 0
	}
	return floats.Distance(want, have, math.Inf(1))
}

// Deviations returns |want[i] - have[i]| for each i.
func Deviations(want, have []float64) (dev []float64) {
	dev = make([]float64, len(want))
	floats.SubTo(dev, want, have)
	for i := range dev {
		dev[i] = math.Abs(dev[i])
	}
	return
}

// WithinTolerance returns true if every deviation is strictly smaller than tol.
func WithinTolerance(want, have []float64, tol float64) bool {
	return MaxDeviation(want, have) < tol
}
