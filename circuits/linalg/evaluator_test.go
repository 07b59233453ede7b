package linalg

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"github.com/tuneinsight/hevec/he"
	"github.com/tuneinsight/hevec/he/hefloat"
	"github.com/tuneinsight/hevec/he/heint"
	"github.com/tuneinsight/hevec/utils/plain"
	"github.com/tuneinsight/hevec/utils/sampling"
)

var (
	// testInsecure* are insecure parameters used for the sole purpose of fast testing.
	testInsecureBGV = bgv.ParametersLiteral{
		LogN:             10,
		LogQ:             []int{50, 50},
		LogP:             []int{60},
		PlaintextModulus: 0x10001,
	}

	testInsecureCKKS = ckks.ParametersLiteral{
		LogN:            10,
		LogQ:            []int{55, 45, 45},
		LogP:            []int{61},
		LogDefaultScale: 45,
	}

	// 256 slots: two blocks of 128.
	testInsecurePacked = ckks.ParametersLiteral{
		LogN:            9,
		LogQ:            []int{55, 45, 45},
		LogP:            []int{61},
		LogDefaultScale: 45,
	}

	// Two levels: two products and no more.
	testInsecureBGVDeep = bgv.ParametersLiteral{
		LogN:             10,
		LogQ:             []int{55, 50, 50},
		LogP:             []int{60},
		PlaintextModulus: 0x10001,
	}

	// A single level: one product and no more.
	testInsecureShallow = ckks.ParametersLiteral{
		LogN:            9,
		LogQ:            []int{55, 45},
		LogP:            []int{61},
		LogDefaultScale: 45,
	}
)

func name(op, scheme string, logN, dimension int) string {
	return fmt.Sprintf("%s/%s/LogN=%d/dim=%d", op, scheme, logN, dimension)
}

func newSource(t *testing.T, stream string) *sampling.Source {
	src, err := sampling.NewSource(0x5eed, stream)
	require.NoError(t, err)
	return src
}

func encryptUints(t *testing.T, ctx *heint.Context, values []uint64) *rlwe.Ciphertext {
	ct, err := ctx.EncryptNew(values)
	require.NoError(t, err)
	return ct
}

func encryptFloats(t *testing.T, ctx *hefloat.Context, values []float64) *rlwe.Ciphertext {
	ct, err := ctx.EncryptNew(values)
	require.NoError(t, err)
	return ct
}

func TestDotProductInteger(t *testing.T) {

	params, err := bgv.NewParametersFromLiteral(testInsecureBGV)
	require.NoError(t, err)

	rowSize := params.MaxSlots() >> 1

	ctx, err := heint.NewContext(params, Rotations(rowSize))
	require.NoError(t, err)

	eval := NewDotProductEvaluator(ctx.Algebra())
	T := ctx.PlaintextModulus()
	logN := params.LogN()

	t.Run(name("DotProductNew", "BGV", logN, 4), func(t *testing.T) {
		a := encryptUints(t, ctx, []uint64{0, 1, 2, 3})
		b := encryptUints(t, ctx, []uint64{4, 5, 6, 7})

		ct, err := eval.DotProductNew(a, b, 4)
		require.NoError(t, err)
		require.Equal(t, 1, ct.Degree())
		require.Equal(t, a.Level()-1, ct.Level())

		have, err := Extract[uint64](ctx, ct, []int{0})
		require.NoError(t, err)
		require.Equal(t, []uint64{38}, have)
	})

	for _, dim := range []int{1, 2, 5, 64, rowSize} {
		t.Run(name("DotProductNew/Random", "BGV", logN, dim), func(t *testing.T) {
			src := newSource(t, fmt.Sprintf("bgv/%d", dim))

			va := src.Uints(dim, T)
			vb := src.Uints(dim, T)

			ct, err := eval.DotProductNew(encryptUints(t, ctx, va), encryptUints(t, ctx, vb), dim)
			require.NoError(t, err)

			have, err := Extract[uint64](ctx, ct, []int{0})
			require.NoError(t, err)
			require.Equal(t, plain.DotProductMod(va, vb, dim, T), have[0])
		})
	}

	t.Run(name("DotProductNew/MirroredRow", "BGV", logN, 16), func(t *testing.T) {
		src := newSource(t, "bgv/mirrored")
		dim := 16

		va := make([]uint64, 2*rowSize)
		vb := make([]uint64, 2*rowSize)
		copy(va, src.Uints(dim, T))
		copy(vb, src.Uints(dim, T))
		copy(va[rowSize:], src.Uints(dim, T))
		copy(vb[rowSize:], src.Uints(dim, T))

		ct, err := eval.DotProductNew(encryptUints(t, ctx, va), encryptUints(t, ctx, vb), dim)
		require.NoError(t, err)

		have, err := Extract[uint64](ctx, ct, []int{0, rowSize})
		require.NoError(t, err)
		require.Equal(t, plain.DotProductMod(va, vb, dim, T), have[0])
		require.Equal(t, plain.DotProductMod(va[rowSize:], vb[rowSize:], dim, T), have[1])
	})

	t.Run(name("DotProductNew/IdempotentDecode", "BGV", logN, 8), func(t *testing.T) {
		src := newSource(t, "bgv/idempotent")
		ct, err := eval.DotProductNew(encryptUints(t, ctx, src.Uints(8, T)), encryptUints(t, ctx, src.Uints(8, T)), 8)
		require.NoError(t, err)

		first, err := ctx.DecryptNew(ct)
		require.NoError(t, err)
		second, err := ctx.DecryptNew(ct)
		require.NoError(t, err)
		require.True(t, cmp.Equal(first, second), cmp.Diff(first, second))
	})

	t.Run(name("DotProductNew/InputsUnchanged", "BGV", logN, 4), func(t *testing.T) {
		a := encryptUints(t, ctx, []uint64{1, 2, 3, 4})
		b := encryptUints(t, ctx, []uint64{1, 1, 1, 1})
		aCopy, bCopy := a.CopyNew(), b.CopyNew()

		_, err := eval.DotProductNew(a, b, 4)
		require.NoError(t, err)
		require.True(t, a.Equal(aCopy))
		require.True(t, b.Equal(bCopy))
	})

	t.Run(name("DotProductNew/Preconditions", "BGV", logN, 0), func(t *testing.T) {
		a := encryptUints(t, ctx, []uint64{1})

		for _, dim := range []int{0, -4, rowSize + 1} {
			_, err := eval.DotProductNew(a, a, dim)
			require.ErrorIs(t, err, ErrLayout)
		}

		_, err := eval.DotProductNew(a, nil, 1)
		require.ErrorIs(t, err, ErrLayout)

		deg2, err := ctx.Algebra().MulNew(a, a)
		require.NoError(t, err)
		_, err = eval.DotProductNew(deg2, a, 1)
		require.ErrorIs(t, err, ErrLayout)

		require.ErrorIs(t, eval.InnerSum(deg2, 1, deg2.CopyNew()), ErrLayout)
	})

	t.Run(name("MatVecEvaluator/MulNew", "BGV", logN, 32), func(t *testing.T) {
		src := newSource(t, "bgv/matvec")
		dim := 32

		matrix := src.UintMatrix(5, dim, T)
		vector := src.Uints(dim, T)

		cts := make([]*rlwe.Ciphertext, len(matrix))
		for i := range matrix {
			cts[i] = encryptUints(t, ctx, matrix[i])
		}

		res, err := NewMatVecEvaluator(ctx.Algebra(), 3).MulNew(cts, encryptUints(t, ctx, vector), dim)
		require.NoError(t, err)
		require.Len(t, res, len(matrix))

		have, err := ExtractEach[uint64](ctx, res, 0)
		require.NoError(t, err)
		require.Equal(t, plain.MatVecMod(matrix, vector, dim, T), have)
	})

	t.Run(name("PackedEvaluator/DotProductsNew", "BGV", logN, 128), func(t *testing.T) {
		src := newSource(t, "bgv/packed")

		peval, err := NewPackedEvaluator(ctx.Algebra(), 128, 1)
		require.NoError(t, err)
		layout := peval.Layout
		require.Equal(t, 8, layout.VecsPerRow())

		packed := src.Uints(layout.Slots, T)
		vector := src.Uints(layout.Dimension, T)
		duplicated, err := Replicate(vector, layout)
		require.NoError(t, err)

		ct, err := peval.DotProductsNew(encryptUints(t, ctx, packed), encryptUints(t, ctx, duplicated))
		require.NoError(t, err)

		have, err := ExtractPacked[uint64](ctx, ct, layout)
		require.NoError(t, err)
		require.Equal(t, plain.PackedDotProductsMod(packed, vector, layout.Dimension, T), have)
	})
}

func TestDotProductFloat(t *testing.T) {

	params, err := ckks.NewParametersFromLiteral(testInsecureCKKS)
	require.NoError(t, err)

	slots := params.MaxSlots()

	ctx, err := hefloat.NewContext(params, Rotations(slots))
	require.NoError(t, err)

	eval := NewDotProductEvaluator(ctx.Algebra())
	logN := params.LogN()

	approx := cmpopts.EquateApprox(0, 1e-9)

	for _, dim := range []int{1, 3, 4, 100, slots} {
		t.Run(name("DotProductNew/Random", "CKKS", logN, dim), func(t *testing.T) {
			src := newSource(t, fmt.Sprintf("ckks/%d", dim))

			va := src.Floats(dim, -1, 1)
			vb := src.Floats(dim, -1, 1)

			a := encryptFloats(t, ctx, va)
			ct, err := eval.DotProductNew(a, encryptFloats(t, ctx, vb), dim)
			require.NoError(t, err)
			require.Equal(t, a.Level()-eval.LevelsPerProduct(), ct.Level())

			have, err := Extract[float64](ctx, ct, []int{0})
			require.NoError(t, err)
			require.InDelta(t, plain.DotProductFloat(va, vb, dim), have[0], 1e-3)
		})
	}

	t.Run(name("DotProductNew/IdempotentDecode", "CKKS", logN, 16), func(t *testing.T) {
		src := newSource(t, "ckks/idempotent")
		ct, err := eval.DotProductNew(encryptFloats(t, ctx, src.Floats(16, -1, 1)), encryptFloats(t, ctx, src.Floats(16, -1, 1)), 16)
		require.NoError(t, err)

		first, err := ctx.DecryptNew(ct)
		require.NoError(t, err)
		second, err := ctx.DecryptNew(ct)
		require.NoError(t, err)
		require.True(t, cmp.Equal(first, second, approx), cmp.Diff(first, second, approx))
	})

	t.Run(name("MatVecEvaluator/RowIndependence", "CKKS", logN, 64), func(t *testing.T) {
		src := newSource(t, "ckks/matvec")
		dim := 64

		matrix := src.FloatMatrix(6, dim, -1, 1)
		vector := src.Floats(dim, -1, 1)

		cts := make([]*rlwe.Ciphertext, len(matrix))
		for i := range matrix {
			cts[i] = encryptFloats(t, ctx, matrix[i])
		}
		ctVector := encryptFloats(t, ctx, vector)

		res, err := NewMatVecEvaluator(ctx.Algebra(), 4).MulNew(cts, ctVector, dim)
		require.NoError(t, err)

		have, err := ExtractEach[float64](ctx, res, 0)
		require.NoError(t, err)

		want, err := plain.MatVec(matrix, vector, dim)
		require.NoError(t, err)
		require.Less(t, plain.MaxDeviation(want, have), 1e-3)

		// reversing the rows reverses the results
		reversed := make([]*rlwe.Ciphertext, len(cts))
		for i := range cts {
			reversed[len(cts)-1-i] = cts[i]
		}

		res, err = NewMatVecEvaluator(ctx.Algebra(), 1).MulNew(reversed, ctVector, dim)
		require.NoError(t, err)

		haveReversed, err := ExtractEach[float64](ctx, res, 0)
		require.NoError(t, err)

		for i := range have {
			require.InDelta(t, have[i], haveReversed[len(have)-1-i], 1e-9)
		}
	})

	t.Run(name("MatVecEvaluator/Preconditions", "CKKS", logN, 4), func(t *testing.T) {
		meval := NewMatVecEvaluator(ctx.Algebra(), 2)
		v := encryptFloats(t, ctx, []float64{1})

		res, err := meval.MulNew(nil, v, 4)
		require.NoError(t, err)
		require.Empty(t, res)

		_, err = meval.MulNew([]*rlwe.Ciphertext{v, nil}, v, 4)
		require.ErrorIs(t, err, ErrLayout)

		_, err = meval.MulNew([]*rlwe.Ciphertext{v}, v, slots+1)
		require.ErrorIs(t, err, ErrLayout)
	})

	t.Run(name("Extract/Offsets", "CKKS", logN, 0), func(t *testing.T) {
		ct := encryptFloats(t, ctx, []float64{1, 2, 3})

		_, err := Extract[float64](ctx, ct, []int{slots})
		require.ErrorIs(t, err, ErrLayout)
		_, err = Extract[float64](ctx, ct, []int{-1})
		require.ErrorIs(t, err, ErrLayout)

		have, err := Extract[float64](ctx, ct, []int{2, 0})
		require.NoError(t, err)
		require.InDelta(t, 3, have[0], 1e-6)
		require.InDelta(t, 1, have[1], 1e-6)
	})
}

func TestPackedFloat(t *testing.T) {

	params, err := ckks.NewParametersFromLiteral(testInsecurePacked)
	require.NoError(t, err)

	dim := 128

	ctx, err := hefloat.NewContext(params, Rotations(dim))
	require.NoError(t, err)

	peval, err := NewPackedEvaluator(ctx.Algebra(), dim, 2)
	require.NoError(t, err)

	layout := peval.Layout
	require.Equal(t, 2, layout.VecsPerRow())

	logN := params.LogN()
	tolerance := 0.05

	t.Run(name("PackedEvaluator/Equivalence", "CKKS", logN, dim), func(t *testing.T) {
		src := newSource(t, "packed/equivalence")

		blocks := src.FloatMatrix(layout.VecsPerRow(), dim, -1e3, 1e3)
		vector := src.Floats(dim, -1e3, 1e3)

		packed, err := Pack(blocks, layout)
		require.NoError(t, err)
		duplicated, err := Replicate(vector, layout)
		require.NoError(t, err)
		require.NoError(t, CheckReplicated(duplicated, layout))

		ctVector := encryptFloats(t, ctx, vector)

		ctDuplicated, err := EncryptReplicated[float64](ctx, duplicated, layout)
		require.NoError(t, err)

		ct, err := peval.DotProductsNew(encryptFloats(t, ctx, packed), ctDuplicated)
		require.NoError(t, err)

		have, err := ExtractPacked[float64](ctx, ct, layout)
		require.NoError(t, err)

		// one independent reduction per block
		unpacked := make([]float64, len(blocks))
		for k := range blocks {
			ct, err := peval.DotProductNew(encryptFloats(t, ctx, blocks[k]), ctVector, dim)
			require.NoError(t, err)
			v, err := Extract[float64](ctx, ct, []int{0})
			require.NoError(t, err)
			unpacked[k] = v[0]
		}

		want := plain.PackedDotProducts(packed, vector, dim)

		require.Less(t, plain.MaxDeviation(want, have), tolerance)
		require.Less(t, plain.MaxDeviation(unpacked, have), tolerance)
	})

	t.Run(name("PackedEvaluator/MulNew", "CKKS", logN, dim), func(t *testing.T) {
		src := newSource(t, "packed/matrix")

		matrix := src.FloatMatrix(5, layout.Slots, -1e3, 1e3)
		vector := src.Floats(dim, -1e3, 1e3)

		duplicated, err := Replicate(vector, layout)
		require.NoError(t, err)

		cts := make([]*rlwe.Ciphertext, len(matrix))
		for i := range matrix {
			cts[i] = encryptFloats(t, ctx, matrix[i])
		}

		res, err := peval.MulNew(cts, encryptFloats(t, ctx, duplicated))
		require.NoError(t, err)

		have, err := ExtractPackedMatrix[float64](ctx, res, layout)
		require.NoError(t, err)
		require.Len(t, have, len(matrix)*layout.VecsPerRow())

		require.Less(t, plain.MaxDeviation(plain.PackedMatVec(matrix, duplicated, dim), have), tolerance)
	})

	t.Run(name("EncryptReplicated", "CKKS", logN, dim), func(t *testing.T) {
		src := newSource(t, "packed/replicated")

		duplicated, err := Replicate(src.Floats(dim, -1, 1), layout)
		require.NoError(t, err)

		ct, err := EncryptReplicated[float64](ctx, duplicated, layout)
		require.NoError(t, err)

		have, err := ctx.DecryptNew(ct)
		require.NoError(t, err)
		require.Less(t, plain.MaxDeviation(duplicated, have), 1e-6)

		// the second block no longer replicates the first one
		duplicated[dim+1] += 1
		_, err = EncryptReplicated[float64](ctx, duplicated, layout)
		require.ErrorIs(t, err, ErrLayout)

		_, err = EncryptReplicated[float64](ctx, duplicated[:dim], layout)
		require.ErrorIs(t, err, ErrLayout)
	})

	t.Run(name("NewPackedEvaluator/Invalid", "CKKS", logN, 96), func(t *testing.T) {
		_, err := NewPackedEvaluator(ctx.Algebra(), 96, 1)
		require.ErrorIs(t, err, ErrLayout)
	})
}

func TestDepthExhausted(t *testing.T) {

	t.Run("BGV", func(t *testing.T) {
		params, err := bgv.NewParametersFromLiteral(testInsecureBGVDeep)
		require.NoError(t, err)
		require.Equal(t, 2, params.MaxLevel())

		ctx, err := heint.NewContext(params, Rotations(4))
		require.NoError(t, err)

		eval := NewDotProductEvaluator(ctx.Algebra())

		// each square consumes one level: 3 -> 9 -> 81, then no level is left
		ct := encryptUints(t, ctx, []uint64{3})
		for _, want := range []uint64{9, 81} {
			level := ct.Level()

			ct, err = eval.DotProductNew(ct, ct, 1)
			require.NoError(t, err)
			require.Equal(t, level-1, ct.Level())

			have, err := Extract[uint64](ctx, ct, []int{0})
			require.NoError(t, err)
			require.Equal(t, []uint64{want}, have)
		}

		require.Equal(t, 0, ct.Level())

		_, err = eval.DotProductNew(ct, ct, 1)
		require.ErrorIs(t, err, ErrDepthExhausted)

		a := encryptUints(t, ctx, []uint64{1, 2, 3, 4})
		_, err = NewMatVecEvaluator(ctx.Algebra(), 2).MulNew([]*rlwe.Ciphertext{a, ct}, a, 4)
		require.ErrorIs(t, err, ErrDepthExhausted)
	})

	t.Run("CKKS", func(t *testing.T) {
		params, err := ckks.NewParametersFromLiteral(testInsecureShallow)
		require.NoError(t, err)

		ctx, err := hefloat.NewContext(params, Rotations(4))
		require.NoError(t, err)

		eval := NewDotProductEvaluator(ctx.Algebra())

		a := encryptFloats(t, ctx, []float64{1, 2, 3, 4})

		ct, err := eval.DotProductNew(a, a, 4)
		require.NoError(t, err)
		require.Equal(t, 0, ct.Level())

		have, err := Extract[float64](ctx, ct, []int{0})
		require.NoError(t, err)
		require.InDelta(t, 30, have[0], 1e-3)

		_, err = eval.DotProductNew(ct, ct, 4)
		require.ErrorIs(t, err, ErrDepthExhausted)

		_, err = NewMatVecEvaluator(ctx.Algebra(), 2).MulNew([]*rlwe.Ciphertext{a, ct}, a, 4)
		require.ErrorIs(t, err, ErrDepthExhausted)
	})
}

var errRescale = errors.New("rescale failure")

// failingRescale is an algebra whose Rescale always fails.
type failingRescale struct {
	he.Algebra
}

func (failingRescale) Rescale(op0, opOut *rlwe.Ciphertext) error {
	return errRescale
}

func TestRescaleError(t *testing.T) {

	params, err := bgv.NewParametersFromLiteral(testInsecureBGV)
	require.NoError(t, err)

	ctx, err := heint.NewContext(params, Rotations(4))
	require.NoError(t, err)

	eval := NewDotProductEvaluator(failingRescale{ctx.Algebra()})

	a := encryptUints(t, ctx, []uint64{1, 2, 3, 4})

	_, err = eval.DotProductNew(a, a, 4)
	require.ErrorIs(t, err, errRescale)
	require.NotErrorIs(t, err, ErrDepthExhausted)
}
