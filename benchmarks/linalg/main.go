// Package main times the encrypted vector algebra for increasing dimensions.
package main

import (
	"encoding/json"
	"flag"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"github.com/tuneinsight/hevec/benchmarks"
	"github.com/tuneinsight/hevec/circuits/linalg"
	"github.com/tuneinsight/hevec/examples"
	"github.com/tuneinsight/hevec/he/hefloat"
	"github.com/tuneinsight/hevec/utils/logger"
	"github.com/tuneinsight/hevec/utils/sampling"
)

var (
	flagShort       = flag.Bool("short", false, "run on the insecure test parameters.")
	flagParamString = flag.String("params", "", "specify the CKKS parameters as a JSON string.")
	flagReps        = flag.Int("reps", 10, "number of runs per operation.")
	flagRows        = flag.Int("rows", 8, "number of rows of the matrix-vector products.")
	flagWorkers     = flag.Int("workers", 4, "number of rows evaluated concurrently.")
	flagSeed        = flag.Uint64("seed", 1, "seed of the plaintext vectors.")
)

var log = logger.New("[bench] ")

// benchmarkAllDimensions times the reductions for every power of two dimension.
func benchmarkAllDimensions(ctx *hefloat.Context, reps, rows, workers int, src *sampling.Source) (results []benchmarks.Summary) {

	slots := ctx.Slots()
	level := ctx.Params.MaxLevel()

	encrypt := func(values []float64) *rlwe.Ciphertext {
		ct, err := ctx.EncryptNew(values)
		if err != nil {
			panic(err)
		}
		return ct
	}

	for dim := 2; dim <= slots; dim <<= 1 {

		dotEval := linalg.NewDotProductEvaluator(ctx.Algebra())
		matEval := linalg.NewMatVecEvaluator(ctx.Algebra(), workers)
		packedEval, err := linalg.NewPackedEvaluator(ctx.Algebra(), dim, workers)
		if err != nil {
			panic(err)
		}

		a := encrypt(src.Floats(dim, 0, 1))
		b := encrypt(src.Floats(dim, 0, 1))

		duplicated, err := linalg.Replicate(src.Floats(dim, 0, 1), packedEval.Layout)
		if err != nil {
			panic(err)
		}
		ctDuplicated, err := linalg.EncryptReplicated[float64](ctx, duplicated, packedEval.Layout)
		if err != nil {
			panic(err)
		}

		matrix := make([]*rlwe.Ciphertext, rows)
		for i := range matrix {
			matrix[i] = encrypt(src.Floats(slots, 0, 1))
		}

		for _, op := range []struct {
			name string
			f    func() error
		}{
			{"DotProductNew", func() (err error) {
				_, err = dotEval.DotProductNew(a, b, dim)
				return
			}},
			{"PackedDotProductsNew", func() (err error) {
				_, err = packedEval.DotProductsNew(matrix[0], ctDuplicated)
				return
			}},
			{"MatVecMulNew", func() (err error) {
				_, err = matEval.MulNew(matrix, b, dim)
				return
			}},
			{"PackedMatVecMulNew", func() (err error) {
				_, err = packedEval.MulNew(matrix, ctDuplicated)
				return
			}},
		} {
			s, err := benchmarks.Measure(op.name, level, reps, op.f)
			if err != nil {
				panic(err)
			}
			log.Printf("dim=%d %s", dim, s)
			results = append(results, s)
		}
	}

	return
}

func main() {

	flag.Parse()

	literal := examples.CKKSParams
	if *flagShort {
		literal = examples.CKKSInsecureParams
	}

	if *flagParamString != "" {
		if err := json.Unmarshal([]byte(*flagParamString), &literal); err != nil {
			panic(err)
		}
	}

	params, err := ckks.NewParametersFromLiteral(literal)
	if err != nil {
		panic(err)
	}

	ctx, err := hefloat.NewContext(params, linalg.Rotations(params.MaxSlots()))
	if err != nil {
		panic(err)
	}

	src, err := sampling.NewSource(*flagSeed, "benchmarks")
	if err != nil {
		panic(err)
	}

	log.Printf("LogN=%d, slots=%d, levels=%d, reps=%d, rows=%d, workers=%d",
		params.LogN(), params.MaxSlots(), params.MaxLevel(), *flagReps, *flagRows, *flagWorkers)

	benchmarkAllDimensions(ctx, *flagReps, *flagRows, *flagWorkers, src)
}
