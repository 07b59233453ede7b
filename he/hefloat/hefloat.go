// Package hefloat instantiates the contracts of package he over the CKKS scheme,
// for encrypted fixed-point arithmetic over the reals.
package hefloat

import (
	"github.com/pkg/errors"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/ckks"

	"github.com/tuneinsight/hevec/he"
)

var (
	_ he.Codec[float64]     = (*Context)(nil)
	_ he.Encrypter[float64] = (*Context)(nil)
	_ he.Decrypter[float64] = (*Context)(nil)
	_ he.Algebra            = (*Algebra)(nil)
)

// Config is a serializable description of a Context: the parameters
// and the rotations for which Galois keys are generated.
type Config struct {
	Parameters ckks.ParametersLiteral
	Rotations  []int
}

// Context holds the parameters, the key material and the
// encoder/encryptor/decryptor/evaluator of the fixed-point encoding.
// Values are encoded on the real part of the N/2 complex slots.
type Context struct {
	Params ckks.Parameters

	sk  *rlwe.SecretKey
	pk  *rlwe.PublicKey
	evk *rlwe.MemEvaluationKeySet

	ecd *ckks.Encoder
	enc *rlwe.Encryptor
	dec *rlwe.Decryptor

	algebra *Algebra
}

// NewContextFromConfig creates the parameters described by cfg and calls NewContext.
func NewContextFromConfig(cfg Config) (*Context, error) {
	params, err := ckks.NewParametersFromLiteral(cfg.Parameters)
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewContextFromConfig")
	}
	return NewContext(params, cfg.Rotations)
}

// NewContext generates a fresh key pair, the relinearization key and one
// Galois key per rotation, which must lie in [1, Slots).
func NewContext(params ckks.Parameters, rotations []int) (*Context, error) {

	slots := params.MaxSlots()

	for _, k := range rotations {
		if k <= 0 || k >= slots {
			return nil, errors.Errorf("cannot NewContext: rotation %d is not in [1, %d)", k, slots)
		}
	}

	kgen := rlwe.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()
	rlk := kgen.GenRelinearizationKeyNew(sk)

	var gks []*rlwe.GaloisKey
	if len(rotations) > 0 {
		gks = kgen.GenGaloisKeysNew(params.GaloisElements(rotations), sk)
	}

	evk := rlwe.NewMemEvaluationKeySet(rlk, gks...)

	return &Context{
		Params:  params,
		sk:      sk,
		pk:      pk,
		evk:     evk,
		ecd:     ckks.NewEncoder(params),
		enc:     rlwe.NewEncryptor(params, pk),
		dec:     rlwe.NewDecryptor(params, sk),
		algebra: NewAlgebra(params, evk),
	}, nil
}

// Slots returns the number of slots of a plaintext, i.e. half the ring degree.
func (ctx Context) Slots() int {
	return ctx.Params.MaxSlots()
}

// Algebra returns the ciphertext algebra of the context.
func (ctx Context) Algebra() he.Algebra {
	return ctx.algebra
}

// EncodeNew encodes values on a new plaintext at the maximum level and default scale.
// values must have at most Slots() elements.
func (ctx Context) EncodeNew(values []float64) (pt *rlwe.Plaintext, err error) {

	slots := ctx.Slots()

	if len(values) > slots {
		return nil, errors.Errorf("cannot EncodeNew: %d values exceed the %d slots", len(values), slots)
	}

	padded := make([]float64, slots)
	copy(padded, values)

	pt = ckks.NewPlaintext(ctx.Params, ctx.Params.MaxLevel())
	if err = ctx.ecd.Encode(padded, pt); err != nil {
		return nil, errors.Wrap(err, "cannot EncodeNew")
	}

	return
}

// Decode decodes the real part of the slots of pt on values.
func (ctx Context) Decode(pt *rlwe.Plaintext, values []float64) (err error) {
	if len(values) < ctx.Slots() {
		return errors.Errorf("cannot Decode: len(values)=%d < %d slots", len(values), ctx.Slots())
	}
	return errors.Wrap(ctx.ecd.Decode(pt, values[:ctx.Slots()]), "cannot Decode")
}

// EncryptNew encodes values and encrypts them under the public key.
func (ctx Context) EncryptNew(values []float64) (ct *rlwe.Ciphertext, err error) {

	var pt *rlwe.Plaintext
	if pt, err = ctx.EncodeNew(values); err != nil {
		return
	}

	if ct, err = ctx.enc.EncryptNew(pt); err != nil {
		return nil, errors.Wrap(err, "cannot EncryptNew")
	}

	return
}

// DecryptNew decrypts ct and decodes its full slot vector.
func (ctx Context) DecryptNew(ct *rlwe.Ciphertext) (values []float64, err error) {
	values = make([]float64, ctx.Slots())
	if err = ctx.Decode(ctx.dec.DecryptNew(ct), values); err != nil {
		return nil, err
	}
	return
}
