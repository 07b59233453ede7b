// Package heint instantiates the contracts of package he over the BGV scheme,
// for encrypted modular arithmetic over the integers with the batch encoding.
package heint

import (
	"github.com/pkg/errors"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/schemes/bgv"

	"github.com/tuneinsight/hevec/he"
)

var (
	_ he.Codec[uint64]     = (*Context)(nil)
	_ he.Encrypter[uint64] = (*Context)(nil)
	_ he.Decrypter[uint64] = (*Context)(nil)
	_ he.Algebra           = (*Algebra)(nil)
)

// Config is a serializable description of a Context: the parameters
// and the rotations for which Galois keys are generated.
type Config struct {
	Parameters bgv.ParametersLiteral
	Rotations  []int
}

// Context holds the parameters, the key material and the
// encoder/encryptor/decryptor/evaluator of the integer encoding.
// It is created once and read-only afterwards. The encoder, encryptor
// and decryptor are not safe for concurrent use; the Algebra can be
// shallow copied for concurrent evaluation.
type Context struct {
	Params bgv.Parameters

	sk  *rlwe.SecretKey
	pk  *rlwe.PublicKey
	evk *rlwe.MemEvaluationKeySet

	ecd *bgv.Encoder
	enc *rlwe.Encryptor
	dec *rlwe.Decryptor

	algebra *Algebra
}

// NewContextFromConfig creates the parameters described by cfg and calls NewContext.
func NewContextFromConfig(cfg Config) (*Context, error) {
	params, err := bgv.NewParametersFromLiteral(cfg.Parameters)
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewContextFromConfig")
	}
	return NewContext(params, cfg.Rotations)
}

// NewContext generates a fresh key pair, the relinearization key and one
// Galois key per rotation, which must lie in [1, Slots/2).
func NewContext(params bgv.Parameters, rotations []int) (*Context, error) {

	rowSize := params.MaxSlots() >> 1

	for _, k := range rotations {
		if k <= 0 || k >= rowSize {
			return nil, errors.Errorf("cannot NewContext: rotation %d is not in [1, %d)", k, rowSize)
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
		ecd:     bgv.NewEncoder(params),
		enc:     rlwe.NewEncryptor(params, pk),
		dec:     rlwe.NewDecryptor(params, sk),
		algebra: NewAlgebra(params, evk),
	}, nil
}

// Slots returns the number of slots of a plaintext, i.e. the ring degree.
func (ctx Context) Slots() int {
	return ctx.Params.MaxSlots()
}

// PlaintextModulus returns the modulus of the slot values.
func (ctx Context) PlaintextModulus() uint64 {
	return ctx.Params.PlaintextModulus()
}

// Algebra returns the ciphertext algebra of the context.
func (ctx Context) Algebra() he.Algebra {
	return ctx.algebra
}

// EncodeNew encodes values on a new plaintext at the maximum level.
// values must have at most Slots() elements, each smaller than the plaintext modulus.
func (ctx Context) EncodeNew(values []uint64) (pt *rlwe.Plaintext, err error) {

	slots := ctx.Slots()

	if len(values) > slots {
		return nil, errors.Errorf("cannot EncodeNew: %d values exceed the %d slots", len(values), slots)
	}

	T := ctx.PlaintextModulus()
	padded := make([]uint64, slots)
	for i, v := range values {
		if v >= T {
			return nil, errors.Errorf("cannot EncodeNew: value %d at index %d is not smaller than the plaintext modulus %d", v, i, T)
		}
		padded[i] = v
	}

	pt = bgv.NewPlaintext(ctx.Params, ctx.Params.MaxLevel())
	if err = ctx.ecd.Encode(padded, pt); err != nil {
		return nil, errors.Wrap(err, "cannot EncodeNew")
	}

	return
}

// Decode decodes pt on values.
func (ctx Context) Decode(pt *rlwe.Plaintext, values []uint64) (err error) {
	if len(values) < ctx.Slots() {
		return errors.Errorf("cannot Decode: len(values)=%d < %d slots", len(values), ctx.Slots())
	}
	return errors.Wrap(ctx.ecd.Decode(pt, values[:ctx.Slots()]), "cannot Decode")
}

// EncryptNew encodes values and encrypts them under the public key.
func (ctx Context) EncryptNew(values []uint64) (ct *rlwe.Ciphertext, err error) {

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
func (ctx Context) DecryptNew(ct *rlwe.Ciphertext) (values []uint64, err error) {
	values = make([]uint64, ctx.Slots())
	if err = ctx.Decode(ctx.dec.DecryptNew(ct), values); err != nil {
		return nil, err
	}
	return
}
