// Package sampling implements reproducible sampling of plaintext test
// vectors from keyed pseudo-random streams.
package sampling

import (
	"encoding/binary"
	"math"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"

	"github.com/tuneinsight/lattigo/v6/utils/sampling"
)

const keySize = 32

// StreamKey derives the key of the named stream from seed.
// Distinct names give independent streams for the same seed.
func StreamKey(seed uint64, name string) []byte {
	hasher := blake3.New()

	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seed)
	hasher.Write(b[:])
	hasher.Write([]byte(name))

	return hasher.Sum(nil)[:keySize]
}

// Source is a deterministic stream of uniform values.
// It is not safe for concurrent use.
type Source struct {
	prng *sampling.KeyedPRNG
	buf  [8]byte
}

// NewSource returns the stream of the given name derived from seed.
func NewSource(seed uint64, name string) (*Source, error) {
	prng, err := sampling.NewKeyedPRNG(StreamKey(seed, name))
	if err != nil {
		return nil, errors.Wrap(err, "cannot NewSource")
	}
	return &Source{prng: prng}, nil
}

// Uint64 returns a uniform value in [0, 2^64).
func (s *Source) Uint64() uint64 {
	if _, err := s.prng.Read(s.buf[:]); err != nil {
		// KeyedPRNG reads from an extendable output function and does not fail.
		panic(err)
	}
	return binary.LittleEndian.Uint64(s.buf[:])
}

// Uint64N returns a uniform value in [0, n) by rejection sampling. n must be positive.
func (s *Source) Uint64N(n uint64) uint64 {
	if n == 0 {
		panic("sampling: Uint64N called with n = 0")
	}

	if n == 1 {
		return 0
	}

	mask := uint64(math.MaxUint64) >> bits.LeadingZeros64(n-1)

	for {
		if v := s.Uint64() & mask; v < n {
			return v
		}
	}
}

// Float64 returns a uniform value in [lo, hi).
func (s *Source) Float64(lo, hi float64) float64 {
	f := float64(s.Uint64()>>11) / (1 << 53)
	return lo + f*(hi-lo)
}

// Floats returns n uniform values in [lo, hi).
func (s *Source) Floats(n int, lo, hi float64) (values []float64) {
	values = make([]float64, n)
	for i := range values {
		values[i] = s.Float64(lo, hi)
	}
	return
}

// Uints returns n uniform values in [0, mod).
func (s *Source) Uints(n int, mod uint64) (values []uint64) {
	values = make([]uint64, n)
	for i := range values {
		values[i] = s.Uint64N(mod)
	}
	return
}

// FloatMatrix returns rows x cols uniform values in [lo, hi).
func (s *Source) FloatMatrix(rows, cols int, lo, hi float64) (m [][]float64) {
	m = make([][]float64, rows)
	for i := range m {
		m[i] = s.Floats(cols, lo, hi)
	}
	return
}

// UintMatrix returns rows x cols uniform values in [0, mod).
func (s *Source) UintMatrix(rows, cols int, mod uint64) (m [][]uint64) {
	m = make([][]uint64, rows)
	for i := range m {
		m[i] = s.Uints(cols, mod)
	}
	return
}
