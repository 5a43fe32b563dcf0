package picker

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"math"
	mathrand "math/rand/v2"
	"sync"
)

// Rand yields uniform integers in [0, n). n is always > 0.
type Rand interface {
	Intn(n int) int
}

// CryptoRand draws from a cryptographic byte source with rejection sampling,
// so every value in [0, n) is equally likely.
//
// If the byte source fails, CryptoRand switches to math/rand/v2 for the rest
// of its life. That generator is not suitable for secrets but is uniform
// enough for picking dinner.
type CryptoRand struct {
	mu       sync.Mutex
	reader   io.Reader
	buf      [8]byte
	fallback bool
	lastErr  error
}

// NewCryptoRand returns a CryptoRand reading from reader, or from
// crypto/rand.Reader when reader is nil
func NewCryptoRand(reader io.Reader) *CryptoRand {
	if reader == nil {
		reader = rand.Reader
	}
	return &CryptoRand{reader: reader}
}

// Intn returns a uniform integer in [0, n)
func (c *CryptoRand) Intn(n int) int {
	if n <= 1 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fallback {
		return mathrand.IntN(n)
	}

	bound := uint64(n)
	// 2^64 mod bound; values at or above 2^64-rem would bias the low results
	rem := (math.MaxUint64%bound + 1) % bound
	for {
		if _, err := io.ReadFull(c.reader, c.buf[:]); err != nil {
			c.fallback = true
			c.lastErr = err
			return mathrand.IntN(n)
		}
		v := binary.BigEndian.Uint64(c.buf[:])
		if rem == 0 || v <= math.MaxUint64-rem {
			return int(v % bound)
		}
	}
}

// Fallback reports whether the byte source failed and the weaker generator is in use
func (c *CryptoRand) Fallback() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fallback, c.lastErr
}

// SeededRand is a deterministic generator for tests and reproducible runs
type SeededRand struct {
	mu sync.Mutex
	r  *mathrand.Rand
}

// NewSeededRand returns a PCG generator seeded with seed
func NewSeededRand(seed uint64) *SeededRand {
	return &SeededRand{r: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a uniform integer in [0, n)
func (s *SeededRand) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Shuffled returns a uniformly random permutation of list (Fisher–Yates).
// The input is not modified.
func Shuffled(list []string, rnd Rand) []string {
	out := append([]string{}, list...)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// InsertAtRandom inserts name at a uniformly random position of pool,
// including the end
func InsertAtRandom(pool []string, name string, rnd Rand) []string {
	i := rnd.Intn(len(pool) + 1)
	out := make([]string, 0, len(pool)+1)
	out = append(out, pool[:i]...)
	out = append(out, name)
	return append(out, pool[i:]...)
}
