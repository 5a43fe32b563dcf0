package picker

import (
	"bytes"
	"errors"
	"sort"
	"testing"
)

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func TestCryptoRand_RejectsBiasedValues(t *testing.T) {
	// first word is the maximum uint64, which falls in the biased tail for n=3
	buf := bytes.Repeat([]byte{0xff}, 8)
	buf = append(buf, 0, 0, 0, 0, 0, 0, 0, 5)

	r := NewCryptoRand(bytes.NewReader(buf))
	if got := r.Intn(3); got != 2 {
		t.Errorf("expected 5 mod 3 = 2, got %d", got)
	}
	if fb, _ := r.Fallback(); fb {
		t.Error("expected no fallback")
	}
}

func TestCryptoRand_PowerOfTwoAcceptsAll(t *testing.T) {
	buf := bytes.Repeat([]byte{0xff}, 8)
	r := NewCryptoRand(bytes.NewReader(buf))
	if got := r.Intn(4); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestCryptoRand_FallsBackOnReadError(t *testing.T) {
	r := NewCryptoRand(errReader{})

	for i := 0; i < 50; i++ {
		if v := r.Intn(7); v < 0 || v >= 7 {
			t.Fatalf("value out of range: %d", v)
		}
	}
	fb, err := r.Fallback()
	if !fb {
		t.Error("expected fallback after read error")
	}
	if err == nil {
		t.Error("expected the read error to be kept")
	}
}

func TestCryptoRand_DefaultReader(t *testing.T) {
	r := NewCryptoRand(nil)
	for i := 0; i < 100; i++ {
		if v := r.Intn(10); v < 0 || v >= 10 {
			t.Fatalf("value out of range: %d", v)
		}
	}
	if r.Intn(1) != 0 {
		t.Error("expected Intn(1) to be 0")
	}
}

func TestSeededRand_Deterministic(t *testing.T) {
	a := NewSeededRand(42)
	b := NewSeededRand(42)
	for i := 0; i < 20; i++ {
		if a.Intn(1000) != b.Intn(1000) {
			t.Fatal("expected identical sequences for the same seed")
		}
	}
}

func TestShuffled_IsPermutation(t *testing.T) {
	in := []string{"a", "b", "c", "d", "e"}
	out := Shuffled(in, NewSeededRand(1))

	if len(out) != len(in) {
		t.Fatalf("expected %d items, got %d", len(in), len(out))
	}
	sorted := append([]string{}, out...)
	sort.Strings(sorted)
	for i := range in {
		if sorted[i] != in[i] {
			t.Errorf("expected permutation of input, got %v", out)
			break
		}
	}
	if in[0] != "a" || in[4] != "e" {
		t.Error("input should not be modified")
	}
}

func TestShuffled_Uniform(t *testing.T) {
	rnd := NewSeededRand(7)
	counts := map[string]int{}
	const rounds = 6000
	for i := 0; i < rounds; i++ {
		out := Shuffled([]string{"a", "b", "c"}, rnd)
		counts[out[0]+out[1]+out[2]]++
	}
	if len(counts) != 6 {
		t.Fatalf("expected all 6 permutations, got %d", len(counts))
	}
	for perm, n := range counts {
		if n < 800 || n > 1200 {
			t.Errorf("permutation %s drawn %d times, expected about 1000", perm, n)
		}
	}
}

func TestInsertAtRandom(t *testing.T) {
	rnd := NewSeededRand(3)
	positions := map[int]bool{}
	for i := 0; i < 200; i++ {
		out := InsertAtRandom([]string{"a", "b"}, "x", rnd)
		if len(out) != 3 {
			t.Fatalf("expected 3 items, got %d", len(out))
		}
		for j, v := range out {
			if v == "x" {
				positions[j] = true
			}
		}
	}
	for _, p := range []int{0, 1, 2} {
		if !positions[p] {
			t.Errorf("expected insertion at position %d at least once", p)
		}
	}
}

func TestInsertAtRandom_EmptyPool(t *testing.T) {
	out := InsertAtRandom(nil, "x", NewSeededRand(1))
	if len(out) != 1 || out[0] != "x" {
		t.Errorf("expected [x], got %v", out)
	}
}
