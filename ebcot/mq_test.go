package ebcot

import (
	"math/rand"
	"testing"
)

// TestMQRoundTripFixedPatterns encodes fixed bit patterns and checks that
// the decoder reproduces them exactly.
func TestMQRoundTripFixedPatterns(t *testing.T) {
	tests := []struct {
		name string
		ctx  int
		bits []int
	}{
		{"all zeros", 0, []int{0, 0, 0, 0, 0, 0, 0, 0}},
		{"all ones", 0, []int{1, 1, 1, 1, 1, 1, 1, 1}},
		{"alternating", 3, []int{0, 1, 0, 1, 0, 1, 0, 1, 0, 1}},
		{"uniform context", ctxUni, []int{1, 0, 1, 0, 1, 1, 0, 0, 1}},
		{"aggregation context", ctxAgg, []int{0, 0, 1, 0, 0, 0, 1, 1}},
		{"single bit", 9, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := NewMQEncoder()
			for _, b := range tt.bits {
				enc.Encode(tt.ctx, b)
			}
			data := enc.Flush()

			dec := NewMQDecoder(data)
			for i, want := range tt.bits {
				if got := dec.DecodeBit(tt.ctx); got != want {
					t.Fatalf("bit %d: got %d, want %d", i, got, want)
				}
			}
		})
	}
}

// TestMQRoundTripRandom drives all 19 contexts with pseudo-random bits.
// Encoder and decoder context states must evolve in lockstep for the
// decoded sequence to match.
func TestMQRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 10; trial++ {
		n := 50 + rng.Intn(500)
		ctxs := make([]int, n)
		bits := make([]int, n)
		for i := range bits {
			ctxs[i] = rng.Intn(numContexts)
			bits[i] = rng.Intn(2)
		}

		enc := NewMQEncoder()
		for i := range bits {
			enc.Encode(ctxs[i], bits[i])
		}
		data := enc.Flush()

		dec := NewMQDecoder(data)
		for i := range bits {
			if got := dec.DecodeBit(ctxs[i]); got != bits[i] {
				t.Fatalf("trial %d, bit %d (ctx %d): got %d, want %d",
					trial, i, ctxs[i], got, bits[i])
			}
		}
	}
}

// TestMQRoundTripBiased exercises long runs of the most probable symbol,
// which stress the renormalization and byte stuffing paths.
func TestMQRoundTripBiased(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	bits := make([]int, 2000)
	for i := range bits {
		if rng.Intn(50) == 0 {
			bits[i] = 1
		}
	}

	enc := NewMQEncoder()
	for _, b := range bits {
		enc.Encode(0, b)
	}
	data := enc.Flush()

	dec := NewMQDecoder(data)
	for i, want := range bits {
		if got := dec.DecodeBit(0); got != want {
			t.Fatalf("bit %d: got %d, want %d", i, got, want)
		}
	}
}

func TestMQDecoderInvalidContext(t *testing.T) {
	dec := NewMQDecoder([]byte{0x00, 0x00})
	if got := dec.DecodeBit(-1); got != 0 {
		t.Errorf("DecodeBit(-1) = %d, want 0", got)
	}
	if got := dec.DecodeBit(numContexts); got != 0 {
		t.Errorf("DecodeBit(%d) = %d, want 0", numContexts, got)
	}
}

// TestMQResetContexts checks the non-default initial states required by
// the Tier-1 passes.
func TestMQResetContexts(t *testing.T) {
	dec := NewMQDecoder(nil)
	checks := []struct {
		ctx   int
		state int
	}{
		{0, 4},
		{ctxAgg, 3},
		{ctxUni, 46},
		{5, 0},
	}
	for _, c := range checks {
		if got := dec.contexts[c.ctx].index; got != c.state {
			t.Errorf("context %d: state %d, want %d", c.ctx, got, c.state)
		}
		if mps := dec.contexts[c.ctx].mps; mps != 0 {
			t.Errorf("context %d: mps %d, want 0", c.ctx, mps)
		}
	}
}

func TestMQSetContext(t *testing.T) {
	dec := NewMQDecoder(nil)
	dec.SetContext(7, 21, 1)
	if dec.contexts[7].index != 21 || dec.contexts[7].mps != 1 {
		t.Errorf("SetContext(7, 21, 1): got state %d mps %d",
			dec.contexts[7].index, dec.contexts[7].mps)
	}

	// Out-of-range arguments are ignored.
	dec.SetContext(99, 21, 1)
	dec.SetContext(7, 99, 0)
	if dec.contexts[7].index != 21 {
		t.Errorf("out-of-range SetContext modified state: %d", dec.contexts[7].index)
	}
}

// TestMQReset checks that Reset restores a decoder to the same results as
// a fresh one.
func TestMQReset(t *testing.T) {
	enc := NewMQEncoder()
	for i := 0; i < 40; i++ {
		enc.Encode(2, i%3%2)
	}
	data := enc.Flush()

	fresh := NewMQDecoder(data)
	var want []int
	for i := 0; i < 40; i++ {
		want = append(want, fresh.DecodeBit(2))
	}

	reused := NewMQDecoder([]byte{0xAB, 0xCD})
	reused.DecodeBit(0)
	reused.Reset(data)
	for i, w := range want {
		if got := reused.DecodeBit(2); got != w {
			t.Fatalf("after Reset, bit %d: got %d, want %d", i, got, w)
		}
	}
}
