package ebcot

// EBCOT Tier-1 encoder for a single LL-subband codeblock.
//
// The encoder mirrors the decoder pass for pass: same context tables, same
// stripe scanning order, same run-mode decision. It produces the
// cleanup-first pass sequence the decoder expects, together with the pass
// count and starting bitplane the caller must hand back to
// DecodeLLCodeblock.

import "fmt"

// EncodedCodeblock is the result of encoding one codeblock.
type EncodedCodeblock struct {
	Width, Height int

	// Data is the MQ-coded bitstream for all passes, flushed once.
	Data []byte

	// NumPasses and StartBitplane parameterize the matching decode.
	NumPasses     int
	StartBitplane int
}

// t1Encoder encodes one codeblock's passes into an MQ bitstream.
type t1Encoder struct {
	t1State
	mq  *MQEncoder
	mag []int32 // absolute coefficient magnitudes
}

// EncodeLLCodeblock encodes the signed coefficients of one LL-subband
// codeblock, indexed by y*width+x. All bitplanes from the most significant
// magnitude bit down to zero are coded.
func EncodeLLCodeblock(coeffs []int32, width, height int) (*EncodedCodeblock, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if len(coeffs) != width*height {
		return nil, fmt.Errorf("%w: %d coefficients for %dx%d", ErrInvalidDimensions, len(coeffs), width, height)
	}

	e := &t1Encoder{
		t1State: newT1State(width, height),
		mq:      NewMQEncoder(),
		mag:     make([]int32, width*height),
	}

	maxMag := int32(0)
	for i, v := range coeffs {
		if v < 0 {
			e.mag[i] = -v
			e.sign[i] = 1
		} else {
			e.mag[i] = v
		}
		if e.mag[i] > maxMag {
			maxMag = e.mag[i]
		}
	}

	numBitplanes := 0
	for tmp := maxMag; tmp > 0; tmp >>= 1 {
		numBitplanes++
	}

	// An all-zero block still codes one cleanup pass at bitplane 0; every
	// aggregation bit comes out zero and the decoder reconstructs silence.
	startBitplane := max(numBitplanes-1, 0)

	e.clearPI()
	e.encodeCleanupPass(startBitplane)
	numPasses := 1

	for bp := startBitplane - 1; bp >= 0; bp-- {
		e.clearPI()
		e.encodeSigPropPass(bp)
		e.encodeMagRefPass(bp)
		e.encodeCleanupPass(bp)
		numPasses += 3
	}

	return &EncodedCodeblock{
		Width:         width,
		Height:        height,
		Data:          e.mq.Flush(),
		NumPasses:     numPasses,
		StartBitplane: startBitplane,
	}, nil
}

func (e *t1Encoder) markSignificant(idx int) {
	e.significant[idx] = 1
}

func (e *t1Encoder) encodeSign(x, y, idx int) {
	ctx, spb := e.scContextAt(x, y)
	e.mq.Encode(ctx, int(e.sign[idx])^spb)
}

func (e *t1Encoder) encodeSigPropPass(bp int) {
	for y0 := 0; y0 < e.height; y0 += 4 {
		y1 := min(y0+4, e.height)
		for x := 0; x < e.width; x++ {
			for y := y0; y < y1; y++ {
				idx := e.idx(x, y)
				if e.significant[idx] != 0 {
					continue
				}
				if !e.hasSigNeighbor(x, y) {
					continue
				}
				e.pi[idx] = 1

				bit := int(e.mag[idx]>>uint(bp)) & 1
				e.mq.Encode(e.zcContextAt(x, y), bit)
				if bit != 0 {
					e.markSignificant(idx)
					e.encodeSign(x, y, idx)
				}
			}
		}
	}
}

func (e *t1Encoder) encodeMagRefPass(bp int) {
	for y0 := 0; y0 < e.height; y0 += 4 {
		y1 := min(y0+4, e.height)
		for x := 0; x < e.width; x++ {
			for y := y0; y < y1; y++ {
				idx := e.idx(x, y)
				if e.significant[idx] == 0 || e.pi[idx] != 0 {
					continue
				}

				ctx := e.magContext(x, y, idx)
				e.refined[idx] = 1

				e.mq.Encode(ctx, int(e.mag[idx]>>uint(bp))&1)
			}
		}
	}
}

func (e *t1Encoder) encodeCleanupPass(bp int) {
	for y0 := 0; y0 < e.height; y0 += 4 {
		y1 := min(y0+4, e.height)
		for x := 0; x < e.width; x++ {
			if e.runModeAllowed(x, y0) {
				// First row of the stripe column whose magnitude has the
				// current bit set; 4 means the whole column stays zero.
				runLen := 4
				for i := 0; i < 4; i++ {
					if e.mag[e.idx(x, y0+i)]>>uint(bp)&1 != 0 {
						runLen = i
						break
					}
				}

				if runLen == 4 {
					e.mq.Encode(ctxAgg, 0)
					for y := y0; y < y1; y++ {
						e.pi[e.idx(x, y)] = 1
					}
					continue
				}

				e.mq.Encode(ctxAgg, 1)
				e.mq.Encode(ctxUni, runLen>>1&1)
				e.mq.Encode(ctxUni, runLen&1)

				for i := 0; y0+i < y1; i++ {
					y := y0 + i
					idx := e.idx(x, y)
					if e.pi[idx] != 0 {
						continue
					}
					switch {
					case i < runLen:
						e.pi[idx] = 1
					case i == runLen:
						e.markSignificant(idx)
						e.pi[idx] = 1
						e.encodeSign(x, y, idx)
					default:
						e.encodeCleanupOne(x, y, bp)
					}
				}
			} else {
				for y := y0; y < y1; y++ {
					if e.pi[e.idx(x, y)] != 0 {
						continue
					}
					e.encodeCleanupOne(x, y, bp)
				}
			}
		}
	}
}

func (e *t1Encoder) encodeCleanupOne(x, y, bp int) {
	idx := e.idx(x, y)
	e.pi[idx] = 1
	if e.significant[idx] != 0 {
		return
	}

	bit := int(e.mag[idx]>>uint(bp)) & 1
	e.mq.Encode(e.zcContextAt(x, y), bit)
	if bit != 0 {
		e.markSignificant(idx)
		e.encodeSign(x, y, idx)
	}
}
