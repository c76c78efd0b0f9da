package ebcot

// EBCOT Tier-1 decoder, ITU-T T.800 Annex D.
//
// A codeblock is decoded bitplane by bitplane, most significant first. The
// first pass is always a cleanup pass at the starting bitplane; every lower
// bitplane then contributes a significance propagation pass, a magnitude
// refinement pass and a cleanup pass, in that order, until the caller's
// pass count is consumed.
//
// Coefficients are scanned in stripes of four rows, column by column within
// each stripe. Reconstruction uses the midpoint scheme: when a coefficient
// first becomes significant at bitplane bp its magnitude is set to
// (2<<bp)|(1<<bp), and each later refinement adds or subtracts 1<<bp. The
// stored magnitudes therefore carry one fractional bit.

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions = errors.New("ebcot: invalid codeblock dimensions")
	ErrInvalidNumPasses  = errors.New("ebcot: number of passes must be positive")
	ErrInvalidBitplane   = errors.New("ebcot: negative start bitplane")
	ErrOutOfBitplanes    = errors.New("ebcot: ran out of bitplanes")
)

// CodeblockParams describes one codeblock to decode. The caller derives
// NumPasses and StartBitplane from the packet headers of the surrounding
// codestream.
type CodeblockParams struct {
	Width         int
	Height        int
	NumPasses     int
	StartBitplane int
}

// Codeblock holds the reconstructed coefficients of one codeblock, indexed
// by y*Width+x. Data carries coefficient magnitudes with one fractional
// bit; Sign is 1 for negative coefficients; Significant marks coefficients
// that became significant during the decode. Data is non-zero only where
// Significant is set.
type Codeblock struct {
	Width, Height int

	Data        []int32
	Sign        []uint8
	Significant []uint8
}

// t1State is the per-codeblock coding state shared by the decoder and the
// encoder: the significance, sign and bookkeeping planes plus the neighbor
// pattern and context computations. All neighbor lookups are bounds-checked
// and read "not significant" outside the codeblock.
type t1State struct {
	width, height int

	significant []uint8 // monotonic within one codeblock
	sign        []uint8 // valid only where significant
	pi          []uint8 // processed in the current bitplane
	refined     []uint8 // has been magnitude-refined before
}

func newT1State(width, height int) t1State {
	n := width * height
	return t1State{
		width:       width,
		height:      height,
		significant: make([]uint8, n),
		sign:        make([]uint8, n),
		pi:          make([]uint8, n),
		refined:     make([]uint8, n),
	}
}

func (s *t1State) idx(x, y int) int { return y*s.width + x }

// sigAt reports significance with border handling: positions outside the
// codeblock are never significant.
func (s *t1State) sigAt(x, y int) bool {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return false
	}
	return s.significant[y*s.width+x] != 0
}

func (s *t1State) signAt(x, y int) uint8 {
	return s.sign[y*s.width+x]
}

// clearPI resets the processed-in-pass markers at the start of a bitplane.
func (s *t1State) clearPI() {
	for i := range s.pi {
		s.pi[i] = 0
	}
}

// zcIndex packs the 8-neighbor significance pattern into the lutCtxnoZC
// index.
func (s *t1State) zcIndex(x, y int) int {
	lu := 0
	if s.sigAt(x-1, y) {
		lu |= zcSigW
	}
	if s.sigAt(x+1, y) {
		lu |= zcSigE
	}
	if s.sigAt(x, y-1) {
		lu |= zcSigN
	}
	if s.sigAt(x, y+1) {
		lu |= zcSigS
	}
	if s.sigAt(x-1, y-1) {
		lu |= zcSigNW
	}
	if s.sigAt(x+1, y-1) {
		lu |= zcSigNE
	}
	if s.sigAt(x-1, y+1) {
		lu |= zcSigSW
	}
	if s.sigAt(x+1, y+1) {
		lu |= zcSigSE
	}
	return lu
}

// zcContextAt returns the zero-coding context for the LL orientation.
func (s *t1State) zcContextAt(x, y int) int {
	return int(lutCtxnoZC[orientLL][s.zcIndex(x, y)])
}

// scIndex packs the signed-significance pattern of the four adjacent
// neighbors into the lutCtxnoSC/lutSPB index.
func (s *t1State) scIndex(x, y int) int {
	lu := 0
	if s.sigAt(x-1, y) {
		lu |= scSigW
		if s.signAt(x-1, y) != 0 {
			lu |= scSgnW
		}
	}
	if s.sigAt(x+1, y) {
		lu |= scSigE
		if s.signAt(x+1, y) != 0 {
			lu |= scSgnE
		}
	}
	if s.sigAt(x, y-1) {
		lu |= scSigN
		if s.signAt(x, y-1) != 0 {
			lu |= scSgnN
		}
	}
	if s.sigAt(x, y+1) {
		lu |= scSigS
		if s.signAt(x, y+1) != 0 {
			lu |= scSgnS
		}
	}
	return lu
}

// scContextAt returns the sign-coding context and the sign prediction bit.
func (s *t1State) scContextAt(x, y int) (ctx, spb int) {
	lu := s.scIndex(x, y)
	return int(lutCtxnoSC[lu]), int(lutSPB[lu])
}

// hasSigNeighbor reports whether any of the 8 neighbors is significant.
func (s *t1State) hasSigNeighbor(x, y int) bool {
	return s.zcIndex(x, y) != 0
}

// magContext selects the magnitude refinement context: contexts 14 and 15
// distinguish the neighbor pattern on the first refinement, context 16 is
// used for every refinement after the first.
func (s *t1State) magContext(x, y, idx int) int {
	if s.refined[idx] != 0 {
		return ctxMagRepeat
	}
	if s.hasSigNeighbor(x, y) {
		return ctxMagNeighbor
	}
	return ctxMagFirst
}

// runModeAllowed reports whether the stripe column starting at (x, y0) can
// use run-length mode: the stripe must span four full rows, and every
// coefficient in it must have no prior significance, no processed marker
// and no significant 8-neighbor. The decision is taken once per column,
// before any coefficient in it is coded.
func (s *t1State) runModeAllowed(x, y0 int) bool {
	if y0+4 > s.height {
		return false
	}
	for i := 0; i < 4; i++ {
		y := y0 + i
		idx := s.idx(x, y)
		if s.significant[idx] != 0 || s.pi[idx] != 0 {
			return false
		}
		if s.hasSigNeighbor(x, y) {
			return false
		}
	}
	return true
}

// t1Decoder decodes one codeblock's passes from an MQ bitstream.
type t1Decoder struct {
	t1State
	mq   *MQDecoder
	data []int32
}

// DecodeLLCodeblock decodes the coding passes of a single LL-subband
// codeblock from the given MQ decoder. The decoder must be freshly
// initialized (or Reset) with the codeblock's compressed bytes.
//
// The call fails fast on caller-contract violations: non-positive
// dimensions or pass count, a negative start bitplane, or more passes than
// the bitplanes from StartBitplane down to zero can carry.
func DecodeLLCodeblock(mq *MQDecoder, p CodeblockParams) (*Codeblock, error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, p.Width, p.Height)
	}
	if p.NumPasses <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNumPasses, p.NumPasses)
	}
	if p.StartBitplane < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitplane, p.StartBitplane)
	}
	if maxPasses := 1 + 3*p.StartBitplane; p.NumPasses > maxPasses {
		return nil, fmt.Errorf("%w: %d passes requested, %d available from bitplane %d",
			ErrOutOfBitplanes, p.NumPasses, maxPasses, p.StartBitplane)
	}

	d := &t1Decoder{
		t1State: newT1State(p.Width, p.Height),
		mq:      mq,
		data:    make([]int32, p.Width*p.Height),
	}

	// The first bitplane carries only a cleanup pass: nothing is
	// significant yet, so the other two passes would code no bits.
	remaining := p.NumPasses
	d.clearPI()
	d.cleanupPass(p.StartBitplane)
	remaining--

	for bp := p.StartBitplane - 1; remaining > 0; bp-- {
		d.clearPI()
		d.sigPropPass(bp)
		remaining--
		if remaining == 0 {
			break
		}
		d.magRefPass(bp)
		remaining--
		if remaining == 0 {
			break
		}
		d.cleanupPass(bp)
		remaining--
	}

	return &Codeblock{
		Width:       p.Width,
		Height:      p.Height,
		Data:        d.data,
		Sign:        d.sign,
		Significant: d.significant,
	}, nil
}

// setSignificant marks a coefficient significant at bitplane bp and stores
// the midpoint magnitude (2<<bp)|(1<<bp). Significance is monotonic: a
// coefficient that is already significant is never reset.
func (d *t1Decoder) setSignificant(idx, bp int) {
	if d.significant[idx] != 0 {
		return
	}
	d.significant[idx] = 1
	d.data[idx] = int32(2)<<uint(bp) | int32(1)<<uint(bp)
}

// decodeSign decodes the sign of a newly significant coefficient using the
// sign-coding context and prediction for its neighborhood.
func (d *t1Decoder) decodeSign(x, y, idx int) {
	ctx, spb := d.scContextAt(x, y)
	d.sign[idx] = uint8(d.mq.DecodeBit(ctx) ^ spb)
}

// sigPropPass decodes the significance propagation pass for bitplane bp:
// coefficients that are not yet significant but have at least one
// significant neighbor.
func (d *t1Decoder) sigPropPass(bp int) {
	for y0 := 0; y0 < d.height; y0 += 4 {
		y1 := min(y0+4, d.height)
		for x := 0; x < d.width; x++ {
			for y := y0; y < y1; y++ {
				idx := d.idx(x, y)
				if d.significant[idx] != 0 {
					continue
				}
				if !d.hasSigNeighbor(x, y) {
					continue
				}
				d.pi[idx] = 1

				if d.mq.DecodeBit(d.zcContextAt(x, y)) != 0 {
					d.setSignificant(idx, bp)
					d.decodeSign(x, y, idx)
				}
			}
		}
	}
}

// magRefPass decodes the magnitude refinement pass for bitplane bp:
// coefficients that became significant in an earlier bitplane. The
// refinement bit moves the magnitude estimate half a quantization step up
// or down.
func (d *t1Decoder) magRefPass(bp int) {
	half := int32(1) << uint(bp)
	for y0 := 0; y0 < d.height; y0 += 4 {
		y1 := min(y0+4, d.height)
		for x := 0; x < d.width; x++ {
			for y := y0; y < y1; y++ {
				idx := d.idx(x, y)
				if d.significant[idx] == 0 || d.pi[idx] != 0 {
					continue
				}

				ctx := d.magContext(x, y, idx)
				d.refined[idx] = 1

				if d.mq.DecodeBit(ctx) != 0 {
					d.data[idx] += half
				} else {
					d.data[idx] -= half
				}
			}
		}
	}
}

// cleanupPass decodes the cleanup pass for bitplane bp: every coefficient
// not handled by the earlier passes of this bitplane. Stripe columns whose
// four coefficients have no significance anywhere in their neighborhood use
// run-length mode: one aggregation bit, then (if set) a two-bit row index
// naming the first coefficient of the column to become significant.
func (d *t1Decoder) cleanupPass(bp int) {
	for y0 := 0; y0 < d.height; y0 += 4 {
		y1 := min(y0+4, d.height)
		for x := 0; x < d.width; x++ {
			if d.runModeAllowed(x, y0) {
				if d.mq.DecodeBit(ctxAgg) == 0 {
					// Whole stripe column stays insignificant.
					for y := y0; y < y1; y++ {
						d.pi[d.idx(x, y)] = 1
					}
					continue
				}

				bit1 := d.mq.DecodeBit(ctxUni)
				bit0 := d.mq.DecodeBit(ctxUni)
				runLen := bit1<<1 | bit0

				for i := 0; y0+i < y1; i++ {
					y := y0 + i
					idx := d.idx(x, y)
					if d.pi[idx] != 0 {
						continue
					}
					switch {
					case i < runLen:
						d.pi[idx] = 1
					case i == runLen:
						// Significance implied by the run length.
						d.setSignificant(idx, bp)
						d.pi[idx] = 1
						d.decodeSign(x, y, idx)
					default:
						d.cleanupOne(x, y, bp)
					}
				}
			} else {
				for y := y0; y < y1; y++ {
					if d.pi[d.idx(x, y)] != 0 {
						continue
					}
					d.cleanupOne(x, y, bp)
				}
			}
		}
	}
}

// cleanupOne decodes a single coefficient in the cleanup pass.
func (d *t1Decoder) cleanupOne(x, y, bp int) {
	idx := d.idx(x, y)
	d.pi[idx] = 1
	if d.significant[idx] != 0 {
		return
	}

	if d.mq.DecodeBit(d.zcContextAt(x, y)) != 0 {
		d.setSignificant(idx, bp)
		d.decodeSign(x, y, idx)
	}
}
