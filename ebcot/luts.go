package ebcot

// Context lookup tables for the Tier-1 coding passes, ISO/IEC 15444-1
// Annex D. The sign-coding tables are specification-mandated constants and
// are reproduced bit for bit; the zero-coding table is generated from the
// Table D.1 neighbor classification at package init.

// Subband orientations, in the order used as offsets into lutCtxnoZC.
const (
	orientLL = 0
	orientLH = 1
	orientHL = 2
	orientHH = 3
)

// Bit positions of the 8-neighbor significance pattern used to index
// lutCtxnoZC. The coefficient itself is excluded.
const (
	zcSigW = 1 << iota
	zcSigE
	zcSigN
	zcSigS
	zcSigNW
	zcSigNE
	zcSigSW
	zcSigSE
)

// Bit positions of the signed-significance pattern of the four adjacent
// neighbors, used to index lutCtxnoSC and lutSPB.
const (
	scSgnW = 1 << 0
	scSigN = 1 << 1
	scSgnE = 1 << 2
	scSigW = 1 << 3
	scSgnN = 1 << 4
	scSigE = 1 << 5
	scSgnS = 1 << 6
	scSigS = 1 << 7
)

// lutCtxnoZC maps (orientation, 8-bit neighbor pattern) to a zero-coding
// context (0-8). Filled in by init.
var lutCtxnoZC [4][256]uint8

func init() {
	for orient := range lutCtxnoZC {
		for pattern := 0; pattern < 256; pattern++ {
			lutCtxnoZC[orient][pattern] = zcContext(orient, pattern)
		}
	}
}

// zcContext classifies one neighbor pattern per ITU-T T.800 Table D.1.
// h/v/d are the significant counts of the horizontal, vertical and diagonal
// neighbors; for HL the roles of h and v are exchanged, and for HH the
// diagonal count is the primary discriminator.
func zcContext(orient, pattern int) uint8 {
	bit := func(mask int) int {
		if pattern&mask != 0 {
			return 1
		}
		return 0
	}
	h := bit(zcSigW) + bit(zcSigE)
	v := bit(zcSigN) + bit(zcSigS)
	d := bit(zcSigNW) + bit(zcSigNE) + bit(zcSigSW) + bit(zcSigSE)

	switch orient {
	case orientHH:
		hv := h + v
		switch {
		case d >= 3:
			return 8
		case d == 2:
			if hv >= 1 {
				return 7
			}
			return 6
		case d == 1:
			switch {
			case hv >= 2:
				return 5
			case hv == 1:
				return 4
			default:
				return 3
			}
		default:
			switch {
			case hv >= 2:
				return 2
			case hv == 1:
				return 1
			default:
				return 0
			}
		}
	case orientHL:
		h, v = v, h
	}

	// LL, LH and (after the swap) HL: h is the primary discriminator.
	switch {
	case h >= 2:
		return 8
	case h == 1:
		switch {
		case v >= 1:
			return 7
		case d >= 1:
			return 6
		default:
			return 5
		}
	default:
		switch {
		case v >= 2:
			return 4
		case v == 1:
			return 3
		case d >= 2:
			return 2
		case d == 1:
			return 1
		default:
			return 0
		}
	}
}

// lutCtxnoSC maps the 8-bit signed-significance pattern to a sign-coding
// context (9-13). Values per ISO/IEC 15444-1 Annex D (as tabulated in the
// OpenJPEG reference implementation).
var lutCtxnoSC = [256]uint8{
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xd, 0xb, 0xc, 0xc, 0xd, 0xb,
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xb, 0xd, 0xc, 0xc, 0xb, 0xd,
	0xc, 0xc, 0xd, 0xd, 0xc, 0xc, 0xb, 0xb, 0xc, 0x9, 0xd, 0xa, 0x9, 0xc, 0xa, 0xb,
	0xc, 0xc, 0xb, 0xb, 0xc, 0xc, 0xd, 0xd, 0xc, 0x9, 0xb, 0xa, 0x9, 0xc, 0xa, 0xd,
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xd, 0xb, 0xc, 0xc, 0xd, 0xb,
	0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0xc, 0xc, 0xb, 0xd, 0xc, 0xc, 0xb, 0xd,
	0xc, 0xc, 0xd, 0xd, 0xc, 0xc, 0xb, 0xb, 0xc, 0x9, 0xd, 0xa, 0x9, 0xc, 0xa, 0xb,
	0xc, 0xc, 0xb, 0xb, 0xc, 0xc, 0xd, 0xd, 0xc, 0x9, 0xb, 0xa, 0x9, 0xc, 0xa, 0xd,
	0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xd, 0xb, 0xd, 0xb, 0xd, 0xb, 0xd, 0xb,
	0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xd, 0xb, 0xc, 0xc, 0xd, 0xb, 0xc, 0xc,
	0xd, 0xd, 0xd, 0xd, 0xb, 0xb, 0xb, 0xb, 0xd, 0xa, 0xd, 0xa, 0xa, 0xb, 0xa, 0xb,
	0xd, 0xd, 0xc, 0xc, 0xb, 0xb, 0xc, 0xc, 0xd, 0xa, 0xc, 0x9, 0xa, 0xb, 0x9, 0xc,
	0xa, 0xa, 0x9, 0x9, 0xa, 0xa, 0x9, 0x9, 0xb, 0xd, 0xc, 0xc, 0xb, 0xd, 0xc, 0xc,
	0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xa, 0xb, 0xd, 0xb, 0xd, 0xb, 0xd, 0xb, 0xd,
	0xb, 0xb, 0xc, 0xc, 0xd, 0xd, 0xc, 0xc, 0xb, 0xa, 0xc, 0x9, 0xa, 0xd, 0x9, 0xc,
	0xb, 0xb, 0xb, 0xb, 0xd, 0xd, 0xd, 0xd, 0xb, 0xa, 0xb, 0xa, 0xa, 0xd, 0xa, 0xd,
}

// lutSPB maps the same pattern to the predicted sign bit; the decoded sign
// is the coded bit XORed with this prediction.
var lutSPB = [256]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 1, 0, 1, 1, 1,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 0, 0, 0, 0, 1, 0, 1,
	1, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 1, 0, 1, 0, 1, 0, 1,
	0, 0, 0, 0, 1, 1, 1, 1, 0, 1, 0, 0, 1, 1, 0, 1, 0, 0, 0, 0, 1, 1, 1, 1, 0, 1, 0, 1, 1, 1, 1, 1,
}
