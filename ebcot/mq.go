package ebcot

// MQ arithmetic decoder, ITU-T T.800 Annex C.
//
// The MQ coder is a context-adaptive binary arithmetic coder with 47
// probability states and, for Tier-1 coding, 19 independent contexts.
// The decoder maintains:
//   - A: probability interval (16-bit, always >= 0x8000 after renormalization)
//   - C: code register (28 bits used)
//   - CT: counter of bits available in C before the next byte is read
//
// Byte stuffing: a 0xFF byte in the compressed stream is followed by a byte
// whose most significant bit is a stuffed zero; a byte greater than 0x8F
// after 0xFF is a marker, and the decoder then behaves as if an infinite
// run of 0xFF bytes follows.

// Context indexes used by the Tier-1 passes.
const (
	// 0-8: zero coding, selected by the 8-neighbor significance pattern.
	// 9-13: sign coding, selected by the 4-neighbor signed-significance
	// pattern.
	ctxSignBase = 9
	// 14-16: magnitude refinement.
	ctxMagFirst    = 14 // first refinement, no significant neighbor
	ctxMagNeighbor = 15 // first refinement, at least one significant neighbor
	ctxMagRepeat   = 16 // refined before
	// 17-18: cleanup run mode.
	ctxAgg = 17 // stripe aggregation bit
	ctxUni = 18 // uniform context (run length bits, segmentation symbols)
)

// numContexts is the size of the Tier-1 context table.
const numContexts = 19

type mqContext struct {
	index int // index into the probability table (0-46)
	mps   int // most probable symbol (0 or 1)
}

// mqProbEntry is one entry of the probability estimation table.
type mqProbEntry struct {
	qe        uint16 // probability estimate
	nmps      int    // next state after an MPS
	nlps      int    // next state after an LPS
	switchMPS bool   // invert the MPS value when taking the LPS transition
}

// mqProbTable is the probability state machine from ITU-T T.800 Table C.2.
var mqProbTable = [47]mqProbEntry{
	{0x5601, 1, 1, true},    // 0
	{0x3401, 2, 6, false},   // 1
	{0x1801, 3, 9, false},   // 2
	{0x0AC1, 4, 12, false},  // 3
	{0x0521, 5, 29, false},  // 4
	{0x0221, 38, 33, false}, // 5
	{0x5601, 7, 6, true},    // 6
	{0x5401, 8, 14, false},  // 7
	{0x4801, 9, 14, false},  // 8
	{0x3801, 10, 14, false}, // 9
	{0x3001, 11, 17, false}, // 10
	{0x2401, 12, 18, false}, // 11
	{0x1C01, 13, 20, false}, // 12
	{0x1601, 29, 21, false}, // 13
	{0x5601, 15, 14, true},  // 14
	{0x5401, 16, 14, false}, // 15
	{0x5101, 17, 15, false}, // 16
	{0x4801, 18, 16, false}, // 17
	{0x3801, 19, 17, false}, // 18
	{0x3401, 20, 18, false}, // 19
	{0x3001, 21, 19, false}, // 20
	{0x2801, 22, 19, false}, // 21
	{0x2401, 23, 20, false}, // 22
	{0x2201, 24, 21, false}, // 23
	{0x1C01, 25, 22, false}, // 24
	{0x1801, 26, 23, false}, // 25
	{0x1601, 27, 24, false}, // 26
	{0x1401, 28, 25, false}, // 27
	{0x1201, 29, 26, false}, // 28
	{0x1101, 30, 27, false}, // 29
	{0x0AC1, 31, 28, false}, // 30
	{0x09C1, 32, 29, false}, // 31
	{0x08A1, 33, 30, false}, // 32
	{0x0521, 34, 31, false}, // 33
	{0x0441, 35, 32, false}, // 34
	{0x02A1, 36, 33, false}, // 35
	{0x0221, 37, 34, false}, // 36
	{0x0141, 38, 35, false}, // 37
	{0x0111, 39, 36, false}, // 38
	{0x0085, 40, 37, false}, // 39
	{0x0049, 41, 38, false}, // 40
	{0x0025, 42, 39, false}, // 41
	{0x0015, 43, 40, false}, // 42
	{0x0009, 44, 41, false}, // 43
	{0x0005, 45, 42, false}, // 44
	{0x0001, 45, 43, false}, // 45
	{0x5601, 46, 46, false}, // 46 (uniform context)
}

// MQDecoder decodes bits from an MQ-coded byte stream.
type MQDecoder struct {
	A  uint32 // probability interval
	C  uint32 // code register
	CT int    // bits available before the next bytein

	data []byte
	pos  int

	contexts [numContexts]mqContext
}

// NewMQDecoder creates a decoder initialized with the given compressed data.
func NewMQDecoder(data []byte) *MQDecoder {
	mq := &MQDecoder{data: data}
	mq.ResetContexts()
	mq.initDec()
	return mq
}

// initDec implements the INITDEC procedure (C.3.5).
//
// The first byte is loaded into C at bits [16-23] with pos left at 0, so
// that the following bytein looks at data[0] for the 0xFF check but adds
// data[1] to the register.
func (mq *MQDecoder) initDec() {
	mq.A = 0x8000

	if mq.pos < len(mq.data) {
		mq.C = uint32(mq.data[mq.pos]) << 16
	} else {
		mq.C = 0xFF << 16
	}
	mq.CT = 0

	mq.bytein()

	mq.C <<= 7
	mq.CT -= 7
}

// DecodeBit decodes one bit using the given context (0-18).
// Implements the DECODE procedure (C.3.2) with the MPS/LPS exchange rules.
func (mq *MQDecoder) DecodeBit(ctx int) int {
	if ctx < 0 || ctx >= numContexts {
		return 0
	}

	context := &mq.contexts[ctx]
	entry := &mqProbTable[context.index]
	qe := uint32(entry.qe)

	mq.A -= qe
	chigh := mq.C >> 16

	if chigh < qe {
		// C falls into the LPS sub-interval [0, Qe).
		if mq.A < qe {
			// LPS_EXCHANGE: intervals swapped, actually an MPS.
			context.index = entry.nmps
			mq.A = qe
			d := context.mps
			mq.renormalize()
			return d
		}
		mq.A = qe
		d := 1 - context.mps
		if entry.switchMPS {
			context.mps = 1 - context.mps
		}
		context.index = entry.nlps
		mq.renormalize()
		return d
	}

	// MPS sub-interval [Qe, A).
	mq.C -= qe << 16

	if mq.A < 0x8000 {
		if mq.A < qe {
			// MPS_EXCHANGE: intervals swapped, actually an LPS.
			d := 1 - context.mps
			if entry.switchMPS {
				context.mps = 1 - context.mps
			}
			context.index = entry.nlps
			mq.renormalize()
			return d
		}
		context.index = entry.nmps
		d := context.mps
		mq.renormalize()
		return d
	}
	// Fast MPS path: no renormalization, no context transition.
	return context.mps
}

// renormalize implements the RENORMD procedure (C.3.3).
func (mq *MQDecoder) renormalize() {
	for mq.A < 0x8000 {
		if mq.CT == 0 {
			mq.bytein()
		}
		mq.A <<= 1
		mq.C <<= 1
		mq.CT--
	}
}

// bytein implements the BYTEIN procedure (C.3.4).
//
// The current byte is only examined for the 0xFF check; the byte actually
// added to the register is the following one. On a marker (0xFF followed by
// a byte above 0x8F) or at the end of the data the decoder feeds itself
// 0xFF bytes without advancing.
func (mq *MQDecoder) bytein() {
	if mq.pos >= len(mq.data) {
		mq.C += 0xFF << 8
		mq.CT = 8
		return
	}

	nextByte := byte(0xFF)
	if mq.pos+1 < len(mq.data) {
		nextByte = mq.data[mq.pos+1]
	}

	if mq.data[mq.pos] == 0xFF {
		if nextByte > 0x8F {
			// Marker segment: do not advance, synthesize 0xFF fill.
			mq.C += 0xFF << 8
			mq.CT = 8
			return
		}
		// Stuffed byte: only 7 bits carry data.
		mq.pos++
		mq.C += uint32(nextByte) << 9
		mq.CT = 7
	} else {
		mq.pos++
		mq.C += uint32(nextByte) << 8
		mq.CT = 8
	}
}

// Position returns the current byte position in the input stream.
func (mq *MQDecoder) Position() int {
	return mq.pos
}

// Reset reinitializes the decoder for a new codeblock, resetting both the
// register state and all context probabilities.
func (mq *MQDecoder) Reset(data []byte) {
	mq.data = data
	mq.pos = 0
	mq.ResetContexts()
	mq.initDec()
}

// ResetContexts resets all contexts to their initial states: the first
// zero-coding context starts in state 4, the aggregation context in state 3,
// the uniform context in state 46, and everything else in state 0 with
// MPS = 0.
func (mq *MQDecoder) ResetContexts() {
	for i := range mq.contexts {
		mq.contexts[i].index = 0
		mq.contexts[i].mps = 0
	}
	mq.contexts[0].index = 4
	mq.contexts[ctxAgg].index = 3
	mq.contexts[ctxUni].index = 46
}

// SetContext places a single context into the given probability state.
// Callers that sequence multiple codeblocks through one decoder use this to
// restore non-default context states.
func (mq *MQDecoder) SetContext(ctx, state, mps int) {
	if ctx < 0 || ctx >= numContexts {
		return
	}
	if state < 0 || state >= len(mqProbTable) {
		return
	}
	mq.contexts[ctx].index = state
	mq.contexts[ctx].mps = mps & 1
}
