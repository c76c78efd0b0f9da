package ebcot

// MQ arithmetic encoder, ITU-T T.800 Annex C.
//
// The encoder is the exact counterpart of MQDecoder: it shares the
// probability table and the 19 Tier-1 contexts, and its context states
// evolve identically during encoding and decoding, so the decoder can track
// the encoder's probability model bit for bit.
//
// Procedures implemented: INITENC (C.2.9), CODEMPS (C.2.7), CODELPS
// (C.2.8), RENORME (C.2.5), BYTEOUT with 0xFF stuffing (C.2.10) and FLUSH
// (C.2.11).

// MQEncoder encodes bits into an MQ-coded byte stream.
type MQEncoder struct {
	A  uint32 // probability interval
	C  uint32 // code register (carries and partial bytes)
	CT int    // bits until the next byteout

	buf []byte
	bp  int // write position in buf, -1 before the first byte

	contexts [numContexts]mqContext
}

// NewMQEncoder creates an encoder with freshly initialized state.
func NewMQEncoder() *MQEncoder {
	mq := &MQEncoder{}
	mq.ResetContexts()
	mq.Reset()
	return mq
}

// Reset reinitializes the register state for a new encoding session.
// Implements the INITENC procedure (C.2.9). Context states are left alone;
// use ResetContexts to clear those.
func (mq *MQEncoder) Reset() {
	mq.A = 0x8000
	mq.C = 0
	mq.CT = 12
	mq.buf = mq.buf[:0]
	if cap(mq.buf) < 128 {
		mq.buf = make([]byte, 0, 128)
	}
	mq.bp = -1
}

// ResetContexts resets all contexts to the same initial states used by
// MQDecoder.ResetContexts.
func (mq *MQEncoder) ResetContexts() {
	for i := range mq.contexts {
		mq.contexts[i].index = 0
		mq.contexts[i].mps = 0
	}
	mq.contexts[0].index = 4
	mq.contexts[ctxAgg].index = 3
	mq.contexts[ctxUni].index = 46
}

// Encode encodes one symbol (0 or 1) using the given context (0-18).
func (mq *MQEncoder) Encode(ctx, bit int) {
	if ctx < 0 || ctx >= numContexts {
		return
	}
	if bit == mq.contexts[ctx].mps {
		mq.codeMPS(ctx)
	} else {
		mq.codeLPS(ctx)
	}
}

// codeMPS implements CODEMPS (C.2.7).
func (mq *MQEncoder) codeMPS(ctx int) {
	context := &mq.contexts[ctx]
	entry := &mqProbTable[context.index]
	qe := uint32(entry.qe)

	mq.A -= qe
	if mq.A < 0x8000 {
		if mq.A < qe {
			// MPS_EXCHANGE: interval swap, C unchanged.
			mq.A = qe
		} else {
			mq.C += qe
		}
		context.index = entry.nmps
		mq.renormEnc()
	} else {
		mq.C += qe
	}
}

// codeLPS implements CODELPS (C.2.8).
func (mq *MQEncoder) codeLPS(ctx int) {
	context := &mq.contexts[ctx]
	entry := &mqProbTable[context.index]
	qe := uint32(entry.qe)

	mq.A -= qe
	if mq.A < qe {
		mq.C += qe
	} else {
		// LPS_EXCHANGE: interval swap, C unchanged.
		mq.A = qe
	}
	if entry.switchMPS {
		context.mps = 1 - context.mps
	}
	context.index = entry.nlps
	mq.renormEnc()
}

// renormEnc implements RENORME (C.2.5).
func (mq *MQEncoder) renormEnc() {
	for mq.A < 0x8000 {
		mq.A <<= 1
		mq.C <<= 1
		mq.CT--
		if mq.CT == 0 {
			mq.byteout()
		}
	}
}

// byteout implements BYTEOUT (C.2.10), including carry propagation and the
// 7-bit output that follows a 0xFF byte.
func (mq *MQEncoder) byteout() {
	if mq.bp < 0 {
		mq.buf = append(mq.buf, byte(mq.C>>19))
		mq.bp = 0
		mq.C &= 0x7FFFF
		mq.CT = 8
		return
	}

	if mq.buf[mq.bp] == 0xFF {
		// Previous byte is 0xFF: stuff, output 7 bits only.
		mq.bp++
		mq.buf = append(mq.buf, byte(mq.C>>20))
		mq.C &= 0xFFFFF
		mq.CT = 7
	} else if mq.C >= 0x8000000 {
		// Carry into the previous byte.
		mq.buf[mq.bp]++
		if mq.buf[mq.bp] == 0xFF {
			mq.C &= 0x7FFFFFF
			mq.bp++
			mq.buf = append(mq.buf, byte(mq.C>>20))
			mq.C &= 0xFFFFF
			mq.CT = 7
		} else {
			mq.bp++
			mq.buf = append(mq.buf, byte(mq.C>>19))
			mq.C &= 0x7FFFF
			mq.CT = 8
		}
	} else {
		mq.bp++
		mq.buf = append(mq.buf, byte(mq.C>>19))
		mq.C &= 0x7FFFF
		mq.CT = 8
	}
}

// Flush finalizes the stream and returns the encoded bytes.
// Implements FLUSH (C.2.11): SETBITS chooses the minimal final register
// value inside the interval, then two byteouts emit the remaining bits.
// A trailing 0xFF is trimmed; the decoder synthesizes it on its own.
func (mq *MQEncoder) Flush() []byte {
	temp := mq.C + mq.A
	mq.C |= 0xFFFF
	if mq.C >= temp {
		mq.C -= 0x8000
	}

	mq.C <<= mq.CT
	mq.byteout()
	mq.C <<= mq.CT
	mq.byteout()

	result := mq.buf
	if len(result) > 0 && result[len(result)-1] == 0xFF {
		result = result[:len(result)-1]
	}

	out := make([]byte, len(result))
	copy(out, result)
	return out
}

// BytesWritten returns the number of bytes currently in the output buffer.
func (mq *MQEncoder) BytesWritten() int {
	return len(mq.buf)
}
