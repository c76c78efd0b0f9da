// Package ebcot implements the JPEG2000 Tier-1 entropy coding layer for a
// single codeblock, as specified in ITU-T T.800 (ISO/IEC 15444-1) Annex C
// and Annex D.
//
// The package contains the MQ context-adaptive binary arithmetic coder
// (decoder and encoder) and the EBCOT bit-plane coding passes (cleanup,
// significance propagation, magnitude refinement) for the LL subband
// orientation.
//
// Decoding:
//
//	mq := ebcot.NewMQDecoder(data)
//	cb, err := ebcot.DecodeLLCodeblock(mq, ebcot.CodeblockParams{
//	    Width:         32,
//	    Height:        32,
//	    NumPasses:     7,
//	    StartBitplane: 2,
//	})
//
// The caller owns the surrounding codestream format: it slices out the
// codeblock's compressed bytes, determines the pass count and the first
// bitplane from the packet headers, and hands both to DecodeLLCodeblock.
// One MQDecoder must not be shared between codeblocks that are being
// decoded concurrently; its register state is serially dependent bit by bit.
//
// Only the LL orientation is supported, and the vertically-causal context
// (VSC) mode switch is not implemented. Extending to HL/LH/HH subbands
// requires the additional orientation offsets in the zero-coding context
// table.
package ebcot
