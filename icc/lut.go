package icc

import "fmt"

// mft1 tag layout: 8-byte type header, channel counts and grid size at
// offsets 8-10, a 3x3 s15.16 matrix at 12, then 8-bit input tables (256
// entries per channel), the CLUT, and 8-bit output tables (256 entries per
// channel).
const lut8HeaderSize = 48

func parseLUT(data []byte, rec tagRecord) (*LUTProfile, error) {
	data = tagData(data, rec)
	if len(data) < lut8HeaderSize {
		return nil, errShortTag
	}
	if sig := string(data[0:4]); sig != "mft1" {
		return nil, fmt.Errorf("%w: LUT type %q", errUnsupported, sig)
	}

	in := int(data[8])
	out := int(data[9])
	grid := int(data[10])
	if in < 1 || in > 15 || out < 1 || out > 15 || grid < 2 {
		return nil, fmt.Errorf("%w: %d in, %d out, %d grid points", errUnsupported, in, out, grid)
	}

	var matrix [9]float64
	for i := range matrix {
		matrix[i] = s15Fixed16(data[12+4*i:])
	}

	clutSize := out
	for i := 0; i < in; i++ {
		clutSize *= grid
	}
	inputSize := 256 * in
	outputSize := 256 * out
	if len(data) < lut8HeaderSize+inputSize+clutSize+outputSize {
		return nil, errShortTag
	}

	off := lut8HeaderSize
	p := &LUTProfile{
		InChannels:  in,
		OutChannels: out,
		GridPoints:  grid,
		Matrix:      matrix,
	}
	p.InputTables = append([]uint8(nil), data[off:off+inputSize]...)
	off += inputSize
	p.CLUT = append([]uint8(nil), data[off:off+clutSize]...)
	off += clutSize
	p.OutputTables = append([]uint8(nil), data[off:off+outputSize]...)
	return p, nil
}

// EvalToPCS transforms one set of device channel values, each in [0, 1],
// to PCS coordinates: per-channel input tables, multilinear interpolation
// over the CLUT, then per-channel output tables. The CLUT is indexed with
// the first input channel varying fastest, matching the on-disk layout
// this parser targets. Returns nil when the value count does not match the
// input channel count or any value is outside [0, 1].
func (p *LUTProfile) EvalToPCS(vals []float64) []float64 {
	if len(vals) != p.InChannels {
		return nil
	}
	for _, v := range vals {
		if v < 0 || v > 1 {
			return nil
		}
	}

	mapped := make([]float64, p.InChannels)
	copy(mapped, vals)
	if p.InChannels == 3 {
		mapped = applyMatrix(p.Matrix, mapped)
	}
	for ch := range mapped {
		mapped[ch] = evalTable8(p.InputTables[ch*256:(ch+1)*256], clamp01(mapped[ch]))
	}

	pcs := p.evalCLUT(mapped)

	for ch := range pcs {
		pcs[ch] = evalTable8(p.OutputTables[ch*256:(ch+1)*256], clamp01(pcs[ch]))
	}
	return pcs
}

// evalCLUT interpolates multilinearly over the 2^n cell corners enclosing
// the mapped input point.
func (p *LUTProfile) evalCLUT(vals []float64) []float64 {
	n := p.InChannels
	base := make([]int, n)
	frac := make([]float64, n)
	for ch, v := range vals {
		pos := v * float64(p.GridPoints-1)
		i := int(pos)
		if i > p.GridPoints-2 {
			i = p.GridPoints - 2
		}
		base[ch] = i
		frac[ch] = pos - float64(i)
	}

	out := make([]float64, p.OutChannels)
	for corner := 0; corner < 1<<n; corner++ {
		weight := 1.0
		idx := 0
		stride := 1
		for ch := 0; ch < n; ch++ {
			coord := base[ch]
			if corner&(1<<ch) != 0 {
				coord++
				weight *= frac[ch]
			} else {
				weight *= 1 - frac[ch]
			}
			idx += coord * stride
			stride *= p.GridPoints
		}
		if weight == 0 {
			continue
		}
		for ch := 0; ch < p.OutChannels; ch++ {
			out[ch] += weight * float64(p.CLUT[idx*p.OutChannels+ch]) / 255
		}
	}
	return out
}

// evalTable8 linearly interpolates an 8-bit 256-entry table at x in [0, 1].
func evalTable8(table []uint8, x float64) float64 {
	pos := x * 255
	i := int(pos)
	if i > 254 {
		return float64(table[255]) / 255
	}
	frac := pos - float64(i)
	a := float64(table[i]) / 255
	b := float64(table[i+1]) / 255
	return a*(1-frac) + b*frac
}

func applyMatrix(m [9]float64, v []float64) []float64 {
	return []float64{
		m[0]*v[0] + m[1]*v[1] + m[2]*v[2],
		m[3]*v[0] + m[4]*v[1] + m[5]*v[2],
		m[6]*v[0] + m[7]*v[1] + m[8]*v[2],
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
