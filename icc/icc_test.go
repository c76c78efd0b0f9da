package icc

import (
	"encoding/binary"
	"math"
	"testing"
)

type tagSpec struct {
	sig  string
	data []byte
}

// buildProfile assembles a minimal ICC buffer: 128-byte header with the
// given color space and PCS signatures, a tag table, then the tag data in
// declaration order.
func buildProfile(colorSpace, pcs string, tags []tagSpec) []byte {
	n := len(tags)
	buf := make([]byte, 128+4+12*n)
	copy(buf[colorSpcOff:], colorSpace)
	copy(buf[pcsSigOff:], pcs)
	copy(buf[sigMagicOff:], sigMagic)
	binary.BigEndian.PutUint32(buf[tagTableOff:], uint32(n))

	off := len(buf)
	for i, tg := range tags {
		rec := 132 + 12*i
		copy(buf[rec:], tg.sig)
		binary.BigEndian.PutUint32(buf[rec+4:], uint32(off))
		binary.BigEndian.PutUint32(buf[rec+8:], uint32(len(tg.data)))
		off += len(tg.data)
	}
	for _, tg := range tags {
		buf = append(buf, tg.data...)
	}
	return buf
}

func s15(v float64) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(int32(math.Round(v*65536))))
	return b[:]
}

func xyzTag(x, y, z float64) []byte {
	b := append([]byte("XYZ "), 0, 0, 0, 0)
	b = append(b, s15(x)...)
	b = append(b, s15(y)...)
	return append(b, s15(z)...)
}

// curvGammaTag encodes a single-entry 'curv' tag: gamma in u8.8.
func curvGammaTag(gamma float64) []byte {
	b := append([]byte("curv"), 0, 0, 0, 0)
	b = binary.BigEndian.AppendUint32(b, 1)
	return binary.BigEndian.AppendUint16(b, uint16(math.Round(gamma*256)))
}

func curvSampledTag(samples []uint16) []byte {
	b := append([]byte("curv"), 0, 0, 0, 0)
	b = binary.BigEndian.AppendUint32(b, uint32(len(samples)))
	for _, s := range samples {
		b = binary.BigEndian.AppendUint16(b, s)
	}
	return b
}

func paraGammaTag(gamma float64) []byte {
	b := append([]byte("para"), 0, 0, 0, 0)
	b = binary.BigEndian.AppendUint16(b, 0) // function type 0
	b = binary.BigEndian.AppendUint16(b, 0)
	return append(b, s15(gamma)...)
}

// sRGBLikeTags builds the full matrix/TRC tag set with D65-like primaries
// and gamma-2 tone curves.
func sRGBLikeTags() []tagSpec {
	return []tagSpec{
		{"wtpt", xyzTag(0.9505, 1.0, 1.089)},
		{"rXYZ", xyzTag(0.4124, 0.2126, 0.0193)},
		{"gXYZ", xyzTag(0.3576, 0.7152, 0.1192)},
		{"bXYZ", xyzTag(0.1805, 0.0722, 0.9505)},
		{"rTRC", curvGammaTag(2.0)},
		{"gTRC", curvGammaTag(2.0)},
		{"bTRC", curvGammaTag(2.0)},
	}
}

func TestParseRGBProfile(t *testing.T) {
	p := Parse(buildProfile("RGB ", "XYZ ", sRGBLikeTags()))
	rgb, ok := p.(*RGBProfile)
	if !ok {
		t.Fatalf("Parse returned %T, want *RGBProfile", p)
	}

	if got := rgb.RTRC.Eval(0.5); math.Abs(got-0.25) > 1e-3 {
		t.Errorf("RTRC.Eval(0.5) = %g, want about 0.25", got)
	}
	if math.Abs(rgb.WhitePoint[1]-1) > 1e-4 {
		t.Errorf("WhitePoint[1] = %g, want about 1", rgb.WhitePoint[1])
	}
	if math.Abs(rgb.RXYZ[0]-0.4124) > 1e-4 {
		t.Errorf("RXYZ[0] = %g, want about 0.4124", rgb.RXYZ[0])
	}
}

func TestParseRGBProfileParaCurve(t *testing.T) {
	tags := sRGBLikeTags()
	tags[4] = tagSpec{"rTRC", paraGammaTag(2.4)}
	p := Parse(buildProfile("RGB ", "XYZ ", tags))
	rgb, ok := p.(*RGBProfile)
	if !ok {
		t.Fatalf("Parse returned %T, want *RGBProfile", p)
	}
	g, ok := rgb.RTRC.(GammaCurve)
	if !ok {
		t.Fatalf("RTRC is %T, want GammaCurve", rgb.RTRC)
	}
	if math.Abs(g.Gamma-2.4) > 1e-4 {
		t.Errorf("Gamma = %g, want 2.4", g.Gamma)
	}
}

func TestParseUnsupportedReturnsNil(t *testing.T) {
	full := buildProfile("RGB ", "XYZ ", sRGBLikeTags())

	missingTRC := sRGBLikeTags()[:6] // drop bTRC

	badPara := sRGBLikeTags()
	badPara[4] = tagSpec{"rTRC", func() []byte {
		b := append([]byte("para"), 0, 0, 0, 0)
		b = binary.BigEndian.AppendUint16(b, 3) // unsupported function type
		b = binary.BigEndian.AppendUint16(b, 0)
		return append(b, make([]byte, 20)...)
	}()}

	overrun := buildProfile("RGB ", "XYZ ", sRGBLikeTags())
	// Point the first tag past the end of the buffer.
	binary.BigEndian.PutUint32(overrun[132+4:], uint32(len(overrun)))

	noMagic := buildProfile("RGB ", "XYZ ", sRGBLikeTags())
	copy(noMagic[sigMagicOff:], "xxxx")

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"too short", full[:100]},
		{"no signature", noMagic},
		{"truncated tag table", full[:135]},
		{"tag overruns buffer", overrun},
		{"missing TRC tag", buildProfile("RGB ", "XYZ ", missingTRC)},
		{"unsupported parametric curve", buildProfile("RGB ", "XYZ ", badPara)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := Parse(tt.data); p != nil {
				t.Errorf("Parse = %#v, want nil", p)
			}
		})
	}
}

func TestSampledCurve(t *testing.T) {
	tags := sRGBLikeTags()
	tags[4] = tagSpec{"rTRC", curvSampledTag([]uint16{0, 32767, 65535})}
	p := Parse(buildProfile("RGB ", "XYZ ", tags))
	rgb, ok := p.(*RGBProfile)
	if !ok {
		t.Fatalf("Parse returned %T, want *RGBProfile", p)
	}
	c, ok := rgb.RTRC.(SampledCurve)
	if !ok {
		t.Fatalf("RTRC is %T, want SampledCurve", rgb.RTRC)
	}

	tests := []struct{ x, want float64 }{
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{1, 1},
		{-0.5, 0},
		{1.5, 1},
	}
	for _, tt := range tests {
		if got := c.Eval(tt.x); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("Eval(%g) = %g, want about %g", tt.x, got, tt.want)
		}
	}
}

func TestCurvZeroEntriesIsIdentity(t *testing.T) {
	tags := sRGBLikeTags()
	tags[4] = tagSpec{"rTRC", curvSampledTag(nil)}
	p := Parse(buildProfile("RGB ", "XYZ ", tags))
	rgb, ok := p.(*RGBProfile)
	if !ok {
		t.Fatalf("Parse returned %T, want *RGBProfile", p)
	}
	if got := rgb.RTRC.Eval(0.37); math.Abs(got-0.37) > 1e-9 {
		t.Errorf("identity curve Eval(0.37) = %g", got)
	}
}

// mft1CMYKTag builds a CMYK to XYZ LUT with two grid points per axis,
// identity input/output tables and an identity matrix. The CLUT cell for
// (C=0, M=1, Y=1, K=0) holds an sRGB-red-like XYZ value.
func mft1CMYKTag() []byte {
	const (
		in   = 4
		out  = 3
		grid = 2
	)
	b := append([]byte("mft1"), 0, 0, 0, 0)
	b = append(b, in, out, grid, 0)
	for i := 0; i < 9; i++ {
		v := 0.0
		if i%4 == 0 {
			v = 1.0
		}
		b = append(b, s15(v)...)
	}

	identity := make([]byte, 256)
	for i := range identity {
		identity[i] = byte(i)
	}
	for ch := 0; ch < in; ch++ {
		b = append(b, identity...)
	}

	// 2^4 grid cells, first input channel varying fastest. Cell index
	// for coordinates (0,1,1,0) is 0 + 1*2 + 1*4 + 0*8 = 6.
	clut := make([]byte, (1<<in)*out)
	copy(clut[6*out:], []byte{105, 54, 5})
	b = append(b, clut...)

	for ch := 0; ch < out; ch++ {
		b = append(b, identity...)
	}
	return b
}

func TestParseLUTProfile(t *testing.T) {
	data := buildProfile("CMYK", "XYZ ", []tagSpec{{"A2B0", mft1CMYKTag()}})
	p := Parse(data)
	lut, ok := p.(*LUTProfile)
	if !ok {
		t.Fatalf("Parse returned %T, want *LUTProfile", p)
	}

	if lut.DataColorSpace != "CMYK" || lut.PCS != "XYZ " {
		t.Errorf("spaces = %q -> %q", lut.DataColorSpace, lut.PCS)
	}
	if lut.InChannels != 4 || lut.OutChannels != 3 || lut.GridPoints != 2 {
		t.Errorf("shape = %d in, %d out, %d grid", lut.InChannels, lut.OutChannels, lut.GridPoints)
	}
}

func TestEvalToPCS(t *testing.T) {
	p := Parse(buildProfile("CMYK", "XYZ ", []tagSpec{{"A2B0", mft1CMYKTag()}}))
	lut := p.(*LUTProfile)

	t.Run("pure red corner", func(t *testing.T) {
		got := lut.EvalToPCS([]float64{0, 1, 1, 0})
		if got == nil {
			t.Fatal("EvalToPCS returned nil")
		}
		want := [3]float64{0.4124, 0.2126, 0.0193}
		for i := range want {
			if math.Abs(got[i]-want[i]) > 0.01 {
				t.Errorf("channel %d: %g, want about %g", i, got[i], want[i])
			}
		}
	})

	t.Run("black corner", func(t *testing.T) {
		got := lut.EvalToPCS([]float64{0, 0, 0, 0})
		if got == nil {
			t.Fatal("EvalToPCS returned nil")
		}
		for i, v := range got {
			if math.Abs(v) > 1e-6 {
				t.Errorf("channel %d: %g, want 0", i, v)
			}
		}
	})

	t.Run("interior interpolation", func(t *testing.T) {
		// Halfway to the red corner on M and Y blends its CLUT entry at
		// weight 1/4.
		got := lut.EvalToPCS([]float64{0, 0.5, 0.5, 0})
		if got == nil {
			t.Fatal("EvalToPCS returned nil")
		}
		if want := 0.25 * 105.0 / 255; math.Abs(got[0]-want) > 0.01 {
			t.Errorf("X = %g, want about %g", got[0], want)
		}
	})

	t.Run("out of range input", func(t *testing.T) {
		if got := lut.EvalToPCS([]float64{0, 1.5, 0, 0}); got != nil {
			t.Errorf("EvalToPCS = %v, want nil", got)
		}
		if got := lut.EvalToPCS([]float64{-0.1, 0, 0, 0}); got != nil {
			t.Errorf("EvalToPCS = %v, want nil", got)
		}
	})

	t.Run("wrong channel count", func(t *testing.T) {
		if got := lut.EvalToPCS([]float64{0, 1}); got != nil {
			t.Errorf("EvalToPCS = %v, want nil", got)
		}
	})
}

func TestParseLUTTruncated(t *testing.T) {
	tag := mft1CMYKTag()
	data := buildProfile("CMYK", "XYZ ", []tagSpec{{"A2B0", tag[:len(tag)-100]}})
	if p := Parse(data); p != nil {
		t.Errorf("Parse = %#v, want nil", p)
	}
}

func TestBradfordAdaptationIdentity(t *testing.T) {
	d65 := [3]float64{0.9505, 1.0, 1.089}
	m := BradfordAdaptation(d65, d65)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if got := m[i*3+j]; math.Abs(got-want) > 1e-6 {
				t.Errorf("m[%d][%d] = %g, want %g", i, j, got, want)
			}
		}
	}
}

func TestBradfordAdaptationMapsWhitePoint(t *testing.T) {
	d65 := [3]float64{0.9505, 1.0, 1.089}
	d50 := [3]float64{0.9642, 1.0, 0.8249}

	m := BradfordAdaptation(d65, d50)
	got := mulVec(m, d65)
	for i := range got {
		if math.Abs(got[i]-d50[i]) > 1e-6 {
			t.Errorf("channel %d: %g, want %g", i, got[i], d50[i])
		}
	}

	// Adapting back composes to the identity.
	back := mulMat(BradfordAdaptation(d50, d65), m)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(back[i*3+j]-want) > 1e-6 {
				t.Errorf("round trip m[%d][%d] = %g, want %g", i, j, back[i*3+j], want)
			}
		}
	}
}
