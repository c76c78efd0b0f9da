package icc

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Curve is a tone reproduction curve, either GammaCurve or SampledCurve.
// The union is closed.
type Curve interface {
	// Eval evaluates the curve at x in [0, 1].
	Eval(x float64) float64

	isCurve()
}

// GammaCurve is a pure power function y = x^Gamma.
type GammaCurve struct {
	Gamma float64
}

func (GammaCurve) isCurve() {}

func (c GammaCurve) Eval(x float64) float64 {
	return math.Pow(x, c.Gamma)
}

// SampledCurve interpolates linearly over uniformly spaced samples in
// [0, 1]. At least two samples are present.
type SampledCurve struct {
	Samples []float64
}

func (SampledCurve) isCurve() {}

func (c SampledCurve) Eval(x float64) float64 {
	n := len(c.Samples)
	if n == 0 {
		return x
	}
	if n == 1 {
		return c.Samples[0]
	}
	if x <= 0 {
		return c.Samples[0]
	}
	if x >= 1 {
		return c.Samples[n-1]
	}

	pos := x * float64(n-1)
	i := int(pos)
	frac := pos - float64(i)
	return c.Samples[i]*(1-frac) + c.Samples[i+1]*frac
}

// parseCurveTag decodes a 'curv' or 'para' TRC tag.
//
// curv: a u32 sample count; 0 samples is the identity, 1 sample is a u8.8
// gamma, n samples form a u16 lookup table scaled to [0, 1].
// para: only function type 0 (pure gamma, s15.16) is supported.
func parseCurveTag(data []byte) (Curve, error) {
	if len(data) < 12 {
		return nil, errShortTag
	}

	switch sig := string(data[0:4]); sig {
	case "curv":
		count := int(binary.BigEndian.Uint32(data[8:]))
		switch count {
		case 0:
			return GammaCurve{Gamma: 1}, nil
		case 1:
			if len(data) < 14 {
				return nil, errShortTag
			}
			g := float64(binary.BigEndian.Uint16(data[12:])) / 256
			return GammaCurve{Gamma: g}, nil
		default:
			if count < 0 || len(data) < 12+2*count {
				return nil, errShortTag
			}
			samples := make([]float64, count)
			for i := range samples {
				samples[i] = float64(binary.BigEndian.Uint16(data[12+2*i:])) / 65535
			}
			return SampledCurve{Samples: samples}, nil
		}

	case "para":
		funcType := binary.BigEndian.Uint16(data[8:])
		if funcType != 0 {
			return nil, fmt.Errorf("%w: parametric function type %d", errUnsupported, funcType)
		}
		if len(data) < 16 {
			return nil, errShortTag
		}
		return GammaCurve{Gamma: s15Fixed16(data[12:])}, nil

	default:
		return nil, fmt.Errorf("%w: %q", errBadTagType, sig)
	}
}
