// Package icc parses ICC color profiles into the two shapes the document
// import pipeline consumes: RGB matrix/TRC profiles and multi-dimensional
// LUT profiles (lut8Type, tag signature "mft1").
//
// Parse is deliberately lenient at the top level: malformed or unsupported
// profiles return nil rather than an error, because callers fall back to a
// default color space when no usable profile is available. Internal tag
// decoding still reports errors for tags that are inconsistent with the
// buffer they live in; Parse converts those to nil.
//
// All multi-byte integers are big-endian per ICC.1.
package icc

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	errTagOverrun  = errors.New("icc: tag data overruns buffer")
	errBadTagType  = errors.New("icc: unexpected tag type")
	errShortTag    = errors.New("icc: tag data too short")
	errUnsupported = errors.New("icc: unsupported tag variant")
)

// Profile is a parsed ICC profile, either *RGBProfile or *LUTProfile.
// The union is closed; no other implementations exist.
type Profile interface {
	isProfile()
}

// RGBProfile is a three-component matrix/TRC display profile.
type RGBProfile struct {
	WhitePoint [3]float64
	RXYZ       [3]float64
	GXYZ       [3]float64
	BXYZ       [3]float64
	RTRC       Curve
	GTRC       Curve
	BTRC       Curve
}

func (*RGBProfile) isProfile() {}

// LUTProfile wraps an A2B0 lookup-table transform (mft1, 8-bit samples).
type LUTProfile struct {
	// DataColorSpace and PCS are the 4-character signatures from the
	// profile header, e.g. "CMYK" and "XYZ ".
	DataColorSpace string
	PCS            string

	InChannels  int
	OutChannels int
	GridPoints  int

	// Matrix is the 3x3 row-major header matrix; it applies only when
	// the input space has three components.
	Matrix [9]float64

	// 8-bit sample tables: 256 entries per channel for the input and
	// output tables, GridPoints^InChannels * OutChannels for the CLUT.
	InputTables  []uint8
	CLUT         []uint8
	OutputTables []uint8
}

func (*LUTProfile) isProfile() {}

const (
	headerSize   = 128
	tagTableOff  = 128
	sigMagic     = "acsp"
	sigMagicOff  = 36
	colorSpcOff  = 16
	pcsSigOff    = 20
	tagRecordLen = 12
)

type tagRecord struct {
	offset int
	size   int
}

// Parse decodes an ICC profile buffer. It returns nil when the buffer is
// too short, does not carry the profile signature, has a malformed tag
// table, or contains neither a full matrix/TRC tag set nor a supported
// A2B0 LUT.
func Parse(data []byte) Profile {
	if len(data) < headerSize+4 {
		return nil
	}
	if string(data[sigMagicOff:sigMagicOff+4]) != sigMagic {
		return nil
	}

	tags, err := readTagTable(data)
	if err != nil {
		return nil
	}

	if rec, ok := tags["A2B0"]; ok {
		p, err := parseLUT(data, rec)
		if err != nil {
			return nil
		}
		p.DataColorSpace = string(data[colorSpcOff : colorSpcOff+4])
		p.PCS = string(data[pcsSigOff : pcsSigOff+4])
		return p
	}

	p, err := parseRGB(data, tags)
	if err != nil {
		return nil
	}
	return p
}

func readTagTable(data []byte) (map[string]tagRecord, error) {
	count := int(binary.BigEndian.Uint32(data[tagTableOff:]))
	end := tagTableOff + 4 + count*tagRecordLen
	if count < 0 || end > len(data) {
		return nil, errTagOverrun
	}

	tags := make(map[string]tagRecord, count)
	for i := 0; i < count; i++ {
		off := tagTableOff + 4 + i*tagRecordLen
		sig := string(data[off : off+4])
		rec := tagRecord{
			offset: int(binary.BigEndian.Uint32(data[off+4:])),
			size:   int(binary.BigEndian.Uint32(data[off+8:])),
		}
		if rec.offset < 0 || rec.size < 0 || rec.offset+rec.size > len(data) {
			return nil, fmt.Errorf("%w: tag %q", errTagOverrun, sig)
		}
		tags[sig] = rec
	}
	return tags, nil
}

func parseRGB(data []byte, tags map[string]tagRecord) (*RGBProfile, error) {
	p := &RGBProfile{}

	for _, t := range []struct {
		sig string
		dst *[3]float64
	}{
		{"wtpt", &p.WhitePoint},
		{"rXYZ", &p.RXYZ},
		{"gXYZ", &p.GXYZ},
		{"bXYZ", &p.BXYZ},
	} {
		rec, ok := tags[t.sig]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", errUnsupported, t.sig)
		}
		xyz, err := parseXYZTag(tagData(data, rec))
		if err != nil {
			return nil, err
		}
		*t.dst = xyz
	}

	for _, t := range []struct {
		sig string
		dst *Curve
	}{
		{"rTRC", &p.RTRC},
		{"gTRC", &p.GTRC},
		{"bTRC", &p.BTRC},
	} {
		rec, ok := tags[t.sig]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", errUnsupported, t.sig)
		}
		c, err := parseCurveTag(tagData(data, rec))
		if err != nil {
			return nil, err
		}
		*t.dst = c
	}
	return p, nil
}

func tagData(data []byte, rec tagRecord) []byte {
	return data[rec.offset : rec.offset+rec.size]
}

// parseXYZTag decodes an 'XYZ ' tag: three s15.16 values after the 8-byte
// type header.
func parseXYZTag(data []byte) ([3]float64, error) {
	var xyz [3]float64
	if len(data) < 20 {
		return xyz, errShortTag
	}
	if string(data[0:4]) != "XYZ " {
		return xyz, fmt.Errorf("%w: %q", errBadTagType, data[0:4])
	}
	for i := 0; i < 3; i++ {
		xyz[i] = s15Fixed16(data[8+4*i:])
	}
	return xyz, nil
}

// s15Fixed16 decodes a signed 15.16 fixed-point value.
func s15Fixed16(data []byte) float64 {
	return float64(int32(binary.BigEndian.Uint32(data))) / 65536
}
