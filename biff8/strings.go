package biff8

// BIFF8 stores text as XLUnicodeString: a character count, a flag byte
// whose low bit selects the encoding, then either one byte per character
// (compressed, code points 0-255) or two (UTF-16LE).

import (
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

const (
	strFlagCompressed   = 0x00
	strFlagUncompressed = 0x01
)

// utf16le is the uncompressed character encoding of XLUnicodeString.
var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeChars decodes cch characters from data according to the flag byte,
// returning the string and the number of payload bytes it occupied.
func decodeChars(record string, data []byte, cch int, flags byte) (string, int, error) {
	switch flags {
	case strFlagCompressed:
		if len(data) < cch {
			return "", 0, formatErr(record, "string needs %d bytes, have %d", cch, len(data))
		}
		s, err := charmap.ISO8859_1.NewDecoder().Bytes(data[:cch])
		if err != nil {
			return "", 0, formatErr(record, "invalid compressed string: %v", err)
		}
		return string(s), cch, nil

	case strFlagUncompressed:
		n := 2 * cch
		if len(data) < n {
			return "", 0, formatErr(record, "string needs %d bytes, have %d", n, len(data))
		}
		s, err := utf16le.NewDecoder().Bytes(data[:n])
		if err != nil {
			return "", 0, formatErr(record, "invalid UTF-16 string: %v", err)
		}
		return string(s), n, nil

	default:
		return "", 0, formatErr(record, "invalid string flags 0x%02x", flags)
	}
}

// encodeChars serializes s in its most compact BIFF8 form: compressed when
// every code point fits in a byte, UTF-16LE otherwise. It returns the
// character count, the flag byte, and the encoded bytes.
func encodeChars(s string) (cch int, flags byte, chars []byte) {
	if b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s)); err == nil {
		return len(b), strFlagCompressed, b
	}
	b, _ := utf16le.NewEncoder().Bytes([]byte(s))
	return len(b) / 2, strFlagUncompressed, b
}
