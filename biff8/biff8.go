// Package biff8 parses individual BIFF8 record payloads from legacy .xls
// workbook streams.
//
// Each record type has a pure parse function taking the record's raw
// payload bytes (after the type/length header a stream reader strips off)
// and returning a typed record value. Parsing is strict: any length
// mismatch, unknown discriminant or non-zero reserved field fails with a
// *FormatError naming the record and the violated expectation. No partial
// records are returned.
//
// Symmetric Append functions serialize a record back to its payload form,
// so a parsed record round-trips byte for byte.
//
// All multi-byte integers are little-endian per MS-XLS.
package biff8

import "fmt"

// FormatError describes a structurally invalid record payload.
type FormatError struct {
	Record string // record name, e.g. "BOF"
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("biff8: %s record: %s", e.Record, e.Reason)
}

func formatErr(record, format string, args ...interface{}) *FormatError {
	return &FormatError{Record: record, Reason: fmt.Sprintf(format, args...)}
}

// lengthErr reports a payload whose total length does not match the
// structurally required length.
func lengthErr(record string, got, want int) *FormatError {
	return formatErr(record, "payload is %d bytes, need %d", got, want)
}
