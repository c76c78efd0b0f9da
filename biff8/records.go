package biff8

import "encoding/binary"

// SubstreamType identifies which kind of substream a BOF record opens.
type SubstreamType uint16

const (
	SubstreamWorkbookGlobals SubstreamType = 0x0005
	SubstreamVBModule        SubstreamType = 0x0006
	SubstreamWorksheet       SubstreamType = 0x0010
	SubstreamChart           SubstreamType = 0x0020
	SubstreamMacroSheet      SubstreamType = 0x0040
	SubstreamWorkspace       SubstreamType = 0x0100
)

func (t SubstreamType) String() string {
	switch t {
	case SubstreamWorkbookGlobals:
		return "workbookGlobals"
	case SubstreamVBModule:
		return "vbModule"
	case SubstreamWorksheet:
		return "worksheet"
	case SubstreamChart:
		return "chart"
	case SubstreamMacroSheet:
		return "macroSheet"
	case SubstreamWorkspace:
		return "workspace"
	}
	return "unknown"
}

// biffVersion8 is the only BIFF version this package accepts.
const biffVersion8 = 0x0600

// BOFRecord marks the beginning of a BIFF substream.
type BOFRecord struct {
	Version           uint16
	Substream         SubstreamType
	BuildID           uint16
	BuildYear         uint16
	FileHistoryFlags  uint32
	LowestBIFFVersion uint32
}

// ParseBOF parses a 16-byte BOF payload. The version must be 0x0600 and
// the substream code must be one of the known SubstreamType values.
func ParseBOF(data []byte) (*BOFRecord, error) {
	if len(data) != 16 {
		return nil, lengthErr("BOF", len(data), 16)
	}

	r := &BOFRecord{
		Version:           binary.LittleEndian.Uint16(data[0:]),
		Substream:         SubstreamType(binary.LittleEndian.Uint16(data[2:])),
		BuildID:           binary.LittleEndian.Uint16(data[4:]),
		BuildYear:         binary.LittleEndian.Uint16(data[6:]),
		FileHistoryFlags:  binary.LittleEndian.Uint32(data[8:]),
		LowestBIFFVersion: binary.LittleEndian.Uint32(data[12:]),
	}

	if r.Version != biffVersion8 {
		return nil, formatErr("BOF", "unsupported BIFF version 0x%04x", r.Version)
	}
	switch r.Substream {
	case SubstreamWorkbookGlobals, SubstreamVBModule, SubstreamWorksheet,
		SubstreamChart, SubstreamMacroSheet, SubstreamWorkspace:
	default:
		return nil, formatErr("BOF", "unknown substream type 0x%04x", uint16(r.Substream))
	}
	return r, nil
}

// AppendBOF serializes r and appends the payload bytes to dst.
func AppendBOF(dst []byte, r *BOFRecord) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, r.Version)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(r.Substream))
	dst = binary.LittleEndian.AppendUint16(dst, r.BuildID)
	dst = binary.LittleEndian.AppendUint16(dst, r.BuildYear)
	dst = binary.LittleEndian.AppendUint32(dst, r.FileHistoryFlags)
	dst = binary.LittleEndian.AppendUint32(dst, r.LowestBIFFVersion)
	return dst
}

// DimensionsRecord gives the populated cell bounding box of a sheet.
// All fields zero means the sheet has no populated cells.
type DimensionsRecord struct {
	FirstRow         uint32
	LastRowExclusive uint32
	FirstCol         uint16
	LastColExclusive uint16
}

// ParseDimensions parses a 14-byte DIMENSIONS payload. The trailing
// reserved word is ignored.
func ParseDimensions(data []byte) (*DimensionsRecord, error) {
	if len(data) != 14 {
		return nil, lengthErr("DIMENSIONS", len(data), 14)
	}
	return &DimensionsRecord{
		FirstRow:         binary.LittleEndian.Uint32(data[0:]),
		LastRowExclusive: binary.LittleEndian.Uint32(data[4:]),
		FirstCol:         binary.LittleEndian.Uint16(data[8:]),
		LastColExclusive: binary.LittleEndian.Uint16(data[10:]),
	}, nil
}

// AppendDimensions serializes r and appends the payload bytes to dst.
func AppendDimensions(dst []byte, r *DimensionsRecord) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, r.FirstRow)
	dst = binary.LittleEndian.AppendUint32(dst, r.LastRowExclusive)
	dst = binary.LittleEndian.AppendUint16(dst, r.FirstCol)
	dst = binary.LittleEndian.AppendUint16(dst, r.LastColExclusive)
	dst = binary.LittleEndian.AppendUint16(dst, 0)
	return dst
}

// MergeCellRef is one merged cell range; all bounds are inclusive.
type MergeCellRef struct {
	FirstRow uint16
	LastRow  uint16
	FirstCol uint16
	LastCol  uint16
}

// MergeCellsRecord lists the merged ranges of a sheet, in stream order.
type MergeCellsRecord struct {
	Refs []MergeCellRef
}

// ParseMergeCells parses a MERGECELLS payload: a u16 count followed by
// count 8-byte range refs.
func ParseMergeCells(data []byte) (*MergeCellsRecord, error) {
	if len(data) < 2 {
		return nil, lengthErr("MERGECELLS", len(data), 2)
	}
	count := int(binary.LittleEndian.Uint16(data[0:]))
	if want := 2 + count*8; len(data) != want {
		return nil, formatErr("MERGECELLS", "payload is %d bytes, need %d for %d refs",
			len(data), want, count)
	}

	refs := make([]MergeCellRef, count)
	for i := range refs {
		off := 2 + i*8
		refs[i] = MergeCellRef{
			FirstRow: binary.LittleEndian.Uint16(data[off+0:]),
			LastRow:  binary.LittleEndian.Uint16(data[off+2:]),
			FirstCol: binary.LittleEndian.Uint16(data[off+4:]),
			LastCol:  binary.LittleEndian.Uint16(data[off+6:]),
		}
	}
	return &MergeCellsRecord{Refs: refs}, nil
}

// AppendMergeCells serializes r and appends the payload bytes to dst.
func AppendMergeCells(dst []byte, r *MergeCellsRecord) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, uint16(len(r.Refs)))
	for _, ref := range r.Refs {
		dst = binary.LittleEndian.AppendUint16(dst, ref.FirstRow)
		dst = binary.LittleEndian.AppendUint16(dst, ref.LastRow)
		dst = binary.LittleEndian.AppendUint16(dst, ref.FirstCol)
		dst = binary.LittleEndian.AppendUint16(dst, ref.LastCol)
	}
	return dst
}

// MulBlankRecord records a run of blank cells in one row, carrying only
// their formatting. XFIndexes holds one XF table index per column in
// [ColFirst, ColLast].
type MulBlankRecord struct {
	Row       uint16
	ColFirst  uint16
	ColLast   uint16
	XFIndexes []uint16
}

// ParseMulBlank parses a MULBLANK payload: row, colFirst, one XF index per
// column, then colLast as the final word.
func ParseMulBlank(data []byte) (*MulBlankRecord, error) {
	if len(data) < 8 {
		return nil, lengthErr("MULBLANK", len(data), 8)
	}
	row := binary.LittleEndian.Uint16(data[0:])
	colFirst := binary.LittleEndian.Uint16(data[2:])
	colLast := binary.LittleEndian.Uint16(data[len(data)-2:])

	if colLast < colFirst {
		return nil, formatErr("MULBLANK", "invalid column range %d..%d", colFirst, colLast)
	}
	ncols := int(colLast-colFirst) + 1
	if want := 6 + 2*ncols; len(data) != want {
		return nil, formatErr("MULBLANK", "payload is %d bytes, need %d for %d columns",
			len(data), want, ncols)
	}

	xfs := make([]uint16, ncols)
	for i := range xfs {
		xfs[i] = binary.LittleEndian.Uint16(data[4+2*i:])
	}
	return &MulBlankRecord{Row: row, ColFirst: colFirst, ColLast: colLast, XFIndexes: xfs}, nil
}

// AppendMulBlank serializes r and appends the payload bytes to dst.
func AppendMulBlank(dst []byte, r *MulBlankRecord) []byte {
	dst = binary.LittleEndian.AppendUint16(dst, r.Row)
	dst = binary.LittleEndian.AppendUint16(dst, r.ColFirst)
	for _, xf := range r.XFIndexes {
		dst = binary.LittleEndian.AppendUint16(dst, xf)
	}
	dst = binary.LittleEndian.AppendUint16(dst, r.ColLast)
	return dst
}

// ColInfoRecord describes formatting shared by a column range.
// Width256 is the column width in 1/256ths of a character width.
type ColInfoRecord struct {
	ColFirst     uint16
	ColLast      uint16
	Width256     uint16
	XFIndex      uint16
	Hidden       bool
	OutlineLevel uint8 // 0-7
	Collapsed    bool
}

// COLINFO grbit packing, per MS-XLS 2.4.48: fHidden is bit 0, iOutLevel
// occupies bits 8-10, fCollapsed is bit 12.
const (
	colInfoHidden       = 0x0001
	colInfoOutlineShift = 8
	colInfoOutlineMask  = 0x0007
	colInfoCollapsed    = 0x1000
)

// ParseColInfo parses a 12-byte COLINFO payload. The trailing reserved
// word must be zero.
func ParseColInfo(data []byte) (*ColInfoRecord, error) {
	if len(data) != 12 {
		return nil, lengthErr("COLINFO", len(data), 12)
	}
	if reserved := binary.LittleEndian.Uint16(data[10:]); reserved != 0 {
		return nil, formatErr("COLINFO", "invalid reserved field 0x%04x", reserved)
	}

	grbit := binary.LittleEndian.Uint16(data[8:])
	return &ColInfoRecord{
		ColFirst:     binary.LittleEndian.Uint16(data[0:]),
		ColLast:      binary.LittleEndian.Uint16(data[2:]),
		Width256:     binary.LittleEndian.Uint16(data[4:]),
		XFIndex:      binary.LittleEndian.Uint16(data[6:]),
		Hidden:       grbit&colInfoHidden != 0,
		OutlineLevel: uint8(grbit >> colInfoOutlineShift & colInfoOutlineMask),
		Collapsed:    grbit&colInfoCollapsed != 0,
	}, nil
}

// AppendColInfo serializes r and appends the payload bytes to dst.
func AppendColInfo(dst []byte, r *ColInfoRecord) []byte {
	var grbit uint16
	if r.Hidden {
		grbit |= colInfoHidden
	}
	grbit |= uint16(r.OutlineLevel&colInfoOutlineMask) << colInfoOutlineShift
	if r.Collapsed {
		grbit |= colInfoCollapsed
	}

	dst = binary.LittleEndian.AppendUint16(dst, r.ColFirst)
	dst = binary.LittleEndian.AppendUint16(dst, r.ColLast)
	dst = binary.LittleEndian.AppendUint16(dst, r.Width256)
	dst = binary.LittleEndian.AppendUint16(dst, r.XFIndex)
	dst = binary.LittleEndian.AppendUint16(dst, grbit)
	dst = binary.LittleEndian.AppendUint16(dst, 0)
	return dst
}

// StyleKind discriminates the two STYLE record variants.
type StyleKind int

const (
	StyleBuiltIn StyleKind = iota
	StyleUserDefined
)

func (k StyleKind) String() string {
	if k == StyleBuiltIn {
		return "builtIn"
	}
	return "userDefined"
}

// StyleRecord names a cell style. Built-in styles carry a style ID and
// outline level; user-defined styles carry a name. Either way StyleXFIndex
// points at the style's XF table entry.
type StyleRecord struct {
	Kind         StyleKind
	StyleXFIndex uint16

	// Built-in only.
	BuiltInID    uint8
	OutlineLevel uint8

	// User-defined only.
	Name string
}

const styleBuiltInFlag = 0x8000

// ParseStyle parses a STYLE payload. Bit 15 of the leading word selects
// the built-in variant; the low 12 bits are the style XF index.
func ParseStyle(data []byte) (*StyleRecord, error) {
	if len(data) < 2 {
		return nil, lengthErr("STYLE", len(data), 2)
	}
	ixfe := binary.LittleEndian.Uint16(data[0:])
	r := &StyleRecord{StyleXFIndex: ixfe & 0x0fff}

	if ixfe&styleBuiltInFlag != 0 {
		if len(data) != 4 {
			return nil, lengthErr("STYLE", len(data), 4)
		}
		r.Kind = StyleBuiltIn
		r.BuiltInID = data[2]
		r.OutlineLevel = data[3]
		return r, nil
	}

	if len(data) < 5 {
		return nil, formatErr("STYLE", "payload is %d bytes, need at least 5 for a named style", len(data))
	}
	cch := int(binary.LittleEndian.Uint16(data[2:]))
	name, n, err := decodeChars("STYLE", data[5:], cch, data[4])
	if err != nil {
		return nil, err
	}
	if len(data) != 5+n {
		return nil, formatErr("STYLE", "payload is %d bytes, need %d for a %d-char name",
			len(data), 5+n, cch)
	}
	r.Kind = StyleUserDefined
	r.Name = name
	return r, nil
}

// AppendStyle serializes r and appends the payload bytes to dst.
func AppendStyle(dst []byte, r *StyleRecord) []byte {
	ixfe := r.StyleXFIndex & 0x0fff
	if r.Kind == StyleBuiltIn {
		dst = binary.LittleEndian.AppendUint16(dst, ixfe|styleBuiltInFlag)
		dst = append(dst, r.BuiltInID, r.OutlineLevel)
		return dst
	}

	cch, flags, chars := encodeChars(r.Name)
	dst = binary.LittleEndian.AppendUint16(dst, ixfe)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(cch))
	dst = append(dst, flags)
	dst = append(dst, chars...)
	return dst
}

// StringRecord holds the cached result of the preceding FORMULA record.
type StringRecord struct {
	Value string
}

// ParseString parses a STRING payload: a u16 character count, a flag byte
// selecting compressed or UTF-16LE storage, then exactly that many
// characters.
func ParseString(data []byte) (*StringRecord, error) {
	if len(data) < 3 {
		return nil, lengthErr("STRING", len(data), 3)
	}
	cch := int(binary.LittleEndian.Uint16(data[0:]))
	s, n, err := decodeChars("STRING", data[3:], cch, data[2])
	if err != nil {
		return nil, err
	}
	if len(data) != 3+n {
		return nil, formatErr("STRING", "payload is %d bytes, need %d for %d chars",
			len(data), 3+n, cch)
	}
	return &StringRecord{Value: s}, nil
}

// AppendString serializes r and appends the payload bytes to dst.
func AppendString(dst []byte, r *StringRecord) []byte {
	cch, flags, chars := encodeChars(r.Value)
	dst = binary.LittleEndian.AppendUint16(dst, uint16(cch))
	dst = append(dst, flags)
	dst = append(dst, chars...)
	return dst
}

// DateSystem selects the epoch for all serial date values in a workbook.
type DateSystem int

const (
	Date1900 DateSystem = iota // serial 1 = 1 Jan 1900
	Date1904                   // serial 0 = 1 Jan 1904
)

func (d DateSystem) String() string {
	if d == Date1904 {
		return "1904"
	}
	return "1900"
}

// DateModeRecord carries the workbook's date system.
type DateModeRecord struct {
	System DateSystem
}

// ParseDateMode parses a 2-byte DATEMODE payload; the value must be 0
// (1900 system) or 1 (1904 system).
func ParseDateMode(data []byte) (*DateModeRecord, error) {
	if len(data) != 2 {
		return nil, lengthErr("DATEMODE", len(data), 2)
	}
	switch v := binary.LittleEndian.Uint16(data); v {
	case 0:
		return &DateModeRecord{System: Date1900}, nil
	case 1:
		return &DateModeRecord{System: Date1904}, nil
	default:
		return nil, formatErr("DATEMODE", "invalid date system %d", v)
	}
}

// AppendDateMode serializes r and appends the payload bytes to dst.
func AppendDateMode(dst []byte, r *DateModeRecord) []byte {
	var v uint16
	if r.System == Date1904 {
		v = 1
	}
	return binary.LittleEndian.AppendUint16(dst, v)
}
