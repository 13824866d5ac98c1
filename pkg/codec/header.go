package codec

// HeaderSize is the fixed size of the file header
const HeaderSize = 32

// Magic identifies a map-link table
var Magic = [4]byte{'M', 'L', 'N', 'K'}

// Header is the fixed-size preamble of the binary file
//
//	[Magic(4)][Version(2)][RecordSize(2)][RecordCount(4)][RecordsOffset(4)]
//	[StringsOffset(4)][StringsSize(4)][Reserved(8)]
type Header struct {
	Magic         [4]byte
	Version       uint16
	RecordSize    uint16
	RecordCount   uint32
	RecordsOffset uint32
	StringsOffset uint32
	StringsSize   uint32
}

// parseHeader reads the header fields without validating them
func parseHeader(data []byte) Header {
	var h Header
	copy(h.Magic[:], data[0:4])
	h.Version = byteOrder.Uint16(data[4:6])
	h.RecordSize = byteOrder.Uint16(data[6:8])
	h.RecordCount = byteOrder.Uint32(data[8:12])
	h.RecordsOffset = byteOrder.Uint32(data[12:16])
	h.StringsOffset = byteOrder.Uint32(data[16:20])
	h.StringsSize = byteOrder.Uint32(data[20:24])
	return h
}

// put writes the header into buf[0:HeaderSize]; the reserved bytes are zeroed
func (h Header) put(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	byteOrder.PutUint16(buf[4:6], h.Version)
	byteOrder.PutUint16(buf[6:8], h.RecordSize)
	byteOrder.PutUint32(buf[8:12], h.RecordCount)
	byteOrder.PutUint32(buf[12:16], h.RecordsOffset)
	byteOrder.PutUint32(buf[16:20], h.StringsOffset)
	byteOrder.PutUint32(buf[20:24], h.StringsSize)
	clear(buf[24:HeaderSize])
}

// ReadHeader parses and bounds-checks the header of data
func ReadHeader(data []byte) (Header, *Schema, error) {
	if len(data) < HeaderSize {
		return Header{}, nil, headerError(0, "file is %d bytes, header needs %d", len(data), HeaderSize)
	}
	h := parseHeader(data)
	if h.Magic != Magic {
		return h, nil, headerError(0, "bad magic %q", h.Magic[:])
	}
	schema, ok := SchemaForVersion(h.Version)
	if !ok {
		return h, nil, headerError(4, "unsupported version %d", h.Version)
	}
	if int(h.RecordSize) != schema.Stride() {
		return h, nil, headerError(6, "record size %d, version %d uses %d", h.RecordSize, h.Version, schema.Stride())
	}

	size := int64(len(data))
	recordsStart := int64(h.RecordsOffset)
	if recordsStart < HeaderSize || recordsStart > size {
		return h, nil, headerError(12, "records offset 0x%x outside [0x%x, 0x%x]", recordsStart, HeaderSize, size)
	}
	stringsStart := int64(h.StringsOffset)
	stringsEnd := stringsStart + int64(h.StringsSize)
	if stringsStart < HeaderSize || stringsEnd > size {
		return h, nil, headerError(16, "string blob [0x%x, 0x%x) outside file of %d bytes", stringsStart, stringsEnd, size)
	}

	recordsEnd := recordsStart + int64(h.RecordCount)*int64(h.RecordSize)
	if recordsEnd > size {
		return h, nil, recordError(ErrTruncatedRecord, -1, "", recordsStart,
			"%d records of %d bytes end at 0x%x, file is %d bytes", h.RecordCount, h.RecordSize, recordsEnd, size)
	}
	if h.StringsSize > 0 && h.RecordCount > 0 && recordsStart < stringsEnd && stringsStart < recordsEnd {
		return h, nil, headerError(16, "string blob [0x%x, 0x%x) overlaps records [0x%x, 0x%x)",
			stringsStart, stringsEnd, recordsStart, recordsEnd)
	}
	return h, schema, nil
}
