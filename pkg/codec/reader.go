package codec

// Decode parses a binary map-link table into a File.
// data is neither modified nor retained.
func Decode(data []byte) (*File, error) {
	h, schema, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}

	blobStart := int64(h.StringsOffset)
	blob := data[blobStart : blobStart+int64(h.StringsSize)]
	rc := NewRecordCodec(schema)

	f := &File{Schema: schema, Records: make([]Record, 0, h.RecordCount)}
	for i := 0; i < int(h.RecordCount); i++ {
		base := int64(h.RecordsOffset) + int64(i)*int64(h.RecordSize)
		r, err := rc.Decode(data, base, i, blob, blobStart)
		if err != nil {
			return nil, err
		}
		f.Records = append(f.Records, r)
	}
	return f, nil
}
