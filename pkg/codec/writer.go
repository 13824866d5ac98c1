package codec

import (
	"fmt"
	"math"
)

// Encode serializes f into a freshly laid out binary table:
// header, record array, then the deduplicated string blob.
// Every record is validated before any byte is produced.
func Encode(f *File) ([]byte, error) {
	if f == nil || f.Schema == nil {
		return nil, fmt.Errorf("encode: file has no schema")
	}
	rc := NewRecordCodec(f.Schema)
	for i, r := range f.Records {
		if err := rc.Validate(i, r); err != nil {
			return nil, err
		}
	}

	pool := BuildStringPool(f)

	stride := int64(f.Schema.Stride())
	recordsOffset := int64(HeaderSize)
	stringsOffset := recordsOffset + int64(len(f.Records))*stride
	total := stringsOffset + int64(pool.Size())
	if total > math.MaxUint32 {
		return nil, recordError(ErrUnencodableValue, -1, "", -1, "encoded table needs %d bytes, offsets are 32-bit", total)
	}

	buf := make([]byte, stringsOffset, total)
	for i, r := range f.Records {
		base := recordsOffset + int64(i)*stride
		rc.Encode(buf[base:base+stride], r, pool)
	}
	buf = pool.AppendBlob(buf)

	Header{
		Magic:         Magic,
		Version:       f.Schema.Version,
		RecordSize:    uint16(stride),
		RecordCount:   uint32(len(f.Records)),
		RecordsOffset: uint32(recordsOffset),
		StringsOffset: uint32(stringsOffset),
		StringsSize:   pool.Size(),
	}.put(buf[:HeaderSize])

	return buf, nil
}

// BuildStringPool interns every string field of f in record order, then
// field order, so the same model always yields the same blob.
func BuildStringPool(f *File) *StringPool {
	pool := NewStringPool()
	if !f.Schema.HasStrings() {
		return pool
	}
	for _, r := range f.Records {
		for i, field := range f.Schema.Fields {
			if field.Kind == KindString && i < len(r) {
				pool.Add(r[i].Str)
			}
		}
	}
	return pool
}
