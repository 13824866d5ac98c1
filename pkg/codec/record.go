package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// byteOrder is the byte order of every multi-byte field in the format
var byteOrder = binary.BigEndian

// Value holds one field of a record. Integer kinds use Int, KindFloat32 uses
// Float and KindString uses Str; the other members stay zero.
type Value struct {
	Int   int64
	Float float64
	Str   string
}

// Int returns an integer field value
func Int(v int64) Value { return Value{Int: v} }

// Float returns a float field value
func Float(v float64) Value { return Value{Float: v} }

// String returns a string reference field value
func String(s string) Value { return Value{Str: s} }

// Record is one map-link entry, with values in schema field order
type Record []Value

// File is the in-memory model of a whole map-link table
type File struct {
	Schema  *Schema
	Records []Record
}

// NewFile creates an empty table for the given schema
func NewFile(schema *Schema) *File {
	return &File{Schema: schema}
}

// Append adds a record built from values in schema field order
func (f *File) Append(values ...Value) error {
	if len(values) != len(f.Schema.Fields) {
		return fmt.Errorf("record has %d values, schema %s has %d fields", len(values), f.Schema.Name, len(f.Schema.Fields))
	}
	f.Records = append(f.Records, Record(values))
	return nil
}

// Get returns a field of the record at index
func (f *File) Get(index int, field string) (Value, error) {
	i, err := f.locate(index, field)
	if err != nil {
		return Value{}, err
	}
	return f.Records[index][i], nil
}

// Set replaces a field of the record at index
func (f *File) Set(index int, field string, v Value) error {
	i, err := f.locate(index, field)
	if err != nil {
		return err
	}
	f.Records[index][i] = v
	return nil
}

func (f *File) locate(index int, field string) (int, error) {
	if index < 0 || index >= len(f.Records) {
		return 0, fmt.Errorf("record index %d out of range [0,%d)", index, len(f.Records))
	}
	i := f.Schema.FieldIndex(field)
	if i < 0 {
		return 0, fmt.Errorf("schema %s has no field %q", f.Schema.Name, field)
	}
	if i >= len(f.Records[index]) {
		return 0, fmt.Errorf("record %d has only %d values", index, len(f.Records[index]))
	}
	return i, nil
}

// RecordCodec packs and unpacks single records of one schema
type RecordCodec struct {
	schema *Schema
}

// NewRecordCodec creates a record codec for the schema
func NewRecordCodec(schema *Schema) *RecordCodec {
	return &RecordCodec{schema: schema}
}

// Schema returns the field table the codec packs against
func (c *RecordCodec) Schema() *Schema {
	return c.schema
}

// Validate checks that every value of r fits its field.
// index is only used to locate the error.
func (c *RecordCodec) Validate(index int, r Record) error {
	if len(r) != len(c.schema.Fields) {
		return recordError(ErrUnencodableValue, index, "", -1,
			"record has %d values, schema %s has %d fields", len(r), c.schema.Name, len(c.schema.Fields))
	}
	for i, f := range c.schema.Fields {
		if err := validateValue(f, r[i]); err != "" {
			return recordError(ErrUnencodableValue, index, f.Name, -1, "%s", err)
		}
	}
	return nil
}

func validateValue(f Field, v Value) string {
	switch {
	case f.Kind.IsInteger():
		if v.Float != 0 || v.Str != "" {
			return fmt.Sprintf("%s field carries a non-integer value", f.Kind)
		}
		lo, hi := f.Kind.Range()
		if v.Int < lo || v.Int > hi {
			return fmt.Sprintf("%d does not fit %s [%d, %d]", v.Int, f.Kind, lo, hi)
		}
	case f.Kind == KindFloat32:
		if v.Int != 0 || v.Str != "" {
			return "f32 field carries a non-float value"
		}
		if math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
			return ""
		}
		if math.Abs(v.Float) > math.MaxFloat32 {
			return fmt.Sprintf("%g exceeds the f32 range", v.Float)
		}
		if float64(float32(v.Float)) != v.Float {
			return fmt.Sprintf("%g is not representable as f32", v.Float)
		}
	case f.Kind == KindString:
		if v.Int != 0 || v.Float != 0 {
			return "string field carries a numeric value"
		}
		if strings.IndexByte(v.Str, 0) >= 0 {
			return "string contains a NUL byte"
		}
		if !utf8.ValidString(v.Str) {
			return "string is not valid UTF-8"
		}
	default:
		return fmt.Sprintf("unsupported field kind %s", f.Kind)
	}
	return ""
}

// Encode packs a validated record into buf, which must hold at least one stride.
// String fields are written as their offsets in pool.
func (c *RecordCodec) Encode(buf []byte, r Record, pool *StringPool) {
	for i, f := range c.schema.Fields {
		at := buf[f.Offset:]
		v := r[i]
		switch f.Kind {
		case KindUint8:
			at[0] = uint8(v.Int)
		case KindUint16, KindInt16:
			byteOrder.PutUint16(at, uint16(v.Int))
		case KindUint32, KindInt32:
			byteOrder.PutUint32(at, uint32(v.Int))
		case KindFloat32:
			byteOrder.PutUint32(at, math.Float32bits(float32(v.Float)))
		case KindString:
			byteOrder.PutUint32(at, pool.Offset(v.Str))
		}
	}
}

// Decode unpacks the record starting at data[base:], resolving string
// references against blob. blobStart is the absolute offset of blob and
// is only used for error locations.
func (c *RecordCodec) Decode(data []byte, base int64, index int, blob []byte, blobStart int64) (Record, error) {
	if base < 0 || base+int64(c.schema.Stride()) > int64(len(data)) {
		return nil, recordError(ErrTruncatedRecord, index, "", base,
			"record needs %d bytes, %d available", c.schema.Stride(), int64(len(data))-base)
	}

	r := make(Record, len(c.schema.Fields))
	for i, f := range c.schema.Fields {
		pos := base + int64(f.Offset)
		at := data[pos:]
		switch f.Kind {
		case KindUint8:
			r[i] = Int(int64(at[0]))
		case KindUint16:
			r[i] = Int(int64(byteOrder.Uint16(at)))
		case KindInt16:
			r[i] = Int(int64(int16(byteOrder.Uint16(at))))
		case KindUint32:
			r[i] = Int(int64(byteOrder.Uint32(at)))
		case KindInt32:
			r[i] = Int(int64(int32(byteOrder.Uint32(at))))
		case KindFloat32:
			r[i] = Float(float64(math.Float32frombits(byteOrder.Uint32(at))))
		case KindString:
			s, err := resolveString(blob, byteOrder.Uint32(at))
			if err != nil {
				return nil, recordError(err, index, f.Name, pos,
					"string offset 0x%x (blob at 0x%x, %d bytes)", byteOrder.Uint32(at), blobStart, len(blob))
			}
			r[i] = String(s)
		default:
			return nil, fmt.Errorf("schema %s: unsupported field kind %s", c.schema.Name, f.Kind)
		}
	}
	return r, nil
}

// resolveString reads the NUL-terminated string at offset inside blob
func resolveString(blob []byte, offset uint32) (string, error) {
	if int64(offset) >= int64(len(blob)) {
		return "", ErrUnterminatedString
	}
	end := bytes.IndexByte(blob[offset:], 0)
	if end < 0 {
		return "", ErrUnterminatedString
	}
	s := string(blob[offset : int(offset)+end])
	if !utf8.ValidString(s) {
		return "", ErrInvalidString
	}
	return s, nil
}
