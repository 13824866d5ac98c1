package codec

import (
	"fmt"
	"math"
)

// FieldKind identifies the binary representation of a record field
type FieldKind uint8

const (
	KindUint8 FieldKind = iota + 1
	KindUint16
	KindInt16
	KindUint32
	KindInt32
	KindFloat32
	KindString // 4-byte offset into the string blob
)

// Width returns the number of bytes the kind occupies inside a record
func (k FieldKind) Width() int {
	switch k {
	case KindUint8:
		return 1
	case KindUint16, KindInt16:
		return 2
	case KindUint32, KindInt32, KindFloat32, KindString:
		return 4
	default:
		return 0
	}
}

// IsInteger reports whether values of this kind live in Value.Int
func (k FieldKind) IsInteger() bool {
	switch k {
	case KindUint8, KindUint16, KindInt16, KindUint32, KindInt32:
		return true
	}
	return false
}

// Range returns the inclusive bounds of an integer kind
func (k FieldKind) Range() (lo, hi int64) {
	switch k {
	case KindUint8:
		return 0, math.MaxUint8
	case KindUint16:
		return 0, math.MaxUint16
	case KindInt16:
		return math.MinInt16, math.MaxInt16
	case KindUint32:
		return 0, math.MaxUint32
	case KindInt32:
		return math.MinInt32, math.MaxInt32
	}
	return 0, 0
}

func (k FieldKind) String() string {
	switch k {
	case KindUint8:
		return "u8"
	case KindUint16:
		return "u16"
	case KindInt16:
		return "i16"
	case KindUint32:
		return "u32"
	case KindInt32:
		return "i32"
	case KindFloat32:
		return "f32"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Field describes one fixed-width slot of a record
type Field struct {
	Name   string
	Kind   FieldKind
	Offset int // byte offset inside the record
}

// Schema is the field table for one version of the map-link format
type Schema struct {
	Name    string
	Version uint16
	Fields  []Field
	stride  int
}

// newSchema lays the fields out back to back and computes the stride
func newSchema(name string, version uint16, fields ...Field) *Schema {
	s := &Schema{Name: name, Version: version}
	offset := 0
	for _, f := range fields {
		f.Offset = offset
		offset += f.Kind.Width()
		s.Fields = append(s.Fields, f)
	}
	s.stride = offset
	return s
}

// Stride returns the encoded size of one record
func (s *Schema) Stride() int {
	return s.stride
}

// FieldIndex returns the position of the named field, or -1
func (s *Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// HasStrings reports whether any field is a string reference
func (s *Schema) HasStrings() bool {
	for _, f := range s.Fields {
		if f.Kind == KindString {
			return true
		}
	}
	return false
}

var (
	// LinkSchema is the compact version 1 layout
	LinkSchema = newSchema("link", 1,
		Field{Name: "destination_id", Kind: KindUint32},
		Field{Name: "spawn_x", Kind: KindInt32},
		Field{Name: "spawn_y", Kind: KindInt32},
		Field{Name: "spawn_point", Kind: KindString},
	)

	// AreaLinkSchema is the version 2 layout carrying link identity and trigger shape data
	AreaLinkSchema = newSchema("area_link", 2,
		Field{Name: "id", Kind: KindString},
		Field{Name: "destination_id", Kind: KindUint32},
		Field{Name: "link_type", Kind: KindUint8},
		Field{Name: "flags", Kind: KindUint8},
		Field{Name: "trigger_shape", Kind: KindUint16},
		Field{Name: "trigger_x", Kind: KindInt16},
		Field{Name: "trigger_y", Kind: KindInt16},
		Field{Name: "trigger_w", Kind: KindUint16},
		Field{Name: "trigger_h", Kind: KindUint16},
		Field{Name: "spawn_x", Kind: KindFloat32},
		Field{Name: "spawn_y", Kind: KindFloat32},
		Field{Name: "spawn_point", Kind: KindString},
	)

	// GameLinkSchema is the version 3 layout of one link entry as the game
	// executable stores it: fifteen 4-byte slots, mostly string references,
	// with a float at 0x10 and an integer at 0x28. Slots without a known
	// meaning are named after their offset.
	GameLinkSchema = newSchema("game_link", 3,
		Field{Name: "id", Kind: KindString},
		Field{Name: "destination", Kind: KindString},
		Field{Name: "link_type", Kind: KindString},
		Field{Name: "field_0x0c", Kind: KindString},
		Field{Name: "field_0x10", Kind: KindFloat32},
		Field{Name: "field_0x14", Kind: KindString},
		Field{Name: "field_0x18", Kind: KindString},
		Field{Name: "field_0x1c", Kind: KindString},
		Field{Name: "field_0x20", Kind: KindString},
		Field{Name: "field_0x24", Kind: KindString},
		Field{Name: "field_0x28", Kind: KindUint32},
		Field{Name: "field_0x2c", Kind: KindString},
		Field{Name: "field_0x30", Kind: KindString},
		Field{Name: "field_0x34", Kind: KindString},
		Field{Name: "field_0x38", Kind: KindString},
	)

	schemas = map[uint16]*Schema{
		LinkSchema.Version:     LinkSchema,
		AreaLinkSchema.Version: AreaLinkSchema,
		GameLinkSchema.Version: GameLinkSchema,
	}
)

// SchemaForVersion looks up the field table for a header version
func SchemaForVersion(version uint16) (*Schema, bool) {
	s, ok := schemas[version]
	return s, ok
}
