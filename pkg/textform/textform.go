// Package textform maps map-link tables to and from their editable YAML form.
//
// A document names the format and schema version, then lists the records as
// mappings from field name to value, in schema field order:
//
//	format: maplink
//	version: 1 # link
//	records:
//	  - destination_id: 7
//	    spawn_x: -120
//	    spawn_y: 48
//	    spawn_point: door_a
//
// String references always appear as literal strings; blob offsets never
// reach the text form.
package textform

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/maplink/pkg/codec"
)

// FormatName is the value of the document's format key
const FormatName = "maplink"

const (
	keyFormat  = "format"
	keyVersion = "version"
	keyRecords = "records"
)

// Marshal renders f as a YAML document. It only fails when a record does not
// have one value per schema field; the same File always yields the same bytes.
func Marshal(f *codec.File) ([]byte, error) {
	if f == nil || f.Schema == nil {
		return nil, fmt.Errorf("textform: file has no schema")
	}

	records := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for i, r := range f.Records {
		if len(r) != len(f.Schema.Fields) {
			return nil, fmt.Errorf("textform: record %d has %d values, schema %s has %d fields",
				i, len(r), f.Schema.Name, len(f.Schema.Fields))
		}
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for j, field := range f.Schema.Fields {
			m.Content = append(m.Content, strNode(field.Name), valueNode(field.Kind, r[j]))
		}
		records.Content = append(records.Content, m)
	}

	version := intNode(int64(f.Schema.Version))
	version.LineComment = f.Schema.Name

	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			strNode(keyFormat), strNode(FormatName),
			strNode(keyVersion), version,
			strNode(keyRecords), records,
		},
	}}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("textform: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("textform: %w", err)
	}
	return buf.Bytes(), nil
}

func strNode(s string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if strings.ContainsFunc(s, func(r rune) bool { return r != ' ' && !unicode.IsPrint(r) }) || !readsBackAsString(s) {
		n.Style = yaml.DoubleQuotedStyle
	}
	return n
}

// readsBackAsString reports whether s, written as a plain scalar, parses
// back as the same string. Merge keys, numbers, booleans, nulls and
// anything with YAML syntax in it do not.
func readsBackAsString(s string) bool {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil || len(doc.Content) != 1 {
		return false
	}
	n := doc.Content[0]
	return n.Kind == yaml.ScalarNode && n.Style == 0 && n.ShortTag() == "!!str" && n.Value == s
}

func intNode(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
}

func valueNode(kind codec.FieldKind, v codec.Value) *yaml.Node {
	switch {
	case kind == codec.KindString:
		return strNode(v.Str)
	case kind == codec.KindFloat32:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: formatFloat(v.Float)}
	default:
		return intNode(v.Int)
	}
}

// formatFloat writes the shortest text that parses back to the same float32,
// always in a form YAML resolves as a float
func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ".nan"
	case math.IsInf(v, 1):
		return ".inf"
	case math.IsInf(v, -1):
		return "-.inf"
	}
	bits := 64
	if float64(float32(v)) == v {
		bits = 32
	}
	s := strconv.FormatFloat(v, 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Unmarshal parses a YAML document back into a File. Any structural problem
// is reported as codec.ErrSchemaMismatch naming the record and field.
// Numeric range is not checked here; codec.Encode rejects values that do not
// fit their field.
func Unmarshal(data []byte) (*codec.File, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, codec.SchemaError(-1, "", "%v", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, codec.SchemaError(-1, "", "empty document")
	}
	top := deref(root.Content[0])
	if top.Kind != yaml.MappingNode {
		return nil, codec.SchemaError(-1, "", "line %d: document must be a mapping", top.Line)
	}

	values := make(map[string]*yaml.Node, 3)
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], deref(top.Content[i+1])
		switch key.Value {
		case keyFormat, keyVersion, keyRecords:
		default:
			return nil, codec.SchemaError(-1, key.Value, "line %d: unknown key", key.Line)
		}
		if _, dup := values[key.Value]; dup {
			return nil, codec.SchemaError(-1, key.Value, "line %d: duplicate key", key.Line)
		}
		values[key.Value] = val
	}
	for _, k := range []string{keyFormat, keyVersion, keyRecords} {
		if _, ok := values[k]; !ok {
			return nil, codec.SchemaError(-1, k, "missing")
		}
	}

	if n := values[keyFormat]; n.Kind != yaml.ScalarNode || n.Value != FormatName {
		return nil, codec.SchemaError(-1, keyFormat, "line %d: want %q", n.Line, FormatName)
	}

	vn := values[keyVersion]
	if vn.Kind != yaml.ScalarNode || vn.ShortTag() != "!!int" {
		return nil, codec.SchemaError(-1, keyVersion, "line %d: want an integer", vn.Line)
	}
	version, err := strconv.ParseUint(vn.Value, 0, 16)
	if err != nil {
		return nil, codec.SchemaError(-1, keyVersion, "line %d: %v", vn.Line, err)
	}
	schema, ok := codec.SchemaForVersion(uint16(version))
	if !ok {
		return nil, codec.SchemaError(-1, keyVersion, "line %d: unsupported version %d", vn.Line, version)
	}

	rn := values[keyRecords]
	if rn.Kind != yaml.SequenceNode {
		return nil, codec.SchemaError(-1, keyRecords, "line %d: want a sequence", rn.Line)
	}

	f := &codec.File{Schema: schema, Records: make([]codec.Record, 0, len(rn.Content))}
	for i, item := range rn.Content {
		r, err := parseRecord(schema, i, deref(item))
		if err != nil {
			return nil, err
		}
		f.Records = append(f.Records, r)
	}
	return f, nil
}

func parseRecord(schema *codec.Schema, index int, n *yaml.Node) (codec.Record, error) {
	if n.Kind != yaml.MappingNode {
		return nil, codec.SchemaError(index, "", "line %d: record must be a mapping", n.Line)
	}

	r := make(codec.Record, len(schema.Fields))
	seen := make([]bool, len(schema.Fields))
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], deref(n.Content[i+1])
		j := schema.FieldIndex(key.Value)
		if j < 0 {
			return nil, codec.SchemaError(index, key.Value, "line %d: unknown field for schema %s", key.Line, schema.Name)
		}
		if seen[j] {
			return nil, codec.SchemaError(index, key.Value, "line %d: duplicate field", key.Line)
		}
		seen[j] = true

		v, err := parseValue(schema.Fields[j].Kind, val)
		if err != nil {
			return nil, codec.SchemaError(index, key.Value, "line %d: %v", val.Line, err)
		}
		r[j] = v
	}
	for j, ok := range seen {
		if !ok {
			return nil, codec.SchemaError(index, schema.Fields[j].Name, "line %d: missing field", n.Line)
		}
	}
	return r, nil
}

func parseValue(kind codec.FieldKind, n *yaml.Node) (codec.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return codec.Value{}, fmt.Errorf("want a %s scalar", kind)
	}
	tag := n.ShortTag()

	switch {
	case kind == codec.KindString:
		if tag != "!!str" {
			return codec.Value{}, fmt.Errorf("want a string, got %s %q (quote it)", tag, n.Value)
		}
		return codec.String(n.Value), nil

	case kind == codec.KindFloat32:
		if tag != "!!float" && tag != "!!int" {
			return codec.Value{}, fmt.Errorf("want a number, got %s %q", tag, n.Value)
		}
		v, err := parseFloat(n.Value)
		if err != nil {
			return codec.Value{}, err
		}
		return codec.Float(v), nil

	default:
		if tag != "!!int" {
			return codec.Value{}, fmt.Errorf("want an integer, got %s %q", tag, n.Value)
		}
		v, err := parseInt(n.Value)
		if err != nil {
			return codec.Value{}, err
		}
		return codec.Int(v), nil
	}
}

// parseInt reads a YAML integer. Values beyond int64 saturate so the
// encoder reports them as out of range for their field.
func parseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 0, 64)
	if err == nil {
		return v, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return math.MinInt64, nil
		}
		return math.MaxInt64, nil
	}
	return 0, fmt.Errorf("bad integer %q", s)
}

// parseFloat reads a YAML float and rounds it to float32 precision when it
// is inside the float32 range, so text edits never carry hidden precision
func parseFloat(s string) (float64, error) {
	switch strings.ToLower(s) {
	case ".nan":
		return math.NaN(), nil
	case ".inf", "+.inf":
		return math.Inf(1), nil
	case "-.inf":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, "_", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	if math.Abs(v) <= math.MaxFloat32 {
		v = float64(float32(v))
	}
	return v, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
