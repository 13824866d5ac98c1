//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"testing"
)

// FuzzDecode feeds arbitrary bytes to the reader; it must fail cleanly or
// produce a file that re-encodes to a table decoding to the same model
func FuzzDecode(f *testing.F) {
	f.Add(twoLinkTable())
	if seed, err := Encode(areaLinkFile()); err == nil {
		f.Add(seed)
	}
	f.Add([]byte{})
	f.Add([]byte("MLNK"))

	f.Fuzz(func(t *testing.T, data []byte) {
		file, err := Decode(data)
		if err != nil {
			if KindOf(err) == nil {
				t.Fatalf("Decode returned an error without a kind: %v", err)
			}
			return
		}

		encoded, err := Encode(file)
		if err != nil {
			// NaN payloads and similar can still be rejected, but only as values
			if KindOf(err) != ErrUnencodableValue {
				t.Fatalf("Encode failed with unexpected error: %v", err)
			}
			return
		}

		again, err := Encode(mustDecodeFuzz(t, encoded))
		if err != nil {
			t.Fatalf("Re-encode failed: %v", err)
		}
		if !bytes.Equal(encoded, again) {
			t.Fatalf("Canonical encoding is not stable")
		}
	})
}

// FuzzEncodeStrings round-trips arbitrary string values
func FuzzEncodeStrings(f *testing.F) {
	f.Add("door_a", "door_b")
	f.Add("", "")
	f.Add("ひがし", "ひがし")

	f.Fuzz(func(t *testing.T, a, b string) {
		file := &File{Schema: LinkSchema, Records: []Record{
			{Int(1), Int(2), Int(3), String(a)},
			{Int(4), Int(5), Int(6), String(b)},
		}}

		encoded, err := Encode(file)
		if err != nil {
			if KindOf(err) != ErrUnencodableValue {
				t.Fatalf("Encode failed with unexpected error: %v", err)
			}
			return
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if decoded.Records[0][3].Str != a || decoded.Records[1][3].Str != b {
			t.Errorf("String mismatch: got %q %q, want %q %q",
				decoded.Records[0][3].Str, decoded.Records[1][3].Str, a, b)
		}
	})
}

func mustDecodeFuzz(t *testing.T, data []byte) *File {
	t.Helper()
	file, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode of canonical encoding failed: %v", err)
	}
	return file
}
