// Package codec provides the binary reader and writer for map-link tables.
//
// A map-link table is a fixed-layout data file extracted from a decompressed
// game executable. It describes the transitions between maps: which map a
// link leads to, where the player spawns and which trigger area fires it.
//
// # File Format
//
// All multi-byte values are big-endian. The file is laid out as:
//
//	[Header(32)][Record 0][Record 1]...[Record N-1][String blob]
//
// Header fields:
//   - Magic: the four bytes "MLNK"
//   - Version: selects the record schema (LinkSchema, AreaLinkSchema or GameLinkSchema)
//   - RecordSize: stride of one record, must match the schema
//   - RecordCount: number of records
//   - RecordsOffset: absolute offset of the record array
//   - StringsOffset: absolute offset of the string blob
//   - StringsSize: length of the string blob in bytes
//   - Reserved: 8 zero bytes
//
// Records are read at base + index*RecordSize. String fields hold a 32-bit
// offset relative to the start of the blob, pointing at a NUL-terminated
// UTF-8 string.
//
// # Encoding
//
// The writer never reuses the offsets of the file it was decoded from. The
// string blob is rebuilt on every encode: strings are deduplicated and stored
// in first-use order (record order, then field order), so encoding the same
// File twice yields byte-identical output. All values are validated before
// any byte is produced.
//
// # Usage
//
//	file, err := codec.Decode(data)
//	if err != nil {
//	    return err
//	}
//
//	if err := file.Set(1, "destination_id", codec.Int(42)); err != nil {
//	    return err
//	}
//
//	out, err := codec.Encode(file)
//	if err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Failures are *FormatError values wrapping one of the error kinds:
//   - ErrMalformedHeader: short input, unknown magic/version, offsets outside the file
//   - ErrTruncatedRecord: the record array runs past the end of the file
//   - ErrUnterminatedString: a string offset has no terminator inside the blob
//   - ErrInvalidString: a string is not valid UTF-8
//   - ErrUnencodableValue: a value does not fit its field
//   - ErrSchemaMismatch: a text-form record does not match the schema
//
// Use errors.Is to test for a kind. The message names the byte offset,
// record index and field where they are known.
package codec
