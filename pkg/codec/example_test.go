package codec_test

import (
	"fmt"
	"log"

	"github.com/ssargent/maplink/pkg/codec"
)

// ExampleEncode builds a small table and reads it back
func ExampleEncode() {
	file := codec.NewFile(codec.LinkSchema)
	if err := file.Append(codec.Int(7), codec.Int(-120), codec.Int(48), codec.String("door_a")); err != nil {
		log.Fatal(err)
	}
	if err := file.Append(codec.Int(9), codec.Int(10), codec.Int(20), codec.String("door_a")); err != nil {
		log.Fatal(err)
	}

	encoded, err := codec.Encode(file)
	if err != nil {
		log.Fatal(err)
	}

	// 32-byte header + 2 records of 16 bytes + "door_a\x00" stored once
	fmt.Printf("Encoded %d bytes\n", len(encoded))

	decoded, err := codec.Decode(encoded)
	if err != nil {
		log.Fatal(err)
	}

	for i := range decoded.Records {
		dest, _ := decoded.Get(i, "destination_id")
		spawn, _ := decoded.Get(i, "spawn_point")
		fmt.Printf("Record %d: destination %d spawn %s\n", i, dest.Int, spawn.Str)
	}

	// Output:
	// Encoded 71 bytes
	// Record 0: destination 7 spawn door_a
	// Record 1: destination 9 spawn door_a
}

// ExampleDecode shows how decode failures are reported
func ExampleDecode() {
	_, err := codec.Decode([]byte("MLNK"))
	fmt.Println(err)

	// Output:
	// malformed header (at offset 0x0): file is 4 bytes, header needs 32
}
