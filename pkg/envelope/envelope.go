// blse-go: Borderlands save edit suite
// Copyright (C) 2026  blse-go authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package envelope strips and applies the outer layer of a save file:
// a 4-byte CRC-32 of the decompressed payload, followed by the payload
// deflated with zlib and obfuscated with a fixed repeating XOR pad.
//
// The byte order passed by the caller controls the checksum field only.
// PC saves are little-endian, console saves are big-endian; the XOR pad
// and the zlib stream are identical on both platforms.
package envelope

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
)

// checksumSize is the width of the CRC-32 header.
const checksumSize = 4

// xorPad is the repeating obfuscation pad applied to the compressed
// body. XOR with a fixed pad is its own inverse, so the same transform
// runs on both decode and encode.
var xorPad = [4]byte{0x6a, 0x92, 0xd5, 0x2c}

// ErrChecksum reports that the stored CRC-32 does not match the
// decompressed payload. Decode still returns the payload: the usual
// reason to open a save with a bad checksum is to repair it.
var ErrChecksum = errors.New("envelope: checksum mismatch")

// Error is a fatal container fault. A save whose body does not inflate
// cannot be decoded at all.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("envelope: %s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Checksum computes the CRC-32 a well-formed envelope stores for the
// given decompressed payload.
func Checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// Decode unwraps raw save file bytes into the decompressed payload.
//
// A payload that fails to inflate is fatal and returns a nil payload
// with an *Error. A checksum mismatch is not: the payload is returned
// together with an error wrapping ErrChecksum, and a warning is logged.
func Decode(data []byte, order binary.ByteOrder) ([]byte, error) {
	if len(data) < checksumSize {
		return nil, &Error{Op: "decode", Err: fmt.Errorf("%d bytes is too short for a save envelope", len(data))}
	}

	want := order.Uint32(data[:checksumSize])
	body := applyPad(data[checksumSize:])

	zr, err := zlib.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "decode", Err: err}
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, &Error{Op: "decode", Err: err}
	}

	if got := Checksum(payload); got != want {
		slog.Warn("save checksum mismatch, file may be corrupt",
			"stored", fmt.Sprintf("%08x", want),
			"computed", fmt.Sprintf("%08x", got),
		)
		return payload, fmt.Errorf("stored %08x, computed %08x: %w", want, got, ErrChecksum)
	}

	return payload, nil
}

// Encode wraps a decompressed payload back into save file bytes:
// deflate, obfuscate, prepend a fresh checksum.
func Encode(payload []byte, order binary.ByteOrder) ([]byte, error) {
	var buf bytes.Buffer

	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, &Error{Op: "encode", Err: err}
	}
	if err := zw.Close(); err != nil {
		return nil, &Error{Op: "encode", Err: err}
	}

	out := make([]byte, checksumSize, checksumSize+buf.Len())
	order.PutUint32(out, Checksum(payload))
	out = append(out, applyPad(buf.Bytes())...)

	return out, nil
}

// applyPad XORs data with the repeating pad. Self-inverse.
func applyPad(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ xorPad[i%len(xorPad)]
	}
	return out
}
