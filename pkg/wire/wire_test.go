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

package wire_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savetool/blse-go/pkg/wire"
)

func TestDecodeScalars(t *testing.T) {
	tests := []struct {
		name  string
		data  []byte
		field uint32
		kind  wire.Kind
		value uint64
	}{
		{
			name:  "small varint",
			data:  []byte{0x08, 0x05},
			field: 1,
			kind:  wire.KindVarint,
			value: 5,
		},
		{
			name:  "two byte varint",
			data:  []byte{0x08, 0x96, 0x01},
			field: 1,
			kind:  wire.KindVarint,
			value: 150,
		},
		{
			name:  "fixed32",
			data:  []byte{0x15, 0x78, 0x56, 0x34, 0x12},
			field: 2,
			kind:  wire.KindFixed32,
			value: 0x12345678,
		},
		{
			name:  "fixed64",
			data:  []byte{0x19, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80},
			field: 3,
			kind:  wire.KindFixed64,
			value: 0x8000000000000001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := wire.Decode(tt.data)
			require.NoError(t, err)
			require.Len(t, nodes, 1)

			assert.Equal(t, tt.field, nodes[0].Field)
			assert.Equal(t, tt.kind, nodes[0].Kind)
			assert.Equal(t, tt.value, nodes[0].Value)
		})
	}
}

func TestDecodeNestedMessage(t *testing.T) {
	// Field 4 wraps a message holding field 1 varint 5.
	data := []byte{0x22, 0x02, 0x08, 0x05}

	nodes, err := wire.Decode(data)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	n := nodes[0]
	assert.Equal(t, wire.KindBytes, n.Kind)
	require.Len(t, n.Sub, 1)
	assert.Equal(t, uint32(1), n.Sub[0].Field)
	assert.Equal(t, uint64(5), n.Sub[0].Value)
	assert.Equal(t, []byte{0x08, 0x05}, n.Raw, "original bytes kept alongside the parse")
}

func TestDecodeOpaqueFallback(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"lone continuation byte", []byte{0xff}},
		{"text blob", []byte("hello")},
		{"truncated inner length", []byte{0x12, 0x10, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte{0x22, byte(len(tt.payload))}, tt.payload...)

			nodes, err := wire.Decode(data)
			require.NoError(t, err)
			require.Len(t, nodes, 1)

			assert.Nil(t, nodes[0].Sub, "unparseable payload must stay opaque")
			assert.Equal(t, tt.payload, nodes[0].Raw)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"truncated key", []byte{0xff}},
		{"truncated varint value", []byte{0x08, 0x80}},
		{"truncated fixed32", []byte{0x15, 0x01, 0x02}},
		{"truncated fixed64", []byte{0x19, 0x01}},
		{"length past end", []byte{0x22, 0x7f, 0x01}},
		{"group wire kind", []byte{0x0b}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wire.Decode(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodePreservesSiblingsOnError(t *testing.T) {
	// One good varint field, then a field claiming more bytes than
	// remain.
	data := []byte{0x08, 0x05, 0x22, 0x7f, 0x01}

	nodes, err := wire.Decode(data)
	assert.Error(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, uint64(5), nodes[0].Value)
}

func TestRoundTripPreservesUnknownFields(t *testing.T) {
	// Mixed sequence: varint, opaque blob, repeated field, nested
	// message. Nothing mutated, so the bytes must survive exactly.
	data := []byte{
		0x08, 0x96, 0x01, // field 1 varint 150
		0x3a, 0x03, 0xff, 0xfe, 0xfd, // field 7 opaque blob
		0x08, 0x00, // field 1 again, order preserved
		0x22, 0x04, 0x08, 0x05, 0x10, 0x2a, // field 4 nested message
		0x15, 0x01, 0x02, 0x03, 0x04, // field 2 fixed32
	}

	nodes, err := wire.Decode(data)
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	assert.Equal(t, data, wire.Encode(nodes))
}

func TestMutatedNodeReencodes(t *testing.T) {
	data := []byte{0x22, 0x04, 0x08, 0x05, 0x10, 0x2a}

	nodes, err := wire.Decode(data)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Len(t, nodes[0].Sub, 2)

	nodes[0].Sub[0].SetVarint(7)
	nodes[0].Invalidate()

	again, err := wire.Decode(wire.Encode(nodes))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), again[0].Sub[0].Value)
	assert.Equal(t, uint64(42), again[0].Sub[1].Value)
}

func TestStaleBytesShadowNestedEdits(t *testing.T) {
	data := []byte{0x22, 0x02, 0x08, 0x05}

	nodes, err := wire.Decode(data)
	require.NoError(t, err)

	// Without Invalidate the cached payload wins; this pins the
	// contract the save package relies on.
	nodes[0].Sub[0].SetVarint(9)
	assert.Equal(t, data, wire.Encode(nodes))

	nodes[0].Invalidate()
	assert.NotEqual(t, data, wire.Encode(nodes))
}

func TestPackedRoundTrip(t *testing.T) {
	vals := []uint64{0, 1, 300, 1 << 40, 42}

	decoded, err := wire.DecodePacked(wire.AppendPacked(nil, vals))
	require.NoError(t, err)
	assert.Equal(t, vals, decoded)
}

func TestDecodePackedTruncated(t *testing.T) {
	_, err := wire.DecodePacked([]byte{0x96})
	assert.Error(t, err)
}

func TestTreeJSONRoundTrip(t *testing.T) {
	data := []byte{
		0x08, 0x96, 0x01,
		0x22, 0x02, 0x08, 0x05,
		0x3a, 0x03, 0xff, 0xfe, 0xfd,
	}

	nodes, err := wire.Decode(data)
	require.NoError(t, err)

	rebuilt, err := wire.NodesFromJSON(wire.TreeJSON(nodes))
	require.NoError(t, err)

	// JSON rebuild sorts by field number; this tree is already in
	// field order, so the bytes come back identical.
	assert.Equal(t, data, wire.Encode(rebuilt))
}

// The JSON form must survive actual marshal text, not just the
// in-memory map, and scalars past 2^53 must come back exact.
func TestTreeJSONSurvivesMarshal(t *testing.T) {
	data := []byte{
		0x08, 0x96, 0x01, // field 1 varint 150
		0x19, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, // field 3 fixed64, past 2^53
		0x3a, 0x03, 0xff, 0xfe, 0xfd, // field 7 opaque blob
	}

	nodes, err := wire.Decode(data)
	require.NoError(t, err)

	text, err := json.Marshal(wire.TreeJSON(nodes))
	require.NoError(t, err)

	var tree map[string]any
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&tree))

	rebuilt, err := wire.NodesFromJSON(tree)
	require.NoError(t, err)
	assert.Equal(t, data, wire.Encode(rebuilt))
}

func TestNodesFromJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		tree map[string]any
	}{
		{"non-numeric field", map[string]any{"abc": []any{}}},
		{"entry not a list", map[string]any{"1": "nope"}},
		{"unknown wire kind", map[string]any{"1": []any{map[string]any{"wire": "spiral"}}}},
		{"missing scalar value", map[string]any{"1": []any{map[string]any{"wire": "varint"}}}},
		{"bad base64", map[string]any{"1": []any{map[string]any{"wire": "bytes", "data": "@@@"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wire.NodesFromJSON(tt.tree)
			assert.Error(t, err)
		})
	}
}
