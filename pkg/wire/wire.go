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

// Package wire decodes and re-encodes the decompressed save payload as
// a tree of numbered, typed fields, with no meaning attached to any
// field number.
//
// The format is the classic varint-keyed tag stream: each node is a
// varint key holding (field number << 3 | wire kind), followed by a
// value whose length depends on the kind. Length-delimited values are
// ambiguous by construction: a nested message and a scalar byte blob
// (an item serial, say) look the same on the wire. Decode attempts the
// nested parse first and falls back to opaque bytes, but always keeps
// the original bytes so that untouched nodes re-encode byte-for-byte.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Kind is the wire encoding of a node's value.
type Kind uint8

const (
	KindVarint  Kind = 0
	KindFixed64 Kind = 1
	KindBytes   Kind = 2
	KindFixed32 Kind = 5
)

func (k Kind) String() string {
	switch k {
	case KindVarint:
		return "varint"
	case KindFixed64:
		return "fixed64"
	case KindBytes:
		return "bytes"
	case KindFixed32:
		return "fixed32"
	}
	return fmt.Sprintf("wire-kind-%d", uint8(k))
}

// Node is one field of the tag tree.
//
// For scalar kinds the value lives in Value. For KindBytes, Raw holds
// the payload exactly as read; if the payload also parsed cleanly as a
// nested node sequence, Sub holds that parse. Mutators clear Raw so
// that Encode rebuilds the payload from Sub; as long as Raw is intact
// it is emitted verbatim, which is what keeps unknown fields lossless.
type Node struct {
	Field uint32
	Kind  Kind
	Value uint64
	Raw   []byte
	Sub   []Node
}

// SetVarint replaces the scalar value of a varint or fixed node.
func (n *Node) SetVarint(v uint64) {
	n.Value = v
}

// SetBytes replaces a length-delimited payload with raw bytes.
func (n *Node) SetBytes(b []byte) {
	n.Raw = b
	n.Sub = nil
}

// SetSub replaces a length-delimited payload with a node sequence.
func (n *Node) SetSub(sub []Node) {
	n.Sub = sub
	n.Raw = nil
}

// Invalidate discards the cached payload bytes so Encode rebuilds this
// node from Sub. Call it on every ancestor after editing a nested node
// in place, or the edit is shadowed by the stale bytes.
func (n *Node) Invalidate() {
	if n.Sub != nil {
		n.Raw = nil
	}
}

// Bytes returns the payload of a length-delimited node, re-encoding
// from Sub when the cached bytes have been invalidated.
func (n *Node) Bytes() []byte {
	if n.Raw != nil {
		return n.Raw
	}
	return Encode(n.Sub)
}

// Decode parses data as a node sequence, preserving field order and
// repeats. On a malformed node the siblings decoded so far are
// returned along with the error, so a partly damaged sequence still
// yields whatever structure it had.
func Decode(data []byte) ([]Node, error) {
	var nodes []Node

	for pos := 0; pos < len(data); {
		key, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nodes, fmt.Errorf("wire: truncated field key at offset %d", pos)
		}
		pos += n

		node := Node{Field: uint32(key >> 3), Kind: Kind(key & 7)}

		switch node.Kind {
		case KindVarint:
			v, n := binary.Uvarint(data[pos:])
			if n <= 0 {
				return nodes, fmt.Errorf("wire: truncated varint in field %d", node.Field)
			}
			node.Value = v
			pos += n

		case KindFixed64:
			if pos+8 > len(data) {
				return nodes, fmt.Errorf("wire: truncated fixed64 in field %d", node.Field)
			}
			node.Value = binary.LittleEndian.Uint64(data[pos:])
			pos += 8

		case KindFixed32:
			if pos+4 > len(data) {
				return nodes, fmt.Errorf("wire: truncated fixed32 in field %d", node.Field)
			}
			node.Value = uint64(binary.LittleEndian.Uint32(data[pos:]))
			pos += 4

		case KindBytes:
			size, n := binary.Uvarint(data[pos:])
			if n <= 0 {
				return nodes, fmt.Errorf("wire: truncated length in field %d", node.Field)
			}
			pos += n
			end := pos + int(size)
			if int(size) < 0 || end > len(data) || end < pos {
				return nodes, fmt.Errorf("wire: field %d claims %d bytes with %d remaining", node.Field, size, len(data)-pos)
			}
			node.Raw = data[pos:end:end]
			// Tentative nested parse. Failure just means the
			// payload is a scalar blob; Raw is kept either way.
			if len(node.Raw) > 0 {
				if sub, err := Decode(node.Raw); err == nil {
					node.Sub = sub
				}
			}
			pos = end

		default:
			return nodes, fmt.Errorf("wire: field %d has unsupported wire kind %d", node.Field, key&7)
		}

		nodes = append(nodes, node)
	}

	return nodes, nil
}

// Encode serializes a node sequence. Nodes whose Raw is intact are
// emitted verbatim; everything else is rebuilt with minimal varints,
// matching the encoding the game itself produces.
func Encode(nodes []Node) []byte {
	return appendNodes(nil, nodes)
}

func appendNodes(dst []byte, nodes []Node) []byte {
	for i := range nodes {
		n := &nodes[i]
		dst = binary.AppendUvarint(dst, uint64(n.Field)<<3|uint64(n.Kind))

		switch n.Kind {
		case KindVarint:
			dst = binary.AppendUvarint(dst, n.Value)
		case KindFixed64:
			dst = binary.LittleEndian.AppendUint64(dst, n.Value)
		case KindFixed32:
			dst = binary.LittleEndian.AppendUint32(dst, uint32(n.Value))
		case KindBytes:
			payload := n.Bytes()
			dst = binary.AppendUvarint(dst, uint64(len(payload)))
			dst = append(dst, payload...)
		}
	}
	return dst
}

// DecodePacked reads a payload of back-to-back varints with no keys,
// the layout the currency list uses.
func DecodePacked(data []byte) ([]uint64, error) {
	var vals []uint64
	for pos := 0; pos < len(data); {
		v, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("wire: truncated packed varint at offset %d", pos)
		}
		vals = append(vals, v)
		pos += n
	}
	return vals, nil
}

// AppendPacked appends values as back-to-back varints.
func AppendPacked(dst []byte, vals []uint64) []byte {
	for _, v := range vals {
		dst = binary.AppendUvarint(dst, v)
	}
	return dst
}
