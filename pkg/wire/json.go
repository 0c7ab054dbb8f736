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

package wire

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// TreeJSON renders a node sequence as a JSON-marshalable structure for
// the decodedjson output mode: a map from field number to the list of
// that field's occurrences, in wire order. Scalars render as numbers,
// opaque blobs as base64 strings, parsed submessages recursively.
func TreeJSON(nodes []Node) map[string]any {
	out := make(map[string]any)
	for i := range nodes {
		n := &nodes[i]
		key := strconv.FormatUint(uint64(n.Field), 10)

		var v any
		switch n.Kind {
		case KindBytes:
			entry := map[string]any{"wire": n.Kind.String()}
			if n.Sub != nil {
				entry["message"] = TreeJSON(n.Sub)
			} else {
				entry["data"] = base64.StdEncoding.EncodeToString(n.Bytes())
			}
			v = entry
		default:
			v = map[string]any{"wire": n.Kind.String(), "value": n.Value}
		}

		list, _ := out[key].([]any)
		out[key] = append(list, v)
	}
	return out
}

// NodesFromJSON rebuilds a node sequence from the TreeJSON rendering.
// JSON objects are unordered, so fields come back sorted by number
// with repeats kept in list order. That matches what the game's own
// serializer emits; byte positions of a hand-edited tree are not
// preserved, values are.
func NodesFromJSON(tree map[string]any) ([]Node, error) {
	fields := make([]uint64, 0, len(tree))
	for key := range tree {
		f, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("wire: field key %q is not a number", key)
		}
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	var nodes []Node
	for _, f := range fields {
		entries, ok := tree[strconv.FormatUint(f, 10)].([]any)
		if !ok {
			return nil, fmt.Errorf("wire: field %d is not a list", f)
		}
		for _, raw := range entries {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("wire: field %d has a malformed entry", f)
			}
			node, err := nodeFromJSON(uint32(f), entry)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, node)
		}
	}
	return nodes, nil
}

func nodeFromJSON(field uint32, entry map[string]any) (Node, error) {
	node := Node{Field: field}

	kind, _ := entry["wire"].(string)
	switch kind {
	case "varint":
		node.Kind = KindVarint
	case "fixed64":
		node.Kind = KindFixed64
	case "fixed32":
		node.Kind = KindFixed32
	case "bytes":
		node.Kind = KindBytes
	default:
		return node, fmt.Errorf("wire: field %d has unknown wire kind %q", field, kind)
	}

	if node.Kind != KindBytes {
		v, err := scalarValue(entry["value"])
		if err != nil {
			return node, fmt.Errorf("wire: field %d: %w", field, err)
		}
		node.Value = v
		return node, nil
	}

	if msg, ok := entry["message"].(map[string]any); ok {
		sub, err := NodesFromJSON(msg)
		if err != nil {
			return node, err
		}
		node.Sub = sub
		return node, nil
	}

	data, _ := entry["data"].(string)
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return node, fmt.Errorf("wire: field %d has undecodable data: %w", field, err)
	}
	node.Raw = raw
	if len(raw) > 0 {
		if sub, err := Decode(raw); err == nil {
			node.Sub = sub
		}
	}
	return node, nil
}

// scalarValue reads a scalar in any of the forms it arrives in: uint64
// from an in-memory TreeJSON rendering, json.Number from a UseNumber
// decoder, float64 from a plain Unmarshal. Only the first two hold the
// full 64-bit range; float64 rounds past 2^53, so exact callers must
// decode with UseNumber.
func scalarValue(raw any) (uint64, error) {
	switch v := raw.(type) {
	case uint64:
		return v, nil
	case json.Number:
		u, err := strconv.ParseUint(v.String(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("scalar value %q is not an unsigned integer", v.String())
		}
		return u, nil
	case float64:
		return uint64(v), nil
	}
	return 0, fmt.Errorf("missing a scalar value")
}
