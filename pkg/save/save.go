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

// Package save binds known field numbers of the decoded tag tree to
// their meanings: currencies, unlock sets, challenge counters, mission
// playthroughs and the item inventories. Fields the table does not
// name are never touched; they stay in the backing tree and come back
// out of Lower byte-for-byte, so a decode immediately followed by an
// encode reproduces the input even when most of it is unknown.
package save

import (
	"encoding/binary"
	"fmt"

	"github.com/savetool/blse-go/pkg/wire"
)

// Field numbers of the character message.
const (
	FieldCurrency     uint32 = 6
	FieldChallenges   uint32 = 15
	FieldPlaythroughs uint32 = 18
	FieldUnlocks      uint32 = 23
	FieldUnlockNotes  uint32 = 24
	FieldBank         uint32 = 41
	FieldItems        uint32 = 53
	FieldWeapons      uint32 = 54
)

// Slots of the packed currency list at FieldCurrency.
const (
	SlotMoney    = 0
	SlotEridium  = 1
	SlotSeraph   = 2
	SlotBankSDUs = 3
	SlotTorgue   = 4

	currencySlots = 5
)

// Character is the meaning-addressable view of one decoded save. It
// wraps the tag tree rather than copying it apart: typed accessors
// edit nodes in place, and everything unmapped rides along untouched.
type Character struct {
	nodes []wire.Node
}

// Lift wraps a decoded tag tree. The Character takes ownership of the
// slice; the caller must not keep editing it.
func Lift(nodes []wire.Node) *Character {
	return &Character{nodes: nodes}
}

// Lower returns the tag tree with all edits applied, unmapped fields
// in their original positions.
func (c *Character) Lower() []wire.Node {
	return c.nodes
}

// first returns the first node with the given field number, or nil.
func (c *Character) first(field uint32) *wire.Node {
	for i := range c.nodes {
		if c.nodes[i].Field == field {
			return &c.nodes[i]
		}
	}
	return nil
}

// append adds a fresh length-delimited node for field at the end of
// the tree. The game tolerates any field order; new fields only appear
// at the end so existing bytes keep their positions.
func (c *Character) append(field uint32) *wire.Node {
	c.nodes = append(c.nodes, wire.Node{Field: field, Kind: wire.KindBytes})
	return &c.nodes[len(c.nodes)-1]
}

// Currencies returns the packed currency list. The list always has at
// least the five known slots; saves carrying more keep their extras.
func (c *Character) Currencies() ([]uint64, error) {
	node := c.first(FieldCurrency)
	if node == nil {
		return nil, fmt.Errorf("save: no currency field in tree")
	}
	vals, err := wire.DecodePacked(node.Bytes())
	if err != nil {
		return nil, fmt.Errorf("save: currency list: %w", err)
	}
	for len(vals) < currencySlots {
		vals = append(vals, 0)
	}
	return vals, nil
}

// SetCurrencySlot stores amount in the given currency slot, verbatim.
// The game re-clamps capped currencies on load; the codec never does.
func (c *Character) SetCurrencySlot(slot int, amount uint64) error {
	vals, err := c.Currencies()
	if err != nil {
		return err
	}
	if slot < 0 || slot >= len(vals) {
		return fmt.Errorf("save: currency slot %d out of range", slot)
	}
	vals[slot] = amount
	c.first(FieldCurrency).SetBytes(wire.AppendPacked(nil, vals))
	return nil
}

// unlockSet reads the byte set stored at field, one byte per unlocked
// feature id.
func (c *Character) unlockSet(field uint32) []byte {
	node := c.first(field)
	if node == nil {
		return nil
	}
	return node.Bytes()
}

// UnlockedFeatures returns the unlocked-feature ids.
func (c *Character) UnlockedFeatures() []byte {
	return c.unlockSet(FieldUnlocks)
}

// AddUnlock inserts a feature id into both the unlocked set and the
// notification set. Inserting a present id changes nothing.
func (c *Character) AddUnlock(id byte) {
	for _, field := range []uint32{FieldUnlocks, FieldUnlockNotes} {
		node := c.first(field)
		if node == nil {
			node = c.append(field)
		}
		set := node.Bytes()
		if !contains(set, id) {
			node.SetBytes(append(append([]byte(nil), set...), id))
		}
	}
}

func contains(set []byte, id byte) bool {
	for _, b := range set {
		if b == id {
			return true
		}
	}
	return false
}

// ChallengeCounter is one stored challenge count. The game's counter
// arithmetic is unsigned-intent but the slot is a signed 32-bit int,
// so a counter past 2^31-1 shows up negative.
type ChallengeCounter struct {
	ID    uint32
	Value int32
}

// Challenges decodes the challenge blob at FieldChallenges.
// The blob interior is little-endian on every platform: a u32 entry
// count followed by (id u32, value i32) pairs.
func (c *Character) Challenges() ([]ChallengeCounter, error) {
	node := c.first(FieldChallenges)
	if node == nil {
		return nil, fmt.Errorf("save: no challenge field in tree")
	}
	data := node.Bytes()
	if len(data) < 4 {
		return nil, fmt.Errorf("save: challenge blob is %d bytes, need at least 4", len(data))
	}
	count := binary.LittleEndian.Uint32(data)
	if len(data) < 4+int(count)*8 {
		return nil, fmt.Errorf("save: challenge blob claims %d entries in %d bytes", count, len(data))
	}
	counters := make([]ChallengeCounter, count)
	for i := range counters {
		off := 4 + i*8
		counters[i] = ChallengeCounter{
			ID:    binary.LittleEndian.Uint32(data[off:]),
			Value: int32(binary.LittleEndian.Uint32(data[off+4:])),
		}
	}
	return counters, nil
}

// SetChallenges re-encodes the challenge blob.
func (c *Character) SetChallenges(counters []ChallengeCounter) error {
	node := c.first(FieldChallenges)
	if node == nil {
		node = c.append(FieldChallenges)
	}
	data := make([]byte, 4, 4+len(counters)*8)
	binary.LittleEndian.PutUint32(data, uint32(len(counters)))
	for _, ct := range counters {
		data = binary.LittleEndian.AppendUint32(data, ct.ID)
		data = binary.LittleEndian.AppendUint32(data, uint32(ct.Value))
	}
	node.SetBytes(data)
	return nil
}
