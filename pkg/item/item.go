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

// Package item handles the bit-packed serial blobs embedded in
// inventory entries. A blob is one discriminator byte (category bit
// plus format version), a sequence of part-slot values packed at the
// width the slot's table entry dictates, a 4-bit checksum, and 1-bit
// padding out to the byte boundary.
//
// Slot widths are not uniform: the in-game encoder allocates exactly
// as many bits as the largest enumerated part for that slot needs, and
// items and weapons use different tables. Bits are packed LSB-first
// within the byte stream.
package item

import (
	"errors"
	"fmt"
)

// Category selects the slot-width table.
type Category int

const (
	CategoryItem Category = iota
	CategoryWeapon
)

func (c Category) String() string {
	if c == CategoryWeapon {
		return "weapon"
	}
	return "item"
}

// SerialVersion is the format version the game writes.
const SerialVersion = 7

// slotWidths holds the per-slot bit widths, items first, weapons
// second. The first six slots are the header (set id, type, balance,
// manufacturer, grade, stage); the remaining eleven are part slots.
var slotWidths = [2][]int{
	{8, 17, 20, 11, 7, 7, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16, 16},
	{8, 13, 20, 11, 7, 7, 17, 17, 17, 17, 17, 17, 17, 17, 17, 17, 17},
}

// SlotCount returns the number of slots for a category.
func SlotCount(c Category) int {
	return len(slotWidths[c])
}

// ErrSerialChecksum reports a checksum nibble mismatch. The part list
// is still returned, flagged corrupt, so one damaged item never blocks
// the rest of an inventory.
var ErrSerialChecksum = errors.New("item: serial checksum mismatch")

// PartList is the decoded form of one serial blob. Parts holds one
// zero-indexed part id per slot; -1 marks a slot the (truncated) blob
// did not carry. Absent slots are only legal as a trailing run.
type PartList struct {
	Category Category
	Version  uint8
	Parts    []int
	Corrupt  bool
}

// DecodeSerial unpacks a serial blob slot by slot, consuming exactly
// the table width per slot. A checksum mismatch returns the decoded
// list with Corrupt set alongside an error wrapping ErrSerialChecksum.
func DecodeSerial(data []byte) (*PartList, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("item: serial blob is %d bytes, need at least 2", len(data))
	}

	disc := data[0]
	pl := &PartList{
		Category: Category(disc >> 7),
		Version:  disc & 0x7f,
	}

	body := data[1:]
	totalBits := len(body) * 8
	widths := slotWidths[pl.Category]

	pos := 0
	for _, w := range widths {
		if pos+w > totalBits-checksumBits {
			pl.Parts = append(pl.Parts, -1)
			continue
		}
		pl.Parts = append(pl.Parts, int(extractBits(body, pos, w)))
		pos += w
	}

	stored := extractBits(body, pos, checksumBits)
	if computed := checksumNibble(disc, body, pos); stored != computed {
		pl.Corrupt = true
		return pl, fmt.Errorf("stored %x, computed %x: %w", stored, computed, ErrSerialChecksum)
	}

	return pl, nil
}

// EncodeSerial packs a part list back into blob form, recomputing the
// checksum nibble and padding the tail bits with ones the way the game
// encoder does.
func EncodeSerial(pl *PartList) ([]byte, error) {
	widths := slotWidths[pl.Category]
	if len(pl.Parts) != len(widths) {
		return nil, fmt.Errorf("item: %s needs %d parts, got %d", pl.Category, len(widths), len(pl.Parts))
	}

	disc := byte(pl.Category)<<7 | pl.Version&0x7f

	buf := make([]byte, 40)
	pos := 0
	for slot, v := range pl.Parts {
		if v < 0 {
			// Absent slots must be trailing.
			for _, rest := range pl.Parts[slot:] {
				if rest >= 0 {
					return nil, fmt.Errorf("item: slot %d present after an absent slot", slot)
				}
			}
			break
		}
		w := widths[slot]
		if v >= 1<<w {
			return nil, fmt.Errorf("item: part %d does not fit slot %d's %d bits", v, slot, w)
		}
		putBits(buf, pos, v)
		pos += w
	}

	putBits(buf, pos, int(checksumNibble(disc, buf, pos)))
	pos += checksumBits

	if pos&7 != 0 {
		buf[pos>>3] |= 0xff << (pos & 7)
	}

	return append([]byte{disc}, buf[:(pos+7)>>3]...), nil
}

const checksumBits = 4

// checksumNibble XOR-folds every 4-bit group of the packed part bits
// plus both nibbles of the discriminator byte.
func checksumNibble(disc byte, body []byte, partBits int) uint32 {
	nib := uint32(disc>>4) ^ uint32(disc&0xf)
	for off := 0; off < partBits; off += 4 {
		n := checksumBits
		if partBits-off < n {
			n = partBits - off
		}
		nib ^= extractBits(body, off, n)
	}
	return nib & 0xf
}

// extractBits reads n bits LSB-first starting at bit offset off.
// Zero bits are implied past the end of data.
func extractBits(data []byte, off, n int) uint32 {
	var v uint64
	last := (off + n - 1) >> 3
	for idx := last; idx >= off>>3; idx-- {
		v <<= 8
		if idx < len(data) {
			v |= uint64(data[idx])
		}
	}
	return uint32(v>>(off&7)) & (1<<n - 1)
}

// putBits merges a pre-masked value into data at bit offset off,
// LSB-first.
func putBits(data []byte, off, v int) {
	u := uint64(v) << (off & 7)
	for j := off >> 3; u != 0; j++ {
		data[j] |= byte(u)
		u >>= 8
	}
}
