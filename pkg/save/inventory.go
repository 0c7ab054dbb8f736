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

package save

import (
	"github.com/savetool/blse-go/pkg/wire"
)

// Fields of an inventory entry submessage.
const (
	invFieldSerial   uint32 = 1
	invFieldQuantity uint32 = 2
	invFieldEquipped uint32 = 3
)

// InventorySections lists the inventory field numbers in export order.
var InventorySections = []struct {
	Field uint32
	Name  string
}{
	{FieldBank, "Bank"},
	{FieldItems, "Items"},
	{FieldWeapons, "Weapons"},
}

// InventoryEntry is one bank, item or weapon slot. The serial blob is
// the bit-packed sub-format handled by the item package; at this layer
// it is opaque bytes.
type InventoryEntry struct {
	Section  uint32
	Serial   []byte
	Quantity uint32
	Equipped bool
}

// Inventory collects every entry across the bank, item and weapon
// sections, in section order then save order.
func (c *Character) Inventory() []InventoryEntry {
	var out []InventoryEntry
	for _, sec := range InventorySections {
		for i := range c.nodes {
			n := &c.nodes[i]
			if n.Field != sec.Field || n.Kind != wire.KindBytes || n.Sub == nil {
				continue
			}
			out = append(out, decodeEntry(sec.Field, n.Sub))
		}
	}
	return out
}

func decodeEntry(section uint32, sub []wire.Node) InventoryEntry {
	e := InventoryEntry{Section: section, Quantity: 1}
	for i := range sub {
		f := &sub[i]
		switch {
		case f.Field == invFieldSerial && f.Kind == wire.KindBytes:
			e.Serial = f.Bytes()
		case f.Field == invFieldQuantity && f.Kind == wire.KindVarint:
			e.Quantity = uint32(f.Value)
		case f.Field == invFieldEquipped && f.Kind == wire.KindVarint:
			e.Equipped = f.Value != 0
		}
	}
	return e
}

// AddBankItem appends a new bank entry holding the given serial blob.
// Imported items arrive unequipped with quantity 1.
func (c *Character) AddBankItem(serial []byte) {
	node := c.append(FieldBank)
	node.SetSub([]wire.Node{
		{Field: invFieldSerial, Kind: wire.KindBytes, Raw: serial},
		{Field: invFieldQuantity, Kind: wire.KindVarint, Value: 1},
		{Field: invFieldEquipped, Kind: wire.KindVarint, Value: 0},
	})
}
