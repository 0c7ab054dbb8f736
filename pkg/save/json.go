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
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/savetool/blse-go/pkg/wire"
)

// The JSON form of a lifted character. Mapped fields render by name;
// everything else lands under "raw" in the decodedjson entry format.
// Challenge names are included for the reader's benefit and ignored on
// load; the id is authoritative.
type jsonSave struct {
	Currency     *jsonCurrency     `json:"currency,omitempty"`
	Unlocks      *jsonUnlocks      `json:"unlocks,omitempty"`
	Challenges   []jsonChallenge   `json:"challenges,omitempty"`
	Playthroughs []jsonPlaythrough `json:"playthroughs,omitempty"`
	Bank         []jsonEntry       `json:"bank,omitempty"`
	Items        []jsonEntry       `json:"items,omitempty"`
	Weapons      []jsonEntry       `json:"weapons,omitempty"`
	Raw          map[string]any    `json:"raw,omitempty"`
}

type jsonCurrency struct {
	Money          uint64   `json:"money"`
	Eridium        uint64   `json:"eridium"`
	SeraphCrystals uint64   `json:"seraph_crystals"`
	BankSDUs       uint64   `json:"bank_sdus"`
	TorgueTokens   uint64   `json:"torgue_tokens"`
	Extra          []uint64 `json:"extra,omitempty"`
}

type jsonUnlocks struct {
	Features      []int `json:"features"`
	Notifications []int `json:"notifications"`
}

type jsonChallenge struct {
	ID    uint32 `json:"id"`
	Name  string `json:"name,omitempty"`
	Value int32  `json:"value"`
}

type jsonMission struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress []byte `json:"progress,omitempty"`
}

type jsonPlaythrough struct {
	Playthrough int           `json:"playthrough"`
	Name        string        `json:"name,omitempty"`
	Missions    []jsonMission `json:"missions"`
}

type jsonEntry struct {
	Serial   []byte `json:"serial"`
	Quantity uint32 `json:"quantity"`
	Equipped bool   `json:"equipped"`
}

// mappedFields are the top-level field numbers the semantic table
// names; everything else is passthrough.
var mappedFields = map[uint32]bool{
	FieldCurrency:     true,
	FieldChallenges:   true,
	FieldPlaythroughs: true,
	FieldUnlocks:      true,
	FieldUnlockNotes:  true,
	FieldBank:         true,
	FieldItems:        true,
	FieldWeapons:      true,
}

// RenderJSON serializes the character in the human-editable form used
// by the json output mode.
func (c *Character) RenderJSON() ([]byte, error) {
	var out jsonSave

	if vals, err := c.Currencies(); err == nil {
		cur := jsonCurrency{
			Money:          vals[SlotMoney],
			Eridium:        vals[SlotEridium],
			SeraphCrystals: vals[SlotSeraph],
			BankSDUs:       vals[SlotBankSDUs],
			TorgueTokens:   vals[SlotTorgue],
		}
		if len(vals) > currencySlots {
			cur.Extra = vals[currencySlots:]
		}
		out.Currency = &cur
	}

	if c.first(FieldUnlocks) != nil || c.first(FieldUnlockNotes) != nil {
		out.Unlocks = &jsonUnlocks{
			Features:      byteSetToInts(c.unlockSet(FieldUnlocks)),
			Notifications: byteSetToInts(c.unlockSet(FieldUnlockNotes)),
		}
	}

	if counters, err := c.Challenges(); err == nil {
		out.Challenges = make([]jsonChallenge, len(counters))
		for i, ct := range counters {
			out.Challenges[i] = jsonChallenge{
				ID:    ct.ID,
				Name:  ChallengeCatalog[ct.ID].Name,
				Value: ct.Value,
			}
		}
	}

	for _, pt := range c.Playthroughs() {
		jp := jsonPlaythrough{
			Playthrough: pt.Number,
			Name:        PlaythroughName(pt.Number),
			Missions:    make([]jsonMission, len(pt.Missions)),
		}
		for i, m := range pt.Missions {
			jp.Missions[i] = jsonMission{ID: m.ID, Status: m.Status.String(), Progress: m.Progress}
		}
		out.Playthroughs = append(out.Playthroughs, jp)
	}

	for _, e := range c.Inventory() {
		je := jsonEntry{Serial: e.Serial, Quantity: e.Quantity, Equipped: e.Equipped}
		switch e.Section {
		case FieldBank:
			out.Bank = append(out.Bank, je)
		case FieldItems:
			out.Items = append(out.Items, je)
		case FieldWeapons:
			out.Weapons = append(out.Weapons, je)
		}
	}

	var opaque []wire.Node
	for i := range c.nodes {
		if !mappedFields[c.nodes[i].Field] {
			opaque = append(opaque, c.nodes[i])
		}
	}
	if len(opaque) > 0 {
		out.Raw = wire.TreeJSON(opaque)
	}

	return json.MarshalIndent(&out, "", "    ")
}

// ParseJSON rebuilds a character from the RenderJSON form. Fields come
// back sorted by field number; repeated fields keep list order.
func ParseJSON(data []byte) (*Character, error) {
	var in jsonSave
	// UseNumber keeps passthrough scalars exact; a plain Unmarshal
	// routes them through float64 and rounds past 2^53.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, fmt.Errorf("save: parsing JSON: %w", err)
	}

	var nodes []wire.Node

	if in.Currency != nil {
		vals := []uint64{
			in.Currency.Money,
			in.Currency.Eridium,
			in.Currency.SeraphCrystals,
			in.Currency.BankSDUs,
			in.Currency.TorgueTokens,
		}
		vals = append(vals, in.Currency.Extra...)
		nodes = append(nodes, wire.Node{
			Field: FieldCurrency,
			Kind:  wire.KindBytes,
			Raw:   wire.AppendPacked(nil, vals),
		})
	}

	if in.Challenges != nil {
		counters := make([]ChallengeCounter, len(in.Challenges))
		for i, jc := range in.Challenges {
			counters[i] = ChallengeCounter{ID: jc.ID, Value: jc.Value}
		}
		tmp := Lift(nil)
		if err := tmp.SetChallenges(counters); err != nil {
			return nil, err
		}
		nodes = append(nodes, tmp.nodes...)
	}

	for _, jp := range in.Playthroughs {
		sub := []wire.Node{{Field: ptFieldNumber, Kind: wire.KindVarint, Value: uint64(jp.Playthrough)}}
		for _, jm := range jp.Missions {
			status, err := ParseStatus(jm.Status)
			if err != nil {
				return nil, fmt.Errorf("save: mission %q: %w", jm.ID, err)
			}
			msub := []wire.Node{
				{Field: msFieldID, Kind: wire.KindBytes, Raw: []byte(jm.ID)},
				{Field: msFieldStatus, Kind: wire.KindVarint, Value: uint64(status)},
				{Field: msFieldProgress, Kind: wire.KindBytes, Raw: jm.Progress},
			}
			sub = append(sub, wire.Node{Field: ptFieldMission, Kind: wire.KindBytes, Sub: msub})
		}
		nodes = append(nodes, wire.Node{Field: FieldPlaythroughs, Kind: wire.KindBytes, Sub: sub})
	}

	if in.Unlocks != nil {
		nodes = append(nodes,
			wire.Node{Field: FieldUnlocks, Kind: wire.KindBytes, Raw: intsToByteSet(in.Unlocks.Features)},
			wire.Node{Field: FieldUnlockNotes, Kind: wire.KindBytes, Raw: intsToByteSet(in.Unlocks.Notifications)},
		)
	}

	for _, sec := range []struct {
		field   uint32
		entries []jsonEntry
	}{
		{FieldBank, in.Bank},
		{FieldItems, in.Items},
		{FieldWeapons, in.Weapons},
	} {
		for _, je := range sec.entries {
			equipped := uint64(0)
			if je.Equipped {
				equipped = 1
			}
			nodes = append(nodes, wire.Node{
				Field: sec.field,
				Kind:  wire.KindBytes,
				Sub: []wire.Node{
					{Field: invFieldSerial, Kind: wire.KindBytes, Raw: je.Serial},
					{Field: invFieldQuantity, Kind: wire.KindVarint, Value: uint64(je.Quantity)},
					{Field: invFieldEquipped, Kind: wire.KindVarint, Value: equipped},
				},
			})
		}
	}

	if in.Raw != nil {
		raw, err := wire.NodesFromJSON(in.Raw)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, raw...)
	}

	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Field < nodes[j].Field })

	return Lift(nodes), nil
}

func byteSetToInts(set []byte) []int {
	out := make([]int, len(set))
	for i, b := range set {
		out[i] = int(b)
	}
	return out
}

func intsToByteSet(ids []int) []byte {
	out := make([]byte, len(ids))
	for i, id := range ids {
		out[i] = byte(id)
	}
	return out
}
