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

package save_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savetool/blse-go/pkg/item"
	"github.com/savetool/blse-go/pkg/save"
	"github.com/savetool/blse-go/pkg/wire"
)

// testSerial builds a valid serial blob for fixtures.
func testSerial(t *testing.T, category item.Category, seed int) []byte {
	t.Helper()

	parts := make([]int, item.SlotCount(category))
	for i := range parts {
		parts[i] = (seed + i*3) % 100
	}
	serial, err := item.EncodeSerial(&item.PartList{
		Category: category,
		Version:  item.SerialVersion,
		Parts:    parts,
	})
	require.NoError(t, err)
	return serial
}

func challengeBlob(counters []save.ChallengeCounter) []byte {
	data := binary.LittleEndian.AppendUint32(nil, uint32(len(counters)))
	for _, ct := range counters {
		data = binary.LittleEndian.AppendUint32(data, ct.ID)
		data = binary.LittleEndian.AppendUint32(data, uint32(ct.Value))
	}
	return data
}

func missionNode(id string, status save.Status, progress []byte) wire.Node {
	return wire.Node{Field: 2, Kind: wire.KindBytes, Sub: []wire.Node{
		{Field: 1, Kind: wire.KindBytes, Raw: []byte(id)},
		{Field: 2, Kind: wire.KindVarint, Value: uint64(status)},
		{Field: 3, Kind: wire.KindBytes, Raw: progress},
	}}
}

func playthroughNode(number int, missions ...wire.Node) wire.Node {
	sub := []wire.Node{{Field: 1, Kind: wire.KindVarint, Value: uint64(number)}}
	return wire.Node{Field: save.FieldPlaythroughs, Kind: wire.KindBytes, Sub: append(sub, missions...)}
}

func entryNode(field uint32, serial []byte, quantity uint64, equipped uint64) wire.Node {
	return wire.Node{Field: field, Kind: wire.KindBytes, Sub: []wire.Node{
		{Field: 1, Kind: wire.KindBytes, Raw: serial},
		{Field: 2, Kind: wire.KindVarint, Value: quantity},
		{Field: 3, Kind: wire.KindVarint, Value: equipped},
	}}
}

// fixtureBytes builds the encoded payload of a small but complete
// character: currencies, challenges, three playthroughs, unlock sets,
// one entry per inventory section, and an unmapped field 99.
func fixtureBytes(t *testing.T) []byte {
	t.Helper()

	nodes := []wire.Node{
		{Field: save.FieldCurrency, Kind: wire.KindBytes,
			Raw: wire.AppendPacked(nil, []uint64{1000, 20, 3, 2, 7})},
		{Field: save.FieldChallenges, Kind: wire.KindBytes,
			Raw: challengeBlob([]save.ChallengeCounter{
				{ID: 1510, Value: 12000},
				{ID: 1512, Value: 50},
			})},
		playthroughNode(0,
			missionNode("sanctuary_hole", save.StatusCompleted, []byte{0xde, 0xad}),
			missionNode("bright_lights", save.StatusActive, []byte{0x01, 0x80}),
		),
		playthroughNode(1,
			missionNode("sanctuary_hole", save.StatusActive, []byte{0xde, 0xad}),
		),
		playthroughNode(2,
			missionNode("sanctuary_hole", save.StatusActive, []byte{0xde, 0xad}),
		),
		{Field: save.FieldUnlocks, Kind: wire.KindBytes, Raw: []byte{2}},
		{Field: save.FieldUnlockNotes, Kind: wire.KindBytes, Raw: []byte{2}},
		entryNode(save.FieldBank, testSerial(t, item.CategoryItem, 11), 1, 0),
		entryNode(save.FieldItems, testSerial(t, item.CategoryItem, 29), 3, 0),
		entryNode(save.FieldWeapons, testSerial(t, item.CategoryWeapon, 5), 1, 1),
		{Field: 99, Kind: wire.KindBytes, Raw: []byte{0xff, 0xfe, 0xfd}},
	}

	return wire.Encode(nodes)
}

func fixture(t *testing.T) *save.Character {
	t.Helper()

	nodes, err := wire.Decode(fixtureBytes(t))
	require.NoError(t, err)
	return save.Lift(nodes)
}

func TestLowerUntouchedIsByteIdentical(t *testing.T) {
	payload := fixtureBytes(t)

	nodes, err := wire.Decode(payload)
	require.NoError(t, err)

	assert.Equal(t, payload, wire.Encode(save.Lift(nodes).Lower()))
}

func TestCurrencies(t *testing.T) {
	c := fixture(t)

	vals, err := c.Currencies()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1000, 20, 3, 2, 7}, vals)
}

func TestSetCurrencySlot(t *testing.T) {
	c := fixture(t)

	require.NoError(t, c.SetCurrencySlot(save.SlotSeraph, 10000))

	// The edit must survive a full encode/decode cycle and leave
	// unmapped fields untouched.
	nodes, err := wire.Decode(wire.Encode(c.Lower()))
	require.NoError(t, err)
	again := save.Lift(nodes)

	vals, err := again.Currencies()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), vals[save.SlotSeraph])
	assert.Equal(t, uint64(1000), vals[save.SlotMoney])
}

func TestSetCurrencySlotOutOfRange(t *testing.T) {
	c := fixture(t)
	assert.Error(t, c.SetCurrencySlot(17, 1))
}

func TestCurrencyMissingField(t *testing.T) {
	c := save.Lift(nil)

	_, err := c.Currencies()
	assert.Error(t, err)
}

func TestChallengesRoundTrip(t *testing.T) {
	c := fixture(t)

	counters, err := c.Challenges()
	require.NoError(t, err)
	require.Len(t, counters, 2)
	assert.Equal(t, uint32(1510), counters[0].ID)
	assert.Equal(t, int32(12000), counters[0].Value)

	counters[1].Value = -7
	require.NoError(t, c.SetChallenges(counters))

	again, err := c.Challenges()
	require.NoError(t, err)
	assert.Equal(t, int32(-7), again[1].Value)
}

func TestChallengesMalformedBlob(t *testing.T) {
	nodes := []wire.Node{{
		Field: save.FieldChallenges,
		Kind:  wire.KindBytes,
		Raw:   []byte{0x10, 0x00, 0x00, 0x00, 0x01}, // claims 16 entries
	}}

	_, err := save.Lift(nodes).Challenges()
	assert.Error(t, err)
}

func TestPlaythroughs(t *testing.T) {
	c := fixture(t)

	pts := c.Playthroughs()
	require.Len(t, pts, 3)

	assert.Equal(t, save.PlaythroughNormal, pts[0].Number)
	require.Len(t, pts[0].Missions, 2)
	assert.Equal(t, "sanctuary_hole", pts[0].Missions[0].ID)
	assert.Equal(t, save.StatusCompleted, pts[0].Missions[0].Status)
	assert.Equal(t, []byte{0xde, 0xad}, pts[0].Missions[0].Progress)

	assert.Equal(t, save.PlaythroughUVHM, pts[2].Number)
	assert.Equal(t, save.StatusActive, pts[2].Missions[0].Status)
}

func TestSetMission(t *testing.T) {
	c := fixture(t)

	require.NoError(t, c.SetMission(save.PlaythroughUVHM, "sanctuary_hole", save.StatusNotStarted, nil))

	// Verify through a full encode/decode cycle so stale cached
	// bytes would be caught.
	nodes, err := wire.Decode(wire.Encode(c.Lower()))
	require.NoError(t, err)
	pts := save.Lift(nodes).Playthroughs()

	require.Len(t, pts, 3)
	assert.Equal(t, save.StatusNotStarted, pts[2].Missions[0].Status)
	assert.Empty(t, pts[2].Missions[0].Progress)

	// Other playthroughs untouched.
	assert.Equal(t, save.StatusActive, pts[1].Missions[0].Status)
	assert.Equal(t, save.StatusCompleted, pts[0].Missions[0].Status)
}

func TestSetMissionUnknown(t *testing.T) {
	c := fixture(t)

	assert.Error(t, c.SetMission(save.PlaythroughNormal, "no_such_mission", save.StatusActive, nil))
	assert.Error(t, c.SetMission(7, "sanctuary_hole", save.StatusActive, nil))
}

func TestAddUnlock(t *testing.T) {
	c := fixture(t)

	c.AddUnlock(save.UnlockSlaughterdome)
	assert.Equal(t, []byte{2, 1}, c.UnlockedFeatures())

	// Idempotent.
	c.AddUnlock(save.UnlockSlaughterdome)
	assert.Equal(t, []byte{2, 1}, c.UnlockedFeatures())
}

func TestAddUnlockCreatesFields(t *testing.T) {
	c := save.Lift(nil)

	c.AddUnlock(save.UnlockSlaughterdome)
	assert.Equal(t, []byte{1}, c.UnlockedFeatures())
}

func TestInventory(t *testing.T) {
	c := fixture(t)

	entries := c.Inventory()
	require.Len(t, entries, 3)

	assert.Equal(t, save.FieldBank, entries[0].Section)
	assert.Equal(t, uint32(1), entries[0].Quantity)
	assert.False(t, entries[0].Equipped)

	assert.Equal(t, save.FieldItems, entries[1].Section)
	assert.Equal(t, uint32(3), entries[1].Quantity)

	assert.Equal(t, save.FieldWeapons, entries[2].Section)
	assert.True(t, entries[2].Equipped)
}

// Exported codes re-imported into an empty bank must reproduce the
// original serial blobs bit for bit.
func TestItemCodesSurviveReimport(t *testing.T) {
	c := fixture(t)

	var codes []string
	var originals [][]byte
	for _, e := range c.Inventory() {
		codes = append(codes, item.ToCode(e.Serial))
		originals = append(originals, e.Serial)
	}
	require.Len(t, codes, 3)

	fresh := save.Lift(nil)
	for _, code := range codes {
		serial, err := item.FromCode(code)
		require.NoError(t, err)
		fresh.AddBankItem(serial)
	}

	imported := fresh.Inventory()
	require.Len(t, imported, len(originals))
	for i, e := range imported {
		assert.Equal(t, originals[i], e.Serial)
		assert.Equal(t, save.FieldBank, e.Section)
	}
}

// One item with a bad checksum nibble must not get in the way of the
// rest of the inventory: the tree layer treats serials as opaque, and
// only that serial decodes flagged.
func TestCorruptSerialDoesNotBlockOthers(t *testing.T) {
	good := testSerial(t, item.CategoryItem, 11)
	bad := testSerial(t, item.CategoryItem, 29)
	bad[3] ^= 0x01

	nodes, err := wire.Decode(wire.Encode([]wire.Node{
		entryNode(save.FieldItems, good, 1, 0),
		entryNode(save.FieldItems, bad, 1, 0),
		entryNode(save.FieldWeapons, testSerial(t, item.CategoryWeapon, 5), 1, 1),
	}))
	require.NoError(t, err)

	entries := save.Lift(nodes).Inventory()
	require.Len(t, entries, 3)

	corrupt := 0
	for _, e := range entries {
		pl, err := item.DecodeSerial(e.Serial)
		require.NotNil(t, pl)
		if err != nil {
			assert.ErrorIs(t, err, item.ErrSerialChecksum)
			assert.True(t, pl.Corrupt)
			corrupt++
		}
	}
	assert.Equal(t, 1, corrupt)
}

func TestJSONRoundTrip(t *testing.T) {
	payload := fixtureBytes(t)

	nodes, err := wire.Decode(payload)
	require.NoError(t, err)
	c := save.Lift(nodes)

	rendered, err := c.RenderJSON()
	require.NoError(t, err)

	parsed, err := save.ParseJSON(rendered)
	require.NoError(t, err)

	// The fixture tree is already in field-number order with every
	// sub-field present, so the rebuilt tree is byte-identical,
	// unmapped field 99 included.
	assert.Equal(t, payload, wire.Encode(parsed.Lower()))
}

// Unmapped scalars ride through the raw bucket; one past 2^53 must
// come back exact on the JSON input path.
func TestJSONRoundTripLargeScalar(t *testing.T) {
	payload := wire.Encode([]wire.Node{
		{Field: 99, Kind: wire.KindFixed64, Value: 0x8000000000000001},
	})

	nodes, err := wire.Decode(payload)
	require.NoError(t, err)

	rendered, err := save.Lift(nodes).RenderJSON()
	require.NoError(t, err)

	parsed, err := save.ParseJSON(rendered)
	require.NoError(t, err)
	assert.Equal(t, payload, wire.Encode(parsed.Lower()))
}

func TestParseJSONErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "not json at all"},
		{"bad mission status", `{"playthroughs":[{"playthrough":0,"missions":[{"id":"m","status":"paused"}]}]}`},
		{"bad raw tree", `{"raw":{"nope":[]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := save.ParseJSON([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
