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

// Package edit applies targeted mutations to a lifted character. All
// functions here are pure transformations of the in-memory structure;
// none of them read or write files. A failed mutation reports its
// error and leaves the character usable, so a batch of requested edits
// applies everything that can apply.
package edit

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/savetool/blse-go/pkg/save"
)

// Currency is a user-facing currency kind.
type Currency int

const (
	Money Currency = iota
	Eridium
	SeraphCrystals
	TorgueTokens
)

// currencySlot maps currency kinds to packed-list slots. Slot 3 is the
// bank SDU count, not a spendable currency, so it has no kind here.
var currencySlot = map[Currency]int{
	Money:          save.SlotMoney,
	Eridium:        save.SlotEridium,
	SeraphCrystals: save.SlotSeraph,
	TorgueTokens:   save.SlotTorgue,
}

func (c Currency) String() string {
	switch c {
	case Money:
		return "money"
	case Eridium:
		return "eridium"
	case SeraphCrystals:
		return "seraph crystals"
	case TorgueTokens:
		return "torgue tokens"
	}
	return fmt.Sprintf("currency-%d", int(c))
}

// User-input errors. The mutation that raised one is skipped; the
// caller applies the rest of its batch.
var (
	ErrUnknownUnlock   = errors.New("edit: unknown unlock name")
	ErrMissionNotFound = errors.New("edit: mission not found in any playthrough")
)

// SetCurrency writes amount into the currency's slot verbatim. Seraph
// crystals have a displayed in-game cap, but the game re-clamps on
// load; writing the requested value as-is preserves user intent.
func SetCurrency(c *save.Character, kind Currency, amount uint64) error {
	slot, ok := currencySlot[kind]
	if !ok {
		return fmt.Errorf("edit: no currency slot for %s", kind)
	}
	slog.Debug("setting currency", "kind", kind.String(), "amount", amount)
	return c.SetCurrencySlot(slot, amount)
}

// Unlock enables a named feature in both the unlocked and notification
// sets. Idempotent. An unrecognized name wraps ErrUnknownUnlock.
func Unlock(c *save.Character, name string) error {
	id, ok := save.UnlockNames[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrUnknownUnlock)
	}
	slog.Debug("unlocking feature", "name", name)
	c.AddUnlock(id)
	return nil
}

// FixChallengeOverflow rewrites every overflowed challenge counter to
// the maximum the signed 32-bit slot can hold. A counter is overflowed
// when it is negative while its catalog entry is monotonic; the true
// count passed 2^31-1 and wrapped. Counters already repaired stay at
// the maximum, so running the fix twice changes nothing.
func FixChallengeOverflow(c *save.Character) ([]string, error) {
	counters, err := c.Challenges()
	if err != nil {
		return nil, err
	}

	var fixed []string
	for i, ct := range counters {
		info, ok := save.ChallengeCatalog[ct.ID]
		if !ok || !info.Monotonic || ct.Value >= 0 {
			continue
		}
		counters[i].Value = math.MaxInt32
		fixed = append(fixed, info.Name)
		slog.Debug("fixed overflowed challenge", "name", info.Name)
	}

	if len(fixed) == 0 {
		return nil, nil
	}
	return fixed, c.SetChallenges(counters)
}

// resetOrder is the playthrough priority for mission resets: the
// highest difficulty first, so a second invocation walks down a tier.
var resetOrder = []int{save.PlaythroughUVHM, save.PlaythroughTVHM, save.PlaythroughNormal}

// ResetMission puts mission id back to not_started and clears its
// progress payload in the highest-priority playthrough where it is not
// already not_started. When the mission exists but every playthrough
// already has it at not_started, the call is a no-op. A mission id no
// playthrough knows wraps ErrMissionNotFound.
func ResetMission(c *save.Character, id string) error {
	states := c.Playthroughs()

	known := false
	for _, n := range resetOrder {
		for _, pt := range states {
			if pt.Number != n {
				continue
			}
			for _, m := range pt.Missions {
				if m.ID != id {
					continue
				}
				known = true
				if m.Status == save.StatusNotStarted {
					break
				}
				slog.Debug("resetting mission", "mission", id, "playthrough", save.PlaythroughName(n))
				return c.SetMission(n, id, save.StatusNotStarted, nil)
			}
		}
	}

	if !known {
		return fmt.Errorf("%q: %w", id, ErrMissionNotFound)
	}
	return nil
}
