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

// ChallengeInfo describes one known challenge id.
//
// Tracked marks the "Challenge Accepted" set the diagnostic report
// walks. Monotonic marks counters that only ever grow in-game; those
// are the ones where a negative stored value can only mean the signed
// slot overflowed, never a legitimate count.
type ChallengeInfo struct {
	Name      string
	Tracked   bool
	Monotonic bool
	Threshold int32 // first-tier unlock threshold
}

// ChallengeCatalog is the static id table, keyed by the internal
// challenge id stored in the save. Built once, never mutated.
var ChallengeCatalog = map[uint32]ChallengeInfo{
	1510: {Name: "Knee-Deep in Brass", Tracked: true, Monotonic: true, Threshold: 5000},
	1512: {Name: "Longshot", Tracked: true, Monotonic: true, Threshold: 100},
	1515: {Name: "Open Wide!", Tracked: true, Monotonic: true, Threshold: 50},
	1517: {Name: "Shotgun Sniper", Tracked: true, Monotonic: true, Threshold: 25},
	1519: {Name: "Crouching Tiger, Hidden Assault Rifle", Tracked: true, Monotonic: true, Threshold: 100},
	1522: {Name: "Hail of Bullets", Tracked: true, Monotonic: true, Threshold: 2500},
	1525: {Name: "Gun Slinger", Tracked: true, Monotonic: true, Threshold: 50},
	1527: {Name: "Quickdraw", Tracked: true, Monotonic: true, Threshold: 25},
	1530: {Name: "Not Full of Monkeys", Tracked: true, Monotonic: true, Threshold: 50},
	1533: {Name: "Boomerbang", Tracked: true, Monotonic: true, Threshold: 10},
	1535: {Name: "Pull the Pin", Tracked: true, Monotonic: true, Threshold: 10},
	1538: {Name: "Longbow", Tracked: true, Monotonic: true, Threshold: 25},
	1540: {Name: "Load and Lock", Tracked: true, Monotonic: true, Threshold: 10},
	1543: {Name: "Boom", Tracked: true, Monotonic: true, Threshold: 25},
	1546: {Name: "Splish Splash", Tracked: true, Monotonic: true, Threshold: 100},
	1549: {Name: "Cowering Inferno", Tracked: true, Monotonic: true, Threshold: 25},
	1552: {Name: "Corroderate", Tracked: true, Monotonic: true, Threshold: 20},
	1555: {Name: "Say Watt?", Tracked: true, Monotonic: true, Threshold: 10},
	1558: {Name: "Slag-Licked", Tracked: true, Monotonic: true, Threshold: 5000},
	1560: {Name: "Knockin' on Heaven's Door", Tracked: true, Monotonic: true, Threshold: 5},
	1563: {Name: "Get Some", Tracked: true, Monotonic: true, Threshold: 10},
	1565: {Name: "Bounty Hunter", Tracked: true, Monotonic: true, Threshold: 5},
	1568: {Name: "World Traveler", Tracked: true, Monotonic: false, Threshold: 10},
	1571: {Name: "Sky's the Limit", Tracked: false, Monotonic: false, Threshold: 50},
}

// Unlockable feature ids stored in the unlock byte sets.
const (
	UnlockSlaughterdome byte = 1
)

// UnlockNames maps the user-facing unlock names to their feature ids.
var UnlockNames = map[string]byte{
	"slaughterdome": UnlockSlaughterdome,
}
