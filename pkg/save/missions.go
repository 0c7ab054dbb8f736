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
	"fmt"

	"github.com/savetool/blse-go/pkg/wire"
)

// Status is a mission's progress state within one playthrough.
type Status int

const (
	StatusNotStarted Status = 0
	StatusActive     Status = 1
	StatusCompleted  Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	}
	return fmt.Sprintf("status-%d", int(s))
}

// ParseStatus is the inverse of Status.String, used by the JSON loader.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "not_started":
		return StatusNotStarted, nil
	case "active":
		return StatusActive, nil
	case "completed":
		return StatusCompleted, nil
	}
	return 0, fmt.Errorf("save: unknown mission status %q", s)
}

// Playthrough numbers as stored in the save.
const (
	PlaythroughNormal = 0
	PlaythroughTVHM   = 1
	PlaythroughUVHM   = 2
)

// PlaythroughName returns the common name for a playthrough number.
func PlaythroughName(n int) string {
	switch n {
	case PlaythroughNormal:
		return "Normal"
	case PlaythroughTVHM:
		return "TVHM"
	case PlaythroughUVHM:
		return "UVHM"
	}
	return fmt.Sprintf("Playthrough %d", n)
}

// Fields of a playthrough submessage and of a mission submessage.
const (
	ptFieldNumber   uint32 = 1
	ptFieldMission  uint32 = 2
	msFieldID       uint32 = 1
	msFieldStatus   uint32 = 2
	msFieldProgress uint32 = 3
)

// Mission is one mission's state within a playthrough.
type Mission struct {
	ID       string
	Status   Status
	Progress []byte
}

// PlaythroughState is one playthrough's mission table, in save order.
type PlaythroughState struct {
	Number   int
	Missions []Mission
}

// Playthroughs decodes every playthrough submessage at
// FieldPlaythroughs, in save order.
func (c *Character) Playthroughs() []PlaythroughState {
	var out []PlaythroughState
	for i := range c.nodes {
		n := &c.nodes[i]
		if n.Field != FieldPlaythroughs || n.Kind != wire.KindBytes || n.Sub == nil {
			continue
		}
		out = append(out, decodePlaythrough(n.Sub))
	}
	return out
}

func decodePlaythrough(sub []wire.Node) PlaythroughState {
	var pt PlaythroughState
	for i := range sub {
		f := &sub[i]
		switch {
		case f.Field == ptFieldNumber && f.Kind == wire.KindVarint:
			pt.Number = int(f.Value)
		case f.Field == ptFieldMission && f.Kind == wire.KindBytes && f.Sub != nil:
			pt.Missions = append(pt.Missions, decodeMission(f.Sub))
		}
	}
	return pt
}

func decodeMission(sub []wire.Node) Mission {
	var m Mission
	for i := range sub {
		f := &sub[i]
		switch {
		case f.Field == msFieldID && f.Kind == wire.KindBytes:
			m.ID = string(f.Bytes())
		case f.Field == msFieldStatus && f.Kind == wire.KindVarint:
			m.Status = Status(f.Value)
		case f.Field == msFieldProgress && f.Kind == wire.KindBytes:
			m.Progress = f.Bytes()
		}
	}
	return m
}

// SetMission rewrites the status and progress payload of mission id in
// the given playthrough. A nil progress clears the payload.
func (c *Character) SetMission(playthrough int, id string, status Status, progress []byte) error {
	for i := range c.nodes {
		n := &c.nodes[i]
		if n.Field != FieldPlaythroughs || n.Kind != wire.KindBytes || n.Sub == nil {
			continue
		}
		if playthroughNumber(n.Sub) != playthrough {
			continue
		}
		for j := range n.Sub {
			f := &n.Sub[j]
			if f.Field != ptFieldMission || f.Kind != wire.KindBytes || f.Sub == nil {
				continue
			}
			if missionID(f.Sub) != id {
				continue
			}
			for k := range f.Sub {
				mf := &f.Sub[k]
				switch mf.Field {
				case msFieldStatus:
					mf.SetVarint(uint64(status))
				case msFieldProgress:
					mf.SetBytes(progress)
				}
			}
			// The edit lives in nested nodes; stale cached
			// bytes above it would shadow the change.
			f.Invalidate()
			n.Invalidate()
			return nil
		}
		return fmt.Errorf("save: mission %q not in playthrough %d", id, playthrough)
	}
	return fmt.Errorf("save: no playthrough %d in tree", playthrough)
}

func playthroughNumber(sub []wire.Node) int {
	for i := range sub {
		if sub[i].Field == ptFieldNumber && sub[i].Kind == wire.KindVarint {
			return int(sub[i].Value)
		}
	}
	return PlaythroughNormal
}

func missionID(sub []wire.Node) string {
	for i := range sub {
		if sub[i].Field == msFieldID && sub[i].Kind == wire.KindBytes {
			return string(sub[i].Bytes())
		}
	}
	return ""
}
