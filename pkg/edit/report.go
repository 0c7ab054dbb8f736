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

package edit

import (
	"sort"

	"github.com/savetool/blse-go/pkg/save"
)

// ChallengeStatus is one row of the challenge progress report.
type ChallengeStatus struct {
	Name       string
	Incomplete bool
	Progress   int32
	Threshold  int32
}

// ChallengeReport scans the tracked challenge set without mutating
// anything and reports, per counter, whether it still sits below its
// first unlock threshold. Rows come back sorted by name for stable
// rendering; counters for ids outside the catalog are skipped.
func ChallengeReport(c *save.Character) ([]ChallengeStatus, error) {
	counters, err := c.Challenges()
	if err != nil {
		return nil, err
	}

	var rows []ChallengeStatus
	for _, ct := range counters {
		info, ok := save.ChallengeCatalog[ct.ID]
		if !ok || !info.Tracked {
			continue
		}
		rows = append(rows, ChallengeStatus{
			Name:       info.Name,
			Incomplete: ct.Value < info.Threshold,
			Progress:   ct.Value,
			Threshold:  info.Threshold,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}
