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

package item

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// CodePrefix wraps exported item codes. The BL2(...) form is the
// interchange format third-party inventory tools trade in, so codes
// exported here paste straight into those and vice versa.
const CodePrefix = "BL2("

// ToCode renders a raw serial blob as a portable text code.
func ToCode(serial []byte) string {
	return CodePrefix + base64.StdEncoding.EncodeToString(serial) + ")"
}

// FromCode recovers the raw serial blob from a text code.
func FromCode(code string) ([]byte, error) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, CodePrefix) || !strings.HasSuffix(code, ")") {
		return nil, fmt.Errorf("item: %q is not a BL2(...) item code", code)
	}
	serial, err := base64.StdEncoding.DecodeString(code[len(CodePrefix) : len(code)-1])
	if err != nil {
		return nil, fmt.Errorf("item: undecodable item code: %w", err)
	}
	return serial, nil
}
