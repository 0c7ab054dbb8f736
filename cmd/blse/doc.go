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

/*
blse decodes, edits and re-encodes Borderlands save files.

The input is a native save file (or, with -j, the JSON form produced by
-o json). Requested edits apply in a fixed order: currencies, unlocks,
challenge overflow repair, mission reset, item import. The result is
written in the format chosen with -o:

	savegame     native save bytes (default)
	decoded      the decompressed field payload, no interpretation
	decodedjson  every field in generic numbered form, as JSON
	json         known fields by name, the rest passed through, as JSON
	items        one portable BL2(...) code per inventory item
	none         verify and report only

Usage:

	blse [flags] <input> [output]

Input and output may be "-" for stdin and stdout. Console saves store
the checksum big-endian; pass --big-endian for those.
*/
package main
