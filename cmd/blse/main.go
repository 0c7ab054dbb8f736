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

package main

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/savetool/blse-go/pkg/edit"
	"github.com/savetool/blse-go/pkg/envelope"
	"github.com/savetool/blse-go/pkg/item"
	"github.com/savetool/blse-go/pkg/save"
	"github.com/savetool/blse-go/pkg/wire"
)

var outputModes = []string{"savegame", "decoded", "decodedjson", "json", "items", "none"}

var (
	flagOutput    string
	flagJSON      bool
	flagForce     bool
	flagBigEndian bool
	flagVerbose   bool

	flagMoney   uint64
	flagEridium uint64
	flagSeraph  uint64
	flagTorgue  uint64

	flagUnlocks     []string
	flagFixOverflow bool
	flagReset       string
	flagImportItems string
	flagReport      bool
)

var rootCmd = &cobra.Command{
	Use:   "blse <input> [output]",
	Short: "Decode, edit and re-encode Borderlands save files",
	Long: `blse unwraps a save file into an editable form, applies any requested
changes, and writes the result back in the chosen output format.

Input and output may be "-" for stdin/stdout. With no output file, blse
only verifies and reports; it refuses to drop changes silently.`,
	Args:          cobra.RangeArgs(1, 2),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&flagOutput, "output", "o", "savegame",
		"output format: "+strings.Join(outputModes, ", "))
	f.BoolVarP(&flagJSON, "json", "j", false,
		"read save data from the json format rather than a savegame")
	f.BoolVarP(&flagForce, "force", "f", false,
		"overwrite the output file if it exists")
	f.BoolVar(&flagBigEndian, "big-endian", false,
		"interpret the checksum header big-endian (console saves)")
	f.BoolVarP(&flagVerbose, "verbose", "v", false,
		"log each change as it is applied")

	f.Uint64Var(&flagMoney, "money", 0, "set available money")
	f.Uint64Var(&flagEridium, "eridium", 0, "set available eridium")
	f.Uint64Var(&flagSeraph, "seraph", 0, "set available seraph crystals")
	f.Uint64Var(&flagTorgue, "torgue", 0, "set available torgue tokens")

	f.StringArrayVar(&flagUnlocks, "unlock", nil, "unlock a named feature (repeatable)")
	f.BoolVar(&flagFixOverflow, "fix-challenge-overflow", false,
		"repair challenge counters that overflowed negative")
	f.StringVar(&flagReset, "reset-mission", "",
		"reset a mission to not started in the highest active playthrough")
	f.StringVar(&flagImportItems, "import-items", "",
		"import BL2(...) item codes from a file into the bank")
	f.BoolVar(&flagReport, "report-challenges", false,
		"print per-challenge progress toward the first unlock tier")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	valid := false
	for _, m := range outputModes {
		if flagOutput == m {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unknown output format %q", flagOutput)
	}

	inName := args[0]
	outName := ""
	if len(args) == 2 {
		outName = args[1]
	}

	if outName == "" {
		if flagOutput != "savegame" && flagOutput != "none" {
			return fmt.Errorf("output format %q needs an output file", flagOutput)
		}
	} else if flagOutput == "none" {
		return errors.New("output file given with output format none")
	}

	if inName != "-" && outName != "" && outName != "-" {
		inAbs, _ := filepath.Abs(inName)
		outAbs, _ := filepath.Abs(outName)
		if inAbs == outAbs {
			return errors.New("input and output cannot be the same file")
		}
	}

	order := byteOrder()

	inData, err := readInput(inName)
	if err != nil {
		return err
	}

	payload, err := decodeInput(inData, order)
	if err != nil {
		return err
	}

	nodes, err := wire.Decode(payload)
	if err != nil {
		if len(nodes) == 0 {
			return fmt.Errorf("decoding save fields: %w", err)
		}
		slog.Warn("save fields partly unreadable, continuing with what parsed", "err", err)
	}
	ch := save.Lift(nodes)

	if err := applyEdits(cmd, ch); err != nil {
		return err
	}

	if flagReport {
		if err := printChallengeReport(ch); err != nil {
			return err
		}
	}

	newPayload := wire.Encode(ch.Lower())

	if outName == "" {
		if !bytes.Equal(newPayload, payload) {
			return errors.New("changes were made but no output file specified")
		}
		slog.Debug("no output file specified, exiting")
		return nil
	}

	out, err := renderOutput(ch, newPayload, order)
	if err != nil {
		return err
	}

	return writeOutput(inName, outName, out)
}

func byteOrder() binary.ByteOrder {
	if flagBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		slog.Debug("reading save data from stdin")
		return io.ReadAll(os.Stdin)
	}
	slog.Debug("reading save data", "file", name)
	return os.ReadFile(name)
}

// decodeInput turns the input bytes into an envelope payload,
// whichever form they arrived in.
func decodeInput(data []byte, order binary.ByteOrder) ([]byte, error) {
	if flagJSON {
		ch, err := save.ParseJSON(data)
		if err != nil {
			return nil, err
		}
		return wire.Encode(ch.Lower()), nil
	}

	payload, err := envelope.Decode(data, order)
	if err != nil && !errors.Is(err, envelope.ErrChecksum) {
		return nil, err
	}
	return payload, nil
}

// applyEdits runs the requested mutations in a fixed order. Unknown
// unlock or mission names skip that one mutation; the rest apply.
func applyEdits(cmd *cobra.Command, ch *save.Character) error {
	currencies := []struct {
		flag   string
		kind   edit.Currency
		amount uint64
	}{
		{"money", edit.Money, flagMoney},
		{"eridium", edit.Eridium, flagEridium},
		{"seraph", edit.SeraphCrystals, flagSeraph},
		{"torgue", edit.TorgueTokens, flagTorgue},
	}
	for _, c := range currencies {
		if !cmd.Flags().Changed(c.flag) {
			continue
		}
		if err := edit.SetCurrency(ch, c.kind, c.amount); err != nil {
			return err
		}
	}

	for _, name := range flagUnlocks {
		if err := edit.Unlock(ch, name); err != nil {
			slog.Error("skipping unlock", "err", err)
		}
	}

	if flagFixOverflow {
		fixed, err := edit.FixChallengeOverflow(ch)
		if err != nil {
			return err
		}
		for _, name := range fixed {
			fmt.Printf("fixed overflow in: %s\n", name)
		}
	}

	if flagReset != "" {
		if err := edit.ResetMission(ch, flagReset); err != nil {
			slog.Error("skipping mission reset", "err", err)
		}
	}

	if flagImportItems != "" {
		if err := importItems(ch, flagImportItems); err != nil {
			return err
		}
	}

	return nil
}

// importItems loads BL2(...) codes, one per line, into the bank.
// Comment lines starting with ";" and blank lines are skipped.
func importItems(ch *save.Character, name string) error {
	f, err := os.Open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		serial, err := item.FromCode(line)
		if err != nil {
			slog.Error("skipping item code", "err", err)
			continue
		}
		if _, err := item.DecodeSerial(serial); err != nil {
			slog.Warn("importing item with bad checksum", "code", line, "err", err)
		}
		ch.AddBankItem(serial)
		count++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	slog.Debug("imported items into bank", "count", count)
	return nil
}

func printChallengeReport(ch *save.Character) error {
	rows, err := edit.ChallengeReport(ch)
	if err != nil {
		return err
	}
	for _, row := range rows {
		mark := ""
		if row.Incomplete {
			mark = fmt.Sprintf("  (needs %d more)", row.Threshold-row.Progress)
		}
		fmt.Printf("%-40s %d/%d%s\n", row.Name, row.Progress, row.Threshold, mark)
	}
	return nil
}

func renderOutput(ch *save.Character, payload []byte, order binary.ByteOrder) ([]byte, error) {
	switch flagOutput {
	case "savegame":
		return envelope.Encode(payload, order)
	case "decoded":
		return payload, nil
	case "decodedjson":
		return json.MarshalIndent(wire.TreeJSON(ch.Lower()), "", "    ")
	case "json":
		return ch.RenderJSON()
	case "items":
		return exportItems(ch), nil
	}
	return nil, fmt.Errorf("unknown output format %q", flagOutput)
}

// exportItems renders the inventory as one text code per line with a
// section comment per inventory. Pseudo-items the DLC machinery stores
// (first slot 255, everything else empty) are skipped.
func exportItems(ch *save.Character) []byte {
	var buf bytes.Buffer

	entries := ch.Inventory()
	for _, sec := range save.InventorySections {
		headed := false
		count := 0
		for _, e := range entries {
			if e.Section != sec.Field {
				continue
			}
			// The header marks the section, not its first export:
			// a section holding only pseudo-items still gets one.
			if !headed {
				fmt.Fprintf(&buf, "; %s\n", sec.Name)
				headed = true
			}
			pl, err := item.DecodeSerial(e.Serial)
			if err != nil && !errors.Is(err, item.ErrSerialChecksum) {
				slog.Warn("skipping unreadable item", "section", sec.Name, "err", err)
				continue
			}
			if err != nil {
				slog.Warn("exporting corrupt item", "section", sec.Name, "err", err)
			}
			if isPseudoItem(pl) {
				slog.Debug("skipping DLC pseudo-item", "section", sec.Name)
				continue
			}
			fmt.Fprintln(&buf, item.ToCode(e.Serial))
			count++
		}
		slog.Debug("exported items", "section", sec.Name, "count", count)
	}

	return buf.Bytes()
}

// isPseudoItem spots the fake entries the game uses to stash DLC
// bookkeeping in the bank: first slot 255 with every other slot empty.
func isPseudoItem(pl *item.PartList) bool {
	if len(pl.Parts) == 0 || pl.Parts[0] != 255 {
		return false
	}
	for _, v := range pl.Parts[1:] {
		if v > 0 {
			return false
		}
	}
	return true
}

func writeOutput(inName, outName string, data []byte) error {
	if outName == "-" {
		slog.Debug("writing output to stdout")
		_, err := os.Stdout.Write(data)
		return err
	}

	if info, err := os.Stat(outName); err == nil {
		if info.IsDir() {
			return fmt.Errorf("output file is an existing directory: %s", outName)
		}
		if !flagForce {
			if inName == "-" {
				return fmt.Errorf("output file %s exists and --force not specified", outName)
			}
			if !confirmOverwrite(outName) {
				fmt.Println("Abort.")
				return nil
			}
		}
	}

	slog.Debug("writing output", "file", outName, "bytes", len(data))
	if err := os.WriteFile(outName, data, 0644); err != nil {
		return err
	}

	fmt.Println("Done")
	return nil
}

// confirmOverwrite asks on stderr so the prompt survives stdout
// redirection, and reads the answer from stdin.
func confirmOverwrite(name string) bool {
	fmt.Fprintf(os.Stderr, "Output file %s exists. Continue and overwrite? [y|N] ", name)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}
