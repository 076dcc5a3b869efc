package assetstats

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Format selects the output renderer.
type Format uint8

const (
	FormatExcel Format = iota
	FormatCSV
)

func ParseFormat(input string) (Format, error) {
	switch input {
	case "excel":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	default:
		return FormatExcel, fmt.Errorf("unrecognized format %q (expected excel or csv)", input)
	}
}

// Table is one rendered output table: a header row plus one row per used
// identifier, ascending. An empty log renders to a header with zero rows.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

var mapExtension = regexp.MustCompile(`(?i)\.map$`)

// cleanMapName strips the directory and .MAP extension from a map path so
// it can serve as a file name or sheet name.
func cleanMapName(name string) string {
	base := name[strings.LastIndexAny(name, `/\`)+1:]
	return mapExtension.ReplaceAllString(base, "")
}

// RenderTiles renders every per-map tile table plus the grand total. The
// grand total carries one sub-column per source map holding that map's row
// total, and a HARDCODED marker column when a hardcoded set was scanned.
func RenderTiles(stats *TileStats, hardcoded *HardcodedSet) []Table {
	tables := make([]Table, 0, len(stats.Maps)+1)
	for _, t := range stats.Maps {
		tables = append(tables, renderTileTable(t, nil, hardcoded))
	}
	tables = append(tables, renderTileTable(stats.Total(), stats.Maps, hardcoded))
	return tables
}

func renderTileTable(t *TileTable, perMap []*TileTable, hardcoded *HardcodedSet) Table {
	header := []string{"tile"}
	for _, cat := range Categories() {
		header = append(header, cat.String())
	}
	for _, m := range perMap {
		header = append(header, cleanMapName(m.Name))
	}
	header = append(header, TotalName)
	if hardcoded != nil {
		header = append(header, "HARDCODED")
	}

	var rows [][]string
	for _, tile := range t.UsedTiles() {
		row := []string{strconv.Itoa(tile)}
		for _, cat := range Categories() {
			row = append(row, strconv.Itoa(t.Count(cat, tile)))
		}
		for _, m := range perMap {
			row = append(row, strconv.Itoa(m.Total(tile)))
		}
		row = append(row, strconv.Itoa(t.Total(tile)))
		if hardcoded != nil {
			mark := "0"
			if hardcoded.Has(tile) {
				mark = "1"
			}
			row = append(row, mark)
		}
		rows = append(rows, row)
	}

	return Table{Name: cleanMapName(t.Name), Header: header, Rows: rows}
}

// RenderSounds renders every per-map sound table plus the grand total, whose
// emitter columns are the union across maps in first-seen order.
func RenderSounds(stats *SoundStats) []Table {
	tables := make([]Table, 0, len(stats.Maps)+1)
	for _, t := range stats.Maps {
		tables = append(tables, renderSoundTable(t, nil))
	}
	tables = append(tables, renderSoundTable(stats.Total(), stats.Maps))
	return tables
}

func renderSoundTable(t *SoundTable, perMap []*SoundTable) Table {
	header := []string{"sound"}
	header = append(header, t.Emitters()...)
	for _, m := range perMap {
		header = append(header, cleanMapName(m.Name))
	}
	header = append(header, TotalName)

	var rows [][]string
	for _, sound := range t.UsedSounds() {
		row := []string{strconv.Itoa(sound)}
		for _, emitter := range t.Emitters() {
			row = append(row, strconv.Itoa(t.Count(emitter, sound)))
		}
		for _, m := range perMap {
			row = append(row, strconv.Itoa(m.Total(sound)))
		}
		row = append(row, strconv.Itoa(t.Total(sound)))
		rows = append(rows, row)
	}

	return Table{Name: cleanMapName(t.Name), Header: header, Rows: rows}
}

// WriteCSV writes one `<prefix>_<name>.csv` file per table under outdir.
func WriteCSV(outdir string, prefix string, tables []Table) error {
	for _, table := range tables {
		path := filepath.Join(outdir, fmt.Sprintf("%s_%s.csv", prefix, table.Name))
		if err := writeCSVFile(path, table); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVFile(path string, table Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Join(fmt.Errorf("unable to create %s", path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Header); err != nil {
		return err
	}
	return w.WriteAll(table.Rows)
}

// Sheet names are capped at 31 characters by the xlsx format.
const maxSheetName = 31

// WriteExcel writes every table as one sheet of an xlsx workbook.
func WriteExcel(path string, tables []Table) error {
	wb := excelize.NewFile()
	defer wb.Close()

	for _, table := range tables {
		sheet := table.Name
		if len(sheet) > maxSheetName {
			sheet = sheet[:maxSheetName]
		}
		if _, err := wb.NewSheet(sheet); err != nil {
			return errors.Join(fmt.Errorf("unable to create sheet %s", sheet), err)
		}
		if err := writeSheetRow(wb, sheet, 1, table.Header); err != nil {
			return err
		}
		for i, row := range table.Rows {
			if err := writeSheetRow(wb, sheet, i+2, row); err != nil {
				return err
			}
		}
	}
	wb.DeleteSheet("Sheet1")

	if err := wb.SaveAs(path); err != nil {
		return errors.Join(fmt.Errorf("unable to write %s (is the output directory writable?)", path), err)
	}
	return nil
}

func writeSheetRow(wb *excelize.File, sheet string, row int, values []string) error {
	cells := make([]any, len(values))
	for i, v := range values {
		if n, err := strconv.Atoi(v); err == nil {
			cells[i] = n
		} else {
			cells[i] = v
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.SetSheetRow(sheet, cell, &cells)
}

// WriteRejectReport writes the rejected lines grouped under map-name
// headers. No file is created when nothing was rejected.
func WriteRejectReport(path string, mapOrder []string, rejects map[string][]string) error {
	total := 0
	for _, lines := range rejects {
		total += len(lines)
	}
	if total == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Join(fmt.Errorf("unable to create %s", path), err)
	}
	defer f.Close()

	for _, name := range mapOrder {
		lines := rejects[name]
		if len(lines) == 0 {
			continue
		}
		if _, err := fmt.Fprintln(f, cleanMapName(name)); err != nil {
			return err
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(f, line); err != nil {
				return err
			}
		}
	}
	return nil
}
