package assetstats

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Patterns for definition-style statements in engine and CON source text.
// `#define NAME 123` is the names.h style, `define NAME 123` the CON style;
// actor and useractor declarations bind hardcoded behavior to a tile name.
var (
	definePattern    = regexp.MustCompile(`^#?define\s+([A-Za-z0-9_]+)\s+((?:0x[0-9A-Fa-f]+)|-?[0-9]+)$`)
	actorPattern     = regexp.MustCompile(`^actor\s+([A-Za-z0-9_]+)`)
	useractorPattern = regexp.MustCompile(`^useractor\s+[A-Za-z0-9_]+\s+([A-Za-z0-9_]+)`)

	lineComment = regexp.MustCompile(`//.*$`)
	// Quote strings can contain tokens that screw up the patterns.
	quoteStatement = regexp.MustCompile(`\b(definequote|qputs)\b.*$`)
)

var sourceExtensions = map[string]bool{
	".h":   true,
	".c":   true,
	".cpp": true,
	".con": true,
}

// HardcodedSet is the lookup set of tile numbers with built-in engine
// behavior, collected from source text. Non-matching lines are ignored and
// unresolvable names become warnings; nothing in the scan is fatal.
type HardcodedSet struct {
	Warnings []string

	names    map[string]int
	tiles    map[int]bool
	maxtiles int
}

// ScanHardcoded scans a source file, or a directory tree of source files,
// for tile definitions and actor declarations. Defines are collected from
// every file before actor names are resolved, so declarations may reference
// names defined elsewhere in the tree.
func ScanHardcoded(path string, maxtiles int) (*HardcodedSet, error) {
	if maxtiles <= 0 {
		maxtiles = DefaultMaxTiles
	}
	set := &HardcodedSet{
		names:    map[string]int{},
		tiles:    map[int]bool{},
		maxtiles: maxtiles,
	}

	files, err := sourceFiles(path)
	if err != nil {
		return nil, errors.Join(errors.New("unable to read source path"), err)
	}

	for _, file := range files {
		if err := set.scanFile(file, set.collectDefine); err != nil {
			return nil, err
		}
	}
	for _, file := range files {
		if err := set.scanFile(file, set.collectActor); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// Has reports whether a tile has hardcoded engine behavior.
func (h *HardcodedSet) Has(tile int) bool {
	return h.tiles[tile]
}

// Len returns the number of distinct hardcoded tiles.
func (h *HardcodedSet) Len() int {
	return len(h.tiles)
}

func sourceFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && sourceExtensions[strings.ToLower(filepath.Ext(entry))] {
			files = append(files, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (h *HardcodedSet) scanFile(path string, collect func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Join(fmt.Errorf("unable to open %s", path), err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		collect(cleanSourceLine(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return errors.Join(fmt.Errorf("error reading %s", path), err)
	}
	return nil
}

func cleanSourceLine(line string) string {
	line = lineComment.ReplaceAllString(line, "")
	line = quoteStatement.ReplaceAllString(line, "")
	return strings.TrimSpace(line)
}

func (h *HardcodedSet) collectDefine(line string) {
	match := definePattern.FindStringSubmatch(line)
	if match == nil {
		return
	}
	name := match[1]
	// Base 0 accepts both decimal and 0x hex values.
	value, err := strconv.ParseInt(match[2], 0, 32)
	if err != nil {
		h.warnf("non-integer define: %s", line)
		return
	}
	h.names[name] = int(value)
	// Defines also cover non-tile constants; only plausible tile numbers
	// enter the set.
	h.mark(int(value))
}

func (h *HardcodedSet) collectActor(line string) {
	var name string
	if match := actorPattern.FindStringSubmatch(line); match != nil {
		name = match[1]
	} else if match := useractorPattern.FindStringSubmatch(line); match != nil {
		name = match[1]
	} else {
		return
	}

	tile, ok := h.resolve(name)
	if !ok {
		h.warnf("name %q is unknown: %s", name, line)
		return
	}
	if !h.mark(tile) {
		h.warnf("tile %d out of range: %s", tile, line)
	}
}

// resolve turns a numeric literal or a previously defined name into a tile
// number.
func (h *HardcodedSet) resolve(token string) (int, bool) {
	if value, err := strconv.ParseInt(token, 0, 32); err == nil {
		return int(value), true
	}
	tile, ok := h.names[token]
	return tile, ok
}

func (h *HardcodedSet) mark(tile int) bool {
	if tile < 0 || tile >= h.maxtiles {
		return false
	}
	h.tiles[tile] = true
	return true
}

func (h *HardcodedSet) warnf(format string, args ...any) {
	h.Warnings = append(h.Warnings, fmt.Sprintf(format, args...))
}
