package assetstats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Section markers written by dump_used_assets.m32 in verbose mode. The log
// format is an external contract; make sure the `verbose` variable is set to
// 1 inside mapster32, or the usage lines will be missing entirely.
const (
	tileSearchStart  = "Searching for tiles used in current map..."
	tileSearchEnd    = "Tile search finished."
	soundSearchStart = "Searching for sounds used in current map..."
	soundSearchEnd   = "Sound search finished."
)

// The map-boundary line comes in several variations depending on the editor
// version and the corruption state of the map.
var mapLoadedPattern = regexp.MustCompile(`^Loaded V[0-9]+ map (.*) (successfully|\(EXTREME corruption\)|\(HEAVY corruption\)|\(moderate corruption\)|\(removed [0-9]+ sprites\))`)

type logSection uint8

const (
	sectionNone logSection = iota
	sectionTiles
	sectionSounds
)

// TileUse is one classified tile placement line.
type TileUse struct {
	Tag  string
	Tile int
}

// SoundUse is one classified sound reference line.
type SoundUse struct {
	Emitter string
	Sound   int
}

// UsageLog holds the classified contents of one diagnostic log: raw per-map
// tile and sound usages in the order the maps were loaded, plus warnings for
// every line that had to be skipped.
type UsageLog struct {
	MapOrder []string
	Tiles    map[string][]TileUse
	Sounds   map[string][]SoundUse
	Warnings []string
}

func (l *UsageLog) warnf(format string, args ...any) {
	l.Warnings = append(l.Warnings, fmt.Sprintf(format, args...))
}

// ParseLog reads a mapster32 log in a single pass and classifies every usage
// line inside the tile and sound search sections. Malformed lines are
// recorded as warnings and skipped; only a read error is fatal.
func ParseLog(r io.Reader) (*UsageLog, error) {
	log := &UsageLog{
		Tiles:  map[string][]TileUse{},
		Sounds: map[string][]SoundUse{},
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	currMap := ""
	section := sectionNone
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		switch section {
		case sectionNone:
			if match := mapLoadedPattern.FindStringSubmatch(line); match != nil {
				currMap = match[1]
				if _, seen := log.Tiles[currMap]; !seen {
					log.MapOrder = append(log.MapOrder, currMap)
					log.Tiles[currMap] = nil
					log.Sounds[currMap] = nil
				}
			} else if strings.HasPrefix(line, tileSearchStart) {
				section = sectionTiles
			} else if strings.HasPrefix(line, soundSearchStart) {
				section = sectionSounds
			}
		case sectionTiles:
			if strings.HasPrefix(line, tileSearchEnd) {
				section = sectionNone
				continue
			}
			if tag, index, ok := log.splitUsageLine(currMap, lineno, line); ok {
				log.Tiles[currMap] = append(log.Tiles[currMap], TileUse{tag, index})
			}
		case sectionSounds:
			if strings.HasPrefix(line, soundSearchEnd) {
				section = sectionNone
				continue
			}
			if tag, index, ok := log.splitUsageLine(currMap, lineno, line); ok {
				log.Sounds[currMap] = append(log.Sounds[currMap], SoundUse{tag, index})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Join(errors.New("error reading log"), err)
	}

	return log, nil
}

// splitUsageLine splits a `tag,index` usage line. A line that cannot be
// split, or that appears before any map boundary, is skipped with a warning.
func (l *UsageLog) splitUsageLine(currMap string, lineno int, line string) (string, int, bool) {
	if line == "" {
		return "", 0, false
	}
	if currMap == "" {
		l.warnf("line %d: usage line before any map was loaded: %s", lineno, line)
		return "", 0, false
	}
	tag, num, found := strings.Cut(line, ",")
	if !found {
		l.warnf("line %d: missing delimiter: %s", lineno, line)
		return "", 0, false
	}
	index, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		l.warnf("line %d: bad index: %s", lineno, line)
		return "", 0, false
	}
	return strings.TrimSpace(tag), index, true
}
