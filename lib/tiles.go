package assetstats

import (
	"errors"
	"fmt"
)

const (
	DefaultMaxTiles  = 8192
	DefaultMaxSounds = 16384

	// TotalName labels the grand-total table and the row-total column.
	TotalName = "TOTAL"
)

// Category is the structural role of a tile placement. Tags the diagnostic
// script does not emit today fall into the unclassified bucket instead of
// failing the run.
type Category uint8

const (
	CategorySprite Category = iota
	CategoryFloor
	CategoryCeiling
	CategoryWall
	CategoryOverwall
	CategoryUnclassified
	numCategories
)

var categoryTags = map[string]Category{
	"sprite":   CategorySprite,
	"floor":    CategoryFloor,
	"ceiling":  CategoryCeiling,
	"wall":     CategoryWall,
	"overwall": CategoryOverwall,
}

func (c Category) String() string {
	switch c {
	case CategorySprite:
		return "sprite"
	case CategoryFloor:
		return "floor"
	case CategoryCeiling:
		return "ceiling"
	case CategoryWall:
		return "wall"
	case CategoryOverwall:
		return "overwall"
	default:
		return "unclassified"
	}
}

// CategoryFromTag maps a log tag to its placement category.
func CategoryFromTag(tag string) Category {
	if c, ok := categoryTags[tag]; ok {
		return c
	}
	return CategoryUnclassified
}

// Categories returns every placement category in column order.
func Categories() []Category {
	cats := make([]Category, numCategories)
	for i := range cats {
		cats[i] = Category(i)
	}
	return cats
}

// OverflowPolicy controls what happens to tile indices at or above maxtiles.
type OverflowPolicy uint8

const (
	// OverflowReject drops the line into the map's reject list.
	OverflowReject OverflowPolicy = iota
	// OverflowClamp counts the line at index maxtiles-1.
	OverflowClamp
)

func ParseOverflowPolicy(input string) (OverflowPolicy, error) {
	switch input {
	case "reject":
		return OverflowReject, nil
	case "clamp":
		return OverflowClamp, nil
	default:
		return OverflowReject, fmt.Errorf("unrecognized overflow policy %q (expected reject or clamp)", input)
	}
}

// TileTable holds one map's (or the grand total's) tile counts, one dense
// column per placement category. The dense backing keeps merges a cell-wise
// sum regardless of which tiles a given map happens to use.
type TileTable struct {
	Name   string
	counts [numCategories][]int
}

func NewTileTable(name string, maxtiles int) *TileTable {
	t := &TileTable{Name: name}
	for i := range t.counts {
		t.counts[i] = make([]int, maxtiles)
	}
	return t
}

func (t *TileTable) MaxTiles() int {
	return len(t.counts[0])
}

func (t *TileTable) Add(cat Category, tile int) {
	t.counts[cat][tile]++
}

func (t *TileTable) Count(cat Category, tile int) int {
	return t.counts[cat][tile]
}

// Total returns the row total for a tile. It is computed from the category
// cells, so it cannot drift out of sync with them.
func (t *TileTable) Total(tile int) int {
	total := 0
	for c := range t.counts {
		total += t.counts[c][tile]
	}
	return total
}

// AddAll accumulates other's counts into t cell-wise. Both tables must have
// been built with the same maxtiles.
func (t *TileTable) AddAll(other *TileTable) error {
	if t.MaxTiles() != other.MaxTiles() {
		return errors.New("cannot merge tile tables of differing maxtiles")
	}
	for c := range t.counts {
		for i, n := range other.counts[c] {
			t.counts[c][i] += n
		}
	}
	return nil
}

// UsedTiles returns every tile index with a nonzero total, ascending.
func (t *TileTable) UsedTiles() []int {
	var used []int
	for i := 0; i < t.MaxTiles(); i++ {
		if t.Total(i) > 0 {
			used = append(used, i)
		}
	}
	return used
}

type TileOptions struct {
	MaxTiles int
	Overflow OverflowPolicy
	// Overwall uses of tile 0 (a transparent overpicnum) are zeroed after
	// aggregation unless this is set.
	CountOverwall0 bool
}

// TileStats holds the aggregated per-map tile tables in log order, plus the
// raw lines that were rejected per map.
type TileStats struct {
	Maps    []*TileTable
	Rejects map[string][]string

	opts TileOptions
}

// AggregateTiles builds one tile table per map from the classified log.
// Negative indices are always rejected; indices at or above maxtiles follow
// the configured overflow policy. Every usage line increments exactly one
// cell or lands in the reject list.
func AggregateTiles(log *UsageLog, opts TileOptions) *TileStats {
	if opts.MaxTiles <= 0 {
		opts.MaxTiles = DefaultMaxTiles
	}
	stats := &TileStats{Rejects: map[string][]string{}, opts: opts}

	for _, name := range log.MapOrder {
		table := NewTileTable(name, opts.MaxTiles)
		for _, use := range log.Tiles[name] {
			switch {
			case use.Tile < 0:
				stats.reject(name, use)
			case use.Tile >= opts.MaxTiles:
				if opts.Overflow == OverflowClamp {
					table.Add(CategoryFromTag(use.Tag), opts.MaxTiles-1)
				} else {
					stats.reject(name, use)
				}
			default:
				table.Add(CategoryFromTag(use.Tag), use.Tile)
			}
		}
		if !opts.CountOverwall0 {
			table.counts[CategoryOverwall][0] = 0
		}
		stats.Maps = append(stats.Maps, table)
	}

	return stats
}

func (s *TileStats) reject(mapName string, use TileUse) {
	s.Rejects[mapName] = append(s.Rejects[mapName], fmt.Sprintf("%s,%d", use.Tag, use.Tile))
}

// Total merges every per-map table into a grand total. Tiles missing from a
// map contribute zero, so sparsity never misaligns the result.
func (s *TileStats) Total() *TileTable {
	total := NewTileTable(TotalName, s.opts.MaxTiles)
	for _, t := range s.Maps {
		// Tables share s.opts.MaxTiles, so this cannot fail.
		total.AddAll(t)
	}
	return total
}
