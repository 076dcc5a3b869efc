package assetstats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAggregateTiles(t *testing.T) {
	stats := AggregateTiles(parseSample(t), TileOptions{})

	require.Len(t, stats.Maps, 2)
	e1l1, e1l2 := stats.Maps[0], stats.Maps[1]

	require.Equal(t, 3, e1l1.Count(CategorySprite, 1200))
	require.Equal(t, 1, e1l1.Count(CategoryWall, 1200))
	require.Equal(t, 4, e1l1.Total(1200))
	require.Equal(t, 1, e1l1.Count(CategoryFloor, 120))

	// Unknown tags land in the catch-all column instead of failing.
	require.Equal(t, 1, e1l2.Count(CategoryUnclassified, 64))

	// Negative and overflowing indices are rejected by default.
	require.Equal(t, []string{"wall,-5", "sprite,9000"}, stats.Rejects["maps/E1L2.MAP"])
	require.Empty(t, stats.Rejects["maps/E1L1.MAP"])
}

func TestAggregateTilesRowInvariant(t *testing.T) {
	stats := AggregateTiles(parseSample(t), TileOptions{})
	tables := append([]*TileTable{stats.Total()}, stats.Maps...)
	for _, table := range tables {
		for _, tile := range table.UsedTiles() {
			sum := 0
			for _, cat := range Categories() {
				sum += table.Count(cat, tile)
			}
			require.Equal(t, sum, table.Total(tile), "map %s tile %d", table.Name, tile)
		}
	}
}

func TestTileGrandTotal(t *testing.T) {
	stats := AggregateTiles(parseSample(t), TileOptions{})
	total := stats.Total()

	// 1200 is used in both maps; every other cell is the per-map value.
	require.Equal(t, 5, total.Total(1200))
	require.Equal(t, 4, total.Count(CategorySprite, 1200))
	require.Equal(t, 1, total.Count(CategoryFloor, 120))
	require.Equal(t, 1, total.Count(CategoryUnclassified, 64))

	for _, tile := range total.UsedTiles() {
		sum := 0
		for _, m := range stats.Maps {
			sum += m.Total(tile)
		}
		require.Equal(t, sum, total.Total(tile), "tile %d", tile)
	}
}

func TestTileMergeOrderIndependence(t *testing.T) {
	log := parseSample(t)
	reversed := &UsageLog{
		MapOrder: []string{log.MapOrder[1], log.MapOrder[0]},
		Tiles:    log.Tiles,
		Sounds:   log.Sounds,
	}

	a := AggregateTiles(log, TileOptions{}).Total()
	b := AggregateTiles(reversed, TileOptions{}).Total()

	require.Equal(t, a.UsedTiles(), b.UsedTiles())
	for _, tile := range a.UsedTiles() {
		for _, cat := range Categories() {
			require.Equal(t, a.Count(cat, tile), b.Count(cat, tile))
		}
	}
}

func TestTileOverflowPolicies(t *testing.T) {
	log := &UsageLog{
		MapOrder: []string{"MAP1"},
		Tiles: map[string][]TileUse{
			"MAP1": {{"sprite", 100}, {"sprite", 8192}, {"wall", 10000}},
		},
	}

	reject := AggregateTiles(log, TileOptions{Overflow: OverflowReject})
	require.Equal(t, []string{"sprite,8192", "wall,10000"}, reject.Rejects["MAP1"])
	require.Equal(t, 1, reject.Maps[0].Total(100))
	require.Equal(t, 0, reject.Maps[0].Total(8191))

	clamp := AggregateTiles(log, TileOptions{Overflow: OverflowClamp})
	require.Empty(t, clamp.Rejects["MAP1"])
	require.Equal(t, 1, clamp.Maps[0].Count(CategorySprite, 8191))
	require.Equal(t, 1, clamp.Maps[0].Count(CategoryWall, 8191))
}

func TestTileOverwall0(t *testing.T) {
	log := parseSample(t)

	skipped := AggregateTiles(log, TileOptions{})
	require.Equal(t, 0, skipped.Maps[0].Count(CategoryOverwall, 0))
	require.Equal(t, 1, skipped.Maps[0].Count(CategoryOverwall, 755))

	counted := AggregateTiles(log, TileOptions{CountOverwall0: true})
	require.Equal(t, 1, counted.Maps[0].Count(CategoryOverwall, 0))
}

func TestParseOverflowPolicy(t *testing.T) {
	policy, err := ParseOverflowPolicy("clamp")
	require.NoError(t, err)
	require.Equal(t, OverflowClamp, policy)

	policy, err = ParseOverflowPolicy("reject")
	require.NoError(t, err)
	require.Equal(t, OverflowReject, policy)

	_, err = ParseOverflowPolicy("wrap")
	require.Error(t, err)
}

func TestCategoryFromTag(t *testing.T) {
	tests := []struct {
		tag      string
		expected Category
	}{
		{"sprite", CategorySprite},
		{"floor", CategoryFloor},
		{"ceiling", CategoryCeiling},
		{"wall", CategoryWall},
		{"overwall", CategoryOverwall},
		{"thinwall", CategoryUnclassified},
		{"", CategoryUnclassified},
	}
	for _, test := range tests {
		require.Equal(t, test.expected, CategoryFromTag(test.tag))
	}
	require.Equal(t, "unclassified", CategoryUnclassified.String())
	require.Equal(t, "overwall", CategoryOverwall.String())
}
