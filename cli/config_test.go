package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	assetstats "github.com/eduke-tools/assetstats/lib"
)

const sampleConfig = `maxtiles = 4096
maxsounds = 8000
format = csv
outdir = out

[tiles]
overflow = clamp
skip_overwall0 = false

[hardcoded]
src = /src/duke3d
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()
	require.Equal(t, assetstats.DefaultMaxTiles, cfg.MaxTiles)
	require.Equal(t, assetstats.DefaultMaxSounds, cfg.MaxSounds)
	require.Equal(t, assetstats.FormatExcel, cfg.Format)
	require.Equal(t, ".", cfg.Outdir)
	require.Equal(t, assetstats.OverflowReject, cfg.Overflow)
	require.False(t, cfg.CountOverwall0)
}

func TestConfigLoad(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.load(writeConfig(t, sampleConfig), true))

	require.Equal(t, 4096, cfg.MaxTiles)
	require.Equal(t, 8000, cfg.MaxSounds)
	require.Equal(t, assetstats.FormatCSV, cfg.Format)
	require.Equal(t, "out", cfg.Outdir)
	require.Equal(t, assetstats.OverflowClamp, cfg.Overflow)
	require.True(t, cfg.CountOverwall0)
	require.Equal(t, "/src/duke3d", cfg.NamesPath)
}

func TestConfigMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nonexistent.ini")

	// The default config path may simply not exist.
	cfg := defaultConfig()
	require.NoError(t, cfg.load(missing, false))
	require.Equal(t, assetstats.DefaultMaxTiles, cfg.MaxTiles)

	// An explicitly requested file must exist.
	require.Error(t, cfg.load(missing, true))
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("ASSETSTATS_FORMAT", "csv")
	t.Setenv("ASSETSTATS_OUTDIR", "/tmp/stats")

	cfg := defaultConfig()
	require.NoError(t, cfg.load(writeConfig(t, "format = excel\noutdir = out\n"), true))
	require.Equal(t, assetstats.FormatCSV, cfg.Format)
	require.Equal(t, "/tmp/stats", cfg.Outdir)
}

func TestConfigInvalidValues(t *testing.T) {
	tests := []string{
		"maxtiles = banana\n",
		"maxtiles = -1\n",
		"format = tsv\n",
		"[tiles]\noverflow = wrap\n",
		"[tiles]\nskip_overwall0 = maybe\n",
	}
	for _, contents := range tests {
		cfg := defaultConfig()
		require.Error(t, cfg.load(writeConfig(t, contents), true), "config %q", contents)
	}
}
