package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/vaughan0/go-ini"

	assetstats "github.com/eduke-tools/assetstats/lib"
)

type config struct {
	MaxTiles       int
	MaxSounds      int
	Format         assetstats.Format
	Outdir         string
	Overflow       assetstats.OverflowPolicy
	CountOverwall0 bool
	NamesPath      string
}

func defaultConfig() config {
	return config{
		MaxTiles:  assetstats.DefaultMaxTiles,
		MaxSounds: assetstats.DefaultMaxSounds,
		Format:    assetstats.FormatExcel,
		Outdir:    ".",
	}
}

func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "assetstats", "config.ini")
}

// load applies the config file at path on top of the defaults, then the
// environment on top of that. A missing file is only an error when the user
// asked for that file explicitly.
func (c *config) load(path string, explicit bool) error {
	file, err := ini.LoadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			file = ini.File{}
		} else {
			return errors.Join(fmt.Errorf("unable to read config file %s", path), err)
		}
	}

	if value, ok := file.Get("", "maxtiles"); ok {
		if c.MaxTiles, err = parsePositiveInt("maxtiles", value); err != nil {
			return err
		}
	}
	if value, ok := file.Get("", "maxsounds"); ok {
		if c.MaxSounds, err = parsePositiveInt("maxsounds", value); err != nil {
			return err
		}
	}
	if value := getFromEnvOrConfig("ASSETSTATS_FORMAT", file, "", "format"); value != "" {
		if c.Format, err = assetstats.ParseFormat(value); err != nil {
			return err
		}
	}
	if value := getFromEnvOrConfig("ASSETSTATS_OUTDIR", file, "", "outdir"); value != "" {
		c.Outdir = value
	}

	if value, ok := file.Get("tiles", "overflow"); ok {
		if c.Overflow, err = assetstats.ParseOverflowPolicy(value); err != nil {
			return err
		}
	}
	if value, ok := file.Get("tiles", "skip_overwall0"); ok {
		skip, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid skip_overwall0 value %q", value)
		}
		c.CountOverwall0 = !skip
	}

	if value, ok := file.Get("hardcoded", "src"); ok {
		c.NamesPath = value
	}

	return nil
}

func parsePositiveInt(key string, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s value %q", key, value)
	}
	return n, nil
}
