package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/cheggaaa/pb/v3"

	assetstats "github.com/eduke-tools/assetstats/lib"
)

const version = "1.1.0"

const usageStr string = `usage: assetstats [options] <logfile>
options:
	-c, --config <file>          config file (default: $XDG_CONFIG_HOME/assetstats/config.ini)
	-m, --maxtiles <int>         maximum tile index (default 8192)
	-s, --maxsounds <int>        maximum sound index (default 16384)
	-f, --format (excel|csv)     output format (default excel)
	-o, --outdir <dir>           output directory (default ".")
	-n, --names <path>           engine/CON source to scan for hardcoded tiles
	-x, --overflow (reject|clamp)  policy for tile indices >= maxtiles
	-w, --overwall0              count overwall uses of tile 0
	-q, --quiet                  suppress the progress bar
	-V, --version                print version and exit
	-h, --help                   show this help

The logfile is the output of dump_used_assets.m32 run in verbose mode.`

func printUsage(msg ...any) {
	if len(msg) > 0 {
		errorln(msg...)
	}
	errorln(usageStr)
	os.Exit(1)
}

// Run drives one full pass: parse the log, aggregate tiles and sounds,
// optionally scan for hardcoded tiles, then render everything in the
// selected format. args is os.Args including the program name.
func Run(args []string) {
	args = normalizeArgs(args)
	opts, index, err := getopt.Getopts(args, "c:f:m:n:o:s:x:qwVh")
	if err != nil {
		printUsage(err)
	}

	configPath, explicitConfig := defaultConfigPath(), false
	for _, opt := range opts {
		switch opt.Option {
		case 'h':
			fmt.Println(usageStr)
			os.Exit(0)
		case 'V':
			fmt.Println(version)
			os.Exit(0)
		case 'c':
			configPath, explicitConfig = opt.Value, true
		}
	}

	cfg := defaultConfig()
	if err := cfg.load(configPath, explicitConfig); err != nil {
		abort(err)
	}

	// Flags override config and environment.
	quiet := false
	for _, opt := range opts {
		switch opt.Option {
		case 'm':
			if cfg.MaxTiles, err = parsePositiveInt("maxtiles", opt.Value); err != nil {
				printUsage(err)
			}
		case 's':
			if cfg.MaxSounds, err = parsePositiveInt("maxsounds", opt.Value); err != nil {
				printUsage(err)
			}
		case 'f':
			if cfg.Format, err = assetstats.ParseFormat(opt.Value); err != nil {
				printUsage(err)
			}
		case 'o':
			cfg.Outdir = opt.Value
		case 'n':
			cfg.NamesPath = opt.Value
		case 'x':
			if cfg.Overflow, err = assetstats.ParseOverflowPolicy(opt.Value); err != nil {
				printUsage(err)
			}
		case 'w':
			cfg.CountOverwall0 = true
		case 'q':
			quiet = true
		}
	}

	rest := args[index:]
	if len(rest) != 1 {
		printUsage("expected exactly one logfile")
	}

	usage, err := parseLogFile(rest[0], quiet)
	if err != nil {
		abort(err)
	}
	for _, warning := range usage.Warnings {
		errorf("warning: %s\n", warning)
	}

	var hardcoded *assetstats.HardcodedSet
	if cfg.NamesPath != "" {
		hardcoded, err = assetstats.ScanHardcoded(cfg.NamesPath, cfg.MaxTiles)
		if err != nil {
			abort(err)
		}
		for _, warning := range hardcoded.Warnings {
			errorf("warning: %s\n", warning)
		}
	}

	tiles := assetstats.AggregateTiles(usage, assetstats.TileOptions{
		MaxTiles:       cfg.MaxTiles,
		Overflow:       cfg.Overflow,
		CountOverwall0: cfg.CountOverwall0,
	})
	sounds := assetstats.AggregateSounds(usage, assetstats.SoundOptions{
		MaxSounds: cfg.MaxSounds,
	})

	if err := os.MkdirAll(cfg.Outdir, 0o755); err != nil {
		abort(fmt.Sprintf("unable to create output directory %s:", cfg.Outdir), err)
	}

	tileTables := assetstats.RenderTiles(tiles, hardcoded)
	soundTables := assetstats.RenderSounds(sounds)

	switch cfg.Format {
	case assetstats.FormatCSV:
		err = assetstats.WriteCSV(cfg.Outdir, "tilestats", tileTables)
		if err == nil {
			err = assetstats.WriteCSV(cfg.Outdir, "soundstats", soundTables)
		}
	case assetstats.FormatExcel:
		err = assetstats.WriteExcel(filepath.Join(cfg.Outdir, "tile_usage_stats.xlsx"), tileTables)
		if err == nil {
			err = assetstats.WriteExcel(filepath.Join(cfg.Outdir, "sound_usage_stats.xlsx"), soundTables)
		}
	}
	if err != nil {
		abort(err)
	}

	if err := assetstats.WriteRejectReport(filepath.Join(cfg.Outdir, "tilestats_reject.txt"), usage.MapOrder, tiles.Rejects); err != nil {
		abort(err)
	}
	if err := assetstats.WriteRejectReport(filepath.Join(cfg.Outdir, "soundstats_reject.txt"), usage.MapOrder, sounds.Rejects); err != nil {
		abort(err)
	}

	fmt.Printf("parsed %d maps, %d warnings\n", len(usage.MapOrder), len(usage.Warnings))
}

const barTemplate string = `Parsing {{ string . "name" }} {{ bar . "[" "#" "#" " " "]" }} {{ counters . }} {{ percent . "%.0f%%" }}`

func parseLogFile(path string, quiet bool) (*assetstats.UsageLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	var bar *pb.ProgressBar
	if !quiet {
		if info, err := f.Stat(); err == nil {
			bar = pb.New64(info.Size())
			bar.SetTemplateString(barTemplate)
			bar.Set(pb.Bytes, true).Set("name", filepath.Base(path))
			bar.Start()
			r = bar.NewProxyReader(f)
		}
	}

	usage, err := assetstats.ParseLog(r)
	if bar != nil {
		bar.Finish()
	}
	return usage, err
}

// Options that take a value. The long forms below translate to these.
const shortWithArg = "cfmnosx"

var longOpts = map[string]rune{
	"--config":    'c',
	"--format":    'f',
	"--maxtiles":  'm',
	"--maxsounds": 's',
	"--names":     'n',
	"--outdir":    'o',
	"--overflow":  'x',
	"--overwall0": 'w',
	"--quiet":     'q',
	"--version":   'V',
	"--help":      'h',
}

// normalizeArgs rewrites GNU-style long options to their short equivalents
// and permutes options ahead of positionals, since POSIX getopt stops at the
// first non-option argument. args[0] is the program name and passes through.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	out := []string{args[0]}
	var positional []string

	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		arg := rest[i]
		if arg == "--" {
			positional = append(positional, rest[i+1:]...)
			break
		}
		name, value, hasValue := strings.Cut(arg, "=")
		if short, ok := longOpts[name]; ok {
			out = append(out, "-"+string(short))
			if strings.ContainsRune(shortWithArg, short) {
				if hasValue {
					out = append(out, value)
				} else if i+1 < len(rest) {
					i++
					out = append(out, rest[i])
				}
			}
			continue
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			out = append(out, arg)
			if shortTakesValue(arg) && i+1 < len(rest) {
				i++
				out = append(out, rest[i])
			}
			continue
		}
		positional = append(positional, arg)
	}

	return append(out, positional...)
}

// shortTakesValue reports whether a short option cluster expects the next
// argument as its value. A value embedded in the cluster ("-m8192") counts
// as already supplied.
func shortTakesValue(arg string) bool {
	body := arg[1:]
	for i, r := range body {
		if strings.ContainsRune(shortWithArg, r) {
			return i == len(body)-1
		}
	}
	return false
}
