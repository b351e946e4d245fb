package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dexter3k/hbcdecomp/config"
	"github.com/dexter3k/hbcdecomp/decode"
	"github.com/dexter3k/hbcdecomp/hbc"
)

// app carries the state shared by every subcommand.
type app struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "hbcdecomp",
		Short:         "Inspect and disassemble Hermes bytecode files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("config", "", "path to "+config.FileName)
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.String("color", "", "colorize output: auto, always or never")
	flags.Int("workers", 0, "functions decoded in parallel (0 = one per CPU)")

	root.AddCommand(
		a.headerCmd(),
		a.functionsCmd(),
		a.stringsCmd(),
		a.disCmd(),
		a.exportCmd(),
		a.verifyCmd(),
	)
	return root
}

// setup loads the configuration file and layers flags and HBC_* environment
// variables over it.
func (a *app) setup(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return err
	}

	a.v.SetDefault("workers", cfg.Decode.Workers)
	a.v.SetDefault("color", cfg.Output.Color)
	a.v.SetDefault("format", cfg.Output.Format)
	a.v.SetDefault("resolve-strings", cfg.Output.ResolveStrings)
	a.v.SetDefault("log-level", cfg.Log.Level)

	a.v.SetEnvPrefix("HBC")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	switch mode := a.v.GetString("color"); mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto", "":
		color.NoColor = !isTerminal(a.stdout)
	default:
		return fmt.Errorf("unknown color mode %q", mode)
	}

	level, err := zerolog.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	if a.v.GetBool("verbose") {
		level = zerolog.DebugLevel
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, NoColor: color.NoColor}).
		Level(level).With().Timestamp().Logger()
	log.Logger = a.log
	if cfg.Path != "" {
		a.log.Debug().Str("path", cfg.Path).Msg("loaded configuration")
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) load(path string) (*hbc.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data, err = inflate(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f, end, err := hbc.NewDecoder(hbc.WithLogger(a.log)).Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if end < len(data) {
		a.log.Debug().Int("end", end).Int("size", len(data)).Msg("function bodies follow the tables")
	}
	return f, nil
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	gzipMagic = []byte{0x1f, 0x8b}
)

// inflate undoes zstd or gzip compression of a bundle, detected by magic.
// Anything else is returned as is.
func inflate(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)
	case bytes.HasPrefix(data, gzipMagic):
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	}
	return data, nil
}

func (a *app) decodeOptions() decode.Options {
	return decode.Options{Workers: a.v.GetInt("workers"), Logger: &a.log}
}
