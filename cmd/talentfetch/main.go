package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/talentfetch/internal/app"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) > 1 && (os.Args[1] == "-version" || os.Args[1] == "--version") {
		fmt.Println(app.VersionString())
		return
	}

	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}
	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitCode(err))
	}
}

// parseConfig resolves configuration with precedence flags > env > file.
func parseConfig(args []string) (app.Config, error) {
	fs := flag.NewFlagSet("talentfetch", flag.ContinueOnError)
	var (
		cfg        app.Config
		configPath string
		envFiles   string
	)
	fs.StringVar(&cfg.InputPath, "input", "", "Path to the build list (.yaml, .json or one URL per line)")
	fs.StringVar(&cfg.OutputPath, "output", app.DefaultOutputPath, "Path to write the report, '-' for stdout")
	fs.StringVar(&cfg.Format, "format", app.DefaultFormat, "Report format: yaml or json")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", 0, "Pace fetch starts to this many per second (0 disables)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Load and list builds without fetching")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	fs.StringVar(&configPath, "config", os.Getenv("TALENTFETCH_CONFIG"), "Optional YAML/JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.InputPath == "" && fs.NArg() > 0 {
		cfg.InputPath = fs.Arg(0)
	}

	if err := app.LoadEnvFiles(splitList(envFiles)...); err != nil {
		return cfg, err
	}
	app.ApplyEnvToConfig(&cfg)
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	cfg.Format = strings.ToLower(cfg.Format)
	return cfg, app.ValidateConfig(cfg)
}

func run(ctx context.Context, cfg app.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}

// exitCode maps failed builds to 2 and everything else to 1.
func exitCode(err error) int {
	if errors.Is(err, app.ErrBuildsFailed) {
		return 2
	}
	return 1
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
