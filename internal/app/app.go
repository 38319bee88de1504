package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/talentfetch/internal/batch"
	"github.com/hyperifyio/talentfetch/internal/fetch"
)

// ErrBuildsFailed is returned when at least one build ended in a failed
// outcome. The report is still written.
var ErrBuildsFailed = errors.New("one or more builds failed")

type App struct {
	cfg     Config
	fetcher *fetch.Client
	// Stdout receives the report when OutputPath is "-".
	Stdout io.Writer
}

func New(ctx context.Context, cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &App{cfg: cfg, fetcher: fetch.New(), Stdout: os.Stdout}, nil
}

func (a *App) Close() {
	a.fetcher.Close()
}

func (a *App) Run(ctx context.Context) error {
	builds, err := LoadBuilds(a.cfg.InputPath)
	if err != nil {
		return err
	}
	log.Debug().Str("version", BuildVersion).Str("commit", BuildCommit).Msg("talentfetch")
	log.Info().Int("builds", len(builds)).Str("input", a.cfg.InputPath).Msg("loaded builds")

	if a.cfg.DryRun {
		for i, b := range builds {
			log.Info().Int("n", i+1).Str("build", b.Name).Str("url", b.URL).Msg("dry run")
		}
		return nil
	}

	runner := &batch.Runner{Fetcher: a.fetcher, RequestsPerSecond: a.cfg.RequestsPerSecond}
	results, runErr := runner.Run(ctx, builds)
	rep := NewReport(results)

	if err := a.writeReport(rep); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	log.Info().
		Int("found", rep.Summary.Found).
		Int("not_found", rep.Summary.NotFound).
		Int("failed", rep.Summary.Failed).
		Msg("refresh complete")

	if runErr != nil {
		return runErr
	}
	if rep.Summary.Failed > 0 {
		return ErrBuildsFailed
	}
	return nil
}

func (a *App) writeReport(rep Report) error {
	if a.cfg.OutputPath == "-" {
		return EncodeReport(a.Stdout, a.cfg.Format, rep)
	}
	if err := WriteReportFile(a.cfg.OutputPath, a.cfg.Format, rep); err != nil {
		return err
	}
	log.Info().Str("out", a.cfg.OutputPath).Msg("wrote report")
	return nil
}
