package batch

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/talentfetch/internal/fetch"
)

// Build names one talent build page to refresh.
type Build struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Result pairs a build with the outcome of fetching it.
type Result struct {
	Build
	Outcome fetch.Outcome
}

// Fetcher is the part of fetch.Client the runner depends on.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Outcome
}

// Runner refreshes a list of builds concurrently. Concurrency towards the
// site is bounded by the Fetcher; RequestsPerSecond only paces submission.
type Runner struct {
	Fetcher Fetcher
	// RequestsPerSecond paces how fast fetches are started. Zero or negative
	// disables pacing.
	RequestsPerSecond float64
	Logger            *zerolog.Logger
}

func (r *Runner) logger() *zerolog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return &log.Logger
}

// Run fetches every build and returns results in input order. Per-build
// failures are reported in Result.Outcome; the error is only set when ctx
// ends while fetches are still being paced.
func (r *Runner) Run(ctx context.Context, builds []Build) ([]Result, error) {
	if r.Fetcher == nil {
		return nil, errors.New("batch: no fetcher configured")
	}
	var limiter *rate.Limiter
	if r.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.RequestsPerSecond), 1)
	}

	results := make([]Result, len(builds))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range builds {
		i, b := i, b // per-iteration copies (go.mod targets go 1.21)
		results[i].Build = b
		if limiter != nil {
			if err := limiter.Wait(gctx); err != nil {
				// Builds never started keep a failed outcome so the report
				// stays complete.
				for j := i; j < len(builds); j++ {
					results[j] = Result{Build: builds[j], Outcome: fetch.Failed(fmt.Errorf("not started: %w", err))}
				}
				_ = g.Wait()
				return results, fmt.Errorf("pace fetches: %w", err)
			}
		}
		g.Go(func() error {
			out := r.Fetcher.Fetch(gctx, b.URL)
			results[i].Outcome = out
			if out.Status == fetch.StatusFailed {
				r.logger().Error().Err(out.Err).Str("build", b.Name).Msg("build failed")
			} else {
				r.logger().Debug().Str("build", b.Name).Str("status", out.Status.String()).Msg("build fetched")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Summary counts results per status.
type Summary struct {
	Found    int `yaml:"found" json:"found"`
	NotFound int `yaml:"notFound" json:"notFound"`
	Failed   int `yaml:"failed" json:"failed"`
}

// Summarize tallies results by outcome status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome.Status {
		case fetch.StatusFound:
			s.Found++
		case fetch.StatusFailed:
			s.Failed++
		default:
			s.NotFound++
		}
	}
	return s
}
