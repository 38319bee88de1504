package batch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/talentfetch/internal/fetch"
)

type fakeFetcher struct {
	mu    sync.Mutex
	calls []string
	delay map[string]time.Duration
	out   map[string]fetch.Outcome
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) fetch.Outcome {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	d := f.delay[url]
	f.mu.Unlock()
	if d > 0 {
		time.Sleep(d)
	}
	return f.out[url]
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestRun_PreservesInputOrder(t *testing.T) {
	ff := &fakeFetcher{
		delay: map[string]time.Duration{"a": 60 * time.Millisecond, "b": 0, "c": 20 * time.Millisecond},
		out: map[string]fetch.Outcome{
			"a": fetch.Found("mage/frost/A"),
			"b": fetch.NotFound(),
			"c": fetch.Failed(errors.New("boom")),
		},
	}
	r := &Runner{Fetcher: ff, Logger: nopLogger()}
	builds := []Build{{Name: "A", URL: "a"}, {Name: "B", URL: "b"}, {Name: "C", URL: "c"}}

	results, err := r.Run(context.Background(), builds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, b := range builds {
		if results[i].Name != b.Name || results[i].URL != b.URL {
			t.Fatalf("result %d out of order: %+v", i, results[i].Build)
		}
	}
	if results[0].Outcome.Talent != "mage/frost/A" || results[1].Outcome.Status != fetch.StatusNotFound || results[2].Outcome.Status != fetch.StatusFailed {
		t.Fatalf("unexpected outcomes: %+v", results)
	}
}

func TestRun_NoFetcher(t *testing.T) {
	r := &Runner{}
	if _, err := r.Run(context.Background(), []Build{{URL: "a"}}); err == nil {
		t.Fatalf("expected error without fetcher")
	}
}

func TestRun_PacingStopsOnCancel(t *testing.T) {
	ff := &fakeFetcher{out: map[string]fetch.Outcome{}}
	r := &Runner{Fetcher: ff, RequestsPerSecond: 1, Logger: nopLogger()}
	builds := []Build{{URL: "1"}, {URL: "2"}, {URL: "3"}, {URL: "4"}}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	results, err := r.Run(ctx, builds)
	if err == nil {
		t.Fatalf("expected pacing error after cancellation")
	}
	if len(results) != len(builds) {
		t.Fatalf("expected a result per build, got %d", len(results))
	}
	ff.mu.Lock()
	started := len(ff.calls)
	ff.mu.Unlock()
	if started >= len(builds) {
		t.Fatalf("expected pacing to hold back some builds, %d started", started)
	}
	last := results[len(results)-1]
	if last.Outcome.Status != fetch.StatusFailed || last.URL != "4" {
		t.Fatalf("expected unstarted build to be failed, got %+v", last)
	}
}

func TestRun_WithClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/found":
			_, _ = w.Write([]byte(`<a href="https://www.wowhead.com/talent-calc/blizzard/warrior/arms/ABC123">x</a>`))
		case "/nodata":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte(`<p>nothing</p>`))
		}
	}))
	defer srv.Close()

	c := fetch.New()
	c.Logger = zerolog.Nop()
	defer c.Close()

	var builds []Build
	for i := 0; i < 4; i++ {
		builds = append(builds, Build{Name: "found", URL: srv.URL + "/found"})
	}
	builds = append(builds, Build{Name: "nodata", URL: srv.URL + "/nodata"}, Build{Name: "empty", URL: srv.URL + "/empty"})

	results, err := (&Runner{Fetcher: c, Logger: nopLogger()}).Run(context.Background(), builds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := Summarize(results)
	if s != (Summary{Found: 4, NotFound: 2}) {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if results[0].Outcome.Talent != "warrior/arms/ABC123" {
		t.Fatalf("unexpected talent: %q", results[0].Outcome.Talent)
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Outcome: fetch.Found("x")},
		{Outcome: fetch.Found("")},
		{Outcome: fetch.NotFound()},
		{Outcome: fetch.Failed(errors.New("x"))},
	}
	if got := Summarize(results); got != (Summary{Found: 2, NotFound: 1, Failed: 1}) {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got := Summarize(nil); got != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", got)
	}
}
