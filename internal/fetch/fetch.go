package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/hyperifyio/talentfetch/internal/extract"
)

// Fixed request policy towards the build site.
const (
	MaxConcurrentRequests = 5
	RequestTimeout        = 180 * time.Second
	MaxIdleConnsPerHost   = 10
	UserAgent             = "ArchonConfigUpdater/1.0"

	maxRedirectHops = 10
)

// ErrClosed is returned for fetches waiting on, or started after, Close.
var ErrClosed = errors.New("fetch: client closed")

// Client fetches talent build pages and extracts their talent string.
// At most MaxConcurrentRequests fetches perform HTTP I/O at any time; callers
// share one Client to share that bound.
type Client struct {
	// Logger receives diagnostics for degraded fetches. Defaults to the
	// global logger.
	Logger zerolog.Logger

	httpClient *http.Client
	extractor  extract.Extractor
	gate       *semaphore.Weighted

	life      context.Context
	shutdown  context.CancelFunc
	closeOnce sync.Once
}

// New returns a Client with the fixed request policy.
func New() *Client {
	life, shutdown := context.WithCancel(context.Background())
	return &Client{
		Logger:     log.Logger,
		httpClient: newHTTPClient(),
		extractor:  extract.LinkExtractor{},
		gate:       semaphore.NewWeighted(MaxConcurrentRequests),
		life:       life,
		shutdown:   shutdown,
	}
}

func newHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   MaxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Transport:     transport,
		Timeout:       RequestTimeout,
		CheckRedirect: checkRedirect,
	}
}

// Close wakes pending fetches with ErrClosed and drops idle connections.
// Requests already in flight run to completion.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.shutdown()
		c.httpClient.CloseIdleConnections()
	})
}

// Fetch performs a single GET of rawURL and classifies the response.
//
// Unreachable hosts, HTTP 500 and other non-2xx answers are logged and
// reported as StatusNotFound. Only a failed body read after a 2xx, a lost
// wait for a request slot, or a caller cancelling mid-request is StatusFailed.
func (c *Client) Fetch(ctx context.Context, rawURL string) Outcome {
	if err := c.acquire(ctx); err != nil {
		return Failed(fmt.Errorf("acquire request slot: %w", err))
	}
	defer c.gate.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		c.Logger.Warn().Err(err).Str("url", rawURL).Msg("invalid build url")
		return NotFound()
	}
	if !isHTTPScheme(req.URL) {
		c.Logger.Warn().Str("url", rawURL).Msg("unsupported url scheme")
		return NotFound()
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Failed(fmt.Errorf("request abandoned: %w", ctxErr))
		}
		c.Logger.Warn().Err(err).Str("url", rawURL).Msg("fetch failed")
		return NotFound()
	}
	defer resp.Body.Close()

	// The build site answers 500 when it lacks data for a build.
	if resp.StatusCode == http.StatusInternalServerError {
		c.Logger.Debug().Str("url", rawURL).Msg("no data for build")
		return NotFound()
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.Logger.Warn().Int("status", resp.StatusCode).Str("url", rawURL).Msg("unexpected status")
		return NotFound()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failed(fmt.Errorf("read response body: %w", err))
	}
	body = decodeText(body, resp.Header.Get("Content-Type"))

	talent, ok := c.extractor.Extract(body)
	if !ok {
		c.Logger.Debug().Str("url", rawURL).Msg("no talent link")
		return NotFound()
	}
	c.Logger.Debug().Str("url", rawURL).Str("talent", talent).Msg("talent found")
	return Found(talent)
}

// acquire takes one request slot, giving up when ctx is done or the client
// is closed. Abandoned waits do not hold a slot.
func (c *Client) acquire(ctx context.Context) error {
	if c.life.Err() != nil {
		return ErrClosed
	}
	actx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	stop := context.AfterFunc(c.life, func() { cancel(ErrClosed) })
	defer stop()

	if err := c.gate.Acquire(actx, 1); err != nil {
		if cause := context.Cause(actx); cause != nil {
			return cause
		}
		return err
	}
	return nil
}

func checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirectHops {
		return errors.New("too many redirects")
	}
	if !isHTTPScheme(req.URL) {
		return errors.New("redirect to unsupported scheme")
	}
	req.Header.Set("User-Agent", UserAgent)
	return nil
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

// decodeText converts body to UTF-8 according to the charset parameter of
// contentType. Unknown or missing charsets leave body untouched.
func decodeText(body []byte, contentType string) []byte {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body
	}
	name := strings.TrimSpace(params["charset"])
	if name == "" {
		return body
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return body
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return body
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return body
	}
	return out
}
