// Package fetch resolves fetch targets to raw content plus transport
// metadata, subject to per-host throttling and a per-request timeout.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/autocheckrh/reconciler/internal/metrics"
	"github.com/autocheckrh/reconciler/internal/throttle"
)

// Result carries everything observed while resolving one target. It is
// created once per target, is immutable after creation, and is owned by the
// worker that produced it until the pool joins.
type Result struct {
	Target     string
	FinalURL   string
	StatusCode int
	Elapsed    time.Duration
	Body       string
	Err        string
}

// OK reports whether the fetch produced usable content.
func (r Result) OK() bool {
	return r.Err == "" && r.Body != ""
}

// Config holds the fetcher knobs.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher resolves targets over HTTP via a shared Colly collector, or
// directly from disk for file targets. Safe for concurrent use.
type Fetcher struct {
	base     *colly.Collector
	registry *throttle.Registry
	logger   *zap.Logger
}

// New constructs a configured Fetcher.
func New(cfg Config, registry *throttle.Registry, logger *zap.Logger) *Fetcher {
	base := colly.NewCollector(
		colly.Async(true),
		colly.UserAgent(cfg.UserAgent),
	)
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.Timeout)

	return &Fetcher{
		base:     base,
		registry: registry,
		logger:   logger,
	}
}

// Fetch resolves a single target. Transport failures are captured on the
// result, never returned: one bad target must not disturb its siblings.
// Elapsed wall-clock time is recorded on every path.
func (f *Fetcher) Fetch(ctx context.Context, target string) (res Result) {
	start := time.Now()
	res.Target = target
	defer func() {
		res.Elapsed = time.Since(start)
		outcome := metrics.OutcomeOK
		if res.Err != "" {
			outcome = metrics.OutcomeError
		}
		metrics.FetchesTotal.WithLabelValues(outcome).Inc()
	}()

	if strings.TrimSpace(target) == "" {
		res.Err = "empty url"
		return res
	}

	u := NormalizeTarget(target)
	if IsFileTarget(u) {
		f.fetchFile(u, &res)
		return res
	}

	if wait := f.registry.Reserve(u); wait > 0 {
		metrics.ThrottleWaitSeconds.Observe(wait.Seconds())
		f.logger.Debug("throttling fetch", zap.String("url", u), zap.Duration("wait", wait))
		pause(ctx, wait)
	}
	if err := ctx.Err(); err != nil {
		res.Err = err.Error()
		return res
	}

	f.fetchHTTP(u, &res)
	return res
}

// fetchFile reads a file target directly. No throttling applies.
func (f *Fetcher) fetchFile(u string, res *Result) {
	path := strings.TrimPrefix(u, "file://")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			res.Err = fmt.Sprintf("file not found: %s", path)
		} else {
			res.Err = err.Error()
		}
		return
	}
	res.StatusCode = http.StatusOK
	res.FinalURL = u
	res.Body = string(data)
}

func (f *Fetcher) fetchHTTP(u string, res *Result) {
	collector := f.base.Clone()
	resultCh := make(chan Result, 1)
	var once sync.Once
	send := func(r Result) {
		once.Do(func() { resultCh <- r })
	}

	collector.OnResponse(func(r *colly.Response) {
		out := Result{
			FinalURL:   r.Request.URL.String(),
			StatusCode: r.StatusCode,
		}
		// only treat declared textual/markup payloads as content; binary
		// bodies stay empty rather than being pushed into the extractor
		ct := strings.ToLower(r.Headers.Get("Content-Type"))
		if ct == "" || strings.Contains(ct, "text") || strings.Contains(ct, "html") {
			out.Body = string(r.Body)
		}
		send(out)
	})

	collector.OnError(func(r *colly.Response, err error) {
		out := Result{}
		if r != nil {
			out.StatusCode = r.StatusCode
			if r.Request != nil && r.Request.URL != nil {
				out.FinalURL = r.Request.URL.String()
			}
		}
		if err == nil {
			err = errors.New("unknown transport error")
		}
		out.Err = err.Error()
		send(out)
	})

	if err := collector.Visit(u); err != nil {
		res.Err = err.Error()
		return
	}
	collector.Wait()

	select {
	case out := <-resultCh:
		res.FinalURL = out.FinalURL
		res.StatusCode = out.StatusCode
		res.Body = out.Body
		res.Err = out.Err
	default:
		res.Err = "fetch produced no result"
	}
}

func pause(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
