// Package fetch implements the HTTP fetch layer shared by discovery and the
// raw archive downloader.
//
// A Fetcher owns one colly collector, and therefore one HTTP session with a
// shared cookie jar and connection pool. Every call to Get waits a random
// polite delay, honors the per-host rate limit, and retries timeouts only.
// Non-2xx responses are final: on these archives a missing page stays missing.
package fetch

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/magazine-corpus/internal/metrics"
	"github.com/JakeFAU/magazine-corpus/internal/ratelimit"
)

// Outcome classifies a finished Get call.
type Outcome string

// Fetch outcomes.
const (
	OutcomeSuccess   Outcome = "success"
	OutcomeStatus    Outcome = "status"
	OutcomeExhausted Outcome = "exhausted"
	OutcomeError     Outcome = "error"
)

// ReasonTimeoutsExhausted is the reason recorded when every retry timed out.
const ReasonTimeoutsExhausted = "multiple timeout attempts failed"

// Result is the outcome of one Get call.
type Result struct {
	URL        string
	StatusCode int
	Body       []byte
	Outcome    Outcome
	Attempts   int
	Err        error
}

// OK reports whether Body holds a 2xx response.
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Reason describes a failed result for ledgers and logs.
func (r Result) Reason() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return ""
	case OutcomeStatus:
		return http.StatusText(r.StatusCode)
	case OutcomeExhausted:
		return ReasonTimeoutsExhausted
	default:
		if r.Err != nil {
			return r.Err.Error()
		}
		return "unknown error"
	}
}

// Recorder receives permanent failures.
type Recorder interface {
	RecordStatus(key string, statusCode int)
	RecordError(key string, reason string)
}

// Config controls collector behavior and retry pacing.
type Config struct {
	UserAgent     string
	RespectRobots bool
	// Timeout is the per-request timeout. Defaults to 30s.
	Timeout time.Duration
	// DelayMin and DelayMax bound the random pause before every attempt.
	DelayMin time.Duration
	DelayMax time.Duration
	// Schedule lists the pauses after consecutive timeouts.
	Schedule []time.Duration
	// MaxRetries caps timeout retries. Defaults to len(Schedule).
	MaxRetries int
	// RPS limits requests per host. Zero disables the limiter.
	RPS float64
}

// Fetcher issues GET requests over a single persistent session.
type Fetcher struct {
	cfg      Config
	base     *colly.Collector
	limiter  *ratelimit.Limiter
	policy   *SchedulePolicy
	sleeper  Sleeper
	recorder Recorder
	logger   *zap.Logger
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithSleeper replaces the timer used between retries.
func WithSleeper(s Sleeper) Option {
	return func(f *Fetcher) { f.sleeper = s }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithRecorder sets where permanent failures are recorded.
func WithRecorder(r Recorder) Option {
	return func(f *Fetcher) { f.recorder = r }
}

type collectorHooks interface {
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

// New builds a Fetcher.
func New(cfg Config, opts ...Option) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	c := colly.NewCollector(colly.Async(false))
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true
	c.IgnoreRobotsTxt = !cfg.RespectRobots
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	}
	c.WithTransport(newHTTPTransport())
	c.SetRequestTimeout(cfg.Timeout)

	f := &Fetcher{
		cfg:     cfg,
		base:    c,
		limiter: ratelimit.New(ratelimit.Config{RPS: cfg.RPS, Burst: 1}),
		policy:  NewSchedulePolicy(cfg.Schedule, cfg.MaxRetries),
		sleeper: timerSleeper{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithRecorder returns a Fetcher sharing this session that records its
// permanent failures into r.
func (f *Fetcher) WithRecorder(r Recorder) *Fetcher {
	clone := *f
	clone.recorder = r
	return &clone
}

// Get fetches rawURL. It never returns an error; failures are described by
// the Result and, when a Recorder is set, recorded exactly once.
func (f *Fetcher) Get(ctx context.Context, rawURL string) Result {
	start := time.Now()
	res := f.get(ctx, rawURL)
	metrics.ObserveFetch(rawURL, string(res.Outcome), len(res.Body), time.Since(start))
	return res
}

func (f *Fetcher) get(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}
	for retry := 0; ; retry++ {
		if err := f.pace(ctx, rawURL); err != nil {
			res.Outcome = OutcomeError
			res.Err = err
			return res
		}
		res.Attempts++
		status, body, err := f.attempt(ctx, rawURL)
		switch {
		case err == nil && status >= 200 && status < 300:
			res.Outcome = OutcomeSuccess
			res.StatusCode = status
			res.Body = body
			return res
		case err == nil:
			res.Outcome = OutcomeStatus
			res.StatusCode = status
			f.logger.Warn("non-2xx response", zap.String("url", rawURL), zap.Int("status", status))
			f.record(res)
			return res
		case ctx.Err() != nil:
			res.Outcome = OutcomeError
			res.Err = ctx.Err()
			return res
		case f.policy.ShouldRetry(err, retry):
			pause := f.policy.Backoff(retry)
			f.logger.Warn("request timed out, pausing before retry",
				zap.String("url", rawURL),
				zap.Int("attempt", res.Attempts),
				zap.Duration("pause", pause),
			)
			metrics.ObserveRetry(rawURL)
			if sleepErr := f.sleeper.Sleep(ctx, pause); sleepErr != nil {
				res.Outcome = OutcomeError
				res.Err = sleepErr
				return res
			}
		case IsTimeout(err):
			res.Outcome = OutcomeExhausted
			res.Err = err
			f.logger.Error("giving up after repeated timeouts", zap.String("url", rawURL), zap.Int("attempts", res.Attempts))
			f.record(res)
			return res
		default:
			res.Outcome = OutcomeError
			res.Err = err
			f.logger.Error("request failed", zap.String("url", rawURL), zap.Error(err))
			f.record(res)
			return res
		}
	}
}

func (f *Fetcher) record(res Result) {
	if f.recorder == nil {
		return
	}
	if res.Outcome == OutcomeStatus {
		f.recorder.RecordStatus(res.URL, res.StatusCode)
		return
	}
	f.recorder.RecordError(res.URL, res.Reason())
}

func (f *Fetcher) pace(ctx context.Context, rawURL string) error {
	if err := sleepWithContext(ctx, jitter(f.cfg.DelayMin, f.cfg.DelayMax)); err != nil {
		return err
	}
	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return err
	}
	return nil
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string) (int, []byte, error) {
	var (
		status   int
		body     []byte
		fetchErr error
	)
	collector := f.base.Clone()
	collector.Context = ctx
	configureCollectorHooks(collector, &status, &body, &fetchErr)

	if err := collector.Visit(rawURL); err != nil {
		return status, nil, fmt.Errorf("visit %s: %w", rawURL, err)
	}
	if fetchErr != nil {
		return status, nil, fmt.Errorf("response %s: %w", rawURL, fetchErr)
	}
	return status, body, nil
}

func configureCollectorHooks(hooks collectorHooks, status *int, body *[]byte, fetchErr *error) {
	hooks.OnResponse(func(r *colly.Response) {
		*status = r.StatusCode
		*body = append([]byte(nil), r.Body...)
	})
	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*status = r.StatusCode
		}
		*fetchErr = err
	})
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
