package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/relcontext/internal/cache"
	"github.com/ppiankov/relcontext/internal/logging"
	"github.com/ppiankov/relcontext/internal/model"
	"github.com/ppiankov/relcontext/internal/util"
	"github.com/ppiankov/relcontext/internal/worker"
)

// StatusError reports a non-2xx answer from the server.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, e.Status)
}

const maxAttempts = 3

// retrySleep is swapped out by tests.
var retrySleep = time.Sleep

// Client annotates text through a CoreNLP-compatible HTTP server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	annotators string
	maxBytes   int64
	limiter    *worker.Limiter
	cache      cache.Cache
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache stores annotations in c.
func WithCache(c cache.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithLimiter throttles requests through l.
func WithLimiter(l *worker.Limiter) Option {
	return func(cl *Client) { cl.limiter = l }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = logging.OrNop(l) }
}

// NewClient creates a client for the server described by cfg.
func NewClient(cfg model.ParserConfig, opts ...Option) (*Client, error) {
	proxy, err := util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)
	if err != nil {
		return nil, err
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxy

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		baseURL:    cfg.URL,
		annotators: cfg.Annotators,
		maxBytes:   cfg.MaxBodyBytes,
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		cache:      cache.NopCache{},
		logger:     zap.NewNop(),
	}
	if c.maxBytes <= 0 {
		c.maxBytes = 8 << 20
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Annotate returns the annotation of text, from the cache when present.
// Server errors and 429s are retried with backoff.
func (c *Client) Annotate(ctx context.Context, text string) (*Annotation, error) {
	key := cache.AnnotationKey(c.baseURL, c.annotators, text)
	var cached Annotation
	if cache.Load(c.cache, key, &cached) {
		c.logger.Debug("annotation cache hit", zap.String("key", key))
		return &cached, nil
	}

	var (
		a   *Annotation
		err error
	)
	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		a, err = c.annotateOnce(ctx, text)
		if err == nil {
			break
		}
		if attempt == maxAttempts || !isRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
		c.logger.Warn("annotation request failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
		retrySleep(backoff)
		backoff *= 2
	}

	if err := cache.Store(c.cache, key, a, 0); err != nil {
		c.logger.Warn("annotation cache write failed", zap.Error(err))
	}
	return a, nil
}

func (c *Client) annotateOnce(ctx context.Context, text string) (*Annotation, error) {
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	props, err := json.Marshal(map[string]string{
		"annotators":   c.annotators,
		"outputFormat": "json",
	})
	if err != nil {
		return nil, fmt.Errorf("encode properties: %w", err)
	}
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	q := endpoint.Query()
	q.Set("properties", string(props))
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewBufferString(text))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	a, err := Decode(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return a, nil
}

// isRetryable reports whether a failed request may succeed on retry:
// 5xx and 429 answers, and transport failures.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
