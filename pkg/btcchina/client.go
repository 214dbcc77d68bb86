package btcchina

import (
	"context"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	httpClient "btcchina/internal/http"
	"btcchina/internal/metrics"
	"btcchina/internal/ratelimit"
	"btcchina/pkg/core"
)

const (
	privatePath = "/api_trade_v1.php"
	dataPath    = "/data/"

	// tradesMethod is served only by the data mirror; ticker and order book must use
	// the primary server even though the vendor documents the mirror for them too.
	tradesMethod = "trades"

	headerUserAgent     = "User-Agent"
	headerAuthorization = "Authorization"
	headerTonce         = "Json-Rpc-Tonce"
)

// Handler receives the outcome of an async call. It is invoked exactly once,
// with either a response or an error.
type Handler func(*Response, error)

// Client is a BTC China API client. It is immutable after New and safe for concurrent use.
type Client struct {
	config      *core.Config
	httpClient  *httpClient.Client
	signer      *Signer
	rateLimiter *ratelimit.RateLimiter
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Options)

// Options holds construction-time options for the Client.
type Options struct {
	Logger     zerolog.Logger
	Registerer prometheus.Registerer
	Tonces     *TonceGenerator
	// RateLimiter overrides the limiter built from Config.RateLimitRequests.
	RateLimiter *ratelimit.RateLimiter
}

// WithLogger sets the logger used for request and response debug lines.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithMetrics registers request metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = reg
	}
}

// WithRateLimit throttles all calls made by the client to requests per period.
// Non-positive values leave rate limiting off.
func WithRateLimit(requests int, period time.Duration) Option {
	return func(o *Options) {
		if requests > 0 && period > 0 {
			o.RateLimiter = ratelimit.New(requests, period)
		}
	}
}

// WithTonceGenerator shares a tonce generator between clients using the same key,
// so their tonces never collide.
func WithTonceGenerator(g *TonceGenerator) Option {
	return func(o *Options) {
		o.Tonces = g
	}
}

// New creates a Client. Missing credentials are not an error; private calls will fail
// with a validation error instead.
func New(config *core.Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	cfg := *config
	config = &cfg

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := options.Logger
	if config.LogLevel != "" {
		level, err := zerolog.ParseLevel(config.LogLevel)
		if err != nil {
			level = zerolog.InfoLevel
		}
		logger = logger.Level(level)
	}

	hc, err := httpClient.NewClient(&httpClient.Config{
		Headers: map[string]string{headerUserAgent: config.UserAgent},
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	rl := options.RateLimiter
	if rl == nil && config.RateLimitRequests > 0 {
		rl = ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod)
	}

	var m *metrics.Metrics
	if options.Registerer != nil {
		m, err = metrics.New(options.Registerer)
		if err != nil {
			hc.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	creds := config.Credentials
	if creds != nil {
		c := *creds
		creds = &c
	}

	return &Client{
		config:      config,
		httpClient:  hc,
		signer:      NewSigner(creds, options.Tonces),
		rateLimiter: rl,
		metrics:     m,
		logger:      logger,
	}, nil
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

// PublicRequest issues an unauthenticated GET for a market-data method. params must be a
// key/value mapping (core.Params, map[string]any, map[string]string or url.Values);
// anything else fails with a validation error before any I/O.
func (c *Client) PublicRequest(ctx context.Context, method string, params any) (*Response, error) {
	start := time.Now()
	resp, err := c.publicRequest(ctx, method, params)
	c.observe(metrics.KindPublic, method, start, err)
	return resp, err
}

func (c *Client) publicRequest(ctx context.Context, method string, params any) (*Response, error) {
	query, err := queryValues(params)
	if err != nil {
		return nil, err
	}
	if method == "" {
		return nil, core.NewValidationError("public request: method is required")
	}

	target := c.publicURL(method)
	info := requestInfo{httpMethod: "GET", url: target, params: params}

	if err := c.wait(ctx, info); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, target, c.config.Timeout, httpClient.WithQueryValues(query))
	return normalize(info, resp, err)
}

func (c *Client) publicURL(method string) string {
	base := c.config.ServerURL
	if method == tradesMethod {
		base = c.config.DataURL
	}
	return strings.TrimRight(base, "/") + dataPath + method
}

// PrivateRequest issues a signed JSON-RPC call. params must be a slice or array of
// scalars; anything else fails with a validation error before any I/O. Missing
// credentials are also a validation error. Private requests have no timeout unless
// Config.PrivateTimeout is set.
func (c *Client) PrivateRequest(ctx context.Context, method string, params any) (*Response, error) {
	start := time.Now()
	resp, err := c.privateRequest(ctx, method, params)
	c.observe(metrics.KindPrivate, method, start, err)
	return resp, err
}

func (c *Client) privateRequest(ctx context.Context, method string, params any) (*Response, error) {
	list, err := paramList(params)
	if err != nil {
		return nil, err
	}
	if err := c.signer.Check(method); err != nil {
		return nil, err
	}

	target := strings.TrimRight(c.config.ServerURL, "/") + privatePath
	info := requestInfo{
		httpMethod: "POST",
		url:        target,
		params:     list,
		rpcMethod:  method,
	}

	// Tonces are drawn after the limiter wait, never before.
	if err := c.wait(ctx, info); err != nil {
		return nil, err
	}

	sig, err := c.signer.Sign(method, list)
	if err != nil {
		return nil, err
	}
	info.tonce = sig.Tonce

	c.logger.Debug().
		Str("method", method).
		Int64("tonce", sig.Tonce).
		Int("params", len(list)).
		Msg("signed private request")

	resp, err := c.httpClient.Post(ctx, target, core.NewEnvelope(method, list), c.config.PrivateTimeout,
		httpClient.WithHeaders(map[string]string{
			headerAuthorization: sig.Authorization,
			headerTonce:         sig.TonceHeader(),
		}))
	return normalize(info, resp, err)
}

// PublicRequestAsync runs PublicRequest on a new goroutine and hands the outcome to
// handler. A nil handler is reported synchronously and nothing is sent.
func (c *Client) PublicRequestAsync(ctx context.Context, method string, params any, handler Handler) error {
	return c.async(handler, func() (*Response, error) {
		return c.PublicRequest(ctx, method, params)
	})
}

// PrivateRequestAsync runs PrivateRequest on a new goroutine and hands the outcome to
// handler. A nil handler is reported synchronously and nothing is sent.
func (c *Client) PrivateRequestAsync(ctx context.Context, method string, params any, handler Handler) error {
	return c.async(handler, func() (*Response, error) {
		return c.PrivateRequest(ctx, method, params)
	})
}

func (c *Client) async(handler Handler, call func() (*Response, error)) error {
	if handler == nil {
		return core.NewValidationError("%v", core.ErrNilHandler)
	}
	go func() {
		handler(call())
	}()
	return nil
}

// wait applies the optional rate limiter. A cancelled wait is a transport failure.
func (c *Client) wait(ctx context.Context, info requestInfo) error {
	if c.rateLimiter == nil {
		return nil
	}
	err := c.rateLimiter.Wait(ctx)
	c.metrics.ObserveRateLimit(err == nil)
	if err != nil {
		return core.NewTransportError(err).WithRequest(info.String())
	}
	return nil
}

func (c *Client) observe(kind, method string, start time.Time, err error) {
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = "unknown"
		if k, ok := core.KindOf(err); ok {
			outcome = strings.ToLower(k.String())
		}
	}
	c.metrics.Observe(kind, method, outcome, time.Since(start))
}

// queryValues converts a public params mapping into query values.
func queryValues(params any) (url.Values, error) {
	switch p := params.(type) {
	case url.Values:
		if p == nil {
			break
		}
		return p, nil
	case core.Params:
		if p == nil {
			break
		}
		return mapToValues(p), nil
	case map[string]any:
		if p == nil {
			break
		}
		return mapToValues(p), nil
	case map[string]string:
		if p == nil {
			break
		}
		values := make(url.Values, len(p))
		for k, v := range p {
			values.Set(k, v)
		}
		return values, nil
	}
	return nil, core.NewValidationError(
		"public request: params %v must be a key/value mapping. If no params then pass an empty core.Params{}", params)
}

func mapToValues(m map[string]any) url.Values {
	values := make(url.Values, len(m))
	for k, v := range m {
		if s, ok := scalar(v); ok {
			values.Set(k, formatParam(s))
		}
	}
	return values
}

// paramList converts private params into a positional list. Elements are
// dereferenced like paramArray does, but a nil element is sent as null.
// Every element must be a scalar.
func paramList(params any) ([]any, error) {
	rv := reflect.ValueOf(params)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			break
		}
		fallthrough
	case reflect.Array:
		list := make([]any, rv.Len())
		for i := range list {
			v, ok := scalar(rv.Index(i).Interface())
			if !ok || v == nil {
				continue
			}
			if !isScalar(v) {
				return nil, core.NewValidationError(
					"private request: param %d (%v) must be a string, number or boolean", i, v)
			}
			list[i] = v
		}
		return list, nil
	}
	return nil, core.NewValidationError(
		"private request: params %v must be an array. If no params then pass an empty slice []any{}", params)
}

func isScalar(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
