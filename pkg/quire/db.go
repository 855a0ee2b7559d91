// Package quire provides a database-like interface over a spreadsheet.
// It exposes a fluent query builder (Select, Eq, Single, Insert, Update)
// on top of a backend that can only return a whole sheet or accept a
// single write, and synthesises filtering and projection client-side.
package quire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Backend names reported by DB.Backend.
const (
	BackendAppsScript = "apps-script"
	BackendSheets     = "sheets"
	BackendNone       = "none"
)

// DefaultEndpointPattern is the substring an Apps Script web app URL contains.
const DefaultEndpointPattern = "script.google.com"

const defaultTimeout = 30 * time.Second

var (
	// ErrNotConfigured is reported by every operation on an unconfigured DB.
	ErrNotConfigured = errors.New("data backend is not configured")
	// ErrBackend wraps an error field returned inside a successful response.
	ErrBackend = errors.New("backend error")
)

// Config holds database configuration.
type Config struct {
	// Backend selects the transport: BackendAppsScript (default) or BackendSheets.
	Backend string
	// Endpoint is the Apps Script web app URL.
	Endpoint string
	// EndpointPattern must be contained in Endpoint for the DB to count as
	// configured. Empty accepts any http(s) URL.
	EndpointPattern string

	SpreadsheetID string
	Credentials   []byte // Service account JSON

	Timeout    time.Duration
	RateLimit  float64 // requests per second, 0 disables limiting
	HTTPClient *http.Client
}

// DefaultConfig returns a Config for the Apps Script backend.
func DefaultConfig() Config {
	return Config{
		Backend:         BackendAppsScript,
		EndpointPattern: DefaultEndpointPattern,
		Timeout:         defaultTimeout,
	}
}

// DB is a handle to the remote spreadsheet store. It is safe for concurrent use.
type DB struct {
	transport  Transport
	configured bool
	backend    string
	limiter    *rate.Limiter
	log        zerolog.Logger
	metrics    *metrics
}

// Option customises a DB.
type Option func(*DB)

// WithLogger sets the logger used for round-trip diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(db *DB) { db.log = l }
}

// WithRegisterer registers round-trip metrics with r.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(db *DB) { db.metrics = newMetrics(r) }
}

// WithTransport replaces the transport built from Config. The DB is
// considered configured.
func WithTransport(t Transport) Option {
	return func(db *DB) {
		db.transport = t
		db.configured = t != nil
		if t != nil {
			db.backend = t.Name()
		}
	}
}

// New creates a DB from cfg. A missing or malformed endpoint is not an
// error: the DB is returned in the unconfigured state and every operation
// reports ErrNotConfigured without touching the network.
func New(cfg Config, opts ...Option) (*DB, error) {
	db := &DB{
		backend: BackendNone,
		log:     zerolog.Nop(),
	}

	switch cfg.Backend {
	case "", BackendAppsScript:
		if endpointConfigured(cfg.Endpoint, cfg.EndpointPattern) {
			db.transport = newHTTPTransport(cfg.Endpoint, httpClientFor(cfg))
			db.configured = true
			db.backend = BackendAppsScript
		}
	case BackendSheets:
		if cfg.SpreadsheetID != "" && len(cfg.Credentials) > 0 {
			client, err := newSheetsClient(cfg)
			if err != nil {
				return nil, fmt.Errorf("failed to create sheets client: %w", err)
			}
			db.transport = NewSheetsTransport(client)
			db.configured = true
			db.backend = BackendSheets
		}
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	if cfg.RateLimit > 0 {
		db.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

func httpClientFor(cfg Config) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func endpointConfigured(endpoint, pattern string) bool {
	if endpoint == "" {
		return false
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.Contains(endpoint, pattern)
}

// Configured reports whether the DB has a usable backend.
func (db *DB) Configured() bool {
	return db.configured
}

// Backend returns the backend name, or BackendNone when unconfigured.
func (db *DB) Backend() string {
	return db.backend
}

// From starts an untyped query against table.
func (db *DB) From(table string) *Query[Row] {
	return From[Row](db, table)
}

// Close releases any resources held by the database.
func (db *DB) Close() error {
	return nil
}

type roundTrip func(ctx context.Context, t Transport) ([]byte, error)

// do performs one backend call with rate limiting, logging and metrics.
func (db *DB) do(ctx context.Context, op, sheet string, fn roundTrip) ([]byte, error) {
	if !db.configured {
		return nil, ErrNotConfigured
	}

	if db.limiter != nil {
		if err := db.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	log := db.log.With().
		Str("request_id", uuid.NewString()).
		Str("backend", db.backend).
		Str("op", op).
		Str("sheet", sheet).
		Logger()

	start := time.Now()
	body, err := fn(ctx, db.transport)
	elapsed := time.Since(start)

	db.metrics.observe(db.backend, op, elapsed, err)

	if err != nil {
		log.Warn().Err(err).Dur("duration", elapsed).Msg("backend call failed")
		return nil, err
	}
	log.Debug().Dur("duration", elapsed).Int("bytes", len(body)).Msg("backend call")
	return body, nil
}

func (db *DB) read(ctx context.Context, sheet string, params map[string]string) ([]byte, error) {
	return db.do(ctx, "read", sheet, func(ctx context.Context, t Transport) ([]byte, error) {
		return t.Read(ctx, sheet, params)
	})
}

func (db *DB) write(ctx context.Context, action Action, sheet string, payload any) ([]byte, error) {
	return db.do(ctx, string(action), sheet, func(ctx context.Context, t Transport) ([]byte, error) {
		return t.Write(ctx, action, sheet, payload)
	})
}

// update sends a patch through Patcher when the transport supports it and
// as the merged write payload otherwise.
func (db *DB) update(ctx context.Context, sheet string, filters []Filter, values, merged Row) ([]byte, error) {
	return db.do(ctx, string(ActionUpdate), sheet, func(ctx context.Context, t Transport) ([]byte, error) {
		if p, ok := t.(Patcher); ok {
			return p.Patch(ctx, sheet, filters, values)
		}
		return t.Write(ctx, ActionUpdate, sheet, merged)
	})
}
