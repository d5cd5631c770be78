// Package signedurl hands out time-limited download URLs for stored blobs,
// reusing a previously minted URL for the same principal and blob while it
// is still valid.
//
// A cached URL is never returned at or after its expiry instant. Two
// concurrent misses for the same pair may both mint; the last write wins
// and both URLs remain valid until their own expiry.
package signedurl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/gallery/service/internal/docstore"
)

// DefaultTTL is used when Resolve is called with a non-positive ttl.
const DefaultTTL = time.Hour

// ErrInvalidInput is returned for an empty principal or blob name, before any
// store is touched.
var ErrInvalidInput = errors.New("invalid input")

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Minter produces signed URLs for blobs. storage.BlobStore satisfies it.
type Minter interface {
	MintTemporaryURL(ctx context.Context, name string, ttl time.Duration) (string, error)
}

// Cache resolves signed URLs per (principal, blob) pair.
type Cache struct {
	minter  Minter
	repo    *Repository
	clock   Clock
	meter   metric.MeterProvider
	ttl     time.Duration
	refresh time.Duration

	hits     metric.Int64Counter
	mints    metric.Int64Counter
	failures metric.Int64Counter
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(cache *Cache) { cache.clock = c }
}

// WithMeterProvider records cache counters on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(cache *Cache) { cache.meter = mp }
}

// WithDefaultTTL sets the ttl used when Resolve receives a non-positive one.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(cache *Cache) {
		if ttl > 0 {
			cache.ttl = ttl
		}
	}
}

// WithRefreshWindow treats entries expiring within d as already expired, so
// callers always get at least d of validity.
func WithRefreshWindow(d time.Duration) Option {
	return func(cache *Cache) {
		if d > 0 {
			cache.refresh = d
		}
	}
}

// New creates a Cache minting through m and persisting entries through repo.
func New(m Minter, repo *Repository, opts ...Option) *Cache {
	c := &Cache{
		minter: m,
		repo:   repo,
		clock:  SystemClock,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.meter == nil {
		c.meter = otel.GetMeterProvider()
	}
	meter := c.meter.Meter("github.com/gallery/service/internal/signedurl")
	c.hits = counter(meter, "gallery.signedurl.hits", "Signed URLs served from the cache")
	c.mints = counter(meter, "gallery.signedurl.mints", "Signed URLs minted by the blob store")
	c.failures = counter(meter, "gallery.signedurl.mint_failures", "Failed signed URL mints")
	return c
}

// counter creates an Int64Counter, falling back to a no-op one when the
// provider rejects the instrument.
func counter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		log.Warn().Err(err).Str("instrument", name).Msg("metric counter unavailable")
		c, _ = noop.NewMeterProvider().Meter("").Int64Counter(name)
	}
	return c
}

// DefaultTTL returns the ttl used for non-positive Resolve ttls.
func (c *Cache) DefaultTTL() time.Duration {
	return c.ttl
}

// Resolve returns a URL for blobName valid until at least the cached expiry.
// A cached entry is reused while now is before its expiry; otherwise a new
// URL valid for ttl is minted and stored, replacing the old entry. A failed
// mint leaves the stored entry untouched and returns the mint error.
func (c *Cache) Resolve(ctx context.Context, principal, blobName string, ttl time.Duration) (string, error) {
	if principal == "" || blobName == "" {
		return "", fmt.Errorf("%w: principal and blob name are required", ErrInvalidInput)
	}
	if ttl <= 0 {
		ttl = c.ttl
	}
	logger := log.Ctx(ctx).With().Str("blob", blobName).Logger()

	now := c.clock.Now()
	e, err := c.repo.Get(ctx, principal, blobName)
	switch {
	case err == nil:
		if e.URL != "" && now.Add(c.refresh).Before(e.ExpiresAt) {
			c.hits.Add(ctx, 1)
			logger.Debug().Time("expires_at", e.ExpiresAt).Msg("signed url cache hit")
			return e.URL, nil
		}
	case errors.Is(err, docstore.ErrNotFound):
	default:
		logger.Warn().Err(err).Msg("signed url lookup failed, minting")
	}

	// The expiry is computed from the instant before minting, so the URL the
	// store signs lives at least until ExpiresAt.
	u, err := c.minter.MintTemporaryURL(ctx, blobName, ttl)
	if err != nil {
		c.failures.Add(ctx, 1)
		return "", fmt.Errorf("mint signed url for %q: %w", blobName, err)
	}
	c.mints.Add(ctx, 1)

	e = Entry{Principal: principal, BlobName: blobName, URL: u, ExpiresAt: now.Add(ttl)}
	if err := c.repo.Put(ctx, e); err != nil {
		logger.Warn().Err(err).Msg("signed url minted but not cached")
	} else {
		logger.Debug().Time("expires_at", e.ExpiresAt).Msg("signed url minted")
	}
	return u, nil
}

// Invalidate drops the cached entry for the pair.
func (c *Cache) Invalidate(ctx context.Context, principal, blobName string) error {
	if principal == "" || blobName == "" {
		return fmt.Errorf("%w: principal and blob name are required", ErrInvalidInput)
	}
	return c.repo.Delete(ctx, principal, blobName)
}
