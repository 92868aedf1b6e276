package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/conecta-senac/aprendiz/internal/model"
)

// Chain tries providers in priority order, returning the first non-empty
// success. It never returns an error: when every provider fails or none
// is configured, the result is an empty hit list.
type Chain struct {
	providers   []Provider
	institution string
	domains     []string
	limiter     *rate.Limiter
	cache       *gocache.Cache
}

// Option configures a Chain.
type Option func(*Chain)

// WithRateLimit caps provider calls at n per minute. Searches beyond the
// budget return cached or empty results instead of blocking the turn.
func WithRateLimit(perMinute int) Option {
	return func(c *Chain) {
		if perMinute > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
		}
	}
}

// WithCacheTTL sets how long search results are cached per (query, max)
// key.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Chain) {
		c.cache = gocache.New(ttl, 2*ttl)
	}
}

// NewChain creates a provider chain biased toward the institution's web
// domains. Providers are tried in order.
func NewChain(institution string, domains []string, providers []Provider, opts ...Option) *Chain {
	c := &Chain{
		providers:   providers,
		institution: strings.ToLower(institution),
		domains:     domains,
		cache:       gocache.New(time.Hour, 2*time.Hour),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BiasQuery rewrites a query to prefer the institution's known domains
// when the institution name is absent from the raw query. Computed once
// per call and applied identically for every provider.
func (c *Chain) BiasQuery(query string) string {
	if c.institution == "" || len(c.domains) == 0 {
		return query
	}
	if strings.Contains(strings.ToLower(query), c.institution) {
		return query
	}
	sites := make([]string, len(c.domains))
	for i, d := range c.domains {
		sites[i] = "site:" + d
	}
	return strings.Join(sites, " OR ") + " " + query
}

// Search runs the provider chain for a query. Hits are normalized,
// deduplicated by URL and cached. All failures degrade to an empty list.
func (c *Chain) Search(ctx context.Context, query string, maxResults int) []model.SearchHit {
	if len(c.providers) == 0 {
		return nil
	}

	biased := c.BiasQuery(query)
	key := cacheKey(biased, maxResults)

	if cached, ok := c.cache.Get(key); ok {
		return cached.([]model.SearchHit)
	}

	if c.limiter != nil && !c.limiter.Allow() {
		zap.L().Warn("search: rate limit reached, skipping",
			zap.String("query", query),
		)
		return nil
	}

	for _, p := range c.providers {
		hits, err := p.Search(ctx, biased, maxResults)
		if err != nil {
			zap.L().Debug("search: provider failed, trying next",
				zap.String("provider", p.Name()),
				zap.String("query", biased),
				zap.Error(err),
			)
			continue
		}
		hits = model.DedupeHits(hits)
		if len(hits) == 0 {
			continue
		}
		c.cache.SetDefault(key, hits)
		return hits
	}

	return nil
}

// ResolveUnitAddresses searches each configured domain for units in the
// given city and merges the results, deduplicating by URL. The first
// domain gets the full result budget, the rest a reduced one.
func (c *Chain) ResolveUnitAddresses(ctx context.Context, city string) []model.SearchHit {
	var merged []model.SearchHit
	for i, domain := range c.domains {
		max := 6
		if i > 0 {
			max = 4
		}
		q := fmt.Sprintf("site:%s unidades %s", domain, city)
		merged = append(merged, c.Search(ctx, q, max)...)
	}
	return model.DedupeHits(merged)
}

func cacheKey(query string, maxResults int) string {
	return fmt.Sprintf("%d|%s", maxResults, query)
}
