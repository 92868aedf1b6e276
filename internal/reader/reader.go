// Package reader enriches search hits with full article text extracted
// from the hit URLs.
package reader

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/conecta-senac/aprendiz/internal/model"
	"github.com/conecta-senac/aprendiz/internal/search"
	"github.com/conecta-senac/aprendiz/pkg/jina"
)

// maxConcurrentReads bounds parallel article fetches within one turn.
const maxConcurrentReads = 4

// snippetGrowthFactor: extracted text replaces the snippet only when it is
// meaningfully longer than what the search provider already returned.
const snippetGrowthFactor = 1.5

// Reader runs search-then-extract: it over-fetches search hits, discards
// off-domain noise the bias rewrite let through, and upgrades the
// surviving snippets to full article text where extraction succeeds.
type Reader struct {
	chain       *search.Chain
	jina        jina.Client
	institution string

	articles *gocache.Cache // url → extracted text
	results  *gocache.Cache // query|max → []model.SearchHit
}

// New creates a Reader. Extraction is cached per URL and per (query, max)
// for the given TTL; extraction is idempotent per URL inside that window.
func New(chain *search.Chain, jc jina.Client, institution string, ttl time.Duration) *Reader {
	return &Reader{
		chain:       chain,
		jina:        jc,
		institution: strings.ToLower(institution),
		articles:    gocache.New(ttl, 2*ttl),
		results:     gocache.New(ttl, 2*ttl),
	}
}

// SearchAndRead searches for the query and returns up to maxResults hits
// whose content is full extracted article text where available, snippet
// otherwise. Individual fetch failures degrade to the snippet; the batch
// never aborts.
func (r *Reader) SearchAndRead(ctx context.Context, query string, maxResults int) []model.SearchHit {
	key := query + "|" + strconv.Itoa(maxResults)
	if cached, ok := r.results.Get(key); ok {
		return cached.([]model.SearchHit)
	}

	// Over-fetch to compensate for filtering losses.
	hits := r.chain.Search(ctx, query, maxResults+2)

	kept := make([]model.SearchHit, 0, maxResults)
	for _, h := range hits {
		if len(kept) == maxResults {
			break
		}
		if !r.onDomain(h) {
			zap.L().Debug("reader: dropping off-domain hit", zap.String("url", h.URL))
			continue
		}
		kept = append(kept, h)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i := range kept {
		g.Go(func() error {
			text := r.extract(gCtx, kept[i].URL)
			if text != "" && float64(len(text)) > snippetGrowthFactor*float64(len(kept[i].Content)) {
				kept[i].Content = text
			}
			return nil
		})
	}
	_ = g.Wait()

	r.results.SetDefault(key, kept)
	return kept
}

// onDomain keeps a hit when either its title or URL mentions the
// institution. The bias rewrite can still surface generic off-domain
// results; those add noise to the model context.
func (r *Reader) onDomain(h model.SearchHit) bool {
	return strings.Contains(strings.ToLower(h.Title), r.institution) ||
		strings.Contains(strings.ToLower(h.URL), r.institution)
}

// extract fetches a URL and returns its main text, "" on any failure.
// Results are cached by URL so repeated reads inside the TTL window have
// no observable re-fetch side effects.
func (r *Reader) extract(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	if cached, ok := r.articles.Get(url); ok {
		return cached.(string)
	}

	resp, err := r.jina.Read(ctx, url)
	if err != nil {
		zap.L().Debug("reader: extraction failed, keeping snippet",
			zap.String("url", url),
			zap.Error(err),
		)
		return ""
	}

	text := strings.TrimSpace(resp.Data.Content)
	r.articles.SetDefault(url, text)
	return text
}
