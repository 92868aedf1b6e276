package search

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conecta-senac/aprendiz/internal/model"
)

// stubProvider returns canned hits or an error and records calls.
type stubProvider struct {
	name    string
	hits    []model.SearchHit
	err     error
	calls   int
	queries []string
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(_ context.Context, query string, _ int) ([]model.SearchHit, error) {
	s.calls++
	s.queries = append(s.queries, query)
	return s.hits, s.err
}

func TestBiasQuery(t *testing.T) {
	chain := NewChain("senac", []string{"senacrs.com.br", "senac.br"}, nil)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "institution_absent_gets_site_bias",
			query: "cursos de gastronomia",
			want:  "site:senacrs.com.br OR site:senac.br cursos de gastronomia",
		},
		{
			name:  "institution_present_untouched",
			query: "cursos do Senac",
			want:  "cursos do Senac",
		},
		{
			name:  "case_insensitive_check",
			query: "SENAC ead",
			want:  "SENAC ead",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chain.BiasQuery(tt.query))
		})
	}
}

func TestChainFallsBackOnError(t *testing.T) {
	primary := &stubProvider{name: "tavily", err: eris.New("boom")}
	secondary := &stubProvider{name: "jina", hits: []model.SearchHit{
		{Title: "Cursos", URL: "https://senacrs.com.br/cursos", Content: "catálogo"},
	}}

	chain := NewChain("senac", []string{"senacrs.com.br"}, []Provider{primary, secondary})

	hits := chain.Search(context.Background(), "cursos do senac", 6)
	require.Len(t, hits, 1)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestChainFallsBackOnEmpty(t *testing.T) {
	primary := &stubProvider{name: "tavily"}
	secondary := &stubProvider{name: "jina", hits: []model.SearchHit{
		{Title: "EAD", URL: "https://senac.br/ead", Content: "ead"},
	}}

	chain := NewChain("senac", []string{"senac.br"}, []Provider{primary, secondary})

	hits := chain.Search(context.Background(), "senac ead", 6)
	require.Len(t, hits, 1)
	assert.Equal(t, "https://senac.br/ead", hits[0].URL)
}

func TestChainAllFailReturnsEmpty(t *testing.T) {
	primary := &stubProvider{name: "tavily", err: eris.New("down")}
	secondary := &stubProvider{name: "jina", err: eris.New("also down")}

	chain := NewChain("senac", []string{"senac.br"}, []Provider{primary, secondary})

	hits := chain.Search(context.Background(), "senac cursos", 6)
	assert.Empty(t, hits)
}

func TestChainNoProviders(t *testing.T) {
	chain := NewChain("senac", []string{"senac.br"}, nil)
	assert.Empty(t, chain.Search(context.Background(), "qualquer coisa", 6))
}

func TestChainDeduplicatesByURL(t *testing.T) {
	provider := &stubProvider{name: "tavily", hits: []model.SearchHit{
		{Title: "A", URL: "https://senac.br/a", Content: "a"},
		{Title: "A dup", URL: "https://senac.br/a", Content: "a again"},
		{Title: "No URL", URL: "", Content: "dropped"},
		{Title: "B", URL: "https://senac.br/b", Content: "b"},
	}}

	chain := NewChain("senac", []string{"senac.br"}, []Provider{provider})

	hits := chain.Search(context.Background(), "senac", 6)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://senac.br/a", hits[0].URL)
	assert.Equal(t, "https://senac.br/b", hits[1].URL)
}

func TestChainCachesResults(t *testing.T) {
	provider := &stubProvider{name: "tavily", hits: []model.SearchHit{
		{Title: "A", URL: "https://senac.br/a", Content: "a"},
	}}

	chain := NewChain("senac", []string{"senac.br"}, []Provider{provider},
		WithCacheTTL(time.Minute))

	first := chain.Search(context.Background(), "senac cursos", 6)
	second := chain.Search(context.Background(), "senac cursos", 6)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.calls, "second call must be served from cache")
}

func TestChainRateLimit(t *testing.T) {
	provider := &stubProvider{name: "tavily", hits: []model.SearchHit{
		{Title: "A", URL: "https://senac.br/a", Content: "a"},
	}}

	chain := NewChain("senac", []string{"senac.br"}, []Provider{provider},
		WithRateLimit(1))

	// First call consumes the burst; the second distinct query is refused.
	require.NotEmpty(t, chain.Search(context.Background(), "senac cursos", 6))
	assert.Empty(t, chain.Search(context.Background(), "senac unidades", 6))
	assert.Equal(t, 1, provider.calls)
}

func TestResolveUnitAddressesMergesAndDedupes(t *testing.T) {
	// The same URL comes back from both per-domain sub-queries.
	provider := &stubProvider{name: "tavily", hits: []model.SearchHit{
		{Title: "Unidade POA", URL: "https://senacrs.com.br/poa", Content: "endereço"},
	}}

	chain := NewChain("senac", []string{"senacrs.com.br", "senac.br"}, []Provider{provider})

	hits := chain.ResolveUnitAddresses(context.Background(), "Porto Alegre")
	require.Len(t, hits, 1)
	assert.Equal(t, 2, provider.calls)
	assert.Contains(t, provider.queries[0], "site:senacrs.com.br unidades Porto Alegre")
	assert.Contains(t, provider.queries[1], "site:senac.br unidades Porto Alegre")
}
