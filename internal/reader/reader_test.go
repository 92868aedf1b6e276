package reader

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conecta-senac/aprendiz/internal/model"
	"github.com/conecta-senac/aprendiz/internal/search"
	"github.com/conecta-senac/aprendiz/pkg/jina"
)

type fakeProvider struct {
	hits     []model.SearchHit
	lastMax  int
	searches int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, _ string, maxResults int) ([]model.SearchHit, error) {
	f.searches++
	f.lastMax = maxResults
	return f.hits, nil
}

type fakeJina struct {
	pages map[string]string
	err   error
	reads int
}

func (f *fakeJina) Read(_ context.Context, url string) (*jina.ReadResponse, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	content, ok := f.pages[url]
	if !ok {
		return nil, eris.Errorf("no page for %s", url)
	}
	return &jina.ReadResponse{Code: 200, Data: jina.ReadData{URL: url, Content: content}}, nil
}

func (f *fakeJina) Search(_ context.Context, _ string, _ ...jina.SearchOption) (*jina.SearchResponse, error) {
	return &jina.SearchResponse{}, nil
}

func newTestReader(provider *fakeProvider, jc jina.Client) *Reader {
	chain := search.NewChain("senac", []string{"senacrs.com.br"}, []search.Provider{provider})
	return New(chain, jc, "senac", time.Hour)
}

func TestSearchAndReadOverFetches(t *testing.T) {
	provider := &fakeProvider{}
	r := newTestReader(provider, &fakeJina{})

	r.SearchAndRead(context.Background(), "senac noticias", 4)
	assert.Equal(t, 6, provider.lastMax, "reader must over-fetch by 2 for filtering losses")
}

func TestSearchAndReadFiltersOffDomainHits(t *testing.T) {
	provider := &fakeProvider{hits: []model.SearchHit{
		{Title: "Cursos Senac", URL: "https://senacrs.com.br/cursos", Content: "snippet"},
		{Title: "Receitas da vovó", URL: "https://blog-de-receitas.com/x", Content: "noise"},
		{Title: "Notícia", URL: "https://portal.com/senac-abre-vagas", Content: "url mentions it"},
	}}
	r := newTestReader(provider, &fakeJina{})

	hits := r.SearchAndRead(context.Background(), "senac noticias", 6)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://senacrs.com.br/cursos", hits[0].URL)
	assert.Equal(t, "https://portal.com/senac-abre-vagas", hits[1].URL)
}

func TestSearchAndReadPrefersLongerExtraction(t *testing.T) {
	article := strings.Repeat("conteúdo completo da matéria. ", 20)
	provider := &fakeProvider{hits: []model.SearchHit{
		{Title: "Senac abre inscrições", URL: "https://senacrs.com.br/noticia", Content: "trecho curto"},
	}}
	jc := &fakeJina{pages: map[string]string{
		"https://senacrs.com.br/noticia": article,
	}}
	r := newTestReader(provider, jc)

	hits := r.SearchAndRead(context.Background(), "senac inscrições", 3)
	require.Len(t, hits, 1)
	assert.Equal(t, strings.TrimSpace(article), hits[0].Content)
}

func TestSearchAndReadKeepsSnippetWhenExtractionShort(t *testing.T) {
	provider := &fakeProvider{hits: []model.SearchHit{
		{Title: "Senac cursos", URL: "https://senacrs.com.br/cursos", Content: "um snippet razoavelmente informativo do provedor"},
	}}
	jc := &fakeJina{pages: map[string]string{
		"https://senacrs.com.br/cursos": "quase nada",
	}}
	r := newTestReader(provider, jc)

	hits := r.SearchAndRead(context.Background(), "senac cursos", 3)
	require.Len(t, hits, 1)
	assert.Equal(t, "um snippet razoavelmente informativo do provedor", hits[0].Content)
}

func TestSearchAndReadDegradesOnFetchFailure(t *testing.T) {
	provider := &fakeProvider{hits: []model.SearchHit{
		{Title: "Senac unidades", URL: "https://senacrs.com.br/unidades", Content: "snippet sobrevive"},
	}}
	jc := &fakeJina{err: eris.New("network down")}
	r := newTestReader(provider, jc)

	hits := r.SearchAndRead(context.Background(), "senac unidades", 3)
	require.Len(t, hits, 1)
	assert.Equal(t, "snippet sobrevive", hits[0].Content)
}

func TestExtractionIdempotentWithinCacheWindow(t *testing.T) {
	article := strings.Repeat("texto integral extraído da página. ", 10)
	provider := &fakeProvider{hits: []model.SearchHit{
		{Title: "Senac notícia", URL: "https://senacrs.com.br/n1", Content: "curto"},
	}}
	jc := &fakeJina{pages: map[string]string{
		"https://senacrs.com.br/n1": article,
	}}
	r := newTestReader(provider, jc)

	first := r.SearchAndRead(context.Background(), "senac notícia", 3)
	second := r.SearchAndRead(context.Background(), "senac notícia", 3)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, jc.reads, "second call must not re-fetch the URL")
	assert.Equal(t, 1, provider.searches, "result cache must also serve the second call")
}
