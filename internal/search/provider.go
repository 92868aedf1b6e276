// Package search provides web retrieval through an ordered chain of
// providers with query biasing, caching and rate limiting.
package search

import (
	"context"

	"github.com/conecta-senac/aprendiz/internal/model"
	"github.com/conecta-senac/aprendiz/pkg/jina"
	"github.com/conecta-senac/aprendiz/pkg/tavily"
)

// Provider performs a web search and returns normalized hits.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error)
}

// TavilyProvider adapts a Tavily client to the Provider interface.
type TavilyProvider struct {
	client tavily.Client
}

// NewTavilyProvider wraps a Tavily client.
func NewTavilyProvider(client tavily.Client) *TavilyProvider {
	return &TavilyProvider{client: client}
}

func (p *TavilyProvider) Name() string { return "tavily" }

func (p *TavilyProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	resp, err := p.client.Search(ctx, tavily.SearchRequest{
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, len(resp.Results))
	for _, r := range resp.Results {
		hits = append(hits, model.SearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
		})
	}
	return hits, nil
}

// JinaProvider adapts a Jina Search client to the Provider interface.
type JinaProvider struct {
	client jina.Client
}

// NewJinaProvider wraps a Jina client.
func NewJinaProvider(client jina.Client) *JinaProvider {
	return &JinaProvider{client: client}
}

func (p *JinaProvider) Name() string { return "jina" }

func (p *JinaProvider) Search(ctx context.Context, query string, maxResults int) ([]model.SearchHit, error) {
	resp, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	hits := make([]model.SearchHit, 0, maxResults)
	for _, r := range resp.Data {
		if len(hits) == maxResults {
			break
		}
		// Jina splits the snippet between content and description
		// depending on the source; prefer content.
		snippet := r.Content
		if snippet == "" {
			snippet = r.Description
		}
		hits = append(hits, model.SearchHit{
			Title:   r.Title,
			URL:     r.URL,
			Content: snippet,
		})
	}
	return hits, nil
}
