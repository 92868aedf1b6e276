package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/conecta-senac/aprendiz/internal/chat"
	"github.com/conecta-senac/aprendiz/internal/config"
	"github.com/conecta-senac/aprendiz/internal/llm"
	"github.com/conecta-senac/aprendiz/internal/reader"
	"github.com/conecta-senac/aprendiz/internal/search"
	"github.com/conecta-senac/aprendiz/internal/store"
	"github.com/conecta-senac/aprendiz/pkg/anthropic"
	"github.com/conecta-senac/aprendiz/pkg/jina"
	"github.com/conecta-senac/aprendiz/pkg/tavily"
)

// application bundles the wired collaborators shared by the commands.
type application struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	responder *chat.Responder
	sessions  *chat.Manager
}

// newApplication wires store, search chain, article reader and language
// model from configuration. Missing API keys degrade the corresponding
// component instead of failing startup.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	jc := jina.NewClient(cfg.Jina.Key,
		jina.WithBaseURL(cfg.Jina.BaseURL),
		jina.WithSearchBaseURL(cfg.Jina.SearchBaseURL),
	)

	var providers []search.Provider
	if cfg.Tavily.Key != "" {
		providers = append(providers, search.NewTavilyProvider(tavily.NewClient(cfg.Tavily.Key,
			tavily.WithBaseURL(cfg.Tavily.BaseURL),
			tavily.WithSearchDepth(cfg.Tavily.Depth),
		)))
	}
	providers = append(providers, search.NewJinaProvider(jc))

	ttl := time.Duration(cfg.Search.CacheTTLMins) * time.Minute
	chain := search.NewChain(cfg.Search.Institution, cfg.Search.Domains, providers,
		search.WithCacheTTL(ttl),
		search.WithRateLimit(cfg.Search.RatePerMinute),
	)
	rd := reader.New(chain, jc, cfg.Search.Institution, ttl)

	var llmClient anthropic.Client
	if cfg.Anthropic.Key != "" {
		llmClient = anthropic.NewClient(cfg.Anthropic.Key)
	}
	adapter := llm.New(llmClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)

	responder := chat.NewResponder(adapter, chain, rd, st, chat.ResponderConfig{
		SearchEnabled: cfg.Search.Enabled,
		MaxResults:    cfg.Search.MaxResults,
		Temperature:   cfg.Chat.Temperature,
		HistoryPairs:  cfg.Chat.HistoryPairs,
	})

	return &application{
		cfg:       cfg,
		store:     st,
		responder: responder,
		sessions:  chat.NewManager(cfg.Search.Enabled),
	}, nil
}

func (a *application) close() {
	a.store.Close()
}
