package jina

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRead(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     string
		wantTitle   string
		wantContent string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{
				"code": 200,
				"data": {"title": "Unidade Centro", "url": "https://senacrs.com.br/unidade", "content": "# Unidade Centro\nEndereço e horários."}
			}`,
			wantTitle:   "Unidade Centro",
			wantContent: "# Unidade Centro\nEndereço e horários.",
		},
		{
			name:    "server_error",
			status:  http.StatusInternalServerError,
			body:    `{"error": "boom"}`,
			wantErr: "unexpected status 500",
		},
		{
			name:    "malformed_response",
			status:  http.StatusOK,
			body:    `{not json`,
			wantErr: "unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
				assert.Equal(t, "markdown", r.Header.Get("X-Return-Format"))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))

			resp, err := client.Read(context.Background(), "https://senacrs.com.br/unidade")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, resp.Data.Title)
			assert.Equal(t, tt.wantContent, resp.Data.Content)
		})
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Path carries the query-escaped search string (spaces become +).
		assert.Equal(t, url.QueryEscape("cursos senac"), r.URL.Path[1:])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"code": 200,
			"data": [
				{"title": "Cursos", "url": "https://senacrs.com.br/cursos", "content": "Catálogo de cursos"},
				{"title": "EAD", "url": "https://senac.br/ead", "description": "Ensino a distância"}
			]
		}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))

	resp, err := client.Search(context.Background(), "cursos senac")
	require.NoError(t, err)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "https://senacrs.com.br/cursos", resp.Data[0].URL)
}

func TestSearchSiteFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "senacrs.com.br", r.URL.Query().Get("site"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": 200, "data": []}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))

	_, err := client.Search(context.Background(), "unidades", WithSiteFilter("senacrs.com.br"))
	require.NoError(t, err)
}

func TestSearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"code": 422}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithSearchBaseURL(srv.URL))

	resp, err := client.Search(context.Background(), "xyzzy")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.Equal(t, 422, resp.Code)
}
