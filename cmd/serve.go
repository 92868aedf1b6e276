package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conecta-senac/aprendiz/internal/chat"
	"github.com/conecta-senac/aprendiz/internal/model"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Servidor HTTP para a interface de chat",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("server listening", zap.Int("port", cfg.Server.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		zap.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/suggestions", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"suggestions": chat.Suggestions})
	})
	r.Post("/chat", app.handleChat)
	r.Post("/sessions/{id}/clear", app.handleClear)
	r.Get("/sessions/{id}/history", app.handleHistory)

	return r
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	// WebSearch, when present, flips the session's retrieval toggle
	// before the turn is processed.
	WebSearch *bool `json:"web_search,omitempty"`
}

type chatResponse struct {
	SessionID string            `json:"session_id"`
	Emotion   model.Emotion     `json:"emotion"`
	Content   string            `json:"content"`
	Sources   []model.SearchHit `json:"sources,omitempty"`
}

func (a *application) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	session := a.sessions.Get(req.SessionID)
	if req.WebSearch != nil {
		session.SetWebSearch(*req.WebSearch)
	}
	payload, sources := a.responder.Respond(r.Context(), session, req.Message)

	a.saveTurn(r.Context(), session.ID, "user", req.Message, "", nil)
	a.saveTurn(r.Context(), session.ID, "bot", payload.Content, payload.Emotion, sources)

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: session.ID,
		Emotion:   payload.Emotion,
		Content:   payload.Content,
		Sources:   sources,
	})
}

func (a *application) handleClear(w http.ResponseWriter, r *http.Request) {
	a.sessions.Clear(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: chi.URLParam(r, "id"),
		Emotion:   model.EmotionFeliz,
		Content:   chat.ClearedGreeting,
	})
}

func (a *application) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := a.store.History(r.Context(), chi.URLParam(r, "id"), 100)
	if err != nil {
		zap.L().Error("history query failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

func (a *application) saveTurn(ctx context.Context, sessionID, speaker, message string, emotion model.Emotion, sources []model.SearchHit) {
	err := a.store.SaveTurn(ctx, sessionID, model.HistoryEntry{
		Timestamp: time.Now().UTC(),
		Speaker:   speaker,
		Message:   message,
		Emotion:   emotion,
		Sources:   sources,
	})
	if err != nil {
		zap.L().Warn("persist turn failed", zap.String("speaker", speaker), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}
