// internal/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"commit-watcher/internal/model"
)

// CommitReader exposes the most recently polled page of commits.
type CommitReader interface {
	Latest() []model.Commit
}

// CommitLookup resolves a single commit by identifier.
type CommitLookup interface {
	GetCommit(ctx context.Context, id int) (*model.Commit, bool)
}

// Handler is the container for API dependencies.
type Handler struct {
	reader CommitReader
	lookup CommitLookup
	logger *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(reader CommitReader, lookup CommitLookup, logger *slog.Logger) http.Handler {
	h := &Handler{
		reader: reader,
		lookup: lookup,
		logger: logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/commits", h.getLatestCommits)
		r.Get("/commits/{id}", h.getCommit)
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// getLatestCommits returns the page of commits observed by the last poll cycle.
// GET /v1/commits
func (h *Handler) getLatestCommits(w http.ResponseWriter, r *http.Request) {
	commits := h.reader.Latest()
	if commits == nil {
		commits = []model.Commit{}
	}
	respondWithJSON(w, http.StatusOK, commits)
}

// getCommit proxies a single commit lookup to the remote feed.
// GET /v1/commits/{id}
func (h *Handler) getCommit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid commit id. Must be an integer.")
		return
	}

	commit, ok := h.lookup.GetCommit(r.Context(), id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Commit not found")
		return
	}

	respondWithJSON(w, http.StatusOK, commit)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode API response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
