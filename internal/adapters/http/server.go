// Package http serves the quiz backend and the walk API over REST,
// with server-sent events for live walk snapshots.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/numberhop/numberhop/api"
	"github.com/numberhop/numberhop/internal/observability"
	"github.com/numberhop/numberhop/internal/runs"
	"github.com/numberhop/numberhop/pkg/domain"
	"github.com/numberhop/numberhop/pkg/ports"
)

// Server holds the adapters the HTTP surface is built from.
type Server struct {
	Players   ports.PlayerStore
	Questions ports.QuestionStore
	Scores    ports.ScoreStore
	Ranker    ports.Ranker
	Runs      *runs.Manager

	// BoardSize is the default leaderboard length when the request
	// does not ask for one.
	BoardSize int

	// Version is reported by /info.
	Version string

	// Metrics is optional; when set the handler exposes /metrics and
	// counts requests per route.
	Metrics  *observability.Metrics
	Registry *prometheus.Registry
}

// NewHandler wires the server's routes into a chi router.
func NewHandler(server *Server) http.Handler {
	r := chi.NewRouter()

	if server.Metrics != nil {
		r.Use(server.Metrics.Middleware)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", server.Login)
		r.Get("/players", server.ListPlayers)
		r.Delete("/players/{id}", server.DeletePlayer)
		r.Get("/players/{id}/scores", server.PlayerScores)

		r.Get("/questions", server.ListQuestions)
		r.Post("/questions", server.AddQuestion)
		r.Get("/questions/{id}", server.GetQuestion)
		r.Put("/questions/{id}", server.UpdateQuestion)
		r.Delete("/questions/{id}", server.DeleteQuestion)

		r.Post("/scores", server.SubmitScore)
		r.Get("/leaderboard", server.Leaderboard)

		r.Post("/walks", server.StartWalk)
		r.Post("/walks/plan", server.PlanWalk)
		r.Get("/walks", server.ListWalks)
		r.Get("/walks/{id}", server.GetWalk)
		r.Delete("/walks/{id}", server.CancelWalk)
		r.Get("/walks/{id}/events", server.WalkEvents)
	})

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)

	if server.Metrics != nil && server.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.Registry, promhttp.HandlerOpts{}))
	}

	// Swagger UI
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>NumberHop API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := openapi3.NewLoader().LoadFromData(api.Spec); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "numberhop-http",
		"version":     s.Version,
		"api_version": apiVersion,
	})
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps store and walk sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrRunNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoSteps):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrTooManyRuns):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, runs.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		slog.Error("request failed", "error", err)
	}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
