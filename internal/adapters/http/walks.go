package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/numberhop/numberhop/internal/expr"
	"github.com/numberhop/numberhop/internal/runs"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// walkResponse is the wire shape of one tracked walk.
type walkResponse struct {
	ID         string          `json:"id"`
	Expression string          `json:"expression"`
	Steps      []int           `json:"steps"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Outcome    string          `json:"outcome"`
	Snapshot   domain.Snapshot `json:"snapshot"`
}

func walkFromRun(run *runs.Run) walkResponse {
	resp := walkResponse{
		ID:         run.ID,
		Expression: run.Expression,
		Steps:      run.Steps,
		StartedAt:  run.StartedAt,
		Outcome:    "running",
		Snapshot:   run.Snapshot(),
	}
	if when, ok := run.Finished(); ok {
		resp.FinishedAt = &when
		if errors.Is(run.Err(), domain.ErrRunCanceled) {
			resp.Outcome = "canceled"
		} else {
			resp.Outcome = "completed"
		}
	}
	return resp
}

// planResponse is the wire shape of a stateless walk preview.
type planResponse struct {
	Expression    string        `json:"expression"`
	Steps         []int         `json:"steps"`
	Moves         []domain.Move `json:"moves"`
	FinalPosition int           `json:"final_position"`
}

// PlanWalk handles the POST /api/v1/walks/plan request. Nothing is
// tracked: the walk is folded out instantly, without timers.
func (s *Server) PlanWalk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Expression string `json:"expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("PlanWalk: invalid request body", "error", err)
		return
	}

	steps := expr.Parse(body.Expression)
	if len(steps) == 0 {
		writeDomainError(w, domain.ErrNoSteps)
		return
	}

	writeJSON(w, http.StatusOK, planResponse{
		Expression:    body.Expression,
		Steps:         steps,
		Moves:         sequencer.Plan(steps),
		FinalPosition: sequencer.Final(steps),
	})
}

// StartWalk handles the POST /api/v1/walks request.
func (s *Server) StartWalk(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Expression string `json:"expression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("StartWalk: invalid request body", "error", err)
		return
	}

	run, err := s.Runs.Start(body.Expression)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, walkFromRun(run))
}

// ListWalks handles the GET /api/v1/walks request.
func (s *Server) ListWalks(w http.ResponseWriter, r *http.Request) {
	tracked := s.Runs.List()
	walks := make([]walkResponse, 0, len(tracked))
	for _, run := range tracked {
		walks = append(walks, walkFromRun(run))
	}
	writeJSON(w, http.StatusOK, walks)
}

// GetWalk handles the GET /api/v1/walks/{id} request.
func (s *Server) GetWalk(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, walkFromRun(run))
}

// CancelWalk handles the DELETE /api/v1/walks/{id} request.
func (s *Server) CancelWalk(w http.ResponseWriter, r *http.Request) {
	if err := s.Runs.Cancel(chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WalkEvents handles the GET /api/v1/walks/{id}/events request (SSE).
func (s *Server) WalkEvents(w http.ResponseWriter, r *http.Request) {
	run, err := s.Runs.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		slog.Error("WalkEvents: streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	snapshots := run.Watch(r.Context())

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	// A late subscriber starts from the current state instead of
	// waiting blank until the next hop.
	writeSnapshot(w, flusher, run.Snapshot())

	for {
		select {
		case <-r.Context().Done():
			slog.Info("SSE client disconnected", "walk_id", run.ID)
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			writeSnapshot(w, flusher, snap)
		case <-run.Done():
			// Deliver whatever is still queued, close with the final
			// state.
		drain:
			for {
				select {
				case snap, ok := <-snapshots:
					if !ok {
						break drain
					}
					writeSnapshot(w, flusher, snap)
				default:
					break drain
				}
			}
			writeSnapshot(w, flusher, run.Snapshot())
			return
		}
	}
}

func writeSnapshot(w io.Writer, flusher http.Flusher, snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		slog.Error("snapshot encode failed", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
