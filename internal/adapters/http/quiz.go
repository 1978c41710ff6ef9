package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/numberhop/numberhop/internal/expr"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

// Login handles the POST /api/v1/login request.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("Login: invalid request body", "error", err)
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	player, err := s.Players.Login(r.Context(), username)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}

// ListPlayers handles the GET /api/v1/players request.
func (s *Server) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := s.Players.ListPlayers(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if players == nil {
		players = []domain.Player{}
	}
	writeJSON(w, http.StatusOK, players)
}

// DeletePlayer handles the DELETE /api/v1/players/{id} request.
// The player's scores go with the account.
func (s *Server) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	if err := s.Players.DeletePlayer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlayerScores handles the GET /api/v1/players/{id}/scores request.
func (s *Server) PlayerScores(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid player id")
		return
	}
	if _, err := s.Players.GetPlayer(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	scores, err := s.Scores.ScoresByPlayer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if scores == nil {
		scores = []domain.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}

// ListQuestions handles the GET /api/v1/questions request.
func (s *Server) ListQuestions(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(r.URL.Query().Get("level"))
	if err != nil || level < 1 {
		writeError(w, http.StatusBadRequest, "level must be a positive number")
		return
	}

	questions, err := s.Questions.QuestionsByLevel(r.Context(), level)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	writeJSON(w, http.StatusOK, questions)
}

// questionInput is the request body for adding or updating a question.
// Answer is optional; when present it must match where the walk lands.
type questionInput struct {
	Level  int    `json:"level"`
	Prompt string `json:"prompt"`
	Answer *int   `json:"answer,omitempty"`
}

func (in questionInput) toQuestion() (domain.Question, error) {
	if in.Level < 1 {
		return domain.Question{}, fmt.Errorf("level must be a positive number")
	}
	prompt := strings.TrimSpace(in.Prompt)
	steps := expr.Parse(prompt)
	if len(steps) == 0 {
		return domain.Question{}, fmt.Errorf("prompt %q holds no steps", prompt)
	}

	answer := sequencer.Final(steps)
	if in.Answer != nil && *in.Answer != answer {
		return domain.Question{}, fmt.Errorf("answer %d does not match the walk, which lands on %d", *in.Answer, answer)
	}

	return domain.Question{Level: in.Level, Prompt: prompt, Answer: answer}, nil
}

// AddQuestion handles the POST /api/v1/questions request.
func (s *Server) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var body questionInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("AddQuestion: invalid request body", "error", err)
		return
	}

	q, err := body.toQuestion()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.Questions.AddQuestion(r.Context(), &q); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, q)
}

// GetQuestion handles the GET /api/v1/questions/{id} request.
func (s *Server) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	q, err := s.Questions.GetQuestion(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// UpdateQuestion handles the PUT /api/v1/questions/{id} request.
func (s *Server) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}

	var body questionInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("UpdateQuestion: invalid request body", "error", err)
		return
	}

	q, err := body.toQuestion()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q.ID = id
	if err := s.Questions.UpdateQuestion(r.Context(), &q); err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := s.Questions.GetQuestion(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// DeleteQuestion handles the DELETE /api/v1/questions/{id} request.
func (s *Server) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid question id")
		return
	}
	if err := s.Questions.DeleteQuestion(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitScore handles the POST /api/v1/scores request.
func (s *Server) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PlayerID int64 `json:"player_id"`
		Level    int   `json:"level"`
		Points   int   `json:"points"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		slog.Warn("SubmitScore: invalid request body", "error", err)
		return
	}
	if body.Level < 1 {
		writeError(w, http.StatusBadRequest, "level must be a positive number")
		return
	}
	if body.Points < 0 {
		writeError(w, http.StatusBadRequest, "points must not be negative")
		return
	}

	player, err := s.Players.GetPlayer(r.Context(), body.PlayerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	score := domain.Score{PlayerID: player.ID, Level: body.Level, Points: body.Points}
	if err := s.Scores.AddScore(r.Context(), &score); err != nil {
		writeDomainError(w, err)
		return
	}

	// The stored score is the truth; a failed board update is repaired
	// by the next reconcile.
	if err := s.Ranker.Record(r.Context(), player.Username, score.Points); err != nil {
		slog.Warn("leaderboard update failed", "player", player.Username, "error", err)
	}

	writeJSON(w, http.StatusCreated, score)
}

// Leaderboard handles the GET /api/v1/leaderboard request.
func (s *Server) Leaderboard(w http.ResponseWriter, r *http.Request) {
	size := s.BoardSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "size must be a positive number")
			return
		}
		size = n
	}

	entries, err := s.Ranker.Top(r.Context(), size)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
