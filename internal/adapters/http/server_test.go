package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numberhop/numberhop/internal/adapters/memory"
	"github.com/numberhop/numberhop/internal/adapters/sqlstore"
	"github.com/numberhop/numberhop/internal/observability"
	"github.com/numberhop/numberhop/internal/runs"
	"github.com/numberhop/numberhop/internal/sequencer"
	"github.com/numberhop/numberhop/pkg/domain"
)

func fastWalkTimings() sequencer.Timings {
	return sequencer.Timings{
		Transition: time.Millisecond,
		Hold:       2 * time.Millisecond,
		Pause:      time.Millisecond,
	}
}

func newTestServer(t *testing.T, opts ...runs.Option) (*Server, http.Handler) {
	t.Helper()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := sqlstore.New(db)
	require.NoError(t, err)

	manager := runs.NewManager(opts...)
	t.Cleanup(manager.Close)

	server := &Server{
		Players:   store,
		Questions: store,
		Scores:    store,
		Ranker:    memory.NewRanker(),
		Runs:      manager,
		BoardSize: 10,
		Version:   "test",
	}
	return server, NewHandler(server)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func TestGetHealth(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decode[map[string]string](t, rr)
	assert.Equal(t, "ok", resp["status"])
}

func TestGetInfo(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	resp := decode[map[string]string](t, rr)
	assert.Equal(t, "numberhop-http", resp["app"])
	assert.Equal(t, "test", resp["version"])
	assert.Equal(t, "0.1.0", resp["api_version"])
}

func TestLogin(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/login", map[string]string{"username": "ada"})
	require.Equal(t, http.StatusOK, rr.Code)
	first := decode[domain.Player](t, rr)
	assert.Equal(t, "ada", first.Username)
	assert.NotZero(t, first.ID)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/login", map[string]string{"username": "ada"})
	require.Equal(t, http.StatusOK, rr.Code)
	again := decode[domain.Player](t, rr)
	assert.Equal(t, first.ID, again.ID)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/login", map[string]string{"username": "   "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestQuestionCRUD(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/questions", questionInput{Level: 1, Prompt: "2+3"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[domain.Question](t, rr)
	assert.Equal(t, 5, created.Answer)
	require.NotZero(t, created.ID)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/questions?level=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	listed := decode[[]domain.Question](t, rr)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	rr = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/questions/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, handler, http.MethodPut, fmt.Sprintf("/api/v1/questions/%d", created.ID), questionInput{Level: 2, Prompt: "10-4+1"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decode[domain.Question](t, rr)
	assert.Equal(t, 2, updated.Level)
	assert.Equal(t, 7, updated.Answer)

	rr = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/questions/%d", created.ID), nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/questions/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestQuestionValidation(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodGet, "/api/v1/questions?level=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/questions", questionInput{Level: 1, Prompt: "hop"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/questions", questionInput{Level: 0, Prompt: "2+3"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	wrong := 6
	rr = doJSON(t, handler, http.MethodPost, "/api/v1/questions", questionInput{Level: 1, Prompt: "2+3", Answer: &wrong})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	right := 5
	rr = doJSON(t, handler, http.MethodPost, "/api/v1/questions", questionInput{Level: 1, Prompt: "2+3", Answer: &right})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, handler, http.MethodPut, "/api/v1/questions/9999", questionInput{Level: 1, Prompt: "1+1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestScoresAndLeaderboard(t *testing.T) {
	_, handler := newTestServer(t)

	login := func(name string) domain.Player {
		rr := doJSON(t, handler, http.MethodPost, "/api/v1/login", map[string]string{"username": name})
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[domain.Player](t, rr)
	}
	submit := func(playerID int64, points int) {
		rr := doJSON(t, handler, http.MethodPost, "/api/v1/scores", map[string]any{
			"player_id": playerID, "level": 1, "points": points,
		})
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	ada := login("ada")
	grace := login("grace")
	submit(ada.ID, 30)
	submit(grace.ID, 50)
	submit(ada.ID, 10)

	rr := doJSON(t, handler, http.MethodGet, "/api/v1/leaderboard", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	board := decode[[]domain.LeaderboardEntry](t, rr)
	require.Len(t, board, 2)
	assert.Equal(t, domain.LeaderboardEntry{Rank: 1, Username: "grace", TotalPoints: 50}, board[0])
	assert.Equal(t, domain.LeaderboardEntry{Rank: 2, Username: "ada", TotalPoints: 40}, board[1])

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/leaderboard?size=1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.LeaderboardEntry](t, rr), 1)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/leaderboard?size=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/scores", ada.ID), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	scores := decode[[]domain.Score](t, rr)
	require.Len(t, scores, 2)
	assert.Equal(t, 10, scores[0].Points)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/scores", map[string]any{
		"player_id": 9999, "level": 1, "points": 5,
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/players/9999/scores", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletePlayer(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/login", map[string]string{"username": "ada"})
	require.Equal(t, http.StatusOK, rr.Code)
	ada := decode[domain.Player](t, rr)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/scores", map[string]any{
		"player_id": ada.ID, "level": 1, "points": 30,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/players/%d", ada.ID), nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/players", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]domain.Player](t, rr))

	rr = doJSON(t, handler, http.MethodGet, fmt.Sprintf("/api/v1/players/%d/scores", ada.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, handler, http.MethodDelete, fmt.Sprintf("/api/v1/players/%d", ada.ID), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlanWalk(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/walks/plan", map[string]string{"expression": "5+8-2"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	plan := decode[planResponse](t, rr)
	assert.Equal(t, []int{5, 8, -2}, plan.Steps)
	assert.Equal(t, 8, plan.FinalPosition)
	require.Len(t, plan.Moves, 3)
	// The second hop saturates at the top edge.
	assert.Equal(t, domain.Move{From: 5, To: 10, AppliedValue: 5, SequenceID: 1}, plan.Moves[1])

	// Nothing was tracked.
	rr = doJSON(t, handler, http.MethodGet, "/api/v1/walks", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[[]walkResponse](t, rr))

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/walks/plan", map[string]string{"expression": "no numbers"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestWalkLifecycle(t *testing.T) {
	mock := clock.NewMock()
	_, handler := newTestServer(t, runs.WithClock(mock), runs.WithTimings(fastWalkTimings()))

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/walks", map[string]string{"expression": "2"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	walk := decode[walkResponse](t, rr)
	require.NotEmpty(t, walk.ID)
	assert.Equal(t, []int{2}, walk.Steps)

	getWalk := func() walkResponse {
		rr := doJSON(t, handler, http.MethodGet, "/api/v1/walks/"+walk.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[walkResponse](t, rr)
	}

	require.Eventually(t, func() bool {
		return getWalk().Snapshot.Phase == domain.PhaseMoving
	}, time.Second, time.Millisecond)

	mock.Add(time.Millisecond) // transition fires, hop commits
	require.Eventually(t, func() bool {
		return getWalk().Snapshot.Position == 2
	}, time.Second, time.Millisecond)

	mock.Add(time.Millisecond) // settle fires, walk ends
	require.Eventually(t, func() bool {
		w := getWalk()
		return w.Outcome == "completed" && w.Snapshot.Phase == domain.PhaseIdle
	}, time.Second, time.Millisecond)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/walks", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]walkResponse](t, rr), 1)
}

func TestWalkCancelAndValidation(t *testing.T) {
	mock := clock.NewMock()
	_, handler := newTestServer(t, runs.WithClock(mock), runs.WithTimings(fastWalkTimings()))

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/walks", map[string]string{"expression": "no numbers"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, handler, http.MethodPost, "/api/v1/walks", map[string]string{"expression": "5-3"})
	require.Equal(t, http.StatusCreated, rr.Code)
	walk := decode[walkResponse](t, rr)

	rr = doJSON(t, handler, http.MethodDelete, "/api/v1/walks/"+walk.ID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/api/v1/walks/"+walk.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, handler, http.MethodDelete, "/api/v1/walks/"+walk.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWalkEventsStreamsFinishedWalk(t *testing.T) {
	mock := clock.NewMock()
	_, handler := newTestServer(t, runs.WithClock(mock), runs.WithTimings(fastWalkTimings()))

	rr := doJSON(t, handler, http.MethodPost, "/api/v1/walks", map[string]string{"expression": "2"})
	require.Equal(t, http.StatusCreated, rr.Code)
	walk := decode[walkResponse](t, rr)

	getPhase := func() domain.Phase {
		rr := doJSON(t, handler, http.MethodGet, "/api/v1/walks/"+walk.ID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[walkResponse](t, rr).Snapshot.Phase
	}
	require.Eventually(t, func() bool { return getPhase() == domain.PhaseMoving }, time.Second, time.Millisecond)
	mock.Add(time.Millisecond)
	mock.Add(time.Millisecond)
	require.Eventually(t, func() bool {
		rr := doJSON(t, handler, http.MethodGet, "/api/v1/walks/"+walk.ID, nil)
		return decode[walkResponse](t, rr).Outcome == "completed"
	}, time.Second, time.Millisecond)

	// The walk is over, so the stream replays the ping, the current
	// state and the final state, then closes.
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/walks/" + walk.ID + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var frames []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "data: {") {
			frames = append(frames, strings.TrimPrefix(line, "data: "))
		}
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, frames)

	var last domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(frames[len(frames)-1]), &last))
	assert.Equal(t, 2, last.Position)
	assert.Equal(t, domain.PhaseIdle, last.Phase)
	require.Len(t, last.Moves, 1)
	assert.Equal(t, domain.Move{From: 0, To: 2, AppliedValue: 2, SequenceID: 0}, last.Moves[0])
}

func TestWalkEventsUnknownWalk(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodGet, "/api/v1/walks/nope/events", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodOptions, "/api/v1/login", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)
	registry := prometheus.NewRegistry()
	server.Metrics = observability.New(registry)
	server.Registry = registry
	handler := NewHandler(server)

	rr := doJSON(t, handler, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, handler, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "numberhop_http_requests_total")
}

func TestOpenAPIAndSwaggerServed(t *testing.T) {
	_, handler := newTestServer(t)

	rr := doJSON(t, handler, http.MethodGet, "/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "NumberHop API")

	rr = doJSON(t, handler, http.MethodGet, "/swagger", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "swagger-ui")
}
