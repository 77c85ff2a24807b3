package httpapi

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/squadscore/squadscore/internal/infrastructure/repository/memory"
	"github.com/squadscore/squadscore/internal/platform/realtime"
	"github.com/squadscore/squadscore/internal/usecase"
)

type seqIDGenerator struct {
	prefix string
	next   int
}

func (g *seqIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("%s-%03d", g.prefix, g.next), nil
}

// newTestRouter wires the full stack over in-memory repositories with
// the development X-User-Id header enabled.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	users := memory.NewUserRepository(memory.SeedUsers())
	squads := memory.NewSquadRepository()
	leaderboards := memory.NewLeaderboardRepository()
	matches := memory.NewMatchRepository()
	chats := memory.NewChatRepository()
	memory.Cascade(squads, leaderboards, matches, chats)
	broker := realtime.NewBroker(8)
	t.Cleanup(broker.Close)

	squadSvc := usecase.NewSquadService(squads, leaderboards, matches, chats, users, &seqIDGenerator{prefix: "squad"}, nil)
	boardSvc := usecase.NewLeaderboardService(leaderboards, squads, matches, users, &seqIDGenerator{prefix: "board"})
	matchSvc := usecase.NewMatchService(matches, leaderboards, &seqIDGenerator{prefix: "match"}, broker)
	chatSvc := usecase.NewChatService(chats, squads, users, &seqIDGenerator{prefix: "chat"}, broker)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(squadSvc, boardSvc, matchSvc, chatSvc, broker, logger)

	return NewRouter(handler, nil, logger, true, nil)
}

func doJSON(t *testing.T, router http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-User-Id", userID)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	data, ok := envelope["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected object data field, got %v", envelope["data"])
	}
	return data
}

func TestRouter_SquadLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/squads", memory.UserIDAri, `{"name":"Night Owls"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create squad: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	created := dataField(t, rec)
	squadID, _ := created["id"].(string)
	inviteCode, _ := created["invite_code"].(string)
	if squadID == "" || inviteCode == "" {
		t.Fatalf("expected id and invite_code in create response, got %v", created)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/squads/join", memory.UserIDBima, `{"invite_code":"`+inviteCode+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join squad: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/squads/"+squadID+"/members", memory.UserIDBima, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list members: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal members: %v", err)
	}
	if len(envelope.Data) != 2 {
		t.Fatalf("expected 2 members, got %d", len(envelope.Data))
	}
}

func TestRouter_NonMemberGetsForbidden(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/squads", memory.UserIDAri, `{"name":"Night Owls"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create squad: expected 201, got %d", rec.Code)
	}
	squadID, _ := dataField(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodGet, "/v1/squads/"+squadID, memory.UserIDCika, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-member, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_DuplicateSquadNameConflicts(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/squads", memory.UserIDAri, `{"name":"Night Owls"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create squad: expected 201, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/squads", memory.UserIDBima, `{"name":"night owls"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate name, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_MatchResultWorkflow(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/leaderboards", memory.UserIDAri,
		`{"name":"Spring Season","game_name":"chess","member_user_ids":["`+memory.UserIDBima+`"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create leaderboard: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	boardID, _ := dataField(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/v1/match-results", memory.UserIDBima,
		`{"leaderboard_id":"`+boardID+`","lines":[{"player_id":"`+memory.UserIDBima+`","score":10,"outcome":"win"},{"player_id":"`+memory.UserIDAri+`","score":7,"outcome":"loss"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit result: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resultID, _ := dataField(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPatch, "/v1/match-results/"+resultID+"/approve", memory.UserIDBima, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("approve by non-admin: expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPatch, "/v1/match-results/"+resultID+"/approve", memory.UserIDAri, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/leaderboards/"+boardID, memory.UserIDBima, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get leaderboard: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	detail := dataField(t, rec)
	entries, ok := detail["entries"].([]any)
	if !ok || len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %v", detail["entries"])
	}
	top, _ := entries[0].(map[string]any)
	if got, _ := top["player_id"].(string); got != memory.UserIDBima {
		t.Fatalf("expected %s at the top, got %s", memory.UserIDBima, got)
	}
}

func TestRouter_SubmitMatchResultAcceptsNegativeScore(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/leaderboards", memory.UserIDAri,
		`{"name":"Spring Season","game_name":"chess","member_user_ids":["`+memory.UserIDBima+`"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create leaderboard: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	boardID, _ := dataField(t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/v1/match-results", memory.UserIDAri,
		`{"leaderboard_id":"`+boardID+`","lines":[{"player_id":"`+memory.UserIDAri+`","score":5,"outcome":"win"},{"player_id":"`+memory.UserIDBima+`","score":-2,"outcome":"loss"}]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit result with negative score: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SubmitMatchResultRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/match-results", memory.UserIDAri,
		`{"leaderboard_id":"board-001","lines":[],"bogus":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_HealthzSkipsAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
