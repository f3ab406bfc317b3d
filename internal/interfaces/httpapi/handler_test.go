package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const (
	testAdminKey = "admin-secret"
	testJobToken = "job-secret"
)

type fakeFixtureProvider struct {
	mu       sync.Mutex
	fixtures map[int64]usecase.ExternalFixture
}

func (p *fakeFixtureProvider) GetFixture(_ context.Context, id int64) (usecase.ExternalFixture, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fx, ok := p.fixtures[id]; ok {
		return fx, nil
	}
	return usecase.ExternalFixture{}, fmt.Errorf("%w: id=%d", usecase.ErrFixtureNotFound, id)
}

func finishedFixture(id int64, home, away int) usecase.ExternalFixture {
	return usecase.ExternalFixture{ID: id, Status: "FINISHED", HomeScore: &home, AwayScore: &away}
}

type testServer struct {
	handler http.Handler
	users   *memory.UserRepository
	matches *memory.MatchRepository
}

// newTestServer seeds week 1 past lockout with fixture references and week 2
// still open. Users 1 and 2 picked every week 1 match.
func newTestServer(t *testing.T) testServer {
	t.Helper()

	now := time.Now().UTC()
	matches := make([]match.Match, 0, 10)
	for i := 1; i <= 5; i++ {
		matches = append(matches, match.Match{
			ID:           int64(100 + i),
			Week:         1,
			HomeTeam:     fmt.Sprintf("Home %d", i),
			AwayTeam:     fmt.Sprintf("Away %d", i),
			LockoutAt:    now.Add(-24 * time.Hour),
			FixtureRefID: int64(9000 + i),
		})
		matches = append(matches, match.Match{
			ID:        int64(200 + i),
			Week:      2,
			HomeTeam:  fmt.Sprintf("Home %d", i),
			AwayTeam:  fmt.Sprintf("Away %d", i),
			LockoutAt: now.Add(72 * time.Hour),
		})
	}

	var predictions []prediction.Prediction
	for i := 1; i <= 5; i++ {
		predictions = append(predictions,
			prediction.Prediction{ID: int64(10 + i), UserID: 1, MatchID: int64(100 + i), Week: 1, Pick: match.ResultHome},
			prediction.Prediction{ID: int64(20 + i), UserID: 2, MatchID: int64(100 + i), Week: 1, Pick: match.ResultAway},
		)
	}

	matchRepo := memory.NewMatchRepository(matches)
	predictionRepo := memory.NewPredictionRepository(predictions)
	userRepo := memory.NewUserRepository([]user.User{
		{ID: 1, Name: "Alex", CurrentWeek: 1},
		{ID: 2, Name: "Sam", CurrentWeek: 1},
	})

	provider := &fakeFixtureProvider{fixtures: map[int64]usecase.ExternalFixture{}}
	for i := 1; i <= 5; i++ {
		provider.fixtures[int64(9000+i)] = finishedFixture(int64(9000+i), 2, 1)
	}

	logger := logging.NewNop()
	results := usecase.NewResultService(matchRepo, provider, nil, logger)
	scoring := usecase.NewScoringService(matchRepo, predictionRepo, userRepo, nil, nil, logger)
	handler := NewHandler(
		usecase.NewWeekService(matchRepo, userRepo),
		usecase.NewLeaderboardService(userRepo),
		usecase.NewPredictionService(matchRepo, predictionRepo, userRepo),
		results,
		scoring,
		usecase.NewAutoScoreService(matchRepo, results, scoring, nil, logger),
		usecase.NewSeasonService(matchRepo, userRepo, logger),
		logger,
	)

	router := NewRouter(handler, RouterConfig{
		AdminAuth:          usecase.NewAdminAuthenticator(testAdminKey),
		InternalJobToken:   testJobToken,
		CORSAllowedOrigins: []string{"*"},
		SwaggerEnabled:     true,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	}, logger)

	return testServer{handler: router, users: userRepo, matches: matchRepo}
}

type testEnvelope struct {
	Data  any `json:"data"`
	Error *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func (s testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var envelope testEnvelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal response body: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, envelope
}

func adminHeaders() map[string]string {
	return map[string]string{headerAdminKey: testAdminKey, headerAdminActor: "ops"}
}

func dataMap(t *testing.T, envelope testEnvelope) map[string]any {
	t.Helper()
	out, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data type %T", envelope.Data)
	}
	return out
}

func errorReason(envelope testEnvelope) string {
	if envelope.Error == nil || len(envelope.Error.Errors) == 0 {
		return ""
	}
	return envelope.Error.Errors[0].Reason
}

func TestHandler_Healthz(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec, envelope := srv.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if got := dataMap(t, envelope)["status"]; got != "ok" {
		t.Fatalf("unexpected health status: %v", got)
	}
}

func TestHandler_GetWeek(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodGet, "/v1/weeks/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	data := dataMap(t, envelope)
	if data["state"] != "LOCKED" || data["locked"] != true || data["canScore"] != false {
		t.Fatalf("unexpected week 1 view: %v", data)
	}
	items, _ := data["matches"].([]any)
	if len(items) != 5 {
		t.Fatalf("unexpected match count: got=%d want=5", len(items))
	}
	first, _ := items[0].(map[string]any)
	if first["homeTeam"] != "Home 1" {
		t.Fatalf("unexpected first match: %v", first)
	}

	rec, envelope = srv.do(t, http.MethodGet, "/v1/weeks/2/locked", "", nil)
	if rec.Code != http.StatusOK || dataMap(t, envelope)["locked"] != false {
		t.Fatalf("expected week 2 open, got status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandler_GetWeek_Errors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	tests := []struct {
		path   string
		status int
		reason string
	}{
		{path: "/v1/weeks/9", status: http.StatusNotFound, reason: "notFound"},
		{path: "/v1/weeks/abc", status: http.StatusBadRequest, reason: "invalidInput"},
		{path: "/v1/weeks/0/locked", status: http.StatusBadRequest, reason: "invalidInput"},
	}
	for _, tt := range tests {
		rec, envelope := srv.do(t, http.MethodGet, tt.path, "", nil)
		if rec.Code != tt.status || errorReason(envelope) != tt.reason {
			t.Fatalf("%s: unexpected response: got=%d/%s want=%d/%s", tt.path, rec.Code, errorReason(envelope), tt.status, tt.reason)
		}
	}
}

func TestHandler_ListWeeks(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec, envelope := srv.do(t, http.MethodGet, "/v1/weeks", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	items, _ := envelope.Data.([]any)
	if len(items) != 2 {
		t.Fatalf("unexpected week count: got=%d want=2", len(items))
	}
	second, _ := items[1].(map[string]any)
	if second["state"] != "OPEN" {
		t.Fatalf("unexpected week 2 state: %v", second["state"])
	}
}

func TestHandler_SubmitPick(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	user1 := map[string]string{headerUserID: "1"}

	rec, envelope := srv.do(t, http.MethodPut, "/v1/predictions", `{"matchId":201,"pick":"draw"}`, user1)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	data := dataMap(t, envelope)
	if data["pick"] != "DRAW" || data["week"] != float64(2) || data["pointsAwarded"] != nil {
		t.Fatalf("unexpected prediction: %v", data)
	}

	tests := []struct {
		name    string
		body    string
		headers map[string]string
		status  int
		reason  string
	}{
		{name: "locked week", body: `{"matchId":101,"pick":"HOME"}`, headers: user1, status: http.StatusConflict, reason: "weekLocked"},
		{name: "bad pick", body: `{"matchId":201,"pick":"WIN"}`, headers: user1, status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "missing user", body: `{"matchId":201,"pick":"HOME"}`, headers: nil, status: http.StatusUnauthorized, reason: "unauthorized"},
		{name: "unknown match", body: `{"matchId":999,"pick":"HOME"}`, headers: user1, status: http.StatusNotFound, reason: "notFound"},
		{name: "unknown field", body: `{"matchId":201,"pick":"HOME","extra":1}`, headers: user1, status: http.StatusBadRequest, reason: "invalidInput"},
		{name: "legacy id encoding", body: `{"matchId":"[202]","pick":"away"}`, headers: user1, status: http.StatusOK},
	}
	for _, tt := range tests {
		rec, envelope := srv.do(t, http.MethodPut, "/v1/predictions", tt.body, tt.headers)
		if rec.Code != tt.status || errorReason(envelope) != tt.reason {
			t.Fatalf("%s: unexpected response: got=%d/%s want=%d/%s", tt.name, rec.Code, errorReason(envelope), tt.status, tt.reason)
		}
	}

	rec, envelope = srv.do(t, http.MethodGet, "/v1/users/1/predictions?week=2", "", user1)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if items, _ := envelope.Data.([]any); len(items) != 2 {
		t.Fatalf("unexpected prediction count: got=%d want=2", len(items))
	}

	rec, _ = srv.do(t, http.MethodGet, "/v1/users/2/predictions", "", user1)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status for foreign predictions: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestHandler_AdminRoutesRequireKey(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/admin/weeks/1/score"},
		{http.MethodPut, "/v1/admin/matches/101/result"},
		{http.MethodPost, "/v1/admin/autoscore"},
		{http.MethodPost, "/v1/admin/users/reset"},
		{http.MethodPost, "/v1/admin/weeks"},
	}
	for _, item := range paths {
		rec, _ := srv.do(t, item.method, item.path, "{}", map[string]string{headerAdminKey: "wrong"})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: unexpected status: got=%d want=%d", item.method, item.path, rec.Code, http.StatusUnauthorized)
		}
	}
}

func TestHandler_ManualResultsThenScore(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/admin/weeks/1/score", "", adminHeaders())
	if rec.Code != http.StatusConflict || errorReason(envelope) != "notFullyResolved" {
		t.Fatalf("unexpected response before results: got=%d/%s", rec.Code, errorReason(envelope))
	}

	for i := 1; i <= 5; i++ {
		path := fmt.Sprintf("/v1/admin/matches/%d/result", 100+i)
		rec, envelope := srv.do(t, http.MethodPut, path, `{"result":"home"}`, adminHeaders())
		if rec.Code != http.StatusOK {
			t.Fatalf("set result %d: unexpected status: got=%d want=%d", 100+i, rec.Code, http.StatusOK)
		}
		if data := dataMap(t, envelope); data["result"] != "HOME" || data["locked"] != true {
			t.Fatalf("unexpected match after result: %v", data)
		}
	}

	rec, envelope = srv.do(t, http.MethodPost, "/v1/admin/weeks/1/score", "", adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	data := dataMap(t, envelope)
	if data["status"] != "scored" || data["usersUpdated"] != float64(2) {
		t.Fatalf("unexpected scoring result: %v", data)
	}

	rec, envelope = srv.do(t, http.MethodPost, "/v1/admin/weeks/1/score", `{}`, adminHeaders())
	if rec.Code != http.StatusConflict || errorReason(envelope) != "alreadyScored" {
		t.Fatalf("unexpected response on rescore: got=%d/%s", rec.Code, errorReason(envelope))
	}

	rec, envelope = srv.do(t, http.MethodGet, "/v1/leaderboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	rows, _ := envelope.Data.([]any)
	if len(rows) != 2 {
		t.Fatalf("unexpected leaderboard size: got=%d want=2", len(rows))
	}
	top, _ := rows[0].(map[string]any)
	if top["name"] != "Alex" || top["points"] != float64(10) || top["fullHouses"] != float64(1) {
		t.Fatalf("unexpected leaderboard leader: %v", top)
	}
	last, _ := rows[1].(map[string]any)
	if last["blanks"] != float64(1) || last["incorrect"] != float64(5) {
		t.Fatalf("unexpected leaderboard last row: %v", last)
	}
}

func TestHandler_InternalAutoScoreJob(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rec, envelope := srv.do(t, http.MethodPost, "/v1/internal/jobs/autoscore", "", map[string]string{headerInternalJobToken: "wrong"})
	if rec.Code != http.StatusUnauthorized || errorReason(envelope) != "unauthorized" {
		t.Fatalf("unexpected response for bad token: got=%d/%s", rec.Code, errorReason(envelope))
	}

	rec, envelope = srv.do(t, http.MethodPost, "/v1/internal/jobs/autoscore", "", map[string]string{headerInternalJobToken: testJobToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	data := dataMap(t, envelope)
	if data["trigger"] != "scheduled" || data["week"] != float64(1) || data["resultsSet"] != float64(5) || data["weekScored"] != true {
		t.Fatalf("unexpected tick result: %v", data)
	}

	alex, _, err := srv.users.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if alex.Points != 10 || alex.CurrentWeek != 2 {
		t.Fatalf("unexpected user after tick: points=%d week=%d", alex.Points, alex.CurrentWeek)
	}
}

func TestHandler_AdminAutoScoreIsManual(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	rec, envelope := srv.do(t, http.MethodPost, "/v1/admin/autoscore", "", adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	if got := dataMap(t, envelope)["trigger"]; got != "manual" {
		t.Fatalf("unexpected trigger: got=%v want=manual", got)
	}
}

func TestHandler_ResetUsers(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	if _, err := srv.users.Update(context.Background(), 1, user.Update{Points: intPtr(7), CurrentWeek: intPtr(4)}); err != nil {
		t.Fatalf("update user: %v", err)
	}

	rec, envelope := srv.do(t, http.MethodPost, "/v1/admin/users/reset", "", adminHeaders())
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusOK, rec.Body.String())
	}
	data := dataMap(t, envelope)
	if data["toWeek"] != float64(1) || data["usersReset"] != float64(2) {
		t.Fatalf("unexpected reset result: %v", data)
	}

	alex, _, _ := srv.users.Get(context.Background(), 1)
	if alex.Points != 0 || alex.CurrentWeek != 1 {
		t.Fatalf("unexpected user after reset: points=%d week=%d", alex.Points, alex.CurrentWeek)
	}
}

func TestHandler_SeedWeek(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	lockout := time.Now().UTC().Add(7 * 24 * time.Hour).Format(time.RFC3339)

	var fixtures []string
	for i := 1; i <= 5; i++ {
		fixtures = append(fixtures, fmt.Sprintf(`{"homeTeam":"H%d","awayTeam":"A%d","lockoutAt":%q}`, i, i, lockout))
	}
	body := fmt.Sprintf(`{"week":3,"matches":[%s]}`, strings.Join(fixtures, ","))

	rec, envelope := srv.do(t, http.MethodPost, "/v1/admin/weeks", body, adminHeaders())
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got=%d want=%d body=%s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if items, _ := envelope.Data.([]any); len(items) != 5 {
		t.Fatalf("unexpected created count: got=%d want=5", len(items))
	}

	rec, envelope = srv.do(t, http.MethodPost, "/v1/admin/weeks", body, adminHeaders())
	if rec.Code != http.StatusBadRequest || errorReason(envelope) != "invalidInput" {
		t.Fatalf("unexpected response for duplicate week: got=%d/%s", rec.Code, errorReason(envelope))
	}

	short := fmt.Sprintf(`{"week":4,"matches":[%s]}`, strings.Join(fixtures[:3], ","))
	rec, _ = srv.do(t, http.MethodPost, "/v1/admin/weeks", short, adminHeaders())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for short week: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandler_SystemRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	rec, _ := srv.do(t, http.MethodGet, "/metrics", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "# metrics" {
		t.Fatalf("unexpected metrics response: %d %q", rec.Code, rec.Body.String())
	}

	rec, _ = srv.do(t, http.MethodGet, "/openapi.yaml", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "/v1/leaderboard") {
		t.Fatalf("unexpected openapi response: %d", rec.Code)
	}

	rec, _ = srv.do(t, http.MethodGet, "/docs", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "swagger-ui-dist@"+swaggerUIVersion) {
		t.Fatalf("unexpected docs response: %d", rec.Code)
	}
}

func intPtr(v int) *int {
	return &v
}
