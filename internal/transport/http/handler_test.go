package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dev-team-404/slea-ssem-sub001/internal/app"
	"github.com/dev-team-404/slea-ssem-sub001/internal/domain"
	"github.com/dev-team-404/slea-ssem-sub001/internal/engine"
	"github.com/dev-team-404/slea-ssem-sub001/internal/infra/memory"
	"github.com/dev-team-404/slea-ssem-sub001/internal/logger"
)

func TestAPIRoundLifecycle(t *testing.T) {
	service, _ := newTestService()
	server := httptest.NewServer(NewHandler(service, nil).Routes(nil))
	defer server.Close()

	var rr domain.RoundResult
	status := doJSON(t, http.MethodPost, server.URL+"/api/v1/sessions/s1/complete", &rr)
	if status != http.StatusOK || rr.Score != 60 || rr.CorrectCount != 3 {
		t.Fatalf("unexpected completion %d %+v", status, rr)
	}

	var fetched domain.RoundResult
	status = doJSON(t, http.MethodGet, server.URL+"/api/v1/sessions/s1/rounds/1", &fetched)
	if status != http.StatusOK || fetched.ID != rr.ID {
		t.Fatalf("unexpected fetch %d %+v", status, fetched)
	}

	var plan domain.DifficultyPlan
	status = doJSON(t, http.MethodGet, server.URL+"/api/v1/sessions/s1/rounds/1/plan?size=4", &plan)
	if status != http.StatusOK || plan.Round != 2 || plan.Tier != domain.TierMedium {
		t.Fatalf("unexpected plan %d %+v", status, plan)
	}
	total := 0
	for _, n := range plan.CategoryAllocation {
		total += n
	}
	if total != 4 || plan.CategoryAllocation["RAG"] < 2 {
		t.Fatalf("unexpected allocation %+v", plan.CategoryAllocation)
	}

	var defaultPlan domain.DifficultyPlan
	doJSON(t, http.MethodGet, server.URL+"/api/v1/sessions/s1/rounds/1/plan", &defaultPlan)
	total = 0
	for _, n := range defaultPlan.CategoryAllocation {
		total += n
	}
	if total != engine.DefaultSettings().DefaultRoundSize {
		t.Fatalf("expected default round size, got %d", total)
	}

	var gr domain.GradeResult
	status = doJSON(t, http.MethodGet, server.URL+"/api/v1/users/u1/grade", &gr)
	if status != http.StatusOK || gr.Grade != domain.GradeIntermediateAdvanced || gr.CompositeScore != 63 {
		t.Fatalf("unexpected grade %d %+v", status, gr)
	}

	var badges []domain.UserBadge
	status = doJSON(t, http.MethodGet, server.URL+"/api/v1/users/u1/badges", &badges)
	if status != http.StatusOK || len(badges) != 1 || badges[0].BadgeName != "intermediate-advanced badge" {
		t.Fatalf("unexpected badges %d %+v", status, badges)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	service, store := newTestService()
	store.AddUser("fresh", time.Now())
	server := httptest.NewServer(NewHandler(service, nil).Routes(nil))
	defer server.Close()

	tests := []struct {
		name   string
		method string
		path   string
		status int
		state  string
	}{
		{"unknown session", http.MethodPost, "/api/v1/sessions/nope/complete", http.StatusNotFound, "not_assessed"},
		{"round not completed", http.MethodGet, "/api/v1/sessions/s1/rounds/1", http.StatusNotFound, "not_assessed"},
		{"no rounds yet", http.MethodGet, "/api/v1/users/fresh/grade", http.StatusNotFound, "not_assessed"},
		{"unknown user", http.MethodGet, "/api/v1/users/ghost/grade", http.StatusNotFound, "not_assessed"},
		{"unknown user badges", http.MethodGet, "/api/v1/users/ghost/badges", http.StatusNotFound, "not_assessed"},
		{"bad size", http.MethodGet, "/api/v1/sessions/s1/rounds/1/plan?size=x", http.StatusBadRequest, ""},
		{"non numeric round", http.MethodGet, "/api/v1/sessions/s1/rounds/one", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			status := doJSON(t, tt.method, server.URL+tt.path, &body)
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			if body.State != tt.state {
				t.Fatalf("expected state %q, got %q", tt.state, body.State)
			}
		})
	}
}

func TestAPINegativePlanSize(t *testing.T) {
	service, _ := newTestService()
	server := httptest.NewServer(NewHandler(service, nil).Routes(nil))
	defer server.Close()

	doJSON(t, http.MethodPost, server.URL+"/api/v1/sessions/s1/complete", nil)
	var body errorBody
	if status := doJSON(t, http.MethodGet, server.URL+"/api/v1/sessions/s1/rounds/1/plan?size=-1", &body); status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func doJSON(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp.StatusCode
}

// newTestService seeds user u1 with one round of five questions, three of them
// answered correctly. The two misses are both RAG questions.
func newTestService() (*app.AssessmentService, *memory.Store) {
	store := memory.NewStore()
	store.AddSession(domain.Session{ID: "s1", UserID: "u1", Round: 1, CreatedAt: time.Now().Add(-time.Hour)})
	categories := []string{"RAG", "LLM", "RAG", "Deployment", "RAG"}
	outcomes := []bool{true, true, false, true, false}
	for i, correct := range outcomes {
		qid := "q" + string(rune('1'+i))
		store.AddQuestions(domain.QuestionMeta{ID: qid, SessionID: "s1", Category: categories[i], Difficulty: 5})
		score := 0.0
		if correct {
			score = 100
		}
		store.AddAttempts(domain.AttemptAnswer{SessionID: "s1", QuestionID: qid, Correct: correct, Score: score, SubmittedAt: time.Now()})
	}
	service := app.NewAssessmentService(app.Repositories{
		Sessions:  store,
		Attempts:  store,
		Questions: memory.NewQuestionCatalog(store, time.Minute),
		Results:   store,
		Cohorts:   store,
		Badges:    store,
	}, engine.DefaultSettings(), logger.Nop())
	return service, store
}
