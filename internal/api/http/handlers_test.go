package http

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	nethttp "net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"

	authmw "github.com/prono-coach/pronocoach-learn/internal/auth/middleware"
	"github.com/prono-coach/pronocoach-learn/internal/db"
	"github.com/prono-coach/pronocoach-learn/internal/modules"
	"github.com/prono-coach/pronocoach-learn/internal/platform"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })

	store := platform.NewSQLStore(dbh, "sqlite")
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	authSvc := authmw.NewAuthService("test-secret")

	r := chi.NewRouter()
	r.Post("/api/login", LoginHandler(store, authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.Get("/api/course_modules", CourseModulesHandler(store))
		pr.Get("/api/module_courses/{courseID}/quiz", CourseQuizHandler(store))
		pr.Post("/api/module_courses/{courseID}/quiz/attempts", SubmitQuizAttemptHandler(store))
		pr.Post("/api/module_courses/{courseID}/quiz/reset", ResetQuizHandler(store))
		pr.Post("/api/save_progress", SaveProgressHandler(store))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url, token string, body any) (int, apiEnvelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := nethttp.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer res.Body.Close()
	var env apiEnvelope
	_ = json.NewDecoder(res.Body).Decode(&env)
	return res.StatusCode, env
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	status, env := doJSON(t, nethttp.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"student_id": "s2024001", "password": "password123",
	})
	if status != nethttp.StatusOK || !env.Success {
		t.Fatalf("login failed: status=%d env=%+v", status, env)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil || out.Token == "" {
		t.Fatalf("no token in login response: %s", env.Data)
	}
	return out.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv := newTestAPI(t)

	status, env := doJSON(t, nethttp.MethodPost, srv.URL+"/api/login", "", map[string]string{
		"student_id": "s2024001", "password": "nope",
	})
	if status != nethttp.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401, got %d %+v", status, env)
	}

	status, _ = doJSON(t, nethttp.MethodPost, srv.URL+"/api/login", "", map[string]string{})
	if status != nethttp.StatusBadRequest {
		t.Fatalf("expected 400 for empty payload, got %d", status)
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	srv := newTestAPI(t)
	b, _ := json.Marshal(map[string]string{"student_id": "s2024001", "password": "password123"})
	res, err := nethttp.Post(srv.URL+"/api/login", "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()

	found := false
	for _, c := range res.Cookies() {
		if c.Name == authmw.SessionCookie && c.Value != "" && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatal("session cookie missing from login response")
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	srv := newTestAPI(t)

	status, env := doJSON(t, nethttp.MethodGet, srv.URL+"/api/course_modules", "", nil)
	if status != nethttp.StatusUnauthorized || env.Message != "not logged in" {
		t.Fatalf("expected envelope 401, got %d %+v", status, env)
	}

	status, env = doJSON(t, nethttp.MethodGet, srv.URL+"/api/course_modules", "garbage", nil)
	if status != nethttp.StatusUnauthorized || env.Message != "session expired" {
		t.Fatalf("expected session expired, got %d %+v", status, env)
	}
}

func TestCourseModulesEndpoint(t *testing.T) {
	srv := newTestAPI(t)
	token := login(t, srv)

	status, env := doJSON(t, nethttp.MethodGet, srv.URL+"/api/course_modules", token, nil)
	if status != nethttp.StatusOK || !env.Success {
		t.Fatalf("unexpected response: %d %+v", status, env)
	}
	var out struct {
		Modules []modules.Module `json:"modules"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Modules) != 2 || len(out.Modules[0].Flow) != 3 {
		t.Fatalf("unexpected catalog: %+v", out.Modules)
	}
}

func TestQuizEndpointNotFound(t *testing.T) {
	srv := newTestAPI(t)
	token := login(t, srv)

	status, env := doJSON(t, nethttp.MethodGet, srv.URL+"/api/module_courses/crs-jeju-numbers/quiz", token, nil)
	if status != nethttp.StatusNotFound || env.Success {
		t.Fatalf("expected 404 envelope, got %d %+v", status, env)
	}
}

func TestSubmitAndResetRoundTrip(t *testing.T) {
	srv := newTestAPI(t)
	token := login(t, srv)

	// Incomplete submission is a 400 before anything is recorded.
	status, _ := doJSON(t, nethttp.MethodPost, srv.URL+"/api/module_courses/crs-jeju-greetings/quiz/attempts", token, map[string]any{
		"responses": []modules.QuizResponse{{QuestionID: 1, OptionID: 11}},
	})
	if status != nethttp.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete responses, got %d", status)
	}

	status, env := doJSON(t, nethttp.MethodPost, srv.URL+"/api/module_courses/crs-jeju-greetings/quiz/attempts", token, map[string]any{
		"responses": []modules.QuizResponse{
			{QuestionID: 1, OptionID: 11},
			{QuestionID: 2, OptionID: 22},
		},
	})
	if status != nethttp.StatusOK || !env.Success {
		t.Fatalf("submit failed: %d %+v", status, env)
	}
	var result modules.AttemptResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Score != 2 || result.TotalQuestions != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}

	status, _ = doJSON(t, nethttp.MethodPost, srv.URL+"/api/module_courses/crs-jeju-greetings/quiz/reset", token, map[string]any{})
	if status != nethttp.StatusOK {
		t.Fatalf("reset failed: %d", status)
	}

	// Reset on a course without a quiz maps to 404.
	status, _ = doJSON(t, nethttp.MethodPost, srv.URL+"/api/module_courses/crs-jeju-numbers/quiz/reset", token, map[string]any{})
	if status != nethttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestSaveProgressDefaultsToRead(t *testing.T) {
	srv := newTestAPI(t)
	token := login(t, srv)

	// book_name alone marks the handout fully read.
	status, _ := doJSON(t, nethttp.MethodPost, srv.URL+"/api/save_progress", token, map[string]any{
		"book_name": "jeju_greetings.pdf",
	})
	if status != nethttp.StatusOK {
		t.Fatalf("save_progress failed: %d", status)
	}

	status, env := doJSON(t, nethttp.MethodGet, srv.URL+"/api/course_modules", token, nil)
	if status != nethttp.StatusOK {
		t.Fatalf("course_modules failed: %d", status)
	}
	var out struct {
		Modules []modules.Module `json:"modules"`
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Modules[0].Flow[0].Status != modules.StatusCompleted {
		t.Fatalf("course step should be completed: %+v", out.Modules[0].Flow[0])
	}

	status, _ = doJSON(t, nethttp.MethodPost, srv.URL+"/api/save_progress", token, map[string]any{})
	if status != nethttp.StatusBadRequest {
		t.Fatalf("expected 400 for missing book_name, got %d", status)
	}
}
