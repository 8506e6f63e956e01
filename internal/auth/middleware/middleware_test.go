package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"user": UserID(r.Context())})
	})
}

func TestIssueAndParse(t *testing.T) {
	a := NewAuthService("secret")
	tok, err := a.IssueJWT("s2024001", "Minji")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil || c == nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Sub != "s2024001" || c.Name != "Minji" {
		t.Fatalf("unexpected claims: %+v", c)
	}
	if c.Issuer != "pronocoach-platform" {
		t.Fatalf("unexpected issuer: %s", c.Issuer)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	tok, err := NewAuthService("other-secret").IssueJWT("s2024001", "")
	if err != nil {
		t.Fatalf("IssueJWT: %v", err)
	}
	if c, err := NewAuthService("secret").Parse(tok); err == nil && c != nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestMiddlewareBearerToken(t *testing.T) {
	a := NewAuthService("secret")
	tok, _ := a.IssueJWT("s2024001", "Minji")
	h := JWTMiddleware(a)(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/course_modules", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["user"] != "s2024001" {
		t.Fatalf("user id not attached: %v", body)
	}
}

func TestMiddlewareSessionCookie(t *testing.T) {
	a := NewAuthService("secret")
	tok, _ := a.IssueJWT("s2024001", "Minji")
	h := JWTMiddleware(a)(echoUser())

	req := httptest.NewRequest(http.MethodGet, "/api/course_modules", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 via cookie, got %d", rec.Code)
	}
}

func TestMiddlewareRejections(t *testing.T) {
	a := NewAuthService("secret")
	h := JWTMiddleware(a)(echoUser())

	// No credentials at all.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Success || env.Message != "not logged in" {
		t.Fatalf("unexpected envelope: %+v", env)
	}

	// Garbage token.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	if env.Message != "session expired" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}
