package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"predictbattle/internal/repository"
	"predictbattle/internal/service"

	"github.com/rs/zerolog"
)

func newTestRouter() http.Handler {
	authSvc := service.NewAuthService(repository.NewMemoryUserRepo(), "test-secret", time.Hour, nil)
	sessionSvc := service.NewSessionService(repository.NewMemorySessionRepo(), nil, zerolog.Nop())
	return NewRouter(&Container{
		AuthService:    authSvc,
		SessionService: sessionSvc,
		CreateSecret:   "021",
		CORSOrigins:    "*",
	})
}

func doRequest(t *testing.T, router http.Handler, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, decoded
}

func registerUser(t *testing.T, router http.Handler, username string) string {
	t.Helper()
	status, body := doRequest(t, router, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"password": "password1",
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%v)", username, status, body)
	}
	return body["token"].(string)
}

func TestHealth(t *testing.T) {
	router := newTestRouter()
	status, body := doRequest(t, router, "GET", "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestAuthEndpoints(t *testing.T) {
	router := newTestRouter()

	token := registerUser(t, router, "alice")

	status, body := doRequest(t, router, "GET", "/api/auth/verify", token, nil)
	if status != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", status)
	}
	user := body["user"].(map[string]interface{})
	if user["username"] != "alice" {
		t.Fatalf("verify returned wrong user: %v", user)
	}

	status, _ = doRequest(t, router, "GET", "/api/auth/verify", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("verify without token: expected 401, got %d", status)
	}

	status, body = doRequest(t, router, "POST", "/api/auth/guest", "", map[string]string{"username": "drifter"})
	if status != http.StatusOK {
		t.Fatalf("guest: expected 200, got %d (%v)", status, body)
	}
	guest := body["user"].(map[string]interface{})
	if guest["isGuest"] != true {
		t.Fatalf("guest flag missing: %v", guest)
	}

	status, _ = doRequest(t, router, "POST", "/api/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", status)
	}
}

func TestSessionEndpoints(t *testing.T) {
	router := newTestRouter()

	aliceToken := registerUser(t, router, "alice")
	bobToken := registerUser(t, router, "bob")
	carolToken := registerUser(t, router, "carol")

	// Wrong admission secret.
	status, _ := doRequest(t, router, "POST", "/api/sessions/create", aliceToken, map[string]interface{}{
		"title": "Final score?", "maxPlayers": 2, "secretCode": "nope",
	})
	if status != http.StatusForbidden {
		t.Fatalf("wrong secret: expected 403, got %d", status)
	}

	status, body := doRequest(t, router, "POST", "/api/sessions/create", aliceToken, map[string]interface{}{
		"title": "Final score?", "maxPlayers": 2, "secretCode": "021",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%v)", status, body)
	}
	session := body["session"].(map[string]interface{})
	code := session["code"].(string)
	sessionID := session["id"].(string)

	status, _ = doRequest(t, router, "POST", "/api/sessions/join", bobToken, map[string]string{"code": "AAAAAA"})
	if status != http.StatusNotFound {
		t.Fatalf("join unknown code: expected 404, got %d", status)
	}

	status, _ = doRequest(t, router, "POST", "/api/sessions/join", bobToken, map[string]string{"code": code})
	if status != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", status)
	}

	// Session now at capacity 2.
	status, _ = doRequest(t, router, "POST", "/api/sessions/join", carolToken, map[string]string{"code": code})
	if status != http.StatusConflict {
		t.Fatalf("join full: expected 409, got %d", status)
	}

	// Carol never joined: no view, no prediction.
	status, _ = doRequest(t, router, "GET", "/api/sessions/"+sessionID, carolToken, nil)
	if status != http.StatusForbidden {
		t.Fatalf("outsider view: expected 403, got %d", status)
	}
	status, _ = doRequest(t, router, "POST", "/api/sessions/predict", carolToken, map[string]string{
		"sessionId": sessionID, "content": "sneaky",
	})
	if status != http.StatusForbidden {
		t.Fatalf("outsider predict: expected 403, got %d", status)
	}

	status, body = doRequest(t, router, "POST", "/api/sessions/predict", aliceToken, map[string]string{
		"sessionId": sessionID, "content": "2-1",
	})
	if status != http.StatusCreated {
		t.Fatalf("predict: expected 201, got %d (%v)", status, body)
	}
	if body["isComplete"] != false {
		t.Fatalf("session should not be complete with 1/2 predictions: %v", body)
	}

	status, _ = doRequest(t, router, "POST", "/api/sessions/predict", aliceToken, map[string]string{
		"sessionId": sessionID, "content": "3-0",
	})
	if status != http.StatusConflict {
		t.Fatalf("duplicate predict: expected 409, got %d", status)
	}

	// Bob has not predicted: predictions are hidden from him.
	status, body = doRequest(t, router, "GET", "/api/sessions/"+sessionID, bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("view: expected 200, got %d", status)
	}
	session = body["session"].(map[string]interface{})
	if preds, ok := session["predictions"]; ok && preds != nil {
		if len(preds.([]interface{})) != 0 {
			t.Fatalf("predictions must be hidden before Bob submits: %v", preds)
		}
	}

	status, body = doRequest(t, router, "POST", "/api/sessions/predict", bobToken, map[string]string{
		"sessionId": sessionID, "content": "0-0",
	})
	if status != http.StatusCreated {
		t.Fatalf("predict: expected 201, got %d", status)
	}
	if body["isComplete"] != true {
		t.Fatalf("session should be complete with 2/2 predictions: %v", body)
	}

	status, body = doRequest(t, router, "GET", "/api/sessions/"+sessionID, bobToken, nil)
	if status != http.StatusOK {
		t.Fatalf("view: expected 200, got %d", status)
	}
	session = body["session"].(map[string]interface{})
	preds := session["predictions"].([]interface{})
	if len(preds) != 2 {
		t.Fatalf("expected 2 revealed predictions, got %d", len(preds))
	}

	status, body = doRequest(t, router, "GET", "/api/sessions", aliceToken, nil)
	if status != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", status)
	}
	sessions := body["sessions"].([]interface{})
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session in listing, got %d", len(sessions))
	}
	summary := sessions[0].(map[string]interface{})
	if _, ok := summary["predictions"]; ok {
		t.Fatal("listing must not include prediction content")
	}
	if summary["predictionsCount"].(float64) != 2 {
		t.Fatalf("expected predictionsCount 2, got %v", summary["predictionsCount"])
	}
}
