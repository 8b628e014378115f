package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/services"
)

func TestRegister_Success_SetsCookieAndReturnsProfile(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestHandlers(fakes{})
	r := gin.New()
	r.POST("/users", h.Register)

	w := httptest.NewRecorder()
	body := `{"username":" alice ","password":"secret","password2":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("register -> %d body=%s", w.Code, w.Body.String())
	}
	var out ProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Username != "alice" {
		t.Fatalf("username not trimmed, got %q", out.Username)
	}
	if out.Token == "" {
		t.Fatalf("profile token missing")
	}

	cookie := w.Header().Get("Set-Cookie")
	if !strings.Contains(cookie, "session=test-token") {
		t.Fatalf("session cookie not issued: %q", cookie)
	}
	if !strings.Contains(cookie, "HttpOnly") {
		t.Fatalf("session cookie must be http-only: %q", cookie)
	}
}

func TestRegister_BadJSONAndServiceErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Bad JSON -> 400
	{
		h := newTestHandlers(fakes{})
		r := gin.New()
		r.POST("/users", h.Register)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString("{bad"))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
	}

	// Name taken -> 409 with stable code
	{
		h := newTestHandlers(fakes{account: fakeAccountSvc{
			register: func(ctx context.Context, u, p1, p2, e string) (*domain.User, error) {
				return nil, services.ErrNameTaken
			},
		}})
		r := gin.New()
		r.POST("/users", h.Register)

		w := httptest.NewRecorder()
		body := `{"username":"alice","password":"a","password2":"a"}`
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusConflict {
			t.Fatalf("name taken -> %d", w.Code)
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("json: %v", err)
		}
		if er.Code != ErrCodeNameTaken {
			t.Fatalf("want code %q, got %q", ErrCodeNameTaken, er.Code)
		}
	}

	// Password mismatch -> 400 password_mismatch
	{
		h := newTestHandlers(fakes{account: fakeAccountSvc{
			register: func(ctx context.Context, u, p1, p2, e string) (*domain.User, error) {
				return nil, services.ErrPasswordMismatch
			},
		}})
		r := gin.New()
		r.POST("/users", h.Register)

		w := httptest.NewRecorder()
		body := `{"username":"alice","password":"a","password2":"b"}`
		req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(body))
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("mismatch -> %d", w.Code)
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("json: %v", err)
		}
		if er.Code != ErrCodePasswordMismatch {
			t.Fatalf("want code %q, got %q", ErrCodePasswordMismatch, er.Code)
		}
	}
}

func TestLogin_BadCredentials_Is401WithStableCode(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestHandlers(fakes{account: fakeAccountSvc{
		login: func(ctx context.Context, u, p string) (*domain.User, error) {
			return nil, services.ErrUnauthorized
		},
	}})
	r := gin.New()
	r.POST("/users/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/login",
		bytes.NewBufferString(`{"username":"alice","password":"nope"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad creds -> %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeUnauthorized {
		t.Fatalf("want code %q, got %q", ErrCodeUnauthorized, er.Code)
	}
	if strings.Contains(w.Header().Get("Set-Cookie"), "session=") {
		t.Fatalf("no cookie on failed login")
	}
}

func TestLogin_Success_IssuesCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestHandlers(fakes{})
	r := gin.New()
	r.POST("/users/login", h.Login)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/login",
		bytes.NewBufferString(`{"username":"alice","password":"secret"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login -> %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "session=test-token") {
		t.Fatalf("session cookie missing: %q", w.Header().Get("Set-Cookie"))
	}
}

func TestLogout_ClearsCookieAndSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var cleared string
	h := newTestHandlers(fakes{session: fakeSessionSvc{
		clear: func(ctx context.Context, token string) error {
			cleared = token
			return nil
		},
	}})
	r := gin.New()
	r.POST("/users/logout", h.Logout)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "tok-123"})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("logout -> %d", w.Code)
	}
	if cleared != "tok-123" {
		t.Fatalf("session not cleared, got %q", cleared)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("cookie not expired: %q", w.Header().Get("Set-Cookie"))
	}
}

func TestMe_ReturnsProfileWithEditToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	email := "a@example.com"
	u := &domain.User{ID: 1, Username: "alice", Password: "storedhash", Email: &email}
	h := newTestHandlers(fakes{})
	r := gin.New()
	r.GET("/users/me", loggedIn(u), h.Me)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("me -> %d", w.Code)
	}
	var out ProfileResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Username != "alice" || out.Email == nil || *out.Email != email {
		t.Fatalf("unexpected profile: %+v", out)
	}
	if out.Token != services.ProfileToken(u) {
		t.Fatalf("token mismatch: %q", out.Token)
	}
}

func TestUpdateMe_TokenMismatch_Is403(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := newTestHandlers(fakes{account: fakeAccountSvc{
		update: func(ctx context.Context, acting string, in services.UpdateInput) (*domain.User, error) {
			return nil, services.ErrTokenMismatch
		},
	}})
	u := &domain.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.POST("/users/me", loggedIn(u), h.UpdateMe)

	w := httptest.NewRecorder()
	body := `{"old_password":"secret","token":"stale"}`
	req := httptest.NewRequest(http.MethodPost, "/users/me", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("stale token -> %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeTokenMismatch {
		t.Fatalf("want code %q, got %q", ErrCodeTokenMismatch, er.Code)
	}
}

func TestUpdateMe_Success_ReissuesSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var sessionFor string
	h := newTestHandlers(fakes{
		account: fakeAccountSvc{
			update: func(ctx context.Context, acting string, in services.UpdateInput) (*domain.User, error) {
				return &domain.User{ID: 1, Username: in.NewUsername, Password: "newhash"}, nil
			},
		},
		session: fakeSessionSvc{
			create: func(ctx context.Context, username string) (string, error) {
				sessionFor = username
				return "fresh-token", nil
			},
		},
	})
	u := &domain.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.POST("/users/me", loggedIn(u), h.UpdateMe)

	w := httptest.NewRecorder()
	body := `{"old_password":"secret","token":"t","new_username":"Alice"}`
	req := httptest.NewRequest(http.MethodPost, "/users/me", bytes.NewBufferString(body))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("update -> %d body=%s", w.Code, w.Body.String())
	}
	if sessionFor != "Alice" {
		t.Fatalf("session must be reissued for the new name, got %q", sessionFor)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "session=fresh-token") {
		t.Fatalf("fresh cookie missing: %q", w.Header().Get("Set-Cookie"))
	}
}

func TestDeleteMe_RemovesAccountAndCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var deleted string
	h := newTestHandlers(fakes{account: fakeAccountSvc{
		remove: func(ctx context.Context, acting string) error {
			deleted = acting
			return nil
		},
	}})
	u := &domain.User{ID: 1, Username: "alice"}
	r := gin.New()
	r.DELETE("/users/me", loggedIn(u), h.DeleteMe)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/me", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("delete -> %d", w.Code)
	}
	if deleted != "alice" {
		t.Fatalf("wrong account deleted: %q", deleted)
	}
	if !strings.Contains(w.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("cookie not cleared: %q", w.Header().Get("Set-Cookie"))
	}
}
