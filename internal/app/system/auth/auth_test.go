package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deskhubhq/deskhub/internal/app/system/auth"
	"go.uber.org/zap"
)

const testSessionKey = "test-session-key-for-testing-only-0123456789"

func TestNewSessionManager_RejectsShortKey(t *testing.T) {
	_, err := auth.NewSessionManager("short", "s", "", false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for short session key")
	}
}

func TestSignInThenLoadSessionUser(t *testing.T) {
	mgr, err := auth.NewSessionManager(testSessionKey, "deskhub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	// Sign in and capture the session cookie.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/login", nil)
	user := auth.SessionUser{ID: "auth-1", Name: "Test Admin", Email: "admin@example.com", Role: "admin"}
	if err := mgr.SignIn(rec, req, user); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected a session cookie to be set")
	}

	// Replay the cookie through the middleware and read the context user.
	var got *auth.SessionUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})
	req2 := httptest.NewRequest("GET", "/", nil)
	for _, c := range cookies {
		req2.AddCookie(c)
	}
	mgr.LoadSessionUser(next).ServeHTTP(httptest.NewRecorder(), req2)

	if got == nil {
		t.Fatal("expected user in context after LoadSessionUser")
	}
	if got.ID != "auth-1" || got.Role != "admin" {
		t.Errorf("context user = %+v, want ID auth-1 role admin", got)
	}
}

func TestRequireSignedIn_Unauthenticated(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	})
	rec := httptest.NewRecorder()
	auth.RequireSignedIn(next).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		user     *auth.SessionUser
		allowed  []string
		wantCode int
	}{
		{"matching role", &auth.SessionUser{Role: "admin"}, []string{"admin"}, http.StatusOK},
		{"case insensitive", &auth.SessionUser{Role: "Admin"}, []string{"admin"}, http.StatusOK},
		{"one of several", &auth.SessionUser{Role: "project_manager"}, []string{"employee", "project_manager"}, http.StatusOK},
		{"wrong role", &auth.SessionUser{Role: "client"}, []string{"admin"}, http.StatusForbidden},
		{"not signed in", nil, []string{"admin"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
			req := httptest.NewRequest("GET", "/", nil)
			if tt.user != nil {
				req = auth.WithUser(req, tt.user)
			}
			rec := httptest.NewRecorder()
			auth.RequireRole(tt.allowed...)(next).ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

type fakeFetcher struct {
	users map[string]*auth.SessionUser
	err   error
}

func (f *fakeFetcher) FetchSessionUser(ctx context.Context, id string) (*auth.SessionUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func signedInRequest(t *testing.T, mgr *auth.SessionManager, user auth.SessionUser) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := mgr.SignIn(rec, httptest.NewRequest("POST", "/login", nil), user); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestLoadSessionUser_FetcherRefreshesRole(t *testing.T) {
	mgr, err := auth.NewSessionManager(testSessionKey, "deskhub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	req := signedInRequest(t, mgr, auth.SessionUser{ID: "auth-1", Role: "client"})

	// Admin promoted the user after sign-in; the next request must see it.
	mgr.SetUserFetcher(&fakeFetcher{users: map[string]*auth.SessionUser{
		"auth-1": {ID: "auth-1", Role: "client_head", Project: "Acme"},
	}})

	var got *auth.SessionUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})
	mgr.LoadSessionUser(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.Role != "client_head" || got.Project != "Acme" {
		t.Errorf("context user = %+v, want refreshed role client_head", got)
	}
}

func TestLoadSessionUser_FetcherEndsRemovedUserSession(t *testing.T) {
	mgr, err := auth.NewSessionManager(testSessionKey, "deskhub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	req := signedInRequest(t, mgr, auth.SessionUser{ID: "auth-1", Role: "client"})

	// The member was removed; their cookie must stop identifying anyone.
	mgr.SetUserFetcher(&fakeFetcher{users: map[string]*auth.SessionUser{}})

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if _, ok := auth.CurrentUser(r); ok {
			t.Error("expected no user in context after removal")
		}
	})
	mgr.LoadSessionUser(next).ServeHTTP(httptest.NewRecorder(), req)
	if !reached {
		t.Fatal("next handler not reached")
	}
}

func TestLoadSessionUser_FetcherErrorKeepsSnapshot(t *testing.T) {
	mgr, err := auth.NewSessionManager(testSessionKey, "deskhub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}
	req := signedInRequest(t, mgr, auth.SessionUser{ID: "auth-1", Role: "client"})

	mgr.SetUserFetcher(&fakeFetcher{err: errors.New("directory unreachable")})

	var got *auth.SessionUser
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	})
	mgr.LoadSessionUser(next).ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.Role != "client" {
		t.Errorf("context user = %+v, want session snapshot with role client", got)
	}
}
