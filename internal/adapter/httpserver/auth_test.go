package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fairyhunter13/ai-interviewer/internal/config"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	t.Parallel()
	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Fatalf("unexpected hash format: %q", hash)
	}
	if !VerifyPassword("s3cret-password", hash) {
		t.Fatalf("expected password to verify")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	t.Parallel()
	h1, _ := HashPassword("same")
	h2, _ := HashPassword("same")
	if h1 == h2 {
		t.Fatalf("expected distinct hashes for the same password")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()
	for _, h := range []string{"", "argon2id$bad", "bcrypt$1$2$3$4$5", "argon2id$x$y$z$!!$!!"} {
		if VerifyPassword("whatever", h) {
			t.Fatalf("expected malformed hash %q to fail verification", h)
		}
	}
}

func testSessionManager(ttl time.Duration) *SessionManager {
	return NewSessionManager(config.Config{AppEnv: "test", SessionSecret: "test-secret", SessionTTL: ttl})
}

func TestSessionManager_RoundTrip(t *testing.T) {
	t.Parallel()
	sm := testSessionManager(time.Hour)
	val := sm.CreateSession("user-42")
	userID, err := sm.ValidateSession(val)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("expected user-42, got %q", userID)
	}
}

func TestSessionManager_Expired(t *testing.T) {
	t.Parallel()
	sm := testSessionManager(-time.Minute)
	val := sm.CreateSession("user-42")
	if _, err := sm.ValidateSession(val); err == nil {
		t.Fatalf("expected expired session to fail")
	}
}

func TestSessionManager_TamperedPayload(t *testing.T) {
	t.Parallel()
	sm := testSessionManager(time.Hour)
	val := sm.CreateSession("user-42")
	tampered := strings.Replace(val, "user-42", "user-43", 1)
	if _, err := sm.ValidateSession(tampered); err == nil {
		t.Fatalf("expected tampered session to fail")
	}
}

func TestSessionManager_WrongSecret(t *testing.T) {
	t.Parallel()
	sm := testSessionManager(time.Hour)
	other := NewSessionManager(config.Config{AppEnv: "test", SessionSecret: "another-secret", SessionTTL: time.Hour})
	if _, err := other.ValidateSession(sm.CreateSession("user-42")); err == nil {
		t.Fatalf("expected session signed with another secret to fail")
	}
	for _, v := range []string{"", "garbage", "a.b.c", "payload.%%%"} {
		if _, err := sm.ValidateSession(v); err == nil {
			t.Fatalf("expected invalid session value %q to fail", v)
		}
	}
}

func TestRequireUser_RejectsMissingCookie(t *testing.T) {
	t.Parallel()
	sm := testSessionManager(time.Hour)
	called := false
	h := sm.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/interviews", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatalf("handler must not run without a session")
	}
}

func TestRequireUser_InjectsUserID(t *testing.T) {
	t.Parallel()
	sm := testSessionManager(time.Hour)
	var got string
	h := sm.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = UserFrom(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/interviews", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sm.CreateSession("user-7")})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != "user-7" {
		t.Fatalf("expected user-7 in context, got %q", got)
	}
}
