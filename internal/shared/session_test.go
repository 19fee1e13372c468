package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestFlashSurvivesRedirect(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodPost, "/suppliers", nil)
	sess, err := sm.Load(ctx, req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.AddFlash(FlashMessage{Kind: "success", Message: "Fornecedor cadastrado com sucesso!"})

	res := httptest.NewRecorder()
	if err := sm.Commit(ctx, res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	cookies := res.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie")
	}

	followUp := httptest.NewRequest(http.MethodGet, "/suppliers", nil)
	followUp.AddCookie(cookies[0])
	loaded, err := sm.Load(ctx, followUp)
	if err != nil {
		t.Fatalf("load follow-up session: %v", err)
	}

	flash := loaded.PopFlash()
	if flash == nil || flash.Kind != "success" {
		t.Fatalf("expected flash to survive the redirect, got %+v", flash)
	}
	if loaded.PopFlash() != nil {
		t.Fatalf("flash must be consumed once")
	}
}

func TestCSRFTokenRoundTrip(t *testing.T) {
	sm := newManager(t)
	csrf := NewCSRFManager("csrfsecret")
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("load session: %v", err)
	}

	token, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	again, _ := csrf.EnsureToken(ctx, sess)
	if token != again {
		t.Fatalf("token must be stable within a session")
	}

	if err := csrf.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, "forged"); err == nil {
		t.Fatalf("expected mismatch error")
	}
	if err := csrf.VerifyToken(ctx, sess, ""); err == nil {
		t.Fatalf("expected missing token error")
	}
}
