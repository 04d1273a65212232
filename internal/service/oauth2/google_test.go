package oauth2svc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"auth-service/internal/config"
	"auth-service/pkg/cache"
	xerrors "auth-service/pkg/xerrors"
)

func newTestService(t *testing.T, store cache.Store) *GoogleService {
	t.Helper()
	return NewGoogleService(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "https://app.example.com/api/auth/oauth2/google/callback",
	}, store)
}

func TestStartStoresFlowState(t *testing.T) {
	store := cache.NewMemory()
	svc := newTestService(t, store)

	authURL, err := svc.Start(context.Background(), "/dashboard")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	u, err := url.Parse(authURL)
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	q := u.Query()
	state := q.Get("state")
	if state == "" {
		t.Fatal("authorization URL has no state parameter")
	}
	if q.Get("code_challenge") == "" || q.Get("code_challenge_method") != "S256" {
		t.Errorf("missing PKCE challenge: %s", u.RawQuery)
	}
	if q.Get("client_id") != "client-id" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if !strings.Contains(q.Get("scope"), "email") {
		t.Errorf("scope = %q, want email included", q.Get("scope"))
	}

	// The verifier must be recoverable by whichever instance serves the
	// callback.
	if _, err := store.Get(context.Background(), "oauth2_state", state); err != nil {
		t.Errorf("flow state not persisted under state value: %v", err)
	}
}

func TestCallbackHappyPath(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse token request: %v", err)
		}
		if r.FormValue("code_verifier") == "" {
			t.Error("token request carries no PKCE verifier")
		}
		if r.FormValue("code") != "auth-code" {
			t.Errorf("code = %q", r.FormValue("code"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","id_token":"raw-id-token"}`))
	}))
	defer tokenSrv.Close()

	store := cache.NewMemory()
	svc := newTestService(t, store)
	svc.cfg.Endpoint.TokenURL = tokenSrv.URL
	svc.verifyIDToken = func(_ context.Context, raw, audience string) (map[string]any, error) {
		if raw != "raw-id-token" {
			t.Errorf("raw id token = %q", raw)
		}
		if audience != "client-id" {
			t.Errorf("audience = %q", audience)
		}
		return map[string]any{
			"sub":            "google-sub-1",
			"email":          "ada@example.com",
			"name":           "Ada Lovelace",
			"picture":        "https://lh3.example.com/a.png",
			"email_verified": true,
		}, nil
	}

	authURL, err := svc.Start(context.Background(), "/dashboard")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	u, _ := url.Parse(authURL)
	state := u.Query().Get("state")

	claim, redirect, err := svc.Callback(context.Background(), "auth-code", state)
	if err != nil {
		t.Fatalf("callback: %v", err)
	}
	if claim.Provider != ProviderGoogle || claim.Subject != "google-sub-1" {
		t.Errorf("claim identity = %s/%s", claim.Provider, claim.Subject)
	}
	if claim.Email != "ada@example.com" || !claim.EmailVerified {
		t.Errorf("claim email = %q verified=%v", claim.Email, claim.EmailVerified)
	}
	if redirect != "/dashboard" {
		t.Errorf("redirect = %q, want /dashboard", redirect)
	}
}

func TestCallbackStateIsSingleUse(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer","id_token":"raw-id-token"}`))
	}))
	defer tokenSrv.Close()

	store := cache.NewMemory()
	svc := newTestService(t, store)
	svc.cfg.Endpoint.TokenURL = tokenSrv.URL
	svc.verifyIDToken = func(context.Context, string, string) (map[string]any, error) {
		return map[string]any{"sub": "s", "email": "s@example.com"}, nil
	}

	authURL, _ := svc.Start(context.Background(), "")
	u, _ := url.Parse(authURL)
	state := u.Query().Get("state")

	if _, _, err := svc.Callback(context.Background(), "auth-code", state); err != nil {
		t.Fatalf("first callback: %v", err)
	}
	if _, _, err := svc.Callback(context.Background(), "auth-code", state); !errors.Is(err, xerrors.ErrOAuthExchangeFailed) {
		t.Fatalf("replayed state: err = %v, want ErrOAuthExchangeFailed", err)
	}
}

func TestCallbackFailureModes(t *testing.T) {
	store := cache.NewMemory()
	svc := newTestService(t, store)

	tests := []struct {
		name  string
		code  string
		state string
	}{
		{name: "missing code", code: "", state: "some-state"},
		{name: "missing state", code: "auth-code", state: ""},
		{name: "unknown state", code: "auth-code", state: "never-issued"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Callback(context.Background(), tt.code, tt.state)
			if !errors.Is(err, xerrors.ErrOAuthExchangeFailed) {
				t.Errorf("err = %v, want ErrOAuthExchangeFailed", err)
			}
		})
	}
}

func TestCallbackRejectsMissingIDToken(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at","token_type":"Bearer"}`))
	}))
	defer tokenSrv.Close()

	store := cache.NewMemory()
	svc := newTestService(t, store)
	svc.cfg.Endpoint.TokenURL = tokenSrv.URL

	authURL, _ := svc.Start(context.Background(), "")
	u, _ := url.Parse(authURL)

	_, _, err := svc.Callback(context.Background(), "auth-code", u.Query().Get("state"))
	if !errors.Is(err, xerrors.ErrOAuthExchangeFailed) {
		t.Fatalf("err = %v, want ErrOAuthExchangeFailed", err)
	}
}
