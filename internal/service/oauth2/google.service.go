package oauth2svc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"

	"auth-service/internal/config"
	"auth-service/internal/domain"
	"auth-service/pkg/cache"
	"auth-service/pkg/resilience"
	xerrors "auth-service/pkg/xerrors"
)

const (
	ProviderGoogle = "google"

	stateNamespace = "oauth2_state"
	stateTTL       = 10 * time.Minute

	// StageAwaitingCallback marks a flow between Start and Callback. A flow
	// with no stored state is unstarted; a consumed state is resolved. The
	// state record is deleted on first use either way.
	StageAwaitingCallback = "awaiting_callback"
)

type flowState struct {
	Stage    string `json:"stage"`
	Verifier string `json:"verifier"`
	Redirect string `json:"redirect,omitempty"`
}

// GoogleService drives the authorization-code + PKCE exchange with Google.
// Flow state (the PKCE verifier and optional post-login redirect) lives in
// the cache store keyed by the opaque state value, so any instance can serve
// the callback.
type GoogleService struct {
	cfg   *oauth2.Config
	store cache.Store
	wrap  *resilience.Wrapper

	// verifyIDToken validates the provider ID token and returns its claims.
	// Swappable in tests; defaults to idtoken.Validate against Google's JWKS.
	verifyIDToken func(ctx context.Context, raw, audience string) (map[string]any, error)
}

func NewGoogleService(gc config.GoogleConfig, store cache.Store) *GoogleService {
	return &GoogleService{
		cfg: &oauth2.Config{
			ClientID:     gc.ClientID,
			ClientSecret: gc.ClientSecret,
			RedirectURL:  gc.RedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		store: store,
		wrap: resilience.New(resilience.Options{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
			Attempts:         2,
			Backoff:          200 * time.Millisecond,
			CallTimeout:      10 * time.Second,
		}),
		verifyIDToken: func(ctx context.Context, raw, audience string) (map[string]any, error) {
			payload, err := idtoken.Validate(ctx, raw, audience)
			if err != nil {
				return nil, err
			}
			return payload.Claims, nil
		},
	}
}

// Start opens a new flow: it generates the PKCE verifier, persists the flow
// state under a fresh opaque value and returns the provider authorization URL
// to redirect the client to.
func (s *GoogleService) Start(ctx context.Context, redirectURI string) (string, error) {
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	data, err := json.Marshal(flowState{
		Stage:    StageAwaitingCallback,
		Verifier: verifier,
		Redirect: redirectURI,
	})
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, stateNamespace, state, string(data), stateTTL); err != nil {
		return "", fmt.Errorf("store oauth state: %w", err)
	}

	return s.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	), nil
}

// Callback consumes the state exactly once, exchanges the code under the
// resilience wrapper, validates the returned ID token and hands back the
// normalized claim plus the redirect registered at Start. Every failure mode
// is ErrOAuthExchangeFailed and terminal: the user restarts the flow.
func (s *GoogleService) Callback(ctx context.Context, code, state string) (*domain.ExternalClaim, string, error) {
	if code == "" || state == "" {
		return nil, "", fmt.Errorf("missing code or state: %w", xerrors.ErrOAuthExchangeFailed)
	}

	raw, err := s.store.Get(ctx, stateNamespace, state)
	if err != nil {
		return nil, "", fmt.Errorf("unknown or expired state: %w", xerrors.ErrOAuthExchangeFailed)
	}
	// Single use, success or not.
	_ = s.store.Delete(ctx, stateNamespace, state)

	var fs flowState
	if err := json.Unmarshal([]byte(raw), &fs); err != nil || fs.Stage != StageAwaitingCallback {
		return nil, "", fmt.Errorf("corrupt flow state: %w", xerrors.ErrOAuthExchangeFailed)
	}

	var token *oauth2.Token
	err = s.wrap.Do(ctx, func(ctx context.Context) error {
		t, err := s.cfg.Exchange(ctx, code, oauth2.VerifierOption(fs.Verifier))
		if err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		return nil, "", fmt.Errorf("code exchange: %v: %w", err, xerrors.ErrOAuthExchangeFailed)
	}

	rawID, _ := token.Extra("id_token").(string)
	if rawID == "" {
		return nil, "", fmt.Errorf("provider returned no id token: %w", xerrors.ErrOAuthExchangeFailed)
	}

	claims, err := s.verifyIDToken(ctx, rawID, s.cfg.ClientID)
	if err != nil {
		return nil, "", fmt.Errorf("id token validation: %v: %w", err, xerrors.ErrOAuthExchangeFailed)
	}

	claim := claimFromPayload(claims)
	if claim.Subject == "" || claim.Email == "" {
		return nil, "", fmt.Errorf("incomplete identity claim: %w", xerrors.ErrOAuthExchangeFailed)
	}
	return claim, fs.Redirect, nil
}

func claimFromPayload(claims map[string]any) *domain.ExternalClaim {
	str := func(key string) string {
		v, _ := claims[key].(string)
		return v
	}
	verified, _ := claims["email_verified"].(bool)

	return &domain.ExternalClaim{
		Provider:      ProviderGoogle,
		Subject:       str("sub"),
		Email:         str("email"),
		Name:          str("name"),
		AvatarURL:     str("picture"),
		EmailVerified: verified,
	}
}
