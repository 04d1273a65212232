package handler

import (
	"net/http"
	"strings"

	"auth-service/internal/config"
	"auth-service/internal/metrics"
	oauth2svc "auth-service/internal/service/oauth2"
	"auth-service/internal/usecase"
	"auth-service/pkg/jwtutil"
	"auth-service/pkg/response"
)

type OAuth2Handler struct {
	svc    *oauth2svc.GoogleService
	uc     *usecase.AccountUsecase
	signer *jwtutil.Signer
	auth   *AuthHandler
	cfg    config.AppConfig
}

func NewOAuth2Handler(svc *oauth2svc.GoogleService, uc *usecase.AccountUsecase, signer *jwtutil.Signer, auth *AuthHandler, cfg config.AppConfig) *OAuth2Handler {
	return &OAuth2Handler{svc: svc, uc: uc, signer: signer, auth: auth, cfg: cfg}
}

// HandleGoogleStart begins the provider flow and redirects the client to the
// provider authorization URL. An optional redirect_uri is honored only when
// it sits under an allow-listed origin.
func (h *OAuth2Handler) HandleGoogleStart(w http.ResponseWriter, r *http.Request) {
	redirectURI := strings.TrimSpace(r.URL.Query().Get("redirect_uri"))
	if redirectURI != "" && !h.allowedRedirect(redirectURI) {
		response.Error(w, http.StatusBadRequest, "redirect_uri is not allowed")
		return
	}

	authURL, err := h.svc.Start(r.Context(), redirectURI)
	if err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleGoogleCallback finishes the flow: exchange, account resolution, and
// session issuance. The session lands in the cookie so the token never rides
// a redirect URL.
func (h *OAuth2Handler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	claim, redirect, err := h.svc.Callback(r.Context(), code, state)
	metrics.ObserveAuthAttempt("oauth_google", err)
	if err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	acct, err := h.uc.FindOrCreateFromExternalIdentity(r.Context(), claim)
	if err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	token, err := h.signer.Issue(acct.ID, acct.Email, string(acct.Role))
	if err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}
	h.auth.setSessionCookie(w, token)

	if redirect != "" {
		http.Redirect(w, r, redirect, http.StatusFound)
		return
	}
	response.JSON(w, http.StatusOK, sessionResponse{Token: token, Account: acct})
}

func (h *OAuth2Handler) allowedRedirect(uri string) bool {
	for _, origin := range h.cfg.CORSOrigins {
		if origin != "" && strings.HasPrefix(uri, origin) {
			return true
		}
	}
	return false
}
