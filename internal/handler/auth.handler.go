package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"auth-service/internal/config"
	"auth-service/internal/domain"
	"auth-service/internal/metrics"
	"auth-service/internal/usecase"
	"auth-service/pkg/jwtutil"
	"auth-service/pkg/middleware"
	"auth-service/pkg/response"
	xerrors "auth-service/pkg/xerrors"
)

type AuthHandler struct {
	uc     *usecase.AccountUsecase
	signer *jwtutil.Signer
	csrf   *middleware.CSRFGuard
	cfg    config.AppConfig
}

func NewAuthHandler(uc *usecase.AccountUsecase, signer *jwtutil.Signer, csrf *middleware.CSRFGuard, cfg config.AppConfig) *AuthHandler {
	return &AuthHandler{uc: uc, signer: signer, csrf: csrf, cfg: cfg}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token   string          `json:"token"`
	Account *domain.Account `json:"account"`
}

func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"service": "auth", "state": "up"})
}

// CSRFToken mints the double-submit pair: signed cookie plus plaintext token.
func (h *AuthHandler) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrf.IssueToken(w)
	if err != nil {
		response.ErrorFrom(w, xerrors.ErrInternalServer, h.cfg.Production())
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	acct, err := h.uc.RegisterWithPassword(r.Context(), req.Email, req.Password, req.Name)
	metrics.ObserveAuthAttempt("register", err)
	if err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	h.respondWithSession(w, acct, http.StatusCreated)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	acct, err := h.uc.LoginWithPassword(r.Context(), req.Email, req.Password)
	metrics.ObserveAuthAttempt("login", err)
	if err != nil {
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	h.respondWithSession(w, acct, http.StatusOK)
}

// HandleMe returns the profile for the authenticated principal. The token
// already proved identity; the store read is only for the fresh profile
// fields. A since-deleted account turns into a 401 here.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, ok := middleware.GetEmail(r.Context())
	if !ok || email == "" {
		response.Error(w, http.StatusUnauthorized, "No principal in context")
		return
	}

	acct, err := h.uc.Profile(r.Context(), email)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			response.Error(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		response.ErrorFrom(w, err, h.cfg.Production())
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"account": acct})
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; logout is purely clearing the browser cookie.
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, acct *domain.Account, status int) {
	token, err := h.signer.Issue(acct.ID, acct.Email, string(acct.Role))
	if err != nil {
		response.ErrorFrom(w, xerrors.ErrInternalServer, h.cfg.Production())
		return
	}

	h.setSessionCookie(w, token)
	response.JSON(w, status, sessionResponse{Token: token, Account: acct})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.signer.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return xerrors.ErrInvalidRequest
	}
	return nil
}
