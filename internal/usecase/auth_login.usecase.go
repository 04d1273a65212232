package usecase

import (
	"context"
	"errors"
	"log"

	"auth-service/internal/domain"
	"auth-service/pkg/utils"
	xerrors "auth-service/pkg/xerrors"
)

// LoginWithPassword authenticates a password credential. Unknown email and
// wrong password collapse to the same ErrInvalidCredentials so responses
// cannot be used for account enumeration. Provider-only accounts get the
// deterministic ErrSocialAccountOnly instead.
func (uc *AccountUsecase) LoginWithPassword(ctx context.Context, email, password string) (*domain.Account, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, xerrors.ErrInvalidCredentials
	}

	acct, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !acct.HasPassword() {
		return nil, xerrors.ErrSocialAccountOnly
	}
	if !utils.CheckPassword(*acct.PasswordHash, password) {
		return nil, xerrors.ErrInvalidCredentials
	}

	now := uc.now().UTC()
	if err := uc.repo.UpdateLogin(ctx, acct.ID, domain.LoginUpdate{LastLoginAt: now}); err != nil {
		// Login still succeeds; a stale last-login timestamp is not worth a 500.
		log.Printf("last-login update for account %s failed: %v", acct.ID, err)
	}
	acct.LastLoginAt = now

	uc.publish(ctx, EventAccountLoggedIn, acct, "")
	return acct, nil
}
