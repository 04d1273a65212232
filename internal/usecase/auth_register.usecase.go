package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"auth-service/internal/domain"
	"auth-service/pkg/utils"
	xerrors "auth-service/pkg/xerrors"
)

// RegisterWithPassword creates a password account. New accounts always start
// at the lowest-privilege role with an unverified email.
func (uc *AccountUsecase) RegisterWithPassword(ctx context.Context, email, password, name string) (*domain.Account, error) {
	email = utils.NormalizeEmail(email)
	if !utils.ValidateEmail(email) {
		return nil, xerrors.ErrInvalidEmailFormat
	}
	if name == "" {
		return nil, xerrors.ErrNameRequired
	}
	if err := utils.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	acct := &domain.Account{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            name,
		PasswordHash:    &hashed,
		Role:            domain.RoleCandidate,
		IsEmailVerified: false,
		LastLoginAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := uc.repo.Create(ctx, acct); err != nil {
		if errors.Is(err, xerrors.ErrEmailAlreadyInUse) {
			return nil, xerrors.ErrUserAlreadyExists
		}
		return nil, err
	}

	uc.publish(ctx, EventAccountRegistered, acct, "")
	return acct, nil
}
