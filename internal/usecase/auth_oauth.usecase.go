package usecase

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"auth-service/internal/domain"
	"auth-service/pkg/utils"
	xerrors "auth-service/pkg/xerrors"
)

// FindOrCreateFromExternalIdentity resolves a provider claim to exactly one
// local account. Resolution order is fixed:
//
//  1. match by provider reference: repeat login, refresh and return;
//  2. match by email: link the reference onto the existing account;
//  3. no match: create a fresh account from the claim.
//
// The provider reference is checked before email so repeat logins never
// re-link. Each path costs one store read and one store write.
func (uc *AccountUsecase) FindOrCreateFromExternalIdentity(ctx context.Context, claim *domain.ExternalClaim) (*domain.Account, error) {
	if claim == nil || claim.Provider == "" || claim.Subject == "" {
		return nil, xerrors.ErrInvalidRequest
	}
	email := utils.NormalizeEmail(claim.Email)
	if !utils.ValidateEmail(email) {
		return nil, xerrors.ErrInvalidEmailFormat
	}

	now := uc.now().UTC()

	acct, err := uc.repo.GetByExternalOrEmail(ctx, claim.Provider, claim.Subject, email)
	if err != nil && !errors.Is(err, xerrors.ErrUserNotFound) {
		return nil, err
	}

	if acct != nil {
		upd := domain.LoginUpdate{
			LastLoginAt: now,
			AvatarURL:   claim.AvatarURL,
		}
		if claim.EmailVerified && !acct.IsEmailVerified {
			verified := true
			upd.EmailVerified = &verified
		}

		linked := acct.LinkedTo(claim.Provider, claim.Subject)
		if !linked {
			// Email match: merge by linking the provider reference onto the
			// account that owned the address first.
			upd.External = &domain.ExternalRef{Provider: claim.Provider, Subject: claim.Subject}
		}

		if err := uc.repo.UpdateLogin(ctx, acct.ID, upd); err != nil {
			return nil, err
		}
		acct.LastLoginAt = now
		if upd.External != nil {
			acct.External = upd.External
		}
		if claim.AvatarURL != "" {
			acct.AvatarURL = claim.AvatarURL
		}
		if upd.EmailVerified != nil {
			acct.IsEmailVerified = true
		}

		if linked {
			uc.publish(ctx, EventAccountLoggedIn, acct, claim.Provider)
		} else {
			uc.publish(ctx, EventAccountLinked, acct, claim.Provider)
		}
		return acct, nil
	}

	acct = &domain.Account{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            claim.Name,
		External:        &domain.ExternalRef{Provider: claim.Provider, Subject: claim.Subject},
		Role:            domain.RoleCandidate,
		AvatarURL:       claim.AvatarURL,
		IsEmailVerified: claim.EmailVerified,
		LastLoginAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, acct); err != nil {
		return nil, err
	}

	uc.publish(ctx, EventAccountRegistered, acct, claim.Provider)
	return acct, nil
}
