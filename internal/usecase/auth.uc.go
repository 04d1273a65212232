package usecase

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"auth-service/internal/domain"
	"auth-service/internal/repository"
)

// Auth event kinds published to the event bus.
const (
	EventAccountRegistered = "account.registered"
	EventAccountLoggedIn   = "account.logged_in"
	EventAccountLinked     = "account.linked"
)

// AuthEvent mirrors an account resolution outcome onto the event bus for
// downstream consumers (onboarding mail, analytics). Delivery is best effort.
type AuthEvent struct {
	EventID   string    `json:"event_id"`
	Kind      string    `json:"kind"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Provider  string    `json:"provider,omitempty"`
	At        time.Time `json:"at"`
}

type AuthEventProducer interface {
	PublishAuthEvent(ctx context.Context, ev *AuthEvent) error
}

// AccountUsecase is the account resolution engine: it turns credentials or
// provider claims into exactly one local account.
type AccountUsecase struct {
	repo     repository.AccountRepository
	producer AuthEventProducer // nil disables events
	now      func() time.Time
}

func NewAccountUsecase(repo repository.AccountRepository, producer AuthEventProducer) *AccountUsecase {
	return &AccountUsecase{
		repo:     repo,
		producer: producer,
		now:      time.Now,
	}
}

// Profile fetches the fresh account record for an authenticated principal.
func (uc *AccountUsecase) Profile(ctx context.Context, email string) (*domain.Account, error) {
	return uc.repo.GetByEmail(ctx, email)
}

func (uc *AccountUsecase) publish(ctx context.Context, kind string, acct *domain.Account, provider string) {
	if uc.producer == nil {
		return
	}
	ev := &AuthEvent{
		EventID:   uuid.NewString(),
		Kind:      kind,
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      string(acct.Role),
		Provider:  provider,
		At:        uc.now().UTC(),
	}
	if err := uc.producer.PublishAuthEvent(ctx, ev); err != nil {
		log.Printf("auth event %s for account %s not published: %v", kind, acct.ID, err)
	}
}
