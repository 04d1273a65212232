package usecase

import (
	"context"
	"sync"

	"auth-service/internal/domain"
	xerrors "auth-service/pkg/xerrors"
)

// FakeAccountRepository is an in-memory credential store used by tests.
type FakeAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account // keyed by id

	CreateCalls int
	WriteCalls  int
	ReadCalls   int
}

func NewFakeAccountRepository() *FakeAccountRepository {
	return &FakeAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (f *FakeAccountRepository) Create(_ context.Context, acct *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	f.WriteCalls++

	for _, existing := range f.accounts {
		if existing.Email == acct.Email {
			return xerrors.ErrEmailAlreadyInUse
		}
		if acct.External != nil && existing.LinkedTo(acct.External.Provider, acct.External.Subject) {
			return xerrors.ErrEmailAlreadyInUse
		}
	}
	cp := *acct
	f.accounts[acct.ID] = &cp
	return nil
}

func (f *FakeAccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadCalls++

	for _, acct := range f.accounts {
		if acct.Email == email {
			cp := *acct
			return &cp, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *FakeAccountRepository) GetByExternalOrEmail(_ context.Context, provider, subject, email string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ReadCalls++

	var emailMatch *domain.Account
	for _, acct := range f.accounts {
		if acct.LinkedTo(provider, subject) {
			cp := *acct
			return &cp, nil
		}
		if acct.Email == email {
			emailMatch = acct
		}
	}
	if emailMatch != nil {
		cp := *emailMatch
		return &cp, nil
	}
	return nil, xerrors.ErrUserNotFound
}

func (f *FakeAccountRepository) UpdateLogin(_ context.Context, id string, upd domain.LoginUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.WriteCalls++

	acct, ok := f.accounts[id]
	if !ok {
		return xerrors.ErrUserNotFound
	}
	acct.LastLoginAt = upd.LastLoginAt
	if upd.External != nil {
		acct.External = upd.External
	}
	if upd.AvatarURL != "" {
		acct.AvatarURL = upd.AvatarURL
	}
	if upd.EmailVerified != nil {
		acct.IsEmailVerified = *upd.EmailVerified
	}
	return nil
}

// Len reports how many account records exist.
func (f *FakeAccountRepository) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.accounts)
}

// FakeEventProducer records published auth events.
type FakeEventProducer struct {
	mu     sync.Mutex
	Events []*AuthEvent
}

func (f *FakeEventProducer) PublishAuthEvent(_ context.Context, ev *AuthEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Events = append(f.Events, ev)
	return nil
}

// Kinds lists the published event kinds in order.
func (f *FakeEventProducer) Kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	kinds := make([]string, len(f.Events))
	for i, ev := range f.Events {
		kinds[i] = ev.Kind
	}
	return kinds
}
