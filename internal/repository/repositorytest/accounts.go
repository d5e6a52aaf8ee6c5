// Package repositorytest provides an in-memory AccountRepository for tests
// of the layers above the store.
package repositorytest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/placereviews/auth-api/internal/domain"
	"github.com/placereviews/auth-api/internal/repository"
)

// Accounts is a concurrency-safe in-memory account store. It returns copies
// so callers cannot mutate stored state behind its back.
type Accounts struct {
	mu   sync.Mutex
	byID map[string]*domain.Account
	Now  func() time.Time

	// FailWith, when set, is returned by every call.
	FailWith error
}

// NewAccounts creates an empty store
func NewAccounts() *Accounts {
	return &Accounts{
		byID: make(map[string]*domain.Account),
		Now:  time.Now,
	}
}

var _ repository.AccountRepository = (*Accounts)(nil)

func (a *Accounts) Create(_ context.Context, account *domain.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailWith != nil {
		return a.FailWith
	}

	for _, existing := range a.byID {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
		if existing.Username == account.Username {
			return repository.ErrDuplicateUsername
		}
	}

	now := a.Now().UTC()
	account.ID = uuid.New().String()
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.AuthProvider == "" {
		account.AuthProvider = domain.AuthProviderLocal
	}

	a.byID[account.ID] = cloneAccount(account)
	return nil
}

func (a *Accounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	return a.find(func(acc *domain.Account) bool { return acc.Email == email })
}

func (a *Accounts) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	return a.find(func(acc *domain.Account) bool { return acc.Username == username })
}

func (a *Accounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	return a.find(func(acc *domain.Account) bool { return acc.ID == id })
}

func (a *Accounts) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return a.update(id, func(acc *domain.Account) bool {
		acc.PasswordHash = &passwordHash
		return true
	})
}

func (a *Accounts) SetCode(_ context.Context, id string, purpose domain.CodePurpose, fingerprint string, issuedAt time.Time) error {
	switch purpose {
	case domain.CodePurposeVerification, domain.CodePurposePasswordReset:
	default:
		return fmt.Errorf("unknown code purpose %q", purpose)
	}

	return a.update(id, func(acc *domain.Account) bool {
		if purpose == domain.CodePurposeVerification {
			acc.VerificationCode = &fingerprint
			acc.VerificationCodeIssuedAt = &issuedAt
		} else {
			acc.ForgotPasswordCode = &fingerprint
			acc.ForgotPasswordCodeIssuedAt = &issuedAt
		}
		return true
	})
}

func (a *Accounts) MarkVerified(_ context.Context, id string) error {
	return a.update(id, func(acc *domain.Account) bool {
		if acc.Verified {
			return false
		}
		acc.Verified = true
		acc.VerificationCode = nil
		acc.VerificationCodeIssuedAt = nil
		return true
	})
}

func (a *Accounts) ResetPassword(_ context.Context, id, passwordHash, codeFingerprint string) error {
	return a.update(id, func(acc *domain.Account) bool {
		if acc.ForgotPasswordCode == nil || *acc.ForgotPasswordCode != codeFingerprint {
			return false
		}
		acc.PasswordHash = &passwordHash
		acc.ForgotPasswordCode = nil
		acc.ForgotPasswordCodeIssuedAt = nil
		return true
	})
}

// Put stores account as is, for seeding fixtures
func (a *Accounts) Put(account *domain.Account) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	a.byID[account.ID] = cloneAccount(account)
}

// Get returns a copy of the stored account or nil
func (a *Accounts) Get(id string) *domain.Account {
	a.mu.Lock()
	defer a.mu.Unlock()

	if acc, ok := a.byID[id]; ok {
		return cloneAccount(acc)
	}
	return nil
}

// ByEmail returns a copy of the stored account or nil
func (a *Accounts) ByEmail(email string) *domain.Account {
	acc, err := a.GetByEmail(context.Background(), email)
	if err != nil {
		return nil
	}
	return acc
}

// Len returns the number of stored accounts
func (a *Accounts) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.byID)
}

func (a *Accounts) find(match func(*domain.Account) bool) (*domain.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailWith != nil {
		return nil, a.FailWith
	}

	for _, acc := range a.byID {
		if match(acc) {
			return cloneAccount(acc), nil
		}
	}
	return nil, repository.ErrNotFound
}

// update applies fn to the stored account; fn returning false counts as no
// row affected.
func (a *Accounts) update(id string, fn func(*domain.Account) bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FailWith != nil {
		return a.FailWith
	}

	acc, ok := a.byID[id]
	if !ok || !fn(acc) {
		return repository.ErrNotFound
	}
	acc.UpdatedAt = a.Now().UTC()
	return nil
}

func cloneAccount(acc *domain.Account) *domain.Account {
	c := *acc
	c.PasswordHash = cloneString(acc.PasswordHash)
	c.VerificationCode = cloneString(acc.VerificationCode)
	c.VerificationCodeIssuedAt = cloneTime(acc.VerificationCodeIssuedAt)
	c.ForgotPasswordCode = cloneString(acc.ForgotPasswordCode)
	c.ForgotPasswordCodeIssuedAt = cloneTime(acc.ForgotPasswordCodeIssuedAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
