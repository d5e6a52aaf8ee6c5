package repository

import (
	"context"
	"time"

	"github.com/placereviews/auth-api/internal/domain"
)

// AccountRepository defines methods for account operations.
// Every update touches a single account and refreshes updated_at.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetCode(ctx context.Context, id string, purpose domain.CodePurpose, fingerprint string, issuedAt time.Time) error
	// MarkVerified flips verified to true and clears the verification code.
	MarkVerified(ctx context.Context, id string) error
	// ResetPassword stores a new password hash and clears the forgot-password
	// code, provided the pending code still has the given fingerprint.
	ResetPassword(ctx context.Context, id, passwordHash, codeFingerprint string) error
}

// IdentityRepository defines methods for federated identity links
type IdentityRepository interface {
	Link(ctx context.Context, link *domain.IdentityLink) error
	GetBySubject(ctx context.Context, provider, subject string) (*domain.IdentityLink, error)
}
