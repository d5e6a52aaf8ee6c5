package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/placereviews/auth-api/internal/domain"
)

// identityRepository implements IdentityRepository on PostgreSQL
type identityRepository struct {
	db *sql.DB
}

// NewIdentityRepository creates a new identity repository
func NewIdentityRepository(db *sql.DB) IdentityRepository {
	return &identityRepository{db: db}
}

// Link stores a provider subject for an account
func (r *identityRepository) Link(ctx context.Context, link *domain.IdentityLink) error {
	query := `
		INSERT INTO federated_identities (id, account_id, provider, subject, email, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		link.ID,
		link.AccountID,
		link.Provider,
		link.Subject,
		link.Email,
		link.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%s subject already linked: %w", link.Provider, ErrDuplicateIdentity)
		}
		return fmt.Errorf("failed to link identity: %w", err)
	}

	return nil
}

// GetBySubject retrieves the link of a provider subject
func (r *identityRepository) GetBySubject(ctx context.Context, provider, subject string) (*domain.IdentityLink, error) {
	query := `
		SELECT id, account_id, provider, subject, email, created_at
		FROM federated_identities
		WHERE provider = $1 AND subject = $2
	`

	link := &domain.IdentityLink{}
	err := r.db.QueryRowContext(ctx, query, provider, subject).Scan(
		&link.ID,
		&link.AccountID,
		&link.Provider,
		&link.Subject,
		&link.Email,
		&link.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	return link, nil
}
