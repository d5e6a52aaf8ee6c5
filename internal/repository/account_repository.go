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

const (
	uniqueViolation = "23505"

	emailConstraint    = "accounts_email_key"
	usernameConstraint = "accounts_username_key"
)

const accountColumns = `id, email, username, password_hash, verified, auth_provider,
		verification_code, verification_code_issued_at,
		forgot_password_code, forgot_password_code_issued_at,
		created_at, updated_at`

// accountRepository implements AccountRepository on PostgreSQL
type accountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB) AccountRepository {
	return &accountRepository{db: db}
}

// Create inserts a new account. ID and timestamps are filled in when empty.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, username, password_hash, verified, auth_provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.AuthProvider == "" {
		account.AuthProvider = domain.AuthProviderLocal
	}

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.Username,
		account.PasswordHash,
		account.Verified,
		string(account.AuthProvider),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			switch pqErr.Constraint {
			case emailConstraint:
				return fmt.Errorf("account with email %s already exists: %w", account.Email, ErrDuplicateEmail)
			case usernameConstraint:
				return fmt.Errorf("account with username %s already exists: %w", account.Username, ErrDuplicateUsername)
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by its lowercased email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, "email", email)
}

// GetByUsername retrieves an account by username
func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getOne(ctx, "username", username)
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
	}
	return r.getOne(ctx, "id", id)
}

// getOne is only called with a fixed column name, never with user input.
func (r *accountRepository) getOne(ctx context.Context, column, value string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = $1`

	account := &domain.Account{}
	var provider string

	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&account.ID,
		&account.Email,
		&account.Username,
		&account.PasswordHash,
		&account.Verified,
		&provider,
		&account.VerificationCode,
		&account.VerificationCodeIssuedAt,
		&account.ForgotPasswordCode,
		&account.ForgotPasswordCodeIssuedAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with %s %s not found: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by %s: %w", column, err)
	}
	account.AuthProvider = domain.AuthProvider(provider)

	return account, nil
}

// UpdatePassword replaces the password hash of an account
func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`
	return r.execOne(ctx, "update password", id, query, id, passwordHash)
}

// SetCode stores the fingerprint and issuance time of a freshly sent code.
// A previous pending code of the same purpose is overwritten.
func (r *accountRepository) SetCode(ctx context.Context, id string, purpose domain.CodePurpose, fingerprint string, issuedAt time.Time) error {
	var query string
	switch purpose {
	case domain.CodePurposeVerification:
		query = `
			UPDATE accounts
			SET verification_code = $2, verification_code_issued_at = $3, updated_at = NOW()
			WHERE id = $1
		`
	case domain.CodePurposePasswordReset:
		query = `
			UPDATE accounts
			SET forgot_password_code = $2, forgot_password_code_issued_at = $3, updated_at = NOW()
			WHERE id = $1
		`
	default:
		return fmt.Errorf("unknown code purpose %q", purpose)
	}

	return r.execOne(ctx, "set "+string(purpose)+" code", id, query, id, fingerprint, issuedAt)
}

// MarkVerified only matches unverified accounts, so the flag flips at most once.
func (r *accountRepository) MarkVerified(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET verified = TRUE, verification_code = NULL, verification_code_issued_at = NULL, updated_at = NOW()
		WHERE id = $1 AND verified = FALSE
	`
	return r.execOne(ctx, "mark verified", id, query, id)
}

// ResetPassword consumes the forgot-password code with the given fingerprint.
// Once the code is consumed or replaced it matches no row, so each code resets
// the password at most once.
func (r *accountRepository) ResetPassword(ctx context.Context, id, passwordHash, codeFingerprint string) error {
	query := `
		UPDATE accounts
		SET password_hash = $2, forgot_password_code = NULL, forgot_password_code_issued_at = NULL, updated_at = NOW()
		WHERE id = $1 AND forgot_password_code = $3
	`
	return r.execOne(ctx, "reset password", id, query, id, passwordHash, codeFingerprint)
}

func (r *accountRepository) execOne(ctx context.Context, op, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}
