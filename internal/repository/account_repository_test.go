package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/placereviews/auth-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccountID = "5f0c1a3e-7a4b-4c1d-9e2f-0a1b2c3d4e5f"

var accountRowColumns = []string{
	"id", "email", "username", "password_hash", "verified", "auth_provider",
	"verification_code", "verification_code_issued_at",
	"forgot_password_code", "forgot_password_code_issued_at",
	"created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (AccountRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewAccountRepository(db), mock
}

func TestAccountRepository_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	hash := "$2a$12$hash"
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+accounts\s*\(id,\s*email,\s*username,\s*password_hash,\s*verified,\s*auth_provider,\s*created_at,\s*updated_at\)`).
		WithArgs(sqlmock.AnyArg(), "a@x.com", "alice", sqlmock.AnyArg(), false, "local", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	account := &domain.Account{Email: "a@x.com", Username: "alice", PasswordHash: &hash}
	require.NoError(t, repo.Create(context.Background(), account))

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, domain.AuthProviderLocal, account.AuthProvider)
	assert.False(t, account.CreatedAt.IsZero())
	assert.Equal(t, account.CreatedAt, account.UpdatedAt)
}

func TestAccountRepository_Create_Duplicates(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		want       error
	}{
		{name: "email", constraint: "accounts_email_key", want: ErrDuplicateEmail},
		{name: "username", constraint: "accounts_username_key", want: ErrDuplicateUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectExec(`INSERT\s+INTO\s+accounts`).
				WillReturnError(&pq.Error{Code: "23505", Constraint: tt.constraint})

			err := repo.Create(context.Background(), &domain.Account{Email: "a@x.com", Username: "alice"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAccountRepository_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.Account{Email: "a@x.com", Username: "alice"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.False(t, errors.Is(err, ErrDuplicateEmail))
}

func TestAccountRepository_GetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	issued := created.Add(time.Minute)
	rows := sqlmock.NewRows(accountRowColumns).AddRow(
		testAccountID, "a@x.com", "alice", "$2a$12$hash", false, "local",
		"fingerprint", issued,
		nil, nil,
		created, created,
	)
	mock.ExpectQuery(`(?s)SELECT\s+id,\s*email.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1`).
		WithArgs("a@x.com").
		WillReturnRows(rows)

	account, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	assert.Equal(t, testAccountID, account.ID)
	assert.Equal(t, "alice", account.Username)
	require.NotNil(t, account.PasswordHash)
	assert.Equal(t, "$2a$12$hash", *account.PasswordHash)
	assert.Equal(t, domain.AuthProviderLocal, account.AuthProvider)
	require.NotNil(t, account.VerificationCode)
	assert.Equal(t, "fingerprint", *account.VerificationCode)
	require.NotNil(t, account.VerificationCodeIssuedAt)
	assert.True(t, issued.Equal(*account.VerificationCodeIssuedAt))
	assert.Nil(t, account.ForgotPasswordCode)
	assert.Nil(t, account.ForgotPasswordCodeIssuedAt)
}

func TestAccountRepository_GetByUsername_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+accounts\s+WHERE\s+username\s*=\s*\$1`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountRepository_GetByID_InvalidUUID(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountRepository_SetCode(t *testing.T) {
	issued := time.Now().UTC()

	tests := []struct {
		purpose domain.CodePurpose
		query   string
	}{
		{purpose: domain.CodePurposeVerification, query: `(?s)UPDATE\s+accounts\s+SET\s+verification_code\s*=\s*\$2,\s*verification_code_issued_at\s*=\s*\$3`},
		{purpose: domain.CodePurposePasswordReset, query: `(?s)UPDATE\s+accounts\s+SET\s+forgot_password_code\s*=\s*\$2,\s*forgot_password_code_issued_at\s*=\s*\$3`},
	}

	for _, tt := range tests {
		t.Run(string(tt.purpose), func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectExec(tt.query).
				WithArgs(testAccountID, "fp", issued).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.SetCode(context.Background(), testAccountID, tt.purpose, "fp", issued))
		})
	}
}

func TestAccountRepository_SetCode_UnknownPurpose(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	err := repo.SetCode(context.Background(), testAccountID, domain.CodePurpose("login"), "fp", time.Now())
	assert.Error(t, err)
}

func TestAccountRepository_MarkVerified(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	query := `(?s)UPDATE\s+accounts\s+SET\s+verified\s*=\s*TRUE,\s*verification_code\s*=\s*NULL,\s*verification_code_issued_at\s*=\s*NULL.*WHERE\s+id\s*=\s*\$1\s+AND\s+verified\s*=\s*FALSE`

	mock.ExpectExec(query).WithArgs(testAccountID).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.MarkVerified(context.Background(), testAccountID))

	mock.ExpectExec(query).WithArgs(testAccountID).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkVerified(context.Background(), testAccountID), ErrNotFound)
}

func TestAccountRepository_ResetPassword(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	query := `(?s)UPDATE\s+accounts\s+SET\s+password_hash\s*=\s*\$2,\s*forgot_password_code\s*=\s*NULL,\s*forgot_password_code_issued_at\s*=\s*NULL.*WHERE\s+id\s*=\s*\$1\s+AND\s+forgot_password_code\s*=\s*\$3`

	mock.ExpectExec(query).WithArgs(testAccountID, "new-hash", "fp").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ResetPassword(context.Background(), testAccountID, "new-hash", "fp"))

	// consumed or replaced code
	mock.ExpectExec(query).WithArgs(testAccountID, "new-hash", "fp").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.ResetPassword(context.Background(), testAccountID, "new-hash", "fp"), ErrNotFound)
}

func TestAccountRepository_UpdatePassword_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)UPDATE\s+accounts\s+SET\s+password_hash\s*=\s*\$2,\s*updated_at`).
		WithArgs(testAccountID, "new-hash").
		WillReturnError(errors.New("db err"))

	err := repo.UpdatePassword(context.Background(), testAccountID, "new-hash")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update password")
}
