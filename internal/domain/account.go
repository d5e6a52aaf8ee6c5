package domain

import "time"

// AuthProvider tells how an account proves its identity.
type AuthProvider string

const (
	AuthProviderLocal     AuthProvider = "local"
	AuthProviderFederated AuthProvider = "federated"
)

// Account represents a registered identity.
// Password hash and pending code fingerprints never leave the server.
type Account struct {
	ID           string       `json:"id" db:"id"`
	Email        string       `json:"email" db:"email"`
	Username     string       `json:"username" db:"username"`
	PasswordHash *string      `json:"-" db:"password_hash"`
	Verified     bool         `json:"verified" db:"verified"`
	AuthProvider AuthProvider `json:"authProvider" db:"auth_provider"`

	VerificationCode         *string    `json:"-" db:"verification_code"`
	VerificationCodeIssuedAt *time.Time `json:"-" db:"verification_code_issued_at"`

	ForgotPasswordCode         *string    `json:"-" db:"forgot_password_code"`
	ForgotPasswordCodeIssuedAt *time.Time `json:"-" db:"forgot_password_code_issued_at"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the account can sign in with a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}

// PendingCode returns the stored fingerprint and issuance time for purpose.
func (a *Account) PendingCode(purpose CodePurpose) (*string, *time.Time) {
	if purpose == CodePurposePasswordReset {
		return a.ForgotPasswordCode, a.ForgotPasswordCodeIssuedAt
	}
	return a.VerificationCode, a.VerificationCodeIssuedAt
}

// FederatedIdentity is what an external identity provider asserts about a user.
type FederatedIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityLink ties an account to a subject at an external identity provider.
type IdentityLink struct {
	ID        string    `json:"id" db:"id"`
	AccountID string    `json:"accountId" db:"account_id"`
	Provider  string    `json:"provider" db:"provider"`
	Subject   string    `json:"subject" db:"subject"`
	Email     *string   `json:"email,omitempty" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
