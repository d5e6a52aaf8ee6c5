package repository

import (
	"github.com/placereviews/auth-api/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Account  AccountRepository
	Identity IdentityRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		Account:  NewAccountRepository(db.DB),
		Identity: NewIdentityRepository(db.DB),
	}
}
