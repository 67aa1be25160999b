package directory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var validRoles = map[string]bool{
	RoleDoctor:  true,
	RolePatient: true,
}

// Service exposes directory lookups to the rest of the system.
type Service struct {
	accounts AccountRepository
}

func NewService(accounts AccountRepository) *Service {
	return &Service{accounts: accounts}
}

// CreateAccount registers a new directory account.
func (s *Service) CreateAccount(ctx context.Context, a *Account) error {
	if a.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !validRoles[a.Role] {
		return fmt.Errorf("invalid role: %s", a.Role)
	}
	if a.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.accounts.Create(ctx, a)
}

// GetByEmail resolves an account by its email address.
func (s *Service) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.accounts.GetByEmail(ctx, email)
}

// GetByID resolves an account by its identifier.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.accounts.GetByID(ctx, id)
}

// ListDoctors returns every doctor account.
func (s *Service) ListDoctors(ctx context.Context) ([]*Account, error) {
	return s.accounts.ListByRole(ctx, RoleDoctor)
}
