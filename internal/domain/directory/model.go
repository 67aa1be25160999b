package directory

import (
	"time"

	"github.com/google/uuid"
)

// Account roles.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// Account maps to the account table. Accounts are provisioned out-of-band
// (external auth provider or the account CLI) and are read-only from the
// consultation lifecycle's perspective.
type Account struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"`
	Name      string    `db:"name" json:"name"`
	Picture   *string   `db:"picture" json:"picture,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsDoctor reports whether the account has the doctor role.
func (a *Account) IsDoctor() bool { return a.Role == RoleDoctor }

// IsPatient reports whether the account has the patient role.
func (a *Account) IsPatient() bool { return a.Role == RolePatient }

// Profile is the minimal projection of an account exposed to other users
// (doctor rosters, request listings).
type Profile struct {
	ID      uuid.UUID `json:"uuid"`
	Email   string    `json:"email"`
	Name    string    `json:"name"`
	Picture *string   `json:"picture,omitempty"`
}

// Profile returns the account's public projection.
func (a *Account) Profile() Profile {
	return Profile{
		ID:      a.ID,
		Email:   a.Email,
		Name:    a.Name,
		Picture: a.Picture,
	}
}
