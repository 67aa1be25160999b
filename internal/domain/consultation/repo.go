package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Storage-level sentinels. The service translates these into the lifecycle
// error taxonomy.
var (
	ErrEntryNotFound    = errors.New("ledger entry not found")
	ErrRequestExists    = errors.New("request already exists")
	ErrApprovalNotFound = errors.New("approval not found")
)

// LedgerRepository provides access to the consultation ledger. Entries
// returned by the Get methods carry their requests and approvals.
type LedgerRepository interface {
	// GetOrCreateByPatient returns the patient's ledger entry, creating an
	// empty one if none exists.
	GetOrCreateByPatient(ctx context.Context, patientEmail string) (*LedgerEntry, error)

	// GetByPatient returns the patient's entry or ErrEntryNotFound.
	GetByPatient(ctx context.Context, patientEmail string) (*LedgerEntry, error)

	// GetByID returns the entry or ErrEntryNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// AddRequest appends a request marker for the doctor. Returns
	// ErrRequestExists if the doctor is already requested on this entry.
	AddRequest(ctx context.Context, ledgerID, doctorID uuid.UUID) (*DoctorRequest, error)

	// ListEntriesWithDoctor returns every entry containing a request for
	// the doctor, oldest request first.
	ListEntriesWithDoctor(ctx context.Context, doctorID uuid.UUID) ([]*LedgerEntry, error)

	// UpsertApproval records an approval for (ledgerID, doctorID) with the
	// given room, setting status to approved and refreshing the timestamp.
	// A repeated call updates the existing row.
	UpsertApproval(ctx context.Context, ledgerID, doctorID uuid.UUID, roomID string) (*Approval, error)

	// GetApprovalByRoomID returns the approval for the room or
	// ErrApprovalNotFound.
	GetApprovalByRoomID(ctx context.Context, roomID string) (*Approval, error)

	// UpdateApprovalSummary overwrites the approval's summary.
	UpdateApprovalSummary(ctx context.Context, approvalID uuid.UUID, summary string) error
}
