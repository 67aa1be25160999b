// Package consultation implements the consultation lifecycle: patients
// request consultations with doctors, doctors approve them and receive a
// video room identifier, and post-call summaries are recorded.
package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Approval statuses. StatusRejected exists in the schema but no operation
// sets it; rejection is handled by doctors simply not approving.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// RoomIDPrefix is prepended to the ledger entry ID to form the video room
// identifier.
const RoomIDPrefix = "room_"

// DefaultSummary is the summary an approval carries until the doctor saves
// one after the call.
const DefaultSummary = "Consultation completed"

// RoomID derives the video room identifier for a ledger entry. The mapping
// is deterministic so a repeated approval lands in the same room.
func RoomID(entryID uuid.UUID) string {
	return RoomIDPrefix + entryID.String()
}

// LedgerEntry is the per-patient consultation record. One entry exists per
// patient email, created lazily on the first request and never deleted.
type LedgerEntry struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientEmail string    `db:"patient_email" json:"patientEmail"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	Requests  []DoctorRequest `json:"requests,omitempty"`
	Approvals []Approval      `json:"approvals,omitempty"`
}

// DoctorRequest records that the patient asked a specific doctor for a
// consultation. The (ledger, doctor) pair is unique; the marker stays in
// place even after the doctor approves.
type DoctorRequest struct {
	ID          uuid.UUID `db:"id" json:"id"`
	LedgerID    uuid.UUID `db:"ledger_id" json:"-"`
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctorId"`
	RequestedAt time.Time `db:"requested_at" json:"requestedAt"`
}

// HasDoctor reports whether the entry contains a request for the doctor.
func (e *LedgerEntry) HasDoctor(doctorID uuid.UUID) bool {
	for _, r := range e.Requests {
		if r.DoctorID == doctorID {
			return true
		}
	}
	return false
}

// Approval records a doctor's approval of a consultation request, including
// the video room and the post-call summary. Keyed on (ledger, doctor) so a
// repeated approval updates in place.
type Approval struct {
	ID        uuid.UUID `db:"id" json:"id"`
	LedgerID  uuid.UUID `db:"ledger_id" json:"-"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctorId"`
	RoomID    string    `db:"room_id" json:"roomId"`
	Status    string    `db:"status" json:"status"`
	UpdatedAt time.Time `db:"updated_at" json:"timestamp"`
	Summary   string    `db:"summary" json:"summary"`
}
