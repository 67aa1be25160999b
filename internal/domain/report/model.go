package report

import (
	"time"

	"github.com/google/uuid"
)

// Report maps to the report table. Reports are standalone patient summaries:
// append-only, immutable once written, and not linked to any specific
// consultation approval.
type Report struct {
	ID           uuid.UUID `db:"id" json:"id"`
	PatientEmail string    `db:"patient_email" json:"patient_email"`
	Summary      string    `db:"summary" json:"summary"`
	CreatedAt    time.Time `db:"created_at" json:"timestamp"`
}
