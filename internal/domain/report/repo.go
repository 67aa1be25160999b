package report

import "context"

// Repository provides access to the append-only report store.
type Repository interface {
	Create(ctx context.Context, r *Report) error
	// ListByPatient returns the patient's reports, newest first.
	ListByPatient(ctx context.Context, patientEmail string, limit, offset int) ([]*Report, int, error)
	// RecentByPatient returns the patient's most recent reports, newest first.
	RecentByPatient(ctx context.Context, patientEmail string, limit int) ([]*Report, error)
}
