package report

import (
	"context"
	"fmt"
)

// Service exposes report persistence and listing.
type Service struct {
	reports Repository
}

func NewService(reports Repository) *Service {
	return &Service{reports: reports}
}

// Append stores a new immutable report for the patient.
func (s *Service) Append(ctx context.Context, patientEmail, summary string) (*Report, error) {
	if patientEmail == "" {
		return nil, fmt.Errorf("patient_email is required")
	}
	if summary == "" {
		return nil, fmt.Errorf("summary is required")
	}
	r := &Report{PatientEmail: patientEmail, Summary: summary}
	if err := s.reports.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListByPatient returns the patient's reports, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientEmail string, limit, offset int) ([]*Report, int, error) {
	return s.reports.ListByPatient(ctx, patientEmail, limit, offset)
}

// Recent returns the patient's most recent reports, newest first.
func (s *Service) Recent(ctx context.Context, patientEmail string, limit int) ([]*Report, error) {
	return s.reports.RecentByPatient(ctx, patientEmail, limit)
}
