package consultation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/domain/directory"
	"github.com/telecare/telecare/internal/domain/report"
	"github.com/telecare/telecare/internal/platform/events"
	"github.com/telecare/telecare/internal/platform/notification"
)

// Directory resolves accounts. Satisfied by *directory.Service.
type Directory interface {
	GetByEmail(ctx context.Context, email string) (*directory.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*directory.Account, error)
	ListDoctors(ctx context.Context) ([]*directory.Account, error)
}

// Reports persists and retrieves visit reports. Satisfied by *report.Service.
type Reports interface {
	Append(ctx context.Context, patientEmail, summary string) (*report.Report, error)
	Recent(ctx context.Context, patientEmail string, limit int) ([]*report.Report, error)
}

// Notifier dispatches templated notifications. Satisfied by
// *notification.Manager. Dispatch is best-effort inside the lifecycle.
type Notifier interface {
	SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*notification.Notification, error)
}

// recentReportLimit is how many reports accompany each patient in the
// doctor's patient-data view.
const recentReportLimit = 5

// Service implements the consultation lifecycle operations. Every operation
// takes the caller's verified email claim and classifies failures into the
// package's error taxonomy.
type Service struct {
	ledger    LedgerRepository
	directory Directory
	reports   Reports
	notifier  Notifier
	publisher events.Publisher
	logger    zerolog.Logger
}

// NewService constructs the lifecycle service. notifier and publisher may be
// nil; side effects are skipped when they are.
func NewService(ledger LedgerRepository, dir Directory, reports Reports, notifier Notifier, publisher events.Publisher, logger zerolog.Logger) *Service {
	return &Service{
		ledger:    ledger,
		directory: dir,
		reports:   reports,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
	}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// caller resolves the authenticated email to its account. An unknown email
// is an authentication failure, not a lookup miss.
func (s *Service) caller(ctx context.Context, email string) (*directory.Account, error) {
	acct, err := s.directory.GetByEmail(ctx, email)
	if errors.Is(err, directory.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: no account for %s", ErrUnauthenticated, email)
	}
	if err != nil {
		return nil, storeErr("resolve caller", err)
	}
	return acct, nil
}

// ListAvailableDoctors returns the full doctor roster for a patient. Doctors
// the patient already requested are not filtered out.
func (s *Service) ListAvailableDoctors(ctx context.Context, patientEmail string) ([]directory.Profile, error) {
	if _, err := s.caller(ctx, patientEmail); err != nil {
		return nil, err
	}

	doctors, err := s.directory.ListDoctors(ctx)
	if err != nil {
		return nil, storeErr("list doctors", err)
	}

	profiles := make([]directory.Profile, 0, len(doctors))
	for _, d := range doctors {
		profiles = append(profiles, d.Profile())
	}
	return profiles, nil
}

// RequestConsultation records the patient's request for a consultation with
// the doctor. The ledger entry is created lazily; a second request for the
// same doctor is rejected with ErrDuplicateRequest.
func (s *Service) RequestConsultation(ctx context.Context, patientEmail string, doctorID uuid.UUID) error {
	patient, err := s.caller(ctx, patientEmail)
	if err != nil {
		return err
	}
	if !patient.IsPatient() {
		return fmt.Errorf("%w: consultation requests belong to patient accounts", ErrForbidden)
	}

	doctor, err := s.directory.GetByID(ctx, doctorID)
	if errors.Is(err, directory.ErrAccountNotFound) {
		return fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
	}
	if err != nil {
		return storeErr("resolve doctor", err)
	}
	if !doctor.IsDoctor() {
		return fmt.Errorf("%w: doctor %s", ErrNotFound, doctorID)
	}

	entry, err := s.ledger.GetOrCreateByPatient(ctx, patientEmail)
	if err != nil {
		return storeErr("get or create ledger entry", err)
	}

	if _, err := s.ledger.AddRequest(ctx, entry.ID, doctorID); err != nil {
		if errors.Is(err, ErrRequestExists) {
			return fmt.Errorf("%w: doctor %s already requested", ErrDuplicateRequest, doctorID)
		}
		return storeErr("add request", err)
	}

	s.notify(ctx, "consultation-requested", map[string]string{
		"patient_name":  patient.Name,
		"patient_email": patient.Email,
	}, doctor.Email)
	s.notify(ctx, "consultation-request-sent", map[string]string{
		"doctor_name": doctor.Name,
	}, patient.Email)
	s.publish(ctx, events.Event{
		Type:  events.EventConsultationRequested,
		Topic: doctor.Email,
	})

	return nil
}

// PendingRequest is a patient's outstanding request joined with the doctor's
// profile.
type PendingRequest struct {
	DoctorID      uuid.UUID `json:"doctorId"`
	DoctorName    string    `json:"doctorName"`
	DoctorEmail   string    `json:"doctorEmail"`
	DoctorPicture *string   `json:"doctorPicture,omitempty"`
	RequestedAt   time.Time `json:"timestamp"`
}

// ListPendingForPatient returns the patient's request markers with doctor
// profile fields. Markers stay listed even after approval. A patient with no
// ledger entry gets an empty list.
func (s *Service) ListPendingForPatient(ctx context.Context, patientEmail string) ([]PendingRequest, error) {
	if _, err := s.caller(ctx, patientEmail); err != nil {
		return nil, err
	}

	entry, err := s.ledger.GetByPatient(ctx, patientEmail)
	if errors.Is(err, ErrEntryNotFound) {
		return []PendingRequest{}, nil
	}
	if err != nil {
		return nil, storeErr("get ledger entry", err)
	}

	pending := make([]PendingRequest, 0, len(entry.Requests))
	for _, r := range entry.Requests {
		doctor, err := s.directory.GetByID(ctx, r.DoctorID)
		if err != nil {
			s.logger.Warn().Err(err).Str("doctor_id", r.DoctorID.String()).
				Msg("skipping request with unresolvable doctor")
			continue
		}
		pending = append(pending, PendingRequest{
			DoctorID:      doctor.ID,
			DoctorName:    doctor.Name,
			DoctorEmail:   doctor.Email,
			DoctorPicture: doctor.Picture,
			RequestedAt:   r.RequestedAt,
		})
	}
	return pending, nil
}

// IncomingRequest is a consultation request as seen by the doctor. RequestID
// is the ledger entry ID and is what the doctor passes to ApproveRequest.
type IncomingRequest struct {
	RequestID      uuid.UUID `json:"requestId"`
	PatientEmail   string    `json:"patientEmail"`
	PatientName    string    `json:"patientName"`
	PatientPicture *string   `json:"patientPicture,omitempty"`
	RequestedAt    time.Time `json:"timestamp"`
}

// ListDoctorRequests returns every request naming the doctor. Callers
// without a doctor account get ErrNotFound.
func (s *Service) ListDoctorRequests(ctx context.Context, doctorEmail string) ([]IncomingRequest, error) {
	doctor, err := s.requireDoctor(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.ListEntriesWithDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, storeErr("list entries", err)
	}

	requests := make([]IncomingRequest, 0, len(entries))
	for _, entry := range entries {
		patient, err := s.directory.GetByEmail(ctx, entry.PatientEmail)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_email", entry.PatientEmail).
				Msg("skipping entry with unresolvable patient")
			continue
		}
		for _, r := range entry.Requests {
			if r.DoctorID != doctor.ID {
				continue
			}
			requests = append(requests, IncomingRequest{
				RequestID:      entry.ID,
				PatientEmail:   patient.Email,
				PatientName:    patient.Name,
				PatientPicture: patient.Picture,
				RequestedAt:    r.RequestedAt,
			})
		}
	}
	return requests, nil
}

// ApproveRequest approves the consultation identified by the ledger entry ID
// and returns the video room ID. The room ID is derived from the entry ID,
// so approving twice is idempotent and yields the same room. The doctor must
// appear among the entry's requests.
func (s *Service) ApproveRequest(ctx context.Context, doctorEmail string, requestID uuid.UUID) (string, error) {
	doctor, err := s.caller(ctx, doctorEmail)
	if err != nil {
		return "", err
	}

	entry, err := s.ledger.GetByID(ctx, requestID)
	if errors.Is(err, ErrEntryNotFound) {
		return "", fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}
	if err != nil {
		return "", storeErr("get ledger entry", err)
	}

	if !entry.HasDoctor(doctor.ID) {
		return "", fmt.Errorf("%w: request %s does not name this doctor", ErrForbidden, requestID)
	}

	roomID := RoomID(entry.ID)
	if _, err := s.ledger.UpsertApproval(ctx, entry.ID, doctor.ID, roomID); err != nil {
		return "", storeErr("upsert approval", err)
	}

	s.notify(ctx, "consultation-approved", map[string]string{
		"doctor_name": doctor.Name,
	}, entry.PatientEmail)
	s.publish(ctx, events.Event{
		Type:   events.EventConsultationApproved,
		Topic:  entry.PatientEmail,
		RoomID: roomID,
	})

	return roomID, nil
}

// ApprovedRequest is an approved consultation as seen by the patient.
type ApprovedRequest struct {
	DoctorName    string    `json:"doctorName"`
	DoctorEmail   string    `json:"doctorEmail"`
	DoctorPicture *string   `json:"doctorPicture,omitempty"`
	RoomID        string    `json:"roomId"`
	Timestamp     time.Time `json:"timestamp"`
}

// ListApprovedForPatient returns the patient's approved consultations with
// doctor profiles and room IDs. A patient with no ledger entry gets an empty
// list, not an error.
func (s *Service) ListApprovedForPatient(ctx context.Context, patientEmail string) ([]ApprovedRequest, error) {
	if _, err := s.caller(ctx, patientEmail); err != nil {
		return nil, err
	}

	entry, err := s.ledger.GetByPatient(ctx, patientEmail)
	if errors.Is(err, ErrEntryNotFound) {
		return []ApprovedRequest{}, nil
	}
	if err != nil {
		return nil, storeErr("get ledger entry", err)
	}

	approved := make([]ApprovedRequest, 0, len(entry.Approvals))
	for _, a := range entry.Approvals {
		if a.Status != StatusApproved {
			continue
		}
		doctor, err := s.directory.GetByID(ctx, a.DoctorID)
		if err != nil {
			s.logger.Warn().Err(err).Str("doctor_id", a.DoctorID.String()).
				Msg("skipping approval with unresolvable doctor")
			continue
		}
		approved = append(approved, ApprovedRequest{
			DoctorName:    doctor.Name,
			DoctorEmail:   doctor.Email,
			DoctorPicture: doctor.Picture,
			RoomID:        a.RoomID,
			Timestamp:     a.UpdatedAt,
		})
	}
	return approved, nil
}

// PatientData is what a doctor sees about each patient who requested them:
// the profile, the summaries of that patient's approved consultations, and
// their most recent reports.
type PatientData struct {
	Email          string           `json:"email"`
	Name           string           `json:"name"`
	Picture        *string          `json:"picture,omitempty"`
	MedicalHistory []string         `json:"medicalHistory"`
	Reports        []*report.Report `json:"reports"`
}

// ListPatientsForDoctor assembles the doctor's patient roster. A patient
// whose account cannot be resolved is skipped with a logged diagnostic; a
// failed report lookup degrades to an empty report list for that patient
// only.
func (s *Service) ListPatientsForDoctor(ctx context.Context, doctorEmail string) ([]PatientData, error) {
	doctor, err := s.requireDoctor(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	entries, err := s.ledger.ListEntriesWithDoctor(ctx, doctor.ID)
	if err != nil {
		return nil, storeErr("list entries", err)
	}

	patients := make([]PatientData, 0, len(entries))
	for _, entry := range entries {
		patient, err := s.directory.GetByEmail(ctx, entry.PatientEmail)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_email", entry.PatientEmail).
				Msg("skipping patient with unresolvable account")
			continue
		}

		history := make([]string, 0, len(entry.Approvals))
		for _, a := range entry.Approvals {
			if a.Status == StatusApproved {
				history = append(history, a.Summary)
			}
		}

		reports, err := s.reports.Recent(ctx, entry.PatientEmail, recentReportLimit)
		if err != nil {
			s.logger.Warn().Err(err).Str("patient_email", entry.PatientEmail).
				Msg("report lookup failed, returning empty report list")
			reports = []*report.Report{}
		}
		if reports == nil {
			reports = []*report.Report{}
		}

		patients = append(patients, PatientData{
			Email:          patient.Email,
			Name:           patient.Name,
			Picture:        patient.Picture,
			MedicalHistory: history,
			Reports:        reports,
		})
	}
	return patients, nil
}

// SaveSummary overwrites the post-call summary of the approval identified by
// roomID. The approval must belong to the calling doctor; anything else is
// reported as not found so room ownership is not probeable.
func (s *Service) SaveSummary(ctx context.Context, doctorEmail, roomID, summary string) error {
	doctor, err := s.caller(ctx, doctorEmail)
	if err != nil {
		return err
	}

	approval, err := s.ledger.GetApprovalByRoomID(ctx, roomID)
	if errors.Is(err, ErrApprovalNotFound) {
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}
	if err != nil {
		return storeErr("get approval", err)
	}
	if approval.DoctorID != doctor.ID {
		return fmt.Errorf("%w: room %s", ErrNotFound, roomID)
	}

	if err := s.ledger.UpdateApprovalSummary(ctx, approval.ID, summary); err != nil {
		return storeErr("update summary", err)
	}

	if entry, err := s.ledger.GetByID(ctx, approval.LedgerID); err == nil {
		s.notify(ctx, "visit-summary", map[string]string{
			"summary": summary,
		}, entry.PatientEmail)
		s.publish(ctx, events.Event{
			Type:   events.EventSummarySaved,
			Topic:  entry.PatientEmail,
			RoomID: roomID,
		})
	}

	return nil
}

// SaveReport appends an immutable report for the calling patient. Reports
// are independent of any approval.
func (s *Service) SaveReport(ctx context.Context, patientEmail, summary string) error {
	patient, err := s.caller(ctx, patientEmail)
	if err != nil {
		return err
	}
	if !patient.IsPatient() {
		return fmt.Errorf("%w: reports belong to patient accounts", ErrForbidden)
	}

	if _, err := s.reports.Append(ctx, patientEmail, summary); err != nil {
		return storeErr("append report", err)
	}
	return nil
}

func (s *Service) requireDoctor(ctx context.Context, email string) (*directory.Account, error) {
	acct, err := s.directory.GetByEmail(ctx, email)
	if errors.Is(err, directory.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, email)
	}
	if err != nil {
		return nil, storeErr("resolve doctor", err)
	}
	if !acct.IsDoctor() {
		return nil, fmt.Errorf("%w: doctor %s", ErrNotFound, email)
	}
	return acct, nil
}

// notify dispatches a templated notification and logs failures. Lifecycle
// operations never fail because a notification did.
func (s *Service) notify(ctx context.Context, templateID string, data map[string]string, recipient string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.SendFromTemplate(ctx, templateID, data, recipient); err != nil {
		s.logger.Warn().Err(err).Str("template", templateID).Str("recipient", recipient).
			Msg("notification dispatch failed")
	}
}

// publish broadcasts a lifecycle event and logs failures.
func (s *Service) publish(ctx context.Context, ev events.Event) {
	if s.publisher == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("type", ev.Type).Msg("event publish failed")
	}
}
