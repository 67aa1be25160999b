package consultation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ledgerRepoPG struct{ pool *pgxpool.Pool }

// NewLedgerRepoPG creates a PostgreSQL-backed LedgerRepository.
func NewLedgerRepoPG(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepoPG{pool: pool}
}

const approvalCols = `id, ledger_id, doctor_id, room_id, status, updated_at, summary`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *ledgerRepoPG) GetOrCreateByPatient(ctx context.Context, patientEmail string) (*LedgerEntry, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultation_ledger (id, patient_email)
		VALUES ($1, $2)
		ON CONFLICT (patient_email) DO NOTHING`,
		uuid.New(), patientEmail)
	if err != nil {
		return nil, err
	}
	return r.GetByPatient(ctx, patientEmail)
}

func (r *ledgerRepoPG) GetByPatient(ctx context.Context, patientEmail string) (*LedgerEntry, error) {
	return r.getEntry(ctx, `WHERE patient_email = $1`, patientEmail)
}

func (r *ledgerRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error) {
	return r.getEntry(ctx, `WHERE id = $1`, id)
}

func (r *ledgerRepoPG) getEntry(ctx context.Context, where string, arg any) (*LedgerEntry, error) {
	var e LedgerEntry
	err := r.pool.QueryRow(ctx,
		`SELECT id, patient_email, created_at FROM consultation_ledger `+where, arg).
		Scan(&e.ID, &e.PatientEmail, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *ledgerRepoPG) loadChildren(ctx context.Context, e *LedgerEntry) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, ledger_id, doctor_id, requested_at FROM consultation_request
		WHERE ledger_id = $1 ORDER BY requested_at`, e.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var req DoctorRequest
		if err := rows.Scan(&req.ID, &req.LedgerID, &req.DoctorID, &req.RequestedAt); err != nil {
			return err
		}
		e.Requests = append(e.Requests, req)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	arows, err := r.pool.Query(ctx,
		`SELECT `+approvalCols+` FROM consultation_approval
		WHERE ledger_id = $1 ORDER BY updated_at`, e.ID)
	if err != nil {
		return err
	}
	defer arows.Close()
	for arows.Next() {
		a, err := scanApproval(arows)
		if err != nil {
			return err
		}
		e.Approvals = append(e.Approvals, *a)
	}
	return arows.Err()
}

func scanApproval(row pgx.Row) (*Approval, error) {
	var a Approval
	err := row.Scan(&a.ID, &a.LedgerID, &a.DoctorID, &a.RoomID, &a.Status, &a.UpdatedAt, &a.Summary)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrApprovalNotFound
	}
	return &a, err
}

func (r *ledgerRepoPG) AddRequest(ctx context.Context, ledgerID, doctorID uuid.UUID) (*DoctorRequest, error) {
	req := DoctorRequest{ID: uuid.New(), LedgerID: ledgerID, DoctorID: doctorID}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO consultation_request (id, ledger_id, doctor_id)
		VALUES ($1, $2, $3)
		RETURNING requested_at`,
		req.ID, ledgerID, doctorID).Scan(&req.RequestedAt)
	if isUniqueViolation(err) {
		return nil, ErrRequestExists
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *ledgerRepoPG) ListEntriesWithDoctor(ctx context.Context, doctorID uuid.UUID) ([]*LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT l.id FROM consultation_ledger l
		JOIN consultation_request cr ON cr.ledger_id = l.id
		WHERE cr.doctor_id = $1
		ORDER BY cr.requested_at`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	entries := make([]*LedgerEntry, 0, len(ids))
	for _, id := range ids {
		e, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *ledgerRepoPG) UpsertApproval(ctx context.Context, ledgerID, doctorID uuid.UUID, roomID string) (*Approval, error) {
	return scanApproval(r.pool.QueryRow(ctx, `
		INSERT INTO consultation_approval (id, ledger_id, doctor_id, room_id, status)
		VALUES ($1, $2, $3, $4, 'approved')
		ON CONFLICT (ledger_id, doctor_id) DO UPDATE
		SET status = 'approved', updated_at = now()
		RETURNING `+approvalCols,
		uuid.New(), ledgerID, doctorID, roomID))
}

func (r *ledgerRepoPG) GetApprovalByRoomID(ctx context.Context, roomID string) (*Approval, error) {
	return scanApproval(r.pool.QueryRow(ctx,
		`SELECT `+approvalCols+` FROM consultation_approval WHERE room_id = $1`, roomID))
}

func (r *ledgerRepoPG) UpdateApprovalSummary(ctx context.Context, approvalID uuid.UUID, summary string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE consultation_approval SET summary = $2, updated_at = now() WHERE id = $1`,
		approvalID, summary)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrApprovalNotFound
	}
	return nil
}
