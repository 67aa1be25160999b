package report

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

// NewRepoPG creates a PostgreSQL-backed report Repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const reportCols = `id, patient_email, summary, created_at`

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	err := row.Scan(&r.ID, &r.PatientEmail, &r.Summary, &r.CreatedAt)
	return &r, err
}

func (p *repoPG) Create(ctx context.Context, r *Report) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return p.pool.QueryRow(ctx, `
		INSERT INTO report (id, patient_email, summary)
		VALUES ($1,$2,$3)
		RETURNING created_at`,
		r.ID, r.PatientEmail, r.Summary).Scan(&r.CreatedAt)
}

func (p *repoPG) ListByPatient(ctx context.Context, patientEmail string, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM report WHERE patient_email = $1`, patientEmail).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := p.pool.Query(ctx, `
		SELECT `+reportCols+` FROM report
		WHERE patient_email = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientEmail, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, r)
	}
	return reports, total, rows.Err()
}

func (p *repoPG) RecentByPatient(ctx context.Context, patientEmail string, limit int) ([]*Report, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+reportCols+` FROM report
		WHERE patient_email = $1
		ORDER BY created_at DESC LIMIT $2`,
		patientEmail, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
