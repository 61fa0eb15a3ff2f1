package admission

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const intervalCols = `id, patient_id, kind, start_at, end_at, half_open, reason, created_at`

func (r *repoPG) scan(row pgx.Row) (*AbsenceInterval, error) {
	var iv AbsenceInterval
	err := row.Scan(&iv.ID, &iv.PatientID, &iv.Kind, &iv.Start, &iv.End, &iv.HalfOpen, &iv.Reason, &iv.CreatedAt)
	return &iv, err
}

func (r *repoPG) Create(ctx context.Context, iv *AbsenceInterval) error {
	iv.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO absence_interval (id, patient_id, kind, start_at, end_at, half_open, reason)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		iv.ID, iv.PatientID, iv.Kind, iv.Start, iv.End, iv.HalfOpen, iv.Reason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*AbsenceInterval, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+intervalCols+` FROM absence_interval WHERE id = $1`, id))
}

func (r *repoPG) Close(ctx context.Context, iv *AbsenceInterval) error {
	_, err := r.pool.Exec(ctx, `UPDATE absence_interval SET end_at = $2, half_open = $3 WHERE id = $1`,
		iv.ID, iv.End, iv.HalfOpen)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*AbsenceInterval, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+intervalCols+` FROM absence_interval WHERE patient_id = $1 ORDER BY start_at ASC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*AbsenceInterval
	for rows.Next() {
		iv, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, iv)
	}
	return items, nil
}

func (r *repoPG) LatestOpen(ctx context.Context, patientID uuid.UUID, kind IntervalKind) (*AbsenceInterval, error) {
	iv, err := r.scan(r.pool.QueryRow(ctx, `
		SELECT `+intervalCols+` FROM absence_interval
		WHERE patient_id = $1 AND kind = $2 AND end_at IS NULL
		ORDER BY start_at DESC LIMIT 1`, patientID, kind))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return iv, nil
}
