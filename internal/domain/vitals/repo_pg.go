package vitals

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const recordCols = `id, patient_id, record_type, recorded_at, systolic, diastolic, pulse,
	temperature, spo2, respiration, blood_sugar, weight, unable, remarks, recorded_by, created_at`

func (r *repoPG) scan(row pgx.Row) (*VitalsRecord, error) {
	var v VitalsRecord
	err := row.Scan(&v.ID, &v.PatientID, &v.RecordType, &v.RecordedAt, &v.Systolic,
		&v.Diastolic, &v.Pulse, &v.Temperature, &v.SpO2, &v.Respiration,
		&v.BloodSugar, &v.Weight, &v.Unable, &v.Remarks, &v.RecordedBy, &v.CreatedAt)
	return &v, err
}

func (r *repoPG) Create(ctx context.Context, v *VitalsRecord) error {
	v.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO vitals_record (id, patient_id, record_type, recorded_at, systolic,
			diastolic, pulse, temperature, spo2, respiration, blood_sugar, weight,
			unable, remarks, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
		v.ID, v.PatientID, v.RecordType, v.RecordedAt, v.Systolic, v.Diastolic,
		v.Pulse, v.Temperature, v.SpO2, v.Respiration, v.BloodSugar, v.Weight,
		v.Unable, v.Remarks, v.RecordedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*VitalsRecord, error) {
	return r.scan(r.pool.QueryRow(ctx, `SELECT `+recordCols+` FROM vitals_record WHERE id = $1`, id))
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM vitals_record WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*VitalsRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+recordCols+` FROM vitals_record
		WHERE patient_id = $1 AND recorded_at >= $2 AND recorded_at <= $3
		ORDER BY recorded_at DESC`, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*VitalsRecord
	for rows.Next() {
		v, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
