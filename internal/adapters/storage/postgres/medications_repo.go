package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"medication-tracker/internal/domain/medications"
)

type MedicationsRepo struct {
	db *sql.DB
}

func NewMedicationsRepo(db *sql.DB) *MedicationsRepo {
	return &MedicationsRepo{db: db}
}

func (r *MedicationsRepo) Create(ctx context.Context, m medications.Medication) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medications (
			id, user_id,
			name, dosage, frequency, instructions,
			purpose, category, color,
			prescription_id,
			start_date, end_date,
			remaining_doses, total_doses,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		m.ID,
		m.UserID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Instructions,
		m.Purpose,
		m.Category,
		m.Color,
		nullString(m.PrescriptionID),
		m.StartDate,
		m.EndDate,
		m.RemainingDoses,
		m.TotalDoses,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return err
}

func (r *MedicationsRepo) GetByID(ctx context.Context, id string) (medications.Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medications.Medication{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency, instructions,
			purpose, category, color,
			prescription_id,
			start_date, end_date,
			remaining_doses, total_doses,
			created_at, updated_at
		FROM medications
		WHERE id = $1
	`, id)

	m, err := scanMedication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return medications.Medication{}, ErrNotFound
		}
		return medications.Medication{}, err
	}
	return m, nil
}

func (r *MedicationsRepo) ListByUser(ctx context.Context, userID string) ([]medications.Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency, instructions,
			purpose, category, color,
			prescription_id,
			start_date, end_date,
			remaining_doses, total_doses,
			created_at, updated_at
		FROM medications
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMedications(rows)
}

func (r *MedicationsRepo) ListActiveOn(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]medications.Medication, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			name, dosage, frequency, instructions,
			purpose, category, color,
			prescription_id,
			start_date, end_date,
			remaining_doses, total_doses,
			created_at, updated_at
		FROM medications
		WHERE user_id = $1
		  AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $3)
		ORDER BY created_at ASC
	`, userID, dayEnd, dayStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMedications(rows)
}

func (r *MedicationsRepo) Update(ctx context.Context, m medications.Medication) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE medications
		SET name = $2,
			dosage = $3,
			frequency = $4,
			instructions = $5,
			purpose = $6,
			category = $7,
			color = $8,
			prescription_id = $9,
			start_date = $10,
			end_date = $11,
			remaining_doses = $12,
			total_doses = $13,
			updated_at = $14
		WHERE id = $1
	`,
		m.ID,
		m.Name,
		m.Dosage,
		m.Frequency,
		m.Instructions,
		m.Purpose,
		m.Category,
		m.Color,
		nullString(m.PrescriptionID),
		m.StartDate,
		m.EndDate,
		m.RemainingDoses,
		m.TotalDoses,
		m.UpdatedAt,
	)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicationsRepo) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM medications
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (medications.Medication, error) {
	var m medications.Medication
	var prescriptionID sql.NullString

	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.Name,
		&m.Dosage,
		&m.Frequency,
		&m.Instructions,
		&m.Purpose,
		&m.Category,
		&m.Color,
		&prescriptionID,
		&m.StartDate,
		&m.EndDate,
		&m.RemainingDoses,
		&m.TotalDoses,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return medications.Medication{}, err
	}

	if prescriptionID.Valid {
		m.PrescriptionID = prescriptionID.String
	}
	return m, nil
}

func collectMedications(rows *sql.Rows) ([]medications.Medication, error) {
	out := make([]medications.Medication, 0)
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
