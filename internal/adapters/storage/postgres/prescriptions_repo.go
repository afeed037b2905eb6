package postgres

import (
	"context"
	"database/sql"
	"strings"

	"medication-tracker/internal/domain/prescriptions"
)

type PrescriptionsRepo struct {
	db *sql.DB
}

func NewPrescriptionsRepo(db *sql.DB) *PrescriptionsRepo {
	return &PrescriptionsRepo{db: db}
}

func (r *PrescriptionsRepo) Create(ctx context.Context, p prescriptions.Prescription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prescriptions (
			id, user_id,
			name, prescriber, pharmacy,
			prescribed_date,
			refills, refills_remaining, next_refill_date,
			notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		p.ID,
		p.UserID,
		p.Name,
		p.Prescriber,
		p.Pharmacy,
		p.PrescribedDate,
		p.Refills,
		p.RefillsRemaining,
		p.NextRefillDate,
		p.Notes,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PrescriptionsRepo) GetByID(ctx context.Context, id string) (prescriptions.Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return prescriptions.Prescription{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id,
			name, prescriber, pharmacy,
			prescribed_date,
			refills, refills_remaining, next_refill_date,
			notes,
			created_at, updated_at
		FROM prescriptions
		WHERE id = $1
	`, id)

	var p prescriptions.Prescription
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Prescriber,
		&p.Pharmacy,
		&p.PrescribedDate,
		&p.Refills,
		&p.RefillsRemaining,
		&p.NextRefillDate,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return prescriptions.Prescription{}, ErrNotFound
		}
		return prescriptions.Prescription{}, err
	}

	return p, nil
}

func (r *PrescriptionsRepo) ListByUser(ctx context.Context, userID string) ([]prescriptions.Prescription, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, user_id,
			name, prescriber, pharmacy,
			prescribed_date,
			refills, refills_remaining, next_refill_date,
			notes,
			created_at, updated_at
		FROM prescriptions
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]prescriptions.Prescription, 0)
	for rows.Next() {
		var p prescriptions.Prescription
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Prescriber,
			&p.Pharmacy,
			&p.PrescribedDate,
			&p.Refills,
			&p.RefillsRemaining,
			&p.NextRefillDate,
			&p.Notes,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

func (r *PrescriptionsRepo) Update(ctx context.Context, p prescriptions.Prescription) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE prescriptions
		SET name = $2,
			prescriber = $3,
			pharmacy = $4,
			prescribed_date = $5,
			refills = $6,
			refills_remaining = $7,
			next_refill_date = $8,
			notes = $9,
			updated_at = $10
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		p.Prescriber,
		p.Pharmacy,
		p.PrescribedDate,
		p.Refills,
		p.RefillsRemaining,
		p.NextRefillDate,
		p.Notes,
		p.UpdatedAt,
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

func (r *PrescriptionsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM prescriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
