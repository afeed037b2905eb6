package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"medication-tracker/internal/domain/adherence"
)

type AdherenceRepo struct {
	db *sql.DB
}

func NewAdherenceRepo(db *sql.DB) *AdherenceRepo {
	return &AdherenceRepo{db: db}
}

func (r *AdherenceRepo) Create(ctx context.Context, rec adherence.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adherence_records (
			id, user_id, medication_id,
			scheduled_time, taken_time, skipped,
			notes,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		rec.ID,
		rec.UserID,
		rec.MedicationID,
		rec.ScheduledTime,
		rec.TakenTime,
		rec.Skipped,
		rec.Notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	return err
}

func (r *AdherenceRepo) GetByID(ctx context.Context, id string) (adherence.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adherence.Record{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, user_id, medication_id,
			scheduled_time, taken_time, skipped,
			notes,
			created_at, updated_at
		FROM adherence_records
		WHERE id = $1
	`, id)

	var rec adherence.Record
	if err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.MedicationID,
		&rec.ScheduledTime,
		&rec.TakenTime,
		&rec.Skipped,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return adherence.Record{}, ErrNotFound
		}
		return adherence.Record{}, err
	}

	return rec, nil
}

func (r *AdherenceRepo) ListByUser(ctx context.Context, userID string, filter adherence.ListFilter) ([]adherence.Record, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, user_id, medication_id,
			scheduled_time, taken_time, skipped,
			notes,
			created_at, updated_at
		FROM adherence_records
		WHERE user_id = $1
	`)

	args := []any{userID}
	argN := 2

	if strings.TrimSpace(filter.MedicationID) != "" {
		sb.WriteString(fmt.Sprintf(" AND medication_id = $%d", argN))
		args = append(args, strings.TrimSpace(filter.MedicationID))
		argN++
	}
	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_time >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND scheduled_time <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	sb.WriteString(" ORDER BY scheduled_time DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adherence.Record, 0)
	for rows.Next() {
		var rec adherence.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.MedicationID,
			&rec.ScheduledTime,
			&rec.TakenTime,
			&rec.Skipped,
			&rec.Notes,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}

	return out, rows.Err()
}

func (r *AdherenceRepo) Update(ctx context.Context, rec adherence.Record) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adherence_records
		SET taken_time = $2,
			skipped = $3,
			notes = $4,
			updated_at = $5
		WHERE id = $1
	`,
		rec.ID,
		rec.TakenTime,
		rec.Skipped,
		rec.Notes,
		rec.UpdatedAt,
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
