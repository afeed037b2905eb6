package medications

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, m Medication) error
	GetByID(ctx context.Context, id string) (Medication, error)
	ListByUser(ctx context.Context, userID string) ([]Medication, error)

	// ListActiveOn devuelve medicamentos activos durante un día:
	// start_date <= dayEnd AND (end_date IS NULL OR end_date >= dayStart).
	ListActiveOn(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]Medication, error)

	Update(ctx context.Context, m Medication) error
	Delete(ctx context.Context, id string) error
}
