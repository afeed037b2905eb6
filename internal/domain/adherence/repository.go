package adherence

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Record) error
	GetByID(ctx context.Context, id string) (Record, error)

	// ListByUser devuelve registros del usuario, más recientes primero
	// (scheduled_time desc).
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Record, error)

	Update(ctx context.Context, r Record) error
}

type ListFilter struct {
	MedicationID string
	From         *time.Time // scheduled_time >= From
	To           *time.Time // scheduled_time <= To
}
