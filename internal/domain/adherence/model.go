package adherence

import "time"

// Record es la observación persistida de una toma: programada,
// tomada (taken_time seteado), salteada (skipped) o pendiente.
// Un registro está "resuelto" si TakenTime != nil O Skipped.
type Record struct {
	ID     string
	UserID string

	MedicationID string

	ScheduledTime time.Time
	TakenTime     *time.Time
	Skipped       bool

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resolved indica si la toma ya fue resuelta (tomada o salteada).
func (r Record) Resolved() bool {
	return r.TakenTime != nil || r.Skipped
}
