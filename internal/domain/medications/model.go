package medications

import "time"

// Medication representa un medicamento registrado por un usuario.
// La frecuencia es texto libre ("twice daily", "every 6 hours", ...);
// el parseo vive en el módulo schedule.
type Medication struct {
	ID     string
	UserID string

	Name         string
	Dosage       string // "500mg", "2 tablets"
	Frequency    string
	Instructions string
	Purpose      string
	Category     string
	Color        string

	// Opcional: receta de la que proviene.
	PrescriptionID string

	StartDate time.Time
	EndDate   *time.Time

	// Opcional: inventario de dosis (nil = no se trackea).
	RemainingDoses *int
	TotalDoses     *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
