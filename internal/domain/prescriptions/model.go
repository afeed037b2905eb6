package prescriptions

import "time"

// Prescription representa una receta con su control de refills.
type Prescription struct {
	ID     string
	UserID string

	Name       string // nombre del medicamento recetado
	Prescriber string
	Pharmacy   string

	PrescribedDate time.Time

	Refills          int // refills autorizados
	RefillsRemaining int
	NextRefillDate   *time.Time

	Notes string

	CreatedAt time.Time
	UpdatedAt time.Time
}
