package medinfo

import (
	"context"
	"errors"
)

// ErrNoInfo: el proveedor no pudo producir información para ese medicamento.
var ErrNoInfo = errors.New("no medication info available")

// Medication es el subconjunto que necesita el chequeo de interacciones.
type Medication struct {
	ID     string
	Name   string
	Dosage string
}

// Severidad reportada por el proveedor: HIGH, MEDIUM o LOW.
type InteractionMedication struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Interaction struct {
	ID             string                  `json:"id"`
	Medications    []InteractionMedication `json:"medications"`
	Severity       string                  `json:"severity"`
	Description    string                  `json:"description"`
	Recommendation string                  `json:"recommendation,omitempty"`
}

type MedicationInfo struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	UsedFor      []string `json:"usedFor"`
	SideEffects  []string `json:"sideEffects"`
	Warnings     []string `json:"warnings"`
	Interactions []string `json:"interactions"`
	DosageInfo   string   `json:"dosageInfo"`
}

// Provider es la puerta al servicio generativo de información de
// medicamentos. Las respuestas son orientativas, no autoridad clínica.
type Provider interface {
	// CheckInteractions analiza interacciones entre los medicamentos dados.
	// Con menos de dos medicamentos devuelve lista vacía sin llamar upstream.
	CheckInteractions(ctx context.Context, meds []Medication) ([]Interaction, error)

	// CheckTextInteractions es la variante de texto libre
	// ("aspirin, warfarin y omeprazol").
	CheckTextInteractions(ctx context.Context, text string) ([]Interaction, error)

	// MedicationInfo devuelve la ficha de un medicamento por nombre.
	MedicationInfo(ctx context.Context, name string) (MedicationInfo, error)
}
