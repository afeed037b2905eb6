package medications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name           string
	Dosage         string
	Frequency      string
	Instructions   string
	Purpose        string
	Category       string
	Color          string
	PrescriptionID string
	StartDate      time.Time
	EndDate        *time.Time
	RemainingDoses *int
	TotalDoses     *int
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Medication, error) {
	if strings.TrimSpace(userID) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Dosage) == "" {
		return Medication{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Frequency) == "" {
		return Medication{}, ErrInvalidInput
	}
	if in.StartDate.IsZero() {
		return Medication{}, ErrInvalidInput
	}

	now := s.now()
	m := Medication{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           strings.TrimSpace(in.Name),
		Dosage:         strings.TrimSpace(in.Dosage),
		Frequency:      strings.TrimSpace(in.Frequency),
		Instructions:   strings.TrimSpace(in.Instructions),
		Purpose:        strings.TrimSpace(in.Purpose),
		Category:       strings.TrimSpace(in.Category),
		Color:          strings.TrimSpace(in.Color),
		PrescriptionID: strings.TrimSpace(in.PrescriptionID),
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		RemainingDoses: in.RemainingDoses,
		TotalDoses:     in.TotalDoses,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

// GetOwned devuelve el medicamento solo si pertenece al usuario.
// Para otros usuarios responde ErrNotFound (no ErrForbidden): no filtramos
// la existencia de registros ajenos.
func (s *Service) GetOwned(ctx context.Context, id, userID string) (Medication, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(userID) == "" {
		return Medication{}, ErrInvalidInput
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Medication{}, ErrNotFound
	}
	if m.UserID != userID {
		return Medication{}, ErrNotFound
	}
	return m, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Medication, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) ListActiveOn(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]Medication, error) {
	return s.repo.ListActiveOn(ctx, userID, dayStart, dayEnd)
}

// PatchEndDate distingue "no enviado" de "enviar null" en un PATCH.
type PatchEndDate struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name           *string
	Dosage         *string
	Frequency      *string
	Instructions   *string
	Purpose        *string
	Category       *string
	Color          *string
	EndDate        PatchEndDate
	RemainingDoses *int
	TotalDoses     *int
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (Medication, error) {
	m, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return Medication{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Name = v
	}
	if in.Dosage != nil {
		v := strings.TrimSpace(*in.Dosage)
		if v == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Dosage = v
	}
	if in.Frequency != nil {
		v := strings.TrimSpace(*in.Frequency)
		if v == "" {
			return Medication{}, ErrInvalidInput
		}
		m.Frequency = v
	}
	if in.Instructions != nil {
		m.Instructions = strings.TrimSpace(*in.Instructions)
	}
	if in.Purpose != nil {
		m.Purpose = strings.TrimSpace(*in.Purpose)
	}
	if in.Category != nil {
		m.Category = strings.TrimSpace(*in.Category)
	}
	if in.Color != nil {
		m.Color = strings.TrimSpace(*in.Color)
	}
	if in.EndDate.Present {
		m.EndDate = in.EndDate.Value // nil = limpiar
	}
	if in.RemainingDoses != nil {
		m.RemainingDoses = in.RemainingDoses
	}
	if in.TotalDoses != nil {
		m.TotalDoses = in.TotalDoses
	}

	m.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, m); err != nil {
		return Medication{}, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if _, err := s.GetOwned(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
