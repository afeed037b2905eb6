package prescriptions

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
	ErrNoRefills    = errors.New("no refills remaining")
)

// refillInterval: al procesar un refill, el próximo queda a 30 días.
const refillInterval = 30 * 24 * time.Hour

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
	Prescriber     string
	Pharmacy       string
	PrescribedDate time.Time
	Refills        int
	// Opcional: si es nil, arranca igual a Refills.
	RefillsRemaining *int
	NextRefillDate   *time.Time
	Notes            string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Prescription, error) {
	if strings.TrimSpace(userID) == "" {
		return Prescription{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" {
		return Prescription{}, ErrInvalidInput
	}
	if in.Refills < 0 {
		return Prescription{}, ErrInvalidInput
	}

	remaining := in.Refills
	if in.RefillsRemaining != nil {
		if *in.RefillsRemaining < 0 {
			return Prescription{}, ErrInvalidInput
		}
		remaining = *in.RefillsRemaining
	}

	prescribed := in.PrescribedDate
	now := s.now()
	if prescribed.IsZero() {
		prescribed = now
	}

	p := Prescription{
		ID:               uuid.NewString(),
		UserID:           userID,
		Name:             strings.TrimSpace(in.Name),
		Prescriber:       strings.TrimSpace(in.Prescriber),
		Pharmacy:         strings.TrimSpace(in.Pharmacy),
		PrescribedDate:   prescribed,
		Refills:          in.Refills,
		RefillsRemaining: remaining,
		NextRefillDate:   in.NextRefillDate,
		Notes:            strings.TrimSpace(in.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Prescription{}, err
	}
	return p, nil
}

func (s *Service) GetOwned(ctx context.Context, id, userID string) (Prescription, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(userID) == "" {
		return Prescription{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Prescription{}, ErrNotFound
	}
	if p.UserID != userID {
		return Prescription{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Prescription, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// UpdateInput es un update parcial: punteros nil significan "no tocar".
type UpdateInput struct {
	Name             *string
	Prescriber       *string
	Pharmacy         *string
	PrescribedDate   *time.Time
	Refills          *int
	RefillsRemaining *int
	NextRefillDate   *time.Time
	Notes            *string
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (Prescription, error) {
	p, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return Prescription{}, err
	}

	if in.Name != nil {
		v := strings.TrimSpace(*in.Name)
		if v == "" {
			return Prescription{}, ErrInvalidInput
		}
		p.Name = v
	}
	if in.Prescriber != nil {
		p.Prescriber = strings.TrimSpace(*in.Prescriber)
	}
	if in.Pharmacy != nil {
		p.Pharmacy = strings.TrimSpace(*in.Pharmacy)
	}
	if in.PrescribedDate != nil {
		p.PrescribedDate = *in.PrescribedDate
	}
	if in.Refills != nil {
		if *in.Refills < 0 {
			return Prescription{}, ErrInvalidInput
		}
		p.Refills = *in.Refills
	}
	if in.RefillsRemaining != nil {
		if *in.RefillsRemaining < 0 {
			return Prescription{}, ErrInvalidInput
		}
		p.RefillsRemaining = *in.RefillsRemaining
	}
	if in.NextRefillDate != nil {
		p.NextRefillDate = in.NextRefillDate
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Prescription{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	p, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, p.ID)
}

// Refill procesa un refill: descuenta uno y agenda el próximo a 30 días.
// Sin refills disponibles devuelve ErrNoRefills (400 en el handler).
func (s *Service) Refill(ctx context.Context, id, userID string) (Prescription, error) {
	p, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return Prescription{}, err
	}

	if p.RefillsRemaining <= 0 {
		return Prescription{}, ErrNoRefills
	}

	now := s.now()
	next := now.Add(refillInterval)

	p.RefillsRemaining--
	p.NextRefillDate = &next
	p.UpdatedAt = now

	if err := s.repo.Update(ctx, p); err != nil {
		return Prescription{}, err
	}
	return p, nil
}
