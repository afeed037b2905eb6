package adherence

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
	MedicationID  string
	ScheduledTime time.Time
	TakenTime     *time.Time
	Skipped       bool
	Notes         string
}

// Create registra una toma. La pertenencia del medicamento al usuario
// la valida el handler (cruza con el servicio de medications); acá solo
// validamos forma.
//
// No se impone unicidad por (medication, scheduled_time): el cruce con
// la agenda usa el heurístico de ±15 minutos, no una FK a slot.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Record, error) {
	if strings.TrimSpace(userID) == "" {
		return Record{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.MedicationID) == "" {
		return Record{}, ErrInvalidInput
	}
	if in.ScheduledTime.IsZero() {
		return Record{}, ErrInvalidInput
	}

	now := s.now()
	rec := Record{
		ID:            uuid.NewString(),
		UserID:        userID,
		MedicationID:  strings.TrimSpace(in.MedicationID),
		ScheduledTime: in.ScheduledTime,
		TakenTime:     in.TakenTime,
		Skipped:       in.Skipped,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (s *Service) GetOwned(ctx context.Context, id, userID string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(userID) == "" {
		return Record{}, ErrInvalidInput
	}
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Record{}, ErrNotFound
	}
	if rec.UserID != userID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Record, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

// PatchTakenTime distingue "no enviado" de "enviar null" (volver a pendiente).
type PatchTakenTime struct {
	Present bool
	Value   *time.Time
}

type UpdateInput struct {
	TakenTime PatchTakenTime
	Skipped   *bool
	Notes     *string
}

func (s *Service) Update(ctx context.Context, id, userID string, in UpdateInput) (Record, error) {
	rec, err := s.GetOwned(ctx, id, userID)
	if err != nil {
		return Record{}, err
	}

	if in.TakenTime.Present {
		rec.TakenTime = in.TakenTime.Value // nil = volver a pendiente
	}
	if in.Skipped != nil {
		rec.Skipped = *in.Skipped
	}
	if in.Notes != nil {
		rec.Notes = strings.TrimSpace(*in.Notes)
	}

	rec.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}
