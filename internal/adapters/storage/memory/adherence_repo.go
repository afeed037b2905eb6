package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"medication-tracker/internal/domain/adherence"
)

type adherenceRepo struct {
	mu   sync.RWMutex
	byID map[string]adherence.Record
}

func NewAdherenceRepo() adherence.Repository {
	return &adherenceRepo{
		byID: make(map[string]adherence.Record),
	}
}

func (r *adherenceRepo) Create(ctx context.Context, rec adherence.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; exists {
		return errors.New("record already exists")
	}
	r.byID[rec.ID] = rec
	return nil
}

func (r *adherenceRepo) GetByID(ctx context.Context, id string) (adherence.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return adherence.Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *adherenceRepo) ListByUser(ctx context.Context, userID string, filter adherence.ListFilter) ([]adherence.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]adherence.Record, 0)
	for _, rec := range r.byID {
		if rec.UserID != userID {
			continue
		}
		if filter.MedicationID != "" && rec.MedicationID != filter.MedicationID {
			continue
		}
		if filter.From != nil && rec.ScheduledTime.Before(*filter.From) {
			continue
		}
		if filter.To != nil && rec.ScheduledTime.After(*filter.To) {
			continue
		}
		out = append(out, rec)
	}

	// Orden por scheduled_time desc (más reciente primero)
	sort.Slice(out, func(i, j int) bool {
		return out[i].ScheduledTime.After(out[j].ScheduledTime)
	})

	return out, nil
}

func (r *adherenceRepo) Update(ctx context.Context, rec adherence.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		return errors.New("record id required")
	}
	if _, exists := r.byID[rec.ID]; !exists {
		return ErrNotFound
	}
	r.byID[rec.ID] = rec
	return nil
}
