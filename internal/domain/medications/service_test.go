package medications

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Medication
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Medication{}}
}

func (r *testRepo) Create(ctx context.Context, m Medication) error {
	if m.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[m.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Medication, error) {
	m, ok := r.byID[id]
	if !ok {
		return Medication{}, errRepoNotFound
	}
	return m, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *testRepo) ListActiveOn(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]Medication, error) {
	out := make([]Medication, 0)
	for _, m := range r.byID {
		if m.UserID != userID {
			continue
		}
		if m.StartDate.After(dayEnd) {
			continue
		}
		if m.EndDate != nil && m.EndDate.Before(dayStart) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, m Medication) error {
	if _, ok := r.byID[m.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[m.ID] = m
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errRepoNotFound
	}
	delete(r.byID, id)
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_RequiresCoreFields(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []CreateInput{
		{Dosage: "100mg", Frequency: "daily", StartDate: start}, // sin nombre
		{Name: "Aspirin", Frequency: "daily", StartDate: start}, // sin dosis
		{Name: "Aspirin", Dosage: "100mg", StartDate: start},    // sin frecuencia
		{Name: "Aspirin", Dosage: "100mg", Frequency: "daily"},  // sin fecha de inicio
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), "user-1", in); err != ErrInvalidInput {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestService_GetOwned_OtherUserGetsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Aspirin",
		Dosage:    "100mg",
		Frequency: "daily",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.GetOwned(context.Background(), m.ID, "user-1"); err != nil {
		t.Fatalf("GetOwned by owner error: %v", err)
	}

	// Registros ajenos se reportan como inexistentes.
	if _, err := svc.GetOwned(context.Background(), m.ID, "user-2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestService_Update_PartialAndEndDateClear(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)
	svc.now = func() time.Time { return now1 }

	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Aspirin",
		Dosage:    "100mg",
		Frequency: "daily",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	svc.now = func() time.Time { return now2 }

	// PATCH solo de dosage: el resto queda igual.
	newDosage := "200mg"
	updated, err := svc.Update(context.Background(), m.ID, "user-1", UpdateInput{
		Dosage: &newDosage,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Dosage != "200mg" || updated.Name != "Aspirin" || updated.Frequency != "daily" {
		t.Fatalf("unexpected medication after partial update: %#v", updated)
	}
	if updated.EndDate == nil || !updated.EndDate.Equal(end) {
		t.Fatalf("expected end_date untouched when not sent")
	}
	if updated.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on update")
	}

	// end_date: null explícito limpia el campo.
	updated, err = svc.Update(context.Background(), m.ID, "user-1", UpdateInput{
		EndDate: PatchEndDate{Present: true, Value: nil},
	})
	if err != nil {
		t.Fatalf("Update (clear end_date) error: %v", err)
	}
	if updated.EndDate != nil {
		t.Fatalf("expected end_date cleared, got %v", updated.EndDate)
	}
}

func TestService_Update_RejectsEmptyRequiredField(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Aspirin",
		Dosage:    "100mg",
		Frequency: "daily",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	empty := "   "
	if _, err := svc.Update(context.Background(), m.ID, "user-1", UpdateInput{Name: &empty}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}
}

func TestService_Delete_OwnerOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	m, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:      "Aspirin",
		Dosage:    "100mg",
		Frequency: "daily",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), m.ID, "user-2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound deleting as other user, got %v", err)
	}
	if err := svc.Delete(context.Background(), m.ID, "user-1"); err != nil {
		t.Fatalf("Delete by owner error: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), m.ID); err != errRepoNotFound {
		t.Fatalf("expected medication gone, got %v", err)
	}
}
