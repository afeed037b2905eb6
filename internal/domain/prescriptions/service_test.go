package prescriptions

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
	byID map[string]Prescription
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Prescription{}}
}

func (r *testRepo) Create(ctx context.Context, p Prescription) error {
	if p.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[p.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Prescription, error) {
	p, ok := r.byID[id]
	if !ok {
		return Prescription{}, errRepoNotFound
	}
	return p, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Prescription, error) {
	out := make([]Prescription, 0)
	for _, p := range r.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, p Prescription) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[p.ID] = p
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

func TestService_Create_DefaultsRemainingAndDate(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 3,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.RefillsRemaining != 3 {
		t.Fatalf("expected refills_remaining to default to refills, got %d", p.RefillsRemaining)
	}
	if p.PrescribedDate != now {
		t.Fatalf("expected prescribed_date to default to now")
	}
	if p.CreatedAt != now || p.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Refill_DecrementsAndSchedulesNext(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(48 * time.Hour)

	svc.now = func() time.Time { return now1 }
	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 2,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	svc.now = func() time.Time { return now2 }
	refilled, err := svc.Refill(context.Background(), p.ID, "user-1")
	if err != nil {
		t.Fatalf("Refill error: %v", err)
	}
	if refilled.RefillsRemaining != 1 {
		t.Fatalf("expected 1 refill remaining, got %d", refilled.RefillsRemaining)
	}
	if refilled.NextRefillDate == nil {
		t.Fatalf("expected next_refill_date set")
	}
	// Próximo refill a 30 días del procesamiento, no de la prescripción.
	want := now2.Add(30 * 24 * time.Hour)
	if !refilled.NextRefillDate.Equal(want) {
		t.Fatalf("expected next refill %v, got %v", want, *refilled.NextRefillDate)
	}
	if refilled.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on refill")
	}
}

func TestService_Refill_ExhaustedReturnsErrNoRefills(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 1,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Refill(context.Background(), p.ID, "user-1"); err != nil {
		t.Fatalf("Refill #1 error: %v", err)
	}

	_, err = svc.Refill(context.Background(), p.ID, "user-1")
	if err != ErrNoRefills {
		t.Fatalf("expected ErrNoRefills, got %v", err)
	}

	// El estado no cambió con el refill rechazado.
	got, _ := repo.GetByID(context.Background(), p.ID)
	if got.RefillsRemaining != 0 {
		t.Fatalf("expected remaining 0 after rejected refill, got %d", got.RefillsRemaining)
	}
}

func TestService_Refill_OtherUserGetsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 2,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	// Recetas ajenas se reportan como inexistentes, no como prohibidas.
	_, err = svc.Refill(context.Background(), p.ID, "user-2")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestService_Update_PartialKeepsUntouchedFields(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now1 := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	now2 := now1.Add(time.Hour)
	svc.now = func() time.Time { return now1 }

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:       "Amoxicillin",
		Prescriber: "Dr. Rivas",
		Pharmacy:   "Farmacia Central",
		Refills:    3,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	svc.now = func() time.Time { return now2 }

	// Solo pharmacy y refills_remaining: el resto queda igual.
	pharmacy := "Farmacia Norte"
	remaining := 1
	updated, err := svc.Update(context.Background(), p.ID, "user-1", UpdateInput{
		Pharmacy:         &pharmacy,
		RefillsRemaining: &remaining,
	})
	if err != nil {
		t.Fatalf("Update error: %v", err)
	}
	if updated.Pharmacy != "Farmacia Norte" || updated.RefillsRemaining != 1 {
		t.Fatalf("unexpected prescription after partial update: %#v", updated)
	}
	if updated.Name != "Amoxicillin" || updated.Prescriber != "Dr. Rivas" || updated.Refills != 3 {
		t.Fatalf("expected untouched fields preserved, got %#v", updated)
	}
	if updated.UpdatedAt != now2 {
		t.Fatalf("expected UpdatedAt to change on update")
	}
}

func TestService_Update_RejectsInvalidFields(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 2,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	blank := "   "
	if _, err := svc.Update(context.Background(), p.ID, "user-1", UpdateInput{Name: &blank}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for blank name, got %v", err)
	}

	negative := -1
	if _, err := svc.Update(context.Background(), p.ID, "user-1", UpdateInput{Refills: &negative}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for negative refills, got %v", err)
	}
	if _, err := svc.Update(context.Background(), p.ID, "user-1", UpdateInput{RefillsRemaining: &negative}); err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput for negative refills_remaining, got %v", err)
	}
}

func TestService_Update_OtherUserGetsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 2,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	pharmacy := "Farmacia Norte"
	_, err = svc.Update(context.Background(), p.ID, "user-2", UpdateInput{Pharmacy: &pharmacy})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
}

func TestService_Delete_OwnerOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: 2,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID, "user-2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound deleting as other user, got %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID, "user-1"); err != nil {
		t.Fatalf("Delete by owner error: %v", err)
	}
	if _, err := repo.GetByID(context.Background(), p.ID); err != errRepoNotFound {
		t.Fatalf("expected prescription gone, got %v", err)
	}
}

func TestService_Create_RejectsNegativeRefills(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "user-1", CreateInput{
		Name:    "Amoxicillin",
		Refills: -1,
	})
	if err != ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
