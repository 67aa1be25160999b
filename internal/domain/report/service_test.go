package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	byPatient map[string][]*Report
}

func newMockRepo() *mockRepo {
	return &mockRepo{byPatient: make(map[string][]*Report)}
}

func (m *mockRepo) Create(_ context.Context, r *Report) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	// newest first
	m.byPatient[r.PatientEmail] = append([]*Report{r}, m.byPatient[r.PatientEmail]...)
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientEmail string, limit, offset int) ([]*Report, int, error) {
	all := m.byPatient[patientEmail]
	total := len(all)
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockRepo) RecentByPatient(_ context.Context, patientEmail string, limit int) ([]*Report, error) {
	reports, _, err := m.ListByPatient(context.Background(), patientEmail, limit, 0)
	return reports, err
}

func TestAppend(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	r, err := svc.Append(ctx, "alice@example.com", "All clear")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if r.ID == uuid.Nil || r.CreatedAt.IsZero() {
		t.Errorf("expected assigned ID and timestamp, got %+v", r)
	}
}

func TestAppendValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	if _, err := svc.Append(ctx, "", "summary"); err == nil {
		t.Error("expected error for missing patient email")
	}
	if _, err := svc.Append(ctx, "alice@example.com", ""); err == nil {
		t.Error("expected error for missing summary")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	for _, s := range []string{"first", "second", "third"} {
		if _, err := svc.Append(ctx, "alice@example.com", s); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	recent, err := svc.Recent(ctx, "alice@example.com", 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 2 || recent[0].Summary != "third" || recent[1].Summary != "second" {
		t.Errorf("expected newest first with limit, got %+v", recent)
	}
}

func TestListByPatientPagination(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := svc.Append(ctx, "alice@example.com", "r"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	page, total, err := svc.ListByPatient(ctx, "alice@example.com", 2, 4)
	if err != nil {
		t.Fatalf("ListByPatient failed: %v", err)
	}
	if total != 5 || len(page) != 1 {
		t.Errorf("expected total 5 and a short last page, got total=%d len=%d", total, len(page))
	}
}
