package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/HanyangXu0508/clinic-appointment-system/internal/model"
)

func newTestRepo(t *testing.T) *GormAppointmentRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewGormAppointmentRepository(db)
}

func mustCreate(t *testing.T, repo *GormAppointmentRepository, appt *model.Appointment) {
	t.Helper()
	if err := repo.Create(context.Background(), appt); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestPartialUpdate_PreservesOmittedFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	appt := model.NewAppointment("Ivanov", "2025-01-01", "09:00")
	appt.Services = "cleaning;x-ray"
	appt.InvoiceSent = model.InvoiceYes
	mustCreate(t, repo, appt)

	newName := "Petrov"
	if err := repo.Update(ctx, appt.ID, Patch{Patient: &newName}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.GetByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Patient != "Petrov" {
		t.Fatalf("expected patient updated, got %q", got.Patient)
	}
	if got.Date != "2025-01-01" || got.PlannedTime != "09:00" {
		t.Fatalf("expected date and planned time untouched, got %q %q", got.Date, got.PlannedTime)
	}
	if got.Services != "cleaning;x-ray" {
		t.Fatalf("expected services untouched, got %q", got.Services)
	}
	if got.InvoiceSent != model.InvoiceYes {
		t.Fatalf("expected invoice flag untouched, got %q", got.InvoiceSent)
	}
}

func TestUpdate_ArrivalTimeDrivesStatus(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	appt := model.NewAppointment("Ivanov", "2025-01-01", "09:00")
	mustCreate(t, repo, appt)

	arrival := "09:15"
	if err := repo.Update(ctx, appt.ID, Patch{ArrivalTime: &arrival}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.GetByID(ctx, appt.ID)
	if got.Status != model.StatusArrived {
		t.Fatalf("expected status arrived, got %q", got.Status)
	}

	empty := ""
	if err := repo.Update(ctx, appt.ID, Patch{ArrivalTime: &empty}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, _ = repo.GetByID(ctx, appt.ID)
	if got.Status != model.StatusScheduled {
		t.Fatalf("expected status scheduled after clear, got %q", got.Status)
	}
	if got.ArrivalTime != "" {
		t.Fatalf("expected arrival time cleared, got %q", got.ArrivalTime)
	}
}

func TestList_FilterConjunction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := model.NewAppointment("Ivanov", "2025-01-01", "09:00")
	mustCreate(t, repo, first)

	second := model.NewAppointment("Petrov", "2025-01-02", "10:00")
	second.Status = model.StatusArrived
	second.ArrivalTime = "10:05"
	mustCreate(t, repo, second)

	got, err := repo.List(ctx, Filter{
		DateFrom: "2025-01-01",
		DateTo:   "2025-01-01",
		Status:   model.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != first.ID {
		t.Fatalf("expected exactly the first appointment, got %v", got)
	}

	got, err = repo.List(ctx, Filter{Status: model.StatusArrived})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != second.ID {
		t.Fatalf("expected exactly the second appointment, got %v", got)
	}
}

func TestList_InvoiceFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	sent := model.NewAppointment("Ivanov", "2025-01-01", "09:00")
	sent.InvoiceSent = model.InvoiceYes
	mustCreate(t, repo, sent)
	mustCreate(t, repo, model.NewAppointment("Petrov", "2025-01-01", "10:00"))

	got, err := repo.List(ctx, Filter{InvoiceSent: model.InvoiceYes})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != sent.ID {
		t.Fatalf("expected only the sent-invoice appointment, got %v", got)
	}

	got, err = repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both appointments without filter, got %d", len(got))
	}
}

func TestList_SortOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, planned := range []string{"09:00", "08:30", "10:00"} {
		mustCreate(t, repo, model.NewAppointment("Ivanov", "2025-01-01", planned))
	}

	got, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []string{"08:30", "09:00", "10:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %d appointments, got %d", len(want), len(got))
	}
	for i, planned := range want {
		if got[i].PlannedTime != planned {
			t.Fatalf("position %d: expected %s, got %s", i, planned, got[i].PlannedTime)
		}
	}
}

func TestUpsert_LastWriterWins(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &model.Appointment{
		ID: "fixed-id", Date: "2025-01-01", PlannedTime: "09:00",
		Patient: "Ivanov", Status: model.StatusScheduled, InvoiceSent: model.InvoiceNo,
	}
	if err := repo.Upsert(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second := &model.Appointment{
		ID: "fixed-id", Date: "2025-01-01", PlannedTime: "09:00",
		Patient: "Petrov", Status: model.StatusScheduled, InvoiceSent: model.InvoiceNo,
	}
	if err := repo.Upsert(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 row, got %d", total)
	}

	got, _ := repo.GetByID(ctx, "fixed-id")
	if got.Patient != "Petrov" {
		t.Fatalf("expected last writer to win, got %q", got.Patient)
	}
}

func TestUpdate_MissingID(t *testing.T) {
	repo := newTestRepo(t)

	name := "Petrov"
	err := repo.Update(context.Background(), "no-such-id", Patch{Patient: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_MissingID(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), "no-such-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdate_EmptyPatchIsNoop(t *testing.T) {
	repo := newTestRepo(t)

	// Пустой патч не трогает хранилище и не считается NotFound.
	if err := repo.Update(context.Background(), "no-such-id", Patch{}); err != nil {
		t.Fatalf("expected nil for empty patch, got %v", err)
	}
}

func TestGetByID_Missing(t *testing.T) {
	repo := newTestRepo(t)

	if _, err := repo.GetByID(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
