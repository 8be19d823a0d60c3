package calendar

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/julianstephens/crewplan/internal/errors"
	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/storage/sqlite"
)

func TestLocalProviderRoundTrip(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	defer store.Close()

	svc := NewService(NewLocalProvider(store))
	ctx := context.Background()
	start := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	id, err := svc.CreateEvent(ctx, models.CalendarEvent{CalendarID: "adam", Summary: "Install", Start: start, End: start.Add(2 * time.Hour)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated event id")
	}
	dup := models.CalendarEvent{ID: id, CalendarID: "adam", Summary: "Install", Start: start, End: start.Add(2 * time.Hour)}
	if _, err := NewLocalProvider(store).CreateEvent(ctx, dup); !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict for an existing id, got %v", err)
	}

	free, err := svc.IsFree(ctx, "adam", start.Add(time.Hour), start.Add(3*time.Hour))
	if err != nil || free {
		t.Errorf("expected busy, got free=%v err=%v", free, err)
	}
	free, _ = svc.IsFree(ctx, "eva", start, start.Add(time.Hour))
	if !free {
		t.Error("other calendars must not be affected")
	}

	if err := svc.UpdateEvent(ctx, models.CalendarEvent{ID: id, CalendarID: "adam", Summary: "Install", Start: start.Add(24 * time.Hour), End: start.Add(26 * time.Hour)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	free, _ = svc.IsFree(ctx, "adam", start, start.Add(2*time.Hour))
	if !free {
		t.Error("expected original window free after move")
	}

	if err := svc.DeleteEvent(ctx, "adam", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
