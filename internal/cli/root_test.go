package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/crewplan/internal/models"
	"github.com/julianstephens/crewplan/internal/storage/sqlite"
)

func TestParseDateTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Bratislava")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2026-03-03 09:00", time.Date(2026, 3, 3, 9, 0, 0, 0, loc), false},
		{"2026-03-03T09:30", time.Date(2026, 3, 3, 9, 30, 0, 0, loc), false},
		{"2026-07-01 08:00", time.Date(2026, 7, 1, 8, 0, 0, 0, loc), false},
		{"2026-03-03T09:00:00Z", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC), false},
		{"03/03/2026 9am", time.Time{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDateTime(tt.in, loc)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDateTime(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !got.Equal(tt.want) {
			t.Errorf("ParseDateTime(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-03", time.UTC)
	if err != nil || !got.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %s (%v)", got, err)
	}
	today, err := ParseDate("today", time.UTC)
	if err != nil || today.Hour() != 0 {
		t.Errorf("expected midnight today, got %s (%v)", today, err)
	}
	if _, err := ParseDate("March 3rd", time.UTC); err == nil {
		t.Error("expected error for free-form date")
	}
}

func TestFormatHours(t *testing.T) {
	tests := map[float64]string{8: "8h", 10: "10h", 7.5: "7.5h", 0.25: "0.25h", 1.1: "1.1h"}
	for in, want := range tests {
		if got := FormatHours(in); got != want {
			t.Errorf("FormatHours(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveEmployee(t *testing.T) {
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer store.Close()

	for _, e := range []models.Employee{
		{ID: "e1", Name: "Adam", Class: models.ClassInstaller, WeeklyHourCap: 40, Active: true},
		{ID: "e2", Name: "Eva", Class: models.ClassBoth, WeeklyHourCap: 40, Active: true},
		{ID: "e3", Name: "Eva", Class: models.ClassProducer, WeeklyHourCap: 40, Active: true},
	} {
		if err := store.AddEmployee(e); err != nil {
			t.Fatalf("AddEmployee failed: %v", err)
		}
	}

	if e, err := ResolveEmployee(store, "e2"); err != nil || e.ID != "e2" {
		t.Errorf("lookup by id failed: %+v %v", e, err)
	}
	if e, err := ResolveEmployee(store, "adam"); err != nil || e.ID != "e1" {
		t.Errorf("lookup by name failed: %+v %v", e, err)
	}
	if _, err := ResolveEmployee(store, "Eva"); err == nil {
		t.Error("expected ambiguity error")
	}
	if _, err := ResolveEmployee(store, "Zora"); err == nil {
		t.Error("expected not found error")
	}
}
