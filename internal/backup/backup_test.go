package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/crewplan/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crewplan.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE crew (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO crew (id, name) VALUES (1, 'Adam'), (2, 'Beata')`); err != nil {
		t.Fatalf("failed to insert rows: %v", err)
	}
	return path
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT count(*) FROM crew`).Scan(&n); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

// fixedClock returns a clock that advances one second per call.
func fixedClock(start time.Time) func() time.Time {
	cur := start.Add(-time.Second)
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	path, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(path) != mgr.Dir() {
		t.Errorf("backup written outside %s: %s", mgr.Dir(), path)
	}
	if n := countRows(t, path); n != 2 {
		t.Errorf("expected 2 rows in backup, got %d", n)
	}
}

func TestCreateBackupMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestCreateBackupSameSecond(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	mgr.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }

	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct backup names, both %s", first)
	}
	backups, err := mgr.List()
	if err != nil || len(backups) != 2 {
		t.Fatalf("expected 2 backups, got %d (%v)", len(backups), err)
	}
}

func TestRotation(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	mgr.now = fixedClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	var last string
	for range MaxBackups + 3 {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		last = path
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", MaxBackups, len(backups))
	}
	if backups[0].Path != last {
		t.Errorf("expected newest backup first, got %s", backups[0].Path)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	mgr := NewManager(setupTestDB(t))
	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "crewplan-garbage.db", "other-20260302-090000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Errorf("expected no backups, got %v (%v)", backups, err)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))

	snapshot, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`DELETE FROM crew`); err != nil {
		t.Fatal(err)
	}
	db.Close()

	previous, err := mgr.Restore(snapshot)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n := countRows(t, dbPath); n != 2 {
		t.Errorf("expected restored database to have 2 rows, got %d", n)
	}
	if previous == "" || countRows(t, previous) != 0 {
		t.Errorf("expected the pre-restore state to be kept in %q", previous)
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t)
	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(dbPath).Restore(bogus); err == nil {
		t.Error("expected error restoring an invalid file")
	}
	if n := countRows(t, dbPath); n != 2 {
		t.Errorf("database must be untouched, got %d rows", n)
	}
}

func TestBackupOfInitializedStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crewplan.db")
	store := sqlite.NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	store.Close()

	backupPath, err := NewManager(path).Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	restored := sqlite.NewStore(backupPath)
	if err := restored.Load(); err != nil {
		t.Fatalf("backup of an initialized store must load: %v", err)
	}
	restored.Close()
}
