package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pfrederiksen/schedule/internal/schedule"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func sampleCalendar(t *testing.T) *schedule.Calendar {
	t.Helper()
	cal := schedule.New()
	entries := []struct {
		subject string
		start   schedule.Timestamp
		end     schedule.Timestamp
	}{
		{"Meeting", schedule.NewTimestamp(2024, time.January, 1, 18, 0, 0), schedule.NewTimestamp(2024, time.January, 1, 19, 0, 0)},
		{"Dinner", schedule.NewTimestamp(2024, time.January, 1, 19, 30, 0), schedule.NewTimestamp(2024, time.January, 1, 21, 0, 0)},
	}
	for _, e := range entries {
		if _, err := cal.Add(e.subject, e.start, e.end); err != nil {
			t.Fatalf("Add(%q) error = %v", e.subject, err)
		}
	}
	return cal
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	store, err := New(filepath.Join(dir, "nested", "deeper", DefaultFileName))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(store.Path())); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("New() created parent directory: stat error = %v", err)
	}
	if store.Exists() {
		t.Error("Exists() = true before any write")
	}

	if _, err := New("  "); err == nil {
		t.Error("New() with blank path expected error")
	}
}

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := New("~/cal/" + DefaultFileName)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if want := filepath.Join(home, "cal", DefaultFileName); store.Path() != want {
		t.Errorf("Path() = %q, want %q", store.Path(), want)
	}
}

func TestLoad_Missing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"truncated", `{"schedules":[{"id":0`},
		{"wrong shape", `{"schedules":"nope"}`},
		{"missing schedules", `{}`},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			if err := os.WriteFile(store.Path(), []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := store.Load()
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Load() error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestCreateEmpty(t *testing.T) {
	store := newTestStore(t)

	if err := store.CreateEmpty(); err != nil {
		t.Fatalf("CreateEmpty() error = %v", err)
	}

	cal, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cal.Len() != 0 || cal.NextID != 0 {
		t.Errorf("empty calendar has len=%d next_id=%d", cal.Len(), cal.NextID)
	}
}

func TestCreateEmpty_Unwritable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}

	dir := t.TempDir()
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatal(err)
	}
	defer os.Chmod(dir, 0755) // nolint:errcheck

	store, err := New(filepath.Join(dir, DefaultFileName))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.CreateEmpty(); err == nil {
		t.Error("CreateEmpty() in read-only directory expected error")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	cal := sampleCalendar(t)

	if err := store.Save(cal); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cal, loaded); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}

func TestSave_CreatesParentDirectory(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "nested", "deeper", DefaultFileName))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := store.Load(); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load() error = %v, want fs.ErrNotExist", err)
	}
	if _, err := os.Stat(filepath.Dir(store.Path())); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Load() created parent directory: stat error = %v", err)
	}

	if err := store.Save(sampleCalendar(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !store.Exists() {
		t.Error("Exists() = false after Save()")
	}
}

func TestSaveLoad_SubSecondInput(t *testing.T) {
	store := newTestStore(t)
	ref := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

	start, err := schedule.ParseTimestamp("2024-01-01T18:00", ref)
	if err != nil {
		t.Fatalf("ParseTimestamp(start) error = %v", err)
	}
	end, err := schedule.ParseTimestamp("2024-01-01T19:00:00.5", ref)
	if err != nil {
		t.Fatalf("ParseTimestamp(end) error = %v", err)
	}

	cal := schedule.New()
	if _, err := cal.Add("Meeting", start, end); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := store.Save(cal); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(cal, loaded); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}

	// An add starting at 19:00:00 must stay adjacent after reload.
	if _, err := loaded.Add("Next", schedule.NewTimestamp(2024, time.January, 1, 19, 0, 0), schedule.NewTimestamp(2024, time.January, 1, 20, 0, 0)); err != nil {
		t.Errorf("adjacent Add() after reload error = %v", err)
	}
}

func TestSave_Format(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(sampleCalendar(t)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	for _, want := range []string{
		`"next_id": 2`,
		`"schedules": [`,
		`"subject": "Meeting"`,
		`"start": "2024-01-01T18:00:00"`,
		`"end": "2024-01-01T19:00:00"`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("saved file missing %s:\n%s", want, content)
		}
	}
}

func TestSave_Overwrites(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(sampleCalendar(t)); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateEmpty(); err != nil {
		t.Fatal(err)
	}

	cal, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cal.Len() != 0 {
		t.Errorf("Len() = %d after overwrite, want 0", cal.Len())
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}

func TestSave_Nil(t *testing.T) {
	if err := newTestStore(t).Save(nil); err == nil {
		t.Error("Save(nil) expected error")
	}
}

func TestLoadOrCreate(t *testing.T) {
	store := newTestStore(t)

	cal, created, err := store.LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	if !created {
		t.Error("created = false for missing file")
	}
	if cal.Len() != 0 {
		t.Errorf("Len() = %d, want 0", cal.Len())
	}
	if !store.Exists() {
		t.Error("file not created")
	}

	if err := store.Save(sampleCalendar(t)); err != nil {
		t.Fatal(err)
	}
	cal, created, err = store.LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate() error = %v", err)
	}
	if created {
		t.Error("created = true for existing file")
	}
	if cal.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cal.Len())
	}
}

func TestLoadOrCreate_Malformed(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Path(), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := store.LoadOrCreate()
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("LoadOrCreate() error = %v, want ErrMalformed", err)
	}

	data, _ := os.ReadFile(store.Path())
	if string(data) != "garbage" {
		t.Error("malformed file was overwritten")
	}
}
