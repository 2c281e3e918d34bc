package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/schedule/internal/schedule"
)

// DefaultFileName is used when no calendar path is configured.
const DefaultFileName = "schedules.json"

// ErrMalformed is returned when the calendar file is not a valid calendar.
var ErrMalformed = errors.New("malformed calendar file")

// Store handles persistence of a calendar
type Store struct {
	path string
}

// New creates a Store for the calendar file at path
func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("calendar path is empty")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Store{path: path}, nil
}

// Path returns the calendar file path
func (s *Store) Path() string {
	return s.path
}

// Exists reports whether the calendar file is present
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// CreateEmpty writes a calendar with no schedules, replacing any existing file
func (s *Store) CreateEmpty() error {
	return s.Save(schedule.New())
}

// Load reads the calendar from disk. A missing file yields an error
// matching fs.ErrNotExist; unparseable content yields ErrMalformed.
func (s *Store) Load() (*schedule.Calendar, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}

	var cal schedule.Calendar
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrMalformed, s.path, err)
	}

	return &cal, nil
}

// LoadOrCreate loads the calendar, creating an empty file first when none
// exists. created reports whether the file was just made.
func (s *Store) LoadOrCreate() (cal *schedule.Calendar, created bool, err error) {
	cal, err = s.Load()
	if err == nil {
		return cal, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, false, err
	}

	if err := s.CreateEmpty(); err != nil {
		return nil, false, fmt.Errorf("creating calendar: %w", err)
	}
	return schedule.New(), true, nil
}

// Save rewrites the whole calendar file
func (s *Store) Save(cal *schedule.Calendar) error {
	if cal == nil {
		return errors.New("calendar is nil")
	}

	data, err := json.MarshalIndent(cal, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding calendar: %w", err)
	}
	data = append(data, '\n')

	// Create parent directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating calendar directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".schedules-*.tmp")
	if err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing calendar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}

	return nil
}
