package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

const (
	// StorageLayout is the persisted form of a Timestamp.
	StorageLayout = "2006-01-02T15:04:05"

	// DisplayLayout is used for list output.
	DisplayLayout = "2006-01-02 15:04"
)

// inputLayouts are tried in order before falling back to natural language.
// Sub-second input is accepted but truncated, since StorageLayout keeps
// whole seconds only.
var inputLayouts = []string{
	StorageLayout,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var naturalParser = newNaturalParser()

func newNaturalParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// Timestamp is a naive local date-time. It carries no zone, so two
// Timestamps compare purely on their wall-clock fields.
type Timestamp struct {
	t time.Time
}

// NewTimestamp builds a Timestamp from wall-clock fields.
func NewTimestamp(year int, month time.Month, day, hour, min, sec int) Timestamp {
	return Timestamp{t: time.Date(year, month, day, hour, min, sec, 0, time.UTC)}
}

// FromTime keeps the wall clock of t and discards its location.
func FromTime(t time.Time) Timestamp {
	return NewTimestamp(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// ParseTimestamp parses an ISO-8601-like date-time such as
// "2024-01-01T18:00" or "2024-01-01 18:00:00". Anything else is handed
// to the natural language parser ("tomorrow 6pm"), resolved against ref.
func ParseTimestamp(text string, ref time.Time) (Timestamp, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Timestamp{}, fmt.Errorf("empty date-time")
	}

	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return Timestamp{t: t.Truncate(time.Second)}, nil
		}
	}

	r, err := naturalParser.Parse(text, ref)
	if err != nil {
		return Timestamp{}, fmt.Errorf("parsing %q: %w", text, err)
	}
	if r == nil {
		return Timestamp{}, fmt.Errorf("unrecognized date-time %q (expected YYYY-MM-DDTHH:MM)", text)
	}
	return FromTime(r.Time), nil
}

// Time returns the wall clock as a time.Time in UTC.
func (ts Timestamp) Time() time.Time { return ts.t }

func (ts Timestamp) Before(other Timestamp) bool { return ts.t.Before(other.t) }

func (ts Timestamp) After(other Timestamp) bool { return ts.t.After(other.t) }

func (ts Timestamp) Equal(other Timestamp) bool { return ts.t.Equal(other.t) }

func (ts Timestamp) IsZero() bool { return ts.t.IsZero() }

// String formats the timestamp for display.
func (ts Timestamp) String() string {
	return ts.t.Format(DisplayLayout)
}

// MarshalText implements encoding.TextMarshaler, so JSON and YAML both
// see the storage layout.
func (ts Timestamp) MarshalText() ([]byte, error) {
	return []byte(ts.t.Format(StorageLayout)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (ts *Timestamp) UnmarshalText(data []byte) error {
	text := string(data)
	for _, layout := range inputLayouts[:3] {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			ts.t = t.Truncate(time.Second)
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", text)
}
