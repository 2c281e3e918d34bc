package schedule

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Calendar is the persisted aggregate: schedules in insertion order plus
// the next id to hand out.
type Calendar struct {
	NextID    uint64     `json:"next_id" yaml:"next_id"`
	Schedules []Schedule `json:"schedules" yaml:"schedules"`
}

// Row is one line of list output.
type Row struct {
	ID      uint64 `json:"id" yaml:"id"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
	Subject string `json:"subject" yaml:"subject"`
}

// New returns an empty calendar.
func New() *Calendar {
	return &Calendar{Schedules: []Schedule{}}
}

// Len returns the number of schedules.
func (c *Calendar) Len() int {
	return len(c.Schedules)
}

// ValidateRange returns ErrInvalidRange unless start is before end.
func ValidateRange(start, end Timestamp) error {
	if !start.Before(end) {
		return ErrInvalidRange
	}
	return nil
}

// Add appends a schedule unless it overlaps an existing one. On conflict
// the calendar is unchanged and a *ConflictError naming the first
// overlapping schedule is returned.
func (c *Calendar) Add(subject string, start, end Timestamp) (Schedule, error) {
	candidate := Schedule{
		ID:      c.NextID,
		Subject: subject,
		Start:   start,
		End:     end,
	}

	if err := ValidateRange(start, end); err != nil {
		return Schedule{}, err
	}
	if c.NextID == math.MaxUint64 {
		return Schedule{}, ErrIDsExhausted
	}

	for _, existing := range c.Schedules {
		if existing.Intersects(candidate) {
			return Schedule{}, &ConflictError{Existing: existing, Candidate: candidate}
		}
	}

	c.Schedules = append(c.Schedules, candidate)
	c.NextID++
	return candidate, nil
}

// Delete removes the first schedule with the given id and reports
// whether one was found. NextID is never rewound.
func (c *Calendar) Delete(id uint64) bool {
	for i, s := range c.Schedules {
		if s.ID == id {
			c.Schedules = append(c.Schedules[:i], c.Schedules[i+1:]...)
			return true
		}
	}
	return false
}

// Find returns the schedule with the given id.
func (c *Calendar) Find(id uint64) (Schedule, bool) {
	for _, s := range c.Schedules {
		if s.ID == id {
			return s, true
		}
	}
	return Schedule{}, false
}

// Rows returns the calendar in stored order, formatted for display.
func (c *Calendar) Rows() []Row {
	rows := make([]Row, 0, len(c.Schedules))
	for _, s := range c.Schedules {
		rows = append(rows, Row{
			ID:      s.ID,
			Start:   s.Start.String(),
			End:     s.End.String(),
			Subject: s.Subject,
		})
	}
	return rows
}

// UnmarshalJSON requires the schedules field and repairs NextID for files
// written before the counter existed.
func (c *Calendar) UnmarshalJSON(data []byte) error {
	var raw struct {
		NextID    *uint64     `json:"next_id"`
		Schedules *[]Schedule `json:"schedules"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Schedules == nil {
		return errors.New("missing field \"schedules\"")
	}

	c.Schedules = *raw.Schedules
	c.NextID = 0
	if raw.NextID != nil {
		c.NextID = *raw.NextID
	}
	for _, s := range c.Schedules {
		if s.ID == math.MaxUint64 {
			return fmt.Errorf("schedule id %d out of range", s.ID)
		}
		if s.ID >= c.NextID {
			c.NextID = s.ID + 1
		}
	}
	return nil
}
