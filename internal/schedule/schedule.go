package schedule

import "fmt"

// Schedule is one calendar entry covering [Start, End).
type Schedule struct {
	ID      uint64    `json:"id" yaml:"id"`
	Subject string    `json:"subject" yaml:"subject"`
	Start   Timestamp `json:"start" yaml:"start"`
	End     Timestamp `json:"end" yaml:"end"`
}

// Intersects reports whether s and other share any instant. Intervals
// are half-open, so one ending exactly when the other starts does not
// intersect.
func (s Schedule) Intersects(other Schedule) bool {
	return s.Start.Before(other.End) && other.Start.Before(s.End)
}

// Span formats the interval for messages.
func (s Schedule) Span() string {
	return fmt.Sprintf("%s - %s", s.Start, s.End)
}
