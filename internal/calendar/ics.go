// Package calendar renders schedules as iCalendar (RFC 5545) documents so
// they can be imported into other calendar applications.
package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/schedule/internal/schedule"
)

const (
	productID = "-//schedule//schedule CLI//EN"

	// floatingLayout has no trailing Z: schedules are naive local time, so
	// importers place them in the viewer's own zone.
	floatingLayout = "20060102T150405"
)

// GenerateICS renders the selected schedules, or all of them when ids is
// empty, as one VCALENDAR. An unknown id returns an error wrapping
// schedule.ErrNotFound.
func GenerateICS(cal *schedule.Calendar, stamp time.Time, ids ...uint64) (string, error) {
	selected := cal.Schedules
	if len(ids) > 0 {
		selected = make([]schedule.Schedule, 0, len(ids))
		for _, id := range ids {
			s, ok := cal.Find(id)
			if !ok {
				return "", fmt.Errorf("schedule %d: %w", id, schedule.ErrNotFound)
			}
			selected = append(selected, s)
		}
	}

	out := ics.NewCalendar()
	out.SetMethod(ics.MethodPublish)
	out.SetProductId(productID)

	for _, s := range selected {
		event := out.AddEvent(UID(s))
		event.SetDtStampTime(stamp.UTC())
		event.SetProperty(ics.ComponentPropertyDtStart, s.Start.Time().Format(floatingLayout))
		event.SetProperty(ics.ComponentPropertyDtEnd, s.End.Time().Format(floatingLayout))
		event.SetSummary(s.Subject)
		event.SetProperty(ics.ComponentPropertyStatus, "CONFIRMED")
		event.SetProperty(ics.ComponentPropertyTransp, "OPAQUE")
		event.SetProperty(ics.ComponentPropertySequence, "0")
	}

	return out.Serialize(), nil
}

// UID returns the iCalendar UID used for a schedule.
func UID(s schedule.Schedule) string {
	return fmt.Sprintf("schedule-%d@schedule.local", s.ID)
}
