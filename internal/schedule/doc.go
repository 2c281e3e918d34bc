// Package schedule provides the calendar data model and its mutations.
//
// A Calendar is an ordered list of Schedules, each covering a half-open
// interval [Start, End) of naive local time. Adding a schedule that
// intersects an existing one is rejected, and ids are handed out from a
// counter stored with the calendar so they stay unique across deletions.
package schedule
