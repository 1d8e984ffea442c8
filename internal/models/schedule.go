package models

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleEvent places a task on the calendar. At most one event exists per
// task. The stored title is a snapshot taken at creation; reads populate Task
// and report its live title instead.
type ScheduleEvent struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Task *Task `json:"task,omitempty"`
}

// WithDay returns the event's date moved to the given day, keeping the
// original hour, minute and second so a day-level reschedule never resets
// the clock time.
func (e *ScheduleEvent) WithDay(day time.Time) time.Time {
	return time.Date(
		day.Year(), day.Month(), day.Day(),
		e.Date.Hour(), e.Date.Minute(), e.Date.Second(), e.Date.Nanosecond(),
		e.Date.Location(),
	)
}
