package boardclient

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

// Board is the four-column view of a set of tasks. Column membership is
// derived from each task's status; there is no parallel ordered list to
// drift out of sync with it.
type Board struct {
	columns map[models.TaskStatus][]*models.Task
}

func NewBoard(tasks []*models.Task) *Board {
	b := &Board{columns: make(map[models.TaskStatus][]*models.Task)}
	for _, task := range tasks {
		b.insert(task)
	}
	return b
}

// Column returns a copy of the tasks currently shown in the given column.
func (b *Board) Column(status models.TaskStatus) []*models.Task {
	column := b.columns[status]
	out := make([]*models.Task, len(column))
	copy(out, column)
	return out
}

func (b *Board) Size() int {
	n := 0
	for _, column := range b.columns {
		n += len(column)
	}
	return n
}

func (b *Board) insert(task *models.Task) {
	b.columns[task.Status] = append(b.columns[task.Status], task)
}

func (b *Board) remove(id uuid.UUID) (*models.Task, bool) {
	for status, column := range b.columns {
		for i, task := range column {
			if task.ID == id {
				b.columns[status] = append(column[:i:i], column[i+1:]...)
				return task, true
			}
		}
	}
	return nil, false
}

// Calendar groups schedule events by day.
type Calendar struct {
	days map[string][]*models.ScheduleEvent
}

func NewCalendar(events []*models.ScheduleEvent) *Calendar {
	c := &Calendar{days: make(map[string][]*models.ScheduleEvent)}
	for _, event := range events {
		c.insert(event)
	}
	return c
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Day returns a copy of the events shown on the given day.
func (c *Calendar) Day(day time.Time) []*models.ScheduleEvent {
	events := c.days[dayKey(day)]
	out := make([]*models.ScheduleEvent, len(events))
	copy(out, events)
	return out
}

func (c *Calendar) Size() int {
	n := 0
	for _, events := range c.days {
		n += len(events)
	}
	return n
}

func (c *Calendar) insert(event *models.ScheduleEvent) {
	key := dayKey(event.Date)
	c.days[key] = append(c.days[key], event)
}

func (c *Calendar) remove(id uuid.UUID) (*models.ScheduleEvent, bool) {
	for key, events := range c.days {
		for i, event := range events {
			if event.ID == id {
				c.days[key] = append(events[:i:i], events[i+1:]...)
				return event, true
			}
		}
	}
	return nil, false
}
