package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

// Board columns. A task's status is the single source of truth for
// column membership; columns are derived by filtering at read time.
const (
	TaskStatusToDo    TaskStatus = "ToDo"
	TaskStatusOngoing TaskStatus = "Ongoing"
	TaskStatusDone    TaskStatus = "Done"
	TaskStatusStuck   TaskStatus = "Stuck"
)

var TaskStatuses = []TaskStatus{TaskStatusToDo, TaskStatusOngoing, TaskStatusDone, TaskStatusStuck}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Status      TaskStatus `json:"status"`
	AssignedTo  *uuid.UUID `json:"assignedTo"` // nil means unassigned, i.e. on the bounty board
	CreatedBy   uuid.UUID  `json:"createdBy"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// convert various user inputs to standard status values
func ParseTaskStatus(s string) (TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to_do", "to do":
		return TaskStatusToDo, true
	case "ongoing", "in-progress", "in_progress", "in progress":
		return TaskStatusOngoing, true
	case "done":
		return TaskStatusDone, true
	case "stuck":
		return TaskStatusStuck, true
	default:
		return "", false
	}
}
