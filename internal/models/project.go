package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "Planning"
	ProjectStatusOngoing   ProjectStatus = "Ongoing"
	ProjectStatusCompleted ProjectStatus = "Completed"
	ProjectStatusOnHold    ProjectStatus = "OnHold"
)

type Project struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	OwnerID     uuid.UUID     `json:"ownerId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// populated on reads, not stored as columns
	Members []*User `json:"members,omitempty"`
	Tasks   []*Task `json:"tasks,omitempty"`
}

func ParseProjectStatus(s string) (ProjectStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "planning":
		return ProjectStatusPlanning, true
	case "ongoing":
		return ProjectStatusOngoing, true
	case "completed":
		return ProjectStatusCompleted, true
	case "onhold", "on_hold", "on hold":
		return ProjectStatusOnHold, true
	default:
		return "", false
	}
}
