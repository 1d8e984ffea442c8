package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/models"
)

const doneEventColor = "green"

// PUT /project/tasks/{taskId}
// Moves a task to the target board column. Moving to the current column is a
// no-op that still returns the task. An optional version lets the caller
// reject a write against state it has not seen.
func (h *Handler) moveTask(w http.ResponseWriter, r *http.Request, taskIDStr string) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, err := uuid.Parse(taskIDStr)
	if err != nil {
		sendError(w, "task id must be a valid uuid", http.StatusBadRequest)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Status  string `json:"status"`
		Version *int64 `json:"version"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	status, ok := models.ParseTaskStatus(input.Status)
	if !ok {
		sendError(w, "Invalid status value", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.TaskRepo.UpdateStatus(ctx, taskID.String(), status, input.Version, time.Now().UTC())
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			sendError(w, "Task not found", http.StatusNotFound)
		case errors.Is(err, db.ErrVersionConflict):
			sendError(w, "Task was modified by someone else", http.StatusConflict)
		default:
			sendError(w, "Failed to update task", http.StatusInternalServerError)
		}
		return
	}

	if task.Status == models.TaskStatusDone {
		if err := h.scheduleDoneTask(ctx, task, userID); err != nil {
			log.Printf("Failed to create schedule event for task %s: %v", task.ID, err)
		}
	}
	h.WSHub.BroadcastTaskUpdate(task.ProjectID, task)
	sendJSON(w, http.StatusOK, task)
}

// a task entering Done lands on the calendar; at most one event per task
func (h *Handler) scheduleDoneTask(ctx context.Context, task *models.Task, actorID string) error {
	owner := uuid.MustParse(actorID)
	if task.AssignedTo != nil {
		owner = *task.AssignedTo
	}
	now := time.Now().UTC()
	return h.ScheduleRepo.CreateForTask(ctx, &models.ScheduleEvent{
		ID:        uuid.New(),
		TaskID:    task.ID,
		UserID:    owner,
		Title:     task.Title,
		Date:      now,
		Color:     doneEventColor,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// POST /project/{projectId}/tasks
func (h *Handler) createTask(w http.ResponseWriter, r *http.Request, projectID string) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Deadline    string `json:"deadline"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		sendError(w, "title is required", http.StatusBadRequest)
		return
	}
	if len(input.Title) > 200 {
		sendError(w, "title too long (max 200 chars)", http.StatusBadRequest)
		return
	}
	if len(input.Description) > 1000 {
		sendError(w, "description too long (max 1000 chars)", http.StatusBadRequest)
		return
	}
	deadline, err := parseDeadline(input.Deadline)
	if err != nil {
		sendError(w, "deadline must be RFC3339 or YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := h.ProjectRepo.GetByID(ctx, projectID); err != nil {
		sendError(w, "Project not found", http.StatusNotFound)
		return
	}
	member, err := h.ProjectRepo.IsMember(ctx, projectID, userID)
	if err != nil {
		sendError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}
	if !member {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.New(),
		ProjectID:   uuid.MustParse(projectID),
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Deadline:    deadline,
		Status:      models.TaskStatusToDo,
		AssignedTo:  nil, // new tasks start on the bounty board
		CreatedBy:   uuid.MustParse(userID),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.TaskRepo.Create(ctx, task); err != nil {
		sendError(w, "Failed to create task", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskUpdate(task.ProjectID, task)
	w.Header().Set("Location", "/project/tasks/"+task.ID.String())
	sendJSON(w, http.StatusCreated, task)
}

func parseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
