package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/db"
)

/*
handles routes:
GET /bounty - unassigned tasks across the caller's projects
*/
func (h *Handler) HandleBounties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.TaskRepo.ListUnassignedForUser(ctx, userID)
	if err != nil {
		sendError(w, "Failed to fetch bounties", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, tasks)
}

// PUT /bounty/{taskId}/claim
// Claims an unassigned task for the caller. The claim is a single conditional
// update at the storage layer; losing the race and "no such task" produce the
// same response on purpose.
func (h *Handler) HandleBountyClaim(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/bounty/"), "/"), "/")
	if len(parts) != 2 || parts[1] != "claim" {
		sendError(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodPut {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	taskID, err := uuid.Parse(parts[0])
	if err != nil {
		sendError(w, "task id must be a valid uuid", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	task, err := h.TaskRepo.ClaimBounty(ctx, taskID.String(), userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, db.ErrAlreadyClaimed) {
			sendError(w, "Task not found or already claimed", http.StatusConflict)
			return
		}
		sendError(w, "Failed to claim task", http.StatusInternalServerError)
		return
	}
	h.WSHub.BroadcastTaskUpdate(task.ProjectID, task)
	sendJSON(w, http.StatusOK, task)
}
