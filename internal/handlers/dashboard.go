package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/db"
	"github.com/taskhive/taskhive/internal/models"
)

type achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type dashboardResponse struct {
	UserID       uuid.UUID                 `json:"userId"`
	Username     string                    `json:"username"`
	Counts       map[models.TaskStatus]int `json:"counts"`
	Achievements []achievement             `json:"achievements"`
}

// GET /dashboard/{userId}
// Recap of the user's assigned tasks per board column plus earned achievements.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	callerID, _ := r.Context().Value("user_id").(string)
	if callerID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userIDStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/dashboard/"), "/")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		sendError(w, "user id must be a valid uuid", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := h.UserRepo.GetByID(ctx, userID.String())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "User not found", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to fetch dashboard", http.StatusInternalServerError)
		return
	}

	counts, err := h.TaskRepo.CountByStatusForUser(ctx, userID.String())
	if err != nil {
		sendError(w, "Failed to fetch dashboard", http.StatusInternalServerError)
		return
	}

	sendJSON(w, http.StatusOK, dashboardResponse{
		UserID:       user.ID,
		Username:     user.Username,
		Counts:       counts,
		Achievements: achievementsFor(counts),
	})
}

func achievementsFor(counts map[models.TaskStatus]int) []achievement {
	total := 0
	for _, n := range counts {
		total += n
	}
	done := counts[models.TaskStatusDone]

	earned := []achievement{}
	if total >= 1 {
		earned = append(earned, achievement{
			Name:        "Getting Started",
			Description: "Picked up a first task",
		})
	}
	if done >= 1 {
		earned = append(earned, achievement{
			Name:        "Finisher",
			Description: "Completed a task",
		})
	}
	if done >= 10 {
		earned = append(earned, achievement{
			Name:        "Closer",
			Description: "Completed ten tasks",
		})
	}
	if total > 0 && counts[models.TaskStatusStuck] == 0 {
		earned = append(earned, achievement{
			Name:        "Unblocked",
			Description: "No tasks stuck",
		})
	}
	return earned
}
