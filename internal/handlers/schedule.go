package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/db"
)

/*
handles routes:
GET /schedule - the caller's calendar events, task populated
*/
func (h *Handler) HandleSchedule(w http.ResponseWriter, r *http.Request) {
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

	events, err := h.ScheduleRepo.ListForUser(ctx, userID)
	if err != nil {
		sendError(w, "Failed to fetch schedule", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, events)
}

// PUT /schedule/{eventId}
// Moves an event to another day. The new date keeps the event's original
// hour, minute and second, so a day-level drag never resets the clock time.
func (h *Handler) HandleScheduleByID(w http.ResponseWriter, r *http.Request) {
	eventIDStr := strings.Trim(strings.TrimPrefix(r.URL.Path, "/schedule/"), "/")
	eventID, err := uuid.Parse(eventIDStr)
	if err != nil {
		sendError(w, "event id must be a valid uuid", http.StatusBadRequest)
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
	if !isJSONContentType(r) {
		sendError(w, "Content-Type must be application/json", http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var input struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(input.Date))
	if err != nil {
		sendError(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	event, err := h.ScheduleRepo.GetByID(ctx, eventID.String())
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Event not found", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to update event", http.StatusInternalServerError)
		return
	}
	if event.UserID.String() != userID {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	newDate := event.WithDay(day)
	if err := h.ScheduleRepo.UpdateDate(ctx, eventID.String(), newDate, time.Now().UTC()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "Event not found", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to update event", http.StatusInternalServerError)
		return
	}

	updated, err := h.ScheduleRepo.GetByID(ctx, eventID.String())
	if err != nil {
		sendError(w, "Failed to update event", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, updated)
}
