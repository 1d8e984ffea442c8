package boardclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

func TestClient_RescheduleEventSendsDayOnly(t *testing.T) {
	event := &models.ScheduleEvent{
		ID:     uuid.New(),
		TaskID: uuid.New(),
		Date:   time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want := "/schedule/" + event.ID.String(); r.URL.Path != want {
			t.Errorf("path = %s, want %s", r.URL.Path, want)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q", got)
		}
		var body struct {
			Date string `json:"date"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Date != "2025-08-10" {
			t.Errorf("date = %q, want day-level precision", body.Date)
		}
		updated := *event
		updated.Date = time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&updated)
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	updated, err := c.RescheduleEvent(context.Background(), event.ID, time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RescheduleEvent: %v", err)
	}
	want := time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC)
	if !updated.Date.Equal(want) {
		t.Errorf("date = %v, want %v", updated.Date, want)
	}
}

func TestClient_ClaimBountyConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Task not found or already claimed"})
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	_, err := c.ClaimBounty(context.Background(), uuid.New())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want APIError", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message == "" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestController_RescheduleRollback(t *testing.T) {
	event := &models.ScheduleEvent{
		ID:     uuid.New(),
		TaskID: uuid.New(),
		Title:  "Review PR",
		Date:   time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"error": "Forbidden"})
	}))
	defer srv.Close()

	c := NewController(New(srv.URL, "token"))
	c.SetEvents([]*models.ScheduleEvent{event})

	day := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	if err := c.RescheduleEvent(context.Background(), event.ID, day); err == nil {
		t.Fatal("expected the reschedule to fail")
	}

	// the event is back on its original day with its original time
	got := c.Day(event.Date)
	if len(got) != 1 || !got[0].Date.Equal(event.Date) {
		t.Fatalf("original day = %+v, want the rolled-back event", got)
	}
	if len(c.Day(day)) != 0 {
		t.Error("event left behind on the destination day")
	}
}

func TestController_RescheduleConfirmed(t *testing.T) {
	event := &models.ScheduleEvent{
		ID:     uuid.New(),
		TaskID: uuid.New(),
		Title:  "Review PR",
		Date:   time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		updated := *event
		updated.Date = time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(&updated)
	}))
	defer srv.Close()

	c := NewController(New(srv.URL, "token"))
	c.SetEvents([]*models.ScheduleEvent{event})

	day := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	if err := c.RescheduleEvent(context.Background(), event.ID, day); err != nil {
		t.Fatalf("RescheduleEvent: %v", err)
	}

	got := c.Day(day)
	if len(got) != 1 {
		t.Fatalf("destination day = %d events, want 1", len(got))
	}
	if got[0].Date.Hour() != 14 || got[0].Date.Minute() != 30 {
		t.Errorf("time of day = %v, want 14:30 preserved", got[0].Date)
	}
	if len(c.Day(event.Date)) != 0 {
		t.Error("event still present on the source day")
	}
}

func TestController_LoadSchedule(t *testing.T) {
	event := &models.ScheduleEvent{
		ID:     uuid.New(),
		TaskID: uuid.New(),
		Date:   time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/schedule" {
			t.Errorf("path = %s, want /schedule", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]*models.ScheduleEvent{event})
	}))
	defer srv.Close()

	c := NewController(New(srv.URL, "token"))
	if err := c.LoadSchedule(context.Background()); err != nil {
		t.Fatalf("LoadSchedule: %v", err)
	}
	if got := c.Day(event.Date); len(got) != 1 || got[0].ID != event.ID {
		t.Fatalf("loaded day = %+v, want the event", got)
	}
}
