package handlers

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

func TestDashboard_RecapCounts(t *testing.T) {
	h, mux, dbx, secret := setupHTTP(t)
	defer dbx.Close()

	owner := seedUser(t, h, "owner@example.com")
	authz := bearerForUser(t, secret, owner.ID.String())

	rec := doJSON(t, mux, http.MethodPost, "/project", authz, map[string]string{"name": "P"})
	project := decode[models.Project](t, rec)

	for _, title := range []string{"a", "b"} {
		rec = doJSON(t, mux, http.MethodPost, "/project/"+project.ID.String()+"/tasks", authz, map[string]string{
			"title": title, "deadline": "2026-10-01",
		})
		task := decode[models.Task](t, rec)
		doJSON(t, mux, http.MethodPut, "/bounty/"+task.ID.String()+"/claim", authz, nil)
		if title == "b" {
			doJSON(t, mux, http.MethodPut, "/project/tasks/"+task.ID.String(), authz, map[string]string{"status": "Done"})
		}
	}

	rec = doJSON(t, mux, http.MethodGet, "/dashboard/"+owner.ID.String(), authz, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /dashboard status=%d body=%s", rec.Code, rec.Body.String())
	}
	dash := decode[dashboardResponse](t, rec)
	if dash.Counts[models.TaskStatusToDo] != 1 || dash.Counts[models.TaskStatusDone] != 1 {
		t.Errorf("counts = %+v, want 1 ToDo and 1 Done", dash.Counts)
	}

	names := make(map[string]bool)
	for _, a := range dash.Achievements {
		names[a.Name] = true
	}
	if !names["Getting Started"] || !names["Finisher"] {
		t.Errorf("achievements = %+v, want Getting Started and Finisher", dash.Achievements)
	}
}

func TestDashboard_UnknownUser(t *testing.T) {
	h, mux, dbx, secret := setupHTTP(t)
	defer dbx.Close()

	caller := seedUser(t, h, "caller@example.com")
	rec := doJSON(t, mux, http.MethodGet, "/dashboard/"+uuid.NewString(),
		bearerForUser(t, secret, caller.ID.String()), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", rec.Code)
	}
}
