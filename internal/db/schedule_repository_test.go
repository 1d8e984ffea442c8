package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive/internal/models"
)

func insertEvent(t *testing.T, dbx *sql.DB, task *models.Task, user uuid.UUID, date time.Time) *models.ScheduleEvent {
	t.Helper()
	now := time.Now().UTC()
	event := &models.ScheduleEvent{
		ID:        uuid.New(),
		TaskID:    task.ID,
		UserID:    user,
		Title:     task.Title,
		Date:      date,
		Color:     "green",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := NewScheduleRepository(dbx).CreateForTask(context.Background(), event); err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return event
}

func TestScheduleRepository_OneEventPerTask(t *testing.T) {
	dbx := setupDB(t)
	defer dbx.Close()
	repo := NewScheduleRepository(dbx)

	owner := insertUser(t, dbx, "owner@example.com")
	project := insertProject(t, dbx, owner.ID)
	task := insertTask(t, dbx, project.ID, owner.ID, &owner.ID)

	first := insertEvent(t, dbx, task, owner.ID, time.Now().UTC())

	// a second event for the same task is silently dropped
	dup := &models.ScheduleEvent{
		ID:        uuid.New(),
		TaskID:    task.ID,
		UserID:    owner.ID,
		Title:     task.Title,
		Date:      time.Now().UTC().Add(24 * time.Hour),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.CreateForTask(context.Background(), dup); err != nil {
		t.Fatalf("duplicate CreateForTask: %v", err)
	}

	events, err := repo.ListForUser(context.Background(), owner.ID.String())
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(events) != 1 || events[0].ID != first.ID {
		t.Fatalf("expected only the first event, got %+v", events)
	}
}

func TestScheduleRepository_UpdateDate_PreservesTimeOfDay(t *testing.T) {
	dbx := setupDB(t)
	defer dbx.Close()
	repo := NewScheduleRepository(dbx)

	owner := insertUser(t, dbx, "owner@example.com")
	project := insertProject(t, dbx, owner.ID)
	task := insertTask(t, dbx, project.ID, owner.ID, &owner.ID)

	original := time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC)
	event := insertEvent(t, dbx, task, owner.ID, original)

	day := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	if err := repo.UpdateDate(context.Background(), event.ID.String(), event.WithDay(day), time.Now().UTC()); err != nil {
		t.Fatalf("UpdateDate: %v", err)
	}

	got, err := repo.GetByID(context.Background(), event.ID.String())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	want := time.Date(2025, 8, 10, 14, 30, 0, 0, time.UTC)
	if !got.Date.Equal(want) {
		t.Errorf("date = %v, want %v", got.Date, want)
	}
}

func TestScheduleRepository_UpdateDate_NotFound(t *testing.T) {
	dbx := setupDB(t)
	defer dbx.Close()
	repo := NewScheduleRepository(dbx)

	err := repo.UpdateDate(context.Background(), "0e4ac1ae-6218-4b74-a704-19eb02a3bc93", time.Now().UTC(), time.Now().UTC())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// reads report the task's live title, not the snapshot stored at creation
func TestScheduleRepository_ListForUser_LiveTaskTitle(t *testing.T) {
	dbx := setupDB(t)
	defer dbx.Close()
	repo := NewScheduleRepository(dbx)

	owner := insertUser(t, dbx, "owner@example.com")
	project := insertProject(t, dbx, owner.ID)
	task := insertTask(t, dbx, project.ID, owner.ID, &owner.ID)
	insertEvent(t, dbx, task, owner.ID, time.Now().UTC())

	if _, err := dbx.Exec(`UPDATE tasks SET title = $1 WHERE id = $2`, "Renamed task", task.ID); err != nil {
		t.Fatalf("rename task: %v", err)
	}

	events, err := repo.ListForUser(context.Background(), owner.ID.String())
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Title != "Renamed task" {
		t.Errorf("event title = %q, want the live task title", events[0].Title)
	}
	if events[0].Task == nil || events[0].Task.ProjectID != project.ID {
		t.Errorf("event task not populated: %+v", events[0].Task)
	}
}
