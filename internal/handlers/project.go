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
	"github.com/taskhive/taskhive/internal/models"
)

/*
handles routes:
GET /project - list the caller's projects with members and tasks nested
POST /project - create project
*/
func (h *Handler) HandleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProjects(w, r)
	case http.MethodPost:
		h.createProject(w, r)
	default:
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

/*
handles routes under /project/:
PUT /project/tasks/{taskId} - move a task between board columns
POST /project/{projectId}/tasks - create a task in a project
PUT /project/{projectId}/members - add a member to a project
*/
func (h *Handler) HandleProjectPath(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/project/"), "/"), "/")
	if len(parts) != 2 {
		sendError(w, "Not found", http.StatusNotFound)
		return
	}

	if parts[0] == "tasks" {
		if r.Method != http.MethodPut {
			sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.moveTask(w, r, parts[1])
		return
	}

	projectID := parts[0]
	if _, err := uuid.Parse(projectID); err != nil {
		sendError(w, "project id must be a valid uuid", http.StatusBadRequest)
		return
	}
	switch {
	case parts[1] == "tasks" && r.Method == http.MethodPost:
		h.createTask(w, r, projectID)
	case parts[1] == "members" && r.Method == http.MethodPut:
		h.addMember(w, r, projectID)
	default:
		sendError(w, "Not found", http.StatusNotFound)
	}
}

func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	projects, err := h.ProjectRepo.ListForUser(ctx, userID)
	if err != nil {
		sendError(w, "Failed to fetch projects", http.StatusInternalServerError)
		return
	}
	for _, project := range projects {
		if project.Members, err = h.ProjectRepo.ListMembers(ctx, project.ID.String()); err != nil {
			sendError(w, "Failed to fetch projects", http.StatusInternalServerError)
			return
		}
		if project.Tasks, err = h.TaskRepo.ListByProject(ctx, project.ID.String()); err != nil {
			sendError(w, "Failed to fetch projects", http.StatusInternalServerError)
			return
		}
	}
	sendJSON(w, http.StatusOK, projects)
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
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
		Name        string `json:"name"`
		Description string `json:"description"`
		Status      string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" || len(input.Name) > 100 {
		sendError(w, "name is required and must be <= 100 characters", http.StatusBadRequest)
		return
	}
	if len(input.Description) > 500 {
		sendError(w, "description must be <= 500 characters", http.StatusBadRequest)
		return
	}
	status := models.ProjectStatusPlanning
	if input.Status != "" {
		var ok bool
		if status, ok = models.ParseProjectStatus(input.Status); !ok {
			sendError(w, "Invalid status value", http.StatusBadRequest)
			return
		}
	}

	now := time.Now().UTC()
	project := &models.Project{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Status:      status,
		OwnerID:     uuid.MustParse(userID),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.ProjectRepo.Create(ctx, project); err != nil {
		sendError(w, "Failed to create project", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Location", "/project/"+project.ID.String())
	sendJSON(w, http.StatusCreated, project)
}

func (h *Handler) addMember(w http.ResponseWriter, r *http.Request, projectID string) {
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
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(input.UserID); err != nil {
		sendError(w, "userId must be a valid uuid", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	project, err := h.ProjectRepo.GetByID(ctx, projectID)
	if err != nil {
		sendError(w, "Project not found", http.StatusNotFound)
		return
	}
	if project.OwnerID.String() != userID {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}
	if _, err := h.UserRepo.GetByID(ctx, input.UserID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			sendError(w, "User not found", http.StatusNotFound)
			return
		}
		sendError(w, "Failed to add member", http.StatusInternalServerError)
		return
	}

	if err := h.ProjectRepo.AddMember(ctx, projectID, input.UserID, time.Now().UTC()); err != nil {
		sendError(w, "Failed to add member", http.StatusInternalServerError)
		return
	}
	if project.Members, err = h.ProjectRepo.ListMembers(ctx, projectID); err != nil {
		sendError(w, "Failed to add member", http.StatusInternalServerError)
		return
	}
	sendJSON(w, http.StatusOK, project)
}
