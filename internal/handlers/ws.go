package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/taskhive/taskhive/internal/models"
)

// WSHub fans task changes out to every open board view of a project.
type WSHub struct {
	connections map[uuid.UUID]map[*websocket.Conn]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[uuid.UUID]map[*websocket.Conn]bool)}
}

// BroadcastTaskUpdate sends a task change to all WebSocket connections
// watching the task's project.
func (h *WSHub) BroadcastTaskUpdate(projectID uuid.UUID, task *models.Task) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conns, exists := h.connections[projectID]
	if !exists {
		return
	}

	message, err := json.Marshal(map[string]interface{}{
		"event":   "task_updated",
		"task_id": task.ID,
		"title":   task.Title,
		"status":  task.Status,
		"version": task.Version,
	})
	if err != nil {
		log.Printf("Failed to marshal task update: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("Failed to send WebSocket message: %v", err)
			delete(conns, conn)
			conn.Close()
		}
	}
}

// GET /ws?project_id={projectId}
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !h.RateLimiter.Allow(clientIP(r)) {
		sendError(w, "Too many WebSocket connection attempts", http.StatusTooManyRequests)
		return
	}
	userID, _ := r.Context().Value("user_id").(string)
	if userID == "" {
		sendError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	projectIDStr := r.URL.Query().Get("project_id")
	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		sendError(w, "project_id is required (uuid)", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := h.ProjectRepo.GetByID(ctx, projectIDStr); err != nil {
		sendError(w, "Project not found", http.StatusNotFound)
		return
	}
	member, err := h.ProjectRepo.IsMember(ctx, projectIDStr, userID)
	if err != nil || !member {
		sendError(w, "Forbidden", http.StatusForbidden)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Adjust for production (e.g., check specific origins)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	h.WSHub.mutex.Lock()
	if h.WSHub.connections[projectID] == nil {
		h.WSHub.connections[projectID] = make(map[*websocket.Conn]bool)
	}
	h.WSHub.connections[projectID][conn] = true
	h.WSHub.mutex.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.mutex.Lock()
			delete(h.WSHub.connections[projectID], conn)
			h.WSHub.mutex.Unlock()
			conn.Close()
			return
		}
	}
}
