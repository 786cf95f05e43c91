package http

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/kotoba/internal/tasks"
)

// TaskQueue enqueues background work and reports on it.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles background deck import endpoints.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController. A nil queue means the
// task system is disabled and every endpoint answers 503.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// ImportDirRequest is the body of POST /api/decks/import-dir.
type ImportDirRequest struct {
	Path string `json:"path" binding:"required"`
}

// ImportDir handles POST /api/decks/import-dir
func (tc *TasksController) ImportDir(c *gin.Context) {
	if tc.queue == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	var req ImportDirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	info, err := os.Stat(req.Path)
	if err != nil || !info.IsDir() {
		respondBadRequest(c, "path must be an existing directory")
		return
	}

	taskID, err := tc.queue.Enqueue(c.Request.Context(), tasks.ImportDeckDirTask{Path: req.Path})
	if err != nil {
		respondInternalError(c, err, "enqueue directory import")
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": taskID,
		"type":    tasks.ImportDeckDirQueue,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.queue == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue is disabled")
		return
	}

	taskID := c.Param("id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": tasks.StatusString(status),
	})
}
