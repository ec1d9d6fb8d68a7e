package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/pagekeeper/pagekeeper/internal/tasks"
)

// TasksController exposes manual triggers for background maintenance tasks.
type TasksController struct {
	client *tasks.Client
}

// NewTasksController creates a new TasksController.
func NewTasksController(client *tasks.Client) *TasksController {
	return &TasksController{client: client}
}

// EnqueueCoverSync queues a sweep that caches every missing cover image.
// POST /api/tasks/covers/sync
func (tc *TasksController) EnqueueCoverSync(c *gin.Context) {
	ids, err := tc.client.Add(tasks.FetchAllCoversTask{}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue cover sync")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": ids[0],
		"message": "cover sync enqueued",
	})
}

// EnqueueRecount queues a recount of all derived profile counters.
// POST /api/tasks/recount
func (tc *TasksController) EnqueueRecount(c *gin.Context) {
	ids, err := tc.client.Add(tasks.RecountProfilesTask{}).Save()
	if err != nil {
		respondInternalError(c, err, "enqueue recount")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": ids[0],
		"message": "profile recount enqueued",
	})
}

// GetStatus reports where a queued task is in its lifecycle.
// GET /api/tasks/:id
func (tc *TasksController) GetStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusString(status),
	})
}

func taskStatusString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
