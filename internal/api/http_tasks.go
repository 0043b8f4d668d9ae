package api

import (
	"errors"
	"net/http"
	"strings"

	"sunotrack/internal/service"
	"sunotrack/internal/suno"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ListTasks returns the task queue in canonical order, newest first.
func (h *HTTPHandler) ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.presentTasks(h.store.Tasks())})
}

// SubmitTask validates a generation request, forwards it to the provider and
// registers the resulting task.
func (h *HTTPHandler) SubmitTask(c *gin.Context) {
	var input service.SubmitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		InvalidPayload(c)
		return
	}

	task, err := h.submissionService.Submit(c.Request.Context(), input)
	if err != nil {
		var validation *service.ValidationError
		var provider *suno.APIError
		switch {
		case errors.As(err, &validation):
			MissingField(c, validation.Field, validation.Message)
		case errors.Is(err, service.ErrNotConfigured):
			BadRequest(c, ErrCodeNotConfigured, err.Error())
		case errors.As(err, &provider):
			message := provider.Message
			if message == "" {
				message = "provider rejected the submission"
			}
			BadGateway(c, message)
		default:
			logrus.WithError(err).Error("submission failed")
			BadGateway(c, "failed to submit task: "+err.Error())
		}
		return
	}

	c.JSON(http.StatusCreated, h.presentTask(*task))
}

// DeleteTask removes a task. Deleting an unknown id is a no-op and still
// answers 204, mirroring the store semantics.
func (h *HTTPHandler) DeleteTask(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		BadRequest(c, ErrCodeInvalidRequest, "task id is required")
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), id); err != nil {
		logrus.WithError(err).WithField("task_id", id).Error("failed to delete task")
		InternalError(c, "failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

// RenameTask sets a task title.
func (h *HTTPHandler) RenameTask(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var body struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		InvalidPayload(c)
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		MissingField(c, "title", "a non-empty title is required")
		return
	}
	if _, ok := h.store.Task(id); !ok {
		NotFound(c, "task not found")
		return
	}
	if err := h.store.RenameTask(c.Request.Context(), id, body.Title); err != nil {
		logrus.WithError(err).WithField("task_id", id).Error("failed to rename task")
		InternalError(c, "failed to rename task")
		return
	}
	task, _ := h.store.Task(id)
	c.JSON(http.StatusOK, h.presentTask(task))
}

// ToggleTask flips the task's expansion flag.
func (h *HTTPHandler) ToggleTask(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if _, ok := h.store.Task(id); !ok {
		NotFound(c, "task not found")
		return
	}
	if err := h.store.ToggleTaskExpansion(c.Request.Context(), id); err != nil {
		logrus.WithError(err).WithField("task_id", id).Error("failed to toggle task")
		InternalError(c, "failed to toggle task")
		return
	}
	task, _ := h.store.Task(id)
	c.JSON(http.StatusOK, h.presentTask(task))
}

// RefreshTasks triggers one poll cycle outside the regular schedule.
func (h *HTTPHandler) RefreshTasks(c *gin.Context) {
	if !h.store.Settings().Configured() {
		BadRequest(c, ErrCodeNotConfigured, "set the provider base URL and API key before refreshing")
		return
	}
	if h.poller != nil {
		h.poller.RefreshNow()
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh scheduled"})
}
