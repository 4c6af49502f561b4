package handlers

import (
	"net/http"

	"task_manager/internal/domain"
	"task_manager/internal/http/middleware"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

type createTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

type updateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"required"`
	Status      string `json:"status" binding:"required"`
}

type deleteTaskRequest struct {
	Title string `json:"title" binding:"required"`
}

type taskResponse struct {
	Message string       `json:"message"`
	Task    *domain.Task `json:"task"`
}

type deleteTaskResponse struct {
	Message        string         `json:"message"`
	RemainingTasks []*domain.Task `json:"remainingTasks"`
}

func identity(c *gin.Context) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		writeError(c, domain.ErrMissingToken)
	}
	return id, ok
}

func (h *Handler) CreateTask(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.Tasks.Create(c.Request.Context(), owner, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskResponse{Message: "Task created successfully", Task: task})
}

func (h *Handler) ListTasks(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}

	tasks, err := h.Tasks.List(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	task, err := h.Tasks.Update(c.Request.Context(), owner, c.Param("title"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskResponse{Message: "Task updated successfully", Task: task})
}

func (h *Handler) DeleteTask(c *gin.Context) {
	owner, ok := identity(c)
	if !ok {
		return
	}

	var req deleteTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	remaining, err := h.Tasks.Delete(c.Request.Context(), owner, req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	if remaining == nil {
		remaining = []*domain.Task{}
	}

	c.JSON(http.StatusOK, deleteTaskResponse{Message: "Task deleted successfully", RemainingTasks: remaining})
}
