package handlers

import (
	"task_manager/internal/service"
)

type Handler struct {
	Auth  *service.AuthService
	Tasks *service.TaskService
	Audit *service.AuditService
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, audit *service.AuditService) *Handler {
	return &Handler{
		Auth:  auth,
		Tasks: tasks,
		Audit: audit,
	}
}
