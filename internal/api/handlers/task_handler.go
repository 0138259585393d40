package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter0900/TaskEngineX/internal/api/middleware"
	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/service"
)

type TaskHandler struct {
	tasks *service.TaskService
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req models.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.tasks.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) List(c *gin.Context) {
	var query models.TaskListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	tasks, err := h.tasks.List(c.Request.Context(), middleware.GetUserID(c), &query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.tasks.GetByID(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.tasks.Update(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Toggle(c *gin.Context) {
	task, err := h.tasks.Toggle(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	if err := h.tasks.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (h *TaskHandler) Stats(c *gin.Context) {
	stats, err := h.tasks.PersonalStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *TaskHandler) MarkComplete(c *gin.Context) {
	task, err := h.tasks.MarkComplete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Approval(c *gin.Context) {
	var req models.ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	task, err := h.tasks.ResolveApproval(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateInWorkspace handles task creation behind the workspace assigner
// guard. When a project is targeted, by route param or body, the service
// verifies the caller's project membership.
func (h *TaskHandler) CreateInWorkspace(c *gin.Context) {
	var req models.CreateWorkspaceTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if projectID := c.Param("projectId"); projectID != "" {
		req.ProjectID = &projectID
	}
	task, err := h.tasks.CreateWorkspaceTask(c.Request.Context(), middleware.GetWorkspaceID(c), middleware.GetUserID(c), middleware.GetWorkspaceRole(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) ListInWorkspace(c *gin.Context) {
	var query models.TaskListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badRequest(c, err)
		return
	}
	tasks, err := h.tasks.ListForWorkspace(
		c.Request.Context(), middleware.GetWorkspaceID(c), middleware.GetUserID(c), middleware.GetWorkspaceRole(c), &query,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) WorkspaceStats(c *gin.Context) {
	stats, err := h.tasks.WorkspaceStats(
		c.Request.Context(), middleware.GetWorkspaceID(c), middleware.GetUserID(c), middleware.GetWorkspaceRole(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
