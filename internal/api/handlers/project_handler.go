package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter0900/TaskEngineX/internal/api/middleware"
	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/service"
	"github.com/Dexter0900/TaskEngineX/internal/types"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req models.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.projects.Create(c.Request.Context(), middleware.GetWorkspaceID(c), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.ListForWorkspace(
		c.Request.Context(), middleware.GetWorkspaceID(c), middleware.GetUserID(c), middleware.GetWorkspaceRole(c),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetByID(c.Request.Context(), c.Param("projectId"), middleware.GetProjectMembership(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	var req models.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	project, err := h.projects.Update(c.Request.Context(), c.Param("projectId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), middleware.GetWorkspaceID(c), c.Param("projectId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
}

func (h *ProjectHandler) AddAssigner(c *gin.Context) {
	var req models.AddProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := h.projects.AddAssigner(c.Request.Context(), middleware.GetWorkspaceID(c), c.Param("projectId"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *ProjectHandler) AddWorker(c *gin.Context) {
	var req models.AddProjectMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	member, err := h.projects.AddWorker(c.Request.Context(), middleware.GetWorkspaceID(c), c.Param("projectId"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	role := types.ProjectRole(c.Query("role"))
	if err := h.projects.RemoveMember(c.Request.Context(), middleware.GetWorkspaceID(c), c.Param("projectId"), c.Param("userId"), role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

func (h *ProjectHandler) ListMembers(c *gin.Context) {
	members, err := h.projects.ListMembers(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
