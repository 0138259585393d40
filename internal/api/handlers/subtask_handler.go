package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dexter0900/TaskEngineX/internal/api/middleware"
	"github.com/Dexter0900/TaskEngineX/internal/models"
	"github.com/Dexter0900/TaskEngineX/internal/service"
)

type SubtaskHandler struct {
	subtasks *service.SubtaskService
}

func (h *SubtaskHandler) Create(c *gin.Context) {
	var req models.CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	subtask, err := h.subtasks.Create(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subtask)
}

func (h *SubtaskHandler) List(c *gin.Context) {
	subtasks, err := h.subtasks.ListForTask(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (h *SubtaskHandler) Update(c *gin.Context) {
	var req models.UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	subtask, err := h.subtasks.Update(c.Request.Context(), c.Param("subtaskId"), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) Toggle(c *gin.Context) {
	subtask, err := h.subtasks.Toggle(c.Request.Context(), c.Param("subtaskId"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) Delete(c *gin.Context) {
	if err := h.subtasks.Delete(c.Request.Context(), c.Param("subtaskId"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subtask deleted"})
}
