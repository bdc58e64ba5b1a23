package handlers

import (
	"net/http"

	"task_manager"
	"task_manager/internal/models"
	"task_manager/internal/policy"

	"github.com/gin-gonic/gin"
)

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  task_manager.StatusResponse
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, task_manager.StatusResponse{Status: "ok"})
}

// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   models.User
// @Failure      401  {object}  task_manager.ErrorResponse
// @Failure      403  {object}  task_manager.ErrorResponse
// @Router       /api/users [get]
// @Security     BearerAuth
func (h *Handler) listUsers(c *gin.Context) {
	if err := h.policy.Authorize(principalFrom(c), policy.ListUsers, nil).Err(); err != nil {
		h.writeError(c, "user_list_denied", err)
		return
	}

	users, err := h.services.Users.List(c.Request.Context())
	if err != nil {
		h.writeError(c, "user_list_failed", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}
