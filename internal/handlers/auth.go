package handlers

import (
	"net/http"

	"task_manager"
	"task_manager/internal/policy"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

const msgLoggedOut = "Successfully logged out"

// RegisterRequest documents the register payload.
type RegisterRequest struct {
	FullName string `json:"fullName" example:"Ada Lovelace"`
	Username string `json:"username" example:"ada"`
	Password string `json:"password" example:"secret1"`
	// admin | user
	Role string `json:"role" example:"user"`
}

// LoginRequest documents the login payload.
type LoginRequest struct {
	Username string `json:"username" example:"ada"`
	Password string `json:"password" example:"secret1"`
}

// @Summary      Register a user
// @Description  Public unless public registration is disabled, then admin only.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      RegisterRequest  true  "New user"
// @Success      201   {object}  task_manager.AuthResponse
// @Failure      403   {object}  task_manager.ErrorResponse
// @Failure      409   {object}  task_manager.ErrorResponse
// @Failure      422   {object}  task_manager.ErrorResponse
// @Router       /api/register [post]
func (h *Handler) register(c *gin.Context) {
	if err := h.policy.Authorize(principalFrom(c), policy.RegisterUser, nil).Err(); err != nil {
		h.writeError(c, "auth_register_denied", err)
		return
	}

	var input service.RegisterInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}

	u, token, err := h.services.Auth.Register(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, "auth_register_failed", err, "username", input.Username)
		return
	}

	h.log.Infow("auth_registered", "user_id", u.ID, "role", u.Role)
	c.JSON(http.StatusCreated, task_manager.AuthResponse{User: *u, Token: token})
}

// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      LoginRequest  true  "Credentials"
// @Success      200   {object}  task_manager.AuthResponse
// @Failure      401   {object}  task_manager.ErrorResponse
// @Failure      422   {object}  task_manager.ErrorResponse
// @Router       /api/login [post]
func (h *Handler) login(c *gin.Context) {
	var input service.LoginInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}

	u, token, err := h.services.Auth.Login(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, "auth_login_failed", err, "username", input.Username)
		return
	}

	c.JSON(http.StatusOK, task_manager.AuthResponse{User: *u, Token: token})
}

// @Summary      Log out
// @Description  Revokes the presented token only.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  task_manager.MessageResponse
// @Failure      401  {object}  task_manager.ErrorResponse
// @Router       /api/logout [post]
// @Security     BearerAuth
func (h *Handler) logout(c *gin.Context) {
	sess := sessionFrom(c)
	if sess == nil {
		c.JSON(http.StatusUnauthorized, task_manager.ErrorResponse{Message: msgUnauthenticated})
		return
	}

	if err := h.services.Auth.Logout(c.Request.Context(), sess.TokenID); err != nil {
		h.writeError(c, "auth_logout_failed", err, "user_id", sess.User.ID)
		return
	}

	c.JSON(http.StatusOK, task_manager.MessageResponse{Message: msgLoggedOut})
}
