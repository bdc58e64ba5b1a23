package handlers

import (
	"net/http"
	"strconv"

	"task_manager"
	"task_manager/internal/models"
	"task_manager/internal/policy"
	"task_manager/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateTaskRequest documents the create payload.
type CreateTaskRequest struct {
	Title       string `json:"title" example:"Write report"`
	Description string `json:"description" example:"Quarterly numbers"`
	// in_progress | done
	Status string `json:"status" example:"in_progress"`
	// username of the owner
	AssignedTo string `json:"assignedTo" example:"alice"`
}

// UpdateTaskRequest documents the update payload; every field is optional.
type UpdateTaskRequest struct {
	Title       string `json:"title,omitempty" example:"Write report"`
	Description string `json:"description,omitempty" example:"Quarterly numbers"`
	Status      string `json:"status,omitempty" example:"done"`
	AssignedTo  string `json:"assignedTo,omitempty" example:"bob"`
}

// taskID parses the :id path parameter. Non-numeric ids answer 404 like
// missing ones.
func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, task_manager.ErrorResponse{Message: msgTaskNotFound})
		return 0, false
	}
	return id, true
}

// loadTask fetches the task and writes 404 when it does not exist.
func (h *Handler) loadTask(c *gin.Context) (*models.Task, bool) {
	id, ok := taskID(c)
	if !ok {
		return nil, false
	}
	t, err := h.services.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, "task_load_failed", err, "task_id", id)
		return nil, false
	}
	return t, true
}

// @Summary      List tasks
// @Description  Admins see every task, users only their own.
// @Tags         tasks
// @Produce      json
// @Success      200  {array}   models.Task
// @Failure      401  {object}  task_manager.ErrorResponse
// @Router       /api/tasks [get]
// @Security     BearerAuth
func (h *Handler) listTasks(c *gin.Context) {
	p := principalFrom(c)
	if err := h.policy.Authorize(p, policy.ListTasks, nil).Err(); err != nil {
		h.writeError(c, "task_list_denied", err)
		return
	}

	tasks, err := h.services.Tasks.List(c.Request.Context(), policy.TaskScope(p))
	if err != nil {
		h.writeError(c, "task_list_failed", err, "user_id", p.UserID)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      int  true  "Task ID"
// @Success      200  {object}  models.Task
// @Failure      401  {object}  task_manager.ErrorResponse
// @Failure      403  {object}  task_manager.ErrorResponse
// @Failure      404  {object}  task_manager.ErrorResponse
// @Router       /api/tasks/{id} [get]
// @Security     BearerAuth
func (h *Handler) getTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}
	if err := h.policy.Authorize(principalFrom(c), policy.ViewTask, t).Err(); err != nil {
		h.writeError(c, "task_view_denied", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary      Create a task
// @Description  Admin only. The response carries user_id without the embedded owner.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      CreateTaskRequest  true  "Task payload"
// @Success      201   {object}  models.Task
// @Failure      401   {object}  task_manager.ErrorResponse
// @Failure      403   {object}  task_manager.ErrorResponse
// @Failure      422   {object}  task_manager.ErrorResponse
// @Router       /api/tasks [post]
// @Security     BearerAuth
func (h *Handler) createTask(c *gin.Context) {
	if err := h.policy.Authorize(principalFrom(c), policy.CreateTask, nil).Err(); err != nil {
		h.writeError(c, "task_create_denied", err)
		return
	}

	var input service.CreateTaskInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}

	t, err := h.services.Tasks.Create(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, "task_create_failed", err, "title", input.Title)
		return
	}
	c.JSON(http.StatusCreated, t)
}

// @Summary      Update a task
// @Description  Owner or admin. Only the fields present in the body change.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "Task ID"
// @Param        body  body      UpdateTaskRequest  true  "Fields to change"
// @Success      200   {object}  models.Task
// @Failure      401   {object}  task_manager.ErrorResponse
// @Failure      403   {object}  task_manager.ErrorResponse
// @Failure      404   {object}  task_manager.ErrorResponse
// @Failure      422   {object}  task_manager.ErrorResponse
// @Router       /api/tasks/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}
	if err := h.policy.Authorize(principalFrom(c), policy.UpdateTask, t).Err(); err != nil {
		h.writeError(c, "task_update_denied", err)
		return
	}

	var input service.UpdateTaskInput
	if ok := h.bindJSON(c, &input); !ok {
		return
	}

	updated, err := h.services.Tasks.Update(c.Request.Context(), t, input)
	if err != nil {
		h.writeError(c, "task_update_failed", err, "task_id", t.ID)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// @Summary      Delete a task
// @Tags         tasks
// @Param        id   path  int  true  "Task ID"
// @Success      204
// @Failure      401  {object}  task_manager.ErrorResponse
// @Failure      403  {object}  task_manager.ErrorResponse
// @Failure      404  {object}  task_manager.ErrorResponse
// @Router       /api/tasks/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteTask(c *gin.Context) {
	if err := h.policy.Authorize(principalFrom(c), policy.DeleteTask, nil).Err(); err != nil {
		h.writeError(c, "task_delete_denied", err)
		return
	}

	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := h.services.Tasks.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, "task_delete_failed", err, "task_id", id)
		return
	}
	c.Status(http.StatusNoContent)
}
