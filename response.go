package task_manager

import "task_manager/internal/models"

// ErrorResponse is the JSON body of every non-2xx answer.
type ErrorResponse struct {
	Message string              `json:"message" example:"Missing fields"`
	Errors  map[string][]string `json:"errors,omitempty"` // field -> messages
}

// MessageResponse is a bare acknowledgement, e.g. after logout.
type MessageResponse struct {
	Message string `json:"message" example:"Successfully logged out"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// StatusResponse is returned by the health probe.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
