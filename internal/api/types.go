package api

import "github.com/satriahrh/juru/usecase"

// StatusResponse is returned by the status endpoint
type StatusResponse struct {
	usecase.Status
	Viewers       int `json:"viewers"`
	PendingWrites int `json:"pending_writes"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
