package api

import "github.com/bz888/accbuddy/internal/conversation"

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message string               `json:"message"`
	History conversation.History `json:"history"`
}

// ChatResponse is the success body of POST /chat.
type ChatResponse struct {
	Response string `json:"response"`
	Status   string `json:"status,omitempty"`
}

// ErrorResponse is the body returned with a non-2xx status.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is returned by /health and /refresh-credentials.
type MessageResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}
