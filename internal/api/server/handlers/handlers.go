package handlers

import (
	"encoding/json"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bz888/accbuddy/internal/api"
	"github.com/bz888/accbuddy/internal/api/server/client"
	"github.com/bz888/accbuddy/internal/conversation"
	"github.com/bz888/accbuddy/internal/logger"
)

type Handler struct {
	responder client.Responder
	log       *logger.Logger
}

func NewHandler(responder client.Responder) *Handler {
	return &Handler{
		responder: responder,
		log:       logger.NewLogger("handlers"),
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.MessageResponse{Status: "healthy", Message: "Backend is running"})
}

func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	log := h.log.With("request_id", chimiddleware.GetReqID(r.Context()))
	defer r.Body.Close()

	var chatReq struct {
		Message *string              `json:"message"`
		History conversation.History `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil || chatReq.Message == nil {
		writeJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "Message is required"})
		return
	}

	history := chatReq.History
	log.Info("chat request with ", len(history), " earlier turns via ", h.responder.Name())

	reply, err := h.responder.Respond(r.Context(), *chatReq.Message, history)
	if err != nil {
		log.Error("Chat endpoint error: ", err)
		writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{
			Error:   "An error occurred while processing your request",
			Details: err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, api.ChatResponse{Response: reply, Status: "success"})
}

func (h *Handler) RefreshCredentialsHandler(w http.ResponseWriter, r *http.Request) {
	if refresher, ok := h.responder.(client.Refresher); ok {
		if err := refresher.Refresh(r.Context()); err != nil {
			h.log.Error("credential refresh failed: ", err)
			writeJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to refresh credentials: " + err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Credentials refreshed successfully"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
