// Package handler contains the JSON HTTP handlers of the chatquota API.
//
// This file implements the chat endpoints.
//
// Routes handled:
//   - POST /chat/users/{userId}/messages -> Send
//   - GET  /chat/users/{userId}/messages -> History
//   - GET  /chat/messages/{messageId}    -> Get
package handler

import (
	"log/slog"
	"net/http"

	"github.com/DukeRupert/chatquota/internal/service"
)

// ChatHandler handles chat HTTP requests.
type ChatHandler struct {
	chat   service.ChatService
	logger *slog.Logger
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat service.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chat:   chat,
		logger: logger,
	}
}

// RegisterRoutes registers chat routes on the provided mux. limit wraps the
// send route, which is the only one that reaches the AI provider; nil
// disables limiting.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	var send http.Handler = http.HandlerFunc(h.Send)
	if limit != nil {
		send = limit(send)
	}
	mux.Handle("POST /chat/users/{userId}/messages", send)
	mux.HandleFunc("GET /chat/users/{userId}/messages", h.History)
	mux.HandleFunc("GET /chat/messages/{messageId}", h.Get)
}

type sendMessageRequest struct {
	Question string `json:"question"`
}

// Send answers a question and debits one message from the user's quota.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	const op = "handler.chat.send"

	userID, err := pathUUID(r, op, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req sendMessageRequest
	if err := decodeJSON(w, r, op, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	msg, err := h.chat.Send(r.Context(), userID, req.Question)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, newMessageResponse(msg))
}

// History lists a user's messages, newest first.
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	const op = "handler.chat.history"

	userID, err := pathUUID(r, op, "userId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	limit, err := queryInt(r, op, "limit", 0)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	msgs, err := h.chat.History(r.Context(), userID, limit)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	out := make([]messageResponse, len(msgs))
	for i := range msgs {
		out[i] = newMessageResponse(&msgs[i])
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

// Get returns one message.
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handler.chat.get"

	id, err := pathUUID(r, op, "messageId")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	msg, err := h.chat.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newMessageResponse(msg))
}
