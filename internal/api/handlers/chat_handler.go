package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ajaykarthicks/StudyAI/internal/services"
)

type ChatHandler struct {
	chat *services.ChatService
}

func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// ChatRequest addresses a document either by id (the content hash returned
// implicitly by a prior upload) or by inlining its text directly.
type ChatRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text,omitempty"`
	Query      string `json:"query"`
}

func (h *ChatHandler) QueryDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	req.DocumentID = strings.TrimSpace(req.DocumentID)
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" || (req.DocumentID == "" && req.Text == "") {
		http.Error(w, "query and one of document_id or text are required", http.StatusBadRequest)
		return
	}

	var answer string
	var err error
	if req.DocumentID != "" {
		answer, err = h.chat.Answer(ctx, req.DocumentID, req.Query)
	} else {
		answer, err = h.chat.AnswerText(ctx, req.Text, req.Query)
	}
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("chat failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}
