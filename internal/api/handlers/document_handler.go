package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ajaykarthicks/StudyAI/internal/models"
	"github.com/ajaykarthicks/StudyAI/internal/services"
)

type DocumentHandler struct {
	docs *services.DocumentService
}

func NewDocumentHandler(docs *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	uploads, err := h.docs.ListUploads(r.Context(), limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("list documents: %v", err), http.StatusInternalServerError)
		return
	}
	if uploads == nil {
		uploads = []models.PdfUpload{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": uploads})
}
