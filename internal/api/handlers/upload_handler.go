package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ajaykarthicks/StudyAI/internal/models"
	"github.com/ajaykarthicks/StudyAI/internal/services"
)

const maxUploadBytes = 50 << 20 // 50 MiB

type UploadHandler struct {
	ingest *services.IngestService
	docs   *services.DocumentService
}

func NewUploadHandler(ingest *services.IngestService, docs *services.DocumentService) *UploadHandler {
	return &UploadHandler{ingest: ingest, docs: docs}
}

// Upload accepts a multipart PDF and streams extraction progress back as
// newline-delimited JSON. The connection stays open for the whole run; each
// event is flushed as soon as it is produced.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty file", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	enc := json.NewEncoder(w)

	var finalText string
	completed := false
	for ev := range h.ingest.Ingest(r.Context(), data) {
		if err := enc.Encode(ev); err != nil {
			// Client went away; the stream's context cancellation stops
			// the producer.
			log.Printf("[Upload] stream write failed: %v", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if ev.Kind == models.EventComplete {
			finalText = ev.Text
			completed = true
		}
	}

	if completed {
		h.recordUpload(header.Filename, data, finalText)
	}
}

// recordUpload persists the original bytes and an upload row after a
// successful run. Failures are logged, never surfaced: the client already has
// its text.
func (h *UploadHandler) recordUpload(fileName string, data []byte, text string) {
	if h.docs == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pageCount := strings.Count(text, "\n") + 1
	upload, duplicate, err := h.docs.RecordUpload(ctx, fileName, data, pageCount)
	if err != nil {
		log.Printf("[Upload] recording upload failed for %s: %v", fileName, err)
		return
	}
	if duplicate {
		log.Printf("[Upload] %s is a duplicate of existing record %s", fileName, upload.ID)
	}
}
