package services

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ajaykarthicks/StudyAI/internal/core"
	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// DocumentService persists the original PDF and its upload record. Both
// backends are optional: with no database there is no upload history, with no
// object storage the original bytes are not retained. Neither gap affects
// extraction or chat.
type DocumentService struct {
	db      core.DbClient
	storage core.ObjectClient
	bucket  string
}

func NewDocumentService(db core.DbClient, storage core.ObjectClient, bucket string) *DocumentService {
	return &DocumentService{db: db, storage: storage, bucket: bucket}
}

// RecordUpload stores the PDF bytes and writes an upload row. Re-uploads of
// content already on record return the existing row untouched with the
// duplicate flag set.
func (s *DocumentService) RecordUpload(ctx context.Context, fileName string, data []byte, pageCount int) (upload *models.PdfUpload, duplicate bool, err error) {
	if s.db == nil {
		return nil, false, nil
	}

	sha := core.ContentID(data)
	existing, err := s.db.GetUploadBySHA256(ctx, sha)
	if err != nil {
		return nil, false, fmt.Errorf("lookup upload: %w", err)
	}
	if existing != nil {
		log.Printf("[Docs] %s already on record as %s", fileName, existing.ID)
		return existing, true, nil
	}

	upload = &models.PdfUpload{
		ID:         uuid.NewString(),
		FileName:   fileName,
		SHA256:     sha,
		FileSize:   int64(len(data)),
		PageCount:  pageCount,
		UploadedAt: time.Now().UTC(),
	}

	var key string
	if s.storage != nil {
		key = fmt.Sprintf("uploads/%s/%s", upload.ID, sanitizeFileName(fileName))
		url, err := s.storage.UploadFile(ctx, s.bucket, key, data, "application/pdf")
		if err != nil {
			// The extracted text is already cached; losing the original
			// bytes only disables re-download.
			log.Printf("[Docs] storing original failed for %s: %v", fileName, err)
		} else {
			upload.StorageURL = url
		}
	}

	if err := s.db.CreateUpload(ctx, upload); err != nil {
		// Without a row pointing at it the stored object is unreachable,
		// so take it back out.
		if upload.StorageURL != "" {
			if delErr := s.storage.DeleteFile(ctx, s.bucket, key); delErr != nil {
				log.Printf("[Docs] orphaned object cleanup failed for %s: %v", key, delErr)
			}
		}
		return nil, false, fmt.Errorf("create upload record: %w", err)
	}
	return upload, false, nil
}

// ListUploads returns the most recent upload records.
func (s *DocumentService) ListUploads(ctx context.Context, limit int) ([]models.PdfUpload, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.ListUploads(ctx, limit)
}

// sanitizeFileName keeps object keys predictable: base name only, spaces
// collapsed, anything outside a safe set replaced.
func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return "document.pdf"
	}
	var sb strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	if sb.Len() == 0 {
		return "document.pdf"
	}
	return sb.String()
}
