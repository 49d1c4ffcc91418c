package core

import (
	"context"

	"github.com/ajaykarthicks/StudyAI/internal/models"
)

// DbClient defines the persistence operations the services need. It abstracts
// Postgres so higher layers never depend on a specific database.
type DbClient interface {
	CreateUpload(ctx context.Context, up *models.PdfUpload) error
	GetUploadBySHA256(ctx context.Context, sha string) (*models.PdfUpload, error)
	ListUploads(ctx context.Context, limit int) ([]models.PdfUpload, error)
	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}

// CacheStore maps a content identifier to previously extracted document text.
// Get treats backend errors as misses: the caller proceeds to full extraction
// either way. Put failures are reported but never fail an ingestion; caching
// is a performance optimization, not a correctness requirement.
type CacheStore interface {
	Get(ctx context.Context, id string) (text string, ok bool)
	Put(ctx context.Context, id string, text string) error
}
