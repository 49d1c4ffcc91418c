package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ajaykarthicks/StudyAI/internal/config"
	"github.com/ajaykarthicks/StudyAI/internal/core"
	"github.com/ajaykarthicks/StudyAI/internal/models"
)

var _ core.DbClient = (*DatabaseClient)(nil)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	dsn := cfg.DatabaseURL
	if cfg.SslCertPath != "" {
		if _, err := os.Stat(cfg.SslCertPath); err != nil {
			return nil, fmt.Errorf("ssl cert not accessible at %q: %w", cfg.SslCertPath, err)
		}
		u, err := url.Parse(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
		q := u.Query()
		q.Set("sslmode", "verify-ca")
		q.Set("sslrootcert", cfg.SslCertPath)
		u.RawQuery = q.Encode()
		dsn = u.String()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) CreateUpload(ctx context.Context, upload *models.PdfUpload) error {
	if upload == nil {
		return errors.New("nil upload")
	}
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO pdf_uploads (id, file_name, sha256_hash, file_size, page_count, storage_url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := c.db.ExecContext(ctx, q,
		upload.ID, upload.FileName, upload.SHA256, upload.FileSize, upload.PageCount, upload.StorageURL, upload.UploadedAt)
	return err
}

func (c *DatabaseClient) GetUploadBySHA256(ctx context.Context, sha256 string) (*models.PdfUpload, error) {
	const q = `
		SELECT id, file_name, sha256_hash, file_size, page_count, storage_url, uploaded_at
		FROM pdf_uploads
		WHERE sha256_hash = $1
		ORDER BY uploaded_at DESC
		LIMIT 1
	`
	var u models.PdfUpload
	err := c.db.QueryRowContext(ctx, q, sha256).Scan(
		&u.ID, &u.FileName, &u.SHA256, &u.FileSize, &u.PageCount, &u.StorageURL, &u.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) ListUploads(ctx context.Context, limit int) ([]models.PdfUpload, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
		SELECT id, file_name, sha256_hash, file_size, page_count, storage_url, uploaded_at
		FROM pdf_uploads
		ORDER BY uploaded_at DESC
		LIMIT $1
	`
	rows, err := c.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PdfUpload
	for rows.Next() {
		var u models.PdfUpload
		if err := rows.Scan(
			&u.ID, &u.FileName, &u.SHA256, &u.FileSize, &u.PageCount, &u.StorageURL, &u.UploadedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
