package cache

import (
	"context"
	"fmt"
	"log"

	"github.com/ajaykarthicks/StudyAI/internal/core"
)

const cachePrefix = "text-cache/"

var _ core.CacheStore = (*ObjectTextCache)(nil)

// ObjectTextCache persists extracted text in object storage keyed by content
// id, so re-uploads of the same document skip extraction entirely. Entries
// are written wholesale and never partially updated; concurrent identical
// uploads race harmlessly to the same key.
type ObjectTextCache struct {
	obj    core.ObjectClient
	bucket string
}

func NewObjectTextCache(obj core.ObjectClient, bucket string) *ObjectTextCache {
	return &ObjectTextCache{obj: obj, bucket: bucket}
}

func (c *ObjectTextCache) Get(ctx context.Context, id string) (string, bool) {
	data, err := c.obj.GetFile(ctx, c.bucket, c.key(id))
	if err != nil {
		// Misses and backend errors look the same to callers: extract again.
		return "", false
	}
	return string(data), true
}

func (c *ObjectTextCache) Put(ctx context.Context, id string, text string) error {
	_, err := c.obj.UploadFile(ctx, c.bucket, c.key(id), []byte(text), "text/plain; charset=utf-8")
	if err != nil {
		return fmt.Errorf("cache write %s: %w", id, err)
	}
	log.Printf("[Cache] stored text for %s (%d bytes)", shortID(id), len(text))
	return nil
}

func (c *ObjectTextCache) key(id string) string {
	return cachePrefix + id + ".txt"
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
