// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/usecase"
)

// CachingPostRepository decorates a PostRepository with Redis caching of
// the listing queries. It implements the decorator pattern, transparently
// adding caching without modifying the underlying repository.
type CachingPostRepository struct {
	inner     usecase.PostRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingPostRepository decorates a PostRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "posts".
func NewCachingPostRepository(rdb *redis.Client, ttl time.Duration, inner usecase.PostRepository, namespace string) *CachingPostRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "posts"
	}
	return &CachingPostRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListAll retrieves all posts, checking cache first then falling back to
// the store.
func (c *CachingPostRepository) ListAll(ctx context.Context) ([]*entity.Post, error) {
	return c.cachedList(ctx, c.allKey(), func() ([]*entity.Post, error) {
		return c.inner.ListAll(ctx)
	})
}

// ListByAuthor retrieves one author's posts through the cache.
func (c *CachingPostRepository) ListByAuthor(ctx context.Context, authorID string) ([]*entity.Post, error) {
	return c.cachedList(ctx, c.authorKey(authorID), func() ([]*entity.Post, error) {
		return c.inner.ListByAuthor(ctx, authorID)
	})
}

// Create inserts a post and invalidates affected listings.
func (c *CachingPostRepository) Create(ctx context.Context, p *entity.Post) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.AuthorID)
	return nil
}

// Save updates a post and invalidates affected listings.
func (c *CachingPostRepository) Save(ctx context.Context, p *entity.Post) error {
	if err := c.inner.Save(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.AuthorID)
	return nil
}

// Delete removes a post and invalidates affected listings. The author is
// looked up first so the per-author key can be dropped too.
func (c *CachingPostRepository) Delete(ctx context.Context, id string) error {
	authorID := ""
	if p, err := c.inner.FindByID(ctx, id); err == nil {
		authorID = p.AuthorID
	}
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, authorID)
	return nil
}

// FindByID bypasses the cache: single-document reads hit the store.
func (c *CachingPostRepository) FindByID(ctx context.Context, id string) (*entity.Post, error) {
	return c.inner.FindByID(ctx, id)
}

// cachedList serves a listing from cache, falling back to the store and
// filling the cache best effort.
func (c *CachingPostRepository) cachedList(ctx context.Context, key string, load func() ([]*entity.Post, error)) ([]*entity.Post, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []*entity.Post
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to the store
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// invalidate drops the listings a write may have changed. Best effort:
// a failed invalidation only shortens cache freshness, never correctness
// of the store.
func (c *CachingPostRepository) invalidate(ctx context.Context, authorID string) {
	if c.rdb == nil {
		return
	}
	keys := []string{c.allKey()}
	if authorID != "" {
		keys = append(keys, c.authorKey(authorID))
	}
	_ = c.rdb.Del(ctx, keys...).Err()
}

func (c *CachingPostRepository) allKey() string {
	return fmt.Sprintf("%s:all", c.namespace)
}

func (c *CachingPostRepository) authorKey(authorID string) string {
	return fmt.Sprintf("%s:author:%s", c.namespace, authorID)
}
