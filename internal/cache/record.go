// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// record.go provides the Valkey-backed rendered-record cache and the
// explicit invalidation port the lifecycle engine calls on transitions.
// All operations are fire-and-forget from the engine's perspective: a
// failed invalidation is logged here and never blocks or fails the state
// transition that triggered it.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Kind names an invalidation scope. record targets one rendered record;
// the other kinds clear aggregate caches keyed by published content.
type Kind string

const (
	KindRecord        Kind = "record"
	KindPublishedList Kind = "published_list"
	KindSearchIndex   Kind = "search_index"
	KindSitemap       Kind = "sitemap"
)

// PublishKinds is the full invalidation set emitted by publish-scope
// transitions (publish, direct publish, delete, unpublish, edit of a
// published record).
var PublishKinds = []Kind{KindRecord, KindPublishedList, KindSearchIndex, KindSitemap}

const (
	recordKeyPrefix     = "content:"
	publishedListPrefix = "published:"
	searchIndexPrefix   = "search:"
	sitemapPrefix       = "sitemap:"

	// DefaultRecordTTL is how long a rendered record stays cached.
	DefaultRecordTTL = 10 * time.Minute
)

// RecordCache caches rendered record HTML in Valkey and deletes entries
// when the engine emits invalidations.
type RecordCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecordCache creates a record cache backed by the given Valkey client.
func NewRecordCache(client *redis.Client, ttl time.Duration) *RecordCache {
	if ttl == 0 {
		ttl = DefaultRecordTTL
	}
	return &RecordCache{client: client, ttl: ttl}
}

// RecordKey returns the cache key for one record's rendered HTML.
func RecordKey(recordID int64) string {
	return fmt.Sprintf("%s%d", recordKeyPrefix, recordID)
}

// Get retrieves the cached rendering for a record. Returns false on miss.
func (rc *RecordCache) Get(ctx context.Context, recordID int64) ([]byte, bool) {
	val, err := rc.client.Get(ctx, RecordKey(recordID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("record cache get error", "record_id", recordID, "error", err)
		return nil, false
	}
	slog.Debug("record cache hit", "record_id", recordID)
	return val, true
}

// Set stores a record's rendering with the configured TTL.
func (rc *RecordCache) Set(ctx context.Context, recordID int64, html []byte) {
	if err := rc.client.Set(ctx, RecordKey(recordID), html, rc.ttl).Err(); err != nil {
		slog.Warn("record cache set error", "record_id", recordID, "error", err)
	}
}

// Invalidate clears the cache scope named by kind for the given record.
// The record kind removes a single key; the aggregate kinds clear every
// key under their prefix.
func (rc *RecordCache) Invalidate(ctx context.Context, kind Kind, recordID int64) {
	switch kind {
	case KindRecord:
		rc.InvalidateByKey(ctx, RecordKey(recordID))
	case KindPublishedList:
		rc.InvalidateByPrefix(ctx, publishedListPrefix)
	case KindSearchIndex:
		rc.InvalidateByPrefix(ctx, searchIndexPrefix)
	case KindSitemap:
		rc.InvalidateByPrefix(ctx, sitemapPrefix)
	default:
		slog.Warn("unknown invalidation kind", "kind", kind, "record_id", recordID)
	}
}

// InvalidateByKey removes a single cache entry.
func (rc *RecordCache) InvalidateByKey(ctx context.Context, key string) {
	if err := rc.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("cache invalidate error", "key", key, "error", err)
		return
	}
	slog.Debug("cache invalidated", "key", key)
}

// InvalidateByPrefix removes every entry under a prefix by scanning.
func (rc *RecordCache) InvalidateByPrefix(ctx context.Context, prefix string) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("cache scan error", "prefix", prefix, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("cache bulk delete error", "prefix", prefix, "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("cache prefix cleared", "prefix", prefix, "deleted", deleted)
	}
}
