// Package cache is the read-mostly Redis layer in front of the reference
// tables. Fixed keys, JSON payloads, delete-on-write invalidation. A miss
// or a Redis failure falls through to the database.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const TTL = 24 * time.Hour

// The fixed keys, one per cached public listing.
const (
	KeyAnnees          = "ref:annees:actives"
	KeyDomaines        = "ref:domaines:actifs"
	KeyFilieres        = "ref:filieres:actives"
	KeySecteurs        = "ref:secteurs:actifs"
	KeySecteursParents = "ref:secteurs:parents"
	KeyPostes          = "ref:postes:actifs"
	KeyDevises         = "ref:devises:actives"
	KeyTitres          = "ref:titres:actifs"
	KeyReseaux         = "ref:reseaux:actifs"
)

// AllKeys is used by the full invalidation path of the seed command.
var AllKeys = []string{
	KeyAnnees, KeyDomaines, KeyFilieres, KeySecteurs, KeySecteursParents,
	KeyPostes, KeyDevises, KeyTitres, KeyReseaux,
}

type Cache struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

// GetJSON loads key into dst. Returns false on a miss or any Redis error.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[cache] get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		log.Printf("[cache] decode %s: %v", key, err)
		return false
	}
	return true
}

// SetJSON stores v under key for the standard TTL. Best effort.
func (c *Cache) SetJSON(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[cache] encode %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, b, TTL).Err(); err != nil {
		log.Printf("[cache] set %s: %v", key, err)
	}
}

// Delete drops the given fixed keys. Best effort.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("[cache] del %v: %v", keys, err)
	}
}

// Clear drops every reference key.
func (c *Cache) Clear(ctx context.Context) {
	c.Delete(ctx, AllKeys...)
}
