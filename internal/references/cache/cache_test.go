package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Nom  string `json:"nom"`
	Code string `json:"code"`
}

func testCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb), mr
}

func TestGetSetJSON(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	var got []payload
	assert.False(t, c.GetJSON(ctx, KeyDomaines, &got))

	want := []payload{{Nom: "Génie Informatique", Code: "GI"}}
	c.SetJSON(ctx, KeyDomaines, want)

	require.True(t, c.GetJSON(ctx, KeyDomaines, &got))
	assert.Equal(t, want, got)

	ttl := mr.TTL(KeyDomaines)
	assert.Equal(t, TTL, ttl)
}

func TestGetJSONBadPayload(t *testing.T) {
	c, mr := testCache(t)
	require.NoError(t, mr.Set(KeyPostes, "{not json"))

	var got []payload
	assert.False(t, c.GetJSON(context.Background(), KeyPostes, &got))
}

func TestDelete(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, KeySecteurs, []payload{{Code: "TEL"}})
	c.SetJSON(ctx, KeySecteursParents, []payload{{Code: "TEL"}})
	c.Delete(ctx, KeySecteurs, KeySecteursParents)

	assert.False(t, mr.Exists(KeySecteurs))
	assert.False(t, mr.Exists(KeySecteursParents))
}

func TestClear(t *testing.T) {
	c, mr := testCache(t)
	ctx := context.Background()

	for _, key := range AllKeys {
		c.SetJSON(ctx, key, []payload{})
	}
	c.Clear(ctx)

	for _, key := range AllKeys {
		assert.False(t, mr.Exists(key), key)
	}
}
