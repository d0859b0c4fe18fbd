package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithClientMeta(t *testing.T) {
	t.Run("remote addr by default", func(t *testing.T) {
		ctx := WithClientMeta(context.Background(), "", "203.0.113.9", "curl/8.5")
		m := MetaFromContext(ctx)
		assert.Equal(t, "203.0.113.9", m.IPAddress)
		assert.Equal(t, "curl/8.5", m.UserAgent)
	})

	t.Run("forwarded-for wins", func(t *testing.T) {
		ctx := WithClientMeta(context.Background(), "198.51.100.4", "203.0.113.9", "")
		assert.Equal(t, "198.51.100.4", MetaFromContext(ctx).IPAddress)
	})

	t.Run("first forwarded entry is the client", func(t *testing.T) {
		ctx := WithClientMeta(context.Background(), " 198.51.100.4 , 10.0.0.1, 10.0.0.2", "203.0.113.9", "")
		assert.Equal(t, "198.51.100.4", MetaFromContext(ctx).IPAddress)
	})

	t.Run("empty everything falls back to sentinel", func(t *testing.T) {
		ctx := WithClientMeta(context.Background(), "", "", "")
		assert.Equal(t, "0.0.0.0", MetaFromContext(ctx).IPAddress)
	})
}

func TestMetaFromContextWithoutMeta(t *testing.T) {
	m := MetaFromContext(context.Background())
	assert.Equal(t, "0.0.0.0", m.IPAddress)
	assert.Empty(t, m.UserAgent)
}
