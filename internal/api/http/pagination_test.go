package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(t *testing.T, query string) (int, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/x"+query, nil)
	return PageParams(c)
}

func TestPageParams(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		page, size := paramsFor(t, "")
		assert.Equal(t, 1, page)
		assert.Equal(t, defaultPageSize, size)
	})

	t.Run("explicit values", func(t *testing.T) {
		page, size := paramsFor(t, "?page=3&page_size=50")
		assert.Equal(t, 3, page)
		assert.Equal(t, 50, size)
	})

	t.Run("size is capped", func(t *testing.T) {
		_, size := paramsFor(t, "?page_size=9999")
		assert.Equal(t, maxPageSize, size)
	})

	t.Run("garbage falls back to defaults", func(t *testing.T) {
		page, size := paramsFor(t, "?page=zero&page_size=-4")
		assert.Equal(t, 1, page)
		assert.Equal(t, defaultPageSize, size)
	})
}

func TestPaginated(t *testing.T) {
	body := Paginated([]string{"a", "b"}, 41, 2, 20)
	meta := body["meta"].(PageMeta)

	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.PageSize)
	assert.Equal(t, 41, meta.TotalItems)
	assert.Equal(t, 3, meta.TotalPages)

	t.Run("empty result still reports one page", func(t *testing.T) {
		meta := Paginated(nil, 0, 1, 20)["meta"].(PageMeta)
		assert.Equal(t, 1, meta.TotalPages)
	})
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 20))
	assert.Equal(t, 40, Offset(3, 20))
}
