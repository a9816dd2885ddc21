package helpers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/yigit/achievement-portal/internal/app/models"
)

func TestCalculateOffsetLimit(t *testing.T) {
	tests := []struct {
		name   string
		page   models.PageRequest
		offset uint64
		limit  int
	}{
		{"first page", models.PageRequest{Page: 1, Size: 10}, 0, 10},
		{"third page", models.PageRequest{Page: 3, Size: 25}, 50, 25},
		{"zero values", models.PageRequest{}, 0, DefaultPageSize},
		{"oversized", models.PageRequest{Page: 2, Size: MaxPageSize + 1}, uint64(DefaultPageSize), DefaultPageSize},
		{"negative page", models.PageRequest{Page: -4, Size: 5}, 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := CalculateOffsetLimit(tt.page)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(41, models.PageRequest{Page: 2, Size: 20})
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 20, info.PageSize)
	assert.Equal(t, int64(41), info.TotalItems)

	empty := NewPaginationInfo(0, models.PageRequest{})
	assert.Equal(t, 1, empty.TotalPages)
	assert.Equal(t, 1, empty.CurrentPage)
	assert.Equal(t, DefaultPageSize, empty.PageSize)
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	parse := func(query string) models.PageRequest {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/admin/students"+query, nil)
		return ParsePaginationParams(c)
	}

	assert.Equal(t, models.PageRequest{Page: 1, Size: DefaultPageSize}, parse(""))
	assert.Equal(t, models.PageRequest{Page: 4, Size: 50}, parse("?page=4&size=50"))
	assert.Equal(t, models.PageRequest{Page: 1, Size: DefaultPageSize}, parse("?page=zero&size=1000"))
}
