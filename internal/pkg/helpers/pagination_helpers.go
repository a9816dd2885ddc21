package helpers

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/achievement-portal/internal/app/models"
	"github.com/yigit/achievement-portal/internal/app/models/dto"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	DefaultPage     = 1 // pages are 1-based
)

// CalculateOffsetLimit converts a 1-based page into SQL offset and limit.
func CalculateOffsetLimit(page models.PageRequest) (offset uint64, limit int) {
	limit = page.Size
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	n := page.Page
	if n < 1 {
		n = DefaultPage
	}
	return uint64((n - 1) * limit), limit
}

// NewPaginationInfo describes page within totalItems results.
func NewPaginationInfo(totalItems int64, page models.PageRequest) dto.PaginationInfo {
	_, size := CalculateOffsetLimit(page)
	current := page.Page
	if current < 1 {
		current = DefaultPage
	}

	totalPages := int(math.Ceil(float64(totalItems) / float64(size)))
	if totalPages == 0 {
		totalPages = 1
	}

	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  totalPages,
		PageSize:    size,
		TotalItems:  totalItems,
	}
}

// ParsePaginationParams reads ?page= and ?size=, falling back to the defaults
// for anything missing or out of range.
func ParsePaginationParams(c *gin.Context) models.PageRequest {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(DefaultPageSize)))
	if err != nil || size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return models.PageRequest{Page: page, Size: size}
}
