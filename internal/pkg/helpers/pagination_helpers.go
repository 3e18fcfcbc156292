package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/gtostat/internal/app/models/dto"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ParseSkipLimit extracts skip/limit query parameters. Invalid values fall back to the defaults.
func ParseSkipLimit(c *gin.Context) (skip, limit int) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		skip = 0
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	return skip, limit
}

// NewPaginationInfo creates a standard PaginationInfo DTO for a skip/limit window
func NewPaginationInfo(totalItems int64, skip, limit int) dto.PaginationInfo {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if skip < 0 {
		skip = 0
	}

	return dto.PaginationInfo{
		Skip:       skip,
		Limit:      limit,
		TotalItems: totalItems,
		HasMore:    int64(skip+limit) < totalItems,
	}
}
