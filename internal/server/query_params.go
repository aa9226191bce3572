package server

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	bookingdomain "github.com/sponsorloop/sponsorloop/internal/booking/domain"
	"github.com/sponsorloop/sponsorloop/pkg/db/pagination"
)

const dateOnlyLayout = "2006-01-02"

func bindPagination(c *gin.Context) (pagination.Params, error) {
	var page pagination.Params
	if err := c.ShouldBindQuery(&page); err != nil {
		return pagination.Params{}, err
	}
	return page.Validated(), nil
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(dateOnlyLayout, trimmed); err == nil {
		if endOfDay {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
		} else {
			parsed = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
		}
		return &parsed, nil
	}
	return nil, errors.New("invalid_time")
}

func parseOptionalInt(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func bookingFilterFromQuery(c *gin.Context) (bookingdomain.ListFilter, error) {
	var filter bookingdomain.ListFilter

	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := bookingdomain.ParseStatus(raw)
		if !ok {
			return filter, newValidationError("status", "invalid_status", "unknown booking status")
		}
		filter.Status = &status
	}

	from, err := parseOptionalTime(c.Query("from_date"), false)
	if err != nil {
		return filter, newValidationError("from_date", "invalid_date", "use YYYY-MM-DD")
	}
	filter.FromDate = from

	to, err := parseOptionalTime(c.Query("to_date"), true)
	if err != nil {
		return filter, newValidationError("to_date", "invalid_date", "use YYYY-MM-DD")
	}
	filter.ToDate = to

	filter.SortBy = strings.TrimSpace(c.Query("sort_by"))

	return filter, nil
}
