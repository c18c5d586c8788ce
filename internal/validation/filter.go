package validation

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agamariel/songorders/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseOrderFilter разбирает query-параметры списка заказов.
func ParseOrderFilter(q url.Values) (models.OrderFilter, error) {
	filter := models.OrderFilter{
		OrderNumber:    strings.TrimSpace(q.Get("orderNumber")),
		TelegramUserID: strings.TrimSpace(q.Get("telegramUserId")),
		Page:           DefaultPage,
		Limit:          DefaultLimit,
	}
	verr := &ValidationError{}

	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status := models.OrderStatus(raw)
		if !slices.Contains(models.OrderStatuses, status) {
			verr.Add("status", "must be one of: NEW, IN_PROGRESS, READY, PAID, COMPLETED")
		} else {
			filter.Status = &status
		}
	}

	if raw := strings.TrimSpace(q.Get("startDate")); raw != "" {
		if t, ok := parseDate(raw); ok {
			filter.StartDate = &t
		} else {
			verr.Add("startDate", "invalid date")
		}
	}
	if raw := strings.TrimSpace(q.Get("endDate")); raw != "" {
		if t, ok := parseDate(raw); ok {
			filter.EndDate = &t
		} else {
			verr.Add("endDate", "invalid date")
		}
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			verr.Add("page", "must be a positive integer")
		} else {
			filter.Page = page
		}
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		switch {
		case err != nil || limit < 1:
			verr.Add("limit", "must be a positive integer")
		case limit > MaxLimit:
			verr.Add("limit", "must not exceed 100")
		default:
			filter.Limit = limit
		}
	}

	if verr.HasErrors() {
		return models.OrderFilter{}, verr
	}
	return filter, nil
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
