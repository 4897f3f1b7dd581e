package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/septic-booking-service/internal/service/bookings/models"
)

// ParseListFilter разбирает общие query параметры выборок:
// date (одна дата), from и to (период), status, includeInactive
func ParseListFilter(q url.Values, loc *time.Location) (models.ListFilter, error) {
	var filter models.ListFilter

	if dateStr := q.Get("date"); dateStr != "" {
		date, err := ParseDate(dateStr, loc)
		if err != nil {
			return filter, fmt.Errorf("invalid date: %w", err)
		}
		filter.StartDate = &date
		filter.EndDate = &date
	}

	from, err := ParseOptionalDate(q.Get("from"), loc)
	if err != nil {
		return filter, fmt.Errorf("invalid from: %w", err)
	}
	if from != nil {
		filter.StartDate = from
	}

	to, err := ParseOptionalDate(q.Get("to"), loc)
	if err != nil {
		return filter, fmt.Errorf("invalid to: %w", err)
	}
	if to != nil {
		filter.EndDate = to
	}

	if statusStr := q.Get("status"); statusStr != "" {
		filter.Status = &statusStr
	}

	if includeInactiveStr := q.Get("includeInactive"); includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return filter, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		filter.IncludeInactive = includeInactive
	}

	return filter, nil
}

// ParseOptionalInt64 парсит необязательный положительный параметр
func ParseOptionalInt64(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	if v <= 0 {
		return nil, fmt.Errorf("value must be positive: %d", v)
	}
	return &v, nil
}
