package persistence

import (
	"github.com/clothshop/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// paginate applies ordering, offset and limit from the filter. id is appended as a tie breaker.
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	filter = filter.Normalize()
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := ValidateSortOrder(filter.OrderDir)
	return query.Order(field + " " + dir).Order("id " + dir).
		Offset(filter.Offset()).
		Limit(filter.PageSize)
}

// findPage counts the rows matched by query and loads one page of them
func findPage[T any](query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) ([]T, int64, error) {
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []T
	if err := paginate(query, filter, allowed, defaultField).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// dateScope restricts column to the inclusive day range; zero bounds are open
func dateScope(query *gorm.DB, column string, dates shared.DateRange) *gorm.DB {
	if !dates.From.IsZero() {
		query = query.Where(column+" >= ?", shared.DateOnly(dates.From))
	}
	if !dates.To.IsZero() {
		query = query.Where(column+" < ?", shared.DateOnly(dates.To).AddDate(0, 0, 1))
	}
	return query
}
