package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

const defaultPageSize = 50

// applyPaginationAndSort applies limit/offset and a whitelisted sort column.
// Unknown columns fall back to created_at so user input never reaches the
// ORDER BY clause verbatim.
func applyPaginationAndSort(query *gorm.DB, limit, offset int, sortBy, sortOrder string, allowed map[string]bool) *gorm.DB {
	if !allowed[sortBy] {
		sortBy = "created_at"
	}
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if limit <= 0 {
		limit = defaultPageSize
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
