package option

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Option mutates a gorm statement.
type Option interface {
	Apply(stmt *gorm.DB) *gorm.DB
}

type sortBy struct {
	clause string
}

func (o sortBy) Apply(stmt *gorm.DB) *gorm.DB {
	if o.clause == "" {
		return stmt
	}
	return stmt.Order(o.clause)
}

// WithSortBy orders by a pre-validated clause.
func WithSortBy(clause string) Option {
	return sortBy{clause: clause}
}

// WithQuerySortBy builds an order clause from caller-supplied sort_by /
// order_by values, restricted to the allowed column map. Map values are
// the column expressions emitted into the clause, so callers can qualify
// them against joined tables. Unknown columns fall back to the given
// default clause.
func WithQuerySortBy(sortColumn, orderBy, defaultClause string, allowed map[string]string) string {
	column := allowed[strings.ToLower(strings.TrimSpace(sortColumn))]
	if column == "" {
		return defaultClause
	}

	direction := "ASC"
	if strings.EqualFold(strings.TrimSpace(orderBy), "desc") {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}
