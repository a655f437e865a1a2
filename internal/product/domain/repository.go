package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListFilter is the repository-level view of ListRequest with ids
// already parsed and the sort clause validated.
type ListFilter struct {
	Query          string
	ProductTypeID  *int64
	BrandID        *int64
	Status         string
	ImportBatch    string
	SupplierName   string
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	LowStock       *bool
	IncludeDeleted bool
	SortClause     string
	Offset         int
	Limit          int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	Save(ctx context.Context, db *gorm.DB, product *Product) error
	// FindByID skips soft-deleted rows unless includeDeleted is set and
	// returns nil when no row matches.
	FindByID(ctx context.Context, db *gorm.DB, id int64, includeDeleted bool) (*Product, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Product, int64, error)
	ListLowStock(ctx context.Context, db *gorm.DB) ([]Product, error)
}
