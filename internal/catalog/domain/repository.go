package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the typed data access surface for the reference catalog.
// Find* methods skip soft-deleted rows and return nil when nothing
// matches; List* methods additionally skip inactive rows and order by
// (sort_order, name).
type Repository interface {
	ListProductTypes(ctx context.Context, db *gorm.DB) ([]ProductType, error)
	ListBrands(ctx context.Context, db *gorm.DB, productTypeID *int64) ([]Brand, error)
	ListModels(ctx context.Context, db *gorm.DB, productTypeID, brandID *int64) ([]Model, error)
	ListColors(ctx context.Context, db *gorm.DB) ([]Color, error)
	ListConditions(ctx context.Context, db *gorm.DB) ([]Condition, error)

	// *ByIDs fetch rows in bulk for reference-name resolution. Deleted
	// rows are included so historical products keep rendering names.
	ProductTypesByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]ProductType, error)
	BrandsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Brand, error)
	ModelsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Model, error)
	ColorsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Color, error)
	ConditionsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]Condition, error)

	FindProductTypeByID(ctx context.Context, db *gorm.DB, id int64) (*ProductType, error)
	FindBrandByID(ctx context.Context, db *gorm.DB, id int64) (*Brand, error)
	FindModelByID(ctx context.Context, db *gorm.DB, id int64) (*Model, error)
	FindColorByID(ctx context.Context, db *gorm.DB, id int64) (*Color, error)
	FindConditionByID(ctx context.Context, db *gorm.DB, id int64) (*Condition, error)

	ProductTypeNameExists(ctx context.Context, db *gorm.DB, name string, excludeID int64) (bool, error)
	BrandNameExists(ctx context.Context, db *gorm.DB, productTypeID int64, name string, excludeID int64) (bool, error)
	ModelNameExists(ctx context.Context, db *gorm.DB, brandID int64, name string, excludeID int64) (bool, error)
	ColorNameExists(ctx context.Context, db *gorm.DB, name string, excludeID int64) (bool, error)
	ConditionNameExists(ctx context.Context, db *gorm.DB, name string, excludeID int64) (bool, error)

	SaveProductType(ctx context.Context, db *gorm.DB, row *ProductType) error
	SaveBrand(ctx context.Context, db *gorm.DB, row *Brand) error
	SaveModel(ctx context.Context, db *gorm.DB, row *Model) error
	SaveColor(ctx context.Context, db *gorm.DB, row *Color) error
	SaveCondition(ctx context.Context, db *gorm.DB, row *Condition) error

	// InUseByProducts reports whether any non-deleted product still
	// references the given catalog row through the given column.
	InUseByProducts(ctx context.Context, db *gorm.DB, column string, id int64) (bool, error)
}
