package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/restock/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64, includeDeleted bool) (*domain.Product, error) {
	stmt := db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		stmt = stmt.Where("is_deleted = ?", false)
	}

	var p domain.Product
	err := stmt.First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{})

	if !filter.IncludeDeleted {
		stmt = stmt.Where("products.is_deleted = ?", false)
	}
	if filter.Query != "" {
		// Free-text search spans the product row and its resolved
		// reference names, so a query like "apple" matches by brand.
		q := "%" + strings.ToLower(filter.Query) + "%"
		stmt = stmt.
			Joins("LEFT JOIN product_types ON product_types.id = products.product_type_id").
			Joins("LEFT JOIN brands ON brands.id = products.brand_id").
			Joins("LEFT JOIN models ON models.id = products.model_id").
			Where(`(LOWER(products.name) LIKE ?
				OR LOWER(products.description) LIKE ?
				OR LOWER(product_types.name) LIKE ?
				OR LOWER(brands.name) LIKE ?
				OR LOWER(models.name) LIKE ?)`, q, q, q, q, q)
	}
	if filter.ProductTypeID != nil {
		stmt = stmt.Where("products.product_type_id = ?", *filter.ProductTypeID)
	}
	if filter.BrandID != nil {
		stmt = stmt.Where("products.brand_id = ?", *filter.BrandID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("products.status = ?", filter.Status)
	}
	if filter.ImportBatch != "" {
		stmt = stmt.Where("products.import_batch = ?", filter.ImportBatch)
	}
	if filter.SupplierName != "" {
		stmt = stmt.Where("LOWER(products.supplier_name) LIKE ?", "%"+strings.ToLower(filter.SupplierName)+"%")
	}
	if filter.MinPrice != nil {
		stmt = stmt.Where("products.selling_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		stmt = stmt.Where("products.selling_price <= ?", *filter.MaxPrice)
	}
	if filter.LowStock != nil {
		if *filter.LowStock {
			stmt = stmt.Where("products.stock <= products.min_stock_level")
		} else {
			stmt = stmt.Where("products.stock > products.min_stock_level")
		}
	}

	var total int64
	if err := stmt.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortClause := filter.SortClause
	if sortClause == "" {
		sortClause = "products.created_at DESC"
	}

	var items []domain.Product
	err := stmt.
		Order(sortClause).
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListLowStock(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Where("stock <= min_stock_level").
		Order("stock ASC, name ASC").
		Find(&items).Error
	return items, err
}
