package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/restock/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func activeScope(stmt *gorm.DB) *gorm.DB {
	return stmt.Where("is_deleted = ?", false).
		Where("is_active = ?", true).
		Order("sort_order ASC, name ASC")
}

func (r *repo) ListProductTypes(ctx context.Context, db *gorm.DB) ([]domain.ProductType, error) {
	var items []domain.ProductType
	err := activeScope(db.WithContext(ctx).Model(&domain.ProductType{})).Find(&items).Error
	return items, err
}

func (r *repo) ListBrands(ctx context.Context, db *gorm.DB, productTypeID *int64) ([]domain.Brand, error) {
	stmt := activeScope(db.WithContext(ctx).Model(&domain.Brand{}))
	if productTypeID != nil {
		stmt = stmt.Where("product_type_id = ?", *productTypeID)
	}
	var items []domain.Brand
	err := stmt.Find(&items).Error
	return items, err
}

func (r *repo) ListModels(ctx context.Context, db *gorm.DB, productTypeID, brandID *int64) ([]domain.Model, error) {
	stmt := activeScope(db.WithContext(ctx).Model(&domain.Model{}))
	if productTypeID != nil {
		stmt = stmt.Where("product_type_id = ?", *productTypeID)
	}
	if brandID != nil {
		stmt = stmt.Where("brand_id = ?", *brandID)
	}
	var items []domain.Model
	err := stmt.Find(&items).Error
	return items, err
}

func (r *repo) ListColors(ctx context.Context, db *gorm.DB) ([]domain.Color, error) {
	var items []domain.Color
	err := activeScope(db.WithContext(ctx).Model(&domain.Color{})).Find(&items).Error
	return items, err
}

func (r *repo) ListConditions(ctx context.Context, db *gorm.DB) ([]domain.Condition, error) {
	var items []domain.Condition
	err := activeScope(db.WithContext(ctx).Model(&domain.Condition{})).Find(&items).Error
	return items, err
}

func byIDs[T any](ctx context.Context, db *gorm.DB, ids []int64) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []T
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error
	return rows, err
}

func (r *repo) ProductTypesByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.ProductType, error) {
	return byIDs[domain.ProductType](ctx, db, ids)
}

func (r *repo) BrandsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Brand, error) {
	return byIDs[domain.Brand](ctx, db, ids)
}

func (r *repo) ModelsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Model, error) {
	return byIDs[domain.Model](ctx, db, ids)
}

func (r *repo) ColorsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Color, error) {
	return byIDs[domain.Color](ctx, db, ids)
}

func (r *repo) ConditionsByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Condition, error) {
	return byIDs[domain.Condition](ctx, db, ids)
}

func findByID[T any](ctx context.Context, db *gorm.DB, id int64) (*T, error) {
	var row T
	err := db.WithContext(ctx).
		Where("id = ?", id).
		Where("is_deleted = ?", false).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) FindProductTypeByID(ctx context.Context, db *gorm.DB, id int64) (*domain.ProductType, error) {
	return findByID[domain.ProductType](ctx, db, id)
}

func (r *repo) FindBrandByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Brand, error) {
	return findByID[domain.Brand](ctx, db, id)
}

func (r *repo) FindModelByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Model, error) {
	return findByID[domain.Model](ctx, db, id)
}

func (r *repo) FindColorByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Color, error) {
	return findByID[domain.Color](ctx, db, id)
}

func (r *repo) FindConditionByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Condition, error) {
	return findByID[domain.Condition](ctx, db, id)
}

// Name uniqueness is case-insensitive within the entry's scope.
func nameExists(ctx context.Context, db *gorm.DB, model any, name string, excludeID int64, scope func(*gorm.DB) *gorm.DB) (bool, error) {
	stmt := db.WithContext(ctx).Model(model).
		Where("is_deleted = ?", false).
		Where("LOWER(name) = LOWER(?)", name)
	if scope != nil {
		stmt = scope(stmt)
	}
	if excludeID != 0 {
		stmt = stmt.Where("id <> ?", excludeID)
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) ProductTypeNameExists(ctx context.Context, db *gorm.DB, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, db, &domain.ProductType{}, name, excludeID, nil)
}

func (r *repo) BrandNameExists(ctx context.Context, db *gorm.DB, productTypeID int64, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, db, &domain.Brand{}, name, excludeID, func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where("product_type_id = ?", productTypeID)
	})
}

func (r *repo) ModelNameExists(ctx context.Context, db *gorm.DB, brandID int64, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, db, &domain.Model{}, name, excludeID, func(stmt *gorm.DB) *gorm.DB {
		return stmt.Where("brand_id = ?", brandID)
	})
}

func (r *repo) ColorNameExists(ctx context.Context, db *gorm.DB, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, db, &domain.Color{}, name, excludeID, nil)
}

func (r *repo) ConditionNameExists(ctx context.Context, db *gorm.DB, name string, excludeID int64) (bool, error) {
	return nameExists(ctx, db, &domain.Condition{}, name, excludeID, nil)
}

func (r *repo) SaveProductType(ctx context.Context, db *gorm.DB, row *domain.ProductType) error {
	return db.WithContext(ctx).Save(row).Error
}

func (r *repo) SaveBrand(ctx context.Context, db *gorm.DB, row *domain.Brand) error {
	return db.WithContext(ctx).Save(row).Error
}

func (r *repo) SaveModel(ctx context.Context, db *gorm.DB, row *domain.Model) error {
	return db.WithContext(ctx).Save(row).Error
}

func (r *repo) SaveColor(ctx context.Context, db *gorm.DB, row *domain.Color) error {
	return db.WithContext(ctx).Save(row).Error
}

func (r *repo) SaveCondition(ctx context.Context, db *gorm.DB, row *domain.Condition) error {
	return db.WithContext(ctx).Save(row).Error
}

var productColumns = map[string]bool{
	"product_type_id": true,
	"brand_id":        true,
	"model_id":        true,
	"color_id":        true,
	"condition_id":    true,
}

func (r *repo) InUseByProducts(ctx context.Context, db *gorm.DB, column string, id int64) (bool, error) {
	if !productColumns[column] {
		return false, errors.New("unknown product reference column: " + column)
	}
	var count int64
	err := db.WithContext(ctx).
		Table("products").
		Where(column+" = ?", id).
		Where("is_deleted = ?", false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
