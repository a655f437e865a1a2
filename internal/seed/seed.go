package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/restock/internal/actorcontext"
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
	"gorm.io/gorm"
)

type conditionSeed struct {
	name    string
	quality int
}

var (
	productTypeSeeds = []string{"Laptop", "Smartphone", "Tablet", "Smart Watch", "Monitor"}
	colorSeeds       = []string{"Black", "White", "Silver", "Gold", "Blue"}
	conditionSeeds   = []conditionSeed{
		{name: "New", quality: 100},
		{name: "Grade A", quality: 95},
		{name: "Grade B", quality: 85},
		{name: "Grade C", quality: 70},
	}
)

// EnsureReferenceCatalog bootstraps the reference tables so the product
// forms have usable dropdowns on a fresh install. Existing rows are left
// alone; the seed is safe to run on every startup.
func EnsureReferenceCatalog(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	now := time.Now().UTC()
	audit := catalogdomain.Audit{
		CreatedAt: now,
		CreatedBy: actorcontext.SystemActor,
		UpdatedAt: now,
		UpdatedBy: actorcontext.SystemActor,
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, name := range productTypeSeeds {
			exists, err := rowExists(tx, "product_types", name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			row := catalogdomain.ProductType{
				ID:        node.Generate().Int64(),
				Name:      name,
				Slug:      slug.Make(name),
				SortOrder: i,
				IsActive:  true,
				Audit:     audit,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for i, name := range colorSeeds {
			exists, err := rowExists(tx, "colors", name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			row := catalogdomain.Color{
				ID:        node.Generate().Int64(),
				Name:      name,
				Slug:      slug.Make(name),
				SortOrder: i,
				IsActive:  true,
				Audit:     audit,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for i, cond := range conditionSeeds {
			exists, err := rowExists(tx, "conditions", cond.name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			row := catalogdomain.Condition{
				ID:                node.Generate().Int64(),
				Name:              cond.name,
				Slug:              slug.Make(cond.name),
				QualityPercentage: cond.quality,
				SortOrder:         i,
				IsActive:          true,
				Audit:             audit,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func rowExists(tx *gorm.DB, table, name string) (bool, error) {
	var count int64
	err := tx.Table(table).
		Where("LOWER(name) = LOWER(?)", name).
		Where("is_deleted = ?", false).
		Count(&count).Error
	return count > 0, err
}
