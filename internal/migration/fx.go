package migration

import (
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
	"github.com/smallbiznis/restock/internal/config"
	productdomain "github.com/smallbiznis/restock/internal/product/domain"
	"github.com/smallbiznis/restock/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite are dev/test conveniences; the versioned
			// migrations target postgres only.
			if err := conn.AutoMigrate(
				&catalogdomain.ProductType{},
				&catalogdomain.Brand{},
				&catalogdomain.Model{},
				&catalogdomain.Color{},
				&catalogdomain.Condition{},
				&productdomain.Product{},
			); err != nil {
				return err
			}
		}

		if cfg.SeedCatalog {
			return seed.EnsureReferenceCatalog(conn)
		}
		return nil
	}),
)
