package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/restock/internal/actorcontext"
	"github.com/smallbiznis/restock/internal/catalog/domain"
	"github.com/smallbiznis/restock/internal/catalog/repository"
	"github.com/smallbiznis/restock/internal/clock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func setupCatalogService(t *testing.T, node *snowflake.Node) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&domain.ProductType{},
		&domain.Brand{},
		&domain.Model{},
		&domain.Color{},
		&domain.Condition{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(`CREATE TABLE products (
		id INTEGER PRIMARY KEY,
		product_type_id INTEGER NOT NULL,
		brand_id INTEGER NOT NULL,
		model_id INTEGER NOT NULL,
		color_id INTEGER NOT NULL,
		condition_id INTEGER NOT NULL,
		is_deleted BOOLEAN NOT NULL DEFAULT false
	)`).Error; err != nil {
		t.Fatalf("create products table: %v", err)
	}

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func actorCtx(actor string) context.Context {
	return actorcontext.WithActor(context.Background(), actor)
}

func TestCreateCascadeAndOptions(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	phones, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindProductType, Name: "Smartphone"})
	if err != nil {
		t.Fatalf("create product type: %v", err)
	}
	laptops, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindProductType, Name: "Laptop"})
	if err != nil {
		t.Fatalf("create product type: %v", err)
	}

	apple, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindBrand, Name: "Apple", ProductTypeID: phones.ID})
	if err != nil {
		t.Fatalf("create brand: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindBrand, Name: "Dell", ProductTypeID: laptops.ID}); err != nil {
		t.Fatalf("create brand: %v", err)
	}

	model, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindModel, Name: "iPhone 13", BrandID: apple.ID})
	if err != nil {
		t.Fatalf("create model: %v", err)
	}
	if model.ProductTypeID == nil || *model.ProductTypeID != phones.ID {
		t.Fatalf("model should inherit the brand's product type")
	}

	brands, err := svc.BrandOptions(ctx, phones.ID)
	if err != nil {
		t.Fatalf("brand options: %v", err)
	}
	if len(brands) != 1 || brands[0].Name != "Apple" {
		t.Fatalf("expected only Apple under smartphones, got %+v", brands)
	}

	models, err := svc.ModelOptions(ctx, phones.ID, apple.ID)
	if err != nil {
		t.Fatalf("model options: %v", err)
	}
	if len(models) != 1 || models[0].Name != "iPhone 13" {
		t.Fatalf("expected iPhone 13, got %+v", models)
	}
}

func TestBrandOptionsUnknownParentEmpty(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	opts, err := svc.BrandOptions(ctx, "not-a-snowflake")
	if err != nil {
		t.Fatalf("brand options: %v", err)
	}
	if len(opts) != 0 {
		t.Fatalf("expected empty list for unparseable parent, got %d", len(opts))
	}
}

func TestOptionsOrderedBySortOrderThenName(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindColor, Name: "Silver", SortOrder: 2}); err != nil {
		t.Fatalf("create color: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindColor, Name: "Black", SortOrder: 1}); err != nil {
		t.Fatalf("create color: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindColor, Name: "Blue", SortOrder: 1}); err != nil {
		t.Fatalf("create color: %v", err)
	}

	opts, err := svc.ColorOptions(ctx)
	if err != nil {
		t.Fatalf("color options: %v", err)
	}
	got := make([]string, 0, len(opts))
	for _, o := range opts {
		got = append(got, o.Name)
	}
	want := []string{"Black", "Blue", "Silver"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestDuplicateNameRejectedCaseInsensitive(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindProductType, Name: "Tablet"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindProductType, Name: "tablet"}); !errors.Is(err, domain.ErrDuplicateName) {
		t.Fatalf("expected duplicate name error, got %v", err)
	}
}

func TestConditionQualityValidated(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	bad := 120
	if _, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindCondition, Name: "Broken", QualityPercentage: &bad}); !errors.Is(err, domain.ErrInvalidPercentage) {
		t.Fatalf("expected percentage error, got %v", err)
	}

	item, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindCondition, Name: "New"})
	if err != nil {
		t.Fatalf("create condition: %v", err)
	}
	if item.QualityPercentage == nil || *item.QualityPercentage != 100 {
		t.Fatalf("expected default quality 100, got %+v", item.QualityPercentage)
	}
}

func TestArchiveHidesFromOptions(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	item, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindColor, Name: "Gold"})
	if err != nil {
		t.Fatalf("create color: %v", err)
	}
	if err := svc.Archive(ctx, domain.KindColor, item.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}

	opts, err := svc.ColorOptions(ctx)
	if err != nil {
		t.Fatalf("color options: %v", err)
	}
	if len(opts) != 0 {
		t.Fatalf("archived color should be hidden, got %+v", opts)
	}

	if err := svc.Archive(ctx, domain.KindColor, item.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second archive should report not found, got %v", err)
	}
}

func TestArchiveRefusedWhileInUse(t *testing.T) {
	node := mustNode(t)
	svc, db := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	item, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindColor, Name: "Red"})
	if err != nil {
		t.Fatalf("create color: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO products (id, product_type_id, brand_id, model_id, color_id, condition_id, is_deleted)
		 VALUES (1, 1, 1, 1, ?, 1, false)`, item.ID,
	).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	if err := svc.Archive(ctx, domain.KindColor, item.ID); !errors.Is(err, domain.ErrInUse) {
		t.Fatalf("expected in-use error, got %v", err)
	}

	// A soft-deleted product no longer blocks the archive.
	if err := db.Exec(`UPDATE products SET is_deleted = true WHERE id = 1`).Error; err != nil {
		t.Fatalf("soft delete product: %v", err)
	}
	if err := svc.Archive(ctx, domain.KindColor, item.ID); err != nil {
		t.Fatalf("archive after product removed: %v", err)
	}
}

func TestUpdateRenameAndDeactivate(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	item, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindProductType, Name: "Smart Watch"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Wearable"
	inactive := false
	updated, err := svc.Update(ctx, domain.UpdateRequest{
		Kind:     domain.KindProductType,
		ID:       item.ID,
		Name:     &newName,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Wearable" || updated.Slug != "wearable" {
		t.Fatalf("rename should refresh the slug, got %+v", updated)
	}
	if updated.IsActive {
		t.Fatalf("expected inactive entry")
	}

	opts, err := svc.ProductTypeOptions(ctx)
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if len(opts) != 0 {
		t.Fatalf("inactive entry should be hidden from dropdowns, got %+v", opts)
	}
}

func TestUpdateCaseOnlyRename(t *testing.T) {
	node := mustNode(t)
	svc, _ := setupCatalogService(t, node)
	ctx := actorCtx("tester")

	item, err := svc.Create(ctx, domain.CreateRequest{Kind: domain.KindColor, Name: "graphite"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	newName := "Graphite"
	updated, err := svc.Update(ctx, domain.UpdateRequest{
		Kind: domain.KindColor,
		ID:   item.ID,
		Name: &newName,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Graphite" {
		t.Fatalf("case-only rename must persist, got %q", updated.Name)
	}
}
