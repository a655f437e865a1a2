package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/restock/internal/actorcontext"
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/restock/internal/catalog/repository"
	"github.com/smallbiznis/restock/internal/clock"
	"github.com/smallbiznis/restock/internal/config"
	"github.com/smallbiznis/restock/internal/product/domain"
	"github.com/smallbiznis/restock/internal/product/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type catalogIDs struct {
	productType string
	brand       string
	model       string
	color       string
	condition   string

	otherProductType string
	otherBrand       string
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func setupProductService(t *testing.T, node *snowflake.Node, clk clock.Clock) (domain.Service, *gorm.DB, catalogIDs) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.ProductType{},
		&catalogdomain.Brand{},
		&catalogdomain.Model{},
		&catalogdomain.Color{},
		&catalogdomain.Condition{},
		&domain.Product{},
	))

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clk,
		Repo:        repository.Provide(),
		CatalogRepo: catalogrepository.Provide(),
		Policy:      config.NewStaticStockPolicyHolder(config.DefaultStockPolicy()),
	})

	ids := seedCatalog(t, db, node)
	return svc, db, ids
}

func seedCatalog(t *testing.T, db *gorm.DB, node *snowflake.Node) catalogIDs {
	t.Helper()

	now := time.Now().UTC()
	audit := catalogdomain.Audit{CreatedAt: now, CreatedBy: "seed", UpdatedAt: now, UpdatedBy: "seed"}

	laptop := catalogdomain.ProductType{ID: node.Generate().Int64(), Name: "Laptop", Slug: "laptop", IsActive: true, Audit: audit}
	phone := catalogdomain.ProductType{ID: node.Generate().Int64(), Name: "Smartphone", Slug: "smartphone", IsActive: true, Audit: audit}
	require.NoError(t, db.Create(&laptop).Error)
	require.NoError(t, db.Create(&phone).Error)

	apple := catalogdomain.Brand{ID: node.Generate().Int64(), ProductTypeID: laptop.ID, Name: "Apple", Slug: "apple", IsActive: true, Audit: audit}
	samsung := catalogdomain.Brand{ID: node.Generate().Int64(), ProductTypeID: phone.ID, Name: "Samsung", Slug: "samsung", IsActive: true, Audit: audit}
	require.NoError(t, db.Create(&apple).Error)
	require.NoError(t, db.Create(&samsung).Error)

	macbook := catalogdomain.Model{ID: node.Generate().Int64(), ProductTypeID: laptop.ID, BrandID: apple.ID, Name: "MacBook Pro 14", Slug: "macbook-pro-14", IsActive: true, Audit: audit}
	require.NoError(t, db.Create(&macbook).Error)

	silver := catalogdomain.Color{ID: node.Generate().Int64(), Name: "Silver", Slug: "silver", IsActive: true, Audit: audit}
	require.NoError(t, db.Create(&silver).Error)

	grade := catalogdomain.Condition{ID: node.Generate().Int64(), Name: "Grade A", Slug: "grade-a", QualityPercentage: 95, IsActive: true, Audit: audit}
	require.NoError(t, db.Create(&grade).Error)

	format := func(id int64) string { return fmt.Sprintf("%d", id) }
	return catalogIDs{
		productType:      format(laptop.ID),
		brand:            format(apple.ID),
		model:            format(macbook.ID),
		color:            format(silver.ID),
		condition:        format(grade.ID),
		otherProductType: format(phone.ID),
		otherBrand:       format(samsung.ID),
	}
}

func validCreate(ids catalogIDs) domain.CreateRequest {
	return domain.CreateRequest{
		Name:          "MacBook Pro 14 2021 refurbished",
		Description:   "Refurbished 14 inch M1 Pro, light scratches on the lid",
		ProductTypeID: ids.productType,
		BrandID:       ids.brand,
		ModelID:       ids.model,
		ColorID:       ids.color,
		ConditionID:   ids.condition,
		PurchasePrice: dec("950.00"),
		TransportCost: dec("30.00"),
		SellingPrice:  dec("1299.00"),
		Stock:         10,
		SupplierName:  "TechSource BV",
		ImportBatch:   "2025-W22",
		InvoiceNumber: "INV-0042",
	}
}

func TestCreateComputesPricesAndDefaults(t *testing.T) {
	node := mustNode(t)
	clk := clock.NewFakeClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	svc, _, ids := setupProductService(t, node, clk)
	ctx := actorcontext.WithActor(context.Background(), "alex")

	req := validCreate(ids)
	purchase := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	req.PurchaseDate = &purchase

	resp, err := svc.Create(ctx, req)
	require.NoError(t, err)

	assert.True(t, resp.TotalCostPrice.Equal(dec("980.00")), "total cost %s", resp.TotalCostPrice)
	assert.True(t, resp.Margin.Equal(dec("319.00")), "margin %s", resp.Margin)
	assert.True(t, resp.MarginPercentage.Equal(dec("32.55")), "margin pct %s", resp.MarginPercentage)
	assert.True(t, resp.TotalValue.Equal(dec("12990.00")), "total value %s", resp.TotalValue)

	assert.Equal(t, "Available", resp.Status)
	assert.Equal(t, 5, resp.MinStockLevel)
	assert.False(t, resp.IsLowStock)
	assert.Equal(t, 9, resp.DaysInStock)
	assert.Equal(t, "alex", resp.CreatedBy)

	assert.Equal(t, "Laptop", resp.ProductType.Name)
	assert.Equal(t, "Apple", resp.Brand.Name)
	assert.Equal(t, "MacBook Pro 14", resp.Model.Name)
	assert.Equal(t, "Silver", resp.Color.Name)
	assert.Equal(t, "Grade A", resp.Condition.Name)
}

func TestCreateCollectsAllValidationErrors(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	req := validCreate(ids)
	req.Name = ""
	req.PurchasePrice = decimal.Zero
	req.SupplierName = " "

	_, err := svc.Create(ctx, req)
	var vErrs domain.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	fields := make(map[string]bool)
	for _, fe := range vErrs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["purchasePrice"])
	assert.True(t, fields["supplierName"])
}

func TestCreateRejectsHierarchyMismatch(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	req := validCreate(ids)
	req.BrandID = ids.otherBrand // belongs to the smartphone type

	_, err := svc.Create(ctx, req)
	var vErrs domain.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	found := false
	for _, fe := range vErrs {
		if fe.Field == "brandId" && fe.Code == "hierarchy_mismatch" {
			found = true
		}
	}
	assert.True(t, found, "expected brand hierarchy error, got %v", vErrs)
}

func TestUpdatePartialRecomputesPrices(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	selling := dec("1099.00")
	updated, err := svc.Update(ctx, created.ID, domain.UpdateRequest{SellingPrice: &selling})
	require.NoError(t, err)

	assert.True(t, updated.TotalCostPrice.Equal(dec("980.00")))
	assert.True(t, updated.Margin.Equal(dec("119.00")), "margin %s", updated.Margin)
	assert.True(t, updated.MarginPercentage.Equal(dec("12.14")), "margin pct %s", updated.MarginPercentage)
	assert.Equal(t, created.Name, updated.Name, "untouched fields must survive a partial update")
}

func TestSoftDeleteHidesProduct(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := actorcontext.WithActor(context.Background(), "alex")

	created, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	audit, err := svc.Get(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, audit.IsDeleted)
	assert.NotNil(t, audit.DeletedAt)

	// Deleting twice reports not found.
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), domain.ErrNotFound)

	list, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.EqualValues(t, 0, list.PageInfo.TotalCount)
}

func TestListSearchesReferenceNames(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	list, err := svc.List(ctx, domain.ListRequest{Query: "apple"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Apple", list.Items[0].Brand.Name)

	list, err = svc.List(ctx, domain.ListRequest{Query: "does-not-exist"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestListQueryExcludesDeletedAndCombinesFilters(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	kept, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)
	removed, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, removed.ID))

	// The free-text match must not resurface soft-deleted rows.
	list, err := svc.List(ctx, domain.ListRequest{Query: "refurbished"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, kept.ID, list.Items[0].ID)
	assert.False(t, list.Items[0].IsDeleted)

	_, err = svc.MarkStatus(ctx, kept.ID, "Sold")
	require.NoError(t, err)

	// Exact filters stay in effect alongside the text match.
	list, err = svc.List(ctx, domain.ListRequest{Query: "refurbished", Status: "Reserved"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	list, err = svc.List(ctx, domain.ListRequest{Query: "refurbished", Status: "Sold"})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, kept.ID, list.Items[0].ID)
}

func TestListQuerySortsAcrossJoins(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	second := validCreate(ids)
	second.Name = "MacBook Pro 16 refurbished"
	_, err := svc.Create(ctx, second)
	require.NoError(t, err)

	first := validCreate(ids)
	first.Name = "MacBook Air 13 refurbished"
	_, err = svc.Create(ctx, first)
	require.NoError(t, err)

	// Searching joins the reference tables, so the sort column has to
	// resolve against the products table without ambiguity.
	list, err := svc.List(ctx, domain.ListRequest{Query: "apple", SortBy: "name"})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Equal(t, "MacBook Air 13 refurbished", list.Items[0].Name)
	assert.Equal(t, "MacBook Pro 16 refurbished", list.Items[1].Name)
}

func TestUpdateCollectsFieldAndRelationErrors(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	badPrice := decimal.Zero
	otherBrand := ids.otherBrand
	_, err = svc.Update(ctx, created.ID, domain.UpdateRequest{
		SellingPrice: &badPrice,
		BrandID:      &otherBrand,
	})

	var vErrs domain.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	fields := make(map[string]bool)
	for _, fe := range vErrs {
		fields[fe.Field] = true
	}
	assert.True(t, fields["sellingPrice"], "price error must survive the relation check, got %v", vErrs)
	assert.True(t, fields["brandId"], "relation error expected, got %v", vErrs)
}

func TestListLowStockFilter(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	healthy := validCreate(ids)
	healthy.Stock = 10
	_, err := svc.Create(ctx, healthy)
	require.NoError(t, err)

	low := validCreate(ids)
	low.Name = "iPhone 12 refurbished"
	low.Stock = 2
	created, err := svc.Create(ctx, low)
	require.NoError(t, err)
	assert.True(t, created.IsLowStock)

	flag := true
	list, err := svc.List(ctx, domain.ListRequest{LowStock: &flag})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, created.ID, list.Items[0].ID)

	lowStock, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, created.ID, lowStock[0].ID)
}

func TestListUnknownReferenceFilterReturnsEmpty(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	list, err := svc.List(ctx, domain.ListRequest{BrandID: "not-an-id"})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.EqualValues(t, 0, list.PageInfo.TotalCount)
}

func TestUpdateStock(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	delta := -4
	resp, err := svc.UpdateStock(ctx, created.ID, domain.StockUpdateRequest{Delta: &delta})
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Stock)

	tooMuch := -100
	_, err = svc.UpdateStock(ctx, created.ID, domain.StockUpdateRequest{Delta: &tooMuch})
	assert.ErrorIs(t, err, domain.ErrNegativeStock)

	set := 3
	resp, err = svc.UpdateStock(ctx, created.ID, domain.StockUpdateRequest{Set: &set})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Stock)
	assert.True(t, resp.IsLowStock)

	_, err = svc.UpdateStock(ctx, created.ID, domain.StockUpdateRequest{})
	var vErrs domain.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)
}

func TestMarkStatusHonorsPolicy(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	resp, err := svc.MarkStatus(ctx, created.ID, "Sold")
	require.NoError(t, err)
	assert.Equal(t, "Sold", resp.Status)

	_, err = svc.MarkStatus(ctx, created.ID, "Teleported")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestBulkDeleteIsolatesFailures(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	missing := node.Generate().String()
	result, err := svc.BulkDelete(ctx, domain.BulkDeleteRequest{
		IDs: []string{first.ID, missing, second.ID},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, []string{first.ID, second.ID}, result.ProcessedIDs)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, missing, result.Errors[0].ID)

	_, err = svc.Get(ctx, first.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBulkUpdatePrices(t *testing.T) {
	node := mustNode(t)
	svc, _, ids := setupProductService(t, node, clock.NewSystem())
	ctx := context.Background()

	first, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCreate(ids))
	require.NoError(t, err)

	selling := dec("1199.00")
	result, err := svc.BulkUpdatePrices(ctx, domain.BulkPricesRequest{
		IDs:          []string{first.ID, second.ID},
		SellingPrice: &selling,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)

	resp, err := svc.Get(ctx, first.ID, false)
	require.NoError(t, err)
	assert.True(t, resp.SellingPrice.Equal(selling))
	assert.True(t, resp.Margin.Equal(dec("219.00")), "margin %s", resp.Margin)

	_, err = svc.BulkUpdatePrices(ctx, domain.BulkPricesRequest{IDs: []string{first.ID}})
	var vErrs domain.ValidationErrors
	assert.ErrorAs(t, err, &vErrs)

	_, err = svc.BulkUpdatePrices(ctx, domain.BulkPricesRequest{SellingPrice: &selling})
	assert.ErrorIs(t, err, domain.ErrEmptyBulk)
}
