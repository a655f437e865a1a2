package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
	catalogrepository "github.com/smallbiznis/restock/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/restock/internal/catalog/service"
	"github.com/smallbiznis/restock/internal/clock"
	"github.com/smallbiznis/restock/internal/config"
	"github.com/smallbiznis/restock/internal/observability"
	productdomain "github.com/smallbiznis/restock/internal/product/domain"
	productrepository "github.com/smallbiznis/restock/internal/product/repository"
	productservice "github.com/smallbiznis/restock/internal/product/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	node   *snowflake.Node
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

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
		&productdomain.Product{},
	))

	log := zap.NewNop()
	clk := clock.NewFakeClock(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC))
	policy := config.NewStaticStockPolicyHolder(config.DefaultStockPolicy())
	catalogRepo := catalogrepository.Provide()

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: clk,
		Repo:  catalogRepo,
	})
	productSvc := productservice.New(productservice.Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clk,
		Repo:        productrepository.Provide(),
		CatalogRepo: catalogRepo,
		Policy:      policy,
	})

	engine := NewEngine(observability.Config{}, nil)
	NewServer(ServerParams{
		Gin:        engine,
		Cfg:        config.Config{},
		DB:         db,
		GenID:      node,
		ProductSvc: productSvc,
		CatalogSvc: catalogSvc,
	})

	return &testServer{engine: engine, db: db, node: node}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-Id", "tester")

	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (ts *testServer) seedCatalog(t *testing.T) map[string]string {
	t.Helper()

	create := func(kind, name string, extra map[string]any) string {
		payload := map[string]any{"name": name}
		for k, v := range extra {
			payload[k] = v
		}
		rec := ts.do(t, http.MethodPost, "/admin/catalog/"+kind, payload)
		require.Equal(t, http.StatusCreated, rec.Code, "create %s: %s", kind, rec.Body.String())
		data := ts.decode(t, rec)["data"].(map[string]any)
		return data["id"].(string)
	}

	ids := map[string]string{}
	ids["productType"] = create("product-types", "Laptop", nil)
	ids["brand"] = create("brands", "Apple", map[string]any{"productTypeId": ids["productType"]})
	ids["model"] = create("models", "MacBook Air M1", map[string]any{"brandId": ids["brand"]})
	ids["color"] = create("colors", "Silver", nil)
	ids["condition"] = create("conditions", "Grade A", map[string]any{"qualityPercentage": 95})
	return ids
}

func validProductPayload(ids map[string]string) map[string]any {
	return map[string]any{
		"name":          "MacBook Air M1 refurbished",
		"description":   "Refurbished M1 Air, battery replaced",
		"productTypeId": ids["productType"],
		"brandId":       ids["brand"],
		"modelId":       ids["model"],
		"colorId":       ids["color"],
		"conditionId":   ids["condition"],
		"purchasePrice": "950.00",
		"transportCost": "30.00",
		"sellingPrice":  "1299.00",
		"stock":         8,
		"supplierName":  "TechSource BV",
		"importBatch":   "2025-W22",
		"invoiceNumber": "INV-0042",
	}
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t)
	ids := ts.seedCatalog(t)

	rec := ts.do(t, http.MethodPost, "/api/products", validProductPayload(ids))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := ts.decode(t, rec)["data"].(map[string]any)
	productID := data["id"].(string)
	assert.Equal(t, "/api/products/"+productID, rec.Header().Get("Location"))
	assert.Equal(t, "980", data["totalCostPrice"])
	assert.Equal(t, "32.55", data["marginPercentage"])
	assert.Equal(t, "Available", data["status"])
	assert.Equal(t, "Apple", data["brand"].(map[string]any)["name"])
	assert.Equal(t, "tester", data["createdBy"])

	rec = ts.do(t, http.MethodGet, "/api/products/"+productID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPut, "/api/products/"+productID, map[string]any{"sellingPrice": "1099.00"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data = ts.decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "119", data["margin"])

	rec = ts.do(t, http.MethodDelete, "/api/products/"+productID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/products/"+productID, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	errBody := ts.decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "not_found", errBody["type"])

	rec = ts.do(t, http.MethodGet, "/api/products/"+productID+"?includeDeleted=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateProductValidationPayload(t *testing.T) {
	ts := newTestServer(t)
	ids := ts.seedCatalog(t)

	payload := validProductPayload(ids)
	payload["name"] = ""
	payload["purchasePrice"] = "0"

	rec := ts.do(t, http.MethodPost, "/api/products", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errBody := ts.decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "validation_error", errBody["type"])

	fields := map[string]bool{}
	for _, raw := range errBody["errors"].([]any) {
		fe := raw.(map[string]any)
		fields[fe["field"].(string)] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["purchasePrice"])
}

func TestStockAndStatusEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ids := ts.seedCatalog(t)

	rec := ts.do(t, http.MethodPost, "/api/products", validProductPayload(ids))
	require.Equal(t, http.StatusCreated, rec.Code)
	productID := ts.decode(t, rec)["data"].(map[string]any)["id"].(string)

	rec = ts.do(t, http.MethodPatch, "/api/products/"+productID+"/stock", map[string]any{"delta": -5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := ts.decode(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 3, data["stock"])
	assert.Equal(t, true, data["isLowStock"])

	rec = ts.do(t, http.MethodPatch, "/api/products/"+productID+"/stock", map[string]any{"delta": -50})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/products/"+productID+"/status", map[string]any{"status": "Sold"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/products/"+productID+"/status", map[string]any{"status": "Abducted"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/products/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := ts.decode(t, rec)["data"].([]any)
	assert.Len(t, items, 1)
}

func TestBulkEndpointsIsolateFailures(t *testing.T) {
	ts := newTestServer(t)
	ids := ts.seedCatalog(t)

	rec := ts.do(t, http.MethodPost, "/api/products", validProductPayload(ids))
	require.Equal(t, http.StatusCreated, rec.Code)
	first := ts.decode(t, rec)["data"].(map[string]any)["id"].(string)

	missing := ts.node.Generate().String()
	rec = ts.do(t, http.MethodPost, "/api/products/bulk/delete", map[string]any{
		"ids": []string{first, missing},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := ts.decode(t, rec)["data"].(map[string]any)
	assert.EqualValues(t, 1, data["successCount"])
	assert.EqualValues(t, 1, data["errorCount"])
}

func TestDropdownCascade(t *testing.T) {
	ts := newTestServer(t)
	ids := ts.seedCatalog(t)

	rec := ts.do(t, http.MethodGet, "/api/products/dropdowns/brands?productTypeId="+ids["productType"], nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := ts.decode(t, rec)["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Apple", items[0].(map[string]any)["name"])

	rec = ts.do(t, http.MethodGet, "/api/products/dropdowns/brands?productTypeId=garbage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, ts.decode(t, rec)["data"])

	rec = ts.do(t, http.MethodGet, "/api/products/dropdowns/conditions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items = ts.decode(t, rec)["data"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 95, items[0].(map[string]any)["qualityPercentage"])
}

func TestCatalogAdminConflicts(t *testing.T) {
	ts := newTestServer(t)
	ids := ts.seedCatalog(t)

	rec := ts.do(t, http.MethodPost, "/admin/catalog/colors", map[string]any{"name": "silver"})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/products", validProductPayload(ids))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodPost, "/admin/catalog/colors/"+ids["color"]+"/archive", nil)
	require.Equal(t, http.StatusConflict, rec.Code, "archiving a referenced color must be refused")

	rec = ts.do(t, http.MethodPost, "/admin/catalog/wrong-kind", map[string]any{"name": "x"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
