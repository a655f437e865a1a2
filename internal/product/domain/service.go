package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/restock/pkg/db/pagination"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidID      = errors.New("invalid product id")
	ErrInvalidStatus  = errors.New("status is not allowed by stock policy")
	ErrNegativeStock  = errors.New("stock cannot go negative")
	ErrEmptyBulk      = errors.New("bulk request has no product ids")
	ErrInvalidRequest = errors.New("invalid product request")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors aggregates all failed checks of one request so the
// caller sees every problem at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(v))
}

// Reference is a resolved catalog link on the wire.
type Reference struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Response is the wire shape of a product with resolved reference names
// and derived figures.
type Response struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	ProductType Reference `json:"productType"`
	Brand       Reference `json:"brand"`
	Model       Reference `json:"model"`
	Color       Reference `json:"color"`
	Condition   Reference `json:"condition"`

	PurchasePrice    decimal.Decimal `json:"purchasePrice"`
	TransportCost    decimal.Decimal `json:"transportCost"`
	SellingPrice     decimal.Decimal `json:"sellingPrice"`
	TotalCostPrice   decimal.Decimal `json:"totalCostPrice"`
	Margin           decimal.Decimal `json:"margin"`
	MarginPercentage decimal.Decimal `json:"marginPercentage"`
	TotalValue       decimal.Decimal `json:"totalValue"`

	Stock         int  `json:"stock"`
	MinStockLevel int  `json:"minStockLevel"`
	IsLowStock    bool `json:"isLowStock"`
	DaysInStock   int  `json:"daysInStock"`

	Storage    string `json:"storage,omitempty"`
	Memory     string `json:"memory,omitempty"`
	Processor  string `json:"processor,omitempty"`
	ScreenSize string `json:"screenSize,omitempty"`

	SupplierName  string     `json:"supplierName"`
	SupplierCity  string     `json:"supplierCity,omitempty"`
	PurchaseDate  time.Time  `json:"purchaseDate"`
	ArrivalDate   *time.Time `json:"arrivalDate,omitempty"`
	ImportBatch   string     `json:"importBatch"`
	InvoiceNumber string     `json:"invoiceNumber"`

	Status       string `json:"status"`
	Notes        string `json:"notes,omitempty"`
	WarrantyInfo string `json:"warrantyInfo,omitempty"`

	ImageURL      string   `json:"imageUrl,omitempty"`
	ImagesUrls    []string `json:"imagesUrls,omitempty"`
	DocumentsUrls []string `json:"documentsUrls,omitempty"`

	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UpdatedBy string     `json:"updatedBy"`
	IsDeleted bool       `json:"isDeleted,omitempty"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}

type CreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	ProductTypeID string `json:"productTypeId"`
	BrandID       string `json:"brandId"`
	ModelID       string `json:"modelId"`
	ColorID       string `json:"colorId"`
	ConditionID   string `json:"conditionId"`

	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	TransportCost decimal.Decimal `json:"transportCost"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`

	Stock         int  `json:"stock"`
	MinStockLevel *int `json:"minStockLevel"`

	Storage    string `json:"storage"`
	Memory     string `json:"memory"`
	Processor  string `json:"processor"`
	ScreenSize string `json:"screenSize"`

	SupplierName  string     `json:"supplierName"`
	SupplierCity  string     `json:"supplierCity"`
	PurchaseDate  *time.Time `json:"purchaseDate"`
	ArrivalDate   *time.Time `json:"arrivalDate"`
	ImportBatch   string     `json:"importBatch"`
	InvoiceNumber string     `json:"invoiceNumber"`

	Status       string `json:"status"`
	Notes        string `json:"notes"`
	WarrantyInfo string `json:"warrantyInfo"`

	ImageURL      string   `json:"imageUrl"`
	ImagesUrls    []string `json:"imagesUrls"`
	DocumentsUrls []string `json:"documentsUrls"`
}

// UpdateRequest applies partial updates; nil fields are left untouched.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`

	ProductTypeID *string `json:"productTypeId"`
	BrandID       *string `json:"brandId"`
	ModelID       *string `json:"modelId"`
	ColorID       *string `json:"colorId"`
	ConditionID   *string `json:"conditionId"`

	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	TransportCost *decimal.Decimal `json:"transportCost"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`

	Stock         *int `json:"stock"`
	MinStockLevel *int `json:"minStockLevel"`

	Storage    *string `json:"storage"`
	Memory     *string `json:"memory"`
	Processor  *string `json:"processor"`
	ScreenSize *string `json:"screenSize"`

	SupplierName  *string    `json:"supplierName"`
	SupplierCity  *string    `json:"supplierCity"`
	PurchaseDate  *time.Time `json:"purchaseDate"`
	ArrivalDate   *time.Time `json:"arrivalDate"`
	ImportBatch   *string    `json:"importBatch"`
	InvoiceNumber *string    `json:"invoiceNumber"`

	Status       *string `json:"status"`
	Notes        *string `json:"notes"`
	WarrantyInfo *string `json:"warrantyInfo"`

	ImageURL      *string   `json:"imageUrl"`
	ImagesUrls    *[]string `json:"imagesUrls"`
	DocumentsUrls *[]string `json:"documentsUrls"`
}

// ListRequest carries list filters. Exact-match filters are skipped when
// empty; price bounds are inclusive.
type ListRequest struct {
	Query          string           `form:"query"`
	ProductTypeID  string           `form:"productTypeId"`
	BrandID        string           `form:"brandId"`
	Status         string           `form:"status"`
	ImportBatch    string           `form:"importBatch"`
	SupplierName   string           `form:"supplierName"`
	MinPrice       *decimal.Decimal `form:"minPrice"`
	MaxPrice       *decimal.Decimal `form:"maxPrice"`
	LowStock       *bool            `form:"lowStock"`
	IncludeDeleted bool             `form:"includeDeleted"`
	SortBy         string           `form:"sortBy"`
	OrderBy        string           `form:"orderBy"`

	pagination.Pagination
}

type ListResponse struct {
	Items    []Response          `json:"items"`
	PageInfo pagination.PageInfo `json:"pageInfo"`
}

// StockUpdateRequest changes only the stock count. Exactly one of Set or
// Delta must be provided.
type StockUpdateRequest struct {
	Set   *int `json:"set"`
	Delta *int `json:"delta"`
}

type BulkStockRequest struct {
	IDs   []string `json:"ids"`
	Set   *int     `json:"set"`
	Delta *int     `json:"delta"`
}

type BulkPricesRequest struct {
	IDs           []string         `json:"ids"`
	PurchasePrice *decimal.Decimal `json:"purchasePrice"`
	TransportCost *decimal.Decimal `json:"transportCost"`
	SellingPrice  *decimal.Decimal `json:"sellingPrice"`
}

type BulkStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkError reports one failed id inside a bulk operation.
type BulkError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// BulkResult summarizes a bulk operation. Failures never abort the run;
// each id is applied independently.
type BulkResult struct {
	SuccessCount int         `json:"successCount"`
	ErrorCount   int         `json:"errorCount"`
	ProcessedIDs []string    `json:"processedIds"`
	Errors       []BulkError `json:"errors"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string, includeDeleted bool) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
	LowStock(ctx context.Context) ([]Response, error)

	UpdateStock(ctx context.Context, id string, req StockUpdateRequest) (*Response, error)
	MarkStatus(ctx context.Context, id string, status string) (*Response, error)

	BulkUpdateStock(ctx context.Context, req BulkStockRequest) (*BulkResult, error)
	BulkUpdatePrices(ctx context.Context, req BulkPricesRequest) (*BulkResult, error)
	BulkUpdateStatus(ctx context.Context, req BulkStatusRequest) (*BulkResult, error)
	BulkDelete(ctx context.Context, req BulkDeleteRequest) (*BulkResult, error)
}
