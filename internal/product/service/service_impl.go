package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/restock/internal/actorcontext"
	catalogdomain "github.com/smallbiznis/restock/internal/catalog/domain"
	"github.com/smallbiznis/restock/internal/clock"
	"github.com/smallbiznis/restock/internal/config"
	"github.com/smallbiznis/restock/internal/observability/metrics"
	"github.com/smallbiznis/restock/internal/product/domain"
	"github.com/smallbiznis/restock/pkg/db/option"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	CatalogRepo catalogdomain.Repository
	Policy      *config.StockPolicyHolder
	Metrics     *metrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	catalogRepo catalogdomain.Repository
	policy      *config.StockPolicyHolder
	metrics     *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("product.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		policy:      p.Policy,
		metrics:     p.Metrics,
	}
}

func parseID(raw string) (int64, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return int64(id), nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	policy := s.policy.Get()

	var fieldErrs domain.ValidationErrors
	name := strings.TrimSpace(req.Name)
	if name == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "name", Code: "required", Message: "name is required"})
	}
	if len(name) > 200 {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "name", Code: "too_long", Message: "name exceeds 200 characters"})
	}
	if strings.TrimSpace(req.Description) == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "description", Code: "required", Message: "description is required"})
	}
	if len(req.Description) > 1000 {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "description", Code: "too_long", Message: "description exceeds 1000 characters"})
	}
	if !req.PurchasePrice.IsPositive() {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "purchasePrice", Code: "invalid", Message: "purchase price must be greater than zero"})
	}
	if req.TransportCost.IsNegative() {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "transportCost", Code: "invalid", Message: "transport cost cannot be negative"})
	}
	if !req.SellingPrice.IsPositive() {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "sellingPrice", Code: "invalid", Message: "selling price must be greater than zero"})
	}
	if req.Stock < 0 {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "stock", Code: "invalid", Message: "stock cannot be negative"})
	}
	if req.MinStockLevel != nil && *req.MinStockLevel < 0 {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "minStockLevel", Code: "invalid", Message: "minimum stock level cannot be negative"})
	}
	if strings.TrimSpace(req.SupplierName) == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "supplierName", Code: "required", Message: "supplier name is required"})
	}
	if strings.TrimSpace(req.ImportBatch) == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "importBatch", Code: "required", Message: "import batch is required"})
	}
	if strings.TrimSpace(req.InvoiceNumber) == "" {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "invoiceNumber", Code: "required", Message: "invoice number is required"})
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = policy.DefaultStatus
	} else if !policy.StatusAllowed(status) {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: "status", Code: "invalid", Message: "status is not allowed by stock policy"})
	}

	refs, refErrs := s.parseRelations(relationInput{
		ProductTypeID: req.ProductTypeID,
		BrandID:       req.BrandID,
		ModelID:       req.ModelID,
		ColorID:       req.ColorID,
		ConditionID:   req.ConditionID,
	})
	fieldErrs = append(fieldErrs, refErrs...)
	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}
	if err := s.validateRelations(ctx, refs); err != nil {
		return nil, err
	}

	minStock := policy.DefaultMinStockLevel
	if req.MinStockLevel != nil {
		minStock = *req.MinStockLevel
	}

	now := s.clock.Now()
	purchaseDate := now
	if req.PurchaseDate != nil {
		purchaseDate = req.PurchaseDate.UTC()
	}

	prices := domain.ComputePrices(req.PurchasePrice, req.TransportCost, req.SellingPrice)
	actor := actorcontext.ActorOrSystem(ctx)

	product := &domain.Product{
		ID:          s.genID.Generate().Int64(),
		Name:        name,
		Description: req.Description,

		ProductTypeID: refs.productTypeID,
		BrandID:       refs.brandID,
		ModelID:       refs.modelID,
		ColorID:       refs.colorID,
		ConditionID:   refs.conditionID,

		PurchasePrice:    req.PurchasePrice,
		TransportCost:    req.TransportCost,
		SellingPrice:     req.SellingPrice,
		TotalCostPrice:   prices.TotalCostPrice,
		Margin:           prices.Margin,
		MarginPercentage: prices.MarginPercentage,

		Stock:         req.Stock,
		MinStockLevel: minStock,

		Storage:    strings.TrimSpace(req.Storage),
		Memory:     strings.TrimSpace(req.Memory),
		Processor:  strings.TrimSpace(req.Processor),
		ScreenSize: strings.TrimSpace(req.ScreenSize),

		SupplierName:  strings.TrimSpace(req.SupplierName),
		SupplierCity:  strings.TrimSpace(req.SupplierCity),
		PurchaseDate:  purchaseDate,
		ArrivalDate:   req.ArrivalDate,
		ImportBatch:   strings.TrimSpace(req.ImportBatch),
		InvoiceNumber: strings.TrimSpace(req.InvoiceNumber),

		Status:       status,
		Notes:        req.Notes,
		WarrantyInfo: req.WarrantyInfo,

		ImageURL:      strings.TrimSpace(req.ImageURL),
		ImagesUrls:    datatypes.NewJSONSlice(req.ImagesUrls),
		DocumentsUrls: datatypes.NewJSONSlice(req.DocumentsUrls),

		CreatedAt: now,
		CreatedBy: actor,
		UpdatedAt: now,
		UpdatedBy: actor,
	}

	if err := s.repo.Create(ctx, s.db, product); err != nil {
		s.log.Error("create product", zap.Error(err))
		return nil, err
	}

	s.metrics.RecordProductWrite(ctx, "create")
	if product.IsLowStock() {
		s.metrics.RecordLowStockFlagged(ctx)
	}
	s.log.Info("product created",
		zap.Int64("product_id", product.ID),
		zap.String("import_batch", product.ImportBatch),
	)

	return s.toResponse(ctx, product)
}

func (s *Service) Get(ctx context.Context, id string, includeDeleted bool) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	product, err := s.repo.FindByID(ctx, s.db, productID, includeDeleted)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return s.toResponse(ctx, product)
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	product, err := s.repo.FindByID(ctx, s.db, productID, false)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	var fieldErrs domain.ValidationErrors
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		switch {
		case name == "":
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "name", Code: "required", Message: "name is required"})
		case len(name) > 200:
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "name", Code: "too_long", Message: "name exceeds 200 characters"})
		default:
			product.Name = name
		}
	}
	if req.Description != nil {
		if len(*req.Description) > 1000 {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "description", Code: "too_long", Message: "description exceeds 1000 characters"})
		} else {
			product.Description = *req.Description
		}
	}

	if req.PurchasePrice != nil {
		if !req.PurchasePrice.IsPositive() {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "purchasePrice", Code: "invalid", Message: "purchase price must be greater than zero"})
		} else {
			product.PurchasePrice = *req.PurchasePrice
		}
	}
	if req.TransportCost != nil {
		if req.TransportCost.IsNegative() {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "transportCost", Code: "invalid", Message: "transport cost cannot be negative"})
		} else {
			product.TransportCost = *req.TransportCost
		}
	}
	if req.SellingPrice != nil {
		if !req.SellingPrice.IsPositive() {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "sellingPrice", Code: "invalid", Message: "selling price must be greater than zero"})
		} else {
			product.SellingPrice = *req.SellingPrice
		}
	}

	if req.Stock != nil {
		if *req.Stock < 0 {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "stock", Code: "invalid", Message: "stock cannot be negative"})
		} else {
			product.Stock = *req.Stock
		}
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "minStockLevel", Code: "invalid", Message: "minimum stock level cannot be negative"})
		} else {
			product.MinStockLevel = *req.MinStockLevel
		}
	}

	if req.Status != nil {
		status := strings.TrimSpace(*req.Status)
		if !s.policy.Get().StatusAllowed(status) {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "status", Code: "invalid", Message: "status is not allowed by stock policy"})
		} else {
			product.Status = status
		}
	}
	if req.SupplierName != nil {
		name := strings.TrimSpace(*req.SupplierName)
		if name == "" {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "supplierName", Code: "required", Message: "supplier name is required"})
		} else {
			product.SupplierName = name
		}
	}
	if req.ImportBatch != nil {
		batch := strings.TrimSpace(*req.ImportBatch)
		if batch == "" {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "importBatch", Code: "required", Message: "import batch is required"})
		} else {
			product.ImportBatch = batch
		}
	}
	if req.InvoiceNumber != nil {
		invoice := strings.TrimSpace(*req.InvoiceNumber)
		if invoice == "" {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: "invoiceNumber", Code: "required", Message: "invoice number is required"})
		} else {
			product.InvoiceNumber = invoice
		}
	}

	relationsChanged := req.ProductTypeID != nil || req.BrandID != nil || req.ModelID != nil ||
		req.ColorID != nil || req.ConditionID != nil
	if relationsChanged {
		input := relationInput{
			ProductTypeID: formatID(product.ProductTypeID),
			BrandID:       formatID(product.BrandID),
			ModelID:       formatID(product.ModelID),
			ColorID:       formatID(product.ColorID),
			ConditionID:   formatID(product.ConditionID),
		}
		if req.ProductTypeID != nil {
			input.ProductTypeID = *req.ProductTypeID
		}
		if req.BrandID != nil {
			input.BrandID = *req.BrandID
		}
		if req.ModelID != nil {
			input.ModelID = *req.ModelID
		}
		if req.ColorID != nil {
			input.ColorID = *req.ColorID
		}
		if req.ConditionID != nil {
			input.ConditionID = *req.ConditionID
		}

		refs, refErrs := s.parseRelations(input)
		fieldErrs = append(fieldErrs, refErrs...)
		if len(refErrs) == 0 {
			if err := s.validateRelations(ctx, refs); err != nil {
				var relErrs domain.ValidationErrors
				if !errors.As(err, &relErrs) {
					return nil, err
				}
				// Relation failures join the other field errors so the
				// caller sees everything wrong with the request at once.
				fieldErrs = append(fieldErrs, relErrs...)
			} else {
				product.ProductTypeID = refs.productTypeID
				product.BrandID = refs.brandID
				product.ModelID = refs.modelID
				product.ColorID = refs.colorID
				product.ConditionID = refs.conditionID
			}
		}
	}

	if len(fieldErrs) > 0 {
		return nil, fieldErrs
	}

	if req.Storage != nil {
		product.Storage = strings.TrimSpace(*req.Storage)
	}
	if req.Memory != nil {
		product.Memory = strings.TrimSpace(*req.Memory)
	}
	if req.Processor != nil {
		product.Processor = strings.TrimSpace(*req.Processor)
	}
	if req.ScreenSize != nil {
		product.ScreenSize = strings.TrimSpace(*req.ScreenSize)
	}
	if req.SupplierCity != nil {
		product.SupplierCity = strings.TrimSpace(*req.SupplierCity)
	}
	if req.PurchaseDate != nil {
		product.PurchaseDate = req.PurchaseDate.UTC()
	}
	if req.ArrivalDate != nil {
		product.ArrivalDate = req.ArrivalDate
	}
	if req.Notes != nil {
		product.Notes = *req.Notes
	}
	if req.WarrantyInfo != nil {
		product.WarrantyInfo = *req.WarrantyInfo
	}
	if req.ImageURL != nil {
		product.ImageURL = strings.TrimSpace(*req.ImageURL)
	}
	if req.ImagesUrls != nil {
		product.ImagesUrls = datatypes.NewJSONSlice(*req.ImagesUrls)
	}
	if req.DocumentsUrls != nil {
		product.DocumentsUrls = datatypes.NewJSONSlice(*req.DocumentsUrls)
	}

	// Derived prices always reflect the effective values after a write.
	prices := domain.ComputePrices(product.PurchasePrice, product.TransportCost, product.SellingPrice)
	product.TotalCostPrice = prices.TotalCostPrice
	product.Margin = prices.Margin
	product.MarginPercentage = prices.MarginPercentage

	product.UpdatedAt = s.clock.Now()
	product.UpdatedBy = actorcontext.ActorOrSystem(ctx)

	if err := s.repo.Save(ctx, s.db, product); err != nil {
		s.log.Error("update product", zap.Int64("product_id", product.ID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordProductWrite(ctx, "update")
	if product.IsLowStock() {
		s.metrics.RecordLowStockFlagged(ctx)
	}

	return s.toResponse(ctx, product)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return domain.ErrNotFound
	}

	product, err := s.repo.FindByID(ctx, s.db, productID, false)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	now := s.clock.Now()
	actor := actorcontext.ActorOrSystem(ctx)
	product.IsDeleted = true
	product.DeletedAt = &now
	product.DeletedBy = &actor
	product.UpdatedAt = now
	product.UpdatedBy = actor

	if err := s.repo.Save(ctx, s.db, product); err != nil {
		s.log.Error("delete product", zap.Int64("product_id", product.ID), zap.Error(err))
		return err
	}

	s.metrics.RecordProductWrite(ctx, "delete")
	s.log.Info("product deleted", zap.Int64("product_id", product.ID))
	return nil
}

// Sort columns are qualified because the search path joins the
// reference tables, which carry their own name and audit columns.
var productSortColumns = map[string]string{
	"name":          "products.name",
	"created_at":    "products.created_at",
	"updated_at":    "products.updated_at",
	"selling_price": "products.selling_price",
	"stock":         "products.stock",
	"purchase_date": "products.purchase_date",
	"status":        "products.status",
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.ListResponse, error) {
	filter := domain.ListFilter{
		Query:          strings.TrimSpace(req.Query),
		Status:         strings.TrimSpace(req.Status),
		ImportBatch:    strings.TrimSpace(req.ImportBatch),
		SupplierName:   strings.TrimSpace(req.SupplierName),
		MinPrice:       req.MinPrice,
		MaxPrice:       req.MaxPrice,
		LowStock:       req.LowStock,
		IncludeDeleted: req.IncludeDeleted,
		Offset:         req.Offset(),
		Limit:          req.Limit(),
	}

	// Unparseable reference filters cannot match any row.
	if raw := strings.TrimSpace(req.ProductTypeID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return &domain.ListResponse{
				Items:    []domain.Response{},
				PageInfo: pageInfo(req, 0),
			}, nil
		}
		filter.ProductTypeID = &id
	}
	if raw := strings.TrimSpace(req.BrandID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return &domain.ListResponse{
				Items:    []domain.Response{},
				PageInfo: pageInfo(req, 0),
			}, nil
		}
		filter.BrandID = &id
	}

	filter.SortClause = option.WithQuerySortBy(req.SortBy, req.OrderBy, "products.created_at DESC", productSortColumns)

	items, total, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	responses, err := s.toResponses(ctx, items)
	if err != nil {
		return nil, err
	}
	return &domain.ListResponse{
		Items:    responses,
		PageInfo: pageInfo(req, total),
	}, nil
}

func (s *Service) LowStock(ctx context.Context) ([]domain.Response, error) {
	items, err := s.repo.ListLowStock(ctx, s.db)
	if err != nil {
		return nil, err
	}
	return s.toResponses(ctx, items)
}
