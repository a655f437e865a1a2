package service

import (
	"context"
	"strconv"

	"github.com/smallbiznis/restock/internal/product/domain"
	"github.com/smallbiznis/restock/pkg/db/pagination"
)

func formatID(id int64) string { return strconv.FormatInt(id, 10) }

func pageInfo(req domain.ListRequest, total int64) pagination.PageInfo {
	return pagination.BuildPageInfo(req.Pagination, total)
}

// referenceNames maps catalog ids to display names per table.
type referenceNames struct {
	productTypes map[int64]string
	brands       map[int64]string
	models       map[int64]string
	colors       map[int64]string
	conditions   map[int64]string
}

func (n referenceNames) lookup(table map[int64]string, id int64) domain.Reference {
	return domain.Reference{ID: formatID(id), Name: table[id]}
}

// resolveNames batch-loads the catalog names referenced by the given
// products, one query per table.
func (s *Service) resolveNames(ctx context.Context, products []domain.Product) (referenceNames, error) {
	names := referenceNames{
		productTypes: make(map[int64]string),
		brands:       make(map[int64]string),
		models:       make(map[int64]string),
		colors:       make(map[int64]string),
		conditions:   make(map[int64]string),
	}

	collect := func(pick func(*domain.Product) int64) []int64 {
		seen := make(map[int64]struct{}, len(products))
		ids := make([]int64, 0, len(products))
		for i := range products {
			id := pick(&products[i])
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
		return ids
	}

	productTypes, err := s.catalogRepo.ProductTypesByIDs(ctx, s.db, collect(func(p *domain.Product) int64 { return p.ProductTypeID }))
	if err != nil {
		return names, err
	}
	for _, row := range productTypes {
		names.productTypes[row.ID] = row.Name
	}

	brands, err := s.catalogRepo.BrandsByIDs(ctx, s.db, collect(func(p *domain.Product) int64 { return p.BrandID }))
	if err != nil {
		return names, err
	}
	for _, row := range brands {
		names.brands[row.ID] = row.Name
	}

	models, err := s.catalogRepo.ModelsByIDs(ctx, s.db, collect(func(p *domain.Product) int64 { return p.ModelID }))
	if err != nil {
		return names, err
	}
	for _, row := range models {
		names.models[row.ID] = row.Name
	}

	colors, err := s.catalogRepo.ColorsByIDs(ctx, s.db, collect(func(p *domain.Product) int64 { return p.ColorID }))
	if err != nil {
		return names, err
	}
	for _, row := range colors {
		names.colors[row.ID] = row.Name
	}

	conditions, err := s.catalogRepo.ConditionsByIDs(ctx, s.db, collect(func(p *domain.Product) int64 { return p.ConditionID }))
	if err != nil {
		return names, err
	}
	for _, row := range conditions {
		names.conditions[row.ID] = row.Name
	}

	return names, nil
}

func (s *Service) toResponse(ctx context.Context, product *domain.Product) (*domain.Response, error) {
	responses, err := s.toResponses(ctx, []domain.Product{*product})
	if err != nil {
		return nil, err
	}
	return &responses[0], nil
}

func (s *Service) toResponses(ctx context.Context, products []domain.Product) ([]domain.Response, error) {
	names, err := s.resolveNames(ctx, products)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	responses := make([]domain.Response, 0, len(products))
	for i := range products {
		p := &products[i]
		responses = append(responses, domain.Response{
			ID:          formatID(p.ID),
			Name:        p.Name,
			Description: p.Description,

			ProductType: names.lookup(names.productTypes, p.ProductTypeID),
			Brand:       names.lookup(names.brands, p.BrandID),
			Model:       names.lookup(names.models, p.ModelID),
			Color:       names.lookup(names.colors, p.ColorID),
			Condition:   names.lookup(names.conditions, p.ConditionID),

			PurchasePrice:    p.PurchasePrice,
			TransportCost:    p.TransportCost,
			SellingPrice:     p.SellingPrice,
			TotalCostPrice:   p.TotalCostPrice,
			Margin:           p.Margin,
			MarginPercentage: p.MarginPercentage,
			TotalValue:       p.TotalValue(),

			Stock:         p.Stock,
			MinStockLevel: p.MinStockLevel,
			IsLowStock:    p.IsLowStock(),
			DaysInStock:   p.DaysInStock(now),

			Storage:    p.Storage,
			Memory:     p.Memory,
			Processor:  p.Processor,
			ScreenSize: p.ScreenSize,

			SupplierName:  p.SupplierName,
			SupplierCity:  p.SupplierCity,
			PurchaseDate:  p.PurchaseDate,
			ArrivalDate:   p.ArrivalDate,
			ImportBatch:   p.ImportBatch,
			InvoiceNumber: p.InvoiceNumber,

			Status:       p.Status,
			Notes:        p.Notes,
			WarrantyInfo: p.WarrantyInfo,

			ImageURL:      p.ImageURL,
			ImagesUrls:    p.ImagesUrls,
			DocumentsUrls: p.DocumentsUrls,

			CreatedAt: p.CreatedAt,
			CreatedBy: p.CreatedBy,
			UpdatedAt: p.UpdatedAt,
			UpdatedBy: p.UpdatedBy,
			IsDeleted: p.IsDeleted,
			DeletedAt: p.DeletedAt,
		})
	}
	return responses, nil
}
