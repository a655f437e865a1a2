package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/restock/internal/actorcontext"
	"github.com/smallbiznis/restock/internal/product/domain"
	"go.uber.org/zap"
)

func (s *Service) UpdateStock(ctx context.Context, id string, req domain.StockUpdateRequest) (*domain.Response, error) {
	if (req.Set == nil) == (req.Delta == nil) {
		return nil, domain.ValidationErrors{{
			Field: "stock", Code: "invalid", Message: "exactly one of set or delta must be provided",
		}}
	}

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

	next := product.Stock
	if req.Set != nil {
		next = *req.Set
	} else {
		next += *req.Delta
	}
	if next < 0 {
		return nil, domain.ErrNegativeStock
	}

	wasLow := product.IsLowStock()
	product.Stock = next
	product.UpdatedAt = s.clock.Now()
	product.UpdatedBy = actorcontext.ActorOrSystem(ctx)

	if err := s.repo.Save(ctx, s.db, product); err != nil {
		s.log.Error("update stock", zap.Int64("product_id", product.ID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordProductWrite(ctx, "update_stock")
	if !wasLow && product.IsLowStock() {
		s.metrics.RecordLowStockFlagged(ctx)
		s.log.Warn("product fell below minimum stock level",
			zap.Int64("product_id", product.ID),
			zap.Int("stock", product.Stock),
			zap.Int("min_stock_level", product.MinStockLevel),
		)
	}

	return s.toResponse(ctx, product)
}

func (s *Service) MarkStatus(ctx context.Context, id string, status string) (*domain.Response, error) {
	status = strings.TrimSpace(status)
	if !s.policy.Get().StatusAllowed(status) {
		return nil, domain.ErrInvalidStatus
	}

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

	product.Status = status
	product.UpdatedAt = s.clock.Now()
	product.UpdatedBy = actorcontext.ActorOrSystem(ctx)

	if err := s.repo.Save(ctx, s.db, product); err != nil {
		s.log.Error("mark status", zap.Int64("product_id", product.ID), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordProductWrite(ctx, "mark_status")
	return s.toResponse(ctx, product)
}

// runBulk applies op to each id in order. A failing id is recorded and
// skipped; the rest of the batch still runs.
func (s *Service) runBulk(ctx context.Context, operation string, ids []string, op func(ctx context.Context, id string) error) (*domain.BulkResult, error) {
	if len(ids) == 0 {
		return nil, domain.ErrEmptyBulk
	}

	result := &domain.BulkResult{
		ProcessedIDs: make([]string, 0, len(ids)),
		Errors:       []domain.BulkError{},
	}
	for _, id := range ids {
		if err := op(ctx, id); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, domain.BulkError{ID: id, Message: err.Error()})
			s.metrics.RecordBulkItem(ctx, operation, "error")
			continue
		}
		result.SuccessCount++
		result.ProcessedIDs = append(result.ProcessedIDs, id)
		s.metrics.RecordBulkItem(ctx, operation, "success")
	}

	s.log.Info("bulk operation finished",
		zap.String("operation", operation),
		zap.Int("success_count", result.SuccessCount),
		zap.Int("error_count", result.ErrorCount),
	)
	return result, nil
}

func (s *Service) BulkUpdateStock(ctx context.Context, req domain.BulkStockRequest) (*domain.BulkResult, error) {
	if (req.Set == nil) == (req.Delta == nil) {
		return nil, domain.ValidationErrors{{
			Field: "stock", Code: "invalid", Message: "exactly one of set or delta must be provided",
		}}
	}
	return s.runBulk(ctx, "bulk_stock", req.IDs, func(ctx context.Context, id string) error {
		_, err := s.UpdateStock(ctx, id, domain.StockUpdateRequest{Set: req.Set, Delta: req.Delta})
		return err
	})
}

func (s *Service) BulkUpdatePrices(ctx context.Context, req domain.BulkPricesRequest) (*domain.BulkResult, error) {
	if req.PurchasePrice == nil && req.TransportCost == nil && req.SellingPrice == nil {
		return nil, domain.ValidationErrors{{
			Field: "prices", Code: "invalid", Message: "at least one price field must be provided",
		}}
	}
	return s.runBulk(ctx, "bulk_prices", req.IDs, func(ctx context.Context, id string) error {
		_, err := s.Update(ctx, id, domain.UpdateRequest{
			PurchasePrice: req.PurchasePrice,
			TransportCost: req.TransportCost,
			SellingPrice:  req.SellingPrice,
		})
		return err
	})
}

func (s *Service) BulkUpdateStatus(ctx context.Context, req domain.BulkStatusRequest) (*domain.BulkResult, error) {
	status := strings.TrimSpace(req.Status)
	if !s.policy.Get().StatusAllowed(status) {
		return nil, domain.ErrInvalidStatus
	}
	return s.runBulk(ctx, "bulk_status", req.IDs, func(ctx context.Context, id string) error {
		_, err := s.MarkStatus(ctx, id, status)
		return err
	})
}

func (s *Service) BulkDelete(ctx context.Context, req domain.BulkDeleteRequest) (*domain.BulkResult, error) {
	return s.runBulk(ctx, "bulk_delete", req.IDs, func(ctx context.Context, id string) error {
		return s.Delete(ctx, id)
	})
}
