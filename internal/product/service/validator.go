package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/restock/internal/product/domain"
)

type relationInput struct {
	ProductTypeID string
	BrandID       string
	ModelID       string
	ColorID       string
	ConditionID   string
}

type relationIDs struct {
	productTypeID int64
	brandID       int64
	modelID       int64
	colorID       int64
	conditionID   int64
}

func (s *Service) parseRelations(in relationInput) (relationIDs, domain.ValidationErrors) {
	var errs domain.ValidationErrors
	parse := func(field, raw string) int64 {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			errs = append(errs, domain.FieldError{Field: field, Code: "required", Message: field + " is required"})
			return 0
		}
		return int64(id)
	}

	refs := relationIDs{
		productTypeID: parse("productTypeId", in.ProductTypeID),
		brandID:       parse("brandId", in.BrandID),
		modelID:       parse("modelId", in.ModelID),
		colorID:       parse("colorId", in.ColorID),
		conditionID:   parse("conditionId", in.ConditionID),
	}
	return refs, errs
}

// validateRelations checks that every reference points at a live catalog
// row and that the brand/model hierarchy is consistent. All failures are
// collected so a bad request reports each broken reference at once.
func (s *Service) validateRelations(ctx context.Context, refs relationIDs) error {
	var errs domain.ValidationErrors

	productType, err := s.catalogRepo.FindProductTypeByID(ctx, s.db, refs.productTypeID)
	if err != nil {
		return err
	}
	if productType == nil || !productType.IsActive {
		errs = append(errs, domain.FieldError{Field: "productTypeId", Code: "invalid_reference", Message: "product type does not exist or is inactive"})
	}

	brand, err := s.catalogRepo.FindBrandByID(ctx, s.db, refs.brandID)
	if err != nil {
		return err
	}
	switch {
	case brand == nil || !brand.IsActive:
		errs = append(errs, domain.FieldError{Field: "brandId", Code: "invalid_reference", Message: "brand does not exist or is inactive"})
	case brand.ProductTypeID != refs.productTypeID:
		errs = append(errs, domain.FieldError{Field: "brandId", Code: "hierarchy_mismatch", Message: "brand does not belong to the product type"})
	}

	model, err := s.catalogRepo.FindModelByID(ctx, s.db, refs.modelID)
	if err != nil {
		return err
	}
	switch {
	case model == nil || !model.IsActive:
		errs = append(errs, domain.FieldError{Field: "modelId", Code: "invalid_reference", Message: "model does not exist or is inactive"})
	case model.BrandID != refs.brandID || model.ProductTypeID != refs.productTypeID:
		errs = append(errs, domain.FieldError{Field: "modelId", Code: "hierarchy_mismatch", Message: "model does not belong to the brand and product type"})
	}

	color, err := s.catalogRepo.FindColorByID(ctx, s.db, refs.colorID)
	if err != nil {
		return err
	}
	if color == nil || !color.IsActive {
		errs = append(errs, domain.FieldError{Field: "colorId", Code: "invalid_reference", Message: "color does not exist or is inactive"})
	}

	condition, err := s.catalogRepo.FindConditionByID(ctx, s.db, refs.conditionID)
	if err != nil {
		return err
	}
	if condition == nil || !condition.IsActive {
		errs = append(errs, domain.FieldError{Field: "conditionId", Code: "invalid_reference", Message: "condition does not exist or is inactive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
