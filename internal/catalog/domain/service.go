package domain

import (
	"context"
	"errors"
)

// Kind selects which reference table an admin operation targets.
type Kind string

const (
	KindProductType Kind = "product-types"
	KindBrand       Kind = "brands"
	KindModel       Kind = "models"
	KindColor       Kind = "colors"
	KindCondition   Kind = "conditions"
)

// ValidKind reports whether k names a reference table.
func ValidKind(k Kind) bool {
	switch k {
	case KindProductType, KindBrand, KindModel, KindColor, KindCondition:
		return true
	}
	return false
}

var (
	ErrNotFound          = errors.New("catalog entry not found")
	ErrInvalidKind       = errors.New("unknown catalog kind")
	ErrInvalidName       = errors.New("catalog name is required")
	ErrDuplicateName     = errors.New("catalog name already exists")
	ErrInvalidParent     = errors.New("parent reference is invalid")
	ErrInUse             = errors.New("catalog entry is referenced by products")
	ErrInvalidPercentage = errors.New("quality percentage must be between 0 and 100")
)

// Item is the wire shape for a catalog row of any kind. Parent ids and
// the quality percentage are present only for the kinds that carry them.
type Item struct {
	ID                string  `json:"id"`
	Kind              Kind    `json:"kind"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	SortOrder         int     `json:"sortOrder"`
	IsActive          bool    `json:"isActive"`
	ProductTypeID     *string `json:"productTypeId,omitempty"`
	BrandID           *string `json:"brandId,omitempty"`
	QualityPercentage *int    `json:"qualityPercentage,omitempty"`
}

// Option is one entry of a dropdown response.
type Option struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Slug              string `json:"slug"`
	QualityPercentage *int   `json:"qualityPercentage,omitempty"`
}

type CreateRequest struct {
	Kind              Kind   `json:"-"`
	Name              string `json:"name"`
	SortOrder         int    `json:"sortOrder"`
	ProductTypeID     string `json:"productTypeId"`
	BrandID           string `json:"brandId"`
	QualityPercentage *int   `json:"qualityPercentage"`
}

type UpdateRequest struct {
	Kind              Kind    `json:"-"`
	ID                string  `json:"-"`
	Name              *string `json:"name"`
	SortOrder         *int    `json:"sortOrder"`
	IsActive          *bool   `json:"isActive"`
	QualityPercentage *int    `json:"qualityPercentage"`
}

// Service exposes the dropdown reads used by the product forms and the
// admin maintenance operations on the reference tables.
type Service interface {
	ProductTypeOptions(ctx context.Context) ([]Option, error)
	BrandOptions(ctx context.Context, productTypeID string) ([]Option, error)
	ModelOptions(ctx context.Context, productTypeID, brandID string) ([]Option, error)
	ColorOptions(ctx context.Context) ([]Option, error)
	ConditionOptions(ctx context.Context) ([]Option, error)

	List(ctx context.Context, kind Kind) ([]Item, error)
	Create(ctx context.Context, req CreateRequest) (*Item, error)
	Update(ctx context.Context, req UpdateRequest) (*Item, error)
	Archive(ctx context.Context, kind Kind, id string) error
}
