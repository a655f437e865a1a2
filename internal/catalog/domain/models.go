package domain

import (
	"time"
)

// Audit carries the write trail and soft-delete markers shared by every
// catalog table. Rows are never hard-deleted; IsDeleted hides them from
// all normal queries.
type Audit struct {
	CreatedAt time.Time  `json:"createdAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	CreatedBy string     `json:"createdBy" gorm:"type:text;not null"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedBy string     `json:"updatedBy" gorm:"type:text;not null"`
	IsDeleted bool       `json:"isDeleted" gorm:"not null;default:false"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
	DeletedBy *string    `json:"deletedBy,omitempty" gorm:"type:text"`
}

type ProductType struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"type:text;not null"`
	Slug      string `json:"slug" gorm:"type:text;not null"`
	SortOrder int    `json:"sortOrder" gorm:"not null;default:0"`
	IsActive  bool   `json:"isActive" gorm:"not null;default:true"`
	Audit     `gorm:"embedded"`
}

func (ProductType) TableName() string { return "product_types" }

type Brand struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	ProductTypeID int64  `json:"productTypeId" gorm:"not null;index"`
	Name          string `json:"name" gorm:"type:text;not null"`
	Slug          string `json:"slug" gorm:"type:text;not null"`
	SortOrder     int    `json:"sortOrder" gorm:"not null;default:0"`
	IsActive      bool   `json:"isActive" gorm:"not null;default:true"`
	Audit         `gorm:"embedded"`
}

func (Brand) TableName() string { return "brands" }

// Model carries both parents; ProductTypeID must always equal the parent
// brand's ProductTypeID.
type Model struct {
	ID            int64  `json:"id" gorm:"primaryKey"`
	ProductTypeID int64  `json:"productTypeId" gorm:"not null;index"`
	BrandID       int64  `json:"brandId" gorm:"not null;index"`
	Name          string `json:"name" gorm:"type:text;not null"`
	Slug          string `json:"slug" gorm:"type:text;not null"`
	SortOrder     int    `json:"sortOrder" gorm:"not null;default:0"`
	IsActive      bool   `json:"isActive" gorm:"not null;default:true"`
	Audit         `gorm:"embedded"`
}

func (Model) TableName() string { return "models" }

type Color struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"type:text;not null"`
	Slug      string `json:"slug" gorm:"type:text;not null"`
	SortOrder int    `json:"sortOrder" gorm:"not null;default:0"`
	IsActive  bool   `json:"isActive" gorm:"not null;default:true"`
	Audit     `gorm:"embedded"`
}

func (Color) TableName() string { return "colors" }

type Condition struct {
	ID                int64  `json:"id" gorm:"primaryKey"`
	Name              string `json:"name" gorm:"type:text;not null"`
	Slug              string `json:"slug" gorm:"type:text;not null"`
	QualityPercentage int    `json:"qualityPercentage" gorm:"not null;default:100"`
	SortOrder         int    `json:"sortOrder" gorm:"not null;default:0"`
	IsActive          bool   `json:"isActive" gorm:"not null;default:true"`
	Audit             `gorm:"embedded"`
}

func (Condition) TableName() string { return "conditions" }
