package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is one refurbished unit (or batch of identical units) in
// stock. Money columns are fixed-point decimal(12,2); the three derived
// price columns are recomputed on every write that touches a pricing
// input. totalValue and daysInStock are derived at read time and never
// stored.
type Product struct {
	ID          int64  `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(200);not null"`
	Description string `gorm:"type:varchar(1000)"`

	ProductTypeID int64 `gorm:"not null;index"`
	BrandID       int64 `gorm:"not null;index"`
	ModelID       int64 `gorm:"not null;index"`
	ColorID       int64 `gorm:"not null"`
	ConditionID   int64 `gorm:"not null"`

	PurchasePrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TransportCost    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalCostPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Margin           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MarginPercentage decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Stock         int `gorm:"not null;default:0"`
	MinStockLevel int `gorm:"not null;default:5"`

	Storage    string `gorm:"type:text"`
	Memory     string `gorm:"type:text"`
	Processor  string `gorm:"type:text"`
	ScreenSize string `gorm:"type:text"`

	SupplierName  string    `gorm:"type:text;not null"`
	SupplierCity  string    `gorm:"type:text"`
	PurchaseDate  time.Time `gorm:"not null"`
	ArrivalDate   *time.Time
	ImportBatch   string `gorm:"type:text;not null;index"`
	InvoiceNumber string `gorm:"type:text;not null"`

	Status       string `gorm:"type:text;not null;index"`
	Notes        string `gorm:"type:text"`
	WarrantyInfo string `gorm:"type:text"`

	ImageURL      string                      `gorm:"type:text"`
	ImagesUrls    datatypes.JSONSlice[string] `gorm:"column:images_urls"`
	DocumentsUrls datatypes.JSONSlice[string] `gorm:"column:documents_urls"`

	CreatedAt time.Time `gorm:"not null"`
	CreatedBy string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
	UpdatedBy string    `gorm:"type:text;not null"`
	IsDeleted bool      `gorm:"not null;default:false;index"`
	DeletedAt *time.Time
	DeletedBy *string `gorm:"type:text"`
}

func (Product) TableName() string { return "products" }

// IsLowStock reports whether the unit count has reached the reorder
// threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStockLevel
}

// TotalValue is the retail value of the units on hand.
func (p *Product) TotalValue() decimal.Decimal {
	return p.SellingPrice.Mul(decimal.NewFromInt(int64(p.Stock)))
}

// DaysInStock counts whole days since the purchase date.
func (p *Product) DaysInStock(now time.Time) int {
	days := int(now.Sub(p.PurchaseDate).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
