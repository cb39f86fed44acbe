package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	DefaultUnit           = "unité"
	DefaultAlertThreshold = 10
)

// Product is a catalog entry. Deleting a product only clears Active so that
// shopping lists referencing it keep resolving.
type Product struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Code           string    `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Name           string    `gorm:"size:255;not null;index" json:"name"`
	Description    string    `gorm:"type:text;not null" json:"description"`
	UnitPrice      float64   `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Unit           string    `gorm:"size:50;not null" json:"unit"`
	CategoryID     int       `gorm:"not null;index" json:"category_id"`
	SupplierID     *int      `json:"supplier_id,omitempty"`
	AlertThreshold int       `gorm:"not null" json:"alert_threshold"`
	ImageURL       string    `gorm:"size:500" json:"image_url,omitempty"`
	Active         bool      `gorm:"not null;index" json:"active"`
	// SearchKey is name, code and description lower-cased in Go, so matching
	// does not depend on how the database folds non-ASCII letters.
	SearchKey string `gorm:"type:text;not null;default:''" json:"-"`
}

// BeforeSave refreshes SearchKey on Create and Save.
func (p *Product) BeforeSave(*gorm.DB) error {
	if p.Code == "" && p.Name == "" {
		return nil
	}
	p.SearchKey = ProductSearchKey(p.Name, p.Code, p.Description)
	return nil
}

// ProductSearchKey folds the searchable fields into one lower-case string.
func ProductSearchKey(name, code, description string) string {
	return strings.ToLower(name + "\n" + code + "\n" + description)
}

// FoldSearch lower-cases a search term the same way as ProductSearchKey.
func FoldSearch(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// NormalizeCode trims and upper-cases a product code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
