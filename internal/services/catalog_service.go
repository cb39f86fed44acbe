package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/validation"
)

// ProductFilter narrows a catalog listing. Unset fields impose no constraint.
type ProductFilter struct {
	// Search is matched case-insensitively against name, code and description.
	Search   string
	Category *int
	Active   *bool
}

// ProductInput holds the fields of a new product.
type ProductInput struct {
	Code           string
	Name           string
	Description    string
	UnitPrice      float64
	Unit           string
	CategoryID     int
	SupplierID     *int
	AlertThreshold *int
	ImageURL       string
	Active         *bool
}

// ProductPatch is a partial product update; nil fields are left unchanged.
type ProductPatch struct {
	Code           *string
	Name           *string
	Description    *string
	UnitPrice      *float64
	Unit           *string
	CategoryID     *int
	SupplierID     *int
	AlertThreshold *int
	ImageURL       *string
	Active         *bool
}

// CatalogService manages products.
type CatalogService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db, now: time.Now}
}

// List returns the products matching f ordered by name.
func (s *CatalogService) List(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Model(&models.Product{})
	if term := models.FoldSearch(f.Search); term != "" {
		q = q.Where("search_key LIKE ? ESCAPE '\\'", "%"+escapeLike(term)+"%")
	}
	if f.Category != nil {
		q = q.Where("category_id = ?", *f.Category)
	}
	if f.Active != nil {
		q = q.Where("active = ?", *f.Active)
	}
	products := []models.Product{}
	if err := q.Order("name ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, storageErr("list products", err)
	}
	return products, nil
}

// Get returns a product by id, active or not.
func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, storageErr("get product", err)
	}
	return &p, nil
}

// Create adds a product. Codes are unique and stored upper-case.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := models.Product{
		Code:           models.NormalizeCode(in.Code),
		Name:           strings.TrimSpace(in.Name),
		Description:    strings.TrimSpace(in.Description),
		UnitPrice:      in.UnitPrice,
		Unit:           strings.TrimSpace(in.Unit),
		CategoryID:     in.CategoryID,
		SupplierID:     in.SupplierID,
		AlertThreshold: models.DefaultAlertThreshold,
		ImageURL:       strings.TrimSpace(in.ImageURL),
		Active:         true,
	}
	if p.Unit == "" {
		p.Unit = models.DefaultUnit
	}
	if in.AlertThreshold != nil {
		p.AlertThreshold = *in.AlertThreshold
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := validateProduct(&p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, storageErr("create product "+p.Code, err)
	}
	return &p, nil
}

// Update merges patch into the product and stamps its modification time.
func (s *CatalogService) Update(ctx context.Context, id uint, patch ProductPatch) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyPatch(p, patch)
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, storageErr(fmt.Sprintf("update product %d", id), err)
	}
	return p, nil
}

// Deactivate soft-deletes a product. Calling it twice is harmless.
func (s *CatalogService) Deactivate(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "updated_at": s.now()})
	if res.Error != nil {
		return storageErr(fmt.Sprintf("deactivate product %d", id), res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

func applyPatch(p *models.Product, patch ProductPatch) {
	if patch.Code != nil {
		p.Code = models.NormalizeCode(*patch.Code)
	}
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.UnitPrice != nil {
		p.UnitPrice = *patch.UnitPrice
	}
	if patch.Unit != nil {
		p.Unit = strings.TrimSpace(*patch.Unit)
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	if patch.SupplierID != nil {
		p.SupplierID = patch.SupplierID
	}
	if patch.AlertThreshold != nil {
		p.AlertThreshold = *patch.AlertThreshold
	}
	if patch.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
}

func validateProduct(p *models.Product) error {
	v := validation.Violations{}
	validation.Required("code", p.Code, v)
	validation.Required("name", p.Name, v)
	validation.Required("description", p.Description, v)
	validation.Required("unit", p.Unit, v)
	validation.NonNegativeFloat("unit_price", p.UnitPrice, v)
	validation.PositiveInt("category_id", p.CategoryID, v)
	validation.NonNegativeInt("alert_threshold", p.AlertThreshold, v)
	if !v.Empty() {
		return invalid(v)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
