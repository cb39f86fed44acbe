package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/diewo77/medicaments-api/httpx"
	"github.com/diewo77/medicaments-api/internal/services"
	"github.com/diewo77/medicaments-api/validation"
)

type ProductHandler struct {
	catalog *services.CatalogService
	log     *zap.Logger
}

func NewProductHandler(catalog *services.CatalogService, log *zap.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

// productRequest is the body of create and update. Absent fields stay nil so
// that an update only touches what was sent.
type productRequest struct {
	Code           *string  `json:"code"`
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	UnitPrice      *float64 `json:"unit_price"`
	Unit           *string  `json:"unit"`
	CategoryID     *int     `json:"category_id"`
	SupplierID     *int     `json:"supplier_id"`
	AlertThreshold *int     `json:"alert_threshold"`
	ImageURL       *string  `json:"image_url"`
	Active         *bool    `json:"active"`
}

func (p productRequest) input() services.ProductInput {
	in := services.ProductInput{
		SupplierID:     p.SupplierID,
		AlertThreshold: p.AlertThreshold,
		Active:         p.Active,
	}
	if p.Code != nil {
		in.Code = *p.Code
	}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.UnitPrice != nil {
		in.UnitPrice = *p.UnitPrice
	}
	if p.Unit != nil {
		in.Unit = *p.Unit
	}
	if p.CategoryID != nil {
		in.CategoryID = *p.CategoryID
	}
	if p.ImageURL != nil {
		in.ImageURL = *p.ImageURL
	}
	return in
}

func (p productRequest) patch() services.ProductPatch {
	return services.ProductPatch{
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		UnitPrice:      p.UnitPrice,
		Unit:           p.Unit,
		CategoryID:     p.CategoryID,
		SupplierID:     p.SupplierID,
		AlertThreshold: p.AlertThreshold,
		ImageURL:       p.ImageURL,
		Active:         p.Active,
	}
}

// List handles GET /api/products?search=&category=&active=.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := services.ProductFilter{Search: q.Get("search")}
	v := validation.Violations{}

	if raw := q.Get("category"); raw != "" {
		cat, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("category", "invalid_number")
		} else {
			filter.Category = &cat
		}
	}
	raw := q.Get("active")
	if raw == "" {
		// older clients send the French parameter name
		raw = q.Get("actif")
	}
	if raw != "" {
		active, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			v.Add("active", "invalid_boolean")
		} else {
			filter.Active = &active
		}
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", v)
		return
	}

	products, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"total":    len(products),
		"products": products,
	})
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	product, err := h.catalog.Get(r.Context(), id)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	product, err := h.catalog.Create(r.Context(), req.input())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Produit créé avec succès",
		"product": product,
	})
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		writeError(w, h.log, err)
		return
	}
	product, err := h.catalog.Update(r.Context(), id, req.patch())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Produit mis à jour",
		"product": product,
	})
}

// Delete handles DELETE /api/products/{id}. The product is only deactivated.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "id")
		return
	}
	if err := h.catalog.Deactivate(r.Context(), id); err != nil {
		writeError(w, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Produit désactivé"})
}
