package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/internal/models"
)

type seedClient struct {
	Username, Email, Password string
	Role                      models.Role
}

var seedClients = []seedClient{
	{"hopital_central", "hopital@example.com", "Hospital123!", models.RoleHospital},
	{"pharmacie_sante", "pharmacie@example.com", "Pharmacy123!", models.RolePharmacy},
	{"jean_dupont", "jean@example.com", "Client123!", models.RoleClient},
}

func intPtr(i int) *int { return &i }

var seedProducts = []models.Product{
	{Code: "PARA001", Name: "Paracétamol 500mg", Description: "Anti-douleur et antipyrétique", UnitPrice: 3.50, Unit: "boîte", CategoryID: 1, SupplierID: intPtr(100), AlertThreshold: 50},
	{Code: "IBU001", Name: "Ibuprofène 400mg", Description: "Anti-inflammatoire non stéroïdien", UnitPrice: 5.90, Unit: "boîte", CategoryID: 1, SupplierID: intPtr(101), AlertThreshold: 30},
	{Code: "AMOX001", Name: "Amoxicilline 1g", Description: "Antibiotique à large spectre", UnitPrice: 12.50, Unit: "boîte", CategoryID: 2, SupplierID: intPtr(102), AlertThreshold: 20},
	{Code: "ASP001", Name: "Aspirine 100mg", Description: "Antiagrégant plaquettaire", UnitPrice: 4.20, Unit: "boîte", CategoryID: 1, SupplierID: intPtr(100), AlertThreshold: 40},
	{Code: "DOLIP001", Name: "Doliprane 1000mg", Description: "Paracétamol dosage fort", UnitPrice: 4.80, Unit: "boîte", CategoryID: 1, SupplierID: intPtr(103), AlertThreshold: 60},
	{Code: "VIT001", Name: "Vitamine C 1g", Description: "Complément vitaminique", UnitPrice: 8.50, Unit: "boîte", CategoryID: 3, SupplierID: intPtr(104), AlertThreshold: 25},
	{Code: "OMEP001", Name: "Oméprazole 20mg", Description: "Inhibiteur de la pompe à protons", UnitPrice: 9.90, Unit: "boîte", CategoryID: 4, SupplierID: intPtr(105), AlertThreshold: 15},
	{Code: "SERUM001", Name: "Sérum physiologique", Description: "Solution saline stérile", UnitPrice: 6.50, Unit: "boîte de 20", CategoryID: 5, SupplierID: intPtr(100), AlertThreshold: 100},
}

// SeedResult counts the records created by Seed.
type SeedResult struct {
	Clients  int
	Products int
}

// Seed inserts the demo clients and catalog. Existing rows (matched by email
// or product code) are left untouched, so Seed can run on every start.
func Seed(ctx context.Context, conn *gorm.DB, hasher auth.PasswordHasher) (SeedResult, error) {
	var res SeedResult
	tx := conn.WithContext(ctx)
	for _, sc := range seedClients {
		var existing models.Client
		err := tx.Where("email = ?", sc.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("seed client %s: %w", sc.Email, err)
		}
		hash, err := hasher.Hash(sc.Password)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", sc.Email, err)
		}
		c := models.Client{Username: sc.Username, Email: sc.Email, PasswordHash: hash, Role: sc.Role, Active: true}
		if err := tx.Create(&c).Error; err != nil {
			return res, fmt.Errorf("seed client %s: %w", sc.Email, err)
		}
		res.Clients++
	}
	for _, p := range seedProducts {
		var existing models.Product
		err := tx.Where("code = ?", p.Code).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("seed product %s: %w", p.Code, err)
		}
		p.Active = true
		if err := tx.Create(&p).Error; err != nil {
			return res, fmt.Errorf("seed product %s: %w", p.Code, err)
		}
		res.Products++
	}
	return res, nil
}
