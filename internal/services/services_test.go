package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/medicaments-api/auth"
	"github.com/diewo77/medicaments-api/internal/models"
	"github.com/diewo77/medicaments-api/internal/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// lowest bcrypt cost keeps the tests fast
var testHasher = auth.NewBcryptHasher(4)

func createClient(t *testing.T, svc *services.ClientService, username, email string) *models.Client {
	t.Helper()
	c, err := svc.Register(context.Background(), services.RegisterInput{
		Username: username,
		Email:    email,
		Password: "Secret123!",
	})
	require.NoError(t, err)
	return c
}

func createProduct(t *testing.T, svc *services.CatalogService, code string, price float64) *models.Product {
	t.Helper()
	p, err := svc.Create(context.Background(), services.ProductInput{
		Code:        code,
		Name:        "Product " + code,
		Description: "Description of " + code,
		UnitPrice:   price,
		CategoryID:  1,
	})
	require.NoError(t, err)
	return p
}
