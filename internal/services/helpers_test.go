package services

import (
	"context"
	"testing"
	"time"

	"github.com/pasumerce/inventario/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// one connection: concurrent transactions queue instead of failing with SQLITE_LOCKED
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

type fixture struct {
	db         *gorm.DB
	suppliers  *SupplierService
	inventory  *InventoryService
	catalog    *CatalogService
	production *ProductionService
	records    *RecordService
	supplier   *models.Supplier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	f := &fixture{db: db}
	f.suppliers = NewSupplierService(db, nil)
	f.inventory = NewInventoryService(db, nil)
	f.catalog = NewCatalogService(db, nil)
	f.production = NewProductionService(db, f.inventory, f.catalog, nil)
	f.records = NewRecordService(db)

	sup, err := f.suppliers.Create(context.Background(), SupplierInput{
		Name: "Ana", LastName: "Rojas", Company: "Molinos del Valle", Phone: "+57 300 1234567", Schedule: "L-V 6:00-14:00",
	})
	if err != nil {
		t.Fatalf("supplier: %v", err)
	}
	f.supplier = sup
	return f
}

func (f *fixture) ingredient(t *testing.T, name, qty, unitValue string) *models.Ingredient {
	t.Helper()
	now := time.Now().UTC()
	ing, err := f.inventory.Create(context.Background(), IngredientInput{
		Name:            name,
		Quantity:        dec(qty),
		UnitValue:       dec(unitValue),
		AcquisitionDate: now.AddDate(0, 0, -2),
		ExpirationDate:  now.AddDate(0, 2, 0),
		SupplierID:      f.supplier.ID,
	})
	if err != nil {
		t.Fatalf("ingredient %s: %v", name, err)
	}
	return ing
}

// pan seeds the bread product: 200g flour at 0.01 and 5g salt at 0.05 per unit.
func (f *fixture) pan(t *testing.T, flourStock, saltStock string) (product *models.Product, flour, salt *models.Ingredient) {
	t.Helper()
	flour = f.ingredient(t, "Harina", flourStock, "0.01")
	salt = f.ingredient(t, "Sal", saltStock, "0.05")
	p, err := f.catalog.Create(context.Background(), ProductInput{
		Name: "Pan",
		Lines: []BOMLineInput{
			{IngredientID: flour.ID, QuantityPerUnit: dec("200")},
			{IngredientID: salt.ID, QuantityPerUnit: dec("5")},
		},
	})
	if err != nil {
		t.Fatalf("product: %v", err)
	}
	return p, flour, salt
}

func (f *fixture) stock(t *testing.T, id uint) decimal.Decimal {
	t.Helper()
	q, err := f.inventory.Quantity(context.Background(), id)
	if err != nil {
		t.Fatalf("quantity %d: %v", id, err)
	}
	return q
}

func (f *fixture) recordCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.ProductionRecord{}).Count(&n).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	return n
}

// insertOnCreate makes the next INSERT into table first run query on the same
// transaction, as a concurrent writer that slipped past the uniqueness check would.
func insertOnCreate(t *testing.T, db *gorm.DB, table, query string, args ...any) {
	t.Helper()
	fired := false
	err := db.Callback().Create().Before("gorm:create").Register("test:concurrent_insert", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != table {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).Exec(query, args...).Error; err != nil {
			_ = tx.AddError(err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}
