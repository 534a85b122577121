package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pasumerce/inventario/internal/models"
)

func validIngredient(supplierID uint) IngredientInput {
	now := time.Now().UTC()
	return IngredientInput{
		Name:            "Levadura",
		Quantity:        dec("500"),
		UnitValue:       dec("0.2"),
		AcquisitionDate: now.AddDate(0, 0, -1),
		ExpirationDate:  now.AddDate(0, 0, 20),
		SupplierID:      supplierID,
	}
}

func TestInventoryCreateValidation(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	tests := []struct {
		name  string
		mut   func(*IngredientInput)
		field string
		code  string
	}{
		{"empty name", func(in *IngredientInput) { in.Name = " " }, "nombre", "required"},
		{"negative quantity", func(in *IngredientInput) { in.Quantity = dec("-1") }, "cantidad", "must_not_be_negative"},
		{"negative unit value", func(in *IngredientInput) { in.UnitValue = dec("-0.01") }, "valorUnitario", "must_not_be_negative"},
		{"quantity too precise", func(in *IngredientInput) { in.Quantity = dec("1.00001") }, "cantidad", "too_many_decimals"},
		{"unit value too precise", func(in *IngredientInput) { in.UnitValue = dec("0.00001") }, "valorUnitario", "too_many_decimals"},
		{"acquired in future", func(in *IngredientInput) {
			in.AcquisitionDate = now.AddDate(0, 0, 3)
			in.ExpirationDate = now.AddDate(0, 0, 30)
		}, "fechaAdquisicion", "must_not_be_in_future"},
		{"expires on acquisition day", func(in *IngredientInput) { in.ExpirationDate = in.AcquisitionDate }, "fechaVencimiento", "must_be_after_acquisition"},
		{"missing expiration", func(in *IngredientInput) { in.ExpirationDate = time.Time{} }, "fechaVencimiento", "required"},
		{"missing supplier", func(in *IngredientInput) { in.SupplierID = 0 }, "idProveedor", "required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIngredient(f.supplier.ID)
			tt.mut(&in)
			_, err := f.inventory.Create(context.Background(), in)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Violations[tt.field] != tt.code {
				t.Errorf("violations = %v, want %s=%s", ve.Violations, tt.field, tt.code)
			}
		})
	}
}

func TestInventoryCreateAcceptsToday(t *testing.T) {
	f := newFixture(t)
	in := validIngredient(f.supplier.ID)
	in.AcquisitionDate = models.CalendarDate(time.Now().UTC())
	if _, err := f.inventory.Create(context.Background(), in); err != nil {
		t.Fatalf("acquired today should be accepted: %v", err)
	}
}

func TestInventoryCreateUnknownSupplier(t *testing.T) {
	f := newFixture(t)
	_, err := f.inventory.Create(context.Background(), validIngredient(404))
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Code() != "supplier_not_found" {
		t.Fatalf("expected supplier_not_found, got %v", err)
	}
}

func TestInventoryNameIsCaseInsensitiveUnique(t *testing.T) {
	f := newFixture(t)
	if _, err := f.inventory.Create(context.Background(), validIngredient(f.supplier.ID)); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := validIngredient(f.supplier.ID)
	dup.Name = "  LEVADURA "
	_, err := f.inventory.Create(context.Background(), dup)
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Code != "ingredient_already_exists" {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestInventoryUpdateExcludesSelfFromUniqueness(t *testing.T) {
	f := newFixture(t)
	ing, err := f.inventory.Create(context.Background(), validIngredient(f.supplier.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	other := validIngredient(f.supplier.ID)
	other.Name = "Azucar"
	if _, err := f.inventory.Create(context.Background(), other); err != nil {
		t.Fatalf("create other: %v", err)
	}

	in := validIngredient(f.supplier.ID)
	in.Name = "levadura"
	in.Quantity = dec("750")
	updated, err := f.inventory.Update(context.Background(), ing.ID, in)
	if err != nil {
		t.Fatalf("update self with same name: %v", err)
	}
	if updated.Name != "levadura" || !updated.QuantityOnHand.Equal(dec("750")) {
		t.Errorf("unexpected update result %+v", updated)
	}

	in.Name = "AZUCAR"
	if _, err := f.inventory.Update(context.Background(), ing.ID, in); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict renaming onto another row, got %v", err)
	}
	if _, err := f.inventory.Update(context.Background(), 999, validIngredient(f.supplier.ID)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInventoryGetListDelete(t *testing.T) {
	f := newFixture(t)
	ing, err := f.inventory.Create(context.Background(), validIngredient(f.supplier.ID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := f.inventory.Get(context.Background(), ing.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Supplier == nil || got.Supplier.ID != f.supplier.ID {
		t.Errorf("expected supplier preloaded, got %+v", got.Supplier)
	}
	list, err := f.inventory.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v %d", err, len(list))
	}
	if err := f.inventory.Delete(context.Background(), ing.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.inventory.Get(context.Background(), ing.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := f.inventory.Delete(context.Background(), ing.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestInventoryDeleteRejectsIngredientInBOM(t *testing.T) {
	f := newFixture(t)
	_, flour, _ := f.pan(t, "1000", "20")
	err := f.inventory.Delete(context.Background(), flour.ID)
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Code != "ingredient_in_use" {
		t.Fatalf("expected ingredient_in_use, got %v", err)
	}
}

func TestInventoryDecrement(t *testing.T) {
	f := newFixture(t)
	ing := f.ingredient(t, "Mantequilla", "10", "1")

	if err := f.inventory.Decrement(context.Background(), ing.ID, dec("4")); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	if got := f.stock(t, ing.ID); !got.Equal(dec("6")) {
		t.Fatalf("quantity = %s, want 6", got)
	}

	err := f.inventory.Decrement(context.Background(), ing.ID, dec("6.5"))
	var short *InsufficientInventoryError
	if !errors.As(err, &short) || !short.Shortfalls[0].Available.Equal(dec("6")) {
		t.Fatalf("expected shortfall, got %v", err)
	}
	if got := f.stock(t, ing.ID); !got.Equal(dec("6")) {
		t.Fatalf("failed decrement must not clamp, quantity = %s", got)
	}
	if err := f.inventory.Decrement(context.Background(), ing.ID, dec("0")); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero amount, got %v", err)
	}
	if err := f.inventory.Decrement(context.Background(), 999, dec("1")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInventoryStockWatchQueries(t *testing.T) {
	f := newFixture(t)
	now := time.Now().UTC()

	soon := validIngredient(f.supplier.ID)
	soon.Name = "Leche"
	soon.ExpirationDate = now.AddDate(0, 0, 2)
	if _, err := f.inventory.Create(context.Background(), soon); err != nil {
		t.Fatalf("create: %v", err)
	}
	later := validIngredient(f.supplier.ID)
	later.Name = "Harina"
	later.ExpirationDate = now.AddDate(0, 6, 0)
	if _, err := f.inventory.Create(context.Background(), later); err != nil {
		t.Fatalf("create: %v", err)
	}
	empty := validIngredient(f.supplier.ID)
	empty.Name = "Huevos"
	empty.Quantity = dec("0")
	empty.ExpirationDate = now.AddDate(0, 0, 1)
	if _, err := f.inventory.Create(context.Background(), empty); err != nil {
		t.Fatalf("create: %v", err)
	}

	expiring, err := f.inventory.ExpiringBefore(context.Background(), now.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("expiring: %v", err)
	}
	if len(expiring) != 1 || expiring[0].Name != "Leche" {
		t.Fatalf("expiring = %+v, want only Leche (Huevos has no stock)", expiring)
	}
	depleted, err := f.inventory.Depleted(context.Background())
	if err != nil {
		t.Fatalf("depleted: %v", err)
	}
	if len(depleted) != 1 || depleted[0].Name != "Huevos" {
		t.Fatalf("depleted = %+v", depleted)
	}
	if depleted[0].Supplier == nil || depleted[0].Supplier.FullName() != "Ana Rojas" {
		t.Errorf("depleted supplier not loaded: %+v", depleted[0].Supplier)
	}
	if expiring[0].Supplier == nil || expiring[0].Supplier.ID != f.supplier.ID {
		t.Errorf("expiring supplier not loaded: %+v", expiring[0].Supplier)
	}
}

func TestInventoryCreateLosingRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	in := validIngredient(f.supplier.ID)
	insertOnCreate(t, f.db, "ingredients",
		"INSERT INTO ingredients (created_at, updated_at, name, name_key, quantity_on_hand, unit_value, acquisition_date, expiration_date, supplier_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		in.AcquisitionDate, in.AcquisitionDate, "LEVADURA", "levadura", 1, 0, in.AcquisitionDate, in.ExpirationDate, f.supplier.ID)

	_, err := f.inventory.Create(context.Background(), in)
	var ce *ConflictError
	if !errors.As(err, &ce) || ce.Code != "ingredient_already_exists" {
		t.Fatalf("expected ingredient_already_exists conflict, got %v", err)
	}
	var n int64
	f.db.Model(&models.Ingredient{}).Count(&n)
	if n != 0 {
		t.Errorf("ingredients = %d, want the rolled back insert gone", n)
	}
}
