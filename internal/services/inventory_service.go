package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/pasumerce/inventario/internal/models"
	"github.com/pasumerce/inventario/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type IngredientInput struct {
	Name            string          `json:"nombre"`
	Quantity        decimal.Decimal `json:"cantidad"`
	UnitValue       decimal.Decimal `json:"valorUnitario"`
	AcquisitionDate time.Time       `json:"fechaAdquisicion"`
	ExpirationDate  time.Time       `json:"fechaVencimiento"`
	SupplierID      uint            `json:"idProveedor"`
}

func (in IngredientInput) validate(now time.Time) error {
	v := validation.Violations{}
	validation.Required("nombre", in.Name, v)
	validation.MaxLen("nombre", in.Name, 150, v)
	validation.NonNegativeDecimal("cantidad", in.Quantity, v)
	validation.NonNegativeDecimal("valorUnitario", in.UnitValue, v)
	validation.MaxScale("cantidad", in.Quantity, models.DecimalPlaces, v)
	validation.MaxScale("valorUnitario", in.UnitValue, models.DecimalPlaces, v)
	validation.RequiredTime("fechaAdquisicion", in.AcquisitionDate, v)
	validation.RequiredTime("fechaVencimiento", in.ExpirationDate, v)
	validation.NotAfter("fechaAdquisicion", in.AcquisitionDate, endOfDay(now), v)
	validation.After("fechaVencimiento", in.ExpirationDate, in.AcquisitionDate, v)
	validation.RequiredID("idProveedor", in.SupplierID, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

func (in IngredientInput) apply(i *models.Ingredient) {
	i.Name = in.Name
	i.QuantityOnHand = in.Quantity
	i.UnitValue = in.UnitValue
	i.AcquisitionDate = in.AcquisitionDate.UTC()
	i.ExpirationDate = in.ExpirationDate.UTC()
	i.SupplierID = in.SupplierID
}

// InventoryService owns ingredient rows. WithDB binds it to a transaction so
// the production engine can read and debit under its own row locks.
type InventoryService struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

func NewInventoryService(db *gorm.DB, log *zap.Logger) *InventoryService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryService{db: db, log: log, now: time.Now}
}

// WithDB returns a copy of the service that runs on tx.
func (s *InventoryService) WithDB(tx *gorm.DB) *InventoryService {
	cp := *s
	cp.db = tx
	return &cp
}

func (s *InventoryService) Create(ctx context.Context, in IngredientInput) (*models.Ingredient, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	var ing models.Ingredient
	in.apply(&ing)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findSupplier(tx, in.SupplierID); err != nil {
			return err
		}
		if err := ensureUniqueIngredient(tx, in.Name, 0); err != nil {
			return err
		}
		return onDuplicate(tx.Create(&ing).Error, ingredientExists())
	})
	if err != nil {
		return nil, passthrough("create ingredient", err)
	}
	s.log.Info("ingredient created", zap.Uint("ingredient_id", ing.ID), zap.String("name", ing.Name))
	return &ing, nil
}

func (s *InventoryService) List(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	if err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, internal("list ingredients", err)
	}
	return out, nil
}

func (s *InventoryService) Get(ctx context.Context, id uint) (*models.Ingredient, error) {
	return findIngredient(s.db.WithContext(ctx).Preload("Supplier"), id)
}

func (s *InventoryService) Update(ctx context.Context, id uint, in IngredientInput) (*models.Ingredient, error) {
	if err := in.validate(s.now()); err != nil {
		return nil, err
	}
	var ing *models.Ingredient
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if ing, err = findIngredient(tx.Clauses(clause.Locking{Strength: "UPDATE"}), id); err != nil {
			return err
		}
		if _, err := findSupplier(tx, in.SupplierID); err != nil {
			return err
		}
		if err := ensureUniqueIngredient(tx, in.Name, id); err != nil {
			return err
		}
		in.apply(ing)
		return onDuplicate(tx.Save(ing).Error, ingredientExists())
	})
	if err != nil {
		return nil, passthrough("update ingredient", err)
	}
	return ing, nil
}

// Delete removes an ingredient that no bill of materials uses.
func (s *InventoryService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findIngredient(tx, id); err != nil {
			return err
		}
		var refs int64
		if err := tx.Model(&models.BOMLine{}).Where("ingredient_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return &ConflictError{Code: "ingredient_in_use", Reason: "ingredient is part of a product's bill of materials"}
		}
		return tx.Delete(&models.Ingredient{}, id).Error
	})
	if err != nil {
		return passthrough("delete ingredient", err)
	}
	s.log.Info("ingredient deleted", zap.Uint("ingredient_id", id))
	return nil
}

// Quantity returns the quantity on hand of one ingredient.
func (s *InventoryService) Quantity(ctx context.Context, id uint) (decimal.Decimal, error) {
	ing, err := findIngredient(s.db.WithContext(ctx), id)
	if err != nil {
		return decimal.Zero, err
	}
	return ing.QuantityOnHand, nil
}

// LockForUpdate loads the given ingredients with SELECT ... FOR UPDATE in
// ascending id order, so concurrent callers always queue in the same order.
// Missing ids are simply absent from the result.
func (s *InventoryService) LockForUpdate(ctx context.Context, ids []uint) (map[uint]*models.Ingredient, error) {
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var rows []models.Ingredient
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", sorted).
		Order("id asc").
		Find(&rows).Error
	if err != nil {
		return nil, internal("lock ingredients", err)
	}
	out := make(map[uint]*models.Ingredient, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// Decrement debits amount from an ingredient. It never clamps: an amount above
// the quantity on hand fails with InsufficientInventoryError and writes nothing.
// Callers that hold the row lock avoid a lost update.
func (s *InventoryService) Decrement(ctx context.Context, id uint, amount decimal.Decimal) error {
	v := validation.Violations{}
	validation.PositiveDecimal("cantidad", amount, v)
	validation.MaxScale("cantidad", amount, models.DecimalPlaces, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	ing, err := findIngredient(s.db.WithContext(ctx), id)
	if err != nil {
		return err
	}
	if !ing.Covers(amount) {
		return &InsufficientInventoryError{Shortfalls: []Shortfall{{
			IngredientID: ing.ID, Name: ing.Name, Required: amount, Available: ing.QuantityOnHand,
		}}}
	}
	res := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"quantity_on_hand": ing.QuantityOnHand.Sub(amount),
			"updated_at":       s.now(),
		})
	if res.Error != nil {
		return internal("decrement ingredient", res.Error)
	}
	if res.RowsAffected != 1 {
		return internal("decrement ingredient", errors.New("ingredient row vanished during debit"))
	}
	return nil
}

// ExpiringBefore lists ingredients with stock whose expiration date is before
// t, with their supplier loaded.
func (s *InventoryService) ExpiringBefore(ctx context.Context, t time.Time) ([]models.Ingredient, error) {
	var out []models.Ingredient
	err := s.db.WithContext(ctx).
		Preload("Supplier").
		Where("expiration_date < ? AND quantity_on_hand > 0", t.UTC()).
		Order("expiration_date asc").
		Find(&out).Error
	if err != nil {
		return nil, internal("list expiring ingredients", err)
	}
	return out, nil
}

// Depleted lists ingredients with nothing left on hand, with their supplier loaded.
func (s *InventoryService) Depleted(ctx context.Context) ([]models.Ingredient, error) {
	var out []models.Ingredient
	err := s.db.WithContext(ctx).Preload("Supplier").Where("quantity_on_hand <= 0").Order("name asc").Find(&out).Error
	if err != nil {
		return nil, internal("list depleted ingredients", err)
	}
	return out, nil
}

// endOfDay is the last instant of t's UTC calendar day; acquisition dates
// are compared by day, not by instant.
func endOfDay(t time.Time) time.Time {
	return models.CalendarDate(t.UTC()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func findIngredient(db *gorm.DB, id uint) (*models.Ingredient, error) {
	var ing models.Ingredient
	err := db.First(&ing, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "ingredient", ID: id}
	}
	if err != nil {
		return nil, internal("find ingredient", err)
	}
	return &ing, nil
}

func ensureUniqueIngredient(tx *gorm.DB, name string, exceptID uint) error {
	q := tx.Model(&models.Ingredient{}).Where("name_key = ?", models.NormalizeName(name))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ingredientExists()
	}
	return nil
}

func ingredientExists() *ConflictError {
	return &ConflictError{Code: "ingredient_already_exists", Reason: "an ingredient with this name already exists"}
}
