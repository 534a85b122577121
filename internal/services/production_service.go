package services

import (
	"context"
	"errors"
	"time"

	"github.com/pasumerce/inventario/internal/models"
	"github.com/pasumerce/inventario/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductionResult is what a committed production run reports back.
type ProductionResult struct {
	ProductionID uint            `json:"idProduccion"`
	TotalValue   decimal.Decimal `json:"valorTotal"`
}

// ProductionService turns ingredients into products. One run debits every
// BOM ingredient and appends one ProductionRecord, or changes nothing.
type ProductionService struct {
	db        *gorm.DB
	inventory *InventoryService
	catalog   *CatalogService
	log       *zap.Logger
	now       func() time.Time
}

func NewProductionService(db *gorm.DB, inventory *InventoryService, catalog *CatalogService, log *zap.Logger) *ProductionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductionService{db: db, inventory: inventory, catalog: catalog, log: log, now: time.Now}
}

// Produce makes quantity units of a product.
//
// Errors: *ValidationError for a non-positive quantity, a quantity with more
// than four decimals or a missing product id (no storage access happens),
// *ValidationError when some ingredient requirement would need more than four
// decimals, *NotFoundError for an unknown product,
// *InvalidStateError for a product without ingredients,
// *InsufficientInventoryError listing every ingredient that falls short, and
// *InternalError for storage failures. Every error leaves inventory untouched.
func (s *ProductionService) Produce(ctx context.Context, productID uint, quantity decimal.Decimal) (*ProductionResult, error) {
	v := validation.Violations{}
	validation.RequiredID("idProducto", productID, v)
	validation.PositiveDecimal("cantidad", quantity, v)
	validation.MaxScale("cantidad", quantity, models.DecimalPlaces, v)
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}

	log := s.log.With(zap.Uint("product_id", productID), zap.String("quantity", quantity.String()))
	var result ProductionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, productID); err != nil {
			return err
		}
		lines, err := s.catalog.WithDB(tx).BOM(ctx, productID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return &InvalidStateError{
				Code:   "no_ingredients_configured",
				Reason: "no ingredients configured for this product",
			}
		}

		// required amounts are debited exactly, so they must fit the column
		for i := range lines {
			required := lines[i].Required(quantity)
			if !required.Equal(required.Truncate(models.DecimalPlaces)) {
				return &ValidationError{Violations: validation.Violations{"cantidad": "requirement_exceeds_precision"}}
			}
		}

		inv := s.inventory.WithDB(tx)
		ids := make([]uint, len(lines))
		for i := range lines {
			ids[i] = lines[i].IngredientID
		}
		stock, err := inv.LockForUpdate(ctx, ids)
		if err != nil {
			return err
		}

		var shortfalls []Shortfall
		for i := range lines {
			required := lines[i].Required(quantity)
			ing, ok := stock[lines[i].IngredientID]
			if !ok {
				shortfalls = append(shortfalls, Shortfall{
					IngredientID: lines[i].IngredientID, Required: required, Available: decimal.Zero,
				})
				continue
			}
			if !ing.Covers(required) {
				shortfalls = append(shortfalls, Shortfall{
					IngredientID: ing.ID, Name: ing.Name, Required: required, Available: ing.QuantityOnHand,
				})
			}
		}
		if len(shortfalls) > 0 {
			return &InsufficientInventoryError{Shortfalls: shortfalls}
		}

		total := decimal.Zero
		for i := range lines {
			if err := inv.Decrement(ctx, lines[i].IngredientID, lines[i].Required(quantity)); err != nil {
				return err
			}
			total = total.Add(lines[i].Value(quantity))
		}
		total = total.Round(models.DecimalPlaces)

		rec := models.ProductionRecord{
			ProductID:        productID,
			QuantityProduced: quantity,
			Date:             models.CalendarDate(s.now().UTC()),
			TotalValue:       total,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return internal("append production record", err)
		}
		result = ProductionResult{ProductionID: rec.ID, TotalValue: total}
		return nil
	})
	if err != nil {
		err = passthrough("produce", err)
		var short *InsufficientInventoryError
		switch {
		case errors.As(err, &short):
			log.Warn("production rejected", zap.Int("shortfalls", len(short.Shortfalls)))
		case errors.Is(err, ErrInternal):
			log.Error("production rolled back", zap.Error(err))
		}
		return nil, err
	}
	log.Info("production committed",
		zap.Uint("production_id", result.ProductionID),
		zap.String("total_value", result.TotalValue.String()))
	return &result, nil
}
