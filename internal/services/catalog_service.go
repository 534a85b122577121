package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pasumerce/inventario/internal/models"
	"github.com/pasumerce/inventario/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BOMLineInput is one ingredient of a new product. A nil UnitPrice takes the
// ingredient's current unit value.
type BOMLineInput struct {
	IngredientID    uint             `json:"idInventario"`
	QuantityPerUnit decimal.Decimal  `json:"cantidad"`
	UnitPrice       *decimal.Decimal `json:"precioUnitario,omitempty"`
}

type ProductInput struct {
	Name       string           `json:"nombre"`
	TotalPrice *decimal.Decimal `json:"precioTotal,omitempty"`
	Lines      []BOMLineInput   `json:"ingredientes"`
}

func (in ProductInput) validate() error {
	v := validation.Violations{}
	validation.Required("nombre", in.Name, v)
	validation.MaxLen("nombre", in.Name, 150, v)
	if in.TotalPrice != nil {
		validation.NonNegativeDecimal("precioTotal", *in.TotalPrice, v)
		validation.MaxScale("precioTotal", *in.TotalPrice, models.DecimalPlaces, v)
	}
	if len(in.Lines) == 0 {
		v.Add("ingredientes", "required")
	}
	seen := make(map[uint]bool, len(in.Lines))
	for i, l := range in.Lines {
		field := fmt.Sprintf("ingredientes[%d]", i)
		validation.RequiredID(field+".idInventario", l.IngredientID, v)
		validation.PositiveDecimal(field+".cantidad", l.QuantityPerUnit, v)
		validation.MaxScale(field+".cantidad", l.QuantityPerUnit, models.DecimalPlaces, v)
		if l.UnitPrice != nil {
			validation.NonNegativeDecimal(field+".precioUnitario", *l.UnitPrice, v)
			validation.MaxScale(field+".precioUnitario", *l.UnitPrice, models.DecimalPlaces, v)
		}
		if l.IngredientID != 0 && seen[l.IngredientID] {
			v.Add(field+".idInventario", "duplicate")
		}
		seen[l.IngredientID] = true
	}
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	return nil
}

// ProductUpdate changes the descriptive fields of a product; its bill of
// materials is fixed at creation.
type ProductUpdate struct {
	Name       string           `json:"nombre"`
	TotalPrice *decimal.Decimal `json:"precioTotal,omitempty"`
}

type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CatalogService{db: db, log: log}
}

// Create stores a product with its bill of materials. Every ingredient must
// exist and currently hold at least one unit's requirement; inventory is not
// touched.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := models.Product{Name: strings.TrimSpace(in.Name)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shortfalls []Shortfall
		for _, l := range in.Lines {
			ing, err := findIngredient(tx, l.IngredientID)
			if err != nil {
				return err
			}
			if !ing.Covers(l.QuantityPerUnit) {
				shortfalls = append(shortfalls, Shortfall{
					IngredientID: ing.ID, Name: ing.Name,
					Required: l.QuantityPerUnit, Available: ing.QuantityOnHand,
				})
			}
			price := ing.UnitValue
			if l.UnitPrice != nil {
				price = *l.UnitPrice
			}
			p.Lines = append(p.Lines, models.BOMLine{
				IngredientID:    ing.ID,
				QuantityPerUnit: l.QuantityPerUnit,
				UnitPrice:       price,
			})
		}
		if len(shortfalls) > 0 {
			return &InsufficientInventoryError{Shortfalls: shortfalls}
		}
		if in.TotalPrice != nil {
			p.TotalPrice = *in.TotalPrice
		} else {
			p.TotalPrice = p.DerivedTotal()
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, passthrough("create product", err)
	}
	s.log.Info("product created", zap.Uint("product_id", p.ID), zap.Int("bom_lines", len(p.Lines)))
	return &p, nil
}

// List returns every live product with its bill of materials.
func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	err := s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Lines.Ingredient").
		Order("name asc").
		Find(&out).Error
	if err != nil {
		return nil, internal("list products", err)
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, id uint) (*models.Product, error) {
	return findProduct(s.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Lines.Ingredient"), id)
}

// BOM returns the bill of materials of a product.
func (s *CatalogService) BOM(ctx context.Context, productID uint) ([]models.BOMLine, error) {
	var lines []models.BOMLine
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("ingredient_id asc").
		Find(&lines).Error
	if err != nil {
		return nil, internal("load bom", err)
	}
	return lines, nil
}

// WithDB returns a copy of the service that runs on tx.
func (s *CatalogService) WithDB(tx *gorm.DB) *CatalogService {
	cp := *s
	cp.db = tx
	return &cp
}

func (s *CatalogService) Update(ctx context.Context, id uint, in ProductUpdate) (*models.Product, error) {
	v := validation.Violations{}
	validation.Required("nombre", in.Name, v)
	validation.MaxLen("nombre", in.Name, 150, v)
	if in.TotalPrice != nil {
		validation.NonNegativeDecimal("precioTotal", *in.TotalPrice, v)
		validation.MaxScale("precioTotal", *in.TotalPrice, models.DecimalPlaces, v)
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	var p *models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if p, err = findProduct(tx.Preload("Lines"), id); err != nil {
			return err
		}
		p.Name = strings.TrimSpace(in.Name)
		if in.TotalPrice != nil {
			p.TotalPrice = *in.TotalPrice
		}
		return tx.Model(p).Updates(map[string]any{"name": p.Name, "total_price": p.TotalPrice}).Error
	})
	if err != nil {
		return nil, passthrough("update product", err)
	}
	return p, nil
}

// Delete soft-deletes the product and drops its bill of materials. Production
// records keep pointing at the soft-deleted row.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findProduct(tx, id); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.BOMLine{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return passthrough("delete product", err)
	}
	s.log.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

func findProduct(db *gorm.DB, id uint) (*models.Product, error) {
	var p models.Product
	err := db.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}
	if err != nil {
		return nil, internal("find product", err)
	}
	return &p, nil
}
