package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is something the bakery makes. Lines is its bill of materials; a
// product without lines cannot be produced.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"idProducto"`
	CreatedAt time.Time      `json:"-"`
	UpdatedAt time.Time      `json:"-"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name       string          `gorm:"size:150;not null" json:"nombre"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"precioTotal"`

	Lines []BOMLine `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"ingredientes"`
}

// DerivedTotal is the value of one unit at the BOM unit prices, rounded to
// the stored precision.
func (p *Product) DerivedTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range p.Lines {
		total = total.Add(p.Lines[i].Value(decimal.NewFromInt(1)))
	}
	return total.Round(DecimalPlaces)
}

// BOMLine is the quantity of one ingredient needed per unit of product. Lines
// are owned by the product; the ingredient is only referenced.
type BOMLine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_bom_product_ingredient" json:"idProducto"`

	IngredientID uint        `gorm:"not null;uniqueIndex:idx_bom_product_ingredient;index" json:"idInventario"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT" json:"insumo,omitempty"`

	QuantityPerUnit decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"cantidad"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"precioUnitario"`
}

func (BOMLine) TableName() string { return "bom_lines" }

// Required is the ingredient quantity consumed by producing qty units.
func (l *BOMLine) Required(qty decimal.Decimal) decimal.Decimal {
	return l.QuantityPerUnit.Mul(qty)
}

// Value is the cost of the ingredient consumed by producing qty units.
func (l *BOMLine) Value(qty decimal.Decimal) decimal.Decimal {
	return l.UnitPrice.Mul(l.Required(qty))
}
