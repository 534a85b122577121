package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ingredient is one inventory row. QuantityOnHand never goes below zero; the
// production engine checks sufficiency before debiting and never clamps.
type Ingredient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name string `gorm:"size:150;not null" json:"nombre"`
	// NameKey is the case-folded name backing the unique constraint.
	NameKey string `gorm:"size:150;not null;uniqueIndex" json:"-"`

	QuantityOnHand decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"cantidad"`
	UnitValue      decimal.Decimal `gorm:"type:decimal(14,4);not null;default:0" json:"valorUnitario"`

	AcquisitionDate time.Time `gorm:"not null" json:"fechaAdquisicion"`
	ExpirationDate  time.Time `gorm:"not null;index" json:"fechaVencimiento"`

	SupplierID uint      `gorm:"index;not null" json:"idProveedor"`
	Supplier   *Supplier `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"proveedor,omitempty"`
}

// NormalizeName returns the key two ingredient names collide on.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (i *Ingredient) BeforeSave(tx *gorm.DB) error {
	i.Name = strings.TrimSpace(i.Name)
	i.NameKey = NormalizeName(i.Name)
	return nil
}

// Covers reports whether the quantity on hand satisfies required.
func (i *Ingredient) Covers(required decimal.Decimal) bool {
	return i.QuantityOnHand.GreaterThanOrEqual(required)
}

// ExpiresWithin reports whether the ingredient expires before now+window.
// Already expired ingredients are included.
func (i *Ingredient) ExpiresWithin(now time.Time, window time.Duration) bool {
	return i.ExpirationDate.Before(now.Add(window))
}
