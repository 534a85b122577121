package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionRecord is the append-only fact of one production run.
type ProductionRecord struct {
	ID        uint      `gorm:"primaryKey" json:"idProduccion"`
	CreatedAt time.Time `json:"creadoEn"`

	ProductID uint     `gorm:"index;not null" json:"idProducto"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"producto,omitempty"`

	QuantityProduced decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"cantidad"`
	// Date is the calendar day of the run, midnight UTC.
	Date       time.Time       `gorm:"type:date;not null;index" json:"fecha"`
	TotalValue decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"valorTotal"`
}
