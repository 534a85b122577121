package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DecimalPlaces is the fractional precision of every stored quantity and
// amount; columns are decimal(14,4).
const DecimalPlaces int32 = 4

func init() {
	// quantities and money travel as JSON numbers, as the frontend expects
	decimal.MarshalJSONWithoutQuotes = true
}

// All returns every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&Supplier{},
		&Ingredient{},
		&Product{},
		&BOMLine{},
		&ProductionRecord{},
	}
}

// CalendarDate truncates t to midnight UTC of its own calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
