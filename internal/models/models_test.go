package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBOMLine_RequiredAndValue(t *testing.T) {
	tests := []struct {
		name      string
		perUnit   string
		unitPrice string
		qty       string
		required  string
		value     string
	}{
		{"flour for four loaves", "200", "0.01", "4", "800", "8"},
		{"salt for four loaves", "5", "0.05", "4", "20", "1"},
		{"fractional quantity", "0.25", "2", "3", "0.75", "1.5"},
		{"free ingredient", "10", "0", "2", "20", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &BOMLine{QuantityPerUnit: dec(tt.perUnit), UnitPrice: dec(tt.unitPrice)}
			if got := l.Required(dec(tt.qty)); !got.Equal(dec(tt.required)) {
				t.Errorf("Required() = %s, want %s", got, tt.required)
			}
			if got := l.Value(dec(tt.qty)); !got.Equal(dec(tt.value)) {
				t.Errorf("Value() = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestProduct_DerivedTotal(t *testing.T) {
	p := &Product{Lines: []BOMLine{
		{QuantityPerUnit: dec("200"), UnitPrice: dec("0.01")},
		{QuantityPerUnit: dec("5"), UnitPrice: dec("0.05")},
	}}
	if got := p.DerivedTotal(); !got.Equal(dec("2.25")) {
		t.Errorf("DerivedTotal() = %s, want 2.25", got)
	}
	p = &Product{Lines: []BOMLine{{QuantityPerUnit: dec("0.0003"), UnitPrice: dec("0.3333")}}}
	if got := p.DerivedTotal(); !got.Equal(dec("0.0001")) {
		t.Errorf("DerivedTotal() = %s, want 0.0001 at stored precision", got)
	}
	if got := (&Product{}).DerivedTotal(); !got.IsZero() {
		t.Errorf("empty BOM total = %s", got)
	}
}

func TestIngredient_Covers(t *testing.T) {
	i := &Ingredient{QuantityOnHand: dec("20")}
	if !i.Covers(dec("20")) {
		t.Error("exact stock must cover")
	}
	if i.Covers(dec("20.0001")) {
		t.Error("stock must not cover more than on hand")
	}
}

func TestIngredient_ExpiresWithin(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"already expired", now.AddDate(0, 0, -1), true},
		{"in three days", now.AddDate(0, 0, 3), true},
		{"in a month", now.AddDate(0, 1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Ingredient{ExpirationDate: tt.expires}
			if got := i.ExpiresWithin(now, week); got != tt.want {
				t.Errorf("ExpiresWithin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  Harina de Trigo "); got != "harina de trigo" {
		t.Errorf("NormalizeName() = %q", got)
	}
	i := &Ingredient{Name: " Sal "}
	_ = i.BeforeSave(nil)
	if i.Name != "Sal" || i.NameKey != "sal" {
		t.Errorf("BeforeSave: name=%q key=%q", i.Name, i.NameKey)
	}
}

func TestCalendarDate(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	in := time.Date(2024, 3, 9, 22, 15, 0, 0, bogota)
	got := CalendarDate(in)
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CalendarDate() = %v, want %v", got, want)
	}
}

func TestDecimalsMarshalAsNumbers(t *testing.T) {
	rec := ProductionRecord{ID: 3, TotalValue: dec("9.00")}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"valorTotal":9`) {
		t.Errorf("expected numeric valorTotal in %s", b)
	}
}

func TestSupplier_FullName(t *testing.T) {
	if got := (&Supplier{Name: "Ana", LastName: "Rojas"}).FullName(); got != "Ana Rojas" {
		t.Errorf("FullName() = %q", got)
	}
	if got := (&Supplier{LastName: "Rojas"}).FullName(); got != "Rojas" {
		t.Errorf("FullName() = %q", got)
	}
}
