package validation

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRequiredAndFirstViolationWins(t *testing.T) {
	v := Violations{}
	Required("nombre", "   ", v)
	MaxLen("nombre", "   ", 1, v)
	if v["nombre"] != "required" {
		t.Fatalf("expected required, got %q", v["nombre"])
	}
	if v.Empty() {
		t.Fatal("expected violations")
	}
}

func TestDecimalValidators(t *testing.T) {
	v := Violations{}
	PositiveDecimal("cantidad", decimal.Zero, v)
	NonNegativeDecimal("valorUnitario", decimal.NewFromInt(-1), v)
	NonNegativeDecimal("otro", decimal.Zero, v)
	if v["cantidad"] != "must_be_positive" {
		t.Errorf("cantidad: %q", v["cantidad"])
	}
	if v["valorUnitario"] != "must_not_be_negative" {
		t.Errorf("valorUnitario: %q", v["valorUnitario"])
	}
	if _, ok := v["otro"]; ok {
		t.Error("zero must be accepted as non-negative")
	}
}

func TestMaxScale(t *testing.T) {
	v := Violations{}
	MaxScale("a", decimal.RequireFromString("0.00001"), 4, v)
	MaxScale("b", decimal.RequireFromString("1.50000"), 4, v)
	MaxScale("c", decimal.RequireFromString("-2.1234"), 4, v)
	MaxScale("d", decimal.RequireFromString("-2.12345"), 4, v)
	if v["a"] != "too_many_decimals" || v["d"] != "too_many_decimals" {
		t.Errorf("expected too_many_decimals, got %v", v)
	}
	if _, ok := v["b"]; ok {
		t.Error("trailing zeros must not count")
	}
	if _, ok := v["c"]; ok {
		t.Error("four decimals must be accepted")
	}
}

func TestDateOrdering(t *testing.T) {
	acq := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	v := Violations{}
	After("fechaVencimiento", acq, acq, v)
	if v["fechaVencimiento"] != "must_be_after_acquisition" {
		t.Fatalf("same day must be rejected, got %q", v["fechaVencimiento"])
	}
	v = Violations{}
	After("fechaVencimiento", acq.AddDate(0, 0, 1), acq, v)
	NotAfter("fechaAdquisicion", acq, acq.AddDate(0, 0, 1), v)
	if !v.Empty() {
		t.Fatalf("unexpected violations: %v", v)
	}
	NotAfter("fechaAdquisicion", acq.AddDate(0, 0, 2), acq, v)
	if v["fechaAdquisicion"] != "must_not_be_in_future" {
		t.Fatalf("got %v", v)
	}
}

func TestPatternSkipsEmpty(t *testing.T) {
	re := regexp.MustCompile(`^[0-9]+$`)
	v := Violations{}
	Pattern("telefono", "", re, v)
	if !v.Empty() {
		t.Fatal("empty value is Required's job")
	}
	Pattern("telefono", "abc", re, v)
	if v["telefono"] != "invalid_format" {
		t.Fatalf("got %v", v)
	}
}
