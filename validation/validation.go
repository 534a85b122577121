package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records the first violation for a field; later ones are dropped.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v.Add(field, "too_long")
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v.Add(field, "must_be_positive")
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

// MaxScale flags val when it carries more than places fractional digits.
// Trailing zeros do not count.
func MaxScale(field string, val decimal.Decimal, places int32, v Violations) {
	if !val.Equal(val.Truncate(places)) {
		v.Add(field, "too_many_decimals")
	}
}

func RequiredID(field string, id uint, v Violations) {
	if id == 0 {
		v.Add(field, "required")
	}
}

func RequiredTime(field string, t time.Time, v Violations) {
	if t.IsZero() {
		v.Add(field, "required")
	}
}

// NotAfter flags t when it falls after limit.
func NotAfter(field string, t, limit time.Time, v Violations) {
	if !t.IsZero() && t.After(limit) {
		v.Add(field, "must_not_be_in_future")
	}
}

// After flags t unless it is strictly after ref.
func After(field string, t, ref time.Time, v Violations) {
	if !t.IsZero() && !ref.IsZero() && !t.After(ref) {
		v.Add(field, "must_be_after_acquisition")
	}
}

func Pattern(field, value string, re *regexp.Regexp, v Violations) {
	if strings.TrimSpace(value) != "" && !re.MatchString(value) {
		v.Add(field, "invalid_format")
	}
}
