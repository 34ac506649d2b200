package validation

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
)

func TestBasicValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	PositiveDecimal("salary", decimal.Zero, v)
	NonNegativeDecimal("price", decimal.RequireFromString("-1"), v)
	PositiveInt("quantity", 0, v)
	if len(v) != 4 {
		t.Fatalf("violations = %v, want 4 entries", v)
	}

	ok := Violations{}
	Required("name", "Ana", ok)
	PositiveDecimal("salary", decimal.RequireFromString("0.01"), ok)
	NonNegativeDecimal("price", decimal.Zero, ok)
	PositiveInt("quantity", 1, ok)
	if !ok.Empty() {
		t.Errorf("unexpected violations: %v", ok)
	}
}

func TestRangeDecimal(t *testing.T) {
	v := Violations{}
	RangeDecimal("discount", decimal.RequireFromString("101"), decimal.Zero, decimal.RequireFromString("100"), v)
	if v["discount"] != "out_of_range" {
		t.Errorf("violations = %v", v)
	}
}

func TestMatchesSkipsEmpty(t *testing.T) {
	re := regexp.MustCompile(`^\d{3}$`)
	v := Violations{}
	Matches("code", "", re, v)
	if !v.Empty() {
		t.Errorf("empty value should pass: %v", v)
	}
	Matches("code", "12a", re, v)
	if v["code"] != "invalid_format" {
		t.Errorf("violations = %v", v)
	}
}
