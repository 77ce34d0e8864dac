package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Units of measure allowed on a line
const (
	UnitSquareMeter = "M2"      // surface
	UnitLinearMeter = "ML"      // length
	UnitPiece       = "U"       // unit
	UnitLumpSum     = "FORFAIT" // lump sum
	UnitHour        = "H"       // time
)

// AllowedUnits lists the valid units in display order.
var AllowedUnits = []string{UnitSquareMeter, UnitLinearMeter, UnitPiece, UnitLumpSum, UnitHour}

// AllowedVATRates are the French VAT percentage rates a line may carry.
var AllowedVATRates = []decimal.Decimal{
	decimal.Zero,
	decimal.NewFromFloat(2.1),
	decimal.NewFromFloat(5.5),
	decimal.NewFromInt(10),
	decimal.NewFromInt(20),
}

var hundred = decimal.NewFromInt(100)

// Line is one priced row of a document as seen by the totals engine.
// It carries no identity or parent reference: pure input.
type Line struct {
	Designation     string
	Description     string
	Quantity        decimal.Decimal
	Unit            string
	UnitPrice       decimal.Decimal
	VATRate         decimal.Decimal // percentage, e.g. 20 for 20%
	DiscountPercent decimal.Decimal // 0..100
}

// Validate rejects out-of-range input. Invalid lines never reach the totals
// computation; nothing is silently clamped.
func (l Line) Validate(position int) error {
	if strings.TrimSpace(l.Designation) == "" {
		return &ValidationError{Err: ErrEmptyDesignation, Position: position}
	}
	if l.Quantity.IsNegative() {
		return &ValidationError{Err: ErrNegativeQuantity, Position: position, Details: l.Quantity.String()}
	}
	if l.UnitPrice.IsNegative() {
		return &ValidationError{Err: ErrNegativePrice, Position: position, Details: l.UnitPrice.String()}
	}
	if l.DiscountPercent.IsNegative() || l.DiscountPercent.GreaterThan(hundred) {
		return &ValidationError{Err: ErrDiscountOutOfRange, Position: position, Details: l.DiscountPercent.String()}
	}
	if !isAllowedUnit(l.Unit) {
		return &ValidationError{Err: ErrUnknownUnit, Position: position, Details: l.Unit}
	}
	if !isAllowedVATRate(l.VATRate) {
		return &ValidationError{Err: ErrUnknownVATRate, Position: position, Details: l.VATRate.String()}
	}
	return nil
}

// Total returns the line total excluding tax:
// quantity * unitPrice * (1 - discount/100), at full precision.
func (l Line) Total() decimal.Decimal {
	gross := l.Quantity.Mul(l.UnitPrice)
	discount := gross.Mul(l.DiscountPercent).Div(hundred)
	return gross.Sub(discount)
}

func isAllowedUnit(u string) bool {
	for _, a := range AllowedUnits {
		if u == a {
			return true
		}
	}
	return false
}

func isAllowedVATRate(r decimal.Decimal) bool {
	for _, a := range AllowedVATRates {
		if r.Equal(a) {
			return true
		}
	}
	return false
}
