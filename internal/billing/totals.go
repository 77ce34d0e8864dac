package billing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TaxBucket is the share of a document taxed at one particular rate.
// Base is the bucket's subtotal after the global discount has been applied
// proportionally; Tax is Base * Rate / 100.
type TaxBucket struct {
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
	Tax  decimal.Decimal `json:"tax"`
}

// Totals is the full financial summary of a line-item set.
type Totals struct {
	Subtotal             decimal.Decimal `json:"subtotal"`               // after per-line discounts, before global discount
	GlobalDiscountAmount decimal.Decimal `json:"global_discount_amount"`
	TotalExclTax         decimal.Decimal `json:"total_excl_tax"`
	TaxBuckets           []TaxBucket     `json:"tax_buckets"` // sorted by ascending rate
	TotalTax             decimal.Decimal `json:"total_tax"`
	TotalInclTax         decimal.Decimal `json:"total_incl_tax"`
	LineTotals           []decimal.Decimal `json:"-"` // per-line totals excl. tax, parallel to the input
}

// ComputeTotals computes the totals of an ordered line set under a global
// discount percentage. Pure and deterministic: same input, same output, no
// hidden state. O(lines).
//
// Tax is bucketed per VAT rate. Each bucket's pre-global-discount subtotal is
// scaled by totalExclTax/subtotal so the global discount reduces every rate's
// base uniformly; that is what keeps totalExclTax + totalTax == totalInclTax
// exact on documents mixing several rates.
func ComputeTotals(lines []Line, globalDiscountPercent decimal.Decimal) (Totals, error) {
	if globalDiscountPercent.IsNegative() || globalDiscountPercent.GreaterThan(hundred) {
		return Totals{}, &ValidationError{Err: ErrDiscountOutOfRange, Position: -1, Details: globalDiscountPercent.String()}
	}
	for i, l := range lines {
		if err := l.Validate(i); err != nil {
			return Totals{}, err
		}
	}

	t := Totals{
		Subtotal:             decimal.Zero,
		GlobalDiscountAmount: decimal.Zero,
		TotalExclTax:         decimal.Zero,
		TotalTax:             decimal.Zero,
		TotalInclTax:         decimal.Zero,
		LineTotals:           make([]decimal.Decimal, len(lines)),
	}

	bucketSubtotals := map[string]decimal.Decimal{}
	bucketRates := map[string]decimal.Decimal{}
	for i, l := range lines {
		lineTotal := l.Total()
		t.LineTotals[i] = lineTotal
		t.Subtotal = t.Subtotal.Add(lineTotal)

		key := l.VATRate.String()
		bucketSubtotals[key] = bucketSubtotals[key].Add(lineTotal)
		bucketRates[key] = l.VATRate
	}

	t.GlobalDiscountAmount = t.Subtotal.Mul(globalDiscountPercent).Div(hundred)
	t.TotalExclTax = t.Subtotal.Sub(t.GlobalDiscountAmount)

	keys := make([]string, 0, len(bucketSubtotals))
	for k := range bucketSubtotals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bucketRates[keys[i]].LessThan(bucketRates[keys[j]])
	})

	t.TaxBuckets = make([]TaxBucket, 0, len(keys))
	for _, k := range keys {
		base := decimal.Zero
		if t.Subtotal.IsPositive() {
			// bucketSubtotal / subtotal * totalExclTax, ordered to divide last
			base = bucketSubtotals[k].Mul(t.TotalExclTax).Div(t.Subtotal)
		}
		tax := base.Mul(bucketRates[k]).Div(hundred)
		t.TaxBuckets = append(t.TaxBuckets, TaxBucket{Rate: bucketRates[k], Base: base, Tax: tax})
		t.TotalTax = t.TotalTax.Add(tax)
	}

	t.TotalInclTax = t.TotalExclTax.Add(t.TotalTax)
	return t, nil
}
