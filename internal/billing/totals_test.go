package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func line(qty, price, discount, vat string) Line {
	return Line{
		Designation:     "Travaux",
		Quantity:        dec(qty),
		Unit:            UnitPiece,
		UnitPrice:       dec(price),
		VATRate:         dec(vat),
		DiscountPercent: dec(discount),
	}
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{"no discount", line("2", "100", "0", "20"), "200"},
		{"10 percent discount", line("1", "50", "10", "10"), "45"},
		{"full discount", line("3", "40", "100", "20"), "0"},
		{"zero quantity", line("0", "99.99", "0", "20"), "0"},
		{"fractional quantity", line("2.5", "80", "0", "20"), "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.line.Total().Equal(dec(tt.want)),
				"got %s want %s", tt.line.Total(), tt.want)
		})
	}
}

func TestLineValidate(t *testing.T) {
	tests := []struct {
		name    string
		line    Line
		wantErr error
	}{
		{"valid", line("1", "100", "0", "20"), nil},
		{"negative quantity", line("-1", "100", "0", "20"), ErrNegativeQuantity},
		{"negative price", line("1", "-100", "0", "20"), ErrNegativePrice},
		{"discount above 100", line("1", "100", "101", "20"), ErrDiscountOutOfRange},
		{"negative discount", line("1", "100", "-5", "20"), ErrDiscountOutOfRange},
		{"bad vat rate", line("1", "100", "0", "18"), ErrUnknownVATRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.line.Validate(0)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, IsValidation(err))
		})
	}

	t.Run("missing designation", func(t *testing.T) {
		l := line("1", "100", "0", "20")
		l.Designation = ""
		assert.ErrorIs(t, l.Validate(2), ErrEmptyDesignation)
	})

	t.Run("blank designation", func(t *testing.T) {
		l := line("1", "100", "0", "20")
		l.Designation = "   "
		assert.ErrorIs(t, l.Validate(2), ErrEmptyDesignation)
	})

	t.Run("unknown unit", func(t *testing.T) {
		l := line("1", "100", "0", "20")
		l.Unit = "KG"
		assert.ErrorIs(t, l.Validate(0), ErrUnknownUnit)
	})
}

func TestComputeTotalsWorkedExample(t *testing.T) {
	// 2 x 100 at 20% VAT plus 1 x 50 with 10% line discount at 10% VAT,
	// no global discount.
	lines := []Line{
		line("2", "100", "0", "20"),
		line("1", "50", "10", "10"),
	}

	totals, err := ComputeTotals(lines, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("245")), "subtotal %s", totals.Subtotal)
	assert.True(t, totals.TotalExclTax.Equal(dec("245")))
	assert.True(t, totals.TotalTax.Equal(dec("44.5")), "tax %s", totals.TotalTax)
	assert.True(t, totals.TotalInclTax.Equal(dec("289.5")), "ttc %s", totals.TotalInclTax)

	require.Len(t, totals.TaxBuckets, 2)
	assert.True(t, totals.TaxBuckets[0].Rate.Equal(dec("10")))
	assert.True(t, totals.TaxBuckets[0].Tax.Equal(dec("4.5")))
	assert.True(t, totals.TaxBuckets[1].Rate.Equal(dec("20")))
	assert.True(t, totals.TaxBuckets[1].Tax.Equal(dec("40")))

	require.Len(t, totals.LineTotals, 2)
	assert.True(t, totals.LineTotals[0].Equal(dec("200")))
	assert.True(t, totals.LineTotals[1].Equal(dec("45")))
}

func TestComputeTotalsGlobalDiscountMixedRates(t *testing.T) {
	lines := []Line{
		line("2", "100", "0", "20"),
		line("1", "50", "10", "10"),
	}

	totals, err := ComputeTotals(lines, dec("10"))
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(dec("245")))
	assert.True(t, totals.GlobalDiscountAmount.Equal(dec("24.5")))
	assert.True(t, totals.TotalExclTax.Equal(dec("220.5")))

	// Buckets scale by the same ratio the discount applied to the whole
	// document: 200 -> 180 and 45 -> 40.5.
	require.Len(t, totals.TaxBuckets, 2)
	assert.True(t, totals.TaxBuckets[0].Base.Equal(dec("40.5")), "base %s", totals.TaxBuckets[0].Base)
	assert.True(t, totals.TaxBuckets[0].Tax.Equal(dec("4.05")))
	assert.True(t, totals.TaxBuckets[1].Base.Equal(dec("180")))
	assert.True(t, totals.TaxBuckets[1].Tax.Equal(dec("36")))

	assert.True(t, totals.TotalTax.Equal(dec("40.05")))
	assert.True(t, totals.TotalInclTax.Equal(dec("260.55")))
}

func TestComputeTotalsAggregateIdentity(t *testing.T) {
	// totalExclTax + totalTax must equal totalInclTax for every rate mix and
	// discount combination.
	cases := []struct {
		name     string
		lines    []Line
		discount string
	}{
		{"single zero rate", []Line{line("3", "100", "0", "0")}, "0"},
		{"single rate", []Line{line("1", "1234.56", "0", "20")}, "0"},
		{"mixed rates", []Line{
			line("2", "100", "0", "20"),
			line("1", "50", "10", "10"),
			line("7", "33.33", "5", "5.5"),
			line("1", "812.40", "0", "2.1"),
		}, "0"},
		{"mixed rates with global discount", []Line{
			line("2", "100", "0", "20"),
			line("1", "50", "10", "10"),
			line("4", "19.99", "0", "0"),
		}, "12.5"},
		{"full global discount", []Line{
			line("2", "100", "0", "20"),
			line("1", "50", "0", "10"),
		}, "100"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := ComputeTotals(tc.lines, dec(tc.discount))
			require.NoError(t, err)
			assert.True(t, totals.TotalExclTax.Add(totals.TotalTax).Equal(totals.TotalInclTax),
				"HT %s + TVA %s != TTC %s", totals.TotalExclTax, totals.TotalTax, totals.TotalInclTax)
		})
	}
}

func TestComputeTotalsEmptyLines(t *testing.T) {
	totals, err := ComputeTotals(nil, decimal.Zero)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.TotalExclTax.IsZero())
	assert.True(t, totals.TotalTax.IsZero())
	assert.True(t, totals.TotalInclTax.IsZero())
	assert.Empty(t, totals.TaxBuckets)
}

func TestComputeTotalsZeroPricedLines(t *testing.T) {
	// All lines priced at zero: bucket ratios are defined as 0, no division
	// by zero.
	lines := []Line{
		line("2", "0", "0", "20"),
		line("5", "0", "0", "10"),
	}

	totals, err := ComputeTotals(lines, dec("50"))
	require.NoError(t, err)
	assert.True(t, totals.TotalInclTax.IsZero())
	for _, b := range totals.TaxBuckets {
		assert.True(t, b.Tax.IsZero())
	}
}

func TestComputeTotalsIdempotent(t *testing.T) {
	lines := []Line{
		line("2", "100", "0", "20"),
		line("1", "50", "10", "10"),
	}

	first, err := ComputeTotals(lines, dec("7"))
	require.NoError(t, err)
	second, err := ComputeTotals(lines, dec("7"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeTotalsRejectsInvalidInput(t *testing.T) {
	_, err := ComputeTotals([]Line{line("-1", "100", "0", "20")}, decimal.Zero)
	assert.ErrorIs(t, err, ErrNegativeQuantity)

	_, err = ComputeTotals([]Line{line("1", "100", "0", "20")}, dec("120"))
	assert.ErrorIs(t, err, ErrDiscountOutOfRange)
}
