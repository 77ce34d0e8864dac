package render

import (
	"testing"
	"time"

	"backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func fixtureDocument() (model.Company, model.Document) {
	company := model.Company{
		Name:    "Atelier Lumen",
		Address: "12 rue des Arts, 75011 Paris",
		Phone:   "01 23 45 67 89",
		Email:   "contact@atelier-lumen.fr",
	}

	doc := model.Document{
		Kind:         model.KindQuote,
		Number:       "DEV-2026-001",
		Title:        "Rénovation salon",
		Date:         time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC),
		TotalExclTax: dec("245"),
		TotalTax:     dec("44.5"),
		TotalInclTax: dec("289.5"),
		Subtotal:     dec("245"),
		PaymentTerms: "Acompte de 30% à la signature",
		Client: &model.Client{
			Name:           "M. Dupont",
			BillingAddress: "3 avenue Victor Hugo, 75016 Paris",
		},
		Lines: []model.DocumentLine{
			{
				Position:         0,
				Designation:      "Pose parquet",
				Quantity:         dec("10"),
				Unit:             "M2",
				UnitPrice:        dec("20"),
				LineTotalExclTax: dec("200"),
			},
		},
	}
	return company, doc
}

func TestBuildDocumentPayload(t *testing.T) {
	company, doc := fixtureDocument()
	p := BuildDocumentPayload(company, doc)

	assert.Equal(t, "DEV-2026-001", p.DocumentNumber)
	assert.Equal(t, "15/03/2026", p.DocumentDate)
	assert.Equal(t, "Atelier Lumen", p.Company.Name)
	require.NotNil(t, p.Client)
	assert.Equal(t, "M. Dupont", p.Client.Name)

	// No discount, no notes: line detail, totals, payment terms
	require.Len(t, p.Sections, 3)
	assert.Equal(t, "Détail des prestations", p.Sections[0].Title)
	lines, ok := p.Sections[0].Content.([]Field)
	require.True(t, ok)
	require.Len(t, lines, 1)
	assert.Equal(t, "Pose parquet", lines[0].Label)
	assert.Equal(t, "10 M2 x 20.00 € = 200.00 €", lines[0].Value)

	assert.Equal(t, "Totaux", p.Sections[1].Title)
	totals, ok := p.Sections[1].Content.([]Field)
	require.True(t, ok)
	require.Len(t, totals, 3)
	assert.Equal(t, Field{Label: "Total HT", Value: "245.00 €"}, totals[0])
	assert.Equal(t, Field{Label: "TVA", Value: "44.50 €"}, totals[1])
	assert.Equal(t, Field{Label: "Total TTC", Value: "289.50 €"}, totals[2])

	assert.Equal(t, "Conditions de règlement", p.Sections[2].Title)
	assert.Equal(t, "Acompte de 30% à la signature", p.Sections[2].Content)
}

func TestBuildDocumentPayloadWithGlobalDiscount(t *testing.T) {
	company, doc := fixtureDocument()
	doc.GlobalDiscountAmount = dec("24.5")
	doc.TotalExclTax = dec("220.5")
	doc.TotalTax = dec("40.05")
	doc.TotalInclTax = dec("260.55")

	p := BuildDocumentPayload(company, doc)

	totals, ok := p.Sections[1].Content.([]Field)
	require.True(t, ok)
	require.Len(t, totals, 5)
	assert.Equal(t, Field{Label: "Sous-total", Value: "245.00 €"}, totals[0])
	assert.Equal(t, Field{Label: "Remise globale", Value: "-24.50 €"}, totals[1])
	assert.Equal(t, Field{Label: "Total TTC", Value: "260.55 €"}, totals[4])
}

func TestBuildDocumentPayloadIsDeterministic(t *testing.T) {
	company, doc := fixtureDocument()
	first := BuildDocumentPayload(company, doc)
	second := BuildDocumentPayload(company, doc)
	assert.Equal(t, first, second)
}
