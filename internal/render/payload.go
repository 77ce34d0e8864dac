// Package render assembles the fixed payload handed to the PDF renderer.
// Rendering itself is an external collaborator: a pure function of the
// payload, returning bytes or an error. This package never inspects output.
package render

import (
	"fmt"

	"backend/internal/model"
)

// Payload is the deterministic input for document rendering.
type Payload struct {
	DocumentNumber string        `json:"documentNumber"`
	DocumentTitle  string        `json:"documentTitle"`
	DocumentDate   string        `json:"documentDate"`
	Company        CompanyBlock  `json:"company"`
	Client         *ClientBlock  `json:"client,omitempty"`
	ProjectName    string        `json:"projectName,omitempty"`
	Sections       []Section     `json:"sections"`
}

type CompanyBlock struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	LogoURL string `json:"logoUrl,omitempty"`
}

type ClientBlock struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Section is one block of the rendered document: either free text or a
// label/value table.
type Section struct {
	Title   string      `json:"title"`
	Content interface{} `json:"content"` // string or []Field
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Renderer turns a payload into document bytes. Implementations live outside
// this module (hosted rendering, headless layout engine).
type Renderer interface {
	Render(p Payload) ([]byte, error)
}

// BuildDocumentPayload maps a billing document onto the render payload.
// Pure function: same inputs produce the same payload.
func BuildDocumentPayload(company model.Company, doc model.Document) Payload {
	p := Payload{
		DocumentNumber: doc.Number,
		DocumentTitle:  doc.Title,
		DocumentDate:   doc.Date.Format("02/01/2006"),
		Company: CompanyBlock{
			Name:    company.Name,
			Address: company.Address,
			Phone:   company.Phone,
			Email:   company.Email,
			LogoURL: company.LogoURL,
		},
	}

	if doc.Client != nil {
		p.Client = &ClientBlock{
			Name:    doc.Client.Name,
			Address: doc.Client.BillingAddress,
			Phone:   doc.Client.Phone,
			Email:   doc.Client.Email,
		}
	}
	if doc.Project != nil {
		p.ProjectName = doc.Project.Name
	}

	lines := make([]Field, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, Field{
			Label: l.Designation,
			Value: fmt.Sprintf("%s %s x %s € = %s €",
				l.Quantity.String(), l.Unit, l.UnitPrice.StringFixed(2), l.LineTotalExclTax.StringFixed(2)),
		})
	}
	p.Sections = append(p.Sections, Section{Title: "Détail des prestations", Content: lines})

	totals := []Field{
		{Label: "Total HT", Value: doc.TotalExclTax.StringFixed(2) + " €"},
		{Label: "TVA", Value: doc.TotalTax.StringFixed(2) + " €"},
		{Label: "Total TTC", Value: doc.TotalInclTax.StringFixed(2) + " €"},
	}
	if doc.GlobalDiscountAmount.IsPositive() {
		totals = append([]Field{
			{Label: "Sous-total", Value: doc.Subtotal.StringFixed(2) + " €"},
			{Label: "Remise globale", Value: "-" + doc.GlobalDiscountAmount.StringFixed(2) + " €"},
		}, totals...)
	}
	p.Sections = append(p.Sections, Section{Title: "Totaux", Content: totals})

	if doc.PaymentTerms != "" {
		p.Sections = append(p.Sections, Section{Title: "Conditions de règlement", Content: doc.PaymentTerms})
	}
	if doc.Notes != "" {
		p.Sections = append(p.Sections, Section{Title: "Notes", Content: doc.Notes})
	}

	return p
}
