package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DocumentKind enum constants
const (
	KindQuote   = "QUOTE"
	KindInvoice = "INVOICE"
)

// Document number prefixes (French billing convention: devis / facture)
const (
	PrefixQuote   = "DEV"
	PrefixInvoice = "FACT"
)

// Quote status enum constants
const (
	QuoteDraft    = "DRAFT"
	QuoteSent     = "SENT"
	QuoteAccepted = "ACCEPTED"
	QuoteRejected = "REJECTED"
	QuoteExpired  = "EXPIRED"
)

// Invoice status enum constants
const (
	InvoiceDraft     = "DRAFT"
	InvoiceSent      = "SENT"
	InvoicePartial   = "PARTIAL"
	InvoicePaid      = "PAID"
	InvoiceOverdue   = "OVERDUE"
	InvoiceCancelled = "CANCELLED"
)

// Document is a quote or an invoice. Both kinds share the line-item and totals
// model; invoice-only fields stay zero/null on quotes.
//
// Stored totals are a persistence convenience: the service recomputes them from
// the lines on every write, they are never accepted from client input.
type Document struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID  `gorm:"type:uuid;not null;index:idx_documents_company_kind" json:"company_id"`
	Kind      string     `gorm:"type:varchar(10);not null;index:idx_documents_company_kind" json:"kind"` // QUOTE, INVOICE
	Number    string     `gorm:"type:varchar(30);not null;uniqueIndex:idx_documents_number" json:"number"`
	Title     string     `gorm:"type:varchar(255)" json:"title"` // object of the quote/invoice
	Status    string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Date      time.Time  `gorm:"type:date;not null" json:"date"`
	DueDate   *time.Time `gorm:"type:date" json:"due_date"` // invoices only

	ClientID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client    *Client    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	Project   *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`

	GlobalDiscountPercent decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"global_discount_percent"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	GlobalDiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"global_discount_amount"`
	TotalExclTax          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_excl_tax"`
	TotalTax              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_tax"`
	TotalInclTax          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_incl_tax"`
	TaxDetails            string          `gorm:"type:text" json:"tax_details"` // per-rate tax buckets, serialized JSON

	// Invoice-only fields. AmountPaid is mutated only by recording payments;
	// AmountDue is always total_incl_tax - amount_paid.
	AmountPaid decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_paid"`
	AmountDue  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount_due"`
	QuoteID    *uuid.UUID      `gorm:"type:uuid;index" json:"quote_id"` // weak ref to the converted quote

	PaymentTerms string `gorm:"type:text" json:"payment_terms"`
	Notes        string `gorm:"type:text" json:"notes"`

	Lines []DocumentLine `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"lines"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DocumentLine is one priced row of a document. Lines have no identity outside
// their parent: created and destroyed with the owning document's edit session.
// Position is contiguous 0..n-1 within the parent, re-sequenced on every save.
type DocumentLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"document_id"`
	Position         int             `gorm:"not null" json:"position"`
	Designation      string          `gorm:"type:varchar(255);not null" json:"designation"`
	Description      string          `gorm:"type:text" json:"description"`
	Quantity         decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"quantity"`
	Unit             string          `gorm:"type:varchar(10);not null;default:'U'" json:"unit"` // M2, ML, U, FORFAIT, H
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	VATRate          decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"vat_rate"`         // percentage: 0, 2.1, 5.5, 10, 20
	DiscountPercent  decimal.Decimal `gorm:"type:decimal(7,4);not null;default:0" json:"discount_percent"`
	LineTotalExclTax decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"line_total_excl_tax"` // derived, recomputed on save
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (l *DocumentLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
