package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod enum constants
const (
	PaymentTransfer = "TRANSFER"
	PaymentCheck    = "CHECK"
	PaymentCard     = "CARD"
	PaymentCash     = "CASH"
)

// Payment records money received against an invoice
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice   *Document       `gorm:"foreignKey:InvoiceID" json:"-"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Date      time.Time       `gorm:"type:date;not null" json:"date"`
	Method    string          `gorm:"type:varchar(20);not null;default:'TRANSFER'" json:"method"` // TRANSFER, CHECK, CARD, CASH
	Reference string          `gorm:"type:varchar(100)" json:"reference"`                         // check number, transfer label...
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
