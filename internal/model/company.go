package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the tenant root. Every business row carries a company_id and no
// query ever crosses tenants.
type Company struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Address      string    `gorm:"type:text" json:"address"`
	Phone        string    `gorm:"type:varchar(50)" json:"phone"`
	Email        string    `gorm:"type:varchar(255)" json:"email"`
	LogoURL      string    `gorm:"type:text" json:"logo_url"`
	SIRET        string    `gorm:"type:varchar(20)" json:"siret"`
	PaymentTerms string    `gorm:"type:text" json:"payment_terms"` // default terms copied onto new documents
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
