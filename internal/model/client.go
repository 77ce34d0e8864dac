package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientType enum constants
const (
	ClientTypeIndividual = "INDIVIDUAL"
	ClientTypeCompany    = "COMPANY"
)

// Client represents a customer of the studio (individual or company)
type Client struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Type           string         `gorm:"type:varchar(20);not null;default:'INDIVIDUAL'" json:"type"` // INDIVIDUAL, COMPANY
	ContactPerson  string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone          string         `gorm:"type:varchar(50)" json:"phone"`
	Email          string         `gorm:"type:varchar(255)" json:"email"`
	BillingAddress string         `gorm:"type:text" json:"billing_address"`
	SIRET          string         `gorm:"type:varchar(20)" json:"siret"`
	Notes          string         `gorm:"type:text" json:"notes"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
