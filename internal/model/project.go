package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProjectStatus enum constants
const (
	ProjectLead     = "LEAD"
	ProjectActive   = "ACTIVE"
	ProjectOnHold   = "ON_HOLD"
	ProjectDone     = "DONE"
	ProjectArchived = "ARCHIVED"
)

// Project represents an interior design / architecture assignment for a client
type Project struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index" json:"company_id"`
	ClientID  *uuid.UUID      `gorm:"type:uuid;index" json:"client_id"` // weak ref, nullable
	Client    *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Name      string          `gorm:"type:varchar(255);not null" json:"name"`
	Status    string          `gorm:"type:varchar(20);not null;default:'LEAD';index" json:"status"`
	Address   string          `gorm:"type:text" json:"address"` // site address
	Budget    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"budget"`
	StartDate *time.Time      `gorm:"type:date" json:"start_date"`
	EndDate   *time.Time      `gorm:"type:date" json:"end_date"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
