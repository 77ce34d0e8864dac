package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NumberSequence is the authoritative counter behind document numbering.
// One row per (company, prefix, year); the unique index plus a row lock on
// increment guarantees no two documents ever share a number, even under
// concurrent creation.
type NumberSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sequences_scope" json:"company_id"`
	Prefix    string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_sequences_scope" json:"prefix"`
	Year      int       `gorm:"not null;uniqueIndex:idx_sequences_scope" json:"year"`
	LastValue int       `gorm:"not null;default:0" json:"last_value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
