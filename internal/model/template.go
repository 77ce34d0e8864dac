package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TemplateType enum constants for French professional document templates
const (
	TemplateContract       = "CONTRACT"        // contrat de mission
	TemplateSiteReport     = "SITE_REPORT"     // compte-rendu de chantier
	TemplateTechnicalVisit = "TECHNICAL_VISIT" // rapport de visite technique
	TemplateMeetingMinutes = "MEETING_MINUTES" // compte-rendu de réunion
	TemplateHandover       = "HANDOVER"        // procès-verbal de réception
)

// IsAllowedTemplateType reports whether t is a known template type
func IsAllowedTemplateType(t string) bool {
	switch t {
	case TemplateContract, TemplateSiteReport, TemplateTechnicalVisit, TemplateMeetingMinutes, TemplateHandover:
		return true
	default:
		return false
	}
}

// DocumentTemplate stores per-company professional document templates.
// Templates only affect rendering, never billing figures.
type DocumentTemplate struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID uuid.UUID      `gorm:"type:uuid;not null;index:idx_templates_company_type" json:"company_id"`
	Type      string         `gorm:"type:varchar(30);not null;index:idx_templates_company_type" json:"type"`
	Name      string         `gorm:"type:varchar(150);not null" json:"name"`
	Body      string         `gorm:"type:text" json:"body"` // template body with placeholder sections
	IsDefault bool           `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *DocumentTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
