package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	Create(ctx context.Context, tpl *model.DocumentTemplate) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.DocumentTemplate, error)
	List(ctx context.Context, companyID uuid.UUID, tplType string) ([]model.DocumentTemplate, error)
	Update(ctx context.Context, tpl *model.DocumentTemplate) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	ClearDefault(ctx context.Context, companyID uuid.UUID, tplType string) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(ctx context.Context, tpl *model.DocumentTemplate) error {
	return GetDB(ctx, r.db).Create(tpl).Error
}

func (r *templateRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.DocumentTemplate, error) {
	var tpl model.DocumentTemplate
	err := GetDB(ctx, r.db).First(&tpl, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *templateRepository) List(ctx context.Context, companyID uuid.UUID, tplType string) ([]model.DocumentTemplate, error) {
	var templates []model.DocumentTemplate
	query := GetDB(ctx, r.db).Where("company_id = ?", companyID)
	if tplType != "" {
		query = query.Where("type = ?", tplType)
	}
	if err := query.Order("type ASC, name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, tpl *model.DocumentTemplate) error {
	return GetDB(ctx, r.db).Save(tpl).Error
}

func (r *templateRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&model.DocumentTemplate{}).Error
}

// ClearDefault unsets is_default on every template of the given type, so a new
// default can be promoted without two defaults coexisting.
func (r *templateRepository) ClearDefault(ctx context.Context, companyID uuid.UUID, tplType string) error {
	return GetDB(ctx, r.db).Model(&model.DocumentTemplate{}).
		Where("company_id = ? AND type = ?", companyID, tplType).
		Update("is_default", false).Error
}
