package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentListFilter narrows List results. Zero values mean "no filter".
type DocumentListFilter struct {
	Kind     string // QUOTE or INVOICE
	Status   string
	ClientID *uuid.UUID
	Search   string // partial match on number or title
	Page     int
	Limit    int
}

// DocumentRepository persists quotes and invoices with their owned lines.
// Every method is tenant-scoped: no query leaves the given company.
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Document, error)
	List(ctx context.Context, companyID uuid.UUID, filter DocumentListFilter) ([]model.Document, int64, error)
	Update(ctx context.Context, doc *model.Document) error
	ReplaceLines(ctx context.Context, docID uuid.UUID, lines []model.DocumentLine) error
	UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error
	Delete(ctx context.Context, companyID, id uuid.UUID) error
	CountLines(ctx context.Context, docID uuid.UUID) (int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	// Lines are created in the same insert through the association.
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) FindByID(ctx context.Context, companyID, id uuid.UUID) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Client").
		Preload("Project").
		First(&doc, "id = ? AND company_id = ?", id, companyID).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) List(ctx context.Context, companyID uuid.UUID, filter DocumentListFilter) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := GetDB(ctx, r.db)
	base := func() *gorm.DB {
		q := db.Model(&model.Document{}).Where("company_id = ?", companyID)
		if filter.Kind != "" {
			q = q.Where("kind = ?", filter.Kind)
		}
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.ClientID != nil {
			q = q.Where("client_id = ?", *filter.ClientID)
		}
		if filter.Search != "" {
			q = q.Where("number LIKE ? OR title LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
		}
		return q
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := base().
		Preload("Client").
		Order("date DESC, number DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

func (r *documentRepository) Update(ctx context.Context, doc *model.Document) error {
	// Save without touching the association; lines go through ReplaceLines.
	return GetDB(ctx, r.db).Omit("Lines").Save(doc).Error
}

// ReplaceLines swaps a document's full line set. Callers run it inside a
// transaction together with the header update.
func (r *documentRepository) ReplaceLines(ctx context.Context, docID uuid.UUID, lines []model.DocumentLine) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("document_id = ?", docID).Delete(&model.DocumentLine{}).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	for i := range lines {
		lines[i].DocumentID = docID
	}
	return db.Create(&lines).Error
}

func (r *documentRepository) UpdateStatus(ctx context.Context, companyID, id uuid.UUID, status string) error {
	res := GetDB(ctx, r.db).Model(&model.Document{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *documentRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	return GetDB(ctx, r.db).
		Where("id = ? AND company_id = ?", id, companyID).
		Delete(&model.Document{}).Error
}

func (r *documentRepository) CountLines(ctx context.Context, docID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.DocumentLine{}).
		Where("document_id = ?", docID).Count(&count).Error
	return count, err
}
