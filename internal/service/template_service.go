package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTemplateRequest struct {
	Type      string `json:"type" binding:"required,oneof=CONTRACT SITE_REPORT TECHNICAL_VISIT MEETING_MINUTES HANDOVER"`
	Name      string `json:"name" binding:"required"`
	Body      string `json:"body"`
	IsDefault bool   `json:"is_default"`
}

type UpdateTemplateRequest struct {
	Name      *string `json:"name"`
	Body      *string `json:"body"`
	IsDefault *bool   `json:"is_default"`
}

type TemplateResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type TemplateService interface {
	CreateTemplate(ctx context.Context, companyID string, req CreateTemplateRequest) (TemplateResponse, error)
	GetTemplate(ctx context.Context, companyID, id string) (TemplateResponse, error)
	ListTemplates(ctx context.Context, companyID, tplType string) ([]TemplateResponse, error)
	UpdateTemplate(ctx context.Context, companyID, id string, req UpdateTemplateRequest) (TemplateResponse, error)
	DeleteTemplate(ctx context.Context, companyID, id string) error
}

type templateService struct {
	repo      repository.TemplateRepository
	txManager repository.TransactionManager
}

func NewTemplateService(repo repository.TemplateRepository, txManager repository.TransactionManager) TemplateService {
	return &templateService{repo: repo, txManager: txManager}
}

// --- Implementation ---

func (s *templateService) CreateTemplate(ctx context.Context, companyID string, req CreateTemplateRequest) (TemplateResponse, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return TemplateResponse{}, fmt.Errorf("invalid company id: %w", err)
	}

	tpl := model.DocumentTemplate{
		CompanyID: tenantID,
		Type:      req.Type,
		Name:      req.Name,
		Body:      req.Body,
		IsDefault: req.IsDefault,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.IsDefault {
			if clearErr := s.repo.ClearDefault(txCtx, tenantID, req.Type); clearErr != nil {
				return fmt.Errorf("failed to clear previous default: %w", clearErr)
			}
		}
		if createErr := s.repo.Create(txCtx, &tpl); createErr != nil {
			return fmt.Errorf("failed to create template: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return TemplateResponse{}, err
	}

	return toTemplateResponse(tpl), nil
}

func (s *templateService) GetTemplate(ctx context.Context, companyID, id string) (TemplateResponse, error) {
	tenantID, tplID, err := parseScope(companyID, id)
	if err != nil {
		return TemplateResponse{}, err
	}

	tpl, err := s.repo.FindByID(ctx, tenantID, tplID)
	if err != nil {
		return TemplateResponse{}, fmt.Errorf("template not found: %w", err)
	}
	return toTemplateResponse(*tpl), nil
}

func (s *templateService) ListTemplates(ctx context.Context, companyID, tplType string) ([]TemplateResponse, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, fmt.Errorf("invalid company id: %w", err)
	}
	if tplType != "" && !model.IsAllowedTemplateType(tplType) {
		return nil, fmt.Errorf("unknown template type '%s'", tplType)
	}

	templates, err := s.repo.List(ctx, tenantID, tplType)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch templates: %w", err)
	}

	result := make([]TemplateResponse, 0, len(templates))
	for _, t := range templates {
		result = append(result, toTemplateResponse(t))
	}
	return result, nil
}

func (s *templateService) UpdateTemplate(ctx context.Context, companyID, id string, req UpdateTemplateRequest) (TemplateResponse, error) {
	tenantID, tplID, err := parseScope(companyID, id)
	if err != nil {
		return TemplateResponse{}, err
	}

	tpl, err := s.repo.FindByID(ctx, tenantID, tplID)
	if err != nil {
		return TemplateResponse{}, fmt.Errorf("template not found: %w", err)
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.Body != nil {
		tpl.Body = *req.Body
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.IsDefault != nil && *req.IsDefault && !tpl.IsDefault {
			if clearErr := s.repo.ClearDefault(txCtx, tenantID, tpl.Type); clearErr != nil {
				return fmt.Errorf("failed to clear previous default: %w", clearErr)
			}
			tpl.IsDefault = true
		} else if req.IsDefault != nil {
			tpl.IsDefault = *req.IsDefault
		}
		if updateErr := s.repo.Update(txCtx, tpl); updateErr != nil {
			return fmt.Errorf("failed to update template: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return TemplateResponse{}, err
	}

	return toTemplateResponse(*tpl), nil
}

func (s *templateService) DeleteTemplate(ctx context.Context, companyID, id string) error {
	tenantID, tplID, err := parseScope(companyID, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, tenantID, tplID); err != nil {
		return fmt.Errorf("template not found: %w", err)
	}

	if err := s.repo.Delete(ctx, tenantID, tplID); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

// --- Mapping ---

func toTemplateResponse(t model.DocumentTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID.String(),
		Type:      t.Type,
		Name:      t.Name,
		Body:      t.Body,
		IsDefault: t.IsDefault,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
