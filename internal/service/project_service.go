package service

import (
	"context"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateProjectRequest struct {
	Name      string `json:"name" binding:"required"`
	ClientID  string `json:"client_id"`
	Status    string `json:"status" binding:"omitempty,oneof=LEAD ACTIVE ON_HOLD DONE ARCHIVED"`
	Address   string `json:"address"`
	Budget    string `json:"budget"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
	Notes     string `json:"notes"`
}

type UpdateProjectRequest struct {
	Name      *string `json:"name"`
	ClientID  *string `json:"client_id"`
	Status    *string `json:"status" binding:"omitempty,oneof=LEAD ACTIVE ON_HOLD DONE ARCHIVED"`
	Address   *string `json:"address"`
	Budget    *string `json:"budget"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Notes     *string `json:"notes"`
}

type ProjectResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ClientID   *string `json:"client_id"`
	ClientName string  `json:"client_name,omitempty"`
	Status     string  `json:"status"`
	Address    string  `json:"address"`
	Budget     string  `json:"budget"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Notes      string  `json:"notes"`
	CreatedAt  string  `json:"created_at"`
}

// --- Interface ---

type ProjectService interface {
	CreateProject(ctx context.Context, companyID string, req CreateProjectRequest) (ProjectResponse, error)
	GetProject(ctx context.Context, companyID, id string) (ProjectResponse, error)
	ListProjects(ctx context.Context, companyID, status string, page, limit int) ([]ProjectResponse, int64, error)
	UpdateProject(ctx context.Context, companyID, id string, req UpdateProjectRequest) (ProjectResponse, error)
	DeleteProject(ctx context.Context, companyID, id string) error
}

type projectService struct {
	repo       repository.ProjectRepository
	clientRepo repository.ClientRepository
}

func NewProjectService(repo repository.ProjectRepository, clientRepo repository.ClientRepository) ProjectService {
	return &projectService{repo: repo, clientRepo: clientRepo}
}

// --- Implementation ---

func (s *projectService) CreateProject(ctx context.Context, companyID string, req CreateProjectRequest) (ProjectResponse, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("invalid company id: %w", err)
	}

	project := model.Project{
		CompanyID: tenantID,
		Name:      req.Name,
		Status:    model.ProjectLead,
		Address:   req.Address,
		Notes:     req.Notes,
		Budget:    decimal.Zero,
	}
	if req.Status != "" {
		project.Status = req.Status
	}

	if req.ClientID != "" {
		clientID, parseErr := uuid.Parse(req.ClientID)
		if parseErr != nil {
			return ProjectResponse{}, fmt.Errorf("invalid client id: %w", parseErr)
		}
		if _, err := s.clientRepo.FindByID(ctx, tenantID, clientID); err != nil {
			return ProjectResponse{}, fmt.Errorf("client not found: %w", err)
		}
		project.ClientID = &clientID
	}

	if req.Budget != "" {
		budget, parseErr := decimal.NewFromString(req.Budget)
		if parseErr != nil {
			return ProjectResponse{}, fmt.Errorf("invalid budget: %w", parseErr)
		}
		if budget.IsNegative() {
			return ProjectResponse{}, fmt.Errorf("budget cannot be negative")
		}
		project.Budget = budget
	}

	if project.StartDate, err = parseOptionalDate(req.StartDate, "start_date"); err != nil {
		return ProjectResponse{}, err
	}
	if project.EndDate, err = parseOptionalDate(req.EndDate, "end_date"); err != nil {
		return ProjectResponse{}, err
	}

	if err := s.repo.Create(ctx, &project); err != nil {
		return ProjectResponse{}, fmt.Errorf("failed to create project: %w", err)
	}

	return toProjectResponse(project), nil
}

func (s *projectService) GetProject(ctx context.Context, companyID, id string) (ProjectResponse, error) {
	tenantID, projectID, err := parseScope(companyID, id)
	if err != nil {
		return ProjectResponse{}, err
	}

	project, err := s.repo.FindByID(ctx, tenantID, projectID)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("project not found: %w", err)
	}
	return toProjectResponse(*project), nil
}

func (s *projectService) ListProjects(ctx context.Context, companyID, status string, page, limit int) ([]ProjectResponse, int64, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid company id: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	projects, total, err := s.repo.List(ctx, tenantID, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch projects: %w", err)
	}

	result := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		result = append(result, toProjectResponse(p))
	}
	return result, total, nil
}

func (s *projectService) UpdateProject(ctx context.Context, companyID, id string, req UpdateProjectRequest) (ProjectResponse, error) {
	tenantID, projectID, err := parseScope(companyID, id)
	if err != nil {
		return ProjectResponse{}, err
	}

	project, err := s.repo.FindByID(ctx, tenantID, projectID)
	if err != nil {
		return ProjectResponse{}, fmt.Errorf("project not found: %w", err)
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Address != nil {
		project.Address = *req.Address
	}
	if req.Notes != nil {
		project.Notes = *req.Notes
	}
	if req.ClientID != nil {
		if *req.ClientID == "" {
			project.ClientID = nil
		} else {
			clientID, parseErr := uuid.Parse(*req.ClientID)
			if parseErr != nil {
				return ProjectResponse{}, fmt.Errorf("invalid client id: %w", parseErr)
			}
			if _, err := s.clientRepo.FindByID(ctx, tenantID, clientID); err != nil {
				return ProjectResponse{}, fmt.Errorf("client not found: %w", err)
			}
			project.ClientID = &clientID
		}
	}
	if req.Budget != nil {
		budget, parseErr := decimal.NewFromString(*req.Budget)
		if parseErr != nil {
			return ProjectResponse{}, fmt.Errorf("invalid budget: %w", parseErr)
		}
		if budget.IsNegative() {
			return ProjectResponse{}, fmt.Errorf("budget cannot be negative")
		}
		project.Budget = budget
	}
	if req.StartDate != nil {
		if project.StartDate, err = parseOptionalDate(*req.StartDate, "start_date"); err != nil {
			return ProjectResponse{}, err
		}
	}
	if req.EndDate != nil {
		if project.EndDate, err = parseOptionalDate(*req.EndDate, "end_date"); err != nil {
			return ProjectResponse{}, err
		}
	}

	// Client is preloaded on FindByID; drop it so Save doesn't cascade
	project.Client = nil

	if err := s.repo.Update(ctx, project); err != nil {
		return ProjectResponse{}, fmt.Errorf("failed to update project: %w", err)
	}

	return toProjectResponse(*project), nil
}

func (s *projectService) DeleteProject(ctx context.Context, companyID, id string) error {
	tenantID, projectID, err := parseScope(companyID, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, tenantID, projectID); err != nil {
		return fmt.Errorf("project not found: %w", err)
	}

	if err := s.repo.Delete(ctx, tenantID, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// --- Helpers ---

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s format (expected YYYY-MM-DD): %w", field, err)
	}
	return &t, nil
}

// --- Mapping ---

func toProjectResponse(p model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Status:    p.Status,
		Address:   p.Address,
		Budget:    p.Budget.StringFixed(2),
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
	if p.ClientID != nil {
		c := p.ClientID.String()
		resp.ClientID = &c
	}
	if p.Client != nil {
		resp.ClientName = p.Client.Name
	}
	if p.StartDate != nil {
		d := p.StartDate.Format("2006-01-02")
		resp.StartDate = &d
	}
	if p.EndDate != nil {
		d := p.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
