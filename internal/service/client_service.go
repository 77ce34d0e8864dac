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

type CreateClientRequest struct {
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	ContactPerson  string `json:"contact_person"`
	Phone          string `json:"phone"`
	Email          string `json:"email" binding:"omitempty,email"`
	BillingAddress string `json:"billing_address"`
	SIRET          string `json:"siret"`
	Notes          string `json:"notes"`
}

type UpdateClientRequest struct {
	Name           *string `json:"name"`
	Type           *string `json:"type" binding:"omitempty,oneof=INDIVIDUAL COMPANY"`
	ContactPerson  *string `json:"contact_person"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" binding:"omitempty,email"`
	BillingAddress *string `json:"billing_address"`
	SIRET          *string `json:"siret"`
	Notes          *string `json:"notes"`
	IsActive       *bool   `json:"is_active"`
}

type ClientResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	ContactPerson  string `json:"contact_person"`
	Phone          string `json:"phone"`
	Email          string `json:"email"`
	BillingAddress string `json:"billing_address"`
	SIRET          string `json:"siret"`
	Notes          string `json:"notes"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, companyID string, req CreateClientRequest) (ClientResponse, error)
	GetClient(ctx context.Context, companyID, id string) (ClientResponse, error)
	ListClients(ctx context.Context, companyID, search string, page, limit int) ([]ClientResponse, int64, error)
	UpdateClient(ctx context.Context, companyID, id string, req UpdateClientRequest) (ClientResponse, error)
	DeleteClient(ctx context.Context, companyID, id string) error
}

type clientService struct {
	repo repository.ClientRepository
}

func NewClientService(repo repository.ClientRepository) ClientService {
	return &clientService{repo: repo}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, companyID string, req CreateClientRequest) (ClientResponse, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("invalid company id: %w", err)
	}

	clientType := req.Type
	if clientType == "" {
		clientType = model.ClientTypeIndividual
	}

	client := model.Client{
		CompanyID:      tenantID,
		Name:           req.Name,
		Type:           clientType,
		ContactPerson:  req.ContactPerson,
		Phone:          req.Phone,
		Email:          req.Email,
		BillingAddress: req.BillingAddress,
		SIRET:          req.SIRET,
		Notes:          req.Notes,
		IsActive:       true,
	}

	if err := s.repo.Create(ctx, &client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}

	return toClientResponse(client), nil
}

func (s *clientService) GetClient(ctx context.Context, companyID, id string) (ClientResponse, error) {
	tenantID, clientID, err := parseScope(companyID, id)
	if err != nil {
		return ClientResponse{}, err
	}

	client, err := s.repo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, companyID, search string, page, limit int) ([]ClientResponse, int64, error) {
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

	clients, total, err := s.repo.List(ctx, tenantID, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}

	result := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		result = append(result, toClientResponse(c))
	}
	return result, total, nil
}

func (s *clientService) UpdateClient(ctx context.Context, companyID, id string, req UpdateClientRequest) (ClientResponse, error) {
	tenantID, clientID, err := parseScope(companyID, id)
	if err != nil {
		return ClientResponse{}, err
	}

	client, err := s.repo.FindByID(ctx, tenantID, clientID)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("client not found: %w", err)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Type != nil {
		client.Type = *req.Type
	}
	if req.ContactPerson != nil {
		client.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.BillingAddress != nil {
		client.BillingAddress = *req.BillingAddress
	}
	if req.SIRET != nil {
		client.SIRET = *req.SIRET
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}

	return toClientResponse(*client), nil
}

func (s *clientService) DeleteClient(ctx context.Context, companyID, id string) error {
	tenantID, clientID, err := parseScope(companyID, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.FindByID(ctx, tenantID, clientID); err != nil {
		return fmt.Errorf("client not found: %w", err)
	}

	if err := s.repo.Delete(ctx, tenantID, clientID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

// --- Mapping ---

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:             c.ID.String(),
		Name:           c.Name,
		Type:           c.Type,
		ContactPerson:  c.ContactPerson,
		Phone:          c.Phone,
		Email:          c.Email,
		BillingAddress: c.BillingAddress,
		SIRET:          c.SIRET,
		Notes:          c.Notes,
		IsActive:       c.IsActive,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}
