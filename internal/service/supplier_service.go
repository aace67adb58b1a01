package service

import (
	"context"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
)

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := &model.Supplier{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
		Active:      true,
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return nil, apperror.Persistence("create supplier", err)
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("supplier", id.String())
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context, includeInactive bool) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, apperror.Persistence("list suppliers", err)
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *supplierToResponse(&suppliers[i]))
	}
	return out, nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("supplier", id.String())
	}
	sup.Name = req.Name
	sup.ContactName = req.ContactName
	sup.Email = req.Email
	sup.Phone = req.Phone
	sup.Address = req.Address
	sup.Notes = req.Notes
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, apperror.Persistence("update supplier", err)
	}
	return supplierToResponse(sup), nil
}

// Deactivate soft-deletes: suppliers referenced by products or orders must
// stay resolvable, so rows are never removed.
func (s *supplierService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperror.NotFound("supplier", id.String())
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return apperror.Persistence("deactivate supplier", err)
	}
	return nil
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:          s.ID.String(),
		Name:        s.Name,
		ContactName: s.ContactName,
		Email:       s.Email,
		Phone:       s.Phone,
		Address:     s.Address,
		Notes:       s.Notes,
		Active:      s.Active,
	}
}
