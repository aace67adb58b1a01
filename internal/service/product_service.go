package service

import (
	"context"
	"errors"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductService is the business logic contract for the catalog. Stock is
// never written directly by Update — only AdjustStock (movement-logged) and
// the receiving transaction may move it.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error)
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type productService struct {
	repo         repository.ProductRepository
	movementRepo repository.StockMovementRepository
	dispatcher   *worker.Dispatcher
}

func NewProductService(
	repo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
) ProductService {
	return &productService{repo: repo, movementRepo: movementRepo, dispatcher: dispatcher}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	var supplierID *uuid.UUID
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, apperror.InvalidInput("invalid supplier_id: %v", err)
		}
		supplierID = &sid
	}

	p := &model.Product{
		SKU:             req.SKU,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		UnitPrice:       req.UnitPrice,
		QuantityInStock: req.QuantityInStock,
		ReorderLevel:    req.ReorderLevel,
		ReorderQuantity: req.ReorderQuantity,
		SupplierID:      supplierID,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Duplicate("sku", req.SKU)
		}
		return nil, apperror.Persistence("create product", err)
	}

	// Opening balance goes into the ledger so the counter is explainable
	// from day one.
	if p.QuantityInStock > 0 {
		mov := &model.StockMovement{
			ProductID:   p.ID,
			Type:        model.MovementInitial,
			Quantity:    p.QuantityInStock,
			StockBefore: 0,
			StockAfter:  p.QuantityInStock,
			Reason:      "initial stock",
		}
		if err := s.movementRepo.Create(ctx, mov); err != nil {
			log.Error().Err(err).Str("sku", p.SKU).Msg("failed to record initial stock movement")
		}
	}

	if s.dispatcher != nil {
		if err := s.dispatcher.EnqueueQRCode(ctx, worker.QRCodeJobPayload{
			Entity: "product",
			ID:     p.ID.String(),
		}); err != nil {
			log.Error().Err(err).Str("sku", p.SKU).Msg("failed to enqueue QR job")
		}
	}

	return productToResponse(p), nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("product", id.String())
	}
	return productToResponse(p), nil
}

func (s *productService) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	p, err := s.repo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, apperror.NotFound("product", sku)
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("list products", err)
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("product", id.String())
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.ReorderLevel != nil {
		p.ReorderLevel = *req.ReorderLevel
	}
	if req.ReorderQuantity != nil {
		p.ReorderQuantity = *req.ReorderQuantity
	}
	if req.SupplierID != nil {
		sid, err := uuid.Parse(*req.SupplierID)
		if err != nil {
			return nil, apperror.InvalidInput("invalid supplier_id: %v", err)
		}
		p.SupplierID = &sid
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperror.Persistence("update product", err)
	}
	return productToResponse(p), nil
}

// AdjustStock applies a signed manual correction. The counter must stay
// non-negative, and every adjustment lands in the movement ledger with the
// operator's reason.
func (s *productService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("product", id.String())
	}
	if req.Delta == 0 {
		return nil, &apperror.NoOpError{Operation: "adjusting stock by zero"}
	}
	newStock := p.QuantityInStock + req.Delta
	if newStock < 0 {
		return nil, apperror.InvalidInput("adjustment would leave %s at %d units; stock cannot go negative", p.SKU, newStock)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.AdjustStockTx(tx, id, req.Delta); err != nil {
			return err
		}
		mov := &model.StockMovement{
			ProductID:   id,
			Type:        model.MovementManualAdjust,
			Quantity:    req.Delta,
			StockBefore: p.QuantityInStock,
			StockAfter:  newStock,
			Reason:      req.Reason,
		}
		return s.movementRepo.CreateTx(tx, mov)
	})
	if txErr != nil {
		return nil, apperror.Persistence("adjust stock", txErr)
	}

	p.QuantityInStock = newStock
	return productToResponse(p), nil
}

func (s *productService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	movements, total, err := s.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Persistence("list stock movements", err)
	}
	items := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		name := ""
		if m.Product != nil {
			name = m.Product.Name
		}
		var ref *string
		if m.ReferenceID != nil {
			v := m.ReferenceID.String()
			ref = &v
		}
		items = append(items, dto.StockMovementResponse{
			ID:          m.ID.String(),
			ProductID:   m.ProductID.String(),
			ProductName: name,
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			ReferenceID: ref,
			CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 100
	}
	return &dto.StockMovementListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	var supplierID *string
	if p.SupplierID != nil {
		v := p.SupplierID.String()
		supplierID = &v
	}
	return &dto.ProductResponse{
		ID:              p.ID.String(),
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		UnitPrice:       p.UnitPrice,
		QuantityInStock: p.QuantityInStock,
		ReorderLevel:    p.ReorderLevel,
		ReorderQuantity: p.ReorderQuantity,
		StockValue:      p.StockValue(),
		NeedsReorder:    p.NeedsReorder(),
		SupplierID:      supplierID,
		QRCodePath:      p.QRCodePath,
	}
}
