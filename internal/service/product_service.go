package service

import (
	"context"
	"fmt"

	"github.com/AmericableSA/Sistema-sub001/internal/apperror"
	"github.com/AmericableSA/Sistema-sub001/internal/dto"
	"github.com/AmericableSA/Sistema-sub001/internal/model"
	"github.com/AmericableSA/Sistema-sub001/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, int64, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// AdjustStock applies a signed manual correction with an audit move.
	AdjustStock(ctx context.Context, actingUser *model.User, id uuid.UUID, req dto.AdjustStockRequest) error

	Moves(ctx context.Context, id uuid.UUID, limit int) ([]model.InventoryMove, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product := &model.Product{
		Code:         req.Code,
		Name:         req.Name,
		Kind:         req.Kind,
		Price:        req.Price,
		CurrentStock: req.Stock,
		MinStock:     req.MinStock,
		Active:       true,
	}
	if req.Kind == model.ProductBundle && len(req.Items) == 0 {
		return nil, fmt.Errorf("bundle requires at least one component")
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, product); err != nil {
			return err
		}
		if product.Kind != model.ProductBundle {
			return nil
		}
		items, err := bundleItemsFromRequest(product.ID, req.Items)
		if err != nil {
			return err
		}
		return s.repo.ReplaceBundleItemsTx(tx, product.ID, items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, product.ID)
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	resp := productToResponse(product)

	if product.Kind == model.ProductBundle {
		items, err := s.repo.ListBundleItems(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			bi := dto.BundleItemResponse{
				ComponentID: item.ComponentID.String(),
				Quantity:    item.Quantity,
			}
			if item.Component != nil {
				bi.Component = item.Component.Name
			}
			resp.Items = append(resp.Items, bi)
		}
	}
	return resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) ([]dto.ProductResponse, int64, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return out, total, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrNotFound
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, product); err != nil {
			return err
		}
		if product.Kind != model.ProductBundle || req.Items == nil {
			return nil
		}
		items, err := bundleItemsFromRequest(product.ID, req.Items)
		if err != nil {
			return err
		}
		return s.repo.ReplaceBundleItemsTx(tx, product.ID, items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return apperror.ErrNotFound
	}
	return s.repo.SoftDelete(ctx, id)
}

// AdjustStock never drives stock negative: a correction that would oversell
// fails the same way a sale does.
func (s *productService) AdjustStock(ctx context.Context, actingUser *model.User, id uuid.UUID, req dto.AdjustStockRequest) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		product, err := s.repo.FindByIDTx(tx, id, true)
		if err != nil {
			return apperror.ErrNotFound
		}
		after := product.CurrentStock + req.Delta
		if after < 0 {
			return &apperror.InsufficientStockError{
				Product:   product.Name,
				Required:  -req.Delta,
				Available: product.CurrentStock,
			}
		}
		if err := s.repo.UpdateStockTx(tx, id, req.Delta); err != nil {
			return err
		}
		move := &model.InventoryMove{
			ProductID:   product.ID,
			Quantity:    req.Delta,
			StockBefore: product.CurrentStock,
			StockAfter:  after,
			Reason:      fmt.Sprintf("manual adjustment by %s: %s", actingUser.Username, req.Reason),
		}
		return s.repo.CreateMoveTx(tx, move)
	})
}

func (s *productService) Moves(ctx context.Context, id uuid.UUID, limit int) ([]model.InventoryMove, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListMoves(ctx, id, limit)
}

func bundleItemsFromRequest(bundleID uuid.UUID, reqs []dto.BundleItemRequest) ([]model.BundleItem, error) {
	items := make([]model.BundleItem, 0, len(reqs))
	for _, r := range reqs {
		componentID, err := uuid.Parse(r.ComponentID)
		if err != nil {
			return nil, fmt.Errorf("invalid component_id: %w", err)
		}
		if componentID == bundleID {
			return nil, fmt.Errorf("bundle cannot contain itself")
		}
		items = append(items, model.BundleItem{
			BundleID:    bundleID,
			ComponentID: componentID,
			Quantity:    r.Quantity,
		})
	}
	return items, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Kind:         p.Kind,
		Price:        p.Price,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		Active:       p.Active,
	}
}
