package service

import (
	"context"
	"strings"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/model"
	"github.com/Gilderlan0101/qodo-pdv/internal/money"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetByRef(ctx context.Context, tenantID uuid.UUID, ref string) (*dto.ProductResponse, error)
	StockEntry(ctx context.Context, tenantID uuid.UUID, req dto.StockAdjustmentRequest) (*dto.StockAdjustmentResponse, error)
	StockExit(ctx context.Context, tenantID uuid.UUID, req dto.StockAdjustmentRequest) (*dto.StockAdjustmentResponse, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.SalePrice.IsNegative() || req.CostPrice.IsNegative() {
		return nil, apierror.InvalidInput("prices must not be negative")
	}
	if req.Stock < 0 {
		return nil, apierror.InvalidInput("stock must not be negative")
	}

	product := &model.Product{
		TenantID:  tenantID,
		Code:      strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:      strings.TrimSpace(req.Name),
		CostPrice: money.Round(req.CostPrice),
		SalePrice: money.Round(req.SalePrice),
		Stock:     req.Stock,
		ExpiresAt: req.ExpiresAt,
		Active:    true,
	}
	if req.StockMin != nil {
		product.StockMin = *req.StockMin
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, apierror.Conflict("product code already exists for this tenant")
	}
	return productToResponse(product), nil
}

func (s *productService) GetByRef(ctx context.Context, tenantID uuid.UUID, ref string) (*dto.ProductResponse, error) {
	product, err := s.repo.FindByRef(ctx, tenantID, ref)
	if err != nil {
		return nil, apierror.NotFound("product", ref)
	}
	return productToResponse(product), nil
}

// ── Stock adjustments ────────────────────────────────────────────────────────
// Entry and exit move stock outside the sale flow: deliveries come in,
// breakage and expiry write-offs go out. Exits never take stock negative.

func (s *productService) StockEntry(ctx context.Context, tenantID uuid.UUID, req dto.StockAdjustmentRequest) (*dto.StockAdjustmentResponse, error) {
	if req.Quantity <= 0 {
		return nil, apierror.InvalidInput("quantity must be positive")
	}
	product, err := s.repo.FindByRef(ctx, tenantID, req.ProductRef)
	if err != nil {
		return nil, apierror.NotFound("product", req.ProductRef)
	}

	var stock int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.RestoreStockTx(tx, tenantID, product.ID, req.Quantity); err != nil {
			return apierror.Internal(err)
		}
		fresh, err := s.repo.FindByIDTx(tx, tenantID, product.ID)
		if err != nil {
			return apierror.Internal(err)
		}
		stock = fresh.Stock
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("product_code", product.Code).
		Int("quantity", req.Quantity).
		Int("stock", stock).
		Str("reason", req.Reason).
		Msg("stock entry")
	return stockAdjustmentResponse(product, req, stock), nil
}

func (s *productService) StockExit(ctx context.Context, tenantID uuid.UUID, req dto.StockAdjustmentRequest) (*dto.StockAdjustmentResponse, error) {
	if req.Quantity <= 0 {
		return nil, apierror.InvalidInput("quantity must be positive")
	}
	product, err := s.repo.FindByRef(ctx, tenantID, req.ProductRef)
	if err != nil {
		return nil, apierror.NotFound("product", req.ProductRef)
	}

	var stock int
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.repo.ReserveStockTx(tx, tenantID, product.ID, req.Quantity)
		if err != nil {
			return apierror.Internal(err)
		}
		if !ok {
			available := product.Stock
			if fresh, err := s.repo.FindByIDTx(tx, tenantID, product.ID); err == nil {
				available = fresh.Stock
			}
			return apierror.InsufficientStock(product.Name, req.Quantity, available)
		}
		fresh, err := s.repo.FindByIDTx(tx, tenantID, product.ID)
		if err != nil {
			return apierror.Internal(err)
		}
		stock = fresh.Stock
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("product_code", product.Code).
		Int("quantity", req.Quantity).
		Int("stock", stock).
		Str("reason", req.Reason).
		Msg("stock exit")
	return stockAdjustmentResponse(product, req, stock), nil
}

func stockAdjustmentResponse(p *model.Product, req dto.StockAdjustmentRequest, stock int) *dto.StockAdjustmentResponse {
	return &dto.StockAdjustmentResponse{
		ProductID: p.ID.String(),
		Code:      p.Code,
		Name:      p.Name,
		Quantity:  req.Quantity,
		Stock:     stock,
		Reason:    req.Reason,
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:        p.ID.String(),
		Code:      p.Code,
		Name:      p.Name,
		CostPrice: p.CostPrice,
		SalePrice: p.SalePrice,
		Stock:     p.Stock,
		StockMin:  p.StockMin,
		ExpiresAt: p.ExpiresAt,
		Active:    p.Active,
	}
}
