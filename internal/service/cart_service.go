package service

import (
	"context"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/model"
	"github.com/Gilderlan0101/qodo-pdv/internal/money"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartService stages line items for the operator's OPEN register. Stock is
// reserved pessimistically the moment a line is added: the product's on-hand
// count always reflects what is actually sellable right now, so two
// operators can never both sell the last unit. The cost is that abandoned
// carts must be drained via Clear, which external lifecycle policy decides.
type CartService interface {
	AddLine(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.AddCartLineRequest) (*dto.CartLineResponse, error)
	UpdateLine(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.UpdateCartLineRequest) (*dto.CartLineResult, error)
	RemoveLine(ctx context.Context, tenantID, operatorID uuid.UUID, productRef string) error
	// Clear drops every line and returns its stock (abandoned cart).
	Clear(ctx context.Context, tenantID, operatorID uuid.UUID) error
	// ClearPostSaleTx drops every line WITHOUT restoring stock — checkout
	// already committed the reserved quantities to the sale.
	ClearPostSaleTx(tx *gorm.DB, registerID uuid.UUID) error
	Summary(ctx context.Context, tenantID, operatorID uuid.UUID) (*dto.CartSummary, error)
	ListLines(ctx context.Context, tenantID, operatorID uuid.UUID) ([]dto.CartLineResponse, error)
}

type cartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
	registers   RegisterService
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, registers RegisterService) CartService {
	return &cartService{repo: repo, productRepo: productRepo, registers: registers}
}

// ── AddLine ──────────────────────────────────────────────────────────────────
// Additive: a second add for the same product grows the existing line.
// Absolute quantities go through UpdateLine with replace=true.

func (s *cartService) AddLine(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.AddCartLineRequest) (*dto.CartLineResponse, error) {
	if req.Quantity <= 0 {
		return nil, apierror.InvalidInput("quantity must be positive")
	}

	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByRef(ctx, tenantID, req.ProductRef)
	if err != nil {
		return nil, apierror.NotFound("product", req.ProductRef)
	}

	var line *model.CartItem
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ok, err := s.productRepo.ReserveStockTx(tx, tenantID, product.ID, req.Quantity)
		if err != nil {
			return apierror.Internal(err)
		}
		if !ok {
			available := product.Stock
			if fresh, err := s.productRepo.FindByIDTx(tx, tenantID, product.ID); err == nil {
				available = fresh.Stock
			}
			return apierror.InsufficientStock(product.Name, req.Quantity, available)
		}

		existing, err := s.repo.FindLineTx(tx, reg.ID, product.ID)
		if err == nil {
			existing.Quantity += req.Quantity
			existing.Total = money.LineTotal(existing.UnitPrice, existing.Quantity, existing.Discount, existing.Addition)
			line = existing
			return s.repo.SaveLineTx(tx, existing)
		}

		line = &model.CartItem{
			TenantID:    tenantID,
			OperatorID:  operatorID,
			RegisterID:  reg.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			ProductCode: product.Code,
			Quantity:    req.Quantity,
			UnitPrice:   product.SalePrice,
			Discount:    decimal.Zero,
			Addition:    decimal.Zero,
			Total:       money.LineTotal(product.SalePrice, req.Quantity, decimal.Zero, decimal.Zero),
		}
		return s.repo.CreateLineTx(tx, line)
	})
	if txErr != nil {
		return nil, txErr
	}

	return cartLineToResponse(line), nil
}

// ── UpdateLine ───────────────────────────────────────────────────────────────
// Quantity deltas mirror AddLine: additive by default, absolute when
// replace=true. A resulting quantity ≤ 0 removes the line and returns its
// full reserved quantity — reported as a removal, not a failure.

func (s *cartService) UpdateLine(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.UpdateCartLineRequest) (*dto.CartLineResult, error) {
	if req.Discount != nil && req.Discount.IsNegative() {
		return nil, apierror.InvalidInput("discount must not be negative")
	}
	if req.Addition != nil && req.Addition.IsNegative() {
		return nil, apierror.InvalidInput("addition must not be negative")
	}

	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByRef(ctx, tenantID, req.ProductRef)
	if err != nil {
		return nil, apierror.NotFound("product", req.ProductRef)
	}

	result := &dto.CartLineResult{}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		line, err := s.repo.FindLineTx(tx, reg.ID, product.ID)
		if err != nil {
			return apierror.NotFound("cart line", req.ProductRef)
		}

		newQty := line.Quantity
		if req.Quantity != nil {
			if req.Replace {
				newQty = *req.Quantity
			} else {
				newQty = line.Quantity + *req.Quantity
			}
		}

		if newQty <= 0 {
			if err := s.productRepo.RestoreStockTx(tx, tenantID, product.ID, line.Quantity); err != nil {
				return apierror.Internal(err)
			}
			if err := s.repo.DeleteLineTx(tx, line.ID); err != nil {
				return apierror.Internal(err)
			}
			result.Removed = true
			return nil
		}

		delta := newQty - line.Quantity
		switch {
		case delta > 0:
			ok, err := s.productRepo.ReserveStockTx(tx, tenantID, product.ID, delta)
			if err != nil {
				return apierror.Internal(err)
			}
			if !ok {
				available := product.Stock
				if fresh, err := s.productRepo.FindByIDTx(tx, tenantID, product.ID); err == nil {
					available = fresh.Stock
				}
				return apierror.InsufficientStock(product.Name, delta, available)
			}
		case delta < 0:
			if err := s.productRepo.RestoreStockTx(tx, tenantID, product.ID, -delta); err != nil {
				return apierror.Internal(err)
			}
		}

		line.Quantity = newQty
		if req.Discount != nil {
			line.Discount = money.Round(*req.Discount)
		}
		if req.Addition != nil {
			line.Addition = money.Round(*req.Addition)
		}
		line.Total = money.LineTotal(line.UnitPrice, line.Quantity, line.Discount, line.Addition)
		if err := s.repo.SaveLineTx(tx, line); err != nil {
			return apierror.Internal(err)
		}
		result.Line = cartLineToResponse(line)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return result, nil
}

// ── RemoveLine ───────────────────────────────────────────────────────────────

func (s *cartService) RemoveLine(ctx context.Context, tenantID, operatorID uuid.UUID, productRef string) error {
	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return err
	}
	product, err := s.productRepo.FindByRef(ctx, tenantID, productRef)
	if err != nil {
		return apierror.NotFound("product", productRef)
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		line, err := s.repo.FindLineTx(tx, reg.ID, product.ID)
		if err != nil {
			return apierror.NotFound("cart line", productRef)
		}
		if err := s.productRepo.RestoreStockTx(tx, tenantID, product.ID, line.Quantity); err != nil {
			return apierror.Internal(err)
		}
		return s.repo.DeleteLineTx(tx, line.ID)
	})
}

// ── Clear ────────────────────────────────────────────────────────────────────

func (s *cartService) Clear(ctx context.Context, tenantID, operatorID uuid.UUID) error {
	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lines, err := s.repo.ListLinesTx(tx, reg.ID)
		if err != nil {
			return apierror.Internal(err)
		}
		for _, line := range lines {
			if err := s.productRepo.RestoreStockTx(tx, tenantID, line.ProductID, line.Quantity); err != nil {
				return apierror.Internal(err)
			}
		}
		return s.repo.DeleteAllTx(tx, reg.ID)
	})
}

func (s *cartService) ClearPostSaleTx(tx *gorm.DB, registerID uuid.UUID) error {
	return s.repo.DeleteAllTx(tx, registerID)
}

// ── Summary / ListLines ──────────────────────────────────────────────────────
// Pure projections, no side effects.

func (s *cartService) Summary(ctx context.Context, tenantID, operatorID uuid.UUID) (*dto.CartSummary, error) {
	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLines(ctx, reg.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	summary := &dto.CartSummary{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalAddition: decimal.Zero,
		GrandTotal:    decimal.Zero,
		LineCount:     len(lines),
	}
	for _, line := range lines {
		summary.Subtotal = summary.Subtotal.Add(money.Round(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))))
		summary.TotalDiscount = summary.TotalDiscount.Add(line.Discount)
		summary.TotalAddition = summary.TotalAddition.Add(line.Addition)
		summary.GrandTotal = summary.GrandTotal.Add(line.Total)
		summary.ItemCount += line.Quantity
	}
	return summary, nil
}

func (s *cartService) ListLines(ctx context.Context, tenantID, operatorID uuid.UUID) ([]dto.CartLineResponse, error) {
	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.ListLines(ctx, reg.ID)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	out := make([]dto.CartLineResponse, 0, len(lines))
	for i := range lines {
		out = append(out, *cartLineToResponse(&lines[i]))
	}
	return out, nil
}

func cartLineToResponse(line *model.CartItem) *dto.CartLineResponse {
	return &dto.CartLineResponse{
		ID:          line.ID.String(),
		ProductID:   line.ProductID.String(),
		ProductName: line.ProductName,
		ProductCode: line.ProductCode,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		Discount:    line.Discount,
		Addition:    line.Addition,
		Total:       line.Total,
	}
}
