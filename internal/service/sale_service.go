package service

import (
	"context"
	"fmt"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/model"
	"github.com/Gilderlan0101/qodo-pdv/internal/money"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService handles corrections on completed sales. Stock is always
// adjusted; the drawer is compensated through the ledger — a reducing amend
// posts an OUT movement, an increasing one posts an IN — never by mutating
// running_balance out of band. When the sale's register is already closed the
// amendment is recorded on the sale only, since that drawer's session has
// been reconciled.
type SaleService interface {
	Get(ctx context.Context, tenantID, saleID uuid.UUID) (*dto.SaleResponse, error)
	Amend(ctx context.Context, tenantID, operatorID, saleID uuid.UUID, req dto.AmendSaleRequest) (*dto.SaleResponse, error)
	Void(ctx context.Context, tenantID, operatorID, saleID uuid.UUID) error
}

type saleService struct {
	repo         repository.SaleRepository
	productRepo  repository.ProductRepository
	registerRepo repository.RegisterRepository
	reports      ReportInvalidator
}

func NewSaleService(
	repo repository.SaleRepository,
	productRepo repository.ProductRepository,
	registerRepo repository.RegisterRepository,
	reports ReportInvalidator,
) SaleService {
	return &saleService{repo: repo, productRepo: productRepo, registerRepo: registerRepo, reports: reports}
}

func (s *saleService) Get(ctx context.Context, tenantID, saleID uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, tenantID, saleID)
	if err != nil {
		return nil, apierror.NotFound("sale", saleID)
	}
	return saleToResponse(sale), nil
}

// ── Amend ────────────────────────────────────────────────────────────────────

func (s *saleService) Amend(ctx context.Context, tenantID, operatorID, saleID uuid.UUID, req dto.AmendSaleRequest) (*dto.SaleResponse, error) {
	if req.NewQuantity < 0 {
		return nil, apierror.InvalidInput("new_quantity must not be negative")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.InvalidInput("product_id is not a valid id")
	}

	var sale *model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err = s.repo.FindByIDTx(tx, tenantID, saleID)
		if err != nil {
			return apierror.NotFound("sale", saleID)
		}
		if sale.Status == model.SaleVoided {
			return apierror.Conflict("sale is voided and cannot be amended")
		}

		var item *model.SaleItem
		for i := range sale.Items {
			if sale.Items[i].ProductID == productID {
				item = &sale.Items[i]
				break
			}
		}
		if item == nil {
			return apierror.NotFound("sale item", req.ProductID)
		}

		delta := req.NewQuantity - item.Quantity
		if delta == 0 {
			return nil
		}

		if delta < 0 {
			if err := s.productRepo.RestoreStockTx(tx, tenantID, productID, -delta); err != nil {
				return apierror.Internal(err)
			}
		} else {
			ok, err := s.productRepo.ReserveStockTx(tx, tenantID, productID, delta)
			if err != nil {
				return apierror.Internal(err)
			}
			if !ok {
				available := 0
				if fresh, err := s.productRepo.FindByIDTx(tx, tenantID, productID); err == nil {
					available = fresh.Stock
				}
				return apierror.InsufficientStock(item.ProductName, delta, available)
			}
		}

		oldTotal := sale.TotalAmount

		item.Quantity = req.NewQuantity
		item.Total = money.LineTotal(item.UnitPrice, item.Quantity, item.Discount, item.Addition)
		item.Profit = money.Profit(item.UnitPrice, item.CostPrice, item.Quantity)
		if err := s.repo.SaveItemTx(tx, item); err != nil {
			return apierror.Internal(err)
		}

		total := decimal.Zero
		profit := decimal.Zero
		for _, it := range sale.Items {
			total = total.Add(it.Total)
			profit = profit.Add(it.Profit)
		}
		sale.TotalAmount = total
		sale.Profit = profit
		sale.Status = model.SaleAmended
		if err := s.repo.SaveTx(tx, sale); err != nil {
			return apierror.Internal(err)
		}

		diff := oldTotal.Sub(total)
		desc := fmt.Sprintf("Amend sale %s", sale.Code)
		return s.compensate(tx, sale, operatorID, diff, desc)
	})
	if txErr != nil {
		return nil, txErr
	}

	if s.reports != nil {
		s.reports.InvalidateSalesCache(ctx, tenantID)
	}
	log.Info().Str("sale_code", sale.Code).Int("new_quantity", req.NewQuantity).Msg("sale amended")
	return saleToResponse(sale), nil
}

// ── Void ─────────────────────────────────────────────────────────────────────

func (s *saleService) Void(ctx context.Context, tenantID, operatorID, saleID uuid.UUID) error {
	var sale *model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		sale, err = s.repo.FindByIDTx(tx, tenantID, saleID)
		if err != nil {
			return apierror.NotFound("sale", saleID)
		}
		if sale.Status == model.SaleVoided {
			return apierror.Conflict("sale is already voided")
		}

		for _, item := range sale.Items {
			if item.Quantity == 0 {
				continue
			}
			if err := s.productRepo.RestoreStockTx(tx, tenantID, item.ProductID, item.Quantity); err != nil {
				return apierror.Internal(err)
			}
		}

		refund := sale.TotalAmount
		sale.Status = model.SaleVoided
		if err := s.repo.SaveTx(tx, sale); err != nil {
			return apierror.Internal(err)
		}

		desc := fmt.Sprintf("Void sale %s", sale.Code)
		return s.compensate(tx, sale, operatorID, refund, desc)
	})
	if txErr != nil {
		return txErr
	}

	if s.reports != nil {
		s.reports.InvalidateSalesCache(ctx, tenantID)
	}
	log.Info().Str("sale_code", sale.Code).Msg("sale voided")
	return nil
}

// compensate posts the reversing ledger entry when the sale's session is
// still open. diff > 0 means money leaves the drawer (OUT); diff < 0 means
// the amendment increased the sale and money comes in (IN). A closed
// register gets no entry, and neither does one reopened after the sale's
// session was reconciled: the sale predates the current OpenedAt, so its
// cash already settled at close.
func (s *saleService) compensate(tx *gorm.DB, sale *model.Sale, operatorID uuid.UUID, diff decimal.Decimal, description string) error {
	if sale.RegisterID == nil || diff.IsZero() {
		return nil
	}

	reg, err := s.registerRepo.LockRegisterTx(tx, sale.TenantID, *sale.RegisterID)
	if err != nil {
		return apierror.Internal(err)
	}
	if reg.State != model.RegisterOpen || reg.OpenedAt == nil || sale.CreatedAt.Before(*reg.OpenedAt) {
		log.Warn().
			Str("sale_code", sale.Code).
			Str("register_id", reg.ID.String()).
			Msg("sale's register session already reconciled, no compensating movement posted")
		return nil
	}

	movType := model.MovementOut
	amount := diff
	if diff.IsNegative() {
		movType = model.MovementIn
		amount = diff.Neg()
	}

	if movType == model.MovementOut {
		reg.RunningBalance = reg.RunningBalance.Sub(amount)
	} else {
		reg.RunningBalance = reg.RunningBalance.Add(amount)
	}
	if err := s.registerRepo.SaveRegisterTx(tx, reg); err != nil {
		return apierror.Internal(err)
	}

	mov := &model.CashMovement{
		RegisterID:  reg.ID,
		TenantID:    sale.TenantID,
		OperatorID:  operatorID,
		Type:        movType,
		Amount:      amount,
		Description: description,
		SaleID:      &sale.ID,
	}
	return s.registerRepo.CreateMovementTx(tx, mov)
}
