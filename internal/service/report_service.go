package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// reportCacheTTL bounds staleness of the reporting views. The cache is
// display-only: stock and register state are always read from the store.
const reportCacheTTL = 60 * time.Second

// ReportInvalidator is the write-through hook mutating services call after a
// checkout, amend or void.
type ReportInvalidator interface {
	InvalidateSalesCache(ctx context.Context, tenantID uuid.UUID)
}

type ReportService interface {
	ReportInvalidator
	PaymentMethodBreakdown(ctx context.Context, tenantID uuid.UUID) (*dto.PaymentMethodBreakdown, error)
	LowStock(ctx context.Context, tenantID uuid.UUID) ([]dto.LowStockAlert, error)
	// WarmSalesCache recomputes and stores the breakdown; used by the
	// post-checkout warmup job.
	WarmSalesCache(ctx context.Context, tenantID uuid.UUID) error
}

type reportService struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	rdb         *redis.Client
}

func NewReportService(saleRepo repository.SaleRepository, productRepo repository.ProductRepository, rdb *redis.Client) ReportService {
	return &reportService{saleRepo: saleRepo, productRepo: productRepo, rdb: rdb}
}

func paymentCacheKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("report:payments:%s", tenantID)
}

func lowStockCacheKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("report:lowstock:%s", tenantID)
}

// ── PaymentMethodBreakdown ───────────────────────────────────────────────────

func (s *reportService) PaymentMethodBreakdown(ctx context.Context, tenantID uuid.UUID) (*dto.PaymentMethodBreakdown, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, paymentCacheKey(tenantID)).Result(); err == nil {
			var cached dto.PaymentMethodBreakdown
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	breakdown, err := s.computeBreakdown(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, paymentCacheKey(tenantID), breakdown)
	return breakdown, nil
}

func (s *reportService) computeBreakdown(ctx context.Context, tenantID uuid.UUID) (*dto.PaymentMethodBreakdown, error) {
	sales, err := s.saleRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	breakdown := &dto.PaymentMethodBreakdown{Methods: make(map[string]dto.PaymentMethodTotals)}
	for _, sale := range sales {
		method := string(sale.PaymentMethod)
		totals := breakdown.Methods[method]

		quantity := 0
		for _, item := range sale.Items {
			quantity += item.Quantity
		}

		totals.TotalValue = totals.TotalValue.Add(sale.TotalAmount)
		totals.TotalQuantity += quantity
		totals.Sales = append(totals.Sales, dto.PaymentSaleRow{
			SaleCode: sale.Code,
			Total:    sale.TotalAmount,
			Quantity: quantity,
			Date:     sale.CreatedAt.Format(time.RFC3339),
		})
		breakdown.Methods[method] = totals
	}
	return breakdown, nil
}

// ── LowStock ─────────────────────────────────────────────────────────────────

func (s *reportService) LowStock(ctx context.Context, tenantID uuid.UUID) ([]dto.LowStockAlert, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, lowStockCacheKey(tenantID)).Result(); err == nil {
			var cached []dto.LowStockAlert
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	products, err := s.productRepo.ListLowStock(ctx, tenantID)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	alerts := make([]dto.LowStockAlert, 0, len(products))
	for _, p := range products {
		alerts = append(alerts, dto.LowStockAlert{
			ProductID:   p.ID.String(),
			ProductName: p.Name,
			Stock:       p.Stock,
			StockMin:    p.StockMin,
		})
	}
	s.store(ctx, lowStockCacheKey(tenantID), alerts)
	return alerts, nil
}

// ── Cache maintenance ────────────────────────────────────────────────────────

func (s *reportService) InvalidateSalesCache(ctx context.Context, tenantID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, paymentCacheKey(tenantID), lowStockCacheKey(tenantID)).Err(); err != nil {
		log.Warn().Err(err).Str("tenant_id", tenantID.String()).Msg("report cache invalidation failed")
	}
}

func (s *reportService) WarmSalesCache(ctx context.Context, tenantID uuid.UUID) error {
	breakdown, err := s.computeBreakdown(ctx, tenantID)
	if err != nil {
		return err
	}
	s.store(ctx, paymentCacheKey(tenantID), breakdown)
	return nil
}

func (s *reportService) store(ctx context.Context, key string, value any) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, data, reportCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("report cache store failed")
	}
}
