package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/model"
	"github.com/Gilderlan0101/qodo-pdv/internal/money"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"
	"github.com/Gilderlan0101/qodo-pdv/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// checkoutTimeout bounds the finalization transaction so a stuck lock
// surfaces as a retryable Conflict instead of blocking the operator.
const checkoutTimeout = 5 * time.Second

type CheckoutService interface {
	Checkout(ctx context.Context, tenantID, operatorID uuid.UUID, operatorName string, req dto.CheckoutRequest) (*dto.Receipt, *dto.SaleResponse, error)
}

type checkoutService struct {
	saleRepo     repository.SaleRepository
	cartRepo     repository.CartRepository
	productRepo  repository.ProductRepository
	registers    RegisterService
	registerRepo repository.RegisterRepository
	cart         CartService
	reports      ReportInvalidator
	dispatcher   *worker.Dispatcher
}

func NewCheckoutService(
	saleRepo repository.SaleRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	registers RegisterService,
	registerRepo repository.RegisterRepository,
	cart CartService,
	reports ReportInvalidator,
	dispatcher *worker.Dispatcher,
) CheckoutService {
	return &checkoutService{
		saleRepo:     saleRepo,
		cartRepo:     cartRepo,
		productRepo:  productRepo,
		registers:    registers,
		registerRepo: registerRepo,
		cart:         cart,
		reports:      reports,
		dispatcher:   dispatcher,
	}
}

// ── Checkout ─────────────────────────────────────────────────────────────────
// One atomic unit of work:
//   1. re-validate every cart line against current on-hand (stock was already
//      reserved at add time; this only fails if stock was adjusted out of band)
//   2. aggregate totals and profit
//   3. create the immutable sale with a generated code
//   4. lock the OPEN register, append the IN movement, bump running_balance
//   5. drain the cart without restoring stock
// Any failure rolls everything back. Conflicts are retried once before
// surfacing.

func (s *checkoutService) Checkout(ctx context.Context, tenantID, operatorID uuid.UUID, operatorName string, req dto.CheckoutRequest) (*dto.Receipt, *dto.SaleResponse, error) {
	method, ok := model.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return nil, nil, apierror.InvalidInput(fmt.Sprintf("unsupported payment method %q", req.PaymentMethod))
	}

	reg, err := s.registers.FindOpen(ctx, tenantID, operatorID)
	if err != nil {
		return nil, nil, err
	}

	sale, err := s.finalize(ctx, tenantID, operatorID, reg.ID, method, req)
	if apierror.HasCode(err, apierror.CodeConflict) {
		log.Warn().Err(err).Str("register_id", reg.ID.String()).Msg("checkout conflict, retrying once")
		sale, err = s.finalize(ctx, tenantID, operatorID, reg.ID, method, req)
	}
	if err != nil {
		return nil, nil, err
	}

	if s.reports != nil {
		s.reports.InvalidateSalesCache(ctx, tenantID)
	}
	if s.dispatcher != nil {
		receipt := buildReceipt(sale, tenantID, operatorName)
		if req.CustomerEmail != nil && *req.CustomerEmail != "" {
			_ = s.dispatcher.EnqueueReceiptEmail(ctx, worker.ReceiptEmailPayload{
				ToEmail: *req.CustomerEmail,
				Receipt: receipt,
			})
		}
		_ = s.dispatcher.EnqueueReportWarmup(ctx, tenantID.String())
	}

	log.Info().
		Str("sale_code", sale.Code).
		Str("total", sale.TotalAmount.String()).
		Str("payment_method", string(sale.PaymentMethod)).
		Msg("sale finalized")

	receipt := buildReceipt(sale, tenantID, operatorName)
	return receipt, saleToResponse(sale), nil
}

func (s *checkoutService) finalize(ctx context.Context, tenantID, operatorID, registerID uuid.UUID, method model.PaymentMethod, req dto.CheckoutRequest) (*model.Sale, error) {
	txCtx, cancel := context.WithTimeout(ctx, checkoutTimeout)
	defer cancel()

	var sale *model.Sale
	txErr := runTx(txCtx, s.saleRepo.DB(), func(tx *gorm.DB) error {
		lines, err := s.cartRepo.ListLinesTx(tx, registerID)
		if err != nil {
			return apierror.Internal(err)
		}
		if len(lines) == 0 {
			return apierror.InvalidInput("cart is empty")
		}

		// Defensive re-check: current on-hand plus this line's own
		// reservation must still cover the line.
		total := decimal.Zero
		profit := decimal.Zero
		items := make([]model.SaleItem, 0, len(lines))
		for _, line := range lines {
			product, err := s.productRepo.FindByIDTx(tx, tenantID, line.ProductID)
			if err != nil {
				return apierror.NotFound("product", line.ProductID)
			}
			if product.Stock+line.Quantity < line.Quantity {
				return apierror.InsufficientStock(line.ProductName, line.Quantity, product.Stock+line.Quantity)
			}

			lineProfit := money.Profit(line.UnitPrice, product.CostPrice, line.Quantity)
			total = total.Add(line.Total)
			profit = profit.Add(lineProfit)
			items = append(items, model.SaleItem{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				CostPrice:   product.CostPrice,
				Discount:    line.Discount,
				Addition:    line.Addition,
				Total:       line.Total,
				Profit:      lineProfit,
			})
		}

		payment, err := validatePayment(method, req, total)
		if err != nil {
			return err
		}

		ticket, err := s.saleRepo.NextTicketNumberTx(tx)
		if err != nil {
			return apierror.Internal(err)
		}
		code := randomSaleCode()
		if ticket > 0 {
			code = fmt.Sprintf("V%06d", ticket)
		}

		sale = &model.Sale{
			TenantID:      tenantID,
			OperatorID:    operatorID,
			TicketNumber:  ticket,
			Code:          code,
			PaymentMethod: method,
			TotalAmount:   total,
			Profit:        profit,
			CashReceived:  payment.cashReceived,
			Change:        payment.change,
			Installments:  payment.installments,
			CustomerID:    payment.customerID,
			Status:        model.SaleCompleted,
			Items:         items,
		}
		if err := s.saleRepo.CreateTx(tx, sale); err != nil {
			return mapTxError(err)
		}

		reg, err := s.registerRepo.LockRegisterTx(tx, tenantID, registerID)
		if err != nil {
			return apierror.NoOpenRegister()
		}
		if reg.State != model.RegisterOpen {
			return apierror.RegisterClosed(registerID)
		}
		reg.RunningBalance = reg.RunningBalance.Add(total)
		if err := s.registerRepo.SaveRegisterTx(tx, reg); err != nil {
			return apierror.Internal(err)
		}
		mov := &model.CashMovement{
			RegisterID:  reg.ID,
			TenantID:    tenantID,
			OperatorID:  operatorID,
			Type:        model.MovementIn,
			Amount:      total,
			Description: fmt.Sprintf("Sale %s", code),
			SaleID:      &sale.ID,
		}
		if err := s.registerRepo.CreateMovementTx(tx, mov); err != nil {
			return apierror.Internal(err)
		}

		sale.RegisterID = &reg.ID
		if err := s.saleRepo.SaveTx(tx, sale); err != nil {
			return apierror.Internal(err)
		}

		return s.cart.ClearPostSaleTx(tx, registerID)
	})
	if txErr != nil {
		return nil, txErr
	}
	return sale, nil
}

// resolvedPayment carries the method-specific fields after validation.
type resolvedPayment struct {
	cashReceived *decimal.Decimal
	change       *decimal.Decimal
	installments *int
	customerID   *uuid.UUID
}

func validatePayment(method model.PaymentMethod, req dto.CheckoutRequest, total decimal.Decimal) (*resolvedPayment, error) {
	p := &resolvedPayment{}

	switch method {
	case model.PaymentCash:
		if req.CashReceived == nil || !req.CashReceived.IsPositive() {
			return nil, apierror.InvalidInput("cash payment requires a positive cash_received")
		}
		received := money.Round(*req.CashReceived)
		if received.LessThan(total) {
			return nil, apierror.InvalidInput("cash_received is less than the sale total")
		}
		change := received.Sub(total)
		p.cashReceived = &received
		p.change = &change

	case model.PaymentCard:
		installments := 1
		if req.Installments != nil {
			installments = *req.Installments
		}
		if installments < 1 {
			return nil, apierror.InvalidInput("installments must be at least 1")
		}
		p.installments = &installments

	case model.PaymentInvoice:
		customerID, err := requireCustomer(req)
		if err != nil {
			return nil, err
		}
		p.customerID = customerID

	case model.PaymentPartial:
		customerID, err := requireCustomer(req)
		if err != nil {
			return nil, err
		}
		p.customerID = customerID
		if req.CashReceived == nil || !req.CashReceived.IsPositive() {
			return nil, apierror.InvalidInput("partial payment requires a positive cash_received")
		}
		received := money.Round(*req.CashReceived)
		if received.GreaterThan(total) {
			return nil, apierror.InvalidInput("partial payment cannot exceed the sale total")
		}
		p.cashReceived = &received

	case model.PaymentPix:
		// Electronic transfer needs no extra fields.
	}

	return p, nil
}

func requireCustomer(req dto.CheckoutRequest) (*uuid.UUID, error) {
	if req.CustomerID == nil || *req.CustomerID == "" {
		return nil, apierror.InvalidInput("this payment method requires a customer_id")
	}
	id, err := uuid.Parse(*req.CustomerID)
	if err != nil {
		return nil, apierror.InvalidInput("customer_id is not a valid id")
	}
	return &id, nil
}

// mapTxError classifies store failures: duplicate keys and timeouts are
// transient races worth one retry, everything else is Internal.
func mapTxError(err error) error {
	var ae *apierror.Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apierror.Conflict("sale code collision")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apierror.Conflict("transaction timed out")
	}
	return apierror.Internal(err)
}

const saleCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// randomSaleCode is the fallback when no ticket sequence is available.
func randomSaleCode() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = saleCodeCharset[rand.Intn(len(saleCodeCharset))]
	}
	return string(b)
}

// ── Projections ──────────────────────────────────────────────────────────────

func buildReceipt(sale *model.Sale, tenantID uuid.UUID, operatorName string) *dto.Receipt {
	items := make([]dto.ReceiptLine, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, dto.ReceiptLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	payment := dto.ReceiptPayment{
		Method:       string(sale.PaymentMethod),
		CashReceived: sale.CashReceived,
		Change:       sale.Change,
		Installments: sale.Installments,
	}
	if sale.CustomerID != nil {
		id := sale.CustomerID.String()
		payment.CustomerID = &id
	}
	return &dto.Receipt{
		SaleCode:     sale.Code,
		TenantID:     tenantID.String(),
		OperatorName: operatorName,
		Items:        items,
		Total:        sale.TotalAmount,
		Payment:      payment,
		IssuedAt:     time.Now().Format(time.RFC3339),
	}
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, dto.SaleItemResponse{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}
	resp := &dto.SaleResponse{
		ID:            sale.ID.String(),
		Code:          sale.Code,
		TicketNumber:  sale.TicketNumber,
		PaymentMethod: string(sale.PaymentMethod),
		TotalAmount:   sale.TotalAmount,
		Profit:        sale.Profit,
		Status:        sale.Status,
		Items:         items,
		CreatedAt:     sale.CreatedAt.Format(time.RFC3339),
	}
	if sale.RegisterID != nil {
		id := sale.RegisterID.String()
		resp.RegisterID = &id
	}
	return resp
}
