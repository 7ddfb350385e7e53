package service

import (
	"context"
	"fmt"
	"time"

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

type RegisterService interface {
	Open(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error)
	PostMovement(ctx context.Context, tenantID uuid.UUID, registerID uuid.UUID, operatorID uuid.UUID, req dto.PostMovementRequest) (*dto.MovementResponse, error)
	Close(ctx context.Context, tenantID, registerID uuid.UUID, req dto.CloseRegisterRequest) (*dto.ReconciliationReport, error)
	Report(ctx context.Context, tenantID, registerID uuid.UUID) (*dto.RegisterReport, error)
	// FindOpen is called by the cart and checkout services to resolve the
	// operator's OPEN register.
	FindOpen(ctx context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error)
}

type registerService struct {
	repo repository.RegisterRepository
}

func NewRegisterService(repo repository.RegisterRepository) RegisterService {
	return &registerService{repo: repo}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Open ─────────────────────────────────────────────────────────────────────
// Idempotent: a duplicate open request for an operator whose register is
// already OPEN returns that register instead of erroring. The row itself is
// provisioned on first use and never deleted afterwards, only reopened.

func (s *registerService) Open(ctx context.Context, tenantID, operatorID uuid.UUID, req dto.OpenRegisterRequest) (*dto.RegisterResponse, error) {
	reg, err := s.repo.FindByTenantOperator(ctx, tenantID, operatorID)
	if err != nil {
		reg = &model.CashRegister{
			TenantID:   tenantID,
			OperatorID: operatorID,
			Name:       fmt.Sprintf("Caixa %s", shortID(operatorID)),
			State:      model.RegisterClosed,
		}
		if err := s.repo.CreateRegister(ctx, reg); err != nil {
			// Unique index on (tenant, operator): a concurrent open already
			// provisioned the row.
			if existing, ferr := s.repo.FindByTenantOperator(ctx, tenantID, operatorID); ferr == nil {
				reg = existing
			} else {
				return nil, apierror.Internal(err)
			}
		}
	}

	if reg.State == model.RegisterOpen {
		log.Info().Str("register_id", reg.ID.String()).Msg("duplicate open request, returning existing register")
		return registerToResponse(reg), nil
	}

	opening := money.Round(req.OpeningBalance)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockRegisterTx(tx, tenantID, reg.ID)
		if err != nil {
			return apierror.Internal(err)
		}
		if locked.State == model.RegisterOpen {
			reg = locked
			return nil
		}

		now := time.Now()
		locked.State = model.RegisterOpen
		locked.OpeningBalance = opening
		locked.RunningBalance = opening
		locked.DeclaredValue = nil
		locked.ComputedValue = nil
		locked.Difference = nil
		locked.OpenedAt = &now
		locked.ClosedAt = nil
		if err := s.repo.SaveRegisterTx(tx, locked); err != nil {
			return apierror.Internal(err)
		}

		mov := &model.CashMovement{
			RegisterID:  locked.ID,
			TenantID:    tenantID,
			OperatorID:  operatorID,
			Type:        model.MovementOpen,
			Amount:      opening,
			Description: "Register opened",
		}
		if err := s.repo.CreateMovementTx(tx, mov); err != nil {
			return apierror.Internal(err)
		}

		reg = locked
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("register_id", reg.ID.String()).
		Str("opening_balance", opening.String()).
		Msg("register opened")
	return registerToResponse(reg), nil
}

// ── PostMovement ─────────────────────────────────────────────────────────────
// Manual IN/OUT. The register row is locked so concurrent appends on a
// shared till serialize and running_balance stays linearizable.

func (s *registerService) PostMovement(ctx context.Context, tenantID, registerID, operatorID uuid.UUID, req dto.PostMovementRequest) (*dto.MovementResponse, error) {
	amount := money.Round(req.Amount)
	if !amount.IsPositive() {
		return nil, apierror.InvalidInput("movement amount must be positive")
	}
	movType := model.MovementType(req.Type)
	if movType != model.MovementIn && movType != model.MovementOut {
		return nil, apierror.InvalidInput("movement type must be IN or OUT")
	}

	var mov *model.CashMovement
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		reg, err := s.repo.LockRegisterTx(tx, tenantID, registerID)
		if err != nil {
			return apierror.NotFound("register", registerID)
		}
		if reg.State != model.RegisterOpen {
			return apierror.RegisterClosed(registerID)
		}

		if movType == model.MovementIn {
			reg.RunningBalance = reg.RunningBalance.Add(amount)
		} else {
			reg.RunningBalance = reg.RunningBalance.Sub(amount)
		}
		if err := s.repo.SaveRegisterTx(tx, reg); err != nil {
			return apierror.Internal(err)
		}

		mov = &model.CashMovement{
			RegisterID:  reg.ID,
			TenantID:    tenantID,
			OperatorID:  operatorID,
			Type:        movType,
			Amount:      amount,
			Description: req.Description,
		}
		return s.repo.CreateMovementTx(tx, mov)
	})
	if txErr != nil {
		return nil, txErr
	}

	return movementToResponse(mov), nil
}

// ── Close ────────────────────────────────────────────────────────────────────
// Reconciliation is advisory: the difference is recorded, never blocks the
// close. computed = ΣIN − ΣOUT over the session; OPEN seeds running_balance
// but is not a turnover event, so it is excluded, as is the CLOSE marker.

func (s *registerService) Close(ctx context.Context, tenantID, registerID uuid.UUID, req dto.CloseRegisterRequest) (*dto.ReconciliationReport, error) {
	declared := money.Round(req.DeclaredValue)

	var (
		reg      *model.CashRegister
		computed decimal.Decimal
		totalIn  decimal.Decimal
		totalOut decimal.Decimal
		since    time.Time
	)
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.LockRegisterTx(tx, tenantID, registerID)
		if err != nil {
			return apierror.NotFound("register", registerID)
		}
		if locked.State != model.RegisterOpen {
			return apierror.RegisterClosed(registerID)
		}
		if locked.OpenedAt != nil {
			since = *locked.OpenedAt
		}

		totalIn, totalOut, err = s.repo.SumMovementsTx(tx, locked.ID, since)
		if err != nil {
			return apierror.Internal(err)
		}
		computed = totalIn.Sub(totalOut)
		difference := declared.Sub(computed)

		now := time.Now()
		locked.State = model.RegisterClosed
		locked.DeclaredValue = &declared
		locked.ComputedValue = &computed
		locked.Difference = &difference
		locked.ClosedAt = &now
		if err := s.repo.SaveRegisterTx(tx, locked); err != nil {
			return apierror.Internal(err)
		}

		mov := &model.CashMovement{
			RegisterID:  locked.ID,
			TenantID:    tenantID,
			OperatorID:  locked.OperatorID,
			Type:        model.MovementClose,
			Amount:      declared,
			Description: "Register closed",
		}
		if err := s.repo.CreateMovementTx(tx, mov); err != nil {
			return apierror.Internal(err)
		}

		reg = locked
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	movements, err := s.repo.ListMovements(ctx, reg.ID, since)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	log.Info().
		Str("register_id", reg.ID.String()).
		Str("declared", declared.String()).
		Str("computed", computed.String()).
		Str("difference", reg.Difference.String()).
		Msg("register closed")

	return &dto.ReconciliationReport{
		RegisterReport: dto.RegisterReport{
			Register:  *registerToResponse(reg),
			TotalIn:   totalIn,
			TotalOut:  totalOut,
			Movements: movementsToResponses(movements),
		},
		ComputedValue: computed,
		DeclaredValue: declared,
		Difference:    *reg.Difference,
	}, nil
}

// ── Report ───────────────────────────────────────────────────────────────────

func (s *registerService) Report(ctx context.Context, tenantID, registerID uuid.UUID) (*dto.RegisterReport, error) {
	reg, err := s.repo.FindByID(ctx, tenantID, registerID)
	if err != nil {
		return nil, apierror.NotFound("register", registerID)
	}

	var since time.Time
	if reg.OpenedAt != nil {
		since = *reg.OpenedAt
	}

	db := s.repo.DB()
	if db != nil {
		db = db.WithContext(ctx)
	}
	totalIn, totalOut, err := s.repo.SumMovementsTx(db, reg.ID, since)
	if err != nil {
		return nil, apierror.Internal(err)
	}
	movements, err := s.repo.ListMovements(ctx, reg.ID, since)
	if err != nil {
		return nil, apierror.Internal(err)
	}

	return &dto.RegisterReport{
		Register:  *registerToResponse(reg),
		TotalIn:   totalIn,
		TotalOut:  totalOut,
		Movements: movementsToResponses(movements),
	}, nil
}

// ── FindOpen ─────────────────────────────────────────────────────────────────

func (s *registerService) FindOpen(ctx context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error) {
	reg, err := s.repo.FindOpenByOperator(ctx, tenantID, operatorID)
	if err != nil {
		return nil, apierror.NoOpenRegister()
	}
	return reg, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func shortID(id uuid.UUID) string {
	s := id.String()
	return s[:8]
}

func registerToResponse(reg *model.CashRegister) *dto.RegisterResponse {
	resp := &dto.RegisterResponse{
		ID:             reg.ID.String(),
		Name:           reg.Name,
		State:          reg.State,
		OpeningBalance: reg.OpeningBalance,
		RunningBalance: reg.RunningBalance,
	}
	if reg.OpenedAt != nil {
		t := reg.OpenedAt.Format(time.RFC3339)
		resp.OpenedAt = &t
	}
	if reg.ClosedAt != nil {
		t := reg.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp
}

func movementToResponse(m *model.CashMovement) *dto.MovementResponse {
	resp := &dto.MovementResponse{
		ID:          m.ID.String(),
		Type:        string(m.Type),
		Amount:      m.Amount,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
	}
	if m.SaleID != nil {
		s := m.SaleID.String()
		resp.SaleID = &s
	}
	return resp
}

func movementsToResponses(movs []model.CashMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movs))
	for i := range movs {
		out = append(out, *movementToResponse(&movs[i]))
	}
	return out
}
