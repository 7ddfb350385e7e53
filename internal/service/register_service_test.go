package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOpenRegisterProvisionsAndOpens(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	resp, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)

	assert.Equal(t, model.RegisterOpen, resp.State)
	assert.Equal(t, "100", resp.OpeningBalance.String())
	assert.Equal(t, "100", resp.RunningBalance.String())
	require.NotNil(t, resp.OpenedAt)
	assert.Nil(t, resp.ClosedAt)

	// exactly one register row and one OPEN marker in the ledger
	assert.Len(t, f.store.registers, 1)
	require.Len(t, f.store.movements, 1)
	assert.Equal(t, model.MovementOpen, f.store.movements[0].Type)
	assert.True(t, f.store.movements[0].Amount.Equal(dec("100.00")))
}

func TestOpenRegisterIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	first, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("50.00")})
	require.NoError(t, err)

	second, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("999.00")})
	require.NoError(t, err)

	// same register, original opening balance, no second OPEN marker
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "50", second.OpeningBalance.String())
	assert.Len(t, f.store.registers, 1)
	assert.Len(t, f.store.movements, 1)
}

func TestPostMovementAdjustsRunningBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
		Type: "IN", Amount: dec("30.00"), Description: "Change float top-up",
	})
	require.NoError(t, err)

	mv, err := f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
		Type: "OUT", Amount: dec("45.50"), Description: "Supplier payout",
	})
	require.NoError(t, err)
	assert.Equal(t, "OUT", mv.Type)

	reg := f.store.registers[registerID]
	assert.Equal(t, "84.5", reg.RunningBalance.String())
}

func TestPostMovementRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("10.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
		Type: "OUT", Amount: dec("0"), Description: "noop",
	})
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidInput))
	assert.Len(t, f.store.movements, 1) // only the OPEN marker
}

func TestPostMovementClosedRegister(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("10.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	_, err = f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("10.00")})
	require.NoError(t, err)

	_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
		Type: "IN", Amount: dec("5.00"), Description: "too late",
	})
	assert.True(t, apierror.HasCode(err, apierror.CodeRegisterClosed))
}

// Reconciliation: opening 100.00, IN 50.25, IN 49.75, OUT 20.00, declared
// 180.00. Computed covers session IN/OUT only (the opening float and markers
// are excluded), so computed = 80.00 and difference = 100.00.
func TestCloseReconciliation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	for _, amt := range []string{"50.25", "49.75"} {
		_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
			Type: "IN", Amount: dec(amt), Description: "cash sale",
		})
		require.NoError(t, err)
	}
	_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
		Type: "OUT", Amount: dec("20.00"), Description: "petty cash",
	})
	require.NoError(t, err)

	report, err := f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("180.00")})
	require.NoError(t, err)

	assert.Equal(t, "80", report.ComputedValue.String())
	assert.Equal(t, "180", report.DeclaredValue.String())
	assert.Equal(t, "100", report.Difference.String())
	assert.Equal(t, "100", report.TotalIn.String())
	assert.Equal(t, "20", report.TotalOut.String())
	assert.Equal(t, model.RegisterClosed, report.Register.State)
	require.NotNil(t, report.Register.ClosedAt)

	// session movements come back newest first: CLOSE, OUT, IN, IN, OPEN
	require.Len(t, report.Movements, 5)
	assert.Equal(t, "CLOSE", report.Movements[0].Type)
	assert.Equal(t, "OPEN", report.Movements[4].Type)

	// the audit snapshot lands on the register row
	reg := f.store.registers[registerID]
	require.NotNil(t, reg.Difference)
	assert.Equal(t, "100", reg.Difference.String())
}

// Reconciliation must not depend on the order movements were posted:
// every shuffle of the same IN/OUT multiset closes to the same computed
// value, and that value matches a net computed independently of the service.
func TestCloseReconciliationOrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(20260828))

	type entry struct {
		kind   string
		amount decimal.Decimal
	}
	entries := make([]entry, 0, 12)
	expected := decimal.Zero
	for i := 0; i < 12; i++ {
		// random cents amount in [0.01, 500.00]
		amount := decimal.New(int64(rng.Intn(50000))+1, -2)
		kind := "IN"
		if rng.Intn(2) == 0 {
			kind = "OUT"
			expected = expected.Sub(amount)
		} else {
			expected = expected.Add(amount)
		}
		entries = append(entries, entry{kind: kind, amount: amount})
	}

	for round := 0; round < 5; round++ {
		rng.Shuffle(len(entries), func(i, j int) {
			entries[i], entries[j] = entries[j], entries[i]
		})

		f := newFixture()
		ctx := context.Background()
		tenantID, operatorID := uuid.New(), uuid.New()

		opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("100.00")})
		require.NoError(t, err)
		registerID := uuid.MustParse(opened.ID)

		for _, e := range entries {
			_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
				Type: e.kind, Amount: e.amount, Description: "session cash",
			})
			require.NoError(t, err)
		}

		report, err := f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{
			DeclaredValue: dec("100.00").Add(expected),
		})
		require.NoError(t, err)

		assert.True(t, report.ComputedValue.Equal(expected),
			"round %d: computed %s, want %s", round, report.ComputedValue, expected)
		assert.True(t, report.TotalIn.Sub(report.TotalOut).Equal(expected))
		assert.True(t, report.Difference.Equal(dec("100.00")))
	}
}

func TestCloseAlreadyClosed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("10.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	_, err = f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("10.00")})
	require.NoError(t, err)

	_, err = f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("10.00")})
	assert.True(t, apierror.HasCode(err, apierror.CodeRegisterClosed))
}

// Reopening starts a fresh session: the previous session's movements fall
// outside the new OpenedAt bound and the close snapshot is cleared.
func TestReopenStartsFreshSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("100.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	_, err = f.registers.PostMovement(ctx, tenantID, registerID, operatorID, dto.PostMovementRequest{
		Type: "IN", Amount: dec("40.00"), Description: "cash sale",
	})
	require.NoError(t, err)
	_, err = f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("140.00")})
	require.NoError(t, err)

	// session boundary sits between the first close and the reopen
	f.store.clock = f.store.clock.Add(time.Hour)

	reopened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("200.00")})
	require.NoError(t, err)
	assert.Equal(t, opened.ID, reopened.ID)
	assert.Equal(t, "200", reopened.OpeningBalance.String())

	// no turnover in the fresh session: computed is 0, the declared float is
	// the whole difference
	report, err := f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("200.00")})
	require.NoError(t, err)
	assert.Equal(t, "0", report.ComputedValue.String())
	assert.Equal(t, "200", report.Difference.String())

	reg := f.store.registers[registerID]
	require.NotNil(t, reg.ComputedValue)
	assert.Equal(t, "0", reg.ComputedValue.String())
}

func TestReportDoesNotRequireOpenState(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tenantID, operatorID := uuid.New(), uuid.New()

	opened, err := f.registers.Open(ctx, tenantID, operatorID, dto.OpenRegisterRequest{OpeningBalance: dec("25.00")})
	require.NoError(t, err)
	registerID := uuid.MustParse(opened.ID)

	_, err = f.registers.Close(ctx, tenantID, registerID, dto.CloseRegisterRequest{DeclaredValue: dec("25.00")})
	require.NoError(t, err)

	report, err := f.registers.Report(ctx, tenantID, registerID)
	require.NoError(t, err)
	assert.Equal(t, model.RegisterClosed, report.Register.State)
}

func TestFindOpenNoRegister(t *testing.T) {
	f := newFixture()
	_, err := f.registers.FindOpen(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apierror.HasCode(err, apierror.CodeNoOpenRegister))
}
