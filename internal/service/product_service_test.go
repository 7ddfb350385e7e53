package service

import (
	"context"
	"testing"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductNormalizesCode(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()

	resp, err := svc.Create(context.Background(), tenantID, dto.CreateProductRequest{
		Code:      "  fei-010 ",
		Name:      " Feijão Carioca 1kg ",
		CostPrice: dec("4.499"),
		SalePrice: dec("7.999"),
		Stock:     20,
	})
	require.NoError(t, err)

	assert.Equal(t, "FEI-010", resp.Code)
	assert.Equal(t, "Feijão Carioca 1kg", resp.Name)
	assert.Equal(t, "4.5", resp.CostPrice.String())
	assert.Equal(t, "8", resp.SalePrice.String())
	assert.True(t, resp.Active)
}

func TestCreateProductDuplicateCode(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	req := dto.CreateProductRequest{Code: "FEI-010", Name: "Feijão", CostPrice: dec("4.50"), SalePrice: dec("8.00"), Stock: 20}
	_, err := svc.Create(ctx, tenantID, req)
	require.NoError(t, err)

	_, err = svc.Create(ctx, tenantID, req)
	assert.True(t, apierror.HasCode(err, apierror.CodeConflict))

	// same code under another tenant is fine
	_, err = svc.Create(ctx, uuid.New(), req)
	assert.NoError(t, err)
}

func TestCreateProductNegativePrice(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)

	_, err := svc.Create(context.Background(), uuid.New(), dto.CreateProductRequest{
		Code: "X", Name: "x", CostPrice: dec("-1"), SalePrice: dec("1"),
	})
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidInput))
}

func TestGetByRef(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, dto.CreateProductRequest{
		Code: "FEI-010", Name: "Feijão Carioca 1kg", CostPrice: dec("4.50"), SalePrice: dec("8.00"), Stock: 20,
	})
	require.NoError(t, err)

	byCode, err := svc.GetByRef(ctx, tenantID, "fei-010")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byCode.ID)

	byID, err := svc.GetByRef(ctx, tenantID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Code, byID.Code)

	_, err = svc.GetByRef(ctx, uuid.New(), "FEI-010")
	assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))
}

func TestStockEntryIncreasesStock(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, dto.CreateProductRequest{
		Code: "FEI-010", Name: "Feijão Carioca 1kg", CostPrice: dec("4.50"), SalePrice: dec("8.00"), Stock: 5,
	})
	require.NoError(t, err)

	resp, err := svc.StockEntry(ctx, tenantID, dto.StockAdjustmentRequest{
		ProductRef: "fei-010", Quantity: 12, Reason: "weekly delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, resp.ProductID)
	assert.Equal(t, 12, resp.Quantity)
	assert.Equal(t, 17, resp.Stock)
	assert.Equal(t, 17, f.store.products[mustParse(created.ID)].Stock)
}

func TestStockExitDecreasesStock(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, dto.CreateProductRequest{
		Code: "LEI-003", Name: "Leite Integral 1L", CostPrice: dec("3.20"), SalePrice: dec("5.50"), Stock: 10,
	})
	require.NoError(t, err)

	resp, err := svc.StockExit(ctx, tenantID, dto.StockAdjustmentRequest{
		ProductRef: created.ID, Quantity: 4, Reason: "expired batch",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, resp.Stock)
	assert.Equal(t, 6, f.store.products[mustParse(created.ID)].Stock)
}

func TestStockExitInsufficientStock(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	created, err := svc.Create(ctx, tenantID, dto.CreateProductRequest{
		Code: "LEI-003", Name: "Leite Integral 1L", CostPrice: dec("3.20"), SalePrice: dec("5.50"), Stock: 3,
	})
	require.NoError(t, err)

	_, err = svc.StockExit(ctx, tenantID, dto.StockAdjustmentRequest{ProductRef: "LEI-003", Quantity: 5})
	require.True(t, apierror.HasCode(err, apierror.CodeInsufficientStock))

	var apiErr *apierror.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 5, apiErr.Fields["requested"])
	assert.Equal(t, 3, apiErr.Fields["available"])

	// failed exit leaves stock untouched
	assert.Equal(t, 3, f.store.products[mustParse(created.ID)].Stock)
}

func TestStockAdjustmentRejectsNonPositiveQuantity(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)
	tenantID := uuid.New()
	ctx := context.Background()

	_, err := svc.Create(ctx, tenantID, dto.CreateProductRequest{
		Code: "ARZ-002", Name: "Arroz 5kg", CostPrice: dec("18.00"), SalePrice: dec("24.50"), Stock: 8,
	})
	require.NoError(t, err)

	_, err = svc.StockEntry(ctx, tenantID, dto.StockAdjustmentRequest{ProductRef: "ARZ-002", Quantity: 0})
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidInput))
	_, err = svc.StockExit(ctx, tenantID, dto.StockAdjustmentRequest{ProductRef: "ARZ-002", Quantity: -2})
	assert.True(t, apierror.HasCode(err, apierror.CodeInvalidInput))
}

func TestStockEntryUnknownProduct(t *testing.T) {
	f := newFixture()
	svc := NewProductService(f.productRepo)

	_, err := svc.StockEntry(context.Background(), uuid.New(), dto.StockAdjustmentRequest{ProductRef: "NOPE-404", Quantity: 1})
	assert.True(t, apierror.HasCode(err, apierror.CodeNotFound))
}
