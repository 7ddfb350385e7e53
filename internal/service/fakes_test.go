package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Gilderlan0101/qodo-pdv/internal/model"
	"github.com/Gilderlan0101/qodo-pdv/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Shared in-memory store ───────────────────────────────────────────────────
// One store backs all fake repositories so cross-repo state (stock vs cart vs
// ledger) stays coherent, mirroring the single database in production.
//
// Transaction emulation: every repo's DB() is invoked by runTx right before a
// unit of work starts, so DB() snapshots the store. Methods carrying an
// injected failure restore the snapshot before returning their error — the
// same end state a rolled-back gorm transaction leaves behind.

type fakeStore struct {
	products  map[uuid.UUID]*model.Product
	registers map[uuid.UUID]*model.CashRegister
	movements []model.CashMovement
	cartLines map[uuid.UUID]*model.CartItem
	sales     map[uuid.UUID]*model.Sale

	ticketSeq  int
	seqEnabled bool
	clock      time.Time

	snap *storeSnapshot

	failSaleSave    bool
	failSaleCreates int // fail the next N sale creates with a duplicate-key error
}

type storeSnapshot struct {
	products  map[uuid.UUID]*model.Product
	registers map[uuid.UUID]*model.CashRegister
	movements []model.CashMovement
	cartLines map[uuid.UUID]*model.CartItem
	sales     map[uuid.UUID]*model.Sale
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:   make(map[uuid.UUID]*model.Product),
		registers:  make(map[uuid.UUID]*model.CashRegister),
		cartLines:  make(map[uuid.UUID]*model.CartItem),
		sales:      make(map[uuid.UUID]*model.Sale),
		seqEnabled: true,
		clock:      time.Now(),
	}
}

func (s *fakeStore) nextTime() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *fakeStore) begin() {
	snap := &storeSnapshot{
		products:  make(map[uuid.UUID]*model.Product, len(s.products)),
		registers: make(map[uuid.UUID]*model.CashRegister, len(s.registers)),
		movements: append([]model.CashMovement(nil), s.movements...),
		cartLines: make(map[uuid.UUID]*model.CartItem, len(s.cartLines)),
		sales:     make(map[uuid.UUID]*model.Sale, len(s.sales)),
	}
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for id, r := range s.registers {
		cp := *r
		snap.registers[id] = &cp
	}
	for id, l := range s.cartLines {
		cp := *l
		snap.cartLines[id] = &cp
	}
	for id, sl := range s.sales {
		cp := *sl
		cp.Items = append([]model.SaleItem(nil), sl.Items...)
		snap.sales[id] = &cp
	}
	s.snap = snap
}

func (s *fakeStore) rollback() {
	if s.snap == nil {
		return
	}
	s.products = s.snap.products
	s.registers = s.snap.registers
	s.movements = s.snap.movements
	s.cartLines = s.snap.cartLines
	s.sales = s.snap.sales
	s.snap = nil
}

func (s *fakeStore) addProduct(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Active = true
	s.products[p.ID] = p
	return p
}

// ── ProductRepository ────────────────────────────────────────────────────────

type fakeProductRepo struct{ store *fakeStore }

func (r *fakeProductRepo) DB() *gorm.DB {
	r.store.begin()
	return nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	for _, existing := range r.store.products {
		if existing.TenantID == p.TenantID && existing.Code == p.Code {
			return gorm.ErrDuplicatedKey
		}
	}
	r.store.addProduct(p)
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok || p.TenantID != tenantID || !p.Active {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByRef(ctx context.Context, tenantID uuid.UUID, ref string) (*model.Product, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return r.FindByID(ctx, tenantID, id)
	}
	for _, p := range r.store.products {
		if p.TenantID != tenantID || !p.Active {
			continue
		}
		if p.Code == strings.ToUpper(ref) || strings.Contains(strings.ToLower(p.Name), strings.ToLower(ref)) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeProductRepo) ListLowStock(_ context.Context, tenantID uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.store.products {
		if p.TenantID == tenantID && p.Active && p.Stock <= p.StockMin {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Stock < out[j].Stock })
	return out, nil
}

func (r *fakeProductRepo) FindByIDTx(_ *gorm.DB, tenantID, id uuid.UUID) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok || p.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) ReserveStockTx(_ *gorm.DB, tenantID, id uuid.UUID, qty int) (bool, error) {
	p, ok := r.store.products[id]
	if !ok || p.TenantID != tenantID || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *fakeProductRepo) RestoreStockTx(_ *gorm.DB, tenantID, id uuid.UUID, qty int) error {
	p, ok := r.store.products[id]
	if !ok || p.TenantID != tenantID {
		return gorm.ErrRecordNotFound
	}
	p.Stock += qty
	return nil
}

var _ repository.ProductRepository = (*fakeProductRepo)(nil)

// ── RegisterRepository ───────────────────────────────────────────────────────

type fakeRegisterRepo struct{ store *fakeStore }

func (r *fakeRegisterRepo) DB() *gorm.DB {
	r.store.begin()
	return nil
}

func (r *fakeRegisterRepo) CreateRegister(_ context.Context, reg *model.CashRegister) error {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	cp := *reg
	r.store.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) FindByTenantOperator(_ context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error) {
	for _, reg := range r.store.registers {
		if reg.TenantID == tenantID && reg.OperatorID == operatorID {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRegisterRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.store.registers[id]
	if !ok || reg.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeRegisterRepo) FindOpenByOperator(_ context.Context, tenantID, operatorID uuid.UUID) (*model.CashRegister, error) {
	for _, reg := range r.store.registers {
		if reg.TenantID == tenantID && reg.OperatorID == operatorID && reg.State == model.RegisterOpen {
			cp := *reg
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRegisterRepo) LockRegisterTx(_ *gorm.DB, tenantID, id uuid.UUID) (*model.CashRegister, error) {
	reg, ok := r.store.registers[id]
	if !ok || reg.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *reg
	return &cp, nil
}

func (r *fakeRegisterRepo) SaveRegisterTx(_ *gorm.DB, reg *model.CashRegister) error {
	cp := *reg
	r.store.registers[reg.ID] = &cp
	return nil
}

func (r *fakeRegisterRepo) CreateMovementTx(_ *gorm.DB, m *model.CashMovement) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.CreatedAt = r.store.nextTime()
	r.store.movements = append(r.store.movements, *m)
	return nil
}

func (r *fakeRegisterRepo) ListMovements(_ context.Context, registerID uuid.UUID, since time.Time) ([]model.CashMovement, error) {
	var out []model.CashMovement
	for _, m := range r.store.movements {
		if m.RegisterID != registerID {
			continue
		}
		if !since.IsZero() && m.CreatedAt.Before(since) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRegisterRepo) SumMovementsTx(_ *gorm.DB, registerID uuid.UUID, since time.Time) (decimal.Decimal, decimal.Decimal, error) {
	in, out := decimal.Zero, decimal.Zero
	for _, m := range r.store.movements {
		if m.RegisterID != registerID {
			continue
		}
		if !since.IsZero() && m.CreatedAt.Before(since) {
			continue
		}
		switch m.Type {
		case model.MovementIn:
			in = in.Add(m.Amount)
		case model.MovementOut:
			out = out.Add(m.Amount)
		}
	}
	return in, out, nil
}

var _ repository.RegisterRepository = (*fakeRegisterRepo)(nil)

// ── CartRepository ───────────────────────────────────────────────────────────

type fakeCartRepo struct{ store *fakeStore }

func (r *fakeCartRepo) DB() *gorm.DB {
	r.store.begin()
	return nil
}

func (r *fakeCartRepo) ListLines(_ context.Context, registerID uuid.UUID) ([]model.CartItem, error) {
	return r.linesFor(registerID), nil
}

func (r *fakeCartRepo) ListLinesTx(_ *gorm.DB, registerID uuid.UUID) ([]model.CartItem, error) {
	return r.linesFor(registerID), nil
}

func (r *fakeCartRepo) linesFor(registerID uuid.UUID) []model.CartItem {
	var out []model.CartItem
	for _, l := range r.store.cartLines {
		if l.RegisterID == registerID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *fakeCartRepo) FindLineTx(_ *gorm.DB, registerID, productID uuid.UUID) (*model.CartItem, error) {
	for _, l := range r.store.cartLines {
		if l.RegisterID == registerID && l.ProductID == productID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCartRepo) CreateLineTx(_ *gorm.DB, line *model.CartItem) error {
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	line.CreatedAt = r.store.nextTime()
	cp := *line
	r.store.cartLines[line.ID] = &cp
	return nil
}

func (r *fakeCartRepo) SaveLineTx(_ *gorm.DB, line *model.CartItem) error {
	cp := *line
	r.store.cartLines[line.ID] = &cp
	return nil
}

func (r *fakeCartRepo) DeleteLineTx(_ *gorm.DB, id uuid.UUID) error {
	delete(r.store.cartLines, id)
	return nil
}

func (r *fakeCartRepo) DeleteAllTx(_ *gorm.DB, registerID uuid.UUID) error {
	for id, l := range r.store.cartLines {
		if l.RegisterID == registerID {
			delete(r.store.cartLines, id)
		}
	}
	return nil
}

var _ repository.CartRepository = (*fakeCartRepo)(nil)

// ── SaleRepository ───────────────────────────────────────────────────────────

type fakeSaleRepo struct{ store *fakeStore }

func (r *fakeSaleRepo) DB() *gorm.DB {
	r.store.begin()
	return nil
}

func (r *fakeSaleRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*model.Sale, error) {
	return r.find(tenantID, id)
}

func (r *fakeSaleRepo) FindByIDTx(_ *gorm.DB, tenantID, id uuid.UUID) (*model.Sale, error) {
	return r.find(tenantID, id)
}

func (r *fakeSaleRepo) find(tenantID, id uuid.UUID) (*model.Sale, error) {
	sale, ok := r.store.sales[id]
	if !ok || sale.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sale
	cp.Items = append([]model.SaleItem(nil), sale.Items...)
	return &cp, nil
}

func (r *fakeSaleRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]model.Sale, error) {
	var out []model.Sale
	for _, sale := range r.store.sales {
		if sale.TenantID == tenantID && sale.Status != model.SaleVoided {
			cp := *sale
			cp.Items = append([]model.SaleItem(nil), sale.Items...)
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeSaleRepo) CreateTx(_ *gorm.DB, sale *model.Sale) error {
	if r.store.failSaleCreates > 0 {
		r.store.failSaleCreates--
		r.store.rollback()
		return gorm.ErrDuplicatedKey
	}
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	sale.CreatedAt = r.store.nextTime()
	for i := range sale.Items {
		if sale.Items[i].ID == uuid.Nil {
			sale.Items[i].ID = uuid.New()
		}
		sale.Items[i].SaleID = sale.ID
	}
	cp := *sale
	cp.Items = append([]model.SaleItem(nil), sale.Items...)
	r.store.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) SaveTx(_ *gorm.DB, sale *model.Sale) error {
	if r.store.failSaleSave {
		r.store.rollback()
		return gorm.ErrInvalidTransaction
	}
	cp := *sale
	cp.Items = append([]model.SaleItem(nil), sale.Items...)
	r.store.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) SaveItemTx(_ *gorm.DB, item *model.SaleItem) error {
	sale, ok := r.store.sales[item.SaleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range sale.Items {
		if sale.Items[i].ID == item.ID {
			sale.Items[i] = *item
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeSaleRepo) NextTicketNumberTx(_ *gorm.DB) (int, error) {
	if !r.store.seqEnabled {
		return 0, nil
	}
	r.store.ticketSeq++
	return r.store.ticketSeq, nil
}

var _ repository.SaleRepository = (*fakeSaleRepo)(nil)

// ── Test helpers ─────────────────────────────────────────────────────────────

func findRegister(f *fixture, tenantID, operatorID uuid.UUID) *model.CashRegister {
	for _, reg := range f.store.registers {
		if reg.TenantID == tenantID && reg.OperatorID == operatorID {
			return reg
		}
	}
	return nil
}

func movementsOfType(f *fixture, registerID uuid.UUID, typ model.MovementType) []model.CashMovement {
	var out []model.CashMovement
	for _, m := range f.store.movements {
		if m.RegisterID == registerID && m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func mustParse(s string) uuid.UUID { return uuid.MustParse(s) }

// ── Wiring helper ────────────────────────────────────────────────────────────

type fixture struct {
	store        *fakeStore
	productRepo  *fakeProductRepo
	registerRepo *fakeRegisterRepo
	cartRepo     *fakeCartRepo
	saleRepo     *fakeSaleRepo

	registers RegisterService
	cart      CartService
	checkout  CheckoutService
	sales     SaleService
	reports   ReportService
}

func newFixture() *fixture {
	store := newFakeStore()
	f := &fixture{
		store:        store,
		productRepo:  &fakeProductRepo{store: store},
		registerRepo: &fakeRegisterRepo{store: store},
		cartRepo:     &fakeCartRepo{store: store},
		saleRepo:     &fakeSaleRepo{store: store},
	}
	f.registers = NewRegisterService(f.registerRepo)
	f.cart = NewCartService(f.cartRepo, f.productRepo, f.registers)
	f.reports = NewReportService(f.saleRepo, f.productRepo, nil)
	f.checkout = NewCheckoutService(f.saleRepo, f.cartRepo, f.productRepo, f.registers, f.registerRepo, f.cart, f.reports, nil)
	f.sales = NewSaleService(f.saleRepo, f.productRepo, f.registerRepo, f.reports)
	return f
}
