package orders_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/application/orders"
	"github.com/tu-usuario/servitec-api/internal/application/stock"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/authz"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// Un único store respalda todos los repositorios. El TxRunner toma el lock por
// transacción y restaura un snapshot si la función falla, para ejercitar la
// atomicidad (línea + movimiento + totales confirman juntos o ninguno).
// ──────────────────────────────────────────────────────────────────────────────

type orderStore struct {
	mu        sync.Mutex
	clients   map[string]*entity.Client
	equipment map[string]*entity.Equipment
	parts     map[string]*entity.Part
	catalog   map[string]*entity.CatalogService
	orders    map[string]*entity.ServiceOrder
	items     map[string]*entity.ServiceOrderItem
	movements []*entity.StockMovement
	codeSeq   int
}

func newOrderStore() *orderStore {
	return &orderStore{
		clients:   make(map[string]*entity.Client),
		equipment: make(map[string]*entity.Equipment),
		parts:     make(map[string]*entity.Part),
		catalog:   make(map[string]*entity.CatalogService),
		orders:    make(map[string]*entity.ServiceOrder),
		items:     make(map[string]*entity.ServiceOrderItem),
	}
}

type storeSnapshot struct {
	parts     map[string]*entity.Part
	orders    map[string]*entity.ServiceOrder
	items     map[string]*entity.ServiceOrderItem
	movements []*entity.StockMovement
	codeSeq   int
}

func (s *orderStore) snapshot() storeSnapshot {
	snap := storeSnapshot{
		parts:   make(map[string]*entity.Part, len(s.parts)),
		orders:  make(map[string]*entity.ServiceOrder, len(s.orders)),
		items:   make(map[string]*entity.ServiceOrderItem, len(s.items)),
		codeSeq: s.codeSeq,
	}
	for id, p := range s.parts {
		cp := *p
		snap.parts[id] = &cp
	}
	for id, o := range s.orders {
		cp := *o
		snap.orders[id] = &cp
	}
	for id, it := range s.items {
		cp := *it
		snap.items[id] = &cp
	}
	snap.movements = make([]*entity.StockMovement, len(s.movements))
	copy(snap.movements, s.movements)
	return snap
}

func (s *orderStore) restore(snap storeSnapshot) {
	s.parts = snap.parts
	s.orders = snap.orders
	s.items = snap.items
	s.movements = snap.movements
	s.codeSeq = snap.codeSeq
}

type fakeOrderTxRunner struct {
	store *orderStore
}

func (r *fakeOrderTxRunner) RunOrder(ctx context.Context, fn func(
	orderRepo repository.ServiceOrderRepository,
	itemRepo repository.OrderItemRepository,
	movRepo repository.StockMovementRepository,
	partRepo repository.PartRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snap := r.store.snapshot()
	err := fn(
		&fakeOrderRepo{store: r.store},
		&fakeItemRepo{store: r.store},
		&fakeMovementRepo{store: r.store},
		&fakePartRepo{store: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

type fakeClientRepo struct{ store *orderStore }

func (r *fakeClientRepo) Create(ctx context.Context, c *entity.Client) error {
	r.store.clients[c.ID] = c
	return nil
}
func (r *fakeClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	return r.store.clients[id], nil
}
func (r *fakeClientRepo) GetByDocument(ctx context.Context, document string) (*entity.Client, error) {
	for _, c := range r.store.clients {
		if c.Document == document {
			return c, nil
		}
	}
	return nil, nil
}
func (r *fakeClientRepo) Update(ctx context.Context, c *entity.Client) error { return nil }
func (r *fakeClientRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Client, error) {
	return nil, nil
}
func (r *fakeClientRepo) HasHistory(ctx context.Context, id string) (bool, error) { return false, nil }
func (r *fakeClientRepo) SoftDelete(ctx context.Context, id string) error         { return nil }
func (r *fakeClientRepo) HardDelete(ctx context.Context, id string) error         { return nil }

type fakeEquipmentRepo struct{ store *orderStore }

func (r *fakeEquipmentRepo) Create(ctx context.Context, eq *entity.Equipment) error {
	r.store.equipment[eq.ID] = eq
	return nil
}
func (r *fakeEquipmentRepo) GetByID(ctx context.Context, id string) (*entity.Equipment, error) {
	return r.store.equipment[id], nil
}
func (r *fakeEquipmentRepo) Update(ctx context.Context, eq *entity.Equipment) error { return nil }
func (r *fakeEquipmentRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Equipment, error) {
	return nil, nil
}
func (r *fakeEquipmentRepo) SoftDelete(ctx context.Context, id string) error { return nil }

type fakeCatalogRepo struct{ store *orderStore }

func (r *fakeCatalogRepo) Create(ctx context.Context, svc *entity.CatalogService) error {
	r.store.catalog[svc.ID] = svc
	return nil
}
func (r *fakeCatalogRepo) GetByID(ctx context.Context, id string) (*entity.CatalogService, error) {
	return r.store.catalog[id], nil
}
func (r *fakeCatalogRepo) Update(ctx context.Context, svc *entity.CatalogService) error { return nil }
func (r *fakeCatalogRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.CatalogService, error) {
	return nil, nil
}
func (r *fakeCatalogRepo) SoftDelete(ctx context.Context, id string) error { return nil }

type fakePartRepo struct{ store *orderStore }

func (r *fakePartRepo) Create(ctx context.Context, p *entity.Part) error {
	r.store.parts[p.ID] = p
	return nil
}
func (r *fakePartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	p, ok := r.store.parts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}
func (r *fakePartRepo) GetBySKU(ctx context.Context, sku string) (*entity.Part, error) {
	return nil, nil
}
func (r *fakePartRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	return r.GetByID(ctx, id)
}
func (r *fakePartRepo) Update(ctx context.Context, p *entity.Part) error { return nil }
func (r *fakePartRepo) UpdateStockQuantity(ctx context.Context, id string, quantity int) error {
	if p, ok := r.store.parts[id]; ok {
		p.StockQuantity = quantity
	}
	return nil
}
func (r *fakePartRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Part, error) {
	return nil, nil
}
func (r *fakePartRepo) ListBelowMinStock(ctx context.Context) ([]*entity.Part, error) {
	return nil, nil
}
func (r *fakePartRepo) HasHistory(ctx context.Context, id string) (bool, error) { return false, nil }
func (r *fakePartRepo) SoftDelete(ctx context.Context, id string) error         { return nil }
func (r *fakePartRepo) HardDelete(ctx context.Context, id string) error         { return nil }

type fakeMovementRepo struct{ store *orderStore }

func (r *fakeMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	cp := *m
	r.store.movements = append(r.store.movements, &cp)
	return nil
}
func (r *fakeMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	return nil, nil
}
func (r *fakeMovementRepo) ListByPart(ctx context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return nil, nil
}
func (r *fakeMovementRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.store.movements {
		if m.ServiceOrderID == orderID {
			out = append(out, m)
		}
	}
	return out, nil
}
func (r *fakeMovementRepo) SignedSum(ctx context.Context, partID string) (int, error) {
	sum := 0
	for _, m := range r.store.movements {
		if m.PartID == partID {
			sum += m.Signed()
		}
	}
	return sum, nil
}

type fakeOrderRepo struct{ store *orderStore }

func (r *fakeOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	cp := *o
	r.store.orders[o.ID] = &cp
	return nil
}
func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}
func (r *fakeOrderRepo) GetByCode(ctx context.Context, code string) (*entity.ServiceOrder, error) {
	for _, o := range r.store.orders {
		if o.Code == code {
			return o, nil
		}
	}
	return nil, nil
}
func (r *fakeOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	return r.GetByID(ctx, id)
}
func (r *fakeOrderRepo) Update(ctx context.Context, o *entity.ServiceOrder) error {
	cp := *o
	r.store.orders[o.ID] = &cp
	return nil
}
func (r *fakeOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.ServiceOrder, error) {
	var out []*entity.ServiceOrder
	for _, o := range r.store.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.ClientID != "" && o.ClientID != filter.ClientID {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
func (r *fakeOrderRepo) ListStuckSince(ctx context.Context, status workflow.Status, cutoff time.Time) ([]*entity.ServiceOrder, error) {
	var out []*entity.ServiceOrder
	for _, o := range r.store.orders {
		if o.Status == status && o.UpdatedAt.Before(cutoff) {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *fakeOrderRepo) CountOpenByClient(ctx context.Context, clientID string) (int, error) {
	return 0, nil
}
func (r *fakeOrderRepo) NextCode(ctx context.Context) (string, error) {
	r.store.codeSeq++
	return fmt.Sprintf("OS-%06d", r.store.codeSeq), nil
}

type fakeItemRepo struct{ store *orderStore }

func (r *fakeItemRepo) Create(ctx context.Context, it *entity.ServiceOrderItem) error {
	cp := *it
	r.store.items[it.ID] = &cp
	return nil
}
func (r *fakeItemRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrderItem, error) {
	return r.store.items[id], nil
}
func (r *fakeItemRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.ServiceOrderItem, error) {
	var out []*entity.ServiceOrderItem
	for _, it := range r.store.items {
		if it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}
func (r *fakeItemRepo) Delete(ctx context.Context, id string) error {
	delete(r.store.items, id)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Harness
// ──────────────────────────────────────────────────────────────────────────────

var (
	admin     = orders.Actor{ID: "admin-1", Role: entity.RoleAdmin}
	techField = orders.Actor{ID: "tech-1", Role: entity.RoleTechField}
)

func newHarness(t *testing.T) (*orders.UseCase, *orderStore) {
	t.Helper()
	store := newOrderStore()
	log := logger.New(logger.Config{Env: "test", Level: "error"})

	ledger := stock.NewLedgerUseCase(
		fakeStockRunner{store: store},
		&fakePartRepo{store: store},
		&fakeMovementRepo{store: store},
		log,
	)
	uc := orders.NewUseCase(
		&fakeOrderTxRunner{store: store},
		&fakeOrderRepo{store: store},
		&fakeItemRepo{store: store},
		&fakeClientRepo{store: store},
		&fakeEquipmentRepo{store: store},
		&fakePartRepo{store: store},
		&fakeCatalogRepo{store: store},
		ledger,
		authz.NewGate(),
		workflow.NewMachine(workflow.DefaultTable()),
		log,
	)
	return uc, store
}

// fakeStockRunner satisface stock.TxRunner; el caso de uso de órdenes usa
// únicamente ApplyMovementInTx, así que Run no participa en estos tests.
type fakeStockRunner struct{ store *orderStore }

func (r fakeStockRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	partRepo repository.PartRepository,
) error) error {
	return fn(&fakeMovementRepo{store: r.store}, &fakePartRepo{store: r.store})
}

func seedClient(store *orderStore, id string) *entity.Client {
	c := &entity.Client{ID: id, Name: "Cliente " + id, Document: "900" + id, IsActive: true}
	store.clients[id] = c
	return c
}

func seedOrder(store *orderStore, id string, status workflow.Status) *entity.ServiceOrder {
	o := &entity.ServiceOrder{
		ID:             id,
		Code:           "OS-" + id,
		Status:         status,
		Priority:       entity.PriorityMedium,
		Type:           entity.OrderTypeCorrective,
		ClientID:       "c1",
		ReportedDefect: "no enciende",
		Total:          decimal.Zero,
		TotalParts:     decimal.Zero,
		TotalServices:  decimal.Zero,
		UpdatedAt:      time.Now(),
	}
	store.orders[id] = o
	return o
}

func seedServicePart(store *orderStore, id string, balance int, price int64) *entity.Part {
	p := &entity.Part{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Repuesto " + id,
		UsageType:     entity.UsageTypeService,
		StockQuantity: balance,
		UnitPrice:     decimal.NewFromInt(price),
		IsActive:      true,
	}
	store.parts[id] = p
	return p
}

// ──────────────────────────────────────────────────────────────────────────────
// Create
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_OrdenNaceEnOpenConCodigo(t *testing.T) {
	uc, store := newHarness(t)
	seedClient(store, "c1")

	order, err := uc.Create(context.Background(), admin, dto.CreateOrderRequest{
		ClientID:       "c1",
		Priority:       entity.PriorityHigh,
		Type:           entity.OrderTypeCorrective,
		ReportedDefect: "pantalla rota",
	})
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusOpen, order.Status)
	assert.Equal(t, "OS-000001", order.Code)
	assert.True(t, order.Total.IsZero())
	assert.Nil(t, order.FinishedAt)

	// El consecutivo avanza.
	second, err := uc.Create(context.Background(), admin, dto.CreateOrderRequest{
		ClientID:       "c1",
		Priority:       entity.PriorityLow,
		Type:           entity.OrderTypePreventive,
		ReportedDefect: "mantenimiento",
	})
	require.NoError(t, err)
	assert.Equal(t, "OS-000002", second.Code)
}

func TestCreate_ClienteInexistenteOInactivo(t *testing.T) {
	uc, store := newHarness(t)

	_, err := uc.Create(context.Background(), admin, dto.CreateOrderRequest{
		ClientID: "nope", Priority: entity.PriorityLow, Type: entity.OrderTypeCorrective, ReportedDefect: "x",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	c := seedClient(store, "c1")
	c.IsActive = false
	_, err = uc.Create(context.Background(), admin, dto.CreateOrderRequest{
		ClientID: "c1", Priority: entity.PriorityLow, Type: entity.OrderTypeCorrective, ReportedDefect: "x",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_EquipoDeOtroCliente(t *testing.T) {
	uc, store := newHarness(t)
	seedClient(store, "c1")
	seedClient(store, "c2")
	store.equipment["e1"] = &entity.Equipment{ID: "e1", ClientID: "c2", IsActive: true}

	_, err := uc.Create(context.Background(), admin, dto.CreateOrderRequest{
		ClientID: "c1", EquipmentID: "e1",
		Priority: entity.PriorityLow, Type: entity.OrderTypeCorrective, ReportedDefect: "x",
	})
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Transition
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_LegalYPermitida(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusOpen)

	updated, err := uc.Transition(context.Background(), "o1", admin, dto.TransitionRequest{Target: "IN_ANALYSIS"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusInAnalysis, updated.Status)
	assert.Equal(t, workflow.StatusInAnalysis, store.orders["o1"].Status)
}

func TestTransition_IlegalNoEscribe(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusOpen)

	_, err := uc.Transition(context.Background(), "o1", admin, dto.TransitionRequest{Target: "FINISHED"})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
	assert.Equal(t, workflow.StatusOpen, store.orders["o1"].Status)
}

func TestTransition_DestinoDesconocido(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusOpen)

	_, err := uc.Transition(context.Background(), "o1", admin, dto.TransitionRequest{Target: "LIMBO"})
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestTransition_OrdenInexistente(t *testing.T) {
	uc, _ := newHarness(t)

	_, err := uc.Transition(context.Background(), "nope", admin, dto.TransitionRequest{Target: "IN_ANALYSIS"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransition_RolSinPermiso(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusWaitingApproval)

	// WAITING_APPROVAL -> APPROVED es legal en la tabla, pero un técnico de campo
	// no tiene el permiso comercial.
	_, err := uc.Transition(context.Background(), "o1", techField, dto.TransitionRequest{Target: "APPROVED"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, workflow.StatusWaitingApproval, store.orders["o1"].Status, "el estado no debe cambiar")
}

func TestTransition_FinishedFijaFinishedAtYTotales(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	store.items["i1"] = &entity.ServiceOrderItem{
		ID: "i1", OrderID: "o1", Kind: entity.ItemKindPart, PartID: "p1",
		Quantity: 2, UnitPrice: decimal.NewFromInt(30),
	}
	store.items["i2"] = &entity.ServiceOrderItem{
		ID: "i2", OrderID: "o1", Kind: entity.ItemKindService, ServiceID: "s1",
		Quantity: 1, UnitPrice: decimal.NewFromInt(50),
	}

	updated, err := uc.Transition(context.Background(), "o1", admin, dto.TransitionRequest{Target: "FINISHED"})
	require.NoError(t, err)

	require.NotNil(t, updated.FinishedAt)
	assert.True(t, updated.TotalParts.Equal(decimal.NewFromInt(60)))
	assert.True(t, updated.TotalServices.Equal(decimal.NewFromInt(50)))
	assert.True(t, updated.Total.Equal(decimal.NewFromInt(110)))
}

func TestTransition_ReabrirLimpiaFinishedAt(t *testing.T) {
	uc, store := newHarness(t)
	now := time.Now()
	o := seedOrder(store, "o1", workflow.StatusFinished)
	o.FinishedAt = &now

	updated, err := uc.Transition(context.Background(), "o1", admin, dto.TransitionRequest{Target: "OPEN"})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusOpen, updated.Status)
	assert.Nil(t, updated.FinishedAt, "reabrir debe limpiar finishedAt")
}

func TestTransition_ReabrirDenegadoANoAdmin(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusFinished)

	_, err := uc.Transition(context.Background(), "o1", techField, dto.TransitionRequest{Target: "OPEN"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, workflow.StatusFinished, store.orders["o1"].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cancelación con reposición
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_CancelarConReposicion(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedServicePart(store, "p1", 3, 30) // saldo tras haber consumido 2
	store.items["i1"] = &entity.ServiceOrderItem{
		ID: "i1", OrderID: "o1", Kind: entity.ItemKindPart, PartID: "p1",
		Quantity: 2, UnitPrice: decimal.NewFromInt(30),
	}

	updated, err := uc.Transition(context.Background(), "o1", admin,
		dto.TransitionRequest{Target: "CANCELED", RestockParts: true})
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusCanceled, updated.Status)

	// El stock vuelve con rastro: movimiento IN con motivo ORDER_RETURN.
	assert.Equal(t, 5, store.parts["p1"].StockQuantity)
	require.Len(t, store.movements, 1)
	mov := store.movements[0]
	assert.Equal(t, entity.MovementTypeIN, mov.Type)
	assert.Equal(t, entity.ReasonOrderReturn, mov.Reason)
	assert.Equal(t, "o1", mov.ServiceOrderID)
	assert.Equal(t, 2, mov.Quantity)
}

func TestTransition_CancelarSinReposicionNoMueveStock(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedServicePart(store, "p1", 3, 30)
	store.items["i1"] = &entity.ServiceOrderItem{
		ID: "i1", OrderID: "o1", Kind: entity.ItemKindPart, PartID: "p1",
		Quantity: 2, UnitPrice: decimal.NewFromInt(30),
	}

	_, err := uc.Transition(context.Background(), "o1", admin, dto.TransitionRequest{Target: "CANCELED"})
	require.NoError(t, err)

	assert.Equal(t, 3, store.parts["p1"].StockQuantity, "sin restock_parts el saldo no cambia")
	assert.Empty(t, store.movements)
}

// ──────────────────────────────────────────────────────────────────────────────
// Líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestAddItem_RepuestoDescuentaStock(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedServicePart(store, "p1", 10, 25)

	item, err := uc.AddItem(context.Background(), "o1", admin, dto.AddItemRequest{
		PartID: "p1", Quantity: 4,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ItemKindPart, item.Kind)
	assert.Equal(t, "Repuesto p1", item.Description, "snapshot del nombre")
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(25)), "snapshot del precio de catálogo")

	assert.Equal(t, 6, store.parts["p1"].StockQuantity)
	require.Len(t, store.movements, 1)
	assert.Equal(t, entity.MovementTypeOUT, store.movements[0].Type)
	assert.Equal(t, entity.ReasonOrderConsumption, store.movements[0].Reason)
	assert.Equal(t, entity.StockTypeService, store.movements[0].StockType)

	// Totales recalculados en la misma transacción.
	assert.True(t, store.orders["o1"].TotalParts.Equal(decimal.NewFromInt(100)))
	assert.True(t, store.orders["o1"].Total.Equal(decimal.NewFromInt(100)))
}

func TestAddItem_PrecioExplicitoPisaElDeCatalogo(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedServicePart(store, "p1", 10, 25)

	price := decimal.NewFromInt(18)
	item, err := uc.AddItem(context.Background(), "o1", admin, dto.AddItemRequest{
		PartID: "p1", Quantity: 2, UnitPrice: &price,
	})
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(price))
	assert.True(t, store.orders["o1"].Total.Equal(decimal.NewFromInt(36)))
}

func TestAddItem_SinStockNadaSeEscribe(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedServicePart(store, "p1", 3, 25)

	_, err := uc.AddItem(context.Background(), "o1", admin, dto.AddItemRequest{
		PartID: "p1", Quantity: 5,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Rollback completo: ni línea, ni movimiento, ni totales, ni saldo.
	assert.Empty(t, store.items)
	assert.Empty(t, store.movements)
	assert.Equal(t, 3, store.parts["p1"].StockQuantity)
	assert.True(t, store.orders["o1"].Total.IsZero())
}

func TestAddItem_RepuestoSoloVentaRechazado(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	p := seedServicePart(store, "p1", 10, 25)
	p.UsageType = entity.UsageTypeSale

	_, err := uc.AddItem(context.Background(), "o1", admin, dto.AddItemRequest{
		PartID: "p1", Quantity: 1,
	})
	assert.ErrorIs(t, err, domain.ErrPolicyViolation, "segregación por uso: SALE no se consume en órdenes")
	assert.Empty(t, store.items)
	assert.Equal(t, 10, store.parts["p1"].StockQuantity)
}

func TestAddItem_OrdenCerradaRechaza(t *testing.T) {
	uc, store := newHarness(t)
	seedServicePart(store, "p1", 10, 25)

	for _, status := range []workflow.Status{
		workflow.StatusFinished, workflow.StatusInvoiced, workflow.StatusCanceled,
		workflow.StatusDispatched, workflow.StatusScrapped, workflow.StatusAbandoned,
	} {
		seedOrder(store, "o-"+string(status), status)
		_, err := uc.AddItem(context.Background(), "o-"+string(status), admin, dto.AddItemRequest{
			PartID: "p1", Quantity: 1,
		})
		assert.ErrorIs(t, err, domain.ErrPolicyViolation, "estado %s no admite líneas", status)
	}
}

func TestAddItem_ServicioNoTocaStock(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	store.catalog["s1"] = &entity.CatalogService{
		ID: "s1", Name: "Diagnóstico", Price: decimal.NewFromInt(40), IsActive: true,
	}

	item, err := uc.AddItem(context.Background(), "o1", admin, dto.AddItemRequest{
		ServiceID: "s1", Quantity: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.ItemKindService, item.Kind)
	assert.Empty(t, store.movements, "los servicios no generan movimientos de stock")
	assert.True(t, store.orders["o1"].TotalServices.Equal(decimal.NewFromInt(40)))
}

func TestRemoveItem_RepuestoDevuelveStock(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedServicePart(store, "p1", 10, 25)

	item, err := uc.AddItem(context.Background(), "o1", admin, dto.AddItemRequest{PartID: "p1", Quantity: 4})
	require.NoError(t, err)
	require.Equal(t, 6, store.parts["p1"].StockQuantity)

	require.NoError(t, uc.RemoveItem(context.Background(), "o1", item.ID, admin))

	assert.Equal(t, 10, store.parts["p1"].StockQuantity, "el consumo se compensa")
	require.Len(t, store.movements, 2)
	assert.Equal(t, entity.ReasonOrderReturn, store.movements[1].Reason)
	assert.True(t, store.orders["o1"].Total.IsZero(), "totales recalculados sin la línea")
	assert.Empty(t, store.items)
}

func TestRemoveItem_LineaDeOtraOrden(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	seedOrder(store, "o2", workflow.StatusInProgress)
	store.items["i1"] = &entity.ServiceOrderItem{ID: "i1", OrderID: "o2", Kind: entity.ItemKindService}

	err := uc.RemoveItem(context.Background(), "o1", "i1", admin)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Totales
// ──────────────────────────────────────────────────────────────────────────────

func TestRecomputeTotals_DeterministaEIdempotente(t *testing.T) {
	uc, store := newHarness(t)
	seedOrder(store, "o1", workflow.StatusInProgress)
	store.items["i1"] = &entity.ServiceOrderItem{
		ID: "i1", OrderID: "o1", Kind: entity.ItemKindPart, PartID: "p1",
		Quantity: 3, UnitPrice: decimal.RequireFromString("19.90"),
	}
	store.items["i2"] = &entity.ServiceOrderItem{
		ID: "i2", OrderID: "o1", Kind: entity.ItemKindService, ServiceID: "s1",
		Quantity: 2, UnitPrice: decimal.RequireFromString("45.50"),
	}

	first, err := uc.RecomputeTotals(context.Background(), "o1")
	require.NoError(t, err)
	second, err := uc.RecomputeTotals(context.Background(), "o1")
	require.NoError(t, err)

	assert.True(t, first.TotalParts.Equal(decimal.RequireFromString("59.70")))
	assert.True(t, first.TotalServices.Equal(decimal.RequireFromString("91.00")))
	assert.True(t, first.Total.Equal(decimal.RequireFromString("150.70")))

	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.TotalParts.Equal(second.TotalParts))
	assert.True(t, first.TotalServices.Equal(second.TotalServices))
}

func TestRecomputeTotals_SinLineasQuedaEnCero(t *testing.T) {
	uc, store := newHarness(t)
	o := seedOrder(store, "o1", workflow.StatusInProgress)
	o.Total = decimal.NewFromInt(999) // valor basura previo

	updated, err := uc.RecomputeTotals(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, updated.Total.IsZero())
	assert.True(t, updated.TotalParts.IsZero())
	assert.True(t, updated.TotalServices.IsZero())
}
