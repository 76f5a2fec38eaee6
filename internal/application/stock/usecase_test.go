package stock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/servitec-api/internal/application/stock"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
//
// El mutex del store emula la serialización de SELECT FOR UPDATE: cada Run
// toma el lock por toda la transacción, y un error restaura el snapshot
// (rollback). Así las propiedades transaccionales del caso de uso se pueden
// ejercitar sin base de datos.
// ──────────────────────────────────────────────────────────────────────────────

type fakeStore struct {
	mu        sync.Mutex
	parts     map[string]*entity.Part
	movements []*entity.StockMovement
}

func newFakeStore() *fakeStore {
	return &fakeStore{parts: make(map[string]*entity.Part)}
}

func (s *fakeStore) snapshot() (map[string]*entity.Part, []*entity.StockMovement) {
	parts := make(map[string]*entity.Part, len(s.parts))
	for id, p := range s.parts {
		cp := *p
		parts[id] = &cp
	}
	movs := make([]*entity.StockMovement, len(s.movements))
	copy(movs, s.movements)
	return parts, movs
}

type fakeTxRunner struct {
	store *fakeStore
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	partRepo repository.PartRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	parts, movs := r.store.snapshot()
	err := fn(&fakeMovementRepo{store: r.store}, &fakePartRepo{store: r.store})
	if err != nil {
		r.store.parts = parts
		r.store.movements = movs
	}
	return err
}

type fakePartRepo struct {
	store *fakeStore
}

func (r *fakePartRepo) Create(ctx context.Context, part *entity.Part) error {
	r.store.parts[part.ID] = part
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
	for _, p := range r.store.parts {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePartRepo) GetForUpdate(ctx context.Context, id string) (*entity.Part, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePartRepo) Update(ctx context.Context, part *entity.Part) error {
	r.store.parts[part.ID] = part
	return nil
}

func (r *fakePartRepo) UpdateStockQuantity(ctx context.Context, id string, quantity int) error {
	if p, ok := r.store.parts[id]; ok {
		p.StockQuantity = quantity
	}
	return nil
}

func (r *fakePartRepo) List(ctx context.Context, onlyActive bool, limit, offset int) ([]*entity.Part, error) {
	var out []*entity.Part
	for _, p := range r.store.parts {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *fakePartRepo) ListBelowMinStock(ctx context.Context) ([]*entity.Part, error) {
	var out []*entity.Part
	for _, p := range r.store.parts {
		if p.IsActive && p.BelowMinStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePartRepo) HasHistory(ctx context.Context, id string) (bool, error) {
	for _, m := range r.store.movements {
		if m.PartID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePartRepo) SoftDelete(ctx context.Context, id string) error {
	if p, ok := r.store.parts[id]; ok {
		p.IsActive = false
	}
	return nil
}

func (r *fakePartRepo) HardDelete(ctx context.Context, id string) error {
	delete(r.store.parts, id)
	return nil
}

type fakeMovementRepo struct {
	store *fakeStore
}

func (r *fakeMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	cp := *m
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *fakeMovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	for _, m := range r.store.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (r *fakeMovementRepo) ListByPart(ctx context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		m := r.store.movements[i]
		if m.PartID != partID {
			continue
		}
		if from != nil && m.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && m.CreatedAt.After(*to) {
			continue
		}
		out = append(out, m)
	}
	if offset < len(out) {
		out = out[offset:]
	} else {
		out = nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
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

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func newLedger(t *testing.T, store *fakeStore) *stock.LedgerUseCase {
	t.Helper()
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	return stock.NewLedgerUseCase(
		&fakeTxRunner{store: store},
		&fakePartRepo{store: store},
		&fakeMovementRepo{store: store},
		log,
	)
}

func seedPart(store *fakeStore, id, usageType string, balance int) *entity.Part {
	p := &entity.Part{
		ID:            id,
		SKU:           "SKU-" + id,
		Name:          "Repuesto " + id,
		UsageType:     usageType,
		StockQuantity: balance,
		IsActive:      true,
	}
	store.parts[id] = p
	return p
}

func movement(partID, movType, stockType string, qty int) stock.MovementInput {
	return stock.MovementInput{
		PartID:    partID,
		Type:      movType,
		Quantity:  qty,
		StockType: stockType,
		Reason:    entity.ReasonManualAdjustment,
		UserID:    "user-1",
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ApplyMovement
// ──────────────────────────────────────────────────────────────────────────────

func TestApplyMovement_EntradaSumaSaldo(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 0)
	uc := newLedger(t, store)

	res, err := uc.ApplyMovement(context.Background(), movement("p1", entity.MovementTypeIN, entity.StockTypeService, 10))
	require.NoError(t, err)

	assert.Equal(t, 10, res.NewBalance)
	assert.NotEmpty(t, res.MovementID)
	assert.Equal(t, 10, store.parts["p1"].StockQuantity)
	assert.Len(t, store.movements, 1)
}

func TestApplyMovement_SalidaRestaSaldo(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 10)
	uc := newLedger(t, store)

	res, err := uc.ApplyMovement(context.Background(), movement("p1", entity.MovementTypeOUT, entity.StockTypeSales, 4))
	require.NoError(t, err)

	assert.Equal(t, 6, res.NewBalance)
}

func TestApplyMovement_SobregiroRechazadoSinEscritura(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 3)
	uc := newLedger(t, store)

	_, err := uc.ApplyMovement(context.Background(), movement("p1", entity.MovementTypeOUT, entity.StockTypeSales, 5))

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 5, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Available)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Sin escritura: ni movimiento ni cambio de saldo.
	assert.Equal(t, 3, store.parts["p1"].StockQuantity)
	assert.Empty(t, store.movements)
}

func TestApplyMovement_SalidaExactaDejaCero(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 5)
	uc := newLedger(t, store)

	res, err := uc.ApplyMovement(context.Background(), movement("p1", entity.MovementTypeOUT, entity.StockTypeSales, 5))
	require.NoError(t, err)
	assert.Equal(t, 0, res.NewBalance)
}

func TestApplyMovement_RepuestoInexistente(t *testing.T) {
	store := newFakeStore()
	uc := newLedger(t, store)

	_, err := uc.ApplyMovement(context.Background(), movement("nope", entity.MovementTypeIN, entity.StockTypeSales, 1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApplyMovement_RepuestoInactivo(t *testing.T) {
	store := newFakeStore()
	p := seedPart(store, "p1", entity.UsageTypeBoth, 10)
	p.IsActive = false
	uc := newLedger(t, store)

	_, err := uc.ApplyMovement(context.Background(), movement("p1", entity.MovementTypeIN, entity.StockTypeSales, 1))
	assert.ErrorIs(t, err, domain.ErrPolicyViolation)
}

// Segregación por uso: un repuesto SALE no admite movimientos SERVICE y viceversa.
func TestApplyMovement_SegregacionPorUso(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "venta", entity.UsageTypeSale, 10)
	seedPart(store, "taller", entity.UsageTypeService, 10)
	seedPart(store, "ambos", entity.UsageTypeBoth, 10)
	uc := newLedger(t, store)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, movement("venta", entity.MovementTypeOUT, entity.StockTypeService, 1))
	assert.ErrorIs(t, err, domain.ErrPolicyViolation, "SALE no admite SERVICE")

	_, err = uc.ApplyMovement(ctx, movement("taller", entity.MovementTypeOUT, entity.StockTypeSales, 1))
	assert.ErrorIs(t, err, domain.ErrPolicyViolation, "SERVICE no admite SALES")

	_, err = uc.ApplyMovement(ctx, movement("ambos", entity.MovementTypeOUT, entity.StockTypeSales, 1))
	assert.NoError(t, err, "BOTH admite SALES")
	_, err = uc.ApplyMovement(ctx, movement("ambos", entity.MovementTypeOUT, entity.StockTypeService, 1))
	assert.NoError(t, err, "BOTH admite SERVICE")
}

func TestApplyMovement_ValidacionDeEntrada(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 10)
	uc := newLedger(t, store)
	ctx := context.Background()

	casos := []stock.MovementInput{
		{},
		movement("", entity.MovementTypeIN, entity.StockTypeSales, 1),          // sin part
		movement("p1", "TRANSFER", entity.StockTypeSales, 1),                   // tipo desconocido
		movement("p1", entity.MovementTypeIN, "GLOBAL", 1),                     // stock type desconocido
		movement("p1", entity.MovementTypeIN, entity.StockTypeSales, 0),        // cantidad cero
		movement("p1", entity.MovementTypeIN, entity.StockTypeSales, -3),       // cantidad negativa
		{PartID: "p1", Type: entity.MovementTypeIN, Quantity: 1, StockType: entity.StockTypeSales, UserID: "u"}, // sin reason
	}
	for _, in := range casos {
		_, err := uc.ApplyMovement(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "input %+v debe rechazarse", in)
	}

	neg := decimal.NewFromInt(-1)
	in := movement("p1", entity.MovementTypeIN, entity.StockTypeSales, 1)
	in.UnitCost = &neg
	_, err := uc.ApplyMovement(ctx, in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "costo negativo debe rechazarse")
}

// Dos salidas concurrentes que juntas sobregirarían el saldo: exactamente una
// confirma. El lock del store emula la serialización de SELECT FOR UPDATE.
func TestApplyMovement_CarreraDosSalidas(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 5)
	uc := newLedger(t, store)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.ApplyMovement(context.Background(), movement("p1", entity.MovementTypeOUT, entity.StockTypeSales, 4))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	oks, fails := 0, 0
	for err := range errs {
		if err == nil {
			oks++
		} else {
			assert.ErrorIs(t, err, domain.ErrInsufficientStock)
			fails++
		}
	}
	assert.Equal(t, 1, oks, "exactamente una salida debe confirmar")
	assert.Equal(t, 1, fails, "la otra debe fallar por stock insuficiente")
	assert.Equal(t, 1, store.parts["p1"].StockQuantity)
	assert.Len(t, store.movements, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consistencia libro/saldo
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_SaldoSiempreIgualASumaFirmada(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 0)
	uc := newLedger(t, store)
	ctx := context.Background()

	secuencia := []struct {
		movType string
		qty     int
	}{
		{entity.MovementTypeIN, 10},
		{entity.MovementTypeOUT, 3},
		{entity.MovementTypeIN, 5},
		{entity.MovementTypeOUT, 2},
		{entity.MovementTypeOUT, 1},
	}
	for _, s := range secuencia {
		_, err := uc.ApplyMovement(ctx, movement("p1", s.movType, entity.StockTypeSales, s.qty))
		require.NoError(t, err)
	}

	rec, err := uc.Reconcile(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Equal(t, 10-3+5-2-1, rec.Balance)
	assert.Equal(t, rec.Balance, rec.LedgerSum)
	assert.Equal(t, store.parts["p1"].StockQuantity, rec.LedgerSum)
}

func TestReconcile_DetectaInconsistencia(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 0)
	uc := newLedger(t, store)
	ctx := context.Background()

	_, err := uc.ApplyMovement(ctx, movement("p1", entity.MovementTypeIN, entity.StockTypeSales, 10))
	require.NoError(t, err)

	// Escritura por fuera del libro: el saldo queda desalineado.
	store.parts["p1"].StockQuantity = 7

	rec, err := uc.Reconcile(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, rec.Consistent)
	assert.Equal(t, 7, rec.Balance)
	assert.Equal(t, 10, rec.LedgerSum)
}

func TestReconcile_RepuestoInexistente(t *testing.T) {
	store := newFakeStore()
	uc := newLedger(t, store)

	_, err := uc.Reconcile(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// GetHistory
// ──────────────────────────────────────────────────────────────────────────────

func TestGetHistory_OrdenInversoYPaginacion(t *testing.T) {
	store := newFakeStore()
	seedPart(store, "p1", entity.UsageTypeBoth, 0)
	uc := newLedger(t, store)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := uc.ApplyMovement(ctx, movement("p1", entity.MovementTypeIN, entity.StockTypeSales, i+1))
		require.NoError(t, err)
	}

	page, err := uc.GetHistory(ctx, "p1", nil, nil, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	// El más reciente primero (el último insertado tiene cantidad 5).
	assert.Equal(t, 5, page[0].Quantity)
	assert.Equal(t, 4, page[1].Quantity)

	rest, err := uc.GetHistory(ctx, "p1", nil, nil, 10, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestGetHistory_RepuestoInexistente(t *testing.T) {
	store := newFakeStore()
	uc := newLedger(t, store)

	_, err := uc.GetHistory(context.Background(), "nope", nil, nil, 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
