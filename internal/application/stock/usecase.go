package stock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// LedgerUseCase única autoridad para mutar el saldo de un repuesto. Cada cambio
// queda registrado como un movimiento inmutable, en la misma transacción que la
// actualización del saldo, con bloqueo de fila (SELECT FOR UPDATE).
type LedgerUseCase struct {
	txRunner TxRunner
	partRepo repository.PartRepository
	movRepo  repository.StockMovementRepository
	log      *logger.Logger
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	partRepo repository.PartRepository,
	movRepo repository.StockMovementRepository,
	log *logger.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner: txRunner,
		partRepo: partRepo,
		movRepo:  movRepo,
		log:      log.Component("stock"),
	}
}

// MovementInput comando tipado para registrar un movimiento.
type MovementInput struct {
	PartID         string
	Type           string // IN, OUT
	Quantity       int    // positivo
	StockType      string // SALES, SERVICE
	Reason         string
	UnitCost       *decimal.Decimal
	ServiceOrderID string
	UserID         string
}

// MovementResult saldo resultante e identificador del movimiento creado.
type MovementResult struct {
	MovementID string
	NewBalance int
}

// ApplyMovement registra un movimiento y actualiza el saldo del repuesto en una
// sola transacción. La fila del repuesto se bloquea antes de leer el saldo: de dos
// salidas concurrentes que juntas dejarían el saldo negativo, solo una confirma.
//
// Fallos esperados: ErrNotFound (repuesto inexistente), ErrPolicyViolation
// (segregación por uso), InsufficientStockError (saldo insuficiente, sin escritura).
func (uc *LedgerUseCase) ApplyMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		partRepo repository.PartRepository,
	) error {
		res, err := applyMovementLocked(ctx, movRepo, partRepo, input, time.Now())
		if err != nil {
			return err
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("part_id", input.PartID).
		Str("type", input.Type).
		Int("quantity", input.Quantity).
		Int("new_balance", result.NewBalance).
		Str("reason", input.Reason).
		Str("user_id", input.UserID).
		Msg("movimiento de stock registrado")
	return result, nil
}

// ApplyMovementInTx registra un movimiento usando repositorios ya atados a la
// transacción del caller (órdenes de servicio: consumo y devolución de repuestos).
func (uc *LedgerUseCase) ApplyMovementInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	partRepo repository.PartRepository,
	input MovementInput,
) (*MovementResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return applyMovementLocked(ctx, movRepo, partRepo, input, time.Now())
}

// applyMovementLocked hace el trabajo con la fila del repuesto bloqueada:
// verifica segregación por uso, calcula el nuevo saldo, rechaza sobregiros y
// persiste movimiento + saldo.
func applyMovementLocked(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	partRepo repository.PartRepository,
	input MovementInput,
	now time.Time,
) (*MovementResult, error) {
	part, err := partRepo.GetForUpdate(ctx, input.PartID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	if !part.IsActive {
		return nil, &domain.PolicyError{Reason: "el repuesto está inactivo"}
	}
	if !part.AcceptsStockType(input.StockType) {
		return nil, &domain.PolicyError{
			Reason: "el uso " + part.UsageType + " del repuesto no admite movimientos " + input.StockType,
		}
	}

	newBalance := part.StockQuantity
	switch input.Type {
	case entity.MovementTypeIN:
		newBalance += input.Quantity
	case entity.MovementTypeOUT:
		if input.Quantity > part.StockQuantity {
			return nil, &domain.InsufficientStockError{
				PartID:    part.ID,
				Requested: input.Quantity,
				Available: part.StockQuantity,
			}
		}
		newBalance -= input.Quantity
	}

	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		PartID:         input.PartID,
		Type:           input.Type,
		Quantity:       input.Quantity,
		StockType:      input.StockType,
		Reason:         input.Reason,
		UnitCost:       input.UnitCost,
		ServiceOrderID: input.ServiceOrderID,
		UserID:         input.UserID,
		CreatedAt:      now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	if err := partRepo.UpdateStockQuantity(ctx, part.ID, newBalance); err != nil {
		return nil, err
	}
	return &MovementResult{MovementID: mov.ID, NewBalance: newBalance}, nil
}

// GetHistory devuelve los movimientos del repuesto en orden cronológico inverso.
// Solo lectura, sin efectos.
func (uc *LedgerUseCase) GetHistory(ctx context.Context, partID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	part, err := uc.partRepo.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	if limit <= 0 {
		limit = 50
	}
	return uc.movRepo.ListByPart(ctx, partID, from, to, limit, offset)
}

// Reconciliation resultado de contrastar el saldo corriente contra el libro.
type Reconciliation struct {
	PartID     string
	Balance    int  // saldo corriente en la fila del repuesto
	LedgerSum  int  // Σ(IN) − Σ(OUT) de los movimientos
	Consistent bool // Balance == LedgerSum
}

// Reconcile contrasta el saldo del repuesto contra la suma firmada de su libro.
// Herramienta de auditoría: una discrepancia indica una escritura por fuera del
// caso de uso y debe investigarse.
func (uc *LedgerUseCase) Reconcile(ctx context.Context, partID string) (*Reconciliation, error) {
	part, err := uc.partRepo.GetByID(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	sum, err := uc.movRepo.SignedSum(ctx, partID)
	if err != nil {
		return nil, err
	}
	rec := &Reconciliation{
		PartID:     partID,
		Balance:    part.StockQuantity,
		LedgerSum:  sum,
		Consistent: part.StockQuantity == sum,
	}
	if !rec.Consistent {
		uc.log.Warn().
			Str("part_id", partID).
			Int("balance", rec.Balance).
			Int("ledger_sum", rec.LedgerSum).
			Msg("saldo de stock inconsistente con el libro de movimientos")
	}
	return rec, nil
}

func validateInput(input MovementInput) error {
	if input.PartID == "" || input.Quantity <= 0 || input.UserID == "" {
		return domain.ErrInvalidInput
	}
	if input.Type != entity.MovementTypeIN && input.Type != entity.MovementTypeOUT {
		return domain.ErrInvalidInput
	}
	if input.StockType != entity.StockTypeSales && input.StockType != entity.StockTypeService {
		return domain.ErrInvalidInput
	}
	if input.Reason == "" {
		return domain.ErrInvalidInput
	}
	if input.UnitCost != nil && input.UnitCost.IsNegative() {
		return domain.ErrInvalidInput
	}
	return nil
}
