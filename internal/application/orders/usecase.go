package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/application/stock"
	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/authz"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// Actor usuario que ejecuta la operación (del claim JWT).
type Actor struct {
	ID   string
	Role string
}

// UseCase orquesta el ciclo de vida de las órdenes de servicio: intake,
// transiciones de estado (gate de roles + máquina de estados), líneas de
// consumo con su efecto en el libro de stock, y totales derivados.
type UseCase struct {
	txRunner    TxRunner
	orderRepo   repository.ServiceOrderRepository
	itemRepo    repository.OrderItemRepository
	clientRepo  repository.ClientRepository
	equipRepo   repository.EquipmentRepository
	partRepo    repository.PartRepository
	catalogRepo repository.CatalogServiceRepository
	ledger      *stock.LedgerUseCase
	gate        *authz.Gate
	machine     *workflow.Machine
	log         *logger.Logger
}

// NewUseCase construye el caso de uso de órdenes.
func NewUseCase(
	txRunner TxRunner,
	orderRepo repository.ServiceOrderRepository,
	itemRepo repository.OrderItemRepository,
	clientRepo repository.ClientRepository,
	equipRepo repository.EquipmentRepository,
	partRepo repository.PartRepository,
	catalogRepo repository.CatalogServiceRepository,
	ledger *stock.LedgerUseCase,
	gate *authz.Gate,
	machine *workflow.Machine,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		clientRepo:  clientRepo,
		equipRepo:   equipRepo,
		partRepo:    partRepo,
		catalogRepo: catalogRepo,
		ledger:      ledger,
		gate:        gate,
		machine:     machine,
		log:         log.Component("orders"),
	}
}

// Create registra una orden nueva en estado OPEN con código consecutivo generado.
func (uc *UseCase) Create(ctx context.Context, actor Actor, in dto.CreateOrderRequest) (*entity.ServiceOrder, error) {
	client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.IsActive {
		return nil, domain.ErrNotFound
	}
	if in.EquipmentID != "" {
		eq, err := uc.equipRepo.GetByID(ctx, in.EquipmentID)
		if err != nil {
			return nil, err
		}
		if eq == nil {
			return nil, domain.ErrNotFound
		}
		if eq.ClientID != in.ClientID {
			return nil, &domain.PolicyError{Reason: "el equipo no pertenece al cliente"}
		}
	}

	code, err := uc.orderRepo.NextCode(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	order := &entity.ServiceOrder{
		ID:             uuid.New().String(),
		Code:           code,
		Status:         workflow.StatusInitial,
		Priority:       in.Priority,
		Type:           in.Type,
		ClientID:       in.ClientID,
		EquipmentID:    in.EquipmentID,
		TechnicianID:   in.TechnicianID,
		ReportedDefect: in.ReportedDefect,
		ScheduledAt:    in.ScheduledAt,
		Total:          decimal.Zero,
		TotalParts:     decimal.Zero,
		TotalServices:  decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("order_id", order.ID).
		Str("code", order.Code).
		Str("client_id", order.ClientID).
		Str("user_id", actor.ID).
		Msg("orden de servicio creada")
	return order, nil
}

// Get devuelve la orden con sus líneas.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.ServiceOrder, []*entity.ServiceOrderItem, error) {
	order, err := uc.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if order == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.itemRepo.ListByOrder(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return order, items, nil
}

// List lista órdenes según filtro.
func (uc *UseCase) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.ServiceOrder, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return uc.orderRepo.List(ctx, filter)
}

// Transition cambia el estado de la orden. Orden de validación: existencia,
// legalidad (máquina de estados), permiso del actor (gate). Efectos por destino:
//   - FINISHED: congela totales y fija finishedAt.
//   - FINISHED -> OPEN (reabrir): limpia finishedAt.
//   - CANCELED con RestockParts: movimiento IN compensatorio (ORDER_RETURN) por
//     cada línea de repuesto, en la misma transacción del cambio de estado.
//
// Todo ocurre en una sola transacción; si el libro de stock falla, el cambio de
// estado se revierte.
func (uc *UseCase) Transition(ctx context.Context, orderID string, actor Actor, in dto.TransitionRequest) (*entity.ServiceOrder, error) {
	target := workflow.Status(in.Target)
	if !uc.machine.Known(target) {
		return nil, domain.ErrIllegalTransition
	}

	var updated *entity.ServiceOrder
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.ServiceOrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
		partRepo repository.PartRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		from := order.Status
		if err := uc.machine.Transition(from, target); err != nil {
			return err
		}
		if !uc.gate.AllowTransition(actor.Role, from, target) {
			uc.log.Warn().
				Str("order_id", orderID).
				Str("user_id", actor.ID).
				Str("role", actor.Role).
				Str("from", string(from)).
				Str("to", string(target)).
				Msg("transición denegada por rol")
			return domain.ErrForbidden
		}

		now := time.Now()
		items, err := itemRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}

		switch target {
		case workflow.StatusFinished:
			applyTotals(order, items)
			order.FinishedAt = &now
		case workflow.StatusOpen:
			if from == workflow.StatusFinished {
				order.FinishedAt = nil
			}
		case workflow.StatusCanceled:
			if in.RestockParts {
				if err := uc.restockParts(ctx, movRepo, partRepo, order, items, actor); err != nil {
					return err
				}
			}
		}

		order.Status = target
		order.UpdatedAt = now
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		updated = order

		uc.log.Info().
			Str("order_id", orderID).
			Str("code", order.Code).
			Str("from", string(from)).
			Str("to", string(target)).
			Str("user_id", actor.ID).
			Msg("transición de orden aplicada")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// restockParts genera un movimiento IN por cada línea de repuesto de la orden.
// La devolución queda en el libro con motivo ORDER_RETURN: nunca se restaura
// stock sin rastro.
func (uc *UseCase) restockParts(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	partRepo repository.PartRepository,
	order *entity.ServiceOrder,
	items []*entity.ServiceOrderItem,
	actor Actor,
) error {
	for _, it := range items {
		if it.Kind != entity.ItemKindPart {
			continue
		}
		_, err := uc.ledger.ApplyMovementInTx(ctx, movRepo, partRepo, stock.MovementInput{
			PartID:         it.PartID,
			Type:           entity.MovementTypeIN,
			Quantity:       it.Quantity,
			StockType:      entity.StockTypeService,
			Reason:         entity.ReasonOrderReturn,
			ServiceOrderID: order.ID,
			UserID:         actor.ID,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// AddItem agrega una línea a la orden. Las líneas de repuesto descuentan stock
// (OUT, SERVICE, ORDER_CONSUMPTION) en la misma transacción que la línea y los
// totales; si no hay saldo, nada se escribe.
func (uc *UseCase) AddItem(ctx context.Context, orderID string, actor Actor, in dto.AddItemRequest) (*entity.ServiceOrderItem, error) {
	var created *entity.ServiceOrderItem
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.ServiceOrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
		partRepo repository.PartRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.ItemsMutable() {
			return &domain.PolicyError{Reason: "la orden en estado " + string(order.Status) + " no admite cambios de líneas"}
		}

		now := time.Now()
		item := &entity.ServiceOrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			Quantity:  in.Quantity,
			CreatedAt: now,
		}

		if in.PartID != "" {
			part, err := partRepo.GetByID(ctx, in.PartID)
			if err != nil {
				return err
			}
			if part == nil {
				return domain.ErrNotFound
			}
			item.Kind = entity.ItemKindPart
			item.PartID = part.ID
			item.Description = part.Name
			item.UnitPrice = part.UnitPrice
			if in.UnitPrice != nil {
				item.UnitPrice = *in.UnitPrice
			}
			// Descuento de stock: misma transacción que la línea y los totales.
			if _, err := uc.ledger.ApplyMovementInTx(ctx, movRepo, partRepo, stock.MovementInput{
				PartID:         part.ID,
				Type:           entity.MovementTypeOUT,
				Quantity:       in.Quantity,
				StockType:      entity.StockTypeService,
				Reason:         entity.ReasonOrderConsumption,
				ServiceOrderID: orderID,
				UserID:         actor.ID,
			}); err != nil {
				return err
			}
		} else {
			svc, err := uc.catalogRepo.GetByID(ctx, in.ServiceID)
			if err != nil {
				return err
			}
			if svc == nil || !svc.IsActive {
				return domain.ErrNotFound
			}
			item.Kind = entity.ItemKindService
			item.ServiceID = svc.ID
			item.Description = svc.Name
			item.UnitPrice = svc.Price
			if in.UnitPrice != nil {
				item.UnitPrice = *in.UnitPrice
			}
		}

		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		items, err := itemRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		applyTotals(order, items)
		order.UpdatedAt = now
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RemoveItem elimina una línea. Si era un repuesto, devuelve el stock con un
// movimiento IN compensatorio (ORDER_RETURN) en la misma transacción.
func (uc *UseCase) RemoveItem(ctx context.Context, orderID, itemID string, actor Actor) error {
	return uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.ServiceOrderRepository,
		itemRepo repository.OrderItemRepository,
		movRepo repository.StockMovementRepository,
		partRepo repository.PartRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		if !order.ItemsMutable() {
			return &domain.PolicyError{Reason: "la orden en estado " + string(order.Status) + " no admite cambios de líneas"}
		}
		item, err := itemRepo.GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil || item.OrderID != orderID {
			return domain.ErrNotFound
		}

		if item.Kind == entity.ItemKindPart {
			if _, err := uc.ledger.ApplyMovementInTx(ctx, movRepo, partRepo, stock.MovementInput{
				PartID:         item.PartID,
				Type:           entity.MovementTypeIN,
				Quantity:       item.Quantity,
				StockType:      entity.StockTypeService,
				Reason:         entity.ReasonOrderReturn,
				ServiceOrderID: orderID,
				UserID:         actor.ID,
			}); err != nil {
				return err
			}
		}

		if err := itemRepo.Delete(ctx, itemID); err != nil {
			return err
		}
		items, err := itemRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		applyTotals(order, items)
		order.UpdatedAt = time.Now()
		return orderRepo.Update(ctx, order)
	})
}

// RecomputeTotals recalcula y persiste los totales de la orden desde sus líneas.
// Determinista e idempotente: dos llamadas sobre el mismo conjunto de líneas
// producen los mismos totales.
func (uc *UseCase) RecomputeTotals(ctx context.Context, orderID string) (*entity.ServiceOrder, error) {
	var updated *entity.ServiceOrder
	err := uc.txRunner.RunOrder(ctx, func(
		orderRepo repository.ServiceOrderRepository,
		itemRepo repository.OrderItemRepository,
		_ repository.StockMovementRepository,
		_ repository.PartRepository,
	) error {
		order, err := orderRepo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrNotFound
		}
		items, err := itemRepo.ListByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		applyTotals(order, items)
		order.UpdatedAt = time.Now()
		if err := orderRepo.Update(ctx, order); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyTotals recalcula totalParts, totalServices y total desde las líneas.
func applyTotals(order *entity.ServiceOrder, items []*entity.ServiceOrderItem) {
	parts := decimal.Zero
	services := decimal.Zero
	for _, it := range items {
		switch it.Kind {
		case entity.ItemKindPart:
			parts = parts.Add(it.Subtotal())
		case entity.ItemKindService:
			services = services.Add(it.Subtotal())
		}
	}
	order.TotalParts = parts
	order.TotalServices = services
	order.Total = parts.Add(services)
}
