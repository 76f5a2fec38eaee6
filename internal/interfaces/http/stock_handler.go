package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/application/stock"
)

// StockHandler maneja el libro de movimientos de stock (protegido). Es la única
// ruta por la que se muta el saldo de un repuesto.
type StockHandler struct {
	ledger *stock.LedgerUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *stock.LedgerUseCase) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// ApplyMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  Ajuste manual, carga inicial o compra. El movimiento y la
//
//	actualización del saldo confirman en la misma transacción; una salida que
//	dejaría el saldo negativo se rechaza sin escribir nada.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del repuesto"
// @Param        body  body  dto.ApplyMovementRequest  true  "type (IN|OUT), quantity, stock_type (SALES|SERVICE), reason"
// @Success      201   {object}  dto.ApplyMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/movements [post]
func (h *StockHandler) ApplyMovement(c *fiber.Ctx) error {
	var in dto.ApplyMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	in.PartID = c.Params("id")
	if err := in.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "type, quantity positiva y stock_type son requeridos"})
	}
	result, err := h.ledger.ApplyMovement(c.Context(), stock.MovementInput{
		PartID:         in.PartID,
		Type:           in.Type,
		Quantity:       in.Quantity,
		StockType:      in.StockType,
		Reason:         in.Reason,
		UnitCost:       in.UnitCost,
		ServiceOrderID: in.ServiceOrderID,
		UserID:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ApplyMovementResponse{
		MovementID: result.MovementID,
		NewBalance: result.NewBalance,
	})
}

// GetHistory godoc
// @Summary      Historial de movimientos de un repuesto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del repuesto"
// @Param        from    query  string  false  "Fecha inicial (RFC3339)"
// @Param        to      query  string  false  "Fecha final (RFC3339)"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200     {array}  dto.MovementResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/movements [get]
func (h *StockHandler) GetHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)", Field: "from"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)", Field: "to"})
	}
	list, err := h.ledger.GetHistory(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.ToMovementResponse(m))
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar saldo contra el libro
// @Description  Contrasta el saldo corriente del repuesto contra la suma firmada
//
//	de sus movimientos. Herramienta de auditoría.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del repuesto"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/reconcile [get]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.ledger.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"part_id":    rec.PartID,
		"balance":    rec.Balance,
		"ledger_sum": rec.LedgerSum,
		"consistent": rec.Consistent,
	})
}

func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
