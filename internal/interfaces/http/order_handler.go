package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/application/orders"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
)

// OrderHandler maneja las peticiones HTTP de órdenes de servicio (protegido).
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

func actorFrom(c *fiber.Ctx) orders.Actor {
	return orders.Actor{ID: GetUserID(c), Role: GetRole(c)}
}

// Create godoc
// @Summary      Crear orden de servicio
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "client_id, reported_defect, priority, type"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := in.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "client_id y reported_defect son requeridos"})
	}
	order, err := h.uc.Create(c.Context(), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToOrderResponse(order, nil))
}

// GetByID godoc
// @Summary      Obtener orden con sus líneas
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	order, items, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order, items))
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "Filtro por estado"
// @Param        client_id      query  string  false  "Filtro por cliente"
// @Param        technician_id  query  string  false  "Filtro por técnico"
// @Param        limit          query  int     false  "Límite"  default(20)
// @Param        offset         query  int     false  "Offset"  default(0)
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	filter := repository.OrderFilter{
		Status:       workflow.Status(c.Query("status")),
		ClientID:     c.Query("client_id"),
		TechnicianID: c.Query("technician_id"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	}
	list, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.OrderResponse, 0, len(list))
	for _, o := range list {
		out = append(out, dto.ToOrderResponse(o, nil))
	}
	return c.JSON(out)
}

// Transition godoc
// @Summary      Cambiar estado de una orden
// @Description  Aplica una transición del flujo de trabajo. La legalidad la decide
//
//	la tabla de adyacencia y el rol del actor; al cancelar puede pedirse la
//	reposición explícita de repuestos consumidos (restock_parts).
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.TransitionRequest  true  "target y restock_parts opcional"
// @Success      200   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := in.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "target es requerido"})
	}
	order, err := h.uc.Transition(c.Context(), c.Params("id"), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order, nil))
}

// AddItem godoc
// @Summary      Agregar línea a una orden
// @Description  Exactamente uno de part_id/service_id. Las líneas de repuesto
//
//	descuentan stock SERVICE en la misma transacción; sin stock suficiente la
//	línea no se crea.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.AddItemRequest  true  "part_id o service_id, quantity, unit_price opcional"
// @Success      201   {object}  dto.OrderItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items [post]
func (h *OrderHandler) AddItem(c *fiber.Ctx) error {
	var in dto.AddItemRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := in.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity positiva y exactamente uno de part_id/service_id"})
	}
	item, err := h.uc.AddItem(c.Context(), c.Params("id"), actorFrom(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToOrderItemResponse(item))
}

// RemoveItem godoc
// @Summary      Quitar línea de una orden
// @Description  Las líneas de repuesto generan un movimiento IN compensatorio
//
//	(ORDER_RETURN) en la misma transacción.
//
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID de la orden"
// @Param        itemId   path  string  true  "ID de la línea"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/items/{itemId} [delete]
func (h *OrderHandler) RemoveItem(c *fiber.Ctx) error {
	if err := h.uc.RemoveItem(c.Context(), c.Params("id"), c.Params("itemId"), actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "línea eliminada"})
}

// RecomputeTotals godoc
// @Summary      Recalcular totales de una orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/recompute-totals [post]
func (h *OrderHandler) RecomputeTotals(c *fiber.Ctx) error {
	order, err := h.uc.RecomputeTotals(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order, nil))
}
