package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
	"github.com/tu-usuario/servitec-api/internal/application/usecase"
)

// NotificationHandler maneja las notificaciones internas (protegido).
type NotificationHandler struct {
	uc *usecase.NotificationUseCase
}

// NewNotificationHandler construye el handler.
func NewNotificationHandler(uc *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

// List godoc
// @Summary      Listar notificaciones del usuario
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        only_unread  query  bool  false  "Solo no leídas"  default(false)
// @Param        limit        query  int   false  "Límite"          default(20)
// @Param        offset       query  int   false  "Offset"          default(0)
// @Success      200  {array}  map[string]interface{}
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	list, err := h.uc.List(c.Context(), GetUserID(c), c.QueryBool("only_unread", false), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(list))
	for _, n := range list {
		out = append(out, fiber.Map{
			"id":         n.ID,
			"title":      n.Title,
			"message":    n.Message,
			"is_read":    n.IsRead,
			"created_at": n.CreatedAt,
		})
	}
	return c.JSON(out)
}

// MarkRead godoc
// @Summary      Marcar notificación como leída
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la notificación"
// @Success      200  {object}  map[string]string
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.uc.MarkRead(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "notificación leída"})
}
