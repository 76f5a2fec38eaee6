package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/servitec-api/internal/application/auth"
	"github.com/tu-usuario/servitec-api/internal/application/dto"
)

// AuthHandler maneja registro, login y consulta de técnicos.
type AuthHandler struct {
	uc *auth.AuthUseCase
}

// NewAuthHandler construye el handler.
func NewAuthHandler(uc *auth.AuthUseCase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

// Register godoc
// @Summary      Registrar usuario
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterRequest  true  "name, email, password (min 8), role"
// @Success      201   {object}  dto.AuthResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := in.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name, email, password (min 8) y role son requeridos"})
	}
	out, err := h.uc.Register(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email y password"
// @Success      200   {object}  dto.AuthResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListTechnicians godoc
// @Summary      Listar técnicos activos
// @Tags         auth
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  map[string]string
// @Router       /api/users/technicians [get]
func (h *AuthHandler) ListTechnicians(c *fiber.Ctx) error {
	list, err := h.uc.ListTechnicians(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]fiber.Map, 0, len(list))
	for _, u := range list {
		out = append(out, fiber.Map{"id": u.ID, "name": u.Name, "email": u.Email, "role": u.Role})
	}
	return c.JSON(out)
}
