package dto

import (
	"strings"

	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// RegisterRequest alta de usuario.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Validate valida el alta de usuario.
func (r *RegisterRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Name == "" || r.Email == "" || !strings.Contains(r.Email, "@") {
		return domain.ErrInvalidInput
	}
	if len(r.Password) < 8 {
		return domain.ErrInvalidInput
	}
	if !entity.ValidRole(r.Role) {
		return domain.ErrInvalidInput
	}
	return nil
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse token emitido tras registro o login.
type AuthResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
}
