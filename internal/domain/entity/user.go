package entity

import "time"

// Roles de la aplicación. El rol viaja en el claim JWT y decide qué transiciones
// y rutas puede ejecutar el usuario.
const (
	RoleAdmin        = "ADMIN"
	RoleBackoffice   = "BACKOFFICE"
	RoleTechInternal = "TECH_INTERNAL"
	RoleTechField    = "TECH_FIELD"
)

// User usuario del sistema (staff, backoffice o técnico).
type User struct {
	ID           string
	Name         string
	Email        string // único
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidRole indica si el rol es uno de los reconocidos.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleBackoffice, RoleTechInternal, RoleTechField:
		return true
	}
	return false
}
