package dto

import (
	"time"

	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// CreateClientRequest alta de cliente.
type CreateClientRequest struct {
	Name     string `json:"name"`
	Document string `json:"document"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
}

// Validate valida el alta de cliente.
func (r *CreateClientRequest) Validate() error {
	if r.Name == "" || r.Document == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// UpdateClientRequest actualización parcial de cliente.
type UpdateClientRequest struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

// ClientResponse representación de un cliente.
type ClientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToClientResponse convierte la entidad al DTO de salida.
func ToClientResponse(c *entity.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Document:  c.Document,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
	}
}

// CreateEquipmentRequest alta de equipo de un cliente.
type CreateEquipmentRequest struct {
	ClientID    string `json:"client_id"`
	Serial      string `json:"serial"`
	Brand       string `json:"brand"`
	Model       string `json:"model"`
	Description string `json:"description"`
}

// Validate valida el alta de equipo.
func (r *CreateEquipmentRequest) Validate() error {
	if r.ClientID == "" || r.Serial == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// EquipmentResponse representación de un equipo.
type EquipmentResponse struct {
	ID          string    `json:"id"`
	ClientID    string    `json:"client_id"`
	Serial      string    `json:"serial"`
	Brand       string    `json:"brand,omitempty"`
	Model       string    `json:"model,omitempty"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToEquipmentResponse convierte la entidad al DTO de salida.
func ToEquipmentResponse(e *entity.Equipment) *EquipmentResponse {
	return &EquipmentResponse{
		ID:          e.ID,
		ClientID:    e.ClientID,
		Serial:      e.Serial,
		Brand:       e.Brand,
		Model:       e.Model,
		Description: e.Description,
		IsActive:    e.IsActive,
		CreatedAt:   e.CreatedAt,
	}
}
