package entity

import "time"

// Client cliente dueño de equipos y órdenes de servicio.
type Client struct {
	ID        string
	Name      string
	Document  string // NIT/cédula, único
	Phone     string
	Email     string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
