package entity

import "time"

// Equipment equipo de un cliente sobre el que se abren órdenes de servicio.
type Equipment struct {
	ID          string
	ClientID    string
	Serial      string
	Brand       string
	Model       string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
