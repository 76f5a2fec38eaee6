package entity

import "time"

// Notification aviso interno generado por los trabajos periódicos
// (órdenes vencidas en aprobación, abandono de equipos, stock bajo).
type Notification struct {
	ID        string
	UserID    string // vacío = visible para todos los roles administrativos
	Title     string
	Message   string
	IsRead    bool
	CreatedAt time.Time
}
