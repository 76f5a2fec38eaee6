package repository

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain/entity"
)

// NotificationRepository puerto de persistencia para notificaciones internas.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	// ExistsUnread indica si ya hay una notificación sin leer con el mismo contenido
	// (dedup best-effort del escaneo periódico).
	ExistsUnread(ctx context.Context, userID, title, message string) (bool, error)
	ListByUser(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
}
