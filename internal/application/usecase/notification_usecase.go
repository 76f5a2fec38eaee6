package usecase

import (
	"context"

	"github.com/tu-usuario/servitec-api/internal/domain"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
)

// NotificationUseCase consulta y marcado de notificaciones internas.
type NotificationUseCase struct {
	repo repository.NotificationRepository
}

// NewNotificationUseCase construye el caso de uso.
func NewNotificationUseCase(repo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{repo: repo}
}

// List lista las notificaciones visibles para un usuario (propias + globales).
func (uc *NotificationUseCase) List(ctx context.Context, userID string, onlyUnread bool, limit, offset int) ([]*entity.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	return uc.repo.ListByUser(ctx, userID, onlyUnread, limit, offset)
}

// MarkRead marca una notificación como leída.
func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	return uc.repo.MarkRead(ctx, id)
}
