package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// ExpirationScan trabajo periódico: detecta órdenes estancadas (aprobación vencida,
// equipos sin retirar) y genera notificaciones. Solo lee órdenes e inserta avisos,
// así que puede correr concurrente con el tráfico normal.
type ExpirationScan struct {
	orderRepo repository.ServiceOrderRepository
	notifRepo repository.NotificationRepository
	log       *logger.Logger

	ApprovalDeadline time.Duration // tiempo máximo en WAITING_APPROVAL
	AbandonDeadline  time.Duration // tiempo máximo esperando retiro/recolección
}

// NewExpirationScan construye el escaneo con los plazos dados.
func NewExpirationScan(
	orderRepo repository.ServiceOrderRepository,
	notifRepo repository.NotificationRepository,
	log *logger.Logger,
	approvalDeadline, abandonDeadline time.Duration,
) *ExpirationScan {
	return &ExpirationScan{
		orderRepo:        orderRepo,
		notifRepo:        notifRepo,
		log:              log.Component("jobs"),
		ApprovalDeadline: approvalDeadline,
		AbandonDeadline:  abandonDeadline,
	}
}

// Run ejecuta una pasada del escaneo. Devuelve cuántas notificaciones nuevas creó.
func (s *ExpirationScan) Run(ctx context.Context) (int, error) {
	now := time.Now()
	created := 0

	n, err := s.scan(ctx, workflow.StatusWaitingApproval, now.Add(-s.ApprovalDeadline),
		"Aprobación vencida", "La orden %s lleva demasiado tiempo esperando aprobación del cliente")
	if err != nil {
		return created, err
	}
	created += n

	for _, st := range []workflow.Status{workflow.StatusWaitingCollection, workflow.StatusWaitingPickup} {
		n, err := s.scan(ctx, st, now.Add(-s.AbandonDeadline),
			"Equipo sin retirar", "El equipo de la orden %s lleva demasiado tiempo sin ser retirado")
		if err != nil {
			return created, err
		}
		created += n
	}

	s.log.Info().Int("notifications", created).Msg("escaneo de vencimientos completado")
	return created, nil
}

// scan busca órdenes estancadas en un estado y notifica cada una, con chequeo de
// existencia previo para no duplicar avisos sin leer (dedup best-effort, el
// trabajo es informativo).
func (s *ExpirationScan) scan(ctx context.Context, status workflow.Status, cutoff time.Time, title, messageFmt string) (int, error) {
	stuck, err := s.orderRepo.ListStuckSince(ctx, status, cutoff)
	if err != nil {
		return 0, fmt.Errorf("listar órdenes estancadas en %s: %w", status, err)
	}
	created := 0
	for _, order := range stuck {
		message := fmt.Sprintf(messageFmt, order.Code)
		exists, err := s.notifRepo.ExistsUnread(ctx, "", title, message)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		n := &entity.Notification{
			ID:        uuid.New().String(),
			Title:     title,
			Message:   message,
			CreatedAt: time.Now(),
		}
		if err := s.notifRepo.Create(ctx, n); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// Start lanza el escaneo en un goroutine con el intervalo dado, hasta que el
// contexto se cancele. Un fallo de una pasada se registra y no detiene el ticker.
func (s *ExpirationScan) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					s.log.Error().Err(err).Msg("escaneo de vencimientos falló")
				}
			}
		}
	}()
}
