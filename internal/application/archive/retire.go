package archive

import (
	"context"

	"github.com/tu-usuario/servitec-api/pkg/logger"
)

// Archivable contrato mínimo para retirar una entidad: si tiene historial
// referenciado (movimientos, órdenes, equipos) se desactiva; si no, se borra.
type Archivable interface {
	HasHistory(ctx context.Context, id string) (bool, error)
	SoftDelete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
}

// Outcome resultado de un retiro.
type Outcome string

const (
	OutcomeArchived Outcome = "ARCHIVED" // soft delete, historial preservado
	OutcomeDeleted  Outcome = "DELETED"  // borrado físico, sin historial
)

// Archiver decide entre soft y hard delete de forma genérica, para no duplicar
// la regla por cada tipo de entidad.
type Archiver struct {
	log *logger.Logger
}

// NewArchiver construye el archiver.
func NewArchiver(log *logger.Logger) *Archiver {
	return &Archiver{log: log.Component("archive")}
}

// Retire retira la entidad: soft delete si tiene historial (una entidad retirada
// jamás puede dejar huérfana una fila del libro de movimientos), borrado físico
// si no lo tiene.
func (a *Archiver) Retire(ctx context.Context, repo Archivable, kind, id string) (Outcome, error) {
	hasHistory, err := repo.HasHistory(ctx, id)
	if err != nil {
		return "", err
	}
	if hasHistory {
		if err := repo.SoftDelete(ctx, id); err != nil {
			return "", err
		}
		a.log.Info().Str("kind", kind).Str("id", id).Msg("entidad archivada (historial preservado)")
		return OutcomeArchived, nil
	}
	if err := repo.HardDelete(ctx, id); err != nil {
		return "", err
	}
	a.log.Info().Str("kind", kind).Str("id", id).Msg("entidad eliminada (sin historial)")
	return OutcomeDeleted, nil
}
