package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tu-usuario/servitec-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// mapConflict traduce violaciones de unicidad a domain.ConflictError con el
// campo ofensor, para que la capa HTTP pueda señalarlo en la respuesta.
func mapConflict(err error, field string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return &domain.ConflictError{Field: field}
	}
	return err
}
