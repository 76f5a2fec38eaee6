package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/repository"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
)

var _ repository.ServiceOrderRepository = (*ServiceOrderRepo)(nil)

const orderColumns = `id, code, status, priority, type, client_id, equipment_id,
	technician_id, reported_defect, diagnosis, scheduled_at, finished_at,
	total, total_parts, total_services, created_at, updated_at`

// ServiceOrderRepo implementación sobre PostgreSQL (usable con pool o tx).
type ServiceOrderRepo struct {
	q Querier
}

// NewServiceOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewServiceOrderRepository(q Querier) *ServiceOrderRepo {
	return &ServiceOrderRepo{q: q}
}

// Create persiste una orden nueva. Código duplicado -> domain.ConflictError.
func (r *ServiceOrderRepo) Create(ctx context.Context, o *entity.ServiceOrder) error {
	query := `
		INSERT INTO service_orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.Code, string(o.Status), o.Priority, o.Type, o.ClientID, nilIfEmpty(o.EquipmentID),
		nilIfEmpty(o.TechnicianID), o.ReportedDefect, o.Diagnosis, o.ScheduledAt, o.FinishedAt,
		o.Total, o.TotalParts, o.TotalServices, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return mapConflict(err, "code")
		}
		return fmt.Errorf("create service order: %w", err)
	}
	return nil
}

// GetByID obtiene una orden por ID. Devuelve nil si no existe.
func (r *ServiceOrderRepo) GetByID(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByCode obtiene una orden por código. Devuelve nil si no existe.
func (r *ServiceOrderRepo) GetByCode(ctx context.Context, code string) (*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE code = $1`
	return r.scanOne(ctx, query, code)
}

// GetForUpdate obtiene la orden y bloquea la fila (SELECT FOR UPDATE) para
// serializar transiciones concurrentes.
func (r *ServiceOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

// Update persiste estado, tiempos, asignación y totales de la orden.
func (r *ServiceOrderRepo) Update(ctx context.Context, o *entity.ServiceOrder) error {
	query := `
		UPDATE service_orders SET status = $2, priority = $3, technician_id = $4,
			diagnosis = $5, scheduled_at = $6, finished_at = $7,
			total = $8, total_parts = $9, total_services = $10, updated_at = $11
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		o.ID, string(o.Status), o.Priority, nilIfEmpty(o.TechnicianID),
		o.Diagnosis, o.ScheduledAt, o.FinishedAt,
		o.Total, o.TotalParts, o.TotalServices, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update service order: %w", err)
	}
	return nil
}

// List lista órdenes según filtro, más recientes primero.
func (r *ServiceOrderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM service_orders WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, string(filter.Status))
		pos++
	}
	if filter.ClientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", pos)
		args = append(args, filter.ClientID)
		pos++
	}
	if filter.TechnicianID != "" {
		query += fmt.Sprintf(" AND technician_id = $%d", pos)
		args = append(args, filter.TechnicianID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list service orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListStuckSince lista órdenes en el estado dado sin actualizar desde cutoff.
func (r *ServiceOrderRepo) ListStuckSince(ctx context.Context, status workflow.Status, cutoff time.Time) ([]*entity.ServiceOrder, error) {
	query := `SELECT ` + orderColumns + `
		FROM service_orders WHERE status = $1 AND updated_at < $2 ORDER BY updated_at`
	rows, err := r.q.Query(ctx, query, string(status), cutoff)
	if err != nil {
		return nil, fmt.Errorf("list stuck orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// CountOpenByClient cuenta las órdenes no terminales de un cliente.
func (r *ServiceOrderRepo) CountOpenByClient(ctx context.Context, clientID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM service_orders
		WHERE client_id = $1
		  AND status NOT IN ('INVOICED', 'CANCELED', 'DISPATCHED', 'SCRAPPED')`
	var count int
	if err := r.q.QueryRow(ctx, query, clientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count open orders: %w", err)
	}
	return count, nil
}

// NextCode reserva el siguiente consecutivo de la secuencia y lo formatea (OS-000123).
func (r *ServiceOrderRepo) NextCode(ctx context.Context) (string, error) {
	var n int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('service_order_code_seq')`).Scan(&n); err != nil {
		return "", fmt.Errorf("next order code: %w", err)
	}
	return fmt.Sprintf("OS-%06d", n), nil
}

func (r *ServiceOrderRepo) scanOne(ctx context.Context, query string, arg any) (*entity.ServiceOrder, error) {
	row := r.q.QueryRow(ctx, query, arg)
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service order: %w", err)
	}
	return o, nil
}

func scanOrder(row pgx.Row) (*entity.ServiceOrder, error) {
	var o entity.ServiceOrder
	var status string
	var equipmentID, technicianID *string
	err := row.Scan(
		&o.ID, &o.Code, &status, &o.Priority, &o.Type, &o.ClientID, &equipmentID,
		&technicianID, &o.ReportedDefect, &o.Diagnosis, &o.ScheduledAt, &o.FinishedAt,
		&o.Total, &o.TotalParts, &o.TotalServices, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = workflow.Status(status)
	if equipmentID != nil {
		o.EquipmentID = *equipmentID
	}
	if technicianID != nil {
		o.TechnicianID = *technicianID
	}
	return &o, nil
}

func scanOrders(rows pgx.Rows) ([]*entity.ServiceOrder, error) {
	var list []*entity.ServiceOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service order: %w", err)
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// nilIfEmpty convierte "" a NULL para columnas de FK opcionales.
func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
