package authz

import (
	"github.com/tu-usuario/servitec-api/internal/domain/entity"
	"github.com/tu-usuario/servitec-api/internal/domain/workflow"
)

// Gate decide si un rol puede ejecutar una transición de estado concreta.
// Se consulta antes de cada transición, además del RBAC de rutas HTTP.
type Gate struct {
	// targets permitidos por rol; ADMIN no aparece porque todo le está permitido.
	allowed map[string]map[workflow.Status]bool
	// reaperturas (destino OPEN desde estados terminales o cuasi-terminales): solo ADMIN.
	reopenSources map[workflow.Status]bool
}

// NewGate construye el gate con la política por defecto:
//   - ADMIN: todas las transiciones, incluidas las reaperturas.
//   - BACKOFFICE: estados comerciales, facturación y logística post-entrega.
//   - TECH_INTERNAL: estados de ejecución en taller.
//   - TECH_FIELD: intake y ejecución básica en campo.
func NewGate() *Gate {
	backoffice := []workflow.Status{
		workflow.StatusPricing, workflow.StatusWaitingApproval, workflow.StatusNegotiating,
		workflow.StatusApproved, workflow.StatusRejected, workflow.StatusInvoiced,
		workflow.StatusWaitingCollection, workflow.StatusWaitingPickup,
		workflow.StatusDispatched, workflow.StatusAbandoned, workflow.StatusCanceled,
	}
	techInternal := []workflow.Status{
		workflow.StatusInAnalysis, workflow.StatusInProgress, workflow.StatusWaitingParts,
		workflow.StatusPaused, workflow.StatusTesting, workflow.StatusRework,
		workflow.StatusFinished, workflow.StatusWarrantyReturn,
	}
	techField := []workflow.Status{
		workflow.StatusInAnalysis, workflow.StatusInProgress, workflow.StatusFinished,
	}

	allowed := map[string]map[workflow.Status]bool{
		entity.RoleBackoffice:   toSet(backoffice),
		entity.RoleTechInternal: toSet(techInternal),
		entity.RoleTechField:    toSet(techField),
	}
	return &Gate{
		allowed: allowed,
		reopenSources: map[workflow.Status]bool{
			workflow.StatusRejected:  true,
			workflow.StatusFinished:  true,
			workflow.StatusAbandoned: true,
		},
	}
}

// AllowTransition indica si el rol puede llevar una orden de from a to.
// La legalidad de la transición en sí la valida el workflow.Machine; aquí
// solo se decide el permiso del actor.
func (g *Gate) AllowTransition(role string, from, to workflow.Status) bool {
	if role == entity.RoleAdmin {
		return true
	}
	// Reabrir (volver a OPEN desde REJECTED/FINISHED/ABANDONED) es exclusivo de ADMIN.
	if to == workflow.StatusOpen && g.reopenSources[from] {
		return false
	}
	// SCRAPPED implica dar de baja un equipo del cliente: solo ADMIN.
	if to == workflow.StatusScrapped {
		return false
	}
	targets, ok := g.allowed[role]
	if !ok {
		return false
	}
	return targets[to]
}

func toSet(list []workflow.Status) map[workflow.Status]bool {
	set := make(map[workflow.Status]bool, len(list))
	for _, s := range list {
		set[s] = true
	}
	return set
}
