package ports

import "context"

// AuditFact describe una mutación ya confirmada, para el colaborador de
// auditoría. La persistencia del log de auditoría es externa a este servicio;
// aquí solo se emiten los hechos.
type AuditFact struct {
	Actor      string
	EventKind  string // ej: stock.receive, stock.issue, order.complete
	EntityType string // ej: stock_balance, purchase_order
	EntityID   string
	Before     map[string]any
	After      map[string]any
}

// AuditSink recibe hechos de auditoría después de cada commit.
// Las implementaciones no deben bloquear el camino de escritura.
type AuditSink interface {
	Record(ctx context.Context, fact AuditFact)
}
