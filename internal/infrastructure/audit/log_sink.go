package audit

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/application/ports"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

var _ ports.AuditSink = (*LogSink)(nil)

// LogSink emite los hechos de auditoría como eventos estructurados de zerolog.
// La persistencia del log de auditoría es de un colaborador externo; este sink
// deja los hechos en la salida estructurada para que el pipeline de logs los
// recoja.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink sobre el logger de la aplicación.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.Component("audit")}
}

// Record registra el hecho ya confirmado. Nunca bloquea ni devuelve error:
// la mutación ya hizo commit y no se revierte por fallas de auditoría.
func (s *LogSink) Record(_ context.Context, fact ports.AuditFact) {
	s.log.Info().
		Str("actor", fact.Actor).
		Str("event", fact.EventKind).
		Str("entity_type", fact.EntityType).
		Str("entity_id", fact.EntityID).
		Interface("before", fact.Before).
		Interface("after", fact.After).
		Msg("audit")
}
