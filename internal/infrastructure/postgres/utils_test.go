package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de errores de PostgreSQL a errores de dominio.
// ──────────────────────────────────────────────────────────────────────────────

func TestMapLockErr_TimeoutDeLockEsErrBusy(t *testing.T) {
	// Los repos envuelven el error de pgx con %w; errors.As debe verlo igual.
	err := fmt.Errorf("get stock balance for update: %w",
		&pgconn.PgError{Code: "55P03", Message: "canceling statement due to lock timeout"})

	mapped := mapLockErr(err)

	assert.True(t, errors.Is(mapped, domain.ErrBusy),
		"un lock_not_available (55P03) debe traducirse a ErrBusy")
}

func TestMapLockErr_OtroErrorPasaIntacto(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"error arbitrario", errors.New("conexión caída")},
		{"violación de unique", fmt.Errorf("create product: %w", &pgconn.PgError{Code: "23505"})},
		{"violación de FK", fmt.Errorf("create order: %w", &pgconn.PgError{Code: "23503"})},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapLockErr(tc.err)
			assert.Equal(t, tc.err, mapped, "solo 55P03 se traduce; el resto pasa sin tocar")
			assert.False(t, errors.Is(mapped, domain.ErrBusy))
		})
	}
}

func TestIsLockTimeout(t *testing.T) {
	assert.True(t, isLockTimeout(&pgconn.PgError{Code: "55P03"}))
	assert.True(t, isLockTimeout(fmt.Errorf("envuelto: %w", &pgconn.PgError{Code: "55P03"})))
	assert.False(t, isLockTimeout(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isLockTimeout(errors.New("sin código")))
	assert.False(t, isLockTimeout(nil))
}
