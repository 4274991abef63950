package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/almacen-api/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isForeignKeyViolation verifica si un error es una violación de clave foránea (23503).
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}

// isLockTimeout verifica si un error es lock_not_available (55P03), producto
// del lock_timeout fijado por el TxRunner al abrir la transacción.
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "55P03" // lock_not_available
	}
	return false
}

// mapLockErr traduce un lock timeout al error de dominio reintenible ErrBusy;
// cualquier otro error pasa sin tocar.
func mapLockErr(err error) error {
	if isLockTimeout(err) {
		return domain.ErrBusy
	}
	return err
}
