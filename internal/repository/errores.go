package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	// ErrRPCNoDisponible means the stored procedure is not installed in the database.
	ErrRPCNoDisponible = errors.New("procedimiento no disponible")
	ErrNoEncontrado    = errors.New("registro no encontrado")
	// ErrEstadoInvalido is raised when a row is not in the state the operation requires.
	ErrEstadoInvalido = errors.New("estado inválido")
	ErrDuplicado      = errors.New("registro duplicado")
)

// SQLSTATE codes raised by PostgreSQL and by the kiosk functions.
const (
	codigoFuncionInexistente = "42883"
	codigoSinDatos           = "P0002"
	codigoEstadoInvalido     = "55000"
	codigoUnicidad           = "23505"
)

// clasificar maps driver errors onto the repository sentinels, preserving the
// original message.
func clasificar(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codigoFuncionInexistente:
			return fmt.Errorf("%w: %s", ErrRPCNoDisponible, pgErr.Message)
		case codigoSinDatos:
			return fmt.Errorf("%w: %s", ErrNoEncontrado, pgErr.Message)
		case codigoEstadoInvalido:
			return fmt.Errorf("%w: %s", ErrEstadoInvalido, pgErr.Message)
		case codigoUnicidad:
			return fmt.Errorf("%w: %s", ErrDuplicado, pgErr.ConstraintName)
		}
	}
	return err
}
