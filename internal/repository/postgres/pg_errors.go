package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kirinyoku/tix-inventory/internal/repository"
)

const (
	codeUniqueViolation     = "23505"
	codeInvalidTextRepr     = "22P02"
	codeCheckViolation      = "23514"
	codeForeignKeyViolation = "23503"
)

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case codeUniqueViolation, codeForeignKeyViolation:
			return repository.ErrConflict
		case codeInvalidTextRepr:
			// malformed uuid: nothing can match it
			return repository.ErrNotFound
		case codeCheckViolation:
			return fmt.Errorf("%w: %s", repository.ErrConflict, pge.ConstraintName)
		}
	}

	return err
}

// wrapDBErr maps common DB errors to repository-level errors and wraps them with
// the provided operation name.
func wrapDBErr(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", op, translateDBErr(err))
}
