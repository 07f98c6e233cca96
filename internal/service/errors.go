package service

import (
	"errors"

	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/repository/contract"

	"github.com/jackc/pgx/v5/pgconn"
)

// storageError passes application and postgres errors through untouched so
// the error handler can classify them; anything else becomes a generic
// storage failure.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return err
	}
	return apperror.Storage(err)
}

// repoError is storageError with the repository "nothing matched" sentinel
// reported as NotFound.
func repoError(err error, notFound string) error {
	if errors.Is(err, contract.ErrRecordNotFound) {
		return apperror.NotFound(notFound)
	}
	return storageError(err)
}
