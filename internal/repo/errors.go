package repo

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ymorita/store-directory/internal/domain"
)

// classify maps a low-level storage error onto the domain error taxonomy.
// Every failure leaving this package is classified into exactly one entry;
// anything unrecognized passes through unchanged and the handler layer
// treats it as an internal fault.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch sqlStateClass(pgErr.Code) {
		case "23": // integrity constraint violation (unique, FK, not null)
			return fmt.Errorf("%w: %s", domain.ErrDataIntegrity, pgErr.Message)
		case "42": // syntax error or access rule violation, i.e. schema mismatch
			return fmt.Errorf("%w: %s", domain.ErrStorageSchema, pgErr.Message)
		case "08", "53", "57": // connection, resources, admin shutdown
			return fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, pgErr.Message)
		}
		return err
	}

	// Dial and timeout failures surface as net errors somewhere in the
	// wrap chain (pgconn wraps them), or as a dead context.
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}

	return err
}

// sqlStateClass returns the two-character class of a SQLSTATE code.
func sqlStateClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}
