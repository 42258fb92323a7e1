package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUnknownColumn marks a statement rejected because the table lacks a
// column the statement referenced.
var ErrUnknownColumn = errors.New("unknown column")

// SQLSTATE undefined_column.
const pgUndefinedColumn = "42703"

// IsUnknownColumn reports whether err was raised by the store for a column
// the table does not have.
func IsUnknownColumn(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnknownColumn) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedColumn
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such column"),
		strings.Contains(msg, "has no column named"),
		strings.Contains(msg, "pgrst204"):
		return true
	default:
		return false
	}
}

// ClassifyColumnError wraps err with ErrUnknownColumn when it is a missing
// column error and returns it unchanged otherwise.
func ClassifyColumnError(err error) error {
	if err == nil || errors.Is(err, ErrUnknownColumn) {
		return err
	}
	if IsUnknownColumn(err) {
		return fmt.Errorf("%w: %v", ErrUnknownColumn, err)
	}
	return err
}
