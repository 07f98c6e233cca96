package contract

import "errors"

// ErrRecordNotFound is returned by owner-scoped writes that matched no row.
var ErrRecordNotFound = errors.New("record not found")
