package ledger

import "errors"

var (
	ErrNotFound     = errors.New("ledger not found")
	ErrInvalidState = errors.New("ledger not in a withdrawable state")
	ErrForbidden    = errors.New("ledger does not belong to caller")
	ErrValidation   = errors.New("validation error")
)
