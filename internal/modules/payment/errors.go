package payment

import "errors"

var (
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrAmountMismatch       = errors.New("amount mismatch")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrUnknownGatewayStatus = errors.New("unknown gateway status")
	ErrNotAdOwner           = errors.New("ad does not belong to caller")
)
