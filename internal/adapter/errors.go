package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("client unauthorized")
	ErrLedgerNotFound      = errors.New("ledger not found")
	ErrLedgerExists        = errors.New("ledger already exists")
	ErrLeaseHeld           = errors.New("lease held by another client")
	ErrRoundConflict       = errors.New("canonical round conflict")
	ErrRemoteUnreachable   = errors.New("remote unreachable")
	ErrInternalServerError = errors.New("internal server error")
)
