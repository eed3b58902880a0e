package http

import (
	"errors"
	"net/http"

	"github.com/finkeeper/go-ledger-sync/internal/service"
	"github.com/finkeeper/go-ledger-sync/internal/store"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	service.ErrTokenIsExpired:      http.StatusUnauthorized,
	service.ErrLeaseRequired:       http.StatusLocked,

	store.ErrLedgerNotFound:      http.StatusNotFound,
	store.ErrLedgerAlreadyExists: http.StatusConflict,
	store.ErrRoundConflict:       http.StatusConflict,
	store.ErrLeaseHeld:           http.StatusLocked,
	store.ErrLeaseNotHeld:        http.StatusConflict,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
