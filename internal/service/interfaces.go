package service

import (
	"context"
	"time"

	"github.com/finkeeper/go-ledger-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/services_mock.go -package=mock

// RemoteLedgerService is the server-side application layer of the blind
// remote store. It enforces the two server-side rules — one unexpired
// lease per ledger and compare-and-swap on the canonical round — and
// treats every payload as an opaque encrypted blob.
type RemoteLedgerService interface {
	CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error)
	GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error)
	GetCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error)

	// AcquireLease grants holder the exclusive sync lease. The requested
	// ttl is clamped to the configured maximum.
	AcquireLease(ctx context.Context, ledgerID, holder string, ttl time.Duration) (models.LeaseGrant, error)
	ReleaseLease(ctx context.Context, ledgerID, holder string) error

	// Push replaces the canonical blob. It fails with [ErrLeaseRequired]
	// unless req.ClientID currently holds the ledger lease, and with the
	// repository's round-conflict error when req.BaseRound is stale.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)
}

// TokenService validates the bearer tokens clients mint from the shared
// sign key.
type TokenService interface {
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService exposes build metadata of the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}
