package http

import (
	"context"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/service"
	"github.com/finkeeper/go-ledger-sync/models"
)

// Hand-written service stubs. Function fields override individual calls;
// everything else answers with a benign default.

type stubLedgerService struct {
	createLedgerFn func(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error)
	getLedgerFn    func(ctx context.Context, ledgerID string) (models.Ledger, error)
	getCanonicalFn func(ctx context.Context, ledgerID string) (models.CanonicalBlob, error)
	acquireLeaseFn func(ctx context.Context, ledgerID, holder string, ttl time.Duration) (models.LeaseGrant, error)
	releaseLeaseFn func(ctx context.Context, ledgerID, holder string) error
	pushFn         func(ctx context.Context, req models.PushRequest) (models.PushResponse, error)
}

func (s *stubLedgerService) CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error) {
	if s.createLedgerFn != nil {
		return s.createLedgerFn(ctx, req)
	}
	return models.Ledger{ID: req.LedgerID, KDFSalt: req.KDFSalt, Round: 1}, nil
}

func (s *stubLedgerService) GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error) {
	if s.getLedgerFn != nil {
		return s.getLedgerFn(ctx, ledgerID)
	}
	return models.Ledger{ID: ledgerID, Round: 1}, nil
}

func (s *stubLedgerService) GetCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error) {
	if s.getCanonicalFn != nil {
		return s.getCanonicalFn(ctx, ledgerID)
	}
	return models.CanonicalBlob{LedgerID: ledgerID, Round: 1, Payload: "cGF5bG9hZA=="}, nil
}

func (s *stubLedgerService) AcquireLease(ctx context.Context, ledgerID, holder string, ttl time.Duration) (models.LeaseGrant, error) {
	if s.acquireLeaseFn != nil {
		return s.acquireLeaseFn(ctx, ledgerID, holder, ttl)
	}
	return models.LeaseGrant{LedgerID: ledgerID, Holder: holder, ExpiresAt: time.Now().Add(ttl)}, nil
}

func (s *stubLedgerService) ReleaseLease(ctx context.Context, ledgerID, holder string) error {
	if s.releaseLeaseFn != nil {
		return s.releaseLeaseFn(ctx, ledgerID, holder)
	}
	return nil
}

func (s *stubLedgerService) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	if s.pushFn != nil {
		return s.pushFn(ctx, req)
	}
	return models.PushResponse{Round: req.BaseRound + 1}, nil
}

type stubTokenService struct {
	parseFn func(ctx context.Context, tokenString string) (models.Token, error)
}

func (s *stubTokenService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	if s.parseFn != nil {
		return s.parseFn(ctx, tokenString)
	}
	return models.Token{ClientID: "client-1"}, nil
}

type stubAppInfoService struct {
	version string
}

func (s *stubAppInfoService) GetAppVersion(ctx context.Context) string {
	if s.version == "" {
		return "v1.0.0"
	}
	return s.version
}

func newTestHandler(ledgers *stubLedgerService, tokens *stubTokenService) *Handler {
	if ledgers == nil {
		ledgers = &stubLedgerService{}
	}
	if tokens == nil {
		tokens = &stubTokenService{}
	}
	return NewHandler(&service.Services{
		RemoteLedgerService: ledgers,
		TokenService:        tokens,
		AppInfoService:      &stubAppInfoService{version: "v1.2.3"},
	}, logger.Nop())
}
