// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Finkeeper Authors

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/finkeeper/go-ledger-sync/internal/config"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/models"
)

const defaultLeaseTTLMax = 2 * time.Minute

type remoteLedgerService struct {
	ledgers store.LedgerRepository
	leases  store.LeaseRepository

	leaseTTLMax time.Duration
	logger      *logger.Logger
}

func NewRemoteLedgerService(ledgers store.LedgerRepository, leases store.LeaseRepository, cfg config.Server, logger *logger.Logger) RemoteLedgerService {
	ttlMax := cfg.LeaseTTLMax
	if ttlMax <= 0 {
		ttlMax = defaultLeaseTTLMax
	}

	return &remoteLedgerService{
		ledgers:     ledgers,
		leases:      leases,
		leaseTTLMax: ttlMax,
		logger:      logger,
	}
}

func (s *remoteLedgerService) CreateLedger(ctx context.Context, req models.CreateLedgerRequest) (models.Ledger, error) {
	if req.LedgerID == "" || len(req.KDFSalt) == 0 || req.Payload == "" {
		return models.Ledger{}, fmt.Errorf("%w: ledger id, salt and payload are required", ErrInvalidDataProvided)
	}

	ledger, err := s.ledgers.CreateLedger(ctx, req)
	if err != nil {
		return models.Ledger{}, err
	}

	s.logger.Info().Str("ledger_id", ledger.ID).Msg("ledger registered")
	return ledger, nil
}

func (s *remoteLedgerService) GetLedger(ctx context.Context, ledgerID string) (models.Ledger, error) {
	return s.ledgers.GetLedger(ctx, ledgerID)
}

func (s *remoteLedgerService) GetCanonical(ctx context.Context, ledgerID string) (models.CanonicalBlob, error) {
	return s.ledgers.GetCanonical(ctx, ledgerID)
}

func (s *remoteLedgerService) AcquireLease(ctx context.Context, ledgerID, holder string, ttl time.Duration) (models.LeaseGrant, error) {
	if holder == "" {
		return models.LeaseGrant{}, fmt.Errorf("%w: lease holder is required", ErrInvalidDataProvided)
	}
	if ttl <= 0 || ttl > s.leaseTTLMax {
		ttl = s.leaseTTLMax
	}

	return s.leases.Acquire(ctx, ledgerID, holder, ttl)
}

func (s *remoteLedgerService) ReleaseLease(ctx context.Context, ledgerID, holder string) error {
	return s.leases.Release(ctx, ledgerID, holder)
}

func (s *remoteLedgerService) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	if req.Payload == "" {
		return models.PushResponse{}, fmt.Errorf("%w: empty payload", ErrInvalidDataProvided)
	}

	holder, err := s.leases.Holder(ctx, req.LedgerID)
	if err != nil {
		return models.PushResponse{}, fmt.Errorf("check lease holder: %w", err)
	}
	if holder == "" || holder != req.ClientID {
		return models.PushResponse{}, ErrLeaseRequired
	}

	resp, err := s.ledgers.SwapCanonical(ctx, req)
	if err != nil {
		return models.PushResponse{}, err
	}

	s.logger.Info().
		Str("ledger_id", req.LedgerID).
		Str("client_id", req.ClientID).
		Int64("round", resp.Round).
		Msg("canonical state advanced")

	return resp, nil
}
