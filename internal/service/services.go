package service

import (
	"github.com/finkeeper/go-ledger-sync/internal/config"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/store"
)

type Services struct {
	RemoteLedgerService RemoteLedgerService
	TokenService        TokenService
	AppInfoService      AppInfoService
}

func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	appInfoSvc, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	return &Services{
		RemoteLedgerService: NewRemoteLedgerService(storages.LedgerRepository, storages.LeaseRepository, cfg.Server, logger),
		TokenService:        NewTokenService(cfg.App, logger),
		AppInfoService:      appInfoSvc,
	}, nil
}
