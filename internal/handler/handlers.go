package handler

import (
	"github.com/finkeeper/go-ledger-sync/internal/config"
	"github.com/finkeeper/go-ledger-sync/internal/handler/grpc"
	"github.com/finkeeper/go-ledger-sync/internal/handler/http"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/service"
)

type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

func NewHandlers(services *service.Services, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, logger)
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
