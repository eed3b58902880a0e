package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/finkeeper/go-ledger-sync/internal/adapter"
	"github.com/finkeeper/go-ledger-sync/internal/config"
	"github.com/finkeeper/go-ledger-sync/internal/logger"
	"github.com/finkeeper/go-ledger-sync/internal/service"
	"github.com/finkeeper/go-ledger-sync/internal/store"
	"github.com/finkeeper/go-ledger-sync/internal/utils"
	"github.com/finkeeper/go-ledger-sync/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("ledger-sync-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	localStorage, err := store.NewLocalStore(cfg.Storage.DB.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("create local storage")
	}

	ctx := context.Background()
	clientID := resolveClientID(ctx, localStorage)

	remote := adapter.NewHTTPRemoteAdapter(adapter.HTTPClientConfig{
		BaseURL:  cfg.Adapter.HTTPAddress,
		ClientID: clientID,
		SignKey:  cfg.App.TokenSignKey,
		Timeout:  cfg.Adapter.RequestTimeout,
	})

	services := service.NewClientServices(localStorage, remote, clientID, *cfg, log)

	// Subcommand after the flags: create, join, sync or daemon (default).
	command := "daemon"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	password, err := readPassword()
	if err != nil {
		log.Fatal().Err(err).Msg("read ledger password")
	}

	switch command {
	case "create":
		if err = services.SetupService.CreateLedger(ctx, cfg.Sync.LedgerID, password); err != nil {
			log.Fatal().Err(err).Msg("create ledger")
		}
		fmt.Printf("Ledger %s created\n", cfg.Sync.LedgerID)

	case "join":
		if err = services.SetupService.JoinLedger(ctx, cfg.Sync.LedgerID, password); err != nil {
			log.Fatal().Err(err).Msg("join ledger")
		}
		fmt.Printf("Joined ledger %s\n", cfg.Sync.LedgerID)

	case "sync":
		if err = services.SetupService.Unlock(ctx, password); err != nil {
			log.Fatal().Err(err).Msg("unlock ledger")
		}
		report, err := services.SyncService.SyncOnce(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("sync round failed")
		}
		printReport(report)

	case "daemon":
		if err = services.SetupService.Unlock(ctx, password); err != nil {
			log.Fatal().Err(err).Msg("unlock ledger")
		}
		runDaemon(services, cfg.Workers, log)

	default:
		log.Fatal().Str("command", command).Msg("unknown command")
	}
}

// runDaemon starts the background sync worker and blocks until a stop signal
// arrives, then waits for the in-flight round to finish.
func runDaemon(services *service.ClientServices, cfg config.ClientWorkers, log *logger.Logger) {
	workers.NewWorkers(services, cfg).Run()
	log.Info().Dur("interval", cfg.SyncInterval).Msg("sync daemon started")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()
	<-ctx.Done()

	services.SyncJob.Stop()
	log.Info().Msg("sync daemon stopped")
}

// resolveClientID reuses the identity a previous run bound the local store
// to, so the remote keeps a single acknowledgment slot per device. A fresh
// install gets a new UUID which CreateLedger or JoinLedger then persists.
func resolveClientID(ctx context.Context, local store.LocalStore) string {
	if _, clientID, _, err := local.Meta(ctx); err == nil && clientID != "" {
		return clientID
	}
	return utils.NewClientID()
}

// readPassword takes the ledger password from LEDGER_PASSWORD, or prompts
// on stdin when the variable is not set.
func readPassword() (string, error) {
	if password := os.Getenv("LEDGER_PASSWORD"); password != "" {
		return password, nil
	}

	fmt.Print("Ledger password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password from stdin: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func printReport(report service.SyncReport) {
	switch {
	case report.Recovered:
		fmt.Printf("Recovered interrupted round %d\n", report.Round)
	case report.Pushed:
		fmt.Printf("Pushed round %d\n", report.Round)
	default:
		fmt.Printf("Up to date at round %d\n", report.Round)
	}

	for _, rejection := range report.Rejected {
		fmt.Printf("Rejected: %s %d: %s\n", rejection.Kind, rejection.ID, rejection.Reason)
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
