package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/chatapi"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-chat/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-chat/internal/core/domain"
	"github.com/custodia-labs/sercha-chat/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-chat/internal/core/services"
	"github.com/custodia-labs/sercha-chat/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const (
	exitCodeError       = 1
	exitCodeInterrupted = 130 // 128 + SIGINT
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cleanup, err := wire(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCodeError
	}
	defer cleanup()

	if err := cli.ExecuteContext(ctx); err != nil {
		if isSignalCanceled(ctx, err) {
			return exitCodeInterrupted
		}
		return exitCodeError
	}
	return 0
}

func isSignalCanceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) && errors.Is(ctx.Err(), context.Canceled)
}

// wire builds the adapters and services and hands them to the CLI.
// The returned function releases the storage.
func wire(ctx context.Context) (func(), error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()

	client := chatapi.NewClient(chatapi.Config{
		Token:         settings.Server.Token,
		RatePerSecond: settings.Search.RatePerSecond,
		UserAgent:     "sercha-chat/" + version,
	})

	cleanup := func() {}
	var history driven.HistoryStore
	var index *sqlite.Index
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("opening local database, history will not be kept: %v", err)
		history = memory.NewHistoryStore()
	} else {
		history = store.HistoryStore()
		index = store.Index()
		cleanup = func() { store.Close() }
	}

	var (
		posts driven.PostSearcher = client
		files driven.FileSearcher = client
	)
	if settings.Search.Backend == domain.BackendLocal {
		if index == nil {
			cleanup()
			return nil, fmt.Errorf("search.backend is local but the database is unavailable")
		}
		posts, files = index, index
	}

	cfg := services.OrchestratorConfig{
		ServerURL: settings.Server.URL,
		TeamID:    settings.Server.TeamID,
		Timeout:   settings.Search.Timeout,
	}
	historyService := services.NewHistoryService(history, settings.Server.URL, settings.Search.HistoryLimit)
	fileService := services.NewFileActionService(
		client, settings.Server.URL, settings.Files.DownloadDir, settings.Files.Capabilities,
	)

	svc := cli.Services{
		Sessions: services.NewSessionFactory(posts, files, history, cfg),
		History:  historyService,
		Files:    fileService,
		Settings: settingsService,
	}
	if index != nil {
		svc.Index = services.NewIndexService(index, settings.Server.URL)
	}
	cli.SetServices(svc)
	cli.SetVersion(version)
	cli.SetTUIConfig(&cli.TUIConfig{
		Search:       services.NewOrchestrator(posts, files, history, cfg),
		History:      historyService,
		Files:        fileService,
		Settings:     settingsService,
		Capabilities: watchCapabilities(ctx, configStore, fileService),
	})

	return cleanup, nil
}

// watchCapabilities applies permission changes from the config file to the
// file service and forwards them for the search screen. A nil channel is
// returned when the file cannot be watched.
func watchCapabilities(
	ctx context.Context, store *file.ConfigStore, fileService *services.FileActionService,
) <-chan domain.Capabilities {
	changes, err := file.NewWatcher(store).Watch(ctx)
	if err != nil {
		logger.Debug("config watcher disabled: %v", err)
		return nil
	}

	out := make(chan domain.Capabilities, 1)
	go func() {
		defer close(out)
		for range changes {
			caps := services.CapabilitiesFrom(store)
			fileService.SetCapabilities(caps)
			select {
			case out <- caps:
			default:
				// Drop the stale value so the newest one is delivered.
				select {
				case <-out:
				default:
				}
				out <- caps
			}
		}
	}()
	return out
}
