// Package main runs the Eternal Forge REST API server: deck storage,
// analysis, and simulation over HTTP, with an optional deck directory
// watcher.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eternal-forge/eternal-forge/internal/api"
	"github.com/eternal-forge/eternal-forge/internal/cards"
	"github.com/eternal-forge/eternal-forge/internal/config"
	"github.com/eternal-forge/eternal-forge/internal/storage"
	"github.com/eternal-forge/eternal-forge/internal/watcher"
)

var (
	addr      = flag.String("addr", "", "Listen address (default from config)")
	dbPath    = flag.String("db-path", "", "Database path (default: ~/.eternal-forge/eternal-forge.db)")
	cardsFile = flag.String("cards-file", "", "Import the card dataset from this JSON file on startup")
	syncCards = flag.Bool("sync-cards", false, "Download the card dataset on startup")
	watchDir  = flag.String("watch-dir", "", "Watch this directory for dropped deck lists")
)

func main() {
	flag.Parse()

	fmt.Println("Eternal Forge - REST API Server")
	fmt.Println("===============================")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Flags override the config file.
	listenAddr := cfg.Addr()
	if *addr != "" {
		listenAddr = *addr
	}
	finalDBPath := cfg.Database.Path
	if *dbPath != "" {
		finalDBPath = *dbPath
	}
	if finalDBPath == "" {
		finalDBPath, err = config.DefaultDatabasePath()
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}
	dataFile := cfg.Cards.DataFile
	if *cardsFile != "" {
		dataFile = *cardsFile
	}
	deckDir := ""
	if cfg.Watcher.Enabled {
		deckDir = cfg.Watcher.DeckDir
	}
	if *watchDir != "" {
		deckDir = *watchDir
	}

	fmt.Printf("Database: %s\n", finalDBPath)

	storageConfig := storage.DefaultConfig(finalDBPath)
	storageConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(storageConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	store := storage.NewService(db)
	ctx := context.Background()

	// Card dataset import, from a local file or the network.
	if dataFile != "" {
		importer := cards.NewImporter(store)
		stats, err := importer.ImportFile(ctx, dataFile)
		if err != nil {
			log.Fatalf("Failed to import card dataset: %v", err)
		}
		fmt.Printf("Imported %d cards (%d skipped) from %s\n", stats.Imported, stats.Skipped, dataFile)
	} else if *syncCards {
		client := cards.NewClient()
		if cfg.Cards.DatasetURL != "" {
			client.SetBaseURL(cfg.Cards.DatasetURL)
		}
		stats, err := client.DownloadAndImport(ctx, cards.NewImporter(store))
		if err != nil {
			log.Fatalf("Failed to download card dataset: %v", err)
		}
		fmt.Printf("Downloaded and imported %d cards (%d skipped)\n", stats.Imported, stats.Skipped)
	}

	count, err := store.CountCards(ctx)
	if err != nil {
		log.Fatalf("Failed to count cards: %v", err)
	}
	fmt.Printf("Card database: %d cards\n", count)
	if count == 0 {
		fmt.Println("Hint: run with -sync-cards or -cards-file to load the card dataset")
	}

	// Deck directory watcher.
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	if deckDir != "" {
		w := watcher.New(store, deckDir)
		go func() {
			if err := w.Run(watchCtx); err != nil && err != context.Canceled {
				log.Printf("Deck watcher stopped: %v", err)
			}
		}()
	}

	server := api.NewServer(&api.Config{Addr: listenAddr}, store)
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://%s\n", listenAddr)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	cancelWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}
