// Package main provides the deck-analyzer CLI: card dataset import, deck
// import/export, composition analysis, and simulation reports from the
// terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/eternal-forge/eternal-forge/internal/cards"
	"github.com/eternal-forge/eternal-forge/internal/config"
	"github.com/eternal-forge/eternal-forge/internal/deckio"
	"github.com/eternal-forge/eternal-forge/internal/sim/battle"
	"github.com/eternal-forge/eternal-forge/internal/sim/draw"
	"github.com/eternal-forge/eternal-forge/internal/sim/goldfish"
	"github.com/eternal-forge/eternal-forge/internal/storage"
	"github.com/eternal-forge/eternal-forge/internal/version"
)

const usage = `deck-analyzer - Eternal deck toolkit

Usage:
  deck-analyzer <command> [arguments]

Commands:
  import-cards <file>          Import the card dataset from a JSON file
  sync-cards                   Download and import the card dataset
  import <file> [-name NAME]   Import a deck list file
  list                         List saved decks
  show <deck-id>               Show a deck with validation results
  export <deck-id>             Print a deck in export format
  analyze <deck-id>            Curve, types, influence, and synergy report
  power <deck-id>              Power base report with odds tables
  draw <deck-id> [-trials N]   Opening hand Monte Carlo report
  goldfish <deck-id> [-turns N] Solo playout report
  battle <id1> <id2> [-games N] Head-to-head simulation report
  charts <deck-id> [-o FILE]   Write an HTML chart report
  version                      Print the version

Flags understood by every command:
  -db-path PATH                Database path override
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	if cmd == "version" {
		fmt.Printf("deck-analyzer %s\n", version.GetVersion())
		return
	}
	if cmd == "help" || cmd == "-h" || cmd == "--help" {
		fmt.Print(usage)
		return
	}

	ctx := context.Background()
	store, closeStore := openStore(args)
	defer closeStore()

	var err error
	switch cmd {
	case "import-cards":
		err = runImportCards(ctx, store, args)
	case "sync-cards":
		err = runSyncCards(ctx, store)
	case "import":
		err = runImport(ctx, store, args)
	case "list":
		err = runList(ctx, store)
	case "show":
		err = runShow(ctx, store, args)
	case "export":
		err = runExport(ctx, store, args)
	case "analyze":
		err = runAnalyze(ctx, store, args)
	case "power":
		err = runPower(ctx, store, args)
	case "draw":
		err = runDraw(ctx, store, args)
	case "goldfish":
		err = runGoldfish(ctx, store, args)
	case "battle":
		err = runBattle(ctx, store, args)
	case "charts":
		err = runCharts(ctx, store, args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

// openStore opens the configured database, honoring a -db-path flag if one
// appears among the arguments.
func openStore(args []string) (*storage.Service, func()) {
	dbPath := ""
	for i, arg := range args {
		if arg == "-db-path" && i+1 < len(args) {
			dbPath = args[i+1]
		}
	}

	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		var err error
		dbPath, err = config.DefaultDatabasePath()
		if err != nil {
			log.Fatalf("Failed to resolve database path: %v", err)
		}
	}

	storageConfig := storage.DefaultConfig(dbPath)
	storageConfig.AutoMigrate = true
	db, err := storage.Open(storageConfig)
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", dbPath, err)
	}

	return storage.NewService(db), func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// newFlagSet creates a flag set that swallows the shared -db-path flag,
// which openStore has already consumed.
func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.String("db-path", "", "Database path override")
	return fs
}

// positional returns the non-flag arguments before the first flag.
func positional(args []string) []string {
	var out []string
	for _, arg := range args {
		if len(arg) > 0 && arg[0] == '-' {
			break
		}
		out = append(out, arg)
	}
	return out
}

// flagArgs returns the arguments from the first flag onward.
func flagArgs(args []string) []string {
	for i, arg := range args {
		if len(arg) > 0 && arg[0] == '-' {
			return args[i:]
		}
	}
	return nil
}

func runImportCards(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer import-cards <file>")
	}

	importer := cards.NewImporter(store)
	stats, err := importer.ImportFile(ctx, pos[0])
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d cards (%d skipped)\n", stats.Imported, stats.Total, stats.Skipped)
	return nil
}

func runSyncCards(ctx context.Context, store *storage.Service) error {
	client := cards.NewClient()
	cfg, err := config.Load()
	if err == nil && cfg.Cards.DatasetURL != "" {
		client.SetBaseURL(cfg.Cards.DatasetURL)
	}

	fmt.Println("Downloading card dataset...")
	stats, err := client.DownloadAndImport(ctx, cards.NewImporter(store))
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d of %d cards (%d skipped)\n", stats.Imported, stats.Total, stats.Skipped)
	return nil
}

func runImport(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer import <file> [-name NAME]")
	}

	fs := newFlagSet("import")
	name := fs.String("name", "", "Deck name (default: derived from file name)")
	if err := fs.Parse(flagArgs(args)); err != nil {
		return err
	}

	data, err := os.ReadFile(pos[0])
	if err != nil {
		return fmt.Errorf("read deck file: %w", err)
	}

	deckName := *name
	if deckName == "" {
		deckName = nameFromPath(pos[0])
	}

	result, err := store.ImportDeckList(ctx, deckName, string(data))
	if err != nil {
		return err
	}

	printImportResult(deckName, result)
	return nil
}

func runList(ctx context.Context, store *storage.Service) error {
	decks, err := store.ListDecks(ctx)
	if err != nil {
		return err
	}
	printDeckList(decks)
	return nil
}

func runShow(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer show <deck-id>")
	}

	record, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	printDeck(record)
	return nil
}

func runExport(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer export <deck-id>")
	}

	snapshot, err := store.LoadSnapshot(ctx, pos[0])
	if err != nil {
		return err
	}
	if snapshot == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	fmt.Print(deckio.Export(snapshot))
	return nil
}

func runAnalyze(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer analyze <deck-id>")
	}

	record, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	printAnalysisReport(record)
	return nil
}

func runPower(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer power <deck-id> [-turns N]")
	}

	fs := newFlagSet("power")
	turns := fs.Int("turns", 8, "Number of turns in the odds tables")
	if err := fs.Parse(flagArgs(args)); err != nil {
		return err
	}

	record, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	printPowerReport(record, *turns)
	return nil
}

func runDraw(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer draw <deck-id> [-trials N] [-seed N]")
	}

	fs := newFlagSet("draw")
	trials := fs.Int("trials", 1000, "Number of simulated opening hands")
	seed := fs.Int64("seed", 0, "Random seed (0 = time-based)")
	if err := fs.Parse(flagArgs(args)); err != nil {
		return err
	}

	record, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	stats := draw.SimulateOpeningHands(record.Snapshot(), *trials, seededRNG(*seed))
	printDrawReport(record.Name, stats)
	return nil
}

func runGoldfish(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer goldfish <deck-id> [-turns N] [-seed N]")
	}

	fs := newFlagSet("goldfish")
	turns := fs.Int("turns", 10, "Number of turns to play")
	seed := fs.Int64("seed", 0, "Random seed (0 = time-based)")
	if err := fs.Parse(flagArgs(args)); err != nil {
		return err
	}

	record, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	sim := goldfish.New(record.Snapshot(), seededRNG(*seed))
	printGoldfishReport(record.Name, sim.SimulateTurns(*turns))
	return nil
}

func runBattle(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 2 {
		return fmt.Errorf("usage: deck-analyzer battle <deck-id-1> <deck-id-2> [-games N] [-seed N]")
	}

	fs := newFlagSet("battle")
	games := fs.Int("games", 100, "Number of games to simulate")
	seed := fs.Int64("seed", 0, "Random seed (0 = time-based)")
	if err := fs.Parse(flagArgs(args)); err != nil {
		return err
	}

	record1, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record1 == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}
	record2, err := store.GetDeck(ctx, pos[1])
	if err != nil {
		return err
	}
	if record2 == nil {
		return fmt.Errorf("deck %s not found", pos[1])
	}

	sim := battle.New(record1.Snapshot(), record2.Snapshot(), seededRNG(*seed))
	printBattleReport(record1.Name, record2.Name, sim.SimulateGames(*games))
	return nil
}

func runCharts(ctx context.Context, store *storage.Service, args []string) error {
	pos := positional(args)
	if len(pos) != 1 {
		return fmt.Errorf("usage: deck-analyzer charts <deck-id> [-o FILE]")
	}

	fs := newFlagSet("charts")
	out := fs.String("o", "deck-report.html", "Output HTML file")
	if err := fs.Parse(flagArgs(args)); err != nil {
		return err
	}

	record, err := store.GetDeck(ctx, pos[0])
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("deck %s not found", pos[0])
	}

	if err := writeChartReport(record, *out); err != nil {
		return err
	}

	fmt.Printf("Wrote chart report to %s\n", *out)
	return nil
}

func seededRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewSource(seed))
}
