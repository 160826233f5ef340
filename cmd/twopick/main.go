// Command twopick is the 2Pick draft advisor CLI. It scores candidate
// pairs against the current deck, analyzes drafted decks, and tunes the
// scoring weights from logged picks.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/Shun-123/shadowverse-2pick/internal/advisor"
	"github.com/Shun-123/shadowverse-2pick/internal/cards"
	"github.com/Shun-123/shadowverse-2pick/internal/config"
	"github.com/Shun-123/shadowverse-2pick/internal/learning"
	"github.com/Shun-123/shadowverse-2pick/internal/meta"
	"github.com/Shun-123/shadowverse-2pick/internal/metrics"
	"github.com/Shun-123/shadowverse-2pick/internal/predictor"
	"github.com/Shun-123/shadowverse-2pick/internal/storage"
	"github.com/Shun-123/shadowverse-2pick/internal/storage/repository"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: twopick <command> [flags]

Commands:
  advise         Score two candidates against the current deck
  analyze        Analyze a drafted deck (curve, roles, synergies, archetype)
  rate           Show the static rating breakdown for one card
  predict        Estimate the deck's win rate
  build-metrics  Recompute stored metrics for every card
  train          Tune scoring weights from logged picks
  migrate        Apply pending database migrations

Run 'twopick <command> -h' for command flags.
`)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx := context.Background()

	switch os.Args[1] {
	case "advise":
		runAdvise(ctx, cfg, os.Args[2:])
	case "analyze":
		runAnalyze(ctx, cfg, os.Args[2:])
	case "rate":
		runRate(ctx, cfg, os.Args[2:])
	case "predict":
		runPredict(ctx, cfg, os.Args[2:])
	case "build-metrics":
		runBuildMetrics(ctx, cfg, os.Args[2:])
	case "train":
		runTrain(ctx, cfg, os.Args[2:])
	case "migrate":
		runMigrate(cfg, os.Args[2:])
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

// app bundles the wired collaborators behind the CLI commands.
type app struct {
	db       *storage.DB
	cardRepo *repository.CardRepository
	src      cards.Source
	resolver *cards.Resolver
	advisor  *advisor.Advisor
	logRepo  *repository.PickLogRepository
	metaTab  *meta.Table
}

func openApp(cfg *config.Config) *app {
	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = cfg.Database.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	cardRepo := repository.NewCardRepository(db.Conn())

	var src cards.Source = cardRepo
	if cfg.Cache.Enabled {
		ttl, err := cfg.GetCacheTTL()
		if err != nil {
			log.Fatalf("Invalid cache TTL: %v", err)
		}
		src = advisor.NewLookupCache(cardRepo, ttl, cfg.Cache.MaxSize)
	}

	var metaTab *meta.Table
	var metaSrc advisor.MetaSource
	if cfg.Meta.FilePath != "" {
		metaTab, err = meta.LoadTable(cfg.Meta.FilePath)
		if err != nil {
			log.Fatalf("Failed to load meta adjustments: %v", err)
		}
		if cfg.Meta.Watch {
			if err := metaTab.Watch(slog.Default()); err != nil {
				log.Fatalf("Failed to watch meta adjustments: %v", err)
			}
		}
		metaSrc = metaTab
	}

	weightsRepo := repository.NewWeightsRepository(db.Conn())

	return &app{
		db:       db,
		cardRepo: cardRepo,
		src:      src,
		resolver: cards.NewResolver(cardRepo),
		advisor:  advisor.New(src, weightsRepo, metaSrc),
		logRepo:  repository.NewPickLogRepository(db.Conn()),
		metaTab:  metaTab,
	}
}

func (a *app) close() {
	if a.metaTab != nil {
		a.metaTab.Close()
	}
	a.db.Close()
}

func runAdvise(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("advise", flag.ExitOnError)
	candidate1 := fs.String("card1", "", "First candidate (name or id)")
	candidate2 := fs.String("card2", "", "Second candidate (name or id)")
	deckInput := fs.String("deck", "", "Current deck as comma-separated names or ids")
	pickIndex := fs.Int("pick", 1, "Pick number (1-15)")
	rerollsLeft := fs.Int("rerolls", 0, "Rerolls remaining")
	sessionID := fs.String("session", "", "Session id (created when empty)")
	chosenID := fs.String("chosen", "", "Card actually chosen (records the pick)")
	fs.Parse(args)

	if *candidate1 == "" || *candidate2 == "" {
		log.Fatal("Both -card1 and -card2 are required")
	}

	a := openApp(cfg)
	defer a.close()

	card1ID, err := a.resolver.Resolve(ctx, *candidate1)
	if err != nil {
		log.Fatalf("Failed to resolve %q: %v", *candidate1, err)
	}
	card2ID, err := a.resolver.Resolve(ctx, *candidate2)
	if err != nil {
		log.Fatalf("Failed to resolve %q: %v", *candidate2, err)
	}
	if card1ID == "" || card2ID == "" {
		missing := *candidate1
		if card1ID != "" {
			missing = *candidate2
		}
		log.Fatalf("Card not found: %s", missing)
	}

	deckIDs, unresolved, err := a.resolver.ResolveDeck(ctx, *deckInput)
	if err != nil {
		log.Fatalf("Failed to resolve deck: %v", err)
	}
	for _, name := range unresolved {
		slog.Warn("skipping unresolved deck entry", "name", name)
	}

	advice, err := a.advisor.GetPickAdvice(ctx, []string{card1ID, card2ID}, deckIDs, *pickIndex, *rerollsLeft)
	if err != nil {
		log.Fatalf("Failed to get pick advice: %v", err)
	}

	printJSON(advice)

	if *chosenID != "" || *sessionID != "" {
		recordPick(ctx, a, *sessionID, *pickIndex, *rerollsLeft, card1ID, card2ID, *chosenID, deckIDs, advice)
	}
}

func recordPick(ctx context.Context, a *app, sessionID string, pickIndex, rerollsLeft int, card1ID, card2ID, chosen string, deckIDs []string, advice *advisor.PickAdvice) {
	sessionID, err := a.logRepo.EnsureSession(ctx, sessionID, "")
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	chosenID := ""
	if chosen != "" {
		chosenID, err = a.resolver.Resolve(ctx, chosen)
		if err != nil || chosenID == "" {
			log.Fatalf("Failed to resolve chosen card %q: %v", chosen, err)
		}
	}

	scores, err := json.Marshal(advice.CardScores)
	if err != nil {
		log.Fatalf("Failed to encode scores: %v", err)
	}
	snapshot, err := json.Marshal(deckIDs)
	if err != nil {
		log.Fatalf("Failed to encode deck snapshot: %v", err)
	}

	entry := &learning.PickLog{
		SessionID:     sessionID,
		PickIndex:     pickIndex,
		RerollsLeft:   rerollsLeft,
		Candidate1ID:  card1ID,
		Candidate2ID:  card2ID,
		RecommendedID: advice.RecommendedCardID,
		ChosenID:      chosenID,
		Action:        advice.Action,
		ScoresJSON:    string(scores),
		DeckSnapshot:  string(snapshot),
	}
	if err := a.logRepo.AppendLog(ctx, entry); err != nil {
		log.Fatalf("Failed to record pick: %v", err)
	}
	fmt.Fprintf(os.Stderr, "Recorded pick %d in session %s\n", pickIndex, sessionID)
}

func runAnalyze(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	deckInput := fs.String("deck", "", "Deck as comma-separated names or ids")
	fs.Parse(args)

	a := openApp(cfg)
	defer a.close()

	deckIDs, unresolved, err := a.resolver.ResolveDeck(ctx, *deckInput)
	if err != nil {
		log.Fatalf("Failed to resolve deck: %v", err)
	}

	report, err := a.advisor.AnalyzeDeckDetailed(ctx, deckIDs)
	if err != nil {
		log.Fatalf("Failed to analyze deck: %v", err)
	}

	printJSON(struct {
		*advisor.DeckReport
		Unresolved []string `json:"unresolved,omitempty"`
	}{report, unresolved})
}

func runRate(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("rate", flag.ExitOnError)
	cardInput := fs.String("card", "", "Card name or id")
	fs.Parse(args)

	if *cardInput == "" {
		log.Fatal("-card is required")
	}

	a := openApp(cfg)
	defer a.close()

	cardID, err := a.resolver.Resolve(ctx, *cardInput)
	if err != nil {
		log.Fatalf("Failed to resolve %q: %v", *cardInput, err)
	}
	if cardID == "" {
		log.Fatalf("Card not found: %s", *cardInput)
	}

	card, m, err := a.advisor.RateCard(ctx, cardID)
	if err != nil {
		log.Fatalf("Failed to rate card: %v", err)
	}

	printJSON(struct {
		Card    *cards.Card    `json:"card"`
		Metrics *cards.Metrics `json:"metrics"`
	}{card, m})
}

func runPredict(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	deckInput := fs.String("deck", "", "Deck as comma-separated names or ids")
	fs.Parse(args)

	a := openApp(cfg)
	defer a.close()

	deckIDs, unresolved, err := a.resolver.ResolveDeck(ctx, *deckInput)
	if err != nil {
		log.Fatalf("Failed to resolve deck: %v", err)
	}
	for _, name := range unresolved {
		slog.Warn("skipping unresolved deck entry", "name", name)
	}

	prediction, err := predictor.New(a.src).Predict(ctx, deckIDs)
	if err != nil {
		log.Fatalf("Failed to predict win rate: %v", err)
	}
	printJSON(prediction)
}

func runBuildMetrics(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("build-metrics", flag.ExitOnError)
	fs.Parse(args)

	a := openApp(cfg)
	defer a.close()

	count, err := metrics.NewBuilder(a.cardRepo).BuildAll(ctx)
	if err != nil {
		log.Fatalf("Failed to build metrics: %v", err)
	}
	fmt.Printf("Rebuilt metrics for %d cards\n", count)
}

func runTrain(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	fs.Parse(args)

	a := openApp(cfg)
	defer a.close()

	weightsRepo := repository.NewWeightsRepository(a.db.Conn())
	result, err := learning.NewTrainer(a.logRepo, weightsRepo).TrainAndUpdate(ctx)
	if err != nil {
		log.Fatalf("Training failed: %v", err)
	}
	printJSON(result)
}

func runMigrate(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	down := fs.Bool("down", false, "Roll back all migrations instead of applying them")
	fs.Parse(args)

	mgr, err := storage.NewMigrationManager(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to create migration manager: %v", err)
	}
	defer mgr.Close()

	if *down {
		if err := mgr.Down(); err != nil {
			log.Fatalf("Migration rollback failed: %v", err)
		}
		fmt.Println("Migrations rolled back")
		return
	}

	if err := mgr.Up(); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	version, dirty, err := mgr.Version()
	if err != nil {
		log.Fatalf("Failed to read migration version: %v", err)
	}
	fmt.Printf("Database at version %d (dirty=%v)\n", version, dirty)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode output: %v", err)
	}
	fmt.Println(string(data))
}
