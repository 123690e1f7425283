package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"lifedeck/internal/ai"
	"lifedeck/internal/catalog"
	"lifedeck/internal/game"
	"lifedeck/internal/net"
	"lifedeck/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "play":
		runPlay(os.Args[2:])
	case "host":
		runHost(os.Args[2:])
	case "join":
		runJoin(os.Args[2:])
	case "sim":
		runSim(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  lifedeck play [--difficulty D] [--seed N] [--cards FILE]")
	fmt.Println("  lifedeck host [--port P] [--difficulty D] [--seed N] [--cards FILE]")
	fmt.Println("  lifedeck join [--addr ADDR] [--difficulty D] [--seed N]")
	fmt.Println("  lifedeck sim [--games N] [--strategy S] [--difficulty D] [--seed N] [--cards FILE] [--db PATH]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  play    Play a game in this terminal")
	fmt.Println("  host    Start a game server and wait for a player")
	fmt.Println("  join    Connect to a game server and play")
	fmt.Println("  sim     Run unattended AI games and report the results")
}

func runPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	difficulty := fs.String("difficulty", game.DifficultyNormal, "easy, normal, or hard")
	seed := fs.Int64("seed", 0, "shuffle seed; 0 for random")
	cards := fs.String("cards", "", "path to card catalog YAML (default: embedded set)")
	fs.Parse(args)

	if err := net.RunLocal(context.Background(), *cards, *difficulty, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runHost(args []string) {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	port := fs.String("port", "9000", "TCP port to listen on")
	difficulty := fs.String("difficulty", game.DifficultyNormal, "default difficulty if the client sends none")
	seed := fs.Int64("seed", 0, "default shuffle seed if the client sends none")
	cards := fs.String("cards", "", "path to card catalog YAML (default: embedded set)")
	fs.Parse(args)

	srv := &net.Server{
		Port:       *port,
		CardsFile:  *cards,
		Difficulty: *difficulty,
		Seed:       *seed,
	}

	if err := srv.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runJoin(args []string) {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", "localhost:9000", "server address to connect to")
	difficulty := fs.String("difficulty", game.DifficultyNormal, "easy, normal, or hard")
	seed := fs.Int64("seed", 0, "shuffle seed; 0 for random")
	fs.Parse(args)

	if err := net.Connect(context.Background(), *addr, *difficulty, *seed); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSim(args []string) {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	games := fs.Int("games", 100, "number of games to run")
	strategy := fs.String("strategy", "adaptive", "conservative, aggressive, balanced, or adaptive")
	difficulty := fs.String("difficulty", game.DifficultyNormal, "easy, normal, or hard")
	seed := fs.Int64("seed", 0, "base shuffle seed; game i plays with seed+i (0 for random)")
	cards := fs.String("cards", "", "path to card catalog YAML (default: embedded set)")
	dbPath := fs.String("db", "", "SQLite file to record the aggregate result in")
	fs.Parse(args)

	if err := simulate(*games, *strategy, *difficulty, *seed, *cards, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func simulate(games int, strategy, difficulty string, seed int64, cardsFile, dbPath string) error {
	if games < 1 {
		return fmt.Errorf("need at least one game")
	}
	st, err := ai.ParseStrategyType(strategy)
	if err != nil {
		return err
	}
	strat, err := ai.New(st)
	if err != nil {
		return err
	}
	cat, err := catalog.Open(cardsFile)
	if err != nil {
		return err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// One service across all games accumulates the advisor statistics;
	// the controller carries per-game state, so each game gets a fresh one.
	svc := ai.NewService(strat)
	var clears, overs, turns, vitality int
	for i := 0; i < games; i++ {
		g, err := cat.NewGame(difficulty, seed+int64(i), nil)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		final, err := game.NewRunner(g, ai.NewController(svc)).Run(context.Background())
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		if final == game.PhaseGameClear {
			clears++
		} else {
			overs++
		}
		turns += g.Turn()
		vitality += g.Vitality()
	}

	stats := svc.Statistics()
	avgTurns := float64(turns) / float64(games)
	avgVitality := float64(vitality) / float64(games)

	fmt.Printf("Simulated %d %s games with the %s strategy\n", games, difficulty, strat.Name())
	fmt.Printf("  cleared:      %d (%.1f%%)\n", clears, 100*float64(clears)/float64(games))
	fmt.Printf("  game over:    %d\n", overs)
	fmt.Printf("  avg turns:    %.1f\n", avgTurns)
	fmt.Printf("  avg vitality: %.1f\n", avgVitality)
	fmt.Printf("  advisor:      %d decisions, %.1f%% challenge success\n", stats.Decisions, 100*stats.SuccessRate)

	if dbPath == "" {
		return nil
	}

	store, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	rec, err := store.RecordSimResult(context.Background(), storage.SimResult{
		Strategy:    string(st),
		Games:       games,
		Clears:      clears,
		Overs:       overs,
		AvgTurns:    avgTurns,
		AvgVitality: avgVitality,
		Stats:       raw,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Recorded result %s in %s\n", rec.ID, dbPath)
	return nil
}
