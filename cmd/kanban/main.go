package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yukikurage/isp-kanban/internal/board"
	"github.com/yukikurage/isp-kanban/internal/client"
	"github.com/yukikurage/isp-kanban/internal/config"
	"github.com/yukikurage/isp-kanban/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to kanban.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Log to a file; the terminal belongs to the board
	logFile, err := tea.LogToFile(cfg.LogFile, "kanban")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	api := client.NewClient(cfg.APIURL, client.WithTimeout(cfg.Timeout))
	bridge := tui.NewBridge()
	b := board.New(api,
		board.WithStages(cfg.StageOrder()...),
		board.WithConfirmer(bridge),
		board.WithNotifier(bridge),
		board.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(
		tui.NewModel(ctx, b, tui.WithDrafter(api)),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	bridge.Attach(p)

	logger.Info("board starting", "api_url", cfg.APIURL, "stages", cfg.Stages)
	_, runErr := p.Run()
	bridge.Detach()

	// let in-flight drag saves land before exiting
	b.Wait()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", runErr)
		os.Exit(1)
	}
}
