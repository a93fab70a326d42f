package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sadopc/focusninja/internal/background"
	"github.com/sadopc/focusninja/internal/store"
	"github.com/sadopc/focusninja/internal/tui"
)

func main() {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening database: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	// The TUI owns the terminal, so logs go to a file next to the db.
	logger, err := newLogger(filepath.Join(filepath.Dir(dbPath), "focusninja.log"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening log: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	alarms := background.NewClockAlarms()
	defer alarms.Stop()

	engine := background.NewEngine(s, alarms, logger)
	alarms.Bind(engine.HandleAlarm)

	if err := engine.Startup(); err != nil {
		fmt.Fprintf(os.Stderr, "error reconciling state: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(s, engine)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
