package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"writing-guru/api/internal/config"
	"writing-guru/api/internal/controller"
	"writing-guru/api/internal/engine"
	"writing-guru/api/internal/history"
	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/store"
	"writing-guru/api/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// терминал занят формой, поэтому логи пишем в файл рядом с историей
	if err := os.MkdirAll(cfg.HistoryDir, 0o755); err != nil {
		return fmt.Errorf("history dir: %w", err)
	}
	logPath := filepath.Join(cfg.HistoryDir, "guru.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("log file: %w", err)
	}
	defer logFile.Close()
	logger.InitWriter(logFile, cfg.LogLevel, cfg.LogFormat)

	ctx := logger.WithContext(context.Background(), logger.SessionKey, "tui")

	backend, closeBackend, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeBackend() }()

	eng, err := engine.Default(cfg)
	if err != nil {
		return err
	}

	ctl := controller.New(ctx, eng, history.New(backend, history.DefaultKey))
	app := tui.New(ctx, ctl, eng.Name()+" · "+eng.GetModel())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
