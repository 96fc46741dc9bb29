package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"writing-guru/api/internal/config"
	"writing-guru/api/internal/engine"
	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/store"
	"writing-guru/api/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(context.Background(), "config", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		logger.Fatal(ctx, "TELEGRAM_BOT_TOKEN is empty", errors.New("missing bot token"))
	}

	// --- History storage ---
	backend, closeBackend, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "history backend", err, "backend", cfg.HistoryBackend)
	}
	defer func() { _ = closeBackend() }()

	// --- Engines ---
	engines := engine.FromConfig(cfg)
	def, err := engines.ByName(cfg.LLMProvider)
	if err != nil {
		logger.Fatal(ctx, "llm provider", err)
	}
	// Менеджер движков (дефолт из LLM_PROVIDER, переключение по /engine)
	manager := engine.NewManager(def)

	// --- Telegram bot ---
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Fatal(ctx, "telegram", err)
	}
	bot.Debug = false
	logger.Info(ctx, "bot started", "username", bot.Self.UserName, "engine", def.Name(), "model", def.GetModel())

	r := &telegram.Router{
		Bot:        bot,
		Engines:    engines,
		EngManager: manager,
		Sessions:   telegram.NewSessions(backend, manager),
		Health:     backend,
	}

	// Генерация идёт до REQUEST_TIMEOUT, поэтому каждый апдейт в своей горутине;
	// в пределах чата параллельность ограничивает controller.
	runPolling(ctx, bot, func(upd tgbotapi.Update) {
		go r.HandleUpdate(ctx, upd)
	})
}

// ---------------- Polling loop -----------------

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// runPolling: устойчивый поллинг с backoff без os.Exit.
func runPolling(ctx context.Context, bot *tgbotapi.BotAPI, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30 // long polling timeout (sec)

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err), baseDelay, maxDelay)
			logger.Warn(ctx, "polling error", "error", err.Error(), "retry_in", d.String())
			sleep(ctx, d)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 {
			sleep(ctx, 200*time.Millisecond)
		}
	}
}

func clampDelay(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
