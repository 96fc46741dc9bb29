package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"writing-guru/api/internal/controller"
	"writing-guru/api/internal/engine"
	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/writing"
)

// Sender: часть *tgbotapi.BotAPI, которой пользуется роутер.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Pinger reports storage health for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Router struct {
	Bot        Sender
	Engines    engine.Engines
	EngManager *engine.Manager
	Sessions   *Sessions
	Health     Pinger
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// callback-кнопки
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	cid := upd.Message.Chat.ID
	ctx = logger.WithContext(ctx, logger.ChatIDKey, cid)

	if upd.Message.IsCommand() {
		r.HandleCommand(ctx, upd.Message)
		return
	}
	if strings.TrimSpace(upd.Message.Text) != "" {
		r.submitTopic(ctx, cid, upd.Message.Text)
	}
}

func (r *Router) HandleCommand(ctx context.Context, m *tgbotapi.Message) {
	cid := m.Chat.ID
	ctl := r.session(ctx, cid)
	switch m.Command() {
	case "start", "help":
		eng := r.EngManager.Get(cid)
		r.send(cid, helpText+"\n\n"+settingsText(ctl.State().Form, eng.Name(), eng.GetModel()))
	case "format":
		r.sendKeyboard(cid, "Choose a format:", formatKeyboard(ctl.State().Form.Format))
	case "grade":
		r.sendKeyboard(cid, "Who is the reader?", gradeKeyboard(ctl.State().Form.Grade))
	case "words":
		r.sendKeyboard(cid, "How long should it be?", wordsKeyboard(ctl.State().Form.WordCount))
	case "history":
		entries := ctl.State().History
		if len(entries) == 0 {
			r.send(cid, "No saved drafts yet. Send a topic to write your first one.")
			return
		}
		r.sendKeyboard(cid, "Your recent drafts (newest first):", historyKeyboard(entries))
	case "engine":
		r.handleEngineCommand(cid, m.CommandArguments())
	case "health":
		r.send(cid, r.healthText(ctx))
	default:
		r.send(cid, "Unknown command. Try /help")
	}
}

// handleEngineCommand парсит /engine и переключает движок для чата.
// Форматы:
//
//	/engine gemini [model]
//	/engine openai [model]
func (r *Router) handleEngineCommand(chatID int64, args string) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		cur := r.EngManager.Get(chatID)
		r.send(chatID, "Current engine: "+cur.Name()+" ("+cur.GetModel()+")\nUsage: /engine gemini|openai [model]")
		return
	}
	var model string
	if len(fields) > 1 {
		model = fields[1]
	}
	eng, err := r.Engines.WithModel(strings.ToLower(fields[0]), model)
	if err != nil || eng == nil {
		r.send(chatID, "Unknown engine. Available: gemini | openai")
		return
	}
	r.EngManager.Set(chatID, eng)
	r.send(chatID, "✅ Engine: "+eng.Name()+" ("+eng.GetModel()+")")
}

func (r *Router) healthText(ctx context.Context) string {
	if r.Health == nil {
		return "✅ OK"
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.Health.Ping(ctx); err != nil {
		logger.Error(ctx, "health: storage ping failed", err)
		return "⚠️ Storage is not reachable, drafts will not be saved."
	}
	return "✅ OK"
}

func (r *Router) submitTopic(ctx context.Context, chatID int64, text string) {
	ctl := r.session(ctx, chatID)
	form := ctl.State().Form
	form.Topic = text

	st := ctl.Submit(ctx, form)
	switch st.Status {
	case controller.Submitting:
		// Submit был no-op: предыдущая генерация ещё идёт
		r.send(chatID, "⏳ Still writing your previous draft, please wait.")
	case controller.Success:
		r.sendDraft(chatID, st.Form.Topic, st.Form.Format, *st.Result)
	case controller.Failed:
		r.send(chatID, "❌ "+st.Message)
	}
}

func (r *Router) session(ctx context.Context, chatID int64) *controller.Controller {
	return r.Sessions.Get(ctx, chatID, func(c *controller.Controller) {
		c.OnChange(func(st controller.State) {
			if st.Status == controller.Submitting {
				_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
			}
		})
	})
}

func (r *Router) showHistoryEntry(ctx context.Context, chatID int64, id string) error {
	ctl := r.session(ctx, chatID)
	resp, err := ctl.Select(id)
	if err != nil {
		return err
	}
	var topic string
	var format writing.Format
	for _, e := range ctl.State().History {
		if e.ID == id {
			topic, format = e.Topic, e.Format
			break
		}
	}
	r.sendDraft(chatID, topic, format, resp)
	return nil
}

func (r *Router) sendDraft(chatID int64, topic string, format writing.Format, resp writing.Response) {
	for _, part := range renderDraft(topic, format, resp) {
		r.send(chatID, part)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		logger.Error(context.Background(), "telegram: send failed", err, string(logger.ChatIDKey), chatID)
	}
}

func (r *Router) sendKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		logger.Error(context.Background(), "telegram: send failed", err, string(logger.ChatIDKey), chatID)
	}
}

func isNotFound(err error) bool { return errors.Is(err, writing.ErrNotFound) }
