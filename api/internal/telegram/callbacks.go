package telegram

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"writing-guru/api/internal/logger"
	"writing-guru/api/internal/writing"
)

func (r *Router) handleCallback(ctx context.Context, cb tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		r.ack(cb.ID, "")
		return
	}
	cid := cb.Message.Chat.ID
	msgID := cb.Message.MessageID
	ctx = logger.WithContext(ctx, logger.ChatIDKey, cid)

	kind, value, ok := parseCallback(cb.Data)
	if !ok {
		r.ack(cb.ID, "")
		return
	}
	if kind == cbHistory {
		r.onHistory(ctx, cb.ID, cid, value)
		return
	}

	var (
		apply  func(*writing.Form)
		kb     tgbotapi.InlineKeyboardMarkup
		notice string
	)
	switch kind {
	case cbFormat:
		f, ok := writing.ParseFormat(value)
		if !ok {
			r.ack(cb.ID, "Unknown format")
			return
		}
		apply = func(form *writing.Form) { form.Format = f }
		kb, notice = formatKeyboard(f), "Format: "+f.Title()
	case cbGrade:
		g, ok := writing.ParseGrade(value)
		if !ok {
			r.ack(cb.ID, "Unknown grade")
			return
		}
		apply = func(form *writing.Form) { form.Grade = g }
		kb, notice = gradeKeyboard(g), "Grade: "+g.Label()
	case cbWords:
		n, err := strconv.Atoi(value)
		if err != nil || !writing.ValidWordCount(n) {
			r.ack(cb.ID, "Unsupported length")
			return
		}
		apply = func(form *writing.Form) { form.WordCount = n }
		kb, notice = wordsKeyboard(n), "Length: "+value+" words"
	default:
		r.ack(cb.ID, "")
		return
	}

	if !r.session(ctx, cid).UpdateForm(apply) {
		// генерация в процессе, форма заблокирована
		r.ack(cb.ID, "Please wait until the current draft is ready.")
		return
	}
	r.ack(cb.ID, notice)
	_, _ = r.Bot.Send(tgbotapi.NewEditMessageReplyMarkup(cid, msgID, kb))
}

func (r *Router) onHistory(ctx context.Context, cbID string, chatID int64, id string) {
	if err := r.showHistoryEntry(ctx, chatID, id); err != nil {
		if isNotFound(err) {
			r.ack(cbID, "That draft is no longer in your history.")
			return
		}
		logger.Error(ctx, "telegram: history select failed", err)
		r.ack(cbID, "Could not open this draft.")
		return
	}
	r.ack(cbID, "")
}

func (r *Router) ack(cbID, text string) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cbID, text))
}
