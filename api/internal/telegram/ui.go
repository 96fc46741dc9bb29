package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"writing-guru/api/internal/writing"
)

// Telegram режет сообщения на 4096 символах, оставляем запас.
const maxMessageLen = 3900

const (
	cbFormat  = "fmt"
	cbGrade   = "grd"
	cbWords   = "wc"
	cbHistory = "hist"
)

func callbackData(kind, value string) string { return kind + ":" + value }

// parseCallback splits "kind:value". Unknown kinds are rejected.
func parseCallback(data string) (kind, value string, ok bool) {
	kind, value, found := strings.Cut(data, ":")
	if !found || value == "" {
		return "", "", false
	}
	switch kind {
	case cbFormat, cbGrade, cbWords, cbHistory:
		return kind, value, true
	}
	return "", "", false
}

func mark(label string, selected bool) string {
	if selected {
		return "✅ " + label
	}
	return label
}

func formatKeyboard(cur writing.Format) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, f := range writing.Formats {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(mark(f.Title(), f == cur), callbackData(cbFormat, string(f))))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func gradeKeyboard(cur writing.Grade) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(writing.Grades))
	for _, g := range writing.Grades {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark(g.Label(), g == cur), callbackData(cbGrade, string(g))),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func wordsKeyboard(cur int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range writing.WordCounts {
		s := strconv.Itoa(n)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(mark(s, n == cur), callbackData(cbWords, s)))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func historyKeyboard(entries []writing.HistoryEntry) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(entries))
	for i, e := range entries {
		label := fmt.Sprintf("%d. %s · %s", i+1, truncateRunes(e.Topic, 40), e.Format.Title())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackData(cbHistory, e.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func settingsText(f writing.Form, engineName, model string) string {
	var b strings.Builder
	b.WriteString("Current settings:\n")
	fmt.Fprintf(&b, "• Format: %s\n", f.Format.Title())
	fmt.Fprintf(&b, "• Grade: %s\n", f.Grade.Label())
	fmt.Fprintf(&b, "• Length: about %d words\n", f.WordCount)
	fmt.Fprintf(&b, "• Engine: %s (%s)", engineName, model)
	return b.String()
}

const helpText = `Send me a topic and I will write a model answer for school English practice, with three teacher tips.

Commands:
/format - essay, paragraph, report or notice
/grade - class level of the reader
/words - target length
/history - your last 5 drafts
/engine gemini|openai [model] - switch the generator
/health - check storage`

// renderDraft formats one generated draft as one or more messages.
func renderDraft(topic string, format writing.Format, resp writing.Response) []string {
	var b strings.Builder
	if topic != "" {
		fmt.Fprintf(&b, "📝 %s: %s\n\n", format.Title(), topic)
	}
	b.WriteString(strings.TrimSpace(resp.Content))
	b.WriteString("\n\n💡 Teacher Tips:\n")
	for i, tip := range resp.TeacherTips {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(tip))
	}
	return chunkText(strings.TrimRight(b.String(), "\n"), maxMessageLen)
}

// chunkText splits s into pieces of at most limit runes, preferring to cut
// at a line break in the second half of the window.
func chunkText(s string, limit int) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	runes := []rune(s)
	var out []string
	for len(runes) > limit {
		cut := limit
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		if part := strings.TrimRight(string(runes[:cut]), "\n"); part != "" {
			out = append(out, part)
		}
		runes = runes[cut:]
	}
	if rest := string(runes); strings.TrimSpace(rest) != "" {
		out = append(out, rest)
	}
	return out
}
