package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"writing-guru/api/internal/controller"
	"writing-guru/api/internal/history"
)

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if a.view == viewHistory {
		return a.renderHistory()
	}
	return a.renderForm()
}

func (a *App) renderHeader() string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("Writing Guru"))
	if a.engine != "" {
		b.WriteString("  ")
		b.WriteString(styleSubtitle.Render(a.engine))
	}
	b.WriteString("\n")
	b.WriteString(styleSubtitle.Render("Model answers for school English practice"))
	b.WriteString("\n\n")
	return b.String()
}

func (a *App) renderForm() string {
	st := a.ctl.State()
	var b strings.Builder
	b.WriteString(a.renderHeader())

	b.WriteString(a.fieldLine(fieldTopic, "Topic", a.input.View()))
	b.WriteString(a.fieldLine(fieldFormat, "Format", picker(st.Form.Format.Title())))
	b.WriteString(a.fieldLine(fieldGrade, "Grade", picker(st.Form.Grade.Label())))
	b.WriteString(a.fieldLine(fieldWords, "Words", picker(strconv.Itoa(st.Form.WordCount))))
	b.WriteString("\n")

	switch {
	case a.pending || st.Status == controller.Submitting:
		fmt.Fprintf(&b, "%s Writing your %s…\n\n", a.spin.View(), strings.ToLower(st.Form.Format.Title()))
	case a.notice != "":
		b.WriteString(styleError.Render(a.notice))
		b.WriteString("\n\n")
	case st.Status == controller.Failed:
		b.WriteString(styleError.Render(st.Message))
		b.WriteString("\n\n")
	case a.info != "":
		b.WriteString(styleTips.Render(a.info))
		b.WriteString("\n\n")
	}

	if a.draft != nil {
		b.WriteString(styleBox.Render(a.viewport.View()))
		b.WriteString("\n")
	}

	b.WriteString(styleStatusBar.Render("tab next field · ←/→ change · enter write · ctrl+y copy · ctrl+h history · esc quit"))
	return b.String()
}

func (a *App) fieldLine(f field, label, value string) string {
	cursor := "  "
	l := styleLabel.Render(label)
	if a.focus == f {
		cursor = styleFocused.Render("› ")
		l = styleLabel.Foreground(colorSecondary).Render(label)
	}
	return cursor + l + value + "\n"
}

func picker(v string) string { return "‹ " + v + " ›" }

func (a *App) renderHistory() string {
	entries := a.ctl.State().History
	var b strings.Builder
	b.WriteString(a.renderHeader())
	b.WriteString(styleTitle.Render("Recent drafts"))
	b.WriteString("\n\n")

	if len(entries) == 0 {
		b.WriteString(styleSubtitle.Render("Nothing here yet. Write your first draft."))
		b.WriteString("\n")
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "%d. %s · %s · %s\n",
			i+1, truncate(e.Topic, 48), e.Format.Title(), e.CreatedAt.Local().Format("02 Jan 15:04"))
	}
	if a.notice != "" {
		b.WriteString("\n")
		b.WriteString(styleError.Render(a.notice))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleStatusBar.Render(fmt.Sprintf("1-%d open · esc back · ctrl+c quit", history.Limit)))
	return b.String()
}

// renderDraft lays out a draft and its tips for the viewport.
func renderDraft(d shown, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width-2, 10))
	var b strings.Builder
	if d.topic != "" {
		b.WriteString(styleFocused.Render(d.format.Title() + ": " + d.topic))
		b.WriteString("\n\n")
	}
	b.WriteString(wrap.Render(strings.TrimSpace(d.resp.Content)))
	b.WriteString("\n\n")
	b.WriteString(styleTips.Render("Teacher Tips"))
	b.WriteString("\n")
	for i, tip := range d.resp.TeacherTips {
		b.WriteString(wrap.Render(fmt.Sprintf("%d. %s", i+1, strings.TrimSpace(tip))))
		b.WriteString("\n")
	}
	return b.String()
}
