package writing

import (
	"strings"
	"time"
)

// Format: тип письменной работы. Значения совпадают с тем, что хранится в истории.
type Format string

const (
	FormatEssay     Format = "ESSAY"
	FormatParagraph Format = "PARAGRAPH"
	FormatReport    Format = "REPORT"
	FormatNotice    Format = "NOTICE"
)

// Formats in display order.
var Formats = []Format{FormatEssay, FormatParagraph, FormatReport, FormatNotice}

func (f Format) Valid() bool {
	switch f {
	case FormatEssay, FormatParagraph, FormatReport, FormatNotice:
		return true
	}
	return false
}

// Title returns "Essay" for ESSAY etc.
func (f Format) Title() string {
	s := string(f)
	if s == "" {
		return ""
	}
	return s[:1] + strings.ToLower(s[1:])
}

// Layout describes the board format the model must follow.
func (f Format) Layout() string {
	switch f {
	case FormatNotice:
		return "Box format: School Name, NOTICE, Date, Heading, Body, Name/Designation."
	case FormatReport:
		return "Headline, Byline (By [Name]), Date & Place, three paragraphs (Intro, Details, Conclusion)."
	case FormatEssay:
		return "Clear Introduction, 2-3 body paragraphs, and a strong Conclusion."
	case FormatParagraph:
		return "A single cohesive block of text focusing on one idea."
	}
	return ""
}

func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToUpper(strings.TrimSpace(s)))
	return f, f.Valid()
}

// Grade: ступень обучения; Label уходит в промпт и в UI.
type Grade string

const (
	GradePrimary         Grade = "PRIMARY"
	GradeMiddle          Grade = "MIDDLE"
	GradeSecondary       Grade = "SECONDARY"
	GradeSeniorSecondary Grade = "SENIOR_SECONDARY"
)

var Grades = []Grade{GradePrimary, GradeMiddle, GradeSecondary, GradeSeniorSecondary}

func (g Grade) Valid() bool {
	switch g {
	case GradePrimary, GradeMiddle, GradeSecondary, GradeSeniorSecondary:
		return true
	}
	return false
}

func (g Grade) Label() string {
	switch g {
	case GradePrimary:
		return "Primary (Class 1-5)"
	case GradeMiddle:
		return "Middle (Class 6-8)"
	case GradeSecondary:
		return "Secondary (Class 9-10)"
	case GradeSeniorSecondary:
		return "Senior Secondary (Class 11-12)"
	}
	return ""
}

// ParseGrade accepts either the value ("SECONDARY") or the label.
func ParseGrade(s string) (Grade, bool) {
	s = strings.TrimSpace(s)
	g := Grade(strings.ToUpper(strings.ReplaceAll(s, " ", "_")))
	if g.Valid() {
		return g, true
	}
	for _, x := range Grades {
		if strings.EqualFold(x.Label(), s) {
			return x, true
		}
	}
	return g, false
}

// WordCounts: допустимые целевые объёмы.
var WordCounts = []int{100, 150, 200, 250, 300, 400, 500}

const (
	DefaultFormat    = FormatEssay
	DefaultGrade     = GradeSecondary
	DefaultWordCount = 200

	// TipsCount: сколько советов учителя обязан вернуть провайдер.
	TipsCount = 3
)

func ValidWordCount(n int) bool {
	for _, w := range WordCounts {
		if w == n {
			return true
		}
	}
	return false
}

// Request is built by Build and never mutated afterwards.
type Request struct {
	Topic     string
	Format    Format
	Grade     Grade
	WordCount int
}

type Response struct {
	Content     string   `json:"content"`
	TeacherTips []string `json:"teacherTips"`
}

// HistoryEntry: успешный результат генерации, сохранённый в истории.
type HistoryEntry struct {
	Response
	Topic     string    `json:"topic"`
	Format    Format    `json:"format"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
