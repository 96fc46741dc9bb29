package writing

import (
	"errors"
	"testing"
)

func TestBuildValid(t *testing.T) {
	for _, f := range Formats {
		for _, g := range Grades {
			for _, wc := range WordCounts {
				req, err := Build("  Water Crisis ", f, g, wc)
				if err != nil {
					t.Fatalf("Build(%s, %s, %d) error = %v", f, g, wc, err)
				}
				if req.Topic != "Water Crisis" {
					t.Errorf("Topic = %q, want trimmed", req.Topic)
				}
				if req.Format != f || req.Grade != g || req.WordCount != wc {
					t.Errorf("Build() = %+v, fields not copied", req)
				}
			}
		}
	}
}

func TestBuildInvalid(t *testing.T) {
	tests := []struct {
		name      string
		topic     string
		format    Format
		grade     Grade
		wordCount int
	}{
		{name: "empty topic", topic: "", format: FormatEssay, grade: GradeSecondary, wordCount: 300},
		{name: "whitespace topic", topic: " \t\n ", format: FormatEssay, grade: GradeSecondary, wordCount: 300},
		{name: "unknown format", topic: "Diwali", format: "POEM", grade: GradeSecondary, wordCount: 300},
		{name: "empty format", topic: "Diwali", format: "", grade: GradeSecondary, wordCount: 300},
		{name: "unknown grade", topic: "Diwali", format: FormatNotice, grade: "COLLEGE", wordCount: 300},
		{name: "word count not allowed", topic: "Diwali", format: FormatReport, grade: GradeMiddle, wordCount: 301},
		{name: "zero word count", topic: "Diwali", format: FormatReport, grade: GradeMiddle, wordCount: 0},
		{name: "negative word count", topic: "Diwali", format: FormatReport, grade: GradeMiddle, wordCount: -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.topic, tt.format, tt.grade, tt.wordCount)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Build() error = %v, want validation error", err)
			}
			if errors.Is(err, ErrTransport) {
				t.Errorf("validation error also matches transport")
			}
		})
	}
}

func TestParseFormatAndGrade(t *testing.T) {
	if f, ok := ParseFormat(" notice "); !ok || f != FormatNotice {
		t.Errorf("ParseFormat(notice) = %q, %v", f, ok)
	}
	if _, ok := ParseFormat("poem"); ok {
		t.Errorf("ParseFormat(poem) accepted")
	}
	if g, ok := ParseGrade("senior secondary"); !ok || g != GradeSeniorSecondary {
		t.Errorf("ParseGrade(senior secondary) = %q, %v", g, ok)
	}
	if g, ok := ParseGrade("Middle (Class 6-8)"); !ok || g != GradeMiddle {
		t.Errorf("ParseGrade(label) = %q, %v", g, ok)
	}
	if FormatParagraph.Title() != "Paragraph" {
		t.Errorf("Title() = %q", FormatParagraph.Title())
	}
}

func TestDefaultFormBuildsOnceTopicSet(t *testing.T) {
	f := DefaultForm()
	if !f.Blank() {
		t.Fatal("default form should be blank")
	}
	f.Topic = "Annual Sports Day"
	if _, err := f.Build(); err != nil {
		t.Fatalf("Build() error = %v", err)
	}
}
