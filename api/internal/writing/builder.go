package writing

import (
	"fmt"
	"strings"
)

// Form: сырые значения формы, как их ввёл пользователь.
type Form struct {
	Topic     string
	Format    Format
	Grade     Grade
	WordCount int
}

// DefaultForm is what a fresh session starts with.
func DefaultForm() Form {
	return Form{
		Format:    DefaultFormat,
		Grade:     DefaultGrade,
		WordCount: DefaultWordCount,
	}
}

func (f Form) Build() (Request, error) {
	return Build(f.Topic, f.Format, f.Grade, f.WordCount)
}

// Blank reports whether the topic is empty after trimming.
func (f Form) Blank() bool { return strings.TrimSpace(f.Topic) == "" }

// Build validates the parameters and returns an immutable Request.
// Every value is re-checked against its allowed set, whoever the caller is.
func Build(topic string, format Format, grade Grade, wordCount int) (Request, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Request{}, NewError(CodeValidation, "topic is required")
	}
	if !format.Valid() {
		return Request{}, NewError(CodeValidation, fmt.Sprintf("unknown writing format %q", format))
	}
	if !grade.Valid() {
		return Request{}, NewError(CodeValidation, fmt.Sprintf("unknown grade level %q", grade))
	}
	if !ValidWordCount(wordCount) {
		return Request{}, NewError(CodeValidation, fmt.Sprintf("word count %d is not one of %v", wordCount, WordCounts))
	}
	return Request{
		Topic:     topic,
		Format:    format,
		Grade:     grade,
		WordCount: wordCount,
	}, nil
}
