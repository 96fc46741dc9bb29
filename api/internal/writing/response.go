package writing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeResponse parses the raw model output and checks it against the
// expected shape. Nothing is repaired: a short tip list is an error.
func DecodeResponse(raw string) (Response, error) {
	txt := stripCodeFences(raw)
	if txt == "" {
		return Response{}, NewError(CodeMalformedResponse, "empty response")
	}

	var r Response
	if err := json.Unmarshal([]byte(txt), &r); err != nil {
		return Response{}, WrapError(err, CodeMalformedResponse, "bad JSON")
	}
	if err := r.Validate(); err != nil {
		return Response{}, err
	}
	return r, nil
}

func (r Response) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return NewError(CodeMalformedResponse, "content is missing")
	}
	if r.TeacherTips == nil {
		return NewError(CodeMalformedResponse, "teacherTips is missing")
	}
	if len(r.TeacherTips) != TipsCount {
		return NewError(CodeMalformedResponse, fmt.Sprintf("teacherTips has %d items, want %d", len(r.TeacherTips), TipsCount))
	}
	for i, t := range r.TeacherTips {
		if strings.TrimSpace(t) == "" {
			return NewError(CodeMalformedResponse, fmt.Sprintf("teacherTips[%d] is empty", i))
		}
	}
	return nil
}

// модели иногда оборачивают JSON в ```json ... ```
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:] // язык после ``` (json, JSON, ...)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
