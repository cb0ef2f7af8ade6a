// Package domain contains core domain types for the vocabulary quiz.
package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Question is a single multiple-choice entry of a category.
type Question struct {
	Text          string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Explanation   string            `json:"explanation"`
}

// wireQuestion detects missing keys, which a plain Question cannot tell apart from empty values.
type wireQuestion struct {
	Text          *string           `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer *string           `json:"correct_answer"`
	Explanation   *string           `json:"explanation"`
}

// Validate checks the structural shape of the question.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: question text is empty", ErrInvalidQuestion)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: need at least 2 options, got %d", ErrInvalidQuestion, len(q.Options))
	}
	if strings.TrimSpace(q.CorrectAnswer) == "" {
		return fmt.Errorf("%w: correct_answer is empty", ErrInvalidQuestion)
	}
	return nil
}

// SortedKeys returns the option letters in ascending order.
func (q Question) SortedKeys() []string {
	return slices.Sorted(maps.Keys(q.Options))
}

// Equal reports whether two questions carry the same content.
func (q Question) Equal(other Question) bool {
	return q.Text == other.Text &&
		q.CorrectAnswer == other.CorrectAnswer &&
		q.Explanation == other.Explanation &&
		maps.Equal(q.Options, other.Options)
}

// Clone returns a deep copy of the question.
func (q Question) Clone() Question {
	q.Options = maps.Clone(q.Options)
	return q
}

// Sanitized returns a copy with markup characters stripped from every displayed string.
func (q Question) Sanitized() Question {
	out := Question{
		Text:          Sanitize(q.Text),
		Options:       make(map[string]string, len(q.Options)),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   Sanitize(q.Explanation),
	}
	for k, v := range q.Options {
		out.Options[k] = Sanitize(v)
	}
	return out
}

// DecodeQuestion parses one raw JSON record and validates it.
// All four keys must be present; explanation may be empty.
func DecodeQuestion(raw []byte) (Question, error) {
	var w wireQuestion
	if err := json.Unmarshal(raw, &w); err != nil {
		return Question{}, fmt.Errorf("%w: %v", ErrInvalidQuestion, err)
	}
	switch {
	case w.Text == nil:
		return Question{}, fmt.Errorf("%w: missing key %q", ErrInvalidQuestion, "question")
	case w.Options == nil:
		return Question{}, fmt.Errorf("%w: missing key %q", ErrInvalidQuestion, "options")
	case w.CorrectAnswer == nil:
		return Question{}, fmt.Errorf("%w: missing key %q", ErrInvalidQuestion, "correct_answer")
	case w.Explanation == nil:
		return Question{}, fmt.Errorf("%w: missing key %q", ErrInvalidQuestion, "explanation")
	}

	q := Question{
		Text:          *w.Text,
		Options:       w.Options,
		CorrectAnswer: *w.CorrectAnswer,
		Explanation:   *w.Explanation,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// DecodeQuestions parses a JSON array of questions. The batch is rejected as a
// whole if any entry is malformed.
func DecodeQuestions(raw []byte) ([]Question, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array: %v", ErrInvalidQuestion, err)
	}

	out := make([]Question, 0, len(records))
	for i, rec := range records {
		q, err := DecodeQuestion(rec)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, q)
	}
	return out, nil
}

// CloneQuestions deep-copies a question list.
func CloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
