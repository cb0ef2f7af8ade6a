package quiz

import (
	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/speech"
)

// Choice is one answer option as displayed.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// View is the display form of a session: sanitized text, options in letter order.
type View struct {
	QuizID   string              `json:"quiz_id"`
	Category string              `json:"category"`
	State    domain.SessionState `json:"state"`
	Finished bool                `json:"finished"`
	Question string              `json:"question,omitempty"`
	Options  []Choice            `json:"options,omitempty"`
	Progress domain.Progress     `json:"progress"`
	Voice    string              `json:"voice"`
}

// NewView renders session for display.
func NewView(session *domain.QuizSession) View {
	v := View{
		QuizID:   session.ID,
		Category: session.Category,
		State:    session.State(),
		Progress: session.Progress(),
		Voice:    speech.VoiceFor(session.Category),
	}

	q, ok := session.CurrentQuestion()
	if !ok {
		v.Finished = true
		return v
	}

	q = q.Sanitized()
	v.Question = q.Text
	for _, letter := range q.SortedKeys() {
		v.Options = append(v.Options, Choice{Letter: letter, Text: q.Options[letter]})
	}
	return v
}
