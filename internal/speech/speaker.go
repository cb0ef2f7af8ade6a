// Package speech provides the text-to-speech side channel of the quiz.
//
// Speaking is fire-and-forget: a Speaker never blocks its caller and never
// reports failure back. Problems are logged and the quiz carries on.
package speech

// Utterance is one piece of text to be read aloud for a user's tab.
type Utterance struct {
	UserID    string `json:"-"`
	SessionID string `json:"-"`
	Text      string `json:"text"`
	Voice     string `json:"voice"`
}

// Speaker plays utterances.
type Speaker interface {
	Speak(u Utterance)
}

// Nop discards every utterance.
type Nop struct{}

// Speak implements Speaker.
func (Nop) Speak(Utterance) {}

// Speech modes selected by configuration.
const (
	ModeBrowser = "browser"
	ModeCommand = "command"
	ModeOff     = "off"
)
