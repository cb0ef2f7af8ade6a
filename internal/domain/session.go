package domain

import (
	"math/rand/v2"
	"strings"
	"time"
)

// SessionState is the lifecycle position of a quiz session.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateFinished   SessionState = "finished"
)

// ShuffleFunc permutes n elements through swap. rand.Shuffle satisfies it.
type ShuffleFunc func(n int, swap func(i, j int))

// QuizSession holds one user's traversal of a shuffled copy of a category.
// The question list is private to the session and never shared with the store.
type QuizSession struct {
	ID           string
	UserID       string
	SessionID    string
	Category     string
	Questions    []Question
	CurrentIndex int
	Answered     int
	Correct      int
	// Scored is set once the question at CurrentIndex has counted toward the tallies.
	Scored    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AnswerResult is the outcome of a submitted answer.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	Selected      string `json:"selected"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation"`
}

// Progress summarizes where a session stands.
type Progress struct {
	Index    int `json:"index"`
	Total    int `json:"total"`
	Answered int `json:"answered"`
	Correct  int `json:"correct"`
}

// NewQuizSession creates an in-progress session over a shuffled copy of questions.
// A nil shuffle uses a uniform Fisher-Yates permutation.
func NewQuizSession(id, userID, sessionID, category string, questions []Question, shuffle ShuffleFunc, now time.Time) *QuizSession {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}

	working := CloneQuestions(questions)
	shuffle(len(working), func(i, j int) {
		working[i], working[j] = working[j], working[i]
	})

	return &QuizSession{
		ID:        id,
		UserID:    userID,
		SessionID: sessionID,
		Category:  category,
		Questions: working,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// State returns the session lifecycle state.
func (s *QuizSession) State() SessionState {
	if s == nil {
		return StateNotStarted
	}
	if s.CurrentIndex >= len(s.Questions) {
		return StateFinished
	}
	return StateInProgress
}

// CurrentQuestion returns the question at the current index.
// The second value is false once the session is finished.
func (s *QuizSession) CurrentQuestion() (Question, bool) {
	if s.State() != StateInProgress || s.CurrentIndex < 0 {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// SubmitAnswer scores the selected letter against the current question.
// The index is left untouched; advancing is a separate Next call.
// Only the first answer to a question counts toward the tallies.
func (s *QuizSession) SubmitAnswer(letter string) (AnswerResult, error) {
	q, ok := s.CurrentQuestion()
	if !ok {
		return AnswerResult{}, ErrSessionFinished
	}

	selected := strings.TrimSpace(letter)
	correct := strings.TrimSpace(q.CorrectAnswer)
	res := AnswerResult{
		Correct:       selected == correct,
		Selected:      selected,
		CorrectAnswer: correct,
		Explanation:   q.Explanation,
	}

	if s.Scored {
		return res, nil
	}
	s.Scored = true
	s.Answered++
	if res.Correct {
		s.Correct++
	}
	return res, nil
}

// Next advances to the following question. Advancing past the end is a no-op.
func (s *QuizSession) Next() bool {
	if s.State() != StateInProgress {
		return false
	}
	s.CurrentIndex++
	s.Scored = false
	return true
}

// RemoveCurrent drops the current question from the working list.
// The index stays put so the following question slides into place.
func (s *QuizSession) RemoveCurrent() (Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	removed := s.Questions[s.CurrentIndex]
	s.Questions = append(s.Questions[:s.CurrentIndex:s.CurrentIndex], s.Questions[s.CurrentIndex+1:]...)
	s.Scored = false
	return removed, true
}

// Progress returns the current position and tallies.
func (s *QuizSession) Progress() Progress {
	return Progress{
		Index:    s.CurrentIndex,
		Total:    len(s.Questions),
		Answered: s.Answered,
		Correct:  s.Correct,
	}
}
