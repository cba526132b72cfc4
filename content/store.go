package content

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a flash card or quiz identifier is unknown to
// the store. Callers treat it as a no-op signal, not a fatal condition.
var ErrNotFound = errors.New("content: not found")

// FlashCard is a two-sided study card. It starts face up (question showing)
// and is flipped by toggling IsFlipped; it is never removed within a session.
type FlashCard struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	IsFlipped bool   `json:"is_flipped"`
}

// QuizAnswer is a single answer option. Immutable after creation.
type QuizAnswer struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuizQuestion is a multiple-choice question with its answer options in
// presentation order.
type QuizQuestion struct {
	ID      string       `json:"id"`
	Text    string       `json:"text"`
	Answers []QuizAnswer `json:"answers"`
}

// Quiz is an ordered set of questions. Immutable after creation; the only
// post-creation interaction is grading, which never mutates the quiz.
type Quiz struct {
	ID        string         `json:"id"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizAnswerInput describes an answer option before the store has assigned
// it an identifier.
type QuizAnswerInput struct {
	Text      string `json:"text" description:"The answer text"`
	IsCorrect bool   `json:"is_correct" description:"Whether this is the correct answer"`
}

// QuizQuestionInput describes a question before the store has assigned
// identifiers to it and its answers.
type QuizQuestionInput struct {
	Text    string            `json:"text" description:"The question text"`
	Answers []QuizAnswerInput `json:"answers" description:"The answer options"`
}

// Store is the in-memory registry of flash cards and quizzes for a single
// session. All mutation goes through the store under one mutex, so handlers
// running on different goroutines cannot corrupt the collections. Lookups
// return copies to keep internal state from being mutated externally.
//
// Contract:
//   - Every identifier (card, quiz, question, answer) is unique for the
//     lifetime of the session and assigned exactly once, at creation.
//   - A flash card's index never changes once assigned; clients use it for
//     display ordering.
//   - Nothing is ever deleted.
type Store struct {
	mu         sync.RWMutex
	flashCards []FlashCard
	quizzes    []Quiz
}

// NewStore creates an empty content store.
func NewStore() *Store {
	return &Store{}
}

// AddFlashCard allocates an identifier, appends the card unflipped and
// returns it together with its stable index.
func (s *Store) AddFlashCard(question, answer string) (FlashCard, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card := FlashCard{ID: uuid.NewString(), Question: question, Answer: answer}
	s.flashCards = append(s.flashCards, card)
	return card, len(s.flashCards) - 1
}

// FlashCard returns the card with the given id, or false if unknown.
func (s *Store) FlashCard(id string) (FlashCard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, card := range s.flashCards {
		if card.ID == id {
			return card, true
		}
	}
	return FlashCard{}, false
}

// FlashCards returns a copy of all cards in creation order.
func (s *Store) FlashCards() []FlashCard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cards := make([]FlashCard, len(s.flashCards))
	copy(cards, s.flashCards)
	return cards
}

// FlipFlashCard toggles IsFlipped on the card with the given id and returns
// the updated card. Flipping twice restores the original state. Returns
// ErrNotFound for an unknown id.
func (s *Store) FlipFlashCard(id string) (FlashCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.flashCards {
		if s.flashCards[i].ID == id {
			s.flashCards[i].IsFlipped = !s.flashCards[i].IsFlipped
			return s.flashCards[i], nil
		}
	}
	return FlashCard{}, ErrNotFound
}

// AddQuiz builds a quiz from the given question inputs, allocating fresh
// identifiers for the quiz, every question and every answer. Input order is
// preserved throughout.
func (s *Store) AddQuiz(questions []QuizQuestionInput) Quiz {
	quiz := Quiz{ID: uuid.NewString(), Questions: make([]QuizQuestion, 0, len(questions))}
	for _, q := range questions {
		question := QuizQuestion{
			ID:      uuid.NewString(),
			Text:    q.Text,
			Answers: make([]QuizAnswer, 0, len(q.Answers)),
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, QuizAnswer{
				ID:        uuid.NewString(),
				Text:      a.Text,
				IsCorrect: a.IsCorrect,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes = append(s.quizzes, quiz)
	return cloneQuiz(quiz)
}

// Quiz returns the quiz with the given id, or false if unknown. The returned
// quiz is a deep copy.
func (s *Store) Quiz(id string) (Quiz, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, quiz := range s.quizzes {
		if quiz.ID == id {
			return cloneQuiz(quiz), true
		}
	}
	return Quiz{}, false
}

// FlashCardCount returns the number of cards created so far.
func (s *Store) FlashCardCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.flashCards)
}

func cloneQuiz(quiz Quiz) Quiz {
	clone := Quiz{ID: quiz.ID, Questions: make([]QuizQuestion, len(quiz.Questions))}
	for i, q := range quiz.Questions {
		answers := make([]QuizAnswer, len(q.Answers))
		copy(answers, q.Answers)
		clone.Questions[i] = QuizQuestion{ID: q.ID, Text: q.Text, Answers: answers}
	}
	return clone
}
