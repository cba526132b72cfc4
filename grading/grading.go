// Package grading computes correctness and aggregate scores for submitted
// quiz answers. Grading is a pure read over the content store: it never
// mutates the quiz and may be repeated any number of times with the same
// outcome.
package grading

import (
	"errors"
	"fmt"

	"github.com/hupe1980/tutormesh/content"
)

// ErrQuizNotFound is returned when the quiz id is unknown. Callers must not
// confuse this with a quiz that simply has zero questions, which grades to an
// empty result slice and a nil error.
var ErrQuizNotFound = errors.New("grading: quiz not found")

// QuizSource is the read surface grading needs from the content store.
type QuizSource interface {
	Quiz(id string) (content.Quiz, bool)
}

// Result is the graded outcome for a single question. Selected is nil when
// the question was left unanswered; Correct is nil when no answer option is
// flagged correct (a data-quality problem in the quiz content, tolerated
// here).
type Result struct {
	Question content.QuizQuestion
	Selected *content.QuizAnswer
	Correct  *content.QuizAnswer

	correct bool
}

// IsCorrect reports whether the selected answer itself is flagged correct.
func (r Result) IsCorrect() bool { return r.correct }

// Summary is an aggregate score. Both counts are exposed because the spoken
// report states both, not just a ratio.
type Summary struct {
	Correct int
	Total   int
}

// String renders the spoken summary line.
func (s Summary) String() string {
	return fmt.Sprintf("You got %d out of %d questions correct.", s.Correct, s.Total)
}

// Check grades userAnswers (questionID -> selected answerID) against the
// quiz with the given id. Results come back in stored question order, one
// entry per question. A question is graded correct only when the selected
// answer exists and that same answer is flagged correct.
//
// When several answers of one question are flagged correct, the first in
// stored order is reported as "the" correct answer. That situation is bad
// quiz authoring rather than intended behavior, but it is kept deterministic
// here instead of being rejected.
func Check(src QuizSource, quizID string, userAnswers map[string]string) ([]Result, error) {
	quiz, ok := src.Quiz(quizID)
	if !ok {
		return nil, ErrQuizNotFound
	}

	results := make([]Result, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		selectedID := userAnswers[question.ID]

		var selected, correct *content.QuizAnswer
		for i := range question.Answers {
			answer := &question.Answers[i]
			if selectedID != "" && answer.ID == selectedID {
				selected = answer
			}
			if answer.IsCorrect && correct == nil {
				correct = answer
			}
		}

		results = append(results, Result{
			Question: question,
			Selected: selected,
			Correct:  correct,
			correct:  selected != nil && selected.IsCorrect,
		})
	}
	return results, nil
}

// Score aggregates graded results into a Summary.
func Score(results []Result) Summary {
	summary := Summary{Total: len(results)}
	for _, r := range results {
		if r.IsCorrect() {
			summary.Correct++
		}
	}
	return summary
}
