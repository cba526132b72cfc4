// Package dispatch turns content store mutations into outbound RPC pushes to
// the connected client. Every push is fire-and-forget from the mutation's
// point of view: the store change has already committed when a push is
// attempted, and a missing peer or transport failure only softens the
// human-readable acknowledgment, it never rolls anything back.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/tutormesh/content"
	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/room"
)

// RPC method names the client listens on.
const (
	// FlashCardMethod receives both "show" and "flip" flash card events.
	FlashCardMethod = "client.flashcard"
	// QuizMethod receives "show" quiz events.
	QuizMethod = "client.quiz"
)

// showFlashCardPayload announces a newly created flash card.
type showFlashCardPayload struct {
	Action   string `json:"action"`
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Index    int    `json:"index"`
}

// flipFlashCardPayload announces a flipped flash card.
type flipFlashCardPayload struct {
	Action string `json:"action"`
	ID     string `json:"id"`
}

// showQuizPayload announces a newly created quiz. Answer correctness is
// deliberately absent so the client never learns the solutions.
type showQuizPayload struct {
	Action    string             `json:"action"`
	ID        string             `json:"id"`
	Questions []quizQuestionView `json:"questions"`
}

type quizQuestionView struct {
	ID      string           `json:"id"`
	Text    string           `json:"text"`
	Answers []quizAnswerView `json:"answers"`
}

type quizAnswerView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Options configures a Dispatcher.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Dispatcher pushes content changes to the single connected peer and formats
// the acknowledgment text returned to the conversational layer.
type Dispatcher struct {
	room   room.Room
	logger logging.Logger
}

// New creates a Dispatcher bound to a room.
func New(r room.Room, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Dispatcher{room: r, logger: opts.Logger}
}

// PushFlashCardCreated announces a new card to the peer. The returned string
// is the acknowledgment for the agent; when no peer is connected it carries a
// caveat instead of an error because the card itself was already created.
func (d *Dispatcher) PushFlashCardCreated(ctx context.Context, card content.FlashCard, index int) string {
	ack := fmt.Sprintf("I've created a flash card with the question: '%s'", card.Question)
	caveat := "Created a flash card, but no participants found to send it to."
	payload := showFlashCardPayload{
		Action:   "show",
		ID:       card.ID,
		Question: card.Question,
		Answer:   card.Answer,
		Index:    index,
	}
	return d.push(ctx, FlashCardMethod, payload, ack, caveat)
}

// PushFlashCardFlipped announces a flipped card to the peer.
func (d *Dispatcher) PushFlashCardFlipped(ctx context.Context, card content.FlashCard) string {
	side := "question"
	if card.IsFlipped {
		side = "answer"
	}
	ack := fmt.Sprintf("I've flipped the flash card to show the %s", side)
	caveat := "Flipped the flash card, but no participants found to send it to."
	return d.push(ctx, FlashCardMethod, flipFlashCardPayload{Action: "flip", ID: card.ID}, ack, caveat)
}

// PushQuizCreated announces a new quiz to the peer, stripped of correctness
// flags.
func (d *Dispatcher) PushQuizCreated(ctx context.Context, quiz content.Quiz) string {
	ack := fmt.Sprintf("I've created a quiz with %d questions. Please answer them when you're ready.", len(quiz.Questions))
	caveat := "Created a quiz, but no participants found to send it to."

	questions := make([]quizQuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		view := quizQuestionView{ID: q.ID, Text: q.Text, Answers: make([]quizAnswerView, 0, len(q.Answers))}
		for _, a := range q.Answers {
			view.Answers = append(view.Answers, quizAnswerView{ID: a.ID, Text: a.Text})
		}
		questions = append(questions, view)
	}
	return d.push(ctx, QuizMethod, showQuizPayload{Action: "show", ID: quiz.ID, Questions: questions}, ack, caveat)
}

// push resolves the peer, serializes the payload and performs the RPC. All
// failure modes downgrade: no peer yields the caveat text, a transport
// failure appends an informational note to the acknowledgment.
func (d *Dispatcher) push(ctx context.Context, method string, payload any, ack, caveat string) string {
	peer, err := room.FirstRemoteParticipant(d.room)
	if err != nil {
		d.logger.Warn("dispatch.push.no_peer", "method", method)
		return caveat
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Payload structs only hold strings/ints, so this should not happen.
		d.logger.Error("dispatch.push.marshal_failed", "method", method, "error", err.Error())
		return caveat
	}

	d.logger.Info("dispatch.push", "method", method, "destination", peer.Identity, "payload", string(data))
	if _, err := d.room.PerformRPC(ctx, peer.Identity, method, string(data)); err != nil {
		d.logger.Warn("dispatch.push.rpc_failed", "method", method, "error", err.Error())
		return fmt.Sprintf("%s However, sending it to the client failed.", ack)
	}
	return ack
}
