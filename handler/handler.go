// Package handler implements the RPC endpoints the client may invoke on the
// agent: flipping a flash card and submitting quiz answers. Payloads arrive
// as opaque JSON text and are decoded into typed requests; results follow
// the wire convention existing clients expect: "success", no content, or a
// string prefixed "error: ". Handlers never fail the session: every failure
// mode is converted to a logged warning or a short textual status.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hupe1980/tutormesh/grading"
	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/room"
	"github.com/hupe1980/tutormesh/session"
)

// RPC method names registered on the room.
const (
	// FlipFlashCardMethod is called when the user flips a card in the client UI.
	FlipFlashCardMethod = "agent.flipFlashCard"
	// SubmitQuizMethod is called when the user submits quiz answers.
	SubmitQuizMethod = "agent.submitQuiz"
)

// SuccessResult is the result string reported for a handled quiz submission.
const SuccessResult = "success"

type flipFlashCardRequest struct {
	ID string `json:"id"`
}

type submitQuizRequest struct {
	ID      string            `json:"id"`
	Answers map[string]string `json:"answers"`
}

// Options configures the Handlers.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
	// ConfirmFlips speaks a short confirmation after a client-initiated
	// flip. Off by default: the client already toggled its own view.
	ConfirmFlips bool
}

// Handlers holds the inbound endpoints for one session.
type Handlers struct {
	session      *session.Session
	logger       logging.Logger
	confirmFlips bool
}

// New creates the handlers for a session.
func New(sess *session.Session, optFns ...func(o *Options)) *Handlers {
	opts := Options{Logger: sess.Logger()}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handlers{session: sess, logger: opts.Logger, confirmFlips: opts.ConfirmFlips}
}

// Register registers both endpoints on the room.
func (h *Handlers) Register(r room.Room) {
	h.logger.Info("handler.register", "methods", []string{FlipFlashCardMethod, SubmitQuizMethod})
	r.RegisterRPCMethod(FlipFlashCardMethod, h.HandleFlipFlashCard)
	r.RegisterRPCMethod(SubmitQuizMethod, h.HandleSubmitQuiz)
}

// HandleFlipFlashCard processes a client-initiated flip. A malformed payload
// yields an error result; a missing or unknown card id is logged and
// swallowed so a stale client view cannot break the conversation.
func (h *Handlers) HandleFlipFlashCard(ctx context.Context, inv room.RPCInvocation) (string, error) {
	h.logger.Info("handler.flip_flash_card", "caller", inv.CallerIdentity, "payload", inv.Payload)

	var req flipFlashCardRequest
	if err := json.Unmarshal([]byte(inv.Payload), &req); err != nil {
		h.logger.Error("handler.flip_flash_card.bad_payload", "payload", inv.Payload, "error", err.Error())
		return fmt.Sprintf("error: %v", err), nil
	}
	if req.ID == "" {
		h.logger.Error("handler.flip_flash_card.missing_id", "payload", inv.Payload)
		return "", nil
	}

	card, err := h.session.Store().FlipFlashCard(req.ID)
	if err != nil {
		h.logger.Error("handler.flip_flash_card.not_found", "card_id", req.ID)
		return "", nil
	}
	h.logger.Info("handler.flip_flash_card.flipped", "card_id", card.ID, "is_flipped", card.IsFlipped)

	if h.confirmFlips {
		side := "question"
		if card.IsFlipped {
			side = "answer"
		}
		if err := h.session.Speaker().Say(ctx, fmt.Sprintf("The card now shows the %s.", side)); err != nil {
			h.logger.Warn("handler.flip_flash_card.say_failed", "error", err.Error())
		}
	}
	return "", nil
}

// HandleSubmitQuiz grades a submission, speaks the full report to the user
// and turns every incorrectly answered question into a fresh flash card that
// is pushed to the client.
func (h *Handlers) HandleSubmitQuiz(ctx context.Context, inv room.RPCInvocation) (string, error) {
	h.logger.Info("handler.submit_quiz", "caller", inv.CallerIdentity, "payload", inv.Payload)

	var req submitQuizRequest
	if err := json.Unmarshal([]byte(inv.Payload), &req); err != nil {
		h.logger.Error("handler.submit_quiz.bad_payload", "payload", inv.Payload, "error", err.Error())
		return fmt.Sprintf("error: %v", err), nil
	}
	if req.ID == "" {
		h.logger.Error("handler.submit_quiz.missing_id", "payload", inv.Payload)
		return "error: No quiz ID found in payload", nil
	}

	results, err := grading.Check(h.session.Store(), req.ID, req.Answers)
	if err != nil {
		h.logger.Error("handler.submit_quiz.not_found", "quiz_id", req.ID)
		return "error: Quiz not found", nil
	}

	summary := grading.Score(results)
	feedback := make([]string, 0, len(results))
	for _, result := range results {
		feedback = append(feedback, h.questionFeedback(ctx, result))
	}

	report := summary.String()
	if len(feedback) > 0 {
		report = report + "\n\n" + strings.Join(feedback, "\n\n")
	}
	if err := h.session.Speaker().Say(ctx, report); err != nil {
		h.logger.Warn("handler.submit_quiz.say_failed", "error", err.Error())
	}
	return SuccessResult, nil
}

// questionFeedback formats the feedback line for one graded question and,
// when the answer was wrong and a correct answer exists, creates and pushes
// a remedial flash card.
func (h *Handlers) questionFeedback(ctx context.Context, result grading.Result) string {
	if result.IsCorrect() {
		return fmt.Sprintf("Question: %s\nYour answer: %s ✓ Correct!", result.Question.Text, result.Selected.Text)
	}

	selectedText := "None"
	if result.Selected != nil {
		selectedText = result.Selected.Text
	}
	if result.Correct == nil {
		// No answer is flagged correct; there is nothing to teach from.
		return fmt.Sprintf("Question: %s\nYour answer: %s ✗ Incorrect.", result.Question.Text, selectedText)
	}

	card, index := h.session.Store().AddFlashCard(result.Question.Text, result.Correct.Text)
	ack := h.session.Dispatcher().PushFlashCardCreated(ctx, card, index)
	h.logger.Debug("handler.submit_quiz.remedial_card", "card_id", card.ID, "ack", ack)

	return fmt.Sprintf("Question: %s\nYour answer: %s ✗ Incorrect. The correct answer is: %s",
		result.Question.Text, selectedText, result.Correct.Text)
}
