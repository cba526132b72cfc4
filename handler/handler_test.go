package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tutormesh/content"
	"github.com/hupe1980/tutormesh/dispatch"
	"github.com/hupe1980/tutormesh/room"
	"github.com/hupe1980/tutormesh/session"
)

func newTestSession(t *testing.T) (*session.Session, *room.MockRoom, *room.MockSpeaker) {
	t.Helper()
	mockRoom := room.NewMockRoom(room.Participant{Identity: "client-1"})
	speaker := room.NewMockSpeaker()
	sess := session.New(mockRoom, func(o *session.Options) {
		o.Speaker = speaker
	})
	return sess, mockRoom, speaker
}

func TestHandleFlipFlashCard(t *testing.T) {
	sess, mockRoom, _ := newTestSession(t)
	h := New(sess)
	h.Register(mockRoom)

	card, _ := sess.Store().AddFlashCard("q", "a")

	result, err := mockRoom.Invoke(context.Background(), "client-1", FlipFlashCardMethod, fmt.Sprintf(`{"id":%q}`, card.ID))
	require.NoError(t, err)
	assert.Empty(t, result)

	got, ok := sess.Store().FlashCard(card.ID)
	require.True(t, ok)
	assert.True(t, got.IsFlipped)
}

func TestHandleFlipFlashCard_MalformedPayload(t *testing.T) {
	sess, _, _ := newTestSession(t)
	h := New(sess)

	result, err := h.HandleFlipFlashCard(context.Background(), room.RPCInvocation{Payload: "{not json"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result, "error: "), "got %q", result)
}

func TestHandleFlipFlashCard_MissingOrUnknownID(t *testing.T) {
	sess, _, _ := newTestSession(t)
	h := New(sess)

	result, err := h.HandleFlipFlashCard(context.Background(), room.RPCInvocation{Payload: `{}`})
	require.NoError(t, err)
	assert.Empty(t, result)

	result, err = h.HandleFlipFlashCard(context.Background(), room.RPCInvocation{Payload: `{"id":"unknown"}`})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestHandleFlipFlashCard_SpokenConfirmation(t *testing.T) {
	sess, _, speaker := newTestSession(t)
	h := New(sess, func(o *Options) { o.ConfirmFlips = true })
	card, _ := sess.Store().AddFlashCard("q", "a")

	_, err := h.HandleFlipFlashCard(context.Background(), room.RPCInvocation{Payload: fmt.Sprintf(`{"id":%q}`, card.ID)})
	require.NoError(t, err)
	require.Len(t, speaker.Spoken(), 1)
	assert.Equal(t, "The card now shows the answer.", speaker.Spoken()[0])
}

func TestHandleSubmitQuiz_CorrectSubmission(t *testing.T) {
	sess, mockRoom, speaker := newTestSession(t)
	h := New(sess)

	quiz := sess.Store().AddQuiz([]content.QuizQuestionInput{
		{Text: "Best greeting?", Answers: []content.QuizAnswerInput{
			{Text: "Hey, what's up?", IsCorrect: false},
			{Text: "Good morning, it's a pleasure to meet you", IsCorrect: true},
		}},
	})

	payload, _ := json.Marshal(map[string]any{
		"id":      quiz.ID,
		"answers": map[string]string{quiz.Questions[0].ID: quiz.Questions[0].Answers[1].ID},
	})
	result, err := h.HandleSubmitQuiz(context.Background(), room.RPCInvocation{Payload: string(payload)})
	require.NoError(t, err)
	assert.Equal(t, SuccessResult, result)

	require.Len(t, speaker.Spoken(), 1)
	report := speaker.Spoken()[0]
	assert.Contains(t, report, "You got 1 out of 1 questions correct.")
	assert.Contains(t, report, "✓ Correct!")

	// A fully correct submission creates no remedial cards.
	assert.Equal(t, 0, sess.Store().FlashCardCount())
	assert.Empty(t, mockRoom.CallsTo(dispatch.FlashCardMethod))
}

func TestHandleSubmitQuiz_EmptySubmissionCreatesRemedialCard(t *testing.T) {
	sess, mockRoom, speaker := newTestSession(t)
	h := New(sess)

	quiz := sess.Store().AddQuiz([]content.QuizQuestionInput{
		{Text: "Best greeting?", Answers: []content.QuizAnswerInput{
			{Text: "Hey, what's up?", IsCorrect: false},
			{Text: "Good morning, it's a pleasure to meet you", IsCorrect: true},
		}},
	})

	payload, _ := json.Marshal(map[string]any{"id": quiz.ID, "answers": map[string]string{}})
	result, err := h.HandleSubmitQuiz(context.Background(), room.RPCInvocation{Payload: string(payload)})
	require.NoError(t, err)
	assert.Equal(t, SuccessResult, result)

	require.Len(t, speaker.Spoken(), 1)
	report := speaker.Spoken()[0]
	assert.Contains(t, report, "You got 0 out of 1 questions correct.")
	assert.Contains(t, report, "Your answer: None ✗ Incorrect. The correct answer is: Good morning, it's a pleasure to meet you")

	cards := sess.Store().FlashCards()
	require.Len(t, cards, 1)
	assert.Equal(t, "Best greeting?", cards[0].Question)
	assert.Equal(t, "Good morning, it's a pleasure to meet you", cards[0].Answer)

	pushes := mockRoom.CallsTo(dispatch.FlashCardMethod)
	require.Len(t, pushes, 1)
	var pushed map[string]any
	require.NoError(t, json.Unmarshal([]byte(pushes[0].Payload), &pushed))
	assert.Equal(t, "show", pushed["action"])
	assert.Equal(t, cards[0].ID, pushed["id"])
}

func TestHandleSubmitQuiz_UnknownQuiz(t *testing.T) {
	sess, mockRoom, speaker := newTestSession(t)
	h := New(sess)

	result, err := h.HandleSubmitQuiz(context.Background(), room.RPCInvocation{Payload: `{"id":"missing","answers":{}}`})
	require.NoError(t, err)
	assert.Equal(t, "error: Quiz not found", result)
	assert.Equal(t, 0, sess.Store().FlashCardCount())
	assert.Empty(t, mockRoom.Calls())
	assert.Empty(t, speaker.Spoken())
}

func TestHandleSubmitQuiz_MissingID(t *testing.T) {
	sess, _, _ := newTestSession(t)
	h := New(sess)

	result, err := h.HandleSubmitQuiz(context.Background(), room.RPCInvocation{Payload: `{"answers":{}}`})
	require.NoError(t, err)
	assert.Equal(t, "error: No quiz ID found in payload", result)
}

func TestHandleSubmitQuiz_MalformedPayload(t *testing.T) {
	sess, _, _ := newTestSession(t)
	h := New(sess)

	result, err := h.HandleSubmitQuiz(context.Background(), room.RPCInvocation{Payload: "not json"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result, "error: "), "got %q", result)
}

func TestHandleSubmitQuiz_NoCorrectAnswerFlagged(t *testing.T) {
	sess, mockRoom, speaker := newTestSession(t)
	h := New(sess)

	quiz := sess.Store().AddQuiz([]content.QuizQuestionInput{
		{Text: "q", Answers: []content.QuizAnswerInput{{Text: "a", IsCorrect: false}}},
	})

	payload, _ := json.Marshal(map[string]any{
		"id":      quiz.ID,
		"answers": map[string]string{quiz.Questions[0].ID: quiz.Questions[0].Answers[0].ID},
	})
	result, err := h.HandleSubmitQuiz(context.Background(), room.RPCInvocation{Payload: string(payload)})
	require.NoError(t, err)
	assert.Equal(t, SuccessResult, result)

	// No correct answer to teach from, so no remedial card.
	assert.Equal(t, 0, sess.Store().FlashCardCount())
	assert.Empty(t, mockRoom.CallsTo(dispatch.FlashCardMethod))
	require.Len(t, speaker.Spoken(), 1)
	assert.Contains(t, speaker.Spoken()[0], "✗ Incorrect.")
}
