package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tutormesh/dispatch"
	"github.com/hupe1980/tutormesh/model"
	"github.com/hupe1980/tutormesh/room"
	"github.com/hupe1980/tutormesh/session"
)

func newTutorFixture() (*Tutor, *model.MockModel, *room.MockRoom, *room.MockSpeaker) {
	mockRoom := room.NewMockRoom(room.Participant{Identity: "client-1"})
	speaker := room.NewMockSpeaker()
	sess := session.New(mockRoom, func(o *session.Options) { o.Speaker = speaker })
	mockModel := model.NewMockModel("mock", "test")
	return New(mockModel, sess), mockModel, mockRoom, speaker
}

func TestRespond_PlainReplyIsSpoken(t *testing.T) {
	tutor, mockModel, _, speaker := newTutorFixture()
	mockModel.AddResponse("Hi", "Hello! I'm your English tutor. What's your name?")

	reply, err := tutor.Respond(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello! I'm your English tutor. What's your name?", reply)
	assert.Equal(t, []string{reply}, speaker.Spoken())
}

func TestRespond_ExecutesToolCalls(t *testing.T) {
	tutor, mockModel, mockRoom, speaker := newTutorFixture()
	mockModel.QueueResponse(model.Response{
		ToolCalls: []model.ToolCall{{
			ID:        "fc1",
			Name:      "create_flash_card",
			Arguments: `{"question":"How to start a business email professionally?","answer":"I hope this email finds you well."}`,
		}},
		FinishReason: "tool_calls",
	})
	mockModel.QueueResponse(model.Response{
		Text:         "I made you a flash card for email openings.",
		FinishReason: "stop",
	})

	reply, err := tutor.Respond(context.Background(), "How do I write emails?")
	require.NoError(t, err)
	assert.Equal(t, "I made you a flash card for email openings.", reply)
	assert.Equal(t, []string{reply}, speaker.Spoken())

	// The tool committed the card and pushed it to the client.
	require.Len(t, mockRoom.CallsTo(dispatch.FlashCardMethod), 1)

	history := tutor.History()
	require.Len(t, history, 4) // user, assistant(tool call), tool, assistant
	assert.Equal(t, "tool", history[2].Role)
	require.Len(t, history[2].ToolResults, 1)
	assert.Contains(t, history[2].ToolResults[0].Content, "I've created a flash card")
}

func TestRespond_UnknownToolReportedToModel(t *testing.T) {
	tutor, mockModel, _, _ := newTutorFixture()
	mockModel.QueueResponse(model.Response{
		ToolCalls:    []model.ToolCall{{ID: "fc1", Name: "no_such_tool", Arguments: `{}`}},
		FinishReason: "tool_calls",
	})
	mockModel.QueueResponse(model.Response{Text: "Let me try something else.", FinishReason: "stop"})

	reply, err := tutor.Respond(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Let me try something else.", reply)

	history := tutor.History()
	assert.Contains(t, history[2].ToolResults[0].Content, "unknown tool")
}

func TestRespond_ToolRoundLimit(t *testing.T) {
	tutor, mockModel, _, _ := newTutorFixture()
	for i := 0; i < 10; i++ {
		mockModel.QueueResponse(model.Response{
			ToolCalls:    []model.ToolCall{{ID: "fc", Name: "flip_flash_card", Arguments: `{"card_id":"x"}`}},
			FinishReason: "tool_calls",
		})
	}

	_, err := tutor.Respond(context.Background(), "loop forever")
	assert.Error(t, err)
}

func TestGreet(t *testing.T) {
	tutor, mockModel, _, speaker := newTutorFixture()
	mockModel.AddResponse(greetingPrompt, "Hello! I'm your English tutor. What's your name?")

	reply, err := tutor.Greet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hello! I'm your English tutor. What's your name?", reply)
	assert.Len(t, speaker.Spoken(), 1)
}
