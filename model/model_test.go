package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockModel_CannedResponse(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.AddResponse("hello", "hi there")

	resp, err := m.Generate(context.Background(), Request{
		Messages: []Message{{Role: "user", Text: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Text)
	assert.Equal(t, "stop", resp.FinishReason)
}

func TestMockModel_EchoFallback(t *testing.T) {
	m := NewMockModel("mock", "test")
	resp, err := m.Generate(context.Background(), Request{
		Messages: []Message{{Role: "user", Text: "anything"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: anything", resp.Text)
}

func TestMockModel_QueuedResponsesDrainInOrder(t *testing.T) {
	m := NewMockModel("mock", "test")
	m.QueueResponse(Response{
		ToolCalls:    []ToolCall{{ID: "fc1", Name: "create_flash_card", Arguments: `{"question":"q","answer":"a"}`}},
		FinishReason: "tool_calls",
	})
	m.QueueResponse(Response{Text: "done", FinishReason: "stop"})

	first, err := m.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Text: "x"}}})
	require.NoError(t, err)
	require.Len(t, first.ToolCalls, 1)
	assert.Equal(t, "create_flash_card", first.ToolCalls[0].Name)

	second, err := m.Generate(context.Background(), Request{Messages: []Message{{Role: "user", Text: "x"}}})
	require.NoError(t, err)
	assert.Equal(t, "done", second.Text)
}

func TestMockModel_NoMessages(t *testing.T) {
	m := NewMockModel("mock", "test")
	_, err := m.Generate(context.Background(), Request{})
	assert.Error(t, err)
}
