package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstRemoteParticipant_Empty(t *testing.T) {
	_, err := FirstRemoteParticipant(NewMockRoom())
	assert.ErrorIs(t, err, ErrNoPeer)
}

func TestFirstRemoteParticipant_PicksFirst(t *testing.T) {
	r := NewMockRoom(
		Participant{Identity: "client-1"},
		Participant{Identity: "client-2"},
	)
	p, err := FirstRemoteParticipant(r)
	require.NoError(t, err)
	assert.Equal(t, "client-1", p.Identity)
}

func TestMockRoom_RecordsCallsAndDispatchesInbound(t *testing.T) {
	r := NewMockRoom(Participant{Identity: "client-1"})

	_, err := r.PerformRPC(context.Background(), "client-1", "client.flashcard", `{"action":"flip"}`)
	require.NoError(t, err)
	calls := r.CallsTo("client.flashcard")
	require.Len(t, calls, 1)
	assert.Equal(t, "client-1", calls[0].Destination)

	r.RegisterRPCMethod("agent.echo", func(_ context.Context, inv RPCInvocation) (string, error) {
		return inv.Payload, nil
	})
	result, err := r.Invoke(context.Background(), "client-1", "agent.echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", result)

	_, err = r.Invoke(context.Background(), "client-1", "agent.unknown", "")
	assert.Error(t, err)
}
