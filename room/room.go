// Package room defines the narrow surface the tutoring core needs from the
// underlying real-time room: enumerating remote participants, invoking a
// named RPC method on one of them, and registering handlers for inbound RPC
// calls. Connection and session lifecycle live behind implementations of
// these interfaces (see the ws subpackage); the core never manages them.
package room

import (
	"context"
	"errors"
)

// ErrNoPeer is returned when an operation needs a remote participant and
// none is connected. Pushes downgrade to a no-op on this error; they never
// fail the content mutation that triggered them.
var ErrNoPeer = errors.New("room: no remote participant connected")

// Participant identifies a remote participant in the room.
type Participant struct {
	Identity string
	Name     string
	Metadata string
}

// RPCInvocation carries one inbound RPC call from a peer. Payload is the
// raw text payload as sent; decoding and validation happen in the handler.
type RPCInvocation struct {
	CallerIdentity string
	Method         string
	Payload        string
}

// RPCHandler processes one inbound RPC invocation. The returned string is
// the RPC result delivered back to the caller; by convention handlers return
// "success", an empty string, or a string prefixed "error: ". The error
// return is reserved for transport-level failures.
type RPCHandler func(ctx context.Context, inv RPCInvocation) (string, error)

// Room is the transport collaborator consumed by the core.
//
// Implementations must be safe for concurrent use: pushes and inbound
// invocations arrive from independent goroutines.
type Room interface {
	// RemoteParticipants returns the currently connected remote
	// participants in the transport's enumeration order. That order is not
	// guaranteed stable or priority-based.
	RemoteParticipants() []Participant

	// PerformRPC invokes the named method on the participant with the
	// given identity and returns the remote result.
	PerformRPC(ctx context.Context, destIdentity, method, payload string) (string, error)

	// RegisterRPCMethod registers a handler for inbound calls of the named
	// method, replacing any previous handler for that name.
	RegisterRPCMethod(method string, handler RPCHandler)
}

// Speaker voices text to the user. Speech synthesis is an external
// collaborator; the core only hands it strings.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// NoOpSpeaker discards everything. Default when no speech pipeline is wired.
type NoOpSpeaker struct{}

// Say implements Speaker.
func (NoOpSpeaker) Say(context.Context, string) error { return nil }

// FirstRemoteParticipant selects the single peer that receives content
// synchronization: the first participant in the room's enumeration order.
// With more than one remote participant the selection is arbitrary: the
// core assumes a one-client room, and this rule is a documented limitation
// of that assumption rather than a priority scheme. Returns ErrNoPeer when
// the room is empty.
func FirstRemoteParticipant(r Room) (Participant, error) {
	participants := r.RemoteParticipants()
	if len(participants) == 0 {
		return Participant{}, ErrNoPeer
	}
	return participants[0], nil
}
