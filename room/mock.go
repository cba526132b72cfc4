package room

import (
	"context"
	"fmt"
	"sync"
)

// RPCCall records one outbound RPC performed through a MockRoom.
type RPCCall struct {
	Destination string
	Method      string
	Payload     string
}

// MockRoom is an in-process Room for tests and examples. It records outbound
// RPC calls, keeps the registered inbound handlers and can simulate a peer
// calling back into the core via Invoke. Participants are whatever the test
// configures, in insertion order.
type MockRoom struct {
	mu           sync.Mutex
	participants []Participant
	handlers     map[string]RPCHandler
	calls        []RPCCall
	rpcErr       error
}

// NewMockRoom creates a mock room with the given remote participants.
func NewMockRoom(participants ...Participant) *MockRoom {
	return &MockRoom{
		participants: participants,
		handlers:     map[string]RPCHandler{},
	}
}

// AddParticipant appends a remote participant.
func (r *MockRoom) AddParticipant(p Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.participants = append(r.participants, p)
}

// SetRPCError makes every subsequent PerformRPC fail with err. Pass nil to
// clear.
func (r *MockRoom) SetRPCError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rpcErr = err
}

// RemoteParticipants implements Room.
func (r *MockRoom) RemoteParticipants() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// PerformRPC implements Room by recording the call.
func (r *MockRoom) PerformRPC(_ context.Context, destIdentity, method, payload string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rpcErr != nil {
		return "", r.rpcErr
	}
	r.calls = append(r.calls, RPCCall{Destination: destIdentity, Method: method, Payload: payload})
	return "", nil
}

// RegisterRPCMethod implements Room.
func (r *MockRoom) RegisterRPCMethod(method string, handler RPCHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = handler
}

// Calls returns a copy of all recorded outbound RPC calls.
func (r *MockRoom) Calls() []RPCCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RPCCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsTo returns the recorded calls for one method.
func (r *MockRoom) CallsTo(method string) []RPCCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RPCCall
	for _, c := range r.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Invoke simulates a peer calling an inbound RPC method on the core.
func (r *MockRoom) Invoke(ctx context.Context, caller, method, payload string) (string, error) {
	r.mu.Lock()
	handler, ok := r.handlers[method]
	r.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("room: no handler registered for %q", method)
	}
	return handler(ctx, RPCInvocation{CallerIdentity: caller, Method: method, Payload: payload})
}

// MockSpeaker records spoken text for assertions.
type MockSpeaker struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

// NewMockSpeaker creates an empty mock speaker.
func NewMockSpeaker() *MockSpeaker { return &MockSpeaker{} }

// SetError makes subsequent Say calls fail with err.
func (s *MockSpeaker) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Say implements Speaker.
func (s *MockSpeaker) Say(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.spoken = append(s.spoken, text)
	return nil
}

// Spoken returns everything said so far.
func (s *MockSpeaker) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}
