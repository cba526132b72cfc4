// Package ws implements room.Room over a WebSocket connection to a room
// relay. It speaks a small JSON frame protocol: rpc_request / rpc_response
// pairs correlated by id, plus participant_joined / participant_left
// notifications that keep the local participant view current. It exists so
// the tutoring core can run against a real bidirectional channel without the
// core knowing anything about connection lifecycle.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/hupe1980/tutormesh/logging"
	"github.com/hupe1980/tutormesh/room"
)

// frame is the single wire message shape. Type selects which fields matter.
type frame struct {
	Type        string            `json:"type"`
	ID          string            `json:"id,omitempty"`
	Method      string            `json:"method,omitempty"`
	Payload     string            `json:"payload,omitempty"`
	Destination string            `json:"destination,omitempty"`
	Caller      string            `json:"caller,omitempty"`
	Error       string            `json:"error,omitempty"`
	Participant *room.Participant `json:"participant,omitempty"`
}

const (
	frameRPCRequest        = "rpc_request"
	frameRPCResponse       = "rpc_response"
	frameParticipantJoined = "participant_joined"
	frameParticipantLeft   = "participant_left"
)

// Options configures a Room connection.
type Options struct {
	// Identity announces the local participant identity to the relay.
	Identity string
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Room is a WebSocket backed room.Room. Safe for concurrent use; writes to
// the connection are serialized by a mutex, reads happen on one goroutine.
type Room struct {
	conn     *websocket.Conn
	identity string
	logger   logging.Logger

	// ctx is cancelled by Close so inbound handlers observe teardown.
	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	mu           sync.Mutex
	participants []room.Participant
	handlers     map[string]room.RPCHandler
	pending      map[string]chan frame
	closed       bool
}

// Dial connects to the relay at url and starts the read loop.
func Dial(ctx context.Context, url string, optFns ...func(o *Options)) (*Room, error) {
	opts := Options{
		Identity: "agent-" + uuid.NewString(),
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial room relay: %w", err)
	}

	connCtx, cancel := context.WithCancel(context.Background())
	r := &Room{
		conn:     conn,
		identity: opts.Identity,
		logger:   opts.Logger,
		ctx:      connCtx,
		cancel:   cancel,
		handlers: map[string]room.RPCHandler{},
		pending:  map[string]chan frame{},
	}
	go r.readLoop()
	return r, nil
}

// Identity returns the local participant identity.
func (r *Room) Identity() string { return r.identity }

// RemoteParticipants implements room.Room. Order is join order as observed
// on this connection.
func (r *Room) RemoteParticipants() []room.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]room.Participant, len(r.participants))
	copy(out, r.participants)
	return out
}

// RegisterRPCMethod implements room.Room.
func (r *Room) RegisterRPCMethod(method string, handler room.RPCHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = handler
}

// PerformRPC implements room.Room: it sends an rpc_request frame and waits
// for the matching rpc_response or context cancellation.
func (r *Room) PerformRPC(ctx context.Context, destIdentity, method, payload string) (string, error) {
	id := uuid.NewString()
	ch := make(chan frame, 1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", fmt.Errorf("room connection closed")
	}
	r.pending[id] = ch
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	err := r.writeFrame(frame{
		Type:        frameRPCRequest,
		ID:          id,
		Method:      method,
		Payload:     payload,
		Destination: destIdentity,
		Caller:      r.identity,
	})
	if err != nil {
		return "", err
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			return "", fmt.Errorf("room connection closed")
		}
		if resp.Error != "" {
			return "", fmt.Errorf("rpc %s failed: %s", method, resp.Error)
		}
		return resp.Payload, nil
	}
}

// Close tears down the connection and fails all pending RPC calls.
func (r *Room) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for id, ch := range r.pending {
		close(ch)
		delete(r.pending, id)
	}
	r.mu.Unlock()
	r.cancel()
	return r.conn.Close()
}

func (r *Room) writeFrame(f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if err := r.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (r *Room) readLoop() {
	for {
		_, data, err := r.conn.ReadMessage()
		if err != nil {
			r.logger.Warn("ws.read_closed", "error", err.Error())
			_ = r.Close()
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			r.logger.Error("ws.bad_frame", "error", err.Error())
			continue
		}

		switch f.Type {
		case frameRPCResponse:
			// Deliver under the lock: Close closes pending channels while
			// holding it, so sending here without it could hit a closed
			// channel. The channel is buffered, the send cannot block.
			r.mu.Lock()
			if ch, ok := r.pending[f.ID]; ok {
				delete(r.pending, f.ID)
				ch <- f
			}
			r.mu.Unlock()
		case frameRPCRequest:
			go r.dispatchInbound(f)
		case frameParticipantJoined:
			r.addParticipant(f.Participant)
		case frameParticipantLeft:
			r.removeParticipant(f.Participant)
		default:
			r.logger.Debug("ws.unknown_frame", "type", f.Type)
		}
	}
}

// dispatchInbound runs a registered handler and sends the rpc_response back.
// Handler panics are not recovered here; handlers are written not to panic.
func (r *Room) dispatchInbound(f frame) {
	r.mu.Lock()
	handler, ok := r.handlers[f.Method]
	r.mu.Unlock()

	resp := frame{Type: frameRPCResponse, ID: f.ID, Destination: f.Caller, Caller: r.identity}
	if !ok {
		resp.Error = fmt.Sprintf("no handler registered for %q", f.Method)
	} else {
		result, err := handler(r.ctx, room.RPCInvocation{
			CallerIdentity: f.Caller,
			Method:         f.Method,
			Payload:        f.Payload,
		})
		if err != nil {
			resp.Error = err.Error()
		} else {
			resp.Payload = result
		}
	}
	if err := r.writeFrame(resp); err != nil {
		r.logger.Warn("ws.respond_failed", "method", f.Method, "error", err.Error())
	}
}

func (r *Room) addParticipant(p *room.Participant) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.participants {
		if existing.Identity == p.Identity {
			return
		}
	}
	r.participants = append(r.participants, *p)
	r.logger.Info("ws.participant_joined", "identity", p.Identity, "name", p.Name)
}

func (r *Room) removeParticipant(p *room.Participant) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.participants {
		if existing.Identity == p.Identity {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			r.logger.Info("ws.participant_left", "identity", p.Identity)
			return
		}
	}
}
