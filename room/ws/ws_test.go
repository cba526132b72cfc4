package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/tutormesh/room"
)

// relayServer is a minimal single-connection relay for tests: it announces
// one client participant, echoes rpc_requests back as responses and can
// inject inbound requests.
type relayServer struct {
	t        *testing.T
	upgrader websocket.Upgrader
	conn     chan *websocket.Conn
	inbound  chan frame
}

func newRelayServer(t *testing.T) (*relayServer, *httptest.Server) {
	t.Helper()
	rs := &relayServer{
		t:       t,
		conn:    make(chan *websocket.Conn, 1),
		inbound: make(chan frame, 8),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := rs.upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		rs.conn <- conn

		rs.writeFrame(conn, frame{
			Type:        frameParticipantJoined,
			Participant: &room.Participant{Identity: "client-1", Name: "Student"},
		})

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f frame
			require.NoError(t, json.Unmarshal(data, &f))
			rs.inbound <- f
			// "client.noreply" simulates a peer that never answers.
			if f.Type == frameRPCRequest && f.Method != "client.noreply" {
				rs.writeFrame(conn, frame{Type: frameRPCResponse, ID: f.ID, Payload: "ok:" + f.Payload})
			}
		}
	}))
	t.Cleanup(srv.Close)
	return rs, srv
}

func (rs *relayServer) writeFrame(conn *websocket.Conn, f frame) {
	data, err := json.Marshal(f)
	require.NoError(rs.t, err)
	require.NoError(rs.t, conn.WriteMessage(websocket.TextMessage, data))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitForPeer(t *testing.T, r *Room) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.RemoteParticipants()) > 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("participant never joined")
}

func TestDialAndPerformRPC(t *testing.T) {
	_, srv := newRelayServer(t)

	r, err := Dial(context.Background(), wsURL(srv), func(o *Options) { o.Identity = "agent-1" })
	require.NoError(t, err)
	defer r.Close()

	waitForPeer(t, r)
	peers := r.RemoteParticipants()
	require.Len(t, peers, 1)
	assert.Equal(t, "client-1", peers[0].Identity)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := r.PerformRPC(ctx, "client-1", "client.flashcard", `{"action":"flip"}`)
	require.NoError(t, err)
	assert.Equal(t, `ok:{"action":"flip"}`, result)
}

func TestInboundRPCDispatch(t *testing.T) {
	rs, srv := newRelayServer(t)

	r, err := Dial(context.Background(), wsURL(srv), func(o *Options) { o.Identity = "agent-1" })
	require.NoError(t, err)
	defer r.Close()

	r.RegisterRPCMethod("agent.flipFlashCard", func(_ context.Context, inv room.RPCInvocation) (string, error) {
		return "handled:" + inv.Payload, nil
	})
	waitForPeer(t, r)

	conn := <-rs.conn
	rs.writeFrame(conn, frame{
		Type:    frameRPCRequest,
		ID:      "req-1",
		Method:  "agent.flipFlashCard",
		Payload: `{"id":"card"}`,
		Caller:  "client-1",
	})

	select {
	case f := <-rs.inbound:
		assert.Equal(t, frameRPCResponse, f.Type)
		assert.Equal(t, "req-1", f.ID)
		assert.Equal(t, `handled:{"id":"card"}`, f.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no rpc_response received")
	}
}

func TestClose_FailsPendingCalls(t *testing.T) {
	_, srv := newRelayServer(t)

	r, err := Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)

	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := r.PerformRPC(context.Background(), "client-1", "client.noreply", "{}")
			errs <- err
		}()
	}

	// Give the calls a moment to register as pending before tearing down.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, r.Close())

	for i := 0; i < 4; i++ {
		select {
		case err := <-errs:
			assert.ErrorContains(t, err, "room connection closed")
		case <-time.After(2 * time.Second):
			t.Fatal("pending call not released by Close")
		}
	}
}

func TestConcurrentRPCAndClose(t *testing.T) {
	// Responses may arrive while Close is failing pending calls; neither
	// side may panic or deadlock.
	_, srv := newRelayServer(t)

	r, err := Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if _, err := r.PerformRPC(context.Background(), "client-1", "client.echo", "{}"); err != nil {
					return
				}
			}
		}()
	}

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, r.Close())
	wg.Wait()
}

func TestInboundHandlerContextCancelledOnClose(t *testing.T) {
	rs, srv := newRelayServer(t)

	r, err := Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)

	started := make(chan struct{})
	done := make(chan struct{})
	r.RegisterRPCMethod("agent.wait", func(ctx context.Context, _ room.RPCInvocation) (string, error) {
		close(started)
		<-ctx.Done()
		close(done)
		return "", ctx.Err()
	})
	waitForPeer(t, r)

	conn := <-rs.conn
	rs.writeFrame(conn, frame{Type: frameRPCRequest, ID: "req-1", Method: "agent.wait", Caller: "client-1"})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never invoked")
	}
	require.NoError(t, r.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler context not cancelled by Close")
	}
}

func TestPerformRPC_ContextCancelled(t *testing.T) {
	_, srv := newRelayServer(t)

	r, err := Dial(context.Background(), wsURL(srv))
	require.NoError(t, err)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.PerformRPC(ctx, "client-1", "client.noreply", "{}")
	assert.ErrorIs(t, err, context.Canceled)
}
