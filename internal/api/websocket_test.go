package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func startTestServer(t *testing.T, engine EngineInterface) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(engine, nil)
	srv.wsHub.interval = 10 * time.Millisecond
	srv.startWorkers()

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		srv.Shutdown(context.Background())
		ts.Close()
	})
	return srv, ts
}

func dialWS(t *testing.T, ts *httptest.Server, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

type wsEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readEvent(t *testing.T, conn *websocket.Conn, want string) wsEnvelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Read failed waiting for %s: %v", want, err)
		}
		var env wsEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("Invalid message %s: %v", raw, err)
		}
		if env.Event == want {
			return env
		}
	}
}

func TestWebSocketBroadcastsState(t *testing.T) {
	engine := NewMockEngine()
	srv, ts := startTestServer(t, engine)

	conn, _, err := dialWS(t, ts, "http://localhost:3000")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	waitFor(t, "client registration", func() bool { return srv.Hub().ClientCount() == 1 })

	env := readEvent(t, conn, "game:state")
	var snap struct {
		Player struct {
			HP int `json:"hp"`
		} `json:"player"`
	}
	if err := json.Unmarshal(env.Data, &snap); err != nil {
		t.Fatalf("Invalid state payload: %v", err)
	}
	if snap.Player.HP != 100 {
		t.Errorf("Expected player hp 100, got %d", snap.Player.HP)
	}

	engine.setGameOver(true)
	readEvent(t, conn, "game:over")
}

func TestWebSocketInput(t *testing.T) {
	engine := NewMockEngine()
	srv, ts := startTestServer(t, engine)

	conn, _, err := dialWS(t, ts, "http://127.0.0.1:8080")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitFor(t, "client registration", func() bool { return srv.Hub().ClientCount() == 1 })

	messages := []string{
		`{"type":"key","key":"A","down":true}`,
		`{"type":"key","key":"x","down":true}`,
		`not json`,
		`{"type":"levelup","index":0}`,
		`{"type":"restart"}`,
		`{"type":"key","key":"a","down":false}`,
	}
	for _, m := range messages {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	waitFor(t, "key release", func() bool { return len(engine.keyPresses()) == 2 })

	keys := engine.keyPresses()
	if keys[0] != (keyPress{"a", true}) || keys[1] != (keyPress{"a", false}) {
		t.Errorf("Unexpected key presses %v", keys)
	}
	if engine.restartCount() != 1 {
		t.Errorf("Expected one restart, got %d", engine.restartCount())
	}
	if engine.SkillInfo()[0].Level != 2 {
		t.Errorf("Expected levelup over WebSocket, got level %d", engine.SkillInfo()[0].Level)
	}
}

func TestWebSocketRejectsForeignOrigin(t *testing.T) {
	_, ts := startTestServer(t, NewMockEngine())

	_, resp, err := dialWS(t, ts, "https://evil.example")
	if err == nil {
		t.Fatal("Expected handshake to fail for foreign origin")
	}
	if resp != nil && resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", resp.StatusCode)
	}
}

func TestWebSocketPerPeerLimit(t *testing.T) {
	srv, ts := startTestServer(t, NewMockEngine())

	var conns []*websocket.Conn
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < MaxWSConnectionsPerPeer; i++ {
		c, _, err := dialWS(t, ts, "http://localhost")
		if err != nil {
			t.Fatalf("Dial %d failed: %v", i, err)
		}
		conns = append(conns, c)
	}
	waitFor(t, "all registrations", func() bool { return srv.Hub().ClientCount() == MaxWSConnectionsPerPeer })

	_, resp, err := dialWS(t, ts, "http://localhost")
	if err == nil {
		t.Fatal("Expected connection over the per-peer limit to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected 429, got %v", resp)
	}
	if st := srv.Hub().Stats(); st.Rejected != 1 || st.Open != MaxWSConnectionsPerPeer {
		t.Errorf("Unexpected session stats %+v", st)
	}

	// Closing one frees a slot
	conns[0].Close()
	conns = conns[1:]
	waitFor(t, "unregister", func() bool { return srv.Hub().ClientCount() == MaxWSConnectionsPerPeer-1 })
	if got := srv.Hub().Stats().Open; got != MaxWSConnectionsPerPeer-1 {
		t.Errorf("Expected the closed session's slot back, %d open", got)
	}

	c, _, err := dialWS(t, ts, "http://localhost")
	if err != nil {
		t.Fatalf("Expected a freed slot, got %v", err)
	}
	conns = append(conns, c)
}

func TestHubStopClosesClients(t *testing.T) {
	srv, ts := startTestServer(t, NewMockEngine())

	conn, _, err := dialWS(t, ts, "http://localhost")
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitFor(t, "client registration", func() bool { return srv.Hub().ClientCount() == 1 })

	srv.Hub().Stop()
	srv.Hub().Stop()

	waitFor(t, "hub shutdown", func() bool { return srv.Hub().ClientCount() == 0 })

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
