package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"trump304/internal/session"
	"trump304/internal/storage"
	"trump304/internal/timer"
)

// --- Test environment ---

type testEnv struct {
	ts  *httptest.Server
	mgr *session.Manager
}

func setupTestEnv(t *testing.T) *testEnv {
	return setupTestEnvWithTimer(t, nil, 0)
}

func setupTestEnvWithTimer(t *testing.T, sched timer.Scheduler, turnTimeout time.Duration) *testEnv {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mgr := session.NewManager(store)
	srv := New(mgr, sched, turnTimeout)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr}
}

// --- Context helpers ---

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST API helpers ---

func createGameViaAPI(t *testing.T, ts *httptest.Server, mode int, name string) seatResponse {
	t.Helper()
	body := fmt.Sprintf(`{"mode":%d,"player_name":%q}`, mode, name)
	resp, err := http.Post(ts.URL+"/api/games", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var result seatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

func joinGameViaAPI(t *testing.T, ts *httptest.Server, code, name string) seatResponse {
	t.Helper()
	body := fmt.Sprintf(`{"player_name":%q}`, name)
	resp, err := http.Post(ts.URL+"/api/games/"+code+"/join", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("join game: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result seatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return result
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, code string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/games/" + code + "/ws"
}

// wsConnect dials a WebSocket and sends a join message. The caller is
// responsible for closing the connection.
func wsConnect(t *testing.T, ts *httptest.Server, code, playerID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, code), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	if err := sendWS(ctx, conn, "join", map[string]string{"player_id": playerID}); err != nil {
		t.Fatalf("send join: %v", err)
	}
	return conn
}

// sendWS sends one inbound message: the action name with the params flattened
// in beside it, e.g. {"action":"bid","amount":160}.
func sendWS(ctx context.Context, conn *websocket.Conn, action string, params any) error {
	fields := map[string]any{}
	if params != nil {
		p, err := json.Marshal(params)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(p, &fields); err != nil {
			return err
		}
	}
	fields["action"] = action
	msg, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, msg)
}

// readWS reads and unmarshals a single WebSocket message.
func readWS(ctx context.Context, conn *websocket.Conn) (WSMessage, error) {
	_, data, err := conn.Read(ctx)
	if err != nil {
		return WSMessage{}, err
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return WSMessage{}, err
	}
	return msg, nil
}

// readUntil discards messages until one of the wanted type arrives.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string) WSMessage {
	t.Helper()
	for {
		msg, err := readWS(ctx, conn)
		if err != nil {
			t.Fatalf("waiting for %q: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

// readState discards messages until the next game_state and decodes it.
func readState(t *testing.T, ctx context.Context, conn *websocket.Conn) statePayload {
	t.Helper()
	msg := readUntil(t, ctx, conn, "game_state")
	var sp statePayload
	if err := json.Unmarshal(msg.Payload, &sp); err != nil {
		t.Fatalf("unmarshal state payload: %v", err)
	}
	return sp
}

// readError discards messages until the next error and returns its text.
func readError(t *testing.T, ctx context.Context, conn *websocket.Conn) string {
	t.Helper()
	msg := readUntil(t, ctx, conn, "error")
	var ep errorPayload
	if err := json.Unmarshal(msg.Payload, &ep); err != nil {
		t.Fatalf("unmarshal error payload: %v", err)
	}
	return ep.Error
}

// mustSend sends one inbound action, failing the test on error.
func mustSend(t *testing.T, ctx context.Context, conn *websocket.Conn, action string, params any) {
	t.Helper()
	if err := sendWS(ctx, conn, action, params); err != nil {
		t.Fatalf("send %s: %v", action, err)
	}
}
