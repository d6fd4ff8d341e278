package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/portal-mafia/mafia/game"
	"github.com/gosuda/portal-mafia/mafia/journal"
	"github.com/gosuda/portal-mafia/mafia/protocol"
)

type frame struct {
	Type    protocol.Type   `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T, authKey string, perSecond float64, burst int) *httptest.Server {
	t.Helper()
	hub := game.NewHub(game.NewManager())
	srv := httptest.NewServer(NewHTTPServer(hub, authKey, perSecond, burst).Router())
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, typ protocol.Type, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(protocol.Event{Type: typ, Payload: payload}))
}

// readUntil reads frames until one of type typ arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ protocol.Type) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Type == typ {
			return f
		}
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, "", 100, 100)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebSocketRequiresKey(t *testing.T) {
	srv := newTestServer(t, "secret", 100, 100)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{authHeader: {"wrong"}})
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn := dial(t, srv, http.Header{authHeader: {"secret"}})
	readUntil(t, conn, protocol.Hello)
}

func TestWebSocketGameFlow(t *testing.T) {
	srv := newTestServer(t, "", 100, 100)

	host := dial(t, srv, nil)
	readUntil(t, host, protocol.Hello)
	sendFrame(t, host, protocol.CreateRoom, protocol.CreateRoomPayload{Name: "alice"})
	var created protocol.SessionPayload
	require.NoError(t, json.Unmarshal(readUntil(t, host, protocol.RoomCreated).Payload, &created))
	assert.Regexp(t, `^[A-Z0-9]{5}$`, created.RoomID)

	guest := dial(t, srv, nil)
	sendFrame(t, guest, protocol.JoinRoom, protocol.JoinRoomPayload{RoomID: strings.ToLower(created.RoomID), Name: "bob"})
	readUntil(t, guest, protocol.Joined)
	var joined protocol.PeerPayload
	require.NoError(t, json.Unmarshal(readUntil(t, host, protocol.PeerJoined).Payload, &joined))
	assert.Equal(t, "bob", joined.Name)

	sendFrame(t, guest, protocol.StartGame, nil)
	var rejected protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(readUntil(t, guest, protocol.Error).Payload, &rejected))
	assert.Equal(t, game.ErrNotHost.Code, rejected.Message)

	resp, err := http.Get(srv.URL + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	var stats game.Stats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, game.Stats{Rooms: 1, Peers: 2, Connections: 2}, stats)
}

func TestWebSocketDisconnectReleasesRoom(t *testing.T) {
	srv := newTestServer(t, "", 100, 100)

	host := dial(t, srv, nil)
	sendFrame(t, host, protocol.CreateRoom, nil)
	readUntil(t, host, protocol.RoomCreated)
	require.NoError(t, host.Close())

	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/stats")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var stats game.Stats
		return json.NewDecoder(resp.Body).Decode(&stats) == nil && stats.Rooms == 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWebSocketRateLimit(t *testing.T) {
	srv := newTestServer(t, "", 0, 1)

	conn := dial(t, srv, nil)
	readUntil(t, conn, protocol.Hello)
	sendFrame(t, conn, protocol.Ping, nil)
	sendFrame(t, conn, protocol.Ping, nil)
	readUntil(t, conn, protocol.Pong)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var f frame
	err := conn.ReadJSON(&f)
	require.Error(t, err, "second ping should have been dropped, got %s", f.Type)
}

func TestJournalCommand(t *testing.T) {
	dir := t.TempDir()
	store, err := journal.Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Append(journal.Entry{TS: 0, Room: "ABCDE", Kind: game.JournalRoomCreated}))
	require.NoError(t, store.Append(journal.Entry{TS: 1000, Room: "ABCDE", Kind: game.JournalGameStarted, Detail: "players=4"}))
	require.NoError(t, store.Close())

	prevPath, prevLimit := flagDataPath, flagJournalLimit
	t.Cleanup(func() { flagDataPath, flagJournalLimit = prevPath, prevLimit })
	flagDataPath, flagJournalLimit = dir, 1

	var buf bytes.Buffer
	journalCmd.SetOut(&buf)
	require.NoError(t, runJournal(journalCmd, nil))
	assert.Equal(t, "1970-01-01T00:00:01Z\tABCDE\tgame_started\tplayers=4\n", buf.String())
}
