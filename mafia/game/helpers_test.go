package game

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gosuda/portal-mafia/mafia/protocol"
)

// fakeConn records everything the game sends to it.
type fakeConn struct {
	id string

	mu     sync.Mutex
	events []protocol.Event
	closed int
}

func newConn(id string) *fakeConn { return &fakeConn{id: id} }

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(ev protocol.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
}

func (c *fakeConn) all(typ protocol.Type) []protocol.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []protocol.Event
	for _, ev := range c.events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

func (c *fakeConn) last(typ protocol.Type) (protocol.Event, bool) {
	evs := c.all(typ)
	if len(evs) == 0 {
		return protocol.Event{}, false
	}
	return evs[len(evs)-1], true
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *fakeConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// manualClock fires scheduled ticks only when the test says so.
type manualClock struct {
	next  int
	fires map[int]func()
}

func newManualClock() *manualClock { return &manualClock{fires: make(map[int]func())} }

func (m *manualClock) Every(_ time.Duration, fire func()) func() {
	id := m.next
	m.next++
	m.fires[id] = fire
	return func() { delete(m.fires, id) }
}

// Tick fires every active schedule once, in scheduling order.
func (m *manualClock) Tick() {
	ids := make([]int, 0, len(m.fires))
	for id := range m.fires {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if fire, ok := m.fires[id]; ok {
			fire()
		}
	}
}

func (m *manualClock) active() int { return len(m.fires) }

type harness struct {
	t     *testing.T
	rooms *Manager
	clock *manualClock
	d     *Dispatcher
	conns int
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	rooms := NewManager()
	clock := newManualClock()
	return &harness{t: t, rooms: rooms, clock: clock, d: NewDispatcher(rooms, clock, opts...)}
}

func (h *harness) conn() *fakeConn {
	h.conns++
	return newConn(fmt.Sprintf("c%d", h.conns))
}

// send dispatches one envelope from c and delivers the result.
func (h *harness) send(c Conn, typ protocol.Type, payload any) Result {
	h.t.Helper()
	env := map[string]any{"type": typ}
	if payload != nil {
		env["payload"] = payload
	}
	raw, err := json.Marshal(env)
	require.NoError(h.t, err)
	res := h.d.Dispatch(c, raw)
	res.Deliver()
	return res
}

func (h *harness) disconnect(c Conn) Result {
	res := h.d.Disconnect(c)
	res.Deliver()
	return res
}

func session(t *testing.T, ev protocol.Event) protocol.SessionPayload {
	t.Helper()
	p, ok := ev.Payload.(protocol.SessionPayload)
	require.True(t, ok, "payload is %T", ev.Payload)
	return p
}

// create opens a room hosted by a new connection.
func (h *harness) create(name string) (*fakeConn, *Room, string) {
	h.t.Helper()
	c := h.conn()
	res := h.send(c, protocol.CreateRoom, protocol.CreateRoomPayload{Name: name})
	require.Nil(h.t, res.Err)
	ev, ok := c.last(protocol.RoomCreated)
	require.True(h.t, ok)
	s := session(h.t, ev)
	r, ok := h.rooms.Lookup(s.RoomID)
	require.True(h.t, ok)
	return c, r, s.PeerKey
}

// join adds a new connection to r.
func (h *harness) join(r *Room, name string) (*fakeConn, string) {
	h.t.Helper()
	c := h.conn()
	res := h.send(c, protocol.JoinRoom, protocol.JoinRoomPayload{RoomID: r.ID, Name: name})
	require.Nil(h.t, res.Err)
	ev, ok := c.last(protocol.Joined)
	require.True(h.t, ok)
	return c, session(h.t, ev).PeerKey
}

// table creates a room with n connected peers; index 0 is the host.
func (h *harness) table(n int) (*Room, []*fakeConn, []string) {
	h.t.Helper()
	host, r, key := h.create("host")
	conns := []*fakeConn{host}
	keys := []string{key}
	for i := 1; i < n; i++ {
		c, k := h.join(r, fmt.Sprintf("p%d", i))
		conns = append(conns, c)
		keys = append(keys, k)
	}
	return r, conns, keys
}

func requireErr(t *testing.T, c *fakeConn, res Result, want *Error) {
	t.Helper()
	require.NotNil(t, res.Err)
	require.ErrorIs(t, res.Err, want)
	ev, ok := c.last(protocol.Error)
	require.True(t, ok)
	require.Equal(t, want.Code, ev.Payload.(protocol.ErrorPayload).Message)
}

func roomState(t *testing.T, c *fakeConn) protocol.RoomStatePayload {
	t.Helper()
	ev, ok := c.last(protocol.RoomState)
	require.True(t, ok, "no ROOM_STATE for %s", c.id)
	return ev.Payload.(protocol.RoomStatePayload)
}
