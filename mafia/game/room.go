package game

import (
	"github.com/gosuda/portal-mafia/mafia/protocol"
	"github.com/gosuda/portal-mafia/mafia/roles"
)

type Phase string

const (
	PhaseLobby Phase = "lobby"
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
)

// ParsePhase accepts only the three known phase names.
func ParsePhase(s string) (Phase, bool) {
	switch p := Phase(s); p {
	case PhaseLobby, PhaseNight, PhaseDay:
		return p, true
	}
	return "", false
}

// Conn is a live transport connection. Rooms hold it without owning it;
// Send must not block and Close may be called more than once.
type Conn interface {
	ID() string
	Send(ev protocol.Event)
	Close()
}

// Peer is a player identity that outlives any single connection.
type Peer struct {
	Key   string
	Name  string
	Role  roles.Role
	Alive bool

	conn Conn
}

func (p *Peer) Connected() bool { return p.conn != nil }

// Room is one game session. It is only touched from the Hub loop.
type Room struct {
	ID       string
	HostKey  string
	Phase    Phase
	Day      int
	Paused   bool
	Settings roles.Config

	peers map[string]*Peer
	order []string
	conns map[Conn]string
	timer PhaseTimer
	chat  []protocol.ChatEntry
}

func newRoom(id string) *Room {
	return &Room{
		ID:       id,
		Phase:    PhaseLobby,
		Settings: roles.DefaultConfig(),
		peers:    make(map[string]*Peer),
		conns:    make(map[Conn]string),
	}
}

func (r *Room) addPeer(key, name string, c Conn) *Peer {
	p := &Peer{Key: key, Name: name}
	r.peers[key] = p
	r.order = append(r.order, key)
	r.attach(p, c)
	return p
}

func (r *Room) attach(p *Peer, c Conn) {
	p.conn = c
	r.conns[c] = p.Key
}

// detach drops c from the live set and clears the owning peer's handle.
func (r *Room) detach(c Conn) *Peer {
	key, ok := r.conns[c]
	if !ok {
		return nil
	}
	delete(r.conns, c)
	p := r.peers[key]
	if p != nil && p.conn == c {
		p.conn = nil
	}
	return p
}

// Peer returns the peer registered under key.
func (r *Room) Peer(key string) (*Peer, bool) {
	p, ok := r.peers[key]
	return p, ok
}

// Peers returns every peer in join order.
func (r *Room) Peers() []*Peer {
	out := make([]*Peer, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.peers[key])
	}
	return out
}

// LiveConnections is the number of currently attached connections.
func (r *Room) LiveConnections() int { return len(r.conns) }

// Timer exposes the phase timer for inspection.
func (r *Room) Timer() *PhaseTimer { return &r.timer }

// ChatLog returns a copy of the privileged chat backlog.
func (r *Room) ChatLog() []protocol.ChatEntry {
	return append([]protocol.ChatEntry(nil), r.chat...)
}

// setPhase applies a phase change and keeps the day counter in step:
// a new night after a day starts the next day, a return to lobby resets it.
func (r *Room) setPhase(next Phase) {
	switch next {
	case PhaseLobby:
		r.Day = 0
	case PhaseNight:
		if r.Phase == PhaseDay {
			r.Day++
		}
	}
	if next != PhaseLobby && r.Day == 0 {
		r.Day = 1
	}
	r.Phase = next
}

func (r *Room) snapshot() protocol.RoomStatePayload {
	peers := make([]protocol.PeerView, 0, len(r.order))
	for _, p := range r.Peers() {
		peers = append(peers, protocol.PeerView{
			Key:       p.Key,
			Name:      p.Name,
			Alive:     p.Alive,
			Connected: p.Connected(),
		})
	}
	return protocol.RoomStatePayload{
		ID:      r.ID,
		HostKey: r.HostKey,
		Phase:   string(r.Phase),
		Day:     r.Day,
		Paused:  r.Paused,
		Settings: protocol.SettingsView{
			MaxPlayers: r.Settings.MaxPlayers,
			RoleCounts: r.Settings.CountsByName(),
		},
		Peers: peers,
	}
}
