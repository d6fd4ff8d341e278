package game

import (
	"github.com/rs/zerolog/log"

	"github.com/gosuda/portal-mafia/mafia/protocol"
	"github.com/gosuda/portal-mafia/mafia/roles"
)

func (d *Dispatcher) createRoom(c Conn, p protocol.CreateRoomPayload) Result {
	if _, bound := d.bindings[c]; bound {
		return failed(c, ErrAlreadyInRoom)
	}
	r, err := d.rooms.create()
	if err != nil {
		log.Error().Err(err).Msg("[mafia] create room")
		return failed(c, ErrNoRoomCode)
	}
	peer := r.addPeer(d.newKey(), sanitizeName(p.Name), c)
	r.HostKey = peer.Key
	d.bindings[c] = r

	var res Result
	res.unicast(c, protocol.RoomCreated, protocol.SessionPayload{RoomID: r.ID, PeerKey: peer.Key})
	res.roomState(r)
	d.record(r, JournalRoomCreated, "")
	log.Info().Str("room", r.ID).Str("conn", c.ID()).Msg("[mafia] room created")
	return res
}

func (d *Dispatcher) joinRoom(c Conn, p protocol.JoinRoomPayload) Result {
	if _, bound := d.bindings[c]; bound {
		return failed(c, ErrAlreadyInRoom)
	}
	r, ok := d.rooms.Lookup(p.RoomID)
	if !ok {
		return failed(c, ErrRoomNotFound)
	}
	if r.LiveConnections() >= r.Settings.MaxPlayers {
		return failed(c, ErrRoomFull)
	}
	peer := r.addPeer(d.newKey(), sanitizeName(p.Name), c)
	d.bindings[c] = r
	electIfNeeded(r)

	var res Result
	res.unicast(c, protocol.Joined, protocol.SessionPayload{RoomID: r.ID, PeerKey: peer.Key})
	res.broadcastExcept(r, c, protocol.PeerJoined, protocol.PeerPayload{Key: peer.Key, Name: peer.Name})
	res.roomState(r)
	log.Info().Str("room", r.ID).Str("conn", c.ID()).Int("connections", r.LiveConnections()).Msg("[mafia] peer joined")
	return res
}

// reconnect reattaches c to an existing identity. Any connection still
// holding that identity is detached and closed before c is attached.
func (d *Dispatcher) reconnect(c Conn, p protocol.ReconnectPayload) Result {
	r, ok := d.rooms.Lookup(p.RoomID)
	if !ok {
		return failed(c, ErrRoomNotFound)
	}
	peer, ok := r.Peer(p.PeerKey)
	if !ok {
		return failed(c, ErrPeerNotFound)
	}
	if bound, ok := d.bindings[c]; ok && (bound != r || r.conns[c] != peer.Key) {
		return failed(c, ErrAlreadyInRoom)
	}

	var res Result
	if stale := peer.conn; stale != nil && stale != c {
		r.detach(stale)
		delete(d.bindings, stale)
		res.Closes = append(res.Closes, stale)
		log.Debug().Str("room", r.ID).Str("stale", stale.ID()).Msg("[mafia] replaced stale connection")
	}
	r.attach(peer, c)
	d.bindings[c] = r

	res.unicast(c, protocol.Reconnected, protocol.SessionPayload{RoomID: r.ID, PeerKey: peer.Key})
	if peer.Role != "" {
		res.unicast(c, protocol.PrivateRole, rolePayload(peer.Role))
		if roles.Privileged(peer.Role) {
			res.unicast(c, protocol.PrivilegedChatHistory, protocol.ChatHistoryPayload{Entries: r.ChatLog()})
		}
	}
	if r.timer.started {
		res.unicast(c, protocol.Timer, r.timer.payload(r.Paused))
	}
	electIfNeeded(r)
	res.roomState(r)
	log.Info().Str("room", r.ID).Str("conn", c.ID()).Msg("[mafia] peer reconnected")
	return res
}

// Disconnect releases c. It is a no-op for connections that are not bound,
// which makes repeated or stale disconnects harmless.
func (d *Dispatcher) Disconnect(c Conn) Result {
	r, ok := d.bindings[c]
	if !ok {
		return Result{}
	}
	delete(d.bindings, c)
	peer := r.detach(c)

	var res Result
	if d.rooms.destroyIfEmpty(r) {
		d.record(r, JournalRoomDestroyed, "")
		log.Info().Str("room", r.ID).Msg("[mafia] room destroyed")
		return res
	}
	electIfNeeded(r)
	if peer != nil {
		res.broadcast(r, protocol.PeerLeft, protocol.PeerPayload{Key: peer.Key, Name: peer.Name})
	}
	res.roomState(r)
	log.Info().Str("room", r.ID).Str("conn", c.ID()).Int("connections", r.LiveConnections()).Msg("[mafia] peer disconnected")
	return res
}
