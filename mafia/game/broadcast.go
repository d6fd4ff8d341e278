package game

import (
	"github.com/gosuda/portal-mafia/mafia/protocol"
	"github.com/gosuda/portal-mafia/mafia/roles"
)

// Outbound is one event addressed to one connection.
type Outbound struct {
	To    Conn
	Event protocol.Event
}

// Result is everything a handled message produced, in mutation order.
// Nothing is sent until Deliver is called.
type Result struct {
	Outbound []Outbound
	Closes   []Conn
	Err      *Error
}

// Deliver closes stale connections first, then pushes every event.
func (res Result) Deliver() {
	for _, c := range res.Closes {
		c.Close()
	}
	for _, out := range res.Outbound {
		out.To.Send(out.Event)
	}
}

func (res *Result) unicast(c Conn, typ protocol.Type, payload any) {
	if c == nil {
		return
	}
	res.Outbound = append(res.Outbound, Outbound{To: c, Event: protocol.Event{Type: typ, Payload: payload}})
}

// broadcast addresses every connected peer of r in join order.
func (res *Result) broadcast(r *Room, typ protocol.Type, payload any) {
	res.broadcastExcept(r, nil, typ, payload)
}

func (res *Result) broadcastExcept(r *Room, skip Conn, typ protocol.Type, payload any) {
	for _, p := range r.Peers() {
		if p.conn != nil && p.conn != skip {
			res.unicast(p.conn, typ, payload)
		}
	}
}

// privileged addresses connected peers whose current role is privileged.
func (res *Result) privileged(r *Room, typ protocol.Type, payload any) {
	for _, p := range r.Peers() {
		if p.conn != nil && roles.Privileged(p.Role) {
			res.unicast(p.conn, typ, payload)
		}
	}
}

func (res *Result) roomState(r *Room) {
	res.broadcast(r, protocol.RoomState, r.snapshot())
}

func (res *Result) fail(c Conn, err *Error) {
	res.Err = err
	res.unicast(c, protocol.Error, protocol.ErrorPayload{Message: err.Code, Kind: string(err.Kind)})
}

func failed(c Conn, err *Error) Result {
	var res Result
	res.fail(c, err)
	return res
}

func rolePayload(role roles.Role) protocol.PrivateRolePayload {
	spec, _ := roles.Lookup(role)
	return protocol.PrivateRolePayload{
		Role:        string(spec.Name),
		Team:        string(spec.Team),
		Description: spec.Desc,
	}
}
