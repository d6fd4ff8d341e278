package game

import (
	"github.com/gosuda/portal-mafia/mafia/protocol"
	"github.com/gosuda/portal-mafia/mafia/roles"
)

// privilegedChat accepts a night-time line from a privileged peer, keeps it
// for backlog replay and delivers it to the privileged subset only.
func (d *Dispatcher) privilegedChat(c Conn, p protocol.PrivilegedChatSendPayload) Result {
	r, peer, err := d.member(c)
	if err != nil {
		return failed(c, err)
	}
	if !roles.Privileged(peer.Role) {
		return failed(c, ErrNotPrivileged)
	}
	if r.Phase != PhaseNight {
		return failed(c, ErrWrongPhase)
	}
	text := sanitizeChat(p.Text)
	if text == "" {
		return failed(c, ErrEmptyMessage)
	}
	entry := protocol.ChatEntry{
		FromKey:   peer.Key,
		FromName:  peer.Name,
		Text:      text,
		Timestamp: d.now().UnixMilli(),
	}
	r.chat = append(r.chat, entry)

	var res Result
	res.privileged(r, protocol.PrivilegedChat, entry)
	return res
}
