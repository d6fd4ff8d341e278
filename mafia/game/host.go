package game

import "github.com/rs/zerolog/log"

// electIfNeeded keeps the current host while it is connected, otherwise
// hands the role to the first connected peer in join order. With nobody
// connected the host is left as is.
func electIfNeeded(r *Room) bool {
	if p, ok := r.peers[r.HostKey]; ok && p.Connected() {
		return false
	}
	for _, key := range r.order {
		if p := r.peers[key]; p.Connected() {
			prev := r.HostKey
			r.HostKey = key
			log.Debug().Str("room", r.ID).Str("from", prev).Str("to", key).Msg("[mafia] host changed")
			return true
		}
	}
	return false
}
