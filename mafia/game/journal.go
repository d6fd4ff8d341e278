package game

import "time"

// JournalEvent is an operator-facing record of something that happened to
// a room. It never carries role assignments.
type JournalEvent struct {
	At     time.Time
	Room   string
	Kind   string
	Detail string
}

const (
	JournalRoomCreated   = "room_created"
	JournalGameStarted   = "game_started"
	JournalPhaseChanged  = "phase_changed"
	JournalRoomDestroyed = "room_destroyed"
)

// Journal receives room lifecycle events. Record must not block for long;
// it runs on the Hub loop.
type Journal interface {
	Record(ev JournalEvent)
}

type nopJournal struct{}

func (nopJournal) Record(JournalEvent) {}
