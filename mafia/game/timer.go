package game

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/portal-mafia/mafia/protocol"
)

const (
	tickInterval  = time.Second
	tickMs        = int64(tickInterval / time.Millisecond)
	MaxDurationMs = int64(time.Hour / time.Millisecond)
)

type TimerState string

const (
	TimerIdle    TimerState = "idle"
	TimerRunning TimerState = "running"
	TimerPaused  TimerState = "paused"
	TimerExpired TimerState = "expired"
)

// Clock schedules recurring ticks. fire must run on the same serialized
// loop as message handling; stop cancels future fires.
type Clock interface {
	Every(d time.Duration, fire func()) (stop func())
}

// PhaseTimer is a per-room countdown. Pausing is a room-level flag, so the
// timer itself only knows whether it is counting.
type PhaseTimer struct {
	RemainingMs int64
	Running     bool
	Phase       Phase

	started bool
	gen     uint64
	stop    func()
}

// State derives the externally visible state given the room pause flag.
func (t *PhaseTimer) State(paused bool) TimerState {
	switch {
	case !t.started:
		return TimerIdle
	case t.Running && paused:
		return TimerPaused
	case t.Running:
		return TimerRunning
	default:
		return TimerExpired
	}
}

func (t *PhaseTimer) payload(paused bool) protocol.TimerPayload {
	return protocol.TimerPayload{
		RemainingMs: t.RemainingMs,
		Running:     t.Running,
		Phase:       string(t.Phase),
		State:       string(t.State(paused)),
	}
}

func (t *PhaseTimer) reset(ms int64, phase Phase) {
	t.unschedule()
	t.gen++
	t.started = true
	t.RemainingMs = ms
	t.Running = ms > 0
	t.Phase = phase
}

// advance counts one tick down and reports whether the timer just expired.
func (t *PhaseTimer) advance() bool {
	t.RemainingMs -= tickMs
	if t.RemainingMs <= 0 {
		t.RemainingMs = 0
		t.Running = false
		t.unschedule()
		return true
	}
	return false
}

func (t *PhaseTimer) unschedule() {
	if t.stop != nil {
		t.stop()
		t.stop = nil
	}
}

// schedule starts ticking r's timer if it is counting and the room is live.
func (d *Dispatcher) schedule(r *Room) {
	t := &r.timer
	t.unschedule()
	if !t.Running || r.Paused {
		return
	}
	// Fires still queued from an earlier schedule carry an old gen.
	t.gen++
	gen := t.gen
	t.stop = d.clock.Every(tickInterval, func() {
		d.tick(r, gen).Deliver()
	})
}

func (d *Dispatcher) startTimer(r *Room, ms int64, phase Phase) Result {
	var res Result
	r.timer.reset(ms, phase)
	d.schedule(r)
	res.broadcast(r, protocol.Timer, r.timer.payload(r.Paused))
	log.Debug().Str("room", r.ID).Int64("ms", ms).Str("phase", string(phase)).Msg("[mafia] timer started")
	return res
}

// tick handles one scheduled fire. Fires from a replaced timer, a paused
// room or a destroyed room are ignored.
func (d *Dispatcher) tick(r *Room, gen uint64) Result {
	var res Result
	t := &r.timer
	if gen != t.gen || !t.Running || r.Paused {
		return res
	}
	if current, ok := d.rooms.rooms[r.ID]; !ok || current != r {
		t.unschedule()
		return res
	}
	if t.advance() {
		log.Debug().Str("room", r.ID).Msg("[mafia] timer expired")
	}
	res.broadcast(r, protocol.Timer, t.payload(r.Paused))
	return res
}
