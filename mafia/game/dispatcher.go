package game

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/portal-mafia/mafia/protocol"
	"github.com/gosuda/portal-mafia/mafia/roles"
)

// Dispatcher applies one inbound message at a time to the room registry
// and returns the resulting events. It is not safe for concurrent use; the
// Hub serializes every call.
type Dispatcher struct {
	rooms    *Manager
	bindings map[Conn]*Room
	clock    Clock
	assigner roles.Assigner
	journal  Journal
	now      func() time.Time
	newKey   func() string
}

type Option func(*Dispatcher)

// WithJournal records room lifecycle events to j.
func WithJournal(j Journal) Option {
	return func(d *Dispatcher) {
		if j != nil {
			d.journal = j
		}
	}
}

// WithAssigner replaces the role assigner, e.g. to inject entropy in tests.
func WithAssigner(a roles.Assigner) Option {
	return func(d *Dispatcher) { d.assigner = a }
}

// WithNow replaces the wall clock used for chat timestamps and the journal.
func WithNow(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(rooms *Manager, clock Clock, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		rooms:    rooms,
		bindings: make(map[Conn]*Room),
		clock:    clock,
		journal:  nopJournal{},
		now:      time.Now,
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Rooms       int `json:"rooms"`
	Peers       int `json:"peers"`
	Connections int `json:"connections"`
}

func (d *Dispatcher) Stats() Stats {
	s := Stats{Rooms: d.rooms.Len()}
	for _, r := range d.rooms.rooms {
		s.Peers += len(r.peers)
		s.Connections += r.LiveConnections()
	}
	return s
}

// Connect greets a new connection with the role catalog.
func (d *Dispatcher) Connect(c Conn) Result {
	hello := protocol.HelloPayload{
		DefaultMaxPlayers: roles.DefaultMaxPlayers,
		DefaultCounts:     roles.DefaultConfig().CountsByName(),
	}
	for _, r := range roles.Catalog {
		spec, _ := roles.Lookup(r)
		hello.Roles = append(hello.Roles, protocol.RoleInfo{
			Name:       string(r),
			Team:       string(spec.Team),
			Privileged: roles.Privileged(r),
		})
	}
	var res Result
	res.unicast(c, protocol.Hello, hello)
	return res
}

// Dispatch decodes and handles one raw frame from c. Frames that cannot be
// decoded are dropped without a reply.
func (d *Dispatcher) Dispatch(c Conn, raw []byte) Result {
	env, err := protocol.Decode(raw)
	if err != nil {
		log.Debug().Str("conn", c.ID()).Msg("[mafia] dropped malformed frame")
		return Result{}
	}
	switch env.Type {
	case protocol.CreateRoom:
		return handle(c, env, d.createRoom)
	case protocol.JoinRoom:
		return handle(c, env, d.joinRoom)
	case protocol.Reconnect:
		return handle(c, env, d.reconnect)
	case protocol.SetName:
		return handle(c, env, d.setName)
	case protocol.UpdateSettings:
		return handle(c, env, d.updateSettings)
	case protocol.UpdateRoleCounts:
		return handle(c, env, d.updateRoleCounts)
	case protocol.StartGame:
		return d.startGame(c)
	case protocol.SetPhase:
		return handle(c, env, d.setPhase)
	case protocol.StartTimer:
		return handle(c, env, d.startTimerCmd)
	case protocol.PauseGame:
		return handle(c, env, d.pauseGame)
	case protocol.PrivilegedChatSend:
		return handle(c, env, d.privilegedChat)
	case protocol.Ping:
		var res Result
		res.unicast(c, protocol.Pong, nil)
		return res
	default:
		log.Debug().Str("conn", c.ID()).Str("type", string(env.Type)).Msg("[mafia] dropped unknown message")
		return Result{}
	}
}

func handle[P any](c Conn, env protocol.Envelope, fn func(Conn, P) Result) Result {
	var payload P
	if err := env.Bind(&payload); err != nil {
		log.Debug().Str("conn", c.ID()).Str("type", string(env.Type)).Msg("[mafia] dropped malformed payload")
		return Result{}
	}
	return fn(c, payload)
}

// member resolves the room and peer bound to c.
func (d *Dispatcher) member(c Conn) (*Room, *Peer, *Error) {
	r, ok := d.bindings[c]
	if !ok {
		return nil, nil, ErrNotInRoom
	}
	p, ok := r.peers[r.conns[c]]
	if !ok {
		return nil, nil, ErrNotInRoom
	}
	return r, p, nil
}

// host is member plus the host check.
func (d *Dispatcher) host(c Conn) (*Room, *Peer, *Error) {
	r, p, err := d.member(c)
	if err != nil {
		return nil, nil, err
	}
	if r.HostKey != p.Key {
		return nil, nil, ErrNotHost
	}
	return r, p, nil
}

func (d *Dispatcher) record(r *Room, kind, detail string) {
	d.journal.Record(JournalEvent{At: d.now(), Room: r.ID, Kind: kind, Detail: detail})
}

func (d *Dispatcher) setName(c Conn, p protocol.SetNamePayload) Result {
	r, peer, err := d.member(c)
	if err != nil {
		return failed(c, err)
	}
	peer.Name = sanitizeName(p.Name)
	var res Result
	res.roomState(r)
	return res
}

func (d *Dispatcher) updateSettings(c Conn, p protocol.UpdateSettingsPayload) Result {
	r, _, err := d.host(c)
	if err != nil {
		return failed(c, err)
	}
	if p.MaxPlayers == nil && p.EnabledRoles == nil {
		return failed(c, ErrInvalidPayload)
	}
	if p.MaxPlayers != nil {
		r.Settings.SetMaxPlayers(*p.MaxPlayers)
	}
	if p.EnabledRoles != nil {
		r.Settings.EnableOnly(p.EnabledRoles)
	}
	var res Result
	res.roomState(r)
	return res
}

func (d *Dispatcher) updateRoleCounts(c Conn, p protocol.UpdateRoleCountsPayload) Result {
	r, _, err := d.host(c)
	if err != nil {
		return failed(c, err)
	}
	if p.Counts == nil {
		return failed(c, ErrInvalidPayload)
	}
	r.Settings.SetCounts(p.Counts)
	var res Result
	res.roomState(r)
	return res
}

// startGame deals roles and enters the first night. Each role goes only to
// its owner; disconnected peers receive theirs on reconnect.
func (d *Dispatcher) startGame(c Conn) Result {
	r, _, err := d.host(c)
	if err != nil {
		return failed(c, err)
	}
	if r.Phase != PhaseLobby {
		return failed(c, ErrGameInProgress)
	}
	if len(r.peers) < roles.MinPlayers {
		return failed(c, ErrNotEnoughPlayers)
	}
	assigned, aerr := d.assigner.Assign(r.order, r.Settings)
	if aerr != nil {
		log.Error().Err(aerr).Str("room", r.ID).Msg("[mafia] role assignment failed")
		return failed(c, ErrAssignmentFailed)
	}

	var res Result
	for _, p := range r.Peers() {
		p.Role = assigned[p.Key]
		p.Alive = true
		res.unicast(p.conn, protocol.PrivateRole, rolePayload(p.Role))
	}
	r.Phase = PhaseNight
	r.Day = 1
	res.roomState(r)
	d.record(r, JournalGameStarted, "players="+strconv.Itoa(len(r.peers)))
	log.Info().Str("room", r.ID).Int("players", len(r.peers)).Msg("[mafia] game started")
	return res
}

func (d *Dispatcher) setPhase(c Conn, p protocol.SetPhasePayload) Result {
	r, _, err := d.host(c)
	if err != nil {
		return failed(c, err)
	}
	next, ok := ParsePhase(p.Phase)
	if !ok {
		return failed(c, ErrInvalidPhase)
	}
	r.setPhase(next)
	var res Result
	res.roomState(r)
	d.record(r, JournalPhaseChanged, string(next))
	return res
}

func (d *Dispatcher) startTimerCmd(c Conn, p protocol.StartTimerPayload) Result {
	r, _, err := d.host(c)
	if err != nil {
		return failed(c, err)
	}
	if p.Ms == nil || *p.Ms <= 0 || *p.Ms > MaxDurationMs {
		return failed(c, ErrInvalidDuration)
	}
	phase := r.Phase
	if p.Phase != "" {
		parsed, ok := ParsePhase(p.Phase)
		if !ok {
			return failed(c, ErrInvalidPhase)
		}
		phase = parsed
	}
	return d.startTimer(r, *p.Ms, phase)
}

// pauseGame sets the room pause flag. While paused the timer schedule is
// stopped so the remaining time stays frozen.
func (d *Dispatcher) pauseGame(c Conn, p protocol.PauseGamePayload) Result {
	r, _, err := d.host(c)
	if err != nil {
		return failed(c, err)
	}
	var paused bool
	switch p.Action {
	case protocol.ActionPause:
		paused = true
	case protocol.ActionResume:
		paused = false
	default:
		return failed(c, ErrInvalidAction)
	}
	if r.Paused == paused {
		return Result{}
	}
	r.Paused = paused
	if paused {
		r.timer.unschedule()
	} else {
		d.schedule(r)
	}
	var res Result
	res.broadcast(r, protocol.Paused, protocol.PausedPayload{Paused: paused})
	res.roomState(r)
	return res
}
