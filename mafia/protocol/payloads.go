package protocol

// Inbound payloads. Pointer fields distinguish "absent" from a zero value.

type CreateRoomPayload struct {
	Name string `json:"name,omitempty"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name,omitempty"`
}

type ReconnectPayload struct {
	RoomID  string `json:"roomId"`
	PeerKey string `json:"peerKey"`
}

type SetNamePayload struct {
	Name string `json:"name"`
}

type UpdateSettingsPayload struct {
	MaxPlayers   *int     `json:"maxPlayers,omitempty"`
	EnabledRoles []string `json:"enabledRoles,omitempty"`
}

type UpdateRoleCountsPayload struct {
	Counts map[string]int `json:"counts"`
}

type SetPhasePayload struct {
	Phase string `json:"phase"`
}

type StartTimerPayload struct {
	Ms    *int64 `json:"ms"`
	Phase string `json:"phase,omitempty"`
}

const (
	ActionPause  = "pause"
	ActionResume = "resume"
)

type PauseGamePayload struct {
	Action string `json:"action"`
}

type PrivilegedChatSendPayload struct {
	Text string `json:"text"`
}

// Outbound payloads.

type HelloPayload struct {
	Roles             []RoleInfo     `json:"roles"`
	DefaultMaxPlayers int            `json:"defaultMaxPlayers"`
	DefaultCounts     map[string]int `json:"defaultRoleCounts"`
}

type RoleInfo struct {
	Name       string `json:"name"`
	Team       string `json:"team"`
	Privileged bool   `json:"privileged"`
}

// SessionPayload answers ROOM_CREATED, JOINED and RECONNECTED.
type SessionPayload struct {
	RoomID  string `json:"roomId"`
	PeerKey string `json:"peerKey"`
}

type PeerPayload struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// PeerView is the redacted public view of a peer. It has no role field.
type PeerView struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Alive     bool   `json:"alive"`
	Connected bool   `json:"connected"`
}

type SettingsView struct {
	MaxPlayers int            `json:"maxPlayers"`
	RoleCounts map[string]int `json:"roleCounts"`
}

type RoomStatePayload struct {
	ID       string       `json:"id"`
	HostKey  string       `json:"hostKey"`
	Phase    string       `json:"phase"`
	Day      int          `json:"day"`
	Paused   bool         `json:"paused"`
	Settings SettingsView `json:"settings"`
	Peers    []PeerView   `json:"peers"`
}

type PrivateRolePayload struct {
	Role        string `json:"role"`
	Team        string `json:"team"`
	Description string `json:"description"`
}

type ChatEntry struct {
	FromKey   string `json:"fromKey"`
	FromName  string `json:"fromName"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type ChatHistoryPayload struct {
	Entries []ChatEntry `json:"entries"`
}

type TimerPayload struct {
	RemainingMs int64  `json:"remainingMs"`
	Running     bool   `json:"running"`
	Phase       string `json:"phase"`
	State       string `json:"state"`
}

type PausedPayload struct {
	Paused bool `json:"paused"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}
