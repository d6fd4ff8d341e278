package game

// Kind classifies an Error for clients that only care about the category.
type Kind string

const (
	KindNotFound      Kind = "NOT_FOUND"
	KindAuthorization Kind = "AUTHORIZATION"
	KindValidation    Kind = "VALIDATION"
	KindStateConflict Kind = "STATE_CONFLICT"
	KindCapacity      Kind = "CAPACITY"
)

// Error is a rejection reported to the originating connection as ERROR.
type Error struct {
	Kind Kind
	Code string
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Code }

// Is matches on the stable code so wrapped copies compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrRoomNotFound = &Error{KindNotFound, "ROOM_NOT_FOUND"}
	ErrPeerNotFound = &Error{KindNotFound, "PEER_NOT_FOUND"}
	ErrNotInRoom    = &Error{KindNotFound, "NOT_IN_ROOM"}

	ErrNotHost       = &Error{KindAuthorization, "NOT_HOST"}
	ErrNotPrivileged = &Error{KindAuthorization, "NOT_PRIVILEGED"}

	ErrInvalidPayload   = &Error{KindValidation, "INVALID_PAYLOAD"}
	ErrNotEnoughPlayers = &Error{KindValidation, "NOT_ENOUGH_PLAYERS"}
	ErrInvalidPhase     = &Error{KindValidation, "INVALID_PHASE"}
	ErrInvalidDuration  = &Error{KindValidation, "INVALID_DURATION"}
	ErrInvalidAction    = &Error{KindValidation, "INVALID_ACTION"}
	ErrEmptyMessage     = &Error{KindValidation, "EMPTY_MESSAGE"}

	ErrGameInProgress   = &Error{KindStateConflict, "GAME_IN_PROGRESS"}
	ErrWrongPhase       = &Error{KindStateConflict, "WRONG_PHASE"}
	ErrAlreadyInRoom    = &Error{KindStateConflict, "ALREADY_IN_ROOM"}
	ErrAssignmentFailed = &Error{KindStateConflict, "ASSIGNMENT_FAILED"}

	ErrRoomFull   = &Error{KindCapacity, "ROOM_FULL"}
	ErrNoRoomCode = &Error{KindCapacity, "ROOM_CODE_UNAVAILABLE"}
)
