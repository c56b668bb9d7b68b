package game

import "errors"

// ErrorKind groups room errors by how callers should treat them.
type ErrorKind int

const (
	ErrorKindValidation ErrorKind = iota
	ErrorKindAuthorization
	ErrorKindNotFound
)

// RoomError is a rejected room operation. Reason is stable and sent to clients.
type RoomError struct {
	Kind   ErrorKind
	Reason string
}

func (e *RoomError) Error() string {
	return e.Reason
}

var (
	ErrRoomFull          = &RoomError{Kind: ErrorKindValidation, Reason: "room-full"}
	ErrNoProperties      = &RoomError{Kind: ErrorKindValidation, Reason: "no-properties"}
	ErrAlreadyOwned      = &RoomError{Kind: ErrorKindValidation, Reason: "already-owned"}
	ErrInsufficientFunds = &RoomError{Kind: ErrorKindValidation, Reason: "insufficient-funds"}
	ErrInvalidAmount     = &RoomError{Kind: ErrorKindValidation, Reason: "invalid-amount"}
	ErrInvalidTile       = &RoomError{Kind: ErrorKindValidation, Reason: "invalid-property"}
	ErrInvalidPayload    = &RoomError{Kind: ErrorKindValidation, Reason: "invalid-payload"}

	ErrNotJoined        = &RoomError{Kind: ErrorKindAuthorization, Reason: "not-joined"}
	ErrNotAdmin         = &RoomError{Kind: ErrorKindAuthorization, Reason: "not-admin"}
	ErrNotYourTurn      = &RoomError{Kind: ErrorKindAuthorization, Reason: "not-your-turn"}
	ErrNotStarted       = &RoomError{Kind: ErrorKindAuthorization, Reason: "not-started"}
	ErrNotEnoughPlayers = &RoomError{Kind: ErrorKindAuthorization, Reason: "not-enough-players"}

	ErrNoRoom   = &RoomError{Kind: ErrorKindNotFound, Reason: "no-room"}
	ErrNoPlayer = &RoomError{Kind: ErrorKindNotFound, Reason: "no-player"}
	ErrNotFound = &RoomError{Kind: ErrorKindNotFound, Reason: "not-found"}

	// ErrLobbyCodesExhausted is returned when no free lobby code was found.
	ErrLobbyCodesExhausted = errors.New("failed to generate a unique lobby code")
)

func kindOf(err error) (ErrorKind, bool) {
	var re *RoomError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

func IsNotFound(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == ErrorKindNotFound
}

func IsAuthorization(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == ErrorKindAuthorization
}

func IsValidation(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == ErrorKindValidation
}

// Reason returns the client-facing reason for err.
func Reason(err error) string {
	var re *RoomError
	if errors.As(err, &re) {
		return re.Reason
	}
	return "internal-error"
}
