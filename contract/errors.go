package contract

import "github.com/cockroachdb/errors"

// Every rejection is one of these sentinels, wrapped with call context.
// Callers match with errors.Is. A failing call leaves no state change.
var (
	ErrNotFound            = errors.New("game not found")
	ErrAlreadyFull         = errors.New("game already has an opponent")
	ErrSelfJoin            = errors.New("creator cannot join their own game")
	ErrNotParticipant      = errors.New("caller is not a participant")
	ErrAlreadyStarted      = errors.New("game already started")
	ErrNotStarted          = errors.New("game not started")
	ErrNoOpponent          = errors.New("game has no opponent")
	ErrDuplicateSubmission = errors.New("stake already submitted this round")
)
