package errors

import "errors"

// Input errors: the caller did something illegal, prior state is left untouched.
var (
	ErrOutOfTurn       = errors.New("it is not this color's turn")
	ErrOccupiedPoint   = errors.New("point is already occupied")
	ErrKoViolation     = errors.New("ko forbids an immediate recapture at this point")
	ErrSuicide         = errors.New("move would leave own chain without liberties")
	ErrOutOfBounds     = errors.New("point is outside the board")
	ErrInvalidMoveKind = errors.New("move kind does not match its payload")
	ErrGameDone        = errors.New("game is already finished")
	ErrNoActiveReview  = errors.New("no territory review in progress")
	ErrNothingToUndo   = errors.New("no moves to undo")
)

// Structural errors: decode failures, the previous in-memory state stays authoritative.
var (
	ErrMalformedSGF    = errors.New("malformed sgf")
	ErrCorruptSnapshot = errors.New("corrupt game snapshot")
	ErrUnknownNode     = errors.New("unknown game tree node")
)

var (
	ErrCreateGameFailed = errors.New("create game failed")
	ErrJoinGameFailed   = errors.New("join game failed")
	ErrGameNotFound     = errors.New("game not found")
	ErrInternal         = errors.New("internal error")
)
