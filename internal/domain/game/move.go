package game

import (
	"fmt"

	"baduk/internal/errors"
)

type MoveKind string

const (
	MovePlay   MoveKind = "play"
	MovePass   MoveKind = "pass"
	MoveResign MoveKind = "resign"
)

// Move is a tagged variant: Play carries a point, Pass and Resign must not.
type Move struct {
	Kind  MoveKind `json:"kind" bson:"kind"`
	Stone Stone    `json:"stone" bson:"stone"`
	Point *Point   `json:"point,omitempty" bson:"point,omitempty"`
}

func NewPlay(s Stone, p Point) Move {
	return Move{Kind: MovePlay, Stone: s, Point: &p}
}

func NewPass(s Stone) Move {
	return Move{Kind: MovePass, Stone: s}
}

func NewResign(s Stone) Move {
	return Move{Kind: MoveResign, Stone: s}
}

func (m Move) Validate() error {
	switch m.Kind {
	case MovePlay:
		if m.Point == nil {
			return fmt.Errorf("%w: play without a point", errors.ErrInvalidMoveKind)
		}
	case MovePass, MoveResign:
		if m.Point != nil {
			return fmt.Errorf("%w: %s carries a point", errors.ErrInvalidMoveKind, m.Kind)
		}
	default:
		return fmt.Errorf("%w: %q", errors.ErrInvalidMoveKind, m.Kind)
	}
	if m.Stone != Black && m.Stone != White {
		return fmt.Errorf("%w: move without a color", errors.ErrInvalidMoveKind)
	}
	return nil
}

// Equal reports whether two moves are the same action. The game tree uses this
// to re-use an already explored child instead of creating a duplicate branch.
func (m Move) Equal(other Move) bool {
	if m.Kind != other.Kind || m.Stone != other.Stone {
		return false
	}
	if m.Point == nil || other.Point == nil {
		return m.Point == other.Point
	}
	return *m.Point == *other.Point
}

func (m Move) String() string {
	if m.Kind == MovePlay && m.Point != nil {
		return fmt.Sprintf("%s %s(%d,%d)", m.Stone, m.Kind, m.Point.Col, m.Point.Row)
	}
	return fmt.Sprintf("%s %s", m.Stone, m.Kind)
}
