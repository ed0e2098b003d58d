package score

import (
	"baduk/internal/domain/board"
	"baduk/internal/domain/game"
)

// Review is the dead-stone negotiation entered after two consecutive passes.
// Both colors must approve the same marking before the score settles; any
// change to the marking withdraws previous approvals.
type Review struct {
	Dead          PointSet
	ApprovedBlack bool
	ApprovedWhite bool
}

// NewReview seeds the negotiation with the heuristic dead-stone suggestion.
func NewReview(b board.Board) *Review {
	return &Review{Dead: DetectDeadStones(b)}
}

func (r *Review) Toggle(b board.Board, p game.Point) {
	r.Dead = ToggleDeadChain(b, p, r.Dead)
	r.ApprovedBlack = false
	r.ApprovedWhite = false
}

func (r *Review) Approve(s game.Stone) {
	if s == game.Black {
		r.ApprovedBlack = true
	} else if s == game.White {
		r.ApprovedWhite = true
	}
}

func (r *Review) Settled() bool {
	return r.ApprovedBlack && r.ApprovedWhite
}
