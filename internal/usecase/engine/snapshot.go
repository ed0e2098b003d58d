package engine

import (
	"encoding/json"
	"fmt"

	"baduk/internal/domain/board"
	"baduk/internal/domain/game"
	"baduk/internal/domain/gametree"
	"baduk/internal/domain/score"
	"baduk/internal/errors"
)

// Snapshot is the persisted engine state. The stage is included for external
// readers but rederived on restore; the board fields double as a checksum of
// the move list replay, which is how the two runtimes detect divergence.
type Snapshot struct {
	Rules         Rules                `json:"rules"`
	Board         []string             `json:"board"`
	CapturedBlack int                  `json:"captured_black"`
	CapturedWhite int                  `json:"captured_white"`
	Ko            *board.Ko            `json:"ko,omitempty"`
	Moves         []game.Move          `json:"moves"`
	Tree          *gametree.Serialized `json:"tree,omitempty"`
	Stage         Stage                `json:"stage"`
	Result        string               `json:"result,omitempty"`
	MainTime      string               `json:"main_time,omitempty"`
	Overtime      string               `json:"overtime,omitempty"`
	TimeLeft      []string             `json:"time_left,omitempty"`
	// DeadPoints is meaningful whenever the stage is territory_review, even
	// when empty: an empty negotiated marking must not be confused with an
	// absent one, which restores to the heuristic reseed.
	DeadPoints    []game.Point `json:"dead_points"`
	ApprovedBlack bool         `json:"approved_black,omitempty"`
	ApprovedWhite bool         `json:"approved_white,omitempty"`
}

// Snapshot captures the full engine state, including the branching tree so
// that a persisted client instance rehydrates its explored variations.
func (e *Engine) Snapshot() Snapshot {
	tree := e.tree.Serialize()
	s := Snapshot{
		Rules:         e.rules,
		Board:         e.board.RowStrings(),
		CapturedBlack: e.board.Captures(game.Black),
		CapturedWhite: e.board.Captures(game.White),
		Ko:            e.board.Ko(),
		Moves:         e.tree.Moves(),
		Tree:          &tree,
		Stage:         e.Stage(),
		Result:        e.result,
		MainTime:      e.mainTime,
		Overtime:      e.overtime,
		TimeLeft:      e.timeLeft,
	}
	if e.review != nil {
		s.DeadPoints = e.review.Dead.Points()
		s.ApprovedBlack = e.review.ApprovedBlack
		s.ApprovedWhite = e.review.ApprovedWhite
	}
	return s
}

// RestoreSnapshot rebuilds an engine from its snapshot. The move list is
// replayed from scratch and checked against the stated board, captures and ko;
// any mismatch means the snapshot is corrupt and nothing is returned.
func RestoreSnapshot(s Snapshot) (*Engine, error) {
	e, err := New(s.Rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptSnapshot, err)
	}
	if s.Tree != nil {
		err = e.ReplaceTree(*s.Tree)
	} else {
		err = e.ReplaceMoves(s.Moves)
	}
	if err != nil {
		return nil, err
	}
	e.result = s.Result
	e.mainTime = s.MainTime
	e.overtime = s.Overtime
	e.timeLeft = s.TimeLeft

	stated, err := board.Restore(s.Board, s.CapturedBlack, s.CapturedWhite, s.Ko)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptSnapshot, err)
	}
	if !e.board.Equal(stated) {
		return nil, fmt.Errorf("%w: replayed position differs from stated board", errors.ErrCorruptSnapshot)
	}

	if e.Stage() == StageTerritoryReview {
		review := score.NewReview(e.board)
		if s.DeadPoints != nil {
			review = &score.Review{Dead: score.NewPointSet(s.DeadPoints...)}
		}
		review.ApprovedBlack = s.ApprovedBlack
		review.ApprovedWhite = s.ApprovedWhite
		e.review = review
	}
	return e, nil
}

// EncodeSnapshot marshals the snapshot for the persistence layer.
func (e *Engine) EncodeSnapshot() ([]byte, error) {
	return json.Marshal(e.Snapshot())
}

// DecodeSnapshot unmarshals and restores in one step. Bad JSON is a corrupt
// snapshot like any other structural failure.
func DecodeSnapshot(data []byte) (*Engine, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptSnapshot, err)
	}
	return RestoreSnapshot(s)
}
