package engine

import (
	"fmt"

	"baduk/internal/domain/board"
	"baduk/internal/domain/game"
	"baduk/internal/domain/gametree"
	"baduk/internal/domain/score"
	"baduk/internal/errors"
)

// Stage is derived from the move list and result, never stored.
type Stage string

const (
	StageUnstarted       Stage = "unstarted"
	StagePlay            Stage = "play"
	StageTerritoryReview Stage = "territory_review"
	StageDone            Stage = "done"
)

// Rules fixes everything agreed before the first move. Handicap placement and
// who moves first after handicap stones are policy parameters, not hard-coded.
type Rules struct {
	Cols           int          `json:"cols"`
	Rows           int          `json:"rows"`
	Komi           float64      `json:"komi"`
	Handicap       int          `json:"handicap,omitempty"`
	HandicapPoints []game.Point `json:"handicap_points,omitempty"`
	// BlackFirstAfterHandicap overrides the usual convention that White takes
	// the first turn once handicap stones are pre-placed.
	BlackFirstAfterHandicap bool `json:"black_first_after_handicap,omitempty"`
}

func DefaultRules(size int) Rules {
	return Rules{Cols: size, Rows: size, Komi: 6.5}
}

// Engine owns one game: the authoritative board, the branching move history
// and the stage machine. It is synchronous and performs no locking; the caller
// must serialize invocations per game.
type Engine struct {
	rules  Rules
	base   board.Board
	board  board.Board
	tree   *gametree.Tree
	review *score.Review
	result string
	// time-control annotations pass through SGF import/export uninterpreted;
	// the clock itself lives outside the engine
	mainTime string
	overtime string
	timeLeft []string
}

func New(rules Rules) (*Engine, error) {
	b, err := board.New(rules.Cols, rules.Rows)
	if err != nil {
		return nil, err
	}
	points := rules.HandicapPoints
	if rules.Handicap > 0 && len(points) == 0 {
		points = HoshiPoints(rules.Cols, rules.Rows, rules.Handicap)
	}
	for _, p := range points {
		if !b.InBounds(p) || b.At(p) != game.Empty {
			return nil, fmt.Errorf("bad handicap point (%d,%d)", p.Col, p.Row)
		}
		b, err = b.Play(p, game.Black)
		if err != nil {
			return nil, fmt.Errorf("bad handicap point (%d,%d): %v", p.Col, p.Row, err)
		}
	}
	rules.HandicapPoints = points
	return &Engine{
		rules: rules,
		base:  b,
		board: b,
		tree:  gametree.New(),
	}, nil
}

func (e *Engine) Rules() Rules         { return e.rules }
func (e *Engine) Board() board.Board   { return e.board }
func (e *Engine) Result() string       { return e.result }
func (e *Engine) Moves() []game.Move   { return e.tree.Moves() }
func (e *Engine) Tree() *gametree.Tree { return e.tree }

// Stage derives the game stage from the result and the active move line.
func (e *Engine) Stage() Stage {
	if e.result != "" {
		return StageDone
	}
	moves := e.tree.Moves()
	if len(moves) == 0 {
		return StageUnstarted
	}
	if len(moves) >= 2 &&
		moves[len(moves)-1].Kind == game.MovePass &&
		moves[len(moves)-2].Kind == game.MovePass {
		return StageTerritoryReview
	}
	return StagePlay
}

// Turn is -lastStone; Black opens, unless handicap stones were pre-placed in
// which case White does (policy, see Rules).
func (e *Engine) Turn() game.Stone {
	moves := e.tree.Moves()
	if len(moves) == 0 {
		if e.rules.Handicap > 0 && !e.rules.BlackFirstAfterHandicap {
			return game.White
		}
		return game.Black
	}
	return moves[len(moves)-1].Stone.Opponent()
}

// Apply validates and dispatches a move coming off the wire.
func (e *Engine) Apply(m game.Move) error {
	if err := m.Validate(); err != nil {
		return err
	}
	switch m.Kind {
	case game.MovePlay:
		return e.Play(m.Stone, *m.Point)
	case game.MovePass:
		return e.Pass(m.Stone)
	default:
		return e.Resign(m.Stone)
	}
}

// Play places a stone. During territory review either color may play, which
// cancels the review and reopens the position; otherwise strict alternation
// applies. On any error the engine state is unchanged.
func (e *Engine) Play(s game.Stone, p game.Point) error {
	stage := e.Stage()
	if stage == StageDone {
		return errors.ErrGameDone
	}
	if stage != StageTerritoryReview && s != e.Turn() {
		return fmt.Errorf("%w: %s to move", errors.ErrOutOfTurn, e.Turn())
	}
	next, err := e.board.Play(p, s)
	if err != nil {
		return err
	}
	e.board = next
	e.tree.Add(game.NewPlay(s, p))
	e.review = nil
	return nil
}

// Pass ends the turn without a move. The second consecutive pass opens the
// territory review, seeded with the heuristic dead-stone suggestion.
func (e *Engine) Pass(s game.Stone) error {
	if e.Stage() == StageDone {
		return errors.ErrGameDone
	}
	if s != e.Turn() {
		return fmt.Errorf("%w: %s to move", errors.ErrOutOfTurn, e.Turn())
	}
	// passing spends the ply the ko restriction was scoped to
	e.board = e.board.ClearKo()
	e.tree.Add(game.NewPass(s))
	if e.Stage() == StageTerritoryReview && e.review == nil {
		e.review = score.NewReview(e.board)
	}
	return nil
}

// Resign ends the game immediately in the opponent's favor.
func (e *Engine) Resign(s game.Stone) error {
	if e.Stage() == StageDone {
		return errors.ErrGameDone
	}
	e.tree.Add(game.NewResign(s))
	e.result = s.Opponent().SGFColor() + "+R"
	return nil
}

// Timeout is the terminal event fed in by the external time-control layer,
// handled resignation-equivalently. It is not a move and does not enter the
// move list.
func (e *Engine) Timeout(s game.Stone) error {
	if e.Stage() == StageDone {
		return errors.ErrGameDone
	}
	e.result = s.Opponent().SGFColor() + "+T"
	return nil
}

// Review returns the active territory negotiation, nil outside review.
func (e *Engine) Review() *score.Review {
	return e.review
}

// ToggleDeadChain flips the whole chain at p in the review's dead set and
// withdraws both approvals.
func (e *Engine) ToggleDeadChain(p game.Point) error {
	if e.Stage() != StageTerritoryReview || e.review == nil {
		return errors.ErrNoActiveReview
	}
	if !e.board.InBounds(p) {
		return fmt.Errorf("%w: (%d,%d)", errors.ErrOutOfBounds, p.Col, p.Row)
	}
	e.review.Toggle(e.board, p)
	return nil
}

// ApproveTerritory records one color's agreement with the current dead-stone
// set. When both colors have approved the same set the score settles and the
// game is done.
func (e *Engine) ApproveTerritory(s game.Stone) error {
	if e.Stage() != StageTerritoryReview || e.review == nil {
		return errors.ErrNoActiveReview
	}
	e.review.Approve(s)
	if e.review.Settled() {
		e.result = score.Score(e.board, e.review.Dead, e.rules.Komi).String()
	}
	return nil
}

// Territory returns the ownership overlay for rendering. Outside review the
// overlay uses an empty dead set.
func (e *Engine) Territory() []game.Stone {
	dead := score.NewPointSet()
	if e.review != nil {
		dead = e.review.Dead
	}
	return score.EstimateTerritory(e.board, dead)
}

// ScoreNow computes the score for the current dead-stone marking without
// settling anything.
func (e *Engine) ScoreNow() score.Result {
	dead := score.NewPointSet()
	if e.review != nil {
		dead = e.review.Dead
	}
	return score.Score(e.board, dead, e.rules.Komi)
}

// replay derives a board by applying the plays of a move list to the starting
// position. Undo and all restore paths go through here so that a rebuilt
// state is always bit-identical to a fresh derivation.
func (e *Engine) replay(moves []game.Move) (board.Board, error) {
	b := e.base
	for i, m := range moves {
		if m.Kind == game.MovePass {
			b = b.ClearKo()
			continue
		}
		if m.Kind != game.MovePlay {
			continue
		}
		next, err := b.Play(*m.Point, m.Stone)
		if err != nil {
			return board.Board{}, fmt.Errorf("move %d: %w", i, err)
		}
		b = next
	}
	return b, nil
}

// Undo removes the last move of the active line and rederives the position by
// replaying the remainder. Never reverses captures incrementally.
func (e *Engine) Undo() error {
	if e.Stage() == StageDone {
		return errors.ErrGameDone
	}
	moves := e.tree.Moves()
	if len(moves) == 0 {
		return errors.ErrNothingToUndo
	}
	remaining := moves[:len(moves)-1]
	b, err := e.replay(remaining)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInternal, err)
	}
	e.tree.ReplaceMoves(remaining)
	e.board = b
	e.review = nil
	if e.Stage() == StageTerritoryReview {
		e.review = score.NewReview(e.board)
	}
	return nil
}

// Navigate repositions the tree's read-only view pointer. The authoritative
// board is untouched; ViewBoard derives the viewed position.
func (e *Engine) Navigate(id int) error {
	return e.tree.Navigate(id)
}

// ViewBoard replays the moves up to the view node.
func (e *Engine) ViewBoard() (board.Board, error) {
	return e.replay(e.tree.MovesToView())
}

// ReplaceMoves absorbs an authoritative flat move list, discarding any locally
// diverged branch. On a replay failure the engine is unchanged.
func (e *Engine) ReplaceMoves(moves []game.Move) error {
	b, err := e.replay(moves)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCorruptSnapshot, err)
	}
	e.tree.ReplaceMoves(moves)
	e.board = b
	e.result = ""
	if n := len(moves); n > 0 && moves[n-1].Kind == game.MoveResign {
		e.result = moves[n-1].Stone.Opponent().SGFColor() + "+R"
	}
	e.review = nil
	if e.Stage() == StageTerritoryReview {
		e.review = score.NewReview(e.board)
	}
	return nil
}

// ReplaceTree restores a persisted branching tree and rederives the board
// from its active line.
func (e *Engine) ReplaceTree(s gametree.Serialized) error {
	restored, err := gametree.Restore(s)
	if err != nil {
		return err
	}
	b, err := e.replay(restored.Moves())
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrCorruptSnapshot, err)
	}
	e.tree = restored
	e.board = b
	moves := restored.Moves()
	e.result = ""
	if n := len(moves); n > 0 && moves[n-1].Kind == game.MoveResign {
		e.result = moves[n-1].Stone.Opponent().SGFColor() + "+R"
	}
	e.review = nil
	if e.Stage() == StageTerritoryReview {
		e.review = score.NewReview(e.board)
	}
	return nil
}

// HoshiPoints returns the conventional star-point handicap placement for the
// standard square sizes; other boards get no default and need explicit points.
func HoshiPoints(cols, rows, n int) []game.Point {
	if cols != rows {
		return nil
	}
	var c, m, f int
	switch cols {
	case 9:
		c, m, f = 2, 4, 6
	case 13:
		c, m, f = 3, 6, 9
	case 19:
		c, m, f = 3, 9, 15
	default:
		return nil
	}
	order := []game.Point{
		{Col: f, Row: c}, {Col: c, Row: f}, {Col: f, Row: f}, {Col: c, Row: c},
		{Col: m, Row: m}, {Col: c, Row: m}, {Col: f, Row: m}, {Col: m, Row: c}, {Col: m, Row: f},
	}
	if n > len(order) {
		n = len(order)
	}
	// the center stone joins only for odd counts above four
	if n == 5 || n == 7 {
		pts := append(append([]game.Point{}, order[:4]...), order[4])
		if n == 7 {
			pts = append(pts, order[5], order[6])
		}
		return pts
	}
	if n == 6 || n == 8 {
		pts := append([]game.Point{}, order[:4]...)
		pts = append(pts, order[5], order[6])
		if n == 8 {
			pts = append(pts, order[7], order[8])
		}
		return pts
	}
	return append([]game.Point{}, order[:n]...)
}
