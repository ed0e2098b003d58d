package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baduk/internal/domain/board"
	"baduk/internal/domain/game"
)

func mustBoard(t *testing.T, rows []string) board.Board {
	t.Helper()
	b, err := board.FromRows(rows)
	require.NoError(t, err)
	return b
}

func ownerAt(b board.Board, ownership []game.Stone, col, row int) game.Stone {
	return ownership[row*b.Cols()+col]
}

func TestEstimateTerritory(t *testing.T) {
	b := mustBoard(t, []string{
		"B+W+",
		"B+W+",
		"B+W+",
		"B+W+",
	})

	ownership := EstimateTerritory(b, NewPointSet())

	// stones own their points
	assert.Equal(t, game.Black, ownerAt(b, ownership, 0, 0))
	assert.Equal(t, game.White, ownerAt(b, ownership, 2, 3))
	// the middle column touches both colors: dame
	for row := 0; row < 4; row++ {
		assert.Equal(t, game.Empty, ownerAt(b, ownership, 1, row))
	}
	// the right column is white's alone
	for row := 0; row < 4; row++ {
		assert.Equal(t, game.White, ownerAt(b, ownership, 3, row))
	}
}

func TestEstimateTerritoryTreatsDeadAsEmpty(t *testing.T) {
	b := mustBoard(t, []string{
		"B+B+B",
		"BBBBB",
		"+++++",
		"+++++",
		"+W+++",
	})

	dead := NewPointSet(game.Point{Col: 1, Row: 4})
	ownership := EstimateTerritory(b, dead)

	// the dead white stone's point becomes black territory
	assert.Equal(t, game.Black, ownerAt(b, ownership, 1, 4))
	assert.Equal(t, game.Black, ownerAt(b, ownership, 0, 3))
	// black's eyes are black territory too
	assert.Equal(t, game.Black, ownerAt(b, ownership, 1, 0))
	assert.Equal(t, game.Black, ownerAt(b, ownership, 3, 0))
}

func TestDetectDeadStones(t *testing.T) {
	// black is alive with two eyes; the lone white stone sits in black's area
	b := mustBoard(t, []string{
		"B+B+B",
		"BBBBB",
		"+++++",
		"+++++",
		"+W+++",
	})

	dead := DetectDeadStones(b)

	assert.True(t, dead[game.Point{Col: 1, Row: 4}])
	for _, p := range []game.Point{{Col: 0, Row: 0}, {Col: 2, Row: 0}, {Col: 0, Row: 1}} {
		assert.False(t, dead[p], "alive black stone at (%d,%d) suggested dead", p.Col, p.Row)
	}
}

func TestToggleDeadChainIsPureAndChainWide(t *testing.T) {
	b := mustBoard(t, []string{
		"WW+",
		"+++",
		"++B",
	})
	empty := NewPointSet()

	toggled := ToggleDeadChain(b, game.Point{Col: 0, Row: 0}, empty)

	// the whole white chain went in
	assert.True(t, toggled[game.Point{Col: 0, Row: 0}])
	assert.True(t, toggled[game.Point{Col: 1, Row: 0}])
	assert.Len(t, toggled, 2)
	// the input set was not modified
	assert.Len(t, empty, 0)

	// toggling any stone of the chain takes the whole chain back out
	back := ToggleDeadChain(b, game.Point{Col: 1, Row: 0}, toggled)
	assert.Len(t, back, 0)
	assert.Len(t, toggled, 2)

	// toggling an empty point is a no-op
	same := ToggleDeadChain(b, game.Point{Col: 1, Row: 1}, toggled)
	assert.Equal(t, toggled.Points(), same.Points())
}

func TestScoreCountsTerritoryAndCaptures(t *testing.T) {
	b := mustBoard(t, []string{
		"B+W+",
		"B+W+",
		"B+W+",
		"B+W+",
	})

	result := Score(b, NewPointSet(), 0.5)

	// four stones each; white also owns the right column
	assert.Equal(t, 4, result.Black.Territory)
	assert.Equal(t, 8, result.White.Territory)
	assert.Equal(t, 0, result.Black.Captures)
	assert.Equal(t, 0, result.White.Captures)
	assert.Equal(t, 4.0, result.BlackTotal())
	assert.Equal(t, 8.5, result.WhiteTotal())
	assert.Equal(t, "W+4.5", result.String())
}

func TestScoreIsPure(t *testing.T) {
	b := mustBoard(t, []string{
		"B+W+",
		"B+W+",
		"B+W+",
		"B+W+",
	})
	dead := NewPointSet(game.Point{Col: 0, Row: 0})

	first := Score(b, dead, 6.5)
	second := Score(b, dead, 6.5)
	assert.Equal(t, first, second)
}

func TestResultString(t *testing.T) {
	// the classic sheet: 40 against 39 plus komi 6.5 is a 5.5 point white win
	r := Result{
		Black: Tally{Territory: 30, Captures: 10},
		White: Tally{Territory: 29, Captures: 10},
		Komi:  6.5,
	}
	assert.Equal(t, 40.0, r.BlackTotal())
	assert.Equal(t, 45.5, r.WhiteTotal())
	assert.Equal(t, "W+5.5", r.String())

	assert.Equal(t, "B+3", Result{Black: Tally{Territory: 3}}.String())
	assert.Equal(t, "Draw", Result{}.String())
}

func TestReviewApprovalFlow(t *testing.T) {
	b := mustBoard(t, []string{
		"B+B+B",
		"BBBBB",
		"+++++",
		"+++++",
		"+W+++",
	})

	review := NewReview(b)
	require.True(t, review.Dead[game.Point{Col: 1, Row: 4}])
	assert.False(t, review.Settled())

	review.Approve(game.Black)
	assert.False(t, review.Settled())

	// changing the marking withdraws the given approvals
	review.Toggle(b, game.Point{Col: 1, Row: 4})
	assert.False(t, review.ApprovedBlack)
	assert.False(t, review.ApprovedWhite)

	review.Approve(game.Black)
	review.Approve(game.White)
	assert.True(t, review.Settled())
}
