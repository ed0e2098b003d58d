package gametree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baduk/internal/domain/game"
	"baduk/internal/errors"
)

func play(col, row int, s game.Stone) game.Move {
	return game.NewPlay(s, game.Point{Col: col, Row: row})
}

func TestAddReusesIdenticalChild(t *testing.T) {
	tree := New()
	first := tree.Add(play(3, 3, game.Black))

	// wind back and append the same move again
	require.NoError(t, tree.Navigate(Start))
	second := tree.Add(play(3, 3, game.Black))

	assert.Equal(t, first, second)
	assert.Equal(t, 1, tree.TotalMoves())
}

func TestAddCreatesSiblingForDifferentMove(t *testing.T) {
	tree := New()
	a := tree.Add(play(3, 3, game.Black))
	tree.Add(play(15, 15, game.White))

	// explore a different white answer from the same position
	require.NoError(t, tree.Navigate(a))
	c := tree.Add(play(2, 2, game.White))

	node, err := tree.Node(a)
	require.NoError(t, err)
	require.Len(t, node.Children, 2)

	// the tip follows the newly explored line
	assert.Equal(t, c, tree.Tip())
	assert.Equal(t, []game.Move{play(3, 3, game.Black), play(2, 2, game.White)}, tree.Moves())
}

func TestNavigation(t *testing.T) {
	tree := New()
	first := tree.Add(play(0, 0, game.Black))
	tree.Add(play(1, 1, game.White))
	last := tree.Add(play(2, 2, game.Black))

	assert.True(t, tree.IsAtLatest())
	assert.False(t, tree.IsAtStart())
	assert.Equal(t, 3, tree.ViewIndex())
	assert.Equal(t, 3, tree.TotalMoves())

	require.NoError(t, tree.Navigate(first))
	assert.False(t, tree.IsAtLatest())
	assert.Equal(t, 1, tree.ViewIndex())
	// navigation never shortens the active line
	assert.Equal(t, 3, tree.TotalMoves())
	assert.Equal(t, []game.Move{play(0, 0, game.Black)}, tree.MovesToView())

	require.NoError(t, tree.Navigate(Start))
	assert.True(t, tree.IsAtStart())
	assert.Equal(t, 0, tree.ViewIndex())

	require.NoError(t, tree.Navigate(last))
	assert.True(t, tree.IsAtLatest())
}

func TestNavigateUnknownNode(t *testing.T) {
	tree := New()
	tree.Add(play(0, 0, game.Black))

	err := tree.Navigate(42)
	require.ErrorIs(t, err, errors.ErrUnknownNode)
	// failed navigation leaves the view where it was
	assert.True(t, tree.IsAtLatest())
}

func TestReplaceMovesRebuildsLinearLine(t *testing.T) {
	tree := New()
	a := tree.Add(play(0, 0, game.Black))
	tree.Add(play(1, 1, game.White))
	require.NoError(t, tree.Navigate(a))
	tree.Add(play(2, 2, game.White)) // a sibling branch

	authoritative := []game.Move{
		play(5, 5, game.Black),
		game.NewPass(game.White),
	}
	tree.ReplaceMoves(authoritative)

	assert.Equal(t, authoritative, tree.Moves())
	assert.Equal(t, 2, tree.TotalMoves())
	assert.True(t, tree.IsAtLatest())
	node, err := tree.Node(0)
	require.NoError(t, err)
	assert.Len(t, node.Children, 1)
}

func TestSerializeRoundTripIsIsomorphic(t *testing.T) {
	tree := New()
	a := tree.Add(play(0, 0, game.Black))
	tree.Add(play(1, 1, game.White))
	require.NoError(t, tree.Navigate(a))
	tree.Add(play(2, 2, game.White))
	require.NoError(t, tree.Navigate(a))

	// through JSON, as the snapshot does it
	data, err := json.Marshal(tree.Serialize())
	require.NoError(t, err)
	var s Serialized
	require.NoError(t, json.Unmarshal(data, &s))

	restored, err := Restore(s)
	require.NoError(t, err)

	require.Equal(t, tree.Tip(), restored.Tip())
	require.Equal(t, tree.View(), restored.View())
	for id := 0; ; id++ {
		want, errWant := tree.Node(id)
		got, errGot := restored.Node(id)
		if errWant != nil {
			require.Error(t, errGot)
			break
		}
		require.NoError(t, errGot)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, tree.Moves(), restored.Moves())
}

func TestRestoreRejectsCorruptArena(t *testing.T) {
	tree := New()
	tree.Add(play(0, 0, game.Black))
	tree.Add(play(1, 1, game.White))
	good := tree.Serialize()

	t.Run("dangling parent", func(t *testing.T) {
		bad := good
		bad.Nodes = append([]Node(nil), good.Nodes...)
		bad.Nodes[1].Parent = 99
		_, err := Restore(bad)
		require.ErrorIs(t, err, errors.ErrCorruptSnapshot)
	})

	t.Run("child parent mismatch", func(t *testing.T) {
		bad := good
		bad.Nodes = []Node{
			{ID: 0, Move: play(0, 0, game.Black), Children: []int{1}},
			{ID: 1, Move: play(1, 1, game.White), Parent: Start},
		}
		bad.Nodes[0].Parent = Start
		_, err := Restore(bad)
		require.ErrorIs(t, err, errors.ErrCorruptSnapshot)
	})

	t.Run("tip out of range", func(t *testing.T) {
		bad := good
		bad.Tip = 7
		_, err := Restore(bad)
		require.ErrorIs(t, err, errors.ErrCorruptSnapshot)
	})

	t.Run("invalid move payload", func(t *testing.T) {
		bad := good
		bad.Nodes = append([]Node(nil), good.Nodes...)
		bad.Nodes[0].Move = game.Move{Kind: game.MovePass, Stone: game.Black, Point: &game.Point{}}
		_, err := Restore(bad)
		require.ErrorIs(t, err, errors.ErrCorruptSnapshot)
	})

	// a failed ReplaceTree must not touch the tree
	err := tree.ReplaceTree(Serialized{Nodes: []Node{{ID: 5}}, Tip: Start, View: Start})
	require.ErrorIs(t, err, errors.ErrCorruptSnapshot)
	assert.Equal(t, 2, tree.TotalMoves())
}
