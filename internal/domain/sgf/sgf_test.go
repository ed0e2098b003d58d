package sgf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baduk/internal/domain/game"
	"baduk/internal/errors"
)

func TestParseBasics(t *testing.T) {
	parsed, err := Parse("(;FF[4]GM[1]SZ[9];B[aa];W[ab])")
	require.NoError(t, err)
	require.Len(t, parsed.Root.Nodes, 3)
	assert.Equal(t, []string{"9"}, parsed.Root.Nodes[0].Properties["SZ"])
	assert.Equal(t, []string{"aa"}, parsed.Root.Nodes[1].Properties["B"])
}

func TestParseMultiValueAndEscapes(t *testing.T) {
	parsed, err := Parse(`(;AB[aa][bb]C[closing \] bracket])`)
	require.NoError(t, err)
	node := parsed.Root.Nodes[0]
	assert.Equal(t, []string{"aa", "bb"}, node.Properties["AB"])
	assert.Equal(t, []string{"closing ] bracket"}, node.Properties["C"])
}

func TestParseVariations(t *testing.T) {
	parsed, err := Parse("(;SZ[9];B[aa](;W[bb])(;W[cc]))")
	require.NoError(t, err)
	require.Len(t, parsed.Root.Children, 2)
	assert.Equal(t, []string{"bb"}, parsed.Root.Children[0].Nodes[0].Properties["W"])
	assert.Equal(t, []string{"cc"}, parsed.Root.Children[1].Nodes[0].Properties["W"])
}

func TestParseMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":              "",
		"no opening paren":   ";B[aa])",
		"unterminated tree":  "(;B[aa]",
		"unterminated value": "(;B[aa)",
		"dangling escape":    `(;C[oops\`,
		"empty tree":         "()",
		"trailing data":      "(;B[aa])junk",
		"value-less key":     "(;B)",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			require.ErrorIs(t, err, errors.ErrMalformedSGF)
		})
	}
}

func TestFromTextExtractsRecord(t *testing.T) {
	text := "(;FF[4]GM[1]SZ[9]PB[Alice]PW[Bob]KM[5.5]RE[B+2.5]RU[Japanese]TM[600]OT[3x30 byo-yomi]" +
		";B[cc]BL[598.5];W[gg]WL[590];B[])"

	rec, err := FromText(text)
	require.NoError(t, err)

	assert.Equal(t, 9, rec.Cols)
	assert.Equal(t, 9, rec.Rows)
	assert.Equal(t, "Alice", rec.PlayerBlack)
	assert.Equal(t, "Bob", rec.PlayerWhite)
	assert.Equal(t, 5.5, rec.Komi)
	assert.Equal(t, "B+2.5", rec.Result)
	assert.Equal(t, "600", rec.MainTime)
	assert.Equal(t, "3x30 byo-yomi", rec.Overtime)

	require.Len(t, rec.Moves, 3)
	assert.Equal(t, game.NewPlay(game.Black, game.Point{Col: 2, Row: 2}), rec.Moves[0])
	assert.Equal(t, game.NewPlay(game.White, game.Point{Col: 6, Row: 6}), rec.Moves[1])
	assert.Equal(t, game.NewPass(game.Black), rec.Moves[2])
	assert.Equal(t, []string{"598.5", "590", ""}, rec.TimeLeft)
}

func TestFromTextHandicap(t *testing.T) {
	rec, err := FromText("(;SZ[9]HA[2]AB[gc][cg];W[ee])")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Handicap)
	assert.Equal(t, []game.Point{{Col: 6, Row: 2}, {Col: 2, Row: 6}}, rec.HandicapPoints)
	require.Len(t, rec.Moves, 1)
	assert.Equal(t, game.White, rec.Moves[0].Stone)
}

func TestFromTextRectangularSize(t *testing.T) {
	rec, err := FromText("(;SZ[9:7];B[ag])")
	require.NoError(t, err)
	assert.Equal(t, 9, rec.Cols)
	assert.Equal(t, 7, rec.Rows)

	// a move outside the stated board is malformed
	_, err = FromText("(;SZ[9:7];B[ah])")
	require.ErrorIs(t, err, errors.ErrMalformedSGF)
}

func TestFromTextFollowsMainLineOnly(t *testing.T) {
	rec, err := FromText("(;SZ[9];B[aa](;W[bb];B[cc])(;W[dd]))")
	require.NoError(t, err)
	require.Len(t, rec.Moves, 3)
	assert.Equal(t, game.NewPlay(game.White, game.Point{Col: 1, Row: 1}), rec.Moves[1])
}

func TestFromTextBadMetadata(t *testing.T) {
	for name, text := range map[string]string{
		"bad komi":     "(;SZ[9]KM[lots])",
		"bad size":     "(;SZ[zero])",
		"bad handicap": "(;SZ[9]HA[two])",
		"bad move":     "(;SZ[9];B[a])",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := FromText(text)
			require.ErrorIs(t, err, errors.ErrMalformedSGF)
		})
	}
}

func TestRecordRoundTrip(t *testing.T) {
	rec := Record{
		Cols:        9,
		Rows:        9,
		Komi:        6.5,
		PlayerBlack: "Alice",
		PlayerWhite: "Bob",
		Result:      "W+R",
		Date:        "2025-03-01",
		Rules:       "Japanese",
		MainTime:    "1800",
		Moves: []game.Move{
			game.NewPlay(game.Black, game.Point{Col: 2, Row: 2}),
			game.NewPlay(game.White, game.Point{Col: 6, Row: 6}),
			game.NewPass(game.Black),
		},
		TimeLeft: []string{"1795", "1780", ""},
	}

	back, err := FromText(rec.ToText())
	require.NoError(t, err)

	assert.Equal(t, rec.Cols, back.Cols)
	assert.Equal(t, rec.Rows, back.Rows)
	assert.Equal(t, rec.Komi, back.Komi)
	assert.Equal(t, rec.PlayerBlack, back.PlayerBlack)
	assert.Equal(t, rec.PlayerWhite, back.PlayerWhite)
	assert.Equal(t, rec.Result, back.Result)
	assert.Equal(t, rec.MainTime, back.MainTime)
	assert.Equal(t, rec.Moves, back.Moves)
	assert.Equal(t, rec.TimeLeft, back.TimeLeft)
}

func TestSerializeFixedOrder(t *testing.T) {
	s := &SGF{Root: &GameTree{Nodes: []Node{{
		Properties: map[string][]string{
			"KM": {"6.5"},
			"SZ": {"19"},
			"FF": {"4"},
		},
	}}}}
	text := Serialize(s)
	assert.True(t, strings.Index(text, "FF") < strings.Index(text, "SZ"))
	assert.True(t, strings.Index(text, "SZ") < strings.Index(text, "KM"))
}
