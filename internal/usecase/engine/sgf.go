package engine

import (
	"fmt"

	"baduk/internal/domain/sgf"
	"baduk/internal/errors"
)

// Record exports the game as the SGF record subset. Player names are a lobby
// concern and are filled in by the caller.
func (e *Engine) Record() sgf.Record {
	return sgf.Record{
		Cols:           e.rules.Cols,
		Rows:           e.rules.Rows,
		Komi:           e.rules.Komi,
		Handicap:       e.rules.Handicap,
		HandicapPoints: e.rules.HandicapPoints,
		Result:         e.result,
		Rules:          "Japanese",
		MainTime:       e.mainTime,
		Overtime:       e.overtime,
		Moves:          e.tree.Moves(),
		TimeLeft:       e.timeLeft,
	}
}

// ExportSGF renders the game as SGF text.
func (e *Engine) ExportSGF(playerBlack, playerWhite string) string {
	rec := e.Record()
	rec.PlayerBlack = playerBlack
	rec.PlayerWhite = playerWhite
	return rec.ToText()
}

// ImportSGF parses SGF text and replays it into a fresh engine. A record
// whose moves are illegal on the stated board is rejected as malformed; no
// partially-replayed engine escapes.
func ImportSGF(text string) (*Engine, error) {
	rec, err := sgf.FromText(text)
	if err != nil {
		return nil, err
	}
	rules := Rules{
		Cols:           rec.Cols,
		Rows:           rec.Rows,
		Komi:           rec.Komi,
		Handicap:       rec.Handicap,
		HandicapPoints: rec.HandicapPoints,
	}
	e, err := New(rules)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedSGF, err)
	}
	for i, m := range rec.Moves {
		if err := e.Apply(m); err != nil {
			return nil, fmt.Errorf("%w: move %d: %v", errors.ErrMalformedSGF, i, err)
		}
	}
	if rec.Result != "" {
		e.result = rec.Result
	}
	e.mainTime = rec.MainTime
	e.overtime = rec.Overtime
	e.timeLeft = rec.TimeLeft
	return e, nil
}
