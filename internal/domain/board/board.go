package board

import (
	"fmt"
	"strings"

	"baduk/internal/domain/game"
	"baduk/internal/errors"
)

// Ko marks the single point where the given color may not recapture on the
// very next ply. Any other move clears it.
type Ko struct {
	Point game.Point `json:"point"`
	Stone game.Stone `json:"stone"`
}

// Board is an immutable position value. Play returns a fresh Board and never
// touches the receiver, so a failed move simply leaves the caller holding the
// previous value.
type Board struct {
	cols, rows    int
	grid          []game.Stone
	capturedBlack int
	capturedWhite int
	ko            *Ko
}

func New(cols, rows int) (Board, error) {
	if cols < 1 || rows < 1 {
		return Board{}, fmt.Errorf("bad board size %dx%d", cols, rows)
	}
	return Board{
		cols: cols,
		rows: rows,
		grid: make([]game.Stone, cols*rows),
	}, nil
}

// FromRows builds a board from row strings like "+BW+". Used by tests and the
// snapshot codec; '+' and '.' both mean an empty point.
func FromRows(rows []string) (Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Board{}, fmt.Errorf("empty board rows")
	}
	b, err := New(len(rows[0]), len(rows))
	if err != nil {
		return Board{}, err
	}
	for r, row := range rows {
		if len(row) != b.cols {
			return Board{}, fmt.Errorf("ragged board row %d", r)
		}
		for c := 0; c < b.cols; c++ {
			switch row[c] {
			case 'B':
				b.grid[r*b.cols+c] = game.Black
			case 'W':
				b.grid[r*b.cols+c] = game.White
			case '+', '.':
			default:
				return Board{}, fmt.Errorf("bad board cell %q", row[c])
			}
		}
	}
	return b, nil
}

func (b Board) Cols() int { return b.cols }
func (b Board) Rows() int { return b.rows }

func (b Board) InBounds(p game.Point) bool {
	return p.Col >= 0 && p.Col < b.cols && p.Row >= 0 && p.Row < b.rows
}

func (b Board) At(p game.Point) game.Stone {
	return b.grid[p.Row*b.cols+p.Col]
}

// Captures returns how many stones the given color has captured so far.
func (b Board) Captures(s game.Stone) int {
	if s == game.Black {
		return b.capturedBlack
	}
	return b.capturedWhite
}

// Ko returns the active ko marker, or nil when no recapture is restricted.
func (b Board) Ko() *Ko {
	if b.ko == nil {
		return nil
	}
	k := *b.ko
	return &k
}

// ClearKo returns the position with the ko marker lifted. The restriction
// lasts a single ply, so a pass releases it just like a play elsewhere does.
func (b Board) ClearKo() Board {
	b.ko = nil
	return b
}

func (b Board) clone() Board {
	next := b
	next.grid = make([]game.Stone, len(b.grid))
	copy(next.grid, b.grid)
	next.ko = nil
	return next
}

func (b Board) neighbors(p game.Point) []game.Point {
	out := make([]game.Point, 0, 4)
	for _, n := range [4]game.Point{
		{Col: p.Col - 1, Row: p.Row},
		{Col: p.Col + 1, Row: p.Row},
		{Col: p.Col, Row: p.Row - 1},
		{Col: p.Col, Row: p.Row + 1},
	} {
		if b.InBounds(n) {
			out = append(out, n)
		}
	}
	return out
}

// Chain flood-fills the maximal same-color chain containing p. Empty points
// yield an empty chain.
func (b Board) Chain(p game.Point) []game.Point {
	chain, _ := b.chainAndLiberties(p)
	return chain
}

func (b Board) chainAndLiberties(p game.Point) ([]game.Point, int) {
	color := b.At(p)
	if color == game.Empty {
		return nil, 0
	}
	seen := make(map[game.Point]bool)
	libs := make(map[game.Point]bool)
	stack := []game.Point{p}
	seen[p] = true
	var chain []game.Point
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		chain = append(chain, cur)
		for _, n := range b.neighbors(cur) {
			switch b.At(n) {
			case color:
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			case game.Empty:
				libs[n] = true
			}
		}
	}
	return chain, len(libs)
}

// Play validates and applies a single stone placement, returning the resulting
// position. On any error the returned board is the receiver, unchanged.
func (b Board) Play(p game.Point, s game.Stone) (Board, error) {
	if !b.InBounds(p) {
		return b, fmt.Errorf("%w: (%d,%d)", errors.ErrOutOfBounds, p.Col, p.Row)
	}
	if b.At(p) != game.Empty {
		return b, fmt.Errorf("%w: (%d,%d)", errors.ErrOccupiedPoint, p.Col, p.Row)
	}
	if b.ko != nil && b.ko.Point == p && b.ko.Stone == s {
		return b, fmt.Errorf("%w: (%d,%d)", errors.ErrKoViolation, p.Col, p.Row)
	}

	next := b.clone()
	next.grid[p.Row*next.cols+p.Col] = s

	// Remove every adjacent opposing chain left without liberties.
	captured := 0
	var lastCaptured game.Point
	for _, n := range next.neighbors(p) {
		if next.At(n) != s.Opponent() {
			continue
		}
		chain, libs := next.chainAndLiberties(n)
		if libs > 0 {
			continue
		}
		for _, q := range chain {
			next.grid[q.Row*next.cols+q.Col] = game.Empty
			lastCaptured = q
		}
		captured += len(chain)
	}
	if captured > 0 {
		if s == game.Black {
			next.capturedBlack += captured
		} else {
			next.capturedWhite += captured
		}
	}

	// A capture always frees at least one liberty next to the placed stone, so
	// suicide only needs checking when nothing was removed.
	if captured == 0 {
		if _, libs := next.chainAndLiberties(p); libs == 0 {
			return b, fmt.Errorf("%w: (%d,%d)", errors.ErrSuicide, p.Col, p.Row)
		}
	}

	// Simple ko: exactly one stone captured and the new stone sits alone with
	// the vacated point as its only liberty.
	if captured == 1 {
		chain, libs := next.chainAndLiberties(p)
		if len(chain) == 1 && libs == 1 {
			next.ko = &Ko{Point: lastCaptured, Stone: s.Opponent()}
		}
	}

	return next, nil
}

// IsLegal runs the same validation as Play without committing anything. Used
// for legality hints; never mutates state.
func (b Board) IsLegal(p game.Point, s game.Stone) bool {
	_, err := b.Play(p, s)
	return err == nil
}

// RowStrings renders the position one string per row, '+' for empty. Inverse
// of FromRows, also the snapshot wire form.
func (b Board) RowStrings() []string {
	rows := make([]string, b.rows)
	var sb strings.Builder
	for r := 0; r < b.rows; r++ {
		sb.Reset()
		for c := 0; c < b.cols; c++ {
			switch b.grid[r*b.cols+c] {
			case game.Black:
				sb.WriteByte('B')
			case game.White:
				sb.WriteByte('W')
			default:
				sb.WriteByte('+')
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

func (b Board) String() string {
	return strings.Join(b.RowStrings(), "\n")
}

// Equal compares position, captures and ko. Two boards reached by the same
// move sequence must always compare equal.
func (b Board) Equal(other Board) bool {
	if b.cols != other.cols || b.rows != other.rows {
		return false
	}
	if b.capturedBlack != other.capturedBlack || b.capturedWhite != other.capturedWhite {
		return false
	}
	if (b.ko == nil) != (other.ko == nil) {
		return false
	}
	if b.ko != nil && *b.ko != *other.ko {
		return false
	}
	for i := range b.grid {
		if b.grid[i] != other.grid[i] {
			return false
		}
	}
	return true
}

// Restore rebuilds a board value from snapshot fields. The ko marker is taken
// as-is; legality of the stated position is the snapshot author's problem.
func Restore(rows []string, capturedBlack, capturedWhite int, ko *Ko) (Board, error) {
	b, err := FromRows(rows)
	if err != nil {
		return Board{}, err
	}
	b.capturedBlack = capturedBlack
	b.capturedWhite = capturedWhite
	if ko != nil {
		if !b.InBounds(ko.Point) {
			return Board{}, fmt.Errorf("ko point outside board")
		}
		k := *ko
		b.ko = &k
	}
	return b, nil
}
