package score

import (
	"sort"
	"strconv"

	"baduk/internal/domain/board"
	"baduk/internal/domain/game"
)

// PointSet is the dead-stone marking a territory review negotiates over.
type PointSet map[game.Point]bool

func NewPointSet(points ...game.Point) PointSet {
	s := make(PointSet, len(points))
	for _, p := range points {
		s[p] = true
	}
	return s
}

func (s PointSet) Clone() PointSet {
	out := make(PointSet, len(s))
	for p := range s {
		out[p] = true
	}
	return out
}

// Points returns the set in row-major order, the stable wire form.
func (s PointSet) Points() []game.Point {
	out := make([]game.Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

// ToggleDeadChain adds or removes the whole chain containing p from the dead
// set. Pure: the input set is not modified.
func ToggleDeadChain(b board.Board, p game.Point, dead PointSet) PointSet {
	chain := b.Chain(p)
	if len(chain) == 0 {
		return dead.Clone()
	}
	next := dead.Clone()
	if dead[chain[0]] {
		for _, q := range chain {
			delete(next, q)
		}
	} else {
		for _, q := range chain {
			next[q] = true
		}
	}
	return next
}

// emptyRegion flood-fills the maximal empty region containing start. Points in
// treatEmpty count as empty as well. Returns the region and the set of live
// stone colors bordering it.
func emptyRegion(b board.Board, start game.Point, treatEmpty PointSet, visited map[game.Point]bool) ([]game.Point, map[game.Stone]bool) {
	borders := make(map[game.Stone]bool)
	var region []game.Point
	stack := []game.Point{start}
	visited[start] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		region = append(region, cur)
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				if dc*dc+dr*dr != 1 {
					continue
				}
				n := game.Point{Col: cur.Col + dc, Row: cur.Row + dr}
				if !b.InBounds(n) {
					continue
				}
				stone := b.At(n)
				if stone != game.Empty && !treatEmpty[n] {
					borders[stone] = true
					continue
				}
				if !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return region, borders
}

// EstimateTerritory computes the ownership grid: live stones own their point,
// dead stones count as empty, and each maximal empty region bordered by
// exactly one color belongs to that color. Regions touching both colors are
// dame and owned by nobody.
func EstimateTerritory(b board.Board, dead PointSet) []game.Stone {
	ownership := make([]game.Stone, b.Cols()*b.Rows())
	visited := make(map[game.Point]bool)
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			p := game.Point{Col: c, Row: r}
			stone := b.At(p)
			if stone != game.Empty && !dead[p] {
				ownership[r*b.Cols()+c] = stone
				continue
			}
			if visited[p] {
				continue
			}
			region, borders := emptyRegion(b, p, dead, visited)
			owner := game.Empty
			if borders[game.Black] && !borders[game.White] {
				owner = game.Black
			} else if borders[game.White] && !borders[game.Black] {
				owner = game.White
			}
			for _, q := range region {
				ownership[q.Row*b.Cols()+q.Col] = owner
			}
		}
	}
	return ownership
}

// DetectDeadStones suggests a starting dead-stone marking. A chain with two
// eye-like liberties is assumed alive; otherwise the chain is marked dead when
// hypothetically removing it hands its points to the opponent. Advisory only,
// always subject to human override during review.
func DetectDeadStones(b board.Board) PointSet {
	dead := NewPointSet()
	seen := make(map[game.Point]bool)
	for r := 0; r < b.Rows(); r++ {
		for c := 0; c < b.Cols(); c++ {
			p := game.Point{Col: c, Row: r}
			if b.At(p) == game.Empty || seen[p] {
				continue
			}
			chain := b.Chain(p)
			for _, q := range chain {
				seen[q] = true
			}
			if eyeLiberties(b, chain) >= 2 {
				continue
			}
			color := b.At(p)
			trial := NewPointSet(chain...)
			ownership := EstimateTerritory(b, trial)
			lost := true
			for _, q := range chain {
				if ownership[q.Row*b.Cols()+q.Col] != color.Opponent() {
					lost = false
					break
				}
			}
			if lost {
				for _, q := range chain {
					dead[q] = true
				}
			}
		}
	}
	return dead
}

// eyeLiberties counts liberties of the chain that are walled in entirely by
// the chain's own color.
func eyeLiberties(b board.Board, chain []game.Point) int {
	if len(chain) == 0 {
		return 0
	}
	color := b.At(chain[0])
	libs := make(map[game.Point]bool)
	for _, p := range chain {
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				if dc*dc+dr*dr != 1 {
					continue
				}
				n := game.Point{Col: p.Col + dc, Row: p.Row + dr}
				if b.InBounds(n) && b.At(n) == game.Empty {
					libs[n] = true
				}
			}
		}
	}
	eyes := 0
	for lib := range libs {
		walled := true
		for dc := -1; dc <= 1; dc++ {
			for dr := -1; dr <= 1; dr++ {
				if dc*dc+dr*dr != 1 {
					continue
				}
				n := game.Point{Col: lib.Col + dc, Row: lib.Row + dr}
				if b.InBounds(n) && b.At(n) != color {
					walled = false
				}
			}
		}
		if walled {
			eyes++
		}
	}
	return eyes
}

// Tally is one side of the score sheet.
type Tally struct {
	Territory int `json:"territory"`
	Captures  int `json:"captures"`
}

type Result struct {
	Black Tally   `json:"black"`
	White Tally   `json:"white"`
	Komi  float64 `json:"komi"`
}

func (r Result) BlackTotal() float64 {
	return float64(r.Black.Territory + r.Black.Captures)
}

func (r Result) WhiteTotal() float64 {
	return float64(r.White.Territory+r.White.Captures) + r.Komi
}

// String renders the conventional result, e.g. "W+5.5".
func (r Result) String() string {
	diff := r.BlackTotal() - r.WhiteTotal()
	switch {
	case diff > 0:
		return "B+" + strconv.FormatFloat(diff, 'f', -1, 64)
	case diff < 0:
		return "W+" + strconv.FormatFloat(-diff, 'f', -1, 64)
	default:
		return "Draw"
	}
}

// Score computes the final tally from a settled position: per color, owned
// points (enclosed empties plus live stones) and the capture count, komi added
// to White at comparison time. Pure in (board, dead, komi).
func Score(b board.Board, dead PointSet, komi float64) Result {
	ownership := EstimateTerritory(b, dead)
	result := Result{Komi: komi}
	for _, owner := range ownership {
		switch owner {
		case game.Black:
			result.Black.Territory++
		case game.White:
			result.White.Territory++
		}
	}
	result.Black.Captures = b.Captures(game.Black)
	result.White.Captures = b.Captures(game.White)
	return result
}
