package game

import "fmt"

// Stone is one intersection state. The sign arithmetic matters: the opponent of
// a color is its negation, so turn alternation is simply -lastStone.
type Stone int8

const (
	Empty Stone = 0
	Black Stone = 1
	White Stone = -1
)

func (s Stone) Opponent() Stone {
	return -s
}

func (s Stone) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// SGFColor returns the one-letter SGF property name for the color.
func (s Stone) SGFColor() string {
	if s == Black {
		return "B"
	}
	return "W"
}

func ParseStone(s string) (Stone, error) {
	switch s {
	case "B", "b", "black":
		return Black, nil
	case "W", "w", "white":
		return White, nil
	}
	return Empty, fmt.Errorf("unknown color %q", s)
}

// Point is a zero-indexed board intersection, column first.
type Point struct {
	Col int `json:"col" bson:"col"`
	Row int `json:"row" bson:"row"`
}

const sgfAlphabet = "abcdefghijklmnopqrstuvwxyz"

// ToLetters converts the point to SGF letter coordinates ("aa" is the top left).
func (p Point) ToLetters() string {
	return string([]byte{sgfAlphabet[p.Col], sgfAlphabet[p.Row]})
}

func PointFromLetters(s string) (Point, error) {
	if len(s) != 2 {
		return Point{}, fmt.Errorf("bad sgf coordinates %q", s)
	}
	col := int(s[0] - 'a')
	row := int(s[1] - 'a')
	if col < 0 || col >= len(sgfAlphabet) || row < 0 || row >= len(sgfAlphabet) {
		return Point{}, fmt.Errorf("bad sgf coordinates %q", s)
	}
	return Point{Col: col, Row: row}, nil
}
