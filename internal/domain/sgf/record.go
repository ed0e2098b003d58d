package sgf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"baduk/internal/domain/game"
	"baduk/internal/errors"
)

// Record is the SGF subset this system exchanges: game metadata, time-control
// annotations and the flat move sequence. Full property-grammar coverage is
// deliberately out of scope.
type Record struct {
	Cols           int
	Rows           int
	Komi           float64
	Handicap       int
	HandicapPoints []game.Point
	PlayerBlack    string
	PlayerWhite    string
	Result         string
	Date           string
	Rules          string
	MainTime       string
	Overtime       string
	Moves          []game.Move
	// TimeLeft holds the BL/WL annotation per move, "" when absent.
	TimeLeft []string
}

// FromText parses SGF text and extracts the record fields.
func FromText(text string) (Record, error) {
	parsed, err := Parse(text)
	if err != nil {
		return Record{}, err
	}
	rec := Record{Cols: 19, Rows: 19, Rules: "Japanese"}

	first := func(node Node, key string) (string, bool) {
		if vs, ok := node.Properties[key]; ok && len(vs) > 0 {
			return vs[0], true
		}
		return "", false
	}

	// Main line only: the node sequence of each tree followed by its first
	// variation. Branches beyond the first belong to the game tree model, not
	// to the flat record.
	for tree := parsed.Root; tree != nil; {
		for _, node := range tree.Nodes {
			if v, ok := first(node, "SZ"); ok {
				if err := rec.parseSize(v); err != nil {
					return Record{}, err
				}
			}
			if v, ok := first(node, "KM"); ok {
				komi, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return Record{}, fmt.Errorf("%w: bad komi %q", errors.ErrMalformedSGF, v)
				}
				rec.Komi = komi
			}
			if v, ok := first(node, "HA"); ok {
				handicap, err := strconv.Atoi(v)
				if err != nil {
					return Record{}, fmt.Errorf("%w: bad handicap %q", errors.ErrMalformedSGF, v)
				}
				rec.Handicap = handicap
			}
			for _, v := range node.Properties["AB"] {
				p, err := game.PointFromLetters(v)
				if err != nil {
					return Record{}, fmt.Errorf("%w: %v", errors.ErrMalformedSGF, err)
				}
				rec.HandicapPoints = append(rec.HandicapPoints, p)
			}
			if v, ok := first(node, "PB"); ok {
				rec.PlayerBlack = v
			}
			if v, ok := first(node, "PW"); ok {
				rec.PlayerWhite = v
			}
			if v, ok := first(node, "RE"); ok {
				rec.Result = v
			}
			if v, ok := first(node, "DT"); ok {
				rec.Date = v
			}
			if v, ok := first(node, "RU"); ok {
				rec.Rules = v
			}
			if v, ok := first(node, "TM"); ok {
				rec.MainTime = v
			}
			if v, ok := first(node, "OT"); ok {
				rec.Overtime = v
			}
			if err := rec.appendMove(node); err != nil {
				return Record{}, err
			}
		}
		if len(tree.Children) == 0 {
			break
		}
		tree = tree.Children[0]
	}
	return rec, nil
}

func (r *Record) parseSize(v string) error {
	parts := strings.SplitN(v, ":", 2)
	cols, err := strconv.Atoi(parts[0])
	if err != nil || cols < 1 {
		return fmt.Errorf("%w: bad board size %q", errors.ErrMalformedSGF, v)
	}
	rows := cols
	if len(parts) == 2 {
		rows, err = strconv.Atoi(parts[1])
		if err != nil || rows < 1 {
			return fmt.Errorf("%w: bad board size %q", errors.ErrMalformedSGF, v)
		}
	}
	r.Cols, r.Rows = cols, rows
	return nil
}

func (r *Record) appendMove(node Node) error {
	for _, color := range []game.Stone{game.Black, game.White} {
		values, ok := node.Properties[color.SGFColor()]
		if !ok {
			continue
		}
		v := values[0]
		var move game.Move
		// An empty value, or "tt" on boards small enough, is a pass.
		if v == "" || (v == "tt" && r.Cols <= 19 && r.Rows <= 19) {
			move = game.NewPass(color)
		} else {
			p, err := game.PointFromLetters(v)
			if err != nil {
				return fmt.Errorf("%w: %v", errors.ErrMalformedSGF, err)
			}
			if p.Col >= r.Cols || p.Row >= r.Rows {
				return fmt.Errorf("%w: move %s outside %dx%d board", errors.ErrMalformedSGF, v, r.Cols, r.Rows)
			}
			move = game.NewPlay(color, p)
		}
		r.Moves = append(r.Moves, move)
		timeLeft := ""
		if color == game.Black {
			if vs, ok := node.Properties["BL"]; ok && len(vs) > 0 {
				timeLeft = vs[0]
			}
		} else if vs, ok := node.Properties["WL"]; ok && len(vs) > 0 {
			timeLeft = vs[0]
		}
		r.TimeLeft = append(r.TimeLeft, timeLeft)
	}
	return nil
}

// ToText is the inverse of FromText: root node with the metadata, then one
// node per move, property order fixed by the serializer.
func (r Record) ToText() string {
	date := r.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	size := strconv.Itoa(r.Cols)
	if r.Rows != r.Cols {
		size = fmt.Sprintf("%d:%d", r.Cols, r.Rows)
	}
	root := Node{
		Properties: map[string][]string{
			"FF": {"4"},
			"GM": {"1"},
			"SZ": {size},
			"PB": {r.PlayerBlack},
			"PW": {r.PlayerWhite},
			"DT": {date},
			"RE": {r.Result},
			"KM": {strconv.FormatFloat(r.Komi, 'f', 1, 64)},
			"RU": {r.Rules},
		},
	}
	if r.Handicap > 0 {
		root.Properties["HA"] = []string{strconv.Itoa(r.Handicap)}
	}
	for _, p := range r.HandicapPoints {
		root.Properties["AB"] = append(root.Properties["AB"], p.ToLetters())
	}
	if r.MainTime != "" {
		root.Properties["TM"] = []string{r.MainTime}
	}
	if r.Overtime != "" {
		root.Properties["OT"] = []string{r.Overtime}
	}

	tree := &GameTree{Nodes: []Node{root}}
	for i, move := range r.Moves {
		if move.Kind == game.MoveResign {
			// resignation lives in RE, not in the move list
			continue
		}
		coords := ""
		if move.Kind == game.MovePlay {
			coords = move.Point.ToLetters()
		}
		node := Node{Properties: map[string][]string{
			move.Stone.SGFColor(): {coords},
		}}
		if i < len(r.TimeLeft) && r.TimeLeft[i] != "" {
			annotation := "WL"
			if move.Stone == game.Black {
				annotation = "BL"
			}
			node.Properties[annotation] = []string{r.TimeLeft[i]}
		}
		tree.Nodes = append(tree.Nodes, node)
	}
	return Serialize(&SGF{Root: tree})
}
