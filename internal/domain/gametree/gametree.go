package gametree

import (
	"fmt"

	"baduk/internal/domain/game"
	"baduk/internal/errors"
)

// Node is one explored move. Nodes live in a flat arena and reference each
// other by index, so ids stay stable for the lifetime of the tree and the
// serialized form is just the arena itself.
type Node struct {
	ID       int       `json:"id"`
	Move     game.Move `json:"move"`
	Parent   int       `json:"parent"`
	Children []int     `json:"children,omitempty"`
}

// Start is the position before any move; Navigate accepts it as a target.
const Start = -1

// Tree is a branching move history. The view pointer is where navigation is
// looking, the tip is the end of the currently active line; playing while
// viewing an earlier node starts (or re-enters) a branch from there.
type Tree struct {
	nodes []Node
	roots []int
	tip   int
	view  int
}

func New() *Tree {
	return &Tree{tip: Start, view: Start}
}

// Add appends a move below the view node. If a child with the identical move
// already exists it is re-entered instead of duplicated. The new node becomes
// the tip of the active line.
func (t *Tree) Add(m game.Move) int {
	siblings := t.roots
	if t.view != Start {
		siblings = t.nodes[t.view].Children
	}
	for _, id := range siblings {
		if t.nodes[id].Move.Equal(m) {
			t.view = id
			t.tip = id
			return id
		}
	}

	id := len(t.nodes)
	t.nodes = append(t.nodes, Node{ID: id, Move: m, Parent: t.view})
	if t.view == Start {
		t.roots = append(t.roots, id)
	} else {
		t.nodes[t.view].Children = append(t.nodes[t.view].Children, id)
	}
	t.view = id
	t.tip = id
	return id
}

// Navigate repositions the view pointer without touching tree structure.
func (t *Tree) Navigate(id int) error {
	if id != Start && (id < 0 || id >= len(t.nodes)) {
		return fmt.Errorf("%w: %d", errors.ErrUnknownNode, id)
	}
	t.view = id
	return nil
}

func (t *Tree) Node(id int) (Node, error) {
	if id < 0 || id >= len(t.nodes) {
		return Node{}, fmt.Errorf("%w: %d", errors.ErrUnknownNode, id)
	}
	return t.nodes[id], nil
}

func (t *Tree) View() int { return t.view }
func (t *Tree) Tip() int  { return t.tip }

func (t *Tree) IsAtStart() bool {
	return t.view == Start
}

// IsAtLatest is relative to the active line, not to the whole tree.
func (t *Tree) IsAtLatest() bool {
	return t.view == t.tip
}

func (t *Tree) depth(id int) int {
	n := 0
	for cur := id; cur != Start; cur = t.nodes[cur].Parent {
		n++
	}
	return n
}

// ViewIndex is the number of moves from the start up to the view node.
func (t *Tree) ViewIndex() int {
	return t.depth(t.view)
}

// TotalMoves is the length of the active line.
func (t *Tree) TotalMoves() int {
	return t.depth(t.tip)
}

func (t *Tree) pathTo(id int) []game.Move {
	moves := make([]game.Move, t.depth(id))
	i := len(moves)
	for cur := id; cur != Start; cur = t.nodes[cur].Parent {
		i--
		moves[i] = t.nodes[cur].Move
	}
	return moves
}

// Moves returns the active line from the start to the tip.
func (t *Tree) Moves() []game.Move {
	return t.pathTo(t.tip)
}

// MovesToView returns the moves leading up to the view node.
func (t *Tree) MovesToView() []game.Move {
	return t.pathTo(t.view)
}

// ReplaceMoves rebuilds a purely linear tree from an authoritative flat move
// list, discarding every explored branch.
func (t *Tree) ReplaceMoves(moves []game.Move) {
	t.nodes = nil
	t.roots = nil
	t.tip = Start
	t.view = Start
	for _, m := range moves {
		t.Add(m)
	}
}

// Serialized is the persisted form: the arena plus the two pointers.
type Serialized struct {
	Nodes []Node `json:"nodes"`
	Tip   int    `json:"tip"`
	View  int    `json:"view"`
}

func (t *Tree) Serialize() Serialized {
	nodes := make([]Node, len(t.nodes))
	for i, n := range t.nodes {
		nodes[i] = n
		nodes[i].Children = append([]int(nil), n.Children...)
	}
	return Serialized{Nodes: nodes, Tip: t.tip, View: t.view}
}

// ReplaceTree restores a full branching tree from its serialized form. The
// arena is validated first; on any inconsistency the tree is left untouched.
func (t *Tree) ReplaceTree(s Serialized) error {
	restored, err := Restore(s)
	if err != nil {
		return err
	}
	*t = *restored
	return nil
}

// Restore validates and rehydrates a serialized tree.
func Restore(s Serialized) (*Tree, error) {
	t := New()
	n := len(s.Nodes)
	inRange := func(id int) bool { return id >= 0 && id < n }
	for i, node := range s.Nodes {
		if node.ID != i {
			return nil, fmt.Errorf("%w: node id %d at index %d", errors.ErrCorruptSnapshot, node.ID, i)
		}
		if node.Parent != Start && !inRange(node.Parent) {
			return nil, fmt.Errorf("%w: node %d parent %d", errors.ErrCorruptSnapshot, i, node.Parent)
		}
		if err := node.Move.Validate(); err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", errors.ErrCorruptSnapshot, i, err)
		}
		for _, child := range node.Children {
			if !inRange(child) || s.Nodes[child].Parent != i {
				return nil, fmt.Errorf("%w: node %d child %d", errors.ErrCorruptSnapshot, i, child)
			}
		}
	}
	if n > 0 {
		if (s.Tip != Start && !inRange(s.Tip)) || (s.View != Start && !inRange(s.View)) {
			return nil, fmt.Errorf("%w: pointers out of range", errors.ErrCorruptSnapshot)
		}
	} else if s.Tip != Start || s.View != Start {
		return nil, fmt.Errorf("%w: pointers into empty arena", errors.ErrCorruptSnapshot)
	}
	for i := range s.Nodes {
		// a parent walk longer than the arena means a cycle
		steps := 0
		for cur := i; cur != Start; cur = s.Nodes[cur].Parent {
			steps++
			if steps > n {
				return nil, fmt.Errorf("%w: parent cycle at node %d", errors.ErrCorruptSnapshot, i)
			}
		}
	}

	t.nodes = make([]Node, n)
	for i, node := range s.Nodes {
		t.nodes[i] = node
		t.nodes[i].Children = append([]int(nil), node.Children...)
		if node.Parent == Start {
			t.roots = append(t.roots, i)
		}
	}
	t.tip = s.Tip
	t.view = s.View
	return t, nil
}
