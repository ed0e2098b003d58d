package sgf

import (
	"fmt"

	"baduk/internal/errors"
)

type parser struct {
	text string
	pos  int
}

// Parse decodes SGF text into the tree model. Any malformed input fails with
// ErrMalformedSGF and no partially-built tree is returned.
func Parse(text string) (*SGF, error) {
	p := &parser{text: text}
	p.skipSpace()
	root, err := p.parseGameTree()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.text) {
		return nil, fmt.Errorf("%w: trailing data at offset %d", errors.ErrMalformedSGF, p.pos)
	}
	return &SGF{Root: root}, nil
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) {
		switch p.text[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) expect(c byte) error {
	if p.pos >= len(p.text) || p.text[p.pos] != c {
		return fmt.Errorf("%w: expected %q at offset %d", errors.ErrMalformedSGF, string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *parser) parseGameTree() (*GameTree, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	tree := &GameTree{}
	for {
		p.skipSpace()
		if p.pos >= len(p.text) {
			return nil, fmt.Errorf("%w: unterminated game tree", errors.ErrMalformedSGF)
		}
		switch p.text[p.pos] {
		case ';':
			p.pos++
			node, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			tree.Nodes = append(tree.Nodes, node)
		case '(':
			child, err := p.parseGameTree()
			if err != nil {
				return nil, err
			}
			tree.Children = append(tree.Children, child)
		case ')':
			p.pos++
			if len(tree.Nodes) == 0 && len(tree.Children) == 0 {
				return nil, fmt.Errorf("%w: empty game tree", errors.ErrMalformedSGF)
			}
			return tree, nil
		default:
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", errors.ErrMalformedSGF, string(p.text[p.pos]), p.pos)
		}
	}
}

func (p *parser) parseNode() (Node, error) {
	node := Node{Properties: make(map[string][]string)}
	for {
		p.skipSpace()
		if p.pos >= len(p.text) {
			return Node{}, fmt.Errorf("%w: unterminated node", errors.ErrMalformedSGF)
		}
		c := p.text[p.pos]
		if c < 'A' || c > 'Z' {
			return node, nil
		}
		key, values, err := p.parseProperty()
		if err != nil {
			return Node{}, err
		}
		node.Properties[key] = append(node.Properties[key], values...)
	}
}

func (p *parser) parseProperty() (string, []string, error) {
	start := p.pos
	for p.pos < len(p.text) && p.text[p.pos] >= 'A' && p.text[p.pos] <= 'Z' {
		p.pos++
	}
	key := p.text[start:p.pos]
	p.skipSpace()

	var values []string
	for p.pos < len(p.text) && p.text[p.pos] == '[' {
		value, err := p.parseValue()
		if err != nil {
			return "", nil, err
		}
		values = append(values, value)
		p.skipSpace()
	}
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: property %s without value at offset %d", errors.ErrMalformedSGF, key, p.pos)
	}
	return key, values, nil
}

func (p *parser) parseValue() (string, error) {
	if err := p.expect('['); err != nil {
		return "", err
	}
	var out []byte
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.text) {
				return "", fmt.Errorf("%w: dangling escape", errors.ErrMalformedSGF)
			}
			out = append(out, p.text[p.pos+1])
			p.pos += 2
		case ']':
			p.pos++
			return string(out), nil
		default:
			out = append(out, c)
			p.pos++
		}
	}
	return "", fmt.Errorf("%w: unterminated property value", errors.ErrMalformedSGF)
}
