package tree

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	cverrors "github.com/matzehuels/cladeview/pkg/errors"
)

// ReadNewick reads a single Newick tree from r.
func ReadNewick(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read newick: %w", err)
	}
	return ParseNewick(string(data))
}

// ParseNewick parses a single Newick tree such as "((a:1,b:2)c:1)d:0;".
//
// Labels may be bare or single-quoted ('' escapes a quote inside quotes).
// Bracketed comments are skipped. The trailing semicolon is required.
// Branch lengths must be finite and non-negative.
func ParseNewick(s string) (*Tree, error) {
	p := &newickParser{src: s}
	p.skip()
	if p.eof() {
		return nil, cverrors.New(cverrors.ErrCodeInvalidTree, "empty newick input")
	}

	root, err := p.subtree()
	if err != nil {
		return nil, err
	}
	p.skip()
	if !p.accept(';') {
		return nil, p.errorf("expected ';'")
	}
	p.skip()
	if !p.eof() {
		return nil, p.errorf("unexpected data after ';'")
	}
	return New(root), nil
}

type newickParser struct {
	src string
	pos int
}

func (p *newickParser) eof() bool { return p.pos >= len(p.src) }

func (p *newickParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *newickParser) accept(c byte) bool {
	if p.peek() == c && !p.eof() {
		p.pos++
		return true
	}
	return false
}

func (p *newickParser) errorf(format string, args ...any) error {
	return cverrors.New(cverrors.ErrCodeInvalidTree,
		"newick offset %d: %s", p.pos, fmt.Sprintf(format, args...))
}

// skip consumes whitespace and [comments].
func (p *newickParser) skip() {
	for !p.eof() {
		switch c := p.peek(); {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '[':
			end := strings.IndexByte(p.src[p.pos:], ']')
			if end < 0 {
				p.pos = len(p.src)
				return
			}
			p.pos += end + 1
		default:
			return
		}
	}
}

// subtree parses a clade or a tip. Children are parsed with an explicit stack
// so the recursion depth of the input does not grow the Go stack.
func (p *newickParser) subtree() (*Node, error) {
	var stack []*Node

	for {
		p.skip()
		if p.accept('(') {
			stack = append(stack, &Node{})
			continue
		}

		n := &Node{}
		if err := p.annotate(n); err != nil {
			return nil, err
		}

		if len(stack) == 0 {
			return n, nil
		}
		parent := stack[len(stack)-1]
		parent.AddChild(n)

		p.skip()
		switch {
		case p.accept(','):
		case p.accept(')'):
			stack = stack[:len(stack)-1]
			done := parent
			// Labels and lengths of the closed clade follow immediately.
			for {
				if err := p.annotate(done); err != nil {
					return nil, err
				}
				if len(stack) == 0 {
					return done, nil
				}
				p.skip()
				if p.accept(')') {
					stack[len(stack)-1].AddChild(done)
					done = stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					continue
				}
				if p.accept(',') {
					stack[len(stack)-1].AddChild(done)
					break
				}
				return nil, p.errorf("expected ',' or ')'")
			}
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

// annotate parses an optional label and an optional ":length" onto n.
func (p *newickParser) annotate(n *Node) error {
	p.skip()
	name, err := p.label()
	if err != nil {
		return err
	}
	if name != "" {
		n.Name = name
	}
	p.skip()
	if !p.accept(':') {
		return nil
	}
	p.skip()
	start := p.pos
	for !p.eof() && strings.IndexByte("+-.0123456789eE", p.peek()) >= 0 {
		p.pos++
	}
	if start == p.pos {
		return p.errorf("missing branch length")
	}
	v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return cverrors.Wrap(cverrors.ErrCodeInvalidTree, err,
			"newick offset %d: bad branch length %q", start, p.src[start:p.pos])
	}
	if v < 0 || math.IsInf(v, 0) {
		return p.errorf("branch length %v must be finite and non-negative", v)
	}
	n.SetLength(v)
	return nil
}

func (p *newickParser) label() (string, error) {
	if p.accept('\'') {
		var b strings.Builder
		for {
			if p.eof() {
				return "", p.errorf("unterminated quoted label")
			}
			c := p.src[p.pos]
			p.pos++
			if c == '\'' {
				if p.accept('\'') {
					b.WriteByte('\'')
					continue
				}
				return b.String(), nil
			}
			b.WriteByte(c)
		}
	}

	start := p.pos
	for !p.eof() && strings.IndexByte("()[]':;, \t\r\n", p.peek()) < 0 {
		p.pos++
	}
	return p.src[start:p.pos], nil
}

// Newick serializes the tree back to Newick text. Names that need quoting
// are quoted; unset lengths are omitted.
func (t *Tree) Newick() string {
	if t == nil || t.Root == nil {
		return ";"
	}
	var b strings.Builder
	type frame struct {
		node *Node
		next int
	}
	stack := []frame{{node: t.Root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		n := top.node
		if top.next == 0 && len(n.Children) > 0 {
			b.WriteByte('(')
		}
		if top.next < len(n.Children) {
			if top.next > 0 {
				b.WriteByte(',')
			}
			c := n.Children[top.next]
			top.next++
			stack = append(stack, frame{node: c})
			continue
		}
		if len(n.Children) > 0 {
			b.WriteByte(')')
		}
		b.WriteString(quoteLabel(n.Name))
		if n.Length != nil {
			b.WriteByte(':')
			b.WriteString(strconv.FormatFloat(*n.Length, 'g', -1, 64))
		}
		stack = stack[:len(stack)-1]
	}
	b.WriteByte(';')
	return b.String()
}

func quoteLabel(s string) string {
	if !strings.ContainsAny(s, "()[]':;, \t\r\n") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
