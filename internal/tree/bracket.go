package tree

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ppiankov/relcontext/internal/span"
)

var (
	// ErrUnbalanced is returned for a bracketed string whose parentheses do not pair up.
	ErrUnbalanced = errors.New("unbalanced brackets")
	// ErrTokenCount is returned when the leaves do not match the supplied token spans.
	ErrTokenCount = errors.New("leaf count does not match tokens")
)

var labelEscaper = strings.NewReplacer("(", "-LRB-", ")", "-RRB-", " ", "_")

// EscapeLabel rewrites characters that would break bracketed output.
func EscapeLabel(label string) string {
	return labelEscaper.Replace(label)
}

// Format renders the subtree at id as "(label child ...)". Leaves are
// rendered as "(label)".
func (t *Tree) Format(id NodeID) string {
	var b strings.Builder
	t.format(&b, id)
	return b.String()
}

func (t *Tree) format(b *strings.Builder, id NodeID) {
	n := t.Node(id)
	if n == nil {
		return
	}
	b.WriteByte('(')
	b.WriteString(labelEscaper.Replace(n.Label))
	for _, c := range n.Children {
		b.WriteByte(' ')
		t.format(b, c)
	}
	b.WriteByte(')')
}

func (t *Tree) String() string {
	if t == nil || t.root == None {
		return "()"
	}
	return t.Format(t.root)
}

// ParseBracketed reads a Penn-style bracketed constituent parse such as
// "(ROOT (S (NP (NNP John)) (VP (VBZ runs))))". Bare words and "(word)"
// forms both become leaves. Leaves take their spans from tokens in
// order; a nil tokens slice lays the words out as if joined by single
// spaces from offset 0. Every internal node gets the hull of its
// children.
func ParseBracketed(s string, tokens []span.Span) (*Tree, error) {
	p := &bracketParser{toks: lexBrackets(s), tree: New(Constituent), spans: tokens}
	if len(p.toks) == 0 {
		return nil, fmt.Errorf("empty parse: %w", ErrUnbalanced)
	}
	root, err := p.node()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("trailing input at token %d: %w", p.pos, ErrUnbalanced)
	}
	if tokens != nil && p.leaves != len(tokens) {
		return nil, fmt.Errorf("%d leaves, %d tokens: %w", p.leaves, len(tokens), ErrTokenCount)
	}
	// "( (S ...))" wraps the real root in an unlabeled bracket.
	if n := p.tree.Node(root); n.Label == "" && len(n.Children) == 1 {
		root = n.Children[0]
	}
	p.tree.SetRoot(root)
	return p.tree, nil
}

type bracketParser struct {
	toks   []string
	pos    int
	tree   *Tree
	spans  []span.Span
	leaves int
	offset int
}

func (p *bracketParser) node() (NodeID, error) {
	if p.pos >= len(p.toks) {
		return None, fmt.Errorf("unexpected end of input: %w", ErrUnbalanced)
	}
	tok := p.toks[p.pos]
	p.pos++
	switch tok {
	case ")":
		return None, fmt.Errorf("unexpected ')' at token %d: %w", p.pos-1, ErrUnbalanced)
	case "(":
	default:
		return p.leaf(tok)
	}

	label := ""
	if p.pos < len(p.toks) && p.toks[p.pos] != "(" && p.toks[p.pos] != ")" {
		label = p.toks[p.pos]
		p.pos++
	}
	var children []NodeID
	for {
		if p.pos >= len(p.toks) {
			return None, fmt.Errorf("missing ')' for %q: %w", label, ErrUnbalanced)
		}
		if p.toks[p.pos] == ")" {
			p.pos++
			break
		}
		c, err := p.node()
		if err != nil {
			return None, err
		}
		children = append(children, c)
	}
	if len(children) == 0 {
		if label == "" {
			return None, fmt.Errorf("empty brackets at token %d: %w", p.pos-2, ErrUnbalanced)
		}
		return p.leaf(label)
	}

	sp := p.tree.Node(children[0]).Span
	for _, c := range children[1:] {
		sp = sp.Hull(p.tree.Node(c).Span)
	}
	return p.tree.Add(Node{Label: label, Span: sp, Children: children}), nil
}

func (p *bracketParser) leaf(word string) (NodeID, error) {
	var sp span.Span
	if p.spans != nil {
		if p.leaves >= len(p.spans) {
			return None, fmt.Errorf("leaf %q beyond %d tokens: %w", word, len(p.spans), ErrTokenCount)
		}
		sp = p.spans[p.leaves]
	} else {
		n := len([]rune(word))
		sp = span.Span{Start: p.offset, End: p.offset + n}
		p.offset += n + 1
	}
	p.leaves++
	return p.tree.Add(Node{Label: word, Span: sp}), nil
}

func lexBrackets(s string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}
