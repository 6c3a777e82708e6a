package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// ErrSyntax reports malformed expression source.
	ErrSyntax = errors.New("expr: syntax error")
	// ErrUnknownFunction reports a call of a function that is not built in.
	ErrUnknownFunction = errors.New("expr: unknown function")
	// ErrUnknownIdentifier reports an identifier that is neither the frame
	// variable nor a constant.
	ErrUnknownIdentifier = errors.New("expr: unknown identifier")
	// ErrArity reports a function call with the wrong number of arguments.
	ErrArity = errors.New("expr: wrong number of arguments")
	// ErrUnresolvedPlaceholder reports a placeholder without a nested value.
	ErrUnresolvedPlaceholder = errors.New("expr: unresolved placeholder")
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokRef
	tokOp
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// Parse parses expression source into a tree.
//
// Supported syntax:
//   - numbers: 1, 2.5, .5, 1e-3
//   - the frame variable: frame_index (alias t)
//   - constants: pi, π, e, φ
//   - placeholders: @ENV_0@, @ENV_1@, ...
//   - operators: + - * / % ^ (^ is right associative and binds tighter than unary minus)
//   - calls: sin(x), pow(x, y), ...
func Parse(src string) (Node, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q", t.text)
	}
	return n, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r >= '0' && r <= '9' || r == '.':
			start := i
			for i < len(src) && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				i++
			}
			// exponent part
			if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
				j := i + 1
				if j < len(src) && (src[j] == '+' || src[j] == '-') {
					j++
				}
				if j < len(src) && src[j] >= '0' && src[j] <= '9' {
					for j < len(src) && src[j] >= '0' && src[j] <= '9' {
						j++
					}
					i = j
				}
			}
			text := src[start:i]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("%w at %d: bad number %q", ErrSyntax, start, text)
			}
			toks = append(toks, token{kind: tokNumber, text: text, num: v, pos: start})
		case r == '_' || unicode.IsLetter(r):
			start := i
			for i < len(src) {
				r, size = utf8.DecodeRuneInString(src[i:])
				if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case r == '@':
			end := strings.IndexByte(src[i+1:], '@')
			if end < 0 {
				return nil, fmt.Errorf("%w at %d: unterminated placeholder", ErrSyntax, i)
			}
			body := src[i+1 : i+1+end]
			if !strings.HasPrefix(body, "ENV_") {
				return nil, fmt.Errorf("%w at %d: bad placeholder @%s@", ErrSyntax, i, body)
			}
			idx, err := strconv.Atoi(body[len("ENV_"):])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("%w at %d: bad placeholder @%s@", ErrSyntax, i, body)
			}
			toks = append(toks, token{kind: tokRef, text: src[i : i+end+2], num: float64(idx), pos: i})
			i += end + 2
		case strings.ContainsRune("+-*/%^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			toks = append(toks, token{kind: tokComma, text: ",", pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w at %d: unexpected character %q", ErrSyntax, i, r)
		}
	}
	toks = append(toks, token{kind: tokEOF, text: "end of input", pos: len(src)})
	return toks, nil
}

type parser struct {
	src  string
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return fmt.Errorf("%w at %d in %q: %s", ErrSyntax, t.pos, p.src, fmt.Sprintf(format, args...))
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.text[0], L: left, R: right}
	}
}

// term := unary (('*' | '/' | '%') unary)*
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/" && t.text != "%") {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = Binary{Op: t.text[0], L: left, R: right}
	}
}

// unary := ('-' | '+') unary | power
func (p *parser) parseUnary() (Node, error) {
	t := p.peek()
	if t.kind == tokOp && (t.text == "-" || t.text == "+") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.text == "-" {
			return Neg{X: x}, nil
		}
		return x, nil
	}
	return p.parsePower()
}

// power := primary ('^' unary)?
func (p *parser) parsePower() (Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind == tokOp && t.text == "^" {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Binary{Op: '^', L: base, R: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return Num(t.num), nil
	case tokRef:
		return Ref(int(t.num)), nil
	case tokLParen:
		n, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, p.errorf(c, "expected ')', got %q", c.text)
		}
		return n, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			return p.parseCall(t)
		}
		if t.text == VariableName || t.text == "t" {
			return Var{}, nil
		}
		if v, ok := constants[t.text]; ok {
			return Num(v), nil
		}
		return nil, fmt.Errorf("%w: %q at %d", ErrUnknownIdentifier, t.text, t.pos)
	}
	return nil, p.errorf(t, "unexpected %q", t.text)
}

func (p *parser) parseCall(name token) (Node, error) {
	p.next() // (
	var args []Node
	if p.peek().kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokComma {
				break
			}
			p.next()
		}
	}
	if c := p.next(); c.kind != tokRParen {
		return nil, p.errorf(c, "expected ')' after arguments of %s, got %q", name.text, c.text)
	}
	return Call(name.text, args...)
}
