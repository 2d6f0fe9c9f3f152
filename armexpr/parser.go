// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package armexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// node is one node of a parsed expression. The set of implementations is
// closed: literalNode, callNode, propertyNode and indexNode.
type node interface {
	isNode()
}

// literalNode is a string or integer literal.
type literalNode struct {
	value any
}

func (literalNode) isNode() {}

// callNode is a function call. Namespace is set for user defined functions
// invoked as `namespace.function(...)`.
type callNode struct {
	namespace string
	name      string
	args      []node
}

func (callNode) isNode() {}

// propertyNode is a dotted property access on the result of base.
type propertyNode struct {
	base node
	name string
}

func (propertyNode) isNode() {}

// indexNode is a bracketed index access on the result of base.
type indexNode struct {
	base  node
	index node
}

func (indexNode) isNode() {}

// IsExpression reports whether s is an ARM template language expression:
// bracket-delimited and not using the `[[` escape.
func IsExpression(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "[[") && strings.HasSuffix(s, "]")
}

// parser is a recursive descent parser over the lexer's token stream with
// one token of lookahead.
type parser struct {
	lex *lexer
	tok token
}

// parse parses the inside of an expression (outer brackets stripped).
func parse(input string) (node, error) {
	p := &parser{lex: &lexer{input: input}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, NewErrParse(input, p.tok.pos, fmt.Sprintf("unexpected %s after expression", p.tok.kind))
	}
	return n, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) expect(kind tokenKind) (token, error) {
	if p.tok.kind != kind {
		return token{}, NewErrParse(p.lex.input, p.tok.pos, fmt.Sprintf("expected %s, got %s", kind, p.tok.kind))
	}
	tok := p.tok
	if err := p.advance(); err != nil {
		return token{}, err
	}
	return tok, nil
}

// parseExpr parses a term followed by any number of property or index
// accessors.
func (p *parser) parseExpr() (node, error) {
	base, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok.kind {
		case tokDot:
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expect(tokIdent)
			if err != nil {
				return nil, err
			}
			base = propertyNode{base: base, name: name.text}
		case tokLBracket:
			if err := p.advance(); err != nil {
				return nil, err
			}
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRBracket); err != nil {
				return nil, err
			}
			base = indexNode{base: base, index: index}
		default:
			return base, nil
		}
	}
}

// parseTerm parses a literal or a function call.
func (p *parser) parseTerm() (node, error) {
	switch p.tok.kind {
	case tokString:
		text := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode{value: text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			return nil, NewErrParse(p.lex.input, p.tok.pos, fmt.Sprintf("invalid number %q", p.tok.text))
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return literalNode{value: f}, nil
	case tokIdent:
		return p.parseCall()
	default:
		return nil, NewErrParse(p.lex.input, p.tok.pos, fmt.Sprintf("expected a literal or function call, got %s", p.tok.kind))
	}
}

// parseCall parses `name(args)` or `namespace.name(args)`. ARM has no bare
// identifiers, so a dot straight after an identifier can only introduce a
// namespaced user function call. Dots after the closing parenthesis are
// property access and are handled by parseExpr.
func (p *parser) parseCall() (node, error) {
	name, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	namespace := ""
	if p.tok.kind == tokDot {
		if err := p.advance(); err != nil {
			return nil, err
		}
		second, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		namespace = name.text
		name = second
	}
	if p.tok.kind != tokLParen {
		return nil, NewErrParse(p.lex.input, p.tok.pos, fmt.Sprintf("expected '(' after %q", name.text))
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var args []node
	if p.tok.kind != tokRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.tok.kind != tokComma {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return callNode{namespace: namespace, name: name.text, args: args}, nil
}
