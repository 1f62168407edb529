/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"errors"
	"math"
	"strconv"
)

// Parser parses tokens into an AST
type Parser struct {
	tokens []Token
	pos    int
	cur    Token
}

// NewParser creates a new parser over a token stream produced by Tokenize.
// A missing TOKEN_END terminator is supplied.
func NewParser(tokens []Token) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TOKEN_END {
		end := 0
		if len(tokens) > 0 {
			last := tokens[len(tokens)-1]
			end = last.Pos + len(last.Value)
		}
		tokens = append(tokens[:len(tokens):len(tokens)], Token{Type: TOKEN_END, Pos: end})
	}
	return &Parser{tokens: tokens, cur: tokens[0]}
}

// ParseString tokenizes and parses the input.
func ParseString(input string) (Node, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.cur = p.tokens[p.pos]
}

func (p *Parser) errorf(expected string) error {
	return &ParseError{Pos: p.cur.Pos, Expected: expected, Found: p.cur.describe()}
}

// Parse parses the whole token stream as a single expression
func (p *Parser) Parse() (Node, error) {
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TOKEN_END {
		return nil, p.errorf("operator or end of input")
	}
	return node, nil
}

// Precedence (low to high):
// 1. +, -
// 2. *, /, //, %
// 3. unary -, +
// 4. ** (right associative, right operand may carry a sign)
// 5. literals, names, calls, groups

func (p *Parser) parseExpr() (Node, error) {
	return p.parseAddSub()
}

func (p *Parser) parseAddSub() (Node, error) {
	left, err := p.parseMulDiv()
	if err != nil {
		return nil, err
	}

	for p.cur.isOp("+") || p.cur.isOp("-") {
		op := OpAdd
		if p.cur.Value == "-" {
			op = OpSub
		}
		at := p.cur.Pos
		p.advance()
		right, err := p.parseMulDiv()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right, At: at}
	}
	return left, nil
}

func (p *Parser) parseMulDiv() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		var op BinaryOperator
		switch {
		case p.cur.isOp("*"):
			op = OpMul
		case p.cur.isOp("/"):
			op = OpDiv
		case p.cur.isOp("//"):
			op = OpFloorDiv
		case p.cur.isOp("%"):
			op = OpMod
		default:
			return left, nil
		}
		at := p.cur.Pos
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right, At: at}
	}
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.isOp("-") || p.cur.isOp("+") {
		op := OpNeg
		if p.cur.Value == "+" {
			op = OpPos
		}
		at := p.cur.Pos
		p.advance()
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: op, Expr: expr, At: at}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	// Power is right-associative: the right operand re-enters at unary level.
	if p.cur.isOp("**") {
		at := p.cur.Pos
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: OpPow, Left: left, Right: right, At: at}, nil
	}
	return left, nil
}

func (p *Parser) parseAtom() (Node, error) {
	switch p.cur.Type {
	case TOKEN_NUMBER:
		lit, err := parseNumber(p.cur)
		if err != nil {
			return nil, err
		}
		p.advance()
		return lit, nil

	case TOKEN_IDENT:
		name, at := p.cur.Value, p.cur.Pos
		p.advance()
		if p.cur.Type == TOKEN_LPAREN {
			p.advance()
			args, err := p.parseArgs(TOKEN_RPAREN)
			if err != nil {
				return nil, err
			}
			return &CallExpr{Func: name, Args: args, At: at}, nil
		}
		return &Ident{Name: name, At: at}, nil

	case TOKEN_LPAREN:
		at := p.cur.Pos
		p.advance()
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TOKEN_COMMA {
			if p.cur.Type != TOKEN_RPAREN {
				return nil, p.errorf("')' or ','")
			}
			p.advance()
			return first, nil
		}
		elems := []Node{first}
		for p.cur.Type == TOKEN_COMMA {
			p.advance()
			elem, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		if p.cur.Type != TOKEN_RPAREN {
			return nil, p.errorf("')' or ','")
		}
		p.advance()
		return &TupleLit{Elems: elems, At: at}, nil

	case TOKEN_LBRACKET:
		at := p.cur.Pos
		p.advance()
		elems, err := p.parseArgs(TOKEN_RBRACKET)
		if err != nil {
			return nil, err
		}
		return &ListLit{Elems: elems, At: at}, nil
	}

	return nil, p.errorf("number, name, '(' or '['")
}

// parseArgs parses an optional comma separated list up to and including the
// closing token. The opening token has already been consumed.
func (p *Parser) parseArgs(closing TokenType) ([]Node, error) {
	args := []Node{}
	if p.cur.Type == closing {
		p.advance()
		return args, nil
	}

	for {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur.Type != TOKEN_COMMA {
			break
		}
		p.advance()
	}

	if p.cur.Type != closing {
		return nil, p.errorf(closing.String() + " or ','")
	}
	p.advance()
	return args, nil
}

func parseNumber(tok Token) (*NumberLit, error) {
	lit := &NumberLit{Text: tok.Value, IsFloat: tok.IsFloat, At: tok.Pos}
	if tok.IsFloat {
		f, err := strconv.ParseFloat(tok.Value, 64)
		if math.IsInf(f, 0) {
			return nil, &OverflowError{Op: "literal " + tok.Value}
		}
		// Underflow reports ErrRange with a zero result, which is kept.
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, &ParseError{Pos: tok.Pos, Expected: "number", Found: tok.describe()}
		}
		lit.Float = f
		return lit, nil
	}
	n, err := strconv.ParseInt(tok.Value, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, &OverflowError{Op: "literal " + tok.Value}
		}
		return nil, &ParseError{Pos: tok.Pos, Expected: "number", Found: tok.describe()}
	}
	lit.Int = n
	return lit, nil
}
