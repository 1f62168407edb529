/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import "fmt"

// TokenType represents the type of a token
type TokenType int

const (
	TOKEN_END TokenType = iota
	TOKEN_NUMBER
	TOKEN_IDENT
	TOKEN_OP // + - * / // % ** and the unaccepted '.'
	TOKEN_LPAREN
	TOKEN_RPAREN
	TOKEN_LBRACKET
	TOKEN_RBRACKET
	TOKEN_COMMA
)

// String returns a human-readable name for the token type
func (t TokenType) String() string {
	switch t {
	case TOKEN_END:
		return "end of input"
	case TOKEN_NUMBER:
		return "number"
	case TOKEN_IDENT:
		return "identifier"
	case TOKEN_OP:
		return "operator"
	case TOKEN_LPAREN:
		return "'('"
	case TOKEN_RPAREN:
		return "')'"
	case TOKEN_LBRACKET:
		return "'['"
	case TOKEN_RBRACKET:
		return "']'"
	case TOKEN_COMMA:
		return "','"
	default:
		return fmt.Sprintf("token(%d)", int(t))
	}
}

// Token represents a lexical token
type Token struct {
	Type  TokenType
	Value string
	Pos   int

	// IsFloat is set on number tokens whose literal has a fraction or exponent.
	IsFloat bool
}

// describe renders the token for error messages.
func (t Token) describe() string {
	switch t.Type {
	case TOKEN_END:
		return "end of input"
	case TOKEN_NUMBER, TOKEN_IDENT:
		return fmt.Sprintf("%s %q", t.Type, t.Value)
	default:
		return fmt.Sprintf("'%s'", t.Value)
	}
}

// isOp reports whether the token is the given operator symbol.
func (t Token) isOp(symbol string) bool {
	return t.Type == TOKEN_OP && t.Value == symbol
}
