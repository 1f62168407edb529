/*
SPDX-License-Identifier: Apache-2.0

Copyright 2026 The Canvas Chat Authors
*/

package expr

import (
	"strings"
)

// Lexer tokenizes an expression string
type Lexer struct {
	input string
	pos   int
	ch    byte
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	if len(input) > 0 {
		l.ch = input[0]
	}
	return l
}

// Tokenize splits the input into tokens. The returned slice always ends with
// a TOKEN_END token.
func Tokenize(input string) ([]Token, error) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TOKEN_END {
			return tokens, nil
		}
	}
}

func (l *Lexer) advance() {
	l.pos++
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
}

func (l *Lexer) peek() byte {
	return l.peekAt(1)
}

func (l *Lexer) peekAt(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r') {
		l.advance()
	}
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	if l.atEnd() {
		return Token{Type: TOKEN_END, Pos: l.pos}, nil
	}

	startPos := l.pos

	// Numbers
	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peek())) {
		return l.readNumber(startPos), nil
	}

	// Identifiers
	if isLetter(l.ch) || l.ch == '_' {
		return l.readIdent(startPos), nil
	}

	switch l.ch {
	case '+', '-', '%':
		op := string(l.ch)
		l.advance()
		return Token{Type: TOKEN_OP, Value: op, Pos: startPos}, nil
	case '*':
		l.advance()
		if l.ch == '*' && !l.atEnd() {
			l.advance()
			return Token{Type: TOKEN_OP, Value: "**", Pos: startPos}, nil
		}
		return Token{Type: TOKEN_OP, Value: "*", Pos: startPos}, nil
	case '/':
		l.advance()
		if l.ch == '/' && !l.atEnd() {
			l.advance()
			return Token{Type: TOKEN_OP, Value: "//", Pos: startPos}, nil
		}
		return Token{Type: TOKEN_OP, Value: "/", Pos: startPos}, nil
	case '.':
		// A dot that does not start a number is lexed so the parser can
		// reject attribute access with a position.
		l.advance()
		return Token{Type: TOKEN_OP, Value: ".", Pos: startPos}, nil
	case '(':
		l.advance()
		return Token{Type: TOKEN_LPAREN, Value: "(", Pos: startPos}, nil
	case ')':
		l.advance()
		return Token{Type: TOKEN_RPAREN, Value: ")", Pos: startPos}, nil
	case '[':
		l.advance()
		return Token{Type: TOKEN_LBRACKET, Value: "[", Pos: startPos}, nil
	case ']':
		l.advance()
		return Token{Type: TOKEN_RBRACKET, Value: "]", Pos: startPos}, nil
	case ',':
		l.advance()
		return Token{Type: TOKEN_COMMA, Value: ",", Pos: startPos}, nil
	}

	return Token{}, &LexError{Pos: startPos, Char: l.currentRune()}
}

// currentRune decodes the full character at the cursor so that multi-byte
// input is reported intact.
func (l *Lexer) currentRune() rune {
	for _, r := range l.input[l.pos:] {
		return r
	}
	return 0
}

func (l *Lexer) readNumber(startPos int) Token {
	var sb strings.Builder
	isFloat := false

	for isDigit(l.ch) && !l.atEnd() {
		sb.WriteByte(l.ch)
		l.advance()
	}
	if l.ch == '.' && !l.atEnd() {
		isFloat = true
		sb.WriteByte('.')
		l.advance()
		for isDigit(l.ch) && !l.atEnd() {
			sb.WriteByte(l.ch)
			l.advance()
		}
	}

	// Exponent only when digits follow, so "2e" lexes as 2 followed by e.
	if l.ch == 'e' || l.ch == 'E' {
		digitsAt := 1
		if next := l.peek(); next == '+' || next == '-' {
			digitsAt = 2
		}
		if isDigit(l.peekAt(digitsAt)) {
			isFloat = true
			for i := 0; i < digitsAt; i++ {
				sb.WriteByte(l.ch)
				l.advance()
			}
			for isDigit(l.ch) && !l.atEnd() {
				sb.WriteByte(l.ch)
				l.advance()
			}
		}
	}

	return Token{Type: TOKEN_NUMBER, Value: sb.String(), Pos: startPos, IsFloat: isFloat}
}

func (l *Lexer) readIdent(startPos int) Token {
	var sb strings.Builder

	for (isLetter(l.ch) || isDigit(l.ch) || l.ch == '_') && !l.atEnd() {
		sb.WriteByte(l.ch)
		l.advance()
	}

	return Token{Type: TOKEN_IDENT, Value: sb.String(), Pos: startPos}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
