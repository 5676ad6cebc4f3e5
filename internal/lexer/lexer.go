// Package lexer turns Lox source text into a token stream.
package lexer

import (
	"strconv"

	"github.com/samdecook/lox/internal/loxerr"
	"github.com/samdecook/lox/internal/token"
)

// Lexer is a single-pass, two-character-lookahead scanner over source bytes.
type Lexer struct {
	src  []byte
	idx  int // index of the current, already-consumed byte; -1 before start
	line int
}

// New returns a Lexer ready to scan src.
func New(src string) *Lexer {
	return &Lexer{src: []byte(src), idx: -1, line: 1}
}

// Scan consumes the whole source and returns every token, including a
// trailing EOF. It keeps scanning past lexical errors (so "tokenize" style
// callers still see the full token stream) and returns the first error
// encountered, if any.
func (l *Lexer) Scan() ([]token.Token, error) {
	var toks []token.Token
	var firstErr error

	for l.advance() {
		switch l.ch() {
		case ' ', '\t', '\r':
		case '\n':
			l.line++
		case '(':
			toks = append(toks, l.tok(token.LeftParen, "("))
		case ')':
			toks = append(toks, l.tok(token.RightParen, ")"))
		case '{':
			toks = append(toks, l.tok(token.LeftBrace, "{"))
		case '}':
			toks = append(toks, l.tok(token.RightBrace, "}"))
		case ',':
			toks = append(toks, l.tok(token.Comma, ","))
		case '.':
			toks = append(toks, l.tok(token.Dot, "."))
		case '-':
			toks = append(toks, l.tok(token.Minus, "-"))
		case '+':
			toks = append(toks, l.tok(token.Plus, "+"))
		case ';':
			toks = append(toks, l.tok(token.Semicolon, ";"))
		case '*':
			toks = append(toks, l.tok(token.Star, "*"))
		case '/':
			if l.peek() == '/' {
				l.lineComment()
			} else {
				toks = append(toks, l.tok(token.Slash, "/"))
			}
		case '=':
			if l.peek() == '=' {
				l.advance()
				toks = append(toks, l.tok(token.EqualEqual, "=="))
			} else {
				toks = append(toks, l.tok(token.Equal, "="))
			}
		case '!':
			if l.peek() == '=' {
				l.advance()
				toks = append(toks, l.tok(token.BangEqual, "!="))
			} else {
				toks = append(toks, l.tok(token.Bang, "!"))
			}
		case '<':
			if l.peek() == '=' {
				l.advance()
				toks = append(toks, l.tok(token.LessEqual, "<="))
			} else {
				toks = append(toks, l.tok(token.Less, "<"))
			}
		case '>':
			if l.peek() == '=' {
				l.advance()
				toks = append(toks, l.tok(token.GreaterEqual, ">="))
			} else {
				toks = append(toks, l.tok(token.Greater, ">"))
			}
		case '"':
			tok, err := l.stringLiteral()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				break
			}
			toks = append(toks, tok)
		default:
			switch {
			case isDigit(l.ch()):
				toks = append(toks, l.numberLiteral())
			case isAlpha(l.ch()):
				toks = append(toks, l.identifier())
			default:
				if firstErr == nil {
					firstErr = loxerr.New(loxerr.UnknownSymbol, l.line, "Unexpected character: "+string(l.ch()))
				}
			}
		}
	}

	toks = append(toks, token.Token{Kind: token.EOF, Line: l.line})
	return toks, firstErr
}

func (l *Lexer) ch() byte { return l.src[l.idx] }

// advance moves to the next byte, reporting whether one existed.
func (l *Lexer) advance() bool {
	if l.idx >= len(l.src)-1 {
		l.idx = len(l.src)
		return false
	}
	l.idx++
	return true
}

func (l *Lexer) peek() byte {
	if l.idx+1 >= len(l.src) {
		return 0
	}
	return l.src[l.idx+1]
}

func (l *Lexer) peekTwo() byte {
	if l.idx+2 >= len(l.src) {
		return 0
	}
	return l.src[l.idx+2]
}

func (l *Lexer) tok(kind token.Kind, lexeme string) token.Token {
	return token.Token{Kind: kind, Lexeme: lexeme, Line: l.line}
}

func (l *Lexer) lineComment() {
	for l.peek() != '\n' && l.peek() != 0 {
		l.advance()
	}
}

func (l *Lexer) stringLiteral() (token.Token, error) {
	start := l.idx
	startLine := l.line

	for {
		if l.peek() == 0 {
			return token.Token{}, loxerr.New(loxerr.UnterminatedString, startLine, "Unterminated string.")
		}
		if l.peek() == '"' {
			l.advance()
			break
		}
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}

	lexeme := string(l.src[start : l.idx+1])
	value := string(l.src[start+1 : l.idx])
	return token.Token{Kind: token.String, Lexeme: lexeme, Literal: value, Line: startLine}, nil
}

func (l *Lexer) numberLiteral() token.Token {
	start := l.idx

	for isDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekTwo()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	lexeme := string(l.src[start : l.idx+1])
	f, _ := strconv.ParseFloat(lexeme, 64)
	return token.Token{Kind: token.Number, Lexeme: lexeme, Literal: f, Line: l.line}
}

func (l *Lexer) identifier() token.Token {
	start := l.idx

	for isAlphaNumeric(l.peek()) {
		l.advance()
	}

	text := string(l.src[start : l.idx+1])
	if kind, ok := token.Keywords[text]; ok {
		return token.Token{Kind: kind, Lexeme: text, Line: l.line}
	}
	return token.Token{Kind: token.Identifier, Lexeme: text, Line: l.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isAlphaNumeric(c byte) bool { return isAlpha(c) || isDigit(c) }
