package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdecook/lox/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks, err := New("(){},.-+;*/ == != <= >= < > = !").Scan()
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Slash, token.EqualEqual, token.BangEqual,
		token.LessEqual, token.GreaterEqual, token.Less, token.Greater,
		token.Equal, token.Bang, token.EOF,
	}, kinds(toks))
}

func TestScanPrefersTwoCharacterOperators(t *testing.T) {
	toks, err := New("= == ! != < <= > >=").Scan()
	require.NoError(t, err)
	assert.Equal(t, []token.Kind{
		token.Equal, token.EqualEqual, token.Bang, token.BangEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual, token.EOF,
	}, kinds(toks))
}

func TestLineCommentConsumesToEndOfLine(t *testing.T) {
	toks, err := New("1 // a comment with / and * in it\n2").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, 1.0, toks[0].Literal)
	assert.Equal(t, 2, toks[1].Line)
}

func TestNumberLiteral(t *testing.T) {
	tests := []struct {
		src  string
		want float64
	}{
		{"123", 123},
		{"123.456", 123.456},
		{"0.5", 0.5},
	}
	for _, tc := range tests {
		toks, err := New(tc.src).Scan()
		require.NoError(t, err)
		require.Len(t, toks, 2)
		assert.Equal(t, token.Number, toks[0].Kind)
		assert.Equal(t, tc.want, toks[0].Literal)
	}
}

func TestTrailingDotIsNotPartOfNumber(t *testing.T) {
	toks, err := New("123.").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, token.Number, toks[0].Kind)
	assert.Equal(t, 123.0, toks[0].Literal)
	assert.Equal(t, token.Dot, toks[1].Kind)
}

func TestStringLiteralCanSpanLines(t *testing.T) {
	toks, err := New("\"line one\nline two\"\n1").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, "line one\nline two", toks[0].Literal)
	assert.Equal(t, 3, toks[1].Line)
}

func TestUnterminatedStringIsAnError(t *testing.T) {
	_, err := New(`"never closed`).Scan()
	require.Error(t, err)
}

func TestUnknownSymbolIsAnError(t *testing.T) {
	_, err := New("@").Scan()
	require.Error(t, err)
}

func TestReservedWordsAndIdentifiers(t *testing.T) {
	toks, err := New("and class foo_bar123").Scan()
	require.NoError(t, err)
	require.Len(t, toks, 4)
	assert.Equal(t, token.And, toks[0].Kind)
	assert.Equal(t, token.Class, toks[1].Kind)
	assert.Equal(t, token.Identifier, toks[2].Kind)
	assert.Equal(t, "foo_bar123", toks[2].Lexeme)
}

// TestRetokenizeIsStable checks that scanning the same source twice yields
// the same token kinds and lexemes.
func TestRetokenizeIsStable(t *testing.T) {
	src := `class Foo < Bar { init(a, b) { this.a = a; return; } }`
	first, err := New(src).Scan()
	require.NoError(t, err)
	second, err := New(src).Scan()
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Kind, second[i].Kind)
		assert.Equal(t, first[i].Lexeme, second[i].Lexeme)
	}
}
