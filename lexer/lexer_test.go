package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/mephisto/lexer"
	"github.com/viant/mephisto/token"
)

func types(toks []token.Token) []token.Type {
	out := make([]token.Type, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenize_CommentsOnly(t *testing.T) {
	toks := lexer.Tokenize("// hello\n/* block */")
	assert.Equal(t, []token.Type{token.EOF}, types(toks))
}

func TestTokenize_ImportWithInlineComment(t *testing.T) {
	toks := lexer.Tokenize(`import foo from "./bar.meph"; // comment`)
	assert.Equal(t, []token.Type{
		token.IMPORT, token.ID, token.FROM, token.STRING, token.SEMI, token.EOF,
	}, types(toks))
}

func TestTokenize_KeywordNotPrefixOfIdentifier(t *testing.T) {
	toks := lexer.Tokenize("let letter = 1;")
	assert.Equal(t, []token.Type{
		token.LET, token.ID, token.DEF, token.NUMBER, token.SEMI, token.EOF,
	}, types(toks))
	assert.Equal(t, "letter", toks[1].Literal)
}

func TestTokenize_TwoCharOperatorsBeforeOneChar(t *testing.T) {
	toks := lexer.Tokenize("a >= b <= c == d != e")
	assert.Equal(t, []token.Type{
		token.ID, token.GE, token.ID, token.LE, token.ID, token.EQ, token.ID, token.NE, token.ID, token.EOF,
	}, types(toks))
}

func TestTokenize_BufferInitializerMarker(t *testing.T) {
	toks := lexer.Tokenize("buffer b[4] = |i| { b[i] = 0; };")
	assert.Contains(t, types(toks), token.BUFI)
}

func TestTokenize_UnknownByteContinues(t *testing.T) {
	toks := lexer.Tokenize("a @ b")
	assert.Equal(t, []token.Type{token.ID, token.UNKNOWN, token.ID, token.EOF}, types(toks))
	assert.Equal(t, "@", toks[1].Literal)
}

func TestTokenize_PositionsAndLines(t *testing.T) {
	toks := lexer.Tokenize("let a = 1;\nlet b = 2;")
	// "let" on line 1 column 1
	assert.Equal(t, 1, toks[0].Position.Line)
	assert.Equal(t, 1, toks[0].Position.Column)
	// find the second "let"
	var second token.Token
	count := 0
	for _, tk := range toks {
		if tk.Type == token.LET {
			count++
			if count == 2 {
				second = tk
			}
		}
	}
	assert.Equal(t, 2, second.Position.Line)
}

func TestTokenize_SignIsASeparateTokenFromNumber(t *testing.T) {
	// MINUS/PLUS are tried before NUMBER in tokenizer order, so a leading sign
	// is always its own token; the parser reassembles unary +/- around the
	// expression that follows, not the lexer.
	toks := lexer.Tokenize("-1.5 +2 3.14")
	assert.Equal(t, []token.Type{
		token.MINUS, token.NUMBER, token.PLUS, token.NUMBER, token.NUMBER, token.EOF,
	}, types(toks))
}

func TestTokenize_StringEscapes(t *testing.T) {
	toks := lexer.Tokenize(`"a\"b"`)
	assert.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, `"a\"b"`, toks[0].Literal)
}
