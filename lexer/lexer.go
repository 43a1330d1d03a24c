// Package lexer turns Mephisto source text into a token stream.
package lexer

import (
	"regexp"
	"strings"

	"github.com/viant/mephisto/token"
)

// tokenizer tries to match at the given byte offset into src. It returns the
// matched token (nil if the tokenizer consumes bytes but emits no token, e.g.
// whitespace) and the number of bytes consumed (0 meaning "no match").
type tokenizer func(src string, pos int) (tok *token.Token, consumed int)

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func whitespaceTokenizer(src string, pos int) (*token.Token, int) {
	n := 0
	for pos+n < len(src) && isWhitespace(src[pos+n]) {
		n++
	}
	return nil, n
}

// regexTokenizer matches pattern anchored at pos (pattern must start with ^).
func regexTokenizer(typ token.Type, pattern *regexp.Regexp) tokenizer {
	return func(src string, pos int) (*token.Token, int) {
		loc := pattern.FindStringIndex(src[pos:])
		if loc == nil || loc[0] != 0 {
			return nil, 0
		}
		literal := src[pos : pos+loc[1]]
		if literal == "" {
			return nil, 0
		}
		t := token.New(typ, literal, token.Position{})
		return &t, len(literal)
	}
}

// wordTokenizer matches an exact literal word (used for multi-char operators).
func wordTokenizer(typ token.Type, word string) tokenizer {
	return func(src string, pos int) (*token.Token, int) {
		if !strings.HasPrefix(src[pos:], word) {
			return nil, 0
		}
		t := token.New(typ, word, token.Position{})
		return &t, len(word)
	}
}

func commentTokenizer() tokenizer {
	line := regexp.MustCompile(`^//.*`)
	block := regexp.MustCompile(`^/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`)
	lineT := regexTokenizer(token.COMMENT, line)
	blockT := regexTokenizer(token.COMMENT, block)
	return func(src string, pos int) (*token.Token, int) {
		if t, n := blockT(src, pos); n > 0 {
			return t, n
		}
		return lineT(src, pos)
	}
}

func keyword(typ token.Type, word string) tokenizer {
	return regexTokenizer(typ, regexp.MustCompile(`^`+word+`\b`))
}

// tokenizers is the ordered matcher list. Order is load-bearing:
// keywords before the generic identifier matcher, two-char operators before
// single-char ones, comments before the generic division operator.
var tokenizers = buildTokenizers()

func buildTokenizers() []tokenizer {
	list := []tokenizer{
		whitespaceTokenizer,
		commentTokenizer(),

		keyword(token.PROCESS, "process"),
		keyword(token.FN, "fn"),
		keyword(token.BLOCK, "block"),
		keyword(token.RETURN, "return"),
		keyword(token.INPUT, "input"),
		keyword(token.PARAM, "param"),
		keyword(token.OUTPUT, "output"),
		keyword(token.OUTPUTS, "OUTPUTS"),
		keyword(token.LET, "let"),
		keyword(token.CONST, "const"),
		keyword(token.IMPORT, "import"),
		keyword(token.FROM, "from"),
		keyword(token.EXPORT, "export"),
		keyword(token.CONNECT, "connect"),
		keyword(token.BUFFER, "buffer"),

		wordTokenizer(token.EQ, "=="),
		wordTokenizer(token.NE, "!="),
		wordTokenizer(token.GE, ">="),
		wordTokenizer(token.LE, "<="),
		wordTokenizer(token.BUFI, "|i|"),

		wordTokenizer(token.LCURLY, "{"),
		wordTokenizer(token.RCURLY, "}"),
		wordTokenizer(token.LPAREN, "("),
		wordTokenizer(token.RPAREN, ")"),
		wordTokenizer(token.LSQUARE, "["),
		wordTokenizer(token.RSQUARE, "]"),
		wordTokenizer(token.CABLE, "->"),
		wordTokenizer(token.SEMI, ";"),
		wordTokenizer(token.COLON, ":"),
		wordTokenizer(token.DOT, "."),
		wordTokenizer(token.COMMA, ","),
		wordTokenizer(token.DEF, "="),
		wordTokenizer(token.DIV, "/"),
		wordTokenizer(token.MUL, "*"),
		wordTokenizer(token.MINUS, "-"),
		wordTokenizer(token.PLUS, "+"),
		wordTokenizer(token.GT, ">"),
		wordTokenizer(token.LT, "<"),

		regexTokenizer(token.NUMBER, regexp.MustCompile(`^[+-]?([0-9]*[.])?[0-9]+`)),
		regexTokenizer(token.STRING, regexp.MustCompile(`^"([^"\\]|\\.)*"`)),
		regexTokenizer(token.ID, regexp.MustCompile(`^[_$]*[_$a-zA-Z][$_a-zA-Z0-9]*`)),
	}
	return list
}

// Tokenize converts source text into a token slice terminated by EOF. It never
// fails: bytes that match no tokenizer become a single-byte UNKNOWN token and
// lexing continues from the next byte. Comment tokens are filtered out of the
// returned slice.
func Tokenize(src string) []token.Token {
	var out []token.Token

	pos := 0
	line, col := 1, 1

	advance := func(n int) {
		for i := 0; i < n; i++ {
			if src[pos+i] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		pos += n
	}

	for pos < len(src) {
		matched := false
		for _, tz := range tokenizers {
			tok, consumed := tz(src, pos)
			if consumed == 0 {
				continue
			}
			matched = true
			start := pos
			startLine, startCol := line, col
			advance(consumed)
			if tok != nil {
				tok.Position = token.Position{Start: start, End: pos, Line: startLine, Column: startCol}
				out = append(out, *tok)
			}
			break
		}
		if !matched {
			t := token.New(token.UNKNOWN, src[pos:pos+1], token.Position{Start: pos, End: pos + 1, Line: line, Column: col})
			out = append(out, t)
			advance(1)
		}
	}

	out = append(out, token.New(token.EOF, "", token.Position{Start: pos, End: pos, Line: line, Column: col}))

	filtered := out[:0]
	for _, t := range out {
		if t.Type == token.COMMENT {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}
