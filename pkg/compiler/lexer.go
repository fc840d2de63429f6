package compiler

import "unicode"

// Lexer turns source text into tokens on demand. The parser pulls tokens one
// at a time with Next; the only other operations are the cursor snapshots
// used by the single speculative parse rule.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

// lexState is a snapshot of the lexer cursor.
type lexState struct {
	pos  int
	line int
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

func (l *Lexer) save() lexState { return lexState{pos: l.pos, line: l.line} }

func (l *Lexer) restore(s lexState) {
	l.pos = s.pos
	l.line = s.line
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && unicode.IsSpace(l.peek()) {
		l.advance()
	}
}

// skipToEOL discards everything up to, but not including, the next newline.
func (l *Lexer) skipToEOL() {
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isIdentPart(r rune) bool { return isIdentStart(r) || isDigit(r) }

// scanNumber collects digits with at most one '.'. A second '.' ends the
// literal and is left for the next call.
func (l *Lexer) scanNumber(line int) Token {
	start := l.pos
	dots := 0
	for !l.atEnd() {
		r := l.peek()
		if r == '.' {
			if dots == 1 {
				break
			}
			dots++
		} else if !isDigit(r) {
			break
		}
		l.advance()
	}
	return Token{NUMBER, string(l.src[start:l.pos]), line}
}

// scanIdent collects a full identifier or keyword token.
func (l *Lexer) scanIdent(line int) Token {
	start := l.pos
	for !l.atEnd() && isIdentPart(l.peek()) {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENTIFIER
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{tt, lexeme, line}
}

// scanString collects a "..." literal verbatim. An unterminated string runs
// to the end of input.
func (l *Lexer) scanString(line int) Token {
	l.advance() // opening "
	start := l.pos
	for !l.atEnd() && l.peek() != '"' {
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	if !l.atEnd() {
		l.advance() // closing "
	}
	return Token{STRING, lexeme, line}
}

// Next skips whitespace, comments and preprocessor lines and returns the next
// token. At the end of input it keeps returning an EOF token.
func (l *Lexer) Next() Token {
	for {
		l.skipWhitespace()
		if l.atEnd() {
			return Token{EOF, "", l.line}
		}
		if l.peek() == '/' && l.peek2() == '/' {
			l.skipToEOL()
			continue
		}
		if l.peek() == '#' {
			l.skipToEOL()
			continue
		}
		break
	}

	ch := l.peek()
	line := l.line

	if isDigit(ch) || (ch == '.' && isDigit(l.peek2())) {
		return l.scanNumber(line)
	}
	if isIdentStart(ch) {
		return l.scanIdent(line)
	}
	if ch == '"' {
		return l.scanString(line)
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '(':
		return Token{LPAREN, "(", line}
	case ')':
		return Token{RPAREN, ")", line}
	case '{':
		return Token{LBRACE, "{", line}
	case '}':
		return Token{RBRACE, "}", line}
	case '[':
		return Token{LBRACKET, "[", line}
	case ']':
		return Token{RBRACKET, "]", line}
	case ';':
		return Token{SEMICOLON, ";", line}
	case ',':
		return Token{COMMA, ",", line}
	case ':':
		return Token{COLON, ":", line}
	case '+':
		if l.peek() == '+' {
			l.advance()
			return Token{PLUS_PLUS, "++", line}
		}
		return Token{PLUS, "+", line}
	case '-':
		return Token{MINUS, "-", line}
	case '*':
		return Token{STAR, "*", line}
	case '/':
		return Token{SLASH, "/", line}
	case '%':
		return Token{PERCENT, "%", line}
	case '=':
		if l.peek() == '=' {
			l.advance()
			return Token{EQUALS, "==", line}
		}
		return Token{ASSIGN, "=", line}
	case '!':
		if l.peek() == '=' {
			l.advance()
			return Token{NOT_EQ, "!=", line}
		}
		return Token{INVALID, "!", line}
	case '<':
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line}
		}
		if l.peek() == '<' {
			l.advance()
			return Token{SHL_OP, "<<", line}
		}
		return Token{LESS, "<", line}
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line}
		}
		return Token{GREATER, ">", line}
	default:
		return Token{INVALID, string(ch), line}
	}
}

// Lex drains a fresh lexer over src and returns every token including the
// final EOF token.
func Lex(src string) []Token {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens
		}
	}
}
