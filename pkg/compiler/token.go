package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF     TokenType = iota // sentinel: end of input
	INVALID                  // any character the lexer does not recognise

	// Literals
	NUMBER     // integer or decimal literal, e.g. 42 or 3.5
	IDENTIFIER // names, type names, and the soft keywords if/main/sizeof/int
	STRING     // string literal "..." (no escape processing)

	// Keywords recognised by the lexer itself
	FOR     // "for"
	WHILE   // "while"
	SWITCH  // "switch"
	CASE    // "case"
	BREAK   // "break"
	DEFAULT // "default"
	COUT    // "cout"
	RETURN  // "return"

	// Paired delimiters
	LPAREN   // (
	RPAREN   // )
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]

	// Punctuation
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :

	// Arithmetic operators
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %

	// Relational and compound operators
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
	EQUALS     // ==
	NOT_EQ     // !=
	SHL_OP     // <<
	PLUS_PLUS  // ++
	ASSIGN     // =
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	INVALID:    "INVALID",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	STRING:     "STRING",
	FOR:        "FOR",
	WHILE:      "WHILE",
	SWITCH:     "SWITCH",
	CASE:       "CASE",
	BREAK:      "BREAK",
	DEFAULT:    "DEFAULT",
	COUT:       "COUT",
	RETURN:     "RETURN",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	SEMICOLON:  "SEMICOLON",
	COMMA:      "COMMA",
	COLON:      "COLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	PERCENT:    "PERCENT",
	LESS:       "LESS",
	GREATER:    "GREATER",
	LESS_EQ:    "LESS_EQ",
	GREATER_EQ: "GREATER_EQ",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	SHL_OP:     "SHL_OP",
	PLUS_PLUS:  "PLUS_PLUS",
	ASSIGN:     "ASSIGN",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) && tokenNames[tt] != "" {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// keywords maps source text to its keyword TokenType. Type names and
// if/main/sizeof are deliberately absent: they stay IDENTIFIER and the parser
// decides what they mean from their position.
var keywords = map[string]TokenType{
	"for":     FOR,
	"while":   WHILE,
	"switch":  SWITCH,
	"case":    CASE,
	"break":   BREAK,
	"default": DEFAULT,
	"cout":    COUT,
	"return":  RETURN,
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line of the first character
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}

// is reports whether t is an IDENTIFIER spelled word.
func (t Token) is(word string) bool {
	return t.Type == IDENTIFIER && t.Lexeme == word
}

// typeNames are the identifiers that start a declaration.
var typeNames = map[string]bool{
	"int":    true,
	"float":  true,
	"char":   true,
	"string": true,
}

// isTypeName reports whether t names a declarable type.
func (t Token) isTypeName() bool {
	return t.Type == IDENTIFIER && typeNames[t.Lexeme]
}
