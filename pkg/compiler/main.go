// Package compiler provides the lexer, parser and stack-code generator for
// a small C++-like teaching language.
//
// Pipeline: source → Lex → Parse → AST → Generate → stack assembly text
package compiler
