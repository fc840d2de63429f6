package compiler

import (
	"fmt"
	"strconv"
)

// Parser pulls tokens from a Lexer one at a time and builds an AST by
// recursive descent.
//
// Grammar:
//
//	program     = ("using" "namespace" IDENTIFIER ";")* "int" "main" "(" ")" block
//	single      = simple EOF
//	block       = "{" statement* "}"
//	statement   = declaration
//	            | "if" "(" relational ")" block
//	            | "switch" "(" IDENTIFIER ")" "{" case* "}"
//	            | "for" header block
//	            | header "for" block
//	            | "while" "(" relational ")" block
//	            | "cout" ("<<" relational)+ ";"
//	            | "return" relational ";"
//	            | "break" ";"
//	            | simple ";"
//	case        = ("case" relational? | "default") ":" statement ("break" ";")?
//	header      = "(" (declaration | simple ";") relational ";" (declaration | simple) ")"
//	declaration = TYPE var ("," var)* ";"
//	var         = IDENTIFIER ("[" NUMBER? "]")? ("=" (relational | "{" list "}"))?
//	simple      = lvalue "=" relational | relational
//	relational  = arith (("<"|">"|"<="|">="|"=="|"!=") arith)*
//	arith       = term (("+"|"-") term)*
//	term        = factor (("*"|"/"|"%") factor)*
//	factor      = "-" factor | primary
//	primary     = NUMBER | STRING | "sizeof" "(" relational ")"
//	            | IDENTIFIER ("[" relational "]")? ("++")? | "(" relational ")"
type Parser struct {
	lx  *Lexer
	cur Token // one-token lookahead
}

// parserState is everything the speculative header-then-for rule has to put
// back when it does not match.
type parserState struct {
	lex lexState
	cur Token
}

// NewParser returns a parser reading from a fresh lexer over src.
func NewParser(src string) *Parser {
	p := &Parser{lx: NewLexer(src)}
	p.cur = p.lx.Next()
	return p
}

// Parse parses src and returns the root node.
func Parse(src string) (Node, error) {
	return NewParser(src).Parse()
}

func (p *Parser) save() parserState { return parserState{lex: p.lx.save(), cur: p.cur} }

func (p *Parser) restore(s parserState) {
	p.lx.restore(s.lex)
	p.cur = s.cur
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.cur
	p.cur = p.lx.Next()
	return tok
}

// errorf builds a SyntaxError at the line of the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return &SyntaxError{Line: p.cur.Line, Msg: fmt.Sprintf(format, args...)}
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	if p.cur.Type != tt {
		return p.cur, p.errorf("Se esperaba %s, se encontró %s ('%s')", tt, p.cur.Type, p.cur.Lexeme)
	}
	return p.advance(), nil
}

// require is expect with a hand-written message.
func (p *Parser) require(tt TokenType, msg string) (Token, error) {
	if p.cur.Type != tt {
		return p.cur, p.errorf("%s", msg)
	}
	return p.advance(), nil
}

// Parse parses a whole program when the input starts with "int" or "using",
// otherwise exactly one simple statement. Leftover tokens are an error.
func (p *Parser) Parse() (Node, error) {
	var (
		root Node
		err  error
	)
	if p.cur.is("int") || p.cur.is("using") {
		root, err = p.parseProgram()
	} else {
		root, err = p.parseSimple()
	}
	if err != nil {
		return nil, err
	}
	if p.cur.Type != EOF {
		return nil, p.errorf("Tokens sobrantes después del parseo: %s ('%s')", p.cur.Type, p.cur.Lexeme)
	}
	return root, nil
}

func (p *Parser) parseProgram() (Node, error) {
	for p.cur.is("using") {
		p.advance()
		if !p.cur.is("namespace") {
			return nil, p.errorf("Se esperaba 'namespace' después de 'using'")
		}
		p.advance()
		if _, err := p.expect(IDENTIFIER); err != nil {
			return nil, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
	}

	if !p.cur.is("int") {
		return nil, p.errorf("Se esperaba 'int' al inicio del programa")
	}
	p.advance()
	if !p.cur.is("main") {
		return nil, p.errorf("Se esperaba 'main' después de 'int'")
	}
	p.advance()
	if _, err := p.require(LPAREN, "Se esperaba '(' después de 'main'"); err != nil {
		return nil, err
	}
	if _, err := p.require(RPAREN, "Se esperaba ')' después de '('"); err != nil {
		return nil, err
	}
	if p.cur.Type != LBRACE {
		return nil, p.errorf("Se esperaba '{' después de main()")
	}
	return p.parseBlock()
}

func (p *Parser) parseBlock() (*Block, error) {
	open, err := p.expect(LBRACE)
	if err != nil {
		return nil, err
	}
	block := &Block{Pos: Pos(open.Line)}
	for p.cur.Type != RBRACE && p.cur.Type != EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if p.cur.Type != RBRACE {
		return nil, p.errorf("Falta '}' para cerrar bloque")
	}
	p.advance()
	return block, nil
}

// parseStatement tries each statement form in a fixed order.
func (p *Parser) parseStatement() (Node, error) {
	switch {
	case p.cur.isTypeName():
		return p.parseDeclaration(false)
	case p.cur.is("if"):
		return p.parseIf()
	case p.cur.Type == SWITCH:
		return p.parseSwitch()
	case p.cur.Type == FOR:
		return p.parseFor()
	}

	if p.cur.Type == LPAREN {
		if stmt, ok, err := p.tryHeaderFor(); ok {
			return stmt, err
		}
	}

	switch p.cur.Type {
	case WHILE:
		return p.parseWhile()
	case COUT:
		return p.parseCout()
	case RETURN:
		return p.parseReturn()
	case BREAK:
		tok := p.advance()
		if _, err := p.expect(SEMICOLON); err != nil {
			return nil, err
		}
		return &Break{Pos: Pos(tok.Line)}, nil
	}

	stmt, err := p.parseSimple()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return stmt, nil
}

// parseDeclaration parses TYPE var ("," var)* ";". Inside a for header the
// last clause may also end at ')' which is left unconsumed.
func (p *Parser) parseDeclaration(inHeader bool) (*Declaration, error) {
	typeTok := p.advance()
	decl := &Declaration{Pos: Pos(typeTok.Line), Type: typeTok.Lexeme}
	if p.cur.Type != IDENTIFIER {
		return nil, p.errorf("Se esperaba un identificador después del tipo")
	}

	for {
		if p.cur.Type != IDENTIFIER {
			return nil, p.errorf("Se esperaba identificador en declaración")
		}
		nameTok := p.advance()
		v := DeclVar{Pos: Pos(nameTok.Line), Name: nameTok.Lexeme, Size: -1}

		if p.cur.Type == LBRACKET {
			p.advance()
			v.IsArray = true
			switch p.cur.Type {
			case RBRACKET:
			case NUMBER:
				n, err := strconv.Atoi(p.cur.Lexeme)
				if err != nil || n < 0 {
					return nil, p.errorf("El tamaño del arreglo debe ser un número constante o vacío []")
				}
				v.Size = n
				p.advance()
			default:
				return nil, p.errorf("El tamaño del arreglo debe ser un número constante o vacío []")
			}
			if _, err := p.expect(RBRACKET); err != nil {
				return nil, err
			}
		}

		if p.cur.Type == ASSIGN {
			p.advance()
			if p.cur.Type == LBRACE {
				list, err := p.parseInitList()
				if err != nil {
					return nil, err
				}
				v.Init = list
				v.IsArray = true
				if v.Size < 0 {
					v.Size = len(list.Elems)
				}
			} else {
				init, err := p.parseRelational()
				if err != nil {
					return nil, err
				}
				v.Init = init
			}
		}
		decl.Vars = append(decl.Vars, v)

		switch {
		case p.cur.Type == SEMICOLON:
			p.advance()
			return decl, nil
		case inHeader && p.cur.Type == RPAREN:
			return decl, nil
		case p.cur.Type == COMMA:
			p.advance()
		default:
			expected := "';' o ','"
			if inHeader {
				expected += " o ')'"
			}
			return nil, p.errorf("Se esperaba %s en declaración, se encontró %s", expected, p.cur.Type)
		}
	}
}

func (p *Parser) parseInitList() (*InitList, error) {
	open := p.advance()
	list := &InitList{Pos: Pos(open.Line)}
	for p.cur.Type != RBRACE {
		elem, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		list.Elems = append(list.Elems, elem)
		if p.cur.Type == COMMA {
			p.advance()
		} else if p.cur.Type != RBRACE {
			return nil, p.errorf("Se esperaba ',' o '}' en lista de inicialización, se encontró %s", p.cur.Type)
		}
	}
	p.advance()
	return list, nil
}

func (p *Parser) parseIf() (Node, error) {
	ifTok := p.advance()
	if _, err := p.require(LPAREN, "Se esperaba '(' después de 'if'"); err != nil {
		return nil, err
	}
	cond, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	if _, err := p.require(RPAREN, "Se esperaba ')' en la condición del if"); err != nil {
		return nil, err
	}
	if p.cur.Type != LBRACE {
		return nil, p.errorf("Se esperaba '{' después de la condición del if")
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &If{Pos: Pos(ifTok.Line), Cond: cond, Body: body}, nil
}

func (p *Parser) parseWhile() (Node, error) {
	whileTok := p.advance()
	if _, err := p.require(LPAREN, "Se esperaba '(' después de 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	if _, err := p.require(RPAREN, "Se esperaba ')' después de la condición del while"); err != nil {
		return nil, err
	}
	if p.cur.Type != LBRACE {
		return nil, p.errorf("Se esperaba '{' después de while(...)")
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &While{Pos: Pos(whileTok.Line), Cond: cond, Body: body}, nil
}

// parseSwitch builds the case chain. A case label is a bare "case :"; case
// values are not part of the grammar.
func (p *Parser) parseSwitch() (Node, error) {
	switchTok := p.advance()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}
	if p.cur.Type != IDENTIFIER {
		return nil, p.errorf("Se esperaba una variable en el switch")
	}
	subjTok := p.advance()
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return nil, err
	}

	sw := &Switch{
		Pos:     Pos(switchTok.Line),
		Subject: &Identifier{Pos: Pos(subjTok.Line), Name: subjTok.Lexeme},
	}
	var last *Case
	for p.cur.Type == CASE {
		caseTok := p.advance()
		c := &Case{Pos: Pos(caseTok.Line)}
		if _, err := p.expect(COLON); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		c.Body = body
		if p.cur.Type == BREAK {
			p.advance()
			if _, err := p.expect(SEMICOLON); err != nil {
				return nil, err
			}
			c.HasBreak = true
		}

		if last == nil {
			sw.First = c
		} else {
			last.Next = c
		}
		last = c
	}
	if _, err := p.expect(RBRACE); err != nil {
		return nil, err
	}
	return sw, nil
}

func (p *Parser) parseCout() (Node, error) {
	coutTok := p.advance()
	if p.cur.Type != SHL_OP {
		return nil, p.errorf("Se esperaba '<<' después de 'cout'")
	}
	c := &Cout{Pos: Pos(coutTok.Line)}
	for p.cur.Type == SHL_OP {
		p.advance()
		item, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		c.Items = append(c.Items, item)
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseReturn() (Node, error) {
	retTok := p.advance()
	val, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return nil, err
	}
	return &Return{Pos: Pos(retTok.Line), Value: val}, nil
}

func (p *Parser) parseFor() (Node, error) {
	forTok := p.advance()
	h, err := p.parseForHeader()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return buildFor(forTok.Line, h, body), nil
}

// tryHeaderFor attempts "(header) for { ... }". When the header does not
// parse or is not followed by "for" the parser is rewound and ok is false.
// Once "for" has been seen the rule is committed and body errors surface.
func (p *Parser) tryHeaderFor() (stmt Node, ok bool, err error) {
	st := p.save()
	line := p.cur.Line
	h, herr := p.parseForHeader()
	if herr != nil || p.cur.Type != FOR {
		p.restore(st)
		return nil, false, nil
	}
	p.advance()
	body, err := p.parseBlock()
	if err != nil {
		return nil, true, err
	}
	return buildFor(line, h, body), true, nil
}

// parseForHeader parses "(" clause ";" relational ";" clause ")" and returns
// the three clauses in textual order.
func (p *Parser) parseForHeader() ([3]Node, error) {
	var h [3]Node
	if _, err := p.expect(LPAREN); err != nil {
		return h, err
	}

	if p.cur.isTypeName() {
		decl, err := p.parseDeclaration(false)
		if err != nil {
			return h, err
		}
		h[0] = decl
	} else {
		n, err := p.parseSimple()
		if err != nil {
			return h, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return h, err
		}
		h[0] = n
	}

	cond, err := p.parseRelational()
	if err != nil {
		return h, err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return h, err
	}
	h[1] = cond

	if p.cur.isTypeName() {
		decl, err := p.parseDeclaration(true)
		if err != nil {
			return h, err
		}
		h[2] = decl
	} else {
		n, err := p.parseSimple()
		if err != nil {
			return h, err
		}
		h[2] = n
	}

	if _, err := p.expect(RPAREN); err != nil {
		return h, err
	}
	return h, nil
}

// buildFor assigns header clauses to init/cond/update. A declaration in the
// first clause keeps textual order; a declaration in the last clause swaps
// first and last; with no declaration textual order is kept.
func buildFor(line int, h [3]Node, body *Block) *For {
	f := &For{Pos: Pos(line), Body: body}
	_, firstDecl := h[0].(*Declaration)
	_, lastDecl := h[2].(*Declaration)
	switch {
	case firstDecl:
		f.Init, f.Cond, f.Update = h[0], h[1], h[2]
	case lastDecl:
		f.Update, f.Cond, f.Init = h[0], h[1], h[2]
	default:
		f.Init, f.Cond, f.Update = h[0], h[1], h[2]
	}
	return f
}

// parseSimple parses an assignment, an increment or a bare expression. An
// identifier-led statement reads its primary first and only then decides
// whether it is an assignment target or the start of an expression.
func (p *Parser) parseSimple() (Node, error) {
	if p.cur.Type != IDENTIFIER || p.cur.is("sizeof") {
		return p.parseRelational()
	}

	target, err := p.parseLvalue()
	if err != nil {
		return nil, err
	}
	if p.cur.Type == ASSIGN {
		p.advance()
		val, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		return &Assign{Pos: Pos(target.Line()), Target: target, Value: val}, nil
	}

	left := target
	if p.cur.Type == PLUS_PLUS {
		inc := p.advance()
		left = &Increment{Pos: Pos(inc.Line), Target: target}
	}
	left, err = p.continueTerm(left)
	if err != nil {
		return nil, err
	}
	left, err = p.continueArith(left)
	if err != nil {
		return nil, err
	}
	return p.continueRelational(left)
}

// parseLvalue parses IDENTIFIER ("[" relational "]")?.
func (p *Parser) parseLvalue() (Node, error) {
	nameTok, err := p.expect(IDENTIFIER)
	if err != nil {
		return nil, err
	}
	id := &Identifier{Pos: Pos(nameTok.Line), Name: nameTok.Lexeme}
	if p.cur.Type != LBRACKET {
		return id, nil
	}
	p.advance()
	idx, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return nil, err
	}
	return &ArrayAccess{Pos: id.Pos, Array: id, Index: idx}, nil
}

func (p *Parser) parseRelational() (Node, error) {
	left, err := p.parseArith()
	if err != nil {
		return nil, err
	}
	return p.continueRelational(left)
}

func isRelational(tt TokenType) bool {
	switch tt {
	case LESS, GREATER, LESS_EQ, GREATER_EQ, EQUALS, NOT_EQ:
		return true
	}
	return false
}

func (p *Parser) continueRelational(left Node) (Node, error) {
	for isRelational(p.cur.Type) {
		op := p.advance()
		right, err := p.parseArith()
		if err != nil {
			return nil, err
		}
		left = &RelOp{Pos: Pos(op.Line), Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseArith() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	return p.continueArith(left)
}

func (p *Parser) continueArith(left Node) (Node, error) {
	for p.cur.Type == PLUS || p.cur.Type == MINUS {
		op := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: Pos(op.Line), Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return p.continueTerm(left)
}

func (p *Parser) continueTerm(left Node) (Node, error) {
	for p.cur.Type == STAR || p.cur.Type == SLASH || p.cur.Type == PERCENT {
		op := p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: Pos(op.Line), Op: op.Type, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseFactor() (Node, error) {
	if p.cur.Type == MINUS {
		op := p.advance()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &Negate{Pos: Pos(op.Line), Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.cur
	switch {
	case tok.is("sizeof"):
		p.advance()
		if _, err := p.require(LPAREN, "Se esperaba '(' después de sizeof"); err != nil {
			return nil, err
		}
		operand, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &SizeOf{Pos: Pos(tok.Line), Operand: operand}, nil

	case tok.Type == NUMBER, tok.Type == STRING:
		p.advance()
		return &Literal{Pos: Pos(tok.Line), Kind: tok.Type, Text: tok.Lexeme}, nil

	case tok.Type == IDENTIFIER:
		node, err := p.parseLvalue()
		if err != nil {
			return nil, err
		}
		if p.cur.Type == PLUS_PLUS {
			inc := p.advance()
			return &Increment{Pos: Pos(inc.Line), Target: node}, nil
		}
		return node, nil

	case tok.Type == LPAREN:
		p.advance()
		inner, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		if _, err := p.require(RPAREN, "Paréntesis desbalanceados: falta ')'"); err != nil {
			return nil, err
		}
		return inner, nil
	}
	return nil, p.errorf("Token inesperado: %s ('%s')", tok.Type, tok.Lexeme)
}
