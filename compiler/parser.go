package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for PL/0
// ---------------------------------------------------------------------------

// Parser parses PL/0 source into an AST. The first error ends the parse.
type Parser struct {
	tokens   []Token
	idx      int
	curToken Token
	prevEnd  Position // end of the last consumed token
}

// NewParser creates a parser over the tokens of src.
func NewParser(file, src string) (*Parser, error) {
	tokens, err := Tokenize(file, src)
	if err != nil {
		return nil, err
	}
	p := &Parser{tokens: tokens}
	p.curToken = p.at(0)
	return p, nil
}

// Parse parses a complete PL/0 program.
func Parse(file, src string) (*Program, error) {
	p, err := NewParser(file, src)
	if err != nil {
		return nil, err
	}
	prog, err := p.ParseProgram()
	if err != nil {
		return nil, err
	}
	prog.File = file
	return prog, nil
}

func (p *Parser) at(i int) Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prevEnd = p.curToken.End()
	p.idx++
	p.curToken = p.at(p.idx)
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect consumes the current token if it matches, otherwise fails.
func (p *Parser) expect(t TokenType) (Token, error) {
	tok := p.curToken
	if tok.Type != t {
		return tok, p.errorf("expected %s, got %s", t, describe(tok))
	}
	p.nextToken()
	return tok, nil
}

// errorf builds a syntax error at the current token.
func (p *Parser) errorf(format string, args ...any) *Error {
	return &Error{Pos: p.curToken.Pos, Kind: ErrUnexpectedToken, Msg: fmt.Sprintf(format, args...)}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of file"
	case TokenIdent, TokenNumber:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func (p *Parser) span(start Position) Span {
	return Span{Start: start, End: p.prevEnd}
}

func (p *Parser) ident() (*Ident, error) {
	tok, err := p.expect(TokenIdent)
	if err != nil {
		return nil, err
	}
	return &Ident{SpanVal: Span{Start: tok.Pos, End: tok.End()}, Name: tok.Literal}, nil
}

// ---------------------------------------------------------------------------
// Program and blocks
// ---------------------------------------------------------------------------

// ParseProgram parses: block "." EOF.
func (p *Parser) ParseProgram() (*Program, error) {
	start := p.curToken.Pos
	prog := &Program{}
	if err := p.parseBlock(&prog.Block); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenPeriod); err != nil {
		return nil, err
	}
	prog.SpanVal = p.span(start)
	if !p.curTokenIs(TokenEOF) {
		return nil, p.errorf("unexpected %s after end of program", describe(p.curToken))
	}
	return prog, nil
}

func (p *Parser) parseBlock(b *Block) error {
	if p.curTokenIs(TokenConst) {
		if err := p.parseConstDecls(b); err != nil {
			return err
		}
	}
	if p.curTokenIs(TokenVar) {
		if err := p.parseVarDecls(b); err != nil {
			return err
		}
	}
	for p.curTokenIs(TokenProcedure) {
		proc, err := p.parseProcDecl()
		if err != nil {
			return err
		}
		b.Procs = append(b.Procs, proc)
	}
	body, err := p.parseStatement()
	if err != nil {
		return err
	}
	b.Body = body
	return nil
}

// const-decl ::= "const" ident "=" number {"," ident "=" number} ";"
func (p *Parser) parseConstDecls(b *Block) error {
	p.nextToken() // const
	for {
		name, err := p.ident()
		if err != nil {
			return err
		}
		if _, err := p.expect(TokenEq); err != nil {
			return err
		}
		num, err := p.expect(TokenNumber)
		if err != nil {
			return err
		}
		b.Consts = append(b.Consts, &ConstDecl{
			SpanVal: Span{Start: name.SpanVal.Start, End: num.End()},
			Name:    name,
			Value:   num.Value,
		})
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	_, err := p.expect(TokenSemicolon)
	return err
}

// var-decl ::= "var" ident {"," ident} ";"
func (p *Parser) parseVarDecls(b *Block) error {
	p.nextToken() // var
	for {
		name, err := p.ident()
		if err != nil {
			return err
		}
		b.Vars = append(b.Vars, &VarDecl{SpanVal: name.SpanVal, Name: name})
		if !p.curTokenIs(TokenComma) {
			break
		}
		p.nextToken()
	}
	_, err := p.expect(TokenSemicolon)
	return err
}

// proc-decl ::= "procedure" ident ";" block ";"
func (p *Parser) parseProcDecl() (*ProcDecl, error) {
	start := p.curToken.Pos
	p.nextToken() // procedure
	name, err := p.ident()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	proc := &ProcDecl{Name: name}
	if err := p.parseBlock(&proc.Block); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return nil, err
	}
	proc.SpanVal = p.span(start)
	return proc, nil
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func (p *Parser) parseStatement() (Stmt, error) {
	start := p.curToken.Pos
	switch p.curToken.Type {
	case TokenIdent:
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenBecomes); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{SpanVal: p.span(start), Name: name, Value: value}, nil

	case TokenCall:
		p.nextToken()
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		return &CallStmt{SpanVal: p.span(start), Name: name}, nil

	case TokenBegin:
		return p.parseBegin()

	case TokenIf:
		p.nextToken()
		cond, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenThen); err != nil {
			return nil, err
		}
		then, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenElse); err != nil {
			return nil, err
		}
		els, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &IfStmt{SpanVal: p.span(start), Cond: cond, Then: then, Else: els}, nil

	case TokenWhile:
		p.nextToken()
		cond, err := p.parseCond()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenDo); err != nil {
			return nil, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		return &WhileStmt{SpanVal: p.span(start), Cond: cond, Body: body}, nil

	case TokenRead:
		p.nextToken()
		name, err := p.ident()
		if err != nil {
			return nil, err
		}
		return &ReadStmt{SpanVal: p.span(start), Name: name}, nil

	case TokenWrite:
		p.nextToken()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &WriteStmt{SpanVal: p.span(start), Value: value}, nil

	case TokenSkip:
		p.nextToken()
		return &SkipStmt{SpanVal: p.span(start)}, nil
	}
	return nil, p.errorf("expected statement, got %s", describe(p.curToken))
}

func (p *Parser) parseBegin() (Stmt, error) {
	start := p.curToken.Pos
	p.nextToken() // begin
	var stmts []Stmt
	for {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if !p.curTokenIs(TokenSemicolon) {
			break
		}
		p.nextToken()
	}
	if _, err := p.expect(TokenEnd); err != nil {
		return nil, err
	}
	return &BeginStmt{SpanVal: p.span(start), Stmts: stmts}, nil
}

// ---------------------------------------------------------------------------
// Conditions and expressions
// ---------------------------------------------------------------------------

var relOps = map[TokenType]RelOp{
	TokenEq:  RelEq,
	TokenNeq: RelNeq,
	TokenLss: RelLss,
	TokenLeq: RelLeq,
	TokenGtr: RelGtr,
	TokenGeq: RelGeq,
}

// cond ::= "odd" expr | expr relop expr
func (p *Parser) parseCond() (Cond, error) {
	start := p.curToken.Pos
	if p.curTokenIs(TokenOdd) {
		p.nextToken()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &OddCond{SpanVal: p.span(start), X: x}, nil
	}

	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	op, ok := relOps[p.curToken.Type]
	if !ok {
		return nil, p.errorf("expected relational operator, got %s", describe(p.curToken))
	}
	p.nextToken()
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &BinCond{SpanVal: p.span(start), Left: left, Op: op, Right: right}, nil
}

// expr ::= term {("+"|"-") term}
func (p *Parser) parseExpr() (Expr, error) {
	start := p.curToken.Pos
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(TokenPlus) || p.curTokenIs(TokenMinus) {
		op := ArithAdd
		if p.curTokenIs(TokenMinus) {
			op = ArithSub
		}
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{SpanVal: p.span(start), Left: left, Op: op, Right: right}
	}
	return left, nil
}

// term ::= factor {("*"|"/") factor}
func (p *Parser) parseTerm() (Expr, error) {
	start := p.curToken.Pos
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.curTokenIs(TokenMult) || p.curTokenIs(TokenDiv) {
		op := ArithMul
		if p.curTokenIs(TokenDiv) {
			op = ArithDiv
		}
		p.nextToken()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinExpr{SpanVal: p.span(start), Left: left, Op: op, Right: right}
	}
	return left, nil
}

// factor ::= ident | number | "(" expr ")" | ("+"|"-") factor
func (p *Parser) parseFactor() (Expr, error) {
	start := p.curToken.Pos
	switch p.curToken.Type {
	case TokenIdent:
		return p.ident()

	case TokenNumber:
		tok := p.curToken
		p.nextToken()
		return &Number{SpanVal: Span{Start: tok.Pos, End: tok.End()}, Value: tok.Value}, nil

	case TokenLParen:
		p.nextToken()
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return x, nil

	case TokenPlus, TokenMinus:
		op := ArithAdd
		if p.curTokenIs(TokenMinus) {
			op = ArithSub
		}
		p.nextToken()
		x, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{SpanVal: p.span(start), Op: op, X: x}, nil
	}
	return nil, p.errorf("expected expression, got %s", describe(p.curToken))
}
