package jack

import (
	"io"
	"strconv"

	"github.com/nandforge/n2t/internal/recoverr"
)

// subroutineKind is one of the three Jack subroutine flavors (spec.md
// §4.4).
type subroutineKind string

const (
	methodKind      subroutineKind = "method"
	functionKind    subroutineKind = "function"
	constructorKind subroutineKind = "constructor"
)

// Compiler is a single-pass recursive-descent compiler for one Jack class:
// it consumes a token stream and emits VM code as a side effect, never
// materializing an AST (spec.md §4.4). A Compiler instance is scoped to
// exactly one compilation unit; its symbol table and VM writer (with its
// label counter) are fresh per class, per spec.md §5.
type Compiler struct {
	tok        *Tokenizer
	symbols    *SymbolTable
	out        *VMWriter
	className  string
	currentTok Token
}

// NewCompiler builds a Compiler reading Jack source from r and emitting VM
// text to w.
func NewCompiler(r io.Reader, w io.Writer) *Compiler {
	return &Compiler{
		tok:     NewTokenizer(r),
		symbols: NewSymbolTable(),
		out:     NewVMWriter(w),
	}
}

// Compile parses exactly one Jack class and emits its VM translation. It
// returns the first fatal lexical, syntactic or semantic error (spec.md
// §7: "All compilation errors are fatal and immediate: no recovery").
func Compile(r io.Reader, w io.Writer) error {
	c := NewCompiler(r, w)
	if err := recoverr.Run(func() error {
		c.compileClass()
		return nil
	}); err != nil {
		return err
	}
	return c.out.Err()
}

func (c *Compiler) advance() Token {
	if !c.tok.Scan() {
		if err := c.tok.Err(); err != nil {
			panic(err)
		}
		panic(&SyntaxError{Expected: "more input", Got: c.currentTok})
	}
	c.currentTok = c.tok.Token()
	return c.currentTok
}

func (c *Compiler) peek() Token {
	return c.currentTok
}

// expect advances past the current token if it matches one of the given
// terminals, in order, panicking with a SyntaxError on the first mismatch.
// With no arguments it unconditionally advances.
func (c *Compiler) expect(terminals ...string) {
	if len(terminals) == 0 {
		c.advance()
		return
	}
	for _, term := range terminals {
		if !c.peek().IsTerminal(term) {
			panic(&SyntaxError{Expected: "\"" + term + "\"", Got: c.peek()})
		}
		c.advance()
	}
}

func (c *Compiler) expectIdentifier() string {
	tok := c.peek()
	if !tok.IsType(Identifier) {
		panic(&SyntaxError{Expected: "identifier", Got: tok})
	}
	c.advance()
	return tok.Terminal
}

func (c *Compiler) expectType() string {
	tok := c.peek()
	if tok.IsTerminal("int", "char", "boolean") {
		c.advance()
		return tok.Terminal
	}
	return c.expectIdentifier()
}

// compileClass: 'class' identifier '{' classVarDec* subroutineDec* '}'
func (c *Compiler) compileClass() {
	c.advance() // prime the lookahead with the first token
	c.expect("class")
	c.className = c.expectIdentifier()
	c.expect("{")

	for c.peek().IsTerminal("static", "field") {
		c.compileClassVarDec()
	}
	for c.peek().IsTerminal("constructor", "function", "method") {
		c.compileSubroutineDec()
	}

	// The closing brace is checked, not consumed via expect: expect's
	// advance() would treat running off the end of input as a syntax
	// error, but running off the end of input here is exactly the
	// success case. A further Scan() succeeding means trailing garbage
	// followed the class.
	if !c.peek().IsTerminal("}") {
		panic(&SyntaxError{Expected: "\"}\"", Got: c.peek()})
	}
	if c.tok.Scan() {
		panic(&SyntaxError{Expected: "end of input", Got: c.tok.Token()})
	}
	if err := c.tok.Err(); err != nil {
		panic(err)
	}
}

// compileClassVarDec: ('static'|'field') type name (',' name)* ';'
func (c *Compiler) compileClassVarDec() {
	var kind StorageClass
	switch {
	case c.peek().IsTerminal("static"):
		kind = Static
	case c.peek().IsTerminal("field"):
		kind = Field
	}
	c.advance()
	c.compileVarSequence(kind)
}

// compileVarSequence: type name (',' name)* ';', defining each name as
// kind. Returns the number of names declared.
func (c *Compiler) compileVarSequence(kind StorageClass) int {
	typeName := c.expectType()
	count := 0
	for {
		name := c.expectIdentifier()
		c.symbols.Define(name, typeName, kind)
		count++
		if c.peek().IsTerminal(",") {
			c.expect(",")
			continue
		}
		break
	}
	c.expect(";")
	return count
}

// compileSubroutineDec: ('constructor'|'function'|'method') (void|type)
// name '(' paramList ')' body
func (c *Compiler) compileSubroutineDec() {
	c.symbols.StartSubroutine()

	kind := subroutineKind(c.peek().Terminal)
	c.advance()

	if kind == methodKind {
		c.symbols.Define("this", c.className, Arg)
	}

	c.advance() // return type: void|type, not load-bearing for codegen
	name := c.expectIdentifier()

	c.expect("(")
	if !c.peek().IsTerminal(")") {
		c.compileParameterList()
	}
	c.expect(")")

	c.compileSubroutineBody(name, kind)
}

// compileParameterList: (type name (',' type name)*)?
func (c *Compiler) compileParameterList() {
	for {
		typeName := c.expectType()
		name := c.expectIdentifier()
		c.symbols.Define(name, typeName, Arg)
		if c.peek().IsTerminal(",") {
			c.expect(",")
			continue
		}
		break
	}
}

// compileSubroutineBody: '{' varDec* statements '}', emitting the function
// header (only once the local count is known) and the subroutine prologue.
func (c *Compiler) compileSubroutineBody(name string, kind subroutineKind) {
	c.expect("{")

	nLocals := 0
	for c.peek().IsTerminal("var") {
		c.expect("var")
		nLocals += c.compileVarSequence(Local)
	}

	c.out.WriteFunction(c.className+"."+name, MachineWord(nLocals))

	switch kind {
	case constructorKind:
		nFields := c.symbols.VarCount(Field)
		c.out.WritePush(ConstSegment, nFields)
		c.out.WriteCall("Memory.alloc", 1)
		c.out.WritePop(PointerSegment, 0)
	case methodKind:
		c.out.WritePush(ArgumentSegment, 0)
		c.out.WritePop(PointerSegment, 0)
	}

	c.compileStatements()
	c.expect("}")
}

// compileStatements compiles a statement list until '}' is seen.
func (c *Compiler) compileStatements() {
	for !c.peek().IsTerminal("}") {
		switch {
		case c.peek().IsTerminal("let"):
			c.compileLet()
		case c.peek().IsTerminal("if"):
			c.compileIf()
		case c.peek().IsTerminal("while"):
			c.compileWhile()
		case c.peek().IsTerminal("do"):
			c.compileDo()
		case c.peek().IsTerminal("return"):
			c.compileReturn()
		default:
			panic(&SyntaxError{Expected: "statement", Got: c.peek()})
		}
	}
}

// compileLet: 'let' name ('[' expr ']')? '=' expr ';'
func (c *Compiler) compileLet() {
	c.expect("let")
	name := c.expectIdentifier()

	isArray := c.peek().IsTerminal("[")
	if isArray {
		c.expect("[")
		c.compileArrayBaseAddress(name)
		c.expect("]")
	}

	c.expect("=")
	c.compileExpression()
	c.expect(";")

	if isArray {
		// RHS may itself read `that`, so the address must not overwrite
		// THIS/THAT until the RHS value is safely staged in temp 0
		// (spec.md §4.4, §9 "Array-assignment staging").
		c.out.WritePop(TempSegment, 0)
		c.out.WritePop(PointerSegment, 1)
		c.out.WritePush(TempSegment, 0)
		c.out.WritePop(ThatSegment, 0)
		return
	}

	seg, idx := c.resolveVariable(name)
	c.out.WritePop(seg, idx)
}

// compileArrayBaseAddress compiles `expr` (already past '[') and emits the
// address `name + expr` on top of the stack.
func (c *Compiler) compileArrayBaseAddress(name string) {
	c.compileExpression()
	seg, idx := c.resolveVariable(name)
	c.out.WritePush(seg, idx)
	c.out.WriteArithmetic(OpAdd)
}

// compileIf: 'if' '(' expr ')' '{' statements '}' ('else' '{' statements '}')?
func (c *Compiler) compileIf() {
	c.expect("if", "(")
	id := c.out.NextLabelID()
	elseLabel := labelName("IF_ELSE", id)
	endLabel := labelName("IF_END", id)

	c.compileExpression()
	c.out.WriteArithmetic(OpNot)
	c.out.WriteIf(elseLabel)

	c.expect(")", "{")
	c.compileStatements()
	c.expect("}")

	c.out.WriteGoto(endLabel)
	c.out.WriteLabel(elseLabel)

	if c.peek().IsTerminal("else") {
		c.expect("else", "{")
		c.compileStatements()
		c.expect("}")
	}

	c.out.WriteLabel(endLabel)
}

// compileWhile: 'while' '(' expr ')' '{' statements '}'
func (c *Compiler) compileWhile() {
	c.expect("while", "(")
	id := c.out.NextLabelID()
	loopLabel := labelName("WHILE_LOOP", id)
	endLabel := labelName("WHILE_END", id)

	c.out.WriteLabel(loopLabel)
	c.compileExpression()
	c.out.WriteArithmetic(OpNot)
	c.out.WriteIf(endLabel)

	c.expect(")", "{")
	c.compileStatements()
	c.expect("}")

	c.out.WriteGoto(loopLabel)
	c.out.WriteLabel(endLabel)
}

func labelName(base string, id int) string {
	return base + "_" + strconv.Itoa(id)
}

// compileDo: 'do' subroutineCall ';'
func (c *Compiler) compileDo() {
	c.expect("do")
	name := c.expectIdentifier()
	c.compileSubroutineCall(name)
	c.out.WritePop(TempSegment, 0)
	c.expect(";")
}

// compileReturn: 'return' expr? ';'
func (c *Compiler) compileReturn() {
	c.expect("return")
	if c.peek().IsTerminal(";") {
		c.out.WritePush(ConstSegment, 0)
	} else {
		c.compileExpression()
	}
	c.out.WriteReturn()
	c.expect(";")
}

// compileExpression: term (op term)*, left-associative with no precedence
// (spec.md §4.4, §9 "Open question -- operator precedence": do not
// introduce conventional precedence).
func (c *Compiler) compileExpression() {
	c.compileTerm()
	for isBinaryOp(c.peek()) {
		op := c.peek()
		c.advance()
		c.compileTerm()
		c.emitBinaryOp(op)
	}
}

// compileExpressionList: (expression (',' expression)*)?, returning the
// count of expressions compiled.
func (c *Compiler) compileExpressionList() MachineWord {
	if c.peek().IsTerminal(")") {
		return 0
	}
	n := MachineWord(1)
	c.compileExpression()
	for c.peek().IsTerminal(",") {
		c.expect(",")
		c.compileExpression()
		n++
	}
	return n
}

// compileTerm dispatches on lookahead per spec.md §4.4 "Terms".
func (c *Compiler) compileTerm() {
	tok := c.peek()
	switch {
	case tok.IsType(IntegerConstant):
		n, err := tok.AsInt()
		if err != nil {
			panic(err)
		}
		c.out.WritePush(ConstSegment, n)
		c.advance()
	case tok.IsType(StringConstant):
		c.compileStringConstant(tok.Terminal)
		c.advance()
	case tok.IsType(Keyword):
		c.compileKeywordConstant(tok)
		c.advance()
	case tok.IsTerminal("("):
		c.expect("(")
		c.compileExpression()
		c.expect(")")
	case tok.IsTerminal("-", "~"):
		c.advance()
		c.compileTerm()
		if tok.Terminal == "-" {
			c.out.WriteArithmetic(OpNeg)
		} else {
			c.out.WriteArithmetic(OpNot)
		}
	case tok.IsType(Identifier):
		c.compileIdentifierTerm()
	default:
		panic(&SyntaxError{Expected: "term", Got: tok})
	}
}

// compileStringConstant emits the character-by-character String.new /
// String.appendChar expansion (spec.md §4.4). "" emits just the allocation
// with no appendChar calls (spec.md §8 boundary behavior).
func (c *Compiler) compileStringConstant(s string) {
	c.out.WritePush(ConstSegment, MachineWord(len(s)))
	c.out.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		c.out.WritePush(ConstSegment, MachineWord(s[i]))
		c.out.WriteCall("String.appendChar", 2)
	}
}

func (c *Compiler) compileKeywordConstant(tok Token) {
	switch tok.Terminal {
	case "true":
		c.out.WritePush(ConstSegment, 0)
		c.out.WriteArithmetic(OpNot)
	case "false", "null":
		c.out.WritePush(ConstSegment, 0)
	case "this":
		c.out.WritePush(PointerSegment, 0)
	default:
		panic(&SyntaxError{Expected: "keyword constant", Got: tok})
	}
}

// compileIdentifierTerm handles the four identifier-led term forms: array
// read, subroutine call (bare or dotted), and plain variable read.
func (c *Compiler) compileIdentifierTerm() {
	name := c.expectIdentifier()
	switch {
	case c.peek().IsTerminal("["):
		c.expect("[")
		c.compileArrayBaseAddress(name)
		c.expect("]")
		c.out.WritePop(PointerSegment, 1)
		c.out.WritePush(ThatSegment, 0)
	case c.peek().IsTerminal("(", "."):
		c.compileSubroutineCall(name)
	default:
		seg, idx := c.resolveVariable(name)
		c.out.WritePush(seg, idx)
	}
}

// compileSubroutineCall lowers the three syntactic call forms of spec.md
// §4.4 "Subroutine call lowering".
func (c *Compiler) compileSubroutineCall(name string) {
	switch {
	case c.peek().IsTerminal("."):
		c.expect(".")
		methodName := c.expectIdentifier()

		var nArgs MachineWord
		var callee string
		if c.symbols.IsDefined(name) {
			seg, idx := c.resolveVariable(name)
			c.out.WritePush(seg, idx)
			nArgs++
			callee = c.symbols.TypeOf(name) + "." + methodName
		} else {
			callee = name + "." + methodName
		}

		c.expect("(")
		nArgs += c.compileExpressionList()
		c.expect(")")
		c.out.WriteCall(callee, nArgs)
	case c.peek().IsTerminal("("):
		c.out.WritePush(PointerSegment, 0)
		c.expect("(")
		nArgs := 1 + c.compileExpressionList()
		c.expect(")")
		c.out.WriteCall(c.className+"."+name, nArgs)
	default:
		panic(&SyntaxError{Expected: "\"(\" or \".\"", Got: c.peek()})
	}
}

// resolveVariable looks name up in the symbol table and returns the VM
// segment/index to access it. An undefined name is a fatal semantic error
// (spec.md §4.4, §7).
func (c *Compiler) resolveVariable(name string) (VMSegment, MachineWord) {
	kind := c.symbols.KindOf(name)
	if kind == "" {
		panic(&SemanticError{Reason: "undefined identifier " + strconv.Quote(name)})
	}
	return kind.segment(), c.symbols.IndexOf(name)
}

func isBinaryOp(t Token) bool {
	return t.IsTerminal("+", "-", "*", "/", "&", "|", "<", ">", "=")
}

func (c *Compiler) emitBinaryOp(t Token) {
	switch t.Terminal {
	case "+":
		c.out.WriteArithmetic(OpAdd)
	case "-":
		c.out.WriteArithmetic(OpSub)
	case "&":
		c.out.WriteArithmetic(OpAnd)
	case "|":
		c.out.WriteArithmetic(OpOr)
	case "<":
		c.out.WriteArithmetic(OpLt)
	case ">":
		c.out.WriteArithmetic(OpGt)
	case "=":
		c.out.WriteArithmetic(OpEq)
	case "*":
		c.out.WriteCall("Math.multiply", 2)
	case "/":
		c.out.WriteCall("Math.divide", 2)
	default:
		panic(&SyntaxError{Expected: "binary operator", Got: t})
	}
}

