package vm

import (
	"fmt"
	"io"
)

// segBaseReg gives the Hack pointer register holding a dynamic segment's
// base address (spec.md §4.6). constant/static/temp/pointer are not in
// this table: they resolve to direct or computed absolute addresses
// instead of `*(base+i)`.
var segBaseReg = map[Segment]string{
	Local: "LCL", Argument: "ARG", This: "THIS", That: "THAT",
}

const tempBase = 5

// CodeGen is a stateful translator from VM Commands to Hack assembly
// text. It carries the current source filename (for static name-mangling),
// a monotonic comparison-label counter, the currently-compiling function
// name (for mangling Jack-level labels), and a per-call-site return-label
// counter (spec.md §4.6). A CodeGen's counters persist across files of one
// program in directory mode, so labels stay globally unique (spec.md §5).
type CodeGen struct {
	w        io.Writer
	err      error
	file     string
	function string
	labelSeq int
	callSeq  int
}

// NewCodeGen returns a CodeGen writing Hack assembly to w.
func NewCodeGen(w io.Writer) *CodeGen {
	return &CodeGen{w: w}
}

// Err returns the first write error encountered, if any.
func (g *CodeGen) Err() error {
	return g.err
}

// SetFile sets the current VM source filename, used to mangle `static`
// references (spec.md §4.6: "static i of file F is the named address
// F.i... distinct files therefore share no static slots").
func (g *CodeGen) SetFile(name string) {
	g.file = name
}

func (g *CodeGen) emit(lines ...string) {
	if g.err != nil {
		return
	}
	for _, l := range lines {
		if _, err := io.WriteString(g.w, l+"\n"); err != nil {
			g.err = err
			return
		}
	}
}

func (g *CodeGen) at(loc string) string   { return "@" + loc }
func (g *CodeGen) label(name string) string { return "(" + name + ")" }

// Translate lowers a single Command to Hack assembly.
func (g *CodeGen) Translate(cmd Command) error {
	switch cmd.Kind {
	case CmdArithmetic:
		g.arithmetic(cmd.Op)
	case CmdPush:
		g.push(cmd.Segment, cmd.Index)
	case CmdPop:
		g.pop(cmd.Segment, cmd.Index)
	case CmdLabel:
		g.emit(g.label(g.mangle(cmd.Name)))
	case CmdGoto:
		g.emit(g.at(g.mangle(cmd.Name)), "0;JMP")
	case CmdIfGoto:
		g.popToD()
		g.emit(g.at(g.mangle(cmd.Name)), "D;JNE")
	case CmdFunction:
		g.function = cmd.Name
		g.emit(g.label(cmd.Name))
		for i := 0; i < cmd.N; i++ {
			g.pushD0()
		}
	case CmdCall:
		g.call(cmd.Name, cmd.N)
	case CmdReturn:
		g.ret()
	}
	return g.err
}

// mangle qualifies a Jack-level label with its containing function, per
// spec.md §4.6 ("Jack-level labels are mangled <function>$<label>").
func (g *CodeGen) mangle(label string) string {
	return g.function + "$" + label
}

func (g *CodeGen) arithmetic(op ArithOp) {
	switch op {
	case Add:
		g.binaryInPlace("M=D+M")
	case Sub:
		g.binaryInPlace("M=M-D")
	case And:
		g.binaryInPlace("M=D&M")
	case Or:
		g.binaryInPlace("M=D|M")
	case Neg:
		g.unaryInPlace("M=-M")
	case Not:
		g.unaryInPlace("M=!M")
	case Eq:
		g.comparison("JEQ")
	case Gt:
		g.comparison("JGT")
	case Lt:
		g.comparison("JLT")
	}
}

// binaryInPlace pops top-of-stack to D, then computes comp in place at
// the new top of stack, the slot just below the decremented SP.
func (g *CodeGen) binaryInPlace(comp string) {
	g.popToD()
	g.emit("A=A-1", comp)
}

// unaryInPlace operates in place at M[SP-1] without touching SP.
func (g *CodeGen) unaryInPlace(comp string) {
	g.emit(g.at("SP"), "A=M-1", comp)
}

// comparison lowers eq/gt/lt: compute M-D, branch on jump to a fresh TRUE
// label (storing -1), else store 0, unified by a fresh END label (spec.md
// §4.6, example scenario 5).
func (g *CodeGen) comparison(jump string) {
	trueLabel := fmt.Sprintf("TRUE_%d", g.labelSeq)
	endLabel := fmt.Sprintf("END_%d", g.labelSeq)
	g.labelSeq++

	g.popToD()
	g.emit(g.at("SP"), "AM=M-1", "D=M-D",
		g.at(trueLabel), "D;"+jump,
		g.at("SP"), "A=M", "M=0",
		g.at(endLabel), "0;JMP",
		g.label(trueLabel),
		g.at("SP"), "A=M", "M=-1",
		g.label(endLabel),
		g.at("SP"), "M=M+1",
	)
}

func (g *CodeGen) push(seg Segment, idx int) {
	switch seg {
	case Constant:
		g.emit(g.at(itoa(idx)), "D=A")
		g.pushD()
	case Temp:
		g.emit(g.at(itoa(tempBase+idx)), "D=M")
		g.pushD()
	case Pointer:
		g.emit(g.at(pointerReg(idx)), "D=M")
		g.pushD()
	case Static:
		g.emit(g.at(g.staticName(idx)), "D=M")
		g.pushD()
	default:
		base := segBaseReg[seg]
		g.emit(g.at(itoa(idx)), "D=A", g.at(base), "A=D+M", "D=M")
		g.pushD()
	}
}

func (g *CodeGen) pop(seg Segment, idx int) {
	switch seg {
	case Temp:
		g.popToD()
		g.emit(g.at(itoa(tempBase+idx)), "M=D")
	case Pointer:
		g.popToD()
		g.emit(g.at(pointerReg(idx)), "M=D")
	case Static:
		g.popToD()
		g.emit(g.at(g.staticName(idx)), "M=D")
	default:
		base := segBaseReg[seg]
		g.emit(g.at(itoa(idx)), "D=A", g.at(base), "D=D+M", g.at("R13"), "M=D")
		g.popToD()
		g.emit(g.at("R13"), "A=M", "M=D")
	}
}

func pointerReg(idx int) string {
	if idx == 0 {
		return "THIS"
	}
	return "THAT"
}

func (g *CodeGen) staticName(idx int) string {
	return fmt.Sprintf("%s.%d", g.file, idx)
}

// call implements spec.md §4.6's six-step calling convention.
func (g *CodeGen) call(name string, nArgs int) {
	retLabel := fmt.Sprintf("%s$ret.%d", name, g.callSeq)
	g.callSeq++

	g.emit(g.at(retLabel), "D=A")
	g.pushD()
	for _, reg := range []string{"LCL", "ARG", "THIS", "THAT"} {
		g.emit(g.at(reg), "D=M")
		g.pushD()
	}
	g.emit(
		g.at("SP"), "D=M",
		g.at(itoa(5+nArgs)), "D=D-A",
		g.at("ARG"), "M=D",
		g.at("SP"), "D=M",
		g.at("LCL"), "M=D",
		g.at(name), "0;JMP",
		g.label(retLabel),
	)
}

// ret implements spec.md §4.6's return sequence: endFrame in R11, saved
// return address in R12, reposition the return value, collapse the
// callee's frame, then restore THAT/THIS/ARG/LCL before jumping back.
func (g *CodeGen) ret() {
	g.emit(
		g.at("LCL"), "D=M", g.at("R11"), "M=D",
		g.at("5"), "A=D-A", "D=M", g.at("R12"), "M=D",
	)
	g.popToD()
	g.emit(g.at("ARG"), "A=M", "M=D")
	g.emit(g.at("ARG"), "D=M+1", g.at("SP"), "M=D")

	for i, reg := range []string{"THAT", "THIS", "ARG", "LCL"} {
		g.emit(g.at("R11"), "D=M", g.at(itoa(i+1)), "A=D-A", "D=M", g.at(reg), "M=D")
	}

	g.emit(g.at("R12"), "A=M", "0;JMP")
}

func (g *CodeGen) pushD() {
	g.emit(g.at("SP"), "A=M", "M=D", g.at("SP"), "M=M+1")
}

// pushD0 is push 0 onto the stack, used to zero-initialize locals.
func (g *CodeGen) pushD0() {
	g.emit(g.at("SP"), "A=M", "M=0", g.at("SP"), "M=M+1")
}

func (g *CodeGen) popToD() {
	g.emit(g.at("SP"), "AM=M-1", "D=M")
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
