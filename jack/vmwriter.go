package jack

import (
	"fmt"
	"io"
)

// VMSegment is one of the eight VM segments a push/pop can target.
type VMSegment string

// The VM segments (spec.md §3).
const (
	InvalidSegment  VMSegment = ""
	ConstSegment    VMSegment = "constant"
	ArgumentSegment VMSegment = "argument"
	LocalSegment    VMSegment = "local"
	StaticSegment   VMSegment = "static"
	ThisSegment     VMSegment = "this"
	ThatSegment     VMSegment = "that"
	PointerSegment  VMSegment = "pointer"
	TempSegment     VMSegment = "temp"
)

// VMOp is a VM arithmetic/logical opcode.
type VMOp string

// The nine VM arithmetic/logical ops (spec.md §3).
const (
	InvalidOp VMOp = ""
	OpAdd     VMOp = "add"
	OpSub     VMOp = "sub"
	OpNeg     VMOp = "neg"
	OpEq      VMOp = "eq"
	OpGt      VMOp = "gt"
	OpLt      VMOp = "lt"
	OpAnd     VMOp = "and"
	OpOr      VMOp = "or"
	OpNot     VMOp = "not"
)

// VMWriter is a thin typed sink that appends one VM text line per
// operation, plus a monotonic label generator (spec.md §4.3). The label
// counter is owned by the writer and is reset per compilation unit (i.e.
// per VMWriter instance).
type VMWriter struct {
	w        io.Writer
	err      error
	labelSeq int
}

// NewVMWriter wraps w for emitting VM text.
func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{w: w}
}

// Err returns the first write error encountered, if any.
func (w *VMWriter) Err() error {
	return w.err
}

func (w *VMWriter) writeLine(line string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, line+"\n")
}

// WritePush emits "push <seg> <idx>".
func (w *VMWriter) WritePush(seg VMSegment, idx MachineWord) {
	w.writeLine(fmt.Sprintf("push %s %d", seg, idx))
}

// WritePop emits "pop <seg> <idx>". Per spec.md §3, "pop constant" is
// invalid; callers never construct it, so this is not re-validated here.
func (w *VMWriter) WritePop(seg VMSegment, idx MachineWord) {
	w.writeLine(fmt.Sprintf("pop %s %d", seg, idx))
}

// WriteArithmetic emits the bare op name for one of the nine arithmetic
// ops. Multiplication and division are not VM ops; the engine lowers them
// to Math.multiply/Math.divide calls itself (spec.md §4.4 "Expressions").
func (w *VMWriter) WriteArithmetic(op VMOp) {
	w.writeLine(string(op))
}

// WriteLabel emits "label <l>".
func (w *VMWriter) WriteLabel(l string) {
	w.writeLine("label " + l)
}

// WriteGoto emits "goto <l>".
func (w *VMWriter) WriteGoto(l string) {
	w.writeLine("goto " + l)
}

// WriteIf emits "if-goto <l>".
func (w *VMWriter) WriteIf(l string) {
	w.writeLine("if-goto " + l)
}

// WriteFunction emits "function <name> <nLocals>".
func (w *VMWriter) WriteFunction(name string, nLocals MachineWord) {
	w.writeLine(fmt.Sprintf("function %s %d", name, nLocals))
}

// WriteCall emits "call <name> <nArgs>".
func (w *VMWriter) WriteCall(name string, nArgs MachineWord) {
	w.writeLine(fmt.Sprintf("call %s %d", name, nArgs))
}

// WriteReturn emits "return".
func (w *VMWriter) WriteReturn() {
	w.writeLine("return")
}

// NextLabelID returns the next value of the writer's monotonic label
// counter. The counter is owned by the writer and reset per compilation
// unit (i.e. per VMWriter instance).
func (w *VMWriter) NextLabelID() int {
	id := w.labelSeq
	w.labelSeq++
	return id
}
