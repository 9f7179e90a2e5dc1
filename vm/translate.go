package vm

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nandforge/n2t/internal/recoverr"
)

// Option configures a translation run.
type Option func(*options)

type options struct {
	sourceComments bool
}

// WithSourceComments annotates each emitted instruction block with a
// leading `// <original vm line>` comment, mirroring the VM command it
// was lowered from. Off by default: the assembler and CPU emulator never
// need it, and the teacher's emitters stay quiet unless asked.
func WithSourceComments() Option {
	return func(o *options) { o.sourceComments = true }
}

// TranslateFile lowers a single .vm file to Hack assembly, with no
// bootstrap code (spec.md §4.6, single-file mode).
func TranslateFile(r io.Reader, w io.Writer, baseName string, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return recoverr.Run(func() error {
		return translateOne(r, w, baseName, &o)
	})
}

func translateOne(r io.Reader, w io.Writer, baseName string, o *options) error {
	p := NewParser(r)
	g := NewCodeGen(w)
	g.SetFile(baseName)
	for {
		cmd, ok, err := p.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if o.sourceComments {
			g.emit(fmt.Sprintf("// %s", formatCommand(cmd)))
		}
		if err := g.Translate(cmd); err != nil {
			return err
		}
	}
	return g.Err()
}

// TranslateDir lowers every .vm file in dir, in sorted filename order, to
// a single assembly stream prefixed with bootstrap code that initializes
// SP to 256 and calls Sys.init (spec.md §4.6 supplemental: directory
// mode). The bootstrap is emitted as ordinary instructions, not a special
// case: `call Sys.init 0` reuses the same CodeGen.call lowering as any
// other call site.
func TranslateDir(dir string, w io.Writer, opts ...Option) error {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return recoverr.Run(func() error {
		return translateDir(dir, w, &o)
	})
}

func translateDir(dir string, w io.Writer, o *options) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".vm") {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)
	if len(files) == 0 {
		return fmt.Errorf("no .vm files in %s", dir)
	}

	g := NewCodeGen(w)
	emitBootstrap(g)

	for _, name := range files {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(name, ".vm")
		g.SetFile(base)
		if err := translateFileWithGen(f, g, o); err != nil {
			f.Close()
			return err
		}
		f.Close()
	}
	return g.Err()
}

func translateFileWithGen(r io.Reader, g *CodeGen, o *options) error {
	p := NewParser(r)
	for {
		cmd, ok, err := p.Next()
		if err != nil {
			return err
		}
		if !ok {
			return g.Err()
		}
		if o.sourceComments {
			g.emit(fmt.Sprintf("// %s", formatCommand(cmd)))
		}
		if err := g.Translate(cmd); err != nil {
			return err
		}
	}
}

// emitBootstrap writes `SP=256` followed by a literal `call Sys.init 0`,
// lowered through the ordinary call path so the bootstrap frame obeys the
// exact same calling convention as any user call (spec.md supplemental
// feature: bootstrap as literal instructions).
func emitBootstrap(g *CodeGen) {
	g.emit(g.at("256"), "D=A", g.at("SP"), "M=D")
	g.call("Sys.init", 0)
}

func formatCommand(cmd Command) string {
	switch cmd.Kind {
	case CmdArithmetic:
		return string(cmd.Op)
	case CmdPush:
		return fmt.Sprintf("push %s %d", cmd.Segment, cmd.Index)
	case CmdPop:
		return fmt.Sprintf("pop %s %d", cmd.Segment, cmd.Index)
	case CmdLabel:
		return fmt.Sprintf("label %s", cmd.Name)
	case CmdGoto:
		return fmt.Sprintf("goto %s", cmd.Name)
	case CmdIfGoto:
		return fmt.Sprintf("if-goto %s", cmd.Name)
	case CmdFunction:
		return fmt.Sprintf("function %s %d", cmd.Name, cmd.N)
	case CmdCall:
		return fmt.Sprintf("call %s %d", cmd.Name, cmd.N)
	case CmdReturn:
		return "return"
	}
	return ""
}
