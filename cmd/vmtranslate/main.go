// Command vmtranslate lowers VM bytecode to Hack assembly. A file input
// (.vm) compiles to a sibling .asm with no bootstrap; a directory input
// compiles every .vm file it contains, sorted, concatenated into
// <dir>/<dir>.asm, prefixed with bootstrap code (spec.md §6).
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teris-io/cli"
	"go.uber.org/zap"

	"github.com/nandforge/n2t/vm"
)

var description = strings.ReplaceAll(`
vmtranslate lowers VM bytecode into Hack assembly. Given a single .vm file
it produces a sibling .asm file with no bootstrap code. Given a directory
it concatenates every .vm file inside (sorted by name) into a single
<dir>.asm file prefixed with bootstrap code that initializes the stack and
calls Sys.init.
`, "\n", " ")

var app = cli.New(description).
	WithArg(cli.NewArg("path", "A .vm file or a directory of .vm files")).
	WithOption(cli.NewOption("comments", "Annotate generated assembly with the source VM command").
		WithType(cli.TypeBool)).
	WithAction(run)

func run(args []string, options map[string]string) int {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: vmtranslate <path>")
		return 1
	}

	var opts []vm.Option
	if _, enabled := options["comments"]; enabled {
		opts = append(opts, vm.WithSourceComments())
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		sugar.Errorw("stat input path", "path", path, "error", err)
		return 1
	}

	if info.IsDir() {
		outPath := filepath.Join(path, filepath.Base(path)+".asm")
		out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			sugar.Errorw("open output file", "path", outPath, "error", err)
			return 1
		}
		defer out.Close()
		bw := bufio.NewWriter(out)

		if err := vm.TranslateDir(path, bw, opts...); err != nil {
			sugar.Errorw("translation failed", "dir", path, "error", err)
			return 2
		}
		if err := bw.Flush(); err != nil {
			sugar.Errorw("flush output file", "path", outPath, "error", err)
			return 2
		}
		sugar.Infow("translated directory", "dir", path, "output", outPath)
		return 0
	}

	if filepath.Ext(path) != ".vm" {
		sugar.Errorw("not a .vm file", "path", path)
		return 1
	}

	in, err := os.Open(path)
	if err != nil {
		sugar.Errorw("open input file", "path", path, "error", err)
		return 1
	}
	defer in.Close()

	outPath := strings.TrimSuffix(path, ".vm") + ".asm"
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		sugar.Errorw("open output file", "path", outPath, "error", err)
		return 1
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	baseName := strings.TrimSuffix(filepath.Base(path), ".vm")
	if err := vm.TranslateFile(in, bw, baseName, opts...); err != nil {
		sugar.Errorw("translation failed", "file", path, "error", err)
		return 2
	}
	if err := bw.Flush(); err != nil {
		sugar.Errorw("flush output file", "path", outPath, "error", err)
		return 2
	}
	sugar.Infow("translated file", "file", path, "output", outPath)
	return 0
}

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
