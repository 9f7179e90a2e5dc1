// Command jackc compiles Jack source files to VM code. It accepts a
// single path: a .jack file compiles to a sibling .vm file; a directory
// compiles every .jack file it directly contains (spec.md §6).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teris-io/cli"
	"go.uber.org/zap"

	"github.com/nandforge/n2t/jack"
)

var description = strings.ReplaceAll(`
jackc compiles Jack class files into VM bytecode, one .vm file per input
.jack file. Given a directory it compiles every .jack file found directly
inside it.
`, "\n", " ")

var app = cli.New(description).
	WithArg(cli.NewArg("path", "A .jack file or a directory of .jack files")).
	WithAction(run)

func run(args []string, options map[string]string) int {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: jackc <path>")
		return 1
	}

	files, err := collectJackFiles(args[0])
	if err != nil {
		sugar.Errorw("collecting input files", "path", args[0], "error", err)
		return 1
	}
	if len(files) == 0 {
		sugar.Warnw("no .jack files found", "path", args[0])
		return 1
	}

	for _, file := range files {
		if err := compileFile(file); err != nil {
			sugar.Errorw("compilation failed", "file", file, "error", err)
			return 2
		}
		sugar.Infow("compiled", "file", file)
	}
	return 0
}

func collectJackFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(path) != ".jack" {
			return nil, fmt.Errorf("%s is not a .jack file", path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

func compileFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".vm"
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	return jack.Compile(in, out)
}

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
