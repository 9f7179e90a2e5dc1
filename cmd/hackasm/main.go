// Command hackasm assembles Hack assembly (.asm) into 16-bit binary
// machine code (.hack), per the two-pass algorithm of spec.md §4.7.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teris-io/cli"
	"go.uber.org/zap"

	"github.com/nandforge/n2t/hack"
)

var description = strings.ReplaceAll(`
hackasm assembles a single Hack assembly (.asm) file into its 16-bit
binary (.hack) form, one instruction per output line.
`, "\n", " ")

var app = cli.New(description).
	WithArg(cli.NewArg("path", "An .asm file to assemble")).
	WithAction(run)

func run(args []string, options map[string]string) int {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: hackasm <path>")
		return 1
	}
	path := args[0]
	if filepath.Ext(path) != ".asm" {
		sugar.Errorw("not an .asm file", "path", path)
		return 1
	}

	in, err := os.Open(path)
	if err != nil {
		sugar.Errorw("open input file", "path", path, "error", err)
		return 1
	}
	defer in.Close()

	outPath := strings.TrimSuffix(path, ".asm") + ".hack"
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		sugar.Errorw("open output file", "path", outPath, "error", err)
		return 1
	}
	defer out.Close()

	if err := hack.Assemble(in, out); err != nil {
		sugar.Errorw("assembly failed", "file", path, "error", err)
		return 2
	}
	sugar.Infow("assembled", "file", path, "output", outPath)
	return 0
}

func main() {
	os.Exit(app.Run(os.Args, os.Stdout))
}
