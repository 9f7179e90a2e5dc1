package vm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFile_NoBootstrap(t *testing.T) {
	var out strings.Builder
	err := TranslateFile(strings.NewReader("push constant 1\nreturn\n"), &out, "Main")
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "Sys.init")
}

func TestTranslateFile_WithSourceComments(t *testing.T) {
	var out strings.Builder
	err := TranslateFile(strings.NewReader("add\n"), &out, "Main", WithSourceComments())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "// add")
}

func TestTranslateDir_BootstrapAndSortedConcat(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Main.vm"), []byte("function Main.main 0\nreturn\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Sys.vm"), []byte("function Sys.init 0\ncall Main.main 0\nreturn\n"), 0644))

	var out strings.Builder
	err := TranslateDir(dir, &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	// scenario 6: @256 / D=A / @SP / M=D / call Sys.init 0 / ...
	require.Equal(t, "@256", lines[0])
	require.Equal(t, "D=A", lines[1])
	require.Equal(t, "@SP", lines[2])
	require.Equal(t, "M=D", lines[3])
	require.Contains(t, lines[4], "Sys.init")

	// "Main.vm" sorts before "Sys.vm", so Main.main's function label
	// should appear before Sys.init's body.
	mainIdx := indexOf(lines, "(Main.main)")
	sysIdx := indexOf(lines, "(Sys.init)")
	require.NotEqual(t, -1, mainIdx)
	require.NotEqual(t, -1, sysIdx)
	require.Less(t, mainIdx, sysIdx)
}

func indexOf(lines []string, target string) int {
	for i, l := range lines {
		if l == target {
			return i
		}
	}
	return -1
}
