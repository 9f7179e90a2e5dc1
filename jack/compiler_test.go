package jack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func compileSource(t *testing.T, src string) []string {
	t.Helper()
	var out strings.Builder
	err := Compile(strings.NewReader(src), &out)
	require.NoError(t, err)
	text := strings.TrimRight(out.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// containsSubsequence reports whether want appears, in order, as a
// (not necessarily contiguous) subsequence of got.
func containsSubsequence(got, want []string) bool {
	i := 0
	for _, line := range got {
		if i < len(want) && line == want[i] {
			i++
		}
	}
	return i == len(want)
}

func TestCompile_Seven(t *testing.T) {
	src := `class Main {
		function void main() {
			do Output.printInt(1 + (2 * 3));
			return;
		}
	}`
	lines := compileSource(t, src)
	require.Equal(t, "function Main.main 0", lines[0])
	require.True(t, containsSubsequence(lines, []string{
		"push constant 1",
		"push constant 2",
		"push constant 3",
		"call Math.multiply 2",
		"add",
		"call Output.printInt 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}), "got: %v", lines)
}

func TestCompile_PointerConstructor(t *testing.T) {
	src := `class C {
		field int x;
		constructor C new() {
			return this;
		}
	}`
	lines := compileSource(t, src)
	require.Equal(t, []string{
		"function C.new 0",
		"push constant 1",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push pointer 0",
		"return",
	}, lines)
}

func TestCompile_MethodCallOnSelf(t *testing.T) {
	src := `class C {
		method void go() {
			do draw();
			return;
		}
		method void draw() {
			return;
		}
	}`
	lines := compileSource(t, src)
	require.True(t, containsSubsequence(lines, []string{
		"push pointer 0",
		"call C.draw 1",
		"pop temp 0",
	}), "got: %v", lines)
}

func TestCompile_WhileLoop(t *testing.T) {
	src := `class C {
		method void run() {
			var int x;
			while (x > 0) {
				let x = x - 1;
			}
			return;
		}
	}`
	lines := compileSource(t, src)
	var loopIdx, notIdx, ifGotoIdx, gotoIdx, endIdx int = -1, -1, -1, -1, -1
	for i, l := range lines {
		switch {
		case strings.HasPrefix(l, "label WHILE_LOOP_"):
			loopIdx = i
		case l == "not":
			notIdx = i
		case strings.HasPrefix(l, "if-goto WHILE_END_"):
			ifGotoIdx = i
		case strings.HasPrefix(l, "goto WHILE_LOOP_"):
			gotoIdx = i
		case strings.HasPrefix(l, "label WHILE_END_"):
			endIdx = i
		}
	}
	require.NotEqual(t, -1, loopIdx)
	require.Less(t, loopIdx, notIdx)
	require.Less(t, notIdx, ifGotoIdx)
	require.Less(t, ifGotoIdx, gotoIdx)
	require.Less(t, gotoIdx, endIdx)

	loopLabel := strings.TrimPrefix(lines[loopIdx], "label ")
	endLabel := strings.TrimPrefix(lines[endIdx], "label ")
	require.Equal(t, strings.TrimPrefix(lines[ifGotoIdx], "if-goto "), endLabel)
	require.Equal(t, strings.TrimPrefix(lines[gotoIdx], "goto "), loopLabel)

	loopID := strings.TrimPrefix(loopLabel, "WHILE_LOOP_")
	endID := strings.TrimPrefix(endLabel, "WHILE_END_")
	require.Equal(t, loopID, endID, "loop and end labels must share the same id")
}

func TestCompile_ArrayAssignmentStaging(t *testing.T) {
	src := `class C {
		method void run() {
			var Array a;
			var int i, j;
			let a[i] = a[j];
			return;
		}
	}`
	lines := compileSource(t, src)
	require.True(t, containsSubsequence(lines, []string{
		"pop temp 0",
		"pop pointer 1",
		"push temp 0",
		"pop that 0",
	}), "got: %v", lines)
}

func TestCompile_EmptyStringConstant(t *testing.T) {
	src := `class C {
		function void run() {
			do Output.printString("");
			return;
		}
	}`
	lines := compileSource(t, src)
	require.True(t, containsSubsequence(lines, []string{
		"push constant 0",
		"call String.new 1",
		"call Output.printString 1",
	}), "got: %v", lines)
	for _, l := range lines {
		require.NotEqual(t, "call String.appendChar 2", l)
	}
}

func TestCompile_EmptyClassBody(t *testing.T) {
	lines := compileSource(t, "class Empty {\n}")
	require.Empty(t, lines)
}

func TestCompile_UndefinedIdentifierIsFatal(t *testing.T) {
	src := `class C {
		function void run() {
			let x = 1;
			return;
		}
	}`
	var out strings.Builder
	err := Compile(strings.NewReader(src), &out)
	require.Error(t, err)
	var semErr *SemanticError
	require.ErrorAs(t, err, &semErr)
}

func TestCompile_TrailingGarbageIsFatal(t *testing.T) {
	src := `class C { } class D { }`
	var out strings.Builder
	err := Compile(strings.NewReader(src), &out)
	require.Error(t, err)
}

func TestCompile_LeftToRightNoPrecedence(t *testing.T) {
	src := `class C {
		function void run() {
			do Output.printInt(2 + 3 * 4);
			return;
		}
	}`
	lines := compileSource(t, src)
	// left-to-right means "2 + 3" happens before "* 4", not "3 * 4" first
	require.True(t, containsSubsequence(lines, []string{
		"push constant 2",
		"push constant 3",
		"add",
		"push constant 4",
		"call Math.multiply 2",
	}), "got: %v", lines)
}
