package vm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAll_BasicCommands(t *testing.T) {
	src := `
// a comment
push constant 7
pop local 2
add
label LOOP
goto LOOP
if-goto LOOP
function Foo.bar 2
call Foo.bar 2
return
`
	cmds, err := ParseAll(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cmds, 9)

	assert.Equal(t, Command{Kind: CmdPush, Segment: Constant, Index: 7, Source: 3}, cmds[0])
	assert.Equal(t, Command{Kind: CmdPop, Segment: Local, Index: 2, Source: 4}, cmds[1])
	assert.Equal(t, Command{Kind: CmdArithmetic, Op: Add, Source: 5}, cmds[2])
	assert.Equal(t, Command{Kind: CmdLabel, Name: "LOOP", Source: 6}, cmds[3])
	assert.Equal(t, Command{Kind: CmdGoto, Name: "LOOP", Source: 7}, cmds[4])
	assert.Equal(t, Command{Kind: CmdIfGoto, Name: "LOOP", Source: 8}, cmds[5])
	assert.Equal(t, Command{Kind: CmdFunction, Name: "Foo.bar", N: 2, Source: 9}, cmds[6])
	assert.Equal(t, Command{Kind: CmdCall, Name: "Foo.bar", N: 2, Source: 10}, cmds[7])
	assert.Equal(t, Command{Kind: CmdReturn, Source: 11}, cmds[8])
}

func TestParseAll_InlineComment(t *testing.T) {
	cmds, err := ParseAll(strings.NewReader("push constant 1 // pushes 1\n"))
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, Constant, cmds[0].Segment)
}

func TestParseAll_PopConstantIsInvalid(t *testing.T) {
	_, err := ParseAll(strings.NewReader("pop constant 0"))
	require.Error(t, err)
}

func TestParseAll_PointerIndexMustBeZeroOrOne(t *testing.T) {
	_, err := ParseAll(strings.NewReader("push pointer 2"))
	require.Error(t, err)

	cmds, err := ParseAll(strings.NewReader("push pointer 1"))
	require.NoError(t, err)
	assert.Equal(t, 1, cmds[0].Index)
}

func TestParseAll_TempIndexRange(t *testing.T) {
	_, err := ParseAll(strings.NewReader("push temp 8"))
	require.Error(t, err)

	_, err = ParseAll(strings.NewReader("push temp 7"))
	require.NoError(t, err)
}

func TestParseAll_UnknownCommand(t *testing.T) {
	_, err := ParseAll(strings.NewReader("frobnicate 1 2"))
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseAll_WrongFieldCount(t *testing.T) {
	_, err := ParseAll(strings.NewReader("push constant"))
	require.Error(t, err)
}

func TestParseAll_NegativeIndexRejected(t *testing.T) {
	_, err := ParseAll(strings.NewReader("push constant -1"))
	require.Error(t, err)
}
