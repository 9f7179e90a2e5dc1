package jack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTable_IndependentCounters(t *testing.T) {
	s := NewSymbolTable()
	s.Define("a", "int", Static)
	s.Define("b", "int", Field)
	s.Define("c", "int", Field)

	assert.EqualValues(t, 1, s.VarCount(Static))
	assert.EqualValues(t, 2, s.VarCount(Field))
	assert.EqualValues(t, 0, s.VarCount(Arg))
	assert.EqualValues(t, 0, s.VarCount(Local))
}

func TestSymbolTable_SubroutineShadowsClass(t *testing.T) {
	s := NewSymbolTable()
	s.Define("x", "int", Field)
	s.Define("x", "Array", Local)

	assert.Equal(t, Local, s.KindOf("x"))
	assert.Equal(t, "Array", s.TypeOf("x"))
}

func TestSymbolTable_StartSubroutineClearsOnlySubroutineScope(t *testing.T) {
	s := NewSymbolTable()
	s.Define("field1", "int", Field)
	s.Define("arg1", "int", Arg)
	s.Define("local1", "int", Local)

	s.StartSubroutine()

	assert.True(t, s.IsDefined("field1"))
	assert.False(t, s.IsDefined("arg1"))
	assert.False(t, s.IsDefined("local1"))
	assert.EqualValues(t, 0, s.VarCount(Arg))
	assert.EqualValues(t, 0, s.VarCount(Local))
	assert.EqualValues(t, 1, s.VarCount(Field))
}

func TestSymbolTable_UndefinedLookups(t *testing.T) {
	s := NewSymbolTable()
	assert.False(t, s.IsDefined("missing"))
	assert.Equal(t, StorageClass(""), s.KindOf("missing"))
	assert.Equal(t, "", s.TypeOf("missing"))
	assert.EqualValues(t, -1, s.IndexOf("missing"))
}

func TestSymbolTable_SlotsAssignedInDeclarationOrder(t *testing.T) {
	s := NewSymbolTable()
	s.Define("a", "int", Local)
	s.Define("b", "int", Local)
	s.Define("c", "int", Local)

	assert.EqualValues(t, 0, s.IndexOf("a"))
	assert.EqualValues(t, 1, s.IndexOf("b"))
	assert.EqualValues(t, 2, s.IndexOf("c"))
}

func TestStorageClass_SegmentMapping(t *testing.T) {
	assert.Equal(t, StaticSegment, Static.segment())
	assert.Equal(t, ThisSegment, Field.segment())
	assert.Equal(t, ArgumentSegment, Arg.segment())
	assert.Equal(t, LocalSegment, Local.segment())
}
