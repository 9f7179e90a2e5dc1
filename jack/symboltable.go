package jack

// SymbolTable resolves names to (type, storage class, slot) across two
// disjoint scopes: a class scope (Static/Field, lifetime = one
// compilation unit) and a subroutine scope (Arg/Local, lifetime = one
// subroutine). Lookup tries subroutine scope first (spec.md §3/§4.2).
type SymbolTable struct {
	class      map[string]symbolEntry
	subroutine map[string]symbolEntry

	staticCount, fieldCount MachineWord
	argCount, localCount    MachineWord
}

// NewSymbolTable returns an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		class:      make(map[string]symbolEntry),
		subroutine: make(map[string]symbolEntry),
	}
}

// StartSubroutine clears the subroutine scope and resets the arg/local
// counters. Class scope (and its counters) is untouched.
func (s *SymbolTable) StartSubroutine() {
	s.subroutine = make(map[string]symbolEntry)
	s.argCount = 0
	s.localCount = 0
}

// Define assigns the next free slot for kind and records name in the scope
// implied by kind (Static/Field -> class scope, Arg/Local -> subroutine
// scope). Redefining a name already present in that scope is undefined
// behavior: this simply overwrites the scope entry, matching the
// teacher's unchecked registerSymbol.
func (s *SymbolTable) Define(name, typeName string, kind StorageClass) symbolEntry {
	entry := symbolEntry{typeName: typeName, kind: kind}
	switch kind {
	case Static:
		entry.slot = s.staticCount
		s.staticCount++
		s.class[name] = entry
	case Field:
		entry.slot = s.fieldCount
		s.fieldCount++
		s.class[name] = entry
	case Arg:
		entry.slot = s.argCount
		s.argCount++
		s.subroutine[name] = entry
	case Local:
		entry.slot = s.localCount
		s.localCount++
		s.subroutine[name] = entry
	}
	return entry
}

// VarCount returns the number of entries of kind in its owning scope.
func (s *SymbolTable) VarCount(kind StorageClass) MachineWord {
	switch kind {
	case Static:
		return s.staticCount
	case Field:
		return s.fieldCount
	case Arg:
		return s.argCount
	case Local:
		return s.localCount
	}
	return 0
}

// lookup resolves name with subroutine-first precedence.
func (s *SymbolTable) lookup(name string) (symbolEntry, bool) {
	if e, ok := s.subroutine[name]; ok {
		return e, true
	}
	if e, ok := s.class[name]; ok {
		return e, true
	}
	return symbolEntry{}, false
}

// IsDefined reports whether name resolves in either scope.
func (s *SymbolTable) IsDefined(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

// KindOf returns the storage class of name, or "" ("not found" sentinel)
// if it is undefined.
func (s *SymbolTable) KindOf(name string) StorageClass {
	e, ok := s.lookup(name)
	if !ok {
		return ""
	}
	return e.kind
}

// TypeOf returns the declared type name of name, or "" if undefined.
func (s *SymbolTable) TypeOf(name string) string {
	e, ok := s.lookup(name)
	if !ok {
		return ""
	}
	return e.typeName
}

// IndexOf returns the slot of name, or -1 if undefined.
func (s *SymbolTable) IndexOf(name string) MachineWord {
	e, ok := s.lookup(name)
	if !ok {
		return -1
	}
	return e.slot
}
