package hack

// predefined holds the Hack architecture's built-in symbols (spec.md
// §4.7): the five pointer registers, R0-R15 general-purpose aliases, and
// the two memory-mapped I/O locations.
var predefined = map[string]int{
	"SP": 0, "LCL": 1, "ARG": 2, "THIS": 3, "THAT": 4,
	"R0": 0, "R1": 1, "R2": 2, "R3": 3, "R4": 4, "R5": 5,
	"R6": 6, "R7": 7, "R8": 8, "R9": 9, "R10": 10, "R11": 11,
	"R12": 12, "R13": 13, "R14": 14, "R15": 15,
	"SCREEN": 16384, "KBD": 24576,
}

// firstVariableAddress is where user-defined variable symbols start
// being allocated, below SCREEN and above the last named register.
const firstVariableAddress = 16

// SymbolTable resolves label and variable symbols to RAM/ROM addresses.
// Labels are bound by the assembler's first pass; variables are
// allocated lazily by the second pass, in order of first reference.
type SymbolTable struct {
	addrs   map[string]int
	nextVar int
}

// NewSymbolTable returns a table seeded with the predefined symbols.
func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{addrs: make(map[string]int, len(predefined)), nextVar: firstVariableAddress}
	for name, addr := range predefined {
		t.addrs[name] = addr
	}
	return t
}

// DefineLabel binds name to addr, used by the first pass to record
// `(LABEL)` pseudo-instructions at the ROM address of the next real
// instruction.
func (t *SymbolTable) DefineLabel(name string, addr int) {
	t.addrs[name] = addr
}

// Resolve returns the address bound to name, allocating a fresh variable
// address starting at 16 if name has not been seen before.
func (t *SymbolTable) Resolve(name string) int {
	if addr, ok := t.addrs[name]; ok {
		return addr
	}
	addr := t.nextVar
	t.addrs[name] = addr
	t.nextVar++
	return addr
}

// Contains reports whether name is already bound, without allocating a
// variable address for it.
func (t *SymbolTable) Contains(name string) bool {
	_, ok := t.addrs[name]
	return ok
}
