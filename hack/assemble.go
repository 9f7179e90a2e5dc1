package hack

import (
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/nandforge/n2t/internal/recoverr"
)

// Assemble translates a full Hack assembly source to 16-bit binary text,
// one instruction per line, via the two-pass algorithm of spec.md §4.7:
// pass one binds every label to the ROM address of the instruction that
// follows it, pass two resolves A-instruction operands (allocating
// variable addresses on first reference) and encodes every real
// instruction.
func Assemble(r io.Reader, w io.Writer) error {
	return recoverr.Run(func() error {
		insts, err := ParseAll(r)
		if err != nil {
			return errors.Wrap(err, "parsing assembly source")
		}
		table := NewSymbolTable()
		if errs := bindLabels(insts, table); len(errs) > 0 {
			return errs
		}
		return emit(insts, table, w)
	})
}

// bindLabels is the assembler's first pass: it ignores LInst as far as
// ROM addressing goes (a label defines no instruction of its own) and
// binds each label's name to the address of the next real instruction.
// A label that collides with a name already bound — a predefined symbol
// or an earlier `(LABEL)` in this same source — is a syntax error rather
// than a silent overwrite.
func bindLabels(insts []Instruction, table *SymbolTable) MultiError {
	var errs MultiError
	addr := 0
	for _, inst := range insts {
		if inst.Kind == LInst {
			if table.Contains(inst.Name) {
				errs = append(errs, &SyntaxError{Line: inst.Source, Reason: "label " + strconv.Quote(inst.Name) + " already defined"})
				continue
			}
			table.DefineLabel(inst.Name, addr)
			continue
		}
		addr++
	}
	return errs
}

// emit is the assembler's second pass: resolve each A-instruction's
// operand and encode every real instruction, in order. Label
// pseudo-instructions emit nothing.
func emit(insts []Instruction, table *SymbolTable, w io.Writer) error {
	var errs MultiError
	for _, inst := range insts {
		switch inst.Kind {
		case LInst:
			continue
		case AInst:
			addr, err := resolveLocation(inst, table)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			word, err := encodeA(addr)
			if err != nil {
				errs = append(errs, &SyntaxError{Line: inst.Source, Reason: err.Error()})
				continue
			}
			if _, err := io.WriteString(w, word+"\n"); err != nil {
				return errors.Wrap(err, "writing assembled output")
			}
		case CInst:
			word, err := encodeC(inst)
			if err != nil {
				errs = append(errs, &SyntaxError{Line: inst.Source, Reason: err.Error()})
				continue
			}
			if _, err := io.WriteString(w, word+"\n"); err != nil {
				return errors.Wrap(err, "writing assembled output")
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func resolveLocation(inst Instruction, table *SymbolTable) (int, error) {
	switch inst.LocType {
	case Raw:
		n, err := strconv.Atoi(inst.LocName)
		if err != nil {
			return 0, &SyntaxError{Line: inst.Source, Reason: "invalid address literal " + strconv.Quote(inst.LocName)}
		}
		return n, nil
	case BuiltIn, Symbolic:
		return table.Resolve(inst.LocName), nil
	}
	return 0, &SyntaxError{Line: inst.Source, Reason: "unresolvable location"}
}
