package vm

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// fieldCounts gives the expected number of fields beyond the command
// keyword itself, keyed by first token (spec.md §4.5).
var fieldCounts = map[string]int{
	"push": 2, "pop": 2,
	"label": 1, "goto": 1, "if-goto": 1,
	"function": 2, "call": 2,
	"return": 0,
	"add": 0, "sub": 0, "neg": 0, "eq": 0, "gt": 0, "lt": 0,
	"and": 0, "or": 0, "not": 0,
}

// Parser reads a VM text stream line by line and produces Command
// records. It strips `//` comments and blank lines; each remaining line is
// tokenized on whitespace (spec.md §4.5).
type Parser struct {
	sc   *bufio.Scanner
	line int
}

// NewParser wraps r for parsing.
func NewParser(r io.Reader) *Parser {
	return &Parser{sc: bufio.NewScanner(r)}
}

// ParseAll reads every command from the stream, returning the first fatal
// parse error encountered (spec.md §7: no recovery).
func ParseAll(r io.Reader) ([]Command, error) {
	p := NewParser(r)
	var cmds []Command
	for {
		cmd, ok, err := p.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return cmds, nil
		}
		cmds = append(cmds, cmd)
	}
}

// Next returns the next command, or ok=false at end of stream.
func (p *Parser) Next() (Command, bool, error) {
	for p.sc.Scan() {
		p.line++
		line := stripComment(p.sc.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cmd, err := p.parseLine(line)
		if err != nil {
			return Command{}, false, err
		}
		cmd.Source = p.line
		return cmd, true, nil
	}
	return Command{}, false, p.sc.Err()
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

func (p *Parser) parseLine(line string) (Command, error) {
	fields := strings.Fields(line)
	op := fields[0]
	args := fields[1:]

	nExpected, known := fieldCounts[op]
	if !known {
		return Command{}, &ParseError{Line: p.line, Reason: "unknown command " + strconv.Quote(op)}
	}
	if len(args) != nExpected {
		return Command{}, &ParseError{Line: p.line, Reason: "command " + strconv.Quote(op) + " expects " + strconv.Itoa(nExpected) + " field(s)"}
	}

	if arithOp, ok := arithOps[op]; ok {
		return Command{Kind: CmdArithmetic, Op: arithOp}, nil
	}

	switch op {
	case "push", "pop":
		seg, err := parseSegment(p.line, args[0])
		if err != nil {
			return Command{}, err
		}
		idx, err := parseIndex(p.line, args[1])
		if err != nil {
			return Command{}, err
		}
		if err := validateSegmentIndex(p.line, op, seg, idx); err != nil {
			return Command{}, err
		}
		kind := CmdPush
		if op == "pop" {
			kind = CmdPop
		}
		return Command{Kind: kind, Segment: seg, Index: idx}, nil
	case "label":
		return Command{Kind: CmdLabel, Name: args[0]}, nil
	case "goto":
		return Command{Kind: CmdGoto, Name: args[0]}, nil
	case "if-goto":
		return Command{Kind: CmdIfGoto, Name: args[0]}, nil
	case "function":
		n, err := parseIndex(p.line, args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdFunction, Name: args[0], N: n}, nil
	case "call":
		n, err := parseIndex(p.line, args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CmdCall, Name: args[0], N: n}, nil
	case "return":
		return Command{Kind: CmdReturn}, nil
	}

	return Command{}, &ParseError{Line: p.line, Reason: "unknown command " + strconv.Quote(op)}
}

var segments = map[string]Segment{
	"constant": Constant, "local": Local, "argument": Argument,
	"static": Static, "this": This, "that": That,
	"pointer": Pointer, "temp": Temp,
}

func parseSegment(line int, s string) (Segment, error) {
	seg, ok := segments[s]
	if !ok {
		return "", &ParseError{Line: line, Reason: "unknown segment " + strconv.Quote(s)}
	}
	return seg, nil
}

func parseIndex(line int, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, &ParseError{Line: line, Reason: "invalid index " + strconv.Quote(s)}
	}
	return n, nil
}

// validateSegmentIndex enforces the segment/index invariants of spec.md
// §3: pop constant is invalid, pointer index is in {0,1}, temp index is in
// [0,7].
func validateSegmentIndex(line int, op string, seg Segment, idx int) error {
	if op == "pop" && seg == Constant {
		return &ParseError{Line: line, Reason: "pop constant is invalid"}
	}
	if seg == Pointer && idx != 0 && idx != 1 {
		return &ParseError{Line: line, Reason: "pointer index must be 0 or 1"}
	}
	if seg == Temp && (idx < 0 || idx > 7) {
		return &ParseError{Line: line, Reason: "temp index must be in [0,7]"}
	}
	return nil
}
