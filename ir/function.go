package ir

import (
	"fmt"
	"io"

	"github.com/dexter3k/hbcdecomp/hbc"
)

// Function is the decoded body of one bytecode function. Offsets[i] is the
// byte offset of Body[i] from the start of the function's bytecode.
type Function struct {
	Index  uint32
	Header *hbc.FunctionHeader
	Info   hbc.FunctionInfo
	Body   []Statement
	// Offsets has one entry per statement in Body.
	Offsets []uint32
}

// Fprint writes one line per statement, prefixed with its offset. Branch
// and switch targets are rendered as absolute offsets.
func (f *Function) Fprint(w io.Writer) error {
	return f.fprint(w, stringRefs{})
}

// FprintStrings is Fprint with string table references printed as quoted
// literals looked up in strs. Indices strs cannot resolve stay as sN.
func (f *Function) FprintStrings(w io.Writer, strs StringTable) error {
	return f.fprint(w, stringRefs{table: strs})
}

func (f *Function) fprint(w io.Writer, refs stringRefs) error {
	for i, stmt := range f.Body {
		at := f.Offsets[i]
		line := formatWith(stmt, refs)
		switch s := stmt.(type) {
		case BranchStmt:
			line = fmt.Sprintf("goto %06x", s.Target(at))
			if cond := s.Condition(); cond != "" {
				line = fmt.Sprintf("if (%s) %s", cond, line)
			}
		case GeneratorStmt:
			if s.Kind == GeneratorSave {
				line = fmt.Sprintf("save_generator %06x", at+uint32(s.Offset))
			}
		}
		if _, err := fmt.Fprintf(w, "%06x: %s\n", at, line); err != nil {
			return err
		}
	}
	return nil
}
