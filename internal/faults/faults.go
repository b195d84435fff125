// Package faults defines the error kinds a build can end with. Parse and
// validation faults are user-facing and carry enough location detail to fix
// the input; compile faults are defects in the compiler itself.
package faults

import (
	"fmt"
	"strings"
)

// ConfigParseFault reports an input document that is missing or not well-formed
type ConfigParseFault struct {
	File   string
	Line   int // 0 when unknown
	Column int // 0 when unknown
	Err    error
}

func (f *ConfigParseFault) Error() string {
	loc := f.File
	if f.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, f.Line)
		if f.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, f.Column)
		}
	}
	return fmt.Sprintf("%s: %v", loc, f.Err)
}

func (f *ConfigParseFault) Unwrap() error { return f.Err }

// Finding is one schema or consistency problem, addressed by field path
type Finding struct {
	Path    string
	Message string
}

func (f Finding) String() string {
	if f.Path == "" {
		return f.Message
	}
	return f.Path + ": " + f.Message
}

// ValidationFault carries every finding of a failed validation run
type ValidationFault struct {
	Findings []Finding
	Warnings []Finding
}

func (f *ValidationFault) Error() string {
	lines := make([]string, 0, len(f.Findings)+1)
	lines = append(lines, fmt.Sprintf("validation failed with %d error(s):", len(f.Findings)))
	for _, finding := range f.Findings {
		lines = append(lines, "  - "+finding.String())
	}
	return strings.Join(lines, "\n")
}

// CompileFault reports a broken compiler invariant while generating output
// from validated input
type CompileFault struct {
	Stage string
	Err   error
}

func (f *CompileFault) Error() string {
	return fmt.Sprintf("internal compiler error in %s: %v", f.Stage, f.Err)
}

func (f *CompileFault) Unwrap() error { return f.Err }
