package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/arcanaland/wretched/internal/faults"
)

// Describe renders an error returned by a command for the terminal.
// Validation faults list every finding.
func Describe(err error) string {
	var (
		invalid *faults.ValidationFault
		parse   *faults.ConfigParseFault
		compile *faults.CompileFault
	)
	switch {
	case errors.As(err, &invalid):
		var b strings.Builder
		fmt.Fprintf(&b, "%s validation failed with %d error(s):", failMark("✗"), len(invalid.Findings))
		for i, f := range invalid.Findings {
			fmt.Fprintf(&b, "\n%d. %s", i+1, f)
		}
		return b.String()
	case errors.As(err, &parse):
		return fmt.Sprintf("%s could not read %s", failMark("✗"), parse)
	case errors.As(err, &compile):
		return fmt.Sprintf("%s %v\nThis is a bug in wretched, not in your game. Please report it.", failMark("✗"), compile)
	}
	return fmt.Sprintf("%s %v", failMark("✗"), err)
}
