package module

import (
	"errors"
	"fmt"

	"github.com/aretw0/espalier/pkg/domain"
)

// DefinitionError points at the declaration that failed to compile.
type DefinitionError struct {
	Section string // "sorts", "ops", "equations", ...
	Index   int    // position within the section
	Name    string // label or name, when the declaration has one
	Err     error
}

func (e *DefinitionError) Error() string {
	where := fmt.Sprintf("%s[%d]", e.Section, e.Index)
	if e.Name != "" {
		where = fmt.Sprintf("%s %q", where, e.Name)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// AggregateError collects every error found while compiling a module.
type AggregateError struct {
	Module string
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("module %s: %s", e.Module, e.Errors[0].Error())
	}
	msg := fmt.Sprintf("module %s: %d errors:\n", e.Module, len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the collected errors, plus domain.ErrInvalidModule, to errors.Is.
func (e *AggregateError) Unwrap() []error {
	return append([]error{domain.ErrInvalidModule}, e.Errors...)
}

// DefinitionErrors returns the collected errors if err is an AggregateError.
// Otherwise returns nil.
func DefinitionErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
