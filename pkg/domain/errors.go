package domain

import "errors"

// ErrSortMismatch is returned when a term construction violates the declared argument kinds of a symbol.
var ErrSortMismatch = errors.New("sort mismatch")

// ErrArity is returned when a symbol is applied to the wrong number of arguments.
var ErrArity = errors.New("arity mismatch")

// ErrUnknownSymbol is returned when a term references an operator that is not declared.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ErrUnknownSort is returned when a sort name is not declared in the signature.
var ErrUnknownSort = errors.New("unknown sort")

// ErrUnknownRuleLabel is returned when a rewrite references a rule label absent from the module.
var ErrUnknownRuleLabel = errors.New("unknown rule label")

// ErrUnboundStrategyLabel is returned when a strategy references a rule label or strategy name
// that the module does not define.
var ErrUnboundStrategyLabel = errors.New("unbound strategy label")

// ErrParse is returned when a term or strategy text cannot be read.
var ErrParse = errors.New("parse error")

// ErrInvalidModule is returned when a module definition cannot be compiled.
var ErrInvalidModule = errors.New("invalid module")

// ErrModuleNotFound is returned when a loader cannot find the requested module.
var ErrModuleNotFound = errors.New("module not found")

// ErrStateNotFound is returned when a search state number is out of range.
var ErrStateNotFound = errors.New("state not found")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")
