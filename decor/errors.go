package decor

import (
	"errors"

	"github.com/bronystylecrazy/decorice/inject"
)

var (
	ErrMissingContract     = errors.New("decor: contract type is required")
	ErrEmptyChain          = errors.New("decor: decorator chain is empty")
	ErrChainAlreadySet     = errors.New("decor: decorator chain already set")
	ErrDuplicateDecorator  = errors.New("decor: decorator appears more than once in chain")
	ErrMissingTerminal     = errors.New("decor: chain has no terminal binding")
	ErrConflictingTerminal = errors.New("decor: chain has more than one terminal binding")
	ErrInvalidQualifier    = errors.New("decor: invalid qualifier")
	ErrNilChain            = errors.New("decor: nil chain")

	// Shared with inject so errors.Is matches either layer.
	ErrInvalidConstructor  = inject.ErrInvalidConstructor
	ErrNotAssignable       = inject.ErrNotAssignable
	ErrQualifierAlreadySet = inject.ErrQualifierAlreadySet
	ErrScopeAlreadySet     = inject.ErrScopeAlreadySet
	ErrNilScope            = inject.ErrNilScope
)
