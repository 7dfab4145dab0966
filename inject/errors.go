package inject

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNilType                = errors.New("inject: binding type must not be nil")
	ErrInvalidConstructor     = errors.New("inject: invalid constructor")
	ErrNotAssignable          = errors.New("inject: value is not assignable to binding type")
	ErrQualifierNotComparable = errors.New("inject: qualifier must be comparable")
	ErrQualifierAlreadySet    = errors.New("inject: binding qualifier already set")
	ErrUnlinkedBinding        = errors.New("inject: binding has no target")
	ErrAlreadyLinked          = errors.New("inject: binding target already set")
	ErrSelfAlias              = errors.New("inject: binding aliases itself")
	ErrNilInstance            = errors.New("inject: instance must not be nil")
	ErrScopeAlreadySet        = errors.New("inject: binding scope already set")
	ErrUnknownScope           = errors.New("inject: scope is not registered")
	ErrNilScope               = errors.New("inject: scope must not be nil")
	ErrScopeAlreadyBound      = errors.New("inject: scope name already bound")
	ErrOutOfScope             = errors.New("inject: out of scope")
	ErrScopeInProgress        = errors.New("inject: a scoping block is already in progress")
	ErrNoScopeInProgress      = errors.New("inject: no scoping block in progress")
)

const errUnsupportedItem = "inject: unsupported item type %T"

// UnresolvedError is returned when a requested key has no binding.
type UnresolvedError struct {
	Key       Key
	Requester Key
}

func (e *UnresolvedError) Error() string {
	if e.Requester.Type == nil {
		return fmt.Sprintf("inject: no binding for %s", e.Key)
	}
	return fmt.Sprintf("inject: no binding for %s (required by %s)", e.Key, e.Requester)
}

// DuplicateBindingError is returned by New when two bindings share a key.
type DuplicateBindingError struct {
	Key Key
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("inject: duplicate binding for %s", e.Key)
}

// CircularDependencyError is returned when resolving a key requires itself.
type CircularDependencyError struct {
	Path []Key
}

func (e *CircularDependencyError) Error() string {
	parts := make([]string, len(e.Path))
	for i, k := range e.Path {
		parts[i] = k.String()
	}
	return "inject: circular dependency: " + strings.Join(parts, " -> ")
}
