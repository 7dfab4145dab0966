package inject

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Provider produces an instance. ctx carries the resolution path.
type Provider func(ctx context.Context) (any, error)

// Scope decides how instances from an unscoped provider are reused.
type Scope interface {
	Scope(key Key, unscoped Provider) Provider
}

// ScopeName refers to a scope registered with Binder.BindScope.
type ScopeName string

// SingletonScope is bound to Singleton in every injector.
const SingletonScope ScopeName = "singleton"

// Singleton keeps one instance per binding for the life of the injector.
var Singleton Scope = singletonScope{}

type singletonScope struct{}

func (singletonScope) Scope(_ Key, unscoped Provider) Provider {
	var (
		mu    sync.Mutex
		done  bool
		value any
	)
	return func(ctx context.Context) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		if done {
			return value, nil
		}
		v, err := unscoped(ctx)
		if err != nil {
			return nil, err
		}
		value, done = v, true
		return value, nil
	}
}

func (singletonScope) String() string { return "Singleton" }

// SimpleScope keeps one instance per key between Enter and Exit.
// Resolving a key bound in this scope outside a block fails with ErrOutOfScope.
type SimpleScope struct {
	mu     sync.Mutex
	block  string
	values map[Key]any
}

// NewSimpleScope returns a scope with no block in progress.
func NewSimpleScope() *SimpleScope {
	return &SimpleScope{}
}

// Enter starts a scoping block and returns its id.
func (s *SimpleScope) Enter() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values != nil {
		return "", fmt.Errorf("%w: %s", ErrScopeInProgress, s.block)
	}
	s.block = uuid.NewString()
	s.values = map[Key]any{}
	return s.block, nil
}

// Exit ends the current block and drops its instances.
func (s *SimpleScope) Exit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		return ErrNoScopeInProgress
	}
	s.values = nil
	s.block = ""
	return nil
}

func (s *SimpleScope) Scope(key Key, unscoped Provider) Provider {
	return func(ctx context.Context) (any, error) {
		s.mu.Lock()
		if s.values == nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: cannot access %s outside of a scoping block", ErrOutOfScope, key)
		}
		if v, ok := s.values[key]; ok {
			s.mu.Unlock()
			return v, nil
		}
		s.mu.Unlock()

		// Construct without the lock; dependencies may live in this scope too.
		v, err := unscoped(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.values == nil {
			return nil, fmt.Errorf("%w: block for %s ended during construction", ErrOutOfScope, key)
		}
		if existing, ok := s.values[key]; ok {
			return existing, nil
		}
		s.values[key] = v
		return v, nil
	}
}

func (s *SimpleScope) String() string { return "SimpleScope" }
