package decor

import (
	"fmt"
	"reflect"

	"github.com/bronystylecrazy/decorice/inject"
)

// Chain is a fully declared decorator chain.
type Chain interface {
	Request() (Request, error)
}

type state struct {
	req          Request
	qualifierSet bool
	chainSet     bool
	terminalSet  bool
	scopeSet     bool
	err          error
}

func (s *state) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

func (s *state) setQualifier(q any) {
	if s.qualifierSet {
		s.fail(ErrQualifierAlreadySet)
		return
	}
	s.qualifierSet = true
	if q == nil {
		s.fail(fmt.Errorf("%w: nil", ErrInvalidQualifier))
		return
	}
	s.req.Qualifier = q
}

func (s *state) setChain(decorators []any) {
	if s.chainSet {
		s.fail(ErrChainAlreadySet)
		return
	}
	s.chainSet = true
	chain := make([]Impl, 0, len(decorators))
	for i, d := range decorators {
		impl, err := ImplOf(d)
		if err != nil {
			s.fail(fmt.Errorf("decorator %d: %w", i, err))
			return
		}
		chain = append(chain, impl)
	}
	s.req.Chain = chain
}

func (s *state) setTerminal(t Terminal) {
	if s.terminalSet {
		s.fail(ErrConflictingTerminal)
		return
	}
	s.terminalSet = true
	s.req.Terminal = t
}

func (s *state) boundTo(constructor any) {
	impl, err := ImplOf(constructor)
	if err != nil {
		s.fail(fmt.Errorf("terminal: %w", err))
		return
	}
	s.setTerminal(Terminal{Fresh: &impl})
}

func (s *state) boundToExisting(key inject.Key) {
	s.setTerminal(Terminal{Existing: &key})
}

func (s *state) setScope(scope ScopeDescriptor) {
	if s.scopeSet {
		s.fail(ErrScopeAlreadySet)
		return
	}
	s.scopeSet = true
	s.req.Scope = scope
}

func (s *state) request() (Request, error) {
	if s.err != nil {
		return Request{}, fmt.Errorf("chain %s: %w", s.req.Key(), s.err)
	}
	req := s.req.clone()
	if err := req.Validate(); err != nil {
		return Request{}, fmt.Errorf("chain %s: %w", req.Key(), err)
	}
	return req, nil
}

// Declare starts a chain for contract T.
func Declare[T any]() *Builder {
	return DeclareType(inject.TypeOf[T]())
}

// DeclareType starts a chain for contract.
func DeclareType(contract reflect.Type) *Builder {
	s := &state{req: Request{Contract: contract}}
	if contract == nil {
		s.fail(ErrMissingContract)
	}
	return &Builder{Linked{s: s}}
}

// Builder may qualify the chain's entry point before selecting targets.
type Builder struct {
	Linked
}

// QualifiedBy binds the outermost decorator at (contract, q) instead of
// the bare contract.
func (b *Builder) QualifiedBy(q any) *Linked {
	b.s.setQualifier(q)
	return &b.Linked
}

// Linked selects the terminal and the decorators, in either order.
type Linked struct {
	s *state
}

// BoundTo makes a fresh instance from constructor the innermost layer.
func (l *Linked) BoundTo(constructor any) *Decoration {
	l.s.boundTo(constructor)
	return &Decoration{s: l.s}
}

// BoundToExisting makes the binding at key the innermost layer.
func (l *Linked) BoundToExisting(key inject.Key) *Decoration {
	l.s.boundToExisting(key)
	return &Decoration{s: l.s}
}

// DecoratedBy sets the decorators, outermost first. A terminal must follow.
func (l *Linked) DecoratedBy(first any, rest ...any) *Pending {
	l.s.setChain(append([]any{first}, rest...))
	return &Pending{s: l.s}
}

// To sets decorators and terminal in one call. The last item is the
// terminal: a constructor or an inject.Key to alias.
func (l *Linked) To(items ...any) *Scoped {
	if len(items) == 0 {
		l.s.fail(ErrMissingTerminal)
		return &Scoped{Declaration{s: l.s}}
	}
	last := len(items) - 1
	l.s.setChain(items[:last])
	if key, ok := items[last].(inject.Key); ok {
		l.s.boundToExisting(key)
	} else {
		l.s.boundTo(items[last])
	}
	return &Scoped{Declaration{s: l.s}}
}

// Decoration has a terminal and waits for its decorators.
type Decoration struct {
	s *state
}

// DecoratedBy sets the decorators, outermost first.
func (d *Decoration) DecoratedBy(first any, rest ...any) *Scoped {
	d.s.setChain(append([]any{first}, rest...))
	return &Scoped{Declaration{s: d.s}}
}

// Pending has decorators and waits for its terminal.
type Pending struct {
	s *state
}

func (p *Pending) BoundTo(constructor any) *Scoped {
	p.s.boundTo(constructor)
	return &Scoped{Declaration{s: p.s}}
}

func (p *Pending) BoundToExisting(key inject.Key) *Scoped {
	p.s.boundToExisting(key)
	return &Scoped{Declaration{s: p.s}}
}

// Scoped is a complete chain that may still be given one scope.
type Scoped struct {
	Declaration
}

// In scopes the entry point to a scope registered under name.
func (s *Scoped) In(name inject.ScopeName) *Declaration {
	s.s.setScope(ScopeDescriptor{Kind: ScopeNamed, Name: name})
	return &s.Declaration
}

// InScope scopes the entry point to scope.
func (s *Scoped) InScope(scope inject.Scope) *Declaration {
	s.s.setScope(ScopeDescriptor{Kind: ScopeInstance, Instance: scope})
	return &s.Declaration
}

// AsEagerSingleton makes the entry point a singleton built at injector creation.
func (s *Scoped) AsEagerSingleton() *Declaration {
	s.s.setScope(ScopeDescriptor{Kind: ScopeEager})
	return &s.Declaration
}

// Declaration is a complete chain.
type Declaration struct {
	s *state
}

// Request returns a copy of the declared request, validated.
func (d *Declaration) Request() (Request, error) {
	return d.s.request()
}
