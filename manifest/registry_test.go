package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bronystylecrazy/decorice/config"
	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/inject"
)

type speaker interface{ Speak() string }

type base struct{}

func (base) Speak() string { return "base" }

func newBase() *base { return &base{} }

type shout struct{ next speaker }

func (s *shout) Speak() string { return s.next.Speak() + "!" }

func newShout(next decor.Decorated[speaker, *shout]) *shout { return &shout{next: next.Value} }

type loud struct{}

func newRegistry() *Registry {
	return Contract[speaker](NewRegistry(), "speaker").
		Constructor("base", newBase).
		Constructor("shout", newShout).
		Qualifier("loud", loud{})
}

func TestChainFromSpec(t *testing.T) {
	r := newRegistry()
	require.NoError(t, r.Err())
	assert.Equal(t, []string{"base", "shout"}, r.Names())

	chain, err := r.Chain(config.ChainSpec{
		Contract:       "speaker",
		Qualifier:      "loud",
		Decorators:     []string{"shout"},
		Implementation: "base",
	})
	require.NoError(t, err)

	req, err := chain.Request()
	require.NoError(t, err)
	assert.Equal(t, loud{}, req.Qualifier)
	assert.Equal(t, decor.ScopeNone, req.Scope.Kind)

	inj, err := inject.New(r.Module(chain))
	require.NoError(t, err)
	assert.Equal(t, "base!", inject.MustGet[speaker](testContext(t), inj, loud{}).Speak())
}

func TestUnregisteredQualifierFallsBackToNamed(t *testing.T) {
	chain, err := newRegistry().Chain(config.ChainSpec{
		Contract:       "speaker",
		Qualifier:      "other",
		Decorators:     []string{"shout"},
		Implementation: "base",
	})
	require.NoError(t, err)

	req, err := chain.Request()
	require.NoError(t, err)
	assert.Equal(t, inject.Named("other"), req.Qualifier)
}

func TestChainScopes(t *testing.T) {
	tests := []struct {
		scope string
		want  decor.ScopeDescriptor
	}{
		{scope: "", want: decor.ScopeDescriptor{Kind: decor.ScopeNone}},
		{scope: config.ScopeEager, want: decor.ScopeDescriptor{Kind: decor.ScopeEager}},
		{scope: "singleton", want: decor.ScopeDescriptor{Kind: decor.ScopeNamed, Name: inject.SingletonScope}},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			chain, err := newRegistry().Chain(config.ChainSpec{
				Contract:       "speaker",
				Decorators:     []string{"shout"},
				Implementation: "base",
				Scope:          tt.scope,
			})
			require.NoError(t, err)
			req, err := chain.Request()
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Scope)
		})
	}
}

func TestRegisteredScopeIsBoundByModule(t *testing.T) {
	request := inject.NewSimpleScope()
	r := newRegistry().Scope("request", request)

	chain, err := r.Chain(config.ChainSpec{
		Contract:       "speaker",
		Decorators:     []string{"shout"},
		Implementation: "base",
		Scope:          "request",
	})
	require.NoError(t, err)

	inj, err := inject.New(r.Module(chain))
	require.NoError(t, err)

	_, err = inject.Get[speaker](testContext(t), inj)
	require.ErrorIs(t, err, inject.ErrOutOfScope)

	_, err = request.Enter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = request.Exit() })

	a := inject.MustGet[speaker](testContext(t), inj)
	b := inject.MustGet[speaker](testContext(t), inj)
	assert.Same(t, a, b)
}

func TestSharedDecoratorAcrossChainsIsDuplicate(t *testing.T) {
	r := newRegistry()
	chains, err := r.Chains([]config.ChainSpec{
		{Contract: "speaker", Decorators: []string{"shout"}, Implementation: "base"},
		{Contract: "speaker", Qualifier: "loud", Decorators: []string{"shout"}, Existing: &config.KeySpec{Contract: "speaker"}},
	})
	require.NoError(t, err)

	// Both chains compile the same shout layer key.
	_, err = inject.New(r.Module(chains...))
	var dup *inject.DuplicateBindingError
	require.ErrorAs(t, err, &dup)
}

func TestExistingTerminalKey(t *testing.T) {
	chain, err := newRegistry().Chain(config.ChainSpec{
		Contract:   "speaker",
		Qualifier:  "loud",
		Decorators: []string{"shout"},
		Existing:   &config.KeySpec{Qualifier: "impl"},
	})
	require.NoError(t, err)

	req, err := chain.Request()
	require.NoError(t, err)
	require.NotNil(t, req.Terminal.Existing)
	assert.Equal(t, inject.KeyOf[speaker](inject.Named("impl")), *req.Terminal.Existing)
}

func TestChainErrors(t *testing.T) {
	tests := []struct {
		name string
		spec config.ChainSpec
		want error
	}{
		{
			name: "unknown contract",
			spec: config.ChainSpec{Contract: "nope", Decorators: []string{"shout"}, Implementation: "base"},
			want: ErrUnknownContract,
		},
		{
			name: "unknown decorator",
			spec: config.ChainSpec{Contract: "speaker", Decorators: []string{"nope"}, Implementation: "base"},
			want: ErrUnknownConstructor,
		},
		{
			name: "unknown implementation",
			spec: config.ChainSpec{Contract: "speaker", Decorators: []string{"shout"}, Implementation: "nope"},
			want: ErrUnknownConstructor,
		},
		{
			name: "unknown existing contract",
			spec: config.ChainSpec{Contract: "speaker", Decorators: []string{"shout"}, Existing: &config.KeySpec{Contract: "nope"}},
			want: ErrUnknownContract,
		},
		{
			name: "repeated decorator",
			spec: config.ChainSpec{Contract: "speaker", Decorators: []string{"shout", "shout"}, Implementation: "base"},
			want: decor.ErrDuplicateDecorator,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRegistry().Chain(tt.spec)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChainsAggregatesErrors(t *testing.T) {
	_, err := newRegistry().Chains([]config.ChainSpec{
		{Contract: "nope", Decorators: []string{"shout"}, Implementation: "base"},
		{Contract: "speaker", Decorators: []string{"nope"}, Implementation: "base"},
	})
	require.ErrorIs(t, err, ErrUnknownContract)
	require.ErrorIs(t, err, ErrUnknownConstructor)
	assert.Contains(t, err.Error(), "chains[0]")
	assert.Contains(t, err.Error(), "chains[1]")
}

func TestRegistrationErrors(t *testing.T) {
	r := NewRegistry().
		Constructor("base", newBase).
		Constructor("base", newBase).
		Constructor("bad", 42).
		Qualifier("slice", []string{}).
		Scope("nil", nil)
	r = Contract[speaker](r, "")

	err := r.Err()
	require.ErrorIs(t, err, ErrAlreadyRegistered)
	require.ErrorIs(t, err, inject.ErrInvalidConstructor)
	require.ErrorIs(t, err, inject.ErrQualifierNotComparable)
	require.ErrorIs(t, err, inject.ErrNilScope)
	assert.Contains(t, err.Error(), "empty contract name")

	_, err = r.Chains(nil)
	require.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestKey(t *testing.T) {
	r := newRegistry()

	key, err := r.Key("speaker", "")
	require.NoError(t, err)
	assert.Equal(t, inject.KeyOf[speaker](), key)

	key, err = r.Key("speaker", "loud")
	require.NoError(t, err)
	assert.Equal(t, inject.KeyOf[speaker](loud{}), key)

	_, err = r.Key("nope", "")
	require.ErrorIs(t, err, ErrUnknownContract)
}
