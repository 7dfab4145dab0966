package inject

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type greeter interface {
	Greet() string
}

type plainGreeter struct{ word string }

func (g *plainGreeter) Greet() string { return g.word }

func newPlainGreeter() *plainGreeter { return &plainGreeter{word: "hello"} }

type primary struct{}

type loudGreeter struct{ inner greeter }

func (g *loudGreeter) Greet() string { return g.inner.Greet() + "!" }

func newLoudGreeter(in Qualified[greeter, primary]) *loudGreeter {
	return &loudGreeter{inner: in.Value}
}

func TestUnscopedBindingYieldsFreshInstances(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).To(newPlainGreeter)
		return nil
	}))
	require.NoError(t, err)

	first := MustGet[greeter](testContext(t), inj)
	second := MustGet[greeter](testContext(t), inj)
	assert.Equal(t, "hello", first.Greet())
	assert.NotSame(t, first, second)
}

func TestQualifiedDependency(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).QualifiedBy(primary{}).To(newPlainGreeter)
		Bind[greeter](b).To(newLoudGreeter)
		return nil
	}))
	require.NoError(t, err)

	g, err := Get[greeter](testContext(t), inj)
	require.NoError(t, err)
	assert.Equal(t, "hello!", g.Greet())

	q, err := Get[greeter](testContext(t), inj, primary{})
	require.NoError(t, err)
	assert.Equal(t, "hello", q.Greet())
}

func TestNamedQualifierIsDistinctFromUnqualified(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).QualifiedBy(Named("primary")).To(newPlainGreeter)
		return nil
	}))
	require.NoError(t, err)

	assert.True(t, inj.Has(KeyOf[greeter](Named("primary"))))
	_, err = Get[greeter](testContext(t), inj)
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, KeyOf[greeter](), unresolved.Key)
}

func TestSingletonScopes(t *testing.T) {
	tests := []struct {
		name  string
		scope func(*ScopedBindingBuilder)
	}{
		{name: "named", scope: func(s *ScopedBindingBuilder) { s.In(SingletonScope) }},
		{name: "instance", scope: func(s *ScopedBindingBuilder) { s.InScope(Singleton) }},
		{name: "eager", scope: func(s *ScopedBindingBuilder) { s.AsEagerSingleton() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inj, err := New(ModuleFunc(func(b *Binder) error {
				tt.scope(Bind[greeter](b).To(newPlainGreeter))
				return nil
			}))
			require.NoError(t, err)
			assert.Same(t, MustGet[greeter](testContext(t), inj), MustGet[greeter](testContext(t), inj))
		})
	}
}

func TestEagerSingletonIsBuiltByNew(t *testing.T) {
	calls := 0
	ctor := func() *plainGreeter {
		calls++
		return &plainGreeter{word: "eager"}
	}
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).To(ctor).AsEagerSingleton()
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_ = MustGet[greeter](testContext(t), inj)
	assert.Equal(t, 1, calls)
}

func TestEagerSingletonFailureFailsNew(t *testing.T) {
	boom := errors.New("boom")
	_, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).To(func() (*plainGreeter, error) { return nil, boom }).AsEagerSingleton()
		return nil
	}))
	require.ErrorIs(t, err, boom)
}

func TestSimpleScope(t *testing.T) {
	scope := NewSimpleScope()
	inj, err := New(ModuleFunc(func(b *Binder) error {
		b.BindScope("request", scope)
		Bind[greeter](b).To(newPlainGreeter).In("request")
		return nil
	}))
	require.NoError(t, err)

	_, err = Get[greeter](testContext(t), inj)
	require.ErrorIs(t, err, ErrOutOfScope)

	_, err = scope.Enter()
	require.NoError(t, err)
	first := MustGet[greeter](testContext(t), inj)
	assert.Same(t, first, MustGet[greeter](testContext(t), inj))
	require.NoError(t, scope.Exit())

	_, err = scope.Enter()
	require.NoError(t, err)
	assert.NotSame(t, first, MustGet[greeter](testContext(t), inj))
	require.NoError(t, scope.Exit())

	require.ErrorIs(t, scope.Exit(), ErrNoScopeInProgress)
}

func TestSimpleScopeRejectsNestedBlocks(t *testing.T) {
	scope := NewSimpleScope()
	_, err := scope.Enter()
	require.NoError(t, err)
	_, err = scope.Enter()
	require.ErrorIs(t, err, ErrScopeInProgress)
}

func TestAliasBinding(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).QualifiedBy(Named("base")).To(newPlainGreeter).In(SingletonScope)
		Bind[greeter](b).ToKey(KeyOf[greeter](Named("base")))
		return nil
	}))
	require.NoError(t, err)
	assert.Same(t,
		MustGet[greeter](testContext(t), inj, Named("base")),
		MustGet[greeter](testContext(t), inj),
	)
}

func TestConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		module ModuleFunc
		target error
	}{
		{
			name: "alias to missing key",
			module: func(b *Binder) error {
				Bind[greeter](b).ToKey(KeyOf[greeter](Named("missing")))
				return nil
			},
		},
		{
			name: "unlinked",
			module: func(b *Binder) error {
				Bind[greeter](b)
				return nil
			},
			target: ErrUnlinkedBinding,
		},
		{
			name: "unknown scope",
			module: func(b *Binder) error {
				Bind[greeter](b).To(newPlainGreeter).In("session")
				return nil
			},
			target: ErrUnknownScope,
		},
		{
			name: "double scope",
			module: func(b *Binder) error {
				s := Bind[greeter](b).To(newPlainGreeter)
				s.AsEagerSingleton()
				s.In(SingletonScope)
				return nil
			},
			target: ErrScopeAlreadySet,
		},
		{
			name: "not assignable",
			module: func(b *Binder) error {
				Bind[greeter](b).To(func() string { return "nope" })
				return nil
			},
			target: ErrNotAssignable,
		},
		{
			name: "not a function",
			module: func(b *Binder) error {
				Bind[greeter](b).To(42)
				return nil
			},
			target: ErrInvalidConstructor,
		},
		{
			name: "uncomparable qualifier",
			module: func(b *Binder) error {
				Bind[greeter](b).QualifiedBy([]string{"x"}).To(newPlainGreeter)
				return nil
			},
			target: ErrQualifierNotComparable,
		},
		{
			name: "self alias",
			module: func(b *Binder) error {
				Bind[greeter](b).ToKey(KeyOf[greeter]())
				return nil
			},
			target: ErrSelfAlias,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.module)
			require.Error(t, err)
			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
				return
			}
			var unresolved *UnresolvedError
			require.ErrorAs(t, err, &unresolved)
			assert.Equal(t, KeyOf[greeter](Named("missing")), unresolved.Key)
			assert.Equal(t, KeyOf[greeter](), unresolved.Requester)
		})
	}
}

func TestDuplicateBindingsAreAggregated(t *testing.T) {
	_, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).To(newPlainGreeter)
		Bind[greeter](b).To(newPlainGreeter)
		Bind[greeter](b).QualifiedBy(primary{}).To(newPlainGreeter)
		Bind[greeter](b).QualifiedBy(primary{}).To(newPlainGreeter)
		return nil
	}))
	require.Error(t, err)
	var dup *DuplicateBindingError
	require.ErrorAs(t, err, &dup)
	assert.Contains(t, err.Error(), "duplicate binding for inject.greeter;")
	assert.Contains(t, err.Error(), "duplicate binding for inject.greeter @inject.primary")
}

func TestModuleErrorFailsNew(t *testing.T) {
	boom := errors.New("module failed")
	_, err := New(ModuleFunc(func(*Binder) error { return boom }))
	require.ErrorIs(t, err, boom)
}

func TestUnresolvedDependencyNamesKey(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).To(newLoudGreeter)
		return nil
	}))
	require.NoError(t, err)

	_, err = Get[greeter](testContext(t), inj)
	var unresolved *UnresolvedError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, KeyOf[greeter](primary{}), unresolved.Key)
	assert.Equal(t, "inject: no binding for inject.greeter @inject.primary (required by inject.greeter)", err.Error())
}

type selfish struct{}

func (selfish) Greet() string { return "" }

func TestCircularDependency(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).To(func(g Qualified[greeter, primary]) selfish { return selfish{} })
		Bind[greeter](b).QualifiedBy(primary{}).To(func(g greeter) selfish { return selfish{} })
		return nil
	}))
	require.NoError(t, err)

	_, err = Get[greeter](testContext(t), inj)
	var cycle *CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Len(t, cycle.Path, 3)
	assert.Equal(t, cycle.Path[0], cycle.Path[2])
}

func TestInjectorParameter(t *testing.T) {
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).QualifiedBy(Named("base")).To(newPlainGreeter)
		Bind[greeter](b).To(func(inj *Injector) (*loudGreeter, error) {
			inner, err := Get[greeter](context.Background(), inj, Named("base"))
			return &loudGreeter{inner: inner}, err
		})
		return nil
	}))
	require.NoError(t, err)
	assert.Equal(t, "hello!", MustGet[greeter](testContext(t), inj).Greet())
}

func TestToInstance(t *testing.T) {
	g := &plainGreeter{word: "instance"}
	inj, err := New(ModuleFunc(func(b *Binder) error {
		Bind[greeter](b).ToInstance(g)
		return nil
	}))
	require.NoError(t, err)
	assert.Same(t, g, MustGet[greeter](testContext(t), inj))
	assert.Equal(t, []Key{KeyOf[greeter]()}, inj.Keys())
}

func TestNewRejectsUnsupportedItems(t *testing.T) {
	_, err := New("not a module")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported item type string")
}

func TestResolutionSpansAndLogs(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	core, logs := observer.New(zapcore.DebugLevel)

	inj, err := New(
		WithTracerProvider(tp),
		WithLogger(zap.New(core)),
		ModuleFunc(func(b *Binder) error {
			Bind[greeter](b).QualifiedBy(primary{}).To(newPlainGreeter)
			Bind[greeter](b).To(newLoudGreeter)
			return nil
		}),
	)
	require.NoError(t, err)
	_ = MustGet[greeter](testContext(t), inj)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	// Inner spans end first.
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())

	bindings := logs.FilterMessage("binding").All()
	require.Len(t, bindings, 2)
	assert.Equal(t, inj.ID(), bindings[0].ContextMap()["injector"])
	assert.Equal(t, "inject.greeter @inject.primary", bindings[0].ContextMap()["key"])
}
