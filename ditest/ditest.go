package ditest

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/di"
	"github.com/bronystylecrazy/decorice/inject"
)

// App wraps fxtest.App with DI-specific constructor helpers.
type App struct {
	app *fxtest.App
}

// New builds a di.App from nodes and returns a test app.
func New(t testing.TB, nodes ...any) *App {
	t.Helper()
	return &App{app: fxtest.New(t, di.App(nodes...).Build())}
}

// RequireStart starts the app and fails the test on error.
func (a *App) RequireStart() *App {
	a.app.RequireStart()
	return a
}

// RequireStop stops the app and fails the test on error.
func (a *App) RequireStop() *App {
	a.app.RequireStop()
	return a
}

// Injector builds an inject.Injector from chains and extra modules or
// options, failing the test on configuration errors.
func Injector(t testing.TB, chains []decor.Chain, items ...any) *inject.Injector {
	t.Helper()
	inj, err := inject.New(append([]any{decor.Install(chains...)}, items...)...)
	require.NoError(t, err)
	return inj
}
