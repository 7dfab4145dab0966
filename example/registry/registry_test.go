package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bronystylecrazy/decorice/config"
	"github.com/bronystylecrazy/decorice/example"
	"github.com/bronystylecrazy/decorice/inject"
	"github.com/bronystylecrazy/decorice/manifest"
)

func TestManifestResolves(t *testing.T) {
	cfg, err := config.Load("../decorice.yaml")
	require.NoError(t, err)

	reg := Register(manifest.NewRegistry())
	require.NoError(t, reg.Err())
	chains, err := reg.Chains(cfg.Chains)
	require.NoError(t, err)

	inj, err := inject.New(reg.Module(chains...))
	require.NoError(t, err)

	assert.Equal(t, "D2:D1:FooImpl", inject.MustGet[example.Foo](testContext(t), inj).Bar())
	assert.Equal(t, "D3:D2:D1:FooImpl", inject.MustGet[example.Foo](testContext(t), inj, example.Primary{}).Bar())
}
