package config

import (
	"github.com/bronystylecrazy/decorice/log"
)

// Config is the decorice manifest.
type Config struct {
	Log    log.Config  `mapstructure:"log" yaml:"log"`
	Chains []ChainSpec `mapstructure:"chains" yaml:"chains" validate:"dive"`
}

// ChainSpec declares one decorator chain by registry names.
//
//	chains:
//	  - contract: foo
//	    qualifier: primary
//	    decorators: [d2, d1]
//	    implementation: fooimpl
//	    scope: eager
type ChainSpec struct {
	Contract       string   `mapstructure:"contract" yaml:"contract" validate:"required"`
	Qualifier      string   `mapstructure:"qualifier" yaml:"qualifier,omitempty"`
	Decorators     []string `mapstructure:"decorators" yaml:"decorators" validate:"required,min=1,unique,dive,required"`
	Implementation string   `mapstructure:"implementation" yaml:"implementation,omitempty" validate:"required_without=Existing,excluded_with=Existing"`
	Existing       *KeySpec `mapstructure:"existing" yaml:"existing,omitempty"`
	// Scope is empty, "eager", or the name of a registered scope.
	Scope string `mapstructure:"scope" yaml:"scope,omitempty"`
}

// KeySpec names a binding outside the chain. An empty contract means the
// chain's contract; an empty qualifier means the unqualified key.
type KeySpec struct {
	Contract  string `mapstructure:"contract" yaml:"contract,omitempty" validate:"required_without=Qualifier"`
	Qualifier string `mapstructure:"qualifier" yaml:"qualifier,omitempty"`
}

const ScopeEager = "eager"
