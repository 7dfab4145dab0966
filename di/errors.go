package di

const (
	errUnsupportedNodeType    = "unsupported node type: %T"
	errUnsupportedOptionType  = "unsupported option type: %T"
	errConstructorNil         = "constructor must not be nil"
	errSupplyValueNil         = "supply value must not be nil"
	errSupplyValueNotError    = "supply value must not be an error"
	errExportTypeNil          = "export type must not be nil"
	errNotAssignableToType    = "type %s is not assignable to %s"
	errNameEmpty              = "name must not be empty"
	errNameAlreadySet         = "name already set"
	errParamTagsSingleTarget  = "param tags require exactly one populate target"
	errModuleNameEmpty        = "module name must not be empty"
	errChainNil               = "chain must not be nil"
	errChainUnsupportedScope  = "chain %s: scope %q is not supported by fx; use none, eager or singleton"
	errChainInjectorParameter = "chain %s: constructor parameter *inject.Injector is not available under fx"
	errChainBindingTarget     = "chain binding %s has no target"
)
