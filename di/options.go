package di

import (
	"fmt"
	"reflect"
	"strconv"
)

type exportSpec struct {
	typ   reflect.Type
	name  string
	named bool
}

type bindConfig struct {
	exports     []exportSpec
	includeSelf bool
	private     bool
	pendingName string
	err         error
}

type paramConfig struct {
	tags []string
	err  error
}

// Option is applied to providers and/or invocations.
type Option interface {
	applyBind(*bindConfig)
	applyParam(*paramConfig)
}

type bindOptionFunc func(*bindConfig)

func (f bindOptionFunc) applyBind(cfg *bindConfig) { f(cfg) }
func (f bindOptionFunc) applyParam(*paramConfig)   {}

// As exposes the constructor result as type T.
func As[T any]() Option {
	return bindOptionFunc(func(cfg *bindConfig) {
		cfg.exports = append(cfg.exports, exportSpec{typ: reflect.TypeOf((*T)(nil)).Elem()})
	})
}

type nameOption string

func (n nameOption) applyBind(cfg *bindConfig) {
	if cfg.err != nil {
		return
	}
	name := string(n)
	if name == "" {
		cfg.err = fmt.Errorf(errNameEmpty)
		return
	}
	if len(cfg.exports) == 0 {
		if cfg.pendingName != "" {
			cfg.err = fmt.Errorf(errNameAlreadySet)
			return
		}
		cfg.pendingName = name
		return
	}
	last := &cfg.exports[len(cfg.exports)-1]
	last.name = name
	last.named = true
}

func (n nameOption) applyParam(cfg *paramConfig) {
	if cfg.err != nil {
		return
	}
	if n == "" {
		cfg.err = fmt.Errorf(errNameEmpty)
		return
	}
	cfg.tags = append(cfg.tags, nameTag(string(n)))
}

// Name applies a name tag. For Provide it names the output, for Invoke and
// Populate it names the next input.
func Name(name string) Option {
	return nameOption(name)
}

// Self exposes the concrete type along with any As options.
func Self() Option {
	return bindOptionFunc(func(cfg *bindConfig) {
		cfg.includeSelf = true
	})
}

// Private hides this constructor from other modules.
func Private() Option {
	return bindOptionFunc(func(cfg *bindConfig) {
		cfg.private = true
	})
}

func nameTag(name string) string {
	return "name:" + strconv.Quote(name)
}

func applyBindOptions(items []any, cfg *bindConfig) error {
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case Option:
			v.applyBind(cfg)
		default:
			cfg.err = fmt.Errorf(errUnsupportedOptionType, item)
		}
		if cfg.err != nil {
			return cfg.err
		}
	}
	return nil
}

func applyParamOptions(opts []Option, cfg *paramConfig) error {
	for _, opt := range opts {
		if opt != nil {
			opt.applyParam(cfg)
		}
		if cfg.err != nil {
			return cfg.err
		}
	}
	return nil
}
