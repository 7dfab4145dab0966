package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bronystylecrazy/decorice/build"
	"github.com/bronystylecrazy/decorice/config"
	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/log"
	"github.com/bronystylecrazy/decorice/manifest"
)

var (
	errUnknownTarget = errors.New("unknown target")
	errUnknownOutput = errors.New("unknown output format")
)

type Root struct {
	*cobra.Command
	registry   *manifest.Registry
	configPath string
	logLevel   string
}

// New returns the root command with the plan, resolve and version commands
// registered. registry maps manifest names to Go types and constructors.
func New(registry *manifest.Registry) (*Root, error) {
	r := &Root{
		Command: &cobra.Command{
			Use:           build.Name,
			Short:         "Compile and resolve decorator chains",
			SilenceUsage:  true,
			SilenceErrors: true,
		},
		registry: registry,
	}
	flags := r.PersistentFlags()
	flags.StringVarP(&r.configPath, "config", "c", "decorice.yaml", "manifest file (yaml, toml or json)")
	flags.StringVar(&r.logLevel, "log-level", "", "overrides log.level from the manifest")

	if err := r.Register(NewPlanCommand(r), NewResolveCommand(r), NewVersionCommand()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Root) Start(ctx context.Context) error {
	return r.ExecuteContext(ctx)
}

func (r *Root) Register(commands ...Commander) error {
	for _, command := range commands {
		if err := r.RegisterOne(command); err != nil {
			return err
		}
	}
	return nil
}

func (r *Root) RegisterOne(c Commander) error {
	if r == nil || r.Command == nil {
		return fmt.Errorf("root command is nil")
	}
	if c == nil {
		return fmt.Errorf("commander is nil")
	}
	cmd := c.Command()
	if cmd == nil {
		return fmt.Errorf("command is nil")
	}
	parts := strings.Fields(pathFromUse(cmd.Use))
	if len(parts) == 0 {
		return fmt.Errorf("command path is empty")
	}
	// "a b [args]" registers leaf "b [args]" under a.
	cmd.Use = strings.Join(strings.Fields(cmd.Use)[len(parts)-1:], " ")
	parent := r.Command
	for _, part := range parts[:len(parts)-1] {
		parent = ensureSubCommand(parent, part)
	}
	parent.AddCommand(cmd)
	return nil
}

func ensureSubCommand(parent *cobra.Command, use string) *cobra.Command {
	for _, child := range parent.Commands() {
		if child.Name() == use {
			return child
		}
	}
	child := &cobra.Command{Use: use}
	parent.AddCommand(child)
	return child
}

func pathFromUse(use string) string {
	var out []string
	for _, f := range strings.Fields(use) {
		if strings.HasPrefix(f, "[") || strings.HasPrefix(f, "<") {
			break
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// session is a loaded manifest with its declared chains.
type session struct {
	cfg    config.Config
	chains []decor.Chain
	logger *zap.Logger
}

func (r *Root) load() (*session, error) {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return nil, err
	}
	return r.newSession(cfg)
}

func (r *Root) newSession(cfg config.Config) (*session, error) {
	logger, err := r.newLogger(cfg.Log)
	if err != nil {
		return nil, err
	}
	chains, err := r.registry.Chains(cfg.Chains)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, chains: chains, logger: logger}, nil
}

// newLogger drops the per-injector id field unless debugging.
func (r *Root) newLogger(cfg log.Config) (*zap.Logger, error) {
	if r.logLevel != "" {
		cfg.Level = r.logLevel
	}
	logger, err := log.New(cfg)
	if err != nil {
		return nil, err
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		return logger, nil
	}
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return log.FilterFieldsCore(core, "injector")
	})), nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}
