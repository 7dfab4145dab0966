package cmd

import (
	"context"
	"fmt"
	"reflect"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/bronystylecrazy/decorice/di"
	"github.com/bronystylecrazy/decorice/inject"
	"github.com/bronystylecrazy/decorice/log"
)

type ResolveCommand struct {
	root   *Root
	target string
}

func NewResolveCommand(root *Root) *ResolveCommand {
	return &ResolveCommand{root: root}
}

func (c *ResolveCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <contract> [qualifier]",
		Short: "Build the manifest chains and resolve one contract",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  c.Run,
	}
	cmd.Flags().StringVar(&c.target, "target", targetInject, "container to resolve with: inject or fx")
	return cmd
}

func (c *ResolveCommand) Run(cmd *cobra.Command, args []string) error {
	if c.target != targetInject && c.target != targetFx {
		return fmt.Errorf("%w: %q", errUnknownTarget, c.target)
	}
	qualifier := ""
	if len(args) == 2 {
		qualifier = args[1]
	}
	key, err := c.root.registry.Key(args[0], qualifier)
	if err != nil {
		return err
	}

	s, err := c.root.load()
	if err != nil {
		return err
	}
	defer s.close()

	var v any
	if c.target == targetFx {
		v, err = c.resolveFx(cmd.Context(), s, key)
	} else {
		v, err = c.resolveInject(cmd.Context(), s, key)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s => %s\n", key, describe(v))
	return err
}

func (c *ResolveCommand) resolveInject(ctx context.Context, s *session, key inject.Key) (any, error) {
	inj, err := inject.New(c.root.registry.Module(s.chains...), inject.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	return inj.Get(ctx, key)
}

func (c *ResolveCommand) resolveFx(ctx context.Context, s *session, key inject.Key) (any, error) {
	cfg := s.cfg.Log
	if c.root.logLevel != "" {
		cfg.Level = c.root.logLevel
	}
	target := reflect.New(key.Type)
	nodes := []any{log.Module(cfg), di.Diagnostics()}
	for _, chain := range s.chains {
		nodes = append(nodes, di.Chain(chain))
	}
	if key.Qualifier != nil {
		nodes = append(nodes, di.Populate(target.Interface(), di.Name(di.QualifierName(key.Qualifier))))
	} else {
		nodes = append(nodes, di.Populate(target.Interface()))
	}

	app := fx.New(di.App(nodes...).Build())
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = app.Stop(context.WithoutCancel(ctx)) }()
	return target.Elem().Interface(), nil
}

func describe(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return fmt.Sprintf("%T (%s)", v, s)
	}
	return fmt.Sprintf("%T", v)
}
