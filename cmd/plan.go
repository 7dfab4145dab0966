package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/bronystylecrazy/decorice/config"
	"github.com/bronystylecrazy/decorice/decor"
	"github.com/bronystylecrazy/decorice/di"
	"github.com/bronystylecrazy/decorice/log"
)

type PlanCommand struct {
	root   *Root
	output string
	target string
	watch  bool
}

func NewPlanCommand(root *Root) *PlanCommand {
	return &PlanCommand{root: root}
}

func (p *PlanCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the bindings compiled from the manifest chains",
		Args:  cobra.NoArgs,
		RunE:  p.Run,
	}
	flags := cmd.Flags()
	flags.StringVarP(&p.output, "output", "o", outputText, "output format: text or yaml")
	flags.StringVar(&p.target, "target", targetInject, "container to plan for: inject or fx")
	flags.BoolVarP(&p.watch, "watch", "w", false, "print the plan again whenever the manifest changes")
	return cmd
}

func (p *PlanCommand) Run(cmd *cobra.Command, args []string) error {
	if err := p.validateFlags(); err != nil {
		return err
	}
	if p.watch {
		return p.runWatch(cmd)
	}
	s, err := p.root.load()
	if err != nil {
		return err
	}
	defer s.close()
	return p.render(cmd.OutOrStdout(), s.chains)
}

func (p *PlanCommand) validateFlags() error {
	switch p.target {
	case targetInject:
		if p.output != outputText && p.output != outputYAML {
			return fmt.Errorf("%w: %q", errUnknownOutput, p.output)
		}
	case targetFx:
		if p.output != outputText {
			return fmt.Errorf("%w: %q is not available for the fx target", errUnknownOutput, p.output)
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownTarget, p.target)
	}
	return nil
}

func (p *PlanCommand) runWatch(cmd *cobra.Command) error {
	var mu sync.Mutex
	out := cmd.OutOrStdout()
	printPlan := func(cfg config.Config) error {
		s, err := p.root.newSession(cfg)
		if err != nil {
			return err
		}
		defer s.close()
		mu.Lock()
		defer mu.Unlock()
		return p.render(out, s.chains)
	}

	logger, err := p.root.newLogger(log.Config{})
	if err != nil {
		return err
	}
	cfg, err := config.Watch(p.root.configPath, func(cfg config.Config, err error) {
		if err == nil {
			err = printPlan(cfg)
		}
		if err != nil {
			logger.Error("manifest reload failed", zap.String("path", p.root.configPath), zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	if err := printPlan(cfg); err != nil {
		return err
	}
	<-cmd.Context().Done()
	return nil
}

func (p *PlanCommand) render(w io.Writer, chains []decor.Chain) error {
	if p.target == targetFx {
		nodes := make([]any, 0, len(chains))
		for _, c := range chains {
			nodes = append(nodes, di.Chain(c))
		}
		plan, err := di.Plan(nodes...)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, plan)
		return err
	}

	plans, err := compilePlans(chains)
	if err != nil {
		return err
	}
	if p.output == outputYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(plans); err != nil {
			return err
		}
		return enc.Close()
	}
	for _, cp := range plans {
		if _, err := fmt.Fprintf(w, "%s (%s)\n", cp.Chain, cp.Scope); err != nil {
			return err
		}
		for _, b := range cp.Bindings {
			if _, err := fmt.Fprintf(w, "  %s -> %s\n", b.Key, b.Target); err != nil {
				return err
			}
		}
	}
	return nil
}

type chainPlan struct {
	Chain    string        `yaml:"chain"`
	Scope    string        `yaml:"scope"`
	Bindings []bindingPlan `yaml:"bindings"`
}

type bindingPlan struct {
	Key    string `yaml:"key"`
	Target string `yaml:"target"`
}

func compilePlans(chains []decor.Chain) ([]chainPlan, error) {
	out := make([]chainPlan, 0, len(chains))
	for _, c := range chains {
		bindings, err := decor.CompileAll(c)
		if err != nil {
			return nil, err
		}
		cp := chainPlan{
			Chain: bindings[0].Key.String(),
			Scope: bindings[0].Scope.String(),
		}
		for _, b := range bindings {
			cp.Bindings = append(cp.Bindings, bindingPlan{Key: b.Key.String(), Target: b.Target.String()})
		}
		out = append(out, cp)
	}
	return out, nil
}
