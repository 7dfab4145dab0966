package cmd

import "github.com/spf13/cobra"

type Commander interface {
	Command() *cobra.Command // command instance
}

const (
	targetInject = "inject"
	targetFx     = "fx"

	outputText = "text"
	outputYAML = "yaml"
)
