package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bronystylecrazy/decorice/build"
)

type VersionCommand struct{}

func NewVersionCommand() *VersionCommand {
	return &VersionCommand{}
}

func (s *VersionCommand) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		Args:  cobra.NoArgs,
		RunE:  s.Run,
	}
}

func (s *VersionCommand) Run(cmd *cobra.Command, args []string) error {
	info := build.Current()
	_, err := fmt.Fprintf(
		cmd.OutOrStdout(),
		"%s\n  Version   %s\n  Commit    %s\n  BuildDate %s\n  Mode      %s\n  Go        %s\n",
		info.Name,
		info.Version,
		info.Commit,
		info.BuildDate,
		info.Mode,
		info.GoVersion,
	)
	return err
}
