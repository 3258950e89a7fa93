package app

import (
	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/simulator"
)

type List struct {
	cmd *cobra.Command

	mainopts *Options
	sort     string
	output   string
}

func NewList(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <options>",
		Short: "list the content of the anchor storage",
		Args:  cobra.NoArgs,
	}
	TweakCommand(cmd)

	c := &List{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringVarP(&c.sort, "sort", "s", "", "sort field")
	flags.StringVarP(&c.output, "output", "o", "", "output format")
	return cmd
}

func (c *List) Run(args []string) error {
	storage, err := simulator.NewStorage(c.mainopts.storage, c.mainopts.fs)
	if err != nil {
		return err
	}
	records, err := storage.List()
	if err != nil {
		return err
	}

	t := &Table{Columns: []string{"UUID", "POSITION", "MODE", "SAVED"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{r.UUID.String(), r.Pose.String(), r.Mode, r.Saved.String()})
	}
	if c.output == "" {
		return PrintTable(c.cmd.OutOrStdout(), t, c.sort)
	}
	return Output(c.cmd.OutOrStdout(), c.output, t, records)
}
