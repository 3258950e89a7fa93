package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
)

type Erase struct {
	cmd *cobra.Command

	mainopts *Options
}

func NewErase(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "erase <uuid>...",
		Short: "erase stored anchors",
		Args:  cobra.MinimumNArgs(1),
	}
	TweakCommand(cmd)

	c := &Erase{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	return cmd
}

func (c *Erase) Run(args []string) error {
	ids, err := ParseUUIDs(args)
	if err != nil {
		return err
	}

	env, err := c.mainopts.NewEnv(c.cmd.Context(), false)
	if err != nil {
		return err
	}
	defer env.Close()

	var cmderr error
	for _, id := range ids {
		ref, _, err := env.Adopt(id.String(), id)
		if err != nil {
			fmt.Fprintf(c.cmd.OutOrStdout(), "%s: %s\n", id, err)
			cmderr = fmt.Errorf("erase failed")
			continue
		}
		ctx := env.Timeout()
		erased, err := env.Manager().AwaitErase(ctx, ref)
		ctxutil.Cancel(ctx)
		if err != nil {
			fmt.Fprintf(c.cmd.OutOrStdout(), "%s: %s\n", id, err)
			cmderr = fmt.Errorf("erase failed")
			continue
		}
		env.Manager().ReleaseTarget(ref)
		fmt.Fprintf(c.cmd.OutOrStdout(), "%s erased\n", erased)
	}
	return cmderr
}
