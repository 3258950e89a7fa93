package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/anchors"
	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/space"
)

type Save struct {
	cmd *cobra.Command

	mainopts *Options
	output   string
}

func NewSave(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <uuid>...",
		Short: "save known anchors again",
		Long: `
Looks up the given anchors in the local storage and saves them again.
`,
		Args: cobra.MinimumNArgs(1),
	}
	TweakCommand(cmd)

	c := &Save{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringVarP(&c.output, "output", "o", "", "output format")
	return cmd
}

func (c *Save) Run(args []string) error {
	ids, err := ParseUUIDs(args)
	if err != nil {
		return err
	}

	env, err := c.mainopts.NewEnv(c.cmd.Context(), false)
	if err != nil {
		return err
	}
	defer env.Close()

	var infos []*AnchorInfo
	for _, id := range ids {
		ref, _, err := env.Adopt(id.String(), id)
		if err != nil {
			return err
		}
		a, err := save(env, ref)
		if err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
		infos = append(infos, NewAnchorInfo("", a))
	}
	return Output(c.cmd.OutOrStdout(), c.output, AnchorTable(infos), infos)
}

func save(env *Env, ref anchors.TargetRef) (*anchors.Anchor, error) {
	ctx := env.Timeout()
	defer ctxutil.Cancel(ctx)
	return env.Manager().AwaitSave(ctx, ref, space.StorageLocal)
}

func ParseUUIDs(args []string) ([]space.UUID, error) {
	var ids []space.UUID
	for _, a := range args {
		id, err := space.ParseUUID(a)
		if err != nil {
			return nil, fmt.Errorf("invalid anchor id %q: %w", a, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
