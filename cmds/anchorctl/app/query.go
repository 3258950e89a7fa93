package app

import (
	"strings"

	"github.com/mandelsoft/goutils/sliceutils"
	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

type Query struct {
	cmd *cobra.Command

	mainopts   *Options
	components []string
	max        int
	sort       string
	output     string
}

func NewQuery(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [<uuid>...] <options>",
		Short: "query anchors",
		Long: `
Queries the anchors with the given ids, or all stored anchors.
With --component the spaces of the captured scene carrying one of
the given component types are queried.
`,
	}
	TweakCommand(cmd)

	c := &Query{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringSliceVarP(&c.components, "component", "C", nil, "component type filter")
	flags.IntVarP(&c.max, "max", "m", 0, "maximum number of results")
	flags.StringVarP(&c.sort, "sort", "s", "", "sort field")
	flags.StringVarP(&c.output, "output", "o", "", "output format")
	return cmd
}

// QueryResultInfo is the output representation of a query result.
type QueryResultInfo struct {
	UUID       space.UUID            `json:"uuid"`
	Handle     space.Handle          `json:"handle"`
	Location   space.StorageLocation `json:"location"`
	Components []space.ComponentType `json:"components,omitempty"`
}

func (c *Query) Run(args []string) error {
	q := space.QueryInfo{
		MaxQuerySpaces: c.max,
		Location:       space.StorageLocal,
	}
	if len(c.components) > 0 {
		var types []space.ComponentType
		for _, n := range c.components {
			t, err := space.ParseComponentType(strings.TrimSpace(n))
			if err != nil {
				return err
			}
			types = append(types, t)
		}
		q = space.QueryByComponents(space.StorageLocal, c.max, types...)
	}
	if len(args) > 0 {
		ids, err := ParseUUIDs(args)
		if err != nil {
			return err
		}
		q.FilterType = space.FilterByIds
		q.IDFilter = ids
		q.ComponentFilter = nil
	}

	env, err := c.mainopts.NewEnv(c.cmd.Context(), q.FilterType == space.FilterByComponentType)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := env.Timeout()
	defer ctxutil.Cancel(ctx)
	found, err := env.Manager().AwaitQuery(ctx, q)
	if err != nil {
		return err
	}

	infos := sliceutils.Transform(found, func(r space.QueryResult) *QueryResultInfo {
		return &QueryResultInfo{
			UUID:       r.UUID,
			Handle:     r.Handle,
			Location:   r.Location,
			Components: env.Manager().GetSupportedComponents(r.Handle),
		}
	})

	t := &Table{Columns: []string{"UUID", "HANDLE", "LOCATION", "COMPONENTS"}}
	for _, i := range infos {
		t.Rows = append(t.Rows, []string{i.UUID.String(), i.Handle.String(), i.Location.String(), utils.Join(i.Components, ",")})
	}
	if c.output == "" {
		return PrintTable(c.cmd.OutOrStdout(), t, c.sort)
	}
	return Output(c.cmd.OutOrStdout(), c.output, t, infos)
}
