package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goombaio/namegenerator"
	"github.com/mandelsoft/goutils/sliceutils"
	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/anchors"
	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/space"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

var generator = namegenerator.NewNameGenerator(time.Now().UnixNano())

type Create struct {
	cmd *cobra.Command

	mainopts *Options
	pose     string
	save     bool
	output   string
}

func NewCreate(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [<name>...] <options>",
		Short: "create spatial anchors",
		Long: `
Creates a spatial anchor for every given name at the given pose.
Without name a random one is generated. With --save the anchors
are persisted in the local storage.
`,
	}
	TweakCommand(cmd)

	c := &Create{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringVarP(&c.pose, "pose", "p", "0,0,0", "anchor position (x,y,z)")
	flags.BoolVarP(&c.save, "save", "", false, "save the anchors")
	flags.StringVarP(&c.output, "output", "o", "", "output format")
	return cmd
}

func (c *Create) Run(args []string) error {
	pose, err := ParsePose(c.pose)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{generator.Generate()}
	}

	env, err := c.mainopts.NewEnv(c.cmd.Context(), false)
	if err != nil {
		return err
	}
	defer env.Close()

	var infos []*AnchorInfo
	for _, name := range args {
		a, err := c.create(env, name, pose)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		infos = append(infos, NewAnchorInfo(name, a))
	}
	return Output(c.cmd.OutOrStdout(), c.output, AnchorTable(infos), infos)
}

func (c *Create) create(env *Env, name string, pose space.Pose) (*anchors.Anchor, error) {
	ctx := env.Timeout()
	defer ctxutil.Cancel(ctx)

	m := env.Manager()
	ref := m.Targets().New(name)
	a, err := m.AwaitCreate(ctx, pose, ref)
	if err != nil {
		return nil, err
	}
	log.Info("created anchor {{name}}", "name", name, "uuid", a.UUID())
	if c.save {
		_, err = m.AwaitSave(ctx, ref, space.StorageLocal)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// ParsePose parses a position given as comma separated list.
func ParsePose(s string) (space.Pose, error) {
	fields := sliceutils.Transform(strings.Split(s, ","), strings.TrimSpace)
	if len(fields) != 3 {
		return space.Pose{}, fmt.Errorf("invalid pose %q: x,y,z required", s)
	}
	var v [3]float32
	for i, f := range fields {
		n, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return space.Pose{}, fmt.Errorf("invalid pose %q: %w", s, err)
		}
		v[i] = float32(n)
	}
	return space.NewPose(v[0], v[1], v[2]), nil
}

// AnchorInfo is the output representation of an anchor.
type AnchorInfo struct {
	Name   string                  `json:"name,omitempty"`
	UUID   space.UUID              `json:"uuid"`
	Handle space.Handle            `json:"handle,omitempty"`
	Stored []space.StorageLocation `json:"stored,omitempty"`
}

func NewAnchorInfo(name string, a *anchors.Anchor) *AnchorInfo {
	return &AnchorInfo{
		Name:   name,
		UUID:   a.UUID(),
		Handle: a.Handle(),
		Stored: a.StoredLocations(),
	}
}

func AnchorTable(list []*AnchorInfo) *Table {
	t := &Table{Columns: []string{"NAME", "UUID", "HANDLE", "STORED"}}
	for _, i := range list {
		handle := ""
		if i.Handle.IsValid() {
			handle = i.Handle.String()
		}
		t.Rows = append(t.Rows, []string{i.Name, i.UUID.String(), handle, utils.Join(i.Stored, ",")})
	}
	return t
}
