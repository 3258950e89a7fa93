package app

import (
	"fmt"
	"strings"

	"cogentcore.org/core/math32"
	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/ctxutil"
	"github.com/mandelsoft/spaceanchors/pkg/scene"
)

type Scene struct {
	cmd *cobra.Command

	mainopts *Options
	captured bool
	label    string
	output   string
}

func NewScene(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene <options>",
		Short: "show the scene model of the captured room",
		Long: `
Builds the scene model from the room layout and the plane and
volume spaces provided by the runtime. If no room is found, a scene
capture is requested according to the capture mode.
`,
		Args: cobra.NoArgs,
	}
	TweakCommand(cmd)

	c := &Scene{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.BoolVarP(&c.captured, "captured", "", false, "scene already captured")
	flags.StringVarP(&c.label, "label", "l", "", "show elements with semantic label, only")
	flags.StringVarP(&c.output, "output", "o", "", "output format")
	return cmd
}

func (c *Scene) Run(args []string) error {
	mode, err := c.mainopts.CaptureMode()
	if err != nil {
		return err
	}

	env, err := c.mainopts.NewEnv(c.cmd.Context(), c.captured)
	if err != nil {
		return err
	}
	defer env.Close()

	s, err := BuildScene(env, mode)
	if err != nil {
		return err
	}

	elems := s.Elements
	if c.label != "" {
		elems = s.WithLabel(c.label)
	}

	t := &Table{Columns: []string{"UUID", "ROLE", "LABELS", "POSITION", "SIZE"}}
	for _, e := range elems {
		pos, size := "", ""
		switch {
		case e.Volume != nil:
			pos, size = vector(e.Volume.Position), vector(e.Volume.Size)
		case e.Plane != nil:
			pos, size = vector(e.Plane.Position), vector(e.Plane.Size)
		}
		t.Rows = append(t.Rows, []string{e.UUID.String(), role(s, e), strings.Join(e.Labels, ","), pos, size})
	}
	if c.output == "" {
		return PrintTable(c.cmd.OutOrStdout(), t, "")
	}
	if c.label != "" {
		return Output(c.cmd.OutOrStdout(), c.output, t, elems)
	}
	return Output(c.cmd.OutOrStdout(), c.output, t, s)
}

// BuildScene populates the scene model and waits for the result.
func BuildScene(env *Env, mode scene.CaptureMode) (*scene.Scene, error) {
	ctx := env.Timeout()
	defer ctxutil.Cancel(ctx)

	type result struct {
		scene *scene.Scene
		err   error
	}
	done := make(chan result, 2)

	b := scene.NewBuilder(env.Manager(), env.Session().Bus(), scene.Options{Capture: mode}, func(s *scene.Scene, err error) {
		select {
		case done <- result{s, err}:
		default:
		}
	})
	defer b.Close()

	b.Populate()
	select {
	case r := <-done:
		return r.scene, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("scene population: %w", ctx.Err())
	}
}

func role(s *scene.Scene, e *scene.Element) string {
	switch {
	case e.UUID == s.Room.Floor:
		return "floor"
	case e.UUID == s.Room.Ceiling:
		return "ceiling"
	}
	for _, w := range s.Room.Walls {
		if w == e.UUID {
			return "wall"
		}
	}
	return "object"
}

func vector(v math32.Vector3) string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}
