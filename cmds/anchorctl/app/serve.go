package app

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mandelsoft/vfs/pkg/projectionfs"
	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/server"
	"github.com/mandelsoft/spaceanchors/pkg/service"
	"github.com/mandelsoft/spaceanchors/pkg/watch"
)

const (
	WatchPath   = "/watch"
	StoragePath = "/storage/"
)

type Serve struct {
	cmd *cobra.Command

	mainopts *Options
	captured bool
	model    bool
}

func NewServe(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <options>",
		Short: "run the anchor session as server",
		Long: `
Runs an anchor session and serves the stream of completion events
at /watch. The content of the anchor storage is served read-only
at /storage/.
`,
		Args: cobra.NoArgs,
	}
	TweakCommand(cmd)

	c := &Serve{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.BoolVarP(&c.captured, "captured", "", false, "scene already captured")
	flags.BoolVarP(&c.model, "scene-model", "", false, "populate the scene model on startup")
	return cmd
}

func (c *Serve) Run(args []string) error {
	mode, err := c.mainopts.CaptureMode()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := c.mainopts.NewEnv(ctx, c.captured)
	if err != nil {
		return err
	}
	defer env.Close()

	store, err := projectionfs.New(c.mainopts.fs, env.Runtime().Storage().Root())
	if err != nil {
		return err
	}

	srv := server.NewServer(c.mainopts.server, 10*time.Second)
	watches := watch.WatchHttpHandler[watch.Request, watch.Envelope](watch.NewBusRegistry(env.Session().Bus()))
	defer watches.Close()
	srv.Handle(WatchPath, watches)
	server.NewDirectoryHandler(store, StoragePath).Register(srv)

	reg := service.New(env.Context())
	reg.Add(env.Session())
	reg.Add(srv)
	err = reg.Start()
	if err != nil {
		return err
	}
	log.Info("serving anchor events on {{address}}", "address", srv.Address())

	if c.model {
		go func() {
			s, err := BuildScene(env, mode)
			if err != nil {
				log.LogError(err, "scene model not available")
				return
			}
			log.Info("scene model with {{amount}} elements available", "amount", len(s.Elements))
		}()
	}
	return reg.Wait()
}
