package app

import (
	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mandelsoft/spaceanchors/pkg/config"
	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

type Options struct {
	fs vfs.FileSystem

	storage    string
	scene      string
	capture    string
	latency    string
	pollPeriod string
	server     string
	logLevel   string
}

func (o *Options) AddFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.storage, "storage", "d", o.storage, "anchor storage directory")
	flags.StringVarP(&o.scene, "scene", "S", o.scene, "scene fixture file")
	flags.StringVarP(&o.capture, "capture", "c", o.capture, "scene capture mode (never, once, always)")
	flags.StringVarP(&o.latency, "latency", "", o.latency, "simulated completion latency")
	flags.StringVarP(&o.pollPeriod, "poll-period", "", o.pollPeriod, "event poll period")
	flags.StringVarP(&o.server, "server", "s", o.server, "server address")
	flags.StringVarP(&o.logLevel, "log-level", "L", o.logLevel, "log level")
}

func (o *Options) FileSystem() vfs.FileSystem {
	return o.fs
}

func New(fss ...vfs.FileSystem) *cobra.Command {
	opts := &Options{
		fs: utils.OptionalDefaulted(vfs.FileSystem(osfs.OsFs), fss...),
	}

	cfg := config.GetConfig(opts.fs)
	opts.storage = config.Value(cfg.Storage)
	opts.scene = config.Value(cfg.Scene)
	opts.capture = config.Value(cfg.Capture)
	opts.latency = config.Value(cfg.Latency)
	opts.pollPeriod = config.Value(cfg.PollPeriod)
	opts.server = config.Value(cfg.Server)
	opts.logLevel = config.Value(cfg.LogLevel)

	maincmd := &cobra.Command{
		Use:   "anchorctl <options> <cmd> <args>",
		Short: "manage spatial anchors",
		Long: `
This command can be used to create, persist, query and erase
spatial anchors of a simulated runtime, to build the scene model
of the captured room and to serve and watch the anchor events.
`,
		Run:               nil,
		TraverseChildren:  true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return ConfigureLogging(opts.logLevel) },
	}

	opts.AddFlags(maincmd.Flags())

	maincmd.AddCommand(NewCreate(opts))
	maincmd.AddCommand(NewSave(opts))
	maincmd.AddCommand(NewErase(opts))
	maincmd.AddCommand(NewQuery(opts))
	maincmd.AddCommand(NewList(opts))
	maincmd.AddCommand(NewScene(opts))
	maincmd.AddCommand(NewServe(opts))
	maincmd.AddCommand(NewWatch(opts))
	return maincmd
}

func TweakCommand(cmd *cobra.Command) {
	cmd.DisableFlagsInUseLine = true
	cmd.SilenceUsage = true
}
