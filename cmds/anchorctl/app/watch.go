package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/spaceanchors/pkg/events"
	"github.com/mandelsoft/spaceanchors/pkg/watch"
)

type Watch struct {
	cmd *cobra.Command

	mainopts *Options
	kinds    []string
	count    int
}

func NewWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <options>",
		Short: "watch the completion events of an anchor server",
		Args:  cobra.NoArgs,
	}
	TweakCommand(cmd)

	c := &Watch{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	flags := cmd.Flags()
	flags.StringSliceVarP(&c.kinds, "kind", "k", nil, "event kinds to watch")
	flags.IntVarP(&c.count, "count", "n", 0, "stop after the given number of events")
	return cmd
}

func (c *Watch) Run(args []string) error {
	req := watch.Request{}
	for _, k := range c.kinds {
		kind := events.Kind(strings.TrimSpace(k))
		if !events.IsKind(kind) {
			return fmt.Errorf("unknown event kind %q", k)
		}
		req.Kinds = append(req.Kinds, kind)
	}

	ctx, cancel := context.WithCancel(c.cmd.Context())
	defer cancel()

	s, err := Consume(ctx, c.cmd.OutOrStdout(), c.mainopts.WatchURL(), req, c.count, cancel)
	if err != nil {
		return err
	}
	return s.Wait()
}

func (o *Options) WatchURL() string {
	a := o.server
	switch {
	case strings.HasPrefix(a, "http://"):
		a = "ws://" + a[len("http://"):]
	case strings.HasPrefix(a, "https://"):
		a = "wss://" + a[len("https://"):]
	case !strings.HasPrefix(a, "ws://") && !strings.HasPrefix(a, "wss://"):
		a = "ws://" + a
	}
	return strings.TrimSuffix(a, "/") + WatchPath
}

// Consume prints the envelopes received from the given address.
// If count is positive, done is called after count events.
func Consume(ctx context.Context, w io.Writer, address string, req watch.Request, count int, done func()) (watch.Syncher, error) {
	c := watch.NewClient[watch.Request, watch.Envelope](address)
	return c.Register(ctx, req, &handler{w: w, count: count, done: done})
}

type handler struct {
	lock  sync.Mutex
	w     io.Writer
	count int
	done  func()
}

func (h *handler) HandleEvent(e watch.Envelope) {
	h.lock.Lock()
	defer h.lock.Unlock()

	data, err := json.Marshal(e)
	if err != nil {
		log.LogError(err, "cannot marshal event")
		return
	}
	fmt.Fprintf(h.w, "%s\n", string(data))
	if h.count > 0 {
		h.count--
		if h.count == 0 && h.done != nil {
			h.done()
		}
	}
}
