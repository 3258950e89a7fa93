package watch

import (
	"encoding/json"
	"net"
	"net/http"
	"slices"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/mandelsoft/spaceanchors/pkg/utils"
)

type EventHandler[E any] interface {
	HandleEvent(e E)
}

// Registry is the source of events for watch connections.
type Registry[R any, E any] interface {
	RegisterWatchHandler(r R, h EventHandler[E])
	UnregisterWatchHandler(r R, h EventHandler[E])
}

// WatchHttpHandler provides an http handler upgrading requests to
// websocket connections. The first client message is the registration
// request, afterwards matching events are streamed as json text messages.
func WatchHttpHandler[R, E any](r Registry[R, E]) *RequestHandler[R, E] {
	return &RequestHandler[R, E]{registry: r}
}

type RequestHandler[R, E any] struct {
	lock        sync.Mutex
	registry    Registry[R, E]
	connections []*handler[R, E]
}

var _ http.Handler = (*RequestHandler[any, any])(nil)

// Close terminates all open watch connections.
func (h *RequestHandler[R, E]) Close() error {
	h.lock.Lock()
	conns := slices.Clone(h.connections)
	h.lock.Unlock()

	for _, c := range conns {
		c.Close()
	}
	return nil
}

func (h *RequestHandler[R, E]) Connections() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.connections)
}

func (h *RequestHandler[R, E]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Info("new watch request from {{remote}}", "remote", r.RemoteAddr)
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.LogError(err, "upgrading watch request")
		return
	}

	msg, op, err := wsutil.ReadClientData(conn)
	if err != nil {
		log.LogError(err, "reading registration request")
		conn.Close()
		return
	}
	if op != ws.OpText {
		log.Error("invalid registration message type", "op", op)
		sendError(conn, "text registration request required")
		return
	}

	var registration R
	err = json.Unmarshal(msg, &registration)
	if err != nil {
		log.LogError(err, "decoding registration request")
		sendError(conn, err.Error())
		return
	}

	c := newHandler[R, E](h, conn, registration)
	go c.drain()
}

func (h *RequestHandler[R, E]) addHandler(c *handler[R, E]) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.connections = append(h.connections, c)
}

func (h *RequestHandler[R, E]) removeHandler(c *handler[R, E]) {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.connections = utils.FilterSlice(h.connections, func(e *handler[R, E]) bool { return e != c })
}

////////////////////////////////////////////////////////////////////////////////

// SendQueueSize is the number of events buffered per connection.
// A connection not able to keep up is closed.
var SendQueueSize = 100

type handler[R, E any] struct {
	lock     sync.Mutex
	hhandler *RequestHandler[R, E]
	conn     net.Conn
	req      R
	closed   bool
	queue    chan []byte
	done     chan struct{}
}

func newHandler[R, E any](hh *RequestHandler[R, E], conn net.Conn, req R) *handler[R, E] {
	h := &handler[R, E]{
		hhandler: hh,
		conn:     conn,
		req:      req,
		queue:    make(chan []byte, SendQueueSize),
		done:     make(chan struct{}),
	}
	go h.send()
	hh.addHandler(h)
	hh.registry.RegisterWatchHandler(req, h)
	return h
}

// send writes queued events to the connection, so that event
// publishers are never blocked by the network.
func (h *handler[R, E]) send() {
	for {
		select {
		case <-h.done:
			return
		case data := <-h.queue:
			err := wsutil.WriteServerMessage(h.conn, ws.OpText, data)
			if err != nil {
				log.LogError(err, "cannot send event -> closing connection")
				h.Close()
				return
			}
		}
	}
}

// drain consumes client messages until the connection is closed.
func (h *handler[R, E]) drain() {
	for {
		_, _, err := wsutil.ReadClientData(h.conn)
		if err != nil {
			h.Close()
			return
		}
	}
}

func (h *handler[R, E]) HandleEvent(e E) {
	data, err := json.Marshal(e)
	if err != nil {
		log.LogError(err, "cannot marshal event")
		return
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return
	}
	select {
	case h.queue <- data:
	default:
		log.Error("watch connection too slow -> closing connection")
		go h.Close()
	}
}

func (h *handler[R, E]) Close() error {
	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		return nil
	}
	h.closed = true
	close(h.done)
	h.lock.Unlock()

	log.Info("closing watch connection")
	h.hhandler.registry.UnregisterWatchHandler(h.req, h)
	h.hhandler.removeHandler(h)
	return h.conn.Close()
}

// Error is sent to the client if a registration fails.
type Error struct {
	Error string `json:"error"`
}

func sendError(conn net.Conn, msg string) {
	data, _ := json.Marshal(&Error{Error: msg})
	wsutil.WriteServerMessage(conn, ws.OpText, data)
	conn.Close()
}
