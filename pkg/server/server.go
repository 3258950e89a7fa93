package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mandelsoft/spaceanchors/pkg/healthz"
	"github.com/mandelsoft/spaceanchors/pkg/service"
)

// Server is an http server usable as service. It always serves
// the process health state at /healthz.
type Server struct {
	*http.Server
	*http.ServeMux
	shutdownTimeout time.Duration

	lock    sync.Mutex
	addr    net.Addr
	syncher service.Syncher
}

var _ service.Service = (*Server)(nil)

func NewServer(addr string, shutdownTimeout time.Duration) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz.Healthz)
	return &Server{
		Server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ServeMux:        mux,
		shutdownTimeout: shutdownTimeout,
	}
}

// Address returns the address the server is listening on,
// once it has been started.
func (s *Server) Address() net.Addr {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.addr
}

func (s *Server) Start(ctx context.Context) (service.Syncher, service.Syncher, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.syncher != nil {
		return nil, s.syncher, nil
	}
	l, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, nil, err
	}
	s.addr = l.Addr()

	wg := &sync.WaitGroup{}
	syncher := service.Sync(wg)
	s.syncher = syncher
	wg.Add(1)
	go func() {
		defer wg.Done()
		syncher.SetError(s.serve(ctx, l))
	}()
	log.Info("server listening on {{address}}", "address", s.addr.String())
	return nil, syncher, nil
}

func (s *Server) serve(ctx context.Context, l net.Listener) error {
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- s.Serve(l)
	}()

	var err error
	select {
	case <-ctx.Done():
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		err = s.Shutdown(ctx)
	case err = <-serverErr:
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Wait() error {
	s.lock.Lock()
	syncher := s.syncher
	s.lock.Unlock()
	if syncher == nil {
		return nil
	}
	return syncher.Wait()
}
