package server

import (
	"net/http"
	"strings"

	"github.com/mandelsoft/vfs/pkg/readonlyfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// DirectoryHandler serves the content of a virtual filesystem
// read-only under a path prefix.
type DirectoryHandler struct {
	prefix  string
	handler http.Handler
}

var _ http.Handler = (*DirectoryHandler)(nil)

func NewDirectoryHandler(fs vfs.FileSystem, prefix string) *DirectoryHandler {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &DirectoryHandler{
		prefix:  prefix,
		handler: http.StripPrefix(prefix, http.FileServerFS(vfs.AsIoFS(readonlyfs.New(fs)))),
	}
}

func (d *DirectoryHandler) Register(srv *Server) {
	srv.Handle(d.prefix, d)
}

func (d *DirectoryHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	log.Debug("{{method}} serving {{url}}", "method", request.Method, "url", request.URL.String())
	d.handler.ServeHTTP(writer, request)
}
