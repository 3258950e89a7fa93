package server

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/server", "http server")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
