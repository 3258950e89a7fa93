package session

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/session", "runtime session")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
