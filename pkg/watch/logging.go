package watch

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/watch", "event watch endpoint")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
