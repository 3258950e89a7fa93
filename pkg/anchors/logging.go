package anchors

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/manager", "anchor request correlation")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
