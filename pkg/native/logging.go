package native

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/native", "native runtime calls")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
