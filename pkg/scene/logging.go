package scene

import (
	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("anchors/scene", "scene model builder")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)
